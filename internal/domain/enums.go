package domain

// FileType represents the allowed file types for upload.
type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypeJPG FileType = "jpg"
	FileTypePNG FileType = "png"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF: "application/pdf",
	FileTypeJPG: "image/jpeg",
	FileTypePNG: "image/png",
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
}

// UserRole defines the role hierarchy.
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleMember UserRole = "member"
)

// FileStatus represents the lifecycle of an uploaded file.
type FileStatus string

const (
	FileStatusPending  FileStatus = "pending"
	FileStatusUploaded FileStatus = "uploaded"
	FileStatusFailed   FileStatus = "failed"
	FileStatusDeleted  FileStatus = "deleted"
)

// AnalysisStatus represents the lifecycle of a document analysis.
type AnalysisStatus string

const (
	AnalysisStatusPending    AnalysisStatus = "pending"
	AnalysisStatusQueued     AnalysisStatus = "queued"
	AnalysisStatusProcessing AnalysisStatus = "processing"
	AnalysisStatusCompleted  AnalysisStatus = "completed"
	AnalysisStatusFailed     AnalysisStatus = "failed"
)

// SectionType classifies a unit of offer document text.
type SectionType string

const (
	SectionInsured            SectionType = "insured"
	SectionBaseContract       SectionType = "base_contract"
	SectionAdditionalContract SectionType = "additional_contract"
	SectionAssistance         SectionType = "assistance"
	SectionPremium            SectionType = "premium"
	SectionDiscount           SectionType = "discount"
	SectionDuration           SectionType = "duration"
	SectionUnknown            SectionType = "unknown"
)

// ProductType identifies the insurance product an offer belongs to.
type ProductType string

const (
	ProductLife     ProductType = "life"
	ProductHealth   ProductType = "health"
	ProductAccident ProductType = "accident"
	ProductTravel   ProductType = "travel"
	ProductProperty ProductType = "property"
	ProductAuto     ProductType = "auto"
	ProductUnknown  ProductType = "unknown"
)

// ExtractionConfidence grades how completely an offer could be extracted.
type ExtractionConfidence string

const (
	ConfidenceHigh   ExtractionConfidence = "high"
	ConfidenceMedium ExtractionConfidence = "medium"
	ConfidenceLow    ExtractionConfidence = "low"
)
