package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// User represents an authenticated user.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	Role         UserRole  `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// FileMeta stores metadata about an uploaded offer document file.
type FileMeta struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	UploadedBy   uuid.UUID  `db:"uploaded_by" json:"uploaded_by"`
	FileName     string     `db:"file_name" json:"file_name"`
	OriginalName string     `db:"original_name" json:"original_name"`
	FileType     FileType   `db:"file_type" json:"file_type"`
	FileSize     int64      `db:"file_size" json:"file_size"`
	S3Bucket     string     `db:"s3_bucket" json:"s3_bucket"`
	S3Key        string     `db:"s3_key" json:"s3_key"`
	ContentType  string     `db:"content_type" json:"content_type"`
	Status       FileStatus `db:"status" json:"status"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Document represents one insurance offer document moving through the
// analysis pipeline.
type Document struct {
	ID               uuid.UUID      `db:"id" json:"id"`
	FileID           uuid.UUID      `db:"file_id" json:"file_id"`
	Name             string         `db:"name" json:"name"`
	ProductHint      string         `db:"product_hint" json:"product_hint"`
	AnalysisStatus   AnalysisStatus `db:"analysis_status" json:"analysis_status"`
	AnalysisError    string         `db:"analysis_error" json:"analysis_error"`
	AnalysisAttempts int            `db:"analysis_attempts" json:"analysis_attempts"`
	AnalyzedAt       *time.Time     `db:"analyzed_at" json:"analyzed_at"`
	CreatedBy        uuid.UUID      `db:"created_by" json:"created_by"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

// OfferRecord is the persisted form of a UnifiedOffer.
type OfferRecord struct {
	ID                   uuid.UUID            `db:"id" json:"id"`
	DocumentID           uuid.UUID            `db:"document_id" json:"document_id"`
	SourceDocument       string               `db:"source_document" json:"source_document"`
	Payload              json.RawMessage      `db:"payload" json:"payload"`
	ExtractionConfidence ExtractionConfidence `db:"extraction_confidence" json:"extraction_confidence"`
	MissingFields        json.RawMessage      `db:"missing_fields" json:"missing_fields"`
	ExtractorModel       string               `db:"extractor_model" json:"extractor_model"`
	CreatedAt            time.Time            `db:"created_at" json:"created_at"`
}

// InsuredPerson is one covered person on a unified offer.
type InsuredPerson struct {
	Name  string      `json:"name"`
	Age   *int        `json:"age"`
	Role  string      `json:"role"`
	Plans []PlanEntry `json:"plans"`
}

// PlanEntry is one coverage plan attached to an insured person.
type PlanEntry struct {
	Name    string   `json:"name"`
	Sum     *float64 `json:"sum"`
	Premium *float64 `json:"premium"`
}

// ContractItem is one base or additional contract on an offer.
type ContractItem struct {
	Name    string   `json:"name"`
	Sum     *float64 `json:"sum"`
	Premium *float64 `json:"premium"`
}

// AssistanceItem describes one assistance service included in an offer.
type AssistanceItem struct {
	Name     string `json:"name"`
	Coverage string `json:"coverage"`
	Limits   string `json:"limits"`
}

// OfferDuration holds the validity window and variant of an offer.
type OfferDuration struct {
	Start   string `json:"start"`
	End     string `json:"end"`
	Variant string `json:"variant"`
}

// UnifiedOffer is the canonical, schema-normalized representation of one
// insurance offer. Numeric fields are nil when they could not be determined;
// every fallback is recorded in MissingFields as a dotted path. The record is
// immutable once built.
type UnifiedOffer struct {
	OfferID        string `json:"offer_id"`
	SourceDocument string `json:"source_document"`

	Insurer     string      `json:"insurer"`
	ProductType ProductType `json:"product_type"`

	Insured             []InsuredPerson `json:"insured"`
	BaseContracts       []ContractItem  `json:"base_contracts"`
	AdditionalContracts []ContractItem  `json:"additional_contracts"`
	Discounts           []string        `json:"discounts"`

	TotalPremiumBeforeDiscounts *float64 `json:"total_premium_before_discounts"`
	TotalPremiumAfterDiscounts  *float64 `json:"total_premium_after_discounts"`

	Assistance []AssistanceItem `json:"assistance"`
	Duration   OfferDuration    `json:"duration"`
	Notes      []string         `json:"notes"`

	MissingFields        []string             `json:"missing_fields"`
	ExtractionConfidence ExtractionConfidence `json:"extraction_confidence"`
}
