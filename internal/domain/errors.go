package domain

import "errors"

var (
	ErrNotFound             = errors.New("resource not found")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUserInactive         = errors.New("user is inactive")
	ErrUnsupportedFileType  = errors.New("unsupported file type")
	ErrFileTooLarge         = errors.New("file exceeds maximum allowed size")
	ErrDuplicateEmail       = errors.New("email already exists")
	ErrUploadFailed         = errors.New("file upload to storage failed")
	ErrDocumentNotFound     = errors.New("document not found")
	ErrDocumentNotAnalyzed  = errors.New("document has not been analyzed yet")
	ErrOfferNotFound        = errors.New("offer not found")
	ErrAnalysisInProgress   = errors.New("analysis is already in progress")
	ErrInsufficientRole     = errors.New("insufficient role for this action")
	ErrNoOffersSelected     = errors.New("no offers selected for export")
)
