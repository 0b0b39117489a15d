package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"polisave/internal/domain"
	"polisave/internal/service"
)

// DocumentHandler handles offer document endpoints.
type DocumentHandler struct {
	documentService service.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(documentService service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// Upload handles POST /api/v1/documents
// Accepts multipart/form-data with a "file" field, an optional "name" and an
// optional "product_hint". The document is queued for analysis on creation.
func (h *DocumentHandler) Upload(c *gin.Context) {
	userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	content, err := io.ReadAll(file)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "failed to read uploaded file")
		return
	}

	name := c.PostForm("name")
	if name == "" {
		name = header.Filename
	}

	input := service.UploadDocumentInput{
		Name:        name,
		ProductHint: c.PostForm("product_hint"),
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     content,
		UploadedBy:  userID,
	}

	doc, err := h.documentService.Upload(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, doc)
}

// List handles GET /api/v1/documents
func (h *DocumentHandler) List(c *gin.Context) {
	userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	offset, limit := parsePagination(c)
	docs, total, err := h.documentService.List(c.Request.Context(), userID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, docs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/documents/:id
func (h *DocumentHandler) GetByID(c *gin.Context) {
	userID, role, ok := extractAuthContext(c)
	if !ok {
		return
	}

	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document id")
		return
	}

	doc, err := h.documentService.Get(c.Request.Context(), docID)
	if err != nil {
		HandleError(c, err)
		return
	}
	if !canAccessDocument(doc, userID, role) {
		HandleError(c, domain.ErrForbidden)
		return
	}

	RespondOK(c, doc)
}

// Delete handles DELETE /api/v1/documents/:id
func (h *DocumentHandler) Delete(c *gin.Context) {
	userID, role, ok := extractAuthContext(c)
	if !ok {
		return
	}

	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document id")
		return
	}

	doc, err := h.documentService.Get(c.Request.Context(), docID)
	if err != nil {
		HandleError(c, err)
		return
	}
	if !canAccessDocument(doc, userID, role) {
		HandleError(c, domain.ErrForbidden)
		return
	}

	if err := h.documentService.Delete(c.Request.Context(), docID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"deleted": docID})
}

// Retry handles POST /api/v1/documents/:id/retry
// Re-queues a document whose analysis previously failed.
func (h *DocumentHandler) Retry(c *gin.Context) {
	userID, role, ok := extractAuthContext(c)
	if !ok {
		return
	}

	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document id")
		return
	}

	doc, err := h.documentService.Get(c.Request.Context(), docID)
	if err != nil {
		HandleError(c, err)
		return
	}
	if !canAccessDocument(doc, userID, role) {
		HandleError(c, domain.ErrForbidden)
		return
	}

	if err := h.documentService.RetryAnalysis(c.Request.Context(), docID); err != nil {
		HandleError(c, err)
		return
	}

	RespondAccepted(c, gin.H{"document_id": docID, "analysis_status": domain.AnalysisStatusQueued})
}

// canAccessDocument reports whether the user owns the document or is an admin.
func canAccessDocument(doc *domain.Document, userID uuid.UUID, role domain.UserRole) bool {
	return doc.CreatedBy == userID || role == domain.RoleAdmin
}

// parsePagination extracts offset/limit query params with defaults and caps.
func parsePagination(c *gin.Context) (offset, limit int) {
	offset = 0
	limit = 20
	if v, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil && v >= 0 {
		offset = v
	}
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil && v > 0 {
		limit = v
	}
	if limit > 100 {
		limit = 100
	}
	return offset, limit
}
