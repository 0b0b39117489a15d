package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"polisave/internal/domain"
	"polisave/internal/service"
)

// OfferHandler handles unified offer endpoints.
type OfferHandler struct {
	offerService    service.OfferService
	documentService service.DocumentService
}

// NewOfferHandler creates a new OfferHandler.
func NewOfferHandler(offerService service.OfferService, documentService service.DocumentService) *OfferHandler {
	return &OfferHandler{offerService: offerService, documentService: documentService}
}

// GetByDocument handles GET /api/v1/documents/:id/offer
func (h *OfferHandler) GetByDocument(c *gin.Context) {
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

	switch doc.AnalysisStatus {
	case domain.AnalysisStatusQueued, domain.AnalysisStatusProcessing:
		HandleError(c, domain.ErrAnalysisInProgress)
		return
	case domain.AnalysisStatusFailed:
		HandleError(c, domain.ErrDocumentNotAnalyzed)
		return
	}

	record, err := h.offerService.GetByDocument(c.Request.Context(), docID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, record)
}

// DeleteByDocument handles DELETE /api/v1/documents/:id/offer
func (h *OfferHandler) DeleteByDocument(c *gin.Context) {
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
	if doc.AnalysisStatus == domain.AnalysisStatusProcessing {
		HandleError(c, domain.ErrAnalysisInProgress)
		return
	}

	if err := h.offerService.DeleteByDocument(c.Request.Context(), docID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"document_id": docID})
}

// List handles GET /api/v1/offers
func (h *OfferHandler) List(c *gin.Context) {
	userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	offset, limit := parsePagination(c)
	records, total, err := h.offerService.ListByOwner(c.Request.Context(), userID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, records, PagMeta{Total: total, Offset: offset, Limit: limit})
}
