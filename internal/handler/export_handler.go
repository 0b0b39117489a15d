package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"polisave/internal/csvexport"
	"polisave/internal/domain"
	"polisave/internal/offer"
	"polisave/internal/service"
	"polisave/internal/xlsxexport"
)

// ExportInput is the DTO for comparison export requests.
type ExportInput struct {
	DocumentIDs []uuid.UUID `json:"document_ids" binding:"required"`
	Format      string      `json:"format"`
	Name        string      `json:"name"`
}

// ExportHandler renders offer comparisons as downloadable CSV or XLSX files.
type ExportHandler struct {
	offerService    service.OfferService
	documentService service.DocumentService
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(offerService service.OfferService, documentService service.DocumentService) *ExportHandler {
	return &ExportHandler{offerService: offerService, documentService: documentService}
}

// Export handles POST /api/v1/offers/export
// Builds a side-by-side comparison of the analyzed offers for the selected
// documents and streams it as a CSV (default) or XLSX attachment.
func (h *ExportHandler) Export(c *gin.Context) {
	userID, role, ok := extractAuthContext(c)
	if !ok {
		return
	}

	var input ExportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	format := input.Format
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		RespondError(c, http.StatusBadRequest, "INVALID_FORMAT", "format must be csv or xlsx")
		return
	}

	offers, err := h.collectOffers(c, input.DocumentIDs, userID, role)
	if err != nil {
		HandleError(c, err)
		return
	}
	if len(offers) == 0 {
		HandleError(c, domain.ErrNoOffersSelected)
		return
	}

	table := offer.BuildComparison(offers)
	name := input.Name
	if name == "" {
		name = "offer_comparison"
	}

	switch format {
	case "xlsx":
		var buf bytes.Buffer
		if err := xlsxexport.WriteComparison(&buf, table); err != nil {
			log.Printf("exportHandler.Export: xlsx write failed: %v", err)
			RespondError(c, http.StatusInternalServerError, "EXPORT_FAILED", "failed to build xlsx export")
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", xlsxexport.BuildFilename(name)))
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	default:
		var buf bytes.Buffer
		buf.Write(csvexport.BOM)
		w := csvexport.NewWriter(&buf)
		if err := w.WriteComparison(table); err != nil {
			log.Printf("exportHandler.Export: csv write failed: %v", err)
			RespondError(c, http.StatusInternalServerError, "EXPORT_FAILED", "failed to build csv export")
			return
		}
		w.Flush()
		if err := w.Error(); err != nil {
			log.Printf("exportHandler.Export: csv flush failed: %v", err)
			RespondError(c, http.StatusInternalServerError, "EXPORT_FAILED", "failed to build csv export")
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", csvexport.BuildFilename(name)))
		c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
	}
}

// collectOffers loads the unified offer for each selected document, skipping
// documents that are not yet analyzed. Access violations abort the export.
func (h *ExportHandler) collectOffers(c *gin.Context, docIDs []uuid.UUID, userID uuid.UUID, role domain.UserRole) ([]domain.UnifiedOffer, error) {
	offers := make([]domain.UnifiedOffer, 0, len(docIDs))
	for _, docID := range docIDs {
		doc, err := h.documentService.Get(c.Request.Context(), docID)
		if err != nil {
			return nil, err
		}
		if !canAccessDocument(doc, userID, role) {
			return nil, domain.ErrForbidden
		}
		if doc.AnalysisStatus != domain.AnalysisStatusCompleted {
			continue
		}

		record, err := h.offerService.GetByDocument(c.Request.Context(), docID)
		if err != nil {
			return nil, err
		}

		var unified domain.UnifiedOffer
		if err := json.Unmarshal(record.Payload, &unified); err != nil {
			log.Printf("exportHandler.collectOffers: corrupt offer payload for document %s: %v", docID, err)
			continue
		}
		offers = append(offers, unified)
	}
	return offers, nil
}
