package admin

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"shipdesk/internal/models"
	"shipdesk/internal/services"
	"shipdesk/internal/utils"
	"shipdesk/pkg/logger"
)

type TransferHandler struct {
	transferService services.TransferService
	maxUploadSize   int64
	logger          *logger.Logger
}

func NewTransferHandler(transferService services.TransferService, maxUploadSize int64, log *logger.Logger) *TransferHandler {
	if maxUploadSize <= 0 {
		maxUploadSize = utils.MaxImportFileSize
	}
	return &TransferHandler{
		transferService: transferService,
		maxUploadSize:   maxUploadSize,
		logger:          log,
	}
}

// ExportRateCards streams a company's rate cards as a CSV or XLSX attachment
func (h *TransferHandler) ExportRateCards(c *gin.Context) {
	format := models.ExportFormat(c.DefaultQuery("format", string(models.ExportFormatCSV)))

	file, err := h.transferService.Export(c.Request.Context(), c.Query("companyId"), format)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

// ImportRateCards accepts a multipart upload with file, companyId and an
// optional metadata JSON field.
func (h *TransferHandler) ImportRateCards(c *gin.Context) {
	req := &services.ImportRequest{
		CompanyID: c.PostForm("companyId"),
		Metadata:  c.PostForm("metadata"),
		Actor:     actorFromContext(c),
	}

	if header, err := c.FormFile("file"); err == nil {
		src, err := header.Open()
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		defer src.Close()

		// One byte over the limit is enough for the service to reject it.
		content, err := io.ReadAll(io.LimitReader(src, h.maxUploadSize+1))
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		req.Filename = header.Filename
		req.Content = content
	}

	result, err := h.transferService.Import(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.WithContext(c.Request.Context()).WithFields(map[string]interface{}{
		"company_id": req.CompanyID,
		"created":    result.Created,
		"updated":    result.Updated,
		"errors":     len(result.Errors),
	}).Info("Rate card import finished")

	utils.SuccessResponse(c, "Rate cards imported", result)
}
