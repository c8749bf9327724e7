package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/magnet-school/marks-console/internal/models"
	"github.com/magnet-school/marks-console/internal/service"
	appErrors "github.com/magnet-school/marks-console/pkg/errors"
	"github.com/magnet-school/marks-console/pkg/response"
)

// ExportHandler serves the marks listing as a downloadable file.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs handler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Export godoc
// @Summary Download the filtered marks as CSV or PDF
// @Tags Export
// @Produce octet-stream
// @Security BearerAuth
// @Param format query string true "csv or pdf"
// @Param class_field query string false "Filter by class"
// @Param division query string false "Filter by division"
// @Param subject query string false "Filter by subject"
// @Param term query string false "Filter by term"
// @Success 200 {file} binary
// @Router /marks/export [get]
func (h *ExportHandler) Export(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var filters models.FilterState
	for _, name := range models.FilterDimensions {
		if value := c.Query(name); value != "" {
			filters.Set(name, value)
		}
	}

	result, err := h.exports.Export(c.Request.Context(), session.UpstreamToken, filters, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.FileName+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
