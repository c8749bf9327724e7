package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/magnet-school/marks-console/internal/service"
	appErrors "github.com/magnet-school/marks-console/pkg/errors"
	"github.com/magnet-school/marks-console/pkg/response"
)

// AuditHandler serves the mark audit trail.
type AuditHandler struct {
	audit *service.AuditService
}

// NewAuditHandler constructs handler.
func NewAuditHandler(audit *service.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// Recent godoc
// @Summary List recent mark changes
// @Tags Audit
// @Produce json
// @Security BearerAuth
// @Param user_id query string false "Filter by user"
// @Param limit query int false "Row limit, default 100"
// @Success 200 {object} response.Envelope
// @Router /audit/marks [get]
func (h *AuditHandler) Recent(c *gin.Context) {
	if _, ok := currentSession(c); !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	rows, err := h.audit.Recent(c.Request.Context(), c.Query("user_id"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}
