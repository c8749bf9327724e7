package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/magnet-school/marks-console/internal/models"
	"github.com/magnet-school/marks-console/internal/service"
	appErrors "github.com/magnet-school/marks-console/pkg/errors"
	"github.com/magnet-school/marks-console/pkg/response"
)

// FilterHandler serves the selectable filter dimensions.
type FilterHandler struct {
	filters *service.FilterService
}

// NewFilterHandler constructs handler.
func NewFilterHandler(filters *service.FilterService) *FilterHandler {
	return &FilterHandler{filters: filters}
}

// Metadata godoc
// @Summary List filter dimensions and their options
// @Tags Filters
// @Produce json
// @Security BearerAuth
// @Param class_field query string false "Narrow by class"
// @Param division query string false "Narrow by division"
// @Success 200 {object} response.Envelope
// @Router /filters [get]
func (h *FilterHandler) Metadata(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var scope models.FilterState
	for _, name := range models.FilterDimensions {
		if value := c.Query(name); value != "" {
			scope.Set(name, value)
		}
	}

	meta, err := h.filters.Metadata(c.Request.Context(), session.UpstreamToken, scope)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, meta, nil)
}
