package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/magnet-school/marks-console/internal/dto"
	"github.com/magnet-school/marks-console/internal/service"
	appErrors "github.com/magnet-school/marks-console/pkg/errors"
	"github.com/magnet-school/marks-console/pkg/response"
)

// GridHandler exposes the grid view and its filter and pagination controls.
type GridHandler struct {
	grid *service.GridService
}

// NewGridHandler constructs handler.
func NewGridHandler(grid *service.GridService) *GridHandler {
	return &GridHandler{grid: grid}
}

// view fetches the assembled grid for the session and writes it out. Every
// state-changing control answers with the refreshed view so the client
// renders exactly what the server holds.
func (h *GridHandler) view(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	snap, err := h.grid.View(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.BuildGridView(snap), nil)
}

// View godoc
// @Summary Fetch the marks grid for the current selections
// @Tags Grid
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /grid [get]
func (h *GridHandler) View(c *gin.Context) {
	h.view(c)
}

type filterPayload struct {
	Value string `json:"value"`
}

// SetFilter godoc
// @Summary Apply one filter selection
// @Tags Grid
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param name path string true "Filter dimension"
// @Param payload body filterPayload true "Selected value, empty to unset"
// @Success 200 {object} response.Envelope
// @Router /grid/filters/{name} [put]
func (h *GridHandler) SetFilter(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req filterPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.grid.SetFilter(c.Request.Context(), session, c.Param("name"), req.Value); err != nil {
		response.Error(c, err)
		return
	}
	h.view(c)
}

// ResetFilters godoc
// @Summary Clear every filter selection
// @Tags Grid
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /grid/filters [delete]
func (h *GridHandler) ResetFilters(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.grid.ResetFilters(c.Request.Context(), session); err != nil {
		response.Error(c, err)
		return
	}
	h.view(c)
}

type pagePayload struct {
	Page int `json:"page"`
}

// SetPage godoc
// @Summary Navigate to a page
// @Tags Grid
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body pagePayload true "Target page"
// @Success 200 {object} response.Envelope
// @Router /grid/page [put]
func (h *GridHandler) SetPage(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req pagePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.grid.SetPage(c.Request.Context(), session, req.Page); err != nil {
		response.Error(c, err)
		return
	}
	h.view(c)
}

type pageSizePayload struct {
	PageSize int `json:"page_size"`
}

// SetPageSize godoc
// @Summary Switch the page size
// @Tags Grid
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body pageSizePayload true "Page size (10, 20, 50 or 100)"
// @Success 200 {object} response.Envelope
// @Router /grid/page-size [put]
func (h *GridHandler) SetPageSize(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req pageSizePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.grid.SetPageSize(c.Request.Context(), session, req.PageSize); err != nil {
		response.Error(c, err)
		return
	}
	h.view(c)
}
