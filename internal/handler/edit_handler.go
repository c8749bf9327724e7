package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/magnet-school/marks-console/internal/service"
	appErrors "github.com/magnet-school/marks-console/pkg/errors"
	"github.com/magnet-school/marks-console/pkg/response"
)

// EditHandler exposes the single-edit and bulk-edit operations.
type EditHandler struct {
	grid *service.GridService
}

// NewEditHandler constructs handler.
func NewEditHandler(grid *service.GridService) *EditHandler {
	return &EditHandler{grid: grid}
}

// StartEdit godoc
// @Summary Open the edit buffer for one record
// @Tags Editing
// @Produce json
// @Security BearerAuth
// @Param slno path string true "Record identifier"
// @Success 200 {object} response.Envelope
// @Router /grid/edit/{slno} [post]
func (h *EditHandler) StartEdit(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	buffer, err := h.grid.StartEdit(c.Request.Context(), session, c.Param("slno"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, buffer, nil)
}

type valuePayload struct {
	Value string `json:"value"`
}

// SetEditValue godoc
// @Summary Update the open edit buffer with a new input
// @Tags Editing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body valuePayload true "Raw input"
// @Success 200 {object} response.Envelope
// @Router /grid/edit/value [put]
func (h *EditHandler) SetEditValue(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req valuePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	buffer, err := h.grid.SetEditValue(c.Request.Context(), session, req.Value)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, buffer, nil)
}

// SaveEdit godoc
// @Summary Commit the open edit buffer
// @Tags Editing
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /grid/edit/save [post]
func (h *EditHandler) SaveEdit(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	outcome, err := h.grid.SaveEdit(c.Request.Context(), session, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, outcome, nil)
}

// CancelEdit godoc
// @Summary Abandon the open edit buffer
// @Tags Editing
// @Security BearerAuth
// @Success 204
// @Router /grid/edit [delete]
func (h *EditHandler) CancelEdit(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.grid.CancelEdit(c.Request.Context(), session); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SetBulkInput godoc
// @Summary Record one bulk-edit input
// @Tags Editing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slno path string true "Record identifier"
// @Param payload body valuePayload true "Raw input, empty to clear"
// @Success 200 {object} response.Envelope
// @Router /grid/bulk/{slno} [put]
func (h *EditHandler) SetBulkInput(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req valuePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	buffer, err := h.grid.SetBulkInput(c.Request.Context(), session, c.Param("slno"), req.Value)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, buffer, nil)
}

// BulkSave godoc
// @Summary Commit every valid bulk entry as one batch
// @Tags Editing
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /grid/bulk/save [post]
func (h *EditHandler) BulkSave(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	outcome, err := h.grid.BulkSave(c.Request.Context(), session, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, outcome, nil)
}

// BulkReset godoc
// @Summary Abandon every bulk entry
// @Tags Editing
// @Security BearerAuth
// @Success 204
// @Router /grid/bulk [delete]
func (h *EditHandler) BulkReset(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.grid.BulkReset(c.Request.Context(), session); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
