package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/magnet-school/marks-console/internal/models"
	"github.com/magnet-school/marks-console/internal/service"
	appErrors "github.com/magnet-school/marks-console/pkg/errors"
	"github.com/magnet-school/marks-console/pkg/response"
)

// SettingsHandler exposes the per-user console settings.
type SettingsHandler struct {
	auth *service.AuthService
	grid *service.GridService
}

// NewSettingsHandler constructs handler.
func NewSettingsHandler(auth *service.AuthService, grid *service.GridService) *SettingsHandler {
	return &SettingsHandler{auth: auth, grid: grid}
}

// GetEditMode godoc
// @Summary Read the current edit mode
// @Tags Settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /settings/edit-mode [get]
func (h *SettingsHandler) GetEditMode(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"edit_mode": session.EditMode}, nil)
}

type editModePayload struct {
	EditMode models.EditMode `json:"edit_mode"`
}

// SetEditMode godoc
// @Summary Switch between single and bulk editing
// @Tags Settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body editModePayload true "Target edit mode"
// @Success 200 {object} response.Envelope
// @Router /settings/edit-mode [put]
func (h *SettingsHandler) SetEditMode(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	session, ok := currentSession(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req editModePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	departing := session.EditMode
	updated, err := h.auth.SetEditMode(c.Request.Context(), claims, req.EditMode)
	if err != nil {
		response.Error(c, err)
		return
	}
	if departing != updated.EditMode {
		// Buffers belong to the mode that created them; they do not
		// survive the switch.
		h.grid.DiscardModeBuffers(session, departing)
	}
	response.JSON(c, http.StatusOK, gin.H{"edit_mode": updated.EditMode}, nil)
}
