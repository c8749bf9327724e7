package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/magnet-school/marks-console/internal/models"
	"github.com/magnet-school/marks-console/internal/service"
	appErrors "github.com/magnet-school/marks-console/pkg/errors"
	"github.com/magnet-school/marks-console/pkg/response"
)

// AuthHandler exposes login and logout endpoints.
type AuthHandler struct {
	auth *service.AuthService
	grid *service.GridService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(auth *service.AuthService, grid *service.GridService) *AuthHandler {
	return &AuthHandler{auth: auth, grid: grid}
}

// Login godoc
// @Summary Authenticate against the school backend
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Credentials"
// @Success 200 {object} response.Envelope
// @Router /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.auth.Login(c.Request.Context(), req, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Logout godoc
// @Summary End the console session
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 204
// @Router /logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.auth.Logout(c.Request.Context(), claims, requestMeta(c)); err != nil {
		response.Error(c, err)
		return
	}
	h.grid.ClearSession(claims.SessionID)
	response.NoContent(c)
}
