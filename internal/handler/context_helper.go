package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/magnet-school/marks-console/internal/middleware"
	"github.com/magnet-school/marks-console/internal/models"
	"github.com/magnet-school/marks-console/internal/service"
)

// currentClaims extracts the authenticated JWT claims from the context.
func currentClaims(c *gin.Context) (*models.JWTClaims, bool) {
	raw, ok := c.Get(middleware.ContextUserKey)
	if !ok {
		return nil, false
	}
	claims, ok := raw.(*models.JWTClaims)
	return claims, ok
}

// currentSession extracts the hydrated console session from the context.
func currentSession(c *gin.Context) (*models.Session, bool) {
	raw, ok := c.Get(middleware.ContextSessionKey)
	if !ok {
		return nil, false
	}
	session, ok := raw.(*models.Session)
	return session, ok
}

// requestMeta captures the client network context for audit rows.
func requestMeta(c *gin.Context) service.RequestMeta {
	return service.RequestMeta{
		IP:        c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	}
}
