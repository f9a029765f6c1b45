package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/murdoch-its/complaints-api/internal/middleware"
	"github.com/murdoch-its/complaints-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// actorRole resolves the acting role for privilege checks. Unauthenticated
// callers get an empty role, which never passes an admin check.
func actorRole(c *gin.Context) models.AccountRole {
	claims := claimsFromContext(c)
	if claims == nil {
		return ""
	}
	return claims.Role
}
