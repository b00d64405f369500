package handler

import (
	"github.com/gin-gonic/gin"

	"dispetcher/backend/internal/api/middleware"
	"dispetcher/backend/internal/dto"
	"dispetcher/backend/internal/model"
	"dispetcher/backend/internal/service"
	"dispetcher/backend/pkg/jwt"
	"dispetcher/backend/pkg/response"
)

// MustGetUserID extracts user_id set by JWTAuth.
// On false a 401 has been written and the caller should return.
func MustGetUserID(c *gin.Context) (string, bool) {
	return mustGetString(c, middleware.CtxUserID)
}

// MustGetRole extracts role set by JWTAuth.
func MustGetRole(c *gin.Context) (string, bool) {
	return mustGetString(c, middleware.CtxRole)
}

// MustGetClaims extracts the parsed access token.
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(middleware.CtxClaims)
	if !exists {
		response.Unauthorized(c, 10002, "unauthenticated")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, 10002, "unauthenticated")
		return nil, false
	}
	return claims, true
}

func mustGetString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		response.Unauthorized(c, 10002, "unauthenticated")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "unauthenticated")
		return "", false
	}
	return s, true
}

func isWorker(c *gin.Context) bool {
	return c.GetString(middleware.CtxRole) == model.RoleWorker
}

// respondResult writes a skippable outcome; a skip is still 200.
func respondResult(c *gin.Context, r service.Result) {
	response.OK(c, dto.ActionResponse{Applied: r.Applied, Reason: r.ReasonText()})
}

// respondStale answers a write that lost a race with another writer.
func respondStale(c *gin.Context) {
	response.Conflict(c, 10006, "record was modified concurrently, reload and retry", "")
}
