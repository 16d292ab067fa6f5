package middleware

import (
	"net/http"
	"strings"

	"github.com/agrm/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// MaxActorLength bounds the X-User-ID header stored in audit entries
const MaxActorLength = 100

// RequireActor rejects mutating requests that carry no X-User-ID header.
// Read-only methods pass through; the actor, when present, is stored under ActorKey.
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := strings.TrimSpace(c.GetHeader(ActorHeader))
		if len(actor) > MaxActorLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(
				dto.ErrCodeBadRequest, "X-User-ID header is too long", GetRequestID(c)))
			return
		}
		if actor != "" {
			c.Set(ActorKey, actor)
			c.Next()
			return
		}

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(
				dto.ErrCodeUnauthorized, "X-User-ID header is required", GetRequestID(c)))
		}
	}
}

// GetActor returns the actor stored by RequireActor
func GetActor(c *gin.Context) string {
	return c.GetString(ActorKey)
}
