package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	authorizationHeader = "Authorization"
	bearerScheme        = "Bearer"

	// userIDKey is the gin context key the protected handlers read.
	userIDKey = "userId"
)

// userIdMiddleware guards the versioned history API. Dashboards authenticate
// with a bearer JWT; the sensor nodes never reach these routes, so nothing
// device-facing passes through here.
func (h *Handler) userIdMiddleware(c *gin.Context) {
	header := c.GetHeader(authorizationHeader)
	if header == "" {
		abortUnauthorized(c, "missing Authorization header")
		return
	}

	token, ok := bearerToken(header)
	if !ok {
		abortUnauthorized(c, "invalid Authorization header format")
		return
	}

	userID, err := h.services.ParseToken(token)
	if err != nil {
		if h.log != nil {
			h.log.Infow("auth_token_rejected", "err", err)
		}
		abortUnauthorized(c, "invalid or expired token")
		return
	}

	c.Set(userIDKey, userID)
	c.Next()
}

// bearerToken extracts the credential from a "Bearer <token>" header value.
func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != bearerScheme {
		return "", false
	}
	return parts[1], true
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}
