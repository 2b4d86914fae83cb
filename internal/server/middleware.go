package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	cartdomain "github.com/nahomjim91/spice-marketplace/internal/cart/domain"
	"github.com/nahomjim91/spice-marketplace/pkg/log/ctxlogger"
)

const contextSessionKey = "cart_session_id"

const maxSessionIDLength = 128

// CartSession resolves the shopper's cart session from the session header,
// minting one when absent. The id is echoed so clients can keep it.
func (s *Server) CartSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(s.sessionHeader))
		if id == "" {
			id = uuid.NewString()
		}
		if !validSessionID(id) {
			AbortWithError(c, cartdomain.ErrInvalidSession)
			return
		}

		c.Set(contextSessionKey, id)
		c.Header(s.sessionHeader, id)
		c.Request = c.Request.WithContext(ctxlogger.ContextWithSessionID(c.Request.Context(), id))
		c.Next()
	}
}

func sessionID(c *gin.Context) string {
	return c.GetString(contextSessionKey)
}

func validSessionID(id string) bool {
	if id == "" || len(id) > maxSessionIDLength {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.', r == ':':
		default:
			return false
		}
	}
	return true
}
