package remoteserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"shard/internal/ledger"
)

// requireAuth gates mutating requests behind a bearer API key when one is
// configured on the server (absent a key, every request is authorized).
// The wire protocol itself defines no authentication; this exists purely
// as optional operator hardening.
func (s *Server) requireAuth(h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.apiKeyHash == nil {
			h(c)
			return
		}
		const prefix = "Bearer "
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, prefix) {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		token := strings.TrimPrefix(header, prefix)
		if bcrypt.CompareHashAndPassword(s.apiKeyHash, []byte(token)) != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		h(c)
	}
}

func ledgerEvent(kind, method, id string) ledger.Event {
	return ledger.Event{Kind: kind, Method: method, Identity: id, At: time.Now()}
}
