package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/akorchak/urlstash-server/internal/model"
)

const userIDKey = "auth.user_id"

// Authenticate validates the bearer token and resolves the account it names.
// Every failure mode collapses into the same 401.
type Authenticate struct {
	tokenManager model.TokenManager
	userStore    model.UserStore
}

func NewAuthenticate(tokenManager model.TokenManager, userStore model.UserStore) *Authenticate {
	return &Authenticate{
		tokenManager: tokenManager,
		userStore:    userStore,
	}
}

func (m *Authenticate) Handle(c *gin.Context) {
	header := c.GetHeader("Authorization")
	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || tokenString == "" {
		abortUnauthorized(c)
		return
	}

	userID, err := m.tokenManager.ParseAccessToken(tokenString)
	if err != nil {
		abortUnauthorized(c)
		return
	}

	// The token may outlive the account.
	if _, err := m.userStore.GetByID(c.Request.Context(), userID); err != nil {
		abortUnauthorized(c)
		return
	}

	c.Set(userIDKey, userID)
	c.Next()
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "could not validate credentials"})
}

// UserID extracts the authenticated user set by Authenticate.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
