// Package auth resolves bearer tokens to user identities for HTTP
// requests. There is no session or password surface; API clients present
// an opaque token issued at account creation.
package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/entities"
	"github.com/openshelf/openshelf/internal/reader"
)

// Context keys for user data
const (
	ContextKeyUser = "auth_user"
)

// UserStore resolves API tokens to users.
type UserStore interface {
	FindByToken(token string) (*entities.User, error)
}

// Middleware handles bearer token authentication for HTTP requests.
type Middleware struct {
	users UserStore
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(users UserStore) *Middleware {
	return &Middleware{users: users}
}

// Optional resolves the bearer token if one is presented and stores the
// user in the request context. Requests without a valid token proceed
// anonymously.
func (m *Middleware) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user := m.tryBearerAuth(c); user != nil {
			c.Set(ContextKeyUser, user)
		}
		c.Next()
	}
}

// Required rejects requests that did not resolve to a user.
func (m *Middleware) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}
		c.Next()
	}
}

// AdminOnly rejects requests from non-admin users.
func (m *Middleware) AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}
		if !user.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "insufficient permissions",
			})
			return
		}
		c.Next()
	}
}

// tryBearerAuth attempts to authenticate using a Bearer token.
func (m *Middleware) tryBearerAuth(c *gin.Context) *entities.User {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil
	}

	// Extract token from "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil
	}

	user, err := m.users.FindByToken(parts[1])
	if err != nil {
		return nil
	}
	return user
}

// CurrentUser retrieves the authenticated user from the context, or nil
// for anonymous requests.
func CurrentUser(c *gin.Context) *entities.User {
	if v, exists := c.Get(ContextKeyUser); exists {
		if user, ok := v.(*entities.User); ok {
			return user
		}
	}
	return nil
}

// Identity converts the authenticated user into a reader identity, or nil
// for anonymous requests.
func Identity(c *gin.Context) *reader.Identity {
	user := CurrentUser(c)
	if user == nil {
		return nil
	}
	return &reader.Identity{UserID: user.ID}
}

// UserIDPtr returns the authenticated user's ID for audit entries, or nil.
func UserIDPtr(c *gin.Context) *uint {
	user := CurrentUser(c)
	if user == nil {
		return nil
	}
	id := user.ID
	return &id
}
