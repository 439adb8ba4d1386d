package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/audit"
	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/database/users"
)

// UsersController handles account creation and the current-user endpoint.
type UsersController struct {
	users *users.Repository
	audit *audit.Service
}

func NewUsersController(repo *users.Repository, auditService *audit.Service) *UsersController {
	return &UsersController{users: repo, audit: auditService}
}

type createUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	IsAdmin  bool   `json:"is_admin"`
}

// CreateUser registers an account and returns its API token. The token is
// only ever shown in this response.
// POST /api/v1/users
func (uc *UsersController) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "username and email are required")
		return
	}

	user, err := uc.users.Create(req.Username, req.Email, req.IsAdmin)
	if err != nil {
		respondInternalError(c, err, "create user")
		return
	}

	uc.audit.Record(auth.UserIDPtr(c), "user_create", "user", user.ID, map[string]any{
		"username": user.Username,
		"is_admin": user.IsAdmin,
	})

	c.JSON(http.StatusCreated, gin.H{
		"user":  user,
		"token": user.Token,
	})
}

// Me returns the authenticated user's account.
// GET /api/v1/me
func (uc *UsersController) Me(c *gin.Context) {
	c.JSON(http.StatusOK, auth.CurrentUser(c))
}
