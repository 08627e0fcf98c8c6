package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domain "user-crud-service/internal/domain/user"
	"user-crud-service/internal/schema"
	"user-crud-service/internal/usecase/user"
	apperrors "user-crud-service/pkg/errors"
)

// UserHandler handles HTTP requests for user operations. Failures are attached
// with c.Error and rendered by the error handler middleware.
type UserHandler struct {
	uc  user.Usecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.Usecase, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// UserResponse represents the HTTP response for user data
type UserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DataResponse wraps a single user
type DataResponse struct {
	Data UserResponse `json:"data"`
}

// ListUsersResponse represents the HTTP response for listing users
type ListUsersResponse struct {
	Data  []UserResponse `json:"data"`
	Count int            `json:"count"`
}

func toResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email}
}

// CreateUser handles POST /users
func (h *UserHandler) CreateUser(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		_ = c.Error(apperrors.NewTechnicalError("failed to read request body", err))
		return
	}

	in, err := schema.CreateUser(body)
	if err != nil {
		h.reject(c, "Invalid create user request", err)
		return
	}

	h.log.Info("Gin CreateUser request", zap.String("email", in.Email))

	u, err := h.uc.CreateUser(c.Request.Context(), in)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, DataResponse{Data: toResponse(u)})
}

// ListUsers handles GET /users
func (h *UserHandler) ListUsers(c *gin.Context) {
	f, err := schema.ListUsers(c.Request.URL.Query())
	if err != nil {
		h.reject(c, "Invalid list users request", err)
		return
	}

	out, err := h.uc.ListUsers(c.Request.Context(), f)
	if err != nil {
		_ = c.Error(err)
		return
	}

	users := make([]UserResponse, len(out.Users))
	for i := range out.Users {
		users[i] = toResponse(&out.Users[i])
	}

	c.JSON(http.StatusOK, ListUsersResponse{Data: users, Count: out.Count})
}

// GetUser handles GET /users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := schema.UserID(c.Param("id"))
	if err != nil {
		h.reject(c, "Invalid user ID", err, zap.String("id", c.Param("id")))
		return
	}

	u, err := h.uc.GetUser(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, DataResponse{Data: toResponse(u)})
}

// UpdateUser handles PUT /users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, err := schema.UserID(c.Param("id"))
	if err != nil {
		h.reject(c, "Invalid user ID", err, zap.String("id", c.Param("id")))
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		_ = c.Error(apperrors.NewTechnicalError("failed to read request body", err))
		return
	}

	upd, err := schema.UpdateUser(body)
	if err != nil {
		h.reject(c, "Invalid update user request", err, zap.Int64("id", id))
		return
	}

	h.log.Info("Gin UpdateUser request", zap.Int64("id", id))

	u, err := h.uc.UpdateUser(c.Request.Context(), id, upd)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, DataResponse{Data: toResponse(u)})
}

// DeleteUser handles DELETE /users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, err := schema.UserID(c.Param("id"))
	if err != nil {
		h.reject(c, "Invalid user ID", err, zap.String("id", c.Param("id")))
		return
	}

	h.log.Info("Gin DeleteUser request", zap.Int64("id", id))
	if err := h.uc.DeleteUser(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// reject logs a request that failed input validation and hands err to the
// error handler middleware.
func (h *UserHandler) reject(c *gin.Context, msg string, err error, fields ...zap.Field) {
	h.log.Warn(msg, append(fields, zap.Error(err))...)
	_ = c.Error(err)
}
