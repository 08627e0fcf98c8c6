package user

import (
	"context"

	domain "user-crud-service/internal/domain/user"
)

// Usecase defines the interface for user business logic operations.
type Usecase interface {
	CreateUser(ctx context.Context, in CreateUserInput) (*domain.User, error)
	ListUsers(ctx context.Context, f domain.ListFilter) (*ListUsersOutput, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	UpdateUser(ctx context.Context, id int64, upd domain.Update) (*domain.User, error)
	DeleteUser(ctx context.Context, id int64) error
}
