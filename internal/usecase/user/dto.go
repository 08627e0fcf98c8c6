package user

import domain "user-crud-service/internal/domain/user"

// CreateUserInput is the normalized payload for creating a user.
type CreateUserInput struct {
	Name  string
	Email string
}

// ListUsersOutput is the page of users returned by ListUsers.
type ListUsersOutput struct {
	Users []domain.User
	Count int
}
