package user

import "errors"

// User represents a user entity in the system.
type User struct {
	ID    int64  // ID is assigned by the store and never changes
	Name  string // Name is 2-100 characters, trimmed
	Email string // Email is unique across all users
}

// Update carries the fields of a partial update. Nil fields are left untouched.
type Update struct {
	Name  *string
	Email *string
}

// IsEmpty reports whether the update changes nothing.
func (u Update) IsEmpty() bool {
	return u.Name == nil && u.Email == nil
}

// Store-level errors. Repositories translate driver errors into these.
var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)
