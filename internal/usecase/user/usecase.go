package user

import (
	"context"
	"errors"

	"go.uber.org/zap"

	domain "user-crud-service/internal/domain/user"
	apperrors "user-crud-service/pkg/errors"
)

// Repository defines the interface for user data access operations.
// Implementations translate store failures into domain.ErrNotFound and
// domain.ErrDuplicateEmail. GetByID returns domain.ErrNotFound for a missing
// user while GetByEmail returns nil, nil.
type Repository interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, id int64, upd domain.Update) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f domain.ListFilter) ([]domain.User, error)
}

// Service implements the business logic for user management operations.
// Input is expected to be validated already; Service only enforces the
// existence and email uniqueness rules.
type Service struct {
	repo Repository
	log  *zap.Logger
}

var _ Usecase = (*Service)(nil)

// New creates a new Service backed by the given repository.
func New(r Repository, log *zap.Logger) *Service {
	return &Service{repo: r, log: log}
}

// UserExists reports whether a user with the given ID is stored.
func (s *Service) UserExists(ctx context.Context, id int64) (bool, error) {
	_, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// EmailIsUnique reports whether no user other than excludeID holds email.
// A nil excludeID checks against every user.
func (s *Service) EmailIsUnique(ctx context.Context, email string, excludeID *int64) (bool, error) {
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return true, nil
	}
	return excludeID != nil && existing.ID == *excludeID, nil
}

// CreateUser stores a new user after checking the email is not taken.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	s.log.Info("creating user", zap.String("email", in.Email))

	unique, err := s.EmailIsUnique(ctx, in.Email, nil)
	if err != nil {
		s.log.Error("failed to check email uniqueness", zap.String("email", in.Email), zap.Error(err))
		return nil, apperrors.NewTechnicalError("failed to check email uniqueness", err)
	}
	if !unique {
		s.log.Warn("email already exists", zap.String("email", in.Email))
		return nil, apperrors.ErrDuplicateEmail
	}

	created, err := s.repo.Create(ctx, &domain.User{Name: in.Name, Email: in.Email})
	if err != nil {
		return nil, s.translate(err, "failed to create user")
	}
	return created, nil
}

// ListUsers returns the users selected by f.
func (s *Service) ListUsers(ctx context.Context, f domain.ListFilter) (*ListUsersOutput, error) {
	s.log.Debug("listing users",
		zap.String("sort_by", string(f.SortBy)), zap.String("sort_order", string(f.SortOrder)),
		zap.Int("limit", f.Limit), zap.Int("offset", f.Offset))

	users, err := s.repo.List(ctx, f)
	if err != nil {
		s.log.Error("failed to list users", zap.Error(err))
		return nil, apperrors.NewTechnicalError("failed to list users", err)
	}

	return &ListUsersOutput{Users: users, Count: len(users)}, nil
}

// GetUser returns the user with the given ID.
func (s *Service) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, "failed to get user")
	}
	return u, nil
}

// UpdateUser applies upd to an existing user. When upd changes the email it
// must not belong to another user.
func (s *Service) UpdateUser(ctx context.Context, id int64, upd domain.Update) (*domain.User, error) {
	s.log.Info("updating user", zap.Int64("id", id))

	exists, err := s.UserExists(ctx, id)
	if err != nil {
		s.log.Error("failed to check user existence", zap.Int64("id", id), zap.Error(err))
		return nil, apperrors.NewTechnicalError("failed to check user existence", err)
	}
	if !exists {
		return nil, apperrors.ErrUserNotFound
	}

	if upd.Email != nil {
		unique, err := s.EmailIsUnique(ctx, *upd.Email, &id)
		if err != nil {
			s.log.Error("failed to check email uniqueness", zap.String("email", *upd.Email), zap.Error(err))
			return nil, apperrors.NewTechnicalError("failed to check email uniqueness", err)
		}
		if !unique {
			s.log.Warn("email already exists", zap.String("email", *upd.Email), zap.Int64("id", id))
			return nil, apperrors.ErrDuplicateEmail
		}
	}

	updated, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		return nil, s.translate(err, "failed to update user")
	}
	return updated, nil
}

// DeleteUser removes an existing user.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	s.log.Info("deleting user", zap.Int64("id", id))

	exists, err := s.UserExists(ctx, id)
	if err != nil {
		s.log.Error("failed to check user existence", zap.Int64("id", id), zap.Error(err))
		return apperrors.NewTechnicalError("failed to check user existence", err)
	}
	if !exists {
		return apperrors.ErrUserNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.translate(err, "failed to delete user")
	}
	return nil
}

// translate maps store errors to application errors. The store's own
// not-found and uniqueness verdicts win over any earlier pre-check, which
// covers records removed or emails taken between the two round trips.
func (s *Service) translate(err error, msg string) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return apperrors.ErrUserNotFound
	case errors.Is(err, domain.ErrDuplicateEmail):
		return apperrors.ErrDuplicateEmail
	default:
		s.log.Error(msg, zap.Error(err))
		return apperrors.NewTechnicalError(msg, err)
	}
}
