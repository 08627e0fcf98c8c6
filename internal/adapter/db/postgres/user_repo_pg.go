package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"user-crud-service/internal/domain/user"
	"user-crud-service/pkg/security"
)

const uniqueViolationCode = "23505"

// sortColumns whitelists the columns a list may be ordered by.
var sortColumns = map[user.SortField]string{
	user.SortByID:    "id",
	user.SortByName:  "name",
	user.SortByEmail: "email",
}

// UserRepoPG implements the record store on top of GORM. It runs against
// PostgreSQL in production and SQLite in tests and local runs.
type UserRepoPG struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewUserRepoPG creates a new instance of UserRepoPG.
func NewUserRepoPG(db *gorm.DB, log *zap.Logger) *UserRepoPG {
	return &UserRepoPG{db: db, log: log}
}

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID    int64  `gorm:"primaryKey;autoIncrement"`
	Name  string `gorm:"size:100;not null"`
	Email string `gorm:"size:255;not null;uniqueIndex"`
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

// AutoMigrate creates the users table from UserSchema. Used for SQLite databases,
// PostgreSQL is migrated with the embedded SQL migrations.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&UserSchema{})
}

func (m UserSchema) toDomain() *user.User {
	return &user.User{ID: m.ID, Name: m.Name, Email: m.Email}
}

// Create inserts a new user and returns it with its generated ID.
func (r *UserRepoPG) Create(ctx context.Context, u *user.User) (*user.User, error) {
	if u == nil {
		return nil, errors.New("user cannot be nil")
	}

	model := UserSchema{Name: u.Name, Email: u.Email}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			r.log.Warn("duplicate email rejected by store", zap.String("email", u.Email))
			return nil, user.ErrDuplicateEmail
		}
		r.log.Error("failed to create user in db", zap.Error(err), zap.String("email", u.Email))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	r.log.Info("user created in db", zap.Int64("id", model.ID))
	return model.toDomain(), nil
}

// Update writes the non-nil fields of upd to the user with the given ID and returns the result.
func (r *UserRepoPG) Update(ctx context.Context, id int64, upd user.Update) (*user.User, error) {
	updates := make(map[string]any, 2)
	if upd.Name != nil {
		updates["name"] = *upd.Name
	}
	if upd.Email != nil {
		updates["email"] = *upd.Email
	}
	if len(updates) == 0 {
		return r.GetByID(ctx, id)
	}

	res := r.db.WithContext(ctx).Model(&UserSchema{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			r.log.Warn("duplicate email rejected by store", zap.Int64("id", id))
			return nil, user.ErrDuplicateEmail
		}
		r.log.Error("failed to update user in db", zap.Error(res.Error), zap.Int64("id", id))
		return nil, fmt.Errorf("failed to update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, user.ErrNotFound
	}

	r.log.Info("user updated in db", zap.Int64("id", id))
	return r.GetByID(ctx, id)
}

// Delete removes a user by ID. Returns user.ErrNotFound when nothing was deleted.
func (r *UserRepoPG) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&UserSchema{}, id)
	if res.Error != nil {
		r.log.Error("failed to delete user in db", zap.Error(res.Error), zap.Int64("id", id))
		return fmt.Errorf("failed to delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return user.ErrNotFound
	}

	r.log.Info("user deleted in db", zap.Int64("id", id))
	return nil
}

// GetByID retrieves a user by ID. Returns user.ErrNotFound when absent.
func (r *UserRepoPG) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found", zap.Int64("id", id))
			return nil, user.ErrNotFound
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return model.toDomain(), nil
}

// GetByEmail retrieves a user by email. Returns nil, nil when absent.
func (r *UserRepoPG) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found by email", zap.String("email", email))
			return nil, nil
		}
		r.log.Error("failed to get user by email from db", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return model.toDomain(), nil
}

// List returns users matching f, ordered and paged as f requests.
func (r *UserRepoPG) List(ctx context.Context, f user.ListFilter) ([]user.User, error) {
	q := r.db.WithContext(ctx).Model(&UserSchema{})

	if f.Email != "" {
		q = q.Where("email = ?", f.Email)
	}
	if f.Name != "" {
		q = q.Where("name = ?", f.Name)
	}
	if f.Search != "" {
		pattern := security.ContainsPattern(f.Search)
		// fold the pattern with the same LOWER as the columns; SQLite only folds ASCII
		q = q.Where(`(LOWER(name) LIKE LOWER(CAST(? AS TEXT)) ESCAPE '\' OR LOWER(email) LIKE LOWER(CAST(? AS TEXT)) ESCAPE '\')`, pattern, pattern)
	}

	column, ok := sortColumns[f.SortBy]
	if !ok {
		column = "id"
	}
	q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: f.SortOrder == user.SortDesc})
	if column != "id" {
		q = q.Order("id")
	}

	var models []UserSchema
	if err := q.Limit(f.Limit).Offset(f.Offset).Find(&models).Error; err != nil {
		r.log.Error("failed to list users from db", zap.Error(err),
			zap.String("sort_by", column), zap.Int("limit", f.Limit), zap.Int("offset", f.Offset))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]user.User, len(models))
	for i, model := range models {
		users[i] = *model.toDomain()
	}

	return users, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolationCode
	}
	// SQLite without error translation
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
