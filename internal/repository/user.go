package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/gemmarket/internal/models"
)

// UserFilter narrows the admin user listing.
type UserFilter struct {
	Search string
	Role   string
	Page   int
	Limit  int
}

// UserRepository is the data access of accounts.
type UserRepository struct {
	crud[models.User]
}

// NewUserRepository constructs UserRepository.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{crud[models.User]{db: db}}
}

// List returns one page of users, newest first.
func (r *UserRepository) List(ctx context.Context, f UserFilter) ([]models.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.User{})
	if search := strings.TrimSpace(f.Search); search != "" {
		q := containsPattern(search)
		query = query.Where("(LOWER(name) LIKE ?"+likeEscape+
			" OR LOWER(email) LIKE ?"+likeEscape+
			" OR LOWER(COALESCE(phone, '')) LIKE ?"+likeEscape+")", q, q, q)
	}
	if f.Role != "" {
		query = query.Where("role = ?", f.Role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if f.Page > 1 {
		offset = (f.Page - 1) * limit
	}

	var users []models.User
	if err := query.Order("created_at desc").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Get loads a user by id.
func (r *UserRepository) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.get(ctx, id)
}

// GetByEmail loads a user by email, case-insensitively.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("LOWER(email) = ?", lower(email)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a user. Duplicate email, username or phone surfaces as
// gorm.ErrDuplicatedKey.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.create(ctx, user)
}

// Update applies a partial update.
func (r *UserRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.User, error) {
	return r.update(ctx, id, updates)
}

// Delete removes a user. Listings the user sells are deleted with it.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.get(ctx, id); err != nil {
		return err
	}
	if err := NewProductRepository(r.db).DeleteBySeller(ctx, id); err != nil {
		return err
	}
	return r.delete(ctx, id)
}

// Count returns the number of users.
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	return r.count(ctx)
}
