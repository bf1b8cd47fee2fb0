package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/ovenfresh/internal/models"
)

type UserStore struct{ db *gorm.DB }

func (s *Store) Users() *UserStore { return &UserStore{db: s.DB} }

func (u *UserStore) Create(ctx context.Context, usr *models.User) error {
	return u.db.WithContext(ctx).Create(usr).Error
}

func (u *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return u.first(ctx, "id = ?", id)
}

func (u *UserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return u.first(ctx, "username = ?", username)
}

func (u *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return u.first(ctx, "email = ?", email)
}

// GetByResetTokenHash looks a user up by the stored hash of a reset token.
func (u *UserStore) GetByResetTokenHash(ctx context.Context, hash string) (*models.User, error) {
	return u.first(ctx, "reset_token_hash = ?", hash)
}

// Save persists every field of the user, including cleared nullable pairs.
func (u *UserStore) Save(ctx context.Context, usr *models.User) error {
	return u.db.WithContext(ctx).Save(usr).Error
}

func (u *UserStore) Delete(ctx context.Context, id uuid.UUID) error {
	return u.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id).Error
}

func (u *UserStore) first(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).First(&user, query, arg).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}
