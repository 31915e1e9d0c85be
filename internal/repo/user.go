package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mkrasnov/contactbook/internal/models"
)

type UserRepo struct {
	DB *gorm.DB
}

// lookup methods return (nil, nil) when no row matches so callers can
// distinguish "absent" from a database failure.

func (r *UserRepo) ByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &user, nil
}

func (r *UserRepo) ByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &user, nil
}

func (r *UserRepo) ByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &user, nil
}

// ByUsernameAndToken matches a user only when the presented refresh token is
// the one currently stored on the row. This is what makes refresh tokens
// single-valued per user and revocable by clearing the column.
func (r *UserRepo) ByUsernameAndToken(ctx context.Context, username, token string) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).
		Where("username = ? AND refresh_token = ?", username, token).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &user, nil
}

func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	if err := r.DB.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// SaveRefreshToken stores token on the user row; nil clears it (logout).
func (r *UserRepo) SaveRefreshToken(ctx context.Context, user *models.User, token *string) error {
	err := r.DB.WithContext(ctx).Model(user).Update("refresh_token", token).Error
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	user.RefreshToken = token
	return nil
}

func (r *UserRepo) UpdatePassword(ctx context.Context, email, hashedPassword string) (*models.User, error) {
	user, err := r.ByEmail(ctx, email)
	if err != nil || user == nil {
		return nil, err
	}
	if err := r.DB.WithContext(ctx).Model(user).Update("hashed_password", hashedPassword).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	user.HashedPassword = hashedPassword
	return user, nil
}

func (r *UserRepo) UpdateAvatar(ctx context.Context, email, avatarURL string) (*models.User, error) {
	user, err := r.ByEmail(ctx, email)
	if err != nil || user == nil {
		return nil, err
	}
	if err := r.DB.WithContext(ctx).Model(user).Update("avatar", avatarURL).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	user.Avatar = &avatarURL
	return user, nil
}

func (r *UserRepo) UpdateRole(ctx context.Context, id uint, role string) (*models.User, error) {
	user, err := r.ByID(ctx, id)
	if err != nil || user == nil {
		return nil, err
	}
	if err := r.DB.WithContext(ctx).Model(user).Update("role", role).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	user.Role = role
	return user, nil
}

func (r *UserRepo) List(ctx context.Context, offset, limit int) ([]models.User, error) {
	var users []models.User
	err := r.DB.WithContext(ctx).
		Order("id").
		Offset(offset).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return users, nil
}

// Delete removes a user row. No route exposes this today.
func (r *UserRepo) Delete(ctx context.Context, id uint) (*models.User, error) {
	user, err := r.ByID(ctx, id)
	if err != nil || user == nil {
		return nil, err
	}
	if err := r.DB.WithContext(ctx).Delete(user).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}
