package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mkrasnov/contactbook/internal/models"
)

type ContactRepo struct {
	DB *gorm.DB
}

// ContactUpdate lists exactly the mutable contact columns. Anything not
// here cannot be overwritten through the update path.
type ContactUpdate struct {
	FirstName   string       `json:"first_name"`
	LastName    string       `json:"last_name"`
	Phone       string       `json:"phone"`
	Email       string       `json:"email"`
	DateOfBirth *models.Date `json:"date_of_birth"`
}

func (r *ContactRepo) List(ctx context.Context, userID uint, offset, limit int, q string) ([]models.Contact, error) {
	tx := r.DB.WithContext(ctx).Where("user_id = ?", userID)
	if q != "" {
		like := "%" + q + "%"
		tx = tx.Where("first_name LIKE ? OR last_name LIKE ? OR email LIKE ?", like, like, like)
	}

	var contacts []models.Contact
	err := tx.Order("id").Offset(offset).Limit(limit).Find(&contacts).Error
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return contacts, nil
}

func (r *ContactRepo) Get(ctx context.Context, id, userID uint) (*models.Contact, error) {
	var contact models.Contact
	err := r.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&contact).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &contact, nil
}

func (r *ContactRepo) Create(ctx context.Context, contact *models.Contact) error {
	if err := r.DB.WithContext(ctx).Create(contact).Error; err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *ContactRepo) Update(ctx context.Context, id, userID uint, upd ContactUpdate) (*models.Contact, error) {
	contact, err := r.Get(ctx, id, userID)
	if err != nil || contact == nil {
		return nil, err
	}

	err = r.DB.WithContext(ctx).Model(contact).
		Select("first_name", "last_name", "phone", "email", "date_of_birth").
		Updates(models.Contact{
			FirstName:   upd.FirstName,
			LastName:    upd.LastName,
			Phone:       upd.Phone,
			Email:       upd.Email,
			DateOfBirth: upd.DateOfBirth,
		}).Error
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return contact, nil
}

func (r *ContactRepo) Delete(ctx context.Context, id, userID uint) (*models.Contact, error) {
	contact, err := r.Get(ctx, id, userID)
	if err != nil || contact == nil {
		return nil, err
	}
	if err := r.DB.WithContext(ctx).Delete(contact).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return contact, nil
}

// Birthdays returns the owner's contacts whose date of birth falls in
// [today, today+days], both ends inclusive. The bounds are computed in Go so
// the same query runs on Postgres and the sqlite test databases.
func (r *ContactRepo) Birthdays(ctx context.Context, userID uint, days int) ([]models.Contact, error) {
	from := models.Today()
	to := from.AddDays(days)

	var contacts []models.Contact
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND date_of_birth BETWEEN ? AND ?", userID, from.String(), to.String()).
		Order("date_of_birth").
		Find(&contacts).Error
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return contacts, nil
}
