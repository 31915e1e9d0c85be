package service

import (
	"context"

	"github.com/mkrasnov/contactbook/internal/logging"
	"github.com/mkrasnov/contactbook/internal/models"
	"github.com/mkrasnov/contactbook/internal/repo"
	"github.com/mkrasnov/contactbook/internal/search"
	"github.com/mkrasnov/contactbook/internal/util"
)

type ContactService struct {
	Contacts *repo.ContactRepo
	Search   *search.Contacts
}

func (s *ContactService) List(ctx context.Context, userID uint, skip, limit int, q string) ([]models.Contact, error) {
	skip, limit = util.Clamp(skip, limit)
	return s.Contacts.List(ctx, userID, skip, limit, q)
}

func (s *ContactService) Get(ctx context.Context, id, userID uint) (*models.Contact, error) {
	contact, err := s.Contacts.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, ErrNotFound
	}
	return contact, nil
}

func (s *ContactService) Create(ctx context.Context, contact *models.Contact) error {
	if err := s.Contacts.Create(ctx, contact); err != nil {
		return err
	}
	s.index(ctx, contact)
	return nil
}

func (s *ContactService) Update(ctx context.Context, id, userID uint, upd repo.ContactUpdate) (*models.Contact, error) {
	contact, err := s.Contacts.Update(ctx, id, userID, upd)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, ErrNotFound
	}
	s.index(ctx, contact)
	return contact, nil
}

func (s *ContactService) Delete(ctx context.Context, id, userID uint) (*models.Contact, error) {
	contact, err := s.Contacts.Delete(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, ErrNotFound
	}

	if s.Search.Enabled() {
		if err := s.Search.DeleteContact(ctx, contact.ID); err != nil {
			logging.FromContext(ctx).Error("search delete error", "contact_id", contact.ID, "error", err)
		}
	}
	return contact, nil
}

func (s *ContactService) Birthdays(ctx context.Context, userID uint, days int) ([]models.Contact, error) {
	return s.Contacts.Birthdays(ctx, userID, days)
}

// SearchContacts queries the full-text index; the database stays untouched.
func (s *ContactService) SearchContacts(ctx context.Context, userID uint, q string, page, size int) (int64, []models.Contact, error) {
	if !s.Search.Enabled() {
		return 0, nil, ErrUnavailable
	}
	from, size := util.Calculate(page, size)
	return s.Search.Search(ctx, userID, q, from, size)
}

// Indexing is best-effort: a search outage must not fail the write that
// already committed.
func (s *ContactService) index(ctx context.Context, contact *models.Contact) {
	if !s.Search.Enabled() {
		return
	}
	if err := s.Search.IndexContact(ctx, contact); err != nil {
		logging.FromContext(ctx).Error("search index error", "contact_id", contact.ID, "error", err)
	}
}
