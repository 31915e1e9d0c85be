package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/mkrasnov/contactbook/internal/models"
)

const DefaultIndex = "contacts"

// Contacts is the full-text index over contact records. A nil receiver or a
// nil ES client means search is not configured; Enabled reports which.
type Contacts struct {
	ES    *elasticsearch.Client
	Index string
}

func (s *Contacts) Enabled() bool {
	return s != nil && s.ES != nil
}

func (s *Contacts) IndexContact(ctx context.Context, contact *models.Contact) error {
	doc := map[string]interface{}{
		"id":         contact.ID,
		"first_name": contact.FirstName,
		"last_name":  contact.LastName,
		"phone":      contact.Phone,
		"email":      contact.Email,
		"user_id":    contact.UserID,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		return fmt.Errorf("encoding contact doc: %w", err)
	}

	res, err := s.ES.Index(
		s.Index,
		&buf,
		s.ES.Index.WithDocumentID(strconv.FormatUint(uint64(contact.ID), 10)),
		s.ES.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("indexing contact %d: %w", contact.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("indexing contact %d: %s", contact.ID, res.Status())
	}
	return nil
}

func (s *Contacts) DeleteContact(ctx context.Context, id uint) error {
	res, err := s.ES.Delete(
		s.Index,
		strconv.FormatUint(uint64(id), 10),
		s.ES.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("deleting contact %d from index: %w", id, err)
	}
	defer res.Body.Close()

	// 404 just means the document was never indexed.
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("deleting contact %d from index: %s", id, res.Status())
	}
	return nil
}

type hit struct {
	ID        uint   `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	UserID    uint   `json:"user_id"`
}

func (s *Contacts) Search(ctx context.Context, userID uint, query string, from, size int) (int64, []models.Contact, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": map[string]interface{}{
					"term": map[string]interface{}{"user_id": userID},
				},
				"must": map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":     query,
						"fields":    []string{"first_name^2", "last_name^2", "email"},
						"fuzziness": "AUTO",
					},
				},
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("encoding search query: %w", err)
	}

	res, err := s.ES.Search(
		s.ES.Search.WithContext(ctx),
		s.ES.Search.WithIndex(s.Index),
		s.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source hit `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	contacts := make([]models.Contact, len(r.Hits.Hits))
	for i, h := range r.Hits.Hits {
		contacts[i] = models.Contact{
			ID:        h.Source.ID,
			FirstName: h.Source.FirstName,
			LastName:  h.Source.LastName,
			Phone:     h.Source.Phone,
			Email:     h.Source.Email,
			UserID:    h.Source.UserID,
		}
	}
	return r.Hits.Total.Value, contacts, nil
}
