package localstore

import (
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/romeoalpha/admin/internal/model"
)

const faqPrefix = "faq:"

// FaqStore is the FAQ cache. Ids are time-ordered so a prefix scan returns
// entries in creation order.
type FaqStore struct {
	db *badger.DB
}

// NewFaqStore creates a FaqStore on db.
func NewFaqStore(db *badger.DB) *FaqStore {
	return &FaqStore{db: db}
}

// List returns every FAQ entry in creation order.
func (s *FaqStore) List() ([]model.FaqEntry, error) {
	faqs := []model.FaqEntry{}
	err := scan(s.db, faqPrefix, func(val []byte) error {
		var f model.FaqEntry
		if err := json.Unmarshal(val, &f); err != nil {
			return err
		}
		faqs = append(faqs, f)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list faqs: %w", err)
	}
	return faqs, nil
}

// Create stores a new entry and returns it with its id.
func (s *FaqStore) Create(fields model.FaqFields) (model.FaqEntry, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return model.FaqEntry{}, err
	}
	f := model.FaqEntry{ID: id.String(), Question: fields.Question, Answer: fields.Answer}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return put(txn, faqPrefix+f.ID, f)
	}); err != nil {
		return model.FaqEntry{}, fmt.Errorf("create faq: %w", err)
	}
	return f, nil
}

// Update replaces question and answer of entry id.
func (s *FaqStore) Update(id string, fields model.FaqFields) (model.FaqEntry, error) {
	var f model.FaqEntry
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := get(txn, faqPrefix+id, &f); err != nil {
			return err
		}
		f.Question = fields.Question
		f.Answer = fields.Answer
		return put(txn, faqPrefix+id, f)
	})
	if err != nil {
		return model.FaqEntry{}, fmt.Errorf("update faq %s: %w", id, err)
	}
	return f, nil
}

// Delete removes entry id. Removing a missing entry is not an error.
func (s *FaqStore) Delete(id string) error {
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(faqPrefix + id))
	}); err != nil {
		return fmt.Errorf("delete faq %s: %w", id, err)
	}
	return nil
}
