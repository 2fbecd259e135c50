package localstore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/romeoalpha/admin/internal/model"
)

const proposalPrefix = "proposal:"

// ProposalStore holds partnership proposals submitted through the public form.
type ProposalStore struct {
	db  *badger.DB
	now func() time.Time
}

// NewProposalStore creates a ProposalStore on db.
func NewProposalStore(db *badger.DB) *ProposalStore {
	return &ProposalStore{db: db, now: time.Now}
}

// List returns proposals in submission order.
func (s *ProposalStore) List() ([]model.PartnershipProposal, error) {
	out := []model.PartnershipProposal{}
	err := scan(s.db, proposalPrefix, func(val []byte) error {
		var p model.PartnershipProposal
		if err := json.Unmarshal(val, &p); err != nil {
			return err
		}
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	return out, nil
}

// Submit stores p, assigning its id and submission date.
func (s *ProposalStore) Submit(p model.PartnershipProposal) (model.PartnershipProposal, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return model.PartnershipProposal{}, err
	}
	p.ID = id.String()
	p.Date = s.now().UTC()
	if err := s.db.Update(func(txn *badger.Txn) error {
		return put(txn, proposalPrefix+p.ID, p)
	}); err != nil {
		return model.PartnershipProposal{}, fmt.Errorf("submit proposal: %w", err)
	}
	return p, nil
}
