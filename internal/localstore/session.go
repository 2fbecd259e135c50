package localstore

import (
	"errors"

	"github.com/dgraph-io/badger/v4"
)

var sessionKey = []byte("session:token")

// SessionStore persists the operator's session token.
type SessionStore struct {
	db *badger.DB
}

// NewSessionStore creates a SessionStore on db.
func NewSessionStore(db *badger.DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) Token() (string, bool, error) {
	var token string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey)
		if err != nil {
			return err
		}
		v, err := item.ValueCopy(nil)
		token = string(v)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return token, token != "", nil
}

func (s *SessionStore) Set(token string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(sessionKey, []byte(token))
	})
}

func (s *SessionStore) Clear() error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(sessionKey)
	})
}
