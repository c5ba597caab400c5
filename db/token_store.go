package db

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// DefaultTokenKey is the storage slot holding the bearer session token.
const DefaultTokenKey = "auth_token"

// TokenStore keeps the session token in a single badger key. It satisfies
// httpclient.TokenStore.
type TokenStore struct {
	db  *badger.DB
	key []byte
}

func NewTokenStore(database *badger.DB, key string) *TokenStore {
	if key == "" {
		key = DefaultTokenKey
	}
	return &TokenStore{db: database, key: []byte(key)}
}

// Key returns the storage key in use.
func (s *TokenStore) Key() string {
	return string(s.key)
}

// Token returns the stored token, or "" when the slot is empty.
func (s *TokenStore) Token() (string, error) {
	var token string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			token = string(val)
			return nil
		})
	})
	if err != nil {
		return "", fmt.Errorf("error reading session token: %w", err)
	}
	return token, nil
}

// SetToken stores token. An empty token removes the slot instead.
func (s *TokenStore) SetToken(token string) error {
	if token == "" {
		return s.ClearToken()
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.key, []byte(token))
	})
	if err != nil {
		return fmt.Errorf("error storing session token: %w", err)
	}
	return nil
}

func (s *TokenStore) ClearToken() error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(s.key)
	})
	if err != nil {
		return fmt.Errorf("error clearing session token: %w", err)
	}
	return nil
}
