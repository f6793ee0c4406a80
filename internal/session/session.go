// Package session owns the console's bearer token. The token lives in
// memory for fast reads and in a single Badger key so that a process
// restart does not force the operator to log in again.
package session

import (
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

var tokenKey = []byte("session/token")

// Session is the single source of truth for the bearer token. An empty
// token means anonymous. The console never inspects or validates the token;
// an expired one surfaces as a backend rejection on the next authorized
// call.
type Session struct {
	db *badger.DB

	mu    sync.RWMutex
	token string
}

// New restores the stored token, if any, into memory.
func New(db *badger.DB) (*Session, error) {
	s := &Session{db: db}

	err := db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(tokenKey)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			s.token = string(val)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("restoring session token: %w", err)
	}
	return s, nil
}

// Login stores the token in memory and durably.
func (s *Session) Login(token string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(tokenKey, []byte(token))
	})
	if err != nil {
		return fmt.Errorf("persisting session token: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

// Logout clears memory and durable storage.
func (s *Session) Logout() error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(tokenKey)
	})
	if err != nil {
		return fmt.Errorf("clearing session token: %w", err)
	}

	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return nil
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) Authenticated() bool {
	return s.Token() != ""
}
