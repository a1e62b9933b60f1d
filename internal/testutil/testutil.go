// Package testutil holds shared test fixtures.
package testutil

import (
	"testing"

	"github.com/99designs/keyring"

	"github.com/nhle/careboard/internal/credential"
	"github.com/nhle/careboard/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// NewCredentialStore returns a credential store backed by an in-memory
// keyring, so tests never touch the real system keyring.
func NewCredentialStore(t *testing.T) *credential.Store {
	t.Helper()
	return credential.NewStore(keyring.NewArrayKeyring(nil))
}
