package credential

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/99designs/keyring"

	"github.com/nhle/careboard/internal/model"
)

const serviceName = "careboard"

// Fixed keys under which the session is persisted.
const (
	TokenKey = "auth-token"
	UserKey  = "auth-user"
)

// ErrNoSession is returned by Load when no complete session is persisted.
var ErrNoSession = errors.New("no persisted session")

// Store persists the session credential as two keyring entries: the raw
// token and the JSON-encoded user profile. The two are always written and
// removed together.
type Store struct {
	ring keyring.Keyring
}

// Open returns a Store backed by the system keyring. The encrypted file
// backend under dir is used when no native keyring is available.
func Open(dir string) (*Store, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  filepath.Join(dir, "credentials"),
		FilePasswordFunc:         keyring.FixedStringPrompt("careboard-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return NewStore(ring), nil
}

// NewStore wraps an already opened keyring.
func NewStore(ring keyring.Keyring) *Store {
	return &Store{ring: ring}
}

// Save persists the token and user. If the user entry cannot be written
// the token entry is removed again.
func (s *Store) Save(sess model.Session) error {
	userJSON, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("encoding user profile: %w", err)
	}

	if err := s.ring.Set(keyring.Item{Key: TokenKey, Data: []byte(sess.Token)}); err != nil {
		return fmt.Errorf("setting credential %q: %w", TokenKey, err)
	}

	if err := s.ring.Set(keyring.Item{Key: UserKey, Data: userJSON}); err != nil {
		_ = s.ring.Remove(TokenKey)
		return fmt.Errorf("setting credential %q: %w", UserKey, err)
	}

	return nil
}

// Load returns the persisted session. ErrNoSession is returned when either
// entry is missing; the caller decides whether to clear the leftover.
func (s *Store) Load() (*model.Session, error) {
	token, err := s.get(TokenKey)
	if err != nil {
		return nil, err
	}
	userJSON, err := s.get(UserKey)
	if err != nil {
		return nil, err
	}
	if len(token) == 0 || len(userJSON) == 0 {
		return nil, ErrNoSession
	}

	var user model.User
	if err := json.Unmarshal(userJSON, &user); err != nil {
		return nil, fmt.Errorf("decoding persisted user profile: %w", err)
	}

	return &model.Session{Token: string(token), User: user}, nil
}

// Clear removes both entries. Missing entries are not an error.
func (s *Store) Clear() error {
	var errs []error
	for _, key := range []string{TokenKey, UserKey} {
		err := s.ring.Remove(key)
		if err != nil && !isNotFound(err) {
			errs = append(errs, fmt.Errorf("deleting credential %q: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// Has reports whether key is currently persisted.
func (s *Store) Has(key string) bool {
	_, err := s.ring.Get(key)
	return err == nil
}

func (s *Store) get(key string) ([]byte, error) {
	item, err := s.ring.Get(key)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("getting credential %q: %w", key, err)
	}
	return item.Data, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, keyring.ErrKeyNotFound)
}
