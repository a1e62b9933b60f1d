// Package session owns the authenticated session: it logs in, registers
// organizations, logs out, and re-validates a persisted credential at
// startup.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/nhle/careboard/internal/api"
	"github.com/nhle/careboard/internal/credential"
	"github.com/nhle/careboard/internal/model"
	"github.com/nhle/careboard/internal/notify"
)

// MinPasswordLength is the shortest admin password accepted at registration.
const MinPasswordLength = 8

// Validation messages shown to the user.
const (
	MsgMissingCredentials = "Please enter both email and password"
	MsgMissingFields      = "Please fill in all fields"
	MsgPasswordTooShort   = "Password must be at least 8 characters"
)

// ValidationError is a client-side rejection raised before any request.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

// CredentialStore persists the token and profile together.
type CredentialStore interface {
	Save(sess model.Session) error
	Load() (*model.Session, error)
	Clear() error
}

// Manager is the session store. It is safe for concurrent use.
type Manager struct {
	client   *api.Client
	creds    CredentialStore
	notifier notify.Notifier

	mu      sync.RWMutex
	current *model.Session
}

// NewManager creates a Manager. client must be unauthenticated; the
// Manager derives authenticated clients from it.
func NewManager(client *api.Client, creds CredentialStore, notifier notify.Notifier) *Manager {
	return &Manager{
		client:   client,
		creds:    creds,
		notifier: notifier,
	}
}

// Current returns the active session, if any.
func (m *Manager) Current() (model.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return model.Session{}, false
	}
	return *m.current, true
}

// Authenticated reports whether a session is active.
func (m *Manager) Authenticated() bool {
	_, ok := m.Current()
	return ok
}

// Client returns an API client carrying the active session's bearer token,
// or an unauthenticated client when logged out.
func (m *Manager) Client() *api.Client {
	sess, ok := m.Current()
	if !ok {
		return m.client
	}
	return m.client.WithToken(sess.Token)
}

// Login authenticates with email and password. Validation failures return
// *ValidationError without contacting the server; rejected credentials
// return *api.AuthenticationError. Every failure is also reported as an
// error notification, and the error is returned so callers can react.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return m.reject(&ValidationError{Message: MsgMissingCredentials})
	}

	resp, err := m.client.Login(ctx, api.Credentials{Email: email, Password: password})
	if err != nil {
		return m.fail(err, "Login failed")
	}

	if err := m.establish(resp); err != nil {
		return m.fail(err, "Login failed")
	}

	m.notifier.Enqueue(fmt.Sprintf("Welcome back, %s!", displayName(resp.User)), model.NotificationSuccess)
	return nil
}

// Register creates an organization with its admin account and signs in as
// that admin. It follows the same contract as Login.
func (m *Manager) Register(ctx context.Context, reg model.OrganizationRegistration) error {
	reg.OrganizationName = strings.TrimSpace(reg.OrganizationName)
	reg.AdminName = strings.TrimSpace(reg.AdminName)
	reg.AdminEmail = strings.TrimSpace(reg.AdminEmail)

	if err := ValidateRegistration(reg); err != nil {
		return m.reject(err)
	}

	resp, err := m.client.RegisterOrganization(ctx, reg)
	if err != nil {
		return m.fail(err, "Registration failed")
	}

	if err := m.establish(resp); err != nil {
		return m.fail(err, "Registration failed")
	}

	m.notifier.Enqueue(
		fmt.Sprintf("Organization %s registered", reg.OrganizationName),
		model.NotificationSuccess,
	)
	return nil
}

// ValidateRegistration checks required fields and password length.
func ValidateRegistration(reg model.OrganizationRegistration) error {
	if strings.TrimSpace(reg.OrganizationName) == "" ||
		strings.TrimSpace(reg.AdminName) == "" ||
		strings.TrimSpace(reg.AdminEmail) == "" ||
		reg.AdminPassword == "" {
		return &ValidationError{Message: MsgMissingFields}
	}
	if utf8.RuneCountInString(reg.AdminPassword) < MinPasswordLength {
		return &ValidationError{Message: MsgPasswordTooShort}
	}
	return nil
}

// Logout clears the persisted credential and the in-memory session. It
// never contacts the server.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()

	if err := m.creds.Clear(); err != nil {
		log.Printf("clearing persisted session: %v", err)
	}
}

// Restore re-validates a persisted credential by probing the API. It
// returns true when a session was restored. Any failure clears the
// persisted credential, leaves the Manager logged out, and is returned
// for logging; the absence of a persisted session is not an error.
func (m *Manager) Restore(ctx context.Context) (bool, error) {
	sess, err := m.creds.Load()
	if err != nil {
		m.clearPersisted()
		if errors.Is(err, credential.ErrNoSession) {
			return false, nil
		}
		return false, fmt.Errorf("loading persisted session: %w", err)
	}

	if err := m.client.WithToken(sess.Token).VerifyToken(ctx); err != nil {
		m.clearPersisted()
		return false, fmt.Errorf("verifying persisted session: %w", err)
	}

	m.mu.Lock()
	m.current = sess
	m.mu.Unlock()
	return true, nil
}

// establish persists the session and makes it current. Persisting comes
// first so a session is never active without being saved.
func (m *Manager) establish(resp *api.AuthResponse) error {
	sess := model.Session{Token: resp.Token, User: resp.User}
	if sess.Token == "" {
		return errors.New("server returned an empty token")
	}
	if err := m.creds.Save(sess); err != nil {
		return fmt.Errorf("persisting session: %w", err)
	}

	m.mu.Lock()
	m.current = &sess
	m.mu.Unlock()
	return nil
}

func (m *Manager) clearPersisted() {
	if err := m.creds.Clear(); err != nil {
		log.Printf("clearing persisted session: %v", err)
	}
}

func (m *Manager) reject(err error) error {
	m.notifier.Enqueue(err.Error(), model.NotificationError)
	return err
}

func (m *Manager) fail(err error, fallback string) error {
	m.notifier.Enqueue(api.ServerMessage(err, fallback), model.NotificationError)
	return err
}

func displayName(u model.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
