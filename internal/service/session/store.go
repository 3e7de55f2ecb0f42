package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/mamadbah2/erp-avicola/internal/domain/models"
	"github.com/mamadbah2/erp-avicola/pkg/clients/supabase"
)

// Status is the authentication state of the process-wide session.
type Status string

const (
	StatusLoading       Status = "loading"
	StatusAuthenticated Status = "authenticated"
	StatusAnonymous     Status = "anonymous"
)

var (
	// ErrNotAuthenticated is returned when an operation needs a signed-in user.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrInvalidCredentials is returned when the auth service rejects an email/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Authenticator is the subset of the auth client the store drives.
type Authenticator interface {
	GetSession(ctx context.Context) (*supabase.Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*supabase.Session, error)
	SignUp(ctx context.Context, email, password string) (*supabase.User, *supabase.Session, error)
	SignOut(ctx context.Context) error
	OnAuthStateChange(listener supabase.AuthListener) func()
}

// ProfileRepository loads and creates user profiles.
type ProfileRepository interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	CreateProfile(ctx context.Context, profile models.NewProfile) (*models.Profile, error)
}

// Snapshot is a consistent view of the session state.
type Snapshot struct {
	Status  Status          `json:"status"`
	User    *supabase.User  `json:"user"`
	Profile *models.Profile `json:"profile"`
}

// Authenticated reports whether the snapshot holds a signed-in identity.
func (s Snapshot) Authenticated() bool {
	return s.Status == StatusAuthenticated && s.User != nil
}

// Role returns the profile role, or an empty role without a profile.
func (s Snapshot) Role() models.Role {
	if s.Profile == nil {
		return ""
	}
	return s.Profile.Role
}

// Listener is called after every state change with the previous and new snapshot.
type Listener func(prev, next Snapshot)

// Store holds the authenticated identity and profile for the whole process.
type Store struct {
	auth     Authenticator
	profiles ProfileRepository
	logger   *zap.Logger

	mu          sync.RWMutex
	state       Snapshot
	unsubscribe func()

	listenersMu sync.Mutex
	listeners   map[int]Listener
	nextID      int
}

// NewStore builds a store in the loading state. Call Initialize before use and
// Close on shutdown.
func NewStore(auth Authenticator, profiles ProfileRepository, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		auth:      auth,
		profiles:  profiles,
		logger:    logger,
		state:     Snapshot{Status: StatusLoading},
		listeners: make(map[int]Listener),
	}
}

// Initialize hydrates the store from any persisted session and starts
// following session changes made elsewhere (token refresh, expiry).
func (s *Store) Initialize(ctx context.Context) error {
	s.set(Snapshot{Status: StatusLoading})

	s.mu.Lock()
	if s.unsubscribe == nil {
		s.unsubscribe = s.auth.OnAuthStateChange(s.handleAuthChange)
	}
	s.mu.Unlock()

	session, err := s.auth.GetSession(ctx)
	if err != nil {
		s.set(Snapshot{Status: StatusAnonymous})
		return fmt.Errorf("initialize session: %w", err)
	}

	if session == nil || session.User == nil {
		s.set(Snapshot{Status: StatusAnonymous})
		s.logger.Info("no persisted session")
		return nil
	}

	s.populate(ctx, session.User)
	s.logger.Info("session restored", zap.String("user_id", session.User.ID))
	return nil
}

// SignIn exchanges credentials for a session and loads the matching profile.
func (s *Store) SignIn(ctx context.Context, email, password string) (Snapshot, error) {
	session, err := s.auth.SignInWithPassword(ctx, email, password)
	if err != nil {
		if isInvalidCredentials(err) {
			return s.Snapshot(), fmt.Errorf("sign in %s: %w: %w", email, ErrInvalidCredentials, err)
		}
		return s.Snapshot(), fmt.Errorf("sign in %s: %w", email, err)
	}
	if session.User == nil {
		return s.Snapshot(), fmt.Errorf("sign in %s: %w", email, ErrNotAuthenticated)
	}

	// The auth listener has usually populated the state already.
	if current := s.Snapshot(); !current.Authenticated() || current.User.ID != session.User.ID {
		s.populate(ctx, session.User)
	}

	s.logger.Info("signed in", zap.String("user_id", session.User.ID))
	return s.Snapshot(), nil
}

// SignUp creates an identity and its operator profile. A failed profile insert
// leaves the identity in place.
func (s *Store) SignUp(ctx context.Context, email, password, fullName string) (Snapshot, error) {
	user, session, err := s.auth.SignUp(ctx, email, password)
	if err != nil {
		return s.Snapshot(), fmt.Errorf("sign up %s: %w", email, err)
	}
	if user == nil {
		return s.Snapshot(), fmt.Errorf("sign up %s: no user returned", email)
	}

	profile, err := s.profiles.CreateProfile(ctx, models.NewProfile{
		ID:       user.ID,
		FullName: fullName,
		Role:     models.DefaultRole,
	})
	if err != nil {
		s.logger.Warn("identity created without profile", zap.String("user_id", user.ID), zap.Error(err))
		return s.Snapshot(), fmt.Errorf("sign up %s: %w", email, err)
	}

	if session != nil {
		s.set(Snapshot{Status: StatusAuthenticated, User: user, Profile: profile})
	}

	s.logger.Info("signed up", zap.String("user_id", user.ID), zap.Bool("confirmed", session != nil))
	return s.Snapshot(), nil
}

// SignOut ends the session. Identity and profile are cleared even when the
// remote call fails; that failure is returned.
func (s *Store) SignOut(ctx context.Context) error {
	err := s.auth.SignOut(ctx)
	s.set(Snapshot{Status: StatusAnonymous})
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}

	s.logger.Info("signed out")
	return nil
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers a listener and returns the function that removes it.
func (s *Store) Subscribe(listener Listener) func() {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = listener

	return func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()
		delete(s.listeners, id)
	}
}

// Close stops following auth changes.
func (s *Store) Close() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (s *Store) handleAuthChange(ctx context.Context, event supabase.AuthEvent, session *supabase.Session) {
	s.logger.Debug("auth state changed", zap.String("event", string(event)))

	if session == nil || session.User == nil {
		s.set(Snapshot{Status: StatusAnonymous})
		return
	}
	s.populate(ctx, session.User)
}

// populate marks the user authenticated and loads their profile. A profile that
// cannot be loaded leaves the user authenticated without one.
func (s *Store) populate(ctx context.Context, user *supabase.User) {
	profile, err := s.profiles.GetProfile(ctx, user.ID)
	if err != nil {
		s.logger.Warn("profile load failed", zap.String("user_id", user.ID), zap.Error(err))
		profile = nil
	}
	s.set(Snapshot{Status: StatusAuthenticated, User: user, Profile: profile})
}

func (s *Store) set(next Snapshot) {
	s.mu.Lock()
	prev := s.state
	s.state = next
	s.mu.Unlock()

	s.listenersMu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.listenersMu.Unlock()

	for _, l := range listeners {
		l(prev, next)
	}
}

func isInvalidCredentials(err error) bool {
	var apiErr *supabase.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Status != http.StatusBadRequest {
		return false
	}
	switch apiErr.Reason() {
	case "invalid_grant", "invalid_credentials":
		return true
	default:
		return false
	}
}
