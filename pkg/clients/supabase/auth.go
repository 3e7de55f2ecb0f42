package supabase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// AuthEvent names a session-state transition.
type AuthEvent string

const (
	EventSignedIn       AuthEvent = "SIGNED_IN"
	EventSignedOut      AuthEvent = "SIGNED_OUT"
	EventTokenRefreshed AuthEvent = "TOKEN_REFRESHED"
)

// AuthListener is notified after every session-state transition. session is nil on sign-out.
type AuthListener func(ctx context.Context, event AuthEvent, session *Session)

// ErrNoSession is returned by operations that need a signed-in session.
var ErrNoSession = errors.New("no active session")

// AuthClient talks to the GoTrue auth API and owns the current session.
type AuthClient struct {
	httpClient *resty.Client
	anonKey    string
	storage    SessionStorage
	now        func() time.Time

	mu      sync.RWMutex
	session *Session

	listenersMu sync.Mutex
	listeners   map[int]AuthListener
	nextID      int
}

// NewAuthClient builds an auth client. A nil storage keeps the session in memory.
func NewAuthClient(baseURL, anonKey string, storage SessionStorage) *AuthClient {
	if storage == nil {
		storage = &MemoryStorage{}
	}
	return &AuthClient{
		httpClient: newHTTPClient(baseURL, authPath, anonKey),
		anonKey:    anonKey,
		storage:    storage,
		now:        time.Now,
		listeners:  make(map[int]AuthListener),
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// signUpResponse covers both shapes GoTrue returns: a session when the
// project auto-confirms, a bare user when email confirmation is pending.
type signUpResponse struct {
	Session
	ID    string `json:"id"`
	Email string `json:"email"`
}

// SignInWithPassword exchanges credentials for a session.
func (c *AuthClient) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	session := new(Session)
	apiErr := new(APIError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("grant_type", "password").
		SetBody(credentials{Email: email, Password: password}).
		SetResult(session).
		SetError(apiErr).
		Post("/token")
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("sign in: %w", apiErrorFrom(resp, apiErr))
	}

	if err := c.setSession(session); err != nil {
		return nil, err
	}
	c.emit(ctx, EventSignedIn, session)
	return session, nil
}

// SignUp creates an identity. The returned session is nil when the project
// requires email confirmation before the first sign-in.
func (c *AuthClient) SignUp(ctx context.Context, email, password string) (*User, *Session, error) {
	result := new(signUpResponse)
	apiErr := new(APIError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(credentials{Email: email, Password: password}).
		SetResult(result).
		SetError(apiErr).
		Post("/signup")
	if err != nil {
		return nil, nil, fmt.Errorf("sign up: %w", err)
	}
	if resp.IsError() {
		return nil, nil, fmt.Errorf("sign up: %w", apiErrorFrom(resp, apiErr))
	}

	if result.AccessToken == "" {
		user := result.User
		if user == nil {
			user = &User{ID: result.ID, Email: result.Email}
		}
		return user, nil, nil
	}

	session := result.Session
	if err := c.setSession(&session); err != nil {
		return nil, nil, err
	}
	c.emit(ctx, EventSignedIn, &session)
	return session.User, &session, nil
}

// SignOut revokes the current session remotely and forgets it locally. The
// local session is dropped even when the remote call fails; that error is
// still returned.
func (c *AuthClient) SignOut(ctx context.Context) error {
	c.mu.RLock()
	session := c.session
	c.mu.RUnlock()

	var remoteErr error
	if session != nil {
		remoteErr = c.revoke(ctx, session.AccessToken)
	}

	if err := c.clearSession(); err != nil {
		return err
	}
	c.emit(ctx, EventSignedOut, nil)
	return remoteErr
}

func (c *AuthClient) revoke(ctx context.Context, accessToken string) error {
	apiErr := new(APIError)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetError(apiErr).
		Post("/logout")
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	// An already revoked token is not an error.
	if resp.IsError() && resp.StatusCode() != http.StatusUnauthorized && resp.StatusCode() != http.StatusNotFound {
		return fmt.Errorf("sign out: %w", apiErrorFrom(resp, apiErr))
	}
	return nil
}

// GetSession returns the current session, hydrating it from storage on first
// use. An expired stored session is refreshed. It is discarded only when the
// auth server rejects the refresh token; other failures are returned and the
// session is kept.
func (c *AuthClient) GetSession(ctx context.Context) (*Session, error) {
	c.mu.RLock()
	session := c.session
	c.mu.RUnlock()

	if session == nil {
		stored, err := c.storage.Load()
		if err != nil {
			return nil, fmt.Errorf("load session: %w", err)
		}
		if stored == nil {
			return nil, nil
		}
		c.mu.Lock()
		c.session = stored
		c.mu.Unlock()
		session = stored
	}

	if !session.ExpiresWithin(c.now(), 0) {
		return session, nil
	}

	refreshed, err := c.refresh(ctx, session)
	if err != nil {
		if !sessionRejected(err) {
			// Keep the stored session so a later call can retry.
			return nil, err
		}
		if clearErr := c.clearSession(); clearErr != nil {
			return nil, clearErr
		}
		return nil, nil
	}
	return refreshed, nil
}

// RefreshSession exchanges the refresh token for a new access token.
func (c *AuthClient) RefreshSession(ctx context.Context) (*Session, error) {
	c.mu.RLock()
	session := c.session
	c.mu.RUnlock()

	if session == nil {
		return nil, ErrNoSession
	}
	return c.refresh(ctx, session)
}

// RefreshIfExpiring refreshes the session when its token expires within margin.
// When the auth server rejects the refresh token the session is treated as
// expired: it is cleared and listeners receive SIGNED_OUT. Network errors and
// server failures leave the session in place.
func (c *AuthClient) RefreshIfExpiring(ctx context.Context, margin time.Duration) error {
	c.mu.RLock()
	session := c.session
	c.mu.RUnlock()

	if session == nil || !session.ExpiresWithin(c.now(), margin) {
		return nil
	}

	if _, err := c.refresh(ctx, session); err != nil {
		if !sessionRejected(err) {
			return err
		}
		if clearErr := c.clearSession(); clearErr != nil {
			return clearErr
		}
		c.emit(ctx, EventSignedOut, nil)
		return fmt.Errorf("session expired: %w", err)
	}
	return nil
}

// CurrentSession returns the in-memory session without touching storage.
func (c *AuthClient) CurrentSession() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// AccessToken implements TokenSource: the session token, or the anon key when signed out.
func (c *AuthClient) AccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session != nil && c.session.AccessToken != "" {
		return c.session.AccessToken
	}
	return c.anonKey
}

// OnAuthStateChange registers a listener and returns the function that removes it.
func (c *AuthClient) OnAuthStateChange(listener AuthListener) func() {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()

	id := c.nextID
	c.nextID++
	c.listeners[id] = listener

	return func() {
		c.listenersMu.Lock()
		defer c.listenersMu.Unlock()
		delete(c.listeners, id)
	}
}

func (c *AuthClient) refresh(ctx context.Context, current *Session) (*Session, error) {
	if current.RefreshToken == "" {
		return nil, fmt.Errorf("refresh session: %w", ErrNoSession)
	}

	session := new(Session)
	apiErr := new(APIError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("grant_type", "refresh_token").
		SetBody(refreshRequest{RefreshToken: current.RefreshToken}).
		SetResult(session).
		SetError(apiErr).
		Post("/token")
	if err != nil {
		return nil, fmt.Errorf("refresh session: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("refresh session: %w", apiErrorFrom(resp, apiErr))
	}

	if session.User == nil {
		session.User = current.User
	}
	if err := c.setSession(session); err != nil {
		return nil, err
	}
	c.emit(ctx, EventTokenRefreshed, session)
	return session, nil
}

func (c *AuthClient) setSession(session *Session) error {
	if session.ExpiresAt == 0 && session.ExpiresIn > 0 {
		session.ExpiresAt = c.now().Add(time.Duration(session.ExpiresIn) * time.Second).Unix()
	}

	c.mu.Lock()
	c.session = session
	c.mu.Unlock()

	if err := c.storage.Save(session); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

func (c *AuthClient) clearSession() error {
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()

	if err := c.storage.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// sessionRejected reports whether err means the refresh token is no longer
// valid, as opposed to the auth server being unreachable or failing.
func sessionRejected(err error) bool {
	if errors.Is(err, ErrNoSession) {
		return true
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Status {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		return true
	default:
		return false
	}
}

// emit runs listeners synchronously, outside of any client lock.
func (c *AuthClient) emit(ctx context.Context, event AuthEvent, session *Session) {
	c.listenersMu.Lock()
	listeners := make([]AuthListener, 0, len(c.listeners))
	for _, l := range c.listeners {
		listeners = append(listeners, l)
	}
	c.listenersMu.Unlock()

	for _, l := range listeners {
		l(ctx, event, session)
	}
}
