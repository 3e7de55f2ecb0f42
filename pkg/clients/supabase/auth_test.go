package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type fakeGoTrue struct {
	mu            sync.Mutex
	refreshStatus int
	logoutStatus  int
	modernErrors  bool
	logouts       int
	refreshes     int
}

func (f *fakeGoTrue) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.URL.Path == "/auth/v1/token" && r.URL.Query().Get("grant_type") == "password":
			var creds credentials
			json.NewDecoder(r.Body).Decode(&creds)
			if creds.Password != "secret" {
				w.WriteHeader(http.StatusBadRequest)
				if f.modernErrors {
					w.Write([]byte(`{"code":400,"error_code":"invalid_credentials","msg":"Invalid login credentials"}`))
					return
				}
				w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid login credentials"}`))
				return
			}
			json.NewEncoder(w).Encode(Session{
				AccessToken:  "access-1",
				TokenType:    "bearer",
				ExpiresIn:    3600,
				RefreshToken: "refresh-1",
				User:         &User{ID: "user-1", Email: creds.Email},
			})
		case r.URL.Path == "/auth/v1/token" && r.URL.Query().Get("grant_type") == "refresh_token":
			f.refreshes++
			if f.refreshStatus >= http.StatusInternalServerError {
				w.WriteHeader(f.refreshStatus)
				w.Write([]byte(`{"message":"upstream unavailable"}`))
				return
			}
			if f.refreshStatus != 0 {
				w.WriteHeader(f.refreshStatus)
				w.Write([]byte(`{"error":"invalid_grant","error_description":"Refresh Token Not Found"}`))
				return
			}
			json.NewEncoder(w).Encode(Session{
				AccessToken:  "access-2",
				ExpiresIn:    3600,
				RefreshToken: "refresh-2",
			})
		case r.URL.Path == "/auth/v1/signup":
			var creds credentials
			json.NewDecoder(r.Body).Decode(&creds)
			if creds.Email == "pending@example.com" {
				w.Write([]byte(`{"id":"user-pending","email":"pending@example.com"}`))
				return
			}
			json.NewEncoder(w).Encode(Session{
				AccessToken:  "access-new",
				ExpiresIn:    3600,
				RefreshToken: "refresh-new",
				User:         &User{ID: "user-new", Email: creds.Email},
			})
		case r.URL.Path == "/auth/v1/logout":
			f.logouts++
			if r.Header.Get("Authorization") == "" {
				t.Errorf("logout without bearer token")
			}
			if f.logoutStatus != 0 {
				w.WriteHeader(f.logoutStatus)
				w.Write([]byte(`{"message":"upstream unavailable"}`))
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.String())
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func newAuthServer(t *testing.T, fake *fakeGoTrue, storage SessionStorage) *AuthClient {
	t.Helper()
	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)
	return NewAuthClient(server.URL, "anon-key", storage)
}

func TestSignInEmitsAndPersists(t *testing.T) {
	storage := &MemoryStorage{}
	client := newAuthServer(t, &fakeGoTrue{}, storage)

	var events []AuthEvent
	unsubscribe := client.OnAuthStateChange(func(ctx context.Context, event AuthEvent, session *Session) {
		events = append(events, event)
	})
	defer unsubscribe()

	session, err := client.SignInWithPassword(context.Background(), "ana@granja.mx", "secret")
	if err != nil {
		t.Fatalf("SignInWithPassword: %v", err)
	}
	if session.User == nil || session.User.ID != "user-1" {
		t.Fatalf("unexpected user %+v", session.User)
	}
	if session.ExpiresAt == 0 {
		t.Error("expected expires_at to be derived from expires_in")
	}
	if client.AccessToken() != "access-1" {
		t.Errorf("expected access-1, got %q", client.AccessToken())
	}
	stored, _ := storage.Load()
	if stored == nil || stored.AccessToken != "access-1" {
		t.Error("expected session to be persisted")
	}
	if len(events) != 1 || events[0] != EventSignedIn {
		t.Errorf("expected [SIGNED_IN], got %v", events)
	}
}

func TestSignInInvalidCredentials(t *testing.T) {
	client := newAuthServer(t, &fakeGoTrue{}, nil)

	_, err := client.SignInWithPassword(context.Background(), "ana@granja.mx", "wrong")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", apiErr.Status)
	}
	if client.CurrentSession() != nil {
		t.Error("expected no session after failed sign in")
	}
}

func TestSignInInvalidCredentialsCurrentEnvelope(t *testing.T) {
	client := newAuthServer(t, &fakeGoTrue{modernErrors: true}, nil)

	_, err := client.SignInWithPassword(context.Background(), "ana@granja.mx", "wrong")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Reason() != "invalid_credentials" {
		t.Errorf("expected invalid_credentials, got %q", apiErr.Reason())
	}
	if apiErr.Code != "400" {
		t.Errorf("expected numeric code to decode as 400, got %q", apiErr.Code)
	}
	if apiErr.Msg != "Invalid login credentials" {
		t.Errorf("unexpected message %q", apiErr.Msg)
	}
}

func TestErrorCodeDecoding(t *testing.T) {
	cases := map[string]APICode{
		`{"code":"23505"}`: "23505",
		`{"code":422}`:     "422",
		`{"code":null}`:    "",
		`{}`:               "",
	}
	for body, want := range cases {
		var apiErr APIError
		if err := json.Unmarshal([]byte(body), &apiErr); err != nil {
			t.Fatalf("Unmarshal(%s): %v", body, err)
		}
		if apiErr.Code != want {
			t.Errorf("%s: expected %q, got %q", body, want, apiErr.Code)
		}
	}
}

func TestSignOutClearsSession(t *testing.T) {
	fake := &fakeGoTrue{}
	storage := &MemoryStorage{}
	client := newAuthServer(t, fake, storage)

	client.SignInWithPassword(context.Background(), "ana@granja.mx", "secret")

	var last AuthEvent
	client.OnAuthStateChange(func(ctx context.Context, event AuthEvent, session *Session) {
		last = event
		if session != nil {
			t.Error("expected nil session on sign out")
		}
	})

	if err := client.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if fake.logouts != 1 {
		t.Errorf("expected 1 logout call, got %d", fake.logouts)
	}
	if client.AccessToken() != "anon-key" {
		t.Errorf("expected anon key after sign out, got %q", client.AccessToken())
	}
	if stored, _ := storage.Load(); stored != nil {
		t.Error("expected storage to be cleared")
	}
	if last != EventSignedOut {
		t.Errorf("expected SIGNED_OUT, got %q", last)
	}
}

func TestSignOutRemoteFailureStillClears(t *testing.T) {
	fake := &fakeGoTrue{logoutStatus: http.StatusBadGateway}
	storage := &MemoryStorage{}
	client := newAuthServer(t, fake, storage)
	client.SignInWithPassword(context.Background(), "ana@granja.mx", "secret")

	err := client.SignOut(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadGateway {
		t.Fatalf("expected 502 APIError, got %v", err)
	}
	if client.CurrentSession() != nil {
		t.Error("expected local session to be dropped")
	}
	if stored, _ := storage.Load(); stored != nil {
		t.Error("expected storage to be cleared")
	}
}

func TestSignUpPendingConfirmation(t *testing.T) {
	client := newAuthServer(t, &fakeGoTrue{}, nil)

	user, session, err := client.SignUp(context.Background(), "pending@example.com", "secret")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if session != nil {
		t.Error("expected no session while confirmation is pending")
	}
	if user == nil || user.ID != "user-pending" {
		t.Errorf("unexpected user %+v", user)
	}

	user, session, err = client.SignUp(context.Background(), "new@example.com", "secret")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if session == nil || user.ID != "user-new" {
		t.Errorf("expected auto-confirmed session, got %+v %+v", user, session)
	}
}

func TestRefreshIfExpiring(t *testing.T) {
	fake := &fakeGoTrue{}
	storage := &MemoryStorage{}
	storage.Save(&Session{
		AccessToken:  "old",
		RefreshToken: "refresh-1",
		ExpiresAt:    time.Now().Add(30 * time.Second).Unix(),
		User:         &User{ID: "user-1"},
	})
	client := newAuthServer(t, fake, storage)

	if _, err := client.GetSession(context.Background()); err != nil {
		t.Fatalf("GetSession: %v", err)
	}

	if err := client.RefreshIfExpiring(context.Background(), time.Second); err != nil {
		t.Fatalf("RefreshIfExpiring: %v", err)
	}
	if fake.refreshes != 0 {
		t.Errorf("expected no refresh outside margin, got %d", fake.refreshes)
	}

	if err := client.RefreshIfExpiring(context.Background(), time.Minute); err != nil {
		t.Fatalf("RefreshIfExpiring: %v", err)
	}
	if client.AccessToken() != "access-2" {
		t.Errorf("expected refreshed token, got %q", client.AccessToken())
	}
	if got := client.CurrentSession().User; got == nil || got.ID != "user-1" {
		t.Error("expected user to be carried over on refresh")
	}
}

func TestRefreshFailureSignsOut(t *testing.T) {
	fake := &fakeGoTrue{refreshStatus: http.StatusBadRequest}
	storage := &MemoryStorage{}
	client := newAuthServer(t, fake, storage)
	client.SignInWithPassword(context.Background(), "ana@granja.mx", "secret")

	var events []AuthEvent
	client.OnAuthStateChange(func(ctx context.Context, event AuthEvent, session *Session) {
		events = append(events, event)
	})

	if err := client.RefreshIfExpiring(context.Background(), 2*time.Hour); err == nil {
		t.Fatal("expected error for failed refresh")
	}
	if client.CurrentSession() != nil {
		t.Error("expected session to be cleared")
	}
	if len(events) != 1 || events[0] != EventSignedOut {
		t.Errorf("expected [SIGNED_OUT], got %v", events)
	}
}

func TestGetSessionDropsUnrefreshableSession(t *testing.T) {
	fake := &fakeGoTrue{refreshStatus: http.StatusBadRequest}
	storage := &MemoryStorage{}
	storage.Save(&Session{AccessToken: "stale", RefreshToken: "r", ExpiresAt: time.Now().Add(-time.Hour).Unix()})
	client := newAuthServer(t, fake, storage)

	session, err := client.GetSession(context.Background())
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if session != nil {
		t.Error("expected expired session to be discarded")
	}
}

func TestRefreshOutageKeepsSession(t *testing.T) {
	for _, status := range []int{http.StatusServiceUnavailable, http.StatusBadGateway} {
		fake := &fakeGoTrue{refreshStatus: status}
		storage := &MemoryStorage{}
		client := newAuthServer(t, fake, storage)
		client.SignInWithPassword(context.Background(), "ana@granja.mx", "secret")

		var events []AuthEvent
		client.OnAuthStateChange(func(ctx context.Context, event AuthEvent, session *Session) {
			events = append(events, event)
		})

		err := client.RefreshIfExpiring(context.Background(), 2*time.Hour)
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.Status != status {
			t.Fatalf("%d: expected APIError with the server status, got %v", status, err)
		}
		if client.CurrentSession() == nil {
			t.Errorf("%d: expected session to survive the outage", status)
		}
		if stored, _ := storage.Load(); stored == nil {
			t.Errorf("%d: expected stored session to survive the outage", status)
		}
		if len(events) != 0 {
			t.Errorf("%d: expected no events, got %v", status, events)
		}
	}
}

func TestGetSessionKeepsStoredSessionDuringOutage(t *testing.T) {
	fake := &fakeGoTrue{refreshStatus: http.StatusBadGateway}
	storage := &MemoryStorage{}
	storage.Save(&Session{AccessToken: "stale", RefreshToken: "r", ExpiresAt: time.Now().Add(-time.Hour).Unix()})
	client := newAuthServer(t, fake, storage)

	session, err := client.GetSession(context.Background())
	if err == nil {
		t.Fatal("expected the refresh failure to be returned")
	}
	if session != nil {
		t.Errorf("expected no usable session, got %+v", session)
	}
	if stored, _ := storage.Load(); stored == nil || stored.RefreshToken != "r" {
		t.Error("expected stored session to be kept for a later retry")
	}

	fake.mu.Lock()
	fake.refreshStatus = 0
	fake.mu.Unlock()

	session, err = client.GetSession(context.Background())
	if err != nil {
		t.Fatalf("GetSession after recovery: %v", err)
	}
	if session == nil || session.AccessToken != "access-2" {
		t.Errorf("expected refreshed session after recovery, got %+v", session)
	}
}

func TestUnsubscribe(t *testing.T) {
	client := newAuthServer(t, &fakeGoTrue{}, nil)

	calls := 0
	unsubscribe := client.OnAuthStateChange(func(ctx context.Context, event AuthEvent, session *Session) {
		calls++
	})
	unsubscribe()

	client.SignInWithPassword(context.Background(), "ana@granja.mx", "secret")
	if calls != 0 {
		t.Errorf("expected no calls after unsubscribe, got %d", calls)
	}
}

func TestTokenExpiryFromClaims(t *testing.T) {
	exp := time.Now().Add(10 * time.Minute).Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := token.SignedString([]byte("any"))
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}

	session := &Session{AccessToken: signed}
	got, err := session.Expiry()
	if err != nil {
		t.Fatalf("Expiry: %v", err)
	}
	if !got.Equal(exp) {
		t.Errorf("expected %v, got %v", exp, got)
	}
	if session.ExpiresWithin(time.Now(), time.Minute) {
		t.Error("expected token not to expire within a minute")
	}
	if !session.ExpiresWithin(time.Now(), time.Hour) {
		t.Error("expected token to expire within an hour")
	}

	if !(&Session{AccessToken: "opaque"}).ExpiresWithin(time.Now(), 0) {
		t.Error("expected unparseable tokens to count as expiring")
	}
}

func TestFileStorageRoundTrip(t *testing.T) {
	storage := NewFileStorage(filepath.Join(t.TempDir(), "nested", "session.json"))

	if s, err := storage.Load(); err != nil || s != nil {
		t.Fatalf("expected empty storage, got %v %v", s, err)
	}

	if err := storage.Save(&Session{AccessToken: "tok", User: &User{ID: "u"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	s, err := storage.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.AccessToken != "tok" || s.User.ID != "u" {
		t.Errorf("unexpected session %+v", s)
	}

	if err := storage.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := storage.Clear(); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
	if s, _ := storage.Load(); s != nil {
		t.Error("expected nil after clear")
	}
}
