package session

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/mamadbah2/erp-avicola/internal/domain/models"
	"github.com/mamadbah2/erp-avicola/pkg/clients/supabase"
)

type fakeAuth struct {
	session    *supabase.Session
	getErr     error
	signInErr  error
	signUpErr  error
	signOutErr error
	pending    bool

	listeners map[int]supabase.AuthListener
	nextID    int
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{listeners: make(map[int]supabase.AuthListener)}
}

func (f *fakeAuth) GetSession(ctx context.Context) (*supabase.Session, error) {
	return f.session, f.getErr
}

func (f *fakeAuth) SignInWithPassword(ctx context.Context, email, password string) (*supabase.Session, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	f.session = &supabase.Session{AccessToken: "tok", User: &supabase.User{ID: "user-1", Email: email}}
	f.emit(ctx, supabase.EventSignedIn, f.session)
	return f.session, nil
}

func (f *fakeAuth) SignUp(ctx context.Context, email, password string) (*supabase.User, *supabase.Session, error) {
	if f.signUpErr != nil {
		return nil, nil, f.signUpErr
	}
	user := &supabase.User{ID: "user-new", Email: email}
	if f.pending {
		return user, nil, nil
	}
	f.session = &supabase.Session{AccessToken: "tok", User: user}
	f.emit(ctx, supabase.EventSignedIn, f.session)
	return user, f.session, nil
}

func (f *fakeAuth) SignOut(ctx context.Context) error {
	f.session = nil
	f.emit(ctx, supabase.EventSignedOut, nil)
	return f.signOutErr
}

func (f *fakeAuth) OnAuthStateChange(listener supabase.AuthListener) func() {
	id := f.nextID
	f.nextID++
	f.listeners[id] = listener
	return func() { delete(f.listeners, id) }
}

func (f *fakeAuth) emit(ctx context.Context, event supabase.AuthEvent, session *supabase.Session) {
	for _, l := range f.listeners {
		l(ctx, event, session)
	}
}

type fakeProfiles struct {
	profiles  map[string]*models.Profile
	getErr    error
	createErr error
	created   []models.NewProfile
	gets      int
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{profiles: map[string]*models.Profile{
		"user-1": {ID: "user-1", FullName: "Ana López", Role: models.RoleAdmin},
	}}
}

func (f *fakeProfiles) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.profiles[userID], nil
}

func (f *fakeProfiles) CreateProfile(ctx context.Context, p models.NewProfile) (*models.Profile, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, p)
	profile := &models.Profile{ID: p.ID, FullName: p.FullName, Role: p.Role}
	f.profiles[p.ID] = profile
	return profile, nil
}

func TestNewStoreStartsLoading(t *testing.T) {
	store := NewStore(newFakeAuth(), newFakeProfiles(), nil)
	if got := store.Snapshot().Status; got != StatusLoading {
		t.Errorf("expected loading, got %q", got)
	}
}

func TestInitializeWithoutSession(t *testing.T) {
	store := NewStore(newFakeAuth(), newFakeProfiles(), nil)

	if err := store.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	snap := store.Snapshot()
	if snap.Status != StatusAnonymous || snap.User != nil || snap.Profile != nil {
		t.Errorf("expected empty anonymous state, got %+v", snap)
	}
}

func TestInitializeRestoresSession(t *testing.T) {
	auth := newFakeAuth()
	auth.session = &supabase.Session{AccessToken: "tok", User: &supabase.User{ID: "user-1"}}
	store := NewStore(auth, newFakeProfiles(), nil)

	if err := store.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	snap := store.Snapshot()
	if !snap.Authenticated() {
		t.Fatalf("expected authenticated, got %+v", snap)
	}
	if snap.Role() != models.RoleAdmin {
		t.Errorf("expected admin role, got %q", snap.Role())
	}
}

func TestInitializeErrorEndsAnonymous(t *testing.T) {
	auth := newFakeAuth()
	auth.getErr = errors.New("disk")
	store := NewStore(auth, newFakeProfiles(), nil)

	if err := store.Initialize(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if got := store.Snapshot().Status; got != StatusAnonymous {
		t.Errorf("expected anonymous, got %q", got)
	}
}

func TestMissingProfileStillAuthenticates(t *testing.T) {
	auth := newFakeAuth()
	auth.session = &supabase.Session{User: &supabase.User{ID: "user-without-profile"}}
	profiles := newFakeProfiles()
	store := NewStore(auth, profiles, nil)
	store.Initialize(context.Background())

	snap := store.Snapshot()
	if !snap.Authenticated() || snap.Profile != nil {
		t.Errorf("expected authenticated without profile, got %+v", snap)
	}
}

func TestSignInLoadsProfileOnce(t *testing.T) {
	profiles := newFakeProfiles()
	store := NewStore(newFakeAuth(), profiles, nil)
	store.Initialize(context.Background())

	snap, err := store.SignIn(context.Background(), "ana@granja.mx", "secret")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if snap.Profile == nil || snap.Profile.FullName != "Ana López" {
		t.Errorf("unexpected profile %+v", snap.Profile)
	}
	if profiles.gets != 1 {
		t.Errorf("expected 1 profile load, got %d", profiles.gets)
	}
}

func TestSignInInvalidCredentials(t *testing.T) {
	auth := newFakeAuth()
	auth.signInErr = &supabase.APIError{Status: http.StatusBadRequest, ErrorCode: "invalid_grant"}
	store := NewStore(auth, newFakeProfiles(), nil)
	store.Initialize(context.Background())

	_, err := store.SignIn(context.Background(), "ana@granja.mx", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	var apiErr *supabase.APIError
	if !errors.As(err, &apiErr) {
		t.Error("expected the API error to stay reachable")
	}
	if got := store.Snapshot().Status; got != StatusAnonymous {
		t.Errorf("expected anonymous, got %q", got)
	}
}

func TestSignInInvalidCredentialsErrorCode(t *testing.T) {
	auth := newFakeAuth()
	auth.signInErr = &supabase.APIError{Status: http.StatusBadRequest, Code: "400", AuthErrorCode: "invalid_credentials"}
	store := NewStore(auth, newFakeProfiles(), nil)
	store.Initialize(context.Background())

	if _, err := store.SignIn(context.Background(), "ana@granja.mx", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSignUpCreatesOperatorProfile(t *testing.T) {
	profiles := newFakeProfiles()
	store := NewStore(newFakeAuth(), profiles, nil)
	store.Initialize(context.Background())

	snap, err := store.SignUp(context.Background(), "new@granja.mx", "secret", "Luis Pérez")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if len(profiles.created) != 1 {
		t.Fatalf("expected 1 profile insert, got %d", len(profiles.created))
	}
	created := profiles.created[0]
	if created.ID != "user-new" || created.Role != models.RoleOperator || created.FullName != "Luis Pérez" {
		t.Errorf("unexpected profile payload %+v", created)
	}
	if !snap.Authenticated() || snap.Profile == nil || snap.Profile.Role != models.RoleOperator {
		t.Errorf("expected authenticated operator, got %+v", snap)
	}
}

func TestSignUpPendingConfirmationStaysAnonymous(t *testing.T) {
	auth := newFakeAuth()
	auth.pending = true
	profiles := newFakeProfiles()
	store := NewStore(auth, profiles, nil)
	store.Initialize(context.Background())

	snap, err := store.SignUp(context.Background(), "new@granja.mx", "secret", "Luis Pérez")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if snap.Status != StatusAnonymous {
		t.Errorf("expected anonymous, got %q", snap.Status)
	}
	if len(profiles.created) != 1 {
		t.Errorf("expected profile to be created, got %d", len(profiles.created))
	}
}

func TestSignUpProfileFailurePropagates(t *testing.T) {
	profiles := newFakeProfiles()
	profiles.createErr = errors.New("insert failed")
	store := NewStore(newFakeAuth(), profiles, nil)
	store.Initialize(context.Background())

	if _, err := store.SignUp(context.Background(), "new@granja.mx", "secret", "Luis"); err == nil {
		t.Fatal("expected error")
	}
}

func TestSignOutAlwaysClears(t *testing.T) {
	cases := []struct {
		name       string
		signedIn   bool
		signOutErr error
	}{
		{name: "signed in", signedIn: true},
		{name: "remote failure", signedIn: true, signOutErr: errors.New("network")},
		{name: "already anonymous"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			auth := newFakeAuth()
			auth.signOutErr = tc.signOutErr
			store := NewStore(auth, newFakeProfiles(), nil)
			store.Initialize(context.Background())
			if tc.signedIn {
				store.SignIn(context.Background(), "ana@granja.mx", "secret")
			}

			err := store.SignOut(context.Background())
			if (err != nil) != (tc.signOutErr != nil) {
				t.Errorf("unexpected error %v", err)
			}
			snap := store.Snapshot()
			if snap.Status != StatusAnonymous || snap.User != nil || snap.Profile != nil {
				t.Errorf("expected cleared state, got %+v", snap)
			}
		})
	}
}

func TestExternalExpiryGoesAnonymous(t *testing.T) {
	auth := newFakeAuth()
	store := NewStore(auth, newFakeProfiles(), nil)
	store.Initialize(context.Background())
	store.SignIn(context.Background(), "ana@granja.mx", "secret")

	auth.emit(context.Background(), supabase.EventSignedOut, nil)

	if got := store.Snapshot().Status; got != StatusAnonymous {
		t.Errorf("expected anonymous after expiry, got %q", got)
	}
}

func TestSubscribeAndClose(t *testing.T) {
	auth := newFakeAuth()
	store := NewStore(auth, newFakeProfiles(), nil)

	var transitions []Status
	unsubscribe := store.Subscribe(func(prev, next Snapshot) {
		transitions = append(transitions, next.Status)
	})

	store.Initialize(context.Background())
	store.SignIn(context.Background(), "ana@granja.mx", "secret")
	unsubscribe()
	store.SignOut(context.Background())

	want := []Status{StatusLoading, StatusAnonymous, StatusAuthenticated}
	if len(transitions) != len(want) {
		t.Fatalf("expected %v, got %v", want, transitions)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition %d: expected %q, got %q", i, want[i], transitions[i])
		}
	}

	store.Close()
	if len(auth.listeners) != 0 {
		t.Errorf("expected auth listener to be removed, %d left", len(auth.listeners))
	}
}
