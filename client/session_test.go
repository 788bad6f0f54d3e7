package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeAdapter scripts auth outcomes without a backend.
type fakeAdapter struct {
	session    *Session
	signInErr  error
	signUpErr  error
	signOutErr error
	listeners  []func(*Session)
}

func (f *fakeAdapter) SignUp(ctx context.Context, firstName, lastName, email, password string) (*Session, error) {
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	f.session = &Session{
		Email:       email,
		FirstName:   firstName,
		LastName:    lastName,
		DisplayName: firstName + " " + lastName,
	}
	return f.session, nil
}

func (f *fakeAdapter) SignIn(ctx context.Context, email, password string) (*Session, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	f.session = &Session{UserID: "user-1", Email: email}
	return f.session, nil
}

func (f *fakeAdapter) SignOut(ctx context.Context) error {
	if f.signOutErr != nil {
		return f.signOutErr
	}
	f.session = nil
	return nil
}

func (f *fakeAdapter) Token(ctx context.Context) (string, error) {
	return "fake-token", nil
}

func (f *fakeAdapter) Subscribe(fn func(*Session)) func() {
	f.listeners = append(f.listeners, fn)
	fn(f.session)
	return func() {}
}

func TestSessionContextInitialState(t *testing.T) {
	t.Run("no existing session", func(t *testing.T) {
		sc := NewSessionContext(&fakeAdapter{})
		defer sc.Close()
		require.False(t, sc.Loading(), "subscribe resolves loading immediately")
		require.Equal(t, StateAnonymous, sc.State())
		require.Nil(t, sc.Session())
	})

	t.Run("restored session", func(t *testing.T) {
		adapter := &fakeAdapter{session: &Session{UserID: "user-1", Email: "a@b.c"}}
		sc := NewSessionContext(adapter)
		defer sc.Close()
		require.Equal(t, StateAuthenticated, sc.State())
		require.Equal(t, "a@b.c", sc.Session().Email)
	})
}

func TestSessionContextLogin(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		sc := NewSessionContext(&fakeAdapter{})
		defer sc.Close()

		require.NoError(t, sc.Login(context.Background(), "a@b.c", "secret123"))
		require.Equal(t, StateAuthenticated, sc.State())
		require.Equal(t, "a@b.c", sc.Session().Email)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		adapter := &fakeAdapter{signInErr: &AuthError{Code: "invalid_credentials"}}
		sc := NewSessionContext(adapter)
		defer sc.Close()

		err := sc.Login(context.Background(), "a@b.c", "wrong")
		require.EqualError(t, err, "Incorrect email or password.")
		require.Equal(t, StateAnonymous, sc.State(), "a failed login leaves state untouched")
		require.Nil(t, sc.Session())
	})

	t.Run("unknown code maps to the generic message", func(t *testing.T) {
		adapter := &fakeAdapter{signInErr: &AuthError{Code: "totally_new_code"}}
		sc := NewSessionContext(adapter)
		defer sc.Close()

		err := sc.Login(context.Background(), "a@b.c", "pw")
		require.EqualError(t, err, "Something went wrong. Please try again.")
	})
}

func TestSessionContextSignup(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		sc := NewSessionContext(&fakeAdapter{})
		defer sc.Close()

		require.NoError(t, sc.Signup(context.Background(), "Ada", "Lovelace", "ada@b.c", "secret123"))
		require.Equal(t, StateAuthenticated, sc.State())
		require.Equal(t, "Ada Lovelace", sc.Session().DisplayName)
	})

	t.Run("weak password", func(t *testing.T) {
		adapter := &fakeAdapter{signUpErr: &AuthError{Code: "weak_password"}}
		sc := NewSessionContext(adapter)
		defer sc.Close()

		err := sc.Signup(context.Background(), "Ada", "Lovelace", "ada@b.c", "short")
		require.EqualError(t, err, "Password must be at least 8 characters long.")
		require.Equal(t, StateAnonymous, sc.State())
	})
}

func TestSessionContextLogout(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		adapter := &fakeAdapter{session: &Session{UserID: "user-1"}}
		sc := NewSessionContext(adapter)
		defer sc.Close()

		require.NoError(t, sc.Logout(context.Background()))
		require.Equal(t, StateAnonymous, sc.State())
		require.Nil(t, sc.Session())
	})

	t.Run("failure keeps the session", func(t *testing.T) {
		adapter := &fakeAdapter{
			session:    &Session{UserID: "user-1"},
			signOutErr: &AuthError{Code: "network_error"},
		}
		sc := NewSessionContext(adapter)
		defer sc.Close()

		err := sc.Logout(context.Background())
		require.EqualError(t, err, "Network error. Please check your connection and try again.")
		require.Equal(t, StateAuthenticated, sc.State())
	})
}

func TestSessionCopyIsIsolated(t *testing.T) {
	adapter := &fakeAdapter{session: &Session{UserID: "user-1", Email: "a@b.c"}}
	sc := NewSessionContext(adapter)
	defer sc.Close()

	got := sc.Session()
	got.Email = "mutated@b.c"
	require.Equal(t, "a@b.c", sc.Session().Email)
}
