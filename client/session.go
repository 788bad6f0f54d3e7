package client

import (
	"context"
	"errors"
	"sync"
)

type SessionState int

const (
	// StateUnknown is the initial state while the adapter restores any
	// existing session.
	StateUnknown SessionState = iota
	StateAuthenticated
	StateAnonymous
)

// SessionContext is the single owner of page-lifetime auth state. It is the
// sole subscriber of the adapter's session listener; UI code reads from it
// and drives it only through Login, Signup and Logout.
type SessionContext struct {
	adapter AuthAdapter

	mu      sync.Mutex
	session *Session
	state   SessionState
	loading bool

	unsubscribe func()
}

func NewSessionContext(adapter AuthAdapter) *SessionContext {
	sc := &SessionContext{
		adapter: adapter,
		state:   StateUnknown,
		loading: true,
	}
	sc.unsubscribe = adapter.Subscribe(sc.onSessionChange)
	return sc
}

// Close detaches the context from the adapter's notifications.
func (sc *SessionContext) Close() {
	if sc.unsubscribe != nil {
		sc.unsubscribe()
		sc.unsubscribe = nil
	}
}

func (sc *SessionContext) onSessionChange(session *Session) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.setLocked(session)
}

func (sc *SessionContext) setLocked(session *Session) {
	sc.session = session
	sc.loading = false
	if session != nil {
		sc.state = StateAuthenticated
	} else {
		sc.state = StateAnonymous
	}
}

// Login delegates to the adapter. On failure the returned error carries a
// fixed user-facing message and local state is left untouched.
func (sc *SessionContext) Login(ctx context.Context, email, password string) error {
	session, err := sc.adapter.SignIn(ctx, email, password)
	if err != nil {
		return errors.New(UserMessage(err))
	}

	sc.mu.Lock()
	sc.setLocked(session)
	sc.mu.Unlock()
	return nil
}

// Signup mirrors Login and threads the name fields into the new session.
func (sc *SessionContext) Signup(ctx context.Context, firstName, lastName, email, password string) error {
	session, err := sc.adapter.SignUp(ctx, firstName, lastName, email, password)
	if err != nil {
		return errors.New(UserMessage(err))
	}

	sc.mu.Lock()
	sc.setLocked(session)
	sc.mu.Unlock()
	return nil
}

// Logout clears the session only when the adapter confirms the sign-out.
func (sc *SessionContext) Logout(ctx context.Context) error {
	if err := sc.adapter.SignOut(ctx); err != nil {
		return errors.New(UserMessage(err))
	}

	sc.mu.Lock()
	sc.setLocked(nil)
	sc.mu.Unlock()
	return nil
}

func (sc *SessionContext) State() SessionState {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.state
}

func (sc *SessionContext) Loading() bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.loading
}

// Session returns a copy of the current session, or nil when signed out.
func (sc *SessionContext) Session() *Session {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.session == nil {
		return nil
	}
	copied := *sc.session
	return &copied
}
