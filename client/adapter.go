package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
)

// AuthAdapter wraps the hosted auth backend. Session-change notifications go
// to subscribers; Subscribe delivers the current session immediately so a
// new subscriber can resolve its loading state.
type AuthAdapter interface {
	SignUp(ctx context.Context, firstName, lastName, email, password string) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context) error

	// Token returns a fresh session token. Implementations must not cache
	// tokens across calls.
	Token(ctx context.Context) (string, error)

	// Subscribe registers a session listener and returns its unsubscribe
	// handle. A nil session means signed out.
	Subscribe(fn func(*Session)) (unsubscribe func())
}

// HTTPAuthAdapter implements AuthAdapter against the Glacier Care auth
// endpoints, holding the refresh token and exchanging it for a fresh access
// token on every Token call.
type HTTPAuthAdapter struct {
	baseURL string
	http    *http.Client

	mu           sync.Mutex
	session      *Session
	deviceID     string
	refreshToken string
	listeners    map[int]func(*Session)
	nextListener int
}

func NewHTTPAuthAdapter(baseURL string, httpClient *http.Client) *HTTPAuthAdapter {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPAuthAdapter{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		http:      httpClient,
		listeners: map[int]func(*Session){},
	}
}

type wireUser struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DisplayName string `json:"displayName"`
}

type wireAuthData struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	DeviceID     string   `json:"deviceId"`
	User         wireUser `json:"user"`
}

func (a *HTTPAuthAdapter) SignUp(ctx context.Context, firstName, lastName, email, password string) (*Session, error) {
	return a.authenticate(ctx, "/auth/register", map[string]string{
		"email":     email,
		"password":  password,
		"firstName": firstName,
		"lastName":  lastName,
	})
}

func (a *HTTPAuthAdapter) SignIn(ctx context.Context, email, password string) (*Session, error) {
	return a.authenticate(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

func (a *HTTPAuthAdapter) authenticate(ctx context.Context, path string, payload map[string]string) (*Session, error) {
	var data wireAuthData
	if err := a.post(ctx, path, payload, &data); err != nil {
		return nil, err
	}

	session := &Session{
		UserID:      data.User.ID,
		Email:       data.User.Email,
		DisplayName: data.User.DisplayName,
		FirstName:   data.User.FirstName,
		LastName:    data.User.LastName,
	}

	a.mu.Lock()
	a.session = session
	a.deviceID = data.DeviceID
	a.refreshToken = data.RefreshToken
	listeners := a.snapshotListeners()
	a.mu.Unlock()

	notify(listeners, session)
	return session, nil
}

func (a *HTTPAuthAdapter) SignOut(ctx context.Context) error {
	a.mu.Lock()
	session := a.session
	deviceID := a.deviceID
	a.mu.Unlock()

	if session == nil {
		return nil
	}

	if err := a.post(ctx, "/auth/logout", map[string]string{
		"userId":   session.UserID,
		"deviceId": deviceID,
	}, nil); err != nil {
		return err
	}

	a.mu.Lock()
	a.session = nil
	a.deviceID = ""
	a.refreshToken = ""
	listeners := a.snapshotListeners()
	a.mu.Unlock()

	notify(listeners, nil)
	return nil
}

// Token exchanges the refresh token for a fresh access token. Nothing is
// cached: every call hits the auth backend.
func (a *HTTPAuthAdapter) Token(ctx context.Context) (string, error) {
	a.mu.Lock()
	session := a.session
	deviceID := a.deviceID
	refreshToken := a.refreshToken
	a.mu.Unlock()

	if session == nil || refreshToken == "" {
		return "", &AuthError{Code: "not_authenticated"}
	}

	var data wireAuthData
	if err := a.post(ctx, "/auth/refresh", map[string]string{
		"userId":       session.UserID,
		"deviceId":     deviceID,
		"refreshToken": refreshToken,
	}, &data); err != nil {
		return "", err
	}

	a.mu.Lock()
	a.refreshToken = data.RefreshToken
	a.mu.Unlock()

	return data.AccessToken, nil
}

func (a *HTTPAuthAdapter) Subscribe(fn func(*Session)) func() {
	a.mu.Lock()
	id := a.nextListener
	a.nextListener++
	a.listeners[id] = fn
	current := a.session
	a.mu.Unlock()

	// immediate delivery stands in for the provider's session restore
	fn(current)

	return func() {
		a.mu.Lock()
		delete(a.listeners, id)
		a.mu.Unlock()
	}
}

func (a *HTTPAuthAdapter) snapshotListeners() []func(*Session) {
	listeners := make([]func(*Session), 0, len(a.listeners))
	for _, fn := range a.listeners {
		listeners = append(listeners, fn)
	}
	return listeners
}

func notify(listeners []func(*Session), session *Session) {
	for _, fn := range listeners {
		fn(session)
	}
}

func (a *HTTPAuthAdapter) post(ctx context.Context, path string, payload map[string]string, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		return &AuthError{Code: "network_error"}
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return &AuthError{Code: "invalid_response"}
	}

	if env.Status != "success" {
		return &AuthError{Code: env.Error}
	}

	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &AuthError{Code: "invalid_response"}
		}
	}
	return nil
}
