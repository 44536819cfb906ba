package session

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Mushfiqur07/roadeside-sub002/internal/api"
	"github.com/Mushfiqur07/roadeside-sub002/internal/models"
	"github.com/Mushfiqur07/roadeside-sub002/pkg/logger"
)

// State is the snapshot emitted to observers.
type State struct {
	IsAuthenticated bool
	IsLoading       bool
	User            *models.Principal
}

// Session is the single source of truth for the authenticated
// principal. It implements api.TokenSource and registers itself as the
// client's 401 hook, so any unauthorized response invalidates it.
type Session struct {
	mu        sync.RWMutex
	user      *models.Principal
	token     string
	loading   bool
	store     Store
	auth      *api.AuthService
	log       *logger.Logger
	observers []func(State)
}

func New(store Store, log *logger.Logger) *Session {
	return &Session{
		store: store,
		log:   log.WithField("component", "session"),
	}
}

// Bind wires the session to the api client both ways: token source and
// unauthorized hook. Call once at bootstrap before any request.
func (s *Session) Bind(client *api.Client) {
	s.auth = client.Auth
	client.SetUnauthorizedHook(s.invalidate)
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) Current() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		IsAuthenticated: s.user != nil,
		IsLoading:       s.loading,
		User:            s.user,
	}
}

// OnChange registers an observer invoked after every state change.
func (s *Session) OnChange(fn func(State)) {
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

func (s *Session) Login(ctx context.Context, email, password string) (*models.Principal, error) {
	s.setLoading(true)
	defer s.setLoading(false)

	resp, err := s.auth.Login(ctx, &api.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	s.establish(&resp.User, resp.Token)
	s.log.WithUserID(resp.User.ID).WithField("role", resp.User.Role).Info("Logged in")
	return &resp.User, nil
}

func (s *Session) Register(ctx context.Context, req *api.RegisterRequest) (*models.Principal, error) {
	s.setLoading(true)
	defer s.setLoading(false)

	resp, err := s.auth.Register(ctx, req)
	if err != nil {
		return nil, err
	}

	s.establish(&resp.User, resp.Token)
	s.log.WithUserID(resp.User.ID).Info("Registered")
	return &resp.User, nil
}

func (s *Session) Logout() {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.mu.Unlock()

	if err := s.store.Clear(); err != nil {
		s.log.WithError(err).Warn("Failed to clear persisted token")
	}
	s.log.Info("Logged out")
	s.notify()
}

// Restore rebuilds the session from the persisted token on app start.
// Expired tokens are dropped locally before any network call; a live
// token is resolved to a principal via auth/me.
func (s *Session) Restore(ctx context.Context) error {
	s.setLoading(true)
	defer s.setLoading(false)

	token, err := s.store.Load()
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}

	if expired(token) {
		s.log.Debug("Persisted token expired, clearing")
		return s.store.Clear()
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	user, err := s.auth.Me(ctx)
	if err != nil {
		if api.IsUnauthorized(err) {
			// invalidate already ran via the 401 hook
			return nil
		}
		s.mu.Lock()
		s.token = ""
		s.mu.Unlock()
		return err
	}

	user.Token = token
	s.establish(user, token)
	s.log.WithUserID(user.ID).Info("Session restored")
	return nil
}

func (s *Session) establish(user *models.Principal, token string) {
	s.mu.Lock()
	s.user = user
	s.token = token
	s.mu.Unlock()

	if err := s.store.Save(token); err != nil {
		s.log.WithError(err).Warn("Failed to persist token")
	}
	s.notify()
}

// invalidate handles any 401 from the backend: drop the principal and
// the persisted token.
func (s *Session) invalidate() {
	s.mu.Lock()
	hadUser := s.user != nil
	s.user = nil
	s.token = ""
	s.mu.Unlock()

	if err := s.store.Clear(); err != nil {
		s.log.WithError(err).Warn("Failed to clear persisted token")
	}
	if hadUser {
		s.log.Warn("Session invalidated by unauthorized response")
	}
	s.notify()
}

func (s *Session) setLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
	s.notify()
}

func (s *Session) notify() {
	state := s.Current()
	s.mu.RLock()
	observers := make([]func(State), len(s.observers))
	copy(observers, s.observers)
	s.mu.RUnlock()

	for _, fn := range observers {
		fn(state)
	}
}

// expired parses the token without verifying the signature; only the
// exp claim matters client-side, the server remains authoritative.
func expired(token string) bool {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
