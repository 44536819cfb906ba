package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mushfiqur07/roadeside-sub002/internal/api"
	"github.com/Mushfiqur07/roadeside-sub002/internal/config"
	"github.com/Mushfiqur07/roadeside-sub002/internal/models"
	"github.com/Mushfiqur07/roadeside-sub002/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Format: "text", Output: "stderr"})
	require.NoError(t, err)
	return log
}

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func writeEnvelope(w http.ResponseWriter, status int, envelope models.Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope)
}

func newBoundSession(t *testing.T, handler http.Handler) (*Session, *FileStore) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := NewFileStore(filepath.Join(t.TempDir(), "token"))
	sess := New(store, testLogger(t))
	client := api.NewClient(&config.APIConfig{BaseURL: server.URL, Timeout: 5 * time.Second}, sess, testLogger(t))
	sess.Bind(client)
	return sess, store
}

func TestFileStoreRoundTrip(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "nested", "token"))

	token, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, token, "missing file reads as no token")

	require.NoError(t, store.Save("abc123"))
	token, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)

	require.NoError(t, store.Clear())
	token, err = store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	// clearing twice is fine
	require.NoError(t, store.Clear())
}

func TestLoginEstablishesSession(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		data, _ := json.Marshal(api.AuthResponse{
			Token: "tok-1",
			User:  models.Principal{ID: "u1", Name: "Rahim", Role: models.RoleUser},
		})
		writeEnvelope(w, http.StatusOK, models.Envelope{Success: true, Data: data})
	})
	sess, store := newBoundSession(t, handler)

	var states []State
	sess.OnChange(func(s State) { states = append(states, s) })

	user, err := sess.Login(context.Background(), "rahim@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	state := sess.Current()
	assert.True(t, state.IsAuthenticated)
	assert.False(t, state.IsLoading)
	assert.Equal(t, models.RoleUser, state.User.Role)
	assert.Equal(t, "tok-1", sess.Token())

	persisted, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-1", persisted)

	assert.NotEmpty(t, states, "observers must see the state change")
}

func TestLoginFailureLeavesSessionEmpty(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, models.Envelope{Success: false, Message: "bad credentials"})
	})
	sess, _ := newBoundSession(t, handler)

	_, err := sess.Login(context.Background(), "rahim@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
	assert.False(t, sess.Current().IsAuthenticated)
	assert.Empty(t, sess.Token())
}

func TestRestoreExpiredTokenClearsWithoutNetwork(t *testing.T) {
	var calls atomic.Int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeEnvelope(w, http.StatusOK, models.Envelope{Success: true})
	})
	sess, store := newBoundSession(t, handler)

	require.NoError(t, store.Save(signedToken(t, time.Now().Add(-time.Hour))))

	require.NoError(t, sess.Restore(context.Background()))
	assert.False(t, sess.Current().IsAuthenticated)
	assert.Empty(t, sess.Token())
	assert.Equal(t, int64(0), calls.Load(), "expired token must be dropped locally")

	persisted, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

func TestRestoreLiveTokenResolvesPrincipal(t *testing.T) {
	token := ""
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/me", r.URL.Path)
		require.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))
		data, _ := json.Marshal(models.Principal{ID: "u1", Name: "Rahim", Role: models.RoleMechanic})
		writeEnvelope(w, http.StatusOK, models.Envelope{Success: true, Data: data})
	})
	sess, store := newBoundSession(t, handler)

	token = signedToken(t, time.Now().Add(time.Hour))
	require.NoError(t, store.Save(token))

	require.NoError(t, sess.Restore(context.Background()))
	state := sess.Current()
	require.True(t, state.IsAuthenticated)
	assert.Equal(t, models.RoleMechanic, state.User.Role)
	assert.Equal(t, token, sess.Token())
}

func TestRestoreRejectedTokenInvalidates(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, models.Envelope{Success: false, Message: "revoked"})
	})
	sess, store := newBoundSession(t, handler)

	require.NoError(t, store.Save(signedToken(t, time.Now().Add(time.Hour))))

	require.NoError(t, sess.Restore(context.Background()))
	assert.False(t, sess.Current().IsAuthenticated)
	assert.Empty(t, sess.Token())

	persisted, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, persisted, "401 hook must clear the persisted token")
}

func TestUnauthorizedResponseInvalidatesSession(t *testing.T) {
	authorized := true
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			data, _ := json.Marshal(api.AuthResponse{Token: "tok-1", User: models.Principal{ID: "u1", Role: models.RoleUser}})
			writeEnvelope(w, http.StatusOK, models.Envelope{Success: true, Data: data})
		default:
			if authorized {
				writeEnvelope(w, http.StatusOK, models.Envelope{Success: true})
			} else {
				writeEnvelope(w, http.StatusUnauthorized, models.Envelope{Success: false, Message: "expired"})
			}
		}
	})

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := NewFileStore(filepath.Join(t.TempDir(), "token"))
	sess := New(store, testLogger(t))
	client := api.NewClient(&config.APIConfig{BaseURL: server.URL, Timeout: 5 * time.Second}, sess, testLogger(t))
	sess.Bind(client)

	_, err := sess.Login(context.Background(), "rahim@example.com", "secret1")
	require.NoError(t, err)
	require.True(t, sess.Current().IsAuthenticated)

	authorized = false
	_, err = client.Auth.Me(context.Background())
	require.Error(t, err)

	assert.False(t, sess.Current().IsAuthenticated)
	assert.Empty(t, sess.Token())
}

func TestLogoutClearsEverything(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := json.Marshal(api.AuthResponse{Token: "tok-1", User: models.Principal{ID: "u1", Role: models.RoleUser}})
		writeEnvelope(w, http.StatusOK, models.Envelope{Success: true, Data: data})
	})
	sess, store := newBoundSession(t, handler)

	_, err := sess.Login(context.Background(), "rahim@example.com", "secret1")
	require.NoError(t, err)

	sess.Logout()
	assert.False(t, sess.Current().IsAuthenticated)
	assert.Empty(t, sess.Token())

	persisted, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, persisted)
}
