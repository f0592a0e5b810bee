package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dtroode/painel-admin/internal/model"
	"github.com/dtroode/painel-admin/internal/storage/memory"
	"github.com/dtroode/painel-admin/internal/testutil"
)

type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (n *recordingNotifier) Success(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, message)
}

func (n *recordingNotifier) Error(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, message)
}

func (n *recordingNotifier) Errors() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.errors...)
}

type fakeNavigator struct {
	mu        sync.Mutex
	location  string
	navigated []string
}

func (n *fakeNavigator) Location() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.location
}

func (n *fakeNavigator) Navigate(target string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.location = target
	n.navigated = append(n.navigated, target)
}

func (n *fakeNavigator) Navigated() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.navigated...)
}

type fakeScheduler struct {
	mu        sync.Mutex
	calls     int
	delay     time.Duration
	fn        func()
	cancelled bool
}

func (s *fakeScheduler) AfterFunc(d time.Duration, fn func()) func() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.delay = d
	s.fn = fn
	return func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.cancelled = true
		return true
	}
}

func (s *fakeScheduler) fire() {
	s.mu.Lock()
	fn := s.fn
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// backend is an httptest server with a CSRF token endpoint that counts hits.
type backend struct {
	*httptest.Server
	mux          *http.ServeMux
	tokenFetches atomic.Int32
	token        string
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{mux: http.NewServeMux(), token: "fresh-token"}
	b.mux.HandleFunc(PathCSRFToken, func(w http.ResponseWriter, r *http.Request) {
		b.tokenFetches.Add(1)
		if b.token == "" {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"sucesso": false, "erro": "indisponível"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"sucesso": true,
			"dados":   map[string]any{"csrf_token": b.token},
		})
	})
	b.Server = newServer(t, b.mux)
	return b
}

func newServer(t *testing.T, h http.Handler) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

type testClient struct {
	*Client
	tokens    *memory.TokenStore
	profiles  *memory.ProfileStore
	notifier  *recordingNotifier
	navigator *fakeNavigator
	scheduler *fakeScheduler
}

func newTestClient(t *testing.T, baseURL string, opts ...Option) *testClient {
	t.Helper()
	tc := &testClient{
		tokens:    memory.NewTokenStore(),
		profiles:  memory.NewProfileStore(),
		notifier:  &recordingNotifier{},
		navigator: &fakeNavigator{location: "/clientes.html"},
		scheduler: &fakeScheduler{},
	}
	all := append([]Option{
		WithNotifier(tc.notifier),
		WithNavigator(tc.navigator),
		WithScheduler(tc.scheduler),
	}, opts...)

	c, err := New(baseURL, nil, tc.tokens, tc.profiles, testutil.MakeNoopLogger(), all...)
	require.NoError(t, err)
	tc.Client = c
	return tc
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func mustCachedToken(t *testing.T, c *testClient) string {
	t.Helper()
	token, err := c.tokens.Get(context.Background())
	if err != nil {
		require.ErrorIs(t, err, model.ErrNotFound)
		return ""
	}
	return token
}
