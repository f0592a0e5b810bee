package service

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

	"github.com/dtroode/painel-admin/internal/navigation"
	"github.com/dtroode/painel-admin/internal/session"
	"github.com/dtroode/painel-admin/internal/storage/memory"
	"github.com/dtroode/painel-admin/internal/testutil"
)

type recordingNotifier struct {
	mu     sync.Mutex
	errors []string
}

func (n *recordingNotifier) Success(string) {}

func (n *recordingNotifier) Error(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, msg)
}

func (n *recordingNotifier) Errors() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.errors...)
}

type manualScheduler struct {
	scheduled atomic.Int32
}

func (s *manualScheduler) AfterFunc(time.Duration, func()) func() bool {
	s.scheduled.Add(1)
	return func() bool { return true }
}

type fixture struct {
	mux       *http.ServeMux
	server    *httptest.Server
	client    *session.Client
	auth      *Auth
	tokens    *memory.TokenStore
	profiles  *memory.ProfileStore
	scheduler *manualScheduler
	notifier  *recordingNotifier
	navigator *navigation.Tracker
	fetches   atomic.Int32
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		mux:       http.NewServeMux(),
		tokens:    memory.NewTokenStore(),
		profiles:  memory.NewProfileStore(),
		scheduler: &manualScheduler{},
		notifier:  &recordingNotifier{},
	}
	f.mux.HandleFunc(session.PathCSRFToken, func(w http.ResponseWriter, r *http.Request) {
		f.fetches.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{
			"sucesso": true,
			"dados":   map[string]any{"csrf_token": "tok-1"},
		})
	})
	f.server = httptest.NewServer(f.mux)
	t.Cleanup(f.server.Close)

	log := testutil.MakeNoopLogger()
	f.navigator = navigation.NewTracker("/dashboard.html", log)
	client, err := session.New(f.server.URL, nil, f.tokens, f.profiles, log,
		session.WithNotifier(f.notifier),
		session.WithNavigator(f.navigator),
		session.WithScheduler(f.scheduler),
		session.WithLogout(func(ctx context.Context) { f.auth.EndSession(ctx) }),
	)
	require.NoError(t, err)
	f.client = client
	f.auth = NewAuth(client, log)
	return f
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
