package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/planner/internal/config"
	"github.com/gosuda/planner/internal/domain"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type fakeTasks struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*domain.Task
}

func (f *fakeTasks) Create(_ context.Context, t *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[t.ID] = t
	return nil
}

func (f *fakeTasks) GetByID(_ context.Context, id uuid.UUID) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.tasks[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeTasks) ListAssignedTo(context.Context, uuid.UUID) ([]*domain.Task, error) {
	return nil, nil
}

func (f *fakeTasks) ListCreatedBy(context.Context, uuid.UUID) ([]*domain.Task, error) {
	return nil, nil
}

func (f *fakeTasks) UpdateStatus(_ context.Context, id uuid.UUID, status domain.TaskStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok {
		return domain.ErrNotFound
	}
	t.Status = status
	return nil
}

func (f *fakeTasks) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tasks[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.tasks, id)
	return nil
}

type fakeMessages struct{}

func (fakeMessages) Create(context.Context, *domain.Message) error { return nil }
func (fakeMessages) ListByRoom(context.Context, string, int) ([]*domain.Message, error) {
	return nil, nil
}

type fakeUsers struct{}

func (fakeUsers) Create(context.Context, *domain.User) error { return nil }
func (fakeUsers) GetByID(context.Context, uuid.UUID) (*domain.User, error) {
	return nil, domain.ErrNotFound
}
func (fakeUsers) GetByUsername(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrNotFound
}
func (fakeUsers) List(context.Context) ([]*domain.User, error) { return nil, nil }

type fakeStore struct {
	tasks   *fakeTasks
	pingErr error
}

func (s *fakeStore) Tasks() domain.TaskRepository       { return s.tasks }
func (s *fakeStore) Messages() domain.MessageRepository { return fakeMessages{} }
func (s *fakeStore) Users() domain.UserRepository       { return fakeUsers{} }
func (s *fakeStore) Ping(context.Context) error         { return s.pingErr }

type fakeBackplane struct{}

func (fakeBackplane) Publish(context.Context, string, []byte) error { return nil }
func (fakeBackplane) Subscribe(context.Context, string) (<-chan []byte, func(), error) {
	return make(chan []byte), func() {}, nil
}
func (fakeBackplane) MarkOnline(context.Context, uuid.UUID) error  { return nil }
func (fakeBackplane) MarkOffline(context.Context, uuid.UUID) error { return nil }
func (fakeBackplane) Online(context.Context) (map[uuid.UUID]bool, error) {
	return nil, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Addr:         ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
			CORSOrigins:  []string{"http://localhost:5002"},
			HistoryLimit: 10,
		},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
	}
}

func newTestServer(t *testing.T, store *fakeStore) *Server {
	t.Helper()
	if store.tasks == nil {
		store.tasks = &fakeTasks{tasks: make(map[uuid.UUID]*domain.Task)}
	}
	return New(t.Context(), testConfig(), store, fakeBackplane{})
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestHealthz(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, &fakeStore{})
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	})

	t.Run("database down", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, &fakeStore{pingErr: errors.New("conn refused")})
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "database")
	})
}

func TestTaskLifecycleThroughRouter(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeStore{})
	h := s.Handler()

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := do(http.MethodPost, "/create_task", `{"title":"Count pallets"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var created struct {
		Success bool      `json:"success"`
		TaskID  uuid.UUID `json:"task_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.True(t, created.Success)

	rec = do(http.MethodPut, "/task/"+created.TaskID.String()+"/status", `{"status":"completed"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"status":"completed"`)

	rec = do(http.MethodDelete, "/task/"+created.TaskID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(http.MethodDelete, "/task/"+created.TaskID.String(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeStore{})
	h := s.Handler()

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `planner_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
	assert.Contains(t, body, "planner_ws_connections 0")
	assert.Contains(t, body, "go_goroutines")
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeStore{})

	req := httptest.NewRequest(http.MethodOptions, "/create_task", nil)
	req.Header.Set("Origin", "http://localhost:5002")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5002", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/create_task", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestOriginPatterns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{name: "hosts with ports", in: []string{"http://localhost:5002", "https://planner.example"}, want: []string{"localhost:5002", "planner.example"}},
		{name: "wildcard wins", in: []string{"http://a", "*"}, want: []string{"*"}},
		{name: "garbage skipped", in: []string{"not a url", "http://ok"}, want: []string{"ok"}},
		{name: "empty", in: nil, want: []string{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, originPatterns(tc.in))
		})
	}
}
