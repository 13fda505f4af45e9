package v1_test

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/gosuda/planner/internal/domain"
)

// ---------------------------------------------------------------------------
// Mock DataStore
// ---------------------------------------------------------------------------

type mockDataStore struct {
	tasks    domain.TaskRepository
	messages domain.MessageRepository
	users    domain.UserRepository
}

func (m *mockDataStore) Tasks() domain.TaskRepository       { return m.tasks }
func (m *mockDataStore) Messages() domain.MessageRepository { return m.messages }
func (m *mockDataStore) Users() domain.UserRepository       { return m.users }

// ---------------------------------------------------------------------------
// Mock TaskRepository
// ---------------------------------------------------------------------------

type mockTaskRepo struct {
	createFunc         func(ctx context.Context, t *domain.Task) error
	getByIDFunc        func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	listAssignedToFunc func(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)
	listCreatedByFunc  func(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)
	updateStatusFunc   func(ctx context.Context, id uuid.UUID, status domain.TaskStatus) error
	deleteFunc         func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	return m.createFunc(ctx, t)
}

func (m *mockTaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockTaskRepo) ListAssignedTo(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	return m.listAssignedToFunc(ctx, userID)
}

func (m *mockTaskRepo) ListCreatedBy(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	return m.listCreatedByFunc(ctx, userID)
}

func (m *mockTaskRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TaskStatus) error {
	return m.updateStatusFunc(ctx, id, status)
}

func (m *mockTaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

// ---------------------------------------------------------------------------
// Mock MessageRepository
// ---------------------------------------------------------------------------

type mockMessageRepo struct {
	createFunc     func(ctx context.Context, m *domain.Message) error
	listByRoomFunc func(ctx context.Context, room string, limit int) ([]*domain.Message, error)
}

func (m *mockMessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	return m.createFunc(ctx, msg)
}

func (m *mockMessageRepo) ListByRoom(ctx context.Context, room string, limit int) ([]*domain.Message, error) {
	return m.listByRoomFunc(ctx, room, limit)
}

// ---------------------------------------------------------------------------
// Mock UserRepository
// ---------------------------------------------------------------------------

type mockUserRepo struct {
	createFunc        func(ctx context.Context, u *domain.User) error
	getByIDFunc       func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	getByUsernameFunc func(ctx context.Context, username string) (*domain.User, error)
	listFunc          func(ctx context.Context) ([]*domain.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	return m.createFunc(ctx, u)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return m.getByUsernameFunc(ctx, username)
}

func (m *mockUserRepo) List(ctx context.Context) ([]*domain.User, error) {
	return m.listFunc(ctx)
}

// ---------------------------------------------------------------------------
// Mock Publisher / Presence
// ---------------------------------------------------------------------------

type published struct {
	channel string
	payload []byte
}

type mockPublisher struct {
	mu   sync.Mutex
	sent []published
	err  error
}

func (m *mockPublisher) Publish(_ context.Context, channel string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, published{channel: channel, payload: payload})
	return m.err
}

func (m *mockPublisher) Sent() []published {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]published(nil), m.sent...)
}

type mockPresence struct {
	onlineFunc func(ctx context.Context) (map[uuid.UUID]bool, error)
}

func (m *mockPresence) Online(ctx context.Context) (map[uuid.UUID]bool, error) {
	return m.onlineFunc(ctx)
}
