package v1_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/gosuda/planner/internal/api/v1"
	"github.com/gosuda/planner/internal/domain"
)

func TestRegisterUser(t *testing.T) {
	t.Parallel()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		var created *domain.User
		_, api := humatest.New(t)
		store := &mockDataStore{
			users: &mockUserRepo{
				createFunc: func(_ context.Context, u *domain.User) error {
					created = u
					return nil
				},
			},
		}
		v1.RegisterUserRoutes(api, store, nil)

		resp := api.Post("/register", map[string]any{
			"username": "  olga ",
			"email":    "olga@warehouse.example",
		})

		require.Equal(t, http.StatusOK, resp.Code)
		require.NotNil(t, created)
		assert.Equal(t, "olga", created.Username)
		assert.NotEqual(t, uuid.Nil, created.ID)

		var body struct {
			Success bool         `json:"success"`
			User    *domain.User `json:"user"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.True(t, body.Success)
		require.NotNil(t, body.User)
		assert.Equal(t, created.ID, body.User.ID)
	})

	invalid := []struct {
		name     string
		username string
		email    string
	}{
		{name: "email_without_at", username: "olga", email: "olga.example.com"},
		{name: "email_without_dot", username: "olga", email: "olga@example"},
		{name: "email_with_space", username: "olga", email: "ol ga@example.com"},
		{name: "blank_username", username: "   ", email: "olga@example.com"},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, api := humatest.New(t)
			v1.RegisterUserRoutes(api, &mockDataStore{users: &mockUserRepo{}}, nil)

			resp := api.Post("/register", map[string]any{"username": tc.username, "email": tc.email})

			assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
		})
	}

	t.Run("duplicate_username", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{
			users: &mockUserRepo{
				createFunc: func(_ context.Context, _ *domain.User) error {
					return fmt.Errorf("userRepo.Create: %w", domain.ErrConflict)
				},
			},
		}
		v1.RegisterUserRoutes(api, store, nil)

		resp := api.Post("/register", map[string]any{"username": "olga", "email": "olga@example.com"})

		assert.Equal(t, http.StatusConflict, resp.Code)
	})
}

func TestListUsers(t *testing.T) {
	t.Parallel()

	alice := &domain.User{ID: uuid.New(), Username: "alice", Email: "a@example.com"}
	bob := &domain.User{ID: uuid.New(), Username: "bob"}
	users := &mockUserRepo{
		listFunc: func(_ context.Context) ([]*domain.User, error) {
			return []*domain.User{alice, bob}, nil
		},
	}

	decode := func(t *testing.T, body []byte) []v1.UserSummary {
		t.Helper()
		var out struct {
			Success bool             `json:"success"`
			Users   []v1.UserSummary `json:"users"`
		}
		require.NoError(t, json.Unmarshal(body, &out))
		assert.True(t, out.Success)
		return out.Users
	}

	t.Run("with_presence", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		presence := &mockPresence{
			onlineFunc: func(_ context.Context) (map[uuid.UUID]bool, error) {
				return map[uuid.UUID]bool{bob.ID: true}, nil
			},
		}
		v1.RegisterUserRoutes(api, &mockDataStore{users: users}, presence)

		resp := api.Get("/get_users")

		require.Equal(t, http.StatusOK, resp.Code)
		got := decode(t, resp.Body.Bytes())
		require.Len(t, got, 2)
		assert.Equal(t, "alice", got[0].Username)
		assert.False(t, got[0].Online)
		assert.True(t, got[1].Online)
		assert.NotContains(t, resp.Body.String(), "a@example.com", "emails must not leak")
	})

	t.Run("presence_failure_reports_offline", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		presence := &mockPresence{
			onlineFunc: func(_ context.Context) (map[uuid.UUID]bool, error) {
				return nil, errors.New("redis down")
			},
		}
		v1.RegisterUserRoutes(api, &mockDataStore{users: users}, presence)

		resp := api.Get("/get_users")

		require.Equal(t, http.StatusOK, resp.Code)
		for _, u := range decode(t, resp.Body.Bytes()) {
			assert.False(t, u.Online)
		}
	})

	t.Run("store_error", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{
			users: &mockUserRepo{
				listFunc: func(_ context.Context) ([]*domain.User, error) { return nil, errors.New("db down") },
			},
		}
		v1.RegisterUserRoutes(api, store, nil)

		resp := api.Get("/get_users")

		assert.Equal(t, http.StatusInternalServerError, resp.Code)
	})
}
