package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/ovenfresh/internal/config"
	"github.com/example/ovenfresh/internal/models"
	"github.com/example/ovenfresh/internal/services"
	"github.com/example/ovenfresh/internal/store"
)

type memoryUserStore struct {
	users map[uuid.UUID]*models.User
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{users: make(map[uuid.UUID]*models.User)}
}

func (m *memoryUserStore) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	m.users[user.ID] = user
	return nil
}

func (m *memoryUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, store.ErrNotFound
}

func (m *memoryUserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memoryUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memoryUserStore) GetByResetTokenHash(ctx context.Context, hash string) (*models.User, error) {
	for _, u := range m.users {
		if u.ResetTokenHash != nil && *u.ResetTokenHash == hash {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memoryUserStore) Save(ctx context.Context, user *models.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *memoryUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.users, id)
	return nil
}

type silentMailer struct{}

func (silentMailer) Send(ctx context.Context, to, subject, htmlBody, textBody string) bool {
	return true
}

func newAuthApp(t *testing.T) (*fiber.App, *memoryUserStore) {
	t.Helper()
	users := newMemoryUserStore()
	accounts := services.NewAccountService(users, silentMailer{}, "")
	cfg := &config.Config{SessionSecret: "test-secret", SessionTTL: time.Hour}
	h := NewAuthHandler(accounts, cfg)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Post("/register", h.Register)
	app.Post("/login", h.Login)
	return app, users
}

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) (int, []byte) {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

// Serialized user payloads must never carry credential material, whatever the
// model grows in the future.
func TestUserResponsesOmitCredentialMaterial(t *testing.T) {
	app, users := newAuthApp(t)

	status, registerBody := postJSON(t, app, "/register", fiber.Map{
		"username":  "alice",
		"email":     "alice@example.com",
		"password":  "hunter22",
		"full_name": "Alice Smith",
	})
	require.Equal(t, fiber.StatusCreated, status)

	var created *models.User
	for _, u := range users.users {
		created = u
	}
	require.NotNil(t, created)
	require.NotEmpty(t, created.PasswordHash)
	require.NotNil(t, created.VerificationCode)

	status, loginBody := postJSON(t, app, "/login", fiber.Map{
		"username": "alice",
		"password": "hunter22",
	})
	require.Equal(t, fiber.StatusOK, status)

	for _, body := range [][]byte{registerBody, loginBody} {
		var parsed map[string]interface{}
		require.NoError(t, json.Unmarshal(body, &parsed))
		user, ok := parsed["user"].(map[string]interface{})
		require.True(t, ok, "response carries a user object")

		for _, key := range []string{
			"password", "password_hash", "PasswordHash",
			"verification_code", "verification_expiry",
			"reset_token_hash", "reset_token_expiry",
		} {
			_, present := user[key]
			assert.Falsef(t, present, "user payload exposes %q", key)
		}

		assert.NotContains(t, string(body), created.PasswordHash)
	}
}
