package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talbothotels/backoffice/internal/config"
	"github.com/talbothotels/backoffice/internal/middleware"
	"github.com/talbothotels/backoffice/internal/model"
	"github.com/talbothotels/backoffice/internal/repository"
	"github.com/talbothotels/backoffice/internal/service"
	"github.com/talbothotels/backoffice/internal/utils"
)

// In-memory stores drive the handlers through the real AuthService so the
// tests exercise the full login/refresh/logout flow without a database.

type memUserStore struct {
	byUsername map[string]*model.User
}

func (m *memUserStore) Create(_ context.Context, u *model.User) error {
	u.ID = uint64(len(m.byUsername) + 1)
	m.byUsername[u.Username] = u
	return nil
}

func (m *memUserStore) GetByUsername(_ context.Context, username string) (*model.User, error) {
	if u, ok := m.byUsername[username]; ok {
		return u, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *memUserStore) GetByID(_ context.Context, id uint64) (*model.User, error) {
	for _, u := range m.byUsername {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memUserStore) ExistsUsername(_ context.Context, username string) (bool, error) {
	_, ok := m.byUsername[username]
	return ok, nil
}

func (m *memUserStore) ExistsEmail(_ context.Context, email string) (bool, error) {
	for _, u := range m.byUsername {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUserStore) UpdatePassword(_ context.Context, id uint64, hash string) error {
	for _, u := range m.byUsername {
		if u.ID == id {
			u.PasswordHash = hash
			return nil
		}
	}
	return repository.ErrUserNotFound
}

type memSessionStore struct {
	rows []*model.RefreshToken
}

func (m *memSessionStore) Create(_ context.Context, userID uint64, deviceInfo, ipAddress string, ttl time.Duration) (*model.RefreshToken, error) {
	tok, err := utils.NewOpaqueToken()
	if err != nil {
		return nil, err
	}
	row := &model.RefreshToken{
		ID:         uint64(len(m.rows) + 1),
		UserID:     userID,
		Token:      tok,
		IsActive:   true,
		DeviceInfo: deviceInfo,
		IPAddress:  ipAddress,
		CreatedAt:  time.Now().UTC(),
		ExpiresAt:  time.Now().UTC().Add(ttl),
	}
	m.rows = append(m.rows, row)
	return row, nil
}

func (m *memSessionStore) FindActive(_ context.Context, token string) (*model.RefreshToken, error) {
	for _, r := range m.rows {
		if r.Token == token && r.IsActive {
			return r, nil
		}
	}
	return nil, nil
}

func (m *memSessionStore) Revoke(_ context.Context, token string) (bool, error) {
	for _, r := range m.rows {
		if r.Token == token && r.IsActive {
			r.IsActive = false
			return true, nil
		}
	}
	return false, nil
}

func (m *memSessionStore) RevokeAllForUser(_ context.Context, userID uint64) (int64, error) {
	var n int64
	for _, r := range m.rows {
		if r.UserID == userID && r.IsActive {
			r.IsActive = false
			n++
		}
	}
	return n, nil
}

func (m *memSessionStore) TouchLastUsed(_ context.Context, token string) error {
	now := time.Now().UTC()
	for _, r := range m.rows {
		if r.Token == token {
			r.LastUsedAt = &now
		}
	}
	return nil
}

// PurgeExpired drops every row whose expiry has passed, whether or not it
// is still marked active, and keeps everything else.
func (m *memSessionStore) PurgeExpired(_ context.Context) (int64, error) {
	now := time.Now().UTC()
	kept := m.rows[:0]
	var n int64
	for _, r := range m.rows {
		if r.ExpiresAt.Before(now) {
			n++
			continue
		}
		kept = append(kept, r)
	}
	m.rows = kept
	return n, nil
}

func (m *memSessionStore) CountActive(_ context.Context, userID uint64) (int, error) {
	n := 0
	for _, r := range m.rows {
		if r.UserID == userID && r.IsActive && r.ExpiresAt.After(time.Now().UTC()) {
			n++
		}
	}
	return n, nil
}

func (m *memSessionStore) OldestActive(_ context.Context, userID uint64) (*model.RefreshToken, error) {
	var oldest *model.RefreshToken
	for _, r := range m.rows {
		if r.UserID == userID && r.IsActive && r.ExpiresAt.After(time.Now().UTC()) {
			if oldest == nil || r.CreatedAt.Before(oldest.CreatedAt) {
				oldest = r
			}
		}
	}
	return oldest, nil
}

func testHandler(t *testing.T) (*AuthHandler, *memUserStore) {
	h, users, _ := testHandlerWithSessions(t)
	return h, users
}

func testHandlerWithSessions(t *testing.T) (*AuthHandler, *memUserStore, *memSessionStore) {
	t.Helper()
	cfg := config.Config{
		JWTSecret:          "handler-test-secret",
		AccessTTLMin:       30,
		RefreshTTLDays:     30,
		BcryptCost:         4,
		MaxSessionsPerUser: 5,
	}
	hash, err := utils.HashPassword("secret123", 4)
	require.NoError(t, err)

	users := &memUserStore{byUsername: map[string]*model.User{
		"jperez": {
			ID:           1,
			Username:     "jperez",
			Email:        "jperez@talbothotels.com",
			PasswordHash: hash,
			FullName:     "Juan Pérez",
			Role:         model.RoleGerente,
			IsActive:     true,
		},
	}}
	sessions := &memSessionStore{}
	auth := service.NewAuthService(cfg, users, sessions, nil)
	return NewAuthHandler(cfg, auth, nil), users, sessions
}

func postJSON(h echo.HandlerFunc, path, body string) (*httptest.ResponseRecorder, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return rec, h(e.NewContext(req, rec))
}

func TestLoginEndpoint_Success(t *testing.T) {
	h, _ := testHandler(t)

	rec, err := postJSON(h.Login, "/v1/auth/login", `{"username":"jperez","password":"secret123"}`)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "bearer", resp["token_type"])
	assert.EqualValues(t, 1800, resp["expires_in"])
	assert.EqualValues(t, 2592000, resp["refresh_expires_in"])
	assert.NotEmpty(t, resp["access_token"])
	assert.Len(t, resp["refresh_token"], 86)

	user := resp["user"].(map[string]any)
	assert.Equal(t, "jperez", user["username"])
	assert.Equal(t, model.RoleGerente, user["role"])
	// The password hash must never leak into any response.
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestLoginEndpoint_WrongPassword(t *testing.T) {
	h, _ := testHandler(t)

	rec, err := postJSON(h.Login, "/v1/auth/login", `{"username":"jperez","password":"nope"}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginEndpoint_InactiveUser(t *testing.T) {
	h, users := testHandler(t)
	users.byUsername["jperez"].IsActive = false

	rec, err := postJSON(h.Login, "/v1/auth/login", `{"username":"jperez","password":"secret123"}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshEndpoint_FullFlow(t *testing.T) {
	h, _ := testHandler(t)

	rec, err := postJSON(h.Login, "/v1/auth/login", `{"username":"jperez","password":"secret123"}`)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)

	var login map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	refresh := login["refresh_token"].(string)

	rec, err = postJSON(h.Refresh, "/v1/auth/refresh", `{"refresh_token":"`+refresh+`"}`)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)

	var renewed map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &renewed))
	// Same refresh token, fresh access token.
	assert.Equal(t, refresh, renewed["refresh_token"])
	assert.NotEmpty(t, renewed["access_token"])

	// After logout the same token is dead.
	rec, err = postJSON(h.Logout, "/v1/auth/logout", `{"refresh_token":"`+refresh+`"}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, err = postJSON(h.Refresh, "/v1/auth/refresh", `{"refresh_token":"`+refresh+`"}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshEndpoint_UnknownToken(t *testing.T) {
	h, _ := testHandler(t)

	rec, err := postJSON(h.Refresh, "/v1/auth/refresh", `{"refresh_token":"made-up"}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutEndpoint_UnknownToken(t *testing.T) {
	h, _ := testHandler(t)

	rec, err := postJSON(h.Logout, "/v1/auth/logout", `{"refresh_token":"made-up"}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginEndpoint_SessionCapEviction(t *testing.T) {
	h, _, sessions := testHandlerWithSessions(t)

	// Six logins against a cap of five: every one succeeds, the oldest
	// session is evicted to make room for the sixth.
	var tokens []string
	for i := 0; i < 6; i++ {
		rec, err := postJSON(h.Login, "/v1/auth/login", `{"username":"jperez","password":"secret123"}`)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		tokens = append(tokens, resp["refresh_token"].(string))
	}

	n, err := sessions.CountActive(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 5, n, "exactly the cap remains active")

	// The first (oldest) session was revoked, the rest still refresh.
	rec, err := postJSON(h.Refresh, "/v1/auth/refresh", `{"refresh_token":"`+tokens[0]+`"}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, err = postJSON(h.Refresh, "/v1/auth/refresh", `{"refresh_token":"`+tokens[5]+`"}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// seedSession plants a refresh-token row directly, bypassing Create, so
// tests can stage expired and revoked sessions.
func seedSession(m *memSessionStore, token string, active bool, expiresAt time.Time) {
	m.rows = append(m.rows, &model.RefreshToken{
		ID:        uint64(len(m.rows) + 1),
		UserID:    1,
		Token:     token,
		IsActive:  active,
		CreatedAt: time.Now().UTC().Add(-time.Hour),
		ExpiresAt: expiresAt,
	})
}

func TestPurgeExpiredSessions_RemovesOnlyExpired(t *testing.T) {
	sessions := &memSessionStore{}
	past := time.Now().UTC().Add(-time.Minute)
	future := time.Now().UTC().Add(time.Hour)

	seedSession(sessions, "expired-active", true, past)
	seedSession(sessions, "expired-revoked", false, past)
	seedSession(sessions, "live-active", true, future)
	seedSession(sessions, "live-revoked", false, future)

	n, err := sessions.PurgeExpired(context.Background())
	require.NoError(t, err)
	// Expired rows go regardless of their active flag.
	assert.EqualValues(t, 2, n)

	require.Len(t, sessions.rows, 2)
	assert.Equal(t, "live-active", sessions.rows[0].Token)
	assert.True(t, sessions.rows[0].IsActive)
	assert.Equal(t, "live-revoked", sessions.rows[1].Token)
	assert.False(t, sessions.rows[1].IsActive)
}

func TestLoginEndpoint_PurgesExpiredSessions(t *testing.T) {
	h, _, sessions := testHandlerWithSessions(t)
	past := time.Now().UTC().Add(-time.Minute)
	future := time.Now().UTC().Add(time.Hour)

	seedSession(sessions, "expired-active", true, past)
	seedSession(sessions, "expired-revoked", false, past)
	seedSession(sessions, "live-revoked", false, future)

	rec, err := postJSON(h.Login, "/v1/auth/login", `{"username":"jperez","password":"secret123"}`)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)

	// Login sweeps the expired rows; the unexpired revoked row and the
	// session it just opened remain.
	require.Len(t, sessions.rows, 2)
	assert.Equal(t, "live-revoked", sessions.rows[0].Token)
	assert.True(t, sessions.rows[1].IsActive)
	assert.True(t, sessions.rows[1].ExpiresAt.After(time.Now().UTC()))
}

func TestLogoutAllEndpoint_BlocksEverySession(t *testing.T) {
	h, users, _ := testHandlerWithSessions(t)

	var tokens []string
	for i := 0; i < 3; i++ {
		rec, err := postJSON(h.Login, "/v1/auth/login", `{"username":"jperez","password":"secret123"}`)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		tokens = append(tokens, resp["refresh_token"].(string))
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/logout-all", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user", users.byUsername["jperez"])

	require.NoError(t, h.LogoutAll(c))
	require.Equal(t, http.StatusOK, rec.Code)

	for _, tok := range tokens {
		rec, err := postJSON(h.Refresh, "/v1/auth/refresh", `{"refresh_token":"`+tok+`"}`)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
}

func TestMeEndpoint(t *testing.T) {
	h, users := testHandler(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user", users.byUsername["jperez"])

	require.NoError(t, h.Me(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "jperez", resp["username"])
	assert.Equal(t, "Juan Pérez", resp["full_name"])
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestMeEndpoint_NoIdentity(t *testing.T) {
	h, _ := testHandler(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, h.Me(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChangePasswordEndpoint(t *testing.T) {
	h, users := testHandler(t)
	user := users.byUsername["jperez"]

	e := echo.New()
	body := `{"current_password":"wrong","new_password":"fresh456"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/change-password", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user", user)

	require.NoError(t, h.ChangePassword(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body = `{"current_password":"secret123","new_password":"fresh456"}`
	req = httptest.NewRequest(http.MethodPost, "/v1/auth/change-password", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.Set("user", user)

	require.NoError(t, h.ChangePassword(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, utils.VerifyPassword(user.PasswordHash, "fresh456"))
}

var _ middleware.UserLoader = (*memUserStore)(nil)
