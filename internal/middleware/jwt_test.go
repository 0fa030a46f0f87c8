package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/talbothotels/backoffice/internal/model"
	"github.com/talbothotels/backoffice/internal/repository"
	"github.com/talbothotels/backoffice/internal/utils"
)

const testSecret = "middleware-test-secret"

// fakeLoader serves a fixed set of users keyed by username.
type fakeLoader struct {
	users map[string]*model.User
}

func (f *fakeLoader) GetByUsername(_ context.Context, username string) (*model.User, error) {
	u, ok := f.users[username]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

func authedRequest(t *testing.T, token string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestJWTAuth_ValidToken(t *testing.T) {
	user := &model.User{ID: 7, Username: "jperez", Role: model.RoleGerente, IsActive: true}
	loader := &fakeLoader{users: map[string]*model.User{"jperez": user}}

	at, err := utils.NewAccessToken(testSecret, "jperez", 30)
	assert.NoError(t, err)

	c, rec := authedRequest(t, at.Token)
	err = JWTAuth(testSecret, loader)(okHandler)(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	got, ok := CurrentUser(c)
	assert.True(t, ok)
	assert.Equal(t, user, got)
	assert.Equal(t, "jperez", c.Get("username"))
	assert.Equal(t, model.RoleGerente, c.Get("role"))
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	c, rec := authedRequest(t, "")
	err := JWTAuth(testSecret, &fakeLoader{})(okHandler)(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuth_BadSignature(t *testing.T) {
	at, err := utils.NewAccessToken("some-other-secret", "jperez", 30)
	assert.NoError(t, err)

	c, rec := authedRequest(t, at.Token)
	err = JWTAuth(testSecret, &fakeLoader{})(okHandler)(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuth_UnknownSubject(t *testing.T) {
	at, err := utils.NewAccessToken(testSecret, "ghost", 30)
	assert.NoError(t, err)

	c, rec := authedRequest(t, at.Token)
	err = JWTAuth(testSecret, &fakeLoader{users: map[string]*model.User{}})(okHandler)(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuth_InactiveUserGets400(t *testing.T) {
	user := &model.User{ID: 7, Username: "jperez", Role: model.RoleGerente, IsActive: false}
	loader := &fakeLoader{users: map[string]*model.User{"jperez": user}}

	at, err := utils.NewAccessToken(testSecret, "jperez", 30)
	assert.NoError(t, err)

	c, rec := authedRequest(t, at.Token)
	err = JWTAuth(testSecret, loader)(okHandler)(c)

	assert.NoError(t, err)
	// Deactivated accounts are told apart from token problems.
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
