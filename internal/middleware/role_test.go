package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/talbothotels/backoffice/internal/model"
)

func roleContext(role any) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/users", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != nil {
		c.Set("role", role)
	}
	return c, rec
}

func TestRequireRole_Allowed(t *testing.T) {
	c, rec := roleContext(model.RoleAdministrador)
	err := RequireRole(model.RoleAdministrador)(okHandler)(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole_MultipleRoles(t *testing.T) {
	c, rec := roleContext(model.RoleGerente)
	err := RequireRole(model.RoleAdministrador, model.RoleGerente)(okHandler)(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole_Forbidden(t *testing.T) {
	c, rec := roleContext(model.RoleHousekeeper)
	err := RequireRole(model.RoleAdministrador)(okHandler)(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRole_MissingRole(t *testing.T) {
	c, rec := roleContext(nil)
	err := RequireRole(model.RoleAdministrador)(okHandler)(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
