package router

import (
	"github.com/labstack/echo/v4"

	"github.com/talbothotels/backoffice/internal/handler"
	"github.com/talbothotels/backoffice/internal/middleware"
	"github.com/talbothotels/backoffice/internal/model"
)

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// session endpoints for any signed-in user live under /v1, and user
// administration is restricted to the ADMINISTRADOR role.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, users middleware.UserLoader) {
	// Operations that do not require an existing session.  Refresh and
	// logout authenticate with the refresh token carried in the body, not
	// with an access token, so they belong here too.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	// Session endpoints for any authenticated staff member, whatever their
	// role.  JWTAuth verifies the access token and loads the account so the
	// handlers can rely on CurrentUser.
	auth := e.Group("/v1/auth", middleware.JWTAuth(jwtSecret, users))
	auth.GET("/me", a.Me)
	auth.POST("/logout-all", a.LogoutAll)
	auth.POST("/change-password", a.ChangePassword)

	// User administration is reserved for administrators.
	admin := e.Group(
		"/v1/auth",
		middleware.JWTAuth(jwtSecret, users),
		middleware.RequireRole(model.RoleAdministrador),
	)
	admin.POST("/create-user", a.CreateUser)
	admin.GET("/users", a.ListUsers)
	admin.PUT("/users/:id", a.UpdateUser)
	admin.DELETE("/users/:id", a.DeleteUser)
}
