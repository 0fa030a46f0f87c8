package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"context"  // context for the user lookup
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/talbothotels/backoffice/internal/model" // user record stored in the request context
	"github.com/talbothotels/backoffice/internal/utils" // access-token verification
)

// UserLoader resolves a verified token subject to a user record.  The user
// repository satisfies it; tests substitute a fake.
type UserLoader interface {
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}

// JWTAuth returns an Echo middleware that validates a Bearer access token,
// loads the user named by its subject claim and stores the record in the
// request context under "user" (with "username" and "role" set alongside).
//
// Any token problem (missing header, bad signature, expiry, unknown
// subject) yields 401.  A valid token whose owner has been deactivated
// yields 400 instead; clients distinguish "log in again" from "your account
// is disabled" by that status.
func JWTAuth(secret string, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Read the Authorization header.  A valid header starts with
			// "Bearer " followed by the JWT.
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			// Verify signature and expiry; the helper collapses every
			// failure mode into one sentinel so nothing leaks here.
			username, err := utils.VerifyAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			// The subject is a username; resolve it to a live user record
			// so role and active checks always see current database state,
			// not whatever was true when the token was minted.
			user, err := users.GetByUsername(c.Request().Context(), username)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			if !user.IsActive {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "inactive user"})
			}

			c.Set("user", user)
			c.Set("username", user.Username)
			c.Set("role", user.Role)
			return next(c)
		}
	}
}

// CurrentUser pulls the authenticated user stored by JWTAuth out of the
// context.  The boolean is false when the middleware did not run.
func CurrentUser(c echo.Context) (*model.User, bool) {
	u, ok := c.Get("user").(*model.User)
	return u, ok
}
