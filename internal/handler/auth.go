package handler

import (
	"context"  // provides context with cancellation for DB calls
	"errors"   // errors.Is checks against service sentinels
	"net/http" // HTTP status codes and primitives
	"strconv"  // string-to-int conversion for path params
	"strings"  // string manipulation utilities
	"time"     // timeouts for DB calls

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/talbothotels/backoffice/internal/config"     // app configuration
	"github.com/talbothotels/backoffice/internal/middleware" // CurrentUser context accessor
	"github.com/talbothotels/backoffice/internal/model"      // domain records
	"github.com/talbothotels/backoffice/internal/repository" // DB repositories
	"github.com/talbothotels/backoffice/internal/service"    // session manager
	"github.com/talbothotels/backoffice/internal/utils"      // pagination helpers
)

// AuthHandler bundles dependencies for auth and user-management endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Auth  *service.AuthService
	Users *repository.UserRepo
}

func NewAuthHandler(cfg config.Config, auth *service.AuthService, users *repository.UserRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Auth: auth, Users: users}
}

// ----- DTOs -----

type userReq struct {
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName string  `json:"full_name"`
	Role     string  `json:"role"`
	IsActive *bool   `json:"is_active"`
	HotelID  *uint64 `json:"hotel_id"`
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type changePasswordReq struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type userUpdateReq struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	FullName *string `json:"full_name"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
	Password *string `json:"password"`
	HotelID  *uint64 `json:"hotel_id"`
}

// userResp is the public profile shape. The password hash never appears in
// any response.
type userResp struct {
	ID          uint64    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name,omitempty"`
	Role        string    `json:"role"`
	IsActive    bool      `json:"is_active"`
	IsSuperuser bool      `json:"is_superuser"`
	HotelID     *uint64   `json:"hotel_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type tokenResp struct {
	AccessToken      string   `json:"access_token"`
	TokenType        string   `json:"token_type"`
	ExpiresIn        int      `json:"expires_in"`
	RefreshToken     string   `json:"refresh_token"`
	RefreshExpiresIn int      `json:"refresh_expires_in"`
	User             userResp `json:"user"`
}

type userListResp struct {
	Users   []userResp `json:"users"`
	Total   int        `json:"total"`
	Page    int        `json:"page"`
	PerPage int        `json:"per_page"`
	Pages   int        `json:"pages"`
}

func toUserResp(u *model.User) userResp {
	return userResp{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FullName:    u.FullName,
		Role:        u.Role,
		IsActive:    u.IsActive,
		IsSuperuser: u.IsSuperuser,
		HotelID:     u.HotelID,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// registerUser is shared by the public register endpoint and the admin
// create-user endpoint; the routes differ only in middleware.
func (h *AuthHandler) registerUser(c echo.Context) error {
	var req userReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/email/password required"})
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	user, err := h.Auth.Register(ctx, service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     req.Role,
		IsActive: active,
		HotelID:  req.HotelID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRole):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
		case errors.Is(err, repository.ErrUsernameExists):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "username already registered"})
		case errors.Is(err, repository.ErrEmailExists):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "email already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	return c.JSON(http.StatusCreated, toUserResp(user))
}

// Register handles POST /v1/auth/register.
func (h *AuthHandler) Register(c echo.Context) error { return h.registerUser(c) }

// CreateUser handles POST /v1/auth/create-user (admin only; enforced by
// route middleware).
func (h *AuthHandler) CreateUser(c echo.Context) error { return h.registerUser(c) }

// Login handles POST /v1/auth/login: verify credentials and open a session.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	// Device descriptor and client IP travel into the session row for the
	// audit trail.
	pair, err := h.Auth.Login(ctx, req.Username, req.Password,
		c.Request().UserAgent(), c.RealIP())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		case errors.Is(err, service.ErrInactiveUser):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "inactive user"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	return c.JSON(http.StatusOK, tokenResp{
		AccessToken:      pair.AccessToken,
		TokenType:        "bearer",
		ExpiresIn:        pair.ExpiresIn,
		RefreshToken:     pair.RefreshToken,
		RefreshExpiresIn: pair.RefreshExpiresIn,
		User:             toUserResp(pair.User),
	})
}

// Refresh handles POST /v1/auth/refresh: a new access token against the
// same refresh token, which is returned unchanged.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	pair, err := h.Auth.Refresh(ctx, strings.TrimSpace(req.RefreshToken))
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefreshToken) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
	}
	return c.JSON(http.StatusOK, tokenResp{
		AccessToken:      pair.AccessToken,
		TokenType:        "bearer",
		ExpiresIn:        pair.ExpiresIn,
		RefreshToken:     pair.RefreshToken,
		RefreshExpiresIn: pair.RefreshExpiresIn,
		User:             toUserResp(pair.User),
	})
}

// Logout handles POST /v1/auth/logout: revoke the presented refresh token.
// Already-issued access tokens keep working until they expire; only future
// renewals are blocked.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	ok, err := h.Auth.Logout(ctx, strings.TrimSpace(req.RefreshToken))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "logout failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "session closed"})
}

// LogoutAll handles POST /v1/auth/logout-all: revoke every session of the
// authenticated user.
func (h *AuthHandler) LogoutAll(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Auth.LogoutAll(ctx, user); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "all sessions closed"})
}

// Me handles GET /v1/auth/me: the authenticated user's public profile.
func (h *AuthHandler) Me(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return c.JSON(http.StatusOK, toUserResp(user))
}

// ChangePassword handles POST /v1/auth/change-password. Existing sessions
// stay open; the client may follow up with logout-all.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req changePasswordReq
	if err := c.Bind(&req); err != nil || req.CurrentPassword == "" || req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "current_password/new_password required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Auth.ChangePassword(ctx, user, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "current password incorrect"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "change password failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

// ListUsers handles GET /v1/auth/users (admin): paginated user listing.
func (h *AuthHandler) ListUsers(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	perPage, _ := strconv.Atoi(c.QueryParam("per_page"))
	page, perPage = utils.NormalizePage(page, perPage)

	ctx, cancel := reqCtx(c)
	defer cancel()

	users, err := h.Users.List(ctx, (page-1)*perPage, perPage)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	total, err := h.Users.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	out := userListResp{
		Users:   make([]userResp, 0, len(users)),
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Pages:   utils.Pages(total, perPage),
	}
	for i := range users {
		out.Users = append(out.Users, toUserResp(&users[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// UpdateUser handles PUT /v1/auth/users/:id (admin): partial update, only
// the provided fields change.
func (h *AuthHandler) UpdateUser(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req userUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	user, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	if req.Username != nil {
		name := strings.ToLower(strings.TrimSpace(*req.Username))
		if name != user.Username {
			if taken, err := h.Users.ExistsUsername(ctx, name); err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
			} else if taken {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "username already in use"})
			}
			user.Username = name
		}
	}
	if req.Email != nil && *req.Email != user.Email {
		if taken, err := h.Users.ExistsEmail(ctx, *req.Email); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
		} else if taken {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "email already in use"})
		}
		user.Email = *req.Email
	}
	if req.FullName != nil {
		user.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Role != nil {
		role, ok := model.NormalizeRole(*req.Role)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
		}
		user.Role = role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.HotelID != nil {
		user.HotelID = req.HotelID
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := utils.HashPassword(*req.Password, h.Cfg.BcryptCost)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
		user.PasswordHash = hash
	}

	if err := h.Users.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameExists):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "username already in use"})
		case errors.Is(err, repository.ErrEmailExists):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "email already in use"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, toUserResp(user))
}

// DeleteUser handles DELETE /v1/auth/users/:id (admin): soft delete by
// clearing the active flag. Administrators cannot delete themselves.
func (h *AuthHandler) DeleteUser(c echo.Context) error {
	admin, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if id == admin.ID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot delete your own user"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	target, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if err := h.Users.Deactivate(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	// A deactivated account must not keep renewing access tokens.
	if _, err := h.Auth.LogoutAll(ctx, target); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user " + target.Username + " deleted"})
}
