// Package service implements the session manager that orchestrates login,
// token renewal and logout on top of the user and session stores. Handlers
// translate the typed errors returned here into HTTP responses; no HTTP
// concepts leak into this package.
package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/talbothotels/backoffice/internal/config"
	"github.com/talbothotels/backoffice/internal/model"
	"github.com/talbothotels/backoffice/internal/queue"
	"github.com/talbothotels/backoffice/internal/repository"
	"github.com/talbothotels/backoffice/internal/utils"
)

// ErrInvalidCredentials covers both an unknown username and a wrong
// password. The two cases are deliberately indistinguishable so that login
// probes cannot enumerate accounts.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInactiveUser is returned when the account exists and the password is
// right but the account has been deactivated.
var ErrInactiveUser = errors.New("inactive user")

// ErrInvalidRefreshToken covers unknown, revoked and expired refresh tokens
// as well as tokens whose owner is missing or inactive. One error for all of
// them: the caller never learns which condition failed.
var ErrInvalidRefreshToken = errors.New("invalid refresh token")

// ErrInvalidRole is returned when a registration payload names a role that
// does not exist.
var ErrInvalidRole = errors.New("invalid role")

// UserStore is the slice of the user repository the session manager needs.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	ExistsUsername(ctx context.Context, username string) (bool, error)
	ExistsEmail(ctx context.Context, email string) (bool, error)
	UpdatePassword(ctx context.Context, id uint64, hash string) error
}

// SessionStore is the durable refresh-token store. Implemented by
// repository.TokenRepo; mocked in tests.
type SessionStore interface {
	Create(ctx context.Context, userID uint64, deviceInfo, ipAddress string, ttl time.Duration) (*model.RefreshToken, error)
	FindActive(ctx context.Context, token string) (*model.RefreshToken, error)
	Revoke(ctx context.Context, token string) (bool, error)
	RevokeAllForUser(ctx context.Context, userID uint64) (int64, error)
	TouchLastUsed(ctx context.Context, token string) error
	PurgeExpired(ctx context.Context) (int64, error)
	CountActive(ctx context.Context, userID uint64) (int, error)
	OldestActive(ctx context.Context, userID uint64) (*model.RefreshToken, error)
}

// EventPublisher pushes session audit events to the broker. Publishing is
// strictly best-effort; the auth flow never fails because of it.
type EventPublisher interface {
	PublishSessionEvent(ctx context.Context, ev queue.SessionEvent) error
}

// AuthService is the session manager. It holds no mutable state of its own;
// all session state lives in the SessionStore.
type AuthService struct {
	cfg      config.Config
	users    UserStore
	sessions SessionStore
	events   EventPublisher // may be nil when no broker is configured
}

func NewAuthService(cfg config.Config, users UserStore, sessions SessionStore, events EventPublisher) *AuthService {
	return &AuthService{cfg: cfg, users: users, sessions: sessions, events: events}
}

// TokenPair is what login and refresh hand back to the HTTP layer: a signed
// access token, the opaque refresh token and both lifetimes in seconds.
type TokenPair struct {
	AccessToken      string
	ExpiresIn        int
	RefreshToken     string
	RefreshExpiresIn int
	User             *model.User
}

// Login authenticates the credentials and opens a new session.
//
// The sequence follows a fixed order: credential check, active check,
// opportunistic purge of expired session rows, session-cap enforcement
// (evict the single oldest session instead of rejecting), then token
// issuance. Device info and client IP are recorded on the session row for
// auditing.
func (s *AuthService) Login(ctx context.Context, username, password, deviceInfo, ipAddress string) (*TokenPair, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		// Unknown user and bad password must look the same to the caller.
		return nil, ErrInvalidCredentials
	}
	if !utils.VerifyPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	// Cleanup is amortized into login instead of running on a timer.
	if _, err := s.sessions.PurgeExpired(ctx); err != nil {
		log.Printf("auth: purge expired sessions: %v", err)
	}

	// Make room for one: when the cap is reached the oldest session is
	// evicted rather than rejecting the login.
	active, err := s.sessions.CountActive(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if active >= s.cfg.MaxSessionsPerUser {
		oldest, err := s.sessions.OldestActive(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		if oldest != nil {
			if _, err := s.sessions.Revoke(ctx, oldest.Token); err != nil {
				return nil, err
			}
			s.publish(ctx, queue.EventSessionEvicted, user, oldest.DeviceInfo, oldest.IPAddress)
		}
	}

	access, err := utils.NewAccessToken(s.cfg.JWTSecret, user.Username, s.cfg.AccessTTLMin)
	if err != nil {
		return nil, err
	}
	refreshTTL := time.Duration(s.cfg.RefreshTTLDays) * 24 * time.Hour
	session, err := s.sessions.Create(ctx, user.ID, deviceInfo, ipAddress, refreshTTL)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, queue.EventSessionLogin, user, deviceInfo, ipAddress)

	return &TokenPair{
		AccessToken:      access.Token,
		ExpiresIn:        s.cfg.AccessTTLMin * 60,
		RefreshToken:     session.Token,
		RefreshExpiresIn: int(refreshTTL / time.Second),
		User:             user,
	}, nil
}

// Refresh exchanges a usable refresh token for a fresh access token. The
// refresh token itself is not rotated and its expiry does not slide; the
// caller gets back the same string with its remaining lifetime.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	session, err := s.sessions.FindActive(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrInvalidRefreshToken
	}
	now := time.Now().UTC()
	if !session.ExpiresAt.After(now) {
		// Found but expired: mark it inactive early so the purge is the
		// only remaining consumer of the row.
		if _, err := s.sessions.Revoke(ctx, refreshToken); err != nil {
			log.Printf("auth: revoke expired session: %v", err)
		}
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil || !user.IsActive {
		// Do not reveal whether the owner is missing or merely disabled.
		return nil, ErrInvalidRefreshToken
	}

	if err := s.sessions.TouchLastUsed(ctx, refreshToken); err != nil {
		log.Printf("auth: touch last used: %v", err)
	}

	access, err := utils.NewAccessToken(s.cfg.JWTSecret, user.Username, s.cfg.AccessTTLMin)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:      access.Token,
		ExpiresIn:        s.cfg.AccessTTLMin * 60,
		RefreshToken:     refreshToken,
		RefreshExpiresIn: int(session.ExpiresAt.Sub(now) / time.Second),
		User:             user,
	}, nil
}

// Logout revokes one session and reports whether a matching row existed.
// Already-issued access tokens stay valid until they expire naturally;
// logout only blocks future renewals.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) (bool, error) {
	// Look the session up first so the audit event can name its owner; the
	// revoke itself matches on the exact token string regardless of state.
	session, err := s.sessions.FindActive(ctx, refreshToken)
	if err != nil {
		return false, err
	}
	ok, err := s.sessions.Revoke(ctx, refreshToken)
	if err != nil {
		return false, err
	}
	if ok && session != nil {
		ev := queue.SessionEvent{
			Event:      queue.EventSessionLogout,
			UserID:     session.UserID,
			DeviceInfo: session.DeviceInfo,
			IPAddress:  session.IPAddress,
			OccurredAt: time.Now().UTC().Format(time.RFC3339),
		}
		if s.events != nil {
			_ = s.events.PublishSessionEvent(ctx, ev)
		}
	}
	return ok, nil
}

// LogoutAll revokes every active session of the user and returns the number
// of sessions affected. Zero is not an error.
func (s *AuthService) LogoutAll(ctx context.Context, user *model.User) (int64, error) {
	n, err := s.sessions.RevokeAllForUser(ctx, user.ID)
	if err != nil {
		return 0, err
	}
	s.publish(ctx, queue.EventSessionLogoutAll, user, "", "")
	return n, nil
}

// ChangePassword verifies the current password before storing a new hash.
// Existing sessions are intentionally left alone; a client that wants the
// stricter behavior calls LogoutAll afterwards.
func (s *AuthService) ChangePassword(ctx context.Context, user *model.User, currentPassword, newPassword string) error {
	if !utils.VerifyPassword(user.PasswordHash, currentPassword) {
		return ErrInvalidCredentials
	}
	hash, err := utils.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, user.ID, hash)
}

// RegisterInput carries a registration or admin-create payload.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName string
	Role     string
	IsActive bool
	HotelID  *uint64
}

// Register creates a new account. Uniqueness is checked proactively so the
// caller gets the repository sentinels (ErrUsernameExists/ErrEmailExists)
// before an insert is ever attempted; the insert still maps duplicate-key
// races onto the same sentinels.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	role, ok := model.NormalizeRole(in.Role)
	if !ok {
		return nil, ErrInvalidRole
	}
	if taken, err := s.users.ExistsUsername(ctx, username); err != nil {
		return nil, err
	} else if taken {
		return nil, repository.ErrUsernameExists
	}
	if taken, err := s.users.ExistsEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, repository.ErrEmailExists
	}
	hash, err := utils.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Username:     username,
		Email:        in.Email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(in.FullName),
		Role:         role,
		IsActive:     in.IsActive,
		HotelID:      in.HotelID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// publish sends a session audit event when a broker is wired. Failures are
// the publisher's problem; the auth flow never sees them.
func (s *AuthService) publish(ctx context.Context, event string, user *model.User, deviceInfo, ipAddress string) {
	if s.events == nil {
		return
	}
	ev := queue.SessionEvent{
		Event:      event,
		DeviceInfo: deviceInfo,
		IPAddress:  ipAddress,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	if user != nil {
		ev.UserID = user.ID
		ev.Username = user.Username
	}
	_ = s.events.PublishSessionEvent(ctx, ev)
}
