package model

import (
	"strings"
	"time"
)

// Role names an employee's position inside the hotel chain.  The values are
// stored verbatim in the `users.role` column and carried in API payloads.
// ADMINISTRADOR is the only role with back-office administration rights.
const (
	RoleAdministrador = "ADMINISTRADOR"
	RoleAdminBodega   = "ADMIN_BODEGA"
	RoleHousekeeper   = "HOUSEKEEPER"
	RoleJefeRecepcion = "JEFE_RECEPCION"
	RoleGerente       = "GERENTE"
	RoleController    = "CONTROLLER"
)

// Roles lists every valid role value.  New accounts default to HOUSEKEEPER.
var Roles = []string{
	RoleAdministrador,
	RoleAdminBodega,
	RoleHousekeeper,
	RoleJefeRecepcion,
	RoleGerente,
	RoleController,
}

// NormalizeRole upper-cases and trims a role string and reports whether the
// result is a known role.  An empty input maps to the HOUSEKEEPER default.
func NormalizeRole(raw string) (string, bool) {
	r := strings.ToUpper(strings.TrimSpace(raw))
	if r == "" {
		return RoleHousekeeper, true
	}
	for _, known := range Roles {
		if r == known {
			return r, true
		}
	}
	return "", false
}

// User represents an employee account as stored in the `users` table.
// Username and Email are globally unique; Username is always lowercase.
// HotelID is optional because administrators are not tied to one hotel.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique, case-normalized login name.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  FullName     – optional display name of the employee.
//  Role         – one of the Role* constants.
//  IsActive     – whether the account may log in (soft-delete flag).
//  IsSuperuser  – bootstrap superuser marker.
//  HotelID      – optional hotel association.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	FullName     string    // users.full_name
	Role         string    // users.role
	IsActive     bool      // users.is_active
	IsSuperuser  bool      // users.is_superuser
	HotelID      *uint64   // users.hotel_id (nullable)
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models one session row in the `refresh_tokens` table.  The
// opaque token string is both the lookup key handed to clients and the value
// revoked on logout.  Revocation flips IsActive; rows are only physically
// removed by the expired-token purge.
//
// Fields:
//  ID         – primary key identifier.
//  UserID     – owner of the session.
//  Token      – unique opaque token value.
//  IsActive   – false once revoked or evicted.
//  DeviceInfo – free-text device descriptor (usually the User-Agent).
//  IPAddress  – client IP recorded at login.
//  CreatedAt  – timestamp of creation.
//  ExpiresAt  – expiration timestamp.
//  LastUsedAt – last successful access-token renewal (null until first use).
type RefreshToken struct {
	ID         uint64     // refresh_tokens.id
	UserID     uint64     // refresh_tokens.user_id
	Token      string     // refresh_tokens.token
	IsActive   bool       // refresh_tokens.is_active
	DeviceInfo string     // refresh_tokens.device_info
	IPAddress  string     // refresh_tokens.ip_address
	CreatedAt  time.Time  // refresh_tokens.created_at
	ExpiresAt  time.Time  // refresh_tokens.expires_at
	LastUsedAt *time.Time // refresh_tokens.last_used_at
}

// Usable reports whether the session may still mint access tokens: it must
// be active and not expired at the given instant.
func (t *RefreshToken) Usable(now time.Time) bool {
	return t.IsActive && t.ExpiresAt.After(now)
}
