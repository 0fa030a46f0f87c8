package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/talbothotels/backoffice/internal/model"
	"github.com/talbothotels/backoffice/internal/utils"
)

// TokenRepo is the durable session store backing refresh tokens. Every
// mutation is a single SQL statement so concurrent logins and logouts for
// the same user serialize at the database rather than in process memory.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

const tokenColumns = "id,user_id,token,is_active,device_info,ip_address,created_at,expires_at,last_used_at"

func scanToken(row interface{ Scan(...any) error }) (model.RefreshToken, error) {
	var (
		t        model.RefreshToken
		device   sql.NullString
		ip       sql.NullString
		lastUsed sql.NullTime
	)
	err := row.Scan(&t.ID, &t.UserID, &t.Token, &t.IsActive, &device, &ip,
		&t.CreatedAt, &t.ExpiresAt, &lastUsed)
	if err != nil {
		return model.RefreshToken{}, err
	}
	t.DeviceInfo = device.String
	t.IPAddress = ip.String
	if lastUsed.Valid {
		lu := lastUsed.Time
		t.LastUsedAt = &lu
	}
	return t, nil
}

// Create generates a fresh opaque token for the user and inserts the session
// row with active=true, the given device/IP metadata and expiry now+ttl.
func (r *TokenRepo) Create(ctx context.Context, userID uint64, deviceInfo, ipAddress string, ttl time.Duration) (*model.RefreshToken, error) {
	raw, err := utils.NewOpaqueToken()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	exp := now.Add(ttl)
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id,token,is_active,device_info,ip_address,expires_at) VALUES (?,?,TRUE,?,?,?)",
		userID, raw, nullIfEmpty(deviceInfo), nullIfEmpty(ipAddress), exp)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.RefreshToken{
		ID:         uint64(id),
		UserID:     userID,
		Token:      raw,
		IsActive:   true,
		DeviceInfo: deviceInfo,
		IPAddress:  ipAddress,
		CreatedAt:  now,
		ExpiresAt:  exp,
	}, nil
}

// FindActive returns the session row for the exact token string if it has
// not been revoked, regardless of expiry. The caller decides whether an
// expired-but-active row should be eagerly revoked; a revoked or unknown
// token looks identical (nil, nil).
func (r *TokenRepo) FindActive(ctx context.Context, token string) (*model.RefreshToken, error) {
	t, err := scanToken(r.DB.QueryRowContext(ctx,
		"SELECT "+tokenColumns+" FROM refresh_tokens WHERE token=? AND is_active=TRUE LIMIT 1", token))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Revoke flips is_active off for the matching token no matter its expiry
// state and reports whether a row was found. The row itself stays behind
// for auditing until the purge removes it.
func (r *TokenRepo) Revoke(ctx context.Context, token string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET is_active=FALSE WHERE token=?", token)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// RevokeAllForUser revokes every active session of the user and returns how
// many were affected.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET is_active=FALSE WHERE user_id=? AND is_active=TRUE", userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// TouchLastUsed stamps last_used_at=now on the exact-match row.
func (r *TokenRepo) TouchLastUsed(ctx context.Context, token string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET last_used_at=UTC_TIMESTAMP() WHERE token=?", token)
	return err
}

// PurgeExpired hard-deletes every row, active or not, whose expiry is in the
// past. This is the only irreversible deletion path for session rows.
func (r *TokenRepo) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE expires_at < UTC_TIMESTAMP()")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountActive counts the user's usable sessions (active and unexpired).
func (r *TokenRepo) CountActive(ctx context.Context, userID uint64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM refresh_tokens WHERE user_id=? AND is_active=TRUE AND expires_at > UTC_TIMESTAMP()",
		userID).Scan(&n)
	return n, err
}

// OldestActive returns the user's oldest usable session, the candidate for
// eviction when the per-user session cap is reached.
func (r *TokenRepo) OldestActive(ctx context.Context, userID uint64) (*model.RefreshToken, error) {
	t, err := scanToken(r.DB.QueryRowContext(ctx,
		"SELECT "+tokenColumns+" FROM refresh_tokens WHERE user_id=? AND is_active=TRUE AND expires_at > UTC_TIMESTAMP() ORDER BY created_at ASC LIMIT 1",
		userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
