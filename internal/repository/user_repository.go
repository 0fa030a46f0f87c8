package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/talbothotels/backoffice/internal/model"
)

// UserRepo encapsulates all database queries against the `users` table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,username,email,password_hash,full_name,role,is_active,is_superuser,hotel_id,created_at,updated_at"

// scanUser reads one row into a model.User, mapping nullable columns.
func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var (
		u        model.User
		fullName sql.NullString
		hotelID  sql.NullInt64
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &fullName,
		&u.Role, &u.IsActive, &u.IsSuperuser, &hotelID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	u.FullName = fullName.String
	if hotelID.Valid {
		id := uint64(hotelID.Int64)
		u.HotelID = &id
	}
	return u, nil
}

// Create inserts a user and populates its ID. Duplicate key violations are
// translated into ErrUsernameExists/ErrEmailExists based on the index named
// in the driver error.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Username = strings.ToLower(strings.TrimSpace(u.Username))
	var hotelID any
	if u.HotelID != nil {
		hotelID = *u.HotelID
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username,email,password_hash,full_name,role,is_active,is_superuser,hotel_id) VALUES (?,?,?,?,?,?,?,?)",
		u.Username, u.Email, u.PasswordHash, nullIfEmpty(u.FullName), u.Role, u.IsActive, u.IsSuperuser, hotelID)
	if err != nil {
		return dupUserErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return r.DB.QueryRowContext(ctx,
		"SELECT created_at,updated_at FROM users WHERE id=?", u.ID).
		Scan(&u.CreatedAt, &u.UpdatedAt)
}

// GetByUsername fetches a user by normalized username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ExistsUsername reports whether a user with the normalized username exists.
func (r *UserRepo) ExistsUsername(ctx context.Context, username string) (bool, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE username=?", username).Scan(&n)
	return n > 0, err
}

// ExistsEmail reports whether a user with the email exists.
func (r *UserRepo) ExistsEmail(ctx context.Context, email string) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE email=?", email).Scan(&n)
	return n > 0, err
}

// List returns a page of users ordered by id together with Count for
// pagination metadata.
func (r *UserRepo) List(ctx context.Context, offset, limit int) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY id LIMIT ? OFFSET ?", limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Count returns the total number of users.
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n)
	return n, err
}

// Update persists every mutable column of the user row.
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
	u.Username = strings.ToLower(strings.TrimSpace(u.Username))
	var hotelID any
	if u.HotelID != nil {
		hotelID = *u.HotelID
	}
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET username=?,email=?,password_hash=?,full_name=?,role=?,is_active=?,is_superuser=?,hotel_id=? WHERE id=?",
		u.Username, u.Email, u.PasswordHash, nullIfEmpty(u.FullName), u.Role, u.IsActive, u.IsSuperuser, hotelID, u.ID)
	return dupUserErr(err)
}

// UpdatePassword stores a new password hash for the user.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=? WHERE id=?", hash, id)
	return err
}

// Deactivate clears the is_active flag (soft delete). Sessions owned by the
// user are left to the auth service to revoke.
func (r *UserRepo) Deactivate(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_active=FALSE WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// dupUserErr maps MySQL duplicate-key errors (1062) onto the repository
// sentinels by looking at which unique index is named in the message.
func dupUserErr(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "1062") {
		if strings.Contains(msg, "email") {
			return ErrEmailExists
		}
		return ErrUsernameExists
	}
	return err
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
