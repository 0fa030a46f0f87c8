package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/talbothotels/backoffice/internal/model"
)

// HotelRepo encapsulates all database queries against the `hotels` table.
type HotelRepo struct{ DB *sql.DB }

func NewHotelRepo(db *sql.DB) *HotelRepo { return &HotelRepo{DB: db} }

const hotelColumns = "id,name,location,address,rooms,manager,phone,description,status,is_active,cuenta_contable,presupuesto,created_at,updated_at"

func scanHotel(row interface{ Scan(...any) error }) (model.Hotel, error) {
	var (
		h       model.Hotel
		address sql.NullString
		manager sql.NullString
		phone   sql.NullString
		desc    sql.NullString
		cuenta  sql.NullString
		pres    sql.NullInt64
	)
	err := row.Scan(&h.ID, &h.Name, &h.Location, &address, &h.Rooms, &manager,
		&phone, &desc, &h.Status, &h.IsActive, &cuenta, &pres, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return model.Hotel{}, err
	}
	h.Address = address.String
	h.Manager = manager.String
	h.Phone = phone.String
	h.Description = desc.String
	h.CuentaContable = cuenta.String
	h.Presupuesto = pres.Int64
	return h, nil
}

// Create inserts a hotel and populates its ID and timestamps.
func (r *HotelRepo) Create(ctx context.Context, h *model.Hotel) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO hotels (name,location,address,rooms,manager,phone,description,status,is_active,cuenta_contable,presupuesto) VALUES (?,?,?,?,?,?,?,?,?,?,?)",
		h.Name, h.Location, nullIfEmpty(h.Address), h.Rooms, nullIfEmpty(h.Manager),
		nullIfEmpty(h.Phone), nullIfEmpty(h.Description), h.Status, h.IsActive,
		nullIfEmpty(h.CuentaContable), h.Presupuesto)
	if err != nil {
		return dupHotelErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = uint64(id)
	return r.DB.QueryRowContext(ctx,
		"SELECT created_at,updated_at FROM hotels WHERE id=?", h.ID).
		Scan(&h.CreatedAt, &h.UpdatedAt)
}

// GetByID fetches a hotel by id.
func (r *HotelRepo) GetByID(ctx context.Context, id uint64) (*model.Hotel, error) {
	h, err := scanHotel(r.DB.QueryRowContext(ctx,
		"SELECT "+hotelColumns+" FROM hotels WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrHotelNotFound
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// GetByName fetches a hotel by exact name, used for uniqueness checks.
func (r *HotelRepo) GetByName(ctx context.Context, name string) (*model.Hotel, error) {
	h, err := scanHotel(r.DB.QueryRowContext(ctx,
		"SELECT "+hotelColumns+" FROM hotels WHERE name=? LIMIT 1", name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrHotelNotFound
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// List returns a page of hotels ordered by id. With activeOnly set, rows
// with is_active=false are filtered out.
func (r *HotelRepo) List(ctx context.Context, offset, limit int, activeOnly bool) ([]model.Hotel, error) {
	q := "SELECT " + hotelColumns + " FROM hotels"
	if activeOnly {
		q += " WHERE is_active=TRUE"
	}
	q += " ORDER BY id LIMIT ? OFFSET ?"
	return r.queryHotels(ctx, q, limit, offset)
}

// Count counts hotels, optionally active-only.
func (r *HotelRepo) Count(ctx context.Context, activeOnly bool) (int, error) {
	q := "SELECT COUNT(*) FROM hotels"
	if activeOnly {
		q += " WHERE is_active=TRUE"
	}
	var n int
	err := r.DB.QueryRowContext(ctx, q).Scan(&n)
	return n, err
}

// Search matches the term against name and location with a LIKE filter.
func (r *HotelRepo) Search(ctx context.Context, term string, offset, limit int) ([]model.Hotel, int, error) {
	like := "%" + term + "%"
	var total int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM hotels WHERE name LIKE ? OR location LIKE ?", like, like).Scan(&total); err != nil {
		return nil, 0, err
	}
	hotels, err := r.queryHotels(ctx,
		"SELECT "+hotelColumns+" FROM hotels WHERE name LIKE ? OR location LIKE ? ORDER BY id LIMIT ? OFFSET ?",
		like, like, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return hotels, total, nil
}

// ListByStatus returns hotels in a given status together with their total.
func (r *HotelRepo) ListByStatus(ctx context.Context, status string, offset, limit int) ([]model.Hotel, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM hotels WHERE status=?", status).Scan(&total); err != nil {
		return nil, 0, err
	}
	hotels, err := r.queryHotels(ctx,
		"SELECT "+hotelColumns+" FROM hotels WHERE status=? ORDER BY id LIMIT ? OFFSET ?",
		status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return hotels, total, nil
}

// Update persists every mutable column of the hotel row.
func (r *HotelRepo) Update(ctx context.Context, h *model.Hotel) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE hotels SET name=?,location=?,address=?,rooms=?,manager=?,phone=?,description=?,status=?,is_active=?,cuenta_contable=?,presupuesto=? WHERE id=?",
		h.Name, h.Location, nullIfEmpty(h.Address), h.Rooms, nullIfEmpty(h.Manager),
		nullIfEmpty(h.Phone), nullIfEmpty(h.Description), h.Status, h.IsActive,
		nullIfEmpty(h.CuentaContable), h.Presupuesto, h.ID)
	return dupHotelErr(err)
}

// Delete removes the hotel row permanently. Hotels are hard-deleted, unlike
// users which are only deactivated.
func (r *HotelRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM hotels WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrHotelNotFound
	}
	return nil
}

// Stats aggregates fleet counters for the admin dashboard in one query.
func (r *HotelRepo) Stats(ctx context.Context) (*model.HotelStats, error) {
	var s model.HotelStats
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(status='active'),0),
		        COALESCE(SUM(status='maintenance'),0),
		        COALESCE(SUM(status='inactive'),0),
		        COALESCE(SUM(rooms),0),
		        COALESCE(SUM(presupuesto),0)
		   FROM hotels`).
		Scan(&s.TotalHotels, &s.ActiveHotels, &s.MaintenanceHotels,
			&s.InactiveHotels, &s.TotalRooms, &s.TotalPresupuesto)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// dupHotelErr maps MySQL duplicate-key errors (1062) onto the repository
// sentinels by looking at which unique index is named in the message.
func dupHotelErr(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "1062") {
		if strings.Contains(msg, "cuenta") {
			return ErrCuentaContableExists
		}
		return ErrHotelNameExists
	}
	return err
}

func (r *HotelRepo) queryHotels(ctx context.Context, q string, args ...any) ([]model.Hotel, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Hotel{}
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
