package model

import "time"

// Hotel status values stored in `hotels.status`.
const (
	HotelStatusActive      = "active"
	HotelStatusMaintenance = "maintenance"
	HotelStatusInactive    = "inactive"
)

// ValidHotelStatus reports whether s is one of the known status values.
func ValidHotelStatus(s string) bool {
	return s == HotelStatusActive || s == HotelStatusMaintenance || s == HotelStatusInactive
}

// Hotel represents one property of the chain as stored in the `hotels` table.
// CuentaContable is the unique accounting code assigned by finance and
// Presupuesto the yearly budget in Chilean pesos.
//
// Fields:
//  ID             – primary key identifier.
//  Name           – hotel name, unique across the chain.
//  Location       – city or area of the property.
//  Address        – street address.
//  Rooms          – number of rooms.
//  Manager        – name of the property manager.
//  Phone          – contact phone number.
//  Description    – free-text description.
//  Status         – one of the HotelStatus* constants.
//  IsActive       – whether the hotel is operating.
//  CuentaContable – unique accounting code (e.g. "001").
//  Presupuesto    – budget in CLP.
//  CreatedAt      – timestamp of creation.
//  UpdatedAt      – timestamp of last update.
type Hotel struct {
	ID             uint64    // hotels.id
	Name           string    // hotels.name
	Location       string    // hotels.location
	Address        string    // hotels.address
	Rooms          int       // hotels.rooms
	Manager        string    // hotels.manager
	Phone          string    // hotels.phone
	Description    string    // hotels.description
	Status         string    // hotels.status
	IsActive       bool      // hotels.is_active
	CuentaContable string    // hotels.cuenta_contable
	Presupuesto    int64     // hotels.presupuesto
	CreatedAt      time.Time // hotels.created_at
	UpdatedAt      time.Time // hotels.updated_at
}

// HotelStats aggregates fleet-wide numbers for the admin dashboard.
type HotelStats struct {
	TotalHotels       int   `json:"total_hotels"`
	ActiveHotels      int   `json:"active_hotels"`
	MaintenanceHotels int   `json:"maintenance_hotels"`
	InactiveHotels    int   `json:"inactive_hotels"`
	TotalRooms        int   `json:"total_rooms"`
	TotalPresupuesto  int64 `json:"total_presupuesto"`
}
