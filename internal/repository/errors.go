// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the auth
// service and handlers to distinguish failure scenarios without inspecting
// driver-specific errors: duplicate usernames and emails surface as typed
// conflicts, missing rows as typed not-found values.
package repository

import "errors"

// ErrUserNotFound is returned when a user lookup matches no row.
var ErrUserNotFound = errors.New("user not found")

// ErrUsernameExists is returned when creating or updating a user would
// violate the unique constraint on users.username.
var ErrUsernameExists = errors.New("username already exists")

// ErrEmailExists is returned when creating or updating a user would
// violate the unique constraint on users.email.
var ErrEmailExists = errors.New("email already exists")

// ErrHotelNotFound is returned when a hotel lookup matches no row.
var ErrHotelNotFound = errors.New("hotel not found")

// ErrHotelNameExists is returned when a hotel create or rename collides
// with an existing hotel name.
var ErrHotelNameExists = errors.New("hotel name already exists")

// ErrCuentaContableExists is returned when a hotel create or update collides
// with an existing accounting code.
var ErrCuentaContableExists = errors.New("cuenta contable already exists")
