package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRole(t *testing.T) {
	cases := []struct {
		in    string
		want  string
		valid bool
	}{
		{"", RoleHousekeeper, true}, // default role
		{"gerente", RoleGerente, true},
		{" ADMINISTRADOR ", RoleAdministrador, true},
		{"Jefe_Recepcion", RoleJefeRecepcion, true},
		{"WIZARD", "", false},
	}
	for _, tc := range cases {
		got, ok := NormalizeRole(tc.in)
		assert.Equal(t, tc.valid, ok, "input %q", tc.in)
		if tc.valid {
			assert.Equal(t, tc.want, got, "input %q", tc.in)
		}
	}
}

func TestRefreshTokenUsable(t *testing.T) {
	now := time.Now().UTC()

	live := RefreshToken{IsActive: true, ExpiresAt: now.Add(time.Hour)}
	assert.True(t, live.Usable(now))

	revoked := RefreshToken{IsActive: false, ExpiresAt: now.Add(time.Hour)}
	assert.False(t, revoked.Usable(now))

	expired := RefreshToken{IsActive: true, ExpiresAt: now.Add(-time.Second)}
	assert.False(t, expired.Usable(now))
}

func TestValidHotelStatus(t *testing.T) {
	assert.True(t, ValidHotelStatus(HotelStatusActive))
	assert.True(t, ValidHotelStatus(HotelStatusMaintenance))
	assert.True(t, ValidHotelStatus(HotelStatusInactive))
	assert.False(t, ValidHotelStatus("closed"))
	assert.False(t, ValidHotelStatus(""))
}
