package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePage(t *testing.T) {
	cases := []struct {
		name        string
		page, per   int
		wantPage    int
		wantPerPage int
	}{
		{"defaults", 0, 0, 1, 10},
		{"negative page", -3, 20, 1, 20},
		{"valid", 2, 50, 2, 50},
		{"per page too large", 1, 500, 1, 10},
		{"per page at cap", 1, 100, 1, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page, per := NormalizePage(tc.page, tc.per)
			assert.Equal(t, tc.wantPage, page)
			assert.Equal(t, tc.wantPerPage, per)
		})
	}
}

func TestPages(t *testing.T) {
	assert.Equal(t, 1, Pages(0, 10), "an empty result set still has one page")
	assert.Equal(t, 1, Pages(10, 10))
	assert.Equal(t, 2, Pages(11, 10))
	assert.Equal(t, 5, Pages(41, 10))
}
