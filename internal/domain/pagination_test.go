package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePage(t *testing.T) {
	cases := []struct {
		name              string
		page, limit       int
		wantPage, wantLim int
	}{
		{"defaults", 0, 0, 1, 10},
		{"negative", -3, -1, 1, 10},
		{"passthrough", 2, 5, 2, 5},
		{"clamped", 1, 5000, 1, 100},
		{"at max", 3, 100, 3, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, l := NormalizePage(tc.page, tc.limit)
			assert.Equal(t, tc.wantPage, p)
			assert.Equal(t, tc.wantLim, l)
		})
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Offset(1, 10))
	assert.Equal(t, 5, Offset(2, 5))
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(TxStatusSuccess))
	assert.True(t, IsTerminal(TxStatusFailed))
	assert.False(t, IsTerminal(TxStatusPending))
	assert.False(t, IsTerminal(TxStatusActive))
}

func TestCanSettle(t *testing.T) {
	assert.True(t, CanSettle(TxStatusPending, TxStatusSuccess))
	assert.True(t, CanSettle(TxStatusActive, TxStatusFailed))
	assert.True(t, CanSettle(TxStatusFailed, TxStatusSuccess))
	assert.False(t, CanSettle(TxStatusFailed, TxStatusFailed))
	assert.False(t, CanSettle(TxStatusSuccess, TxStatusFailed))
	assert.False(t, CanSettle(TxStatusSuccess, TxStatusSuccess))
	assert.False(t, CanSettle(TxStatusPending, TxStatusPending))
}
