package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierForBalance(t *testing.T) {
	cases := []struct {
		balance int
		want    string
	}{
		{0, "Bronze"},
		{1, "Bronze"},
		{999, "Bronze"},
		{1000, "Silver"},
		{1001, "Silver"},
		{4999, "Silver"},
		{5000, "Gold"},
		{9999, "Gold"},
		{10000, "Platinum"},
		{250000, "Platinum"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, TierForBalance(tc.balance).Name, "balance %d", tc.balance)
	}
}

func TestTierForBalanceMonotonic(t *testing.T) {
	prev := -1
	for balance := 0; balance <= 12000; balance += 50 {
		tier := TierForBalance(balance)
		require.GreaterOrEqual(t, tier.MinPoints, prev, "tier must never drop as balance grows")
		require.LessOrEqual(t, tier.MinPoints, balance)
		prev = tier.MinPoints
	}
}

func TestTiersIsACopy(t *testing.T) {
	got := Tiers()
	require.Len(t, got, 4)

	got[0].Name = "mutated"
	assert.Equal(t, "Bronze", Tiers()[0].Name)
}

func TestParseReferenceType(t *testing.T) {
	for _, valid := range []string{"booking", "purchase", "manual", "bonus"} {
		_, ok := ParseReferenceType(valid)
		assert.True(t, ok, valid)
	}

	_, ok := ParseReferenceType("cashback")
	assert.False(t, ok)
}

func TestParseBookingStatus(t *testing.T) {
	status, ok := ParseBookingStatus("confirmed")
	require.True(t, ok)
	assert.Equal(t, BookingConfirmed, status)

	_, ok = ParseBookingStatus("rescheduled")
	assert.False(t, ok)
}

func TestBookingCanCancel(t *testing.T) {
	assert.True(t, (&Booking{Status: BookingPending}).CanCancel())
	assert.True(t, (&Booking{Status: BookingConfirmed}).CanCancel())
	assert.False(t, (&Booking{Status: BookingCompleted}).CanCancel())
	assert.False(t, (&Booking{Status: BookingCanceled}).CanCancel())
}
