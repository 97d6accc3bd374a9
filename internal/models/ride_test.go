package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRideStatusTransitionsOnlyMoveForward(t *testing.T) {
	order := []RideStatus{
		RideStatusDrafted,
		RideStatusPaymentDone,
		RideStatusRequestAccepted,
		RideStatusDestinationReached,
	}
	for i, from := range order {
		for j, to := range order {
			assert.Equal(t, j == i+1, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}

	_, ok := RideStatusDestinationReached.Next()
	assert.False(t, ok)
}

func TestRideStatusPredicates(t *testing.T) {
	assert.True(t, RideStatusDrafted.Cancellable())
	assert.True(t, RideStatusPaymentDone.Cancellable())
	assert.False(t, RideStatusRequestAccepted.Cancellable())
	assert.False(t, RideStatusDestinationReached.Cancellable())

	assert.False(t, RideStatusDrafted.CodeVisible())
	assert.True(t, RideStatusPaymentDone.CodeVisible())
	assert.True(t, RideStatusRequestAccepted.CodeVisible())
	assert.False(t, RideStatusDestinationReached.CodeVisible())

	for _, s := range OngoingRideStatuses {
		assert.True(t, s.Ongoing())
	}
	assert.False(t, RideStatusDrafted.Ongoing())
	assert.False(t, RideStatus("cancelled").Valid())
}

func TestEnums(t *testing.T) {
	assert.True(t, TaxiTypeSUV.Valid())
	assert.False(t, TaxiType("SUV").Valid())
	assert.True(t, PaymentMethodNetBanking.Valid())
	assert.False(t, PaymentMethod("cash").Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("root").Valid())
}

func TestCredentials(t *testing.T) {
	var c Credentials
	require.NoError(t, c.SetPassword("hunter22"))
	assert.NotEqual(t, "hunter22", c.PasswordHash)
	assert.NoError(t, c.CheckPassword("hunter22"))
	assert.Error(t, c.CheckPassword("hunter23"))
}
