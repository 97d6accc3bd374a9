package services

import (
	"context"
	"time"

	"github.com/bengalurutaxi/btc-backend/internal/metrics"
	"github.com/bengalurutaxi/btc-backend/internal/models"
)

// RideEvent describes a committed change to a ride.
type RideEvent struct {
	Type       string            `json:"type"`
	RideID     uint              `json:"rideId"`
	CustomerID uint              `json:"customerId"`
	DriverID   *uint             `json:"driverId,omitempty"`
	TaxiType   models.TaxiType   `json:"taxiType"`
	Status     models.RideStatus `json:"status,omitempty"`
	At         time.Time         `json:"at"`
}

const (
	EventRideBooked    = "ride_booked"
	EventRideDeleted   = "ride_deleted"
	EventRideCancelled = "ride_cancelled"
	EventRidePaid      = "ride_paid"
	EventRideAccepted  = "ride_accepted"
	EventRideCompleted = "ride_completed"
	EventRideRated     = "ride_rated"
)

// RideNotifier is told about ride changes after they commit. Implementations
// must not block the caller for long and cannot affect the outcome.
type RideNotifier interface {
	RideChanged(ctx context.Context, event RideEvent)
}

// Notifiers fans an event out to every configured notifier.
type Notifiers []RideNotifier

func (n Notifiers) RideChanged(ctx context.Context, event RideEvent) {
	for _, notifier := range n {
		if notifier != nil {
			notifier.RideChanged(ctx, event)
		}
	}
}

func newRideEvent(eventType string, ride *models.Ride) RideEvent {
	return RideEvent{
		Type:       eventType,
		RideID:     ride.ID,
		CustomerID: ride.CustomerID,
		DriverID:   ride.DriverID,
		TaxiType:   ride.TaxiType,
		Status:     ride.Status,
		At:         time.Now().UTC(),
	}
}

// emit records the transition metric and notifies listeners.
func emit(ctx context.Context, notifier RideNotifier, event RideEvent) {
	label := string(event.Status)
	switch event.Type {
	case EventRideDeleted:
		label = "deleted"
	case EventRideCancelled:
		label = "cancelled"
	case EventRideRated:
		label = "rated"
	}
	metrics.RideTransition(label)
	if notifier != nil {
		notifier.RideChanged(ctx, event)
	}
}
