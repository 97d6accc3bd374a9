package models

import "time"

type RideStatus string

const (
	RideStatusDrafted            RideStatus = "drafted"
	RideStatusPaymentDone        RideStatus = "payment done"
	RideStatusRequestAccepted    RideStatus = "request accepted"
	RideStatusDestinationReached RideStatus = "destination reached"
)

// rideTransitions lists the single forward step allowed from each status.
// Cancellation is not a transition: the ride row is deleted instead.
var rideTransitions = map[RideStatus]RideStatus{
	RideStatusDrafted:         RideStatusPaymentDone,
	RideStatusPaymentDone:     RideStatusRequestAccepted,
	RideStatusRequestAccepted: RideStatusDestinationReached,
}

func (s RideStatus) Valid() bool {
	switch s {
	case RideStatusDrafted, RideStatusPaymentDone, RideStatusRequestAccepted, RideStatusDestinationReached:
		return true
	}
	return false
}

// Next returns the status that follows s, or false when s is terminal.
func (s RideStatus) Next() (RideStatus, bool) {
	next, ok := rideTransitions[s]
	return next, ok
}

func (s RideStatus) CanTransitionTo(to RideStatus) bool {
	next, ok := s.Next()
	return ok && next == to
}

// Cancellable reports whether the customer may still withdraw the ride.
func (s RideStatus) Cancellable() bool {
	return s == RideStatusDrafted || s == RideStatusPaymentDone
}

// Ongoing rides block driver updates and deactivation.
func (s RideStatus) Ongoing() bool {
	return s == RideStatusPaymentDone || s == RideStatusRequestAccepted
}

// CodeVisible reports whether the verification code may be shown to the
// customer.
func (s RideStatus) CodeVisible() bool {
	return s == RideStatusPaymentDone || s == RideStatusRequestAccepted
}

// OngoingRideStatuses is Ongoing as a list, for IN queries.
var OngoingRideStatuses = []RideStatus{RideStatusPaymentDone, RideStatusRequestAccepted}

type TaxiType string

const (
	TaxiTypeSedan     TaxiType = "sedan"
	TaxiTypeHatchback TaxiType = "hatchback"
	TaxiTypeSUV       TaxiType = "suv"
)

func (t TaxiType) Valid() bool {
	switch t {
	case TaxiTypeSedan, TaxiTypeHatchback, TaxiTypeSUV:
		return true
	}
	return false
}

type Ride struct {
	ID               uint       `gorm:"column:ride_id;primaryKey;autoIncrement" json:"rideId"`
	CustomerID       uint       `gorm:"column:customer_id;not null;index" json:"customerId"`
	DriverID         *uint      `gorm:"column:driver_id;index" json:"driverId"`
	PickupLocation   string     `gorm:"column:pickup_location;size:255;not null" json:"pickupLocation"`
	DropoffLocation  string     `gorm:"column:dropoff_location;size:255;not null" json:"dropoffLocation"`
	Distance         float64    `gorm:"column:distance;not null" json:"distance"`
	TaxiType         TaxiType   `gorm:"column:taxi_type;size:16;not null" json:"taxiType"`
	Status           RideStatus `gorm:"column:ride_status;size:32;not null;index" json:"rideStatus"`
	BookingDateTime  time.Time  `gorm:"column:booking_date_time;not null;index" json:"bookingDateTime"`
	VerificationCode *string    `gorm:"column:verification_code;size:6" json:"-"`
}

func (Ride) TableName() string {
	return "rides"
}
