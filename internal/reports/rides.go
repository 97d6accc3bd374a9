package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/bengalurutaxi/btc-backend/internal/models"
	"github.com/bengalurutaxi/btc-backend/pkg/utils"
)

// CustomerRide is one row of a customer's ride list or history.
type CustomerRide struct {
	RideID           uint      `db:"ride_id" json:"rideId"`
	PickupLocation   string    `db:"pickup_location" json:"pickupLocation"`
	DropoffLocation  string    `db:"dropoff_location" json:"dropoffLocation"`
	Distance         float64   `db:"distance" json:"distance"`
	TaxiType         string    `db:"taxi_type" json:"taxiType"`
	RideStatus       string    `db:"ride_status" json:"rideStatus"`
	BookingDateTime  time.Time `db:"booking_date_time" json:"bookingDateTime"`
	VerificationCode *string   `db:"verification_code" json:"verificationCode"`
	DriverID         *uint     `db:"driver_id" json:"driverId"`
	DriverName       *string   `db:"driver_name" json:"driverName"`
	VehicleName      *string   `db:"vehicle_name" json:"vehicleName"`
	PaymentAmount    *float64  `db:"payment_amount" json:"paymentAmount"`
	PaymentMethod    *string   `db:"payment_method" json:"paymentMethod"`
	RatingScore      *int      `db:"rating_score" json:"ratingScore"`
	Fare             float64   `db:"-" json:"fare"`
}

// AvailableRide is an open request a driver may accept.
type AvailableRide struct {
	RideID              uint      `db:"ride_id" json:"rideId"`
	PickupLocation      string    `db:"pickup_location" json:"pickupLocation"`
	DropoffLocation     string    `db:"dropoff_location" json:"dropoffLocation"`
	Distance            float64   `db:"distance" json:"distance"`
	TaxiType            string    `db:"taxi_type" json:"taxiType"`
	BookingDateTime     time.Time `db:"booking_date_time" json:"bookingDateTime"`
	PotentialCommission float64   `db:"-" json:"potentialCommission"`
}

// DriverRide is a driver's current or completed ride.
type DriverRide struct {
	RideID           uint      `db:"ride_id" json:"rideId"`
	CustomerID       uint      `db:"customer_id" json:"customerId"`
	CustomerName     string    `db:"customer_name" json:"customerName"`
	PickupLocation   string    `db:"pickup_location" json:"pickupLocation"`
	DropoffLocation  string    `db:"dropoff_location" json:"dropoffLocation"`
	Distance         float64   `db:"distance" json:"distance"`
	TaxiType         string    `db:"taxi_type" json:"taxiType"`
	RideStatus       string    `db:"ride_status" json:"rideStatus"`
	BookingDateTime  time.Time `db:"booking_date_time" json:"bookingDateTime"`
	CommissionAmount *float64  `db:"commission_amount" json:"-"`
	RatingScore      *int      `db:"rating_score" json:"ratingScore"`
	Commission       float64   `db:"-" json:"commission"`
}

// HistoryFilter narrows completed-ride listings. Zero values mean no bound.
// MinFare and MaxFare bound the fare for customers and the commission for
// drivers.
type HistoryFilter struct {
	Pickup      string
	Dropoff     string
	TaxiType    string
	MinDistance *float64
	MaxDistance *float64
	MinFare     *float64
	MaxFare     *float64
	MinRating   *int
	MaxRating   *int
	StartDate   *time.Time
	EndDate     *time.Time
}

func (f HistoryFilter) apply(q *query, amountExpr string) {
	if f.Pickup != "" {
		q.where("r.pickup_location LIKE ?", likePattern(f.Pickup))
	}
	if f.Dropoff != "" {
		q.where("r.dropoff_location LIKE ?", likePattern(f.Dropoff))
	}
	if f.TaxiType != "" {
		q.where("r.taxi_type = ?", f.TaxiType)
	}
	if f.MinDistance != nil {
		q.where("r.distance >= ?", *f.MinDistance)
	}
	if f.MaxDistance != nil {
		q.where("r.distance <= ?", *f.MaxDistance)
	}
	if f.MinFare != nil {
		q.where(amountExpr+" >= ?", *f.MinFare)
	}
	if f.MaxFare != nil {
		q.where(amountExpr+" <= ?", *f.MaxFare)
	}
	if f.MinRating != nil {
		q.where("rt.score >= ?", *f.MinRating)
	}
	if f.MaxRating != nil {
		q.where("rt.score <= ?", *f.MaxRating)
	}
	if f.StartDate != nil {
		q.where("r.booking_date_time >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		q.where("r.booking_date_time < ?", *f.EndDate)
	}
}

const customerRideColumns = `
	SELECT r.ride_id, r.pickup_location, r.dropoff_location, r.distance, r.taxi_type,
		r.ride_status, r.booking_date_time, r.verification_code, r.driver_id,
		d.name AS driver_name, v.name AS vehicle_name,
		p.amount AS payment_amount, p.payment_method, rt.score AS rating_score
	FROM rides r
	LEFT JOIN drivers d ON d.driver_id = r.driver_id
	LEFT JOIN vehicles v ON v.vehicle_id = d.vehicle_id
	LEFT JOIN payments p ON p.ride_id = r.ride_id
	LEFT JOIN ratings rt ON rt.ride_id = r.ride_id`

// CustomerRidesByStatus lists a customer's rides in any of the given statuses,
// newest first. Verification codes are returned as stored.
func (s *Store) CustomerRidesByStatus(ctx context.Context, customerID uint, statuses []models.RideStatus) ([]CustomerRide, error) {
	q := &query{base: customerRideColumns, suffix: "ORDER BY r.booking_date_time DESC, r.ride_id DESC"}
	q.where("r.customer_id = ?", customerID)
	q.where("r.ride_status IN (?)", statusStrings(statuses))

	rides := []CustomerRide{}
	if err := s.selectInto(ctx, &rides, q); err != nil {
		return nil, err
	}
	for i := range rides {
		rides[i].Fare = utils.CalculateFare(rides[i].Distance)
	}
	return rides, nil
}

// CustomerHistory lists a customer's completed rides, newest first.
func (s *Store) CustomerHistory(ctx context.Context, customerID uint, filter HistoryFilter) ([]CustomerRide, error) {
	q := &query{base: customerRideColumns, suffix: "ORDER BY r.booking_date_time DESC, r.ride_id DESC"}
	q.where("r.customer_id = ?", customerID)
	q.where("r.ride_status = ?", string(models.RideStatusDestinationReached))
	filter.apply(q, fareExpr())

	rides := []CustomerRide{}
	if err := s.selectInto(ctx, &rides, q); err != nil {
		return nil, err
	}
	for i := range rides {
		rides[i].Fare = utils.CalculateFare(rides[i].Distance)
		rides[i].VerificationCode = nil
	}
	return rides, nil
}

// AvailableRequests lists paid, unassigned rides of one taxi type, oldest
// first.
func (s *Store) AvailableRequests(ctx context.Context, taxiType models.TaxiType) ([]AvailableRide, error) {
	q := &query{
		base: `SELECT r.ride_id, r.pickup_location, r.dropoff_location, r.distance, r.taxi_type, r.booking_date_time
			FROM rides r`,
		suffix: "ORDER BY r.booking_date_time ASC, r.ride_id ASC",
	}
	q.where("r.ride_status = ?", string(models.RideStatusPaymentDone))
	q.where("r.driver_id IS NULL")
	q.where("r.taxi_type = ?", string(taxiType))

	rides := []AvailableRide{}
	if err := s.selectInto(ctx, &rides, q); err != nil {
		return nil, err
	}
	for i := range rides {
		rides[i].PotentialCommission = utils.CalculateCommission(rides[i].Distance)
	}
	return rides, nil
}

const driverRideColumns = `
	SELECT r.ride_id, r.customer_id, c.name AS customer_name, r.pickup_location, r.dropoff_location,
		r.distance, r.taxi_type, r.ride_status, r.booking_date_time,
		cm.commission_amount, rt.score AS rating_score
	FROM rides r
	JOIN customers c ON c.customer_id = r.customer_id
	LEFT JOIN commissions cm ON cm.ride_id = r.ride_id
	LEFT JOIN ratings rt ON rt.ride_id = r.ride_id`

// CurrentDriverRide returns the driver's accepted ride, or nil when they have
// none.
func (s *Store) CurrentDriverRide(ctx context.Context, driverID uint) (*DriverRide, error) {
	q := &query{base: driverRideColumns, suffix: "ORDER BY r.ride_id"}
	q.where("r.driver_id = ?", driverID)
	q.where("r.ride_status = ?", string(models.RideStatusRequestAccepted))

	rides := []DriverRide{}
	if err := s.selectInto(ctx, &rides, q); err != nil {
		return nil, err
	}
	if len(rides) == 0 {
		return nil, nil
	}
	ride := rides[0]
	ride.Commission = utils.CalculateCommission(ride.Distance)
	return &ride, nil
}

// DriverCompleted lists the driver's completed rides, newest first.
func (s *Store) DriverCompleted(ctx context.Context, driverID uint, filter HistoryFilter) ([]DriverRide, error) {
	q := &query{base: driverRideColumns, suffix: "ORDER BY r.booking_date_time DESC, r.ride_id DESC"}
	q.where("r.driver_id = ?", driverID)
	q.where("r.ride_status = ?", string(models.RideStatusDestinationReached))
	filter.apply(q, "COALESCE(cm.commission_amount, "+commissionExpr()+")")

	rides := []DriverRide{}
	if err := s.selectInto(ctx, &rides, q); err != nil {
		return nil, err
	}
	for i := range rides {
		if rides[i].CommissionAmount != nil {
			rides[i].Commission = *rides[i].CommissionAmount
		} else {
			rides[i].Commission = utils.CalculateCommission(rides[i].Distance)
		}
	}
	return rides, nil
}

func fareExpr() string {
	return fmt.Sprintf("(%g + r.distance * %g)", utils.BaseFare, utils.RatePerKm)
}

func commissionExpr() string {
	return fmt.Sprintf("(%s * %g)", fareExpr(), utils.DriverShare)
}

func statusStrings(statuses []models.RideStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
