// Package testutil builds throwaway databases and fixtures for package tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bengalurutaxi/btc-backend/internal/config"
	"github.com/bengalurutaxi/btc-backend/internal/database"
	"github.com/bengalurutaxi/btc-backend/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var dbSeq int64

// NewDB opens a private in-memory SQLite database with the full schema. A
// single connection serializes transactions the way row locks do on the
// production databases.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	name := fmt.Sprintf("file:btc%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
	db, err := database.Open(sqlite.Open(name), config.Database{MaxOpenConns: 1, MaxIdleConns: 1})
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// Fixtures creates rows with sensible defaults.
type Fixtures struct {
	t  testing.TB
	db *gorm.DB
	n  int
}

func NewFixtures(t testing.TB, db *gorm.DB) *Fixtures {
	return &Fixtures{t: t, db: db}
}

func (f *Fixtures) next() int {
	f.n++
	return f.n
}

func (f *Fixtures) phone(n int) string {
	return fmt.Sprintf("98%08d", n)
}

const Password = "secret123"

// passwordHash is Password hashed at the lowest bcrypt cost to keep fixtures
// fast.
var passwordHash = func() string {
	h, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(h)
}()

func (f *Fixtures) Admin() *models.Admin {
	n := f.next()
	a := &models.Admin{Name: fmt.Sprintf("admin%d", n), Email: fmt.Sprintf("admin%d@btc.test", n), PhoneNumber: f.phone(n)}
	a.PasswordHash = passwordHash
	require.NoError(f.t, f.db.Create(a).Error)
	return a
}

func (f *Fixtures) Customer() *models.Customer {
	n := f.next()
	c := &models.Customer{Name: fmt.Sprintf("customer%d", n), Email: fmt.Sprintf("customer%d@btc.test", n), PhoneNumber: f.phone(n)}
	c.PasswordHash = passwordHash
	require.NoError(f.t, f.db.Create(c).Error)
	return c
}

func (f *Fixtures) Vehicle(taxiType models.TaxiType) *models.Vehicle {
	n := f.next()
	v := &models.Vehicle{Name: fmt.Sprintf("KA-01-%04d", n), Type: taxiType}
	require.NoError(f.t, f.db.Create(v).Error)
	return v
}

// Driver creates an active driver bound to vehicle, or an inactive unbound
// one when vehicle is nil.
func (f *Fixtures) Driver(admin *models.Admin, vehicle *models.Vehicle) *models.Driver {
	n := f.next()
	d := &models.Driver{
		Name:        fmt.Sprintf("driver%d", n),
		Email:       fmt.Sprintf("driver%d@btc.test", n),
		PhoneNumber: f.phone(n),
		AdminID:     admin.ID,
		IsActive:    vehicle != nil,
	}
	if vehicle != nil {
		d.VehicleID = &vehicle.ID
	}
	d.PasswordHash = passwordHash
	require.NoError(f.t, f.db.Create(d).Error)
	return d
}

// Ride inserts a ride directly in the given status. Rides past payment get a
// payment row; accepted and completed rides get driverID; completed rides get
// a commission at completedAt.
func (f *Fixtures) Ride(customer *models.Customer, status models.RideStatus, opts ...RideOption) *models.Ride {
	o := rideOptions{distance: 5, taxiType: models.TaxiTypeSedan, bookedAt: time.Now().UTC(), code: "ABC234"}
	for _, opt := range opts {
		opt(&o)
	}

	ride := &models.Ride{
		CustomerID:      customer.ID,
		PickupLocation:  "MG Road",
		DropoffLocation: "Indiranagar",
		Distance:        o.distance,
		TaxiType:        o.taxiType,
		Status:          status,
		BookingDateTime: o.bookedAt,
	}
	if status != models.RideStatusDestinationReached {
		code := o.code
		ride.VerificationCode = &code
	}
	if status == models.RideStatusRequestAccepted || status == models.RideStatusDestinationReached {
		ride.DriverID = o.driverID
	}
	require.NoError(f.t, f.db.Create(ride).Error)

	if status != models.RideStatusDrafted {
		require.NoError(f.t, f.db.Create(&models.Payment{
			RideID:          ride.ID,
			Amount:          50 + o.distance*10,
			PaymentMethod:   models.PaymentMethodCreditCard,
			PaymentStatus:   models.PaymentStatusComplete,
			PaymentDateTime: o.bookedAt,
		}).Error)
	}
	if status == models.RideStatusDestinationReached {
		completedAt := o.completedAt
		if completedAt.IsZero() {
			completedAt = o.bookedAt
		}
		require.NoError(f.t, f.db.Create(&models.Commission{
			RideID:             ride.ID,
			CommissionAmount:   (50 + o.distance*10) * 0.4,
			CommissionDateTime: completedAt,
		}).Error)
		if o.score > 0 {
			require.NoError(f.t, f.db.Create(&models.Rating{RideID: ride.ID, Score: o.score, RatingDateTime: completedAt}).Error)
		}
	}
	return ride
}

type rideOptions struct {
	distance    float64
	taxiType    models.TaxiType
	bookedAt    time.Time
	completedAt time.Time
	driverID    *uint
	code        string
	score       int
}

type RideOption func(*rideOptions)

func WithDistance(d float64) RideOption { return func(o *rideOptions) { o.distance = d } }

func WithTaxiType(tt models.TaxiType) RideOption { return func(o *rideOptions) { o.taxiType = tt } }

func BookedAt(at time.Time) RideOption { return func(o *rideOptions) { o.bookedAt = at } }

func CompletedAt(at time.Time) RideOption { return func(o *rideOptions) { o.completedAt = at } }

func ByDriver(d *models.Driver) RideOption { return func(o *rideOptions) { o.driverID = &d.ID } }

func WithCode(code string) RideOption { return func(o *rideOptions) { o.code = code } }

func RatedWith(score int) RideOption { return func(o *rideOptions) { o.score = score } }
