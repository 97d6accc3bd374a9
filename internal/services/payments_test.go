package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bengalurutaxi/btc-backend/internal/models"
	"github.com/bengalurutaxi/btc-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestProcessPaymentMovesDraftToPaid(t *testing.T) {
	env := newRideEnv(t)
	customer := env.fx.Customer()
	ride := env.fx.Ride(customer, models.RideStatusDrafted)

	res, err := env.rides.ProcessPayment(context.Background(), customer.ID, PaymentInput{
		RideID: ride.ID, Amount: 100, PaymentMethod: models.PaymentMethodDebitCard,
	})
	require.NoError(t, err)
	assert.Equal(t, ride.ID, res.RideID)
	assert.Equal(t, models.PaymentStatusComplete, res.Status)
	assert.NotZero(t, res.PaymentID)

	assert.Equal(t, models.RideStatusPaymentDone, env.reload(t, ride.ID).Status)
	var payment models.Payment
	require.NoError(t, env.db.First(&payment, "ride_id = ?", ride.ID).Error)
	assert.Equal(t, 100.0, payment.Amount)
	assert.Equal(t, models.PaymentMethodDebitCard, payment.PaymentMethod)
	assert.Equal(t, []string{EventRidePaid}, env.notifier.types())

	_, err = env.rides.ProcessPayment(context.Background(), customer.ID, PaymentInput{
		RideID: ride.ID, Amount: 100, PaymentMethod: models.PaymentMethodDebitCard,
	})
	assertStatus(t, err, http.StatusNotFound)
}

func TestProcessPaymentRejections(t *testing.T) {
	env := newRideEnv(t)
	customer := env.fx.Customer()
	ride := env.fx.Ride(customer, models.RideStatusDrafted)

	tests := []struct {
		name       string
		customerID uint
		input      PaymentInput
		code       int
	}{
		{"zero amount", customer.ID, PaymentInput{RideID: ride.ID, Amount: 0, PaymentMethod: models.PaymentMethodCreditCard}, http.StatusBadRequest},
		{"unknown method", customer.ID, PaymentInput{RideID: ride.ID, Amount: 10, PaymentMethod: "cash"}, http.StatusBadRequest},
		{"missing ride", customer.ID, PaymentInput{RideID: 9999, Amount: 10, PaymentMethod: models.PaymentMethodCreditCard}, http.StatusNotFound},
		{"someone else's ride", customer.ID + 100, PaymentInput{RideID: ride.ID, Amount: 10, PaymentMethod: models.PaymentMethodCreditCard}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.rides.ProcessPayment(context.Background(), tt.customerID, tt.input)
			assertStatus(t, err, tt.code)
		})
	}
	assert.Equal(t, models.RideStatusDrafted, env.reload(t, ride.ID).Status)
	assert.False(t, env.exists(t, &models.Payment{}, ride.ID))
}

func TestProcessPaymentRollsBackOnInsertFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "rides" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "payments"`).WillReturnError(errors.New("connection reset by peer"))
	mock.ExpectRollback()

	notifier := &recordingNotifier{}
	rides := NewRideService(db, nil, notifier)
	_, err = rides.ProcessPayment(context.Background(), 1, PaymentInput{
		RideID: 7, Amount: 100, PaymentMethod: models.PaymentMethodCreditCard,
	})
	assertStatus(t, err, http.StatusInternalServerError)
	assert.Equal(t, "Internal server error.", err.Error())
	assert.Empty(t, notifier.types())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRate(t *testing.T) {
	env := newRideEnv(t)
	customer := env.fx.Customer()
	driver := env.fx.Driver(env.fx.Admin(), env.fx.Vehicle(models.TaxiTypeSedan))
	done := env.fx.Ride(customer, models.RideStatusDestinationReached, testutil.ByDriver(driver))
	accepted := env.fx.Ride(customer, models.RideStatusRequestAccepted, testutil.ByDriver(driver))

	_, err := env.rides.Rate(context.Background(), customer.ID, RatingInput{RideID: done.ID, Score: 6})
	assertStatus(t, err, http.StatusBadRequest)
	_, err = env.rides.Rate(context.Background(), customer.ID, RatingInput{RideID: done.ID, Score: 0})
	assertStatus(t, err, http.StatusBadRequest)

	_, err = env.rides.Rate(context.Background(), customer.ID, RatingInput{RideID: accepted.ID, Score: 4})
	assertStatus(t, err, http.StatusConflict)

	_, err = env.rides.Rate(context.Background(), customer.ID+100, RatingInput{RideID: done.ID, Score: 4})
	assertStatus(t, err, http.StatusNotFound)

	rating, err := env.rides.Rate(context.Background(), customer.ID, RatingInput{RideID: done.ID, Score: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, rating.Score)

	_, err = env.rides.Rate(context.Background(), customer.ID, RatingInput{RideID: done.ID, Score: 5})
	assertStatus(t, err, http.StatusConflict)
	assert.Equal(t, "This ride has already been rated.", err.Error())
}
