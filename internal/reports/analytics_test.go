package reports

import (
	"context"
	"testing"
	"time"

	"github.com/bengalurutaxi/btc-backend/internal/models"
	"github.com/bengalurutaxi/btc-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func score(s int) *int { return &s }

func TestSummarizeCompanyDayAveragesOnlyRatedRides(t *testing.T) {
	rides := []CompletedRide{
		{Distance: 5, PaymentAmount: 100, CommissionAmount: 40, Score: score(4)},
		{Distance: 10, PaymentAmount: 150, CommissionAmount: 60, Score: score(5)},
		{Distance: 3, PaymentAmount: 80, CommissionAmount: 32},
	}

	stats := SummarizeCompanyDay(rides)

	assert.Equal(t, 3, stats.TotalRides)
	assert.Equal(t, 18.0, stats.TotalDistance)
	assert.Equal(t, 330.0, stats.TotalPaymentAmount)
	assert.Equal(t, 198.0, stats.TotalCompanyIncome)
	assert.Equal(t, 6.0, stats.AverageDistance)
	assert.Equal(t, 110.0, stats.AveragePayment)
	assert.Equal(t, 2, stats.RatedRidesCount)
	require.NotNil(t, stats.AverageRating)
	assert.Equal(t, 4.5, *stats.AverageRating)
}

func TestSummarizeEmptyDay(t *testing.T) {
	stats := SummarizeCompanyDay(nil)
	assert.Zero(t, stats.TotalRides)
	assert.Zero(t, stats.AveragePayment)
	assert.Nil(t, stats.AverageRating)

	driver := SummarizeDriverDay(nil)
	assert.Zero(t, driver.AverageCommission)
	assert.Nil(t, driver.AverageRating)
}

func TestSummarizeDriverDay(t *testing.T) {
	stats := SummarizeDriverDay([]CompletedRide{
		{Distance: 5, CommissionAmount: 40, Score: score(3)},
		{Distance: 2.5, CommissionAmount: 30},
	})
	assert.Equal(t, 2, stats.TotalRides)
	assert.Equal(t, 7.5, stats.TotalDistance)
	assert.Equal(t, 70.0, stats.TotalCommission)
	assert.Equal(t, 3.75, stats.AverageDistance)
	assert.Equal(t, 35.0, stats.AverageCommission)
	require.NotNil(t, stats.AverageRating)
	assert.Equal(t, 3.0, *stats.AverageRating)
}

func TestGraphModeWindowAndLabel(t *testing.T) {
	w, err := GraphModeMonth.Window(2024, 2)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), *w.From)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *w.To)

	w, err = GraphModeYear.Window(2024, 0)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), *w.To)

	w, err = GraphModeOverall.Window(0, 0)
	require.NoError(t, err)
	assert.Nil(t, w.From)
	assert.Nil(t, w.To)

	_, err = GraphModeMonth.Window(2024, 13)
	assert.Error(t, err)
	_, err = GraphModeYear.Window(0, 0)
	assert.Error(t, err)
	_, err = GraphMode("week").Window(2024, 1)
	assert.Error(t, err)

	at := time.Date(2024, 7, 9, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-07-09", GraphModeMonth.Label(at))
	assert.Equal(t, "2024-07", GraphModeYear.Label(at))
	assert.Equal(t, "2024", GraphModeOverall.Label(at))
}

func TestCompanyGraphBucketsInOrder(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 5, d, 12, 0, 0, 0, time.UTC) }
	rides := []CompletedRide{
		{PaymentAmount: 100, CommissionDateTime: day(3), Score: score(5)},
		{PaymentAmount: 200, CommissionDateTime: day(1)},
		{PaymentAmount: 50, CommissionDateTime: day(3), Score: score(2)},
	}

	points := CompanyGraph(rides, GraphModeMonth)
	require.Len(t, points, 2)
	assert.Equal(t, "2024-05-01", points[0].TimeLabel)
	assert.Equal(t, 1, points[0].RideCount)
	assert.Nil(t, points[0].AverageRating)
	assert.Equal(t, "2024-05-03", points[1].TimeLabel)
	assert.Equal(t, 2, points[1].RideCount)
	assert.Equal(t, 150.0, points[1].TotalPaymentAmount)
	assert.Equal(t, 90.0, points[1].TotalCompanyIncome)
	assert.Equal(t, 3.5, *points[1].AverageRating)

	driverPoints := DriverGraph(rides, GraphModeYear)
	require.Len(t, driverPoints, 1)
	assert.Equal(t, "2024-05", driverPoints[0].TimeLabel)
	assert.Equal(t, 3, driverPoints[0].RideCount)
}

func TestCompletedRidesQuery(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)
	store, err := New(db)
	require.NoError(t, err)

	admin := fx.Admin()
	customer := fx.Customer()
	d1 := fx.Driver(admin, fx.Vehicle(models.TaxiTypeSedan))
	d2 := fx.Driver(admin, fx.Vehicle(models.TaxiTypeSUV))

	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	fx.Ride(customer, models.RideStatusDestinationReached, testutil.ByDriver(d1), testutil.CompletedAt(day.Add(9*time.Hour)), testutil.RatedWith(4))
	fx.Ride(customer, models.RideStatusDestinationReached, testutil.ByDriver(d1), testutil.CompletedAt(day.Add(10*time.Hour)), testutil.RatedWith(5))
	fx.Ride(customer, models.RideStatusDestinationReached, testutil.ByDriver(d2), testutil.CompletedAt(day.Add(11*time.Hour)))
	// the next day and an unfinished ride stay out of the window
	fx.Ride(customer, models.RideStatusDestinationReached, testutil.ByDriver(d2), testutil.CompletedAt(day.Add(25*time.Hour)))
	fx.Ride(customer, models.RideStatusRequestAccepted, testutil.ByDriver(d1))

	from, to := day, day.AddDate(0, 0, 1)
	rows, err := store.CompletedRides(context.Background(), Window{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	stats := SummarizeCompanyDay(rows)
	assert.Equal(t, 3, stats.TotalRides)
	assert.Equal(t, 300.0, stats.TotalPaymentAmount)
	assert.Equal(t, 2, stats.RatedRidesCount)
	assert.Equal(t, 4.5, *stats.AverageRating)

	rows, err = store.CompletedRides(context.Background(), Window{From: &from, To: &to, DriverID: &d1.ID})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = store.CompletedRides(context.Background(), Window{})
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}
