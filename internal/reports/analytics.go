package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/bengalurutaxi/btc-backend/internal/models"
	"github.com/bengalurutaxi/btc-backend/pkg/utils"
)

// CompletedRide is a paid, completed ride with its earnings, the unit every
// analytics figure is aggregated from.
type CompletedRide struct {
	RideID             uint      `db:"ride_id"`
	DriverID           uint      `db:"driver_id"`
	Distance           float64   `db:"distance"`
	PaymentAmount      float64   `db:"payment_amount"`
	CommissionAmount   float64   `db:"commission_amount"`
	CommissionDateTime time.Time `db:"commission_date_time"`
	Score              *int      `db:"score"`
}

// Window selects completed rides by commission time, half-open [From, To).
// A nil bound is open; a nil DriverID covers the whole fleet.
type Window struct {
	From     *time.Time
	To       *time.Time
	DriverID *uint
}

func (s *Store) CompletedRides(ctx context.Context, w Window) ([]CompletedRide, error) {
	q := &query{
		base: `SELECT r.ride_id, r.driver_id, r.distance, p.amount AS payment_amount,
				c.commission_amount, c.commission_date_time, rt.score
			FROM commissions c
			JOIN rides r ON r.ride_id = c.ride_id
			JOIN payments p ON p.ride_id = r.ride_id
			LEFT JOIN ratings rt ON rt.ride_id = r.ride_id`,
		suffix: "ORDER BY c.commission_date_time ASC, r.ride_id ASC",
	}
	q.where("r.ride_status = ?", string(models.RideStatusDestinationReached))
	q.where("p.payment_status = ?", models.PaymentStatusComplete)
	if w.From != nil {
		q.where("c.commission_date_time >= ?", *w.From)
	}
	if w.To != nil {
		q.where("c.commission_date_time < ?", *w.To)
	}
	if w.DriverID != nil {
		q.where("r.driver_id = ?", *w.DriverID)
	}

	rides := []CompletedRide{}
	if err := s.selectInto(ctx, &rides, q); err != nil {
		return nil, err
	}
	return rides, nil
}

type CompanyDailyStats struct {
	TotalRides         int      `json:"totalRides"`
	TotalDistance      float64  `json:"totalDistance"`
	TotalPaymentAmount float64  `json:"totalPaymentAmount"`
	TotalCompanyIncome float64  `json:"totalCompanyIncome"`
	AverageDistance    float64  `json:"averageDistance"`
	AveragePayment     float64  `json:"averagePayment"`
	RatedRidesCount    int      `json:"ratedRidesCount"`
	AverageRating      *float64 `json:"averageRating"`
}

type DriverDailyStats struct {
	TotalRides        int      `json:"totalRides"`
	TotalDistance     float64  `json:"totalDistance"`
	TotalCommission   float64  `json:"totalCommission"`
	AverageDistance   float64  `json:"averageDistance"`
	AverageCommission float64  `json:"averageCommission"`
	RatedRidesCount   int      `json:"ratedRidesCount"`
	AverageRating     *float64 `json:"averageRating"`
}

type CompanyGraphPoint struct {
	TimeLabel          string   `json:"timeLabel"`
	RideCount          int      `json:"rideCount"`
	TotalPaymentAmount float64  `json:"totalPaymentAmount"`
	TotalCompanyIncome float64  `json:"totalCompanyIncome"`
	AverageRating      *float64 `json:"averageRating"`
}

type DriverGraphPoint struct {
	TimeLabel       string   `json:"timeLabel"`
	RideCount       int      `json:"rideCount"`
	TotalCommission float64  `json:"totalCommission"`
	AverageRating   *float64 `json:"averageRating"`
}

// totals is the running sum behind every stats shape.
type totals struct {
	rides      int
	distance   float64
	payment    float64
	commission float64
	rated      int
	scoreSum   int
}

func (t *totals) add(r CompletedRide) {
	t.rides++
	t.distance += r.Distance
	t.payment += r.PaymentAmount
	t.commission += r.CommissionAmount
	if r.Score != nil {
		t.rated++
		t.scoreSum += *r.Score
	}
}

// averageRating divides by rated rides only, so unrated rides do not drag the
// average down. Nil when nothing was rated.
func (t totals) averageRating() *float64 {
	if t.rated == 0 {
		return nil
	}
	avg := utils.Round2(float64(t.scoreSum) / float64(t.rated))
	return &avg
}

func (t totals) mean(sum float64) float64 {
	if t.rides == 0 {
		return 0
	}
	return utils.Round2(sum / float64(t.rides))
}

func sum(rides []CompletedRide) totals {
	var t totals
	for _, r := range rides {
		t.add(r)
	}
	return t
}

func SummarizeCompanyDay(rides []CompletedRide) CompanyDailyStats {
	t := sum(rides)
	return CompanyDailyStats{
		TotalRides:         t.rides,
		TotalDistance:      utils.Round2(t.distance),
		TotalPaymentAmount: utils.Round2(t.payment),
		TotalCompanyIncome: utils.CompanyIncome(t.payment),
		AverageDistance:    t.mean(t.distance),
		AveragePayment:     t.mean(t.payment),
		RatedRidesCount:    t.rated,
		AverageRating:      t.averageRating(),
	}
}

func SummarizeDriverDay(rides []CompletedRide) DriverDailyStats {
	t := sum(rides)
	return DriverDailyStats{
		TotalRides:        t.rides,
		TotalDistance:     utils.Round2(t.distance),
		TotalCommission:   utils.Round2(t.commission),
		AverageDistance:   t.mean(t.distance),
		AverageCommission: t.mean(t.commission),
		RatedRidesCount:   t.rated,
		AverageRating:     t.averageRating(),
	}
}

type GraphMode string

const (
	GraphModeMonth   GraphMode = "month"
	GraphModeYear    GraphMode = "year"
	GraphModeOverall GraphMode = "overall"
)

// Label formats t as the bucket key for the mode: one bucket per day of a
// month, per month of a year, or per year overall.
func (m GraphMode) Label(t time.Time) string {
	t = t.UTC()
	switch m {
	case GraphModeMonth:
		return t.Format("2006-01-02")
	case GraphModeYear:
		return t.Format("2006-01")
	default:
		return t.Format("2006")
	}
}

// Window returns the time range the mode covers. month needs year and month,
// year needs year, overall ignores both.
func (m GraphMode) Window(year, month int) (Window, error) {
	switch m {
	case GraphModeMonth:
		if year <= 0 || month < 1 || month > 12 {
			return Window{}, fmt.Errorf("mode %q requires a valid year and month", m)
		}
		from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(0, 1, 0)
		return Window{From: &from, To: &to}, nil
	case GraphModeYear:
		if year <= 0 {
			return Window{}, fmt.Errorf("mode %q requires a valid year", m)
		}
		from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(1, 0, 0)
		return Window{From: &from, To: &to}, nil
	case GraphModeOverall:
		return Window{}, nil
	}
	return Window{}, fmt.Errorf("unknown graph mode %q", m)
}

// bucket groups rides by label, returning labels in ascending order.
func bucket(rides []CompletedRide, mode GraphMode) ([]string, map[string]*totals) {
	groups := map[string]*totals{}
	var labels []string
	for _, r := range rides {
		label := mode.Label(r.CommissionDateTime)
		t, ok := groups[label]
		if !ok {
			t = &totals{}
			groups[label] = t
			labels = append(labels, label)
		}
		t.add(r)
	}
	sort.Strings(labels)
	return labels, groups
}

func CompanyGraph(rides []CompletedRide, mode GraphMode) []CompanyGraphPoint {
	labels, groups := bucket(rides, mode)
	points := make([]CompanyGraphPoint, 0, len(labels))
	for _, label := range labels {
		t := groups[label]
		points = append(points, CompanyGraphPoint{
			TimeLabel:          label,
			RideCount:          t.rides,
			TotalPaymentAmount: utils.Round2(t.payment),
			TotalCompanyIncome: utils.CompanyIncome(t.payment),
			AverageRating:      t.averageRating(),
		})
	}
	return points
}

func DriverGraph(rides []CompletedRide, mode GraphMode) []DriverGraphPoint {
	labels, groups := bucket(rides, mode)
	points := make([]DriverGraphPoint, 0, len(labels))
	for _, label := range labels {
		t := groups[label]
		points = append(points, DriverGraphPoint{
			TimeLabel:       label,
			RideCount:       t.rides,
			TotalCommission: utils.Round2(t.commission),
			AverageRating:   t.averageRating(),
		})
	}
	return points
}
