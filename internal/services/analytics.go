package services

import (
	"context"
	"strings"
	"time"

	"github.com/bengalurutaxi/btc-backend/internal/reports"
	"github.com/bengalurutaxi/btc-backend/pkg/httperror"
)

const dateLayout = "2006-01-02"

// AnalyticsService answers company and per-driver earnings questions. Dates
// are calendar days in UTC.
type AnalyticsService struct {
	reports *reports.Store
}

func NewAnalyticsService(store *reports.Store) *AnalyticsService {
	return &AnalyticsService{reports: store}
}

func (s *AnalyticsService) CompanyDaily(ctx context.Context, date string) (*reports.CompanyDailyStats, error) {
	w, err := dayWindow(date, nil)
	if err != nil {
		return nil, err
	}
	rides, err := s.reports.CompletedRides(ctx, w)
	if err != nil {
		return nil, internal("AnalyticsService.CompanyDaily", err)
	}
	stats := reports.SummarizeCompanyDay(rides)
	return &stats, nil
}

func (s *AnalyticsService) CompanyGraph(ctx context.Context, mode string, year, month int) ([]reports.CompanyGraphPoint, error) {
	m, w, err := graphWindow(mode, year, month, nil)
	if err != nil {
		return nil, err
	}
	rides, err := s.reports.CompletedRides(ctx, w)
	if err != nil {
		return nil, internal("AnalyticsService.CompanyGraph", err)
	}
	return reports.CompanyGraph(rides, m), nil
}

func (s *AnalyticsService) DriverDaily(ctx context.Context, driverID uint, date string) (*reports.DriverDailyStats, error) {
	w, err := dayWindow(date, &driverID)
	if err != nil {
		return nil, err
	}
	rides, err := s.reports.CompletedRides(ctx, w)
	if err != nil {
		return nil, internal("AnalyticsService.DriverDaily", err)
	}
	stats := reports.SummarizeDriverDay(rides)
	return &stats, nil
}

func (s *AnalyticsService) DriverGraph(ctx context.Context, driverID uint, mode string, year, month int) ([]reports.DriverGraphPoint, error) {
	m, w, err := graphWindow(mode, year, month, &driverID)
	if err != nil {
		return nil, err
	}
	rides, err := s.reports.CompletedRides(ctx, w)
	if err != nil {
		return nil, internal("AnalyticsService.DriverGraph", err)
	}
	return reports.DriverGraph(rides, m), nil
}

func dayWindow(date string, driverID *uint) (reports.Window, error) {
	day, err := time.ParseInLocation(dateLayout, strings.TrimSpace(date), time.UTC)
	if err != nil {
		return reports.Window{}, httperror.NewBadRequest("Invalid date. Use YYYY-MM-DD.")
	}
	next := day.AddDate(0, 0, 1)
	return reports.Window{From: &day, To: &next, DriverID: driverID}, nil
}

func graphWindow(mode string, year, month int, driverID *uint) (reports.GraphMode, reports.Window, error) {
	m := reports.GraphMode(strings.ToLower(strings.TrimSpace(mode)))
	w, err := m.Window(year, month)
	if err != nil {
		return "", reports.Window{}, httperror.NewBadRequest("Invalid graph request: %v.", err)
	}
	w.DriverID = driverID
	return m, w, nil
}
