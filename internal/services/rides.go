package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bengalurutaxi/btc-backend/internal/models"
	"github.com/bengalurutaxi/btc-backend/internal/reports"
	"github.com/bengalurutaxi/btc-backend/pkg/httperror"
	"github.com/bengalurutaxi/btc-backend/pkg/log"
	"github.com/bengalurutaxi/btc-backend/pkg/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RideService owns the ride lifecycle: drafted -> payment done -> request
// accepted -> destination reached, plus deletion of drafted or paid rides.
// Every state change runs in its own transaction and is guarded by a
// conditional update on the current status.
type RideService struct {
	db       *gorm.DB
	reports  *reports.Store
	notifier RideNotifier
	now      func() time.Time
}

func NewRideService(db *gorm.DB, store *reports.Store, notifier RideNotifier) *RideService {
	return &RideService{
		db:       db,
		reports:  store,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type BookRideInput struct {
	CustomerID      uint            `json:"customerId" validate:"required"`
	PickupLocation  string          `json:"pickupLocation" validate:"required,max=255"`
	DropoffLocation string          `json:"dropoffLocation" validate:"required,max=255"`
	Distance        float64         `json:"distance" validate:"gt=0"`
	TaxiType        models.TaxiType `json:"taxiType" validate:"required,taxitype"`
}

type BookingResult struct {
	RideID uint    `json:"rideId"`
	Fare   float64 `json:"fare"`
}

// Book drafts a ride and stores its verification code. The code stays hidden
// from the customer until the ride is paid.
func (s *RideService) Book(ctx context.Context, input BookRideInput) (*BookingResult, error) {
	input.PickupLocation = strings.TrimSpace(input.PickupLocation)
	input.DropoffLocation = strings.TrimSpace(input.DropoffLocation)
	input.TaxiType = models.TaxiType(strings.ToLower(string(input.TaxiType)))
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var ride models.Ride
	err := runTx(ctx, s.db, "RideService.Book", func(tx *gorm.DB) error {
		var customers int64
		if err := tx.Model(&models.Customer{}).Where("customer_id = ?", input.CustomerID).Count(&customers).Error; err != nil {
			return err
		}
		if customers == 0 {
			return httperror.NewNotFound("Customer not found.")
		}

		code, err := utils.GenerateVerificationCode()
		if err != nil {
			return fmt.Errorf("generate verification code: %w", err)
		}

		ride = models.Ride{
			CustomerID:       input.CustomerID,
			PickupLocation:   input.PickupLocation,
			DropoffLocation:  input.DropoffLocation,
			Distance:         input.Distance,
			TaxiType:         input.TaxiType,
			Status:           models.RideStatusDrafted,
			BookingDateTime:  s.now(),
			VerificationCode: &code,
		}
		return tx.Create(&ride).Error
	})
	if err != nil {
		return nil, err
	}

	emit(ctx, s.notifier, newRideEvent(EventRideBooked, &ride))
	return &BookingResult{RideID: ride.ID, Fare: utils.CalculateFare(ride.Distance)}, nil
}

// DeleteDraft removes a ride that has not been paid for yet.
func (s *RideService) DeleteDraft(ctx context.Context, rideID, customerID uint) error {
	notDraft := httperror.NewNotFound("Ride not found or cannot be deleted (not in draft status).")

	var ride *models.Ride
	err := runTx(ctx, s.db, "RideService.DeleteDraft", func(tx *gorm.DB) error {
		var err error
		ride, err = loadRide(tx, rideID, true)
		if err != nil {
			if httperror.StatusOf(err) == http.StatusNotFound {
				return notDraft
			}
			return err
		}
		if ride.CustomerID != customerID || ride.Status != models.RideStatusDrafted {
			return notDraft
		}

		res := tx.Where("ride_id = ? AND ride_status = ?", rideID, string(models.RideStatusDrafted)).Delete(&models.Ride{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return notDraft
		}
		return nil
	})
	if err != nil {
		return err
	}

	emit(ctx, s.notifier, newRideEvent(EventRideDeleted, ride))
	return nil
}

// Cancel withdraws a drafted or paid ride, deleting its payment along with it.
func (s *RideService) Cancel(ctx context.Context, rideID, customerID uint) error {
	var ride *models.Ride
	err := runTx(ctx, s.db, "RideService.Cancel", func(tx *gorm.DB) error {
		var err error
		ride, err = loadRide(tx, rideID, true)
		if err != nil {
			return err
		}
		if ride.CustomerID != customerID {
			return httperror.NewNotFound("Ride not found.")
		}
		if !ride.Status.Cancellable() {
			return httperror.NewConflict("Cannot cancel ride in status (%s).", ride.Status)
		}

		if ride.Status == models.RideStatusPaymentDone {
			if err := tx.Where("ride_id = ?", rideID).Delete(&models.Payment{}).Error; err != nil {
				return err
			}
		}
		res := tx.Where("ride_id = ? AND ride_status = ?", rideID, string(ride.Status)).Delete(&models.Ride{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return httperror.NewConflict("Ride status changed while cancelling. Please retry.")
		}
		return nil
	})
	if err != nil {
		return err
	}

	emit(ctx, s.notifier, newRideEvent(EventRideCancelled, ride))
	return nil
}

// Accept assigns a paid ride to a driver. The driver row is locked first so
// concurrent acceptances by the same driver run one after the other, and the
// second one sees the first ride as active.
func (s *RideService) Accept(ctx context.Context, rideID, driverID uint) (*models.Ride, error) {
	var ride *models.Ride
	err := runTx(ctx, s.db, "RideService.Accept", func(tx *gorm.DB) error {
		var driver models.Driver
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Preload("Vehicle").First(&driver, "driver_id = ?", driverID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httperror.NewNotFound("Driver not found.")
		}
		if err != nil {
			return err
		}
		if !driver.IsActive {
			return httperror.NewForbidden("Driver account is inactive.")
		}

		var active int64
		if err := tx.Model(&models.Ride{}).
			Where("driver_id = ? AND ride_status = ?", driverID, string(models.RideStatusRequestAccepted)).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return httperror.NewConflict("Cannot accept ride: You already have an active ride.")
		}

		ride, err = loadRide(tx, rideID, false)
		if err != nil {
			return err
		}
		if driver.Vehicle != nil && driver.Vehicle.Type != ride.TaxiType {
			return httperror.NewConflict("Ride requires a %s; your vehicle is a %s.", ride.TaxiType, driver.Vehicle.Type)
		}

		moved, err := advance(tx, rideID, models.RideStatusPaymentDone, models.RideStatusRequestAccepted,
			map[string]interface{}{"driver_id": driverID},
			clause.Expr{SQL: "driver_id IS NULL"})
		if err != nil {
			return err
		}
		if !moved {
			return acceptConflict(tx, rideID)
		}

		ride.Status = models.RideStatusRequestAccepted
		ride.DriverID = &driverID
		return nil
	})
	if err != nil {
		return nil, err
	}

	emit(ctx, s.notifier, newRideEvent(EventRideAccepted, ride))
	return ride, nil
}

// acceptConflict explains why a guarded accept moved no row.
func acceptConflict(tx *gorm.DB, rideID uint) error {
	current, err := loadRide(tx, rideID, false)
	if err != nil {
		return err
	}
	if current.DriverID != nil {
		return httperror.NewConflict("Ride has already been accepted by another driver.")
	}
	return httperror.NewConflict("Ride unavailable (Status: %s).", current.Status)
}

type CompletionResult struct {
	RideID           uint    `json:"rideId"`
	CommissionAmount float64 `json:"commissionAmount"`
}

// Complete closes a ride once the driver presents the customer's code. The
// ride is untouched when the code does not match.
func (s *RideService) Complete(ctx context.Context, rideID, driverID uint, code string) (*CompletionResult, error) {
	if strings.TrimSpace(code) == "" {
		return nil, httperror.NewBadRequest("Verification code is required.")
	}

	var (
		ride   *models.Ride
		result CompletionResult
	)
	err := runTx(ctx, s.db, "RideService.Complete", func(tx *gorm.DB) error {
		var err error
		ride, err = loadRide(tx, rideID, true)
		if err != nil {
			return err
		}
		if ride.DriverID == nil || *ride.DriverID != driverID {
			return httperror.NewForbidden("You are not assigned to this ride.")
		}
		if ride.Status != models.RideStatusRequestAccepted {
			return httperror.NewConflict("Ride cannot be completed (Status: %s).", ride.Status)
		}
		stored := ""
		if ride.VerificationCode != nil {
			stored = *ride.VerificationCode
		}
		if !utils.VerificationCodeMatches(stored, code) {
			log.GetLogger().Warn("RideService.Complete", "verification code mismatch", "ride", fmt.Sprint(rideID))
			return httperror.NewForbidden("Invalid verification code.")
		}

		moved, err := advance(tx, rideID, models.RideStatusRequestAccepted, models.RideStatusDestinationReached,
			map[string]interface{}{"verification_code": nil},
			clause.Eq{Column: clause.Column{Name: "driver_id"}, Value: driverID})
		if err != nil {
			return err
		}
		if !moved {
			return httperror.NewConflict("Ride was modified concurrently. Please retry.")
		}

		commission := models.Commission{
			RideID:             rideID,
			CommissionAmount:   utils.CalculateCommission(ride.Distance),
			CommissionDateTime: s.now(),
		}
		if err := tx.Create(&commission).Error; err != nil {
			return err
		}

		ride.Status = models.RideStatusDestinationReached
		ride.VerificationCode = nil
		result = CompletionResult{RideID: rideID, CommissionAmount: commission.CommissionAmount}
		return nil
	})
	if err != nil {
		return nil, err
	}

	emit(ctx, s.notifier, newRideEvent(EventRideCompleted, ride))
	return &result, nil
}

// CustomerRidesByStatus lists a customer's rides in the given statuses. The
// verification code is only included while the ride is paid or accepted.
func (s *RideService) CustomerRidesByStatus(ctx context.Context, customerID uint, statuses []models.RideStatus) ([]reports.CustomerRide, error) {
	if len(statuses) == 0 {
		return nil, httperror.NewBadRequest("At least one ride status is required.")
	}
	for _, status := range statuses {
		if !status.Valid() {
			return nil, httperror.NewBadRequest("Invalid ride status: %s.", status)
		}
	}

	rides, err := s.reports.CustomerRidesByStatus(ctx, customerID, statuses)
	if err != nil {
		return nil, internal("RideService.CustomerRidesByStatus", err)
	}
	for i := range rides {
		if !models.RideStatus(rides[i].RideStatus).CodeVisible() {
			rides[i].VerificationCode = nil
		}
	}
	return rides, nil
}

func (s *RideService) CustomerHistory(ctx context.Context, customerID uint, filter reports.HistoryFilter) ([]reports.CustomerRide, error) {
	rides, err := s.reports.CustomerHistory(ctx, customerID, filter)
	if err != nil {
		return nil, internal("RideService.CustomerHistory", err)
	}
	return rides, nil
}

// AvailableRequests lists paid rides waiting for a driver of the given vehicle
// type, oldest first.
func (s *RideService) AvailableRequests(ctx context.Context, vehicleType string) ([]reports.AvailableRide, error) {
	taxiType := models.TaxiType(strings.ToLower(strings.TrimSpace(vehicleType)))
	if !taxiType.Valid() {
		return nil, httperror.NewBadRequest("Invalid or missing vehicle type.")
	}
	rides, err := s.reports.AvailableRequests(ctx, taxiType)
	if err != nil {
		return nil, internal("RideService.AvailableRequests", err)
	}
	return rides, nil
}

// CurrentForDriver returns the driver's accepted ride, or nil.
func (s *RideService) CurrentForDriver(ctx context.Context, driverID uint) (*reports.DriverRide, error) {
	ride, err := s.reports.CurrentDriverRide(ctx, driverID)
	if err != nil {
		return nil, internal("RideService.CurrentForDriver", err)
	}
	return ride, nil
}

func (s *RideService) DriverCompleted(ctx context.Context, driverID uint, filter reports.HistoryFilter) ([]reports.DriverRide, error) {
	rides, err := s.reports.DriverCompleted(ctx, driverID, filter)
	if err != nil {
		return nil, internal("RideService.DriverCompleted", err)
	}
	return rides, nil
}
