package services

import (
	"context"
	"errors"
	"strings"

	"github.com/bengalurutaxi/btc-backend/internal/models"
	"github.com/bengalurutaxi/btc-backend/internal/reports"
	"github.com/bengalurutaxi/btc-backend/pkg/httperror"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FleetService manages drivers, vehicles and the binding between them. A
// vehicle is held by at most one active driver; checks and writes that protect
// this run in one transaction with the contended rows locked.
type FleetService struct {
	db      *gorm.DB
	reports *reports.Store
}

func NewFleetService(db *gorm.DB, store *reports.Store) *FleetService {
	return &FleetService{db: db, reports: store}
}

type DriverInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	PhoneNumber string `json:"phoneNumber" validate:"required,phone10"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"omitempty,min=6"`
	VehicleID   *uint  `json:"vehicleId" validate:"required"`
}

func (in *DriverInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
}

// AddDriver creates an active driver for the admin, bound to a free vehicle.
func (s *FleetService) AddDriver(ctx context.Context, adminID uint, input DriverInput) (*models.Driver, error) {
	input.normalize()
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if input.Password == "" {
		return nil, httperror.NewBadRequest("password is required.")
	}

	driver := models.Driver{
		Name:        input.Name,
		PhoneNumber: input.PhoneNumber,
		Email:       input.Email,
		VehicleID:   input.VehicleID,
		AdminID:     adminID,
		IsActive:    true,
	}
	if err := driver.SetPassword(input.Password); err != nil {
		return nil, internal("FleetService.AddDriver", err)
	}

	err := runTx(ctx, s.db, "FleetService.AddDriver", func(tx *gorm.DB) error {
		var admins int64
		if err := tx.Model(&models.Admin{}).Where("admin_id = ?", adminID).Count(&admins).Error; err != nil {
			return err
		}
		if admins == 0 {
			return httperror.NewNotFound("Admin not found.")
		}
		if err := checkDriverUnique(tx, 0, input); err != nil {
			return err
		}
		if err := checkVehicleFree(tx, *input.VehicleID, 0); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(&driver).Error; err != nil {
			return duplicateAsConflict(err, "A driver with these details already exists.")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &driver, nil
}

// UpdateDriver replaces a driver's details. Drivers with a ride in progress
// cannot be edited.
func (s *FleetService) UpdateDriver(ctx context.Context, adminID, driverID uint, input DriverInput) (*models.Driver, error) {
	input.normalize()
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var driver *models.Driver
	err := runTx(ctx, s.db, "FleetService.UpdateDriver", func(tx *gorm.DB) error {
		var err error
		driver, err = lockDriver(tx, driverID, adminID)
		if err != nil {
			return err
		}
		if ongoing, err := hasOngoingRides(tx, driverID); err != nil {
			return err
		} else if ongoing {
			return httperror.NewConflict("Cannot update driver with ongoing rides.")
		}
		if err := checkDriverUnique(tx, driverID, input); err != nil {
			return err
		}
		if driver.VehicleID == nil || *driver.VehicleID != *input.VehicleID {
			if err := checkVehicleFree(tx, *input.VehicleID, driverID); err != nil {
				return err
			}
		}

		updates := map[string]interface{}{
			"name":         input.Name,
			"phone_number": input.PhoneNumber,
			"email":        input.Email,
			"vehicle_id":   *input.VehicleID,
		}
		if input.Password != "" {
			if err := driver.SetPassword(input.Password); err != nil {
				return err
			}
			updates["password_hash"] = driver.PasswordHash
		}
		if err := tx.Model(&models.Driver{}).Where("driver_id = ?", driverID).Updates(updates).Error; err != nil {
			return duplicateAsConflict(err, "A driver with these details already exists.")
		}

		driver.Name, driver.PhoneNumber, driver.Email = input.Name, input.PhoneNumber, input.Email
		driver.VehicleID = input.VehicleID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return driver, nil
}

// HasActiveRides reports whether the driver has a paid or accepted ride.
func (s *FleetService) HasActiveRides(ctx context.Context, driverID uint) (bool, error) {
	ongoing, err := hasOngoingRides(s.db.WithContext(ctx), driverID)
	if err != nil {
		return false, internal("FleetService.HasActiveRides", err)
	}
	return ongoing, nil
}

// Deactivate soft-deletes a driver and frees their vehicle.
func (s *FleetService) Deactivate(ctx context.Context, adminID, driverID uint) error {
	return runTx(ctx, s.db, "FleetService.Deactivate", func(tx *gorm.DB) error {
		if _, err := lockDriver(tx, driverID, adminID); err != nil {
			return err
		}
		if ongoing, err := hasOngoingRides(tx, driverID); err != nil {
			return err
		} else if ongoing {
			return httperror.NewConflict("Cannot deactivate driver with ongoing rides.")
		}

		res := tx.Model(&models.Driver{}).
			Where("driver_id = ? AND is_active = ?", driverID, true).
			Updates(map[string]interface{}{"is_active": false, "vehicle_id": nil})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return httperror.NewConflict("Driver is already inactive.")
		}
		return nil
	})
}

// Activate restores an inactive driver onto a vehicle no active driver holds.
func (s *FleetService) Activate(ctx context.Context, adminID, driverID, vehicleID uint) error {
	if vehicleID == 0 {
		return httperror.NewBadRequest("vehicle_id is required.")
	}
	return runTx(ctx, s.db, "FleetService.Activate", func(tx *gorm.DB) error {
		driver, err := lockDriver(tx, driverID, adminID)
		if err != nil {
			return err
		}
		if driver.IsActive {
			return httperror.NewConflict("Driver is already active.")
		}
		if err := checkVehicleFree(tx, vehicleID, driverID); err != nil {
			return err
		}

		res := tx.Model(&models.Driver{}).
			Where("driver_id = ? AND is_active = ?", driverID, false).
			Updates(map[string]interface{}{"is_active": true, "vehicle_id": vehicleID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return httperror.NewConflict("Driver is already active.")
		}
		return nil
	})
}

func (s *FleetService) GetDriver(ctx context.Context, driverID uint) (*models.Driver, error) {
	var driver models.Driver
	err := s.db.WithContext(ctx).Preload("Vehicle").First(&driver, "driver_id = ?", driverID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, httperror.NewNotFound("Driver not found.")
	}
	if err != nil {
		return nil, internal("FleetService.GetDriver", err)
	}
	return &driver, nil
}

func (s *FleetService) AdminDrivers(ctx context.Context, adminID uint) ([]models.Driver, error) {
	drivers := []models.Driver{}
	err := s.db.WithContext(ctx).Preload("Vehicle").
		Where("admin_id = ?", adminID).
		Order("is_active DESC, driver_id").
		Find(&drivers).Error
	if err != nil {
		return nil, internal("FleetService.AdminDrivers", err)
	}
	return drivers, nil
}

type VehicleInput struct {
	Name string          `json:"name" validate:"required,max=100"`
	Type models.TaxiType `json:"type" validate:"required,taxitype"`
}

func (s *FleetService) AddVehicle(ctx context.Context, input VehicleInput) (*models.Vehicle, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Type = models.TaxiType(strings.ToLower(strings.TrimSpace(string(input.Type))))
	if err := validateInput(input); err != nil {
		return nil, err
	}

	vehicle := models.Vehicle{Name: input.Name, Type: input.Type}
	err := runTx(ctx, s.db, "FleetService.AddVehicle", func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.Vehicle{}).Where("name = ?", input.Name).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return httperror.NewConflict("Vehicle name already exists.")
		}
		if err := tx.Create(&vehicle).Error; err != nil {
			return duplicateAsConflict(err, "Vehicle name already exists.")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (s *FleetService) Vehicles(ctx context.Context) ([]reports.VehicleRow, error) {
	rows, err := s.reports.Vehicles(ctx)
	if err != nil {
		return nil, internal("FleetService.Vehicles", err)
	}
	return rows, nil
}

func (s *FleetService) UnassignedVehicles(ctx context.Context) ([]reports.VehicleRow, error) {
	rows, err := s.reports.UnassignedVehicles(ctx)
	if err != nil {
		return nil, internal("FleetService.UnassignedVehicles", err)
	}
	return rows, nil
}

func (s *FleetService) VehicleOptionsForDriver(ctx context.Context, driverID uint) ([]reports.VehicleRow, error) {
	rows, err := s.reports.VehicleOptionsForDriver(ctx, driverID)
	if err != nil {
		return nil, internal("FleetService.VehicleOptionsForDriver", err)
	}
	return rows, nil
}

// DeleteVehicle removes a vehicle no driver, active or inactive, is bound to.
func (s *FleetService) DeleteVehicle(ctx context.Context, vehicleID uint) error {
	return runTx(ctx, s.db, "FleetService.DeleteVehicle", func(tx *gorm.DB) error {
		var vehicle models.Vehicle
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&vehicle, "vehicle_id = ?", vehicleID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httperror.NewNotFound("Vehicle not found.")
		}
		if err != nil {
			return err
		}

		var bound int64
		if err := tx.Model(&models.Driver{}).Where("vehicle_id = ?", vehicleID).Count(&bound).Error; err != nil {
			return err
		}
		if bound > 0 {
			return httperror.NewConflict("Cannot delete vehicle: it is assigned to a driver.")
		}
		return tx.Delete(&models.Vehicle{}, "vehicle_id = ?", vehicleID).Error
	})
}

// lockDriver loads the driver row FOR UPDATE and checks the admin manages it.
func lockDriver(tx *gorm.DB, driverID, adminID uint) (*models.Driver, error) {
	var driver models.Driver
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&driver, "driver_id = ?", driverID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, httperror.NewNotFound("Driver not found.")
	}
	if err != nil {
		return nil, err
	}
	if driver.AdminID != adminID {
		return nil, httperror.NewForbidden("Driver is managed by another admin.")
	}
	return &driver, nil
}

func hasOngoingRides(tx *gorm.DB, driverID uint) (bool, error) {
	var n int64
	err := tx.Model(&models.Ride{}).
		Where("driver_id = ? AND ride_status IN ?", driverID, statusValues(models.OngoingRideStatuses)).
		Count(&n).Error
	return n > 0, err
}

// checkDriverUnique rejects a name, email or phone number another driver
// already uses. selfID is excluded so a driver can keep their own details.
func checkDriverUnique(tx *gorm.DB, selfID uint, input DriverInput) error {
	fields := []struct {
		column, value, message string
	}{
		{"name", input.Name, "Driver name already exists."},
		{"email", input.Email, "Email already exists."},
		{"phone_number", input.PhoneNumber, "Phone number already exists."},
	}
	for _, f := range fields {
		var n int64
		if err := tx.Model(&models.Driver{}).
			Where(f.column+" = ? AND driver_id <> ?", f.value, selfID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return httperror.NewConflict("%s", f.message)
		}
	}
	return nil
}

// checkVehicleFree locks the vehicle and fails when an active driver other
// than selfID holds it.
func checkVehicleFree(tx *gorm.DB, vehicleID, selfID uint) error {
	var vehicle models.Vehicle
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&vehicle, "vehicle_id = ?", vehicleID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return httperror.NewNotFound("Vehicle not found.")
	}
	if err != nil {
		return err
	}

	var holders int64
	if err := tx.Model(&models.Driver{}).
		Where("vehicle_id = ? AND is_active = ? AND driver_id <> ?", vehicleID, true, selfID).
		Count(&holders).Error; err != nil {
		return err
	}
	if holders > 0 {
		return httperror.NewConflict("Vehicle is already assigned to another active driver.")
	}
	return nil
}

func duplicateAsConflict(err error, message string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return httperror.NewConflict("%s", message)
	}
	return err
}

func statusValues(statuses []models.RideStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
