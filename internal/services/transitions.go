package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/bengalurutaxi/btc-backend/internal/models"
	"github.com/bengalurutaxi/btc-backend/pkg/httperror"
	"github.com/bengalurutaxi/btc-backend/pkg/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// advance moves a ride from one status to the next in a single conditional
// UPDATE. It reports false, without error, when the ride was not in from (or
// failed a guard) at the time of the update, which callers treat as losing a
// race. changes are applied in the same statement.
func advance(tx *gorm.DB, rideID uint, from, to models.RideStatus, changes map[string]interface{}, guards ...clause.Expression) (bool, error) {
	if !from.CanTransitionTo(to) {
		return false, fmt.Errorf("illegal ride transition %q -> %q", from, to)
	}

	updates := map[string]interface{}{"ride_status": string(to)}
	for column, value := range changes {
		updates[column] = value
	}

	q := tx.Model(&models.Ride{}).Where("ride_id = ? AND ride_status = ?", rideID, string(from))
	for _, guard := range guards {
		q = q.Where(guard)
	}
	res := q.Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// loadRide fetches a ride, locking its row for the rest of the transaction
// when lock is set.
func loadRide(tx *gorm.DB, rideID uint, lock bool) (*models.Ride, error) {
	q := tx
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var ride models.Ride
	if err := q.First(&ride, "ride_id = ?", rideID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperror.NewNotFound("Ride not found.")
		}
		return nil, err
	}
	return &ride, nil
}

// runTx runs fn in one transaction on a pooled connection. gorm commits when fn
// returns nil and rolls back otherwise, including on panic, and the connection
// goes back to the pool either way. Untyped errors are logged and reported as
// a generic internal error.
func runTx(ctx context.Context, db *gorm.DB, op string, fn func(tx *gorm.DB) error) error {
	err := db.WithContext(ctx).Transaction(fn)
	if err == nil {
		return nil
	}
	if _, ok := httperror.As(err); ok {
		return err
	}
	log.GetLogger().Error(op, err.Error(), "transaction", "rolled back")
	return httperror.NewInternalServerError("Internal server error.")
}

// internal logs an unexpected failure outside a transaction.
func internal(op string, err error) error {
	if _, ok := httperror.As(err); ok {
		return err
	}
	log.GetLogger().Error(op, err.Error(), "query", "")
	return httperror.NewInternalServerError("Internal server error.")
}
