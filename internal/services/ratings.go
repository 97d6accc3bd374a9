package services

import (
	"context"
	"errors"

	"github.com/bengalurutaxi/btc-backend/internal/models"
	"github.com/bengalurutaxi/btc-backend/pkg/httperror"
	"gorm.io/gorm"
)

type RatingInput struct {
	RideID uint `json:"rideId" validate:"required"`
	Score  int  `json:"score" validate:"min=1,max=5"`
}

// Rate stores the customer's one-time score for a completed ride.
func (s *RideService) Rate(ctx context.Context, customerID uint, input RatingInput) (*models.Rating, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var (
		ride   *models.Ride
		rating models.Rating
	)
	err := runTx(ctx, s.db, "RideService.Rate", func(tx *gorm.DB) error {
		var err error
		ride, err = loadRide(tx, input.RideID, false)
		if err != nil {
			return err
		}
		if ride.CustomerID != customerID {
			return httperror.NewNotFound("Ride not found.")
		}
		if ride.Status != models.RideStatusDestinationReached {
			return httperror.NewConflict("Ride must be completed before rating (Status: %s).", ride.Status)
		}

		var existing int64
		if err := tx.Model(&models.Rating{}).Where("ride_id = ?", input.RideID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return httperror.NewConflict("This ride has already been rated.")
		}

		rating = models.Rating{RideID: input.RideID, Score: input.Score, RatingDateTime: s.now()}
		if err := tx.Create(&rating).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return httperror.NewConflict("This ride has already been rated.")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	emit(ctx, s.notifier, newRideEvent(EventRideRated, ride))
	return &rating, nil
}
