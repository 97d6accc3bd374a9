package services

import (
	"context"
	"errors"

	"github.com/bengalurutaxi/btc-backend/internal/models"
	"github.com/bengalurutaxi/btc-backend/pkg/httperror"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentInput struct {
	RideID        uint                 `json:"rideId" validate:"required"`
	Amount        float64              `json:"amount" validate:"gt=0"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod" validate:"required,paymethod"`
}

type PaymentResult struct {
	PaymentID uint   `json:"paymentId"`
	RideID    uint   `json:"rideId"`
	Status    string `json:"status"`
}

// ProcessPayment records a payment for the customer's drafted ride and moves
// it to payment done. The status change and the payment row commit together.
func (s *RideService) ProcessPayment(ctx context.Context, customerID uint, input PaymentInput) (*PaymentResult, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var (
		ride    *models.Ride
		payment models.Payment
	)
	err := runTx(ctx, s.db, "RideService.ProcessPayment", func(tx *gorm.DB) error {
		moved, err := advance(tx, input.RideID, models.RideStatusDrafted, models.RideStatusPaymentDone, nil,
			clause.Eq{Column: clause.Column{Name: "customer_id"}, Value: customerID})
		if err != nil {
			return err
		}
		if !moved {
			return httperror.NewNotFound("Ride not found or payment already processed.")
		}

		payment = models.Payment{
			RideID:          input.RideID,
			Amount:          input.Amount,
			PaymentMethod:   input.PaymentMethod,
			PaymentStatus:   models.PaymentStatusComplete,
			PaymentDateTime: s.now(),
		}
		if err := tx.Create(&payment).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return httperror.NewConflict("Payment already recorded for this ride.")
			}
			return err
		}

		ride, err = loadRide(tx, input.RideID, false)
		return err
	})
	if err != nil {
		return nil, err
	}

	emit(ctx, s.notifier, newRideEvent(EventRidePaid, ride))
	return &PaymentResult{PaymentID: payment.ID, RideID: payment.RideID, Status: payment.PaymentStatus}, nil
}
