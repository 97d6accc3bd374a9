package models

import "time"

type PaymentMethod string

const (
	PaymentMethodCreditCard PaymentMethod = "credit card"
	PaymentMethodDebitCard  PaymentMethod = "debit card"
	PaymentMethodNetBanking PaymentMethod = "net banking"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCreditCard, PaymentMethodDebitCard, PaymentMethodNetBanking:
		return true
	}
	return false
}

const PaymentStatusComplete = "complete"

type Payment struct {
	ID              uint          `gorm:"column:payment_id;primaryKey;autoIncrement" json:"paymentId"`
	RideID          uint          `gorm:"column:ride_id;not null;uniqueIndex" json:"rideId"`
	Amount          float64       `gorm:"column:amount;not null" json:"amount"`
	PaymentMethod   PaymentMethod `gorm:"column:payment_method;size:32;not null" json:"paymentMethod"`
	PaymentStatus   string        `gorm:"column:payment_status;size:32;not null" json:"status"`
	PaymentDateTime time.Time     `gorm:"column:payment_date_time;not null" json:"paymentDateTime"`
}

func (Payment) TableName() string {
	return "payments"
}

// Commission is the driver's earning for a completed ride.
type Commission struct {
	ID                 uint      `gorm:"column:commission_id;primaryKey;autoIncrement" json:"commissionId"`
	RideID             uint      `gorm:"column:ride_id;not null;uniqueIndex" json:"rideId"`
	CommissionAmount   float64   `gorm:"column:commission_amount;not null" json:"commissionAmount"`
	CommissionDateTime time.Time `gorm:"column:commission_date_time;not null;index" json:"commissionDateTime"`
}

func (Commission) TableName() string {
	return "commissions"
}

type Rating struct {
	ID             uint      `gorm:"column:rating_id;primaryKey;autoIncrement" json:"ratingId"`
	RideID         uint      `gorm:"column:ride_id;not null;uniqueIndex" json:"rideId"`
	Score          int       `gorm:"column:score;not null" json:"score"`
	RatingDateTime time.Time `gorm:"column:rating_date_time;not null" json:"ratingDateTime"`
}

func (Rating) TableName() string {
	return "ratings"
}
