package utils

import "math"

const (
	// Fares are quoted in rupees.
	BaseFare  = 50.0
	RatePerKm = 10.0

	// DriverShare is the driver's cut of a completed ride's fare; the rest is
	// company income.
	DriverShare  = 0.40
	CompanyShare = 0.60
)

// CalculateFare quotes a ride of the given length.
func CalculateFare(distanceKm float64) float64 {
	return Round2(BaseFare + distanceKm*RatePerKm)
}

// CalculateCommission is the amount credited to the driver when a ride of the
// given length is completed.
func CalculateCommission(distanceKm float64) float64 {
	return Round2(CalculateFare(distanceKm) * DriverShare)
}

// CompanyIncome is the platform's share of a payment.
func CompanyIncome(paymentAmount float64) float64 {
	return Round2(paymentAmount * CompanyShare)
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
