package handlers

import (
	"net/http"

	"github.com/bengalurutaxi/btc-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// CompleteRide closes the caller's accepted ride with the customer's code.
func CompleteRide(rides *services.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rideID, ok := uintParam(c, "rideId")
		if !ok {
			return
		}
		var input struct {
			VerificationCode string `json:"verificationCode"`
		}
		if !bindJSON(c, &input) {
			return
		}

		res, err := rides.Complete(c.Request.Context(), rideID, callerID(c), input.VerificationCode)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":          "Ride completed successfully.",
			"rideId":           res.RideID,
			"commissionAmount": res.CommissionAmount,
		})
	}
}

// CurrentDriverRide returns the driver's accepted ride, or null.
func CurrentDriverRide(rides *services.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID, ok := self(c, "driverId")
		if !ok {
			return
		}

		ride, err := rides.CurrentForDriver(c.Request.Context(), driverID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, ride)
	}
}

func DriverCompletedRides(rides *services.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID, ok := self(c, "driverId")
		if !ok {
			return
		}
		filter, err := historyFilter(c)
		if err != nil {
			respondError(c, err)
			return
		}

		list, err := rides.DriverCompleted(c.Request.Context(), driverID, filter)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}
