package handlers

import (
	"net/http"

	"github.com/bengalurutaxi/btc-backend/internal/services"
	"github.com/bengalurutaxi/btc-backend/pkg/httperror"
	"github.com/gin-gonic/gin"
)

// AvailableRideRequests lists paid rides for the vehicle type, oldest first.
func AvailableRideRequests(rides *services.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := rides.AvailableRequests(c.Request.Context(), c.Query("vehicleType"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func AcceptRide(rides *services.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rideID, ok := uintParam(c, "rideId")
		if !ok {
			return
		}
		var input struct {
			DriverID uint `json:"driverId"`
		}
		if c.Request.ContentLength != 0 && !bindJSON(c, &input) {
			return
		}
		driverID := callerID(c)
		if input.DriverID != 0 && input.DriverID != driverID {
			respondError(c, httperror.NewForbidden("You can only accept rides for yourself."))
			return
		}

		ride, err := rides.Accept(c.Request.Context(), rideID, driverID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Ride accepted successfully.",
			"ride":    ride,
		})
	}
}
