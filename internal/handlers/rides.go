package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bengalurutaxi/btc-backend/internal/models"
	"github.com/bengalurutaxi/btc-backend/internal/services"
	"github.com/bengalurutaxi/btc-backend/pkg/httperror"
	"github.com/bengalurutaxi/btc-backend/pkg/utils"
	"github.com/gin-gonic/gin"
)

// FareQuote prices a trip before booking.
func FareQuote() gin.HandlerFunc {
	return func(c *gin.Context) {
		distance, err := strconv.ParseFloat(strings.TrimSpace(c.Query("distance")), 64)
		if err != nil || distance <= 0 {
			respondError(c, httperror.NewBadRequest("distance must be a positive number."))
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"distance":            distance,
			"fare":                utils.CalculateFare(distance),
			"potentialCommission": utils.CalculateCommission(distance),
		})
	}
}

// BookRide drafts a ride for the calling customer. A customerId in the body,
// if present, must be the caller's.
func BookRide(rides *services.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.BookRideInput
		if !bindJSON(c, &input) {
			return
		}
		customerID := callerID(c)
		if input.CustomerID != 0 && input.CustomerID != customerID {
			respondError(c, httperror.NewForbidden("You can only book rides for yourself."))
			return
		}
		input.CustomerID = customerID

		res, err := rides.Book(c.Request.Context(), input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message": "Ride booked successfully.",
			"rideId":  res.RideID,
			"fare":    res.Fare,
		})
	}
}

func DeleteDraftRide(rides *services.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rideID, ok := uintParam(c, "rideId")
		if !ok {
			return
		}
		if err := rides.DeleteDraft(c.Request.Context(), rideID, callerID(c)); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Draft ride deleted successfully."})
	}
}

func CancelRide(rides *services.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rideID, ok := uintParam(c, "rideId")
		if !ok {
			return
		}
		if err := rides.Cancel(c.Request.Context(), rideID, callerID(c)); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Ride cancelled successfully."})
	}
}

// CustomerRidesByStatus accepts statuses as a comma separated list, a
// repeated parameter, or both.
func CustomerRidesByStatus(rides *services.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		customerID, ok := self(c, "customerId")
		if !ok {
			return
		}

		var statuses []models.RideStatus
		for _, raw := range c.QueryArray("statuses") {
			for _, s := range strings.Split(raw, ",") {
				if s = strings.TrimSpace(s); s != "" {
					statuses = append(statuses, models.RideStatus(strings.ToLower(s)))
				}
			}
		}

		list, err := rides.CustomerRidesByStatus(c.Request.Context(), customerID, statuses)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func CustomerRideHistory(rides *services.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		customerID, ok := self(c, "customerId")
		if !ok {
			return
		}
		filter, err := historyFilter(c)
		if err != nil {
			respondError(c, err)
			return
		}

		list, err := rides.CustomerHistory(c.Request.Context(), customerID, filter)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func ProcessPayment(rides *services.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.PaymentInput
		if !bindJSON(c, &input) {
			return
		}

		res, err := rides.ProcessPayment(c.Request.Context(), callerID(c), input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message": "Payment processed successfully.",
			"payment": res,
		})
	}
}

func RateRide(rides *services.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.RatingInput
		if !bindJSON(c, &input) {
			return
		}

		rating, err := rides.Rate(c.Request.Context(), callerID(c), input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message": "Rating submitted successfully.",
			"rating":  rating,
		})
	}
}
