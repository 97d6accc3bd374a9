package handlers

import (
	"net/http"

	"github.com/bengalurutaxi/btc-backend/internal/services"
	"github.com/gin-gonic/gin"
)

func AdminDrivers(fleet *services.FleetService) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID, ok := self(c, "adminId")
		if !ok {
			return
		}

		drivers, err := fleet.AdminDrivers(c.Request.Context(), adminID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, drivers)
	}
}

func AddDriver(fleet *services.FleetService) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID, ok := self(c, "adminId")
		if !ok {
			return
		}
		var input services.DriverInput
		if !bindJSON(c, &input) {
			return
		}

		driver, err := fleet.AddDriver(c.Request.Context(), adminID, input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message": "Driver added successfully.",
			"driver":  driver,
		})
	}
}

func GetDriver(fleet *services.FleetService) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID, ok := selfOrAdmin(c, "driverId")
		if !ok {
			return
		}

		driver, err := fleet.GetDriver(c.Request.Context(), driverID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, driver)
	}
}

func UpdateDriver(fleet *services.FleetService) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID, ok := uintParam(c, "driverId")
		if !ok {
			return
		}
		var input services.DriverInput
		if !bindJSON(c, &input) {
			return
		}

		driver, err := fleet.UpdateDriver(c.Request.Context(), callerID(c), driverID, input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Driver updated successfully.",
			"driver":  driver,
		})
	}
}

func DriverActiveRidesCheck(fleet *services.FleetService) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID, ok := uintParam(c, "driverId")
		if !ok {
			return
		}

		active, err := fleet.HasActiveRides(c.Request.Context(), driverID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"hasActiveRides": active})
	}
}

func DeactivateDriver(fleet *services.FleetService) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID, ok := uintParam(c, "driverId")
		if !ok {
			return
		}
		if err := fleet.Deactivate(c.Request.Context(), callerID(c), driverID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Driver deactivated successfully."})
	}
}

func ActivateDriver(fleet *services.FleetService) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID, ok := uintParam(c, "driverId")
		if !ok {
			return
		}
		var input struct {
			VehicleID uint `json:"vehicle_id"`
		}
		if !bindJSON(c, &input) {
			return
		}

		if err := fleet.Activate(c.Request.Context(), callerID(c), driverID, input.VehicleID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Driver activated successfully."})
	}
}

func ListVehicles(fleet *services.FleetService) gin.HandlerFunc {
	return func(c *gin.Context) {
		vehicles, err := fleet.Vehicles(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, vehicles)
	}
}

func AddVehicle(fleet *services.FleetService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.VehicleInput
		if !bindJSON(c, &input) {
			return
		}

		vehicle, err := fleet.AddVehicle(c.Request.Context(), input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message": "Vehicle added successfully.",
			"vehicle": vehicle,
		})
	}
}

func UnassignedVehicles(fleet *services.FleetService) gin.HandlerFunc {
	return func(c *gin.Context) {
		vehicles, err := fleet.UnassignedVehicles(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, vehicles)
	}
}

func VehicleOptionsForDriver(fleet *services.FleetService) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID, ok := uintParam(c, "driverId")
		if !ok {
			return
		}

		vehicles, err := fleet.VehicleOptionsForDriver(c.Request.Context(), driverID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, vehicles)
	}
}

func DeleteVehicle(fleet *services.FleetService) gin.HandlerFunc {
	return func(c *gin.Context) {
		vehicleID, ok := uintParam(c, "id")
		if !ok {
			return
		}
		if err := fleet.DeleteVehicle(c.Request.Context(), vehicleID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Vehicle deleted successfully."})
	}
}
