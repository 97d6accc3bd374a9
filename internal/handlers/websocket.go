package handlers

import (
	"github.com/bengalurutaxi/btc-backend/internal/middleware"
	"github.com/bengalurutaxi/btc-backend/internal/models"
	"github.com/bengalurutaxi/btc-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// WebSocketHandler streams ride updates to the authenticated caller. Drivers
// are tagged with their vehicle type so they only hear about matching rides.
func WebSocketHandler(hub *services.Hub, fleet *services.FleetService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, role, _ := middleware.CurrentUser(c)

		var taxiType models.TaxiType
		if role == models.RoleDriver {
			driver, err := fleet.GetDriver(c.Request.Context(), userID)
			if err != nil {
				respondError(c, err)
				return
			}
			if driver.IsActive && driver.Vehicle != nil {
				taxiType = driver.Vehicle.Type
			}
		}

		services.HandleWebSocket(hub, c.Writer, c.Request, userID, role, taxiType)
	}
}
