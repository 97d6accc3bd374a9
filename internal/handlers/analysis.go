package handlers

import (
	"net/http"

	"github.com/bengalurutaxi/btc-backend/internal/services"
	"github.com/gin-gonic/gin"
)

func CompanyDailyStats(analytics *services.AnalyticsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := analytics.CompanyDaily(c.Request.Context(), c.Query("date"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

func CompanyGraph(analytics *services.AnalyticsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		mode, year, month, err := graphParams(c)
		if err != nil {
			respondError(c, err)
			return
		}

		points, err := analytics.CompanyGraph(c.Request.Context(), mode, year, month)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, points)
	}
}

func DriverDailyStats(analytics *services.AnalyticsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID, ok := selfOrAdmin(c, "driverId")
		if !ok {
			return
		}

		stats, err := analytics.DriverDaily(c.Request.Context(), driverID, c.Query("date"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

func DriverGraph(analytics *services.AnalyticsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID, ok := selfOrAdmin(c, "driverId")
		if !ok {
			return
		}
		mode, year, month, err := graphParams(c)
		if err != nil {
			respondError(c, err)
			return
		}

		points, err := analytics.DriverGraph(c.Request.Context(), driverID, mode, year, month)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, points)
	}
}
