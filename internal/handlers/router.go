package handlers

import (
	"net/http"
	"time"

	"github.com/bengalurutaxi/btc-backend/internal/metrics"
	"github.com/bengalurutaxi/btc-backend/internal/middleware"
	"github.com/bengalurutaxi/btc-backend/internal/models"
	"github.com/bengalurutaxi/btc-backend/internal/services"
	"github.com/bengalurutaxi/btc-backend/pkg/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps is everything the HTTP layer needs.
type Deps struct {
	DB          *gorm.DB
	Tokens      *utils.TokenIssuer
	Rides       *services.RideService
	Fleet       *services.FleetService
	Accounts    *services.AccountService
	Analytics   *services.AnalyticsService
	Hub         *services.Hub
	Limiter     *middleware.RateLimiter
	CORSOrigins []string
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Metrics())

	corsConfig := cors.DefaultConfig()
	if len(d.CORSOrigins) == 0 || (len(d.CORSOrigins) == 1 && d.CORSOrigins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = d.CORSOrigins
	}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	r.Use(cors.New(corsConfig))

	r.GET("/health", Health(d.DB))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	auth := middleware.AuthMiddleware(d.Tokens)
	customer := middleware.RequireRole(models.RoleCustomer)
	driver := middleware.RequireRole(models.RoleDriver)
	admin := middleware.RequireRole(models.RoleAdmin)
	driverOrAdmin := middleware.RequireRole(models.RoleDriver, models.RoleAdmin)

	api := r.Group("/api")
	api.Use(middleware.NoCache())
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/login", d.Limiter.Handler(), Login(d.Accounts))
			authRoutes.POST("/register/customer", RegisterCustomer(d.Accounts))
		}

		api.GET("/ws", auth, WebSocketHandler(d.Hub, d.Fleet))

		protected := api.Group("/")
		protected.Use(auth)
		{
			customers := protected.Group("/customers", customer)
			{
				customers.GET("/:id", GetCustomer(d.Accounts))
				customers.PUT("/:id", UpdateCustomer(d.Accounts))
			}

			rides := protected.Group("/rides")
			{
				rides.GET("/fare", FareQuote())
				rides.GET("/customer/:customerId/status", customer, CustomerRidesByStatus(d.Rides))
				rides.GET("/customer/:customerId/history", customer, CustomerRideHistory(d.Rides))
				rides.POST("/book", customer, BookRide(d.Rides))
				rides.DELETE("/draft/:rideId", customer, DeleteDraftRide(d.Rides))
				rides.DELETE("/cancel/:rideId", customer, CancelRide(d.Rides))

				rides.GET("/available", driver, AvailableRideRequests(d.Rides))
				rides.PUT("/accept/:rideId", driver, AcceptRide(d.Rides))
				rides.GET("/driver/current/:driverId", driver, CurrentDriverRide(d.Rides))
				rides.PUT("/complete/:rideId", driver, d.Limiter.Handler(), CompleteRide(d.Rides))
				rides.GET("/driver/:driverId/completed", driver, DriverCompletedRides(d.Rides))
			}

			protected.POST("/payments/process", customer, ProcessPayment(d.Rides))
			protected.POST("/ratings", customer, RateRide(d.Rides))

			drivers := protected.Group("/drivers")
			{
				drivers.GET("/:driverId", driverOrAdmin, GetDriver(d.Fleet))
				drivers.PUT("/:driverId", admin, UpdateDriver(d.Fleet))
				drivers.GET("/:driverId/active-rides-check", admin, DriverActiveRidesCheck(d.Fleet))
				drivers.PUT("/:driverId/deactivate", admin, DeactivateDriver(d.Fleet))
				drivers.PUT("/:driverId/activate", admin, ActivateDriver(d.Fleet))
				drivers.GET("/:driverId/performance/daily", driverOrAdmin, DriverDailyStats(d.Analytics))
				drivers.GET("/:driverId/performance/graph", driverOrAdmin, DriverGraph(d.Analytics))
			}

			admins := protected.Group("/admins", admin)
			{
				admins.GET("/:adminId", GetAdmin(d.Accounts))
				admins.GET("/:adminId/drivers", AdminDrivers(d.Fleet))
				admins.POST("/:adminId/drivers", AddDriver(d.Fleet))
			}

			analysis := protected.Group("/analysis", admin)
			{
				analysis.GET("/daily", CompanyDailyStats(d.Analytics))
				analysis.GET("/graph", CompanyGraph(d.Analytics))
			}

			vehicles := protected.Group("/vehicles", admin)
			{
				vehicles.GET("", ListVehicles(d.Fleet))
				vehicles.POST("", AddVehicle(d.Fleet))
				vehicles.GET("/unassigned", UnassignedVehicles(d.Fleet))
				vehicles.GET("/options-for-driver/:driverId", VehicleOptionsForDriver(d.Fleet))
				vehicles.DELETE("/:id", DeleteVehicle(d.Fleet))
			}
		}
	}

	return r
}

// Health reports whether the database answers.
func Health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
	}
}
