package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bengalurutaxi/btc-backend/internal/middleware"
	"github.com/bengalurutaxi/btc-backend/internal/models"
	"github.com/bengalurutaxi/btc-backend/internal/reports"
	"github.com/bengalurutaxi/btc-backend/pkg/httperror"
	"github.com/bengalurutaxi/btc-backend/pkg/log"
	"github.com/gin-gonic/gin"
)

// respondError writes err as {"message": ...} with its status. Untyped errors
// never leak their text to the client.
func respondError(c *gin.Context, err error) {
	if httpErr, ok := httperror.As(err); ok {
		c.JSON(httpErr.Code, gin.H{"message": httpErr.Message})
		return
	}
	log.GetLogger().Error(c.FullPath(), err.Error(), "handler", c.Request.Method)
	c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error."})
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, httperror.NewBadRequest("Invalid request body."))
		return false
	}
	return true
}

func uintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || v == 0 {
		respondError(c, httperror.NewBadRequest("Invalid %s.", name))
		return 0, false
	}
	return uint(v), true
}

// self resolves a path id that must belong to the caller.
func self(c *gin.Context, name string) (uint, bool) {
	id, ok := uintParam(c, name)
	if !ok {
		return 0, false
	}
	userID, _, _ := middleware.CurrentUser(c)
	if userID != id {
		respondError(c, httperror.NewForbidden("You can only access your own account."))
		return 0, false
	}
	return id, true
}

// selfOrAdmin resolves a driver path id readable by that driver or any admin.
func selfOrAdmin(c *gin.Context, name string) (uint, bool) {
	id, ok := uintParam(c, name)
	if !ok {
		return 0, false
	}
	userID, role, _ := middleware.CurrentUser(c)
	if role != models.RoleAdmin && userID != id {
		respondError(c, httperror.NewForbidden("You can only access your own account."))
		return 0, false
	}
	return id, true
}

func callerID(c *gin.Context) uint {
	id, _, _ := middleware.CurrentUser(c)
	return id
}

func queryFloat(c *gin.Context, name string, dst **float64) error {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return httperror.NewBadRequest("Invalid %s.", name)
	}
	*dst = &v
	return nil
}

func queryInt(c *gin.Context, name string, dst **int) error {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return httperror.NewBadRequest("Invalid %s.", name)
	}
	*dst = &v
	return nil
}

// queryDate parses a YYYY-MM-DD day in UTC. With endOfDay the result is the
// start of the following day, for use as an exclusive upper bound.
func queryDate(c *gin.Context, name string, endOfDay bool, dst **time.Time) error {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil
	}
	day, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		return httperror.NewBadRequest("Invalid %s. Use YYYY-MM-DD.", name)
	}
	if endOfDay {
		day = day.AddDate(0, 0, 1)
	}
	*dst = &day
	return nil
}

// historyFilter reads the optional filters shared by customer and driver
// ride history.
func historyFilter(c *gin.Context) (reports.HistoryFilter, error) {
	f := reports.HistoryFilter{
		Pickup:   strings.TrimSpace(c.Query("pickup")),
		Dropoff:  strings.TrimSpace(c.Query("dropoff")),
		TaxiType: strings.ToLower(strings.TrimSpace(c.Query("taxiType"))),
	}
	if f.TaxiType != "" && !models.TaxiType(f.TaxiType).Valid() {
		return f, httperror.NewBadRequest("Invalid taxiType.")
	}
	for _, err := range []error{
		queryFloat(c, "minDistance", &f.MinDistance),
		queryFloat(c, "maxDistance", &f.MaxDistance),
		queryFloat(c, "minFare", &f.MinFare),
		queryFloat(c, "maxFare", &f.MaxFare),
		queryInt(c, "minRating", &f.MinRating),
		queryInt(c, "maxRating", &f.MaxRating),
		queryDate(c, "startDate", false, &f.StartDate),
		queryDate(c, "endDate", true, &f.EndDate),
	} {
		if err != nil {
			return f, err
		}
	}
	return f, nil
}

// graphParams reads mode, year and month; missing numbers are zero.
func graphParams(c *gin.Context) (string, int, int, error) {
	var year, month *int
	if err := queryInt(c, "year", &year); err != nil {
		return "", 0, 0, err
	}
	if err := queryInt(c, "month", &month); err != nil {
		return "", 0, 0, err
	}
	y, m := 0, 0
	if year != nil {
		y = *year
	}
	if month != nil {
		m = *month
	}
	return c.Query("mode"), y, m, nil
}
