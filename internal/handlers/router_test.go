package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bengalurutaxi/btc-backend/internal/middleware"
	"github.com/bengalurutaxi/btc-backend/internal/models"
	"github.com/bengalurutaxi/btc-backend/internal/reports"
	"github.com/bengalurutaxi/btc-backend/internal/services"
	"github.com/bengalurutaxi/btc-backend/internal/testutil"
	"github.com/bengalurutaxi/btc-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type apiEnv struct {
	router *gin.Engine
	fx     *testutil.Fixtures
	tokens *utils.TokenIssuer
}

func newAPIEnv(t *testing.T) *apiEnv {
	db := testutil.NewDB(t)
	store, err := reports.New(db)
	require.NoError(t, err)
	tokens := utils.NewTokenIssuer("router-secret", time.Hour)
	hub := services.NewHub()

	router := NewRouter(Deps{
		DB:        db,
		Tokens:    tokens,
		Rides:     services.NewRideService(db, store, hub),
		Fleet:     services.NewFleetService(db, store),
		Accounts:  services.NewAccountService(db, tokens),
		Analytics: services.NewAnalyticsService(store),
		Hub:       hub,
		Limiter:   middleware.NewRateLimiter(100, 100),
	})
	return &apiEnv{router: router, fx: testutil.NewFixtures(t, db), tokens: tokens}
}

func (e *apiEnv) token(t *testing.T, id uint, role models.Role) string {
	token, err := e.tokens.GenerateToken(id, string(role))
	require.NoError(t, err)
	return token
}

func (e *apiEnv) do(t *testing.T, method, url, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestLoginAndBookThroughAPI(t *testing.T) {
	env := newAPIEnv(t)
	customer := env.fx.Customer()

	w := env.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"name": customer.Name, "password": testutil.Password, "role": "customer"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token, _ := decode(t, w)["token"].(string)
	require.NotEmpty(t, token)

	w = env.do(t, http.MethodPost, "/api/rides/book", token, gin.H{
		"pickupLocation": "Jayanagar", "dropoffLocation": "Hebbal", "distance": 5, "taxiType": "sedan",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	booked := decode(t, w)
	assert.Equal(t, 100.0, booked["fare"])

	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/rides/customer/%d/status?statuses=drafted", customer.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rides []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rides))
	require.Len(t, rides, 1)
	assert.Nil(t, rides[0]["verificationCode"])
	assert.Equal(t, "no-store, no-cache, must-revalidate, private", w.Header().Get("Cache-Control"))

	w = env.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"name": customer.Name, "password": "nope", "role": "customer"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials.", decode(t, w)["message"])
}

func TestOwnershipAndRoles(t *testing.T) {
	env := newAPIEnv(t)
	customer := env.fx.Customer()
	other := env.fx.Customer()
	admin := env.fx.Admin()
	driver := env.fx.Driver(admin, env.fx.Vehicle(models.TaxiTypeSedan))
	customerToken := env.token(t, customer.ID, models.RoleCustomer)

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, fmt.Sprintf("/api/customers/%d", customer.ID), "", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, fmt.Sprintf("/api/customers/%d", customer.ID), customerToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, fmt.Sprintf("/api/customers/%d", other.ID), customerToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, fmt.Sprintf("/api/rides/customer/%d/history", other.ID), customerToken, nil).Code)

	w := env.do(t, http.MethodPost, "/api/rides/book", customerToken, gin.H{
		"customerId": other.ID, "pickupLocation": "A", "dropoffLocation": "B", "distance": 2, "taxiType": "suv",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/api/rides/available?vehicleType=sedan", customerToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/api/vehicles", customerToken, nil).Code)

	driverToken := env.token(t, driver.ID, models.RoleDriver)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/rides/available?vehicleType=sedan", driverToken, nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/rides/available", driverToken, nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, fmt.Sprintf("/api/drivers/%d", driver.ID), driverToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, fmt.Sprintf("/api/drivers/%d", driver.ID+1), driverToken, nil).Code)

	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/rides/driver/current/%d", driver.ID), driverToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", w.Body.String())

	adminToken := env.token(t, admin.ID, models.RoleAdmin)
	w = env.do(t, http.MethodGet, "/api/vehicles", adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "assignedDriverId")
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, fmt.Sprintf("/api/admins/%d/drivers", admin.ID+1), adminToken, nil).Code)
}

func TestRideLifecycleThroughAPI(t *testing.T) {
	env := newAPIEnv(t)
	customer := env.fx.Customer()
	admin := env.fx.Admin()
	driver := env.fx.Driver(admin, env.fx.Vehicle(models.TaxiTypeSedan))
	ride := env.fx.Ride(customer, models.RideStatusDrafted, testutil.WithCode("QWE789"))

	customerToken := env.token(t, customer.ID, models.RoleCustomer)
	driverToken := env.token(t, driver.ID, models.RoleDriver)

	w := env.do(t, http.MethodPost, "/api/payments/process", customerToken, gin.H{"rideId": ride.ID, "amount": 100, "paymentMethod": "credit card"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(t, http.MethodPut, fmt.Sprintf("/api/rides/accept/%d", ride.ID), driverToken, gin.H{"driverId": driver.ID + 1})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPut, fmt.Sprintf("/api/rides/accept/%d", ride.ID), driverToken, gin.H{"driverId": driver.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "QWE789")

	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/rides/cancel/%d", ride.ID), customerToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPut, fmt.Sprintf("/api/rides/complete/%d", ride.ID), driverToken, gin.H{"verificationCode": "WRONG1"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Invalid verification code.", decode(t, w)["message"])

	w = env.do(t, http.MethodPut, fmt.Sprintf("/api/rides/complete/%d", ride.ID), driverToken, gin.H{"verificationCode": "qwe789"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 40.0, decode(t, w)["commissionAmount"])

	w = env.do(t, http.MethodPost, "/api/ratings", customerToken, gin.H{"rideId": ride.ID, "score": 5})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/rides/driver/%d/completed?minRating=5", driver.ID), driverToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var completed []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &completed))
	require.Len(t, completed, 1)
	assert.Equal(t, 40.0, completed[0]["commission"])

	today := time.Now().UTC().Format("2006-01-02")
	adminToken := env.token(t, admin.ID, models.RoleAdmin)
	w = env.do(t, http.MethodGet, "/api/analysis/daily?date="+today, adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, decode(t, w)["totalRides"])

	w = env.do(t, http.MethodGet, "/api/analysis/graph?mode=year", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBadRequests(t *testing.T) {
	env := newAPIEnv(t)
	customerToken := env.token(t, env.fx.Customer().ID, models.RoleCustomer)

	w := env.do(t, http.MethodGet, "/api/rides/fare?distance=5", customerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 100.0, decode(t, w)["fare"])

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/rides/fare?distance=-1", customerToken, nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodDelete, "/api/rides/draft/abc", customerToken, nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/rides/book", customerToken, "not an object").Code)
}

func TestHealthAndMetrics(t *testing.T) {
	env := newAPIEnv(t)

	w := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])

	w = env.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "btc_http_requests_total")
}
