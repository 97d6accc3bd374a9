package handlers

import (
	"net/http"

	"github.com/bengalurutaxi/btc-backend/internal/services"
	"github.com/gin-gonic/gin"
)

func Login(accounts *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.LoginInput
		if !bindJSON(c, &input) {
			return
		}

		res, err := accounts.Login(c.Request.Context(), input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func RegisterCustomer(accounts *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.RegisterCustomerInput
		if !bindJSON(c, &input) {
			return
		}

		customer, err := accounts.RegisterCustomer(c.Request.Context(), input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message":  "Customer registered successfully.",
			"customer": customer,
		})
	}
}

func GetCustomer(accounts *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := self(c, "id")
		if !ok {
			return
		}

		customer, err := accounts.GetCustomer(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, customer)
	}
}

func UpdateCustomer(accounts *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := self(c, "id")
		if !ok {
			return
		}
		var input services.UpdateCustomerInput
		if !bindJSON(c, &input) {
			return
		}

		customer, err := accounts.UpdateCustomer(c.Request.Context(), id, input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":  "Profile updated successfully.",
			"customer": customer,
		})
	}
}

func GetAdmin(accounts *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := self(c, "adminId")
		if !ok {
			return
		}

		admin, err := accounts.GetAdmin(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, admin)
	}
}
