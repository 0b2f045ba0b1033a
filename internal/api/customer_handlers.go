package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"alessacloud/internal/middleware"
	"alessacloud/internal/models"
	"alessacloud/internal/services"
	"alessacloud/internal/tenant"
)

// CustomerHandlers serves storefront account endpoints
type CustomerHandlers struct {
	customerAuth *services.CustomerAuthService
}

// NewCustomerHandlers creates new customer handlers
func NewCustomerHandlers(customerAuth *services.CustomerAuthService) *CustomerHandlers {
	return &CustomerHandlers{
		customerAuth: customerAuth,
	}
}

// SignupRequest is the account creation payload
type SignupRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

// CustomerLoginRequest is the login payload
type CustomerLoginRequest struct {
	Email      string `json:"email" binding:"required"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"rememberMe"`
}

// CustomerResponse is the public view of a customer account
type CustomerResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	FirstName    string `json:"firstName,omitempty"`
	LastName     string `json:"lastName,omitempty"`
	Phone        string `json:"phone,omitempty"`
	RewardPoints int    `json:"rewardPoints"`
}

// SessionResponse carries the bearer token issued on signup/login
type SessionResponse struct {
	Token    string           `json:"token"`
	Customer CustomerResponse `json:"customer"`
}

func toCustomerResponse(customer *models.Customer) CustomerResponse {
	return CustomerResponse{
		ID:           customer.ID.String(),
		Email:        customer.Email,
		FirstName:    customer.FirstName,
		LastName:     customer.LastName,
		Phone:        customer.Phone,
		RewardPoints: customer.RewardPoints,
	}
}

// Signup creates a customer account for the resolved tenant
func (h *CustomerHandlers) Signup(c *gin.Context) {
	t := tenant.RequireTenant(c)

	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Error: "invalid request: " + err.Error()})
		return
	}

	customer, token, err := h.customerAuth.Signup(c.Request.Context(), t.ID, services.SignupInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SessionResponse{
		Token:    token,
		Customer: toCustomerResponse(customer),
	})
}

// Login verifies credentials and issues a fresh session token
func (h *CustomerHandlers) Login(c *gin.Context) {
	t := tenant.RequireTenant(c)

	var req CustomerLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Error: "invalid request: " + err.Error()})
		return
	}

	customer, token, err := h.customerAuth.Login(c.Request.Context(), t.ID, req.Email, req.Password, req.RememberMe)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SessionResponse{
		Token:    token,
		Customer: toCustomerResponse(customer),
	})
}

// Logout invalidates the customer's sessions
func (h *CustomerHandlers) Logout(c *gin.Context) {
	t := tenant.RequireTenant(c)
	customer := middleware.RequireCustomer(c)

	if err := h.customerAuth.Logout(c.Request.Context(), t.ID, customer.ID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Profile returns the authenticated customer's account
func (h *CustomerHandlers) Profile(c *gin.Context) {
	customer := middleware.RequireCustomer(c)
	c.JSON(http.StatusOK, toCustomerResponse(customer))
}
