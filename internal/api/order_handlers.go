package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"alessacloud/internal/middleware"
	"alessacloud/internal/models"
	"alessacloud/internal/payments"
	"alessacloud/internal/services"
	"alessacloud/internal/tenant"
)

// OrderHandlers serves the public order surface
type OrderHandlers struct {
	orderSvc      *services.OrderService
	paymentClient *payments.Client
}

// NewOrderHandlers creates new order handlers
func NewOrderHandlers(orderSvc *services.OrderService, paymentClient *payments.Client) *OrderHandlers {
	return &OrderHandlers{
		orderSvc:      orderSvc,
		paymentClient: paymentClient,
	}
}

// CreateOrderRequest is the storefront checkout payload
type CreateOrderRequest struct {
	Fulfillment   string                 `json:"fulfillment"`
	Address       models.DeliveryAddress `json:"address"`
	Items         []OrderItemRequest     `json:"items" binding:"required"`
	Tip           float64                `json:"tip"`
	Notes         string                 `json:"notes"`
	ExpectedTotal *float64               `json:"expectedTotal"`
}

// OrderItemRequest is one requested line item
type OrderItemRequest struct {
	MenuItemID string `json:"menuItemId" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required"`
	Notes      string `json:"notes"`
}

// OrderResponse is the public view of an order
type OrderResponse struct {
	ID          string              `json:"id"`
	ShortID     string              `json:"shortId"`
	Status      string              `json:"status"`
	Fulfillment string              `json:"fulfillment"`
	Items       []OrderItemResponse `json:"items"`
	Subtotal    float64             `json:"subtotal"`
	Tax         float64             `json:"tax"`
	Tip         float64             `json:"tip"`
	DeliveryFee float64             `json:"deliveryFee"`
	PlatformFee float64             `json:"platformFee"`
	Total       float64             `json:"total"`
	CreatedAt   string              `json:"createdAt"`
}

// OrderItemResponse is one line of an order
type OrderItemResponse struct {
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
	Notes     string  `json:"notes,omitempty"`
}

func toOrderResponse(order *models.Order) OrderResponse {
	resp := OrderResponse{
		ID:          order.ID.String(),
		ShortID:     order.ShortID,
		Status:      string(order.Status),
		Fulfillment: string(order.Fulfillment),
		Items:       make([]OrderItemResponse, 0, len(order.Items)),
		Subtotal:    order.Subtotal,
		Tax:         order.Tax,
		Tip:         order.Tip,
		DeliveryFee: order.DeliveryFee,
		PlatformFee: order.PlatformFee,
		Total:       order.Total,
		CreatedAt:   order.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	for _, item := range order.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			Notes:     item.Notes,
		})
	}
	return resp
}

// CreateOrder places an order for the resolved tenant. A logged-in
// customer is attached when a valid session token accompanies the
// request; anonymous orders are allowed.
func (h *OrderHandlers) CreateOrder(c *gin.Context) {
	t := tenant.RequireTenant(c)
	if !t.IsActive() {
		c.JSON(http.StatusNotFound, ResponseError{Error: "tenant not found"})
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Error: "invalid request: " + err.Error()})
		return
	}

	input := services.OrderInput{
		Fulfillment:   models.FulfillmentType(req.Fulfillment),
		Address:       req.Address,
		Tip:           req.Tip,
		Notes:         req.Notes,
		ExpectedTotal: req.ExpectedTotal,
	}

	for _, item := range req.Items {
		menuItemID, err := uuid.Parse(item.MenuItemID)
		if err != nil {
			c.JSON(http.StatusBadRequest, ResponseError{Error: "invalid menu item id: " + item.MenuItemID})
			return
		}
		input.Items = append(input.Items, services.OrderItemInput{
			MenuItemID: menuItemID,
			Quantity:   item.Quantity,
			Notes:      item.Notes,
		})
	}

	if v, exists := c.Get(middleware.CustomerKey); exists {
		id := v.(*models.Customer).ID
		input.CustomerID = &id
	}

	order, err := h.orderSvc.Create(c.Request.Context(), t, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toOrderResponse(order))
}

// TrackOrder returns the public status of an order by its short id. The
// lookup is scoped to the resolved tenant, so the same short id on
// another restaurant's domain is a 404 here.
func (h *OrderHandlers) TrackOrder(c *gin.Context) {
	t := tenant.RequireTenant(c)

	order, err := h.orderSvc.TrackByShortID(c.Request.Context(), t.ID, c.Param("shortId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order))
}

// CreateCheckout opens a payment session for a pending order
func (h *OrderHandlers) CreateCheckout(c *gin.Context) {
	t := tenant.RequireTenant(c)

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Error: "invalid order id"})
		return
	}

	order, err := h.orderSvc.Get(c.Request.Context(), t.ID, orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	if order.Status != models.OrderStatusPending {
		c.JSON(http.StatusConflict, ResponseError{Error: "order is no longer awaiting payment"})
		return
	}

	session, err := h.paymentClient.CreateCheckout(c.Request.Context(), order)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}
