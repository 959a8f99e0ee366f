package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/storefront/orderflow/internal/domain/order"
	"github.com/storefront/orderflow/internal/http/response"
	"github.com/storefront/orderflow/internal/pkg/ctxutil"
	"github.com/storefront/orderflow/internal/services"
)

type OrderHandler struct {
	commands services.OrderCommandService
	queries  services.OrderQueryService
}

func NewOrderHandler(commands services.OrderCommandService, queries services.OrderQueryService) *OrderHandler {
	return &OrderHandler{commands: commands, queries: queries}
}

type orderView struct {
	ID           uuid.UUID    `json:"id"`
	CustomerName string       `json:"customer_name"`
	Address      string       `json:"address"`
	Items        []order.Item `json:"items"`
	Status       order.Status `json:"status"`
	TotalPrice   float64      `json:"total_price"`
	CreatedAt    string       `json:"created_at"`
	UpdatedAt    string       `json:"updated_at"`
}

func toOrderView(o *order.Order) orderView {
	items := o.Items
	if items == nil {
		items = []order.Item{}
	}
	return orderView{
		ID:           o.ID,
		CustomerName: o.CustomerName,
		Address:      o.DeliveryInfo.Address,
		Items:        items,
		Status:       o.Status,
		TotalPrice:   o.TotalPrice,
		CreatedAt:    o.CreatedAt.Format("2006-01-02T15:04:05.999999Z07:00"),
		UpdatedAt:    o.UpdatedAt.Format("2006-01-02T15:04:05.999999Z07:00"),
	}
}

// POST /orders/new
func (oh *OrderHandler) Create(c *gin.Context) {
	var req services.CreateOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if len(req.Items) == 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", order.ErrEmptyOrder)
		return
	}
	if req.CustomerName == "" {
		if principal := ctxutil.GetPrincipal(c.Request.Context()); principal != nil {
			req.CustomerName = principal.Username
		}
	}

	ord, err := oh.commands.CreateNew(c.Request.Context(), req)
	if err != nil {
		response.RespondMapped(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order_id": ord.ID})
}

// PATCH /orders/:order_id
func (oh *OrderHandler) Update(c *gin.Context) {
	orderID, ok := oh.orderID(c)
	if !ok {
		return
	}

	var req services.UpdateOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	if err := oh.commands.Update(c.Request.Context(), orderID, req); err != nil {
		response.RespondMapped(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

// GET /orders/:order_id
func (oh *OrderHandler) Get(c *gin.Context) {
	orderID, ok := oh.orderID(c)
	if !ok {
		return
	}

	ord, err := oh.queries.GetByID(c.Request.Context(), orderID)
	if err != nil {
		response.RespondMapped(c, err)
		return
	}
	response.RespondOK(c, toOrderView(ord))
}

// GET /orders/list — the requesting principal's orders, newest first.
func (oh *OrderHandler) ListMine(c *gin.Context) {
	principal := ctxutil.GetPrincipal(c.Request.Context())
	if principal == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	orders, err := oh.queries.ListByCustomer(c.Request.Context(), principal.Username)
	if err != nil {
		response.RespondMapped(c, err)
		return
	}

	views := make([]orderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, toOrderView(o))
	}
	response.RespondOK(c, views)
}

// GET /orders/all?page=1 — elevated roles only, wired in the router.
func (oh *OrderHandler) ListAll(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	result, err := oh.queries.ListPaged(c.Request.Context(), page)
	if err != nil {
		response.RespondMapped(c, err)
		return
	}

	views := make([]orderView, 0, len(result.Orders))
	for _, o := range result.Orders {
		views = append(views, toOrderView(o))
	}
	response.RespondOK(c, gin.H{"orders": views, "has_more": result.HasMore})
}

// POST /orders/:order_id/begin
func (oh *OrderHandler) Begin(c *gin.Context) {
	oh.transition(c, func(o *order.Order) error { return o.Begin() })
}

// POST /orders/:order_id/ready
func (oh *OrderHandler) Ready(c *gin.Context) {
	oh.transition(c, func(o *order.Order) error { return o.Ready() })
}

// POST /orders/:order_id/delivery
func (oh *OrderHandler) Delivery(c *gin.Context) {
	oh.transition(c, func(o *order.Order) error { return o.Delivery() })
}

// POST /orders/:order_id/complete
func (oh *OrderHandler) Complete(c *gin.Context) {
	oh.transition(c, func(o *order.Order) error { return o.Complete() })
}

// POST /orders/:order_id/cancel
func (oh *OrderHandler) Cancel(c *gin.Context) {
	oh.transition(c, func(o *order.Order) error { return o.Cancel() })
}

func (oh *OrderHandler) transition(c *gin.Context, apply func(*order.Order) error) {
	orderID, ok := oh.orderID(c)
	if !ok {
		return
	}

	if _, err := oh.commands.Transition(c.Request.Context(), orderID, apply); err != nil {
		response.RespondMapped(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (oh *OrderHandler) orderID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_order_id", err)
		return uuid.Nil, false
	}
	return id, true
}
