package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/ovenfresh/internal/middleware"
	"github.com/example/ovenfresh/internal/services"
	"github.com/example/ovenfresh/internal/utils"
)

// OrderHandler manages customer order endpoints.
type OrderHandler struct {
	orders *services.OrderService
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(orders *services.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type orderItemRequest struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Price       int64  `json:"price"`
	Quantity    int    `json:"quantity"`
}

func (r orderItemRequest) toParams() services.OrderItemParams {
	item := services.OrderItemParams{
		ProductName: r.ProductName,
		Price:       r.Price,
		Quantity:    r.Quantity,
	}
	if r.ProductID != "" {
		if id, err := uuid.Parse(r.ProductID); err == nil {
			item.ProductID = &id
		}
	}
	return item
}

type createOrderRequest struct {
	CustomerName string             `json:"customer_name"`
	Email        string             `json:"email"`
	Phone        string             `json:"phone"`
	Address      string             `json:"address"`
	Items        []orderItemRequest `json:"items"`
	Total        int64              `json:"total"`
	Notes        string             `json:"notes"`
}

// CreateOrder places a new order for the authenticated user.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	auth, ok := middleware.CurrentAuth(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if len(req.Items) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "order needs at least one item")
	}
	if req.CustomerName == "" || req.Address == "" {
		return fiber.NewError(fiber.StatusBadRequest, "customer_name and address are required")
	}

	items := make([]services.OrderItemParams, 0, len(req.Items))
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "item quantity must be positive")
		}
		items = append(items, it.toParams())
	}

	userID := auth.UserID
	order, err := h.orders.Create(c.Context(), services.CreateOrderParams{
		UserID:       &userID,
		CustomerName: req.CustomerName,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		Items:        items,
		Total:        req.Total,
		Notes:        req.Notes,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": order})
}

// ListOrders returns orders for the authenticated user.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	auth, ok := middleware.CurrentAuth(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	pg := utils.ParsePagination(c)
	orders, total, err := h.orders.ListForUser(c.Context(), auth.UserID, c.Query("status"), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetOrder returns a single order for the authenticated user.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	auth, ok := middleware.CurrentAuth(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	order, err := h.orders.Get(c.Context(), id, auth.UserID, auth.IsAdmin)
	if err != nil {
		if err == services.ErrNotFound {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

type ownerUpdateRequest struct {
	Address *string            `json:"address"`
	Phone   *string            `json:"phone"`
	Items   []orderItemRequest `json:"items"`
}

// UpdateOrder lets the order's owner adjust delivery details while the order
// is still open.
func (h *OrderHandler) UpdateOrder(c *fiber.Ctx) error {
	auth, ok := middleware.CurrentAuth(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req ownerUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	params := services.OwnerUpdateParams{Address: req.Address, Phone: req.Phone}
	if req.Items != nil {
		params.Items = make([]services.OrderItemParams, 0, len(req.Items))
		for _, it := range req.Items {
			if it.Quantity <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "item quantity must be positive")
			}
			params.Items = append(params.Items, it.toParams())
		}
	}

	order, err := h.orders.OwnerUpdate(c.Context(), id, auth.UserID, params)
	if err != nil {
		switch err {
		case services.ErrNotFound:
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		case services.ErrNotOwner:
			return fiber.NewError(fiber.StatusForbidden, "not your order")
		case services.ErrOrderTerminal:
			return fiber.NewError(fiber.StatusConflict, "order can no longer be modified")
		case services.ErrUpdateConflict:
			return fiber.NewError(fiber.StatusConflict, "order was updated concurrently, retry")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

// parseDeliveryTime accepts RFC3339 estimated-delivery values.
func parseDeliveryTime(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
