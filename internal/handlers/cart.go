package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/ovenfresh/internal/middleware"
	"github.com/example/ovenfresh/internal/models"
)

// CartHandler manages the authenticated user's shopping cart.
type CartHandler struct {
	db *gorm.DB
}

// NewCartHandler constructs CartHandler.
func NewCartHandler(db *gorm.DB) *CartHandler {
	return &CartHandler{db: db}
}

// GetCart returns the cart contents and a running total.
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	auth, ok := middleware.CurrentAuth(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	var items []models.CartItem
	if err := h.db.Preload("Product").
		Where("user_id = ?", auth.UserID).
		Order("created_at asc").
		Find(&items).Error; err != nil {
		return err
	}

	var total int64
	for _, item := range items {
		if item.Product != nil {
			total += item.Product.Price * int64(item.Quantity)
		}
	}

	return c.JSON(fiber.Map{"success": true, "data": items, "total": total})
}

type addCartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// AddItem puts a product in the cart, bumping quantity if already present.
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	auth, ok := middleware.CurrentAuth(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	var req addCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product_id")
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", productID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}
	if !product.Available {
		return fiber.NewError(fiber.StatusBadRequest, "product is not available")
	}

	var item models.CartItem
	err = h.db.Where("user_id = ? AND product_id = ?", auth.UserID, productID).First(&item).Error
	switch {
	case err == nil:
		item.Quantity += req.Quantity
		if err := h.db.Save(&item).Error; err != nil {
			return err
		}
	case err == gorm.ErrRecordNotFound:
		item = models.CartItem{
			UserID:    auth.UserID,
			ProductID: productID,
			Quantity:  req.Quantity,
		}
		if err := h.db.Create(&item).Error; err != nil {
			return err
		}
	default:
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": item})
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateItem sets the quantity of a cart line; zero removes it.
func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	auth, ok := middleware.CurrentAuth(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req updateCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Quantity < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "quantity must not be negative")
	}

	if req.Quantity == 0 {
		if err := h.db.Where("id = ? AND user_id = ?", itemID, auth.UserID).
			Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "message": "item removed"})
	}

	res := h.db.Model(&models.CartItem{}).
		Where("id = ? AND user_id = ?", itemID, auth.UserID).
		Update("quantity", req.Quantity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "cart item not found")
	}

	return c.JSON(fiber.Map{"success": true, "message": "quantity updated"})
}

// RemoveItem deletes one cart line.
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	auth, ok := middleware.CurrentAuth(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Where("id = ? AND user_id = ?", itemID, auth.UserID).
		Delete(&models.CartItem{}).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "item removed"})
}

// ClearCart empties the cart.
func (h *CartHandler) ClearCart(c *fiber.Ctx) error {
	auth, ok := middleware.CurrentAuth(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	if err := h.db.Where("user_id = ?", auth.UserID).
		Delete(&models.CartItem{}).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "cart cleared"})
}
