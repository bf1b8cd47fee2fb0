package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/ovenfresh/internal/middleware"
	"github.com/example/ovenfresh/internal/models"
)

// MarketingHandler manages newsletter and recurring-delivery subscriptions.
type MarketingHandler struct {
	db *gorm.DB
}

// NewMarketingHandler constructs MarketingHandler.
func NewMarketingHandler(db *gorm.DB) *MarketingHandler {
	return &MarketingHandler{db: db}
}

type newsletterRequest struct {
	Email string `json:"email"`
}

// SubscribeNewsletter adds an email to the mailing list. Re-subscribing an
// existing address is a no-op success.
func (h *MarketingHandler) SubscribeNewsletter(c *fiber.Ctx) error {
	var req newsletterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email is required")
	}

	var existing models.NewsletterSubscription
	err := h.db.Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		return c.JSON(fiber.Map{"success": true, "message": "already subscribed"})
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	sub := models.NewsletterSubscription{
		Email:        req.Email,
		SubscribedAt: time.Now(),
	}
	if err := h.db.Create(&sub).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "subscribed"})
}

// UnsubscribeNewsletter removes an email from the mailing list.
func (h *MarketingHandler) UnsubscribeNewsletter(c *fiber.Ctx) error {
	var req newsletterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email is required")
	}

	if err := h.db.Where("email = ?", req.Email).
		Delete(&models.NewsletterSubscription{}).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "unsubscribed"})
}

// ListSubscriptions returns the user's recurring-delivery subscriptions.
func (h *MarketingHandler) ListSubscriptions(c *fiber.Ctx) error {
	auth, ok := middleware.CurrentAuth(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	var subs []models.Subscription
	if err := h.db.Preload("Product").
		Where("user_id = ?", auth.UserID).
		Find(&subs).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": subs})
}

type subscriptionRequest struct {
	ProductID    string `json:"product_id"`
	Quantity     int    `json:"quantity"`
	IntervalDays int    `json:"interval_days"`
}

// CreateSubscription starts a recurring delivery for a product.
func (h *MarketingHandler) CreateSubscription(c *fiber.Ctx) error {
	auth, ok := middleware.CurrentAuth(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	var req subscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product_id")
	}
	if req.IntervalDays <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "interval_days must be positive")
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

	sub := models.Subscription{
		UserID:       auth.UserID,
		ProductID:    productID,
		Quantity:     req.Quantity,
		IntervalDays: req.IntervalDays,
		Active:       true,
	}
	if err := h.db.Create(&sub).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": sub})
}

type updateSubscriptionRequest struct {
	Quantity     *int  `json:"quantity"`
	IntervalDays *int  `json:"interval_days"`
	Active       *bool `json:"active"`
}

// UpdateSubscription adjusts or pauses a subscription.
func (h *MarketingHandler) UpdateSubscription(c *fiber.Ctx) error {
	auth, ok := middleware.CurrentAuth(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	subID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req updateSubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]interface{}{}
	if req.Quantity != nil {
		if *req.Quantity <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "quantity must be positive")
		}
		updates["quantity"] = *req.Quantity
	}
	if req.IntervalDays != nil {
		if *req.IntervalDays <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "interval_days must be positive")
		}
		updates["interval_days"] = *req.IntervalDays
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}

	res := h.db.Model(&models.Subscription{}).
		Where("id = ? AND user_id = ?", subID, auth.UserID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "subscription not found")
	}

	return c.JSON(fiber.Map{"success": true, "message": "subscription updated"})
}

// DeleteSubscription cancels a subscription.
func (h *MarketingHandler) DeleteSubscription(c *fiber.Ctx) error {
	auth, ok := middleware.CurrentAuth(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	subID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Where("id = ? AND user_id = ?", subID, auth.UserID).
		Delete(&models.Subscription{}).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "subscription cancelled"})
}
