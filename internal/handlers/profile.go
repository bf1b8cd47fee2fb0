package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/ovenfresh/internal/middleware"
	"github.com/example/ovenfresh/internal/services"
	"github.com/example/ovenfresh/internal/store"
)

// ProfileHandler manages the authenticated user's account endpoints.
type ProfileHandler struct {
	accounts *services.AccountService
	store    *store.Store
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(accounts *services.AccountService, st *store.Store) *ProfileHandler {
	return &ProfileHandler{accounts: accounts, store: st}
}

// GetProfile returns the authenticated user.
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	auth, ok := middleware.CurrentAuth(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	user, err := h.store.Users().GetByID(c.Context(), auth.UserID)
	if err != nil {
		if err == store.ErrNotFound {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "user": user})
}

type updateProfileRequest struct {
	FullName             *string `json:"full_name"`
	Phone                *string `json:"phone"`
	Address              *string `json:"address"`
	NotificationsEnabled *bool   `json:"notifications_enabled"`
}

// UpdateProfile updates profile fields of the authenticated user.
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	auth, ok := middleware.CurrentAuth(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.FullName == nil && req.Phone == nil && req.Address == nil && req.NotificationsEnabled == nil {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}

	user, err := h.accounts.UpdateProfile(c.Context(), auth.UserID, services.UpdateProfileParams{
		FullName:             req.FullName,
		Phone:                req.Phone,
		Address:              req.Address,
		NotificationsEnabled: req.NotificationsEnabled,
	})
	if err != nil {
		if err == services.ErrNotFound {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "user": user})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword rotates the authenticated user's password.
func (h *ProfileHandler) ChangePassword(c *fiber.Ctx) error {
	auth, ok := middleware.CurrentAuth(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return fiber.NewError(fiber.StatusBadRequest, "current_password and new_password are required")
	}
	if len(req.NewPassword) < 6 {
		return fiber.NewError(fiber.StatusBadRequest, "password must be at least 6 characters")
	}

	if err := h.accounts.ChangePassword(c.Context(), auth.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		switch err {
		case services.ErrInvalidCredentials:
			return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
		case services.ErrSamePassword:
			return fiber.NewError(fiber.StatusBadRequest, "new password must differ from the current one")
		case services.ErrNotFound:
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "password changed"})
}

type deleteAccountRequest struct {
	Password string `json:"password"`
}

// DeleteAccount removes the authenticated user's account.
func (h *ProfileHandler) DeleteAccount(c *fiber.Ctx) error {
	auth, ok := middleware.CurrentAuth(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	var req deleteAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.accounts.DeleteAccount(c.Context(), auth.UserID, req.Password); err != nil {
		switch err {
		case services.ErrInvalidCredentials:
			return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
		case services.ErrNotFound:
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "account deleted"})
}
