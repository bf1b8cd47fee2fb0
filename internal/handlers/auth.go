package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/example/ovenfresh/internal/config"
	"github.com/example/ovenfresh/internal/middleware"
	"github.com/example/ovenfresh/internal/services"
	"github.com/example/ovenfresh/internal/utils"
)

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	accounts *services.AccountService
	cfg      *config.Config
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(accounts *services.AccountService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{accounts: accounts, cfg: cfg}
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Expires:  time.Now().Add(h.cfg.SessionTTL),
		HTTPOnly: true,
		Secure:   h.cfg.CookieSecure(),
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FullName  string `json:"full_name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	AdminCode string `json:"admin_code"`
}

// Register creates a new user account and starts a session.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing required fields")
	}
	if len(req.Password) < 6 {
		return fiber.NewError(fiber.StatusBadRequest, "password must be at least 6 characters")
	}

	user, emailSent, err := h.accounts.Register(c.Context(), services.RegisterParams{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FullName:  req.FullName,
		Phone:     req.Phone,
		Address:   req.Address,
		AdminCode: req.AdminCode,
	})
	if err != nil {
		switch err {
		case services.ErrRegistrationFailed:
			return fiber.NewError(fiber.StatusBadRequest, "registration failed")
		case services.ErrInvalidAdminCode:
			return fiber.NewError(fiber.StatusBadRequest, "invalid admin code")
		}
		return err
	}

	token, err := utils.GenerateSessionToken(h.cfg.SessionSecret, user.ID, h.cfg.SessionTTL)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to establish session")
	}
	h.setSessionCookie(c, token)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":    true,
		"user":       user,
		"email_sent": emailSent,
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates an existing user and starts a session.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.accounts.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		if err == services.ErrInvalidCredentials {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
		}
		return err
	}

	token, err := utils.GenerateSessionToken(h.cfg.SessionSecret, user.ID, h.cfg.SessionTTL)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to establish session")
	}
	h.setSessionCookie(c, token)

	return c.JSON(fiber.Map{
		"success": true,
		"user":    user,
	})
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.cfg.CookieSecure(),
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
	return c.JSON(fiber.Map{"success": true, "message": "logged out"})
}

type verifyEmailRequest struct {
	Code string `json:"code"`
}

// VerifyEmail confirms the verification code for the authenticated user.
func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	auth, ok := middleware.CurrentAuth(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	var req verifyEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Code == "" {
		return fiber.NewError(fiber.StatusBadRequest, "code is required")
	}

	if err := h.accounts.VerifyEmail(c.Context(), auth.UserID, req.Code); err != nil {
		switch err {
		case services.ErrAlreadyVerified:
			return fiber.NewError(fiber.StatusBadRequest, "account already verified")
		case services.ErrCodeExpired:
			return fiber.NewError(fiber.StatusBadRequest, "verification code expired")
		case services.ErrCodeInvalid:
			return fiber.NewError(fiber.StatusBadRequest, "invalid verification code")
		case services.ErrNotFound:
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "verified": true})
}

// ResendVerification issues a fresh verification code.
func (h *AuthHandler) ResendVerification(c *fiber.Ctx) error {
	auth, ok := middleware.CurrentAuth(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	if err := h.accounts.ResendVerification(c.Context(), auth.UserID); err != nil {
		switch err {
		case services.ErrAlreadyVerified:
			return fiber.NewError(fiber.StatusBadRequest, "account already verified")
		case services.ErrNotFound:
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "verification code sent"})
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword starts the reset flow. The response is identical whether or
// not the email belongs to an account.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email is required")
	}

	if err := h.accounts.ForgotPassword(c.Context(), req.Email); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "if that email belongs to an account, a reset token has been sent",
	})
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// ResetPassword consumes a reset token and sets a new password.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Token == "" || req.NewPassword == "" {
		return fiber.NewError(fiber.StatusBadRequest, "token and new_password are required")
	}
	if len(req.NewPassword) < 6 {
		return fiber.NewError(fiber.StatusBadRequest, "password must be at least 6 characters")
	}

	if err := h.accounts.ResetPassword(c.Context(), req.Token, req.NewPassword); err != nil {
		switch err {
		case services.ErrTokenInvalid:
			return fiber.NewError(fiber.StatusNotFound, "invalid reset token")
		case services.ErrTokenExpired:
			return fiber.NewError(fiber.StatusBadRequest, "reset token expired")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "password updated"})
}

type oauthCallbackRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// OAuthCallback completes an external identity-provider login. The fronting
// OAuth integration (out of scope here) is responsible for having verified
// the email before this handler runs.
func (h *AuthHandler) OAuthCallback(c *fiber.Ctx) error {
	var req oauthCallbackRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email is required")
	}

	user, err := h.accounts.OAuthLogin(c.Context(), req.Email, req.FullName)
	if err != nil {
		return err
	}

	token, err := utils.GenerateSessionToken(h.cfg.SessionSecret, user.ID, h.cfg.SessionTTL)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to establish session")
	}
	h.setSessionCookie(c, token)

	return c.JSON(fiber.Map{"success": true, "user": user})
}
