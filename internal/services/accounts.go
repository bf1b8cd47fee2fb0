package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/example/ovenfresh/internal/models"
	"github.com/example/ovenfresh/internal/store"
	"github.com/example/ovenfresh/internal/utils"
)

// UserStore is the slice of the data access layer the account service needs.
// *store.UserStore satisfies it; tests substitute an in-memory fake.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByResetTokenHash(ctx context.Context, hash string) (*models.User, error)
	Save(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AccountService implements registration, authentication and the credential
// lifecycle (verification codes, reset tokens, password changes).
type AccountService struct {
	users     UserStore
	mailer    Mailer
	adminCode string
	now       func() time.Time // injectable clock for testing
}

// NewAccountService constructs an AccountService.
func NewAccountService(users UserStore, mailer Mailer, adminCode string) *AccountService {
	return &AccountService{users: users, mailer: mailer, adminCode: adminCode, now: time.Now}
}

// RegisterParams carries the registration input.
type RegisterParams struct {
	Username  string
	Email     string
	Password  string
	FullName  string
	Phone     string
	Address   string
	AdminCode string
}

// Register creates a new unverified account and attempts to send the
// verification email. The returned bool reports whether the email went out;
// account creation succeeds either way.
//
// Username and email collisions both come back as ErrRegistrationFailed so
// the caller-visible message stays generic; the specific collision is logged
// for operators.
func (s *AccountService) Register(ctx context.Context, p RegisterParams) (*models.User, bool, error) {
	isAdmin := false
	if p.AdminCode != "" {
		if s.adminCode == "" || p.AdminCode != s.adminCode {
			return nil, false, ErrInvalidAdminCode
		}
		isAdmin = true
	}

	if _, err := s.users.GetByUsername(ctx, p.Username); err == nil {
		log.Printf("[Account] registration rejected: username %q taken", p.Username)
		return nil, false, ErrRegistrationFailed
	} else if err != store.ErrNotFound {
		return nil, false, err
	}
	if _, err := s.users.GetByEmail(ctx, p.Email); err == nil {
		log.Printf("[Account] registration rejected: email %q taken", p.Email)
		return nil, false, ErrRegistrationFailed
	} else if err != store.ErrNotFound {
		return nil, false, err
	}

	hash, err := utils.HashPassword(p.Password)
	if err != nil {
		return nil, false, err
	}

	code, err := utils.GenerateVerificationCode()
	if err != nil {
		return nil, false, err
	}

	user := &models.User{
		Username:             p.Username,
		Email:                p.Email,
		PasswordHash:         hash,
		FullName:             p.FullName,
		Phone:                p.Phone,
		Address:              p.Address,
		IsAdmin:              isAdmin,
		IsVerified:           false,
		NotificationsEnabled: true,
	}
	user.SetVerification(code, s.now().Add(utils.VerificationCodeTTL))

	if err := s.users.Create(ctx, user); err != nil {
		return nil, false, err
	}

	subject, html, text := verificationEmail(code)
	sent := s.mailer.Send(ctx, user.Email, subject, html, text)
	if !sent {
		log.Printf("[Account] verification email to %s not sent", user.Email)
	}
	return user, sent, nil
}

// Login checks the credentials and returns the user. Missing accounts and
// wrong passwords are indistinguishable to the caller.
//
// An unverified account gets a fresh verification code re-issued and
// re-mailed as a side effect; neither step blocks the login.
func (s *AccountService) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !utils.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	if !user.IsVerified {
		if err := s.reissueVerification(ctx, user); err != nil {
			log.Printf("[Account] re-issuing verification for %s failed: %v", user.Username, err)
		}
	}

	return user, nil
}

func (s *AccountService) reissueVerification(ctx context.Context, user *models.User) error {
	code, err := utils.GenerateVerificationCode()
	if err != nil {
		return err
	}
	user.SetVerification(code, s.now().Add(utils.VerificationCodeTTL))
	if err := s.users.Save(ctx, user); err != nil {
		return err
	}

	subject, html, text := verificationEmail(code)
	if !s.mailer.Send(ctx, user.Email, subject, html, text) {
		log.Printf("[Account] verification email to %s not sent", user.Email)
	}
	return nil
}

// VerifyEmail confirms control of the account's email address. Expired codes
// are rejected before the value is compared, so an expired-but-correct code
// still reports expiry.
func (s *AccountService) VerifyEmail(ctx context.Context, userID uuid.UUID, code string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if err == store.ErrNotFound {
			return ErrNotFound
		}
		return err
	}

	if user.IsVerified {
		return ErrAlreadyVerified
	}
	if user.VerificationCode == nil || user.VerificationExpiry == nil {
		return ErrCodeInvalid
	}
	if user.VerificationExpiry.Before(s.now()) {
		return ErrCodeExpired
	}
	if *user.VerificationCode != code {
		return ErrCodeInvalid
	}

	user.IsVerified = true
	user.ClearVerification()
	return s.users.Save(ctx, user)
}

// ResendVerification issues a fresh code for an unverified account.
func (s *AccountService) ResendVerification(ctx context.Context, userID uuid.UUID) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if err == store.ErrNotFound {
			return ErrNotFound
		}
		return err
	}
	if user.IsVerified {
		return ErrAlreadyVerified
	}
	return s.reissueVerification(ctx, user)
}

// ForgotPassword issues a reset token and mails its raw value. The response
// is uniform whether or not the email belongs to an account, so the endpoint
// cannot be used to probe for accounts; misses are only logged.
func (s *AccountService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == store.ErrNotFound {
			log.Printf("[Account] password reset requested for unknown email %q", email)
			return nil
		}
		return err
	}

	raw, hash, err := utils.GenerateResetToken()
	if err != nil {
		return err
	}

	// Supersedes any previously issued token.
	user.SetResetToken(hash, s.now().Add(utils.ResetTokenTTL))
	if err := s.users.Save(ctx, user); err != nil {
		return err
	}

	subject, html, text := resetEmail(raw)
	if !s.mailer.Send(ctx, user.Email, subject, html, text) {
		log.Printf("[Account] reset email to %s not sent", user.Email)
	}
	return nil
}

// ResetPassword consumes a raw reset token and sets a new password. The
// token fields are cleared in the same write as the password update, so a
// consumed token cannot be replayed.
func (s *AccountService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	user, err := s.users.GetByResetTokenHash(ctx, utils.HashResetToken(rawToken))
	if err != nil {
		if err == store.ErrNotFound {
			return ErrTokenInvalid
		}
		return err
	}

	if user.ResetTokenExpiry == nil || user.ResetTokenExpiry.Before(s.now()) {
		return ErrTokenExpired
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hash
	user.ClearResetToken()
	if err := s.users.Save(ctx, user); err != nil {
		return err
	}

	subject, html, text := passwordChangedEmail()
	if !s.mailer.Send(ctx, user.Email, subject, html, text) {
		log.Printf("[Account] password-changed email to %s not sent", user.Email)
	}
	return nil
}

// ChangePassword rotates the password of an authenticated user. The current
// password must verify, and the new password must actually differ (compared
// through the hash, not as plaintext).
func (s *AccountService) ChangePassword(ctx context.Context, userID uuid.UUID, current, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if err == store.ErrNotFound {
			return ErrNotFound
		}
		return err
	}

	if !utils.CheckPassword(user.PasswordHash, current) {
		return ErrInvalidCredentials
	}
	if utils.CheckPassword(user.PasswordHash, newPassword) {
		return ErrSamePassword
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hash
	if err := s.users.Save(ctx, user); err != nil {
		return err
	}

	subject, html, text := passwordChangedEmail()
	if !s.mailer.Send(ctx, user.Email, subject, html, text) {
		log.Printf("[Account] password-changed email to %s not sent", user.Email)
	}
	return nil
}

// OAuthLogin finds or creates the account behind an externally verified
// email. Created accounts carry an empty password placeholder that never
// verifies; a local password can later be obtained through the reset flow.
func (s *AccountService) OAuthLogin(ctx context.Context, email, fullName string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if err != store.ErrNotFound {
		return nil, err
	}

	user = &models.User{
		Username:             email,
		Email:                email,
		PasswordHash:         "",
		FullName:             fullName,
		IsVerified:           false,
		NotificationsEnabled: true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfileParams carries optional profile mutations.
type UpdateProfileParams struct {
	FullName             *string
	Phone                *string
	Address              *string
	NotificationsEnabled *bool
}

// UpdateProfile applies the supplied profile fields.
func (s *AccountService) UpdateProfile(ctx context.Context, userID uuid.UUID, p UpdateProfileParams) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if p.FullName != nil {
		user.FullName = *p.FullName
	}
	if p.Phone != nil {
		user.Phone = *p.Phone
	}
	if p.Address != nil {
		user.Address = *p.Address
	}
	if p.NotificationsEnabled != nil {
		user.NotificationsEnabled = *p.NotificationsEnabled
	}

	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteAccount removes the account after re-verifying the password.
func (s *AccountService) DeleteAccount(ctx context.Context, userID uuid.UUID, password string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if err == store.ErrNotFound {
			return ErrNotFound
		}
		return err
	}

	if !utils.CheckPassword(user.PasswordHash, password) {
		return ErrInvalidCredentials
	}
	return s.users.Delete(ctx, user.ID)
}
