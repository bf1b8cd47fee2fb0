package services

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/ovenfresh/internal/models"
	"github.com/example/ovenfresh/internal/utils"
)

var resetTokenPattern = regexp.MustCompile(`[0-9a-f]{64}`)

// extractToken pulls the raw reset token out of a reset email body.
func extractToken(t *testing.T, body string) string {
	t.Helper()
	token := resetTokenPattern.FindString(body)
	require.NotEmpty(t, token)
	return token
}

func newAccountFixture(t *testing.T) (*AccountService, *fakeUserStore, *stubMailer) {
	t.Helper()
	users := newFakeUserStore()
	mailer := &stubMailer{result: true}
	svc := NewAccountService(users, mailer, "top-secret-admin-code")
	return svc, users, mailer
}

func registerUser(t *testing.T, svc *AccountService, username, email string) *models.User {
	t.Helper()
	user, _, err := svc.Register(context.Background(), RegisterParams{
		Username: username,
		Email:    email,
		Password: "hunter22",
		FullName: "Test User",
	})
	require.NoError(t, err)
	return user
}

func TestRegisterCreatesUnverifiedUser(t *testing.T) {
	svc, users, mailer := newAccountFixture(t)

	user, sent, err := svc.Register(context.Background(), RegisterParams{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "hunter22",
		FullName: "Alice Smith",
	})
	require.NoError(t, err)

	assert.True(t, sent)
	assert.False(t, user.IsAdmin)
	assert.False(t, user.IsVerified)
	assert.NotEqual(t, "hunter22", user.PasswordHash)
	assert.True(t, utils.CheckPassword(user.PasswordHash, "hunter22"))

	stored := users.stored(user.ID)
	require.NotNil(t, stored.VerificationCode)
	require.NotNil(t, stored.VerificationExpiry)
	assert.Len(t, *stored.VerificationCode, 6)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "alice@example.com", mailer.sent[0].to)
	assert.Contains(t, mailer.sent[0].text, *stored.VerificationCode)
}

func TestRegisterDuplicateEmailGenericError(t *testing.T) {
	svc, _, _ := newAccountFixture(t)
	registerUser(t, svc, "alice", "alice@example.com")

	// Same email, different username.
	_, _, err := svc.Register(context.Background(), RegisterParams{
		Username: "alice2",
		Email:    "alice@example.com",
		Password: "hunter22",
	})
	assert.ErrorIs(t, err, ErrRegistrationFailed)

	// Same username AND same email collide with the same generic error.
	_, _, err = svc.Register(context.Background(), RegisterParams{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "hunter22",
	})
	assert.ErrorIs(t, err, ErrRegistrationFailed)
}

func TestRegisterDuplicateUsernameGenericError(t *testing.T) {
	svc, _, _ := newAccountFixture(t)
	registerUser(t, svc, "alice", "alice@example.com")

	_, _, err := svc.Register(context.Background(), RegisterParams{
		Username: "alice",
		Email:    "other@example.com",
		Password: "hunter22",
	})
	assert.ErrorIs(t, err, ErrRegistrationFailed)
}

func TestRegisterAdminCode(t *testing.T) {
	svc, _, _ := newAccountFixture(t)

	_, _, err := svc.Register(context.Background(), RegisterParams{
		Username:  "mallory",
		Email:     "mallory@example.com",
		Password:  "hunter22",
		AdminCode: "wrong-code",
	})
	assert.ErrorIs(t, err, ErrInvalidAdminCode)

	user, _, err := svc.Register(context.Background(), RegisterParams{
		Username:  "boss",
		Email:     "boss@example.com",
		Password:  "hunter22",
		AdminCode: "top-secret-admin-code",
	})
	require.NoError(t, err)
	assert.True(t, user.IsAdmin)
}

func TestRegisterEmailFailureIsFailOpen(t *testing.T) {
	users := newFakeUserStore()
	mailer := &stubMailer{result: false}
	svc := NewAccountService(users, mailer, "")

	user, sent, err := svc.Register(context.Background(), RegisterParams{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)

	assert.False(t, sent)
	assert.NotNil(t, users.stored(user.ID))
	require.Len(t, mailer.sent, 1)
}

func TestLoginGenericInvalidCredentials(t *testing.T) {
	svc, _, _ := newAccountFixture(t)
	registerUser(t, svc, "alice", "alice@example.com")

	_, errUnknown := svc.Login(context.Background(), "nobody", "hunter22")
	_, errWrongPw := svc.Login(context.Background(), "alice", "wrong-password")

	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPw, ErrInvalidCredentials)
	assert.Equal(t, errUnknown, errWrongPw)
}

func TestLoginUnverifiedReissuesVerification(t *testing.T) {
	svc, users, mailer := newAccountFixture(t)
	user := registerUser(t, svc, "alice", "alice@example.com")

	registrationCode := *users.stored(user.ID).VerificationCode

	_, err := svc.Login(context.Background(), "alice", "hunter22")
	require.NoError(t, err)

	reissued := users.stored(user.ID).VerificationCode
	require.NotNil(t, reissued)
	assert.NotEqual(t, registrationCode, *reissued)

	// Registration email plus the re-issued one.
	require.Len(t, mailer.sent, 2)
	assert.Contains(t, mailer.sent[1].text, *reissued)
}

func TestLoginVerifiedSendsNothing(t *testing.T) {
	svc, users, mailer := newAccountFixture(t)
	user := registerUser(t, svc, "alice", "alice@example.com")

	code := *users.stored(user.ID).VerificationCode
	require.NoError(t, svc.VerifyEmail(context.Background(), user.ID, code))

	mailer.sent = nil
	_, err := svc.Login(context.Background(), "alice", "hunter22")
	require.NoError(t, err)
	assert.Empty(t, mailer.sent)
}

func TestVerifyEmailSuccessClearsPair(t *testing.T) {
	svc, users, _ := newAccountFixture(t)
	user := registerUser(t, svc, "alice", "alice@example.com")

	code := *users.stored(user.ID).VerificationCode
	require.NoError(t, svc.VerifyEmail(context.Background(), user.ID, code))

	stored := users.stored(user.ID)
	assert.True(t, stored.IsVerified)
	assert.Nil(t, stored.VerificationCode)
	assert.Nil(t, stored.VerificationExpiry)

	// A second attempt reports the already-verified state.
	err := svc.VerifyEmail(context.Background(), user.ID, code)
	assert.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestVerifyEmailWrongCode(t *testing.T) {
	svc, _, _ := newAccountFixture(t)
	user := registerUser(t, svc, "alice", "alice@example.com")

	err := svc.VerifyEmail(context.Background(), user.ID, "000000")
	assert.ErrorIs(t, err, ErrCodeInvalid)
}

func TestVerifyEmailExpiredBeatsMatching(t *testing.T) {
	svc, users, _ := newAccountFixture(t)
	user := registerUser(t, svc, "alice", "alice@example.com")

	code := *users.stored(user.ID).VerificationCode

	// Advance the clock past the 30-minute window; the correct code must
	// still be rejected as expired, not as invalid.
	svc.now = func() time.Time { return time.Now().Add(31 * time.Minute) }

	err := svc.VerifyEmail(context.Background(), user.ID, code)
	assert.ErrorIs(t, err, ErrCodeExpired)
}

func TestForgotPasswordUnknownEmailIsUniform(t *testing.T) {
	svc, _, mailer := newAccountFixture(t)

	err := svc.ForgotPassword(context.Background(), "ghost@example.com")
	assert.NoError(t, err)
	assert.Empty(t, mailer.sent)
}

func TestResetPasswordFlow(t *testing.T) {
	svc, users, mailer := newAccountFixture(t)
	user := registerUser(t, svc, "alice", "alice@example.com")

	require.NoError(t, svc.ForgotPassword(context.Background(), "alice@example.com"))
	stored := users.stored(user.ID)
	require.NotNil(t, stored.ResetTokenHash)
	require.NotNil(t, stored.ResetTokenExpiry)

	// Recover the raw token from the email body to drive the reset.
	require.Len(t, mailer.sent, 2)
	raw := extractToken(t, mailer.sent[1].text)
	require.Equal(t, *stored.ResetTokenHash, utils.HashResetToken(raw))

	require.NoError(t, svc.ResetPassword(context.Background(), raw, "new-password"))

	stored = users.stored(user.ID)
	assert.Nil(t, stored.ResetTokenHash)
	assert.Nil(t, stored.ResetTokenExpiry)
	assert.True(t, utils.CheckPassword(stored.PasswordHash, "new-password"))
	assert.False(t, utils.CheckPassword(stored.PasswordHash, "hunter22"))

	// Single use: the same raw token no longer resolves.
	err := svc.ResetPassword(context.Background(), raw, "another-password")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	svc, _, mailer := newAccountFixture(t)
	registerUser(t, svc, "alice", "alice@example.com")

	require.NoError(t, svc.ForgotPassword(context.Background(), "alice@example.com"))
	raw := extractToken(t, mailer.sent[1].text)

	svc.now = func() time.Time { return time.Now().Add(61 * time.Minute) }

	err := svc.ResetPassword(context.Background(), raw, "new-password")
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestForgotPasswordSupersedesPreviousToken(t *testing.T) {
	svc, _, mailer := newAccountFixture(t)
	registerUser(t, svc, "alice", "alice@example.com")

	require.NoError(t, svc.ForgotPassword(context.Background(), "alice@example.com"))
	firstRaw := extractToken(t, mailer.sent[1].text)

	require.NoError(t, svc.ForgotPassword(context.Background(), "alice@example.com"))

	err := svc.ResetPassword(context.Background(), firstRaw, "new-password")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestChangePassword(t *testing.T) {
	svc, users, _ := newAccountFixture(t)
	user := registerUser(t, svc, "alice", "alice@example.com")

	err := svc.ChangePassword(context.Background(), user.ID, "wrong-current", "new-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = svc.ChangePassword(context.Background(), user.ID, "hunter22", "hunter22")
	assert.ErrorIs(t, err, ErrSamePassword)

	require.NoError(t, svc.ChangePassword(context.Background(), user.ID, "hunter22", "new-password"))
	assert.True(t, utils.CheckPassword(users.stored(user.ID).PasswordHash, "new-password"))
}

func TestOAuthLoginCreatesPasswordlessAccount(t *testing.T) {
	svc, users, _ := newAccountFixture(t)

	user, err := svc.OAuthLogin(context.Background(), "oauth@example.com", "OAuth User")
	require.NoError(t, err)

	stored := users.stored(user.ID)
	assert.False(t, stored.IsVerified)
	assert.Empty(t, stored.PasswordHash)

	// Local login is unavailable: the empty placeholder never verifies.
	_, err = svc.Login(context.Background(), "oauth@example.com", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// A second callback resolves to the same account.
	again, err := svc.OAuthLogin(context.Background(), "oauth@example.com", "OAuth User")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
}

func TestDeleteAccountRequiresPassword(t *testing.T) {
	svc, users, _ := newAccountFixture(t)
	user := registerUser(t, svc, "alice", "alice@example.com")

	err := svc.DeleteAccount(context.Background(), user.ID, "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.NotNil(t, users.stored(user.ID))

	require.NoError(t, svc.DeleteAccount(context.Background(), user.ID, "hunter22"))
	assert.Nil(t, users.stored(user.ID))
}
