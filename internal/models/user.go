package models

import (
	"time"
)

// User represents a customer or administrator account.
//
// The verification pair (code + expiry) and the reset pair (token hash +
// expiry) are always set and cleared together. The password hash and the
// reset token hash are never serialized.
type User struct {
	BaseModel
	Username             string     `gorm:"uniqueIndex" json:"username"`
	Email                string     `gorm:"uniqueIndex" json:"email"`
	PasswordHash         string     `json:"-"`
	FullName             string     `json:"full_name"`
	Phone                string     `json:"phone"`
	Address              string     `json:"address,omitempty"`
	IsAdmin              bool       `gorm:"not null;default:false" json:"is_admin"`
	IsVerified           bool       `gorm:"not null;default:false" json:"is_verified"`
	VerificationCode     *string    `json:"-"`
	VerificationExpiry   *time.Time `json:"-"`
	ResetTokenHash       *string    `gorm:"uniqueIndex" json:"-"`
	ResetTokenExpiry     *time.Time `json:"-"`
	NotificationsEnabled bool       `gorm:"not null;default:true" json:"notifications_enabled"`
	Orders               []Order    `json:"orders,omitempty"`
}

// ClearVerification resets the verification pair after a successful check.
func (u *User) ClearVerification() {
	u.VerificationCode = nil
	u.VerificationExpiry = nil
}

// SetVerification stores a fresh code expiring at the given time.
func (u *User) SetVerification(code string, expiry time.Time) {
	u.VerificationCode = &code
	u.VerificationExpiry = &expiry
}

// ClearResetToken resets the reset-token pair after consumption or rotation.
func (u *User) ClearResetToken() {
	u.ResetTokenHash = nil
	u.ResetTokenExpiry = nil
}

// SetResetToken stores the hash of an issued reset token.
func (u *User) SetResetToken(hash string, expiry time.Time) {
	u.ResetTokenHash = &hash
	u.ResetTokenExpiry = &expiry
}
