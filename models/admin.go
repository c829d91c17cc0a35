package models

import (
	"time"
)

// Admin is a back-office user.
type Admin struct {
	Base        `bson:",inline"`
	Email       string     `bson:"email" json:"email"`
	Name        string     `bson:"name,omitempty" json:"name,omitempty"`
	Password    string     `bson:"password,omitempty" json:"-"` // bcrypt hash, never returned
	OTP         string     `bson:"otp,omitempty" json:"-"`      // password reset code
	OTPExpires  *time.Time `bson:"otp_expires_at,omitempty" json:"-"`
	OTPAttempts int        `bson:"otp_attempts,omitempty" json:"-"` // failed guesses against OTP
	LastLoginAt *time.Time `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`
}
