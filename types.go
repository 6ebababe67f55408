package goAccount

import (
	"github.com/MrEthical07/goAccount/user"
)

// TokenResult is a freshly issued credential pair. Expiry values are seconds.
type TokenResult struct {
	AccessToken        string
	AccessTokenExpires int64
	RenewalToken       string
	RenewalTTL         int64
}

// Principal is the identity carried by a verified access token.
type Principal struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role"`
}

// RegisterRequest creates an account. Password is required for EMAIL
// accounts; SOCIAL accounts carry SocialID instead.
type RegisterRequest struct {
	Email         string `json:"email" validate:"required,email,max=254"`
	Password      string `json:"password" validate:"required_if=Type EMAIL,max=1024"`
	FirstName     string `json:"firstName" validate:"max=64"`
	LastName      string `json:"lastName" validate:"max=64"`
	Type          string `json:"type" validate:"required,accounttype"`
	SocialID      string `json:"socialId" validate:"required_if=Type SOCIAL,max=128"`
	Address       string `json:"address" validate:"max=255"`
	AddressPostNo string `json:"addressPostNo" validate:"max=16"`
	Temp          bool   `json:"temp"`
}

// UpdatePasswordRequest changes a password. CurrentPassword is checked when
// the account already has one; social accounts may set a first password.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword" validate:"required,max=1024"`
}

// UpdateAddressRequest is the input of Engine.UpdateAddress.
type UpdateAddressRequest struct {
	Address       string `json:"address" validate:"required,max=255"`
	AddressPostNo string `json:"addressPostNo" validate:"required,max=16"`
}

// UpdateNameRequest is the input of Engine.UpdateName.
type UpdateNameRequest struct {
	FirstName string `json:"firstName" validate:"required,max=64"`
	LastName  string `json:"lastName" validate:"max=64"`
}

// UserPage is one page of ListUsers. Page is 1-based.
type UserPage struct {
	Items      []user.User `json:"items"`
	TotalCount int64       `json:"totalCount"`
	TotalPages int64       `json:"totalPages"`
	Page       int         `json:"page"`
	Size       int         `json:"size"`
}

// HealthStatus is returned by Engine.Health.
type HealthStatus struct {
	RedisAvailable bool
	RedisLatency   int64 // microseconds
}
