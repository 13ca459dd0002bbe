package user

import (
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name" binding:"required"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email,
			validation.Required.Error("email is required"),
			is.Email.Error("invalid email format"),
			validation.Length(5, 255),
		),
		validation.Field(&r.Password,
			validation.Required.Error("password is required"),
			validation.Length(8, 128).Error("password must be 8-128 characters"),
			validation.Match(regexp.MustCompile(`[A-Za-z]`)).Error("password must contain a letter"),
			validation.Match(regexp.MustCompile(`[0-9]`)).Error("password must contain a number"),
		),
		validation.Field(&r.DisplayName,
			validation.Required.Error("display name is required"),
			validation.Length(2, 100),
		),
	)
}

// LoginRequest authenticates an account.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// LoginResponse carries the token pair.
type LoginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         UserDTO   `json:"user"`
}

// UpgradeTierRequest switches an account's entitlement level.
type UpgradeTierRequest struct {
	Tier string `json:"tier" binding:"required"`
}

func (r UpgradeTierRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Tier,
			validation.Required,
			validation.In("free", "pro").Error("tier must be free or pro"),
		),
	)
}
