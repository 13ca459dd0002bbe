package user

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tier is the entitlement level gating export, duplication, and
// cover generation.
type Tier string

const (
	TierFree Tier = "free"
	TierPro  Tier = "pro"
)

func (t Tier) IsValid() bool {
	return t == TierFree || t == TierPro
}

// User is an account. The demo account is a normal row with IsDemo set;
// unauthenticated requests resolve to it.
type User struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	Email        string          `json:"email" db:"email"`
	PasswordHash string          `json:"-" db:"password_hash"`
	DisplayName  string          `json:"display_name" db:"display_name"`
	Tier         Tier            `json:"tier" db:"tier"`
	Credits      decimal.Decimal `json:"credits" db:"credits"`
	IsDemo       bool            `json:"is_demo" db:"is_demo"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

// UserDTO is the public projection of a user.
type UserDTO struct {
	ID          uuid.UUID       `json:"id"`
	Email       string          `json:"email"`
	DisplayName string          `json:"display_name"`
	Tier        Tier            `json:"tier"`
	Credits     decimal.Decimal `json:"credits"`
	IsDemo      bool            `json:"is_demo"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (u *User) ToDTO() UserDTO {
	return UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Tier:        u.Tier,
		Credits:     u.Credits,
		IsDemo:      u.IsDemo,
		CreatedAt:   u.CreatedAt,
	}
}
