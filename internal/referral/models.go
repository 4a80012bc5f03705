package referral

import (
	"time"

	"github.com/google/uuid"
)

// Rejection reasons reported to clients.
const (
	ReasonEmptyCode       = "empty_code"
	ReasonNotFound        = "not_found"
	ReasonInactive        = "inactive"
	ReasonExpired         = "expired"
	ReasonLimitReached    = "redemption_limit_reached"
	ReasonAlreadyRedeemed = "already_redeemed"
)

type Code struct {
	Code            string     `json:"code" db:"code"`
	DiscountPercent int        `json:"discount_percent" db:"discount_percent"`
	Attribution     string     `json:"attribution" db:"attribution"`
	IsActive        bool       `json:"is_active" db:"is_active"`
	MaxRedemptions  *int       `json:"max_redemptions,omitempty" db:"max_redemptions"`
	RedemptionCount int        `json:"redemption_count" db:"redemption_count"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}

type Redemption struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Code       string    `json:"code" db:"code"`
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	RedeemedAt time.Time `json:"redeemed_at" db:"redeemed_at"`
}

// ValidationResult is what the referral screen renders.
type ValidationResult struct {
	Code            string `json:"code"`
	Valid           bool   `json:"valid"`
	DiscountPercent int    `json:"discount_percent,omitempty"`
	Attribution     string `json:"attribution,omitempty"`
	Reason          string `json:"reason,omitempty"`
}
