package loyalty

import (
	"time"

	"github.com/google/uuid"
)

// EarnRequest for POST /loyalty/accounts/{id}/earn. Amount is capped at MaxBookingAmount.
type EarnRequest struct {
	BookingID uuid.UUID `json:"booking_id" validate:"required"`
	Amount    float64   `json:"amount" validate:"gt=0,lte=1000000000"`
}

// RedeemRequest for POST /loyalty/me/redeem
type RedeemRequest struct {
	BookingID uuid.UUID `json:"booking_id" validate:"required"`
	Points    int64     `json:"points" validate:"gte=1"`
}

// AdjustRequest for POST /loyalty/accounts/{id}/adjust
type AdjustRequest struct {
	Delta  int64  `json:"delta" validate:"ne=0"`
	Reason string `json:"reason" validate:"required,notblank,max=500"`
}

// TierResponse is one row of the public tier table
type TierResponse struct {
	Tier        Tier     `json:"tier"`
	DisplayName string   `json:"display_name"`
	MinSpending float64  `json:"min_spending"`
	Multiplier  float64  `json:"multiplier"`
	Benefits    []string `json:"benefits"`
}

func newTierResponse(c TierConfig) TierResponse {
	benefits := c.Benefits
	if benefits == nil {
		benefits = []string{}
	}
	return TierResponse{
		Tier:        c.Tier,
		DisplayName: c.DisplayName,
		MinSpending: c.MinSpending,
		Multiplier:  c.Multiplier,
		Benefits:    benefits,
	}
}

// TierProgressResponse for GET /loyalty/me/progress
type TierProgressResponse struct {
	CurrentTier        TierResponse  `json:"current_tier"`
	NextTier           *TierResponse `json:"next_tier"`
	SpendingToNextTier float64       `json:"spending_to_next_tier"`
	LifetimeSpending   float64       `json:"lifetime_spending"`
}

func newTierProgressResponse(p TierProgress, lifetimeSpending float64) TierProgressResponse {
	resp := TierProgressResponse{
		CurrentTier:        newTierResponse(p.CurrentTier),
		SpendingToNextTier: p.SpendingToNextTier,
		LifetimeSpending:   lifetimeSpending,
	}
	if p.NextTier != nil {
		next := newTierResponse(*p.NextTier)
		resp.NextTier = &next
	}
	return resp
}

// AccountResponse is an account with its derived tier
type AccountResponse struct {
	UserID           uuid.UUID            `json:"user_id"`
	PointsBalance    int64                `json:"points_balance"`
	LifetimeSpending float64              `json:"lifetime_spending"`
	Tier             Tier                 `json:"tier"`
	TierName         string               `json:"tier_name"`
	Multiplier       float64              `json:"multiplier"`
	Benefits         []string             `json:"benefits"`
	Progress         TierProgressResponse `json:"progress"`
	CreatedAt        string               `json:"created_at"`
	UpdatedAt        string               `json:"updated_at"`
}

// TransactionResponse is one ledger entry
type TransactionResponse struct {
	ID           uuid.UUID       `json:"id"`
	Amount       int64           `json:"amount"`
	BalanceAfter int64           `json:"balance_after"`
	Type         TransactionType `json:"type"`
	Reason       string          `json:"reason"`
	BookingID    *uuid.UUID      `json:"booking_id,omitempty"`
	ActorID      *uuid.UUID      `json:"actor_id,omitempty"`
	CreatedAt    string          `json:"created_at"`
}

// NewTransactionResponse converts a ledger entry
func NewTransactionResponse(t *Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:           t.ID,
		Amount:       t.Amount,
		BalanceAfter: t.BalanceAfter,
		Type:         t.Type,
		Reason:       t.Reason,
		CreatedAt:    t.CreatedAt.Format(time.RFC3339),
	}
	if t.BookingID.Valid {
		id := t.BookingID.UUID
		resp.BookingID = &id
	}
	if t.ActorID.Valid {
		id := t.ActorID.UUID
		resp.ActorID = &id
	}
	return resp
}

// RedemptionQuoteResponse for GET /loyalty/me/redemption-quote
type RedemptionQuoteResponse struct {
	BookingAmount float64 `json:"booking_amount"`
	PointsBalance int64   `json:"points_balance"`
	MaxPoints     int64   `json:"max_points"`
	DiscountValue float64 `json:"discount_value"`
}
