package loyalty

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType classifies a ledger entry
type TransactionType string

const (
	TransactionEarn   TransactionType = "earn"
	TransactionRedeem TransactionType = "redeem"
	TransactionAdjust TransactionType = "adjust"
)

// Account holds a guest's points balance and lifetime spending.
// Version increases by one on every committed mutation.
type Account struct {
	UserID           uuid.UUID `db:"user_id" json:"user_id"`
	PointsBalance    int64     `db:"points_balance" json:"points_balance"`
	LifetimeSpending float64   `db:"lifetime_spending" json:"lifetime_spending"`
	Version          int64     `db:"version" json:"version"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// Transaction is an append-only ledger entry. Amount is signed.
type Transaction struct {
	ID           uuid.UUID       `db:"id"`
	UserID       uuid.UUID       `db:"user_id"`
	Amount       int64           `db:"amount"`
	BalanceAfter int64           `db:"balance_after"`
	Type         TransactionType `db:"type"`
	Reason       string          `db:"reason"`
	BookingID    uuid.NullUUID   `db:"booking_id"`
	ActorID      uuid.NullUUID   `db:"actor_id"`
	CreatedAt    time.Time       `db:"created_at"`
}

// Mutation is a balance change computed against a locked account
type Mutation struct {
	Points        int64
	SpendingDelta float64
	Type          TransactionType
	Reason        string
	BookingID     uuid.UUID
	ActorID       uuid.UUID
}

// MutationFunc computes a Mutation from the current account state.
// It runs while the account row is locked.
type MutationFunc func(acc *Account) (*Mutation, error)

func nullUUID(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: id != uuid.Nil}
}
