package loyalty

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const (
	sqlStateUniqueViolation     = "23505"
	sqlStateForeignKeyViolation = "23503"
	sqlStateNumericOutOfRange   = "22003"
)

// Repository defines loyalty data access
type Repository interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*Account, error)
	Apply(ctx context.Context, userID uuid.UUID, fn MutationFunc) (*Transaction, *Account, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Transaction, error)
	CountTransactions(ctx context.Context, userID uuid.UUID) (int, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates loyalty repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const accountColumns = `user_id, points_balance, lifetime_spending, version, created_at, updated_at`

const transactionColumns = `id, user_id, amount, balance_after, type, reason, booking_id, actor_id, created_at`

const ensureAccountQuery = `
	INSERT INTO loyalty_accounts (user_id)
	VALUES ($1)
	ON CONFLICT (user_id) DO NOTHING
`

func mapAccountErr(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == sqlStateForeignKeyViolation {
		return ErrAccountNotFound
	}
	return err
}

// GetOrCreate returns the account, creating an empty one on first access
func (r *repository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*Account, error) {
	if _, err := r.db.ExecContext(ctx, ensureAccountQuery, userID); err != nil {
		return nil, fmt.Errorf("ensure loyalty account: %w", mapAccountErr(err))
	}

	var acc Account
	err := r.db.GetContext(ctx, &acc, `SELECT `+accountColumns+` FROM loyalty_accounts WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get loyalty account: %w", err)
	}
	return &acc, nil
}

func (r *repository) beginTx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
}

func (r *repository) lockAccount(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) (*Account, error) {
	if _, err := tx.ExecContext(ctx, ensureAccountQuery, userID); err != nil {
		return nil, mapAccountErr(err)
	}

	var acc Account
	err := tx.GetContext(ctx, &acc, `SELECT `+accountColumns+` FROM loyalty_accounts WHERE user_id = $1 FOR UPDATE`, userID)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// Apply locks the account row, asks fn for the change, and writes the new
// balance plus one ledger row in the same transaction. A negative resulting
// balance aborts with ErrInsufficientBalance and nothing is written.
// The committed account snapshot is returned alongside the ledger row.
func (r *repository) Apply(ctx context.Context, userID uuid.UUID, fn MutationFunc) (*Transaction, *Account, error) {
	tx, err := r.beginTx(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin loyalty tx: %w", err)
	}
	defer tx.Rollback()

	acc, err := r.lockAccount(ctx, tx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("lock loyalty account: %w", err)
	}

	m, err := fn(acc)
	if err != nil {
		return nil, nil, err
	}

	nextBalance := acc.PointsBalance + m.Points
	if nextBalance < 0 {
		return nil, nil, ErrInsufficientBalance
	}

	var updated Account
	err = tx.QueryRowxContext(ctx, `
		UPDATE loyalty_accounts
		SET points_balance = $1, lifetime_spending = lifetime_spending + $2,
			version = version + 1, updated_at = now()
		WHERE user_id = $3
		RETURNING `+accountColumns,
		nextBalance, m.SpendingDelta, userID).StructScan(&updated)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == sqlStateNumericOutOfRange {
			return nil, nil, ErrInvalidAmount
		}
		return nil, nil, fmt.Errorf("update loyalty balance: %w", err)
	}

	t := &Transaction{
		UserID:       userID,
		Amount:       m.Points,
		BalanceAfter: nextBalance,
		Type:         m.Type,
		Reason:       m.Reason,
		BookingID:    nullUUID(m.BookingID),
		ActorID:      nullUUID(m.ActorID),
	}
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO loyalty_transactions (user_id, amount, balance_after, type, reason, booking_id, actor_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, t.UserID, t.Amount, t.BalanceAfter, string(t.Type), t.Reason, t.BookingID, t.ActorID).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == sqlStateUniqueViolation {
			return nil, nil, ErrDuplicateBooking
		}
		return nil, nil, fmt.Errorf("insert loyalty transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit loyalty tx: %w", err)
	}
	return t, &updated, nil
}

// ListTransactions returns the ledger newest first
func (r *repository) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Transaction, error) {
	var txs []*Transaction
	err := r.db.SelectContext(ctx, &txs, `
		SELECT `+transactionColumns+`
		FROM loyalty_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list loyalty transactions: %w", err)
	}
	return txs, nil
}

func (r *repository) CountTransactions(ctx context.Context, userID uuid.UUID) (int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM loyalty_transactions WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("count loyalty transactions: %w", err)
	}
	return total, nil
}
