package loyalty

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stayrewards/stayrewards-api/internal/pkg/authz"
	"github.com/stayrewards/stayrewards-api/internal/pkg/logger"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Service applies loyalty rules on top of the repository
type Service struct {
	repo  Repository
	tiers *TierTable
	cache AccountCache // nil if Redis disabled
}

// NewService creates loyalty service
func NewService(repo Repository, tiers *TierTable, cache AccountCache) *Service {
	return &Service{
		repo:  repo,
		tiers: tiers,
		cache: cache,
	}
}

// Tiers returns the shared tier table
func (s *Service) Tiers() *TierTable {
	return s.tiers
}

func (s *Service) loadAccount(ctx context.Context, userID uuid.UUID) (*Account, error) {
	if s.cache != nil {
		acc, ok, err := s.cache.Get(ctx, userID)
		if err != nil {
			logger.FromContext(ctx).Warn().Err(err).Msg("Loyalty cache read failed")
		}
		if ok {
			return acc, nil
		}
	}

	acc, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, acc); err != nil {
			logger.FromContext(ctx).Warn().Err(err).Msg("Loyalty cache write failed")
		}
	}
	return acc, nil
}

// remember writes the committed snapshot through to the cache.
// If that fails the entry is dropped so readers fall back to the database.
func (s *Service) remember(ctx context.Context, acc *Account) {
	if s.cache == nil || acc == nil {
		return
	}
	err := s.cache.Set(ctx, acc)
	if err == nil {
		return
	}
	logger.FromContext(ctx).Warn().Err(err).Str("user_id", acc.UserID.String()).Msg("Loyalty cache write failed")
	if err := s.cache.Invalidate(ctx, acc.UserID); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("user_id", acc.UserID.String()).Msg("Loyalty cache invalidation failed")
	}
}

func (s *Service) accountResponse(acc *Account) *AccountResponse {
	progress := s.tiers.Progress(acc.LifetimeSpending)
	current := progress.CurrentTier
	benefits := current.Benefits
	if benefits == nil {
		benefits = []string{}
	}
	return &AccountResponse{
		UserID:           acc.UserID,
		PointsBalance:    acc.PointsBalance,
		LifetimeSpending: acc.LifetimeSpending,
		Tier:             current.Tier,
		TierName:         current.DisplayName,
		Multiplier:       current.Multiplier,
		Benefits:         benefits,
		Progress:         newTierProgressResponse(progress, acc.LifetimeSpending),
		CreatedAt:        acc.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        acc.UpdatedAt.Format(time.RFC3339),
	}
}

// GetAccount returns the account, creating it on first access
func (s *Service) GetAccount(ctx context.Context, userID uuid.UUID) (*AccountResponse, error) {
	acc, err := s.loadAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.accountResponse(acc), nil
}

// TierProgress reports how far the account is from the next tier
func (s *Service) TierProgress(ctx context.Context, userID uuid.UUID) (*TierProgressResponse, error) {
	acc, err := s.loadAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := newTierProgressResponse(s.tiers.Progress(acc.LifetimeSpending), acc.LifetimeSpending)
	return &resp, nil
}

// EarnPoints records a completed booking. Points are credited at the tier held
// before the booking; its amount then counts toward lifetime spending.
// The amount is rounded to cents first, as it is stored.
// Each booking earns at most once.
func (s *Service) EarnPoints(ctx context.Context, userID, bookingID uuid.UUID, bookingAmount float64) (*Transaction, error) {
	if !ValidBookingAmount(bookingAmount) {
		return nil, ErrInvalidAmount
	}
	bookingAmount = RoundToCents(bookingAmount)
	if bookingAmount <= 0 {
		return nil, ErrInvalidAmount
	}
	if bookingID == uuid.Nil {
		return nil, ErrBookingRequired
	}

	t, updated, err := s.repo.Apply(ctx, userID, func(acc *Account) (*Mutation, error) {
		if acc.LifetimeSpending+bookingAmount > MaxLifetimeSpending {
			return nil, ErrInvalidAmount
		}
		tier := s.tiers.Classify(acc.LifetimeSpending)
		return &Mutation{
			Points:        s.tiers.PointsEarned(tier, bookingAmount),
			SpendingDelta: bookingAmount,
			Type:          TransactionEarn,
			Reason:        fmt.Sprintf("Booking completed (%s tier)", tier),
			BookingID:     bookingID,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	s.remember(ctx, updated)

	logger.FromContext(ctx).Info().
		Str("user_id", userID.String()).
		Str("booking_id", bookingID.String()).
		Int64("points", t.Amount).
		Msg("Loyalty points earned")

	return t, nil
}

// RedeemPoints debits points against a booking
func (s *Service) RedeemPoints(ctx context.Context, userID, bookingID uuid.UUID, points int64) (*Transaction, error) {
	if points < 1 {
		return nil, ErrInvalidPoints
	}
	if bookingID == uuid.Nil {
		return nil, ErrBookingRequired
	}

	t, updated, err := s.repo.Apply(ctx, userID, func(acc *Account) (*Mutation, error) {
		if points > acc.PointsBalance {
			return nil, ErrInsufficientBalance
		}
		return &Mutation{
			Points:    -points,
			Type:      TransactionRedeem,
			Reason:    "Redeemed for booking",
			BookingID: bookingID,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	s.remember(ctx, updated)

	logger.FromContext(ctx).Info().
		Str("user_id", userID.String()).
		Str("booking_id", bookingID.String()).
		Int64("points", points).
		Msg("Loyalty points redeemed")

	return t, nil
}

// AdjustPoints applies an administrative correction.
// The actor is recorded on the ledger entry.
func (s *Service) AdjustPoints(ctx context.Context, actor authz.Actor, userID uuid.UUID, delta int64, reason string) (*Transaction, error) {
	if !authz.CanAdjustPoints(actor) {
		return nil, ErrForbidden
	}
	if delta == 0 {
		return nil, ErrZeroAdjustment
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}

	t, updated, err := s.repo.Apply(ctx, userID, func(acc *Account) (*Mutation, error) {
		if delta > 0 && acc.PointsBalance > math.MaxInt64-delta {
			return nil, ErrInvalidPoints
		}
		if acc.PointsBalance+delta < 0 {
			return nil, ErrInsufficientBalance
		}
		return &Mutation{
			Points:  delta,
			Type:    TransactionAdjust,
			Reason:  reason,
			ActorID: actor.ID,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	s.remember(ctx, updated)

	logger.FromContext(ctx).Info().
		Str("user_id", userID.String()).
		Str("actor_id", actor.ID.String()).
		Int64("delta", delta).
		Str("reason", reason).
		Msg("Loyalty points adjusted")

	return t, nil
}

// RedemptionQuote returns how many points may be spent on a booking of the given amount
func (s *Service) RedemptionQuote(ctx context.Context, userID uuid.UUID, bookingAmount float64) (*RedemptionQuoteResponse, error) {
	if !ValidBookingAmount(bookingAmount) {
		return nil, ErrInvalidAmount
	}

	acc, err := s.loadAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	maxPoints := MaxRedeemablePoints(acc.PointsBalance, bookingAmount)
	return &RedemptionQuoteResponse{
		BookingAmount: bookingAmount,
		PointsBalance: acc.PointsBalance,
		MaxPoints:     maxPoints,
		DiscountValue: PointsValue(maxPoints),
	}, nil
}

// ListTransactions returns one page of the ledger, newest first, with the total count
func (s *Service) ListTransactions(ctx context.Context, userID uuid.UUID, page, limit int) ([]*Transaction, int, error) {
	page, limit = normalizePage(page, limit)

	total, err := s.repo.CountTransactions(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []*Transaction{}, 0, nil
	}

	txs, err := s.repo.ListTransactions(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

// ListTiers returns the public tier table
func (s *Service) ListTiers() []TierResponse {
	rows := s.tiers.Tiers()
	out := make([]TierResponse, len(rows))
	for i, c := range rows {
		out[i] = newTierResponse(c)
	}
	return out
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}
