package loyalty

import (
	"fmt"
	"math"
)

// Tier is a spending level. It is derived from lifetime spending and never stored.
type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

const (
	// PointsPerCurrencyUnit converts one unit of booking currency into points on redemption
	PointsPerCurrencyUnit = 100
	// MaxRedemptionShare caps the discount at this share of the booking amount
	MaxRedemptionShare = 0.5
	// MaxBookingAmount is the largest amount a single booking may carry
	MaxBookingAmount = 1_000_000_000
	// MaxLifetimeSpending is the largest value lifetime_spending NUMERIC(14,2) can hold
	MaxLifetimeSpending = 999_999_999_999.99
)

// ValidBookingAmount reports whether amount is finite, positive and within MaxBookingAmount
func ValidBookingAmount(amount float64) bool {
	return !math.IsNaN(amount) && !math.IsInf(amount, 0) && amount > 0 && amount <= MaxBookingAmount
}

// RoundToCents rounds amount the way lifetime spending is stored
func RoundToCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// floorPoints converts a point value to int64, saturating instead of overflowing
func floorPoints(x float64) int64 {
	if math.IsNaN(x) || x <= 0 {
		return 0
	}
	if x >= float64(math.MaxInt64) {
		return math.MaxInt64
	}
	return int64(math.Floor(x))
}

// TierConfig describes one row of the tier table
type TierConfig struct {
	Tier        Tier     `yaml:"tier" json:"tier"`
	DisplayName string   `yaml:"display_name" json:"display_name"`
	MinSpending float64  `yaml:"min_spending" json:"min_spending"`
	Multiplier  float64  `yaml:"multiplier" json:"multiplier"`
	Benefits    []string `yaml:"benefits" json:"benefits"`
}

func (c TierConfig) clone() TierConfig {
	c.Benefits = append([]string(nil), c.Benefits...)
	return c
}

// TierProgress is how far an account is from its next tier.
// NextTier is nil at the top tier.
type TierProgress struct {
	CurrentTier        TierConfig
	NextTier           *TierConfig
	SpendingToNextTier float64
}

// TierTable is the immutable tier configuration shared by the engine.
// Rows are ordered by ascending MinSpending.
type TierTable struct {
	tiers []TierConfig
	index map[Tier]int
}

// DefaultTierTable returns the built-in bronze/silver/gold/platinum table
func DefaultTierTable() *TierTable {
	t, err := NewTierTable([]TierConfig{
		{
			Tier: TierBronze, DisplayName: "Bronze", MinSpending: 0, Multiplier: 1.0,
			Benefits: []string{"Earn 1 point per dollar", "Member-only rates"},
		},
		{
			Tier: TierSilver, DisplayName: "Silver", MinSpending: 500, Multiplier: 1.25,
			Benefits: []string{"Earn 1.25 points per dollar", "Late checkout on request"},
		},
		{
			Tier: TierGold, DisplayName: "Gold", MinSpending: 2000, Multiplier: 1.5,
			Benefits: []string{"Earn 1.5 points per dollar", "Guaranteed late checkout", "Room upgrade when available"},
		},
		{
			Tier: TierPlatinum, DisplayName: "Platinum", MinSpending: 5000, Multiplier: 2.0,
			Benefits: []string{"Earn 2 points per dollar", "Suite upgrade when available", "Complimentary breakfast", "Dedicated concierge"},
		},
	})
	if err != nil {
		panic(err)
	}
	return t
}

// NewTierTable validates rows and builds a table.
// The first row must start at 0 and thresholds must strictly increase.
func NewTierTable(rows []TierConfig) (*TierTable, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no tiers defined", ErrInvalidTierTable)
	}

	t := &TierTable{
		tiers: make([]TierConfig, 0, len(rows)),
		index: make(map[Tier]int, len(rows)),
	}
	for i, row := range rows {
		switch {
		case row.Tier == "":
			return nil, fmt.Errorf("%w: tier %d has no name", ErrInvalidTierTable, i)
		case row.Multiplier <= 0:
			return nil, fmt.Errorf("%w: tier %s multiplier must be positive", ErrInvalidTierTable, row.Tier)
		case i == 0 && row.MinSpending != 0:
			return nil, fmt.Errorf("%w: lowest tier must start at 0", ErrInvalidTierTable)
		case i > 0 && row.MinSpending <= rows[i-1].MinSpending:
			return nil, fmt.Errorf("%w: tier %s threshold must exceed %s", ErrInvalidTierTable, row.Tier, rows[i-1].Tier)
		}
		if _, dup := t.index[row.Tier]; dup {
			return nil, fmt.Errorf("%w: duplicate tier %s", ErrInvalidTierTable, row.Tier)
		}
		if row.DisplayName == "" {
			row.DisplayName = string(row.Tier)
		}
		t.index[row.Tier] = i
		t.tiers = append(t.tiers, row.clone())
	}
	return t, nil
}

// Tiers returns a copy of all rows in ascending order
func (t *TierTable) Tiers() []TierConfig {
	out := make([]TierConfig, len(t.tiers))
	for i, c := range t.tiers {
		out[i] = c.clone()
	}
	return out
}

// Config returns the row for tier
func (t *TierTable) Config(tier Tier) (TierConfig, bool) {
	i, ok := t.index[tier]
	if !ok {
		return TierConfig{}, false
	}
	return t.tiers[i].clone(), true
}

// Multiplier returns the earning multiplier for tier, or 0 if unknown
func (t *TierTable) Multiplier(tier Tier) float64 {
	i, ok := t.index[tier]
	if !ok {
		return 0
	}
	return t.tiers[i].Multiplier
}

// Classify returns the highest tier whose threshold is met
func (t *TierTable) Classify(lifetimeSpending float64) Tier {
	return t.tiers[t.position(lifetimeSpending)].Tier
}

func (t *TierTable) position(lifetimeSpending float64) int {
	pos := 0
	for i, c := range t.tiers {
		if c.MinSpending <= lifetimeSpending {
			pos = i
		}
	}
	return pos
}

// PointsEarned is floor(bookingAmount * multiplier). Non-positive and NaN amounts
// earn nothing, and the result saturates at math.MaxInt64.
func (t *TierTable) PointsEarned(tier Tier, bookingAmount float64) int64 {
	return floorPoints(bookingAmount * t.Multiplier(tier))
}

// Progress reports the current tier, the next one and the spending still needed
func (t *TierTable) Progress(lifetimeSpending float64) TierProgress {
	pos := t.position(lifetimeSpending)
	p := TierProgress{CurrentTier: t.tiers[pos].clone()}
	if pos+1 < len(t.tiers) {
		next := t.tiers[pos+1].clone()
		p.NextTier = &next
		p.SpendingToNextTier = math.Max(0, next.MinSpending-lifetimeSpending)
	}
	return p
}

// MaxRedeemablePoints caps redemption at MaxRedemptionShare of the booking
// amount, converted at PointsPerCurrencyUnit, and at the current balance.
func MaxRedeemablePoints(currentPoints int64, bookingAmount float64) int64 {
	if currentPoints <= 0 {
		return 0
	}
	limit := floorPoints(bookingAmount * MaxRedemptionShare * PointsPerCurrencyUnit)
	if currentPoints < limit {
		return currentPoints
	}
	return limit
}

// PointsValue converts points into booking currency
func PointsValue(points int64) float64 {
	return float64(points) / PointsPerCurrencyUnit
}
