package loyalty

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestClassifyDefaultThresholds(t *testing.T) {
	table := DefaultTierTable()

	cases := []struct {
		spending float64
		want     Tier
	}{
		{0, TierBronze},
		{499.99, TierBronze},
		{500, TierSilver},
		{1999.99, TierSilver},
		{2000, TierGold},
		{4999.99, TierGold},
		{5000, TierPlatinum},
		{1_000_000, TierPlatinum},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, table.Classify(tc.spending), "spending %.2f", tc.spending)
	}
}

func TestClassifyMatchesThresholdsProperty(t *testing.T) {
	table := DefaultTierTable()
	rows := table.Tiers()

	rapid.Check(t, func(t *rapid.T) {
		spending := rapid.Float64Range(0, 20000).Draw(t, "spending")
		got := table.Classify(spending)

		cfg, ok := table.Config(got)
		if !ok {
			t.Fatalf("unknown tier %s", got)
		}
		if cfg.MinSpending > spending {
			t.Fatalf("tier %s requires %.2f, spending is %.2f", got, cfg.MinSpending, spending)
		}
		for _, r := range rows {
			if r.MinSpending > cfg.MinSpending && r.MinSpending <= spending {
				t.Fatalf("spending %.2f qualifies for %s but got %s", spending, r.Tier, got)
			}
		}
	})
}

func TestPointsEarned(t *testing.T) {
	table := DefaultTierTable()

	assert.Equal(t, int64(150), table.PointsEarned(TierGold, 100))
	assert.Equal(t, int64(100), table.PointsEarned(TierBronze, 100))
	assert.Equal(t, int64(124), table.PointsEarned(TierSilver, 99.99))
	assert.Equal(t, int64(200), table.PointsEarned(TierPlatinum, 100))
	assert.Equal(t, int64(0), table.PointsEarned(TierGold, 0))
	assert.Equal(t, int64(0), table.PointsEarned(TierGold, -10))
}

func TestPointsEarnedIsFloorProperty(t *testing.T) {
	table := DefaultTierTable()
	tiers := []Tier{TierBronze, TierSilver, TierGold, TierPlatinum}

	rapid.Check(t, func(t *rapid.T) {
		tier := rapid.SampledFrom(tiers).Draw(t, "tier")
		amount := rapid.Float64Range(0.01, 100000).Draw(t, "amount")

		got := table.PointsEarned(tier, amount)
		exact := amount * table.Multiplier(tier)
		if float64(got) > exact || exact-float64(got) >= 1 {
			t.Fatalf("PointsEarned(%s, %f) = %d, exact %f", tier, amount, got, exact)
		}
	})
}

func TestMaxRedeemablePoints(t *testing.T) {
	assert.Equal(t, int64(1000), MaxRedeemablePoints(1000, 100))
	assert.Equal(t, int64(5000), MaxRedeemablePoints(100000, 100))
	assert.Equal(t, int64(999), MaxRedeemablePoints(5000, 19.99))
	assert.Equal(t, int64(0), MaxRedeemablePoints(0, 100))
	assert.Equal(t, int64(0), MaxRedeemablePoints(1000, 0))
	assert.Equal(t, int64(0), MaxRedeemablePoints(-5, 100))
}

func TestMaxRedeemablePointsBoundsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		points := rapid.Int64Range(0, 10_000_000).Draw(t, "points")
		amount := rapid.Float64Range(0.01, 100000).Draw(t, "amount")

		got := MaxRedeemablePoints(points, amount)
		if got < 0 || got > points {
			t.Fatalf("MaxRedeemablePoints(%d, %f) = %d out of balance range", points, amount, got)
		}
		if PointsValue(got) > amount*MaxRedemptionShare+1e-9 {
			t.Fatalf("discount %f exceeds half of %f", PointsValue(got), amount)
		}
	})
}

func TestPointsEarnedExtremeAmounts(t *testing.T) {
	table := DefaultTierTable()

	assert.Equal(t, int64(math.MaxInt64), table.PointsEarned(TierGold, 1e19))
	assert.Equal(t, int64(math.MaxInt64), table.PointsEarned(TierBronze, 1e300))
	assert.Equal(t, int64(math.MaxInt64), table.PointsEarned(TierPlatinum, math.Inf(1)))
	assert.Equal(t, int64(0), table.PointsEarned(TierGold, math.Inf(-1)))
	assert.Equal(t, int64(0), table.PointsEarned(TierGold, math.NaN()))
	assert.Equal(t, int64(0), table.PointsEarned("unknown", math.Inf(1)))
}

func TestMaxRedeemablePointsExtremeAmounts(t *testing.T) {
	assert.Equal(t, int64(1000), MaxRedeemablePoints(1000, 1e300))
	assert.Equal(t, int64(1000), MaxRedeemablePoints(1000, math.Inf(1)))
	assert.Equal(t, int64(math.MaxInt64), MaxRedeemablePoints(math.MaxInt64, 1e300))
	assert.Equal(t, int64(0), MaxRedeemablePoints(1000, math.NaN()))
	assert.Equal(t, int64(0), MaxRedeemablePoints(1000, math.Inf(-1)))
}

func TestTierMathNeverNegativeProperty(t *testing.T) {
	table := DefaultTierTable()
	tiers := []Tier{TierBronze, TierSilver, TierGold, TierPlatinum}

	rapid.Check(t, func(t *rapid.T) {
		tier := rapid.SampledFrom(tiers).Draw(t, "tier")
		points := rapid.Int64Range(0, math.MaxInt64).Draw(t, "points")
		amount := rapid.Float64().Draw(t, "amount")

		if got := table.PointsEarned(tier, amount); got < 0 {
			t.Fatalf("PointsEarned(%s, %g) = %d", tier, amount, got)
		}
		if got := MaxRedeemablePoints(points, amount); got < 0 || got > points {
			t.Fatalf("MaxRedeemablePoints(%d, %g) = %d out of balance range", points, amount, got)
		}
	})
}

func TestValidBookingAmount(t *testing.T) {
	for _, ok := range []float64{0.01, 100, MaxBookingAmount} {
		assert.True(t, ValidBookingAmount(ok), "%v", ok)
	}
	for _, bad := range []float64{0, -1, MaxBookingAmount + 1, 1e19, math.NaN(), math.Inf(1), math.Inf(-1)} {
		assert.False(t, ValidBookingAmount(bad), "%v", bad)
	}
	assert.Equal(t, 101.0, RoundToCents(100.999))
	assert.Equal(t, 0.0, RoundToCents(0.004))
}

func TestProgress(t *testing.T) {
	table := DefaultTierTable()

	p := table.Progress(1200)
	assert.Equal(t, TierSilver, p.CurrentTier.Tier)
	require.NotNil(t, p.NextTier)
	assert.Equal(t, TierGold, p.NextTier.Tier)
	assert.InDelta(t, 800, p.SpendingToNextTier, 1e-9)

	top := table.Progress(7500)
	assert.Equal(t, TierPlatinum, top.CurrentTier.Tier)
	assert.Nil(t, top.NextTier)
	assert.Equal(t, 0.0, top.SpendingToNextTier)
}

func TestNewTierTableValidation(t *testing.T) {
	cases := map[string][]TierConfig{
		"empty":             nil,
		"not from zero":     {{Tier: "a", MinSpending: 10, Multiplier: 1}},
		"not increasing":    {{Tier: "a", Multiplier: 1}, {Tier: "b", MinSpending: 100, Multiplier: 1}, {Tier: "c", MinSpending: 100, Multiplier: 2}},
		"zero multiplier":   {{Tier: "a", Multiplier: 0}},
		"duplicate tier":    {{Tier: "a", Multiplier: 1}, {Tier: "a", MinSpending: 5, Multiplier: 2}},
		"missing tier name": {{Multiplier: 1}},
	}
	for name, rows := range cases {
		_, err := NewTierTable(rows)
		assert.True(t, errors.Is(err, ErrInvalidTierTable), "%s: got %v", name, err)
	}
}

func TestTierTableIsImmutable(t *testing.T) {
	table := DefaultTierTable()

	rows := table.Tiers()
	rows[0].Multiplier = 99
	rows[0].Benefits[0] = "changed"

	cfg, ok := table.Config(TierBronze)
	require.True(t, ok)
	assert.Equal(t, 1.0, cfg.Multiplier)
	assert.NotEqual(t, "changed", cfg.Benefits[0])

	p := table.Progress(0)
	p.NextTier.MinSpending = 1
	assert.Equal(t, TierBronze, table.Classify(1))
}

func TestParseTierTable(t *testing.T) {
	data := []byte(`
tiers:
  - tier: member
    display_name: Member
    min_spending: 0
    multiplier: 1
    benefits: ["Free wifi"]
  - tier: elite
    min_spending: 1000
    multiplier: 3
`)
	table, err := ParseTierTable(data)
	require.NoError(t, err)

	assert.Equal(t, Tier("elite"), table.Classify(1500))
	assert.Equal(t, int64(300), table.PointsEarned("elite", 100))

	cfg, ok := table.Config("elite")
	require.True(t, ok)
	assert.Equal(t, "elite", cfg.DisplayName)
	assert.Empty(t, cfg.Benefits)
}

func TestParseTierTableRejectsInvalid(t *testing.T) {
	_, err := ParseTierTable([]byte("tiers:\n  - tier: a\n    min_spending: 5\n    multiplier: 1\n"))
	assert.ErrorIs(t, err, ErrInvalidTierTable)

	_, err = ParseTierTable([]byte("tiers: [:"))
	assert.Error(t, err)
}

func TestLoadTierTableDefaultsWithoutPath(t *testing.T) {
	table, err := LoadTierTable("")
	require.NoError(t, err)
	assert.Len(t, table.Tiers(), 4)

	_, err = LoadTierTable("/nonexistent/tiers.yaml")
	assert.Error(t, err)
}
