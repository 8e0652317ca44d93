package scancore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractSpender(verified bool) SpenderInfo {
	return SpenderInfo{Address: testSpender, IsContract: true, Verified: verified}
}

func factorNames(a RiskAssessment) []string {
	names := make([]string, 0, len(a.Factors))
	for _, f := range a.Factors {
		names = append(names, f.Name)
	}
	return names
}

func TestAssessRiskUnlimitedToKnownRouter(t *testing.T) {
	// Fresh unlimited ERC-20 grant to a verified router.
	a := ActiveApproval{
		Kind:        KindERC20,
		IsUnlimited: true,
		Spender:     contractSpender(true),
		AgeDays:     10,
	}
	risk := AssessRisk(a)
	assert.Equal(t, []string{"unlimited_allowance"}, factorNames(risk))
	assert.Equal(t, 40, risk.Score)
	assert.Equal(t, CategoryRisky, risk.Category)
}

func TestAssessRiskForAllToOldEOA(t *testing.T) {
	// Blanket operator approval to an EOA, two years old.
	a := ActiveApproval{
		Kind:        KindERC721All,
		IsUnlimited: true,
		Spender:     SpenderInfo{Address: testSpender, IsContract: false},
		AgeDays:     800,
	}
	risk := AssessRisk(a)
	assert.Equal(t, []string{"approval_for_all", "eoa_spender", "very_old_approval"}, factorNames(risk))
	assert.Equal(t, 85, risk.Score)
	assert.Equal(t, CategoryDangerous, risk.Category)
}

func TestAssessRiskUnverifiedContract(t *testing.T) {
	// Unlimited ERC-20 to an unverified contract, 200 days old.
	a := ActiveApproval{
		Kind:        KindERC20,
		IsUnlimited: true,
		Spender:     contractSpender(false),
		AgeDays:     200,
	}
	risk := AssessRisk(a)
	assert.Equal(t, []string{"unlimited_allowance", "unknown_spender", "old_approval_6m"}, factorNames(risk))
	assert.Equal(t, 75, risk.Score)
	assert.Equal(t, CategoryDangerous, risk.Category)
}

func TestAssessRiskScoreCapped(t *testing.T) {
	// Worst case: unlimited + EOA + very old = 40+35+25 = 100.
	a := ActiveApproval{
		Kind:        KindERC20,
		IsUnlimited: true,
		Spender:     SpenderInfo{IsContract: false},
		AgeDays:     2000,
	}
	risk := AssessRisk(a)
	assert.Equal(t, 100, risk.Score)
	assert.Equal(t, CategoryDangerous, risk.Category)
}

func TestAssessRiskSafeFloor(t *testing.T) {
	a := ActiveApproval{
		Kind:    KindERC20,
		Spender: contractSpender(true),
		AgeDays: 5,
	}
	risk := AssessRisk(a)
	assert.Equal(t, 0, risk.Score)
	assert.Equal(t, CategorySafe, risk.Category)
	assert.Empty(t, risk.Reasons)
}

func TestAssessRiskAgeBoundaries(t *testing.T) {
	base := ActiveApproval{Kind: KindERC20, Spender: contractSpender(true)}

	cases := []struct {
		ageDays int
		factors []string
	}{
		{180, nil},
		{181, []string{"old_approval_6m"}},
		{365, []string{"old_approval_6m"}},
		{366, []string{"very_old_approval"}},
	}
	for _, c := range cases {
		a := base
		a.AgeDays = c.ageDays
		got := factorNames(AssessRisk(a))
		if c.factors == nil {
			assert.Empty(t, got, "age %d", c.ageDays)
		} else {
			assert.Equal(t, c.factors, got, "age %d", c.ageDays)
		}
	}
}

func TestCategoryMonotonicity(t *testing.T) {
	// Adding factors never lowers the score or the category.
	rank := map[RiskCategory]int{CategorySafe: 0, CategoryRisky: 1, CategoryDangerous: 2}

	smaller := ActiveApproval{Kind: KindERC20, IsUnlimited: true, Spender: contractSpender(true)}
	larger := smaller
	larger.AgeDays = 400
	larger.Spender = contractSpender(false)

	rs, rl := AssessRisk(smaller), AssessRisk(larger)
	require.GreaterOrEqual(t, rl.Score, rs.Score)
	assert.GreaterOrEqual(t, rank[rl.Category], rank[rs.Category])
}

func TestHygieneScore(t *testing.T) {
	assert.Equal(t, 100, HygieneScore(nil))

	mk := func(c RiskCategory, n int) []RiskAssessment {
		out := make([]RiskAssessment, n)
		for i := range out {
			out[i] = RiskAssessment{Category: c}
		}
		return out
	}

	assert.Equal(t, 90, HygieneScore(mk(CategoryRisky, 1)))
	assert.Equal(t, 75, HygieneScore(mk(CategoryDangerous, 1)))
	assert.Equal(t, 98, HygieneScore(mk(CategorySafe, 1)))

	// 2 dangerous + 3 risky + 5 safe = 100 - 50 - 30 - 10 = 10.
	mixed := append(mk(CategoryDangerous, 2), append(mk(CategoryRisky, 3), mk(CategorySafe, 5)...)...)
	assert.Equal(t, 10, HygieneScore(mixed))

	// Clamped at zero.
	assert.Equal(t, 0, HygieneScore(mk(CategoryDangerous, 10)))
}

func TestHygieneLabel(t *testing.T) {
	cases := map[int]string{
		100: "Excellent", 90: "Excellent",
		89: "Good", 70: "Good",
		69: "Fair", 50: "Fair",
		49: "Poor", 30: "Poor",
		29: "Critical", 0: "Critical",
	}
	for score, want := range cases {
		assert.Equal(t, want, HygieneLabel(score), "score %d", score)
	}
}
