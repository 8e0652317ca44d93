package scancore

import "fmt"

// RiskCategory orders SAFE < RISKY < DANGEROUS.
type RiskCategory string

const (
	CategorySafe      RiskCategory = "safe"
	CategoryRisky     RiskCategory = "risky"
	CategoryDangerous RiskCategory = "dangerous"
)

// Additive factor weights. At most one of unlimited_allowance and
// approval_for_all applies per record, likewise the two age factors;
// eoa_spender and unknown_spender exclude each other by construction.
const (
	weightUnlimitedAllowance = 40
	weightApprovalForAll     = 25
	weightEOASpender         = 35
	weightUnknownSpender     = 20
	weightOldApproval6m      = 15
	weightVeryOldApproval    = 25
)

// Category thresholds: score <= 30 safe, <= 60 risky, else dangerous.
const (
	safeThreshold  = 30
	riskyThreshold = 60
)

// RiskFactor is one applying contribution to an approval's score.
type RiskFactor struct {
	Name   string `json:"name"`
	Weight int    `json:"weight"`
	Reason string `json:"reason"`
}

// RiskAssessment is the scored verdict for a single approval.
type RiskAssessment struct {
	Score    int
	Category RiskCategory
	Factors  []RiskFactor
	Reasons  []string
}

// AssessRisk scores one active approval under the declared risk model.
// The score is the capped sum of applying factor weights.
func AssessRisk(a ActiveApproval) RiskAssessment {
	var factors []RiskFactor

	if a.IsUnlimited {
		if a.Kind == KindERC20 {
			factors = append(factors, RiskFactor{
				Name:   "unlimited_allowance",
				Weight: weightUnlimitedAllowance,
				Reason: "Unlimited token approval allows spender to transfer any amount",
			})
		} else {
			factors = append(factors, RiskFactor{
				Name:   "approval_for_all",
				Weight: weightApprovalForAll,
				Reason: "Blanket NFT approval allows spender to transfer all tokens in collection",
			})
		}
	}

	if !a.Spender.IsContract {
		factors = append(factors, RiskFactor{
			Name:   "eoa_spender",
			Weight: weightEOASpender,
			Reason: "Spender is an externally owned account (EOA), not a contract",
		})
	} else if !a.Spender.Verified {
		factors = append(factors, RiskFactor{
			Name:   "unknown_spender",
			Weight: weightUnknownSpender,
			Reason: "Spender contract is not verified on block explorer",
		})
	}

	if a.AgeDays > 365 {
		factors = append(factors, RiskFactor{
			Name:   "very_old_approval",
			Weight: weightVeryOldApproval,
			Reason: fmt.Sprintf("Approval is over %d year(s) old", a.AgeDays/365),
		})
	} else if a.AgeDays > 180 {
		factors = append(factors, RiskFactor{
			Name:   "old_approval_6m",
			Weight: weightOldApproval6m,
			Reason: fmt.Sprintf("Approval is %d days old (6+ months)", a.AgeDays),
		})
	}

	score := 0
	reasons := make([]string, 0, len(factors))
	for _, f := range factors {
		score += f.Weight
		reasons = append(reasons, f.Reason)
	}
	if score > 100 {
		score = 100
	}

	category := CategorySafe
	switch {
	case score > riskyThreshold:
		category = CategoryDangerous
	case score > safeThreshold:
		category = CategoryRisky
	}

	return RiskAssessment{Score: score, Category: category, Factors: factors, Reasons: reasons}
}

// HygieneScore aggregates a wallet's assessments into a 0-100 posture
// score: 100 - 25/dangerous - 10/risky - 2/safe, clamped. No approvals
// is perfect hygiene.
func HygieneScore(assessments []RiskAssessment) int {
	if len(assessments) == 0 {
		return 100
	}
	penalty := 0
	for _, a := range assessments {
		switch a.Category {
		case CategoryDangerous:
			penalty += 25
		case CategoryRisky:
			penalty += 10
		default:
			penalty += 2
		}
	}
	score := 100 - penalty
	if score < 0 {
		score = 0
	}
	return score
}

// HygieneLabel maps a hygiene score to its display label.
func HygieneLabel(score int) string {
	switch {
	case score >= 90:
		return "Excellent"
	case score >= 70:
		return "Good"
	case score >= 50:
		return "Fair"
	case score >= 30:
		return "Poor"
	default:
		return "Critical"
	}
}
