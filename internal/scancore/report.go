package scancore

import (
	"fmt"
	"sort"
)

// ChainConfig describes one supported chain for URL templating and
// block-time estimation.
type ChainConfig struct {
	ID           int
	Name         string
	Explorer     string
	RevokeBase   string
	BlockSeconds int
}

var chains = map[int]ChainConfig{
	1:     {ID: 1, Name: "Ethereum", Explorer: "https://etherscan.io", RevokeBase: "https://revoke.cash/address", BlockSeconds: 12},
	137:   {ID: 137, Name: "Polygon", Explorer: "https://polygonscan.com", RevokeBase: "https://revoke.cash/address", BlockSeconds: 12},
	42161: {ID: 42161, Name: "Arbitrum", Explorer: "https://arbiscan.io", RevokeBase: "https://revoke.cash/address", BlockSeconds: 12},
	10:    {ID: 10, Name: "Optimism", Explorer: "https://optimistic.etherscan.io", RevokeBase: "https://revoke.cash/address", BlockSeconds: 12},
	8453:  {ID: 8453, Name: "Base", Explorer: "https://basescan.org", RevokeBase: "https://revoke.cash/address", BlockSeconds: 12},
}

// ChainByID looks up a supported chain.
func ChainByID(id int) (ChainConfig, bool) {
	c, ok := chains[id]
	return c, ok
}

// CategorizedApproval pairs an active approval with its risk verdict and
// action links.
type CategorizedApproval struct {
	Approval    ActiveApproval
	Risk        RiskAssessment
	RevokeURL   string
	ExplorerURL string
}

// ScanSummary carries the per-category counts and hygiene aggregate.
type ScanSummary struct {
	TotalApprovals int
	DangerousCount int
	RiskyCount     int
	SafeCount      int
	HygieneScore   int
	HygieneLabel   string
}

// ScanResult is the complete categorized report for one wallet.
type ScanResult struct {
	Wallet    string
	ChainID   int
	Summary   ScanSummary
	Dangerous []CategorizedApproval
	Risky     []CategorizedApproval
	Safe      []CategorizedApproval
}

// BuildReport scores each approval, buckets by category, sorts each
// bucket by score descending, and attaches revocation and explorer URLs.
func BuildReport(wallet string, approvals []ActiveApproval, chainID int) ScanResult {
	chain, ok := ChainByID(chainID)
	if !ok {
		chain = chains[1]
	}

	var dangerous, risky, safe []CategorizedApproval
	assessments := make([]RiskAssessment, 0, len(approvals))

	for _, a := range approvals {
		risk := AssessRisk(a)
		assessments = append(assessments, risk)

		c := CategorizedApproval{
			Approval:    a,
			Risk:        risk,
			RevokeURL:   fmt.Sprintf("%s/%s?chainId=%d", chain.RevokeBase, wallet, chainID),
			ExplorerURL: fmt.Sprintf("%s/address/%s", chain.Explorer, a.Spender.Address),
		}
		switch risk.Category {
		case CategoryDangerous:
			dangerous = append(dangerous, c)
		case CategoryRisky:
			risky = append(risky, c)
		default:
			safe = append(safe, c)
		}
	}

	byScoreDesc := func(list []CategorizedApproval) {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Risk.Score > list[j].Risk.Score
		})
	}
	byScoreDesc(dangerous)
	byScoreDesc(risky)
	byScoreDesc(safe)

	hygiene := HygieneScore(assessments)
	return ScanResult{
		Wallet:  wallet,
		ChainID: chainID,
		Summary: ScanSummary{
			TotalApprovals: len(approvals),
			DangerousCount: len(dangerous),
			RiskyCount:     len(risky),
			SafeCount:      len(safe),
			HygieneScore:   hygiene,
			HygieneLabel:   HygieneLabel(hygiene),
		},
		Dangerous: dangerous,
		Risky:     risky,
		Safe:      safe,
	}
}

// ShareCard is the social-share summary of a scan.
type ShareCard struct {
	HygieneScore   int    `json:"hygiene_score"`
	HygieneLabel   string `json:"hygiene_label"`
	TotalApprovals int    `json:"total_approvals"`
	DangerousCount int    `json:"dangerous_count"`
	RiskyCount     int    `json:"risky_count"`
	SafeCount      int    `json:"safe_count"`
	ShareText      string `json:"share_text"`
	WalletShort    string `json:"wallet_short"`
}

// BuildShareCard condenses a scan result into shareable card data.
func BuildShareCard(r ScanResult) ShareCard {
	return ShareCard{
		HygieneScore:   r.Summary.HygieneScore,
		HygieneLabel:   r.Summary.HygieneLabel,
		TotalApprovals: r.Summary.TotalApprovals,
		DangerousCount: r.Summary.DangerousCount,
		RiskyCount:     r.Summary.RiskyCount,
		SafeCount:      r.Summary.SafeCount,
		ShareText:      shareText(r),
		WalletShort:    ShortAddress(r.Wallet),
	}
}

func shareText(r ScanResult) string {
	s := r.Summary
	switch {
	case s.DangerousCount > 0:
		return fmt.Sprintf("My wallet has %d dangerous approval(s)! Hygiene score: %d/100. Check yours at RevokeMe", s.DangerousCount, s.HygieneScore)
	case s.RiskyCount > 0:
		return fmt.Sprintf("Found %d risky approval(s) in my wallet. Score: %d/100. Scan yours at RevokeMe", s.RiskyCount, s.HygieneScore)
	default:
		return fmt.Sprintf("My wallet is clean! Hygiene score: %d/100. Check yours at RevokeMe", s.HygieneScore)
	}
}
