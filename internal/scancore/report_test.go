package scancore

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeApproval(kind ApprovalKind, unlimited bool, spender SpenderInfo, ageDays int) ActiveApproval {
	a := ActiveApproval{
		Token:       TokenInfo{Address: testToken, Symbol: "TKN", Decimals: 18, Type: "ERC20"},
		Spender:     spender,
		Kind:        kind,
		IsUnlimited: unlimited,
		AgeDays:     ageDays,
		BlockNumber: 100,
		TxHash:      "0xf00",
		Allowance:   "Unlimited",
	}
	if kind == KindERC20 {
		a.AllowanceRaw = big.NewInt(1)
	}
	return a
}

func TestBuildReportBuckets(t *testing.T) {
	approvals := []ActiveApproval{
		// 40 -> risky
		activeApproval(KindERC20, true, contractSpender(true), 0),
		// 40+20+15 = 75 -> dangerous
		activeApproval(KindERC20, true, contractSpender(false), 200),
		// 0 -> safe
		activeApproval(KindERC20, false, contractSpender(true), 0),
		// 25+35+25 = 85 -> dangerous
		activeApproval(KindERC721All, true, SpenderInfo{Address: testSpender}, 800),
	}

	r := BuildReport(testOwner, approvals, 1)
	assert.Equal(t, 4, r.Summary.TotalApprovals)
	assert.Equal(t, 2, r.Summary.DangerousCount)
	assert.Equal(t, 1, r.Summary.RiskyCount)
	assert.Equal(t, 1, r.Summary.SafeCount)

	// Buckets sort by score descending.
	require.Len(t, r.Dangerous, 2)
	assert.Equal(t, 85, r.Dangerous[0].Risk.Score)
	assert.Equal(t, 75, r.Dangerous[1].Risk.Score)

	// 100 - 25*2 - 10 - 2 = 38
	assert.Equal(t, 38, r.Summary.HygieneScore)
	assert.Equal(t, "Poor", r.Summary.HygieneLabel)
}

func TestBuildReportURLs(t *testing.T) {
	approvals := []ActiveApproval{
		activeApproval(KindERC20, true, contractSpender(true), 0),
	}

	r := BuildReport(testOwner, approvals, 1)
	require.Len(t, r.Risky, 1)
	assert.Equal(t, "https://revoke.cash/address/"+testOwner+"?chainId=1", r.Risky[0].RevokeURL)
	assert.Equal(t, "https://etherscan.io/address/"+testSpender, r.Risky[0].ExplorerURL)

	r = BuildReport(testOwner, approvals, 137)
	require.Len(t, r.Risky, 1)
	assert.Equal(t, "https://revoke.cash/address/"+testOwner+"?chainId=137", r.Risky[0].RevokeURL)
	assert.Equal(t, "https://polygonscan.com/address/"+testSpender, r.Risky[0].ExplorerURL)
}

func TestChainByID(t *testing.T) {
	for _, id := range []int{1, 137, 42161, 10, 8453} {
		c, ok := ChainByID(id)
		require.True(t, ok, "chain %d", id)
		assert.NotEmpty(t, c.Explorer)
		assert.Equal(t, 12, c.BlockSeconds)
	}
	_, ok := ChainByID(56)
	assert.False(t, ok)
}

func TestBuildShareCard(t *testing.T) {
	empty := BuildReport(testOwner, nil, 1)
	card := BuildShareCard(empty)
	assert.Equal(t, 100, card.HygieneScore)
	assert.Equal(t, "Excellent", card.HygieneLabel)
	assert.Contains(t, card.ShareText, "clean")
	assert.Equal(t, ShortAddress(testOwner), card.WalletShort)

	risky := BuildReport(testOwner, []ActiveApproval{
		activeApproval(KindERC20, true, contractSpender(true), 0),
	}, 1)
	card = BuildShareCard(risky)
	assert.Equal(t, 1, card.RiskyCount)
	assert.Contains(t, card.ShareText, "1 risky approval(s)")

	dangerous := BuildReport(testOwner, []ActiveApproval{
		activeApproval(KindERC721All, true, SpenderInfo{Address: testSpender}, 800),
	}, 1)
	card = BuildShareCard(dangerous)
	assert.Equal(t, 1, card.DangerousCount)
	assert.Contains(t, card.ShareText, "1 dangerous approval(s)")
}
