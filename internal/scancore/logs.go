package scancore

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Event signatures shared by the three token standards.
//
// Approval(address,address,uint256) is emitted by both ERC-20 (value in
// data) and ERC-721 (tokenId as a fourth indexed topic); the two are told
// apart purely by topic arity. ApprovalForAll(address,address,bool) is
// shared by ERC-721 and ERC-1155.
const (
	ApprovalTopic       = "0x8c5be1e5ebec7d5bd14f71427d1e84f3dd0314c0f7b2291e5b200ac8c7c3b925"
	ApprovalForAllTopic = "0x17307eab39ab6107e8899845ad3d59bd9653f200f220920489ca2b5937696c31"
)

// ApprovalKind discriminates the parsed approval variants.
type ApprovalKind string

const (
	KindERC20        ApprovalKind = "ERC20"
	KindERC721Single ApprovalKind = "ERC721"
	KindERC721All    ApprovalKind = "ERC721_ALL"
	KindERC1155All   ApprovalKind = "ERC1155_ALL"
)

// ParsedApproval is a typed approval event.
//
// Value is set only for ERC20, TokenID only for ERC721 single-token
// approvals, and Approved is meaningful only for the *_ALL kinds.
type ParsedApproval struct {
	TokenAddress string
	Owner        string
	Spender      string
	Kind         ApprovalKind
	Value        *big.Int
	TokenID      *big.Int
	Approved     bool
	BlockNumber  uint64
	LogIndex     uint32
	TxHash       string
}

// parseHexUint parses a 0x-prefixed hex quantity, defaulting to 0 on any
// malformed input.
func parseHexUint(s string) uint64 {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseHexBig parses a 0x-prefixed hex quantity of arbitrary width.
func parseHexBig(s string) *big.Int {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if s == "" {
		return new(big.Int)
	}
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return new(big.Int)
	}
	return v
}

// ParseApprovalLogs decodes two raw log families (Approval and
// ApprovalForAll) into typed records. Malformed logs are dropped, never
// misclassified.
func ParseApprovalLogs(approvals, approvalForAll []RawLog) []ParsedApproval {
	out := make([]ParsedApproval, 0, len(approvals)+len(approvalForAll))
	for _, l := range approvals {
		if p, ok := parseApprovalEvent(l); ok {
			out = append(out, p)
		}
	}
	for _, l := range approvalForAll {
		if p, ok := parseApprovalForAllEvent(l); ok {
			out = append(out, p)
		}
	}
	return out
}

// parseApprovalEvent handles the overloaded Approval signature:
// 4 topics means ERC-721 (indexed tokenId), 3 topics with a 32-byte data
// word means ERC-20.
func parseApprovalEvent(l RawLog) (ParsedApproval, bool) {
	if len(l.Topics) < 3 {
		return ParsedApproval{}, false
	}
	owner := UnpadAddress(l.Topics[1])
	spender := UnpadAddress(l.Topics[2])
	if owner == "" || spender == "" {
		return ParsedApproval{}, false
	}

	p := ParsedApproval{
		TokenAddress: NormalizeAddress(l.Address),
		Owner:        owner,
		Spender:      spender,
		BlockNumber:  parseHexUint(l.BlockNumber),
		LogIndex:     uint32(parseHexUint(l.LogIndex)),
		TxHash:       l.TxHash,
	}

	switch {
	case len(l.Topics) == 4:
		p.Kind = KindERC721Single
		p.TokenID = parseHexBig(l.Topics[3])
	case len(l.Topics) == 3 && len(common.FromHex(l.Data)) == 32:
		p.Kind = KindERC20
		p.Value = parseHexBig(l.Data)
	default:
		return ParsedApproval{}, false
	}
	return p, true
}

func parseApprovalForAllEvent(l RawLog) (ParsedApproval, bool) {
	if len(l.Topics) < 3 {
		return ParsedApproval{}, false
	}
	owner := UnpadAddress(l.Topics[1])
	operator := UnpadAddress(l.Topics[2])
	if owner == "" || operator == "" {
		return ParsedApproval{}, false
	}

	// The flag is the LSB of the 32-byte data word; missing data means
	// approved, matching how non-compliant emitters behave in the wild.
	approved := true
	if d := common.FromHex(l.Data); len(d) > 0 {
		approved = d[len(d)-1] == 1
	}

	return ParsedApproval{
		TokenAddress: NormalizeAddress(l.Address),
		Owner:        owner,
		Spender:      operator,
		Kind:         KindERC721All,
		Approved:     approved,
		BlockNumber:  parseHexUint(l.BlockNumber),
		LogIndex:     uint32(parseHexUint(l.LogIndex)),
		TxHash:       l.TxHash,
	}, true
}
