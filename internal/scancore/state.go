package scancore

import "sort"

const zeroAddress = "0x0000000000000000000000000000000000000000"

// ApprovalKey identifies one permission slot. TokenID is empty except for
// single-token ERC-721 approvals, which are tracked per tokenId.
type ApprovalKey struct {
	Token   string
	Spender string
	TokenID string
}

func keyFor(p ParsedApproval) ApprovalKey {
	k := ApprovalKey{Token: p.TokenAddress, Spender: p.Spender}
	if p.Kind == KindERC721Single && p.TokenID != nil {
		k.TokenID = p.TokenID.String()
	}
	return k
}

// ReconstructState folds an event stream into the latest-write-wins
// approval state. Events are ordered by (blockNumber, logIndex); the sort
// is stable so same-position records resolve by input order.
func ReconstructState(approvals []ParsedApproval) map[ApprovalKey]ParsedApproval {
	sorted := make([]ParsedApproval, len(approvals))
	copy(sorted, approvals)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].BlockNumber != sorted[j].BlockNumber {
			return sorted[i].BlockNumber < sorted[j].BlockNumber
		}
		return sorted[i].LogIndex < sorted[j].LogIndex
	})

	state := make(map[ApprovalKey]ParsedApproval)
	for _, p := range sorted {
		switch p.Kind {
		case KindERC20:
			// An approval of zero is a revocation.
			if p.Value == nil || p.Value.Sign() == 0 {
				delete(state, keyFor(p))
			} else {
				state[keyFor(p)] = p
			}
		case KindERC721All, KindERC1155All:
			if !p.Approved {
				delete(state, keyFor(p))
			} else {
				state[keyFor(p)] = p
			}
		case KindERC721Single:
			// ERC-721 holds one approved address per tokenId, so any new
			// approval displaces the previous holder; the zero address
			// clears the slot entirely.
			tokenID := ""
			if p.TokenID != nil {
				tokenID = p.TokenID.String()
			}
			for k := range state {
				if k.Token == p.TokenAddress && k.TokenID == tokenID && state[k].Kind == KindERC721Single {
					delete(state, k)
				}
			}
			if p.Spender != zeroAddress {
				state[keyFor(p)] = p
			}
		}
	}
	return state
}
