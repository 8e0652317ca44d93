package scancore

import "strings"

const (
	selApprove           = "0x095ea7b3" // approve(address,uint256)
	selSetApprovalForAll = "0xa22cb465" // setApprovalForAll(address,bool)
)

// RevokeCalldata builds the approve(spender, 0) calldata that clears an
// ERC-20 allowance. Display only; this service never signs or sends it.
func RevokeCalldata(spender string) string {
	return selApprove + padArg(spender) + strings.Repeat("0", 64)
}

// RevokeAllCalldata builds setApprovalForAll(operator, false) calldata.
func RevokeAllCalldata(operator string) string {
	return selSetApprovalForAll + padArg(operator) + strings.Repeat("0", 64)
}
