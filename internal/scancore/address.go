package scancore

import (
	"regexp"
	"strings"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"
)

var addressRe = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// IsHexAddress reports whether s looks like a 0x-prefixed 20-byte address.
func IsHexAddress(s string) bool {
	return addressRe.MatchString(s)
}

// NormalizeAddress lowercases an address into its canonical storage form.
func NormalizeAddress(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// PadAddress pads an address to a 32-byte topic value.
func PadAddress(addr string) string {
	h := strings.TrimPrefix(NormalizeAddress(addr), "0x")
	return "0x" + strings.Repeat("0", 64-len(h)) + h
}

// UnpadAddress extracts the last 20 bytes of a padded 32-byte topic as a
// lowercase address. Short or empty input yields "".
func UnpadAddress(padded string) string {
	if len(padded) < 42 {
		return ""
	}
	return "0x" + strings.ToLower(padded[len(padded)-40:])
}

// ToChecksumAddress renders an address in EIP-55 mixed-case form.
// The checksum hash is Keccak-256 of the lowercase hex characters.
func ToChecksumAddress(addr string) string {
	hexPart := strings.TrimPrefix(NormalizeAddress(addr), "0x")
	hash := gethcrypto.Keccak256([]byte(hexPart))

	out := make([]byte, len(hexPart))
	for i := 0; i < len(hexPart); i++ {
		c := hexPart[i]
		if c >= 'a' && c <= 'f' {
			// Nibble i of the hash decides the case of character i.
			nibble := hash[i/2] >> 4
			if i%2 == 1 {
				nibble = hash[i/2] & 0x0f
			}
			if nibble >= 8 {
				c = c - 'a' + 'A'
			}
		}
		out[i] = c
	}
	return "0x" + string(out)
}

// ValidateChecksum accepts all-lowercase and all-uppercase addresses
// unconditionally; mixed-case addresses must match their EIP-55 rendering.
func ValidateChecksum(addr string) bool {
	hexPart := strings.TrimPrefix(addr, "0x")
	if hexPart == strings.ToLower(hexPart) || hexPart == strings.ToUpper(hexPart) {
		return true
	}
	return addr == ToChecksumAddress(addr)
}

// ShortAddress renders the 0xabcd...1234 display form (first 6 + last 4).
func ShortAddress(addr string) string {
	if len(addr) < 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}
