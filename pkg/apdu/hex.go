package apdu

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// ParseHex decodes a hex APDU, ignoring every character that is not a hex
// digit, so spaced or colon separated dumps from logs are accepted.
func ParseHex(s string) ([]byte, error) {
	digits := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
			return r
		default:
			return -1
		}
	}, s)

	b, err := hex.DecodeString(digits)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHex, err)
	}
	return b, nil
}
