package apdu

import "fmt"

// StatusWord is the two-byte trailer (SW1-SW2) of every response.
type StatusWord uint16

const (
	SW_OK                   StatusWord = 0x9000
	SW_DENIED               StatusWord = 0x6985
	SW_INS_NOT_SUPPORTED    StatusWord = 0x6D00
	SW_CLA_NOT_SUPPORTED    StatusWord = 0x6E00
	SW_WRONG_LENGTH         StatusWord = 0x6700
	SW_WRONG_P1P2           StatusWord = 0x6B00
	SW_SECURITY_NOT_SATISFY StatusWord = 0x6982
	SW_LOCKED_DEVICE        StatusWord = 0x5515
)

var descriptions = map[StatusWord]string{
	SW_OK:                   "",
	SW_DENIED:               "user denied",
	SW_INS_NOT_SUPPORTED:    "unknown instruction",
	SW_CLA_NOT_SUPPORTED:    "wrong cla",
	SW_WRONG_LENGTH:         "wrong length",
	SW_WRONG_P1P2:           "wrong p1/p2",
	SW_SECURITY_NOT_SATISFY: "security status not satisfied",
	SW_LOCKED_DEVICE:        "device locked",
	0x6E10:                  "signature failed",
	0x6E01:                  "invalid arguments",
	0x6E02:                  "invalid message",
	0x6E03:                  "invalid p1",
	0x6E04:                  "message too long",
	0x6E05:                  "receiver too long",
	0x6E06:                  "amount too long",
	0x6E07:                  "contract data disabled",
	0x6E08:                  "message incomplete",
	0x6E09:                  "wrong tx version",
	0x6E0A:                  "nonce too long",
	0x6E0B:                  "invalid amount",
	0x6E0C:                  "invalid fee",
	0x6E0D:                  "pretty failed",
	0x6E0E:                  "data too long",
	0x6E0F:                  "wrong tx options",
	0x6E11:                  "regular signing is deprecated",
}

// SW1 returns the high byte.
func (sw StatusWord) SW1() byte {
	return byte(sw >> 8)
}

// SW2 returns the low byte.
func (sw StatusWord) SW2() byte {
	return byte(sw)
}

func (sw StatusWord) IsSuccess() bool {
	return sw == SW_OK
}

func (sw StatusWord) String() string {
	return fmt.Sprintf("0x%04x", uint16(sw))
}

// Description returns a human-readable meaning of the status word, empty for
// success.
func (sw StatusWord) Description() string {
	if desc, ok := descriptions[sw]; ok {
		return desc
	}
	return "unknown error code: " + sw.String()
}

