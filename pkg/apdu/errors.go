package apdu

import "errors"

var (
	ErrPayloadTooLarge  = errors.New("apdu: payload too large for a short length field")
	ErrResponseTooShort = errors.New("apdu: response shorter than a status word")
	ErrInvalidHex       = errors.New("apdu: invalid hex string")
)
