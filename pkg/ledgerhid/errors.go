package ledgerhid

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyMessage      = errors.New("ledgerhid: empty message")
	ErrMessageTooLarge   = errors.New("ledgerhid: message payload too large")
	ErrProtocolViolation = errors.New("ledgerhid: protocol violation")
)

// Fields checked on every inbound fragment.
const (
	FieldReport   = "report size"
	FieldChannel  = "channel"
	FieldTag      = "tag"
	FieldSequence = "sequence index"
)

// ProtocolError reports an inbound fragment that does not follow the framing.
type ProtocolError struct {
	Sequence uint16
	Field    string
	Expected int
	Got      int
}

func newProtocolError(seq uint16, field string, expected, got int) *ProtocolError {
	return &ProtocolError{
		Sequence: seq,
		Field:    field,
		Expected: expected,
		Got:      got,
	}
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("ledgerhid: fragment %d: invalid %s (expected %#x, got %#x)", e.Sequence, e.Field, e.Expected, e.Got)
}

func (e *ProtocolError) Unwrap() error {
	return ErrProtocolViolation
}
