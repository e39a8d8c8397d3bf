package apdu

import (
	"encoding/binary"
	"fmt"
)

// Response is a response APDU: body followed by a trailing status word.
type Response struct {
	StatusWord StatusWord
	Data       []byte
}

// ParseResponse splits raw into body and trailing status word.
func ParseResponse(raw []byte) (*Response, error) {
	if len(raw) < 2 {
		return nil, fmt.Errorf("%w: %d bytes", ErrResponseTooShort, len(raw))
	}

	i := len(raw) - 2
	return &Response{
		StatusWord: StatusWord(binary.BigEndian.Uint16(raw[i:])),
		Data:       raw[:i],
	}, nil
}

func (r *Response) String() string {
	return fmt.Sprintf("Data (%d bytes) | Status: %s", len(r.Data), r.StatusWord)
}
