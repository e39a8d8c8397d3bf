// Package link implements the two framings an APDU can travel over: Ledger
// USB HID reports and the length-prefixed TCP protocol of the Speculos
// emulator.
//
// A link owns one OS handle. It is not safe for concurrent use: the protocol
// allows a single exchange in flight and callers must serialize.
package link

import (
	"context"
	"errors"

	"github.com/go-ctap/ledgercomm/pkg/apdu"
)

var (
	ErrClosed          = errors.New("link: connection closed")
	ErrEmptySend       = errors.New("link: can't send empty data")
	ErrFragmentTimeout = errors.New("link: timed out waiting for HID fragment")
	ErrFrameTooLarge   = errors.New("link: frame too large")
)

// Link is one framing protocol over one exclusively owned handle.
type Link interface {
	// Open acquires the handle. Opening an open link does nothing.
	Open(ctx context.Context) error
	// Send frames data and writes it, returning the number of bytes written
	// on the wire.
	Send(data []byte) (int, error)
	// Recv blocks until a complete response has been read.
	Recv() (*apdu.Response, error)
	// Exchange is Send followed by Recv.
	Exchange(data []byte) (*apdu.Response, error)
	// Close releases the handle. Closing a closed link does nothing.
	Close() error
}
