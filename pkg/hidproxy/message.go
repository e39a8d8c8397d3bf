// Package hidproxy encodes the messages exchanged with the HID proxy service
// that owns Ledger devices on Windows hosts where direct access is denied.
package hidproxy

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

var encMode, _ = cbor.CoreDetEncOptions().EncMode()

const NamedPipePath = "\\\\.\\pipe\\ledgercomm"

var ErrInvalidCommand = errors.New("hidproxy: invalid command")

type Command byte

const (
	// CommandEnumerate asks for the devices of a vendor id; the reply carries
	// a CBOR array of device infos.
	CommandEnumerate Command = iota + 1
	// CommandStart binds the pipe to a device path; afterwards the pipe
	// carries raw HID reports.
	CommandStart
)

type Message struct {
	Command Command
	length  uint16
	Data    []byte
}

func ParseMessage(pipe io.Reader) (*Message, error) {
	header := make([]byte, 3)
	if _, err := io.ReadFull(pipe, header); err != nil {
		return nil, err
	}

	cmd := Command(header[0])
	if cmd != CommandEnumerate && cmd != CommandStart {
		return nil, fmt.Errorf("%w: %#02x", ErrInvalidCommand, header[0])
	}
	length := binary.BigEndian.Uint16(header[1:])

	bData := make([]byte, length)
	if _, err := io.ReadFull(pipe, bData); err != nil {
		return nil, err
	}

	return &Message{
		Command: cmd,
		length:  length,
		Data:    bData,
	}, nil
}

func NewMessage(cmd Command, data any) (*Message, error) {
	msg := &Message{
		Command: cmd,
	}

	b := make([]byte, 0)
	var err error
	if data != nil {
		b, err = encMode.Marshal(data)
		if err != nil {
			return nil, err
		}
	}
	if len(b) > 0xffff {
		return nil, fmt.Errorf("hidproxy: message data too large (%d bytes)", len(b))
	}

	msg.length = uint16(len(b))
	msg.Data = b

	return msg, nil
}

func (m *Message) WriteTo(w io.Writer) (n int64, err error) {
	buf := make([]byte, 3, 3+len(m.Data))
	buf[0] = byte(m.Command)
	binary.BigEndian.PutUint16(buf[1:], m.length)
	buf = append(buf, m.Data...)

	// One write so that the proxy never sees a partial header.
	cnt, err := w.Write(buf)
	return int64(cnt), err
}
