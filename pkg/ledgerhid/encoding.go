package ledgerhid

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/samber/lo"
)

// NewMessage splits data into packets. The 2-byte total length is prepended
// to data and the result is cut into slices that fill one report each.
func NewMessage(data []byte) (Message, error) {
	if len(data) == 0 {
		return nil, ErrEmptyMessage
	}
	if len(data) > MaxMessageSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, len(data))
	}

	buf := make([]byte, lengthSize, lengthSize+len(data))
	binary.BigEndian.PutUint16(buf, uint16(len(data)))
	buf = append(buf, data...)

	chunks := lo.Chunk(buf, ReportSize-headerSize)
	msg := make(Message, 0, len(chunks))
	for i, chunk := range chunks {
		msg = append(msg, &packet{
			channel:  Channel,
			tag:      TagAPDU,
			sequence: uint16(i),
			length:   uint16(len(data)),
			data:     chunk,
		})
	}

	return msg, nil
}

// WriteTo writes the message to the device, one padded packet per write.
func (m Message) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, p := range m {
		// We cannot write directly to the device because every writing should be a single packet.
		buf := bufio.NewWriterSize(w, PacketSize)

		if err := buf.WriteByte(ReportID); err != nil {
			return total, err
		}

		n, err := p.WriteTo(buf)
		if err != nil {
			return total, err
		}

		// The last packet is usually short; the report is always full size.
		if _, err := buf.Write(make([]byte, ReportSize-int(n))); err != nil {
			return total, err
		}

		if err := buf.Flush(); err != nil {
			return total, err
		}
		total += PacketSize
	}

	return total, nil
}

// WriteTo writes the packet header and data to the writer e.g., a buffer.
func (p *packet) WriteTo(w io.Writer) (int64, error) {
	// CHANNEL: offset 0; length 2
	// TAG: offset 2; length 1
	// SEQ: offset 3; length 2
	header := make([]byte, headerSize)
	binary.BigEndian.PutUint16(header[0:2], p.channel)
	header[2] = p.tag
	binary.BigEndian.PutUint16(header[3:5], p.sequence)

	headerCnt, err := w.Write(header)
	if err != nil {
		return 0, err
	}

	// DATA: offset 5; length up to 59
	dataCnt, err := w.Write(p.data)
	if err != nil {
		return 0, err
	}

	return int64(headerCnt + dataCnt), nil
}
