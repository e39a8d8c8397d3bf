package ledgerhid

import (
	"encoding/binary"
	"fmt"
	"io"
	"slices"

	"github.com/samber/lo"
)

// ReadFrom reassembles a message from r. Every Read call must return exactly
// one report, which is how HID devices behave. Fragments are validated as they
// arrive and reading stops once the declared length has been collected.
func (m *Message) ReadFrom(r io.Reader) (int64, error) {
	var bytesRead int64
	report := make([]byte, ReportSize)

	var seq uint16
	remaining := -1
	for remaining != 0 {
		n, err := r.Read(report)
		if err != nil {
			return bytesRead, fmt.Errorf("ledgerhid: read fragment %d: %w", seq, err)
		}
		bytesRead += int64(n)

		p, err := parsePacket(report[:n], seq)
		if err != nil {
			return bytesRead, err
		}

		if seq == 0 {
			remaining = int(p.length)
		}
		if len(p.data) > remaining {
			// Padding of the last report.
			p.data = p.data[:remaining]
		}
		remaining -= len(p.data)

		*m = append(*m, p)
		seq++
	}

	return bytesRead, nil
}

func parsePacket(report []byte, seq uint16) (*packet, error) {
	minSize := headerSize
	if seq == 0 {
		minSize += lengthSize
	}
	if len(report) < minSize {
		return nil, newProtocolError(seq, FieldReport, minSize, len(report))
	}

	p := &packet{
		channel:  binary.BigEndian.Uint16(report[0:2]),
		tag:      report[2],
		sequence: binary.BigEndian.Uint16(report[3:5]),
	}

	if p.channel != Channel {
		return nil, newProtocolError(seq, FieldChannel, int(Channel), int(p.channel))
	}
	if p.tag != TagAPDU {
		return nil, newProtocolError(seq, FieldTag, int(TagAPDU), int(p.tag))
	}
	if p.sequence != seq {
		return nil, newProtocolError(seq, FieldSequence, int(seq), int(p.sequence))
	}

	data := report[headerSize:]
	if seq == 0 {
		p.length = binary.BigEndian.Uint16(data[:lengthSize])
		data = data[lengthSize:]
	}
	p.data = slices.Clone(data)

	return p, nil
}

// Bytes returns the reassembled payload without the length prefix.
func (m Message) Bytes() []byte {
	return slices.Concat(lo.Map(m, func(p *packet, _ int) []byte {
		return p.data
	})...)
}
