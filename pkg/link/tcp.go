package link

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/go-ctap/ledgercomm/pkg/apdu"
	"github.com/go-ctap/ledgercomm/pkg/options"
)

// MaxFrameSize caps the length a peer may announce.
const MaxFrameSize = 1 << 20

// TCP talks to the emulator's APDU port.
type TCP struct {
	logger      *slog.Logger
	addr        string
	dialTimeout time.Duration
	readTimeout time.Duration

	conn net.Conn
}

var _ Link = (*TCP)(nil)

// NewTCP creates a closed TCP link to the configured server and port.
func NewTCP(opts ...options.Option) *TCP {
	oo := options.NewOptions(opts...)

	return &TCP{
		logger:      oo.Logger,
		addr:        net.JoinHostPort(oo.Server, strconv.Itoa(oo.Port)),
		dialTimeout: oo.DialTimeout,
		readTimeout: oo.ReadTimeout,
	}
}

// Addr returns the host:port the link dials.
func (t *TCP) Addr() string {
	return t.addr
}

func (t *TCP) Open(ctx context.Context) error {
	if t.conn != nil {
		return nil
	}

	dialer := net.Dialer{Timeout: t.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", t.addr)
	if err != nil {
		return fmt.Errorf("link: failed to connect to %s: %w", t.addr, err)
	}
	t.conn = conn
	t.logger.Debug("TCP connection opened", "addr", t.addr)

	return nil
}

func (t *TCP) Send(data []byte) (int, error) {
	if t.conn == nil {
		return 0, ErrClosed
	}
	if len(data) == 0 {
		return 0, ErrEmptySend
	}

	t.logger.Debug("=> " + hex.EncodeToString(data))

	buf := make([]byte, 4, 4+len(data))
	binary.BigEndian.PutUint32(buf, uint32(len(data)))
	buf = append(buf, data...)

	n, err := t.conn.Write(buf)
	if err != nil {
		return n, fmt.Errorf("link: TCP write: %w", err)
	}

	return n, nil
}

func (t *TCP) Recv() (*apdu.Response, error) {
	if t.conn == nil {
		return nil, ErrClosed
	}

	if t.readTimeout > 0 {
		if err := t.conn.SetReadDeadline(time.Now().Add(t.readTimeout)); err != nil {
			return nil, err
		}
		defer func() {
			_ = t.conn.SetReadDeadline(time.Time{})
		}()
	}

	var header [4]byte
	if _, err := io.ReadFull(t.conn, header[:]); err != nil {
		return nil, fmt.Errorf("link: read length: %w", err)
	}

	length := binary.BigEndian.Uint32(header[:])
	if length > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, length)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(t.conn, data); err != nil {
		return nil, fmt.Errorf("link: read data: %w", err)
	}

	var sw [2]byte
	if _, err := io.ReadFull(t.conn, sw[:]); err != nil {
		return nil, fmt.Errorf("link: read status word: %w", err)
	}

	resp := &apdu.Response{
		StatusWord: apdu.StatusWord(binary.BigEndian.Uint16(sw[:])),
		Data:       data,
	}
	t.logger.Debug("<= "+hex.EncodeToString(resp.Data), "sw", resp.StatusWord.String())

	return resp, nil
}

func (t *TCP) Exchange(data []byte) (*apdu.Response, error) {
	if _, err := t.Send(data); err != nil {
		return nil, err
	}

	return t.Recv()
}

func (t *TCP) Close() error {
	if t.conn == nil {
		return nil
	}

	conn := t.conn
	t.conn = nil
	t.logger.Debug("TCP connection closed", "addr", t.addr)

	return conn.Close()
}
