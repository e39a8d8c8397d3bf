package link

import (
	"context"
	"io"
	"net"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-ctap/ledgercomm/pkg/apdu"
	"github.com/go-ctap/ledgercomm/pkg/options"
)

// peer is a one-connection fake of the emulator's APDU server.
type peer struct {
	ln    net.Listener
	conns chan net.Conn
}

func newPeer(t *testing.T) *peer {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = ln.Close()
	})

	p := &peer{ln: ln, conns: make(chan net.Conn, 4)}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			p.conns <- conn
		}
	}()

	return p
}

func (p *peer) options() []options.Option {
	addr := p.ln.Addr().(*net.TCPAddr)
	return []options.Option{
		options.WithLogger(discard),
		options.WithServer(addr.IP.String(), addr.Port),
	}
}

func (p *peer) accept(t *testing.T) net.Conn {
	t.Helper()

	select {
	case conn := <-p.conns:
		t.Cleanup(func() {
			_ = conn.Close()
		})
		return conn
	case <-time.After(5 * time.Second):
		t.Fatal("no connection accepted")
		return nil
	}
}

func newTestTCP(t *testing.T, p *peer, opts ...options.Option) *TCP {
	t.Helper()

	l := NewTCP(append(p.options(), opts...)...)
	require.NoError(t, l.Open(context.Background()))
	t.Cleanup(func() {
		_ = l.Close()
	})

	return l
}

func TestTCP_Exchange(t *testing.T) {
	p := newPeer(t)
	l := newTestTCP(t, p)
	conn := p.accept(t)

	done := make(chan []byte, 1)
	go func() {
		req := make([]byte, 9)
		if _, err := io.ReadFull(conn, req); err != nil {
			done <- nil
			return
		}
		_, _ = conn.Write([]byte{0x00, 0x00, 0x00, 0x03, 0x01, 0x02, 0x03, 0x90, 0x00})
		done <- req
	}()

	resp, err := l.Exchange([]byte{0xe0, 0x02, 0x00, 0x00, 0x00})
	require.NoError(t, err)
	assert.Equal(t, apdu.SW_OK, resp.StatusWord)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, resp.Data)

	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x05, 0xe0, 0x02, 0x00, 0x00, 0x00}, <-done)
}

func TestTCP_SendLength(t *testing.T) {
	p := newPeer(t)
	l := newTestTCP(t, p)
	conn := p.accept(t)

	data := make([]byte, 300)
	n, err := l.Send(data)
	require.NoError(t, err)
	assert.Equal(t, 4+len(data), n)

	got := make([]byte, n)
	_, err = io.ReadFull(conn, got)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x00, 0x01, 0x2c}, got[:4])
}

func TestTCP_RecvFragmentedStream(t *testing.T) {
	p := newPeer(t)
	l := newTestTCP(t, p)
	conn := p.accept(t)

	frame := []byte{0x00, 0x00, 0x00, 0x04, 0xde, 0xad, 0xbe, 0xef, 0x6d, 0x00}
	go func() {
		// One byte per segment: every read on the client side comes up short.
		for _, b := range frame {
			if _, err := conn.Write([]byte{b}); err != nil {
				return
			}
			time.Sleep(2 * time.Millisecond)
		}
	}()

	resp, err := l.Recv()
	require.NoError(t, err)
	assert.Equal(t, apdu.SW_INS_NOT_SUPPORTED, resp.StatusWord)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, resp.Data)
}

func TestTCP_RecvEmptyBody(t *testing.T) {
	p := newPeer(t)
	l := newTestTCP(t, p)
	conn := p.accept(t)

	_, err := conn.Write([]byte{0x00, 0x00, 0x00, 0x00, 0x69, 0x85})
	require.NoError(t, err)

	resp, err := l.Recv()
	require.NoError(t, err)
	assert.Equal(t, apdu.SW_DENIED, resp.StatusWord)
	assert.Empty(t, resp.Data)
}

func TestTCP_RecvReadTimeout(t *testing.T) {
	p := newPeer(t)
	l := newTestTCP(t, p, options.WithReadTimeout(50*time.Millisecond))
	_ = p.accept(t)

	_, err := l.Recv()
	require.ErrorIs(t, err, os.ErrDeadlineExceeded)
}

func TestTCP_RecvFrameTooLarge(t *testing.T) {
	p := newPeer(t)
	l := newTestTCP(t, p)
	conn := p.accept(t)

	_, err := conn.Write([]byte{0x7f, 0xff, 0xff, 0xff})
	require.NoError(t, err)

	_, err = l.Recv()
	require.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestTCP_PeerClosed(t *testing.T) {
	p := newPeer(t)
	l := newTestTCP(t, p)
	conn := p.accept(t)

	_, err := conn.Write([]byte{0x00, 0x00, 0x00, 0x08, 0x01})
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	_, err = l.Recv()
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestTCP_EmptySend(t *testing.T) {
	p := newPeer(t)
	l := newTestTCP(t, p)

	_, err := l.Send(nil)
	require.ErrorIs(t, err, ErrEmptySend)
}

func TestTCP_OpenIdempotent(t *testing.T) {
	p := newPeer(t)
	l := newTestTCP(t, p)
	conn := l.conn

	require.NoError(t, l.Open(context.Background()))
	assert.Same(t, conn, l.conn)
}

func TestTCP_CloseIdempotent(t *testing.T) {
	p := newPeer(t)
	l := newTestTCP(t, p)

	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	_, err := l.Send([]byte{0x01})
	require.ErrorIs(t, err, ErrClosed)

	_, err = l.Recv()
	require.ErrorIs(t, err, ErrClosed)
}

func TestTCP_OpenRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	l := NewTCP(options.WithLogger(discard), options.WithServer("127.0.0.1", port))
	assert.Equal(t, "127.0.0.1:"+strconv.Itoa(port), l.Addr())

	require.Error(t, l.Open(context.Background()))

	_, err = l.Send([]byte{0x01})
	require.ErrorIs(t, err, ErrClosed)
}
