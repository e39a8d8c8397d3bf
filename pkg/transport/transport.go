// Package transport exchanges APDUs with a Ledger device or the Speculos
// emulator. The backend is chosen once, when the Transport is created.
package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-ctap/ledgercomm/pkg/apdu"
	"github.com/go-ctap/ledgercomm/pkg/device"
	"github.com/go-ctap/ledgercomm/pkg/ledgerhid"
	"github.com/go-ctap/ledgercomm/pkg/link"
	"github.com/go-ctap/ledgercomm/pkg/metrics"
	"github.com/go-ctap/ledgercomm/pkg/options"
)

var ErrUnknownInterface = errors.New("transport: unknown interface")

// Interface names a link backend.
type Interface string

const (
	InterfaceHID Interface = "hid"
	InterfaceTCP Interface = "tcp"
)

// ParseInterface validates a backend selector.
func ParseInterface(s string) (Interface, error) {
	switch iface := Interface(s); iface {
	case InterfaceHID, InterfaceTCP:
		return iface, nil
	default:
		return "", fmt.Errorf("%w '%s'", ErrUnknownInterface, s)
	}
}

// Transport sends APDUs over one link. Like the link, it must not be used
// from several goroutines at once.
type Transport struct {
	iface   Interface
	link    link.Link
	logger  *slog.Logger
	metrics *metrics.Collector
}

// New creates a Transport on the backend selected by options.WithInterface
// (TCP by default) and opens it with the options' context.
func New(opts ...options.Option) (*Transport, error) {
	oo := options.NewOptions(opts...)

	iface, err := ParseInterface(oo.Interface)
	if err != nil {
		return nil, err
	}

	var l link.Link
	switch iface {
	case InterfaceHID:
		l = link.NewHID(opts...)
	case InterfaceTCP:
		l = link.NewTCP(opts...)
	}

	t := newTransport(iface, l, oo)
	if err := t.Open(oo.Context); err != nil {
		return nil, err
	}

	return t, nil
}

func newTransport(iface Interface, l link.Link, oo *options.Options) *Transport {
	return &Transport{
		iface:   iface,
		link:    l,
		logger:  oo.Logger,
		metrics: oo.Metrics,
	}
}

// Interface reports the backend chosen at construction.
func (t *Transport) Interface() Interface {
	return t.iface
}

// Open (re)opens the link. It does nothing if the link is open.
func (t *Transport) Open(ctx context.Context) error {
	if err := t.link.Open(ctx); err != nil {
		t.recordError(err)
		return err
	}
	return nil
}

// Send encodes cmd and sends it without waiting for the response. It returns
// the number of bytes written on the wire.
func (t *Transport) Send(cmd *apdu.Command) (int, error) {
	b, err := cmd.Bytes()
	if err != nil {
		t.recordError(err)
		return 0, err
	}
	t.logger.Debug("sending APDU", "command", cmd.String())

	return t.send(b)
}

// SendRaw sends an already encoded APDU. Empty input sends nothing.
func (t *Transport) SendRaw(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}

	return t.send(b)
}

// SendHex decodes s with apdu.ParseHex and sends the result.
func (t *Transport) SendHex(s string) (int, error) {
	b, err := apdu.ParseHex(s)
	if err != nil {
		return 0, err
	}

	return t.SendRaw(b)
}

// Recv waits for the response of a previous Send.
func (t *Transport) Recv() (*apdu.Response, error) {
	resp, err := t.link.Recv()
	if err != nil {
		t.recordError(err)
		return nil, err
	}

	return resp, nil
}

// Exchange sends cmd and waits for its response.
func (t *Transport) Exchange(cmd *apdu.Command) (*apdu.Response, error) {
	b, err := cmd.Bytes()
	if err != nil {
		t.recordError(err)
		return nil, err
	}
	t.logger.Debug("exchanging APDU", "command", cmd.String())

	return t.exchange(b)
}

// ExchangeRaw exchanges an already encoded APDU. Empty input is a no-op and
// returns a nil response.
func (t *Transport) ExchangeRaw(b []byte) (*apdu.Response, error) {
	if len(b) == 0 {
		return nil, nil
	}

	return t.exchange(b)
}

// ExchangeHex decodes s with apdu.ParseHex and exchanges the result.
func (t *Transport) ExchangeHex(s string) (*apdu.Response, error) {
	b, err := apdu.ParseHex(s)
	if err != nil {
		return nil, err
	}

	return t.ExchangeRaw(b)
}

// Close releases the link. It is safe to call more than once.
func (t *Transport) Close() error {
	return t.link.Close()
}

func (t *Transport) send(b []byte) (int, error) {
	n, err := t.link.Send(b)
	if err != nil {
		t.recordError(err)
		return n, err
	}
	t.metrics.RecordSend(string(t.iface), len(b))

	return n, nil
}

func (t *Transport) exchange(b []byte) (*apdu.Response, error) {
	start := time.Now()

	if _, err := t.send(b); err != nil {
		return nil, err
	}

	resp, err := t.link.Recv()
	if err != nil {
		t.recordError(err)
		return nil, err
	}

	t.metrics.RecordExchange(string(t.iface), resp.StatusWord.IsSuccess(), len(resp.Data)+2, time.Since(start))

	return resp, nil
}

func (t *Transport) recordError(err error) {
	t.metrics.RecordError(string(t.iface), errorKind(err))
}

// errorKind classifies err for the errors_total metric.
func errorKind(err error) string {
	switch {
	case errors.Is(err, link.ErrClosed):
		return "closed"
	case errors.Is(err, link.ErrEmptySend), errors.Is(err, ledgerhid.ErrEmptyMessage):
		return "empty_send"
	case errors.Is(err, ledgerhid.ErrProtocolViolation):
		return "protocol_violation"
	case errors.Is(err, link.ErrFragmentTimeout), errors.Is(err, os.ErrDeadlineExceeded):
		return "timeout"
	case errors.Is(err, device.ErrDeviceNotFound):
		return "device_not_found"
	case errors.Is(err, apdu.ErrPayloadTooLarge), errors.Is(err, ledgerhid.ErrMessageTooLarge), errors.Is(err, link.ErrFrameTooLarge):
		return "too_large"
	default:
		return "io"
	}
}
