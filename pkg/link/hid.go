package link

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	ghid "github.com/go-ctap/hid"
	"github.com/sstallion/go-hid"

	"github.com/go-ctap/ledgercomm/pkg/apdu"
	"github.com/go-ctap/ledgercomm/pkg/device"
	"github.com/go-ctap/ledgercomm/pkg/ledgerhid"
	"github.com/go-ctap/ledgercomm/pkg/options"
)

// HID talks to a device through USB HID reports.
type HID struct {
	logger          *slog.Logger
	vendorID        uint16
	paths           []string
	useNamedPipe    bool
	useCgoFreeHID   bool
	fragmentTimeout time.Duration
	readTimeout     time.Duration

	path string
	dev  io.ReadWriteCloser

	enumerate func(ctx context.Context, vendorID uint16) ([]*ghid.DeviceInfo, error)
	openPath  func(ctx context.Context, path string) (io.ReadWriteCloser, error)
}

var _ Link = (*HID)(nil)

// NewHID creates a closed HID link.
func NewHID(opts ...options.Option) *HID {
	oo := options.NewOptions(opts...)

	return &HID{
		logger:          oo.Logger,
		vendorID:        oo.VendorID,
		paths:           oo.Paths,
		useNamedPipe:    oo.UseNamedPipe,
		useCgoFreeHID:   oo.UseCgoFreeHID,
		fragmentTimeout: oo.FragmentTimeout,
		readTimeout:     oo.ReadTimeout,
		enumerate:       device.Enumerate,
		openPath:        device.OpenPath,
	}
}

// Path returns the device path, empty until the first successful Open.
func (h *HID) Path() string {
	return h.path
}

func (h *HID) Open(ctx context.Context) error {
	if h.dev != nil {
		return nil
	}

	ctx = context.WithValue(ctx, device.CtxKeyUseNamedPipe, h.useNamedPipe)
	ctx = context.WithValue(ctx, device.CtxKeyUseCgoFreeHID, h.useCgoFreeHID)

	if h.path == "" {
		path, err := h.decidePath(ctx)
		if err != nil {
			return err
		}
		h.path = path
	}

	dev, err := h.openPath(ctx, h.path)
	if err != nil {
		return fmt.Errorf("link: open %s: %w", h.path, err)
	}
	h.dev = dev
	h.logger.Debug("HID device opened", "path", h.path)

	return nil
}

func (h *HID) decidePath(ctx context.Context) (string, error) {
	if len(h.paths) > 0 {
		return h.paths[0], nil
	}

	devInfos, err := h.enumerate(ctx, h.vendorID)
	if err != nil {
		return "", fmt.Errorf("link: enumerate HID devices: %w", err)
	}
	h.logger.Debug("HID devices enumerated", "vendor_id", h.vendorID, "count", len(devInfos))

	return device.SelectPath(devInfos, h.vendorID, h.logger)
}

func (h *HID) Send(data []byte) (int, error) {
	if h.dev == nil {
		return 0, ErrClosed
	}
	if len(data) == 0 {
		return 0, ErrEmptySend
	}

	msg, err := ledgerhid.NewMessage(data)
	if err != nil {
		return 0, err
	}

	h.logger.Debug("=> " + hex.EncodeToString(data))

	n, err := msg.WriteTo(h.dev)
	if err != nil {
		return int(n), fmt.Errorf("link: HID write: %w", err)
	}

	return int(n), nil
}

func (h *HID) Recv() (*apdu.Response, error) {
	if h.dev == nil {
		return nil, ErrClosed
	}

	msg := make(ledgerhid.Message, 0)
	if _, err := msg.ReadFrom(h.fragments()); err != nil {
		return nil, err
	}

	resp, err := apdu.ParseResponse(msg.Bytes())
	if err != nil {
		return nil, err
	}
	h.logger.Debug("<= "+hex.EncodeToString(resp.Data), "sw", resp.StatusWord.String())

	return resp, nil
}

func (h *HID) Exchange(data []byte) (*apdu.Response, error) {
	if _, err := h.Send(data); err != nil {
		return nil, err
	}

	return h.Recv()
}

func (h *HID) Close() error {
	if h.dev == nil {
		return nil
	}

	dev := h.dev
	h.dev = nil
	h.logger.Debug("HID device closed", "path", h.path)

	return dev.Close()
}

func (h *HID) fragments() *fragmentReader {
	return &fragmentReader{
		dev:          h.dev,
		firstTimeout: h.readTimeout,
		nextTimeout:  h.fragmentTimeout,
	}
}

// timeoutReader is implemented by hidapi devices.
type timeoutReader interface {
	ReadWithTimeout(p []byte, timeout time.Duration) (int, error)
}

// deadlineReader is implemented by the named pipe of the HID proxy.
type deadlineReader interface {
	SetReadDeadline(t time.Time) error
}

// fragmentReader returns one report per Read. The first report is awaited
// for firstTimeout, later ones for nextTimeout; a zero timeout blocks.
// Handles supporting neither interface always block.
type fragmentReader struct {
	dev          io.Reader
	firstTimeout time.Duration
	nextTimeout  time.Duration
	count        int
}

func (r *fragmentReader) Read(p []byte) (int, error) {
	timeout := r.nextTimeout
	if r.count == 0 {
		timeout = r.firstTimeout
	}
	seq := r.count
	r.count++

	if tr, ok := r.dev.(timeoutReader); ok {
		if timeout <= 0 {
			return r.dev.Read(p)
		}

		n, err := tr.ReadWithTimeout(p, timeout)
		if errors.Is(err, hid.ErrTimeout) || (err == nil && n == 0) {
			return 0, fragmentTimeout(seq, timeout)
		}
		return n, err
	}

	if dr, ok := r.dev.(deadlineReader); ok {
		var deadline time.Time
		if timeout > 0 {
			deadline = time.Now().Add(timeout)
		}
		if err := dr.SetReadDeadline(deadline); err != nil {
			return 0, err
		}

		n, err := r.dev.Read(p)
		if timeout > 0 && isTimeout(err) {
			return 0, fragmentTimeout(seq, timeout)
		}
		return n, err
	}

	return r.dev.Read(p)
}

func fragmentTimeout(seq int, timeout time.Duration) error {
	return fmt.Errorf("%w (fragment %d, %s)", ErrFragmentTimeout, seq, timeout)
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
