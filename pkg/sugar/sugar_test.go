package sugar

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	ghid "github.com/go-ctap/hid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-ctap/ledgercomm/pkg/device"
	"github.com/go-ctap/ledgercomm/pkg/options"
)

func stubEnumerate(t *testing.T, fn func(ctx context.Context, vendorID uint16) ([]*ghid.DeviceInfo, error)) {
	t.Helper()

	orig := enumerate
	enumerate = fn
	t.Cleanup(func() {
		enumerate = orig
	})
}

func TestEnumerateLedgerDevices(t *testing.T) {
	var gotVendor uint16
	var gotNamedPipe any
	stubEnumerate(t, func(ctx context.Context, vendorID uint16) ([]*ghid.DeviceInfo, error) {
		gotVendor = vendorID
		gotNamedPipe = ctx.Value(device.CtxKeyUseNamedPipe)
		return []*ghid.DeviceInfo{
			{Path: "/dev/hidraw4", InterfaceNbr: 0},
			{Path: "/dev/hidraw2", InterfaceNbr: 1},
			{Path: "/dev/hidraw1", InterfaceNbr: 0},
			{Path: "mac-1", InterfaceNbr: -1, UsagePage: device.MacOSUsagePage},
		}, nil
	})

	devInfos, err := EnumerateLedgerDevices(
		options.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		options.WithVendorID(0x1234),
		options.WithUseNamedPipes(),
	)
	require.NoError(t, err)

	assert.Equal(t, uint16(0x1234), gotVendor)
	assert.Equal(t, true, gotNamedPipe)
	assert.Equal(t, []string{"/dev/hidraw1", "/dev/hidraw4", "mac-1"}, lo.Map(devInfos, func(info *ghid.DeviceInfo, _ int) string {
		return info.Path
	}))
}

func TestEnumerateLedgerDevices_Error(t *testing.T) {
	boom := errors.New("boom")
	stubEnumerate(t, func(context.Context, uint16) ([]*ghid.DeviceInfo, error) {
		return nil, boom
	})

	_, err := EnumerateLedgerDevices()
	require.ErrorIs(t, err, boom)
}
