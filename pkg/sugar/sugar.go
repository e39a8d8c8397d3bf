package sugar

import (
	"context"
	"slices"
	"strings"

	ghid "github.com/go-ctap/hid"

	"github.com/go-ctap/ledgercomm/pkg/device"
	"github.com/go-ctap/ledgercomm/pkg/options"
)

var enumerate = device.Enumerate

// EnumerateLedgerDevices lists the APDU interfaces of every connected device
// of the configured vendor, sorted by path.
func EnumerateLedgerDevices(opts ...options.Option) ([]*ghid.DeviceInfo, error) {
	oo := options.NewOptions(opts...)

	ctx := context.WithValue(oo.Context, device.CtxKeyUseNamedPipe, oo.UseNamedPipe)
	ctx = context.WithValue(ctx, device.CtxKeyUseCgoFreeHID, oo.UseCgoFreeHID)

	devInfos, err := enumerate(ctx, oo.VendorID)
	if err != nil {
		return nil, err
	}

	devInfos = device.FilterLedgerDevices(devInfos)
	slices.SortFunc(devInfos, func(a, b *ghid.DeviceInfo) int {
		return strings.Compare(a.Path, b.Path)
	})
	oo.Logger.Debug("Ledger devices enumerated", "count", len(devInfos))

	return devInfos, nil
}
