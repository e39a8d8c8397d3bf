// Package device finds and opens Ledger devices over USB HID.
package device

import (
	"cmp"
	"context"
	"log/slog"
	"slices"

	ghid "github.com/go-ctap/hid"
	"github.com/samber/lo"
	"github.com/sstallion/go-hid"
)

// MacOSUsagePage is the usage page of the APDU interface on macOS, where the
// interface number is not reliable.
const MacOSUsagePage uint16 = 0xffa0

type ctxKey int

const (
	// CtxKeyUseNamedPipe routes enumeration and I/O through the HID proxy
	// service (Windows only).
	CtxKeyUseNamedPipe ctxKey = iota
	// CtxKeyUseCgoFreeHID uses the cgo-free HID backend (Windows only).
	CtxKeyUseCgoFreeHID
)

func ctxFlag(ctx context.Context, key ctxKey) bool {
	v, ok := ctx.Value(key).(bool)
	return ok && v
}

// Enumerate lists every HID interface of the vendor.
func Enumerate(ctx context.Context, vendorID uint16) ([]*ghid.DeviceInfo, error) {
	devInfos := make([]*ghid.DeviceInfo, 0)
	if err := enumerate(ctx, vendorID, func(info *ghid.DeviceInfo) error {
		devInfos = append(devInfos, info)
		return nil
	}); err != nil {
		return nil, err
	}

	return devInfos, nil
}

// FilterLedgerDevices keeps the interfaces that speak APDUs: interface 0, or
// the dedicated usage page on macOS.
func FilterLedgerDevices(devInfos []*ghid.DeviceInfo) []*ghid.DeviceInfo {
	return lo.Filter(devInfos, func(info *ghid.DeviceInfo, _ int) bool {
		return info.InterfaceNbr == 0 || info.UsagePage == MacOSUsagePage
	})
}

// SelectPath picks the path to open among enumerated interfaces.
//
// A single interface 0 wins. Otherwise the macOS usage page narrows the set
// when it matches anything. If several candidates remain, the lowest path is
// chosen so that the pick is stable across runs.
func SelectPath(devInfos []*ghid.DeviceInfo, vendorID uint16, logger *slog.Logger) (string, error) {
	candidates := lo.Filter(devInfos, func(info *ghid.DeviceInfo, _ int) bool {
		return info.InterfaceNbr == 0
	})
	if len(candidates) == 1 {
		return candidates[0].Path, nil
	}

	pool := candidates
	if len(pool) == 0 {
		pool = devInfos
	}
	macFiltered := lo.Filter(pool, func(info *ghid.DeviceInfo, _ int) bool {
		return info.UsagePage == MacOSUsagePage
	})
	if len(macFiltered) != 0 {
		candidates = macFiltered
	}

	switch len(candidates) {
	case 0:
		return "", &DeviceNotFoundError{VendorID: vendorID}
	case 1:
		return candidates[0].Path, nil
	}

	logger.Warn("more than one device found, picking the first one",
		"vendor_id", vendorID,
		"count", len(candidates),
	)

	paths := lo.Map(candidates, func(info *ghid.DeviceInfo, _ int) string {
		return info.Path
	})
	slices.SortFunc(paths, cmp.Compare[string])

	return paths[0], nil
}

// Exit releases resources held by hidapi. Call it once no device is open.
func Exit() error {
	return hid.Exit()
}
