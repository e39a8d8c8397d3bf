//go:build !windows

package device

import (
	"context"
	"io"

	ghid "github.com/go-ctap/hid"
	"github.com/sstallion/go-hid"
)

func enumerate(ctx context.Context, vendorID uint16, enumFn func(*ghid.DeviceInfo) error) error {
	if ctxFlag(ctx, CtxKeyUseNamedPipe) || ctxFlag(ctx, CtxKeyUseCgoFreeHID) {
		return ErrNotSupported
	}

	return hid.Enumerate(vendorID, hid.ProductIDAny, func(info *hid.DeviceInfo) error {
		return enumFn(fromHIDAPI(info))
	})
}

func OpenPath(ctx context.Context, path string) (dev io.ReadWriteCloser, err error) {
	if ctxFlag(ctx, CtxKeyUseNamedPipe) || ctxFlag(ctx, CtxKeyUseCgoFreeHID) {
		return nil, ErrNotSupported
	}

	return hid.OpenPath(path)
}
