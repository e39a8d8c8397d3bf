package device

import (
	"context"
	"io"

	"github.com/Microsoft/go-winio"
	"github.com/fxamacker/cbor/v2"
	"github.com/sstallion/go-hid"

	"github.com/go-ctap/ledgercomm/pkg/hidproxy"
	cgofreehid "github.com/go-ctap/hid"
)

func enumerate(ctx context.Context, vendorID uint16, enumFn func(*cgofreehid.DeviceInfo) error) error {
	if ctxFlag(ctx, CtxKeyUseNamedPipe) {
		dev, err := winio.DialPipeContext(ctx, hidproxy.NamedPipePath)
		if err != nil {
			return err
		}
		defer func() {
			_ = dev.Close()
		}()

		msg, err := hidproxy.NewMessage(hidproxy.CommandEnumerate, vendorID)
		if err != nil {
			return err
		}

		if _, err := msg.WriteTo(dev); err != nil {
			return err
		}

		msg, err = hidproxy.ParseMessage(dev)
		if err != nil {
			return err
		}

		devInfos := make([]*hid.DeviceInfo, 0)
		if err := cbor.Unmarshal(msg.Data, &devInfos); err != nil {
			return err
		}

		for _, info := range devInfos {
			if err := enumFn(fromHIDAPI(info)); err != nil {
				return err
			}
		}
		return nil
	}

	if ctxFlag(ctx, CtxKeyUseCgoFreeHID) {
		for devInfo, err := range cgofreehid.Enumerate() {
			if err != nil {
				return err
			}
			if devInfo.VendorID != vendorID {
				continue
			}

			if err := enumFn(devInfo); err != nil {
				return err
			}
		}
		return nil
	}

	return hid.Enumerate(vendorID, hid.ProductIDAny, func(info *hid.DeviceInfo) error {
		return enumFn(fromHIDAPI(info))
	})
}

func OpenPath(ctx context.Context, path string) (dev io.ReadWriteCloser, err error) {
	if ctxFlag(ctx, CtxKeyUseNamedPipe) {
		dev, err := winio.DialPipeContext(ctx, hidproxy.NamedPipePath)
		if err != nil {
			return nil, err
		}

		pMsg, err := hidproxy.NewMessage(hidproxy.CommandStart, path)
		if err != nil {
			_ = dev.Close()
			return nil, err
		}

		if _, err := pMsg.WriteTo(dev); err != nil {
			_ = dev.Close()
			return nil, err
		}

		return dev, nil
	}

	if ctxFlag(ctx, CtxKeyUseCgoFreeHID) {
		return cgofreehid.OpenPath(path)
	}

	return hid.OpenPath(path)
}
