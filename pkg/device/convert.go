package device

import (
	ghid "github.com/go-ctap/hid"
	"github.com/sstallion/go-hid"
)

func fromHIDAPI(info *hid.DeviceInfo) *ghid.DeviceInfo {
	return &ghid.DeviceInfo{
		Path:         info.Path,
		VendorID:     info.VendorID,
		ProductID:    info.ProductID,
		SerialNbr:    info.SerialNbr,
		ReleaseNbr:   info.ReleaseNbr,
		MfrStr:       info.MfrStr,
		ProductStr:   info.ProductStr,
		UsagePage:    info.UsagePage,
		Usage:        info.Usage,
		InterfaceNbr: info.InterfaceNbr,
	}
}
