package device

import (
	"errors"
	"fmt"
)

var (
	ErrDeviceNotFound = errors.New("device: no matching device found")
	ErrNotSupported   = errors.New("device: not supported")
)

// DeviceNotFoundError is returned when enumeration yields no usable device
// for the vendor id.
type DeviceNotFoundError struct {
	VendorID uint16
}

func (e *DeviceNotFoundError) Error() string {
	return fmt.Sprintf("device: can't find device with vendor id %#04x", e.VendorID)
}

func (e *DeviceNotFoundError) Unwrap() error {
	return ErrDeviceNotFound
}
