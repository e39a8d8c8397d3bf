package device

import (
	"io"
	"log/slog"
	"testing"

	ghid "github.com/go-ctap/hid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func info(path string, iface int, usagePage uint16) *ghid.DeviceInfo {
	return &ghid.DeviceInfo{
		Path:         path,
		VendorID:     0x2c97,
		InterfaceNbr: iface,
		UsagePage:    usagePage,
	}
}

func TestSelectPath(t *testing.T) {
	tests := []struct {
		name     string
		devInfos []*ghid.DeviceInfo
		expected string
	}{
		{
			name: "single interface 0",
			devInfos: []*ghid.DeviceInfo{
				info("/dev/hidraw1", 1, 0xf1d0),
				info("/dev/hidraw0", 0, 0xffa0),
			},
			expected: "/dev/hidraw0",
		},
		{
			name: "macOS usage page when interface numbers are unreliable",
			devInfos: []*ghid.DeviceInfo{
				info("DevSrvsID:4294969150", -1, 0xf1d0),
				info("DevSrvsID:4294969149", -1, 0xffa0),
			},
			expected: "DevSrvsID:4294969149",
		},
		{
			name: "usage page breaks a tie between interface 0 devices",
			devInfos: []*ghid.DeviceInfo{
				info("/dev/hidraw4", 0, 0xf1d0),
				info("/dev/hidraw5", 0, 0xffa0),
			},
			expected: "/dev/hidraw5",
		},
		{
			name: "lowest path among several devices",
			devInfos: []*ghid.DeviceInfo{
				info("/dev/hidraw7", 0, 0),
				info("/dev/hidraw2", 0, 0),
				info("/dev/hidraw5", 0, 0),
			},
			expected: "/dev/hidraw2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := SelectPath(tt.devInfos, 0x2c97, discard)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, path)
		})
	}
}

func TestSelectPath_NotFound(t *testing.T) {
	for _, devInfos := range [][]*ghid.DeviceInfo{
		nil,
		{info("/dev/hidraw1", 1, 0xf1d0)},
	} {
		_, err := SelectPath(devInfos, 0x2c97, discard)
		require.ErrorIs(t, err, ErrDeviceNotFound)

		var nfErr *DeviceNotFoundError
		require.ErrorAs(t, err, &nfErr)
		assert.Equal(t, uint16(0x2c97), nfErr.VendorID)
	}
}

func TestFilterLedgerDevices(t *testing.T) {
	devInfos := []*ghid.DeviceInfo{
		info("a", 0, 0),
		info("b", 1, 0xf1d0),
		info("c", -1, 0xffa0),
	}

	filtered := FilterLedgerDevices(devInfos)
	require.Len(t, filtered, 2)
	assert.Equal(t, "a", filtered[0].Path)
	assert.Equal(t, "c", filtered[1].Path)
}
