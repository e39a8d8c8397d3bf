// Package appconfig decodes the configuration returned by a Ledger app's
// get-configuration instruction.
package appconfig

import (
	"errors"
	"fmt"
)

// ResponseSize is the number of bytes the decoder consumes.
const ResponseSize = 6

const flagDataActivated = 0x01

var ErrShortResponse = errors.New("appconfig: short response")

type Config struct {
	DataActivated bool
	AccountIndex  byte
	AddressIndex  byte
	Version       string
}

// Decode reads the flag byte, the account and address indices and the
// three version components. Trailing bytes are ignored.
func Decode(resp []byte) (*Config, error) {
	if len(resp) < ResponseSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrShortResponse, len(resp), ResponseSize)
	}

	return &Config{
		DataActivated: resp[0] == flagDataActivated,
		AccountIndex:  resp[1],
		AddressIndex:  resp[2],
		Version:       fmt.Sprintf("%d.%d.%d", resp[3], resp[4], resp[5]),
	}, nil
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"data activated: %t, account index: %d, address index: %d, version: %s",
		c.DataActivated,
		c.AccountIndex,
		c.AddressIndex,
		c.Version,
	)
}
