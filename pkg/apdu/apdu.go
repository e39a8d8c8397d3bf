package apdu

import (
	"fmt"
	"slices"

	"github.com/samber/mo"
)

// MaxLc is the largest value the one-byte length field can carry.
const MaxLc = 0xff

// Instruction is the INS byte of a command. Applications usually declare
// their own named constants of this type.
type Instruction byte

func (i Instruction) String() string {
	return fmt.Sprintf("0x%02x", byte(i))
}

// Command is a command APDU as understood by Ledger applications.
type Command struct {
	Cla  byte
	Ins  Instruction
	P1   byte
	P2   byte
	Opt  mo.Option[byte]
	Data []byte
}

// NewCommand creates a command without the optional byte.
func NewCommand(cla byte, ins Instruction, p1, p2 byte, data []byte) *Command {
	return &Command{
		Cla:  cla,
		Ins:  ins,
		P1:   p1,
		P2:   p2,
		Opt:  mo.None[byte](),
		Data: data,
	}
}

// WithOpt returns a copy of the command carrying the optional byte.
func (c *Command) WithOpt(opt byte) *Command {
	cmd := *c
	cmd.Opt = mo.Some(opt)
	return &cmd
}

// Header packs the APDU header.
//
// Without opt the header is cla, ins, p1, p2, lc. With opt it is
// cla, ins, p1, p2, 1+lc, opt: the option byte counts as payload.
func Header(cla byte, ins Instruction, p1, p2 byte, opt mo.Option[byte], lc int) ([]byte, error) {
	if lc < 0 {
		return nil, fmt.Errorf("%w: negative length %d", ErrPayloadTooLarge, lc)
	}

	if o, ok := opt.Get(); ok {
		if 1+lc > MaxLc {
			return nil, fmt.Errorf("%w: %d bytes with option byte", ErrPayloadTooLarge, lc)
		}
		return []byte{cla, byte(ins), p1, p2, byte(1 + lc), o}, nil
	}

	if lc > MaxLc {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, lc)
	}
	return []byte{cla, byte(ins), p1, p2, byte(lc)}, nil
}

// Bytes encodes the header followed by the data.
func (c *Command) Bytes() ([]byte, error) {
	header, err := Header(c.Cla, c.Ins, c.P1, c.P2, c.Opt, len(c.Data))
	if err != nil {
		return nil, err
	}

	return slices.Concat(header, c.Data), nil
}

func (c *Command) String() string {
	s := fmt.Sprintf("CLA: %02X, INS: %s, P1: %02X, P2: %02X", c.Cla, c.Ins, c.P1, c.P2)
	if o, ok := c.Opt.Get(); ok {
		s += fmt.Sprintf(", OPT: %02X", o)
	}
	return s + fmt.Sprintf(" | Lc: %d", len(c.Data))
}
