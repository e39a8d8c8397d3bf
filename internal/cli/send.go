package cli

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-ctap/ledgercomm/pkg/apdu"
	"github.com/go-ctap/ledgercomm/pkg/device"
	"github.com/go-ctap/ledgercomm/pkg/transport"
)

func newFileCommand(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "file <path>",
		Short: "Send APDUs from a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func() {
				_ = f.Close()
			}()

			return exchangeLines(cmd, cfg, f)
		},
	}
}

func newStdinCommand(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "stdin",
		Short: "Send APDUs from standard input",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return exchangeLines(cmd, cfg, cmd.InOrStdin())
		},
	}
}

// exchangeLines opens one transport and exchanges every line of r, stopping
// at the first failure.
func exchangeLines(cmd *cobra.Command, cfg *Config, r io.Reader) error {
	logger := newLogger(cmd, cfg.Verbose)
	if cfg.HID {
		defer func() {
			_ = device.Exit()
		}()
	}

	opts := cfg.Options(logger)
	tr, err := transport.New(opts...)
	if err != nil {
		return err
	}
	defer func() {
		_ = tr.Close()
	}()

	out := cmd.OutOrStdout()
	for line, err := range Lines(r, cfg.StartsWith) {
		if err != nil {
			return err
		}

		resp, err := tr.ExchangeHex(line)
		if err != nil {
			return fmt.Errorf("exchange %q: %w", line, err)
		}
		// Lines without any hex digit send nothing.
		if resp == nil {
			continue
		}

		if _, err := fmt.Fprintln(out, formatResponse(resp)); err != nil {
			return err
		}
	}

	return nil
}

func formatResponse(resp *apdu.Response) string {
	if len(resp.Data) == 0 {
		return resp.StatusWord.String()
	}
	return resp.StatusWord.String() + " " + hex.EncodeToString(resp.Data)
}
