package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-ctap/ledgercomm/pkg/device"
	"github.com/go-ctap/ledgercomm/pkg/options"
	"github.com/go-ctap/ledgercomm/pkg/sugar"
)

func newDevicesCommand(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List connected Ledger HID devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer func() {
				_ = device.Exit()
			}()

			devInfos, err := sugar.EnumerateLedgerDevices(
				options.WithLogger(newLogger(cmd, cfg.Verbose)),
				options.WithContext(cmd.Context()),
				options.WithVendorID(cfg.VendorID),
			)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, info := range devInfos {
				if _, err := fmt.Fprintf(out, "%s\t%04x:%04x\t%s\t%s\n",
					info.Path, info.VendorID, info.ProductID, info.ProductStr, info.SerialNbr,
				); err != nil {
					return err
				}
			}

			return nil
		},
	}
}
