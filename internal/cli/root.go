// Package cli implements the ledgercomm command line tool.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the command tree. Every call returns an independent
// tree with its own configuration.
func NewRootCommand() *cobra.Command {
	cfg := NewConfig()

	rootCmd := &cobra.Command{
		Use:   "ledgercomm",
		Short: "Send APDUs to a Ledger device or the Speculos emulator",
		Long: `ledgercomm exchanges raw APDUs, one per line, with a Ledger device
over USB HID or with the Speculos emulator over TCP.

Each response is printed as "<status word> <hex data>".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.ConfigFile != "" {
				if err := cfg.loadFile(cfg.ConfigFile, cmd.Flags().Changed); err != nil {
					return err
				}
			}
			return cfg.validate()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.ConfigFile, "config", "", "TOML config file")
	flags.BoolVar(&cfg.HID, "hid", false, "use HID instead of the TCP client")
	flags.StringVar(&cfg.Server, "server", cfg.Server, "IP server of the TCP client")
	flags.IntVar(&cfg.Port, "port", cfg.Port, "port of the TCP client")
	flags.StringVar(&cfg.StartsWith, "startswith", "", "only send APDUs from lines starting with this prefix")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "log every APDU to stderr")
	flags.DurationVar(&cfg.FragmentTimeout, "fragment-timeout", cfg.FragmentTimeout, "maximum wait for each HID fragment after the first")
	flags.DurationVar(&cfg.ReadTimeout, "read-timeout", 0, "maximum wait for a response, 0 waits indefinitely")
	flags.Uint16Var(&cfg.VendorID, "vendor-id", cfg.VendorID, "USB vendor id of the HID device")
	flags.StringSliceVar(&cfg.Paths, "path", nil, "HID device path, skips enumeration")

	rootCmd.AddCommand(newFileCommand(cfg))
	rootCmd.AddCommand(newStdinCommand(cfg))
	rootCmd.AddCommand(newDevicesCommand(cfg))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCommand().Execute()
}

func newLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelWarn)
	if verbose {
		lvl.Set(slog.LevelDebug)
	}

	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: lvl,
	}))
}
