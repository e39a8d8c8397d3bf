package cli

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/go-ctap/ledgercomm/pkg/options"
	"github.com/go-ctap/ledgercomm/pkg/transport"
)

// Config holds the CLI settings. Values from the TOML file given with
// --config apply only to flags that were not set on the command line.
type Config struct {
	ConfigFile string

	HID        bool
	Server     string
	Port       int
	StartsWith string
	Verbose    bool

	FragmentTimeout time.Duration
	ReadTimeout     time.Duration

	VendorID uint16
	Paths    []string
}

func NewConfig() *Config {
	return &Config{
		Server:          options.DefaultServer,
		Port:            options.DefaultPort,
		FragmentTimeout: options.DefaultFragmentTimeout,
		VendorID:        options.DefaultVendorID,
	}
}

type fileConfig struct {
	Interface       string   `toml:"interface"`
	Server          string   `toml:"server"`
	Port            int      `toml:"port"`
	StartsWith      string   `toml:"startswith"`
	Verbose         bool     `toml:"verbose"`
	FragmentTimeout string   `toml:"fragment_timeout"`
	ReadTimeout     string   `toml:"read_timeout"`
	VendorID        uint16   `toml:"vendor_id"`
	Paths           []string `toml:"paths"`
}

// loadFile merges the TOML file at path into c. changed reports whether a
// flag was given explicitly; such flags win over the file.
func (c *Config) loadFile(path string, changed func(name string) bool) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("interface") && !changed("hid") {
		iface, err := transport.ParseInterface(strings.TrimSpace(raw.Interface))
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		c.HID = iface == transport.InterfaceHID
	}

	if meta.IsDefined("server") && !changed("server") {
		c.Server = strings.TrimSpace(raw.Server)
	}

	if meta.IsDefined("port") && !changed("port") {
		c.Port = raw.Port
	}

	if meta.IsDefined("startswith") && !changed("startswith") {
		c.StartsWith = raw.StartsWith
	}

	if meta.IsDefined("verbose") && !changed("verbose") {
		c.Verbose = raw.Verbose
	}

	if meta.IsDefined("fragment_timeout") && !changed("fragment-timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.FragmentTimeout))
		if err != nil {
			return fmt.Errorf("parse fragment_timeout: %w", err)
		}
		c.FragmentTimeout = d
	}

	if meta.IsDefined("read_timeout") && !changed("read-timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.ReadTimeout))
		if err != nil {
			return fmt.Errorf("parse read_timeout: %w", err)
		}
		c.ReadTimeout = d
	}

	if meta.IsDefined("vendor_id") && !changed("vendor-id") {
		c.VendorID = raw.VendorID
	}

	if meta.IsDefined("paths") && !changed("path") {
		c.Paths = raw.Paths
	}

	return nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 0xffff {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.FragmentTimeout <= 0 {
		return fmt.Errorf("fragment timeout must be positive, got %s", c.FragmentTimeout)
	}
	if c.ReadTimeout < 0 {
		return fmt.Errorf("read timeout must not be negative, got %s", c.ReadTimeout)
	}
	return nil
}

// Options converts c into transport options.
func (c *Config) Options(logger *slog.Logger) []options.Option {
	opts := []options.Option{
		options.WithLogger(logger),
		options.WithServer(c.Server, c.Port),
		options.WithVendorID(c.VendorID),
		options.WithFragmentTimeout(c.FragmentTimeout),
		options.WithReadTimeout(c.ReadTimeout),
	}
	if c.HID {
		opts = append(opts, options.WithHID())
	}
	if len(c.Paths) > 0 {
		opts = append(opts, options.WithPaths(c.Paths...))
	}

	return opts
}
