package options

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-ctap/ledgercomm/pkg/metrics"
)

const (
	DefaultInterface       = "tcp"
	DefaultServer          = "127.0.0.1"
	DefaultPort            = 9999
	DefaultVendorID        = 0x2c97
	DefaultFragmentTimeout = time.Second
	DefaultDialTimeout     = 10 * time.Second
)

type Options struct {
	Logger  *slog.Logger
	Context context.Context
	Metrics *metrics.Collector

	// Interface selects the link: "hid" or "tcp".
	Interface string

	// TCP
	Server      string
	Port        int
	DialTimeout time.Duration

	// HID
	VendorID      uint16
	Paths         []string
	UseNamedPipe  bool
	UseCgoFreeHID bool
	// FragmentTimeout bounds the wait for every HID fragment after the first.
	FragmentTimeout time.Duration

	// ReadTimeout bounds the wait for a response; zero waits indefinitely.
	ReadTimeout time.Duration
}

type Option func(*Options)

func WithLogger(logger *slog.Logger) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

func WithContext(ctx context.Context) Option {
	return func(opts *Options) {
		opts.Context = ctx
	}
}

func WithMetrics(collector *metrics.Collector) Option {
	return func(opts *Options) {
		opts.Metrics = collector
	}
}

func WithInterface(iface string) Option {
	return func(opts *Options) {
		opts.Interface = iface
	}
}

// WithHID is a shorthand for WithInterface("hid").
func WithHID() Option {
	return WithInterface("hid")
}

func WithServer(server string, port int) Option {
	return func(opts *Options) {
		opts.Server = server
		opts.Port = port
	}
}

func WithDialTimeout(timeout time.Duration) Option {
	return func(opts *Options) {
		opts.DialTimeout = timeout
	}
}

func WithVendorID(vid uint16) Option {
	return func(opts *Options) {
		opts.VendorID = vid
	}
}

// WithPaths skips enumeration and opens the first path.
func WithPaths(paths ...string) Option {
	return func(opts *Options) {
		opts.Paths = paths
	}
}

func WithUseNamedPipes() Option {
	return func(opts *Options) {
		opts.UseNamedPipe = true
	}
}

func WithUseCgoFreeHID() Option {
	return func(opts *Options) {
		opts.UseCgoFreeHID = true
	}
}

func WithFragmentTimeout(timeout time.Duration) Option {
	return func(opts *Options) {
		opts.FragmentTimeout = timeout
	}
}

func WithReadTimeout(timeout time.Duration) Option {
	return func(opts *Options) {
		opts.ReadTimeout = timeout
	}
}

func NewOptions(opts ...Option) *Options {
	oo := &Options{
		Logger:          slog.Default(),
		Context:         context.Background(),
		Interface:       DefaultInterface,
		Server:          DefaultServer,
		Port:            DefaultPort,
		DialTimeout:     DefaultDialTimeout,
		VendorID:        DefaultVendorID,
		FragmentTimeout: DefaultFragmentTimeout,
	}

	for _, opt := range opts {
		opt(oo)
	}

	return oo
}
