package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/go-ctap/ledgercomm/pkg/apdu"
	"github.com/go-ctap/ledgercomm/pkg/appconfig"
	"github.com/go-ctap/ledgercomm/pkg/device"
	"github.com/go-ctap/ledgercomm/pkg/options"
	"github.com/go-ctap/ledgercomm/pkg/transport"
)

const (
	claApp              = 0xe0
	insGetConfiguration = apdu.Instruction(0x02)
)

func main() {
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelDebug)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: lvl,
	}))
	defer func() {
		_ = device.Exit()
	}()

	tr, err := transport.New(
		// Comment to talk to Speculos on 127.0.0.1:9999 instead
		options.WithHID(),
		// Uncomment on Windows to go through the HID proxy service
		//options.WithUseNamedPipes(),
		options.WithLogger(logger),
	)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = tr.Close()
	}()

	if _, err := tr.Send(apdu.NewCommand(claApp, insGetConfiguration, 0x00, 0x00, nil)); err != nil {
		panic(err)
	}

	resp, err := tr.Recv()
	if err != nil {
		panic(err)
	}
	fmt.Printf("sw: %s\n", resp.StatusWord)
	fmt.Printf("error: %s\n", resp.StatusWord.Description())
	fmt.Printf("response: %x\n", resp.Data)

	if !resp.StatusWord.IsSuccess() {
		return
	}

	cfg, err := appconfig.Decode(resp.Data)
	if err != nil {
		panic(err)
	}
	fmt.Printf("config: %s\n", cfg)
}
