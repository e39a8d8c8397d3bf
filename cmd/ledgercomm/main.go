package main

import (
	"fmt"
	"os"

	"github.com/go-ctap/ledgercomm/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "ledgercomm: %v\n", err)
		os.Exit(1)
	}
}
