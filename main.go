package main

import (
	"os"

	"github.com/guilhermexp/LifeBetter-sub001/pkg/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = ""

func main() {
	// Cobra has already printed the error.
	if err := cli.NewRootCmd(version).Execute(); err != nil {
		os.Exit(1)
	}
}
