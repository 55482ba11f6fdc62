package main

import (
	"os"

	"github.com/rustyeddy/barlab/cmd/barlab/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
