package main

import (
	"os"

	"github.com/rustyeddy/marketlab/cmd/marketlab/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
