package main

import (
	"os"

	"github.com/rustyeddy/swapbot/cmd/swapbot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
