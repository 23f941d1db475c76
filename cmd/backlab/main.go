package main

import (
	"os"

	"github.com/rustyeddy/backlab/cmd/backlab/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
