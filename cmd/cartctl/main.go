package main

import (
	"os"

	"github.com/max-strong-1/-milestone-voice-agent/cmd/cartctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
