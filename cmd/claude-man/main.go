package main

import (
	"os"

	"github.com/ThePuug/claude-man/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
