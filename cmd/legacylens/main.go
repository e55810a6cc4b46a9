// Package main is the entry point for the legacylens CLI.
package main

import (
	"os"

	"github.com/huangsam/legacylens/cmd"
	"github.com/huangsam/legacylens/internal/contract"
)

func main() {
	err := cmd.Execute()
	cmd.Shutdown()
	if err != nil {
		contract.Logger.WithError(err).Error("Command failed")
		os.Exit(1)
	}
}
