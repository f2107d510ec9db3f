// cmd/databrain/main.go

package main

import (
	"os"

	"creatorpulse/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
