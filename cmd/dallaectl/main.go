package main

import (
	"os"

	"github.com/dallae-labs/dallae/backend/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
