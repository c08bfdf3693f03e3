package main

import (
	"os"

	"github.com/changekit/changekit/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
