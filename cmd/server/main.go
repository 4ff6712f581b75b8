package main

import (
	"os"

	"github.com/example/gemmarket/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
