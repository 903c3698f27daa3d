package main

import (
	"os"

	"github.com/westmarch-io/westmarch/cmd/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
