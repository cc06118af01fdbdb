package main

import (
	"os"

	"github.com/park285/oware-session/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
