package main

import (
	"os"

	"github.com/cybermatrixco/strand/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
