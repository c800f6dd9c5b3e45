package main

import (
	"os"

	"github.com/saabsa/site-builder/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
