package main

import (
	"os"

	"github.com/synca-ui/builder-quantum-landing-sub001/cmd/sitectl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
