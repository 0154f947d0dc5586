package main

import (
	"os"

	"planeja/cmd/planeja-cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
