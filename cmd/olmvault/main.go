package main

import (
	"os"

	"olmvault/cmd/olmvault/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
