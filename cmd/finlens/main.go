package main

import (
	"os"

	"github.com/finlens/backend/cmd/finlens/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
