package main

import (
	"os"

	"github.com/jaylee/argos/cmd/argos/commands"
)

// main is the entry point for the Argos CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/argos [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
