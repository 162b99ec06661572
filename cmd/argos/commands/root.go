package commands

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "argos",
	Short: "Argos - 적응형 시그널 학습 코어",
	Long: `Argos Unified CLI

시그널 추적부터 가중치 학습, 레짐 분류까지의 적응 루프를 관리합니다.

Usage:
  go run ./cmd/argos [command]

Examples:
  go run ./cmd/argos start
  go run ./cmd/argos status
  go run ./cmd/argos cycle --dry-run
  go run ./cmd/argos rollback`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}
