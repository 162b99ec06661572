package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rollbackSnapshot string

// rollbackCmd restores the learning artifacts from a snapshot
var rollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "학습 산출물을 스냅샷으로 복원",
	Long: `가중치, 억제 콤보, 학습 상태를 적용 직전 스냅샷으로 되돌립니다.

스냅샷을 지정하지 않으면 가장 최근 스냅샷을 사용합니다.

Example:
  go run ./cmd/argos rollback
  go run ./cmd/argos rollback --snapshot data/snapshots/20250610_120000`,
	RunE: runRollback,
}

func init() {
	rootCmd.AddCommand(rollbackCmd)
	rollbackCmd.Flags().StringVar(&rollbackSnapshot, "snapshot", "", "복원할 스냅샷 디렉토리 (기본: 최신)")
}

func runRollback(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.controller.Rollback(rollbackSnapshot); err != nil {
		return err
	}

	if rollbackSnapshot == "" {
		fmt.Println("Rolled back to the latest snapshot.")
	} else {
		fmt.Printf("Rolled back to %s\n", rollbackSnapshot)
	}
	return nil
}
