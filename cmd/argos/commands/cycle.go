package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jaylee/argos/internal/learning"
)

var (
	cycleDryRun bool
	cycleForce  bool
)

// cycleCmd triggers one learning cycle immediately
var cycleCmd = &cobra.Command{
	Use:   "cycle",
	Short: "학습 사이클 즉시 실행",
	Long: `스케줄을 기다리지 않고 학습 사이클을 한 번 실행합니다.

--dry-run: 조정을 생성만 하고 적용하지 않음
--force:   케이던스 스케줄을 무시하고 전체 실행

Example:
  go run ./cmd/argos cycle --dry-run
  go run ./cmd/argos cycle --force`,
	RunE: runCycle,
}

func init() {
	rootCmd.AddCommand(cycleCmd)
	cycleCmd.Flags().BoolVar(&cycleDryRun, "dry-run", false, "조정을 적용하지 않고 출력만")
	cycleCmd.Flags().BoolVar(&cycleForce, "force", false, "케이던스와 무관하게 전체 실행")
}

func runCycle(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	state, err := a.controller.RunCycle(context.Background(), learning.CycleOptions{
		DryRun: cycleDryRun,
		Force:  cycleForce,
	})
	if err != nil {
		return err
	}
	if state == nil {
		fmt.Println("No cadence due. Use --force to run anyway.")
		return nil
	}

	fmt.Printf("Cycle %s finished (dry_run=%v)\n", state.CycleID, state.DryRun)
	fmt.Printf("Captured %d trades, %d blocked, %d missed\n",
		state.TradeCount, state.BlockedCount, state.MissedCount)

	if len(state.Adjustments) == 0 {
		fmt.Println("No adjustments generated.")
		return nil
	}

	fmt.Println("\nAdjustments:")
	for _, adj := range state.Adjustments {
		marker := " "
		if adj.Applied {
			marker = "*"
		}
		fmt.Printf("  %s [%-10s] %-20s %+.4f  %s\n",
			marker, adj.Target, adj.Key, adj.Change, adj.Reason)
	}
	return nil
}
