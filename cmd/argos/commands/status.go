package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jaylee/argos/internal/contracts"
)

// statusCmd prints the current learning-core state
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "학습 코어 상태 요약",
	Long: `추적 중인 시그널, 최근 학습 사이클, 케이던스 스케줄을 출력합니다.

Example:
  go run ./cmd/argos status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	fmt.Println("=== Argos Learning Core Status ===")
	fmt.Printf("Env:             %s\n", a.cfg.Env)
	fmt.Printf("Data dir:        %s\n", a.cfg.DataDir)
	fmt.Printf("Pending signals: %d\n", a.tracker.PendingCount())

	state, err := a.controller.LastState()
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("\nNo learning cycle has run yet.")
			return nil
		}
		return err
	}

	fmt.Printf("\nLast cycle:      %s\n", state.CycleID)
	fmt.Printf("Started:         %s\n", state.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("Dry run:         %v\n", state.DryRun)
	fmt.Printf("Trades captured: %d (blocked %d, missed %d)\n",
		state.TradeCount, state.BlockedCount, state.MissedCount)
	fmt.Printf("Adjustments:     %d\n", len(state.Adjustments))
	if state.SnapshotPath != "" {
		fmt.Printf("Snapshot:        %s\n", state.SnapshotPath)
	}

	if len(state.LastRun) > 0 {
		fmt.Println("\nCadences:")
		for _, cadence := range contracts.AllCadences() {
			if at, ok := state.LastRun[cadence]; ok {
				fmt.Printf("  %-7s last run %s\n", cadence, at.Format("2006-01-02 15:04:05"))
			} else {
				fmt.Printf("  %-7s never run\n", cadence)
			}
		}
	}
	return nil
}
