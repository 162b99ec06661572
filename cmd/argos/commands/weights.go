package commands

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jaylee/argos/internal/contracts"
	"github.com/jaylee/argos/internal/store"
)

// weightsCmd prints the current weight vector with its reasoning
var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "현재 시그널 가중치 출력",
	Long: `가중치 벡터, 최적 호라이즌, 시그널별 변경 사유를 출력합니다.

Example:
  go run ./cmd/argos weights`,
	RunE: runWeights,
}

func init() {
	rootCmd.AddCommand(weightsCmd)
}

func runWeights(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	var state contracts.WeightState
	if err := store.ReadJSON(a.paths.Weights(), &state); err != nil {
		if os.IsNotExist(err) {
			fmt.Println("No weight state yet; the learner has not run.")
			return nil
		}
		return err
	}

	// 가중치 내림차순으로 출력
	names := make([]contracts.SignalName, 0, len(state.Weights))
	for name := range state.Weights {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return state.Weights[names[i]] > state.Weights[names[j]]
	})

	fmt.Printf("Weights updated at %s (sum %.4f)\n\n",
		state.UpdatedAt.Format("2006-01-02 15:04:05"), state.Weights.Sum())
	for _, name := range names {
		horizon := state.BestHorizon[name]
		fmt.Printf("%-16s %.4f", name, state.Weights[name])
		if horizon != "" {
			fmt.Printf("  best@%-4s", horizon)
		}
		if reason, ok := state.Reasoning[name]; ok {
			fmt.Printf("  %s", reason)
		}
		fmt.Println()
	}

	if len(state.InsufficientData) > 0 {
		fmt.Printf("\nInsufficient data: %v\n", state.InsufficientData)
	}
	return nil
}
