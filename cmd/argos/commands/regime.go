package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var regimeSamples int

// regimeCmd classifies the market regime for the watched symbols
var regimeCmd = &cobra.Command{
	Use:   "regime [symbol...]",
	Short: "심볼별 시장 레짐 분류",
	Long: `각 심볼의 현재 가격을 샘플링해 버퍼에 누적한 뒤 레짐을 출력합니다.

인자를 생략하면 ARGOS_SYMBOLS의 심볼을 사용합니다.

Example:
  go run ./cmd/argos regime
  go run ./cmd/argos regime BTCUSDT --samples 5`,
	RunE: runRegime,
}

func init() {
	rootCmd.AddCommand(regimeCmd)
	regimeCmd.Flags().IntVar(&regimeSamples, "samples", 1, "심볼당 샘플링할 가격 수")
}

func runRegime(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	symbols := args
	if len(symbols) == 0 {
		symbols = a.cfg.Symbols
	}

	ctx := context.Background()
	for _, symbol := range symbols {
		for i := 0; i < regimeSamples; i++ {
			price, err := a.source.CurrentPrice(ctx, symbol)
			if err != nil {
				fmt.Printf("%-10s price lookup failed: %v\n", symbol, err)
				break
			}
			if err := a.classifier.ObservePrice(symbol, price); err != nil {
				return err
			}
		}

		info, err := a.classifier.Classify(symbol)
		if err != nil {
			fmt.Printf("%-10s %v\n", symbol, err)
			continue
		}
		fmt.Printf("%-10s %-18s hurst=%.3f confidence=%.2f\n",
			symbol, info.Composite, info.Hurst, info.Confidence)
	}
	return nil
}
