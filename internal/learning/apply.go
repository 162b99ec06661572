package learning

import (
	"context"
	"fmt"
	"os"

	"github.com/jaylee/argos/internal/contracts"
	"github.com/jaylee/argos/internal/store"
)

// apply writes the generated artifacts over the live configuration.
// 스냅샷이 이미 확보된 뒤에만 호출된다.
func (c *Controller) apply(ctx context.Context, state *contracts.LearningState, gen *generated) error {
	if len(gen.Kills) > 0 {
		merged, err := c.mergeKillCombos(gen.Kills)
		if err != nil {
			return err
		}
		if err := store.WriteJSONAtomic(c.paths.KillCombos(), merged); err != nil {
			return fmt.Errorf("write kill combos: %w", err)
		}
	}

	if gen.Sizing != nil {
		if err := store.WriteJSONAtomic(c.paths.Sizing(), gen.Sizing); err != nil {
			return fmt.Errorf("write sizing map: %w", err)
		}
	}

	for i := range state.Adjustments {
		state.Adjustments[i].Applied = true
	}

	// 가중치 재계산은 일간/주간 케이던스에서만 수행
	daily := hasCadence(state.DueCadences, contracts.CadenceDaily) ||
		hasCadence(state.DueCadences, contracts.CadenceWeekly)
	if daily && c.weights != nil {
		ws, err := c.weights.UpdateWeights(ctx)
		if err != nil {
			return fmt.Errorf("update weights: %w", err)
		}
		state.Adjustments = append(state.Adjustments, contracts.Adjustment{
			Target:     contracts.TargetWeight,
			Key:        "vector",
			Reason:     fmt.Sprintf("recalibrated from outcome history, %d signals below sample floor", len(ws.InsufficientData)),
			Confidence: 1.0,
			Applied:    true,
		})
	}

	return nil
}

// mergeKillCombos folds new kills into the persisted list, replacing
// stale entries for the same combo.
func (c *Controller) mergeKillCombos(kills []contracts.KillCombo) ([]contracts.KillCombo, error) {
	var existing []contracts.KillCombo
	if err := store.ReadJSON(c.paths.KillCombos(), &existing); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load kill combos: %w", err)
	}

	byCombo := make(map[contracts.ComboKey]contracts.KillCombo, len(existing)+len(kills))
	for _, k := range existing {
		byCombo[k.Combo] = k
	}
	for _, k := range kills {
		byCombo[k.Combo] = k
	}

	merged := make([]contracts.KillCombo, 0, len(byCombo))
	for _, k := range byCombo {
		merged = append(merged, k)
	}
	return merged, nil
}
