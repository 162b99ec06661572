package weights

import (
	"os"

	"github.com/jaylee/argos/internal/contracts"
	"github.com/jaylee/argos/internal/store"
)

// Repository persists the Weight Learner's owned state
type Repository interface {
	Load() (*contracts.WeightState, error)
	Save(state *contracts.WeightState) error
}

// FileRepository stores WeightState as one atomic JSON artifact
type FileRepository struct {
	path string
}

// NewFileRepository creates a weight store at path
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

// Load reads the current state; a missing file yields the uniform default
func (r *FileRepository) Load() (*contracts.WeightState, error) {
	var state contracts.WeightState
	if err := store.ReadJSON(r.path, &state); err != nil {
		if os.IsNotExist(err) {
			return contracts.NewWeightState(), nil
		}
		return nil, err
	}
	if state.Weights == nil {
		state.Weights = contracts.DefaultWeights()
	}
	if state.Reasoning == nil {
		state.Reasoning = make(map[contracts.SignalName]string)
	}
	return &state, nil
}

// Save writes the state atomically
func (r *FileRepository) Save(state *contracts.WeightState) error {
	return store.WriteJSONAtomic(r.path, state)
}
