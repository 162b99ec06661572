package jobs

import (
	"context"
	"errors"

	"github.com/jaylee/argos/internal/learning"
	"github.com/jaylee/argos/pkg/logger"
)

// LearningJob triggers the learning controller on the fast cadence.
// 일간/주간 케이던스의 도래 여부는 컨트롤러가 스스로 판정한다.
type LearningJob struct {
	controller *learning.Controller
	logger     *logger.Logger
}

// NewLearningJob creates the learning-cycle job
func NewLearningJob(controller *learning.Controller, log *logger.Logger) *LearningJob {
	return &LearningJob{controller: controller, logger: log}
}

// Name returns the job name
func (j *LearningJob) Name() string {
	return "learning_cycle"
}

// Schedule returns the cron schedule (every 30 minutes, with seconds)
func (j *LearningJob) Schedule() string {
	return "0 */30 * * * *"
}

// Run executes one learning cycle when any cadence is due
func (j *LearningJob) Run(ctx context.Context) error {
	state, err := j.controller.RunCycle(ctx, learning.CycleOptions{})
	if err != nil {
		if errors.Is(err, learning.ErrCycleInProgress) {
			j.logger.Warn("learning cycle still running, skipping this tick")
			return nil
		}
		return err
	}
	if state == nil {
		return nil // 도래한 케이던스 없음
	}

	j.logger.WithFields(map[string]interface{}{
		"cycle_id":    state.CycleID,
		"trades":      state.TradeCount,
		"adjustments": len(state.Adjustments),
	}).Info("learning cycle finished")
	return nil
}
