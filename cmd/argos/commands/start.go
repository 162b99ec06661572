package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jaylee/argos/internal/scheduler"
	"github.com/jaylee/argos/internal/scheduler/jobs"
)

// startCmd runs the learning core as a long-lived daemon
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "학습 코어 데몬 시작",
	Long: `시그널 해결, 레짐 샘플링, 학습 사이클 스케줄러를 시작합니다.

스케줄:
- outcome_resolution: 매 분
- regime_sampling:    30초마다
- learning_cycle:     30분마다 (케이던스 도래 시에만 실행)

Example:
  go run ./cmd/argos start`,
	RunE: runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	a.log.WithFields(map[string]interface{}{
		"env":      a.cfg.Env,
		"data_dir": a.cfg.DataDir,
		"symbols":  a.cfg.Symbols,
		"database": a.cfg.Database.Enabled,
	}).Info("argos learning core starting")

	sched := scheduler.New(a.log)
	for _, job := range []scheduler.Job{
		jobs.NewResolutionJob(a.tracker, a.log),
		jobs.NewRegimeSampleJob(a.source, a.classifier, a.cfg.Symbols, a.log),
		jobs.NewLearningJob(a.controller, a.log),
	} {
		if err := sched.AddJob(job); err != nil {
			return fmt.Errorf("register job %s: %w", job.Name(), err)
		}
	}

	sched.Start()

	// Ctrl+C / SIGTERM까지 대기
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan

	a.log.WithField("signal", sig.String()).Info("shutdown signal received")
	sched.Stop()
	return nil
}
