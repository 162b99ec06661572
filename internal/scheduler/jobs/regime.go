package jobs

import (
	"context"

	"github.com/jaylee/argos/internal/pricefeed"
	"github.com/jaylee/argos/internal/regime"
	"github.com/jaylee/argos/pkg/logger"
)

// RegimeSampleJob feeds the regime classifier with fresh prices for
// every watched symbol.
type RegimeSampleJob struct {
	source     pricefeed.Source
	classifier *regime.Classifier
	symbols    []string
	logger     *logger.Logger
}

// NewRegimeSampleJob creates the price-sampling job
func NewRegimeSampleJob(source pricefeed.Source, classifier *regime.Classifier, symbols []string, log *logger.Logger) *RegimeSampleJob {
	return &RegimeSampleJob{
		source:     source,
		classifier: classifier,
		symbols:    symbols,
		logger:     log,
	}
}

// Name returns the job name
func (j *RegimeSampleJob) Name() string {
	return "regime_sampling"
}

// Schedule returns the cron schedule (every 30 seconds)
func (j *RegimeSampleJob) Schedule() string {
	return "*/30 * * * * *"
}

// Run samples one price per symbol into the classifier buffers.
// 한 심볼의 조회 실패가 나머지 심볼을 막지 않는다.
func (j *RegimeSampleJob) Run(ctx context.Context) error {
	for _, symbol := range j.symbols {
		price, err := j.source.CurrentPrice(ctx, symbol)
		if err != nil {
			j.logger.WithError(err).WithField("symbol", symbol).Warn("price sample failed")
			continue
		}
		if err := j.classifier.ObservePrice(symbol, price); err != nil {
			j.logger.WithError(err).WithField("symbol", symbol).Warn("price sample rejected")
		}
	}
	return nil
}
