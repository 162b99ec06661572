package commands

import (
	"fmt"

	"github.com/jaylee/argos/internal/history"
	"github.com/jaylee/argos/internal/learnconfig"
	"github.com/jaylee/argos/internal/learning"
	"github.com/jaylee/argos/internal/outcome"
	"github.com/jaylee/argos/internal/pricefeed"
	"github.com/jaylee/argos/internal/regime"
	"github.com/jaylee/argos/internal/store"
	"github.com/jaylee/argos/internal/weights"
	"github.com/jaylee/argos/pkg/config"
	"github.com/jaylee/argos/pkg/database"
	"github.com/jaylee/argos/pkg/logger"
	"github.com/jaylee/argos/pkg/redis"
)

// app holds every wired component of the learning core.
// 명령어들은 이 구조체를 통해서만 컴포넌트에 접근한다.
type app struct {
	cfg   *config.Config
	log   *logger.Logger
	paths store.Paths

	db    *database.DB  // nil 가능 (DB 비활성화)
	redis *redis.Client // no-op 가능 (Redis 비활성화)

	source     pricefeed.Source
	tracker    *outcome.Tracker
	classifier *regime.Classifier
	learner    *weights.Learner
	controller *learning.Controller
}

// buildApp assembles the full component graph from the environment
func buildApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log := logger.New(cfg)
	paths := store.NewPaths(cfg.DataDir)

	a := &app{cfg: cfg, log: log, paths: paths}

	// --- Infrastructure ------------------------------------------------
	if cfg.Database.Enabled {
		db, err := database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		a.db = db
	}

	redisClient, err := redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	a.redis = redisClient

	// --- Price feed ----------------------------------------------------
	upstream := pricefeed.NewBinanceSource(cfg.PriceFeed.APIKey, cfg.PriceFeed.SecretKey)
	opts := pricefeed.CachedSourceOptions{
		TTL:           cfg.PriceFeed.CacheTTL,
		LookupTimeout: cfg.PriceFeed.LookupTimeout,
		RatePerSecond: cfg.PriceFeed.RatePerSecond,
	}
	if redisClient.Enabled() {
		opts.RemoteCache = redis.NewCache(redisClient, "argos")
	}
	a.source = pricefeed.NewCachedSource(upstream, opts, log.Zerolog())

	// --- Outcome tracker -----------------------------------------------
	outcomeLog, err := outcome.NewFileOutcomeLog(paths.OutcomeLog())
	if err != nil {
		return nil, fmt.Errorf("open outcome log: %w", err)
	}
	tracker, err := outcome.NewTracker(
		a.source,
		outcome.NewFilePendingStore(paths.PendingSignals()),
		outcomeLog,
		outcome.NewFileStatsStore(paths.SignalStats()),
		log.Zerolog(),
	)
	if err != nil {
		return nil, fmt.Errorf("restore outcome tracker: %w", err)
	}
	a.tracker = tracker

	// --- Regime classifier ---------------------------------------------
	classifier, err := regime.NewClassifier(paths, log.Zerolog())
	if err != nil {
		return nil, fmt.Errorf("restore regime classifier: %w", err)
	}
	a.classifier = classifier

	// --- Learning ------------------------------------------------------
	learnCfg, err := learnconfig.LoadOrDefault(cfg.LearnConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load learning config: %w", err)
	}

	a.learner = weights.NewLearner(
		outcomeLog,
		weights.NewFileRepository(paths.Weights()),
		learnCfg,
		log.Zerolog(),
	)

	var trades learning.TradeSource
	if a.db != nil {
		trades = history.NewRepository(a.db.Pool)
	} else {
		fileSource, err := history.NewFileSource(paths.HistoryDir())
		if err != nil {
			return nil, fmt.Errorf("open history files: %w", err)
		}
		trades = fileSource
	}

	controller, err := learning.NewController(paths, trades, a.learner, learnCfg, log.Zerolog())
	if err != nil {
		return nil, fmt.Errorf("build learning controller: %w", err)
	}
	a.controller = controller

	return a, nil
}

// close releases the app's external connections
func (a *app) close() {
	if a.classifier != nil {
		if err := a.classifier.Flush(); err != nil {
			a.log.WithError(err).Warn("failed to flush regime state")
		}
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}
