package commands

import (
	"fmt"

	"github.com/wenhao/stockmind/backend/internal/external/anue"
	"github.com/wenhao/stockmind/backend/internal/external/histock"
	"github.com/wenhao/stockmind/backend/internal/external/ptt"
	"github.com/wenhao/stockmind/backend/internal/external/twse"
	"github.com/wenhao/stockmind/backend/internal/pipeline"
	"github.com/wenhao/stockmind/backend/internal/runlog"
	"github.com/wenhao/stockmind/backend/internal/storage"
	"github.com/wenhao/stockmind/backend/pkg/config"
	"github.com/wenhao/stockmind/backend/pkg/httputil"
	"github.com/wenhao/stockmind/backend/pkg/logger"
	"github.com/wenhao/stockmind/backend/pkg/redis"
)

// deps is the wired object graph shared by the pipeline, scheduler and
// status commands.
type deps struct {
	cfg          *config.Config
	log          *logger.Logger
	factory      *pipeline.Factory
	orchestrator *pipeline.Orchestrator
	runLog       *runlog.Writer
	redisClient  *redis.Client
}

// initDeps loads config and wires the full pipeline object graph.
// 每個外部來源各一個 HTTP client，各自帶自己的限流設定。
func initDeps() (*deps, error) {
	cfg, err := config.Load(pipelineFile)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)
	if cfg.StorageRootFromEnv {
		log.WithField("base_path", cfg.Pipeline.Storage.BasePath).
			Info("Storage root overridden from environment")
	}

	resolver, err := storage.NewResolver(cfg.Pipeline.Storage)
	if err != nil {
		return nil, err
	}

	redisClient, err := redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	politeness := cfg.Pipeline.Sources.PolitenessDelay()
	newSourceClient := func(limit redis.RateLimitConfig) *httputil.Client {
		c := httputil.New(log, politeness)
		if redisClient.Enabled() {
			c = c.WithRateLimiter(redis.NewRateLimiter(redisClient, "stockmind"), limit)
		}
		return c
	}

	twseClient := twse.NewClient(newSourceClient(redis.TWSERateLimit), log)
	histockClient := histock.NewClient(newSourceClient(redis.HiStockRateLimit), log)
	pttClient := ptt.NewClient(newSourceClient(redis.PTTRateLimit), log)
	anueClient := anue.NewClient(newSourceClient(redis.AnueRateLimit), log)

	factory := pipeline.NewFactory(
		resolver, cfg.Pipeline.Sources,
		twseClient, histockClient, pttClient, anueClient,
		log,
	)

	return &deps{
		cfg:          cfg,
		log:          log,
		factory:      factory,
		orchestrator: pipeline.NewOrchestrator(log),
		runLog:       runlog.NewWriter(cfg.Pipeline.Storage.BasePath),
		redisClient:  redisClient,
	}, nil
}

// close releases connections held by the object graph
func (d *deps) close() {
	if d.redisClient != nil {
		_ = d.redisClient.Close()
	}
}
