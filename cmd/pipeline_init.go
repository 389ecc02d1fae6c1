package main

import (
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/cartscope/cartscope-cli/internal/analyze"
	"github.com/cartscope/cartscope-cli/internal/compare"
	"github.com/cartscope/cartscope-cli/internal/fallback"
	"github.com/cartscope/cartscope-cli/internal/fetch"
	"github.com/cartscope/cartscope-cli/internal/pipeline"
	"github.com/cartscope/cartscope-cli/internal/platform"
	anthropicpkg "github.com/cartscope/cartscope-cli/pkg/anthropic"
	"github.com/cartscope/cartscope-cli/pkg/marketdata"
	"github.com/cartscope/cartscope-cli/pkg/serper"
)

// pipelineEnv holds the initialized clients and the pipeline shared by the
// analyze/compare/serve commands.
type pipelineEnv struct {
	Registry   *platform.Registry
	Pipeline   *pipeline.Pipeline
	Comparator *compare.Comparator
}

// initPipeline builds every stage from config. Optional services degrade to
// nil rather than failing startup: analyzers cope with missing clients.
func initPipeline() (*pipelineEnv, error) {
	if err := cfg.Validate("analysis"); err != nil {
		return nil, err
	}

	registry, err := platform.LoadRegistry(cfg.Platforms.ProfilePath)
	if err != nil {
		return nil, eris.Wrap(err, "load platform profiles")
	}

	fetcher := fetch.NewHTTPFetcher(fetch.Options{
		UserAgent:     cfg.Fetch.UserAgent,
		Timeout:       time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		RespectRobots: cfg.Fetch.RespectRobots,
	})

	serperOpts := []serper.Option{serper.WithCountry(cfg.Serper.Country)}
	if cfg.Serper.BaseURL != "" {
		serperOpts = append(serperOpts, serper.WithBaseURL(cfg.Serper.BaseURL))
	}
	searchClient := serper.NewClient(cfg.Serper.Key, serperOpts...)

	var market marketdata.Client
	if cfg.MarketData.BaseURL != "" {
		market = marketdata.NewClient(cfg.MarketData.BaseURL, cfg.MarketData.Key)
		zap.L().Info("market data service enabled")
	} else {
		zap.L().Debug("CARTSCOPE_MARKETDATA_BASE_URL not set, price analysis uses discount signals only")
	}

	var summarizer analyze.Summarizer
	if cfg.Anthropic.Key != "" {
		summarizer = anthropicpkg.NewSummarizer(anthropicpkg.NewClient(cfg.Anthropic.Key), cfg.Anthropic.Model)
		zap.L().Info("review summarization enabled", zap.String("model", cfg.Anthropic.Model))
	} else {
		zap.L().Debug("CARTSCOPE_ANTHROPIC_KEY not set, review analysis uses ratings only")
	}

	analyzers := []analyze.Analyzer{
		analyze.NewPriceAnalyzer(market),
		analyze.NewReviewAnalyzer(summarizer),
		analyze.NewSpecAnalyzer(),
	}

	agent := fallback.NewAgent(searchClient, registry)
	p := pipeline.New(registry, fetcher, agent, analyzers,
		time.Duration(cfg.Pipeline.DeadlineSecs)*time.Second)

	return &pipelineEnv{
		Registry:   registry,
		Pipeline:   p,
		Comparator: compare.New(searchClient, registry),
	}, nil
}
