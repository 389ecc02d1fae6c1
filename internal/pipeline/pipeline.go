// Package pipeline orchestrates the link analysis flow: classification,
// fetch, extraction, fallback search, analysis fan-out and synthesis.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/cartscope/cartscope-cli/internal/analyze"
	"github.com/cartscope/cartscope-cli/internal/extract"
	"github.com/cartscope/cartscope-cli/internal/fallback"
	"github.com/cartscope/cartscope-cli/internal/fetch"
	"github.com/cartscope/cartscope-cli/internal/model"
	"github.com/cartscope/cartscope-cli/internal/platform"
)

// DefaultDeadline bounds one request end to end.
const DefaultDeadline = 45 * time.Second

// state tracks where a request is in its lifecycle, for logging.
type state string

const (
	stateValidating  state = "validating"
	stateFetching    state = "fetching"
	stateExtracting  state = "extracting"
	stateFallingBack state = "falling_back"
	stateAnalyzing   state = "analyzing"
	stateDone        state = "done"
)

// Pipeline wires the stages together. Construct it once and share it; it is
// safe for concurrent requests.
type Pipeline struct {
	registry  *platform.Registry
	fetcher   fetch.Fetcher
	platStrat *extract.SelectorStrategy
	genStrat  *extract.GenericStrategy
	agent     *fallback.Agent
	analyzers []analyze.Analyzer
	deadline  time.Duration
}

// New creates a pipeline with all dependencies.
func New(
	registry *platform.Registry,
	fetcher fetch.Fetcher,
	agent *fallback.Agent,
	analyzers []analyze.Analyzer,
	deadline time.Duration,
) *Pipeline {
	if deadline <= 0 {
		deadline = DefaultDeadline
	}
	return &Pipeline{
		registry:  registry,
		fetcher:   fetcher,
		platStrat: extract.NewSelectorStrategy(),
		genStrat:  extract.NewGenericStrategy(),
		agent:     agent,
		analyzers: analyzers,
		deadline:  deadline,
	}
}

// AnalyzeProductLink runs the full flow for one URL. It returns an error only
// for invalid input or a cancelled context; every other failure is encoded in
// the result so partial value survives.
func (p *Pipeline) AnalyzeProductLink(ctx context.Context, rawURL string) (*model.AnalysisResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.deadline)
	defer cancel()

	start := time.Now()
	res := &model.AnalysisResult{
		RequestID: uuid.NewString(),
	}
	log := zap.L().With(zap.String("request_id", res.RequestID), zap.String("url", rawURL))

	p.logState(log, stateValidating)
	cls, err := p.registry.Classify(rawURL)
	if err != nil {
		return nil, err
	}
	log = log.With(zap.String("platform", string(cls.Platform)))

	rec, warnings := p.obtain(ctx, log, cls)
	res.Errors = append(res.Errors, warnings...)

	if rec == nil || rec.Populated.Len() == 0 {
		p.logState(log, stateFallingBack)
		recovered, fbErr := p.recover(ctx, log, res, rec, cls)
		if fbErr != nil {
			if ctx.Err() != nil && !eris.Is(fbErr, model.ErrSearchExhausted) {
				return nil, ctx.Err()
			}
			return p.finish(log, res, start), nil
		}
		rec = recovered
		res.Status = model.ExtractionFallback
	} else if extract.Successful(rec) {
		res.Status = model.ExtractionSucceeded
	} else {
		p.logState(log, stateFallingBack)
		recovered, fbErr := p.recover(ctx, log, res, rec, cls)
		if fbErr == nil {
			rec = recovered
			res.Status = model.ExtractionFallback
		} else {
			if ctx.Err() != nil && !eris.Is(fbErr, model.ErrSearchExhausted) {
				return nil, ctx.Err()
			}
			// Partial data beats nothing: analysis proceeds on what the
			// page yielded, annotated with what is missing.
			res.Status = model.ExtractionPartial
			res.Incomplete = true
			res.Errors = append(res.Errors,
				fmt.Sprintf("extraction incomplete, missing: %v", rec.Populated.Missing()))
			res.Suggestions = nil
		}
	}

	res.Record = rec
	p.analyze(ctx, log, res)
	return p.finish(log, res, start), nil
}

// obtain fetches the page and runs the extraction strategies. A nil record
// means nothing usable came back; the warnings explain why.
func (p *Pipeline) obtain(ctx context.Context, log *zap.Logger, cls *platform.Classification) (*model.ProductRecord, []string) {
	p.logState(log, stateFetching)
	page, err := p.fetcher.Fetch(ctx, cls.NormalizedURL, cls.Profile)
	if err != nil {
		log.Warn("fetch failed", zap.Error(err))
		return nil, []string{fetchWarning(err)}
	}

	p.logState(log, stateExtracting)
	doc, err := extract.Parse(page.Body)
	if err != nil {
		log.Warn("parse failed", zap.Error(err))
		return nil, []string{"page fetched but could not be parsed as HTML"}
	}

	var warnings []string

	var platRec *model.ProductRecord
	if cls.Platform != model.PlatformGeneric {
		platRec, err = p.platStrat.Extract(doc, cls.NormalizedURL, cls.Profile)
		if err != nil {
			log.Warn("platform extraction failed", zap.Error(err))
			warnings = append(warnings, "platform-specific extraction failed")
			platRec = nil
		}
		if platRec != nil && extract.Successful(platRec) {
			return platRec, warnings
		}
	}

	genRec, err := p.genStrat.Extract(doc, cls.NormalizedURL, p.registry.Generic())
	if err != nil {
		log.Warn("generic extraction failed", zap.Error(err))
		warnings = append(warnings, "generic extraction failed")
		genRec = nil
	}

	// A single attempt commits to one strategy's record, whichever
	// recovered more. Ties go to the platform extractor.
	best := genRec
	if platRec != nil && platRec.Populated.Len() > 0 &&
		(genRec == nil || platRec.Completeness() >= genRec.Completeness()) {
		best = platRec
	}
	if best != nil && best.Populated.Len() == 0 {
		warnings = append(warnings, "no extractable product data on the page")
		return nil, warnings
	}
	return best, warnings
}

// recover runs the fallback search exactly once. On success the best
// candidate becomes the working record and the rest become alternatives; on
// exhaustion the result is annotated with manual-search suggestions.
func (p *Pipeline) recover(ctx context.Context, log *zap.Logger, res *model.AnalysisResult, partial *model.ProductRecord, cls *platform.Classification) (*model.ProductRecord, error) {
	seed := partial
	if seed == nil {
		seed = model.NewProductRecord(cls.NormalizedURL, cls.Platform)
	}

	candidates, err := p.agent.Recover(ctx, seed)
	if err != nil {
		log.Warn("fallback search exhausted", zap.Error(err))
		res.Status = model.ExtractionFailed
		res.Errors = append(res.Errors, "product could not be recovered via search")
		res.Suggestions = p.agent.Suggestions(seed)
		return nil, err
	}

	res.Errors = append(res.Errors, "record derived from search, not the original page")
	if len(candidates) > 1 {
		res.Alternatives = candidates[1:]
	}
	return candidates[0], nil
}

// analyze fans the record out to the analyzers and synthesizes the verdict.
func (p *Pipeline) analyze(ctx context.Context, log *zap.Logger, res *model.AnalysisResult) {
	p.logState(log, stateAnalyzing)
	outcomes := analyze.RunAll(ctx, res.Record, p.analyzers...)

	res.PriceAnalysis = outcomes["price"]
	res.ReviewAnalysis = outcomes["review"]
	res.SpecAnalysis = outcomes["spec"]

	for _, out := range res.Outcomes() {
		if out.Status == model.OutcomeTimedOut {
			res.Incomplete = true
			res.Errors = append(res.Errors, out.Analyzer+" analysis timed out")
		}
	}

	analyze.Synthesize(res)
	res.Success = true
	if res.Confidence < analyze.LowConfidence {
		res.Errors = append(res.Errors, "low-confidence result: analysis inputs were thin")
	}
}

// finish stamps the terminal fields and logs the outcome.
func (p *Pipeline) finish(log *zap.Logger, res *model.AnalysisResult, start time.Time) *model.AnalysisResult {
	res.ProcessingTime = time.Since(start)
	p.logState(log, stateDone)

	fields := []zap.Field{
		zap.String("status", string(res.Status)),
		zap.Bool("success", res.Success),
		zap.Float64("confidence", res.Confidence),
		zap.Duration("elapsed", res.ProcessingTime),
	}
	if res.ValueScore != nil {
		fields = append(fields, zap.Float64("value_score", *res.ValueScore))
	}
	log.Info("analysis finished", fields...)
	return res
}

func (p *Pipeline) logState(log *zap.Logger, s state) {
	log.Debug("state transition", zap.String("state", string(s)))
}

// fetchWarning renders a fetch error as a caller-facing warning.
func fetchWarning(err error) string {
	switch {
	case eris.Is(err, model.ErrDisallowed):
		return "fetch skipped: robots.txt disallows this path"
	case eris.Is(err, model.ErrAccessDenied):
		return "fetch blocked: the site denied automated access"
	case eris.Is(err, model.ErrFetchTimeout):
		return "fetch timed out"
	default:
		return "fetch failed: " + err.Error()
	}
}
