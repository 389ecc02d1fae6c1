package analyze

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cartscope/cartscope-cli/internal/model"
)

// RunAll fans the record out to every analyzer in parallel. Each analyzer
// gets its own deadline; one missing it yields a timed-out outcome without
// delaying or cancelling the others. Outcomes come back keyed by analyzer
// name.
func RunAll(ctx context.Context, rec *model.ProductRecord, analyzers ...Analyzer) map[string]model.AnalysisOutcome {
	outcomes := make([]model.AnalysisOutcome, len(analyzers))

	g, ctx := errgroup.WithContext(ctx)
	for i, a := range analyzers {
		g.Go(func() error {
			outcomes[i] = runOne(ctx, a, rec)
			return nil
		})
	}
	g.Wait() //nolint:errcheck

	out := make(map[string]model.AnalysisOutcome, len(outcomes))
	for _, o := range outcomes {
		out[o.Analyzer] = o
	}
	return out
}

// runOne executes a single analyzer under its individual timeout. The
// analyzer runs in a child goroutine so a stuck one cannot hold the fan-out
// past its deadline.
func runOne(ctx context.Context, a Analyzer, rec *model.ProductRecord) model.AnalysisOutcome {
	ctx, cancel := context.WithTimeout(ctx, AnalyzerTimeout)
	defer cancel()

	done := make(chan model.AnalysisOutcome, 1)
	go func() {
		done <- a.Analyze(ctx, rec)
	}()

	select {
	case out := <-done:
		if out.Analyzer == "" {
			out.Analyzer = a.Name()
		}
		return out
	case <-ctx.Done():
		zap.L().Warn("analyzer missed its deadline", zap.String("analyzer", a.Name()))
		return model.TimedOut(a.Name())
	}
}
