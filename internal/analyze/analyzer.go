package analyze

import (
	"context"
	"time"

	"github.com/cartscope/cartscope-cli/internal/model"
)

// Analyzer produces one dimension's verdict over a product record. Analyzers
// never fail hard: missing inputs or downstream errors become a degraded
// outcome, not an error.
type Analyzer interface {
	Name() string
	Analyze(ctx context.Context, rec *model.ProductRecord) model.AnalysisOutcome
}

// AnalyzerTimeout bounds each individual analyzer run.
const AnalyzerTimeout = 10 * time.Second
