package model

import "time"

// OutcomeStatus describes how an analyzer finished.
type OutcomeStatus string

const (
	OutcomeOK           OutcomeStatus = "ok"
	OutcomeInsufficient OutcomeStatus = "insufficient_data"
	OutcomeTimedOut     OutcomeStatus = "timed_out"
)

// AnalysisOutcome is the result of a single analyzer run. SubScore is only
// meaningful when Status is OutcomeOK; an analyzer never fabricates a score
// from absent inputs.
type AnalysisOutcome struct {
	Analyzer     string        `json:"analyzer"`
	Status       OutcomeStatus `json:"status"`
	Summary      string        `json:"summary"`
	SubScore     float64       `json:"sub_score,omitempty"`
	Observations []string      `json:"observations,omitempty"`
	Caveats      []string      `json:"caveats,omitempty"`

	// HardNegative is set by the review analyzer when negative sentiment
	// dominates. It caps the final recommendation at "wait".
	HardNegative bool `json:"hard_negative,omitempty"`
}

// Scored reports whether this outcome contributes a real sub-score.
func (o AnalysisOutcome) Scored() bool { return o.Status == OutcomeOK }

// InsufficientData builds the standard degraded outcome for an analyzer.
func InsufficientData(analyzer, reason string) AnalysisOutcome {
	return AnalysisOutcome{
		Analyzer: analyzer,
		Status:   OutcomeInsufficient,
		Summary:  "insufficient data: " + reason,
	}
}

// TimedOut builds the degraded outcome recorded when an analyzer misses its
// individual deadline.
func TimedOut(analyzer string) AnalysisOutcome {
	return AnalysisOutcome{
		Analyzer: analyzer,
		Status:   OutcomeTimedOut,
		Summary:  "insufficient data: analyzer timed out",
	}
}

// ExtractionStatus summarizes how the product record was obtained.
type ExtractionStatus string

const (
	ExtractionSucceeded ExtractionStatus = "succeeded"
	ExtractionPartial   ExtractionStatus = "partially_succeeded"
	ExtractionFallback  ExtractionStatus = "fallback"
	ExtractionFailed    ExtractionStatus = "failed"
)

// Recommendation is the synthesized advice label.
type Recommendation string

const (
	RecommendBuy         Recommendation = "buy"
	RecommendWait        Recommendation = "wait"
	RecommendAlternative Recommendation = "seek-alternative"
)

// AnalysisResult is the aggregate, immutable output of one request. It is
// never persisted beyond the response.
type AnalysisResult struct {
	RequestID string         `json:"request_id"`
	Record    *ProductRecord `json:"record,omitempty"`

	PriceAnalysis  AnalysisOutcome `json:"price_analysis"`
	ReviewAnalysis AnalysisOutcome `json:"review_analysis"`
	SpecAnalysis   AnalysisOutcome `json:"spec_analysis"`

	// ValueScore is nil when no analyzer produced a sub-score; the result
	// is then low-confidence rather than mid-range by default.
	ValueScore     *float64       `json:"value_score,omitempty"`
	Confidence     float64        `json:"confidence"`
	Recommendation Recommendation `json:"recommendation,omitempty"`

	Status     ExtractionStatus `json:"extraction_status"`
	Success    bool             `json:"success"`
	Incomplete bool             `json:"incomplete,omitempty"`

	// Errors holds every warning and error encountered, in order, so the
	// caller can render what went wrong without losing partial value.
	Errors []string `json:"errors,omitempty"`

	Alternatives []*ProductRecord `json:"alternatives,omitempty"`

	// Suggestions carries manual-search URLs when the pipeline terminates
	// with SearchExhausted.
	Suggestions []string `json:"suggestions,omitempty"`

	ProcessingTime time.Duration `json:"processing_time_ns"`
}

// Outcomes returns the three analyzer outcomes in fixed order.
func (r *AnalysisResult) Outcomes() []AnalysisOutcome {
	return []AnalysisOutcome{r.PriceAnalysis, r.ReviewAnalysis, r.SpecAnalysis}
}
