package model

import "time"

// RunStatus tracks a run through the pipeline state machine. There is no
// retry or replay: a stage failure degrades that stage's output and the
// run still reaches complete. The empty status is the short-circuit branch
// taken when aggregation finds zero candidates.
type RunStatus string

const (
	RunStatusQueued        RunStatus = "queued"
	RunStatusSearching     RunStatus = "searching"
	RunStatusAggregated    RunStatus = "aggregated"
	RunStatusClassified    RunStatus = "classified"
	RunStatusMatricesBuilt RunStatus = "matrices_built"
	RunStatusWhiteSpace    RunStatus = "white_space_done"
	RunStatusComplete      RunStatus = "complete"
	RunStatusEmpty         RunStatus = "empty"
	RunStatusFailed        RunStatus = "failed"
)

// RunInput is the caller-supplied request for one analysis run.
type RunInput struct {
	BrandName     string   `json:"brand_name"`
	Category      string   `json:"category"`
	Positioning   string   `json:"positioning"`
	Regions       []string `json:"regions"`
	ThemeKeywords []string `json:"theme_keywords,omitempty"`
}

// StageCounts summarizes the funnel for run metadata.
type StageCounts struct {
	Discovered  int `json:"discovered"`
	Aggregated  int `json:"aggregated"`
	Classified  int `json:"classified"`
	DirectTotal int `json:"direct_total"`
	GapRegions  int `json:"gap_regions"`
}

// TokenUsage accumulates LLM token consumption across stages.
type TokenUsage struct {
	InputTokens         int `json:"input_tokens"`
	OutputTokens        int `json:"output_tokens"`
	CacheCreationTokens int `json:"cache_creation_tokens"`
	CacheReadTokens     int `json:"cache_read_tokens"`
}

// Add accumulates usage from another stage.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.CacheCreationTokens += other.CacheCreationTokens
	u.CacheReadTokens += other.CacheReadTokens
}

// RunMeta holds timing, counts and cost attribution for a run.
type RunMeta struct {
	DurationMs    int64       `json:"duration_ms"`
	Timestamp     time.Time   `json:"timestamp"`
	Counts        StageCounts `json:"counts"`
	TokenUsage    TokenUsage  `json:"token_usage"`
	SearchQueries int         `json:"search_queries"`
	EstimatedCost float64     `json:"estimated_cost_usd"`
}

// PipelineRun is the top-level aggregate produced by one analysis run.
// The exposed candidate list is truncated to the top 20 by discovery
// order; Markets always includes the GLOBAL view when the run completed.
type PipelineRun struct {
	Input      RunInput                `json:"input"`
	Candidates []Candidate             `json:"candidates"`
	Markets    map[string]RegionMarket `json:"markets"`
	WhiteSpace WhiteSpaceReport        `json:"white_space"`
	Meta       RunMeta                 `json:"meta"`
}

// Run is a persisted analysis run.
type Run struct {
	ID        string       `json:"id"`
	Input     RunInput     `json:"input"`
	Status    RunStatus    `json:"status"`
	Result    *PipelineRun `json:"result,omitempty"`
	Error     string       `json:"error,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}
