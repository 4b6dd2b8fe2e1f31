package intel

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/brandscope/brandscope-cli/internal/config"
	"github.com/brandscope/brandscope-cli/internal/model"
	"github.com/brandscope/brandscope-cli/pkg/anthropic"
)

const whitespaceSystemPrompt = `You are a market entry strategist. Given per-region competition statistics for a brand, produce an opportunity analysis. Respond with a strict JSON object with fields:
- "global_summary": string, 2-3 sentences.
- "per_region_opportunity": object mapping each region name to one sentence.
- "positioning_recommendation": string.
- "unmet_needs": array of short strings.
- "verdict": "GREEN" (clear white space), "YELLOW" (contested) or "RED" (saturated).
No other text.`

const whitespaceUserPrompt = `Brand: %q
Category: %s
Theme keywords: %s

Per-region competition:
%s`

const manualAnalysisText = "Manual analysis recommended"

// FallbackWhiteSpace is the fixed degraded report used when the narrative
// model is unavailable: YELLOW verdict, manual-analysis text per region.
func FallbackWhiteSpace(regions []string) model.WhiteSpaceReport {
	perRegion := make(map[string]string, len(regions))
	for _, r := range regions {
		perRegion[r] = manualAnalysisText
	}
	return model.WhiteSpaceReport{
		GlobalSummary:             "Analysis unavailable. " + manualAnalysisText + ".",
		PerRegionOpportunity:      perRegion,
		PositioningRecommendation: manualAnalysisText,
		UnmetNeeds:                []string{manualAnalysisText},
		Verdict:                   model.VerdictYellow,
	}
}

// Analyzer converts per-region gap statistics into a white-space narrative
// with a single LLM call.
type Analyzer struct {
	ai    anthropic.Client
	cfg   config.IntelConfig
	model string
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(ai anthropic.Client, cfg config.IntelConfig, modelID string) *Analyzer {
	return &Analyzer{ai: ai, cfg: cfg, model: modelID}
}

// AnalyzeWhiteSpace summarizes all region markets into a WhiteSpaceReport.
// On failure it returns the fixed fallback report and the cause as a
// StageError.
func (a *Analyzer) AnalyzeWhiteSpace(ctx context.Context, markets map[string]model.RegionMarket, in model.RunInput) (model.WhiteSpaceReport, model.TokenUsage, *StageError) {
	regions := make([]string, 0, len(markets))
	for r := range markets {
		regions = append(regions, r)
	}
	sort.Strings(regions)

	var stats strings.Builder
	for _, r := range regions {
		m := markets[r]
		fmt.Fprintf(&stats, "- %s: direct=%d, local_direct=%d, indirect=%d, gap=%v\n",
			r, m.DirectCount, m.LocalDirectCount, m.IndirectCount, m.GapDetected)
	}

	theme := strings.Join(in.ThemeKeywords, ", ")
	if theme == "" {
		theme = in.Category
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.WhitespaceTimeout())
	defer cancel()

	resp, err := a.ai.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     a.model,
		MaxTokens: 2048,
		System:    anthropic.BuildCachedSystemBlocks(whitespaceSystemPrompt),
		Messages: []anthropic.Message{{
			Role:    "user",
			Content: fmt.Sprintf(whitespaceUserPrompt, in.BrandName, in.Category, theme, stats.String()),
		}},
	})
	if err != nil {
		return FallbackWhiteSpace(regions), model.TokenUsage{}, transportFailure(StageWhiteSpace, err)
	}
	usage := usageOf(resp)

	raw, err := ParseModelJSON(extractText(resp))
	if err != nil {
		return FallbackWhiteSpace(regions), usage, parseFailure(StageWhiteSpace, err)
	}

	var parsed struct {
		GlobalSummary             string            `json:"global_summary"`
		PerRegionOpportunity      map[string]string `json:"per_region_opportunity"`
		PositioningRecommendation string            `json:"positioning_recommendation"`
		UnmetNeeds                []string          `json:"unmet_needs"`
		Verdict                   string            `json:"verdict"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return FallbackWhiteSpace(regions), usage, parseFailure(StageWhiteSpace, err)
	}

	report := model.WhiteSpaceReport{
		GlobalSummary:             parsed.GlobalSummary,
		PerRegionOpportunity:      parsed.PerRegionOpportunity,
		PositioningRecommendation: parsed.PositioningRecommendation,
		UnmetNeeds:                parsed.UnmetNeeds,
		Verdict:                   model.ParseVerdict(parsed.Verdict),
	}
	if report.PerRegionOpportunity == nil {
		report.PerRegionOpportunity = make(map[string]string, len(regions))
	}
	for _, r := range regions {
		if report.PerRegionOpportunity[r] == "" {
			report.PerRegionOpportunity[r] = manualAnalysisText
		}
	}
	return report, usage, nil
}
