package intel

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/brandscope/brandscope-cli/internal/config"
	"github.com/brandscope/brandscope-cli/internal/model"
	"github.com/brandscope/brandscope-cli/pkg/anthropic"
	"github.com/brandscope/brandscope-cli/pkg/serper"
)

const regionSearchSystemPrompt = `You are a market research analyst. When asked for competitors in a market you answer with a strict JSON array and nothing else. Each element has exactly these fields: "name" (string), "description" (string, one sentence), "audience_size" (one of "small", "medium", "large"). Do not invent entities you are not confident exist.`

const regionSearchUserPrompt = `List the top %d named competitors for the "%s" category (theme: %s) in %s.%s

Respond with a JSON array only.`

// SearchResult is the outcome of one region search. Err is set when the
// stage degraded; Candidates is then empty, never nil-with-partial.
type SearchResult struct {
	Region     string
	Candidates []model.Candidate
	Usage      model.TokenUsage
	Queries    int
	Err        *StageError
}

// Searcher discovers candidate competitors for one region via a single LLM
// call, optionally grounded with fresh web search snippets. Best-effort:
// any failure yields an empty result, never an abort.
type Searcher struct {
	ai    anthropic.Client
	web   serper.Client
	cfg   config.IntelConfig
	model string
}

// NewSearcher creates a Searcher. web may be nil to skip search grounding.
func NewSearcher(ai anthropic.Client, web serper.Client, cfg config.IntelConfig, modelID string) *Searcher {
	return &Searcher{ai: ai, web: web, cfg: cfg, model: modelID}
}

// SearchRegion queries for the top named entities in region for the given
// category and theme keywords. Every returned candidate is tagged with
// regions=[region] before returning.
func (s *Searcher) SearchRegion(ctx context.Context, category string, themeKeywords []string, region string) SearchResult {
	result := SearchResult{Region: region}

	theme := strings.Join(themeKeywords, ", ")
	if theme == "" {
		theme = category
	}
	scope := region
	if region == model.RegionGlobal {
		scope = "the worldwide market"
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.SearchTimeout())
	defer cancel()

	grounding := s.groundingBlock(ctx, category, theme, scope, &result)

	prompt := fmt.Sprintf(regionSearchUserPrompt, 10, category, theme, scope, grounding)
	resp, err := s.ai.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     s.model,
		MaxTokens: 2048,
		System:    anthropic.BuildCachedSystemBlocks(regionSearchSystemPrompt),
		Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		result.Err = transportFailure(StageSearch, err)
		return result
	}
	result.Usage = usageOf(resp)

	raw, err := ParseModelJSON(extractText(resp))
	if err != nil {
		result.Err = parseFailure(StageSearch, err)
		return result
	}

	var found []struct {
		Name         string `json:"name"`
		Description  string `json:"description"`
		AudienceSize string `json:"audience_size"`
	}
	if err := json.Unmarshal(raw, &found); err != nil {
		result.Err = parseFailure(StageSearch, err)
		return result
	}

	for _, f := range found {
		if strings.TrimSpace(f.Name) == "" {
			continue
		}
		result.Candidates = append(result.Candidates,
			model.NewCandidate(f.Name, f.Description, model.ParseSizeBucket(f.AudienceSize), region))
	}

	zap.L().Debug("intel: region search complete",
		zap.String("region", region),
		zap.Int("candidates", len(result.Candidates)),
	)
	return result
}

// groundingBlock fetches web snippets for the region query and renders
// them as prompt context. Search failures are logged and skipped; they
// never affect the LLM call.
func (s *Searcher) groundingBlock(ctx context.Context, category, theme, scope string, result *SearchResult) string {
	if s.web == nil || s.cfg.SearchResults <= 0 {
		return ""
	}

	query := fmt.Sprintf("%s %s competitors %s", category, theme, scope)
	result.Queries++
	hits, err := s.web.Search(ctx, query, s.cfg.SearchResults)
	if err != nil {
		zap.L().Debug("intel: search grounding unavailable",
			zap.String("region", result.Region),
			zap.Error(err),
		)
		return ""
	}
	if len(hits) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n\nRecent search results for context:\n")
	for _, h := range hits {
		fmt.Fprintf(&b, "- %s (%s): %s\n", h.Title, h.Link, h.Snippet)
	}
	return b.String()
}
