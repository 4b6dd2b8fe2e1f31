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
)

const classifySystemPrompt = `You are a competitive positioning analyst. Given a target brand and a list of competitors, classify each competitor and score it on two axes. Rules:
- "category": "direct" if the competitor operates in the same specific niche/theme as the target brand, "indirect" if it shares only the broad category.
- "x": accessibility/price axis, integer 1-10 (1 = cheapest/most accessible, 10 = most exclusive/expensive).
- "y": production quality axis, integer 1-10.
- Well-known, large-audience competitors MUST receive a quality score of 8 or higher.
Respond with a strict JSON array, one element per competitor, with fields: "name", "category", "x", "y", "reasoning" (one short sentence). No other text.`

const classifyUserPrompt = `Target brand: %q
Category: %s
Theme keywords: %s

Competitors:
%s`

// Classifier assigns each candidate a direct/indirect category and two
// axis scores in a single LLM call, memoized through a bounded LRU cache.
type Classifier struct {
	ai    anthropic.Client
	cfg   config.IntelConfig
	model string
	cache *ClassificationCache
}

// NewClassifier creates a Classifier backed by cache. A nil cache disables
// memoization.
func NewClassifier(ai anthropic.Client, cfg config.IntelConfig, modelID string, cache *ClassificationCache) *Classifier {
	return &Classifier{ai: ai, cfg: cfg, model: modelID, cache: cache}
}

// cacheKey memoizes classifications per name+category pair, so the same
// competitor re-discovered for a different target category is re-scored.
func cacheKey(name, category string) string {
	return NormalizeName(name) + "|" + strings.ToLower(strings.TrimSpace(category))
}

// ClassifyAndScore mutates candidates in place with category, axis scores
// and reasoning. Only the first MaxClassify candidates are sent to the
// model; the rest keep the unscored defaults. On any failure every
// unmemoized candidate keeps indirect/5/5, so the caller always gets a
// complete result, never an abort.
func (c *Classifier) ClassifyAndScore(ctx context.Context, candidates []model.Candidate, brandName, category string, themeKeywords []string) ([]model.Candidate, model.TokenUsage, *StageError) {
	if len(candidates) == 0 {
		return candidates, model.TokenUsage{}, nil
	}

	limit := c.cfg.MaxClassify
	if limit <= 0 || limit > len(candidates) {
		limit = len(candidates)
	}

	// Cache pass: apply memoized verdicts, collect the rest for the model.
	var pending []int
	for i := 0; i < limit; i++ {
		if c.cache != nil {
			if hit, ok := c.cache.Get(cacheKey(candidates[i].Name, category)); ok {
				candidates[i].Score(model.CompetitorCategory(hit.Category), hit.X, hit.Y, hit.Reasoning)
				continue
			}
		}
		pending = append(pending, i)
	}
	if len(pending) == 0 {
		zap.L().Debug("intel: classification fully memoized", zap.Int("candidates", limit))
		return candidates, model.TokenUsage{}, nil
	}

	var listing strings.Builder
	for _, i := range pending {
		fmt.Fprintf(&listing, "- %s — %s (%s)\n", candidates[i].Name, candidates[i].Description, candidates[i].SizeBucket)
	}

	theme := strings.Join(themeKeywords, ", ")
	if theme == "" {
		theme = category
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.ClassifyTimeout())
	defer cancel()

	resp, err := c.ai.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     c.model,
		MaxTokens: 4096,
		System:    anthropic.BuildCachedSystemBlocks(classifySystemPrompt),
		Messages: []anthropic.Message{{
			Role:    "user",
			Content: fmt.Sprintf(classifyUserPrompt, brandName, category, theme, listing.String()),
		}},
	})
	if err != nil {
		return candidates, model.TokenUsage{}, transportFailure(StageClassify, err)
	}
	usage := usageOf(resp)

	raw, err := ParseModelJSON(extractText(resp))
	if err != nil {
		return candidates, usage, parseFailure(StageClassify, err)
	}

	var scored []struct {
		Name      string `json:"name"`
		Category  string `json:"category"`
		X         int    `json:"x"`
		Y         int    `json:"y"`
		Reasoning string `json:"reasoning"`
	}
	if err := json.Unmarshal(raw, &scored); err != nil {
		return candidates, usage, parseFailure(StageClassify, err)
	}

	// Match model output back onto input by the same normalized name key
	// used in aggregation. Unmatched candidates keep the defaults.
	byName := make(map[string]int, len(scored))
	for i, s := range scored {
		byName[NormalizeName(s.Name)] = i
	}

	matched := 0
	for _, i := range pending {
		si, ok := byName[NormalizeName(candidates[i].Name)]
		if !ok {
			continue
		}
		s := scored[si]
		cat := model.CategoryIndirect
		if strings.EqualFold(strings.TrimSpace(s.Category), string(model.CategoryDirect)) {
			cat = model.CategoryDirect
		}
		candidates[i].Score(cat, s.X, s.Y, s.Reasoning)
		matched++

		if c.cache != nil {
			c.cache.Put(cacheKey(candidates[i].Name, category), Classification{
				Category:  string(candidates[i].Category),
				X:         candidates[i].X,
				Y:         candidates[i].Y,
				Reasoning: candidates[i].Reasoning,
			})
		}
	}

	zap.L().Debug("intel: classification complete",
		zap.Int("sent", len(pending)),
		zap.Int("matched", matched),
		zap.Int("truncated", len(candidates)-limit),
	)
	return candidates, usage, nil
}
