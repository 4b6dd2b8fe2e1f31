package intel

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/brandscope/brandscope-cli/internal/config"
	"github.com/brandscope/brandscope-cli/internal/cost"
	"github.com/brandscope/brandscope-cli/internal/model"
	"github.com/brandscope/brandscope-cli/pkg/anthropic"
	"github.com/brandscope/brandscope-cli/pkg/serper"
)

// Pipeline orchestrates the competitive-intelligence funnel:
// region search fan-out → aggregate → classify/score → per-region
// matrices → white-space narrative. Every stage degrades to its documented
// fallback; Run never returns an error for stage failures and the result
// is always a complete PipelineRun.
type Pipeline struct {
	cfg        *config.Config
	searcher   *Searcher
	classifier *Classifier
	analyzer   *Analyzer
	costCalc   *cost.Calculator
	onStatus   func(model.RunStatus)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithStatusFunc registers a callback invoked at each state transition,
// used by callers that persist run status.
func WithStatusFunc(fn func(model.RunStatus)) Option {
	return func(p *Pipeline) {
		p.onStatus = fn
	}
}

// New creates a Pipeline with all dependencies. web may be nil to run
// without search grounding.
func New(cfg *config.Config, ai anthropic.Client, web serper.Client, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:        cfg,
		searcher:   NewSearcher(ai, web, cfg.Intel, cfg.Anthropic.Model),
		classifier: NewClassifier(ai, cfg.Intel, cfg.Anthropic.Model, NewClassificationCache(cfg.Intel.CacheSize)),
		analyzer:   NewAnalyzer(ai, cfg.Intel, cfg.Anthropic.NarrativeModel),
		costCalc:   cost.NewCalculator(cfg.Pricing),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Pipeline) setStatus(s model.RunStatus) {
	if p.onStatus != nil {
		p.onStatus(s)
	}
}

// degrade is the single place stage failures are inspected. The fallback
// value has already been selected by the stage; this logs why.
func degrade(log *zap.Logger, err *StageError) {
	if err == nil {
		return
	}
	switch err.Reason {
	case FailureTimeout:
		log.Warn("intel: stage timed out, using fallback",
			zap.String("stage", string(err.Stage)), zap.Error(err.Err))
	case FailureBadResponse:
		log.Warn("intel: malformed model output, using fallback",
			zap.String("stage", string(err.Stage)), zap.Error(err.Err))
	default:
		log.Warn("intel: stage transport failure, using fallback",
			zap.String("stage", string(err.Stage)), zap.Error(err.Err))
	}
}

// Run executes the full analysis for one brand.
func (p *Pipeline) Run(ctx context.Context, in model.RunInput) *model.PipelineRun {
	start := time.Now()
	log := zap.L().With(
		zap.String("brand", in.BrandName),
		zap.String("category", in.Category),
	)
	log.Info("intel: starting analysis", zap.Strings("regions", in.Regions))

	keywords := in.ThemeKeywords
	if len(keywords) == 0 {
		keywords = []string{in.Category}
	}

	// GLOBAL plus every requested region, duplicates dropped.
	searchRegions := []string{model.RegionGlobal}
	seen := map[string]bool{model.RegionGlobal: true}
	for _, r := range in.Regions {
		if r != "" && !seen[r] {
			seen[r] = true
			searchRegions = append(searchRegions, r)
		}
	}

	// Fan out one search task per region. Results land in request order so
	// the first-seen-wins merge is deterministic regardless of completion
	// order; a failed region contributes an empty list, never an abort.
	p.setStatus(model.RunStatusSearching)
	results := make([]SearchResult, len(searchRegions))
	g, gCtx := errgroup.WithContext(ctx)
	if p.cfg.Intel.MaxRegionConcurrency > 0 {
		g.SetLimit(p.cfg.Intel.MaxRegionConcurrency)
	}
	for i, region := range searchRegions {
		g.Go(func() error {
			results[i] = p.searcher.SearchRegion(gCtx, in.Category, keywords, region)
			return nil
		})
	}
	_ = g.Wait()

	var usage model.TokenUsage
	var queries, discovered int
	perRegion := make([][]model.Candidate, len(results))
	for i, r := range results {
		degrade(log, r.Err)
		usage.Add(r.Usage)
		queries += r.Queries
		discovered += len(r.Candidates)
		perRegion[i] = r.Candidates
	}

	candidates := Aggregate(perRegion)
	p.setStatus(model.RunStatusAggregated)
	log.Info("intel: aggregated candidates",
		zap.Int("discovered", discovered),
		zap.Int("unique", len(candidates)),
	)

	if len(candidates) == 0 {
		p.setStatus(model.RunStatusEmpty)
		log.Warn("intel: no candidates found, short-circuiting")
		return p.assemble(in, keywords, nil, map[string]model.RegionMarket{},
			FallbackWhiteSpace(in.Regions), start, usage, model.TokenUsage{}, queries,
			model.StageCounts{Discovered: discovered})
	}

	candidates, classifyUsage, cErr := p.classifier.ClassifyAndScore(ctx, candidates, in.BrandName, in.Category, keywords)
	degrade(log, cErr)
	usage.Add(classifyUsage)
	p.setStatus(model.RunStatusClassified)

	userPos := UserPosition(in.Positioning)
	markets := make(map[string]model.RegionMarket, len(searchRegions))
	for _, region := range searchRegions {
		markets[region] = BuildMatrix(candidates, region, userPos)
	}
	p.setStatus(model.RunStatusMatricesBuilt)

	whiteSpace, narrativeUsage, wErr := p.analyzer.AnalyzeWhiteSpace(ctx, markets, in)
	degrade(log, wErr)
	p.setStatus(model.RunStatusWhiteSpace)

	classified := len(candidates)
	if p.cfg.Intel.MaxClassify > 0 && classified > p.cfg.Intel.MaxClassify {
		classified = p.cfg.Intel.MaxClassify
	}
	counts := model.StageCounts{
		Discovered: discovered,
		Aggregated: len(candidates),
		Classified: classified,
	}
	for _, c := range candidates {
		if c.Category == model.CategoryDirect {
			counts.DirectTotal++
		}
	}
	for _, m := range markets {
		if m.GapDetected {
			counts.GapRegions++
		}
	}

	run := p.assemble(in, keywords, candidates, markets, whiteSpace, start, usage, narrativeUsage, queries, counts)
	p.setStatus(model.RunStatusComplete)
	log.Info("intel: analysis complete",
		zap.Int64("duration_ms", run.Meta.DurationMs),
		zap.String("verdict", string(run.WhiteSpace.Verdict)),
		zap.Float64("cost_usd", run.Meta.EstimatedCost),
	)
	return run
}

// assemble builds the final PipelineRun, truncating the exposed candidate
// list for payload-size control. Search and classification usage is priced
// at the base model, the white-space narrative at its own model.
func (p *Pipeline) assemble(
	in model.RunInput,
	keywords []string,
	candidates []model.Candidate,
	markets map[string]model.RegionMarket,
	whiteSpace model.WhiteSpaceReport,
	start time.Time,
	usage model.TokenUsage,
	narrativeUsage model.TokenUsage,
	queries int,
	counts model.StageCounts,
) *model.PipelineRun {
	exposed := candidates
	if limit := p.cfg.Intel.MaxExposed; limit > 0 && len(exposed) > limit {
		exposed = exposed[:limit]
	}

	estCost := p.costCalc.Claude(p.cfg.Anthropic.Model,
		usage.InputTokens, usage.OutputTokens,
		usage.CacheCreationTokens, usage.CacheReadTokens) +
		p.costCalc.Claude(p.cfg.Anthropic.NarrativeModel,
			narrativeUsage.InputTokens, narrativeUsage.OutputTokens,
			narrativeUsage.CacheCreationTokens, narrativeUsage.CacheReadTokens) +
		p.costCalc.SearchQueries(queries)

	usage.Add(narrativeUsage)

	out := in
	out.ThemeKeywords = keywords

	run := &model.PipelineRun{
		Input:      out,
		Candidates: exposed,
		Markets:    markets,
		WhiteSpace: whiteSpace,
		Meta: model.RunMeta{
			DurationMs:    time.Since(start).Milliseconds(),
			Timestamp:     start.UTC(),
			Counts:        counts,
			TokenUsage:    usage,
			SearchQueries: queries,
			EstimatedCost: estCost,
		},
	}
	return run
}
