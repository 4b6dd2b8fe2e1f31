package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/brandscope/brandscope-cli/internal/intel"
	"github.com/brandscope/brandscope-cli/internal/model"
	"github.com/brandscope/brandscope-cli/internal/store"
	anthropicpkg "github.com/brandscope/brandscope-cli/pkg/anthropic"
	"github.com/brandscope/brandscope-cli/pkg/serper"
)

// pipelineEnv holds the initialized store, clients, and pipeline shared by
// the run/batch/serve commands.
type pipelineEnv struct {
	Store    store.Store
	Pipeline *intel.Pipeline
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.SQLitePath
		if dsn == "" {
			dsn = "brandscope.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initPipeline sets up the store and API clients and builds the Pipeline.
// Callers should defer env.Close().
func initPipeline(ctx context.Context, opts ...intel.Option) (*pipelineEnv, error) {
	if cfg.Anthropic.Key == "" {
		return nil, eris.New("anthropic API key is required (BRANDSCOPE_ANTHROPIC_KEY)")
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	anthropicClient := anthropicpkg.NewClient(cfg.Anthropic.Key)

	// Web search grounding is optional; the searcher runs on model knowledge
	// alone when no key is configured.
	var webClient serper.Client
	if cfg.Serper.Key != "" {
		webClient = serper.NewClient(cfg.Serper.Key,
			serper.WithBaseURL(cfg.Serper.BaseURL),
			serper.WithRateLimit(cfg.Serper.RateLimit),
		)
		zap.L().Info("serper search grounding enabled")
	} else {
		zap.L().Debug("BRANDSCOPE_SERPER_KEY not set, search grounding disabled")
	}

	p := intel.New(cfg, anthropicClient, webClient, opts...)

	return &pipelineEnv{
		Store:    st,
		Pipeline: p,
	}, nil
}

// analyzer runs the pipeline for one brand. Satisfied by *intel.Pipeline.
type analyzer interface {
	Run(ctx context.Context, in model.RunInput) *model.PipelineRun
}

// analyzeAndPersist creates a run record, executes the pipeline, and
// persists the final result.
func analyzeAndPersist(ctx context.Context, st store.Store, p analyzer, in model.RunInput) (*model.Run, *model.PipelineRun, error) {
	run, err := st.CreateRun(ctx, in)
	if err != nil {
		return nil, nil, eris.Wrap(err, "create run")
	}

	result := p.Run(ctx, in)

	if ctx.Err() != nil {
		cause := ctx.Err().Error()
		if mErr := st.MarkRunFailed(ctx, run.ID, cause); mErr != nil {
			zap.L().Warn("mark run failed", zap.String("run_id", run.ID), zap.Error(mErr))
		}
		return run, nil, eris.Wrap(ctx.Err(), "analysis interrupted")
	}

	if err := st.UpdateRunResult(ctx, run.ID, result); err != nil {
		return run, result, eris.Wrap(err, "persist run result")
	}

	// The empty short-circuit branch terminates at "empty", not "complete".
	if len(result.Markets) == 0 {
		if err := st.UpdateRunStatus(ctx, run.ID, model.RunStatusEmpty); err != nil {
			return run, result, eris.Wrap(err, "persist empty status")
		}
	}
	return run, result, nil
}
