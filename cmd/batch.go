package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/brandscope/brandscope-cli/internal/model"
)

var (
	batchFile  string
	batchLimit int
)

// batchEntry is one brand in a batch input file.
type batchEntry struct {
	BrandName   string   `yaml:"brand_name"`
	Category    string   `yaml:"category"`
	Positioning string   `yaml:"positioning"`
	Countries   []string `yaml:"countries"`
	Keywords    []string `yaml:"keywords"`
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Analyze a batch of brands from a YAML file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		entries, err := loadBatchFile(batchFile)
		if err != nil {
			return err
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		return processBatch(ctx, entries, batchLimit, cfg.Batch.MaxConcurrent, func(ctx context.Context, in model.RunInput) (*model.PipelineRun, error) {
			_, result, err := analyzeAndPersist(ctx, env.Store, env.Pipeline, in)
			return result, err
		})
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "", "YAML file with brand entries (required)")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max number of entries to process (0 = all)")
	_ = batchCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(batchCmd)
}

// loadBatchFile reads and validates a YAML batch input file.
func loadBatchFile(path string) ([]batchEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "read batch file")
	}

	var entries []batchEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, eris.Wrap(err, "parse batch file")
	}
	return entries, nil
}

func entryToInput(e batchEntry) model.RunInput {
	return model.RunInput{
		BrandName:     strings.TrimSpace(e.BrandName),
		Category:      strings.TrimSpace(e.Category),
		Positioning:   strings.TrimSpace(e.Positioning),
		Regions:       e.Countries,
		ThemeKeywords: e.Keywords,
	}
}

// analyzeFunc is the callback signature for analyzing one brand.
type analyzeFunc func(ctx context.Context, in model.RunInput) (*model.PipelineRun, error)

// processBatch applies limit, then analyzes entries concurrently. Individual
// failures are logged and counted but never abort the batch.
func processBatch(ctx context.Context, entries []batchEntry, limit, concurrency int, analyze analyzeFunc) error {
	if len(entries) == 0 {
		zap.L().Info("no batch entries found")
		return nil
	}

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	zap.L().Info("processing batch",
		zap.Int("entries", len(entries)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var succeeded, failed, skipped atomic.Int64

	for _, entry := range entries {
		in := entryToInput(entry)
		g.Go(func() error {
			log := zap.L().With(zap.String("brand", in.BrandName))

			if in.BrandName == "" || in.Category == "" {
				skipped.Add(1)
				log.Warn("skipping entry with missing brand_name or category")
				return nil
			}

			result, err := analyze(gctx, in)
			if err != nil {
				failed.Add(1)
				log.Error("analysis failed", zap.Error(err))
				return nil // don't abort batch on individual failure
			}

			succeeded.Add(1)
			log.Info("analysis complete",
				zap.String("verdict", string(result.WhiteSpace.Verdict)),
				zap.Int("competitors", len(result.Candidates)),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "batch processing")
	}

	zap.L().Info("batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
		zap.Int64("skipped", skipped.Load()),
	)
	return nil
}
