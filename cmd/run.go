package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/brandscope/brandscope-cli/internal/intel"
	"github.com/brandscope/brandscope-cli/internal/model"
)

var (
	runBrand       string
	runCategory    string
	runPositioning string
	runCountries   []string
	runKeywords    []string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Analyze the competitive landscape for a single brand",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Mirror pipeline stage transitions into the stored run record.
		var runID string
		var env *pipelineEnv
		statusFn := func(s model.RunStatus) {
			if runID == "" {
				return
			}
			if err := env.Store.UpdateRunStatus(ctx, runID, s); err != nil {
				zap.L().Warn("persist run status",
					zap.String("run_id", runID),
					zap.String("status", string(s)),
					zap.Error(err),
				)
			}
		}

		env, err := initPipeline(ctx, intel.WithStatusFunc(statusFn))
		if err != nil {
			return err
		}
		defer env.Close()

		in := model.RunInput{
			BrandName:     runBrand,
			Category:      runCategory,
			Positioning:   runPositioning,
			Regions:       runCountries,
			ThemeKeywords: runKeywords,
		}

		run, err := env.Store.CreateRun(ctx, in)
		if err != nil {
			return err
		}
		runID = run.ID

		result := env.Pipeline.Run(ctx, in)
		if err := env.Store.UpdateRunResult(ctx, run.ID, result); err != nil {
			return err
		}
		if len(result.Markets) == 0 {
			if err := env.Store.UpdateRunStatus(ctx, run.ID, model.RunStatusEmpty); err != nil {
				return err
			}
		}

		zap.L().Info("analysis complete",
			zap.String("run_id", run.ID),
			zap.String("brand", in.BrandName),
			zap.String("verdict", string(result.WhiteSpace.Verdict)),
			zap.Int("competitors", len(result.Candidates)),
			zap.Float64("estimated_cost_usd", result.Meta.EstimatedCost),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	runCmd.Flags().StringVar(&runBrand, "brand", "", "brand name (required)")
	runCmd.Flags().StringVar(&runCategory, "category", "", "market category, e.g. \"YouTube Channel\" (required)")
	runCmd.Flags().StringVar(&runPositioning, "positioning", "", "price positioning (budget, value, mid-range, premium, luxury)")
	runCmd.Flags().StringSliceVar(&runCountries, "country", nil, "target country (repeatable)")
	runCmd.Flags().StringSliceVar(&runKeywords, "keyword", nil, "theme keyword for direct-competitor matching (repeatable)")
	_ = runCmd.MarkFlagRequired("brand")
	_ = runCmd.MarkFlagRequired("category")
	rootCmd.AddCommand(runCmd)
}
