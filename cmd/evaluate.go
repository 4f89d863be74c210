package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hartfield-labs/factfind/internal/eval"
	"github.com/hartfield-labs/factfind/internal/workspace"
)

var (
	evaluateExperiment  string
	evaluateTarget      string
	evaluateAll         bool
	evaluateConcurrency int
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Re-score persisted conversations against their ground truth",
	Long:  "Recomputes evaluation.json from the persisted ground_truth.json and extracted_data.json, without touching the generation artifacts. Use --all to re-score every conversation in the experiment.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx, evaluateExperiment)
		if err != nil {
			return err
		}
		defer env.Close()

		ws := env.Workspace

		if !evaluateAll {
			ev, err := evaluateConversation(ctx, ws, env.Reconciler, evaluateTarget)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(ev)
		}

		targets, err := ws.ListConversations()
		if err != nil {
			return err
		}

		evaluated, failed := reEvaluate(ctx, ws, env.Reconciler, targets, evaluateConcurrency)

		agg, err := aggregateExperiment(ws)
		if err != nil {
			return err
		}

		zap.L().Info("re-scoring complete",
			zap.String("experiment", ws.Experiment()),
			zap.Int("evaluated", evaluated),
			zap.Int("failed", failed),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(agg)
	},
}

// reEvaluate re-scores the given conversations with up to concurrency
// workers. A conversation with absent or corrupt artifacts is logged and
// skipped, never aborting the batch.
func reEvaluate(ctx context.Context, ws *workspace.Workspace, rec *eval.Reconciler, targets []string, concurrency int) (evaluated, failed int) {
	if concurrency < 1 {
		concurrency = 1
	}

	// The oracle calls dominate; fan re-scoring out across conversations.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	errs := make([]error, len(targets))
	for i, conv := range targets {
		g.Go(func() error {
			ev, err := evaluateConversation(gctx, ws, rec, conv)
			if err != nil {
				errs[i] = err
				zap.L().Error("conversation re-score failed",
					zap.String("conversation", conv),
					zap.Error(err),
				)
				return nil
			}
			zap.L().Info("conversation re-scored",
				zap.String("conversation", conv),
				zap.Float64("accuracy", ev.Metrics.OverallAccuracy),
			)
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	return len(targets) - failed, failed
}

func init() {
	evaluateCmd.Flags().StringVar(&evaluateExperiment, "experiment", "", "experiment name (required)")
	evaluateCmd.Flags().StringVar(&evaluateTarget, "conversation", "", "single conversation to re-score (e.g. conversation_3)")
	evaluateCmd.Flags().BoolVar(&evaluateAll, "all", false, "re-score every conversation in the experiment")
	evaluateCmd.Flags().IntVar(&evaluateConcurrency, "concurrency", 4, "max conversations scored in parallel")
	_ = evaluateCmd.MarkFlagRequired("experiment")
	evaluateCmd.MarkFlagsOneRequired("conversation", "all")
	rootCmd.AddCommand(evaluateCmd)
}
