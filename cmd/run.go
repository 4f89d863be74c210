package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hartfield-labs/factfind/internal/eval"
	"github.com/hartfield-labs/factfind/internal/store"
)

var (
	runExperiment    string
	runConversations int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate and evaluate a batch of synthetic conversations",
	Long:  "For each conversation: fill the form template with synthetic facts, render an advisor dialogue that withholds the missing fields, re-extract the facts from the transcript, and score the extraction against the ground truth. Finishes with the experiment aggregate.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx, runExperiment)
		if err != nil {
			return err
		}
		defer env.Close()

		schema, err := env.loadSchema()
		if err != nil {
			return err
		}

		total := runConversations
		if total == 0 {
			total = cfg.Pipeline.Conversations
		}

		zap.L().Info("starting run",
			zap.String("experiment", env.Workspace.Experiment()),
			zap.Int("conversations", total),
		)

		var failures int
		for i := 0; i < total; i++ {
			if err := runConversation(ctx, env, schema); err != nil {
				// One bad conversation never aborts the batch.
				failures++
				zap.L().Error("conversation failed", zap.Error(err))
			}
		}

		agg, err := aggregateExperiment(env.Workspace)
		if err != nil {
			return err
		}

		zap.L().Info("run complete",
			zap.String("experiment", env.Workspace.Experiment()),
			zap.Int("evaluated", agg.TotalConversations),
			zap.Int("failed", failures),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(agg)
	},
}

// runConversation drives one conversation through every pipeline stage,
// persisting each artifact as it is produced.
func runConversation(ctx context.Context, env *pipelineEnv, schema map[string]any) error {
	ws := env.Workspace

	conv, err := ws.CreateConversation()
	if err != nil {
		return err
	}

	run, err := env.Store.CreateRun(ctx, ws.Experiment(), conv)
	if err != nil {
		return err
	}
	if err := env.Store.UpdateRunStatus(ctx, run.ID, store.RunStatusRunning); err != nil {
		return err
	}

	ev, err := produceAndScore(ctx, env, schema, conv)
	if err != nil {
		if stErr := env.Store.UpdateRunStatus(ctx, run.ID, store.RunStatusFailed); stErr != nil {
			zap.L().Warn("mark run failed", zap.String("run", run.ID), zap.Error(stErr))
		}
		return eris.Wrapf(err, "conversation %s", conv)
	}

	if err := env.Store.SaveEvaluation(ctx, run.ID, ev.Metrics); err != nil {
		return err
	}

	zap.L().Info("conversation evaluated",
		zap.String("conversation", conv),
		zap.Float64("accuracy", ev.Metrics.OverallAccuracy),
		zap.Float64("f1", ev.Metrics.F1Score),
	)
	return nil
}

// produceAndScore runs the generation stages for one conversation and
// evaluates the result.
func produceAndScore(ctx context.Context, env *pipelineEnv, schema map[string]any, conv string) (*eval.Evaluation, error) {
	ws := env.Workspace

	groundTruth, err := env.Form.Generate(ctx, schema)
	if err != nil {
		return nil, eris.Wrap(err, "generate form")
	}
	if err := ws.SaveJSON(ws.GroundTruthPath(conv), groundTruth); err != nil {
		return nil, err
	}

	dialogue, err := env.Dialogue.Generate(ctx, groundTruth)
	if err != nil {
		return nil, eris.Wrap(err, "generate conversation")
	}
	if err := ws.SaveText(ws.ConversationPath(conv), dialogue); err != nil {
		return nil, err
	}

	extracted, err := env.Extractor.Extract(ctx, schema, dialogue)
	if err != nil {
		return nil, eris.Wrap(err, "extract")
	}
	if err := ws.SaveJSON(ws.ExtractedPath(conv), extracted); err != nil {
		return nil, err
	}

	return evaluateConversation(ctx, ws, env.Reconciler, conv)
}

func init() {
	runCmd.Flags().StringVar(&runExperiment, "experiment", "", "experiment name (generated when empty)")
	runCmd.Flags().IntVar(&runConversations, "conversations", 0, "conversations to generate (default from config)")
	rootCmd.AddCommand(runCmd)
}
