package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/hartfield-labs/factfind/internal/eval"
	"github.com/hartfield-labs/factfind/internal/workspace"
)

var aggregateExperimentFlag string

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Recompute the experiment-level metric averages",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := workspace.Open(cfg.Workspace.Root, aggregateExperimentFlag)
		if err != nil {
			return err
		}

		agg, err := aggregateExperiment(ws)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(agg)
	},
}

// aggregateExperiment averages every conversation's metrics and writes
// aggregated_results.json. Conversations with absent or corrupt artifacts
// are skipped.
func aggregateExperiment(ws *workspace.Workspace) (*eval.Aggregated, error) {
	runs, err := ws.CollectRunMetrics()
	if err != nil {
		return nil, err
	}

	agg := eval.Aggregate(ws.Experiment(), runs)
	if err := ws.SaveJSON(ws.AggregatePath(), agg); err != nil {
		return nil, err
	}
	return &agg, nil
}

func init() {
	aggregateCmd.Flags().StringVar(&aggregateExperimentFlag, "experiment", "", "experiment name (required)")
	_ = aggregateCmd.MarkFlagRequired("experiment")
	rootCmd.AddCommand(aggregateCmd)
}
