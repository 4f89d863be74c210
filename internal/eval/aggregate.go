package eval

import (
	"go.uber.org/zap"
)

// RunMetrics is one run's contribution to an aggregate: the loaded metrics
// or the load error. Runs whose artifacts were absent or corrupt carry Err
// and are skipped, never aborting the batch.
type RunMetrics struct {
	Run     string
	Metrics Metrics
	Err     error
}

// Aggregated is the arithmetic mean, across successfully-loaded runs, of
// each ratio metric (mean of means, not recomputed from pooled counts).
type Aggregated struct {
	Experiment         string             `json:"experiment"`
	TotalConversations int                `json:"total_conversations"`
	Metrics            map[string]float64 `json:"aggregated_metrics"`
}

// Aggregate averages per-run metrics. Failed runs are logged and skipped;
// zero loadable runs yields zero conversations and an empty metrics map.
func Aggregate(experiment string, runs []RunMetrics) Aggregated {
	agg := Aggregated{
		Experiment: experiment,
		Metrics:    map[string]float64{},
	}

	var accuracy, precision, recall, f1 float64
	for _, r := range runs {
		if r.Err != nil {
			zap.L().Warn("eval: skipping run in aggregation",
				zap.String("run", r.Run),
				zap.Error(r.Err),
			)
			continue
		}
		agg.TotalConversations++
		accuracy += r.Metrics.OverallAccuracy
		precision += r.Metrics.Precision
		recall += r.Metrics.Recall
		f1 += r.Metrics.F1Score
	}

	if agg.TotalConversations == 0 {
		return agg
	}

	n := float64(agg.TotalConversations)
	agg.Metrics["overall_accuracy"] = accuracy / n
	agg.Metrics["precision"] = precision / n
	agg.Metrics["recall"] = recall / n
	agg.Metrics["f1_score"] = f1 / n
	return agg
}
