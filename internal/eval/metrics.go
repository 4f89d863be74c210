package eval

// CategoryMetrics is the per-category breakdown of field verdicts.
type CategoryMetrics struct {
	Total    int     `json:"total"`
	Matched  int     `json:"matched"`
	Accuracy float64 `json:"accuracy"`
}

// Metrics summarizes one evaluation run. All ratios default to 0 when
// their denominator is 0.
type Metrics struct {
	OverallAccuracy    float64                    `json:"overall_accuracy"`
	Precision          float64                    `json:"precision"`
	Recall             float64                    `json:"recall"`
	F1Score            float64                    `json:"f1_score"`
	TruePositives      int                        `json:"true_positives"`
	FalsePositives     int                        `json:"false_positives"`
	FalseNegatives     int                        `json:"false_negatives"`
	TotalFields        int                        `json:"total_fields"`
	MissingFieldsCount int                        `json:"missing_fields_count"`
	Categories         map[string]CategoryMetrics `json:"categories"`
}

// Score rolls field-level verdicts into summary metrics.
//
// Counting rules: a matched present field is a true positive; a present
// field tagged missing_field is a false negative; a present field with a
// wrong value and every extra field is a false positive. Missing-category
// fields only appear in the per-category breakdown — a correctly-flagged
// missing field is excluded from the precision/recall counters entirely.
func Score(results map[string]FieldResult, missingPaths []string) Metrics {
	var tp, fp, fn int

	counts := map[string]*CategoryMetrics{
		CategoryPresent: {},
		CategoryExtra:   {},
		CategoryMissing: {},
	}

	for _, res := range results {
		if c, ok := counts[res.Category]; ok {
			c.Total++
			if res.Match {
				c.Matched++
			}
		}

		switch res.Category {
		case CategoryPresent:
			switch {
			case res.Error == ErrorMissingField:
				fn++
			case res.Match:
				tp++
			default:
				fp++
			}
		case CategoryExtra:
			fp++
		}
	}

	m := Metrics{
		TruePositives:      tp,
		FalsePositives:     fp,
		FalseNegatives:     fn,
		MissingFieldsCount: len(missingPaths),
		Categories:         make(map[string]CategoryMetrics, len(counts)),
	}

	m.Precision = ratio(float64(tp), float64(tp+fp))
	m.Recall = ratio(float64(tp), float64(tp+fn))
	m.F1Score = ratio(2*m.Precision*m.Recall, m.Precision+m.Recall)
	m.OverallAccuracy = ratio(float64(tp), float64(tp+fp+fn))

	for name, c := range counts {
		m.TotalFields += c.Total
		m.Categories[name] = CategoryMetrics{
			Total:    c.Total,
			Matched:  c.Matched,
			Accuracy: ratio(float64(c.Matched), float64(c.Total)),
		}
	}

	return m
}

func ratio(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den
}
