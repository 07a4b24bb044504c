package relay

import "sort"

// LatencyStats summarizes attempt latency for one stage.
type LatencyStats struct {
	AvgMS    float64 `json:"avg_ms"`
	MedianMS float64 `json:"median_ms"`
}

// Summary aggregates a run's transcript records for end-of-run reporting.
// TotalTurns counts logical turns (first attempts); TotalAttempts counts
// every physical request including retries.
type Summary struct {
	TotalTurns       int                    `json:"total_turns"`
	TotalAttempts    int                    `json:"total_attempts"`
	Retries          int                    `json:"retries"`
	RepeatsPrevented int                    `json:"repeats_prevented"`
	FallbacksByStage map[Stage]int          `json:"fallbacks_by_stage"`
	ElapsedByStage   map[Stage]LatencyStats `json:"elapsed_ms_by_stage"`
}

// Summarize folds transcript records into run-level counters: turn and
// attempt counts, retries (attempts beyond the first of a logical turn),
// repeat-guard hits, fallback occurrences per stage and latency per stage.
func Summarize(records []TranscriptRecord) Summary {
	summary := Summary{
		TotalAttempts:    len(records),
		FallbacksByStage: map[Stage]int{},
		ElapsedByStage:   map[Stage]LatencyStats{},
	}
	elapsed := map[Stage][]float64{}
	for _, rec := range records {
		if rec.Retry == 0 {
			summary.TotalTurns++
		} else {
			summary.Retries++
		}
		if rec.RepeatPrevented {
			summary.RepeatsPrevented++
		}
		if rec.FallbackReason != nil {
			summary.FallbacksByStage[rec.Stage]++
		}
		elapsed[rec.Stage] = append(elapsed[rec.Stage], float64(rec.ElapsedMS))
	}
	for stage, samples := range elapsed {
		summary.ElapsedByStage[stage] = LatencyStats{
			AvgMS:    mean(samples),
			MedianMS: median(samples),
		}
	}
	return summary
}

func mean(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var total float64
	for _, s := range samples {
		total += s
	}
	return total / float64(len(samples))
}

func median(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
