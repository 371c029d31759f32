package merge

import (
	"time"

	"propmerge/domain/core"
	"propmerge/domain/market"
)

// buildBenchmark records the merge's own runtime profile together with the
// timings, cache flags and model versions the contributing calls reported.
func (m *Merger) buildBenchmark(callIDs []string, responses map[string]*market.PredictionResponse, properties []market.PropertyRecord, targets map[market.TargetMetric]*market.TargetResult, start time.Time) market.PerformanceBenchmark {
	elapsed := time.Since(start)

	responseTimes := make(map[string]float64, len(callIDs))
	modelVersions := make(map[string]string, len(callIDs))
	cached := 0
	for _, callID := range callIDs {
		r := responses[callID]
		responseTimes[callID] = r.ProcessingTimeMs
		modelVersions[callID] = r.ModelVersion
		if r.Cached {
			cached++
		}
	}

	cacheRatio := 0.0
	if len(callIDs) > 0 {
		cacheRatio = float64(cached) / float64(len(callIDs))
	}

	totalPredictions := 0
	for _, tr := range targets {
		totalPredictions += len(tr.Predictions)
	}

	seconds := elapsed.Seconds()
	propsPerSec := 0.0
	predsPerSec := 0.0
	if seconds > 0 {
		propsPerSec = float64(len(properties)) / seconds
		predsPerSec = float64(totalPredictions) / seconds
	}

	return market.PerformanceBenchmark{
		TotalDurationMs:      float64(elapsed.Microseconds()) / 1000.0,
		ResponseTimesMs:      responseTimes,
		CacheHitRatio:        cacheRatio,
		PropertiesPerSecond:  propsPerSec,
		PredictionsPerSecond: predsPerSec,
		ModelVersions:        modelVersions,
		MeasuredAt:           core.Now(),
	}
}
