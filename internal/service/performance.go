package service

import "math"

const (
	performanceWindow = 7

	perfSeedSuffix    = "perf"
	engageSeedSuffix  = "engage"
	perfFallbackMin   = 45
	perfFallbackMax   = 95
	engageFallbackMin = 50
	engageFallbackMax = 90
)

// PerformanceResult carries the unrounded performance and engagement scores.
type PerformanceResult struct {
	Performance float64
	Engagement  float64
	Fallback    bool
}

// CalculatePerformance scores the trailing week of metrics. An empty series
// defers to the fallback generator.
func CalculatePerformance(locationID string, metrics []PerformanceMetric) PerformanceResult {
	if len(metrics) == 0 {
		return PerformanceResult{
			Performance: float64(FallbackScore(locationID+perfSeedSuffix, perfFallbackMin, perfFallbackMax)),
			Engagement:  float64(FallbackScore(locationID+engageSeedSuffix, engageFallbackMin, engageFallbackMax)),
			Fallback:    true,
		}
	}

	window := metrics
	if len(window) > performanceWindow {
		window = window[len(window)-performanceWindow:]
	}

	var views, impressions, actions int64
	for _, m := range window {
		views += int64(nonNegative(m.Views))
		impressions += int64(nonNegative(m.Impressions))
		actions += int64(nonNegative(m.Calls) + nonNegative(m.WebsiteClicks) + nonNegative(m.DirectionRequests))
	}

	avgDailyViews := float64(views) / float64(len(window))
	performance := math.Min(100, (avgDailyViews/100)*100)

	var engagementRate float64
	if impressions > 0 {
		engagementRate = (float64(actions) / float64(impressions)) * 100
	}
	engagement := math.Min(100, engagementRate*20)

	return PerformanceResult{
		Performance: clampScore(performance),
		Engagement:  clampScore(engagement),
	}
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func clampScore(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
