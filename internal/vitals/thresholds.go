// Package vitals holds the Core Web Vitals metric definitions: names,
// rating thresholds, and the layout-shift session-windowing algorithm.
package vitals

// Metric names the fixed set of vitals the agent reports.
type Metric string

const (
	LCP  Metric = "LCP"
	FCP  Metric = "FCP"
	CLS  Metric = "CLS"
	INP  Metric = "INP"
	TTFB Metric = "TTFB"
)

// Rating is the three-level score a measurement is bucketed into.
type Rating string

const (
	RatingGood             Rating = "good"
	RatingNeedsImprovement Rating = "needs-improvement"
	RatingPoor             Rating = "poor"
)

// thresholds maps each metric to its [good ceiling, needs-improvement
// ceiling]. Time-based metrics are in milliseconds, CLS is unitless.
// These are fixed constants of the metric definitions, not configuration.
var thresholds = map[Metric][2]float64{
	LCP:  {2500, 4000},
	FCP:  {1800, 3000},
	CLS:  {0.1, 0.25},
	INP:  {200, 500},
	TTFB: {800, 1800},
}

// Rate buckets a value against the metric's thresholds. Both ceilings are
// inclusive: a value exactly at the good ceiling rates good.
func Rate(metric Metric, value float64) Rating {
	t, ok := thresholds[metric]
	if !ok {
		// Unknown metrics have no thresholds to rate against.
		return RatingGood
	}

	switch {
	case value <= t[0]:
		return RatingGood
	case value <= t[1]:
		return RatingNeedsImprovement
	default:
		return RatingPoor
	}
}
