package vitals

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRate_GoodCeilingInclusive(t *testing.T) {
	// A value exactly at the good ceiling rates good.
	assert.Equal(t, RatingGood, Rate(LCP, 2500))
	assert.Equal(t, RatingGood, Rate(FCP, 1800))
	assert.Equal(t, RatingGood, Rate(CLS, 0.1))
	assert.Equal(t, RatingGood, Rate(INP, 200))
	assert.Equal(t, RatingGood, Rate(TTFB, 800))
}

func TestRate_NeedsImprovementCeilingInclusive(t *testing.T) {
	// A value exactly at the needs-improvement ceiling rates
	// needs-improvement, not poor.
	assert.Equal(t, RatingNeedsImprovement, Rate(LCP, 4000))
	assert.Equal(t, RatingNeedsImprovement, Rate(FCP, 3000))
	assert.Equal(t, RatingNeedsImprovement, Rate(CLS, 0.25))
	assert.Equal(t, RatingNeedsImprovement, Rate(INP, 500))
	assert.Equal(t, RatingNeedsImprovement, Rate(TTFB, 1800))
}

func TestRate_AboveCeilings(t *testing.T) {
	assert.Equal(t, RatingNeedsImprovement, Rate(LCP, 2500.01))
	assert.Equal(t, RatingPoor, Rate(LCP, 4000.01))
	assert.Equal(t, RatingPoor, Rate(CLS, 0.26))
	assert.Equal(t, RatingPoor, Rate(INP, 501))
}

func TestRate_Zero(t *testing.T) {
	assert.Equal(t, RatingGood, Rate(CLS, 0))
}
