package ranch

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// overlapScore estimates shared length of two lines as a fraction in [0, 1].
// Both lines are sampled every spacingMeters, and a sample is shared when it lies within bufferMeters of the other line.
// Score is the minimum of the two directional fractions, so a short line lying on a long one scores low.
func overlapScore(a, b orb.LineString, bufferMeters, spacingMeters float64) float64 {
	if len(a) < 2 || len(b) < 2 {
		return 0
	}
	proj := newLocalProjection(a[0])
	planarA, planarB := proj.line(a), proj.line(b)
	return math.Min(
		coveredFraction(planarA, planarB, bufferMeters, spacingMeters),
		coveredFraction(planarB, planarA, bufferMeters, spacingMeters),
	)
}

// coveredFraction returns share of samples of line lying within buffer of other line. Both lines are planar (meters).
func coveredFraction(line, other orb.LineString, buffer, spacing float64) float64 {
	samples := sampleLine(line, spacing)
	if len(samples) == 0 {
		return 0
	}
	covered := 0
	for _, sample := range samples {
		if planar.DistanceFrom(other, sample) <= buffer {
			covered++
		}
	}
	return float64(covered) / float64(len(samples))
}
