package ranch

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

func TestMiddlePoint(t *testing.T) {
	p1 := orb.Point{37.6417350769043, 55.751849391735284}
	p2 := orb.Point{37.668514251708984, 55.73261980350401}
	res := orb.Point{37.65512796336629, 55.742235325526806}
	mpt := middlePointSegment(p1, p2)
	if mpt != res {
		t.Errorf("Middle point must be %v, but got %v", res, mpt)
	}
}

func TestLineMiddlePoint(t *testing.T) {
	line := orb.LineString{{0, 0}, {1, 0}, {3, 0}, {4, 0}}
	idx, mpt := lineMiddlePoint(line)
	if idx != 1 {
		t.Errorf("Middle point should be after %d-th point, not %d-th", 1, idx)
	}
	if math.Abs(mpt.Lon()-2.0) > 1e-9 || math.Abs(mpt.Lat()) > 1e-9 {
		t.Errorf("Middle point must be %v, but got %v", orb.Point{2, 0}, mpt)
	}
}

func TestPointAlongLineClamped(t *testing.T) {
	line := orb.LineString{{0, 0}, {10, 0}}
	_, pt := pointAlongLine(line, 100, func(p, q orb.Point) float64 { return q.X() - p.X() })
	if pt != line[1] {
		t.Errorf("Point beyond line's end must be clamped to %v, but got %v", line[1], pt)
	}
	_, pt = pointAlongLine(line, -1, func(p, q orb.Point) float64 { return q.X() - p.X() })
	if pt != line[0] {
		t.Errorf("Point before line's start must be clamped to %v, but got %v", line[0], pt)
	}
}

func TestSampleLine(t *testing.T) {
	line := orb.LineString{{0, 0}, {10, 0}}
	samples := sampleLine(line, 2.5)
	correct := []orb.Point{{0, 0}, {2.5, 0}, {5, 0}, {7.5, 0}, {10, 0}}
	if len(samples) != len(correct) {
		t.Errorf("Number of samples should be %d, but got %d", len(correct), len(samples))
		return
	}
	for i := range correct {
		if math.Abs(samples[i].X()-correct[i].X()) > 1e-9 || math.Abs(samples[i].Y()-correct[i].Y()) > 1e-9 {
			t.Errorf("Sample #%d should be %v, but got %v", i, correct[i], samples[i])
		}
	}
}

func TestSampleLineMinSpacing(t *testing.T) {
	line := orb.LineString{{0, 0}, {10, 0}}
	samples := sampleLine(line, 1e-9)
	maxSamples := int(math.Ceil(10/MIN_SAMPLE_SPACING_METERS)) + 2
	if len(samples) > maxSamples {
		t.Errorf("Number of samples must be at most %d, but got %d", maxSamples, len(samples))
	}
	if len(samples) < 2 || math.Abs(samples[len(samples)-1].X()-10) > 1e-6 {
		t.Errorf("Last sample must be %v, but got %v", line[1], samples)
	}
}

func TestLocalProjection(t *testing.T) {
	origin := orb.Point{-122.4194, 37.7749}
	other := orb.Point{-122.4184, 37.7759}
	proj := newLocalProjection(origin)
	projected := proj.point(other)
	planarDist := math.Hypot(projected.X(), projected.Y())
	haversineDist := geo.DistanceHaversine(origin, other)
	if math.Abs(planarDist-haversineDist) > 0.05 {
		t.Errorf("Projected distance should be close to %f, but got %f", haversineDist, planarDist)
	}
}

func TestValidGeometry(t *testing.T) {
	if isValidPoint(orb.Point{math.NaN(), 10}) {
		t.Errorf("NaN longitude must be invalid")
	}
	if isValidPoint(orb.Point{10, 91}) {
		t.Errorf("Latitude out of range must be invalid")
	}
	if isValidLine(orb.LineString{{0, 0}}) {
		t.Errorf("Line with single point must be invalid")
	}
	if !isValidLine(orb.LineString{{0, 0}, {1, 1}}) {
		t.Errorf("Line with two valid points must be valid")
	}
}

func TestSameLine(t *testing.T) {
	a := orb.LineString{{0, 0}, {1, 1}, {2, 1}}
	b := orb.LineString{{2, 1}, {1, 1}, {0, 0}}
	if !sameLine(a, b) {
		t.Errorf("Reversed line must be considered the same")
	}
	if sameLine(a, orb.LineString{{0, 0}, {2, 1}}) {
		t.Errorf("Different lines must not be considered the same")
	}
}
