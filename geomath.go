package ranch

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
)

const (
	pi180    = math.Pi / 180.0
	pi180Rev = 180.0 / math.Pi
)

// degreesToRadians deg = r * pi / 180
func degreesToRadians(d float64) float64 {
	return d * pi180
}

// radiansTodegrees r = deg  * 180 / pi
func radiansTodegrees(d float64) float64 {
	return d * pi180Rev
}

// isValidPoint checks that point is finite and lies in WGS84 bounds
func isValidPoint(pt orb.Point) bool {
	lon, lat := pt.Lon(), pt.Lat()
	if math.IsNaN(lon) || math.IsNaN(lat) || math.IsInf(lon, 0) || math.IsInf(lat, 0) {
		return false
	}
	return lon >= -180 && lon <= 180 && lat >= -90 && lat <= 90
}

// isValidLine checks that line has at least two points and all of them are valid
func isValidLine(line orb.LineString) bool {
	if len(line) < 2 {
		return false
	}
	for _, pt := range line {
		if !isValidPoint(pt) {
			return false
		}
	}
	return true
}

// middlePointSegment return middle point for given segment
func middlePointSegment(p, q orb.Point) orb.Point {
	lat1 := degreesToRadians(p.Lat())
	lon1 := degreesToRadians(p.Lon())
	lat2 := degreesToRadians(q.Lat())
	lon2 := degreesToRadians(q.Lon())

	Bx := math.Cos(lat2) * math.Cos(lon2-lon1)
	By := math.Cos(lat2) * math.Sin(lon2-lon1)

	latMid := math.Atan2(math.Sin(lat1)+math.Sin(lat2), math.Sqrt((math.Cos(lat1)+Bx)*(math.Cos(lat1)+Bx)+By*By))
	lonMid := lon1 + math.Atan2(By, math.Cos(lat1)+Bx)
	return orb.Point{radiansTodegrees(lonMid), radiansTodegrees(latMid)}
}

// lineMiddlePoint returns point lying at the half of line's length (not the centroid) and index of point in line right before it.
// Distances are haversine.
func lineMiddlePoint(line orb.LineString) (int, orb.Point) {
	if len(line) == 1 {
		return 0, line[0]
	}
	if len(line) == 2 {
		return 0, middlePointSegment(line[0], line[1])
	}
	return pointAlongLine(line, geo.LengthHaversign(line)/2.0, geo.DistanceHaversine)
}

// pointAlongLine returns point which lies at given distance from the start of the line and index of point in line right before it.
// Distance is clamped to line's bounds.
func pointAlongLine(line orb.LineString, distance float64, distanceFn func(p, q orb.Point) float64) (int, orb.Point) {
	if distance <= 0 {
		return 0, line[0]
	}
	cl := 0.0
	for i := 1; i < len(line); i++ {
		tmpDist := distanceFn(line[i-1], line[i])
		if tmpDist > 0 && distance <= cl+tmpDist {
			return i - 1, pointOnSegmentByFraction(line[i-1], line[i], (distance-cl)/tmpDist)
		}
		cl += tmpDist
	}
	return len(line) - 2, line[len(line)-1]
}

// pointOnSegmentByFraction returns a point on given segment using fraction of segment's length
func pointOnSegmentByFraction(p, q orb.Point, fraction float64) orb.Point {
	return orb.Point{
		(1-fraction)*p.X() + (fraction * q.X()),
		(1-fraction)*p.Y() + (fraction * q.Y()),
	}
}

// sameLine checks if lines are identical in either direction
func sameLine(a, b orb.LineString) bool {
	if a.Equal(b) {
		return true
	}
	reversed := b.Clone()
	reversed.Reverse()
	return a.Equal(reversed)
}

// localProjection is an equirectangular projection to meters around an origin.
// Good enough for the few hundred meters links span.
type localProjection struct {
	origin orb.Point
	kx     float64
	ky     float64
}

func newLocalProjection(origin orb.Point) localProjection {
	ky := orb.EarthRadius * pi180
	return localProjection{
		origin: origin,
		kx:     ky * math.Cos(degreesToRadians(origin.Lat())),
		ky:     ky,
	}
}

func (proj localProjection) point(pt orb.Point) orb.Point {
	return orb.Point{
		(pt.Lon() - proj.origin.Lon()) * proj.kx,
		(pt.Lat() - proj.origin.Lat()) * proj.ky,
	}
}

func (proj localProjection) line(line orb.LineString) orb.LineString {
	newLine := make(orb.LineString, len(line))
	for i, pt := range line {
		newLine[i] = proj.point(pt)
	}
	return newLine
}

// sampleLine returns evenly spaced points along planar line, both ends included
func sampleLine(line orb.LineString, spacing float64) []orb.Point {
	total := planar.Length(line)
	if total == 0 {
		return []orb.Point{line[0], line[len(line)-1]}
	}
	if spacing < MIN_SAMPLE_SPACING_METERS {
		spacing = MIN_SAMPLE_SPACING_METERS
	}
	n := int(math.Ceil(total / spacing))
	if n < 1 {
		n = 1
	}
	step := total / float64(n)
	samples := make([]orb.Point, 0, n+1)
	for i := 0; i <= n; i++ {
		_, pt := pointAlongLine(line, step*float64(i), planar.Distance)
		samples = append(samples, pt)
	}
	return samples
}
