package rrtplanner

import (
	"math"

	"github.com/paulmach/orb"
)

// direction calculates the cross product to determine orientation.
func direction(p1, p2, p3 orb.Point) float64 {
	return (p3[0]-p1[0])*(p2[1]-p1[1]) - (p2[0]-p1[0])*(p3[1]-p1[1])
}

// onSegment checks if point q lies on segment pr.
func onSegment(p, r, q orb.Point) bool {
	return q[0] <= math.Max(p[0], r[0]) && q[0] >= math.Min(p[0], r[0]) &&
		q[1] <= math.Max(p[1], r[1]) && q[1] >= math.Min(p[1], r[1])
}

// segmentsIntersect checks if segments p1-p2 and p3-p4 intersect. Segments
// that share an endpoint never count as intersecting, even when they are
// identical or overlap collinearly beyond that endpoint.
func segmentsIntersect(p1, p2, p3, p4 orb.Point) bool {
	if (p1 == p3 && p2 == p4) || (p1 == p4 && p2 == p3) {
		return false
	}
	if p1 == p3 || p1 == p4 || p2 == p3 || p2 == p4 {
		return false
	}

	d1 := direction(p3, p4, p1)
	d2 := direction(p3, p4, p2)
	d3 := direction(p1, p2, p3)
	d4 := direction(p1, p2, p4)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	// Collinear cases
	if d1 == 0 && onSegment(p3, p4, p1) {
		return true
	}
	if d2 == 0 && onSegment(p3, p4, p2) {
		return true
	}
	if d3 == 0 && onSegment(p1, p2, p3) {
		return true
	}
	if d4 == 0 && onSegment(p1, p2, p4) {
		return true
	}

	return false
}

// segmentIntersectsPolygon checks if segment p1-p2 crosses any edge of any
// ring of the polygon.
func segmentIntersectsPolygon(p1, p2 orb.Point, poly orb.Polygon) bool {
	for _, ring := range poly {
		n := len(ring)
		if n < 2 {
			continue
		}
		for i := 0; i < n; i++ {
			if segmentsIntersect(p1, p2, ring[i], ring[(i+1)%n]) {
				return true
			}
		}
	}
	return false
}
