package rrtplanner

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// MergeObstacles removes obstacle polygons that are fully contained within
// other obstacles. This shrinks the collision index without changing the
// forbidden region.
func MergeObstacles(obstacles []orb.Polygon) []orb.Polygon {
	if len(obstacles) <= 1 {
		return obstacles
	}

	contained := make([]bool, len(obstacles))
	for i := range obstacles {
		if contained[i] {
			continue
		}
		for j := range obstacles {
			if i == j || contained[j] {
				continue
			}
			if polygonContainedIn(obstacles[i], obstacles[j]) {
				contained[i] = true
				break
			}
			if polygonContainedIn(obstacles[j], obstacles[i]) {
				contained[j] = true
			}
		}
	}

	result := make([]orb.Polygon, 0, len(obstacles))
	for i := range obstacles {
		if !contained[i] {
			result = append(result, obstacles[i])
		}
	}
	return result
}

// polygonContainedIn checks if polygon a is fully contained within polygon
// b: a cheap bounding-box test first, then every outer-ring vertex of a
// against b.
func polygonContainedIn(a, b orb.Polygon) bool {
	if len(a) == 0 || len(a[0]) == 0 || len(b) == 0 {
		return false
	}

	ab, bb := a.Bound(), b.Bound()
	if ab.Min[0] < bb.Min[0] || ab.Max[0] > bb.Max[0] ||
		ab.Min[1] < bb.Min[1] || ab.Max[1] > bb.Max[1] {
		return false
	}

	for _, v := range a[0] {
		if !planar.PolygonContains(b, v) {
			return false
		}
	}
	return true
}
