package rrtplanner

import (
	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// rectExtent pads degenerate bounding boxes; rtreego rejects zero-length
// rectangle sides.
const rectExtent = 1e-9

// obstacleEntry wraps a polygon for R-tree storage.
type obstacleEntry struct {
	poly orb.Polygon
	rect rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (o *obstacleEntry) Bounds() rtreego.Rect {
	return o.rect
}

func boundToRect(b orb.Bound) (rtreego.Rect, error) {
	return rtreego.NewRect(
		rtreego.Point{b.Min[0], b.Min[1]},
		[]float64{b.Max[0] - b.Min[0] + rectExtent, b.Max[1] - b.Min[1] + rectExtent},
	)
}

// PolygonCollisionChecker treats a set of planar polygons as the forbidden
// region. A state collides when its (x, y) projection lies inside an
// obstacle; a trajectory when any of its states collides or any consecutive
// segment crosses an obstacle boundary. Candidate obstacles are narrowed
// with an R-tree over their bounding boxes.
type PolygonCollisionChecker struct {
	tree *rtreego.Rtree
}

// NewPolygonCollisionChecker indexes the obstacle polygons. Run the
// obstacles through MergeObstacles first when the set may contain nested
// polygons.
func NewPolygonCollisionChecker(obstacles []orb.Polygon) *PolygonCollisionChecker {
	tree := rtreego.NewTree(2, 25, 50)
	for _, poly := range obstacles {
		rect, err := boundToRect(poly.Bound())
		if err != nil {
			continue
		}
		tree.Insert(&obstacleEntry{poly: poly, rect: rect})
	}
	return &PolygonCollisionChecker{tree: tree}
}

// CheckState reports whether the state's position is collision-free.
func (c *PolygonCollisionChecker) CheckState(s State) bool {
	if len(s) < 2 {
		return true
	}
	return c.pointFree(orb.Point{s[0], s[1]})
}

func (c *PolygonCollisionChecker) pointFree(pt orb.Point) bool {
	for _, candidate := range c.searchSegment(pt, pt) {
		if planar.PolygonContains(candidate.poly, pt) {
			return false
		}
	}
	return true
}

// CheckTrajectory reports whether the whole trajectory, endpoint included,
// is collision-free.
func (c *PolygonCollisionChecker) CheckTrajectory(t *Trajectory) bool {
	for _, s := range t.States {
		if !c.CheckState(s) {
			return false
		}
	}
	for i := 0; i+1 < len(t.States); i++ {
		if len(t.States[i]) < 2 || len(t.States[i+1]) < 2 {
			continue
		}
		p1 := orb.Point{t.States[i][0], t.States[i][1]}
		p2 := orb.Point{t.States[i+1][0], t.States[i+1][1]}
		if !c.segmentFree(p1, p2) {
			return false
		}
	}
	return true
}

func (c *PolygonCollisionChecker) segmentFree(p1, p2 orb.Point) bool {
	mid := orb.Point{(p1[0] + p2[0]) / 2, (p1[1] + p2[1]) / 2}
	for _, candidate := range c.searchSegment(p1, p2) {
		if segmentIntersectsPolygon(p1, p2, candidate.poly) {
			return false
		}
		// A segment entirely inside an obstacle crosses no boundary; the
		// midpoint test catches it.
		if planar.PolygonContains(candidate.poly, mid) {
			return false
		}
	}
	return true
}

func (c *PolygonCollisionChecker) searchSegment(p1, p2 orb.Point) []*obstacleEntry {
	bound := orb.Bound{Min: p1, Max: p1}
	bound = bound.Extend(p2)
	rect, err := boundToRect(bound)
	if err != nil {
		return nil
	}
	results := c.tree.SearchIntersect(rect)
	out := make([]*obstacleEntry, 0, len(results))
	for _, item := range results {
		out = append(out, item.(*obstacleEntry))
	}
	return out
}
