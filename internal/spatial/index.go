// Package spatial prefilters country boundaries by bounding box so
// classification only runs the exact ring test against plausible candidates.
package spatial

import (
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"

	"github.com/couchcryptid/quake-map/internal/domain"
)

const (
	dimensions  = 2
	minChildren = 25
	maxChildren = 50

	// queryTolerance pads a query point into a tiny rectangle.
	queryTolerance = 1e-9
)

// boundaryBox wraps a boundary's index and bounds to implement rtreego.Spatial.
type boundaryBox struct {
	index int
	rect  rtreego.Rect
}

func (b *boundaryBox) Bounds() rtreego.Rect {
	return b.rect
}

// Index is an R-tree over boundary bounding boxes. It is immutable after
// construction and safe for concurrent reads.
type Index struct {
	tree *rtreego.Rtree
}

// NewIndex bulk-loads the bounding box of every boundary that has at least
// one ring able to contain a point. Boundaries without such a ring could
// never match, so they are left out.
func NewIndex(boundaries []domain.Boundary) *Index {
	objs := make([]rtreego.Spatial, 0, len(boundaries))
	for i, b := range boundaries {
		bound, ok := boundsOf(b)
		if !ok {
			continue
		}
		rect, err := rtreego.NewRectFromPoints(
			rtreego.Point{bound.Min.Lon(), bound.Min.Lat()},
			rtreego.Point{bound.Max.Lon(), bound.Max.Lat()},
		)
		if err != nil {
			continue
		}
		objs = append(objs, &boundaryBox{index: i, rect: rect})
	}
	return &Index{tree: rtreego.NewTree(dimensions, minChildren, maxChildren, objs...)}
}

// Len returns the number of indexed boundaries.
func (x *Index) Len() int {
	return x.tree.Size()
}

// Candidates returns, in ascending order, the indices of boundaries whose
// bounding box covers p.
func (x *Index) Candidates(p domain.Location) []int {
	hits := x.tree.SearchIntersect(rtreego.Point{p.Lon, p.Lat}.ToRect(queryTolerance))
	if len(hits) == 0 {
		return nil
	}
	out := make([]int, len(hits))
	for i, h := range hits {
		out[i] = h.(*boundaryBox).index
	}
	sort.Ints(out)
	return out
}

// boundsOf unions the bounds of every ring with at least three vertices.
func boundsOf(b domain.Boundary) (orb.Bound, bool) {
	var (
		bound orb.Bound
		found bool
	)
	for _, ring := range b.Rings {
		if len(ring) < 3 {
			continue
		}
		r := make(orb.Ring, len(ring))
		for i, loc := range ring {
			r[i] = loc.Point()
		}
		if !found {
			bound = r.Bound()
			found = true
			continue
		}
		bound = bound.Union(r.Bound())
	}
	return bound, found
}
