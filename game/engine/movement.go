package engine

import (
	"math"

	"github.com/mkowalska/anime-security-training/game/geom"
)

// Resolver applies movement deltas against the spatial index. The two
// axes resolve independently (X first, then Y from the corrected X) so
// that a diagonal push into a wall slides along it instead of stopping
// dead.
type Resolver struct {
	index  Index
	bounds geom.Rect
}

// NewResolver creates a movement resolver for one map. bounds is the
// map's world rectangle; the player rect is clamped inside it before
// collider resolution.
func NewResolver(index Index, bounds geom.Rect) *Resolver {
	return &Resolver{index: index, bounds: bounds}
}

// Resolve moves rect by (dx, dy) and returns the corrected rectangle.
// The result never overlaps a collider.
func (r *Resolver) Resolve(rect geom.Rect, dx, dy float64) geom.Rect {
	if dx != 0 {
		rect = r.resolveAxis(rect, dx, 0)
	}
	if dy != 0 {
		rect = r.resolveAxis(rect, 0, dy)
	}
	return rect
}

// resolveAxis applies a single-axis delta: tentative move, bounds
// clamp, then push-out against each overlapping collider. With several
// simultaneous overlaps the smallest correction applies first and the
// rest re-check, so an L-shaped corner resolves without over-ejecting.
func (r *Resolver) resolveAxis(rect geom.Rect, dx, dy float64) geom.Rect {
	rect.X += dx
	rect.Y += dy

	rect.X = geom.Clamp(rect.X, r.bounds.X, r.bounds.Right()-rect.W)
	rect.Y = geom.Clamp(rect.Y, r.bounds.Y, r.bounds.Bottom()-rect.H)

	// Colliders can overlap each other, so one push-out may reveal or
	// remove other overlaps. Iterate until clean; each pass strictly
	// reduces penetration, and the collider count bounds the passes.
	for range r.indexColliderBudget() {
		hits := r.index.CollidingWith(rect)
		if len(hits) == 0 {
			break
		}
		nearest := hits[0]
		smallest := math.Inf(1)
		for _, c := range hits {
			if corr := correctionDistance(rect, c, dx, dy); corr < smallest {
				smallest = corr
				nearest = c
			}
		}
		rect = pushOut(rect, nearest, dx, dy)
	}
	return rect
}

func (r *Resolver) indexColliderBudget() int {
	// One pass per collider is a safe upper bound for the iteration.
	if hits := r.index.CollidingWith(r.bounds); len(hits) > 0 {
		return len(hits) + 1
	}
	return 1
}

// correctionDistance measures how far rect must move along the travel
// axis to clear collider c. Smaller corrections resolve first.
func correctionDistance(rect, c geom.Rect, dx, dy float64) float64 {
	switch {
	case dx > 0:
		return rect.Right() - c.X
	case dx < 0:
		return c.Right() - rect.X
	case dy > 0:
		return rect.Bottom() - c.Y
	case dy < 0:
		return c.Bottom() - rect.Y
	}
	return 0
}

// pushOut clamps rect to the edge of collider c nearest the direction
// of travel.
func pushOut(rect, c geom.Rect, dx, dy float64) geom.Rect {
	switch {
	case dx > 0:
		rect.X = c.X - rect.W
	case dx < 0:
		rect.X = c.Right()
	case dy > 0:
		rect.Y = c.Y - rect.H
	case dy < 0:
		rect.Y = c.Bottom()
	}
	return rect
}
