package engine

import (
	"testing"

	"github.com/mkowalska/anime-security-training/game/geom"
	"github.com/mkowalska/anime-security-training/game/tiled"
)

func newTestResolver(bounds geom.Rect, colliders ...geom.Rect) (*Resolver, Index) {
	doc := &tiled.MapDocument{Colliders: colliders}
	index := NewIndex(doc)
	return NewResolver(index, bounds), index
}

func TestResolve_FreeMovement(t *testing.T) {
	resolver, _ := newTestResolver(geom.NewRect(0, 0, 200, 200))

	rect := resolver.Resolve(geom.NewRect(50, 50, 16, 16), 10, -5)
	if rect.X != 60 || rect.Y != 45 {
		t.Errorf("Expected (60,45), got (%g,%g)", rect.X, rect.Y)
	}
}

func TestResolve_StopsAtCollider(t *testing.T) {
	wall := geom.NewRect(20, 0, 16, 100)
	resolver, index := newTestResolver(geom.NewRect(0, 0, 200, 200), wall)

	rect := resolver.Resolve(geom.NewRect(0, 10, 16, 16), 10, 0)
	if rect.Right() > wall.X {
		t.Errorf("Expected right edge at or before %g, got %g", wall.X, rect.Right())
	}
	if rect.X != 4 {
		t.Errorf("Expected push-out to x=4, got %g", rect.X)
	}
	if hits := index.CollidingWith(rect); len(hits) != 0 {
		t.Errorf("Resolved rect still collides: %v", hits)
	}
}

func TestResolve_SlidesAlongWall(t *testing.T) {
	// Diagonal push into a vertical wall: X blocked, Y keeps going.
	wall := geom.NewRect(20, 0, 16, 100)
	resolver, _ := newTestResolver(geom.NewRect(0, 0, 200, 200), wall)

	rect := resolver.Resolve(geom.NewRect(0, 10, 16, 16), 10, 8)
	if rect.Right() > wall.X {
		t.Errorf("Expected X to stop at the wall, right edge %g", rect.Right())
	}
	if rect.Y != 18 {
		t.Errorf("Expected Y to slide to 18, got %g", rect.Y)
	}
}

func TestResolve_ClampsToBounds(t *testing.T) {
	bounds := geom.NewRect(0, 0, 100, 100)
	resolver, _ := newTestResolver(bounds)

	rect := resolver.Resolve(geom.NewRect(90, 90, 16, 16), 50, 50)
	if rect.Right() > bounds.Right() || rect.Bottom() > bounds.Bottom() {
		t.Errorf("Rect escaped bounds: %+v", rect)
	}
	if rect.X != 84 || rect.Y != 84 {
		t.Errorf("Expected clamp to (84,84), got (%g,%g)", rect.X, rect.Y)
	}

	rect = resolver.Resolve(geom.NewRect(5, 5, 16, 16), -50, -50)
	if rect.X != 0 || rect.Y != 0 {
		t.Errorf("Expected clamp to (0,0), got (%g,%g)", rect.X, rect.Y)
	}
}

func TestResolve_OverlappingColliders(t *testing.T) {
	// Two overlapping walls; the push-out must clear both.
	a := geom.NewRect(40, 0, 20, 100)
	b := geom.NewRect(50, 0, 20, 100)
	resolver, index := newTestResolver(geom.NewRect(0, 0, 200, 200), a, b)

	rect := resolver.Resolve(geom.NewRect(20, 10, 16, 16), 30, 0)
	if hits := index.CollidingWith(rect); len(hits) != 0 {
		t.Errorf("Resolved rect still collides: %v", hits)
	}
	if rect.Right() > a.X {
		t.Errorf("Expected right edge at or before %g, got %g", a.X, rect.Right())
	}
}

func TestResolve_LeftwardPushOut(t *testing.T) {
	wall := geom.NewRect(20, 0, 16, 100)
	resolver, _ := newTestResolver(geom.NewRect(0, 0, 200, 200), wall)

	rect := resolver.Resolve(geom.NewRect(40, 10, 16, 16), -10, 0)
	if rect.X != wall.Right() {
		t.Errorf("Expected push-out to x=%g, got %g", wall.Right(), rect.X)
	}
}

func TestResolve_ZeroDelta(t *testing.T) {
	resolver, _ := newTestResolver(geom.NewRect(0, 0, 200, 200))

	start := geom.NewRect(50, 50, 16, 16)
	rect := resolver.Resolve(start, 0, 0)
	if rect != start {
		t.Errorf("Expected no movement, got %+v", rect)
	}
}
