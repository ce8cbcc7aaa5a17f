package engine

import (
	"github.com/mkowalska/anime-security-training/game/geom"
	"github.com/mkowalska/anime-security-training/game/tiled"
)

// Kind identifies the variant of an interactive object.
type Kind string

const (
	KindNPC    Kind = "npc"
	KindPortal Kind = "portal"
	KindBook   Kind = "book"
)

// priority orders candidate kinds for tie-breaking: portal beats NPC
// beats book at equal distance.
func (k Kind) priority() int {
	switch k {
	case KindPortal:
		return 0
	case KindNPC:
		return 1
	default:
		return 2
	}
}

// Candidate is the nearest-interactable query result. Exactly one of
// NPC, Portal, Book is set, matching Kind.
type Candidate struct {
	Kind   Kind
	NPC    *tiled.NPC
	Portal *tiled.Portal
	Book   *tiled.Book
	DistSq float64
}

// Rect returns the candidate object's rectangle.
func (c *Candidate) Rect() geom.Rect {
	switch c.Kind {
	case KindNPC:
		return c.NPC.Rect
	case KindPortal:
		return c.Portal.Rect
	default:
		return c.Book.Rect
	}
}

// Index answers spatial queries against one map document. The linear
// implementation is authoritative; any broad-phase replacement must
// return identical results for identical input.
type Index interface {
	// CollidingWith returns every collider rectangle overlapping r,
	// in insertion order.
	CollidingWith(r geom.Rect) []geom.Rect

	// Nearest returns the closest in-range interactive object for a
	// player rectangle, or nil when nothing is in activation range.
	// Ties break by kind priority (portal > npc > book), then by
	// distance, then by insertion order.
	Nearest(player geom.Rect) *Candidate
}

type linearIndex struct {
	doc *tiled.MapDocument
}

// NewIndex builds the spatial index for a loaded map document. The
// index holds a reference to the document and is rebuilt whenever the
// document is replaced.
func NewIndex(doc *tiled.MapDocument) Index {
	return &linearIndex{doc: doc}
}

func (x *linearIndex) CollidingWith(r geom.Rect) []geom.Rect {
	var hits []geom.Rect
	for _, c := range x.doc.Colliders {
		if r.Intersects(c) {
			hits = append(hits, c)
		}
	}
	return hits
}

func (x *linearIndex) Nearest(player geom.Rect) *Candidate {
	center := player.Center()
	var best *Candidate

	consider := func(c *Candidate) {
		if best == nil {
			best = c
			return
		}
		// Priority first, then distance. Insertion order wins ties
		// because later equal candidates never replace the current
		// best.
		if c.Kind.priority() < best.Kind.priority() {
			if c.DistSq <= best.DistSq {
				best = c
			}
			return
		}
		if c.DistSq < best.DistSq {
			best = c
		}
	}

	for i := range x.doc.Portals {
		p := &x.doc.Portals[i]
		d := rangedDistSq(player, center, p.Rect, PortalRange, true)
		if d >= 0 {
			consider(&Candidate{Kind: KindPortal, Portal: p, DistSq: d})
		}
	}
	for i := range x.doc.NPCs {
		n := &x.doc.NPCs[i]
		d := rangedDistSq(player, center, n.Rect, NPCRange, false)
		if d >= 0 {
			consider(&Candidate{Kind: KindNPC, NPC: n, DistSq: d})
		}
	}
	for i := range x.doc.Books {
		b := &x.doc.Books[i]
		d := rangedDistSq(player, center, b.Rect, BookRange, true)
		if d >= 0 {
			consider(&Candidate{Kind: KindBook, Book: b, DistSq: d})
		}
	}

	return best
}

// rangedDistSq returns the squared center distance between the player
// and an object rect, or -1 when out of range. When overlapCounts is
// set, standing inside the object rect reports distance zero.
func rangedDistSq(player geom.Rect, center geom.Point, obj geom.Rect, maxRange float64, overlapCounts bool) float64 {
	if overlapCounts && player.Intersects(obj) {
		return 0
	}
	d := geom.DistSq(center, obj.Center())
	if d > maxRange*maxRange {
		return -1
	}
	return d
}
