// Package engine implements the per-map physics of the world runtime.
//
// The engine package covers three concerns, all pure queries over an
// immutable map document:
//   - Spatial Index: which colliders intersect a rectangle, and which
//     interactive object (portal, NPC, book) is nearest a point
//   - Movement Resolver: axis-separated collision resolution that
//     slides along walls and never leaves the player inside a collider
//   - Interaction Arbiter: whether the nearest interactive object is
//     close enough to offer an action, and with what prompt
//
// Core Types:
//
// Index is the spatial query contract, implemented by the linear-scan
// index returned from NewIndex. Object counts per map are tens, not
// millions, so a linear scan is both sufficient and the reference
// behavior any broad-phase replacement must reproduce exactly.
//
// Usage:
//
//	idx := engine.NewIndex(doc)
//	resolver := engine.NewResolver(idx, doc.Bounds())
//	arbiter := engine.NewArbiter(idx, doc.ID)
//
//	rect := resolver.Resolve(playerRect, dx, dy)
//	if offer := arbiter.Evaluate(rect); offer != nil {
//		// surface offer.Prompt to the player
//	}
package engine
