// Package world owns the top-level runtime state machine. A Controller
// holds the current map document, the player rectangle, and the modal
// session, and advances them one tick at a time:
//
//	EXPLORING       movement + interaction offers
//	TRANSITIONING   portal transfer (synchronous, atomic document swap)
//	SESSION_ACTIVE  all input forwarded to the dialogue/challenge session
//
// Exactly one state is active per tick; movement input can never leak
// into a session and session input can never move the player. Every
// public operation reports problems through recoverable error tags
// rather than panics, so the caller's loop never dies to content
// issues.
//
// Usage:
//
//	mgr := maps.NewManager("data/maps")
//	lib := dialogue.NewLibrary(".", "data/challenges")
//	ctrl := world.New(mgr, lib)
//	ctrl.Restore(world.DefaultSnapshot())
//
//	result := ctrl.Tick(intent, dt)
//	frame := ctrl.Render()
package world
