// Package service defines the world service boundary between the
// simulation and its transports.
//
// The service package implements:
//   - The WorldService interface every transport programs against
//   - A mutex-guarded implementation around one world controller
//   - The fixed-rate simulation loop (Run) and its Publisher hook
//   - Conversion between world snapshots and the save slot schema
//
// Input model:
//
// Transports never mutate the world directly; they report intents.
// ApplyIntent merges each report into the pending input for the next
// step: movement flags hold their last reported value (held keys),
// press flags latch until a step consumes them, so a press that lands
// between two ticks is never lost.
//
// Concurrency:
//
// A single mutex serializes every operation on the controller. The Run
// loop, HTTP handlers and websocket intent sink can therefore share one
// WorldService without further coordination.
//
// Usage:
//
//	svc := service.NewWorldService(mapManager, library, store)
//	go service.Run(ctx, svc, hub)
package service
