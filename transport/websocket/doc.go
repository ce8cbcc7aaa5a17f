// Package websocket provides the real-time transport for the training
// world.
//
// The websocket package implements:
//   - Frame broadcasting after every simulation step
//   - Intent forwarding from clients into the world service
//   - Connection lifecycle management with ping/pong keepalive
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each client connection is handled by a dedicated
// goroutine pair for reading and writing. All clients observe the same
// world; there is no per-connection state beyond the send queue.
//
// Message Protocol:
//
// Messages are JSON-encoded:
//   - Incoming: {"type": "intent", "intent": {"up": true, "interact": true}}
//   - Outgoing: {"event": "frame", "frame": <render snapshot>}
//
// Intents reported by any client merge into the pending input of the
// next simulation step. Frames are published by the simulation loop at
// the fixed tick rate; a slow client that cannot drain its send queue
// is disconnected rather than allowed to stall the loop.
//
// Usage:
//
//	hub := websocket.NewHub(func(in world.Intent) {
//		svc.ApplyIntent(context.Background(), in)
//	})
//	go hub.Run()
//	go service.Run(ctx, svc, hub)
package websocket
