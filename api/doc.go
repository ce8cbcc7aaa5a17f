// Package api provides the HTTP REST surface of the training world.
//
// The api package implements:
//   - World state and intent endpoints
//   - Save slot management (new, save, load, list)
//   - Map content listing and inspection
//   - WebSocket upgrade handling
//   - Static file serving
//
// Endpoints:
//
// World:
//   - GET  /api/state  - Current render snapshot
//   - POST /api/intent - Queue an input intent for the next tick
//
// Save slots:
//   - POST /api/game/new  - Reset to a fresh world
//   - POST /api/game/save - Write the current state to a slot
//   - POST /api/game/load - Restore from a slot
//   - GET  /api/saves     - List save slots on disk
//
// Content:
//   - GET /api/maps      - List map content files
//   - GET /api/maps/{id} - Load one map document (generated fallback applies)
//
// Other:
//   - GET /healthz - Liveness check
//   - GET /ws      - WebSocket upgrade for the frame stream
//
// Request/Response Format:
//
// All endpoints accept and return JSON. Intents are sent as POST with
// the intent flags in the body:
//
//	{
//	  "up": true,
//	  "interact": true
//	}
//
// Save and load take an optional slot name, defaulting to slot1:
//
//	{"slot": "slot2"}
//
// Error Handling:
//
// Errors are returned as JSON with appropriate HTTP status codes:
//
//	{
//	  "error": "error message"
//	}
package api
