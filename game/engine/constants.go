package engine

// Design constants of the world runtime. Ranges are measured between
// rect centers in world pixels; standing inside a portal or book rect
// counts as distance zero.
const (
	PlayerW     = 16.0
	PlayerH     = 16.0
	PlayerSpeed = 160.0 // pixels per second

	NPCRange    = 48.0
	BookRange   = 60.0
	PortalRange = 70.0

	MinZoom = 1.0
	MaxZoom = 2.5
)
