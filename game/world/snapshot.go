package world

import (
	"github.com/mkowalska/anime-security-training/game/dialogue"
	"github.com/mkowalska/anime-security-training/game/engine"
	"github.com/mkowalska/anime-security-training/game/geom"
	"github.com/mkowalska/anime-security-training/pkg/logger"
)

// Snapshot is the restorable world state: where the player is and what
// they have accomplished. Transient state (active sessions, the current
// interaction offer) is deliberately not captured; a restored world
// always wakes up exploring.
type Snapshot struct {
	MapID    string             `json:"map_id"`
	X        float64            `json:"x"`
	Y        float64            `json:"y"`
	Zoom     float64            `json:"zoom"`
	Progress *dialogue.Progress `json:"progress"`
}

// DefaultSnapshot is a fresh game: the city map, spawn at (200,200).
func DefaultSnapshot() Snapshot {
	return Snapshot{
		MapID:    "city",
		X:        200,
		Y:        200,
		Zoom:     1.0,
		Progress: dialogue.NewProgress(),
	}
}

// Snapshot captures the current restorable state. The returned progress
// pointer aliases the live record; callers that persist it should do so
// before the next tick.
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		MapID:    c.mapID,
		X:        c.player.X,
		Y:        c.player.Y,
		Zoom:     c.zoom,
		Progress: c.progress,
	}
}

// Restore replaces the whole world state from a snapshot. It is total:
// an unknown map id resolves through the map manager's fallback, and a
// nil progress record starts empty. Any active session is discarded.
func (c *Controller) Restore(snap Snapshot) {
	mapID := snap.MapID
	if mapID == "" {
		mapID = DefaultSnapshot().MapID
	}

	doc := c.maps.Load(mapID)
	c.doc = doc
	c.index = engine.NewIndex(doc)
	c.resolver = engine.NewResolver(c.index, doc.Bounds())
	c.arbiter = engine.NewArbiter(c.index, doc.ID)
	c.mapID = doc.ID

	c.player = geom.NewRect(snap.X, snap.Y, engine.PlayerW, engine.PlayerH)
	c.player.X = geom.Clamp(c.player.X, 0, doc.PixelWidth()-c.player.W)
	c.player.Y = geom.Clamp(c.player.Y, 0, doc.PixelHeight()-c.player.H)

	zoom := snap.Zoom
	if zoom <= 0 {
		zoom = doc.DefaultZoom
	}
	c.zoom = geom.Clamp(zoom, engine.MinZoom, engine.MaxZoom)

	if snap.Progress != nil {
		c.progress = snap.Progress
	} else {
		c.progress = dialogue.NewProgress()
	}

	c.session = nil
	c.offer = nil
	c.facing = FacingDown
	c.state = StateExploring
	logger.Log.Infof("restored world on %s at (%.0f,%.0f)", c.mapID, c.player.X, c.player.Y)
}
