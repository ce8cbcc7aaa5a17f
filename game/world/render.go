package world

import (
	"github.com/mkowalska/anime-security-training/game/dialogue"
	"github.com/mkowalska/anime-security-training/game/geom"
	"github.com/mkowalska/anime-security-training/game/tiled"
)

// RenderSnapshot is everything a renderer needs to draw one frame. It
// carries no behavior; the transports serialize it as-is.
type RenderSnapshot struct {
	State  State              `json:"state"`
	MapID  string             `json:"map_id"`
	Map    *tiled.MapDocument `json:"map,omitempty"`
	Player geom.Rect          `json:"player"`
	Facing Facing             `json:"facing"`
	Zoom   float64            `json:"zoom"`

	// Prompt is the interaction hint to draw, empty when nothing is in
	// range or a session is open.
	Prompt string `json:"prompt,omitempty"`

	// Session is the modal overlay, set only in SESSION_ACTIVE.
	Session *dialogue.View `json:"session,omitempty"`

	Progress *dialogue.Progress `json:"progress,omitempty"`
}

// Render builds the frame snapshot for the current state. The map
// document pointer is shared, not copied; documents are immutable after
// load so this is safe to hand to a renderer.
func (c *Controller) Render() RenderSnapshot {
	snap := RenderSnapshot{
		State:    c.state,
		MapID:    c.mapID,
		Map:      c.doc,
		Player:   c.player,
		Facing:   c.facing,
		Zoom:     c.zoom,
		Progress: c.progress,
	}

	if c.session != nil {
		v := c.session.View()
		snap.Session = &v
		return snap
	}
	if c.offer != nil {
		snap.Prompt = c.offer.Prompt
	}
	return snap
}
