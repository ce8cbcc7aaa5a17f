// Package tiled parses Tiled JSON map exports into validated map
// documents. A document carries the tile layers (for the rendering
// collaborator) plus the object layers the runtime cares about:
// Colliders, NPCs, Portals and Books/Interactables. Objects are
// delivered by Tiled as rectangles with generic property bags; parsing
// converts each into a concrete variant and drops anything malformed
// with a warning instead of failing the whole map.
package tiled

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mkowalska/anime-security-training/game/geom"
	"github.com/mkowalska/anime-security-training/pkg/logger"
)

// GIDMask strips the Tiled flip flags from a raw tile gid.
const GIDMask = 0x1FFFFFFF

// Objects exported without explicit extents get this edge length, and
// interactive rects are never narrower than minObjectSize so tiny
// markers stay clickable.
const (
	defaultObjectSize = 16.0
	minObjectSize     = 10.0
)

// NPC is a talkable character marker.
type NPC struct {
	ID       string    `json:"npc_id"`
	Dialogue string    `json:"dialogue"`
	Sprite   string    `json:"sprite,omitempty"`
	Rect     geom.Rect `json:"rect"`
}

// Portal transfers the player to another map at a fixed position.
type Portal struct {
	Rect       geom.Rect `json:"rect"`
	TargetMap  string    `json:"target_map"`
	TargetX    float64   `json:"target_x"`
	TargetY    float64   `json:"target_y"`
	TargetZoom *float64  `json:"target_zoom,omitempty"`
	Prompt     string    `json:"prompt,omitempty"`
	Sprite     string    `json:"sprite,omitempty"`
}

// Book is a read-only text popup marker.
type Book struct {
	Rect   geom.Rect `json:"rect"`
	Title  string    `json:"title"`
	Text   string    `json:"text"`
	Prompt string    `json:"prompt,omitempty"`
	Sprite string    `json:"sprite,omitempty"`
}

// TileLayer is a raw gid grid, kept for renderers. Flip flags are
// already masked off.
type TileLayer struct {
	Name   string   `json:"name"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Data   []uint32 `json:"data"`
}

// MapDocument is the validated in-memory representation of one map.
// It is immutable after load; portal transitions replace it wholesale.
type MapDocument struct {
	ID          string         `json:"id"`
	Width       int            `json:"width"`  // tiles
	Height      int            `json:"height"` // tiles
	TileW       int            `json:"tile_w"`
	TileH       int            `json:"tile_h"`
	DefaultZoom float64        `json:"default_zoom"`
	Properties  map[string]any `json:"properties,omitempty"`

	TileLayers []TileLayer `json:"tile_layers,omitempty"`
	Colliders  []geom.Rect `json:"colliders"`
	NPCs       []NPC       `json:"npcs"`
	Portals    []Portal    `json:"portals"`
	Books      []Book      `json:"books"`

	// Generated marks documents synthesized by the fallback generator
	// rather than parsed from a content file.
	Generated bool `json:"generated,omitempty"`

	BackgroundSprite string      `json:"background_sprite,omitempty"`
	Decorations      []geom.Rect `json:"decorations,omitempty"`
}

// PixelWidth returns the map width in world pixels.
func (d *MapDocument) PixelWidth() float64 { return float64(d.Width * d.TileW) }

// PixelHeight returns the map height in world pixels.
func (d *MapDocument) PixelHeight() float64 { return float64(d.Height * d.TileH) }

// Bounds returns the world-bounds rectangle of the map.
func (d *MapDocument) Bounds() geom.Rect {
	return geom.NewRect(0, 0, d.PixelWidth(), d.PixelHeight())
}

type rawProperty struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

type rawObject struct {
	ID         int           `json:"id"`
	Name       string        `json:"name"`
	X          float64       `json:"x"`
	Y          float64       `json:"y"`
	Width      float64       `json:"width"`
	Height     float64       `json:"height"`
	Properties []rawProperty `json:"properties"`
}

type rawLayer struct {
	Type    string        `json:"type"`
	Name    string        `json:"name"`
	Width   int           `json:"width"`
	Height  int           `json:"height"`
	Data    []uint32      `json:"data"`
	Objects []rawObject   `json:"objects"`
	Props   []rawProperty `json:"properties"`
}

type rawMap struct {
	Width      int           `json:"width"`
	Height     int           `json:"height"`
	TileWidth  int           `json:"tilewidth"`
	TileHeight int           `json:"tileheight"`
	Layers     []rawLayer    `json:"layers"`
	Properties []rawProperty `json:"properties"`
}

func propsToDict(props []rawProperty) map[string]any {
	out := make(map[string]any, len(props))
	for _, p := range props {
		out[p.Name] = p.Value
	}
	return out
}

func propString(props map[string]any, key string) (string, bool) {
	v, ok := props[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func propFloat(props map[string]any, key string) (float64, bool) {
	v, ok := props[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		var f float64
		if _, err := fmt.Sscanf(n, "%g", &f); err == nil {
			return f, true
		}
	}
	return 0, false
}

// objectRect converts a raw Tiled object into a world rect, applying
// the default extent and minimum interactive size.
func objectRect(o rawObject, clampMin bool) geom.Rect {
	w, h := o.Width, o.Height
	if w == 0 {
		w = defaultObjectSize
	}
	if h == 0 {
		h = defaultObjectSize
	}
	if clampMin {
		if w < minObjectSize {
			w = minObjectSize
		}
		if h < minObjectSize {
			h = minObjectSize
		}
	}
	return geom.NewRect(o.X, o.Y, w, h)
}

// Parse decodes a Tiled JSON export into a MapDocument. It returns an
// error only when the file as a whole is unusable (bad JSON, missing
// or non-positive tile size). Individual malformed objects are skipped
// with a warning so the rest of the map still loads.
func Parse(id string, data []byte) (*MapDocument, error) {
	var raw rawMap
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse map %q: %w", id, err)
	}
	if raw.TileWidth <= 0 || raw.TileHeight <= 0 {
		return nil, fmt.Errorf("parse map %q: non-positive tile size %dx%d", id, raw.TileWidth, raw.TileHeight)
	}
	if raw.Width <= 0 || raw.Height <= 0 {
		return nil, fmt.Errorf("parse map %q: non-positive dimensions %dx%d", id, raw.Width, raw.Height)
	}

	doc := &MapDocument{
		ID:          id,
		Width:       raw.Width,
		Height:      raw.Height,
		TileW:       raw.TileWidth,
		TileH:       raw.TileHeight,
		DefaultZoom: 1.0,
		Properties:  propsToDict(raw.Properties),
	}
	if z, ok := propFloat(doc.Properties, "default_zoom"); ok && z > 0 {
		doc.DefaultZoom = z
	}

	seenNPC := make(map[string]bool)

	for _, layer := range raw.Layers {
		switch layer.Type {
		case "tilelayer":
			doc.TileLayers = append(doc.TileLayers, parseTileLayer(layer, raw))
		case "objectgroup":
			switch strings.ToLower(layer.Name) {
			case "colliders":
				for _, o := range layer.Objects {
					r := objectRect(o, false)
					if !r.Valid() {
						logger.Log.Warnf("map %s: skipping collider %q with invalid rect", id, o.Name)
						continue
					}
					doc.Colliders = append(doc.Colliders, r)
				}
			case "npcs":
				for _, o := range layer.Objects {
					npc, ok := parseNPC(id, o, seenNPC)
					if ok {
						doc.NPCs = append(doc.NPCs, npc)
					}
				}
			case "portals":
				for _, o := range layer.Objects {
					p, ok := parsePortal(id, o)
					if ok {
						doc.Portals = append(doc.Portals, p)
					}
				}
			case "books", "interactables":
				for _, o := range layer.Objects {
					b, ok := parseBook(id, o)
					if ok {
						doc.Books = append(doc.Books, b)
					}
				}
			}
		}
	}

	return doc, nil
}

func parseTileLayer(layer rawLayer, raw rawMap) TileLayer {
	w, h := layer.Width, layer.Height
	if w <= 0 {
		w = raw.Width
	}
	if h <= 0 {
		h = raw.Height
	}
	tl := TileLayer{Name: layer.Name, Width: w, Height: h, Data: make([]uint32, len(layer.Data))}
	for i, gid := range layer.Data {
		tl.Data[i] = gid & GIDMask
	}
	return tl
}

func parseNPC(mapID string, o rawObject, seen map[string]bool) (NPC, bool) {
	props := propsToDict(o.Properties)
	npcID, ok := propString(props, "npc_id")
	if !ok || npcID == "" {
		npcID = o.Name
	}
	if npcID == "" {
		logger.Log.Warnf("map %s: skipping NPC object #%d without npc_id or name", mapID, o.ID)
		return NPC{}, false
	}
	if seen[npcID] {
		logger.Log.Warnf("map %s: skipping duplicate npc_id %q", mapID, npcID)
		return NPC{}, false
	}
	r := objectRect(o, true)
	if !r.Valid() {
		logger.Log.Warnf("map %s: skipping NPC %q with invalid rect", mapID, npcID)
		return NPC{}, false
	}
	seen[npcID] = true

	dialogue, _ := propString(props, "dialogue")
	sprite, _ := propString(props, "sprite")
	return NPC{ID: npcID, Dialogue: dialogue, Sprite: sprite, Rect: r}, true
}

func parsePortal(mapID string, o rawObject) (Portal, bool) {
	props := propsToDict(o.Properties)
	target, ok := propString(props, "target_map")
	if !ok || target == "" {
		logger.Log.Warnf("map %s: skipping portal object #%d without target_map", mapID, o.ID)
		return Portal{}, false
	}
	tx, okX := propFloat(props, "target_x")
	ty, okY := propFloat(props, "target_y")
	if !okX || !okY {
		logger.Log.Warnf("map %s: skipping portal to %q without target_x/target_y", mapID, target)
		return Portal{}, false
	}
	r := objectRect(o, true)
	if !r.Valid() {
		logger.Log.Warnf("map %s: skipping portal to %q with invalid rect", mapID, target)
		return Portal{}, false
	}

	p := Portal{Rect: r, TargetMap: target, TargetX: tx, TargetY: ty}
	if z, ok := propFloat(props, "target_zoom"); ok && z > 0 {
		p.TargetZoom = &z
	}
	p.Prompt, _ = propString(props, "prompt")
	p.Sprite, _ = propString(props, "sprite")
	return p, true
}

func parseBook(mapID string, o rawObject) (Book, bool) {
	props := propsToDict(o.Properties)
	r := objectRect(o, true)
	if !r.Valid() {
		logger.Log.Warnf("map %s: skipping book object #%d with invalid rect", mapID, o.ID)
		return Book{}, false
	}

	b := Book{Rect: r, Title: "Book"}
	if t, ok := propString(props, "title"); ok && t != "" {
		b.Title = t
	}
	b.Text, _ = propString(props, "text")
	b.Prompt, _ = propString(props, "prompt")
	b.Sprite, _ = propString(props, "sprite")
	return b, true
}
