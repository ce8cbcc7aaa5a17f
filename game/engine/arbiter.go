package engine

import (
	"fmt"

	"github.com/mkowalska/anime-security-training/game/geom"
	"github.com/mkowalska/anime-security-training/game/tiled"
)

// OfferType is the action an interaction offer proposes.
type OfferType string

const (
	OfferTalk  OfferType = "talk"
	OfferRead  OfferType = "read"
	OfferEnter OfferType = "enter"
)

// Offer describes the interaction currently available to the player.
type Offer struct {
	Type   OfferType `json:"type"`
	Prompt string    `json:"prompt"`

	NPC    *tiled.NPC    `json:"npc,omitempty"`
	Portal *tiled.Portal `json:"portal,omitempty"`
	Book   *tiled.Book   `json:"book,omitempty"`
}

// Arbiter turns nearest-interactable queries into concrete offers with
// prompt text. It is a pure query layer and holds no mutable state.
//
// Range checks are symmetric around the player; facing direction is
// deliberately not considered, so an NPC behind the player within range
// is still offered.
type Arbiter struct {
	index Index
	mapID string
}

// NewArbiter creates an arbiter for one map. The map id selects the
// default portal prompt (enter on the overworld, exit indoors).
func NewArbiter(index Index, mapID string) *Arbiter {
	return &Arbiter{index: index, mapID: mapID}
}

// Evaluate returns the offer for the current player rectangle, or nil
// when nothing is within activation range.
func (a *Arbiter) Evaluate(player geom.Rect) *Offer {
	cand := a.index.Nearest(player)
	if cand == nil {
		return nil
	}

	switch cand.Kind {
	case KindNPC:
		return &Offer{
			Type:   OfferTalk,
			Prompt: fmt.Sprintf("Press E to talk to %s", cand.NPC.ID),
			NPC:    cand.NPC,
		}
	case KindPortal:
		prompt := cand.Portal.Prompt
		if prompt == "" {
			if a.mapID == "city" {
				prompt = "Press E to enter"
			} else {
				prompt = "Press E to exit"
			}
		}
		return &Offer{Type: OfferEnter, Prompt: prompt, Portal: cand.Portal}
	case KindBook:
		prompt := cand.Book.Prompt
		if prompt == "" {
			prompt = "Press E to read"
		}
		return &Offer{Type: OfferRead, Prompt: prompt, Book: cand.Book}
	}
	return nil
}
