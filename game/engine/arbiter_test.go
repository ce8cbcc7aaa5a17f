package engine

import (
	"testing"

	"github.com/mkowalska/anime-security-training/game/geom"
	"github.com/mkowalska/anime-security-training/game/tiled"
)

func TestEvaluate_NothingNearby(t *testing.T) {
	index := NewIndex(&tiled.MapDocument{})
	arbiter := NewArbiter(index, "city")

	if offer := arbiter.Evaluate(playerAt(100, 100)); offer != nil {
		t.Errorf("Expected no offer on an empty map, got %+v", offer)
	}
}

func TestEvaluate_TalkOffer(t *testing.T) {
	doc := &tiled.MapDocument{
		NPCs: []tiled.NPC{{ID: "aya", Rect: geom.NewRect(120, 92, 16, 16)}},
	}
	arbiter := NewArbiter(NewIndex(doc), "city")

	offer := arbiter.Evaluate(playerAt(100, 100))
	if offer == nil {
		t.Fatal("Expected a talk offer")
	}
	if offer.Type != OfferTalk {
		t.Errorf("Expected talk offer, got %s", offer.Type)
	}
	if offer.Prompt != "Press E to talk to aya" {
		t.Errorf("Unexpected prompt: %q", offer.Prompt)
	}
	if offer.NPC == nil || offer.NPC.ID != "aya" {
		t.Error("Expected offer to carry the NPC")
	}
}

func TestEvaluate_PortalPromptDefaults(t *testing.T) {
	doc := &tiled.MapDocument{
		Portals: []tiled.Portal{{TargetMap: "house_1", Rect: geom.NewRect(100, 100, 22, 18)}},
	}

	// On the overworld the default is enter; indoors it is exit.
	offer := NewArbiter(NewIndex(doc), "city").Evaluate(playerAt(111, 109))
	if offer == nil || offer.Prompt != "Press E to enter" {
		t.Errorf("Expected enter prompt on city, got %+v", offer)
	}

	offer = NewArbiter(NewIndex(doc), "house_1").Evaluate(playerAt(111, 109))
	if offer == nil || offer.Prompt != "Press E to exit" {
		t.Errorf("Expected exit prompt indoors, got %+v", offer)
	}
}

func TestEvaluate_PortalCustomPrompt(t *testing.T) {
	doc := &tiled.MapDocument{
		Portals: []tiled.Portal{{
			TargetMap: "house_1",
			Prompt:    "Press E to sneak in",
			Rect:      geom.NewRect(100, 100, 22, 18),
		}},
	}
	arbiter := NewArbiter(NewIndex(doc), "city")

	offer := arbiter.Evaluate(playerAt(111, 109))
	if offer == nil || offer.Prompt != "Press E to sneak in" {
		t.Errorf("Expected authored prompt to win, got %+v", offer)
	}
	if offer.Type != OfferEnter {
		t.Errorf("Expected enter offer, got %s", offer.Type)
	}
}

func TestEvaluate_ReadOffer(t *testing.T) {
	doc := &tiled.MapDocument{
		Books: []tiled.Book{
			{Title: "Phishing Basics", Prompt: "Press E to read: Phishing Basics", Rect: geom.NewRect(100, 100, 18, 18)},
		},
	}
	arbiter := NewArbiter(NewIndex(doc), "house_1")

	offer := arbiter.Evaluate(playerAt(109, 109))
	if offer == nil {
		t.Fatal("Expected a read offer")
	}
	if offer.Type != OfferRead {
		t.Errorf("Expected read offer, got %s", offer.Type)
	}
	if offer.Prompt != "Press E to read: Phishing Basics" {
		t.Errorf("Unexpected prompt: %q", offer.Prompt)
	}
}

func TestEvaluate_ReadOfferDefaultPrompt(t *testing.T) {
	doc := &tiled.MapDocument{
		Books: []tiled.Book{{Title: "Notes", Rect: geom.NewRect(100, 100, 18, 18)}},
	}
	arbiter := NewArbiter(NewIndex(doc), "house_1")

	offer := arbiter.Evaluate(playerAt(109, 109))
	if offer == nil || offer.Prompt != "Press E to read" {
		t.Errorf("Expected default read prompt, got %+v", offer)
	}
}
