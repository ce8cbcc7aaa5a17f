package maps

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const validMapFile = `{
	"width": 12, "height": 9, "tilewidth": 16, "tileheight": 16,
	"layers": [
		{"type": "objectgroup", "name": "Colliders", "objects": [
			{"id": 1, "x": 0, "y": 0, "width": 192, "height": 16}
		]}
	]
}`

func writeMap(t *testing.T, dir, id, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, id+".json"), []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write map file: %v", err)
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	writeMap(t, dir, "city", validMapFile)

	doc := NewManager(dir).Load("city")
	if doc.Generated {
		t.Error("Expected parsed document, got generated fallback")
	}
	if doc.Width != 12 || doc.Height != 9 {
		t.Errorf("Expected 12x9 tiles, got %dx%d", doc.Width, doc.Height)
	}
	if len(doc.Colliders) != 1 {
		t.Errorf("Expected 1 collider, got %d", len(doc.Colliders))
	}
}

func TestLoad_MissingFileFallsBack(t *testing.T) {
	doc := NewManager(t.TempDir()).Load("city")
	if !doc.Generated {
		t.Error("Expected generated fallback for missing file")
	}
	if doc.Width != 160 || doc.Height != 120 {
		t.Errorf("Expected generated city 160x120 tiles, got %dx%d", doc.Width, doc.Height)
	}
	if doc.DefaultZoom != 1.0 {
		t.Errorf("Expected city zoom 1.0, got %g", doc.DefaultZoom)
	}
}

func TestLoad_CorruptFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	writeMap(t, dir, "city", `{definitely not json`)

	doc := NewManager(dir).Load("city")
	if !doc.Generated {
		t.Error("Expected generated fallback for corrupt file")
	}
}

func TestLoad_MissingDirectoryFallsBack(t *testing.T) {
	doc := NewManager("/does/not/exist").Load("house_1")
	if !doc.Generated {
		t.Error("Expected generated fallback for missing directory")
	}
	if doc.Width != 60 || doc.Height != 45 {
		t.Errorf("Expected generated house_1 60x45 tiles, got %dx%d", doc.Width, doc.Height)
	}
	if doc.DefaultZoom != 1.6 {
		t.Errorf("Expected house_1 zoom 1.6, got %g", doc.DefaultZoom)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()
	writeMap(t, dir, "broken", `{"width": 10}`)

	mgr := NewManager(dir)

	if _, err := mgr.LoadFile("missing"); !errors.Is(err, ErrMapNotFound) {
		t.Errorf("Expected ErrMapNotFound, got %v", err)
	}
	if _, err := mgr.LoadFile("broken"); !errors.Is(err, ErrInvalidMap) {
		t.Errorf("Expected ErrInvalidMap, got %v", err)
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	writeMap(t, dir, "city", validMapFile)
	writeMap(t, dir, "house_1", validMapFile)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	ids, err := NewManager(dir).List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("Expected 2 map ids, got %v", ids)
	}
}

func TestList_MissingDirectory(t *testing.T) {
	if _, err := NewManager("/does/not/exist").List(); err == nil {
		t.Error("Expected error listing a missing directory")
	}
}

func TestGenerate_UnknownIDBounded(t *testing.T) {
	doc := Generate("somewhere_else")
	if !doc.Generated {
		t.Error("Expected generated flag")
	}
	if doc.Width != 60 || doc.Height != 45 {
		t.Errorf("Expected minimal 60x45 map, got %dx%d", doc.Width, doc.Height)
	}
	// Border colliders on all four edges keep the player inside.
	if len(doc.Colliders) != 4 {
		t.Errorf("Expected 4 border colliders, got %d", len(doc.Colliders))
	}
}

func TestGenerate_CityPresets(t *testing.T) {
	doc := Generate("city")

	if len(doc.NPCs) != 2 {
		t.Fatalf("Expected 2 city NPCs, got %d", len(doc.NPCs))
	}
	if doc.NPCs[0].ID != "aya" || doc.NPCs[1].ID != "mika" {
		t.Errorf("Unexpected NPC ids: %s, %s", doc.NPCs[0].ID, doc.NPCs[1].ID)
	}
	if len(doc.Portals) != 1 || doc.Portals[0].TargetMap != "house_1" {
		t.Fatalf("Expected one portal to house_1, got %+v", doc.Portals)
	}
	p := doc.Portals[0]
	if p.TargetX != 240 || p.TargetY != 300 {
		t.Errorf("Expected landing (240,300), got (%g,%g)", p.TargetX, p.TargetY)
	}
	if p.TargetZoom == nil || *p.TargetZoom != 1.6 {
		t.Errorf("Expected target zoom 1.6, got %v", p.TargetZoom)
	}
}

func TestGenerate_House1Presets(t *testing.T) {
	doc := Generate("house_1")

	if len(doc.NPCs) != 1 || doc.NPCs[0].ID != "ren" {
		t.Errorf("Expected NPC ren, got %+v", doc.NPCs)
	}
	if len(doc.Books) != 3 {
		t.Fatalf("Expected 3 books, got %d", len(doc.Books))
	}
	titles := []string{"Phishing Basics", "Passwords & Passphrases", "MFA Tips"}
	for i, want := range titles {
		if doc.Books[i].Title != want {
			t.Errorf("Book %d: expected title %q, got %q", i, want, doc.Books[i].Title)
		}
		if doc.Books[i].Text == "" {
			t.Errorf("Book %q has no text", doc.Books[i].Title)
		}
	}
	if len(doc.Portals) != 1 || doc.Portals[0].TargetMap != "city" {
		t.Errorf("Expected exit portal to city, got %+v", doc.Portals)
	}
}
