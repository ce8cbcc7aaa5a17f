package save

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	d := Default()
	d.World.Map = "house_1"
	d.Player.X = 240
	d.Player.Y = 300
	d.Zoom = 1.6
	d.Trust["aya"] = 3
	d.Scores["phishing"] = 400
	d.Scores["total"] = 400
	d.Completed.Challenges = []string{"phishing_basics"}

	if err := store.Save("slot2", d); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got := store.Load("slot2")
	if got.World.Map != "house_1" {
		t.Errorf("Expected map house_1, got %q", got.World.Map)
	}
	if got.Player.X != 240 || got.Player.Y != 300 {
		t.Errorf("Expected position (240,300), got (%g,%g)", got.Player.X, got.Player.Y)
	}
	if got.Zoom != 1.6 {
		t.Errorf("Expected zoom 1.6, got %g", got.Zoom)
	}
	if got.Trust["aya"] != 3 {
		t.Errorf("Expected trust aya=3, got %d", got.Trust["aya"])
	}
	if got.Scores["phishing"] != 400 {
		t.Errorf("Expected phishing score 400, got %d", got.Scores["phishing"])
	}
	if len(got.Completed.Challenges) != 1 || got.Completed.Challenges[0] != "phishing_basics" {
		t.Errorf("Expected completed [phishing_basics], got %v", got.Completed.Challenges)
	}
}

func TestLoad_MissingSlotYieldsDefault(t *testing.T) {
	store := NewStore(t.TempDir())

	d := store.Load("never")
	if d.World.Map != "city" || d.Player.X != 200 || d.Player.Y != 200 {
		t.Errorf("Expected default save, got %+v", d)
	}
	if d.Zoom != 1.0 {
		t.Errorf("Expected default zoom 1.0, got %g", d.Zoom)
	}
	if d.Scores["total"] != 0 {
		t.Errorf("Expected zeroed scores, got %v", d.Scores)
	}
}

func TestLoad_CorruptSlotYieldsDefault(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	if err := os.WriteFile(filepath.Join(dir, "slot1.json"), []byte(`{broken`), 0o644); err != nil {
		t.Fatal(err)
	}

	d := store.Load("slot1")
	if d.World.Map != "city" {
		t.Errorf("Expected default save for corrupt file, got %+v", d)
	}
}

func TestLoad_NormalizesPartialSave(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	// An older save: position only, no zoom, no score categories.
	partial := `{"world": {"map": "house_1"}, "player": {"x": 50, "y": 60}}`
	if err := os.WriteFile(filepath.Join(dir, "old.json"), []byte(partial), 0o644); err != nil {
		t.Fatal(err)
	}

	d := store.Load("old")
	if d.World.Map != "house_1" || d.Player.X != 50 {
		t.Errorf("Expected authored fields kept, got %+v", d)
	}
	if d.Zoom != 1.0 {
		t.Errorf("Expected zoom normalized to 1.0, got %g", d.Zoom)
	}
	if d.Trust == nil {
		t.Error("Expected trust map normalized")
	}
	for _, k := range []string{"total", "phishing", "password", "links", "mfa"} {
		if _, ok := d.Scores[k]; !ok {
			t.Errorf("Expected score category %q normalized in", k)
		}
	}
	if d.Completed.Challenges == nil {
		t.Error("Expected completed list normalized")
	}
}

func TestLoad_KeepsExistingScoresWhenNormalizing(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	partial := `{"world": {"map": "city"}, "player": {"x": 1, "y": 2}, "scores": {"phishing": 500}}`
	if err := os.WriteFile(filepath.Join(dir, "s.json"), []byte(partial), 0o644); err != nil {
		t.Fatal(err)
	}

	d := store.Load("s")
	if d.Scores["phishing"] != 500 {
		t.Errorf("Normalization clobbered phishing score: %v", d.Scores)
	}
	if _, ok := d.Scores["mfa"]; !ok {
		t.Errorf("Missing category not filled in: %v", d.Scores)
	}
}

func TestSave_NilData(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := store.Save("slot1", nil); err == nil {
		t.Error("Expected error saving nil data")
	}
}

func TestSave_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "saves")
	store := NewStore(dir)

	if err := store.Save("slot1", Default()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !store.Exists("slot1") {
		t.Error("Expected slot to exist after save")
	}
}

func TestExists(t *testing.T) {
	store := NewStore(t.TempDir())

	if store.Exists("slot1") {
		t.Error("Expected no slot before save")
	}
	store.Save("slot1", Default())
	if !store.Exists("slot1") {
		t.Error("Expected slot after save")
	}
}

func TestListSlots(t *testing.T) {
	store := NewStore(t.TempDir())

	slots, err := store.ListSlots()
	if err != nil {
		t.Fatalf("ListSlots failed: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("Expected no slots, got %v", slots)
	}

	store.Save("slot1", Default())
	store.Save("slot2", Default())

	slots, err = store.ListSlots()
	if err != nil {
		t.Fatalf("ListSlots failed: %v", err)
	}
	if len(slots) != 2 {
		t.Errorf("Expected 2 slots, got %v", slots)
	}
}

func TestListSlots_MissingDirectory(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "never-created"))

	slots, err := store.ListSlots()
	if err != nil {
		t.Errorf("Expected missing directory to list as empty, got error %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("Expected no slots, got %v", slots)
	}
}

func TestEmptySlotNameUsesDefault(t *testing.T) {
	store := NewStore(t.TempDir())

	if err := store.Save("", Default()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !store.Exists(DefaultSlot) {
		t.Error("Expected empty slot name to write the default slot")
	}
}
