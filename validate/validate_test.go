package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeContent writes a content file under dir, creating parents.
func writeContent(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", rel, err)
	}
	return path
}

func hasError(result ValidationResult, substr string) bool {
	for _, err := range result.Errors {
		if strings.Contains(err, substr) {
			return true
		}
	}
	return false
}

const validDialogue = `{
	"start_node": "intro",
	"nodes": {
		"intro": {"speaker": "aya", "text": "Hi!", "next": "bye"},
		"bye": {"speaker": "aya", "text": "See you."}
	}
}`

const validChallenge = `{
	"title": "Phishing Basics",
	"category": "phishing",
	"questions": [
		{
			"prompt": "Which address is suspicious?",
			"choices": ["it@company.com", "it@c0mpany-support.net"],
			"correct_index": 1
		},
		{
			"prompt": "What should you do with an unexpected attachment?",
			"choices": ["Open it", "Report it", "Forward it"],
			"correct_index": 1,
			"points": 200
		}
	]
}`

// validMapJSON is a small Tiled export with one collider, one NPC, one
// portal to house_1 and one book.
const validMapJSON = `{
	"width": 10, "height": 10, "tilewidth": 16, "tileheight": 16,
	"layers": [
		{"type": "objectgroup", "name": "Colliders", "objects": [
			{"id": 1, "x": 0, "y": 0, "width": 160, "height": 16}
		]},
		{"type": "objectgroup", "name": "NPCs", "objects": [
			{"id": 2, "name": "aya", "x": 64, "y": 64, "width": 16, "height": 16,
			 "properties": [{"name": "dialogue", "value": "dialogues/aya.json"}]}
		]},
		{"type": "objectgroup", "name": "Portals", "objects": [
			{"id": 3, "x": 96, "y": 96, "properties": [
				{"name": "target_map", "value": "house_1"},
				{"name": "target_x", "value": 100},
				{"name": "target_y", "value": 100}
			]}
		]},
		{"type": "objectgroup", "name": "Books", "objects": [
			{"id": 4, "x": 32, "y": 32, "properties": [
				{"name": "title", "value": "Security Guide"},
				{"name": "text", "value": "Check the sender address."}
			]}
		]}
	]
}`

const minimalMapJSON = `{
	"width": 10, "height": 10, "tilewidth": 16, "tileheight": 16,
	"layers": []
}`

func TestValidateMap_Valid(t *testing.T) {
	dataDir := t.TempDir()
	writeContent(t, dataDir, "maps/city.json", validMapJSON)
	writeContent(t, dataDir, "maps/house_1.json", minimalMapJSON)
	writeContent(t, dataDir, "dialogues/aya.json", validDialogue)

	result := validateMap(dataDir, "city")
	if !result.Valid {
		t.Errorf("Expected valid map, but got errors: %v", result.Errors)
	}
	if result.File != "city.json" {
		t.Errorf("Expected file name city.json, got %s", result.File)
	}
	if !hasError(result, "NPCs: 1") {
		t.Errorf("Expected NPC count in info, got: %v", result.Errors)
	}
}

func TestValidateMap_MissingFile(t *testing.T) {
	result := validateMap(t.TempDir(), "nowhere")
	if result.Valid {
		t.Error("Expected invalid result for missing map file")
	}
	if !hasError(result, "Failed to load map") {
		t.Errorf("Expected load error, got: %v", result.Errors)
	}
}

func TestValidateMap_MissingDialogueFile(t *testing.T) {
	dataDir := t.TempDir()
	writeContent(t, dataDir, "maps/city.json", validMapJSON)
	writeContent(t, dataDir, "maps/house_1.json", minimalMapJSON)
	// dialogues/aya.json intentionally absent

	result := validateMap(dataDir, "city")
	if result.Valid {
		t.Error("Expected invalid map due to missing dialogue file")
	}
	if !hasError(result, "missing dialogue file") {
		t.Errorf("Expected missing dialogue error, got: %v", result.Errors)
	}
}

func TestValidateMap_PortalTargetMissing(t *testing.T) {
	dataDir := t.TempDir()
	writeContent(t, dataDir, "maps/city.json", validMapJSON)
	writeContent(t, dataDir, "dialogues/aya.json", validDialogue)
	// maps/house_1.json intentionally absent

	result := validateMap(dataDir, "city")
	if result.Valid {
		t.Error("Expected invalid map due to missing portal target")
	}
	if !hasError(result, "no content file") {
		t.Errorf("Expected portal target error, got: %v", result.Errors)
	}
}

func TestValidateMap_PortalLandsOutOfBounds(t *testing.T) {
	dataDir := t.TempDir()
	mapJSON := `{
		"width": 10, "height": 10, "tilewidth": 16, "tileheight": 16,
		"layers": [
			{"type": "objectgroup", "name": "Portals", "objects": [
				{"id": 1, "x": 96, "y": 96, "properties": [
					{"name": "target_map", "value": "house_1"},
					{"name": "target_x", "value": 9000},
					{"name": "target_y", "value": 100}
				]}
			]}
		]
	}`
	writeContent(t, dataDir, "maps/city.json", mapJSON)
	writeContent(t, dataDir, "maps/house_1.json", minimalMapJSON)

	result := validateMap(dataDir, "city")
	if result.Valid {
		t.Error("Expected invalid map due to out-of-bounds portal landing")
	}
	if !hasError(result, "outside target map") {
		t.Errorf("Expected landing bounds error, got: %v", result.Errors)
	}
}

func TestValidateMap_PortalZoomOutOfRange(t *testing.T) {
	dataDir := t.TempDir()
	mapJSON := `{
		"width": 10, "height": 10, "tilewidth": 16, "tileheight": 16,
		"layers": [
			{"type": "objectgroup", "name": "Portals", "objects": [
				{"id": 1, "x": 96, "y": 96, "properties": [
					{"name": "target_map", "value": "house_1"},
					{"name": "target_x", "value": 100},
					{"name": "target_y", "value": 100},
					{"name": "target_zoom", "value": 5.0}
				]}
			]}
		]
	}`
	writeContent(t, dataDir, "maps/city.json", mapJSON)
	writeContent(t, dataDir, "maps/house_1.json", minimalMapJSON)

	result := validateMap(dataDir, "city")
	if result.Valid {
		t.Error("Expected invalid map due to out-of-range target_zoom")
	}
	if !hasError(result, "target_zoom") {
		t.Errorf("Expected target_zoom error, got: %v", result.Errors)
	}
}

func TestValidateMap_BookWithoutText(t *testing.T) {
	dataDir := t.TempDir()
	mapJSON := `{
		"width": 10, "height": 10, "tilewidth": 16, "tileheight": 16,
		"layers": [
			{"type": "objectgroup", "name": "Books", "objects": [
				{"id": 1, "x": 32, "y": 32, "properties": [
					{"name": "title", "value": "Empty Tome"}
				]}
			]}
		]
	}`
	writeContent(t, dataDir, "maps/city.json", mapJSON)

	result := validateMap(dataDir, "city")
	if result.Valid {
		t.Error("Expected invalid map due to book without text")
	}
	if !hasError(result, "has no text") {
		t.Errorf("Expected book text error, got: %v", result.Errors)
	}
}

func TestValidateDialogue_Valid(t *testing.T) {
	dataDir := t.TempDir()
	dialogueJSON := `{
		"start_node": "intro",
		"nodes": {
			"intro": {
				"speaker": "aya",
				"text": "Ready for a quiz?",
				"choices": [
					{"label": "Yes", "next": "quiz", "trust_delta": 1},
					{"label": "Not now", "next": "bye"}
				]
			},
			"quiz": {"text": "Here we go.", "action": {"type": "start_challenge", "challenge_set": "phishing_basics"}},
			"bye": {"text": "Come back later."}
		}
	}`
	path := writeContent(t, dataDir, "dialogues/aya.json", dialogueJSON)
	writeContent(t, dataDir, "challenges/phishing_basics.json", validChallenge)

	result := validateDialogue(filepath.Join(dataDir, "challenges"), path)
	if !result.Valid {
		t.Errorf("Expected valid dialogue, but got errors: %v", result.Errors)
	}
}

func TestValidateDialogue_InvalidJSON(t *testing.T) {
	dataDir := t.TempDir()
	path := writeContent(t, dataDir, "dialogues/bad.json", `{"start_node": invalid}`)

	result := validateDialogue(filepath.Join(dataDir, "challenges"), path)
	if result.Valid {
		t.Error("Expected invalid dialogue due to bad JSON")
	}
	if !hasError(result, "Invalid JSON") {
		t.Errorf("Expected 'Invalid JSON' error, got: %v", result.Errors)
	}
}

func TestValidateDialogue_MissingStartNode(t *testing.T) {
	dataDir := t.TempDir()
	path := writeContent(t, dataDir, "dialogues/aya.json", `{
		"start_node": "greeting",
		"nodes": {"intro": {"text": "Hi"}}
	}`)

	result := validateDialogue(filepath.Join(dataDir, "challenges"), path)
	if result.Valid {
		t.Error("Expected invalid dialogue due to missing start node")
	}
	if !hasError(result, `Start node "greeting" does not exist`) {
		t.Errorf("Expected start node error, got: %v", result.Errors)
	}
}

func TestValidateDialogue_BrokenLink(t *testing.T) {
	dataDir := t.TempDir()
	path := writeContent(t, dataDir, "dialogues/aya.json", `{
		"start_node": "intro",
		"nodes": {
			"intro": {"text": "Hi", "choices": [{"label": "Go", "next": "missing"}]}
		}
	}`)

	result := validateDialogue(filepath.Join(dataDir, "challenges"), path)
	if result.Valid {
		t.Error("Expected invalid dialogue due to broken choice link")
	}
	if !hasError(result, `missing node "missing"`) {
		t.Errorf("Expected broken link error, got: %v", result.Errors)
	}
}

func TestValidateDialogue_UnreachableNode(t *testing.T) {
	dataDir := t.TempDir()
	path := writeContent(t, dataDir, "dialogues/aya.json", `{
		"start_node": "intro",
		"nodes": {
			"intro": {"text": "Hi"},
			"orphan": {"text": "Nobody links here"}
		}
	}`)

	result := validateDialogue(filepath.Join(dataDir, "challenges"), path)
	if result.Valid {
		t.Error("Expected invalid dialogue due to unreachable node")
	}
	if !hasError(result, "Unreachable nodes") || !hasError(result, "orphan") {
		t.Errorf("Expected unreachable node error, got: %v", result.Errors)
	}
}

func TestValidateDialogue_MissingChallengeSet(t *testing.T) {
	dataDir := t.TempDir()
	path := writeContent(t, dataDir, "dialogues/aya.json", `{
		"start_node": "intro",
		"nodes": {
			"intro": {"text": "Quiz time", "action": {"type": "start_challenge", "challenge_set": "nope"}}
		}
	}`)

	result := validateDialogue(filepath.Join(dataDir, "challenges"), path)
	if result.Valid {
		t.Error("Expected invalid dialogue due to missing challenge set")
	}
	if !hasError(result, `missing challenge set "nope"`) {
		t.Errorf("Expected missing challenge set error, got: %v", result.Errors)
	}
}

func TestValidateChallenge_Valid(t *testing.T) {
	dataDir := t.TempDir()
	path := writeContent(t, dataDir, "challenges/phishing_basics.json", validChallenge)

	result := validateChallenge(path)
	if !result.Valid {
		t.Errorf("Expected valid challenge set, but got errors: %v", result.Errors)
	}
	// Default 100 for the first question plus explicit 200.
	if !hasError(result, "2 (300 points)") {
		t.Errorf("Expected question and point totals in info, got: %v", result.Errors)
	}
}

func TestValidateChallenge_CorrectIndexOutOfBounds(t *testing.T) {
	dataDir := t.TempDir()
	path := writeContent(t, dataDir, "challenges/bad.json", `{
		"title": "Bad Set",
		"questions": [
			{"prompt": "Pick one", "choices": ["a", "b"], "correct_index": 5}
		]
	}`)

	result := validateChallenge(path)
	if result.Valid {
		t.Error("Expected invalid challenge set due to out-of-bounds answer key")
	}
	if !hasError(result, "correct_index 5 out of bounds") {
		t.Errorf("Expected answer key error, got: %v", result.Errors)
	}
}

func TestValidateChallenge_NoQuestions(t *testing.T) {
	dataDir := t.TempDir()
	path := writeContent(t, dataDir, "challenges/empty.json", `{"title": "Empty", "questions": []}`)

	result := validateChallenge(path)
	if result.Valid {
		t.Error("Expected invalid challenge set with no questions")
	}
	if !hasError(result, "no questions") {
		t.Errorf("Expected no questions error, got: %v", result.Errors)
	}
}

func TestValidateAllChallenges_MixedDirectory(t *testing.T) {
	dataDir := t.TempDir()
	writeContent(t, dataDir, "challenges/good.json", validChallenge)
	writeContent(t, dataDir, "challenges/empty.json", `{"title": "Empty", "questions": []}`)

	results, err := validateAllChallenges(dataDir)
	if err != nil {
		t.Fatalf("validateAllChallenges failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}

	valid := 0
	for _, r := range results {
		if r.Valid {
			valid++
		}
	}
	if valid != 1 {
		t.Errorf("Expected exactly 1 valid result, got %d", valid)
	}
}

func TestValidateAllMaps_EmptyDirectory(t *testing.T) {
	dataDir := t.TempDir()
	writeContent(t, dataDir, "maps/.keep", "")

	results, err := validateAllMaps(dataDir)
	if err != nil {
		t.Fatalf("validateAllMaps failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected no results for empty maps dir, got %d", len(results))
	}
}
