// Package save persists world snapshots to JSON slot files. Loading
// is total: a missing or corrupted slot yields the default save, and
// partially valid files are normalized field by field so older or
// hand-edited saves still restore.
package save

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mkowalska/anime-security-training/pkg/logger"
)

// DefaultSlot is the slot used when none is specified.
const DefaultSlot = "slot1"

// WorldState records which map the player was on.
type WorldState struct {
	Map string `json:"map"`
}

// PlayerState records the player position in world pixels.
type PlayerState struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Completed lists finished challenge sets.
type Completed struct {
	Challenges []string `json:"challenges"`
}

// Data is the slot file schema.
type Data struct {
	World     WorldState     `json:"world"`
	Player    PlayerState    `json:"player"`
	Zoom      float64        `json:"zoom,omitempty"`
	Trust     map[string]int `json:"trust"`
	Scores    map[string]int `json:"scores"`
	Completed Completed      `json:"completed"`
}

// Default returns a fresh save: city map, spawn at (200,200).
func Default() *Data {
	return &Data{
		World:  WorldState{Map: "city"},
		Player: PlayerState{X: 200, Y: 200},
		Zoom:   1.0,
		Trust:  map[string]int{},
		Scores: map[string]int{
			"total":    0,
			"phishing": 0,
			"password": 0,
			"links":    0,
			"mfa":      0,
		},
		Completed: Completed{Challenges: []string{}},
	}
}

// Store reads and writes save slots under one directory.
type Store struct {
	dir string
}

// NewStore creates a slot store. The directory is created on first
// Save, not here.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Load reads a slot. It never fails: missing or corrupted files fall
// back to the default save, and partial files are normalized.
func (s *Store) Load(slot string) *Data {
	data, err := os.ReadFile(s.slotPath(slot))
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Log.Warnf("save %s: %v, using default save", slot, err)
		}
		return Default()
	}

	var d Data
	if err := json.Unmarshal(data, &d); err != nil {
		logger.Log.Warnf("save %s: corrupted (%v), using default save", slot, err)
		return Default()
	}

	normalize(&d)
	return &d
}

// Save writes a slot, creating the saves directory if needed.
func (s *Store) Save(slot string, d *Data) error {
	if d == nil {
		return fmt.Errorf("save data cannot be nil")
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create saves directory: %w", err)
	}

	jsonData, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal save data: %w", err)
	}

	if err := os.WriteFile(s.slotPath(slot), jsonData, 0644); err != nil {
		return fmt.Errorf("write save file: %w", err)
	}
	return nil
}

// Exists reports whether a slot file is present.
func (s *Store) Exists(slot string) bool {
	_, err := os.Stat(s.slotPath(slot))
	return err == nil
}

// ListSlots returns all slot names present in the saves directory.
func (s *Store) ListSlots() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read saves directory: %w", err)
	}

	var slots []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		slots = append(slots, strings.TrimSuffix(entry.Name(), ".json"))
	}
	return slots, nil
}

func (s *Store) slotPath(slot string) string {
	if slot == "" {
		slot = DefaultSlot
	}
	return filepath.Join(s.dir, slot+".json")
}

// normalize fills in any fields a partial or legacy save is missing.
func normalize(d *Data) {
	def := Default()

	if d.World.Map == "" {
		d.World.Map = def.World.Map
	}
	if d.Zoom <= 0 {
		d.Zoom = def.Zoom
	}
	if d.Trust == nil {
		d.Trust = map[string]int{}
	}
	if d.Scores == nil {
		d.Scores = def.Scores
	} else {
		for k, v := range def.Scores {
			if _, ok := d.Scores[k]; !ok {
				d.Scores[k] = v
			}
		}
	}
	if d.Completed.Challenges == nil {
		d.Completed.Challenges = []string{}
	}
}
