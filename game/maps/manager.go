// Package maps resolves map identifiers to map documents. Load is a
// total function: a missing or unusable content file falls back to a
// deterministically generated map so the world always has somewhere
// playable to stand. Nothing is cached across loads; every Load
// re-reads and re-validates its file.
package maps

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mkowalska/anime-security-training/game/tiled"
	"github.com/mkowalska/anime-security-training/pkg/logger"
)

var (
	ErrMapNotFound = errors.New("map not found")
	ErrInvalidMap  = errors.New("invalid map")
)

// Manager loads map documents from a content directory.
type Manager struct {
	mapsDir string
}

// NewManager creates a map manager over the given directory. The
// directory does not have to exist; every lookup then resolves to a
// generated fallback.
func NewManager(mapsDir string) *Manager {
	return &Manager{mapsDir: mapsDir}
}

// Load resolves a map id to a document. It never fails: when the
// content file is missing or cannot be parsed, a generated fallback
// document for the id is returned instead and the condition is logged.
func (m *Manager) Load(id string) *tiled.MapDocument {
	doc, err := m.loadFile(id)
	if err != nil {
		if errors.Is(err, ErrMapNotFound) {
			logger.Log.Infof("map %s: no content file, using generated fallback", id)
		} else {
			logger.Log.Warnf("map %s: %v, using generated fallback", id, err)
		}
		return Generate(id)
	}
	return doc
}

// LoadFile reads and parses the content file for a map id without the
// fallback. Used by the content linter to report problems the game
// itself papers over.
func (m *Manager) LoadFile(id string) (*tiled.MapDocument, error) {
	return m.loadFile(id)
}

func (m *Manager) loadFile(id string) (*tiled.MapDocument, error) {
	path := m.mapPath(id)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrMapNotFound
		}
		return nil, fmt.Errorf("read map file: %w", err)
	}

	doc, err := tiled.Parse(id, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMap, err)
	}
	return doc, nil
}

// List returns the ids of all map content files in the directory.
func (m *Manager) List() ([]string, error) {
	entries, err := os.ReadDir(m.mapsDir)
	if err != nil {
		return nil, fmt.Errorf("read maps directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(entry.Name(), ".json"))
	}
	return ids, nil
}

func (m *Manager) mapPath(id string) string {
	filename := id
	if !strings.HasSuffix(filename, ".json") {
		filename += ".json"
	}
	return filepath.Join(m.mapsDir, filename)
}
