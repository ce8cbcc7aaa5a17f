// Command analyze prints quick, human-readable heuristics about map
// content files. It summarizes dimensions, object counts, collider
// coverage, and highlights maps that cannot be reached from the city
// hub by walking the portal graph.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/mkowalska/anime-security-training/game/maps"
	"github.com/mkowalska/anime-security-training/game/tiled"
)

func main() {
	dataDir := "data"
	if len(os.Args) > 1 {
		dataDir = os.Args[1]
	}

	mgr := maps.NewManager(filepath.Join(dataDir, "maps"))
	ids, err := mgr.List()
	if err != nil {
		fmt.Printf("Error listing maps in %s: %v\n", dataDir, err)
		os.Exit(1)
	}
	sort.Strings(ids)

	docs := make(map[string]*tiled.MapDocument, len(ids))
	for _, id := range ids {
		fmt.Printf("\n=== Analyzing %s ===\n", id)
		doc, err := mgr.LoadFile(id)
		if err != nil {
			fmt.Printf("Error loading map: %v\n", err)
			continue
		}
		docs[id] = doc
		analyzeMap(doc)
	}

	if len(docs) > 0 {
		fmt.Printf("\n=== Portal graph ===\n")
		analyzePortalGraph(docs)
	}
}

// analyzeMap prints the size and object inventory of one map plus the
// share of the play area covered by colliders.
func analyzeMap(doc *tiled.MapDocument) {
	fmt.Printf("Size: %dx%d tiles (%gx%g px)\n", doc.Width, doc.Height, doc.PixelWidth(), doc.PixelHeight())
	fmt.Printf("Default Zoom: %g\n", doc.DefaultZoom)
	fmt.Printf("Colliders: %d\n", len(doc.Colliders))
	fmt.Printf("NPCs: %d\n", len(doc.NPCs))
	fmt.Printf("Portals: %d\n", len(doc.Portals))
	fmt.Printf("Books: %d\n", len(doc.Books))

	area := doc.PixelWidth() * doc.PixelHeight()
	if area > 0 {
		blocked := 0.0
		for _, c := range doc.Colliders {
			blocked += c.W * c.H
		}
		fmt.Printf("Collider coverage: %.1f%%\n", 100*blocked/area)
	}

	for _, npc := range doc.NPCs {
		inside := false
		for _, c := range doc.Colliders {
			if npc.Rect.Intersects(c) {
				inside = true
				break
			}
		}
		if inside {
			fmt.Printf("⚠️  NPC %q overlaps a collider; the player may not be able to reach it\n", npc.ID)
		}
	}

	for i, p := range doc.Portals {
		fmt.Printf("Portal %d: -> %s (%.0f,%.0f)\n", i+1, p.TargetMap, p.TargetX, p.TargetY)
	}
}

// analyzePortalGraph walks portal links from the city hub and reports
// maps with content files that no portal chain reaches.
func analyzePortalGraph(docs map[string]*tiled.MapDocument) {
	start := "city"
	if _, ok := docs[start]; !ok {
		// No hub map; start from the lexicographically first one.
		names := make([]string, 0, len(docs))
		for id := range docs {
			names = append(names, id)
		}
		sort.Strings(names)
		start = names[0]
		fmt.Printf("No city map found, walking from %q instead\n", start)
	}

	unreachable := unreachableMaps(docs, start)
	if len(unreachable) > 0 {
		fmt.Printf("⚠️  WARNING: %d maps are unreachable from %q via portals:\n", len(unreachable), start)
		for _, id := range unreachable {
			fmt.Printf("   Unreachable: %s\n", id)
		}
	} else {
		fmt.Printf("✅ All %d maps reachable from %q via portals\n", len(docs), start)
	}

	// Portals into maps without content files still work at runtime
	// through the generated fallback, but flag them here.
	for _, id := range sortedKeys(docs) {
		for _, p := range docs[id].Portals {
			if _, ok := docs[p.TargetMap]; !ok {
				fmt.Printf("⚠️  %s has a portal to %q which has no content file (generated fallback)\n", id, p.TargetMap)
			}
		}
	}
}

// unreachableMaps returns the ids of maps no portal chain from start
// reaches, sorted.
func unreachableMaps(docs map[string]*tiled.MapDocument, start string) []string {
	visited := map[string]bool{}
	queue := []string{start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true

		doc, ok := docs[id]
		if !ok {
			continue
		}
		for _, p := range doc.Portals {
			if !visited[p.TargetMap] {
				queue = append(queue, p.TargetMap)
			}
		}
	}

	unreachable := []string{}
	for id := range docs {
		if !visited[id] {
			unreachable = append(unreachable, id)
		}
	}
	sort.Strings(unreachable)
	return unreachable
}

func sortedKeys(docs map[string]*tiled.MapDocument) []string {
	keys := make([]string, 0, len(docs))
	for id := range docs {
		keys = append(keys, id)
	}
	sort.Strings(keys)
	return keys
}
