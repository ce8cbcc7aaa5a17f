// Command validate lints the game content directory. It checks:
//   - Map files: geometry validity, npc_id uniqueness, dialogue file
//     presence, portal targets and landing coordinates, book text
//   - Dialogue files: start node presence, node reference integrity,
//     reachability of every node from the start node, challenge actions
//   - Challenge files: question structure and answer key bounds
//
// The game itself never fails on bad content (broken maps fall back to
// generated layouts, broken dialogues open empty); this tool exists to
// surface those problems before they ship.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/mkowalska/anime-security-training/game/dialogue"
	"github.com/mkowalska/anime-security-training/game/engine"
	"github.com/mkowalska/anime-security-training/game/maps"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) errorf(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) infof(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// validateMap loads one map content file without the generated fallback
// and checks everything the runtime silently tolerates.
func validateMap(dataDir, id string) ValidationResult {
	result := ValidationResult{
		File:   id + ".json",
		Valid:  true,
		Errors: []string{},
	}

	mgr := maps.NewManager(filepath.Join(dataDir, "maps"))
	doc, err := mgr.LoadFile(id)
	if err != nil {
		result.errorf("Failed to load map: %v", err)
		return result
	}

	if doc.Width <= 0 || doc.Height <= 0 {
		result.errorf("Map dimensions must be positive, got %dx%d tiles", doc.Width, doc.Height)
	}
	if doc.TileW <= 0 || doc.TileH <= 0 {
		result.errorf("Tile size must be positive, got %dx%d", doc.TileW, doc.TileH)
	}
	if doc.DefaultZoom != 0 && (doc.DefaultZoom < engine.MinZoom || doc.DefaultZoom > engine.MaxZoom) {
		result.errorf("default_zoom %.2f outside allowed range [%.1f, %.1f]", doc.DefaultZoom, engine.MinZoom, engine.MaxZoom)
	}

	for i, c := range doc.Colliders {
		if !c.Valid() || c.W <= 0 || c.H <= 0 {
			result.errorf("Collider %d has a degenerate rect (%.1f,%.1f %gx%g)", i+1, c.X, c.Y, c.W, c.H)
		}
	}

	seenNPCs := map[string]bool{}
	for i, npc := range doc.NPCs {
		if npc.ID == "" {
			result.errorf("NPC %d is missing npc_id", i+1)
		} else if seenNPCs[npc.ID] {
			result.errorf("Duplicate npc_id %q", npc.ID)
		} else {
			seenNPCs[npc.ID] = true
		}
		if !npc.Rect.Valid() || npc.Rect.W <= 0 || npc.Rect.H <= 0 {
			result.errorf("NPC %q has a degenerate rect", npc.ID)
		}
		if npc.Dialogue == "" {
			result.errorf("NPC %q has no dialogue path", npc.ID)
		} else if _, err := os.Stat(filepath.Join(dataDir, npc.Dialogue)); err != nil {
			result.errorf("NPC %q references missing dialogue file %s", npc.ID, npc.Dialogue)
		}
	}

	for i, portal := range doc.Portals {
		if !portal.Rect.Valid() || portal.Rect.W <= 0 || portal.Rect.H <= 0 {
			result.errorf("Portal %d has a degenerate rect", i+1)
		}
		if portal.TargetMap == "" {
			result.errorf("Portal %d has no target_map", i+1)
			continue
		}
		target, err := mgr.LoadFile(portal.TargetMap)
		if err != nil {
			if errors.Is(err, maps.ErrMapNotFound) {
				result.errorf("Portal %d targets map %q with no content file (runtime would use a generated fallback)", i+1, portal.TargetMap)
			} else {
				result.errorf("Portal %d targets unloadable map %q: %v", i+1, portal.TargetMap, err)
			}
			continue
		}
		if portal.TargetX < 0 || portal.TargetX > target.PixelWidth() ||
			portal.TargetY < 0 || portal.TargetY > target.PixelHeight() {
			result.errorf("Portal %d lands at (%.0f,%.0f) outside target map %q bounds %gx%g",
				i+1, portal.TargetX, portal.TargetY, portal.TargetMap, target.PixelWidth(), target.PixelHeight())
		}
		if portal.TargetZoom != nil && (*portal.TargetZoom < engine.MinZoom || *portal.TargetZoom > engine.MaxZoom) {
			result.errorf("Portal %d target_zoom %.2f outside allowed range [%.1f, %.1f]",
				i+1, *portal.TargetZoom, engine.MinZoom, engine.MaxZoom)
		}
	}

	for i, book := range doc.Books {
		if !book.Rect.Valid() || book.Rect.W <= 0 || book.Rect.H <= 0 {
			result.errorf("Book %d has a degenerate rect", i+1)
		}
		if book.Title == "" {
			result.errorf("Book %d has no title", i+1)
		}
		if book.Text == "" {
			result.errorf("Book %d (%s) has no text", i+1, book.Title)
		}
	}

	if result.Valid {
		result.infof("✓ Size: %dx%d tiles (%gx%g px)", doc.Width, doc.Height, doc.PixelWidth(), doc.PixelHeight())
		result.infof("✓ Colliders: %d", len(doc.Colliders))
		result.infof("✓ NPCs: %d", len(doc.NPCs))
		result.infof("✓ Portals: %d", len(doc.Portals))
		result.infof("✓ Books: %d", len(doc.Books))
	}

	return result
}

// validateDialogue parses one dialogue file and checks the node graph:
// the start node exists, every next / choice reference resolves, every
// node is reachable from the start, and challenge actions point at
// challenge files that exist.
func validateDialogue(challengesDir, path string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(path),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		result.errorf("Failed to read file: %v", err)
		return result
	}

	var d dialogue.Dialogue
	if err := json.Unmarshal(data, &d); err != nil {
		result.errorf("Invalid JSON: %v", err)
		return result
	}

	if len(d.Nodes) == 0 {
		result.errorf("Dialogue has no nodes")
		return result
	}

	start := d.StartNode
	if start == "" {
		start = "intro"
	}
	if _, ok := d.Nodes[start]; !ok {
		result.errorf("Start node %q does not exist", start)
	}

	names := make([]string, 0, len(d.Nodes))
	for name := range d.Nodes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		node := d.Nodes[name]
		if node.Text == "" {
			result.errorf("Node %q has no text", name)
		}
		if node.Next != "" {
			if _, ok := d.Nodes[node.Next]; !ok {
				result.errorf("Node %q links to missing node %q", name, node.Next)
			}
		}
		for i, choice := range node.Choices {
			if choice.Label == "" {
				result.errorf("Node %q choice %d has no label", name, i+1)
			}
			if choice.Next != "" {
				if _, ok := d.Nodes[choice.Next]; !ok {
					result.errorf("Node %q choice %d links to missing node %q", name, i+1, choice.Next)
				}
			}
		}
		if node.Action != nil {
			if node.Action.Type != "start_challenge" {
				result.errorf("Node %q has unknown action type %q", name, node.Action.Type)
			} else if node.Action.ChallengeSet == "" {
				result.errorf("Node %q start_challenge action has no challenge_set", name)
			} else if _, err := os.Stat(filepath.Join(challengesDir, node.Action.ChallengeSet+".json")); err != nil {
				result.errorf("Node %q references missing challenge set %q", name, node.Action.ChallengeSet)
			}
		}
		if node.Portrait != nil && node.Portrait.Path == "" && len(node.Portrait.Frames) == 0 {
			result.errorf("Node %q has an empty portrait spec", name)
		}
	}

	// Reachability walk from the start node over next and choice links.
	visited := map[string]bool{}
	queue := []string{start}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if visited[name] {
			continue
		}
		visited[name] = true

		node, ok := d.Nodes[name]
		if !ok {
			continue
		}
		if node.Next != "" && !visited[node.Next] {
			queue = append(queue, node.Next)
		}
		for _, choice := range node.Choices {
			if choice.Next != "" && !visited[choice.Next] {
				queue = append(queue, choice.Next)
			}
		}
	}

	unreachable := []string{}
	for _, name := range names {
		if !visited[name] {
			unreachable = append(unreachable, name)
		}
	}
	if len(unreachable) > 0 {
		result.errorf("Unreachable nodes from %q: %s", start, strings.Join(unreachable, ", "))
	}

	if result.Valid {
		result.infof("✓ Start node: %s", start)
		result.infof("✓ Nodes: %d, all reachable", len(d.Nodes))
	}

	return result
}

// validateChallenge parses one challenge set file and checks question
// structure and answer key bounds.
func validateChallenge(path string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(path),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		result.errorf("Failed to read file: %v", err)
		return result
	}

	var cs dialogue.ChallengeSet
	if err := json.Unmarshal(data, &cs); err != nil {
		result.errorf("Invalid JSON: %v", err)
		return result
	}

	if len(cs.Questions) == 0 {
		result.errorf("Challenge set has no questions")
	}

	total := 0
	for i, q := range cs.Questions {
		if q.Prompt == "" {
			result.errorf("Question %d has no prompt", i+1)
		}
		if len(q.Choices) < 2 {
			result.errorf("Question %d needs at least 2 choices, got %d", i+1, len(q.Choices))
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Choices) {
			result.errorf("Question %d correct_index %d out of bounds for %d choices", i+1, q.CorrectIndex, len(q.Choices))
		}
		if q.Points < 0 {
			result.errorf("Question %d has negative points", i+1)
		}
		total += q.PointValue()
	}

	if result.Valid {
		result.infof("✓ Title: %s", cs.Title)
		result.infof("✓ Category: %s", cs.Category)
		result.infof("✓ Questions: %d (%d points)", len(cs.Questions), total)
	}

	return result
}

func validateAllMaps(dataDir string) ([]ValidationResult, error) {
	mgr := maps.NewManager(filepath.Join(dataDir, "maps"))
	ids, err := mgr.List()
	if err != nil {
		return nil, fmt.Errorf("list maps: %w", err)
	}
	sort.Strings(ids)

	results := make([]ValidationResult, 0, len(ids))
	for _, id := range ids {
		results = append(results, validateMap(dataDir, id))
	}
	return results, nil
}

func validateAllDialogues(dataDir string) ([]ValidationResult, error) {
	files, err := filepath.Glob(filepath.Join(dataDir, "dialogues", "*.json"))
	if err != nil {
		return nil, fmt.Errorf("list dialogues: %w", err)
	}
	sort.Strings(files)

	challengesDir := filepath.Join(dataDir, "challenges")
	results := make([]ValidationResult, 0, len(files))
	for _, file := range files {
		results = append(results, validateDialogue(challengesDir, file))
	}
	return results, nil
}

func validateAllChallenges(dataDir string) ([]ValidationResult, error) {
	files, err := filepath.Glob(filepath.Join(dataDir, "challenges", "*.json"))
	if err != nil {
		return nil, fmt.Errorf("list challenges: %w", err)
	}
	sort.Strings(files)

	results := make([]ValidationResult, 0, len(files))
	for _, file := range files {
		results = append(results, validateChallenge(file))
	}
	return results, nil
}

// report prints the results in a compact per-file listing and returns
// whether every file was valid.
func report(heading string, results []ValidationResult) bool {
	allValid := true
	for _, result := range results {
		fmt.Printf("\n%s %s/%s\n", strings.Repeat("=", 20), heading, result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}
	return allValid
}

func summarize(allValid bool) error {
	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if !allValid {
		return cli.Exit("❌ Some content files have errors", 1)
	}
	fmt.Println("✅ All content files are valid!")
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "validate",
		Usage: "lint the game content directory",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "data-dir",
				Value: "data",
				Usage: "content directory holding maps/, dialogues/ and challenges/",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "maps",
				Usage: "validate map files",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					results, err := validateAllMaps(cmd.String("data-dir"))
					if err != nil {
						return err
					}
					return summarize(report("maps", results))
				},
			},
			{
				Name:  "dialogues",
				Usage: "validate dialogue files",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					results, err := validateAllDialogues(cmd.String("data-dir"))
					if err != nil {
						return err
					}
					return summarize(report("dialogues", results))
				},
			},
			{
				Name:  "challenges",
				Usage: "validate challenge set files",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					results, err := validateAllChallenges(cmd.String("data-dir"))
					if err != nil {
						return err
					}
					return summarize(report("challenges", results))
				},
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dataDir := cmd.String("data-dir")

			mapResults, err := validateAllMaps(dataDir)
			if err != nil {
				return err
			}
			dialogueResults, err := validateAllDialogues(dataDir)
			if err != nil {
				return err
			}
			challengeResults, err := validateAllChallenges(dataDir)
			if err != nil {
				return err
			}

			allValid := report("maps", mapResults)
			allValid = report("dialogues", dialogueResults) && allValid
			allValid = report("challenges", challengeResults) && allValid
			return summarize(allValid)
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
