// Package dialogue implements the modal session layer: dialogue node
// graphs, challenge question sets, and the Session state machine that
// walks them while world exploration is suspended.
package dialogue

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mkowalska/anime-security-training/pkg/logger"
)

// PortraitSpec describes the speaker portrait of a dialogue node:
// either a single image path or a looping frame sequence. The session
// never renders; it exposes the spec plus the current frame index.
type PortraitSpec struct {
	Path   string   `json:"path,omitempty"`
	FPS    float64  `json:"fps,omitempty"`
	Frames []string `json:"frames,omitempty"`
}

// UnmarshalJSON accepts the two authored forms: a bare string path, or
// {"type":"frames","fps":8,"frames":[...]}.
func (p *PortraitSpec) UnmarshalJSON(data []byte) error {
	var path string
	if err := json.Unmarshal(data, &path); err == nil {
		*p = PortraitSpec{Path: path}
		return nil
	}

	var obj struct {
		Type   string   `json:"type"`
		FPS    float64  `json:"fps"`
		Frames []string `json:"frames"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("portrait spec: %w", err)
	}
	if obj.Type != "frames" {
		return fmt.Errorf("portrait spec: unknown type %q", obj.Type)
	}
	if obj.FPS <= 0 {
		obj.FPS = 8
	}
	*p = PortraitSpec{FPS: obj.FPS, Frames: obj.Frames}
	return nil
}

// FrameIndex returns the frame to display after elapsed seconds,
// looping at the spec's fps. Static portraits always report frame 0.
func (p *PortraitSpec) FrameIndex(elapsed float64) int {
	if p == nil || len(p.Frames) < 2 || p.FPS <= 0 {
		return 0
	}
	return int(elapsed*p.FPS) % len(p.Frames)
}

// Choice is one branching option of a dialogue node.
type Choice struct {
	Label      string `json:"label"`
	TrustDelta int    `json:"trust_delta,omitempty"`
	Next       string `json:"next,omitempty"`
}

// Action is a side effect attached to a dialogue node. The only
// supported type is "start_challenge".
type Action struct {
	Type         string `json:"type"`
	ChallengeSet string `json:"challenge_set,omitempty"`
}

// Node is a single dialogue beat.
type Node struct {
	Speaker  string        `json:"speaker,omitempty"`
	Text     string        `json:"text"`
	Portrait *PortraitSpec `json:"portrait,omitempty"`
	Choices  []Choice      `json:"choices,omitempty"`
	Next     string        `json:"next,omitempty"`
	Action   *Action       `json:"action,omitempty"`
}

// Dialogue is a parsed dialogue content file.
type Dialogue struct {
	StartNode string          `json:"start_node"`
	Nodes     map[string]Node `json:"nodes"`
}

// Question is one challenge prompt with its answer key.
type Question struct {
	Prompt       string   `json:"prompt"`
	Choices      []string `json:"choices"`
	CorrectIndex int      `json:"correct_index"`
	Points       int      `json:"points,omitempty"`
	Explanation  string   `json:"explanation,omitempty"`
}

// PointValue returns the question's score value, defaulting to 100.
func (q Question) PointValue() int {
	if q.Points > 0 {
		return q.Points
	}
	return 100
}

// ChallengeSet is a parsed challenge content file.
type ChallengeSet struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Category  string     `json:"category"`
	Questions []Question `json:"questions"`
}

// Library loads dialogue and challenge content from disk. Both loads
// are total: missing or malformed files yield minimal empty content
// with a warning, never an error, so an interaction can always open.
type Library struct {
	root          string
	challengesDir string
}

// NewLibrary creates a content library. root anchors the relative
// dialogue paths referenced by map objects; challengesDir holds
// <set_id>.json challenge files.
func NewLibrary(root, challengesDir string) *Library {
	return &Library{root: root, challengesDir: challengesDir}
}

// LoadDialogue reads the dialogue file at the given content path.
func (l *Library) LoadDialogue(path string) *Dialogue {
	if path == "" {
		logger.Log.Warn("dialogue: empty content path, using empty dialogue")
		return emptyDialogue()
	}
	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(l.root, path)
	}

	data, err := os.ReadFile(full)
	if err != nil {
		logger.Log.Warnf("dialogue %s: %v, using empty dialogue", path, err)
		return emptyDialogue()
	}

	var d Dialogue
	if err := json.Unmarshal(data, &d); err != nil {
		logger.Log.Warnf("dialogue %s: %v, using empty dialogue", path, err)
		return emptyDialogue()
	}
	if d.StartNode == "" {
		d.StartNode = "intro"
	}
	if d.Nodes == nil {
		d.Nodes = map[string]Node{}
	}
	return &d
}

// LoadChallengeSet reads the challenge set with the given id.
func (l *Library) LoadChallengeSet(id string) *ChallengeSet {
	filename := id
	if !strings.HasSuffix(filename, ".json") {
		filename += ".json"
	}

	data, err := os.ReadFile(filepath.Join(l.challengesDir, filename))
	if err != nil {
		logger.Log.Warnf("challenge set %s: %v, using empty set", id, err)
		return &ChallengeSet{ID: id, Title: id}
	}

	var cs ChallengeSet
	if err := json.Unmarshal(data, &cs); err != nil {
		logger.Log.Warnf("challenge set %s: %v, using empty set", id, err)
		return &ChallengeSet{ID: id, Title: id}
	}
	cs.ID = id
	if cs.Title == "" {
		cs.Title = id
	}
	if cs.Category == "" {
		cs.Category = "phishing"
	}
	return &cs
}

func emptyDialogue() *Dialogue {
	return &Dialogue{
		StartNode: "intro",
		Nodes: map[string]Node{
			"intro": {Text: "..."},
		},
	}
}
