package dialogue

// View is the render-facing snapshot of a session. The session does
// not render; a rendering collaborator consumes this each frame.
type View struct {
	Mode string `json:"mode"` // dialogue | challenge | results | info

	// Dialogue fields
	Speaker       string        `json:"speaker,omitempty"`
	Text          string        `json:"text,omitempty"`
	Choices       []string      `json:"choices,omitempty"`
	Selected      int           `json:"selected,omitempty"`
	Portrait      *PortraitSpec `json:"portrait,omitempty"`
	PortraitFrame int           `json:"portrait_frame,omitempty"`

	// Info popup fields
	Title string `json:"title,omitempty"`

	Question *QuestionView `json:"question,omitempty"`
	Results  *ResultsView  `json:"results,omitempty"`
}

// QuestionView is the render state of the current challenge question.
type QuestionView struct {
	Prompt          string   `json:"prompt"`
	Choices         []string `json:"choices"`
	Selected        int      `json:"selected"`
	Index           int      `json:"index"` // 1-based
	Total           int      `json:"total"`
	Points          int      `json:"points"`
	MaxPoints       int      `json:"max_points"`
	ShowingFeedback bool     `json:"showing_feedback"`
	LastCorrect     bool     `json:"last_correct,omitempty"`
	Explanation     string   `json:"explanation,omitempty"`
}

// ResultsView is the render state of the challenge results screen.
type ResultsView struct {
	Title     string `json:"title"`
	Grade     string `json:"grade"`
	Points    int    `json:"points"`
	MaxPoints int    `json:"max_points"`
}

// View builds the current render snapshot of the session.
func (s *Session) View() View {
	switch s.mode {
	case modeInfo:
		return View{Mode: "info", Title: s.infoTitle, Text: s.infoText}

	case modeDialogue:
		v := View{Mode: "dialogue", Selected: s.selected}
		node, ok := s.dlg.Nodes[s.nodeID]
		if !ok {
			return v
		}
		v.Speaker = node.Speaker
		if v.Speaker == "" {
			v.Speaker = s.source.ID
		}
		v.Text = node.Text
		v.Portrait = node.Portrait
		v.PortraitFrame = node.Portrait.FrameIndex(s.portraitTime)
		for _, c := range node.Choices {
			v.Choices = append(v.Choices, c.Label)
		}
		return v

	case modeChallenge:
		q := s.set.Questions[s.qi]
		return View{
			Mode:  "challenge",
			Title: s.set.Title,
			Question: &QuestionView{
				Prompt:          q.Prompt,
				Choices:         q.Choices,
				Selected:        s.qSelected,
				Index:           s.qi + 1,
				Total:           len(s.set.Questions),
				Points:          s.pointsEarned,
				MaxPoints:       s.maxPoints,
				ShowingFeedback: s.showingFeedback,
				LastCorrect:     s.lastCorrect,
				Explanation:     s.lastExplanation,
			},
		}

	case modeResults:
		return View{
			Mode:  "results",
			Title: s.set.Title,
			Results: &ResultsView{
				Title:     s.set.Title,
				Grade:     Grade(s.pointsEarned, s.maxPoints),
				Points:    s.pointsEarned,
				MaxPoints: s.maxPoints,
			},
		}
	}
	return View{}
}
