package dialogue

// Input is one tick's worth of discrete intents forwarded to a modal
// session while it is active.
type Input struct {
	Confirm bool
	Cancel  bool
	Up      bool
	Down    bool
}

// Status is the outcome of advancing a session.
type Status string

const (
	// StatusContinuing means the session stays active.
	StatusContinuing Status = "continuing"
	// StatusCompleted means the session finished or was cancelled;
	// effects already applied to Progress stay applied.
	StatusCompleted Status = "completed"
	// StatusFailed means a challenge finished below the passing grade.
	StatusFailed Status = "failed"
)

// SourceKind identifies what opened a session.
type SourceKind string

const (
	SourceNPC  SourceKind = "npc"
	SourceBook SourceKind = "book"
)

// Source references the object that opened a session. It exists for
// resuming context and the re-entrancy guard, never for re-opening.
type Source struct {
	Kind SourceKind `json:"kind"`
	ID   string     `json:"id"`
}

type mode int

const (
	modeDialogue mode = iota
	modeChallenge
	modeResults
	modeInfo
)

// Session is the modal dialogue/challenge state machine. All state
// changes happen in Advance, driven only by the supplied inputs, so a
// session replays identically for identical input sequences. Portrait
// animation time advances separately through Tick and has no effect on
// control flow.
type Session struct {
	source   Source
	library  *Library
	progress *Progress

	mode mode

	// dialogue walk
	dlg      *Dialogue
	nodeID   string
	selected int

	// challenge walk
	set             *ChallengeSet
	qi              int
	qSelected       int
	showingFeedback bool
	lastCorrect     bool
	lastExplanation string
	pointsEarned    int
	maxPoints       int

	// info popup
	infoTitle string
	infoText  string

	portraitTime float64
}

// passingGrade is the completion fraction below which a finished
// challenge reports StatusFailed (grade D).
const passingGrade = 0.6

// NewDialogueSession opens a dialogue session for an NPC. The library
// resolves any challenge set the dialogue launches; progress receives
// trust and score effects as they happen.
func NewDialogueSession(npcID string, dlg *Dialogue, library *Library, progress *Progress) *Session {
	return &Session{
		source:   Source{Kind: SourceNPC, ID: npcID},
		library:  library,
		progress: progress,
		mode:     modeDialogue,
		dlg:      dlg,
		nodeID:   dlg.StartNode,
	}
}

// NewInfoSession opens a read-only text popup for a book.
func NewInfoSession(title, text string) *Session {
	return &Session{
		source:    Source{Kind: SourceBook, ID: title},
		mode:      modeInfo,
		infoTitle: title,
		infoText:  text,
	}
}

// Source returns the reference to the object that opened the session.
func (s *Session) Source() Source { return s.source }

// Tick advances portrait animation by dt seconds of wall-clock time.
func (s *Session) Tick(dt float64) {
	s.portraitTime += dt
}

// Advance feeds one tick of input into the session and reports whether
// it continues, completed, or failed.
func (s *Session) Advance(in Input) Status {
	switch s.mode {
	case modeInfo:
		if in.Cancel || in.Confirm {
			return StatusCompleted
		}
		return StatusContinuing
	case modeDialogue:
		return s.advanceDialogue(in)
	case modeChallenge:
		return s.advanceChallenge(in)
	case modeResults:
		if in.Confirm || in.Cancel {
			return s.finalStatus()
		}
		return StatusContinuing
	}
	return StatusCompleted
}

func (s *Session) advanceDialogue(in Input) Status {
	if in.Cancel {
		return StatusCompleted
	}

	node, ok := s.dlg.Nodes[s.nodeID]
	if !ok {
		// Walked off the graph; nothing left to show.
		return StatusCompleted
	}

	if len(node.Choices) > 0 {
		if in.Up {
			s.selected--
		}
		if in.Down {
			s.selected++
		}
		if s.selected < 0 {
			s.selected = 0
		}
		if s.selected >= len(node.Choices) {
			s.selected = len(node.Choices) - 1
		}

		if in.Confirm {
			choice := node.Choices[s.selected]
			if s.progress != nil {
				s.progress.AddTrust(s.source.ID, choice.TrustDelta)
			}
			if choice.Next != "" {
				s.nodeID = choice.Next
				s.selected = 0
				return StatusContinuing
			}
			return s.leaveNode(node)
		}
		return StatusContinuing
	}

	if in.Confirm {
		if node.Next != "" {
			s.nodeID = node.Next
			return StatusContinuing
		}
		return s.leaveNode(node)
	}
	return StatusContinuing
}

// leaveNode handles a confirmed node with no onward edge: launch its
// action if it has one, otherwise the dialogue is over.
func (s *Session) leaveNode(node Node) Status {
	if node.Action != nil && node.Action.Type == "start_challenge" && node.Action.ChallengeSet != "" {
		s.startChallenge(node.Action.ChallengeSet)
		return StatusContinuing
	}
	return StatusCompleted
}

func (s *Session) startChallenge(setID string) {
	s.set = s.library.LoadChallengeSet(setID)
	s.mode = modeChallenge
	s.qi = 0
	s.qSelected = 0
	s.showingFeedback = false
	s.pointsEarned = 0
	s.maxPoints = 0
	for _, q := range s.set.Questions {
		s.maxPoints += q.PointValue()
	}
	if len(s.set.Questions) == 0 {
		s.mode = modeResults
	}
}

func (s *Session) advanceChallenge(in Input) Status {
	// Cancelling mid-challenge keeps any points already earned.
	if in.Cancel {
		return StatusCompleted
	}

	q := s.set.Questions[s.qi]

	if s.showingFeedback {
		if in.Confirm {
			s.showingFeedback = false
			s.qSelected = 0
			s.qi++
			if s.qi >= len(s.set.Questions) {
				if s.progress != nil {
					s.progress.MarkCompleted(s.set.ID)
				}
				s.mode = modeResults
			}
		}
		return StatusContinuing
	}

	if in.Up {
		s.qSelected--
	}
	if in.Down {
		s.qSelected++
	}
	if s.qSelected < 0 {
		s.qSelected = 0
	}
	if s.qSelected >= len(q.Choices) {
		s.qSelected = len(q.Choices) - 1
	}

	if in.Confirm {
		s.lastCorrect = s.qSelected == q.CorrectIndex
		s.lastExplanation = q.Explanation
		if s.lastCorrect {
			pts := q.PointValue()
			s.pointsEarned += pts
			if s.progress != nil {
				s.progress.AddScore(s.set.Category, pts)
			}
		}
		s.showingFeedback = true
	}
	return StatusContinuing
}

func (s *Session) finalStatus() Status {
	if s.set != nil && s.maxPoints > 0 {
		if float64(s.pointsEarned) < passingGrade*float64(s.maxPoints) {
			return StatusFailed
		}
	}
	return StatusCompleted
}

// Grade maps a challenge score to the letter grades shown on the
// results screen.
func Grade(points, maxPoints int) string {
	if maxPoints <= 0 {
		return "N/A"
	}
	pct := float64(points) * 100.0 / float64(maxPoints)
	switch {
	case pct >= 90:
		return "S"
	case pct >= 80:
		return "A"
	case pct >= 70:
		return "B"
	case pct >= 60:
		return "C"
	default:
		return "D"
	}
}
