package dialogue

// Progress accumulates the cross-session training state: per-NPC
// trust, category scores, and completed challenge sets. The world
// controller owns one instance and serializes it into save snapshots.
type Progress struct {
	Trust     map[string]int `json:"trust"`
	Scores    map[string]int `json:"scores"`
	Completed []string       `json:"completed"`
}

// NewProgress returns an empty progress record with the standard
// score categories zeroed.
func NewProgress() *Progress {
	return &Progress{
		Trust: map[string]int{},
		Scores: map[string]int{
			"total":    0,
			"phishing": 0,
			"password": 0,
			"links":    0,
			"mfa":      0,
		},
	}
}

// AddTrust adjusts the trust value for an NPC.
func (p *Progress) AddTrust(npcID string, delta int) {
	if delta == 0 {
		return
	}
	p.Trust[npcID] += delta
}

// AddScore credits points to a category and to the running total.
func (p *Progress) AddScore(category string, points int) {
	if points == 0 {
		return
	}
	p.Scores["total"] += points
	p.Scores[category] += points
}

// MarkCompleted records a finished challenge set once. It reports
// whether the set was newly completed.
func (p *Progress) MarkCompleted(setID string) bool {
	for _, id := range p.Completed {
		if id == setID {
			return false
		}
	}
	p.Completed = append(p.Completed, setID)
	return true
}

// HasCompleted reports whether a challenge set was finished before.
func (p *Progress) HasCompleted(setID string) bool {
	for _, id := range p.Completed {
		if id == setID {
			return true
		}
	}
	return false
}
