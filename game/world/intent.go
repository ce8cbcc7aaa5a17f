package world

// Intent is one tick of discrete input delivered by the input
// collaborator. Movement flags are level-triggered (held keys); the
// others are edge-triggered presses.
type Intent struct {
	Up    bool `json:"up,omitempty"`
	Down  bool `json:"down,omitempty"`
	Left  bool `json:"left,omitempty"`
	Right bool `json:"right,omitempty"`

	Interact bool `json:"interact,omitempty"`
	Confirm  bool `json:"confirm,omitempty"`
	Cancel   bool `json:"cancel,omitempty"`

	MenuUp   bool `json:"menu_up,omitempty"`
	MenuDown bool `json:"menu_down,omitempty"`
}
