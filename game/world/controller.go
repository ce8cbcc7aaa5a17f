package world

import (
	"math"

	"github.com/mkowalska/anime-security-training/game/dialogue"
	"github.com/mkowalska/anime-security-training/game/engine"
	"github.com/mkowalska/anime-security-training/game/geom"
	"github.com/mkowalska/anime-security-training/game/maps"
	"github.com/mkowalska/anime-security-training/game/tiled"
	"github.com/mkowalska/anime-security-training/pkg/logger"
)

// State is the controller's exclusive top-level state.
type State string

const (
	StateExploring     State = "exploring"
	StateTransitioning State = "transitioning"
	StateSessionActive State = "session_active"
)

// Facing is the player's last movement direction.
type Facing string

const (
	FacingUp    Facing = "up"
	FacingDown  Facing = "down"
	FacingLeft  Facing = "left"
	FacingRight Facing = "right"
)

// TickResult reports what one tick produced.
type TickResult struct {
	State  State          `json:"state"`
	Prompt string         `json:"prompt,omitempty"`
	Moved  bool           `json:"moved,omitempty"`
	// SessionEnded is set on the tick a modal session closed, with the
	// status it closed with.
	SessionEnded dialogue.Status `json:"session_ended,omitempty"`
	// ExitRequested is set when the player asked to leave to the menu;
	// the caller decides whether to save and what to show.
	ExitRequested bool   `json:"exit_requested,omitempty"`
	Err           *Error `json:"error,omitempty"`
}

// Controller is the world state machine. It is not safe for concurrent
// use; the service layer serializes access around the tick loop.
type Controller struct {
	maps    *maps.Manager
	library *dialogue.Library

	doc      *tiled.MapDocument
	index    engine.Index
	resolver *engine.Resolver
	arbiter  *engine.Arbiter

	mapID    string
	player   geom.Rect
	facing   Facing
	zoom     float64
	state    State
	session  *dialogue.Session
	progress *dialogue.Progress

	// offer from the last exploring tick, cleared on transition and
	// while a session is active.
	offer *engine.Offer
}

// New creates a controller. Call Restore (or Restore(DefaultSnapshot()))
// before ticking.
func New(mapManager *maps.Manager, library *dialogue.Library) *Controller {
	return &Controller{
		maps:     mapManager,
		library:  library,
		facing:   FacingDown,
		state:    StateExploring,
		progress: dialogue.NewProgress(),
	}
}

// State returns the current FSM state.
func (c *Controller) State() State { return c.state }

// MapID returns the id of the current map document.
func (c *Controller) MapID() string { return c.mapID }

// Player returns the player's bounding rectangle.
func (c *Controller) Player() geom.Rect { return c.player }

// Zoom returns the current camera zoom hint.
func (c *Controller) Zoom() float64 { return c.zoom }

// Progress returns the mutable training progress record.
func (c *Controller) Progress() *dialogue.Progress { return c.progress }

// Tick advances the world by dt seconds under one intent. Exactly one
// state handler runs; input never reaches two handlers in one tick.
func (c *Controller) Tick(in Intent, dt float64) TickResult {
	switch c.state {
	case StateSessionActive:
		return c.tickSession(in, dt)
	case StateExploring:
		return c.tickExploring(in, dt)
	default:
		// TRANSITIONING is only ever observable mid-call; a tick that
		// lands here indicates a bug, not user error.
		logger.Log.Errorf("tick in unexpected state %s", c.state)
		c.state = StateExploring
		return TickResult{State: c.state}
	}
}

func (c *Controller) tickExploring(in Intent, dt float64) TickResult {
	res := TickResult{State: StateExploring}

	if in.Cancel {
		res.ExitRequested = true
		return res
	}

	c.moveAndCollide(in, dt)
	res.Moved = in.Up || in.Down || in.Left || in.Right

	c.offer = c.arbiter.Evaluate(c.player)
	if c.offer != nil {
		res.Prompt = c.offer.Prompt

		if in.Interact {
			switch c.offer.Type {
			case engine.OfferEnter:
				if err := c.transition(c.offer.Portal); err != nil {
					res.Err = err
				} else {
					res.Prompt = ""
				}
			case engine.OfferTalk:
				npc := c.offer.NPC
				dlg := c.library.LoadDialogue(npc.Dialogue)
				if err := c.startSession(dialogue.NewDialogueSession(npc.ID, dlg, c.library, c.progress)); err != nil {
					res.Err = err
				} else {
					res.Prompt = ""
				}
			case engine.OfferRead:
				book := c.offer.Book
				if err := c.startSession(dialogue.NewInfoSession(book.Title, book.Text)); err != nil {
					res.Err = err
				} else {
					res.Prompt = ""
				}
			}
		}
	}

	res.State = c.state
	return res
}

func (c *Controller) tickSession(in Intent, dt float64) TickResult {
	res := TickResult{State: StateSessionActive}

	c.session.Tick(dt)
	status := c.session.Advance(dialogue.Input{
		Confirm: in.Confirm,
		Cancel:  in.Cancel,
		Up:      in.Up || in.MenuUp,
		Down:    in.Down || in.MenuDown,
	})

	if status != dialogue.StatusContinuing {
		c.session = nil
		c.state = StateExploring
		res.State = StateExploring
		res.SessionEnded = status
	}
	return res
}

// moveAndCollide applies one tick of movement input through the
// resolver. Diagonal input is normalized so it is no faster than
// cardinal movement.
func (c *Controller) moveAndCollide(in Intent, dt float64) {
	var vx, vy float64
	if in.Left {
		vx--
	}
	if in.Right {
		vx++
	}
	if in.Up {
		vy--
	}
	if in.Down {
		vy++
	}
	if vx == 0 && vy == 0 {
		return
	}
	if vx != 0 && vy != 0 {
		inv := 1.0 / math.Sqrt2
		vx *= inv
		vy *= inv
	}

	switch {
	case vx < 0:
		c.facing = FacingLeft
	case vx > 0:
		c.facing = FacingRight
	case vy < 0:
		c.facing = FacingUp
	case vy > 0:
		c.facing = FacingDown
	}

	c.player = c.resolver.Resolve(c.player, vx*engine.PlayerSpeed*dt, vy*engine.PlayerSpeed*dt)

	// Resolver post-condition. A hit here is a resolver bug, never a
	// content problem, so it is loud but not user-visible.
	if hits := c.index.CollidingWith(c.player); len(hits) > 0 {
		logger.Log.Errorf("collision invariant violated on %s at (%.1f,%.1f)", c.mapID, c.player.X, c.player.Y)
	}
}

// startSession enters SESSION_ACTIVE. Starting a session while one is
// already active is rejected with the active session untouched.
func (c *Controller) startSession(s *dialogue.Session) *Error {
	if c.session != nil {
		return invalidTransition("session for %s already active", c.session.Source().ID)
	}
	c.session = s
	c.state = StateSessionActive
	c.offer = nil
	return nil
}

// transition performs a portal transfer. The document, index, resolver
// and arbiter are built on locals and assigned together, so a renderer
// reading between ticks sees either the old map or the new one in
// full, never a mix.
func (c *Controller) transition(p *tiled.Portal) *Error {
	c.state = StateTransitioning

	doc := c.maps.Load(p.TargetMap)
	if doc == nil {
		// Load is total, so this is defensive only.
		c.state = StateExploring
		return invalidTransition("target map %q could not be resolved", p.TargetMap)
	}

	index := engine.NewIndex(doc)
	resolver := engine.NewResolver(index, doc.Bounds())
	arbiter := engine.NewArbiter(index, doc.ID)

	c.doc = doc
	c.index = index
	c.resolver = resolver
	c.arbiter = arbiter
	c.mapID = doc.ID
	c.player = geom.NewRect(p.TargetX, p.TargetY, engine.PlayerW, engine.PlayerH)

	zoom := doc.DefaultZoom
	if p.TargetZoom != nil {
		zoom = *p.TargetZoom
	}
	c.zoom = geom.Clamp(zoom, engine.MinZoom, engine.MaxZoom)

	c.offer = nil
	c.state = StateExploring
	logger.Log.Infof("entered map %s at (%.0f,%.0f)", c.mapID, p.TargetX, p.TargetY)
	return nil
}
