package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mkowalska/anime-security-training/game/dialogue"
	"github.com/mkowalska/anime-security-training/game/maps"
	"github.com/mkowalska/anime-security-training/game/save"
	"github.com/mkowalska/anime-security-training/game/tiled"
	"github.com/mkowalska/anime-security-training/game/world"
	"github.com/mkowalska/anime-security-training/pkg/logger"
)

// TickRate is the fixed simulation frequency of the Run loop.
const TickRate = 60

// worldServiceImpl implements the WorldService interface around one
// world controller. A single mutex serializes every operation; the
// controller itself is not concurrency-safe.
type worldServiceImpl struct {
	mu    sync.Mutex
	ctrl  *world.Controller
	maps  *maps.Manager
	store *save.Store

	// pending accumulates intents between simulation steps. Movement
	// flags hold their last reported value; press flags latch until
	// the next step consumes them, so a press between two ticks is
	// never lost.
	pending world.Intent
}

// NewWorldService creates a world service with a fresh controller
// restored from the default slot if one exists, else a new game.
func NewWorldService(mapManager *maps.Manager, library *dialogue.Library, store *save.Store) WorldService {
	s := &worldServiceImpl{
		ctrl:  world.New(mapManager, library),
		maps:  mapManager,
		store: store,
	}
	if store.Exists(save.DefaultSlot) {
		s.ctrl.Restore(fromSaveData(store.Load(save.DefaultSlot)))
	} else {
		s.ctrl.Restore(world.DefaultSnapshot())
	}
	return s
}

// ApplyIntent merges one intent report into the pending input for the
// next simulation step.
func (s *worldServiceImpl) ApplyIntent(ctx context.Context, in world.Intent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending.Up = in.Up
	s.pending.Down = in.Down
	s.pending.Left = in.Left
	s.pending.Right = in.Right

	s.pending.Interact = s.pending.Interact || in.Interact
	s.pending.Confirm = s.pending.Confirm || in.Confirm
	s.pending.Cancel = s.pending.Cancel || in.Cancel
	s.pending.MenuUp = s.pending.MenuUp || in.MenuUp
	s.pending.MenuDown = s.pending.MenuDown || in.MenuDown
	return nil
}

// Step advances the simulation by dt seconds using the pending intent.
// Press flags are consumed; movement flags persist until the client
// reports them released.
func (s *worldServiceImpl) Step(ctx context.Context, dt float64) (world.TickResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in := s.pending
	s.pending.Interact = false
	s.pending.Confirm = false
	s.pending.Cancel = false
	s.pending.MenuUp = false
	s.pending.MenuDown = false

	res := s.ctrl.Tick(in, dt)

	if res.ExitRequested {
		// Exit to menu autosaves the default slot; losing progress to
		// a quit is worse than an extra write.
		if err := s.store.Save(save.DefaultSlot, toSaveData(s.ctrl.Snapshot())); err != nil {
			logger.Log.Warnf("autosave on exit: %v", err)
		}
	}
	if res.Err != nil {
		logger.Log.Warnf("tick: %v", res.Err)
	}
	return res, nil
}

// GetState returns the current frame snapshot.
func (s *worldServiceImpl) GetState(ctx context.Context) (*world.RenderSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.ctrl.Render()
	return &snap, nil
}

// NewGame resets the world to a fresh default state.
func (s *worldServiceImpl) NewGame(ctx context.Context) (*world.RenderSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ctrl.Restore(world.DefaultSnapshot())
	s.pending = world.Intent{}
	snap := s.ctrl.Render()
	return &snap, nil
}

// SaveGame writes the current world state to a slot.
func (s *worldServiceImpl) SaveGame(ctx context.Context, slot string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Save(slot, toSaveData(s.ctrl.Snapshot())); err != nil {
		return fmt.Errorf("save slot %s: %w", slot, err)
	}
	return nil
}

// LoadGame restores the world from a slot. Loading never fails; a
// missing or corrupted slot restores the default state.
func (s *worldServiceImpl) LoadGame(ctx context.Context, slot string) (*world.RenderSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ctrl.Restore(fromSaveData(s.store.Load(slot)))
	s.pending = world.Intent{}
	snap := s.ctrl.Render()
	return &snap, nil
}

// ListSlots returns the save slots on disk.
func (s *worldServiceImpl) ListSlots(ctx context.Context) ([]string, error) {
	return s.store.ListSlots()
}

// ListMaps returns the ids of the map content files.
func (s *worldServiceImpl) ListMaps(ctx context.Context) ([]string, error) {
	return s.maps.List()
}

// GetMap loads a single map document, with the usual generated
// fallback for missing or broken content.
func (s *worldServiceImpl) GetMap(ctx context.Context, id string) (*tiled.MapDocument, error) {
	return s.maps.Load(id), nil
}

// Run drives the fixed-rate simulation loop until the context is
// cancelled, publishing a frame snapshot after every step.
func Run(ctx context.Context, svc WorldService, pub Publisher) {
	interval := time.Second / TickRate
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	dt := interval.Seconds()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := svc.Step(ctx, dt); err != nil {
				logger.Log.Errorf("simulation step: %v", err)
				continue
			}
			if pub != nil {
				snap, err := svc.GetState(ctx)
				if err != nil {
					continue
				}
				pub.Publish(snap)
			}
		}
	}
}

// toSaveData converts a world snapshot into the slot file schema.
func toSaveData(snap world.Snapshot) *save.Data {
	d := save.Default()
	d.World.Map = snap.MapID
	d.Player.X = snap.X
	d.Player.Y = snap.Y
	d.Zoom = snap.Zoom
	if p := snap.Progress; p != nil {
		d.Trust = p.Trust
		d.Scores = p.Scores
		d.Completed.Challenges = p.Completed
		if d.Completed.Challenges == nil {
			d.Completed.Challenges = []string{}
		}
	}
	return d
}

// fromSaveData converts a slot file into a restorable world snapshot.
func fromSaveData(d *save.Data) world.Snapshot {
	return world.Snapshot{
		MapID: d.World.Map,
		X:     d.Player.X,
		Y:     d.Player.Y,
		Zoom:  d.Zoom,
		Progress: &dialogue.Progress{
			Trust:     d.Trust,
			Scores:    d.Scores,
			Completed: d.Completed.Challenges,
		},
	}
}
