package service

import (
	"context"

	"github.com/mkowalska/anime-security-training/game/tiled"
	"github.com/mkowalska/anime-security-training/game/world"
)

// WorldService defines all world-related operations exposed to the
// transports. Implementations serialize access internally; handlers
// may call from any goroutine.
type WorldService interface {
	// Input and simulation
	ApplyIntent(ctx context.Context, in world.Intent) error
	Step(ctx context.Context, dt float64) (world.TickResult, error)

	// State
	GetState(ctx context.Context) (*world.RenderSnapshot, error)

	// Save slots
	NewGame(ctx context.Context) (*world.RenderSnapshot, error)
	SaveGame(ctx context.Context, slot string) error
	LoadGame(ctx context.Context, slot string) (*world.RenderSnapshot, error)
	ListSlots(ctx context.Context) ([]string, error)

	// Content
	ListMaps(ctx context.Context) ([]string, error)
	GetMap(ctx context.Context, id string) (*tiled.MapDocument, error)
}

// Publisher receives a frame snapshot after each simulation step. The
// websocket hub implements this to fan frames out to clients.
type Publisher interface {
	Publish(snap *world.RenderSnapshot)
}

// PublisherFunc adapts a function to the Publisher interface.
type PublisherFunc func(snap *world.RenderSnapshot)

func (f PublisherFunc) Publish(snap *world.RenderSnapshot) { f(snap) }
