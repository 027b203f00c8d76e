package game

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cbodonnell/tabletop/pkg/game/rules"
	"github.com/cbodonnell/tabletop/pkg/log"
	"github.com/cbodonnell/tabletop/pkg/metrics"
	"github.com/cbodonnell/tabletop/pkg/queue"
	"github.com/cbodonnell/tabletop/pkg/repositories"
)

// Registry resolves a game ID to its one live Actor. Actors are created on
// demand and may be evicted when idle; an evicted game is reloaded from the
// repository by the next actor created for it.
type Registry struct {
	lock   sync.Mutex
	actors map[string]*Actor

	repository     repositories.Repository
	ruleset        rules.Ruleset
	events         queue.Queue
	metrics        *metrics.Metrics
	clock          func() time.Time
	persistTimeout time.Duration
}

// NewRegistryOptions contains options for creating a new Registry.
// They are passed on to every actor the registry creates.
type NewRegistryOptions struct {
	Repository     repositories.Repository
	Ruleset        rules.Ruleset
	Events         queue.Queue
	Metrics        *metrics.Metrics
	Clock          func() time.Time
	PersistTimeout time.Duration
}

func NewRegistry(opts NewRegistryOptions) *Registry {
	return &Registry{
		actors:         make(map[string]*Actor),
		repository:     opts.Repository,
		ruleset:        opts.Ruleset,
		events:         opts.Events,
		metrics:        opts.Metrics,
		clock:          opts.Clock,
		persistTimeout: opts.PersistTimeout,
	}
}

// Actor returns the actor owning gameID, creating it if necessary.
func (r *Registry) Actor(gameID string) *Actor {
	r.lock.Lock()
	defer r.lock.Unlock()

	if a, ok := r.actors[gameID]; ok {
		return a
	}
	a := NewActor(NewActorOptions{
		GameID:         gameID,
		Repository:     r.repository,
		Ruleset:        r.ruleset,
		Events:         r.events,
		Metrics:        r.metrics,
		Clock:          r.clock,
		PersistTimeout: r.persistTimeout,
	})
	r.actors[gameID] = a
	r.metrics.SetActiveActors(len(r.actors))
	return a
}

// Do runs fn against the actor owning gameID. An actor evicted between lookup
// and execution never applied the operation, so fn is retried once on a
// fresh actor.
func (r *Registry) Do(ctx context.Context, gameID string, fn func(a *Actor) (interface{}, error)) (interface{}, error) {
	v, err := fn(r.Actor(gameID))
	if errors.Is(err, ErrActorStopped) {
		log.Debug("Actor for game %s stopped, retrying", gameID)
		v, err = fn(r.Actor(gameID))
	}
	return v, err
}

// EvictIdle stops and forgets every actor idle for at least maxIdle and
// returns how many were evicted. Actors are stopped while the registry is
// locked so a replacement can't load state before its predecessor is done.
func (r *Registry) EvictIdle(maxIdle time.Duration) int {
	r.lock.Lock()
	defer r.lock.Unlock()

	evicted := 0
	for gameID, a := range r.actors {
		if !a.Idle(maxIdle) {
			continue
		}
		a.Stop()
		delete(r.actors, gameID)
		evicted++
	}
	if evicted > 0 {
		log.Debug("Evicted %d idle game actors", evicted)
		r.metrics.SetActiveActors(len(r.actors))
	}
	return evicted
}

// Len returns the number of resident actors.
func (r *Registry) Len() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return len(r.actors)
}

// Stop stops every actor.
func (r *Registry) Stop() {
	r.lock.Lock()
	defer r.lock.Unlock()

	for gameID, a := range r.actors {
		a.Stop()
		delete(r.actors, gameID)
	}
	r.metrics.SetActiveActors(0)
}
