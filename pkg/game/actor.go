package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cbodonnell/tabletop/pkg/game/constants"
	"github.com/cbodonnell/tabletop/pkg/game/rules"
	"github.com/cbodonnell/tabletop/pkg/game/types"
	"github.com/cbodonnell/tabletop/pkg/log"
	"github.com/cbodonnell/tabletop/pkg/metrics"
	"github.com/cbodonnell/tabletop/pkg/queue"
	"github.com/cbodonnell/tabletop/pkg/repositories"
)

const defaultPersistTimeout = 5 * time.Second

// Actor is the single owner of one game's state. Operations are executed one
// at a time, in arrival order, by the actor's own goroutine. A mutation is
// applied to a copy of the state, persisted, and only then made resident, so
// a failed validation or a failed write leaves both copies untouched.
type Actor struct {
	gameID         string
	repository     repositories.Repository
	ruleset        rules.Ruleset
	events         queue.Queue
	metrics        *metrics.Metrics
	logger         *log.Logger
	clock          func() time.Time
	persistTimeout time.Duration

	inbox    chan request
	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once

	lastUsed atomic.Int64
	inFlight atomic.Int32

	// state is only touched by the run goroutine. nil until first loaded.
	state *types.GameState
}

type request struct {
	ctx   context.Context
	op    string
	fn    func(ctx context.Context) (interface{}, error)
	reply chan response
}

type response struct {
	value interface{}
	err   error
}

// NewActorOptions contains options for creating a new Actor.
type NewActorOptions struct {
	GameID     string
	Repository repositories.Repository
	Ruleset    rules.Ruleset
	// Events receives a *types.StateChangedEvent after every persisted mutation. Optional.
	Events  queue.Queue
	Metrics *metrics.Metrics
	// Clock defaults to time.Now
	Clock          func() time.Time
	PersistTimeout time.Duration
}

// NewActor creates an actor and starts its goroutine. State is loaded from the
// repository on the first operation.
func NewActor(opts NewActorOptions) *Actor {
	a := &Actor{
		gameID:         opts.GameID,
		repository:     opts.Repository,
		ruleset:        opts.Ruleset,
		events:         opts.Events,
		metrics:        opts.Metrics,
		logger:         log.With("gameId", opts.GameID),
		clock:          opts.Clock,
		persistTimeout: opts.PersistTimeout,
		inbox:          make(chan request, constants.ActorInboxSize),
		done:           make(chan struct{}),
		stopped:        make(chan struct{}),
	}
	if a.ruleset == nil {
		a.ruleset = rules.NewTurnLimit(constants.DefaultMaxTurns)
	}
	if a.clock == nil {
		a.clock = time.Now
	}
	if a.persistTimeout <= 0 {
		a.persistTimeout = defaultPersistTimeout
	}
	a.lastUsed.Store(a.clock().UnixNano())
	go a.run()
	return a
}

func (a *Actor) GameID() string {
	return a.gameID
}

func (a *Actor) run() {
	defer close(a.stopped)
	for {
		select {
		case <-a.done:
			return
		case req := <-a.inbox:
			value, err := req.fn(req.ctx)
			a.metrics.ObserveOperation(req.op, string(resultCode(err)))
			if err != nil && !IsValidation(err) {
				a.logger.Error("%s failed: %v", req.op, err)
			}
			a.lastUsed.Store(a.clock().UnixNano())
			a.inFlight.Add(-1)
			req.reply <- response{value: value, err: err}
		}
	}
}

func resultCode(err error) ErrorCode {
	if err == nil {
		return "ok"
	}
	return CodeOf(err)
}

// do queues fn on the actor and waits for its result. A caller that gives up
// waiting does not cancel the operation; it must re-fetch the state to learn
// whether it was applied.
func (a *Actor) do(ctx context.Context, op string, fn func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	reply := make(chan response, 1)
	req := request{
		// persistence must not be aborted halfway by a caller timing out
		ctx:   context.WithoutCancel(ctx),
		op:    op,
		fn:    fn,
		reply: reply,
	}

	a.inFlight.Add(1)
	a.lastUsed.Store(a.clock().UnixNano())
	select {
	case a.inbox <- req:
	case <-a.stopped:
		a.inFlight.Add(-1)
		return nil, ErrActorStopped
	case <-ctx.Done():
		a.inFlight.Add(-1)
		return nil, ctx.Err()
	}

	select {
	case res := <-reply:
		return res.value, res.err
	case <-a.stopped:
		select {
		case res := <-reply:
			return res.value, res.err
		default:
			return nil, ErrActorStopped
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Stop stops the actor after the operation in progress, if any, completes.
// Operations still queued fail with ErrActorStopped and were not applied.
func (a *Actor) Stop() {
	a.stopOnce.Do(func() {
		close(a.done)
	})
	<-a.stopped
}

// Idle reports whether the actor has no queued or running operation and has
// not been used for at least d.
func (a *Actor) Idle(d time.Duration) bool {
	if a.inFlight.Load() > 0 {
		return false
	}
	return a.clock().Sub(time.Unix(0, a.lastUsed.Load())) >= d
}

// load returns the resident state, reading it from the repository on first
// use. A game that was never saved is initialized and persisted.
func (a *Actor) load(ctx context.Context) (*types.GameState, error) {
	if a.state != nil {
		return a.state, nil
	}

	state, err := a.repository.LoadGameState(ctx, a.gameID)
	if err == nil {
		a.logger.Debug("Loaded game state (turn %d, phase %s)", state.CurrentTurn, state.CurrentPhase)
		a.state = state
		return a.state, nil
	}
	if !repositories.IsNotFound(err) {
		return nil, wrapError(CodeStorageFailure, "failed to load game state", err)
	}

	initial := types.NewGameState(a.clock().UnixMilli())
	if err := a.persist(ctx, initial); err != nil {
		return nil, err
	}
	a.logger.Info("Initialized new game")
	a.state = initial
	return a.state, nil
}

func (a *Actor) persist(ctx context.Context, state *types.GameState) error {
	ctx, cancel := context.WithTimeout(ctx, a.persistTimeout)
	defer cancel()

	start := time.Now()
	err := a.repository.SaveGameState(ctx, a.gameID, state)
	a.metrics.ObservePersist(time.Since(start))
	if err != nil {
		return wrapError(CodeStorageFailure, "failed to persist game state", err)
	}
	return nil
}

// mutation applies a change to next, a private copy of the resident state.
// It reports whether anything changed; unchanged states are not persisted.
type mutation func(next *types.GameState) (result interface{}, changed bool, err error)

func (a *Actor) mutate(ctx context.Context, fn mutation) (interface{}, error) {
	current, err := a.load(ctx)
	if err != nil {
		return nil, err
	}

	next := current.Copy()
	// pollers compare lastUpdated, so it must move on every write. It is
	// stamped before fn so that snapshots taken by fn match what is stored.
	next.LastUpdated = max(a.clock().UnixMilli(), current.LastUpdated+1)
	result, changed, err := fn(next)
	if err != nil {
		return nil, err
	}
	if !changed {
		return result, nil
	}

	if err := a.persist(ctx, next); err != nil {
		return nil, err
	}
	a.state = next
	a.publish(next)
	return result, nil
}

func (a *Actor) publish(state *types.GameState) {
	if a.events == nil {
		return
	}
	event := &types.StateChangedEvent{
		GameID: a.gameID,
		State:  state,
	}
	if err := a.events.Enqueue(event); err != nil {
		if errors.Is(err, queue.ErrQueueFull) {
			a.metrics.IncBroadcastDropped()
		}
		a.logger.Warn("Failed to publish state change: %v", err)
	}
}

// GetState returns the current state, initializing it on first access.
func (a *Actor) GetState(ctx context.Context) (*types.GameState, error) {
	v, err := a.do(ctx, "get-state", func(ctx context.Context) (interface{}, error) {
		state, err := a.load(ctx)
		if err != nil {
			return nil, err
		}
		return state.Copy(), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*types.GameState), nil
}

// AddPlayer adds a player, or reactivates one that joined before.
// Rejoining never changes the player's name or join time.
func (a *Actor) AddPlayer(ctx context.Context, userID string, name string) (*types.Player, error) {
	if userID == "" || name == "" {
		return nil, InvalidRequest("missing userId or name")
	}
	v, err := a.do(ctx, "join", func(ctx context.Context) (interface{}, error) {
		return a.mutate(ctx, func(next *types.GameState) (interface{}, bool, error) {
			if existing := next.FindPlayer(userID); existing != nil {
				changed := setActive(next, existing, true, a.completeRound)
				return existing.Copy(), changed, nil
			}

			if next.GameStarted && next.CurrentPhase != types.PhaseSetup {
				return nil, false, ErrGameInProgress
			}

			player := &types.Player{
				UserID:   userID,
				Name:     name,
				JoinedAt: a.clock().UnixMilli(),
				IsActive: true,
			}
			next.Players = append(next.Players, player)
			a.logger.Info("Player %s joined as %s", userID, name)
			return player.Copy(), true, nil
		})
	})
	if err != nil {
		return nil, err
	}
	return v.(*types.Player), nil
}

// RemovePlayer marks a player inactive. Unknown players are ignored.
func (a *Actor) RemovePlayer(ctx context.Context, userID string) error {
	_, err := a.do(ctx, "leave", func(ctx context.Context) (interface{}, error) {
		return a.mutate(ctx, func(next *types.GameState) (interface{}, bool, error) {
			player := next.FindPlayer(userID)
			if player == nil {
				return nil, false, nil
			}
			changed := setActive(next, player, false, a.completeRound)
			if changed {
				a.logger.Info("Player %s left", userID)
			}
			return nil, changed, nil
		})
	})
	return err
}

// StartGame starts the first turn with the first active player.
func (a *Actor) StartGame(ctx context.Context) (*types.GameState, error) {
	return a.mutateState(ctx, "start", func(next *types.GameState) error {
		if next.GameStarted {
			return newError(CodeGameInProgress, "game already started")
		}
		if len(next.ActivePlayers()) < constants.MinActivePlayers {
			return ErrNotEnoughPlayers
		}

		next.GameStarted = true
		next.CurrentTurn = 1
		next.CurrentPhase = types.FirstInGamePhase()
		next.CurrentPlayerIndex = 0
		next.GameOver = false
		next.Winner = nil
		a.logger.Info("Game started with %d players", len(next.ActivePlayers()))
		return nil
	})
}

// AdvancePhase moves to the next phase. Leaving the last phase passes the
// turn to the next active player.
func (a *Actor) AdvancePhase(ctx context.Context) (*types.GameState, error) {
	return a.mutateState(ctx, "next-phase", a.advancePhase)
}

// AdvancePhaseAs is AdvancePhase on behalf of userID, who must be the
// current player.
func (a *Actor) AdvancePhaseAs(ctx context.Context, userID string) (*types.GameState, error) {
	return a.mutateState(ctx, "next-phase", func(next *types.GameState) error {
		if !next.InProgress() {
			return ErrGameNotInProgress
		}
		if current := next.CurrentPlayer(); current == nil || current.UserID != userID {
			return ErrNotYourTurn
		}
		return a.advancePhase(next)
	})
}

func (a *Actor) advancePhase(next *types.GameState) error {
	if !next.InProgress() {
		return ErrGameNotInProgress
	}
	phase, wrapped, err := next.CurrentPhase.Next()
	if err != nil {
		return fmt.Errorf("unexpected game phase: %v", err)
	}
	next.CurrentPhase = phase
	if wrapped {
		a.advanceToNextPlayer(next)
	}
	return nil
}

// ProcessGameAction applies an in-turn action for playerID.
func (a *Actor) ProcessGameAction(ctx context.Context, action types.ActionType, playerID string, data json.RawMessage) (*types.GameState, error) {
	return a.mutateState(ctx, "perform-action", func(next *types.GameState) error {
		if current := next.CurrentPlayer(); current == nil || current.UserID != playerID {
			return ErrNotYourTurn
		}
		phase, ok := action.Phase()
		if !ok {
			return newError(CodeUnknownAction, "unknown action: %s", action)
		}
		if next.CurrentPhase != phase {
			return newError(CodeWrongPhase, "can only %s in %s", action, phase)
		}

		err := a.ruleset.ApplyAction(next, rules.Action{
			Type:     action,
			PlayerID: playerID,
			Data:     data,
			At:       a.clock().UnixMilli(),
		})
		if err != nil {
			return wrapError(CodeInvalidRequest, "action rejected", err)
		}
		return nil
	})
}

func (a *Actor) mutateState(ctx context.Context, op string, fn func(next *types.GameState) error) (*types.GameState, error) {
	v, err := a.do(ctx, op, func(ctx context.Context) (interface{}, error) {
		return a.mutate(ctx, func(next *types.GameState) (interface{}, bool, error) {
			if err := fn(next); err != nil {
				return nil, false, err
			}
			return next.Copy(), true, nil
		})
	})
	if err != nil {
		return nil, err
	}
	return v.(*types.GameState), nil
}

// advanceToNextPlayer passes the turn to the next active player in join
// order. Without active players the game pauses at index 0.
func (a *Actor) advanceToNextPlayer(state *types.GameState) {
	active := state.ActivePlayers()
	if len(active) == 0 {
		state.CurrentPlayerIndex = 0
		return
	}
	state.CurrentPlayerIndex = (state.CurrentPlayerIndex + 1) % len(active)
	if state.CurrentPlayerIndex == 0 {
		a.completeRound(state)
	}
}

// completeRound starts the next round and asks the ruleset whether the game is over.
func (a *Actor) completeRound(state *types.GameState) {
	state.CurrentTurn++
	winner, over := a.ruleset.Winner(state)
	if !over {
		return
	}
	state.GameOver = true
	state.Winner = &winner
	state.CurrentPhase = types.PhaseGameOver
	a.logger.Info("Game over after %d turns, winner %s", state.CurrentTurn, winner)
}

// setActive flips player.IsActive while keeping CurrentPlayerIndex on the same
// logical player. When the current player leaves a running game the turn
// passes to the next active player, which may complete the round.
func setActive(state *types.GameState, player *types.Player, active bool, completeRound func(*types.GameState)) bool {
	if player.IsActive == active {
		return false
	}

	current := state.CurrentPlayer()
	player.IsActive = active

	remaining := state.ActivePlayers()
	if len(remaining) == 0 {
		state.CurrentPlayerIndex = 0
		return true
	}
	if current != nil && current != player {
		state.CurrentPlayerIndex = state.ActiveIndexOf(current.UserID)
		return true
	}
	if current == nil {
		state.CurrentPlayerIndex = 0
		return true
	}

	// the current player left: whoever follows now sits at the same index
	if state.CurrentPlayerIndex >= len(remaining) {
		state.CurrentPlayerIndex = 0
		if state.InProgress() {
			completeRound(state)
		}
	}
	if state.InProgress() {
		state.CurrentPhase = types.FirstInGamePhase()
	}
	return true
}
