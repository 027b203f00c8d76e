package workers

import (
	"context"
	"time"

	"github.com/cbodonnell/tabletop/pkg/game/types"
	"github.com/cbodonnell/tabletop/pkg/log"
	"github.com/cbodonnell/tabletop/pkg/messages"
	"github.com/cbodonnell/tabletop/pkg/network"
	"github.com/cbodonnell/tabletop/pkg/queue"
)

// BroadcastWorker drains state changes from the event queue and pushes them
// to realtime subscribers.
type BroadcastWorker struct {
	hub      *network.Hub
	events   queue.Queue
	interval time.Duration
}

type NewBroadcastWorkerOptions struct {
	Hub      *network.Hub
	Events   queue.Queue
	Interval time.Duration
}

// NewBroadcastWorker creates a new BroadcastWorker.
// Each tick only the newest snapshot of every changed game is sent.
func NewBroadcastWorker(opts NewBroadcastWorkerOptions) *BroadcastWorker {
	return &BroadcastWorker{
		hub:      opts.Hub,
		events:   opts.Events,
		interval: opts.Interval,
	}
}

func (w *BroadcastWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Flush()
		}
	}
}

// Flush sends whatever is queued right now and returns the number of games
// that were broadcast.
func (w *BroadcastWorker) Flush() int {
	items, err := w.events.ReadAllMessages()
	if err != nil {
		log.Error("Failed to read state changes: %v", err)
		return 0
	}
	if len(items) == 0 {
		return 0
	}

	latest := make(map[string]*types.GameState)
	order := make([]string, 0)
	for _, item := range items {
		event, ok := item.(*types.StateChangedEvent)
		if !ok {
			log.Error("Unexpected item on event queue: %T", item)
			continue
		}
		if _, seen := latest[event.GameID]; !seen {
			order = append(order, event.GameID)
		}
		latest[event.GameID] = event.State
	}

	for _, gameID := range order {
		msg, err := messages.NewGameStateMessage(gameID, latest[gameID])
		if err != nil {
			log.Error("Failed to build state message for game %s: %v", gameID, err)
			continue
		}
		n := w.hub.Publish(gameID, msg)
		log.Trace("Broadcast game %s to %d subscribers", gameID, n)
	}
	return len(order)
}
