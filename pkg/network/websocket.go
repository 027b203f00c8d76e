package network

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cbodonnell/tabletop/pkg/log"
	"github.com/cbodonnell/tabletop/pkg/messages"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const wsWriteTimeout = 5 * time.Second

// WSOptions configures the websocket handshake
type WSOptions struct {
	// OriginPatterns lists the hosts allowed to open a subscription from a
	// browser. "*" disables the origin check.
	OriginPatterns []string
}

func (o WSOptions) acceptOptions() *websocket.AcceptOptions {
	for _, p := range o.OriginPatterns {
		if p == "*" {
			return &websocket.AcceptOptions{InsecureSkipVerify: true}
		}
	}
	return &websocket.AcceptOptions{OriginPatterns: o.OriginPatterns}
}

// ServeSubscription upgrades the request to a websocket and streams the
// snapshots delivered to subscriber until either side goes away. initial is
// written first so the subscriber never waits for a change to see the game.
// The subscriber is removed from the hub on return.
func (h *Hub) ServeSubscription(w http.ResponseWriter, r *http.Request, subscriber *Subscriber, initial *messages.Message, opts WSOptions) {
	defer h.Unsubscribe(subscriber.ID)

	conn, err := websocket.Accept(w, r, opts.acceptOptions())
	if err != nil {
		log.Error("Failed to upgrade to WebSocket: %v", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "")

	// subscribers only listen; reading is left to the library so pings and
	// close frames are handled
	ctx := conn.CloseRead(r.Context())

	if initial != nil {
		if err := WriteMessageToWS(ctx, conn, initial); err != nil {
			log.Debug("Subscriber %d: %v", subscriber.ID, err)
			return
		}
	}

	for {
		select {
		case <-ctx.Done():
			log.Trace("Subscriber %d disconnected", subscriber.ID)
			return
		case msg, ok := <-subscriber.Messages():
			if !ok {
				conn.Close(websocket.StatusGoingAway, "server shutting down")
				return
			}
			if err := WriteMessageToWS(ctx, conn, msg); err != nil {
				log.Debug("Subscriber %d: %v", subscriber.ID, err)
				return
			}
		}
	}
}

// WriteMessageToWS writes a Message to a WebSocket connection
func WriteMessageToWS(ctx context.Context, conn *websocket.Conn, msg *messages.Message) error {
	ctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()

	if err := wsjson.Write(ctx, conn, msg); err != nil {
		return fmt.Errorf("failed to write message to WebSocket connection: %v", err)
	}
	return nil
}

// ReadMessageFromWS reads a Message from a WebSocket connection
func ReadMessageFromWS(ctx context.Context, conn *websocket.Conn) (*messages.Message, error) {
	msg := &messages.Message{}
	if err := wsjson.Read(ctx, conn, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
