package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cbodonnell/tabletop/pkg/game"
	"github.com/cbodonnell/tabletop/pkg/game/types"
	"github.com/cbodonnell/tabletop/pkg/log"
	"github.com/cbodonnell/tabletop/pkg/messages"
	"github.com/cbodonnell/tabletop/pkg/network"
	"nhooyr.io/websocket"
)

const DefaultServerURL = "http://localhost:8080"

// Client calls the board game API. Failed calls return a *game.Error carrying
// the code sent by the server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

type NewClientOptions struct {
	BaseURL string
	// Token is sent as a bearer token when set
	Token      string
	HTTPClient *http.Client
}

func NewClient(opts NewClientOptions) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: opts.HTTPClient,
		token:      opts.Token,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultServerURL
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return c
}

// CreateGame asks the server for a fresh game ID
func (c *Client) CreateGame(ctx context.Context) (string, error) {
	resp := messages.CreateGameResponse{}
	if err := c.do(ctx, http.MethodPost, "/api/board-game", nil, &resp); err != nil {
		return "", err
	}
	return resp.GameID, nil
}

func (c *Client) GetState(ctx context.Context, gameID string) (*types.GameState, error) {
	state := &types.GameState{}
	if err := c.do(ctx, http.MethodGet, gamePath(gameID, "state"), nil, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (c *Client) Join(ctx context.Context, gameID string, userID string, name string) (*types.Player, error) {
	player := &types.Player{}
	req := messages.JoinRequest{UserID: userID, Name: name}
	if err := c.do(ctx, http.MethodPost, gamePath(gameID, game.ActionJoin), req, player); err != nil {
		return nil, err
	}
	return player, nil
}

func (c *Client) Start(ctx context.Context, gameID string) (*types.GameState, error) {
	return c.mutate(ctx, gameID, game.ActionStart, nil)
}

func (c *Client) NextPhase(ctx context.Context, gameID string, userID string) (*types.GameState, error) {
	return c.mutate(ctx, gameID, game.ActionNextPhase, messages.PlayerRequest{UserID: userID})
}

func (c *Client) PerformAction(ctx context.Context, gameID string, playerID string, action string, data json.RawMessage) (*types.GameState, error) {
	req := messages.PerformActionRequest{PlayerID: playerID, Action: action, ActionData: data}
	return c.mutate(ctx, gameID, game.ActionPerformAction, req)
}

func (c *Client) Leave(ctx context.Context, gameID string, userID string) error {
	return c.do(ctx, http.MethodPost, gamePath(gameID, game.ActionLeave), messages.PlayerRequest{UserID: userID}, &messages.AckResponse{})
}

func (c *Client) mutate(ctx context.Context, gameID string, action string, body interface{}) (*types.GameState, error) {
	state := &types.GameState{}
	if err := c.do(ctx, http.MethodPost, gamePath(gameID, action), body, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Watch polls the state of a game every interval and calls fn each time
// lastUpdated changes, until ctx is done or fn returns an error. Failed polls
// are logged and retried on the next tick.
func (c *Client) Watch(ctx context.Context, gameID string, interval time.Duration, fn func(*types.GameState) error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastUpdated int64 = -1
	for {
		state, err := c.GetState(ctx, gameID)
		switch {
		case err != nil && ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			log.Warn("Failed to fetch state of game %s: %v", gameID, err)
		case state.LastUpdated != lastUpdated:
			lastUpdated = state.LastUpdated
			if err := fn(state); err != nil {
				return err
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Subscribe streams state snapshots pushed by the server until ctx is done,
// the connection closes, or fn returns an error.
func (c *Client) Subscribe(ctx context.Context, gameID string, fn func(*types.GameState) error) error {
	u, err := url.Parse(c.baseURL + gamePath(gameID, "ws"))
	if err != nil {
		return fmt.Errorf("invalid server URL: %v", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}

	conn, _, err := websocket.Dial(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to open subscription: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	for {
		msg, err := network.ReadMessageFromWS(ctx, conn)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure || ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("failed to read from subscription: %v", err)
		}
		state, err := msg.GameState()
		if err != nil {
			return err
		}
		if err := fn(state); err != nil {
			return err
		}
	}
}

func gamePath(gameID string, action string) string {
	return fmt.Sprintf("/api/board-game/%s/%s", url.PathEscape(gameID), action)
}

func (c *Client) do(ctx context.Context, method string, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %v", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	errResp := messages.ErrorResponse{}
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil || errResp.Code == "" {
		return &game.Error{
			Code:    game.CodeInternal,
			Message: fmt.Sprintf("unexpected status %d", resp.StatusCode),
		}
	}
	return &game.Error{
		Code:    game.ErrorCode(errResp.Code),
		Message: errResp.Error,
	}
}
