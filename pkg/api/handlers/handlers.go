package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/cbodonnell/tabletop/pkg/api/middleware"
	"github.com/cbodonnell/tabletop/pkg/game"
	"github.com/cbodonnell/tabletop/pkg/game/types"
	"github.com/cbodonnell/tabletop/pkg/log"
	"github.com/cbodonnell/tabletop/pkg/messages"
	"github.com/cbodonnell/tabletop/pkg/network"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const maxBodyBytes = 1 << 20

// HandleGetState returns the full state of a game
func HandleGetState(router *game.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dispatch(w, r, router, game.GetStateCommand{})
	}
}

// HandleAction executes the action named in the path, e.g. POST /api/board-game/g1/join
func HandleAction(router *game.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := readBody(w, r)
		if !ok {
			return
		}
		cmd, err := game.ParseCommand(mux.Vars(r)["action"], body)
		if err != nil {
			writeError(w, err, true)
			return
		}
		dispatch(w, r, router, cmd)
	}
}

// HandleActionRequest executes an action sent as {"action": ..., "data": ...}
func HandleActionRequest(router *game.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := readBody(w, r)
		if !ok {
			return
		}
		cmd, err := game.ParseActionRequest(body)
		if err != nil {
			writeError(w, err, false)
			return
		}
		dispatch(w, r, router, cmd)
	}
}

// HandleCreateGame issues a new game ID. The game itself is created by its
// first request.
func HandleCreateGame() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, messages.CreateGameResponse{GameID: uuid.NewString()})
	}
}

// HandleSubscribe streams the state of a game over a websocket
func HandleSubscribe(router *game.Router, hub *network.Hub, opts network.WSOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := mux.Vars(r)["gameId"]
		// subscribe before reading the state so no change falls in between
		subscriber := hub.Subscribe(gameID)
		v, err := router.Dispatch(r.Context(), gameID, game.GetStateCommand{})
		if err != nil {
			hub.Unsubscribe(subscriber.ID)
			writeError(w, err, false)
			return
		}
		initial, err := messages.NewGameStateMessage(gameID, v.(*types.GameState))
		if err != nil {
			hub.Unsubscribe(subscriber.ID)
			log.Error("failed to build state message: %v", err)
			writeError(w, err, false)
			return
		}
		hub.ServeSubscription(w, r, subscriber, initial, opts)
	}
}

// HandleHealthz reports that the server is up
func HandleHealthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, messages.AckResponse{OK: true})
	}
}

func dispatch(w http.ResponseWriter, r *http.Request, router *game.Router, cmd game.Command) {
	if err := authorize(r, cmd); err != nil {
		writeJSON(w, http.StatusForbidden, messages.ErrorResponse{Error: err.Error(), Code: "Forbidden"})
		return
	}

	v, err := router.Dispatch(r.Context(), mux.Vars(r)["gameId"], cmd)
	if err != nil {
		writeError(w, err, false)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// authorize checks that an authenticated caller only acts as themselves.
// Requests without claims are not checked.
func authorize(r *http.Request, cmd game.Command) error {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		return nil
	}

	var userID string
	switch c := cmd.(type) {
	case game.JoinCommand:
		userID = c.UserID
	case game.NextPhaseCommand:
		userID = c.UserID
	case game.PerformActionCommand:
		userID = c.PlayerID
	case game.LeaveCommand:
		userID = c.UserID
	default:
		return nil
	}
	if userID != claims.UID {
		return errors.New("user does not match token")
	}
	return nil
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, game.InvalidRequest("failed to read request body: %v", err), false)
		return nil, false
	}
	return body, true
}

// StatusCode maps an error onto an HTTP status. An unknown action named in
// the path is a missing resource rather than a bad request.
func StatusCode(err error, pathAction bool) int {
	switch code := game.CodeOf(err); {
	case code == game.CodeUnknownAction && pathAction:
		return http.StatusNotFound
	case game.IsValidation(err):
		return http.StatusBadRequest
	case code == game.CodeActorStopped:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error, pathAction bool) {
	status := StatusCode(err, pathAction)
	resp := messages.ErrorResponse{
		Error: err.Error(),
		Code:  string(game.CodeOf(err)),
	}
	if status == http.StatusInternalServerError {
		// storage details stay in the logs
		var gameErr *game.Error
		if errors.As(err, &gameErr) {
			resp.Error = gameErr.Message
		} else {
			resp.Error = "internal error"
		}
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response: %v", err)
	}
}
