package messages

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/cbodonnell/tabletop/pkg/game/types"
	"github.com/klauspost/compress/zstd"
)

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

var (
	codecOnce sync.Once
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
	codecErr  error
)

// EncodeAll and DecodeAll are safe for concurrent use, so a single
// encoder/decoder pair is shared by all repositories.
func initCodec() error {
	codecOnce.Do(func() {
		encoder, codecErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
		if codecErr != nil {
			codecErr = fmt.Errorf("failed to create zstd writer: %v", codecErr)
			return
		}
		decoder, codecErr = zstd.NewReader(nil)
		if codecErr != nil {
			codecErr = fmt.Errorf("failed to create zstd reader: %v", codecErr)
		}
	})
	return codecErr
}

// SerializeGameState encodes a game state record as zstd compressed JSON.
func SerializeGameState(state *types.GameState) ([]byte, error) {
	if state == nil {
		return nil, fmt.Errorf("game state is nil")
	}
	if err := initCodec(); err != nil {
		return nil, err
	}
	b, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize game state: %v", err)
	}
	return encoder.EncodeAll(b, make([]byte, 0, len(b))), nil
}

// DeserializeGameState decodes a record written by SerializeGameState.
// Plain JSON records are accepted as well.
func DeserializeGameState(data []byte) (*types.GameState, error) {
	if bytes.HasPrefix(data, zstdMagic) {
		if err := initCodec(); err != nil {
			return nil, err
		}
		b, err := decoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress game state: %v", err)
		}
		data = b
	}

	state := &types.GameState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("failed to deserialize game state: %v", err)
	}
	if state.Players == nil {
		state.Players = make([]*types.Player, 0)
	}
	return state, nil
}
