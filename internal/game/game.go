package game

import (
	"encoding/json"
	"fmt"

	"github.com/playgrid/gamehub-backend/internal/apperror"
	"github.com/playgrid/gamehub-backend/internal/entity"
)

// State is the per-family turn machine. Implementations are pure and
// deterministic: identical (state, mark, move) inputs always produce
// identical results, so two clients replaying the same move converge
// without exchanging board diffs.
type State interface {
	GameID() string

	// Turn returns the mark that moves next, or "" once the game is over.
	Turn() string
	// Winner returns PlayerX, PlayerO, PlayerTie, or "" while in progress.
	Winner() string
	Finished() bool

	// Apply makes a single move for mark. A move transitions exactly one
	// cell from empty to mark; illegal moves leave the state unchanged.
	Apply(mark string, move int) error

	Clone() State
}

type Factory struct {
	New    func() State
	Decode func(data json.RawMessage) (State, error)
}

var registry = map[string]Factory{}

// Register - makes a game family available by its identifier.
// Game packages register themselves from init.
func Register(id string, factory Factory) {
	registry[id] = factory
}

// New - creates the initial state for the given game family.
func New(id string) (State, error) {
	factory, ok := registry[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperror.ErrUnknownGame, id)
	}

	return factory.New(), nil
}

// Encode - wraps a state into the tagged envelope stored in the room record.
func Encode(state State) (*entity.GameState, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s state: %w", state.GameID(), err)
	}

	return &entity.GameState{
		Game: state.GameID(),
		Data: data,
	}, nil
}

// Decode - unwraps a stored envelope. Unknown game identifiers and malformed
// payloads are rejected on read, never adopted.
func Decode(envelope *entity.GameState) (State, error) {
	factory, ok := registry[envelope.Game]
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperror.ErrUnknownGame, envelope.Game)
	}

	state, err := factory.Decode(envelope.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s state: %w", envelope.Game, err)
	}

	return state, nil
}
