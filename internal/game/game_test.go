package game_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playgrid/gamehub-backend/internal/apperror"
	"github.com/playgrid/gamehub-backend/internal/entity"
	"github.com/playgrid/gamehub-backend/internal/game"
	"github.com/playgrid/gamehub-backend/internal/game/connectfour"
	"github.com/playgrid/gamehub-backend/internal/game/tictactoe"
)

func TestNew(t *testing.T) {
	t.Run("Creates registered game families", func(t *testing.T) {
		for _, id := range []string{tictactoe.ID, connectfour.ID} {
			state, err := game.New(id)

			require.NoError(t, err)
			assert.Equal(t, id, state.GameID())
			assert.Equal(t, entity.PlayerX, state.Turn())
		}
	})

	t.Run("Rejects unknown game", func(t *testing.T) {
		_, err := game.New("checkers")

		require.ErrorIs(t, err, apperror.ErrUnknownGame)
	})
}

func TestEncodeDecode(t *testing.T) {
	t.Run("State survives the envelope round-trip", func(t *testing.T) {
		// Given: a mid-game state
		state, err := game.New(tictactoe.ID)
		require.NoError(t, err)
		require.NoError(t, state.Apply(entity.PlayerX, 4))

		// When: it is encoded and decoded again
		envelope, err := game.Encode(state)
		require.NoError(t, err)

		decoded, err := game.Decode(envelope)
		require.NoError(t, err)

		// Then: the decoded state is structurally equal to the original
		require.Equal(t, state, decoded)
	})

	t.Run("Rejects unknown payload tag", func(t *testing.T) {
		envelope := &entity.GameState{
			Game: "checkers",
			Data: json.RawMessage(`{}`),
		}

		_, err := game.Decode(envelope)

		require.ErrorIs(t, err, apperror.ErrUnknownGame)
	})

	t.Run("Rejects malformed payload", func(t *testing.T) {
		envelope := &entity.GameState{
			Game: tictactoe.ID,
			Data: json.RawMessage(`{"board": 7}`),
		}

		_, err := game.Decode(envelope)

		require.Error(t, err)
	})
}
