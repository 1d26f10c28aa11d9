package connectfour

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playgrid/gamehub-backend/internal/apperror"
	"github.com/playgrid/gamehub-backend/internal/entity"
)

func TestNewState(t *testing.T) {
	// When: a new game starts
	state := NewState()

	// Then: the board is empty and X moves first
	require.Equal(t, entity.PlayerX, state.Turn())
	require.False(t, state.Finished())
}

func TestState_Apply(t *testing.T) {
	t.Run("Pieces settle on the lowest empty row", func(t *testing.T) {
		// Given: a new game
		state := NewState()

		// When: X drops into column 3
		require.NoError(t, state.Apply(entity.PlayerX, 3))

		// Then: the piece lands on the bottom row
		assert.Equal(t, entity.PlayerX, state.cell(Rows-1, 3))
		assert.Equal(t, entity.PlayerO, state.Turn())
	})

	t.Run("Vertical win", func(t *testing.T) {
		// Given: X drops into column 0 four times while O fills column 1
		state := NewState()

		for i := 0; i < 3; i++ {
			require.NoError(t, state.Apply(entity.PlayerX, 0))
			require.NoError(t, state.Apply(entity.PlayerO, 1))
		}

		// When: X completes the vertical line
		require.NoError(t, state.Apply(entity.PlayerX, 0))

		// Then: X wins and the game is terminal
		require.True(t, state.Finished())
		assert.Equal(t, entity.PlayerX, state.Winner())
		assert.Empty(t, state.Turn())
	})

	t.Run("Horizontal win", func(t *testing.T) {
		// Given: X claims the bottom row of columns 0..2, O stacks above
		state := NewState()

		for col := 0; col < 3; col++ {
			require.NoError(t, state.Apply(entity.PlayerX, col))
			require.NoError(t, state.Apply(entity.PlayerO, col))
		}

		// When: X drops into column 3
		require.NoError(t, state.Apply(entity.PlayerX, 3))

		// Then: X wins horizontally
		require.True(t, state.Finished())
		assert.Equal(t, entity.PlayerX, state.Winner())
	})

	t.Run("Error on full column", func(t *testing.T) {
		// Given: column 0 filled to the top
		state := NewState()

		marks := []string{entity.PlayerX, entity.PlayerO}
		for i := 0; i < Rows; i++ {
			require.NoError(t, state.Apply(marks[i%2], 0))
		}

		// When: the next player drops into the same column
		err := state.Apply(entity.PlayerX, 0)

		// Then: the move is rejected
		require.ErrorIs(t, err, apperror.ErrColumnFull)
	})

	t.Run("Error on invalid column", func(t *testing.T) {
		state := NewState()

		err := state.Apply(entity.PlayerX, Cols)

		require.ErrorIs(t, err, apperror.ErrInvalidCell)
	})

	t.Run("Error on playing out of turn", func(t *testing.T) {
		state := NewState()

		err := state.Apply(entity.PlayerO, 0)

		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
	})

	t.Run("Draw when the top row fills with no winner", func(t *testing.T) {
		// Given: a full board with no four in a row, except one top cell.
		// The pattern alternates marks in pairs of columns per row, which
		// caps every run at two.
		state := NewState()

		for row := 0; row < Rows; row++ {
			for col := 0; col < Cols; col++ {
				if row == 0 && col == 0 {
					continue
				}

				if (row+col/2)%2 == 0 {
					state.Board[row*Cols+col] = entity.PlayerX
				} else {
					state.Board[row*Cols+col] = entity.PlayerO
				}
			}
		}

		state.PlayerTurn = entity.PlayerX

		// When: X fills the last empty cell
		require.NoError(t, state.Apply(entity.PlayerX, 0))

		// Then: the outcome is a draw
		require.True(t, state.Finished())
		assert.Equal(t, entity.PlayerTie, state.Winner())
	})

	t.Run("Terminal state absorbs further moves", func(t *testing.T) {
		// Given: a finished game
		state := NewState()

		for i := 0; i < 3; i++ {
			require.NoError(t, state.Apply(entity.PlayerX, 0))
			require.NoError(t, state.Apply(entity.PlayerO, 1))
		}
		require.NoError(t, state.Apply(entity.PlayerX, 0))

		before := *state

		// When: O tries to reply
		err := state.Apply(entity.PlayerO, 1)

		// Then: the move is rejected and nothing changed
		require.ErrorIs(t, err, apperror.ErrGameFinished)
		assert.Equal(t, before, *state)
	})
}
