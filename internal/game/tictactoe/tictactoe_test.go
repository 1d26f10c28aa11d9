package tictactoe

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

	// Then: the board is empty, X moves first and nobody has won
	require.Equal(t, entity.PlayerX, state.Turn())
	require.Empty(t, state.Winner())
	require.False(t, state.Finished())
}

func TestState_Apply(t *testing.T) {
	t.Run("Places mark and passes the turn", func(t *testing.T) {
		// Given: a new game
		state := NewState()

		// When: X takes the center
		err := state.Apply(entity.PlayerX, 4)
		require.NoError(t, err)

		// Then: the cell is marked and O is to move
		assert.Equal(t, entity.PlayerX, state.Board[4])
		assert.Equal(t, entity.PlayerO, state.Turn())
	})

	t.Run("Error on cell already occupied", func(t *testing.T) {
		state := NewState()

		require.NoError(t, state.Apply(entity.PlayerX, 0))

		// When: O tries the same cell
		err := state.Apply(entity.PlayerO, 0)

		// Then: the move is rejected and the state is unchanged
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		assert.Equal(t, entity.PlayerX, state.Board[0])
		assert.Equal(t, entity.PlayerO, state.Turn())
	})

	t.Run("Error on playing out of turn", func(t *testing.T) {
		state := NewState()

		// When: O moves before X
		err := state.Apply(entity.PlayerO, 1)

		// Then: the move is rejected
		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		assert.Equal(t, entity.EmptyCell, state.Board[1])
	})

	t.Run("Error on invalid cell", func(t *testing.T) {
		state := NewState()

		err := state.Apply(entity.PlayerX, 20)

		require.ErrorIs(t, err, apperror.ErrInvalidCell)
	})

	t.Run("Detects a winning line", func(t *testing.T) {
		// Given: X builds the top row while O plays elsewhere
		state := NewState()

		moves := []struct {
			mark string
			cell int
		}{
			{entity.PlayerX, 0},
			{entity.PlayerO, 3},
			{entity.PlayerX, 1},
			{entity.PlayerO, 4},
			{entity.PlayerX, 2},
		}

		for _, move := range moves {
			require.NoError(t, state.Apply(move.mark, move.cell))
		}

		// Then: X wins and the game is terminal
		require.True(t, state.Finished())
		assert.Equal(t, entity.PlayerX, state.Winner())
		assert.Empty(t, state.Turn())
	})

	t.Run("Draw game", func(t *testing.T) {
		// Given: the full sequence X/O alternating over cells
		// 0,4,8,1,3,5,7,6,2 fills the board without a winning line
		state := NewState()

		cells := []int{0, 4, 8, 1, 3, 5, 7, 6, 2}
		marks := []string{entity.PlayerX, entity.PlayerO}

		for i, cell := range cells {
			require.NoError(t, state.Apply(marks[i%2], cell))
		}

		// Then: the outcome is a draw
		require.True(t, state.Finished())
		assert.Equal(t, entity.PlayerTie, state.Winner())
	})

	t.Run("Terminal state absorbs further moves", func(t *testing.T) {
		// Given: a finished game
		state := NewState()

		cells := []int{0, 4, 8, 1, 3, 5, 7, 6, 2}
		marks := []string{entity.PlayerX, entity.PlayerO}
		for i, cell := range cells {
			require.NoError(t, state.Apply(marks[i%2], cell))
		}

		before := *state

		// When: anyone tries to move again
		err := state.Apply(entity.PlayerX, 0)

		// Then: the move is rejected and nothing changed
		require.ErrorIs(t, err, apperror.ErrGameFinished)
		assert.Equal(t, before, *state)
	})

	t.Run("Identical inputs produce identical results", func(t *testing.T) {
		// Given: two copies of the same mid-game state
		base := NewState()
		require.NoError(t, base.Apply(entity.PlayerX, 0))

		first := base.Clone()
		second := base.Clone()

		// When: the same legal move is applied to each
		require.NoError(t, first.Apply(entity.PlayerO, 4))
		require.NoError(t, second.Apply(entity.PlayerO, 4))

		// Then: the results are structurally equal
		assert.Equal(t, first, second)
	})
}
