package connectfour

import (
	"encoding/json"
	"fmt"

	"github.com/playgrid/gamehub-backend/internal/apperror"
	"github.com/playgrid/gamehub-backend/internal/entity"
	"github.com/playgrid/gamehub-backend/internal/game"
)

const ID = "connect-four"

const (
	Rows = 6
	Cols = 7

	winLength = 4
)

func init() {
	game.Register(ID, game.Factory{
		New: func() game.State { return NewState() },
		Decode: func(data json.RawMessage) (game.State, error) {
			state := &State{}
			if err := json.Unmarshal(data, state); err != nil {
				return nil, fmt.Errorf("failed to unmarshal board: %w", err)
			}
			return state, nil
		},
	})
}

// State keeps the board as a flat row-major sequence, row 0 on top.
// A move is a column index; the piece settles on the lowest empty row.
type State struct {
	Board      [Rows * Cols]string `json:"board"`
	PlayerTurn string              `json:"player_turn"`
	Result     string              `json:"winner"`
}

func NewState() *State {
	return &State{
		PlayerTurn: entity.PlayerX,
	}
}

func (that *State) GameID() string {
	return ID
}

func (that *State) Turn() string {
	return that.PlayerTurn
}

func (that *State) Winner() string {
	return that.Result
}

func (that *State) Finished() bool {
	return that.Result != ""
}

func (that *State) Clone() game.State {
	clone := *that
	return &clone
}

func (that *State) cell(row, col int) string {
	return that.Board[row*Cols+col]
}

// Apply - drops mark into the given column.
func (that *State) Apply(mark string, move int) error {
	if that.Finished() {
		return apperror.ErrGameFinished
	}

	if move < 0 || move >= Cols {
		return fmt.Errorf("%w: column %d", apperror.ErrInvalidCell, move)
	}

	if that.PlayerTurn != mark {
		return apperror.ErrNotYourTurn
	}

	row := Rows - 1
	for row >= 0 && that.cell(row, move) != entity.EmptyCell {
		row--
	}

	if row < 0 {
		return fmt.Errorf("%w: column %d", apperror.ErrColumnFull, move)
	}

	that.Board[row*Cols+move] = mark

	switch {
	case that.hasConnect(row, move, mark):
		that.Result = mark
		that.PlayerTurn = ""
	case that.topRowFull():
		// pieces settle downward, so a full top row means a full board
		that.Result = entity.PlayerTie
		that.PlayerTurn = ""
	default:
		that.PlayerTurn = toggleMark(mark)
	}

	return nil
}

func toggleMark(currentMark string) string {
	if currentMark == entity.PlayerX {
		return entity.PlayerO
	}
	return entity.PlayerX
}

func (that *State) topRowFull() bool {
	for col := 0; col < Cols; col++ {
		if that.cell(0, col) == entity.EmptyCell {
			return false
		}
	}
	return true
}

// hasConnect - checks every line of four through the last move in all
// four directions.
func (that *State) hasConnect(row, col int, mark string) bool {
	directions := [4][2]int{
		{0, 1},  // horizontal
		{1, 0},  // vertical
		{1, 1},  // diagonal, negative slope
		{1, -1}, // diagonal, positive slope
	}

	for _, dir := range directions {
		count := 1
		count += that.countRun(row, col, dir[0], dir[1], mark)
		count += that.countRun(row, col, -dir[0], -dir[1], mark)

		if count >= winLength {
			return true
		}
	}

	return false
}

func (that *State) countRun(row, col, dRow, dCol int, mark string) int {
	count := 0

	for {
		row += dRow
		col += dCol

		if row < 0 || row >= Rows || col < 0 || col >= Cols {
			return count
		}

		if that.cell(row, col) != mark {
			return count
		}

		count++
	}
}
