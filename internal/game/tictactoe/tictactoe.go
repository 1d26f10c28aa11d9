package tictactoe

import (
	"encoding/json"
	"fmt"

	"github.com/playgrid/gamehub-backend/internal/apperror"
	"github.com/playgrid/gamehub-backend/internal/entity"
	"github.com/playgrid/gamehub-backend/internal/game"
)

const ID = "tictactoe"

const boardSize = 9

var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

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

type State struct {
	Board      [boardSize]string `json:"board"`
	PlayerTurn string            `json:"player_turn"`
	Result     string            `json:"winner"`
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

// Apply - places mark on the given cell.
func (that *State) Apply(mark string, move int) error {
	if that.Finished() {
		return apperror.ErrGameFinished
	}

	if move < 0 || move >= boardSize {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, move)
	}

	if that.PlayerTurn != mark {
		return apperror.ErrNotYourTurn
	}

	if that.Board[move] != entity.EmptyCell {
		return apperror.ErrCellOccupied
	}

	that.Board[move] = mark

	switch winner := checkGameResult(that.Board); winner {
	case entity.PlayerX, entity.PlayerO, entity.PlayerTie:
		that.Result = winner
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

func checkGameResult(board [boardSize]string) string {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != entity.EmptyCell && a == b && b == c {
			return a
		}
	}

	// the game continues until all the cells are full
	for _, cell := range board {
		if cell == entity.EmptyCell {
			return ""
		}
	}

	return entity.PlayerTie
}
