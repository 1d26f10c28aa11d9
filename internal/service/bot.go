package service

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/playgrid/gamehub-backend/internal/entity"
	"github.com/playgrid/gamehub-backend/internal/game"
	"github.com/playgrid/gamehub-backend/internal/game/connectfour"
	"github.com/playgrid/gamehub-backend/internal/game/tictactoe"
)

var (
	ErrNoAvailableMoves = errors.New("no available moves")
	ErrGameOver         = errors.New("game is over")
)

// BotService substitutes for a remote opponent. Policies are intentionally
// minimal and mirror each game family's reference behavior.
type BotService interface {
	ChooseMove(state game.State) (int, error)
	MakeTurn(state game.State, mark string) error
}

type botService struct{}

func NewBotService() BotService {
	return &botService{}
}

// ChooseMove - picks the bot's next move for the current state. The caller
// is responsible for only invoking it on the bot's turn.
func (that *botService) ChooseMove(state game.State) (int, error) {
	if state.Finished() {
		return 0, ErrGameOver
	}

	switch board := state.(type) {
	case *tictactoe.State:
		return chooseTicTacToeMove(board)
	case *connectfour.State:
		return chooseConnectFourMove(board)
	default:
		return 0, fmt.Errorf("no bot policy for game %q", state.GameID())
	}
}

func (that *botService) MakeTurn(state game.State, mark string) error {
	move, err := that.ChooseMove(state)
	if err != nil {
		return err
	}

	if err = state.Apply(mark, move); err != nil {
		return fmt.Errorf("bot failed to make turn: %w", err)
	}

	return nil
}

// uniformly random among empty cells
func chooseTicTacToeMove(state *tictactoe.State) (int, error) {
	availableCells := make([]int, 0, len(state.Board))
	for i, cell := range state.Board {
		if cell == entity.EmptyCell {
			availableCells = append(availableCells, i)
		}
	}

	if len(availableCells) == 0 {
		return 0, ErrNoAvailableMoves
	}

	return availableCells[rand.Intn(len(availableCells))], nil //nolint: gosec // it's ok
}

// lowest-indexed column that still has room
func chooseConnectFourMove(state *connectfour.State) (int, error) {
	for col := 0; col < connectfour.Cols; col++ {
		if state.Board[col] == entity.EmptyCell {
			return col, nil
		}
	}

	return 0, ErrNoAvailableMoves
}
