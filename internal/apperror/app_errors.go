package apperror

import "errors"

var (
	ErrInvalidIdentifier = errors.New("invalid room identifier")
	ErrAuthRequired      = errors.New("no authenticated user")
	ErrNotFound          = errors.New("room not found")
	ErrRoomFull          = errors.New("room is full")
	ErrStoreUnavailable  = errors.New("store unavailable")

	ErrGameFinished = errors.New("game is already finished")
	ErrNotYourTurn  = errors.New("it's not your turn")
	ErrCellOccupied = errors.New("cell is already occupied")
	ErrInvalidCell  = errors.New("invalid cell index")
	ErrColumnFull   = errors.New("column is full")
	ErrUnknownGame  = errors.New("unknown game")
)
