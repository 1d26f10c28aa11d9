package entity

import "encoding/json"

const (
	StatusWaiting  = "waiting"
	StatusPlaying  = "playing"
	StatusFinished = "finished"
)

const (
	PrivateType = "private"
	WithBotType = "bot"
)

const (
	PlayerX   = "X"
	PlayerO   = "O"
	PlayerTie = "-"

	EmptyCell = ""
)

// Room is the authoritative record shared by all members. The store is the
// only source of truth; sessions hold read-mostly copies of it.
type Room struct {
	ID         string     `json:"id"`
	GameID     string     `json:"game_id"`
	Password   string     `json:"password"`
	Status     string     `json:"status"`
	Type       string     `json:"type"`
	State      *GameState `json:"state,omitempty"`
	MaxPlayers int        `json:"max_players"`
	Revision   int64      `json:"revision"`
}

// GameState is the stored game payload, tagged by game identifier so readers
// can reject unknown or malformed payloads instead of trusting them.
type GameState struct {
	Game string          `json:"game"`
	Data json.RawMessage `json:"data"`
}

func (that *Room) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Room) IsPlaying() bool {
	return that.Status == StatusPlaying
}

func (that *Room) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Room) IsWithBot() bool {
	return that.Type == WithBotType
}
