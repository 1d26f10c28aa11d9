package websocket

import (
	"encoding/json"

	"github.com/playgrid/gamehub-backend/internal/entity"
)

// Message is the framing for every client/server exchange: an action name
// plus an action-specific payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Payload struct {
	GameID     string `json:"game_id,omitempty"`
	RoomID     string `json:"room_id,omitempty"`
	Password   string `json:"password,omitempty"`
	PlayerName string `json:"player_name,omitempty"`

	Cell *int `json:"cell,omitempty"`

	Room    *entity.Room         `json:"room,omitempty"`
	Members []*entity.Membership `json:"members,omitempty"`
	State   *entity.GameState    `json:"state,omitempty"`
	Seat    string               `json:"seat,omitempty"`

	Error string `json:"error,omitempty"`
}
