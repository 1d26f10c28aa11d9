package entity

// Membership binds one player to one room. Exactly one membership per room
// has Host set, assigned at creation time and never transferred. Records are
// never mutated after insert; a player's seat follows from join order alone.
type Membership struct {
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id"`
	Name     string `json:"player_name"`
	Host     bool   `json:"is_host"`
}

// SeatMark maps a join-order seat index to a mark. The first two seats are
// the active game seats; later members are spectators.
func SeatMark(seat int) string {
	switch seat {
	case 0:
		return PlayerX
	case 1:
		return PlayerO
	default:
		return ""
	}
}
