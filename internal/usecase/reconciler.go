package usecase

import (
	"fmt"
	"sync"

	"github.com/playgrid/gamehub-backend/internal/entity"
	"github.com/playgrid/gamehub-backend/internal/game"
)

// Reconciler holds a client's local view of the room and applies remote
// notifications to it. The store is the single ordering authority: whatever
// snapshot arrives last wins, including snapshots older than what the client
// pushed. An echo of the client's own push reapplies the value it already
// holds, which is a no-op.
type Reconciler struct {
	mu sync.Mutex

	room  *entity.Room
	state game.State
}

func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// ApplyRemote - unconditionally replaces the local view with the received
// snapshot. Payloads that fail schema validation are rejected, never
// adopted; the previous view stays in place.
func (that *Reconciler) ApplyRemote(room *entity.Room) error {
	var state game.State

	if room.State != nil {
		decoded, err := game.Decode(room.State)
		if err != nil {
			return fmt.Errorf("rejected remote state: %w", err)
		}

		state = decoded
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	that.room = room
	that.state = state

	return nil
}

// ApplyLocal - installs an optimistic local value. The next remote
// notification overwrites it regardless of which client produced it.
func (that *Reconciler) ApplyLocal(room *entity.Room, state game.State) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.room = room
	that.state = state
}

// Room returns the current local view of the room record, which may be
// optimistic until the next notification arrives.
func (that *Reconciler) Room() *entity.Room {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.room
}

// State returns the current local game state. Callers must clone before
// mutating; the reconciler owns this value.
func (that *Reconciler) State() game.State {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.state
}
