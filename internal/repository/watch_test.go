package repository

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playgrid/gamehub-backend/internal/entity"
	"github.com/playgrid/gamehub-backend/testing/suite"
)

func TestRoomWatcher_Watch(t *testing.T) {
	ctx, st := suite.New(t)

	roomRepo := NewRoomRepository(st.Storage)
	membershipRepo := NewMembershipRepository(st.Storage)
	watcher := NewRoomWatcher(st.Logger, st.Storage)

	var mu sync.Mutex
	var rooms []*entity.Room
	var rosters [][]*entity.Membership

	// Given: a live watch on the room
	handle, err := watcher.Watch(ctx, testRoomID,
		func(room *entity.Room) {
			mu.Lock()
			defer mu.Unlock()
			rooms = append(rooms, room)
		},
		func(members []*entity.Membership) {
			mu.Lock()
			defer mu.Unlock()
			rosters = append(rosters, members)
		},
	)
	require.NoError(t, err)

	defer func() {
		require.NoError(t, handle.Close())
	}()

	// When: the room record and the roster change
	room := &entity.Room{
		ID:       testRoomID,
		Status:   entity.StatusWaiting,
		Revision: 1,
	}
	require.NoError(t, roomRepo.CreateOrUpdate(ctx, room))

	host := &entity.Membership{RoomID: testRoomID, PlayerID: "alice", Name: "Alice", Host: true}
	_, err = membershipRepo.Add(ctx, host)
	require.NoError(t, err)

	// Then: both notifications arrive with the written snapshots
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(rooms) >= 1 && len(rosters) >= 1
	}, 10*time.Second, 50*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, room, rooms[0])
	require.Len(t, rosters[0], 1)
	assert.Equal(t, host, rosters[0][0])
}

func TestWatchHandle_Close(t *testing.T) {
	// Given: a handle over a counting stop function
	closes := 0
	handle := NewWatchHandle(func() error {
		closes++
		return nil
	})

	// When: Close is called more than once
	require.NoError(t, handle.Close())
	require.NoError(t, handle.Close())

	// Then: the release ran exactly once
	assert.Equal(t, 1, closes)
}
