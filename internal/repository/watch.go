package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/playgrid/gamehub-backend/internal/entity"
)

// WatchHandle owns one live watch. Close releases the underlying
// subscription and is safe to call more than once; only the first call
// takes effect.
type WatchHandle struct {
	once sync.Once
	stop func() error
	err  error
}

func NewWatchHandle(stop func() error) *WatchHandle {
	return &WatchHandle{stop: stop}
}

func (that *WatchHandle) Close() error {
	that.once.Do(func() {
		that.err = that.stop()
	})

	return that.err
}

// RoomWatcher delivers store change notifications for one room. Delivery is
// at-least-once from the session's point of view; handlers must tolerate
// duplicates.
type RoomWatcher struct {
	logger *slog.Logger
	client *redis.Client
}

func NewRoomWatcher(logger *slog.Logger, client *redis.Client) *RoomWatcher {
	return &RoomWatcher{
		logger: logger,
		client: client,
	}
}

// Watch - subscribes to room record and roster changes. Callbacks run on the
// watcher goroutine, one at a time, until the handle is closed.
func (that *RoomWatcher) Watch(
	ctx context.Context,
	roomID string,
	onRoom func(room *entity.Room),
	onMembers func(members []*entity.Membership),
) (*WatchHandle, error) {
	log := that.logger.With("component", "watcher", "roomID", roomID)

	roomChannel := roomUpdateChannelPrefix + roomID
	membersChannel := membersChannelPrefix + roomID

	pubsub := that.client.Subscribe(ctx, roomChannel, membersChannel)

	// Receive forces the SUBSCRIBE round-trip so no update slips between
	// the initial fetch and the watch.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to room channels: %w", err)
	}

	go func() {
		for message := range pubsub.Channel() {
			switch message.Channel {
			case roomChannel:
				var room entity.Room
				if err := json.Unmarshal([]byte(message.Payload), &room); err != nil {
					log.Error("failed to unmarshal room notification", "error", err)
					continue
				}

				onRoom(&room)
			case membersChannel:
				var members []*entity.Membership
				if err := json.Unmarshal([]byte(message.Payload), &members); err != nil {
					log.Error("failed to unmarshal roster notification", "error", err)
					continue
				}

				onMembers(members)
			}
		}
	}()

	return NewWatchHandle(func() error {
		if err := pubsub.Close(); err != nil {
			return fmt.Errorf("failed to close subscription: %w", err)
		}

		return nil
	}), nil
}
