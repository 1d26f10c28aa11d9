package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/playgrid/gamehub-backend/internal/apperror"
	"github.com/playgrid/gamehub-backend/internal/entity"
)

const (
	roomKeyPrefix = "room:"

	roomUpdateChannelPrefix = "room.update:"
)

var ErrRoomNotFound = errors.New("room not found")

type RoomRepository interface {
	CreateOrUpdate(ctx context.Context, room *entity.Room) error
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	GetByIDAndPassword(ctx context.Context, id, password string) (*entity.Room, error)
	DeleteByID(ctx context.Context, id string) error
}

type dbRoom struct {
	client *redis.Client
}

func NewRoomRepository(client *redis.Client) RoomRepository {
	return &dbRoom{
		client: client,
	}
}

// CreateOrUpdate - replaces the whole room record and fans the new snapshot
// out to every subscribed session. There is no field-level merge.
func (that *dbRoom) CreateOrUpdate(ctx context.Context, room *entity.Room) error {
	roomJSON, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("could not marshal room: %w", err)
	}

	roomKey := roomKeyPrefix + room.ID
	if err = that.client.Set(ctx, roomKey, roomJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to set room: %w", err)
	}

	if err = that.client.Publish(ctx, roomUpdateChannelPrefix+room.ID, roomJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish room update: %w", err)
	}

	return nil
}

func (that *dbRoom) GetByID(ctx context.Context, id string) (*entity.Room, error) {
	roomKey := roomKeyPrefix + id

	response, err := that.client.Get(ctx, roomKey).Result()

	if errors.Is(err, redis.Nil) {
		return nil, ErrRoomNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get room by id: %w", err)
	}

	var existingRoom entity.Room
	if err = json.Unmarshal([]byte(response), &existingRoom); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room: %w", err)
	}

	return &existingRoom, nil
}

// GetByIDAndPassword - looks the room up by identifier and credential
// together. A wrong password is indistinguishable from a wrong identifier,
// so the credential cannot be probed.
func (that *dbRoom) GetByIDAndPassword(ctx context.Context, id, password string) (*entity.Room, error) {
	room, err := that.GetByID(ctx, id)
	if errors.Is(err, ErrRoomNotFound) {
		return nil, apperror.ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	if room.Password != password {
		return nil, apperror.ErrNotFound
	}

	return room, nil
}

func (that *dbRoom) DeleteByID(ctx context.Context, id string) error {
	roomKey := roomKeyPrefix + id

	if err := that.client.Del(ctx, roomKey).Err(); err != nil {
		return fmt.Errorf("failed to delete room by id: %w", err)
	}

	return nil
}
