package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/playgrid/gamehub-backend/internal/entity"
)

const (
	membersKeyPrefix = "room.members:"

	membersChannelPrefix = "room.members.update:"
)

type MembershipRepository interface {
	// Add inserts a membership and returns its join-order seat index.
	Add(ctx context.Context, membership *entity.Membership) (int, error)
	ListByRoom(ctx context.Context, roomID string) ([]*entity.Membership, error)
	DeleteByRoom(ctx context.Context, roomID string) error
}

type dbMembership struct {
	client *redis.Client
}

func NewMembershipRepository(client *redis.Client) MembershipRepository {
	return &dbMembership{
		client: client,
	}
}

// Add - appends the membership to the room's join-order list. The list
// position is the seat, so seating never depends on message content. The
// updated roster is fanned out to subscribers after the insert.
func (that *dbMembership) Add(ctx context.Context, membership *entity.Membership) (int, error) {
	memberJSON, err := json.Marshal(membership)
	if err != nil {
		return 0, fmt.Errorf("could not marshal membership: %w", err)
	}

	membersKey := membersKeyPrefix + membership.RoomID
	length, err := that.client.RPush(ctx, membersKey, memberJSON).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to append membership: %w", err)
	}

	if err = that.publishRoster(ctx, membership.RoomID); err != nil {
		return 0, err
	}

	return int(length) - 1, nil
}

func (that *dbMembership) ListByRoom(ctx context.Context, roomID string) ([]*entity.Membership, error) {
	membersKey := membersKeyPrefix + roomID

	entries, err := that.client.LRange(ctx, membersKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}

	members := make([]*entity.Membership, 0, len(entries))
	for _, entry := range entries {
		var membership entity.Membership
		if err = json.Unmarshal([]byte(entry), &membership); err != nil {
			return nil, fmt.Errorf("failed to unmarshal membership: %w", err)
		}

		members = append(members, &membership)
	}

	return members, nil
}

func (that *dbMembership) DeleteByRoom(ctx context.Context, roomID string) error {
	membersKey := membersKeyPrefix + roomID

	if err := that.client.Del(ctx, membersKey).Err(); err != nil {
		return fmt.Errorf("failed to delete memberships: %w", err)
	}

	return nil
}

func (that *dbMembership) publishRoster(ctx context.Context, roomID string) error {
	members, err := that.ListByRoom(ctx, roomID)
	if err != nil {
		return err
	}

	rosterJSON, err := json.Marshal(members)
	if err != nil {
		return fmt.Errorf("could not marshal roster: %w", err)
	}

	if err = that.client.Publish(ctx, membersChannelPrefix+roomID, rosterJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish roster update: %w", err)
	}

	return nil
}
