package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/playgrid/gamehub-backend/internal/entity"
	"github.com/playgrid/gamehub-backend/internal/game"
)

const (
	actionRoomUpdate  = "room:update"
	actionRoomMembers = "room:members"
)

func (that *Server) handleRoomNew(ctx context.Context, peer *client, msg *Message) error {
	payload, err := decodePayload(msg)
	if err != nil {
		return err
	}

	roomID, password, err := peer.session.Create(ctx, payload.GameID, payload.PlayerName)
	if err != nil {
		return peer.sendError(msg.Action, err.Error())
	}

	if err = that.forwardRoomEvents(ctx, peer, roomID); err != nil {
		return peer.sendError(msg.Action, err.Error())
	}

	return peer.send(msg.Action, Payload{
		RoomID:   roomID,
		Password: password,
		Seat:     peer.session.Seat(),
	})
}

func (that *Server) handleRoomBot(ctx context.Context, peer *client, msg *Message) error {
	payload, err := decodePayload(msg)
	if err != nil {
		return err
	}

	roomID, err := peer.session.CreateWithBot(ctx, payload.GameID, payload.PlayerName)
	if err != nil {
		return peer.sendError(msg.Action, err.Error())
	}

	if err = that.forwardRoomEvents(ctx, peer, roomID); err != nil {
		return peer.sendError(msg.Action, err.Error())
	}

	return peer.send(msg.Action, Payload{
		RoomID: roomID,
		Room:   peer.session.Room(),
		Seat:   peer.session.Seat(),
	})
}

func (that *Server) handleRoomJoin(ctx context.Context, peer *client, msg *Message) error {
	payload, err := decodePayload(msg)
	if err != nil {
		return err
	}

	room, err := peer.session.Join(ctx, payload.RoomID, payload.Password, payload.PlayerName)
	if err != nil {
		return peer.sendError(msg.Action, err.Error())
	}

	if err = that.forwardRoomEvents(ctx, peer, room.ID); err != nil {
		return peer.sendError(msg.Action, err.Error())
	}

	return peer.send(msg.Action, Payload{
		Room:    room,
		Members: peer.session.Members(),
		Seat:    peer.session.Seat(),
	})
}

func (that *Server) handleRoomTurn(ctx context.Context, peer *client, msg *Message) error {
	payload, err := decodePayload(msg)
	if err != nil {
		return err
	}

	if payload.Cell == nil {
		return peer.sendError(msg.Action, "cell is required")
	}

	if err = peer.session.MakeTurn(ctx, *payload.Cell); err != nil {
		return peer.sendError(msg.Action, err.Error())
	}

	if err = peer.session.Err(); err != nil {
		return peer.sendError(msg.Action, err.Error())
	}

	return peer.send(msg.Action, Payload{Room: peer.session.Room()})
}

// handleRoomState - accepts a full snapshot push, which is how the host
// starts a new game in a finished room.
func (that *Server) handleRoomState(ctx context.Context, peer *client, msg *Message) error {
	payload, err := decodePayload(msg)
	if err != nil {
		return err
	}

	if payload.State == nil {
		return peer.sendError(msg.Action, "state is required")
	}

	state, err := game.Decode(payload.State)
	if err != nil {
		return peer.sendError(msg.Action, err.Error())
	}

	peer.session.PushState(ctx, state)

	if err = peer.session.Err(); err != nil {
		return peer.sendError(msg.Action, err.Error())
	}

	return peer.send(msg.Action, Payload{Room: peer.session.Room()})
}

// forwardRoomEvents - subscribes the session and relays store notifications
// to the peer. The session owns the watch handle and releases it on close.
func (that *Server) forwardRoomEvents(ctx context.Context, peer *client, roomID string) error {
	log := that.logger.With("method", "forwardRoomEvents", "roomID", roomID)

	_, err := peer.session.Subscribe(ctx, roomID,
		func(room *entity.Room) {
			if sendErr := peer.send(actionRoomUpdate, Payload{Room: room, Seat: peer.session.Seat()}); sendErr != nil {
				log.Error("failed to forward room update", "error", sendErr)
			}
		},
		func(members []*entity.Membership) {
			if sendErr := peer.send(actionRoomMembers, Payload{Members: members, Seat: peer.session.Seat()}); sendErr != nil {
				log.Error("failed to forward roster update", "error", sendErr)
			}
		},
	)
	if err != nil {
		return fmt.Errorf("failed to subscribe to room: %w", err)
	}

	return nil
}

func decodePayload(msg *Message) (*Payload, error) {
	payload := &Payload{}

	if len(msg.Payload) == 0 {
		return payload, nil
	}

	if err := json.Unmarshal(msg.Payload, payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return payload, nil
}
