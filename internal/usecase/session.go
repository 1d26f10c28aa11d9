package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/playgrid/gamehub-backend/internal/apperror"
	"github.com/playgrid/gamehub-backend/internal/entity"
	"github.com/playgrid/gamehub-backend/internal/game"
	"github.com/playgrid/gamehub-backend/internal/identity"
	"github.com/playgrid/gamehub-backend/internal/repository"
	"github.com/playgrid/gamehub-backend/internal/roomid"
)

var (
	ErrNoActiveRoom  = errors.New("no active room")
	ErrSessionClosed = errors.New("session is closed")
)

type roomRepo interface {
	CreateOrUpdate(ctx context.Context, room *entity.Room) error
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	GetByIDAndPassword(ctx context.Context, id, password string) (*entity.Room, error)
}

type membershipRepo interface {
	Add(ctx context.Context, membership *entity.Membership) (int, error)
	ListByRoom(ctx context.Context, roomID string) ([]*entity.Membership, error)
}

type roomWatcher interface {
	Watch(
		ctx context.Context,
		roomID string,
		onRoom func(room *entity.Room),
		onMembers func(members []*entity.Membership),
	) (*repository.WatchHandle, error)
}

type botService interface {
	MakeTurn(state game.State, mark string) error
}

// Session manages one client's relationship to one room across its full
// lifetime: creation or join, the change subscription, optimistic local
// moves and the authoritative echoes that overwrite them.
type Session struct {
	logger   *slog.Logger
	identity identity.Provider

	rooms   roomRepo
	members membershipRepo
	watcher roomWatcher
	bot     botService

	maxPlayers int
	botDelay   time.Duration

	reconciler *Reconciler

	// turnMu serializes move application, so a scheduled bot move is never
	// concurrent with a pending human move on the same state.
	turnMu sync.Mutex

	mu      sync.Mutex
	userID  string
	roomID  string
	seat    string
	roster  []*entity.Membership
	watch   *repository.WatchHandle
	lastErr error
	closed  bool
}

func NewSession(
	logger *slog.Logger,
	provider identity.Provider,
	rooms roomRepo,
	members membershipRepo,
	watcher roomWatcher,
	bot botService,
	maxPlayers int,
	botDelay time.Duration,
) *Session {
	return &Session{
		logger:   logger,
		identity: provider,

		rooms:   rooms,
		members: members,
		watcher: watcher,
		bot:     bot,

		maxPlayers: maxPlayers,
		botDelay:   botDelay,

		reconciler: NewReconciler(),
	}
}

// Create - registers a fresh room with the caller as sole host member and
// returns the credentials for out-of-band sharing.
func (that *Session) Create(ctx context.Context, gameID, hostName string) (string, string, error) {
	return that.create(ctx, gameID, hostName, entity.PrivateType)
}

// CreateWithBot - registers a room where the second seat is taken by the
// local bot, so play starts immediately.
func (that *Session) CreateWithBot(ctx context.Context, gameID, hostName string) (string, error) {
	roomID, _, err := that.create(ctx, gameID, hostName, entity.WithBotType)
	return roomID, err
}

func (that *Session) create(ctx context.Context, gameID, hostName, roomType string) (string, string, error) {
	user, ok := that.identity.CurrentUser(ctx)
	if !ok {
		return "", "", apperror.ErrAuthRequired
	}

	state, err := game.New(gameID)
	if err != nil {
		return "", "", fmt.Errorf("failed to create game state: %w", err)
	}

	envelope, err := game.Encode(state)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode game state: %w", err)
	}

	room := &entity.Room{
		ID:         roomid.New(),
		GameID:     gameID,
		Password:   roomid.NewPassword(),
		Status:     entity.StatusWaiting,
		Type:       roomType,
		State:      envelope,
		MaxPlayers: that.maxPlayers,
	}

	if roomType == entity.WithBotType {
		room.Status = entity.StatusPlaying
	}

	if err = that.rooms.CreateOrUpdate(ctx, room); err != nil {
		return "", "", fmt.Errorf("%w: %v", apperror.ErrStoreUnavailable, err)
	}

	host := &entity.Membership{
		RoomID:   room.ID,
		PlayerID: user,
		Name:     hostName,
		Host:     true,
	}

	seat, err := that.members.Add(ctx, host)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", apperror.ErrStoreUnavailable, err)
	}

	if roomType == entity.WithBotType {
		botMember := &entity.Membership{
			RoomID:   room.ID,
			PlayerID: "bot:" + room.ID,
			Name:     "Bot",
		}
		if _, err = that.members.Add(ctx, botMember); err != nil {
			return "", "", fmt.Errorf("%w: %v", apperror.ErrStoreUnavailable, err)
		}
	}

	that.adoptBinding(user, room.ID, entity.SeatMark(seat))
	that.reconciler.ApplyLocal(room, state)

	return room.ID, room.Password, nil
}

// Join - validates the identifier locally, then looks the room up by
// identifier and password together and inserts a non-host membership.
// The seat follows from the accepted join order alone.
func (that *Session) Join(ctx context.Context, roomID, password, playerName string) (*entity.Room, error) {
	if !roomid.Validate(roomID) {
		return nil, apperror.ErrInvalidIdentifier
	}

	user, ok := that.identity.CurrentUser(ctx)
	if !ok {
		return nil, apperror.ErrAuthRequired
	}

	room, err := that.rooms.GetByIDAndPassword(ctx, roomID, password)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrStoreUnavailable, err)
	}

	roster, err := that.members.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrStoreUnavailable, err)
	}

	if len(roster) >= room.MaxPlayers {
		return nil, apperror.ErrRoomFull
	}

	membership := &entity.Membership{
		RoomID:   roomID,
		PlayerID: user,
		Name:     playerName,
	}

	seat, err := that.members.Add(ctx, membership)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrStoreUnavailable, err)
	}

	if err = that.reconciler.ApplyRemote(room); err != nil {
		return nil, err
	}

	// second seated player starts the game
	if seat == 1 && room.IsWaiting() {
		started := *room
		started.Status = entity.StatusPlaying
		if err = that.rooms.CreateOrUpdate(ctx, &started); err != nil {
			return nil, fmt.Errorf("%w: %v", apperror.ErrStoreUnavailable, err)
		}

		room = &started
	}

	that.adoptBinding(user, roomID, entity.SeatMark(seat))

	return room, nil
}

// Subscribe - establishes a durable watch on the room record and its
// membership set. The returned handle owns a live server-side watch and
// must be released exactly once; every error exit below releases it before
// returning, so a failed subscribe never leaks.
func (that *Session) Subscribe(
	ctx context.Context,
	roomID string,
	onRoom func(room *entity.Room),
	onMembers func(members []*entity.Membership),
) (*repository.WatchHandle, error) {
	if !roomid.Validate(roomID) {
		return nil, apperror.ErrInvalidIdentifier
	}

	handle, err := that.watcher.Watch(ctx, roomID,
		func(room *entity.Room) {
			if !that.alive() {
				return
			}

			if applyErr := that.reconciler.ApplyRemote(room); applyErr != nil {
				that.setErr(applyErr)
				return
			}

			if onRoom != nil {
				onRoom(room)
			}
		},
		func(members []*entity.Membership) {
			if !that.alive() {
				return
			}

			that.adoptRoster(members)

			if onMembers != nil {
				onMembers(members)
			}
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrStoreUnavailable, err)
	}

	// initial fetch; duplicates with the first notification are fine since
	// adoption is idempotent
	room, err := that.rooms.GetByID(ctx, roomID)
	if err != nil {
		_ = handle.Close()
		return nil, fmt.Errorf("%w: %v", apperror.ErrStoreUnavailable, err)
	}

	if err = that.reconciler.ApplyRemote(room); err != nil {
		_ = handle.Close()
		return nil, err
	}

	roster, err := that.members.ListByRoom(ctx, roomID)
	if err != nil {
		_ = handle.Close()
		return nil, fmt.Errorf("%w: %v", apperror.ErrStoreUnavailable, err)
	}

	that.adoptRoster(roster)

	that.mu.Lock()
	if that.closed {
		that.mu.Unlock()
		_ = handle.Close()
		return nil, ErrSessionClosed
	}
	that.watch = handle
	that.mu.Unlock()

	return handle, nil
}

// PushState - writes the full state snapshot as the new authoritative value
// for the room. Failures land in the session's observable error slot; the
// caller must re-issue the operation, nothing retries automatically.
func (that *Session) PushState(ctx context.Context, state game.State) {
	that.clearErr()

	room := that.reconciler.Room()
	if room == nil {
		that.setErr(ErrNoActiveRoom)
		return
	}

	envelope, err := game.Encode(state)
	if err != nil {
		that.setErr(err)
		return
	}

	next := *room
	next.State = envelope
	next.Revision = room.Revision + 1
	if state.Finished() {
		next.Status = entity.StatusFinished
	}

	// optimistic; the authoritative echo overwrites it
	that.reconciler.ApplyLocal(&next, state)

	if err = that.rooms.CreateOrUpdate(ctx, &next); err != nil {
		that.setErr(fmt.Errorf("%w: %v", apperror.ErrStoreUnavailable, err))
	}
}

// MakeTurn - applies the local player's move optimistically and pushes the
// result. The turn check here is a client-local courtesy; the store accepts
// whatever state is pushed and performs no game-rule validation.
func (that *Session) MakeTurn(ctx context.Context, move int) error {
	that.turnMu.Lock()
	defer that.turnMu.Unlock()

	that.mu.Lock()
	seat := that.seat
	that.mu.Unlock()

	current := that.reconciler.State()
	if current == nil {
		return ErrNoActiveRoom
	}

	if current.Turn() != seat {
		return apperror.ErrNotYourTurn
	}

	next := current.Clone()
	if err := next.Apply(seat, move); err != nil {
		return err
	}

	that.PushState(ctx, next)

	room := that.reconciler.Room()
	if room != nil && room.IsWithBot() && !next.Finished() {
		that.scheduleBotTurn(ctx)
	}

	return nil
}

// scheduleBotTurn - runs the bot's reply after the configured thinking
// delay. The turn mutex keeps it sequential with human moves.
func (that *Session) scheduleBotTurn(ctx context.Context) {
	time.AfterFunc(that.botDelay, func() {
		that.turnMu.Lock()
		defer that.turnMu.Unlock()

		if !that.alive() {
			return
		}

		that.mu.Lock()
		botMark := toggleMark(that.seat)
		that.mu.Unlock()

		current := that.reconciler.State()
		if current == nil || current.Finished() || current.Turn() != botMark {
			return
		}

		next := current.Clone()
		if err := that.bot.MakeTurn(next, botMark); err != nil {
			that.setErr(err)
			return
		}

		that.PushState(ctx, next)
	})
}

// Err - reads the session's observable error slot.
func (that *Session) Err() error {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.lastErr
}

// Room returns the local view of the room record.
func (that *Session) Room() *entity.Room {
	return that.reconciler.Room()
}

// State returns the local view of the game state.
func (that *Session) State() game.State {
	return that.reconciler.State()
}

// Seat returns the local player's mark, or "" for spectators.
func (that *Session) Seat() string {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.seat
}

// Members returns the roster in join order.
func (that *Session) Members() []*entity.Membership {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.roster
}

// Close - tears the session down and releases the watch, if any. Callbacks
// that fire after this point see the liveness flag and do nothing.
func (that *Session) Close() error {
	that.mu.Lock()
	if that.closed {
		that.mu.Unlock()
		return nil
	}

	that.closed = true
	handle := that.watch
	that.watch = nil
	that.mu.Unlock()

	if handle != nil {
		return handle.Close()
	}

	return nil
}

func (that *Session) alive() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return !that.closed
}

func (that *Session) clearErr() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.lastErr = nil
}

func (that *Session) setErr(err error) {
	that.logger.Error("session error", "error", err)

	that.mu.Lock()
	defer that.mu.Unlock()

	that.lastErr = err
}

func (that *Session) adoptBinding(userID, roomID, seat string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.userID = userID
	that.roomID = roomID
	that.seat = seat
}

// adoptRoster - replaces the cached membership set and re-derives the local
// seat from join order, never from notification content.
func (that *Session) adoptRoster(members []*entity.Membership) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.roster = members

	for i, membership := range members {
		if membership.PlayerID == that.userID {
			that.seat = entity.SeatMark(i)
			return
		}
	}
}

func toggleMark(currentMark string) string {
	if currentMark == entity.PlayerX {
		return entity.PlayerO
	}
	return entity.PlayerX
}
