package hub

import (
	"context"

	"go.uber.org/zap"

	"github.com/matchguru/match-rooms-backend/internal/engine"
	"github.com/matchguru/match-rooms-backend/internal/room"
)

type HubMsg interface{ isHubMsg() }

// CreateRoom registers an actor for one catalog room. The catalog is fixed,
// so this only runs during boot-time seeding; there is no create API.
type CreateRoom struct {
	ID    int
	State engine.State
	Reply chan *room.Room
}

type GetRoom struct {
	ID    int
	Reply chan *room.Room
}

type RemoveRoom struct {
	ID int
}

type ShutdownHub struct{}

func (CreateRoom) isHubMsg()  {}
func (GetRoom) isHubMsg()     {}
func (RemoveRoom) isHubMsg()  {}
func (ShutdownHub) isHubMsg() {}

type Hub struct {
	inbox  chan HubMsg
	rooms  map[int]*room.Room
	ctx    context.Context
	cancel context.CancelFunc
	log    *zap.Logger
}

func NewHub(parent context.Context, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan HubMsg, 64),
		rooms:  make(map[int]*room.Room),
		ctx:    ctx,
		cancel: cancel,
		log:    log,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// Seed spins up one actor per initial state and blocks until all exist.
func (h *Hub) Seed(states []engine.State) {
	for _, s := range states {
		reply := make(chan *room.Room, 1)
		h.inbox <- CreateRoom{ID: s.RoomID, State: s, Reply: reply}
		<-reply
	}
	h.log.Info("rooms seeded", zap.Int("count", len(states)))
}

// Room resolves the actor for a room id, nil when absent.
func (h *Hub) Room(id int) *room.Room {
	reply := make(chan *room.Room, 1)
	h.inbox <- GetRoom{ID: id, Reply: reply}
	return <-reply
}

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateRoom:
				if rm := h.rooms[msg.ID]; rm != nil {
					msg.Reply <- rm
					break
				}
				rm := room.NewRoom(h.ctx, msg.State, h.log)
				h.rooms[msg.ID] = rm
				msg.Reply <- rm

			case GetRoom:
				msg.Reply <- h.rooms[msg.ID] // May be nil

			case RemoveRoom:
				delete(h.rooms, msg.ID)

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) shutdown() {
	for _, rm := range h.rooms {
		rm.Inbox() <- room.Shutdown{}
	}
	clear(h.rooms)
	h.cancel()
}
