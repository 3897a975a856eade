package room

import (
	"context"

	"go.uber.org/zap"

	"github.com/matchguru/match-rooms-backend/internal/engine"
)

type Msg interface{ isRoomMsg() }

// FromClient is fire-and-forget: failures are silent no-ops toward the
// sender, matching the app's behavior for blank submissions.
type FromClient struct {
	Cmd engine.Command
}

func (FromClient) isRoomMsg() {}

// Exec is the request/reply variant used by the HTTP layer, which needs the
// apply outcome to pick a status code.
type Exec struct {
	Cmd   engine.Command
	Reply chan ExecResult
}

func (Exec) isRoomMsg() {}

type ExecResult struct {
	Events []engine.Event
	State  engine.State
	Err    error
}

type Join struct {
	ClientID string
	Outbox   chan Snapshot // where this client wants to receive snapshots
}

func (Join) isRoomMsg() {}

type Leave struct{ ClientID string }

func (Leave) isRoomMsg() {}

type Shutdown struct{}

func (Shutdown) isRoomMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isRoomMsg() {}

type Snapshot struct {
	Version int
	State   engine.State
}

type View struct {
	Version    int
	NumClients int
	State      engine.State
}

// Room owns the live state of one match room. All transitions run on the
// single actor goroutine; there are no concurrent writers.
type Room struct {
	inbox   chan Msg
	state   engine.State
	version int
	clients map[string]chan Snapshot
	ctx     context.Context
	cancel  context.CancelFunc
	log     *zap.Logger
}

func NewRoom(parent context.Context, initial engine.State, log *zap.Logger) *Room {
	ctx, cancel := context.WithCancel(parent)

	r := &Room{
		inbox:   make(chan Msg, 64), // Small buffer
		state:   initial,
		version: 0,
		clients: make(map[string]chan Snapshot),
		ctx:     ctx,
		cancel:  cancel,
		log:     log,
	}

	go r.loop()
	return r
}

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				// Register client + send current snapshot immediately
				r.clients[msg.ClientID] = msg.Outbox
				msg.Outbox <- Snapshot{Version: r.version, State: r.state}

			case Leave:
				delete(r.clients, msg.ClientID)

			case FromClient:
				events, newState, err := engine.Apply(r.state, msg.Cmd)
				if err != nil {
					// Silent no-op toward the sender; keep a debug trail.
					r.log.Debug("command rejected",
						zap.Int("room_id", r.state.RoomID),
						zap.String("cmd", string(msg.Cmd.Type)),
						zap.Error(err))
					break
				}
				r.advance(events, newState)

			case Exec:
				events, newState, err := engine.Apply(r.state, msg.Cmd)
				if err == nil {
					r.advance(events, newState)
				}
				msg.Reply <- ExecResult{Events: events, State: r.state, Err: err}

			case GetState:
				// reflect internal state without data races
				msg.Reply <- View{
					Version:    r.version,
					NumClients: len(r.clients),
					State:      r.state,
				}

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) advance(events []engine.Event, newState engine.State) {
	r.state = newState
	r.version++
	r.broadcast(Snapshot{Version: r.version, State: r.state})
	for _, e := range events {
		r.log.Debug("room event",
			zap.Int("room_id", r.state.RoomID),
			zap.String("event", string(e.Type)),
			zap.Int("version", r.version))
	}
}

func (r *Room) shutdown() {
	for id, ch := range r.clients {
		close(ch) // Tell client no more snapshots
		delete(r.clients, id)
	}
	r.cancel()
}

func (r *Room) broadcast(snap Snapshot) {
	for id, ch := range r.clients {
		select {
		case ch <- snap:
			// ok
		default:
			// Client is slow/full - drop them.
			close(ch)
			delete(r.clients, id)
		}
	}
}

// Expose the inbox so tests or the WS layer can send messages.
func (r *Room) Inbox() chan<- Msg { return r.inbox }
