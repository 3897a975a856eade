package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/matchguru/match-rooms-backend/internal/auth"
	"github.com/matchguru/match-rooms-backend/internal/engine"
	"github.com/matchguru/match-rooms-backend/internal/hub"
	"github.com/matchguru/match-rooms-backend/internal/room"
	"github.com/matchguru/match-rooms-backend/pkg/types"
)

// Handler serves the live room feed: GET /ws?room={id}&token={session token}.
// The auth gate runs before the upgrade; anonymous callers never join.
func Handler(h *hub.Hub, gate *auth.Gate, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := gate.Authenticate(r.URL.Query().Get("token"))
		if err != nil {
			http.Error(w, "auth required", http.StatusUnauthorized)
			return
		}

		roomID, err := strconv.Atoi(r.URL.Query().Get("room"))
		if err != nil {
			http.Error(w, "bad room id", http.StatusBadRequest)
			return
		}
		rm := h.Room(roomID)
		if rm == nil {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan room.Snapshot, 8)
		clientID := uuid.NewString()

		rm.Inbox() <- room.Join{ClientID: clientID, Outbox: out}
		defer func() { rm.Inbox() <- room.Leave{ClientID: clientID} }()

		log.Debug("ws client joined", zap.Int("room_id", roomID), zap.String("client_id", clientID))

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for snap := range out {
				msg := types.ServerMessage{Type: "RoomSnapshot", Version: snap.Version, State: &snap.State}
				payload, _ := json.Marshal(msg)
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		// Reader loop
		for {
			ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
			_, data, err := conn.Read(ctx)
			cancel()
			if err != nil {
				// Treat clean close/going-away as normal:
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				// Otherwise, just exit (room.Leave in defer):
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				_ = conn.Write(r.Context(), websocket.MessageText,
					[]byte(`{"type":"Error","error":"bad json"}`))
				continue
			}

			cmd, ok := toCommand(cm, sess)
			if !ok {
				_ = conn.Write(r.Context(), websocket.MessageText, []byte(`{"type":"Error","error":"unknown type"}`))
				continue
			}

			rm.Inbox() <- room.FromClient{Cmd: cmd}
		}
	}
}

func toCommand(m types.ClientMessage, sess auth.Session) (engine.Command, bool) {
	switch m.Type {
	case "PostMessage":
		return engine.Command{
			Type:   engine.CmdPostMessage,
			UserID: sess.Name,
			Author: sess.Name,
			Text:   m.Text,
			SentAt: time.Now().Format("15:04"),
			Own:    true,
		}, true
	case "CastVote":
		outcome, valid := engine.ParseOutcome(m.Outcome)
		if !valid {
			return engine.Command{}, false
		}
		return engine.Command{Type: engine.CmdCastVote, UserID: sess.Name, Outcome: outcome}, true
	default:
		return engine.Command{}, false
	}
}
