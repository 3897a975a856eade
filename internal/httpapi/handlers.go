package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/matchguru/match-rooms-backend/internal/auth"
	"github.com/matchguru/match-rooms-backend/internal/catalog"
	"github.com/matchguru/match-rooms-backend/internal/engine"
	"github.com/matchguru/match-rooms-backend/internal/hub"
	"github.com/matchguru/match-rooms-backend/internal/room"
)

type API struct {
	Hub  *hub.Hub
	Gate *auth.Gate
	Log  *zap.Logger
}

func NewAPI(h *hub.Hub, g *auth.Gate, log *zap.Logger) *API {
	return &API{Hub: h, Gate: g, Log: log}
}

// RoomSummary is one catalog entry with its derived percentages.
type RoomSummary struct {
	catalog.Room
	Percentages engine.Percentages `json:"percentages"`
}

// RoomDetail adds the live transcript and the caller's active selection.
type RoomDetail struct {
	RoomSummary
	Messages []engine.Message `json:"messages"`
	MyVote   *engine.Outcome  `json:"my_vote,omitempty"`
}

type sessionRequest struct {
	Mode     string `json:"mode"`
	Username string `json:"username"`
	Password string `json:"password"`
	Contact  string `json:"contact"`
}

type voteRequest struct {
	Outcome string `json:"outcome"`
}

type messageRequest struct {
	Text string `json:"text"`
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// ListRooms is public: browsing the catalog needs no session.
func (a *API) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms := catalog.List()
	out := make([]RoomSummary, 0, len(rooms))
	for _, rm := range rooms {
		out = append(out, RoomSummary{Room: rm, Percentages: rm.Tally.Percentages()})
	}
	writeJSON(w, http.StatusOK, out)
}

// GetRoom is gated: opening a room implies participation. The gate rejects
// the request; it never performs the action on the anonymous caller's behalf.
func (a *API) GetRoom(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.requireSession(w, r)
	if !ok {
		return
	}
	cat, rm, ok := a.resolveRoom(w, r)
	if !ok {
		return
	}

	reply := make(chan room.View, 1)
	rm.Inbox() <- room.GetState{Reply: reply}
	view := <-reply

	detail := RoomDetail{
		RoomSummary: RoomSummary{Room: cat, Percentages: cat.Tally.Percentages()},
		Messages:    view.State.Messages,
	}
	if outcome, voted := view.State.Selections[sess.Name]; voted {
		detail.MyVote = &outcome
	}
	writeJSON(w, http.StatusOK, detail)
}

func (a *API) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	mode, err := auth.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown_mode")
		return
	}

	sess, err := a.Gate.Submit(mode, auth.Credentials{
		Username: req.Username,
		Password: req.Password,
		Contact:  req.Contact,
	})
	var missing *auth.MissingFieldError
	if errors.As(err, &missing) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error": "missing_field",
			"field": missing.Field,
		})
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "auth_failed")
		return
	}

	a.Log.Info("session created", zap.String("name", sess.Name), zap.String("mode", string(mode)))
	writeJSON(w, http.StatusCreated, sess)
}

func (a *API) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.requireSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (a *API) DeleteSession(w http.ResponseWriter, r *http.Request) {
	a.Gate.Logout()
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) CastVote(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.requireSession(w, r)
	if !ok {
		return
	}
	_, rm, ok := a.resolveRoom(w, r)
	if !ok {
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	outcome, valid := engine.ParseOutcome(req.Outcome)
	if !valid {
		writeError(w, http.StatusBadRequest, "unknown_outcome")
		return
	}

	reply := make(chan room.ExecResult, 1)
	rm.Inbox() <- room.Exec{
		Cmd:   engine.Command{Type: engine.CmdCastVote, UserID: sess.Name, Outcome: outcome},
		Reply: reply,
	}
	res := <-reply
	if res.Err != nil {
		writeError(w, http.StatusBadRequest, "unknown_outcome")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]engine.Outcome{"outcome": outcome})
}

func (a *API) PostMessage(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.requireSession(w, r)
	if !ok {
		return
	}
	_, rm, ok := a.resolveRoom(w, r)
	if !ok {
		return
	}

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}

	reply := make(chan room.ExecResult, 1)
	rm.Inbox() <- room.Exec{
		Cmd: engine.Command{
			Type:   engine.CmdPostMessage,
			UserID: sess.Name,
			Author: sess.Name,
			Text:   req.Text,
			SentAt: time.Now().Format("15:04"),
			Own:    true,
		},
		Reply: reply,
	}
	res := <-reply
	if errors.Is(res.Err, engine.ErrEmptyMessage) {
		// Blank submissions just don't happen; no error surfaced.
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if res.Err != nil {
		writeError(w, http.StatusBadRequest, "bad_message")
		return
	}

	for _, e := range res.Events {
		if e.Type == engine.EvtMessagePosted {
			writeJSON(w, http.StatusCreated, e.Message)
			return
		}
	}
	writeError(w, http.StatusInternalServerError, "internal")
}

// requireSession resolves the bearer token. Anonymous callers get 401 and the
// requested action is not performed; the client must retry after logging in.
func (a *API) requireSession(w http.ResponseWriter, r *http.Request) (auth.Session, bool) {
	sess, err := a.Gate.Authenticate(BearerToken(r))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "auth_required")
		return auth.Session{}, false
	}
	return sess, true
}

// resolveRoom parses {roomID} and looks it up in both the catalog and the
// hub. Unknown ids map to the dedicated room_not_found state.
func (a *API) resolveRoom(w http.ResponseWriter, r *http.Request) (catalog.Room, *room.Room, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "roomID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_room_id")
		return catalog.Room{}, nil, false
	}
	cat, err := catalog.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "room_not_found")
		return catalog.Room{}, nil, false
	}
	rm := a.Hub.Room(id)
	if rm == nil {
		a.Log.Warn("catalog room missing from hub", zap.Int("room_id", id))
		writeError(w, http.StatusNotFound, "room_not_found")
		return catalog.Room{}, nil, false
	}
	return cat, rm, true
}

// BearerToken pulls the session token from the Authorization header, falling
// back to the token query param for websocket clients.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return r.URL.Query().Get("token")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
