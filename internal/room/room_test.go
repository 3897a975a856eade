package room

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/matchguru/match-rooms-backend/internal/catalog"
	"github.com/matchguru/match-rooms-backend/internal/engine"
)

// helper: receive one snapshot with a timeout so tests never hang
func recvSnapshot(t *testing.T, ch <-chan Snapshot, within time.Duration) Snapshot {
	t.Helper()
	select {
	case snap, ok := <-ch:
		if !ok {
			t.Fatalf("client outbox closed unexpectedly")
		}
		return snap
	case <-time.After(within):
		t.Fatalf("timed out waiting for snapshot")
		return Snapshot{} // unreachable
	}
}

func recvNoSnapshot(t *testing.T, ch <-chan Snapshot, within time.Duration) {
	t.Helper()
	select {
	case s, ok := <-ch:
		if !ok {
			// channel closed → that's fine; no further snapshots possible
			return
		}
		t.Fatalf("expected no snapshot within %v, but got: %+v", within, s)
	case <-time.After(within):
		// good: no snapshot
	}
}

func recvView(t *testing.T, ch <-chan View, within time.Duration) View {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(within):
		t.Fatalf("timed out waiting for view")
		return View{} // unreachable
	}
}

func seededRoom(t *testing.T) (*Room, engine.State, context.CancelFunc) {
	t.Helper()
	cat, err := catalog.Get(1)
	if err != nil {
		t.Fatalf("catalog.Get: %v", err)
	}
	init := catalog.SeedState(cat)
	ctx, cancel := context.WithCancel(context.Background())
	return NewRoom(ctx, init, zap.NewNop()), init, cancel
}

func TestRoom_PostMessage_BroadcastsSnapshotAndVersionIncrements(t *testing.T) {
	r, init, cancel := seededRoom(t)
	defer cancel()

	clientOut := make(chan Snapshot, 2) // small buffer so broadcast doesn't block
	r.Inbox() <- Join{ClientID: "c1", Outbox: clientOut}

	// on join, the room should immediately send the current snapshot
	first := recvSnapshot(t, clientOut, 100*time.Millisecond)
	if first.Version != 0 {
		t.Fatalf("after join: want version=0, got %d", first.Version)
	}
	if len(first.State.Messages) != len(init.Messages) {
		t.Fatalf("after join: expected seed transcript, got %d messages", len(first.State.Messages))
	}

	cmd := engine.Command{Type: engine.CmdPostMessage, Author: "You", Text: "Hello", SentAt: "15:00", Own: true}
	r.Inbox() <- FromClient{Cmd: cmd}

	next := recvSnapshot(t, clientOut, 100*time.Millisecond)
	if next.Version != 1 {
		t.Fatalf("after post: want version=1, got %d", next.Version)
	}
	if len(next.State.Messages) != len(init.Messages)+1 {
		t.Fatalf("after post: transcript length = %d, want %d", len(next.State.Messages), len(init.Messages)+1)
	}
	last := next.State.Messages[len(next.State.Messages)-1]
	if !last.Own || last.Text != "Hello" {
		t.Fatalf("unexpected broadcast message: %+v", last)
	}

	r.Inbox() <- Shutdown{}
}

func TestRoom_BlankMessageIsSilentNoOp(t *testing.T) {
	r, _, cancel := seededRoom(t)
	defer cancel()

	out := make(chan Snapshot, 2)
	r.Inbox() <- Join{ClientID: "c1", Outbox: out}
	_ = recvSnapshot(t, out, 100*time.Millisecond) // drain join snapshot

	r.Inbox() <- FromClient{Cmd: engine.Command{Type: engine.CmdPostMessage, Author: "You", Text: "   ", Own: true}}

	// no broadcast, no version bump
	recvNoSnapshot(t, out, 150*time.Millisecond)

	reply := make(chan View, 1)
	r.Inbox() <- GetState{Reply: reply}
	view := recvView(t, reply, 100*time.Millisecond)
	if view.Version != 0 {
		t.Fatalf("version = %d after blank message, want 0", view.Version)
	}
}

func TestRoom_ExecRepliesWithResult(t *testing.T) {
	r, _, cancel := seededRoom(t)
	defer cancel()

	reply := make(chan ExecResult, 1)
	r.Inbox() <- Exec{
		Cmd:   engine.Command{Type: engine.CmdCastVote, UserID: "u1", Outcome: engine.OutcomeX},
		Reply: reply,
	}

	var res ExecResult
	select {
	case res = <-reply:
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("timed out waiting for exec reply")
	}
	if res.Err != nil {
		t.Fatalf("unexpected err: %v", res.Err)
	}
	if res.State.Selections["u1"] != engine.OutcomeX {
		t.Fatalf("selection not recorded: %+v", res.State.Selections)
	}
	if !engine.ContainsEvent(res.Events, engine.EvtVoteCast) {
		t.Fatalf("expected EvtVoteCast")
	}
}

func TestRoom_ExecSurfacesApplyError(t *testing.T) {
	r, _, cancel := seededRoom(t)
	defer cancel()

	reply := make(chan ExecResult, 1)
	r.Inbox() <- Exec{
		Cmd:   engine.Command{Type: engine.CmdPostMessage, Author: "You", Text: ""},
		Reply: reply,
	}

	select {
	case res := <-reply:
		if res.Err == nil {
			t.Fatalf("expected ErrEmptyMessage")
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("timed out waiting for exec reply")
	}
}

func TestRoom_DropSlowClient(t *testing.T) {
	r, _, cancel := seededRoom(t)
	defer cancel()

	clientOut := make(chan Snapshot, 1)
	r.Inbox() <- Join{ClientID: "c1", Outbox: clientOut}
	// don't drain: the join snapshot fills the buffer, so the broadcast below
	// finds it full and drops the client

	r.Inbox() <- FromClient{Cmd: engine.Command{Type: engine.CmdCastVote, UserID: "u1", Outcome: engine.OutcomeP1}}

	reply := make(chan View, 1)
	r.Inbox() <- GetState{Reply: reply}
	view := recvView(t, reply, 100*time.Millisecond)

	if view.NumClients != 0 {
		t.Fatalf("expected slow client to be dropped; NumClients=%d", view.NumClients)
	}
}

func TestRoom_ShutdownClosesOutboxes(t *testing.T) {
	r, _, cancel := seededRoom(t)
	defer cancel()

	out := make(chan Snapshot, 2)
	r.Inbox() <- Join{ClientID: "c1", Outbox: out}
	_ = recvSnapshot(t, out, 100*time.Millisecond)

	r.Inbox() <- Shutdown{}

	select {
	case _, ok := <-out:
		if ok {
			t.Fatalf("expected closed outbox, got a snapshot")
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("outbox not closed after shutdown")
	}
}
