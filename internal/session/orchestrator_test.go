package session

import (
	"bytes"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/StoreStation/blockworld/internal/metrics"
	"github.com/StoreStation/blockworld/internal/protocol"
	"github.com/StoreStation/blockworld/internal/world"
)

func testOrchestrator(w *world.World) *Orchestrator {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewOrchestrator(Config{ServerName: "Test", ServerMOTD: "hi"}, w, NewIDAllocator(8), NewPump(), log, metrics.New())
}

// newTestController builds a Controller with a buffered outbound channel so
// Enqueue never blocks inside a test body.
func newTestController(id int8) Controller {
	return Controller{ID: id, outbound: make(chan []byte, 32), cancel: func() {}}
}

func drain(c Controller) [][]byte {
	var frames [][]byte
	for {
		select {
		case f := <-c.outbound:
			frames = append(frames, f)
		default:
			return frames
		}
	}
}

func TestOnIdentificationSpawnsFanOutBothWays(t *testing.T) {
	w := world.New(16, 16, 16, world.Point{})
	o := testOrchestrator(w)

	existingCtrl := newTestController(1)
	o.players[1] = &Player{Ctrl: existingCtrl, Name: "Existing"}

	newCtrl := newTestController(2)
	o.idQueue[2] = idQueueEntry{ctrl: newCtrl, timer: time.NewTimer(time.Hour)}

	o.onIdentification(IdentificationEvent{ID: 2, Packet: protocol.PlayerIdentification{Username: "Newcomer"}})

	newFrames := drain(newCtrl)
	var sawExisting bool
	for _, f := range newFrames {
		if len(f) > 0 && f[0] == protocol.IDOf(protocol.KindSpawnPlayer) && bytes.Contains(f, []byte("Existing")) {
			sawExisting = true
		}
	}
	if !sawExisting {
		t.Error("newcomer did not receive a SpawnPlayer frame for the existing player")
	}

	existingFrames := drain(existingCtrl)
	var sawNewcomer bool
	for _, f := range existingFrames {
		if len(f) > 0 && f[0] == protocol.IDOf(protocol.KindSpawnPlayer) && bytes.Contains(f, []byte("Newcomer")) {
			sawNewcomer = true
		}
	}
	if !sawNewcomer {
		t.Error("existing player did not receive a SpawnPlayer frame for the newcomer")
	}

	if _, ok := o.players[2]; !ok {
		t.Error("newcomer was not added to the player table")
	}
}

func TestOnSetBlockBroadcastsToRequesterToo(t *testing.T) {
	w := world.New(4, 4, 4, world.Point{})
	o := testOrchestrator(w)

	requester := newTestController(1)
	other := newTestController(2)
	o.players[1] = &Player{Ctrl: requester, Name: "A"}
	o.players[2] = &Player{Ctrl: other, Name: "B"}

	o.onSetBlock(SetBlockEvent{ID: 1, Packet: protocol.SetBlock{X: 1, Y: 1, Z: 1, Mode: 1, BlockType: world.Stone}})

	if got := w.GetBlock(1, 1, 1); got != world.Stone {
		t.Fatalf("GetBlock = %d, want Stone", got)
	}

	for name, c := range map[string]Controller{"requester": requester, "other": other} {
		frames := drain(c)
		if len(frames) != 1 {
			t.Fatalf("%s received %d frames, want 1", name, len(frames))
		}
		if frames[0][0] != protocol.IDOf(protocol.KindSetBlockServer) {
			t.Errorf("%s frame id = %#x, want SetBlockServer", name, frames[0][0])
		}
	}
}

func TestOnSetBlockDestroyModeWritesAir(t *testing.T) {
	w := world.New(4, 4, 4, world.Point{})
	w.SetBlock(1, 1, 1, world.Stone)
	o := testOrchestrator(w)

	o.onSetBlock(SetBlockEvent{ID: 1, Packet: protocol.SetBlock{X: 1, Y: 1, Z: 1, Mode: 0, BlockType: world.Stone}})

	if got := w.GetBlock(1, 1, 1); got != world.Air {
		t.Fatalf("GetBlock = %d, want Air after destroy", got)
	}
}

func TestOnPositionOrientationExcludesSender(t *testing.T) {
	w := world.New(4, 4, 4, world.Point{})
	o := testOrchestrator(w)

	sender := newTestController(1)
	other := newTestController(2)
	o.players[1] = &Player{Ctrl: sender, Name: "A"}
	o.players[2] = &Player{Ctrl: other, Name: "B"}

	o.onPositionOrientation(PositionOrientationEvent{ID: 1, Packet: protocol.PositionOrientation{X: 32, Y: 64, Z: 32, Yaw: 10, Pitch: 20}})

	if len(drain(sender)) != 0 {
		t.Error("sender received its own position broadcast")
	}
	if len(drain(other)) != 1 {
		t.Error("other player did not receive the position broadcast")
	}

	p := o.players[1]
	if p.X != 32 || p.Y != 64 || p.Z != 32 {
		t.Errorf("stored position = (%d,%d,%d), want (32,64,32)", p.X, p.Y, p.Z)
	}
}

// TestOnPositionOrientationIdempotent applies the same update twice and
// checks the stored row is unchanged by the repeat (§8 property 6).
func TestOnPositionOrientationIdempotent(t *testing.T) {
	w := world.New(4, 4, 4, world.Point{})
	o := testOrchestrator(w)

	sender := newTestController(1)
	other := newTestController(2)
	o.players[1] = &Player{Ctrl: sender, Name: "A"}
	o.players[2] = &Player{Ctrl: other, Name: "B"}

	ev := PositionOrientationEvent{ID: 1, Packet: protocol.PositionOrientation{X: 5, Y: 6, Z: 7, Yaw: 1, Pitch: 2}}
	o.onPositionOrientation(ev)
	firstX, firstY, firstZ, firstYaw, firstPitch := o.players[1].X, o.players[1].Y, o.players[1].Z, o.players[1].Yaw, o.players[1].Pitch
	drain(other)

	o.onPositionOrientation(ev)
	p := o.players[1]

	if p.X != firstX || p.Y != firstY || p.Z != firstZ || p.Yaw != firstYaw || p.Pitch != firstPitch {
		t.Errorf("position row changed on repeat: (%d,%d,%d,%d,%d) != (%d,%d,%d,%d,%d)",
			firstX, firstY, firstZ, firstYaw, firstPitch, p.X, p.Y, p.Z, p.Yaw, p.Pitch)
	}
	if len(drain(other)) != 1 {
		t.Error("repeat did not rebroadcast exactly once")
	}
}

func TestDispatchCommandTeleportsSenderOnly(t *testing.T) {
	w := world.New(4, 4, 4, world.Point{})
	o := testOrchestrator(w)

	sender := newTestController(1)
	target := newTestController(2)
	o.players[1] = &Player{Ctrl: sender, Name: "A"}
	o.players[2] = &Player{Ctrl: target, Name: "B", X: 99, Y: 99, Z: 99}

	o.dispatchCommand(1, "/tp B")

	frames := drain(sender)
	if len(frames) != 1 {
		t.Fatalf("sender received %d frames, want 1", len(frames))
	}
	if frames[0][0] != protocol.IDOf(protocol.KindPositionOrientationTeleport) {
		t.Errorf("frame id = %#x, want PositionOrientationTeleport", frames[0][0])
	}
	if len(drain(target)) != 0 {
		t.Error("target received an unexpected frame")
	}
}

func TestDispatchCommandUnknownPlayerRepliesWithError(t *testing.T) {
	w := world.New(4, 4, 4, world.Point{})
	o := testOrchestrator(w)

	sender := newTestController(1)
	o.players[1] = &Player{Ctrl: sender, Name: "A"}

	o.dispatchCommand(1, "/tp Ghost")

	frames := drain(sender)
	if len(frames) != 1 || frames[0][0] != protocol.IDOf(protocol.KindMessageServer) {
		t.Fatalf("expected a single ServerMessage error reply, got %v", frames)
	}
}

func TestOnDisconnectReleasesIDAndDespawns(t *testing.T) {
	w := world.New(4, 4, 4, world.Point{})
	o := testOrchestrator(w)

	leaving := newTestController(1)
	remaining := newTestController(2)
	id, _ := o.ids.Allocate()
	o.players[id] = &Player{Ctrl: leaving, Name: "Leaving"}
	o.players[2] = &Player{Ctrl: remaining, Name: "Remaining"}

	o.onDisconnect(DisconnectedEvent{ID: id})

	if _, ok := o.players[id]; ok {
		t.Error("player still present after disconnect")
	}
	frames := drain(remaining)
	if len(frames) != 1 || frames[0][0] != protocol.IDOf(protocol.KindDespawnPlayer) {
		t.Fatalf("remaining player did not receive a single DespawnPlayer frame, got %v", frames)
	}

	newID, ok := o.ids.Allocate()
	if !ok {
		t.Fatal("allocate after release: not ok")
	}
	if newID != id {
		t.Errorf("released id not recycled: got %d, want %d", newID, id)
	}
}

func TestOnConnectSendsWelcomeBannerWhenConfigured(t *testing.T) {
	w := world.New(4, 4, 4, world.Point{})
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	o := NewOrchestrator(Config{ServerName: "Test", Welcome: "gm"}, w, NewIDAllocator(8), NewPump(), log, metrics.New())

	ctrl := newTestController(1)
	o.onConnect(ConnectedEvent{ID: 1, Ctrl: ctrl})

	frames := drain(ctrl)
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2 (identification + welcome)", len(frames))
	}
	if frames[1][0] != protocol.IDOf(protocol.KindMessageServer) {
		t.Errorf("second frame id = %#x, want MessageServer", frames[1][0])
	}
	if !bytes.Contains(frames[1], []byte("gm")) {
		t.Error("welcome frame does not contain the configured banner text")
	}
}
