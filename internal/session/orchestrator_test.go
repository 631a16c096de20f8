package session

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/windowpane-rc/core/internal/ipc"
	"github.com/windowpane-rc/core/internal/platform"
)

func TestParseButtonDefaultsToLeft(t *testing.T) {
	if parseButton("") != platform.ButtonLeft {
		t.Fatal("expected empty button name to default to left")
	}
	if parseButton("right") != platform.ButtonRight {
		t.Fatal("expected right button to parse")
	}
	if parseButton("middle") != platform.ButtonMiddle {
		t.Fatal("expected middle button to parse")
	}
}

func TestSafeDecodeRejectsMalformedPayload(t *testing.T) {
	var out struct{ X int }
	if safeDecode(json.RawMessage(`not json`), &out) {
		t.Fatal("expected malformed payload to fail decode")
	}
}

func TestSafeDecodeAcceptsValidPayload(t *testing.T) {
	var out struct {
		X int `json:"x"`
	}
	if !safeDecode(json.RawMessage(`{"x":5}`), &out) {
		t.Fatal("expected valid payload to decode")
	}
	if out.X != 5 {
		t.Fatalf("expected x=5, got %d", out.X)
	}
}

func TestToICEServersWrapsEachURL(t *testing.T) {
	servers := toICEServers([]string{"stun:a.example", "turn:b.example"})
	if len(servers) != 2 {
		t.Fatalf("expected 2 servers, got %d", len(servers))
	}
	if servers[0].URLs[0] != "stun:a.example" || servers[1].URLs[0] != "turn:b.example" {
		t.Fatalf("unexpected servers: %+v", servers)
	}
}

func newTestOrchestrator() *Orchestrator {
	return &Orchestrator{
		events:           make(chan Event, 8),
		stopCh:           make(chan struct{}),
		seenParticipants: make(map[string]struct{}),
	}
}

func TestDecodeEnvelopeGetAvailableContent(t *testing.T) {
	o := newTestOrchestrator()
	ev, ok := o.decodeEnvelope(&ipc.Envelope{ID: "1", Type: ipc.TypeGetAvailableContent})
	if !ok || ev.Kind != EventGetAvailableContent || ev.RequestID != "1" {
		t.Fatalf("unexpected event: %+v ok=%v", ev, ok)
	}
}

func TestDecodeEnvelopeStartScreenShare(t *testing.T) {
	o := newTestOrchestrator()
	payload, _ := json.Marshal(ipc.StartScreenSharePayload{
		SourceID: 7, RoomToken: "tok", ICEServers: []string{"stun:x"}, TargetWidth: 1280, TargetHeight: 720,
	})
	ev, ok := o.decodeEnvelope(&ipc.Envelope{ID: "2", Type: ipc.TypeStartScreenShare, Payload: payload})
	if !ok || ev.Kind != EventStartScreenShare {
		t.Fatalf("expected start screen share event, got %+v ok=%v", ev, ok)
	}
	if ev.SourceID != 7 || ev.RoomToken != "tok" {
		t.Fatalf("unexpected fields: %+v", ev)
	}
	if ev.TargetExtent.Width != 1280 || ev.TargetExtent.Height != 720 {
		t.Fatalf("unexpected target extent: %+v", ev.TargetExtent)
	}
	if len(ev.ICEServers) != 1 {
		t.Fatalf("expected 1 ice server, got %d", len(ev.ICEServers))
	}
}

func TestDecodeEnvelopeStartScreenShareRejectsBadPayload(t *testing.T) {
	o := newTestOrchestrator()
	_, ok := o.decodeEnvelope(&ipc.Envelope{ID: "3", Type: ipc.TypeStartScreenShare, Payload: json.RawMessage(`not json`)})
	if ok {
		t.Fatal("expected malformed start screen share payload to be rejected")
	}
}

func TestDecodeEnvelopeUnknownTypeIsDropped(t *testing.T) {
	o := newTestOrchestrator()
	_, ok := o.decodeEnvelope(&ipc.Envelope{ID: "4", Type: "SomethingElse"})
	if ok {
		t.Fatal("expected unknown envelope type to be dropped")
	}
}

func TestDecodeEnvelopePingBecomesShellPing(t *testing.T) {
	o := newTestOrchestrator()
	ev, ok := o.decodeEnvelope(&ipc.Envelope{ID: "5", Type: ipc.TypePing})
	if !ok || ev.Kind != EventShellPing {
		t.Fatalf("expected shell ping event, got %+v ok=%v", ev, ok)
	}
}

func TestDecodeEnvelopeControllerCursor(t *testing.T) {
	o := newTestOrchestrator()
	payload, _ := json.Marshal(ipc.ControllerCursorPayload{ParticipantID: "p1", Enabled: true})
	ev, ok := o.decodeEnvelope(&ipc.Envelope{ID: "6", Type: ipc.TypeControllerCursor, Payload: payload})
	if !ok || ev.Kind != EventControllerCursorEnabled || ev.ParticipantID != "p1" || !ev.Enabled {
		t.Fatalf("unexpected event: %+v ok=%v", ev, ok)
	}
}

func TestIsStoppedReflectsCloseState(t *testing.T) {
	o := newTestOrchestrator()
	if o.isStopped() {
		t.Fatal("expected fresh orchestrator to not be stopped")
	}
	close(o.stopCh)
	if !o.isStopped() {
		t.Fatal("expected orchestrator to report stopped after close")
	}
}

func TestCheckTickStalenessNoopsWithoutActiveRoom(t *testing.T) {
	o := newTestOrchestrator()
	o.lastTickAt = time.Now().Add(-time.Hour)
	// Must not panic or block with no room and no log wiring beyond the
	// package-level logger.
	o.checkTickStaleness()
}

func TestKnownControllersReflectsSeenParticipants(t *testing.T) {
	o := newTestOrchestrator()
	o.seenParticipants["a"] = struct{}{}
	o.seenParticipants["b"] = struct{}{}
	got := o.knownControllers()
	if len(got) != 2 {
		t.Fatalf("expected 2 known controllers, got %d", len(got))
	}
}
