package ipc

import (
	"encoding/json"
	"net"
	"testing"
)

func pipe(t *testing.T) (*Conn, *Conn) {
	t.Helper()
	a, b := net.Pipe()
	return NewConn(a), NewConn(b)
}

func TestSendRecvRoundTrip(t *testing.T) {
	client, server := pipe(t)
	defer client.Close()
	defer server.Close()

	payload, _ := json.Marshal(StartScreenSharePayload{SourceID: 7, RoomToken: "tok"})
	env := &Envelope{ID: "1", Type: TypeStartScreenShare, Payload: payload}

	done := make(chan error, 1)
	go func() { done <- client.Send(env) }()

	got, err := server.Recv()
	if err != nil {
		t.Fatalf("recv: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("send: %v", err)
	}

	if got.ID != "1" || got.Type != TypeStartScreenShare {
		t.Fatalf("unexpected envelope: %+v", got)
	}

	var decoded StartScreenSharePayload
	if err := json.Unmarshal(got.Payload, &decoded); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if decoded.SourceID != 7 || decoded.RoomToken != "tok" {
		t.Fatalf("unexpected payload: %+v", decoded)
	}
}

func TestSendTypedAndError(t *testing.T) {
	client, server := pipe(t)
	defer client.Close()
	defer server.Close()

	go client.SendTyped("2", TypeControllerCursor, ControllerCursorPayload{ParticipantID: "p1", Enabled: true})

	got, err := server.Recv()
	if err != nil {
		t.Fatalf("recv: %v", err)
	}
	if got.Type != TypeControllerCursor {
		t.Fatalf("expected type %s, got %s", TypeControllerCursor, got.Type)
	}

	go client.SendError("3", TypeStartScreenShareResult, "capture failed")
	got, err = server.Recv()
	if err != nil {
		t.Fatalf("recv: %v", err)
	}
	if got.Error != "capture failed" {
		t.Fatalf("expected error field, got %q", got.Error)
	}
}

func TestRecvRejectsZeroLengthMessage(t *testing.T) {
	client, server := pipe(t)
	defer client.Close()
	defer server.Close()

	go func() {
		header := make([]byte, 8)
		client.conn.Write(header)
	}()

	if _, err := server.Recv(); err == nil {
		t.Fatal("expected error for zero-length message")
	}
}
