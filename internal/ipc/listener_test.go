package ipc

import (
	"os"
	"testing"
)

func TestDjb2PortFromNameStaysInRange(t *testing.T) {
	for _, name := range []string{"core-socket", "", "a-very-long-socket-name-indeed"} {
		port := djb2PortFromName(name)
		if port < 49152 || port > 65535 {
			t.Fatalf("port %d for name %q out of range", port, name)
		}
	}
}

func TestDjb2PortFromNameDeterministic(t *testing.T) {
	a := djb2PortFromName("core-socket")
	b := djb2PortFromName("core-socket")
	if a != b {
		t.Fatalf("expected deterministic hash, got %d and %d", a, b)
	}
}

func TestWritePortThenReadExistingPortRoundTrips(t *testing.T) {
	path := t.TempDir() + "/core-socket"
	if err := writePort(path, 54321); err != nil {
		t.Fatalf("writePort: %v", err)
	}
	port, ok := readExistingPort(path)
	if !ok {
		t.Fatal("expected readExistingPort to succeed")
	}
	if port != 54321 {
		t.Fatalf("got port %d, want 54321", port)
	}
}

func TestReadExistingPortRejectsGarbage(t *testing.T) {
	path := t.TempDir() + "/core-socket"
	if err := os.WriteFile(path, []byte("not-a-port"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, ok := readExistingPort(path); ok {
		t.Fatal("expected readExistingPort to reject non-numeric contents")
	}
}
