package server

import (
	"bytes"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

func newTestConnection(t *testing.T, version string) (*Connection, *MemoryTransport) {
	t.Helper()
	transport := NewMemoryTransport()
	conn, err := New(Options{
		Version:   version,
		Digest:    []byte{0xca, 0xfe},
		Transport: transport,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return conn, transport
}

func TestConnectionIDsAreUnique(t *testing.T) {
	a, _ := newTestConnection(t, "1.4.0")
	b, _ := newTestConnection(t, "1.4.0")
	if a.ID() == b.ID() {
		t.Fatalf("two connections share id %d", a.ID())
	}
}

func TestDigestHex(t *testing.T) {
	conn, _ := newTestConnection(t, "1.4.0")
	if conn.Digest() != "cafe" {
		t.Fatalf("unexpected digest %q", conn.Digest())
	}
}

func TestSupportsPluginData(t *testing.T) {
	cases := []struct {
		version string
		want    bool
	}{
		{"1.3.4", false},
		{"1.4.0", true},
		{"1.4.1", true},
		{"1.5.0", true},
	}
	for _, tc := range cases {
		conn, _ := newTestConnection(t, tc.version)
		if got := conn.SupportsPluginData(); got != tc.want {
			t.Errorf("version %s: got %v, want %v", tc.version, got, tc.want)
		}
	}
}

func TestSendPluginDataFrames(t *testing.T) {
	conn, transport := newTestConnection(t, "1.4.0")

	msg := PluginData{
		SenderSession:    10,
		ReceiverSessions: []uint32{20, 30},
		Data:             []byte("payload"),
		DataID:           "chat",
	}
	if err := conn.SendPluginData(msg); err != nil {
		t.Fatalf("SendPluginData failed: %v", err)
	}

	frames := transport.Frames()
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}

	env, err := DecodeEnvelope(frames[0])
	if err != nil {
		t.Fatalf("DecodeEnvelope failed: %v", err)
	}
	if env.Type != TypePluginData {
		t.Fatalf("unexpected envelope type %q", env.Type)
	}

	var decoded PluginData
	if err := msgpack.Unmarshal(env.Payload, &decoded); err != nil {
		t.Fatalf("payload decode failed: %v", err)
	}
	if decoded.SenderSession != 10 || len(decoded.ReceiverSessions) != 2 || !bytes.Equal(decoded.Data, []byte("payload")) || decoded.DataID != "chat" {
		t.Fatalf("payload mismatch: %+v", decoded)
	}
}

func TestJoinChannelFrame(t *testing.T) {
	conn, transport := newTestConnection(t, "1.4.0")

	if err := conn.JoinChannel(10, 3, []string{"sesame"}); err != nil {
		t.Fatalf("JoinChannel failed: %v", err)
	}

	env, err := DecodeEnvelope(transport.Frames()[0])
	if err != nil {
		t.Fatalf("DecodeEnvelope failed: %v", err)
	}
	if env.Type != TypeJoinChannel {
		t.Fatalf("unexpected envelope type %q", env.Type)
	}

	var decoded JoinChannel
	if err := msgpack.Unmarshal(env.Payload, &decoded); err != nil {
		t.Fatalf("payload decode failed: %v", err)
	}
	if decoded.Session != 10 || decoded.ChannelID != 3 || len(decoded.Passwords) != 1 {
		t.Fatalf("payload mismatch: %+v", decoded)
	}
}

func TestSetUserCommentFrame(t *testing.T) {
	conn, transport := newTestConnection(t, "1.4.0")

	if err := conn.SetUserComment(10, "gone fishing"); err != nil {
		t.Fatalf("SetUserComment failed: %v", err)
	}

	env, err := DecodeEnvelope(transport.Frames()[0])
	if err != nil {
		t.Fatalf("DecodeEnvelope failed: %v", err)
	}
	if env.Type != TypeUserComment {
		t.Fatalf("unexpected envelope type %q", env.Type)
	}

	var decoded UserComment
	if err := msgpack.Unmarshal(env.Payload, &decoded); err != nil {
		t.Fatalf("payload decode failed: %v", err)
	}
	if decoded.Session != 10 || decoded.Comment != "gone fishing" {
		t.Fatalf("payload mismatch: %+v", decoded)
	}
}

func TestNewRejectsBadVersion(t *testing.T) {
	_, err := New(Options{Version: "not-a-version", Transport: NewMemoryTransport()})
	if err == nil {
		t.Fatal("expected error for malformed version")
	}
}

func TestNewRequiresTransport(t *testing.T) {
	if _, err := New(Options{Version: "1.4.0"}); err == nil {
		t.Fatal("expected error for missing transport")
	}
}
