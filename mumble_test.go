package mumble

import (
	"path/filepath"
	"testing"

	"github.com/woodgreat/mumble/server"
	"github.com/woodgreat/mumble/settings"
	"github.com/woodgreat/mumble/state"
)

func newTestClient(t *testing.T, opts Options) *Client {
	t.Helper()
	c, err := NewClient(opts)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestClientEndToEnd(t *testing.T) {
	c := newTestClient(t, Options{})

	conn, err := c.Connect(server.Options{
		Version:   "1.4.0",
		Digest:    []byte{0xab},
		Transport: server.NewMemoryTransport(),
	})
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	c.State().AddUser(&state.User{Session: 5, Name: "carol"})
	c.State().SetLocalSession(5)

	pl := c.Plugins().Register("demo")
	table := c.API().TableV1_2()

	name, status := table.GetUserName(pl.ID, conn.ID(), 5)
	if !status.OK() {
		t.Fatalf("GetUserName failed: %v", status)
	}
	if *name != "carol" {
		t.Fatalf("expected carol, got %q", *name)
	}
	if s := table.FreeMemory(pl.ID, name); !s.OK() {
		t.Fatalf("FreeMemory failed: %v", s)
	}
}

func TestDisconnectResetsState(t *testing.T) {
	c := newTestClient(t, Options{})

	conn, err := c.Connect(server.Options{
		Version:   "1.4.0",
		Transport: server.NewMemoryTransport(),
	})
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	c.State().AddUser(&state.User{Session: 5, Name: "carol"})
	c.State().SetLocalSession(5)

	c.Disconnect()

	if c.State().UserCount() != 0 {
		t.Fatal("user table survived disconnect")
	}
	if c.State().LocalSession() != 0 {
		t.Fatal("local session survived disconnect")
	}

	pl := c.Plugins().Register("demo")
	if _, s := c.API().GetUserName(pl.ID, conn.ID(), 5); s.OK() {
		t.Fatal("connection-scoped call succeeded after disconnect")
	}
}

func TestSettingsPersistAcrossClients(t *testing.T) {
	dir := t.TempDir()

	c, err := NewClient(Options{DataDir: dir})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	pl := c.Plugins().Register("demo")
	if s := c.API().SetSettingInt(pl.ID, settings.KeyAudioInputVoiceHold, 77); !s.OK() {
		t.Fatalf("SetSettingInt failed: %v", s)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := filepath.Glob(filepath.Join(dir, "settings.yaml")); err != nil {
		t.Fatal(err)
	}

	reopened := newTestClient(t, Options{DataDir: dir})
	pl2 := reopened.Plugins().Register("demo")
	v, s := reopened.API().GetSettingInt(pl2.ID, settings.KeyAudioInputVoiceHold)
	if !s.OK() || v != 77 {
		t.Fatalf("setting did not survive restart: %d/%v", v, s)
	}
}
