package state

import "testing"

func TestNewSeedsRootChannel(t *testing.T) {
	s := New()

	root, ok := s.Channel(0)
	if !ok {
		t.Fatal("root channel missing")
	}
	if root.Name != "Root" {
		t.Fatalf("unexpected root channel name %q", root.Name)
	}
	if s.ChannelCount() != 1 {
		t.Fatalf("expected 1 channel, got %d", s.ChannelCount())
	}
}

func TestUserTable(t *testing.T) {
	s := New()
	s.AddUser(&User{Session: 1, Name: "alice"})
	s.AddUser(&User{Session: 2, Name: "bob"})

	if s.UserCount() != 2 {
		t.Fatalf("expected 2 users, got %d", s.UserCount())
	}

	u, ok := s.User(1)
	if !ok || u.Name != "alice" {
		t.Fatalf("lookup failed: %v %v", u, ok)
	}

	s.RemoveUser(1)
	if _, ok := s.User(1); ok {
		t.Fatal("removed user still present")
	}
	if s.UserCount() != 1 {
		t.Fatalf("expected 1 user after removal, got %d", s.UserCount())
	}
}

func TestEachUserEarlyStop(t *testing.T) {
	s := New()
	s.AddUser(&User{Session: 1})
	s.AddUser(&User{Session: 2})
	s.AddUser(&User{Session: 3})

	seen := 0
	s.EachUser(func(*User) bool {
		seen++
		return false
	})
	if seen != 1 {
		t.Fatalf("expected iteration to stop after 1, saw %d", seen)
	}
}

func TestUsersInChannel(t *testing.T) {
	s := New()
	s.AddChannel(&Channel{ID: 5, Name: "den"})
	s.AddUser(&User{Session: 1, Channel: 5})
	s.AddUser(&User{Session: 2, Channel: 0})
	s.AddUser(&User{Session: 3, Channel: 5})

	members := s.UsersInChannel(5)
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %v", members)
	}
	for _, id := range members {
		if id != 1 && id != 3 {
			t.Fatalf("unexpected member %d", id)
		}
	}
}

func TestDeafenImpliesMute(t *testing.T) {
	s := New()

	s.SetSelfDeaf(true)
	if !s.SelfDeaf() || !s.SelfMute() {
		t.Fatal("deafening must also mute")
	}

	s.SetSelfDeaf(false)
	if s.SelfDeaf() {
		t.Fatal("still deafened")
	}
	if !s.SelfMute() {
		t.Fatal("undeafening must not silently unmute")
	}
}

func TestResetClearsEverything(t *testing.T) {
	s := New()
	s.AddUser(&User{Session: 1})
	s.AddChannel(&Channel{ID: 9})
	s.SetLocalSession(1)

	s.Reset()

	if s.UserCount() != 0 {
		t.Fatal("users survived reset")
	}
	if s.LocalSession() != 0 {
		t.Fatal("local session survived reset")
	}
	if _, ok := s.Channel(0); !ok {
		t.Fatal("root channel missing after reset")
	}
	if s.ChannelCount() != 1 {
		t.Fatalf("expected only the root channel after reset, got %d", s.ChannelCount())
	}
}
