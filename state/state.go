package state

import "sync"

// UserID is a server-assigned session id. Session 0 is never a valid user.
type UserID uint32

// ChannelID identifies a channel. The root channel is 0; negative values are
// never valid.
type ChannelID int32

// ConnectionID identifies a server connection. -1 means no connection.
type ConnectionID int32

// InvalidConnection is the id reported while no connection exists.
const InvalidConnection ConnectionID = -1

// TransmissionMode selects how the local user's voice transmission is
// triggered.
type TransmissionMode uint8

const (
	TransmitContinuous TransmissionMode = iota
	TransmitVoiceActivation
	TransmitPushToTalk
)

// User is one entry in the user table.
type User struct {
	Session     UserID
	Name        string
	Hash        string
	Channel     ChannelID
	Comment     string
	CommentHash []byte
	LocalMute   bool
}

// Channel is one entry in the channel table.
type Channel struct {
	ID              ChannelID
	Name            string
	Description     string
	DescriptionHash []byte
}

// State is the shared client state the API operates on.
type State struct {
	mu       sync.RWMutex
	users    map[UserID]*User
	channels map[ChannelID]*Channel

	localSession UserID
	selfMute     bool
	selfDeaf     bool
	transmit     TransmissionMode
}

// New creates empty state with the root channel present.
func New() *State {
	s := &State{
		users:    make(map[UserID]*User),
		channels: make(map[ChannelID]*Channel),
	}
	s.channels[0] = &Channel{ID: 0, Name: "Root"}
	return s
}

// AddUser inserts or replaces a user record.
func (s *State) AddUser(u *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.Session] = u
}

// RemoveUser removes a user record.
func (s *State) RemoveUser(id UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

// User looks up a user by session id.
func (s *State) User(id UserID) (*User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u, ok
}

// EachUser calls fn for every user under the read lock. Returning false stops
// the walk.
func (s *State) EachUser(fn func(*User) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if !fn(u) {
			return
		}
	}
}

// UserCount returns the number of users in the table.
func (s *State) UserCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// AddChannel inserts or replaces a channel record.
func (s *State) AddChannel(c *Channel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels[c.ID] = c
}

// RemoveChannel removes a channel record.
func (s *State) RemoveChannel(id ChannelID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.channels, id)
}

// Channel looks up a channel by id.
func (s *State) Channel(id ChannelID) (*Channel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.channels[id]
	return c, ok
}

// EachChannel calls fn for every channel under the read lock. Returning false
// stops the walk.
func (s *State) EachChannel(fn func(*Channel) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.channels {
		if !fn(c) {
			return
		}
	}
}

// ChannelCount returns the number of channels in the table.
func (s *State) ChannelCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.channels)
}

// UsersInChannel returns the sessions of every user currently in the channel.
func (s *State) UsersInChannel(id ChannelID) []UserID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []UserID
	for _, u := range s.users {
		if u.Channel == id {
			out = append(out, u.Session)
		}
	}
	return out
}

// LocalSession returns the local user's session, or zero while the initial
// server synchronization has not completed.
func (s *State) LocalSession() UserID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.localSession
}

// SetLocalSession records the local session. Setting a non-zero session marks
// the connection as synchronized; resetting to zero marks it unsynchronized.
func (s *State) SetLocalSession(id UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.localSession = id
}

// SelfMute reports the local user's mute flag.
func (s *State) SelfMute() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selfMute
}

// SetSelfMute sets the local user's mute flag. Muting is independent of
// deafening, but undeafening is expected to be accompanied by unmuting at the
// caller's discretion, as in the host UI.
func (s *State) SetSelfMute(mute bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selfMute = mute
}

// SelfDeaf reports the local user's deafen flag.
func (s *State) SelfDeaf() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selfDeaf
}

// SetSelfDeaf sets the local user's deafen flag. Deafening also mutes.
func (s *State) SetSelfDeaf(deaf bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selfDeaf = deaf
	if deaf {
		s.selfMute = true
	}
}

// Transmit returns the local transmission mode.
func (s *State) Transmit() TransmissionMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transmit
}

// SetTransmit sets the local transmission mode.
func (s *State) SetTransmit(mode TransmissionMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transmit = mode
}

// Reset clears the per-connection tables and the local session. The audio
// flags are user preferences and survive a reconnect.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = make(map[UserID]*User)
	s.channels = map[ChannelID]*Channel{0: {ID: 0, Name: "Root"}}
	s.localSession = 0
}
