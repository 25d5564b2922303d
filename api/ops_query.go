package api

import (
	"github.com/woodgreat/mumble/plugin"
	"github.com/woodgreat/mumble/state"
)

func (a *API) getActiveServerConnection(callerID plugin.ID, connID *state.ConnectionID, p *Promise) {
	if !a.loop.OnOwner() {
		a.loop.Post(func() { a.getActiveServerConnection(callerID, connID, p) })
		return
	}

	p.Lock()
	defer p.Unlock()
	if p.CancelledLocked() {
		return
	}

	if !a.verifyPlugin(callerID, p) {
		return
	}

	if a.conn == nil {
		p.Resolve(StatusNoActiveConnection)
		return
	}

	*connID = a.conn.ID()
	p.Resolve(StatusOK)
}

// GetActiveServerConnection reports the id of the current server connection.
func (a *API) GetActiveServerConnection(callerID plugin.ID) (state.ConnectionID, Status) {
	connID := state.InvalidConnection
	p := NewPromise()
	a.getActiveServerConnection(callerID, &connID, p)
	if s := a.await(p); !s.OK() {
		return state.InvalidConnection, s
	}
	return connID, StatusOK
}

func (a *API) isConnectionSynchronized(callerID plugin.ID, connID state.ConnectionID, synced *bool, p *Promise) {
	if !a.loop.OnOwner() {
		a.loop.Post(func() { a.isConnectionSynchronized(callerID, connID, synced, p) })
		return
	}

	p.Lock()
	defer p.Unlock()
	if p.CancelledLocked() {
		return
	}

	if !a.verifyPlugin(callerID, p) || !a.verifyConnection(connID, p) {
		return
	}

	// A local session of zero means the initial server state dump has not
	// completed yet.
	*synced = a.state.LocalSession() != 0
	p.Resolve(StatusOK)
}

// IsConnectionSynchronized reports whether the initial state dump for the
// given connection has completed.
func (a *API) IsConnectionSynchronized(callerID plugin.ID, connID state.ConnectionID) (bool, Status) {
	var synced bool
	p := NewPromise()
	a.isConnectionSynchronized(callerID, connID, &synced, p)
	if s := a.await(p); !s.OK() {
		return false, s
	}
	return synced, StatusOK
}

func (a *API) getLocalUserID(callerID plugin.ID, connID state.ConnectionID, userID *state.UserID, p *Promise) {
	if !a.loop.OnOwner() {
		a.loop.Post(func() { a.getLocalUserID(callerID, connID, userID, p) })
		return
	}

	p.Lock()
	defer p.Unlock()
	if p.CancelledLocked() {
		return
	}

	if !a.verifyPlugin(callerID, p) || !a.verifyConnection(connID, p) || !a.verifySynchronized(p) {
		return
	}

	*userID = a.state.LocalSession()
	p.Resolve(StatusOK)
}

// GetLocalUserID reports the session id of the local user.
func (a *API) GetLocalUserID(callerID plugin.ID, connID state.ConnectionID) (state.UserID, Status) {
	var userID state.UserID
	p := NewPromise()
	a.getLocalUserID(callerID, connID, &userID, p)
	if s := a.await(p); !s.OK() {
		return 0, s
	}
	return userID, StatusOK
}

func (a *API) getUserName(callerID plugin.ID, connID state.ConnectionID, userID state.UserID, name **string, p *Promise) {
	if !a.loop.OnOwner() {
		a.loop.Post(func() { a.getUserName(callerID, connID, userID, name, p) })
		return
	}

	p.Lock()
	defer p.Unlock()
	if p.CancelledLocked() {
		return
	}

	if !a.verifyPlugin(callerID, p) || !a.verifyConnection(connID, p) || !a.verifySynchronized(p) {
		return
	}

	user, ok := a.state.User(userID)
	if !ok {
		p.Resolve(StatusUserNotFound)
		return
	}

	out := new(string)
	*out = user.Name
	if !a.curator.Register(out, defaultDeleter, callerID, "getUserName") {
		p.Resolve(StatusInternalError)
		return
	}

	*name = out
	p.Resolve(StatusOK)
}

// GetUserName returns the display name of a user. The returned pointer is
// curated and must be handed back via FreeMemory.
func (a *API) GetUserName(callerID plugin.ID, connID state.ConnectionID, userID state.UserID) (*string, Status) {
	var name *string
	p := NewPromise()
	a.getUserName(callerID, connID, userID, &name, p)
	if s := a.await(p); !s.OK() {
		return nil, s
	}
	return name, StatusOK
}

func (a *API) getChannelName(callerID plugin.ID, connID state.ConnectionID, channelID state.ChannelID, name **string, p *Promise) {
	if !a.loop.OnOwner() {
		a.loop.Post(func() { a.getChannelName(callerID, connID, channelID, name, p) })
		return
	}

	p.Lock()
	defer p.Unlock()
	if p.CancelledLocked() {
		return
	}

	if !a.verifyPlugin(callerID, p) || !a.verifyConnection(connID, p) || !a.verifySynchronized(p) {
		return
	}

	channel, ok := a.state.Channel(channelID)
	if !ok {
		p.Resolve(StatusChannelNotFound)
		return
	}

	out := new(string)
	*out = channel.Name
	if !a.curator.Register(out, defaultDeleter, callerID, "getChannelName") {
		p.Resolve(StatusInternalError)
		return
	}

	*name = out
	p.Resolve(StatusOK)
}

// GetChannelName returns the name of a channel. The returned pointer is
// curated and must be handed back via FreeMemory.
func (a *API) GetChannelName(callerID plugin.ID, connID state.ConnectionID, channelID state.ChannelID) (*string, Status) {
	var name *string
	p := NewPromise()
	a.getChannelName(callerID, connID, channelID, &name, p)
	if s := a.await(p); !s.OK() {
		return nil, s
	}
	return name, StatusOK
}

func (a *API) getAllUsers(callerID plugin.ID, connID state.ConnectionID, users **[]state.UserID, p *Promise) {
	if !a.loop.OnOwner() {
		a.loop.Post(func() { a.getAllUsers(callerID, connID, users, p) })
		return
	}

	p.Lock()
	defer p.Unlock()
	if p.CancelledLocked() {
		return
	}

	if !a.verifyPlugin(callerID, p) || !a.verifyConnection(connID, p) || !a.verifySynchronized(p) {
		return
	}

	out := new([]state.UserID)
	*out = make([]state.UserID, 0, a.state.UserCount())
	a.state.EachUser(func(u *state.User) bool {
		*out = append(*out, u.Session)
		return true
	})

	if !a.curator.Register(out, defaultDeleter, callerID, "getAllUsers") {
		p.Resolve(StatusInternalError)
		return
	}

	*users = out
	p.Resolve(StatusOK)
}

// GetAllUsers snapshots the session ids of everyone on the server. The
// returned pointer is curated; no ordering is guaranteed.
func (a *API) GetAllUsers(callerID plugin.ID, connID state.ConnectionID) (*[]state.UserID, Status) {
	var users *[]state.UserID
	p := NewPromise()
	a.getAllUsers(callerID, connID, &users, p)
	if s := a.await(p); !s.OK() {
		return nil, s
	}
	return users, StatusOK
}

func (a *API) getAllChannels(callerID plugin.ID, connID state.ConnectionID, channels **[]state.ChannelID, p *Promise) {
	if !a.loop.OnOwner() {
		a.loop.Post(func() { a.getAllChannels(callerID, connID, channels, p) })
		return
	}

	p.Lock()
	defer p.Unlock()
	if p.CancelledLocked() {
		return
	}

	if !a.verifyPlugin(callerID, p) || !a.verifyConnection(connID, p) || !a.verifySynchronized(p) {
		return
	}

	out := new([]state.ChannelID)
	*out = make([]state.ChannelID, 0, a.state.ChannelCount())
	a.state.EachChannel(func(c *state.Channel) bool {
		*out = append(*out, c.ID)
		return true
	})

	if !a.curator.Register(out, defaultDeleter, callerID, "getAllChannels") {
		p.Resolve(StatusInternalError)
		return
	}

	*channels = out
	p.Resolve(StatusOK)
}

// GetAllChannels snapshots every channel id on the server. The returned
// pointer is curated; no ordering is guaranteed.
func (a *API) GetAllChannels(callerID plugin.ID, connID state.ConnectionID) (*[]state.ChannelID, Status) {
	var channels *[]state.ChannelID
	p := NewPromise()
	a.getAllChannels(callerID, connID, &channels, p)
	if s := a.await(p); !s.OK() {
		return nil, s
	}
	return channels, StatusOK
}

func (a *API) getChannelOfUser(callerID plugin.ID, connID state.ConnectionID, userID state.UserID, channelID *state.ChannelID, p *Promise) {
	if !a.loop.OnOwner() {
		a.loop.Post(func() { a.getChannelOfUser(callerID, connID, userID, channelID, p) })
		return
	}

	p.Lock()
	defer p.Unlock()
	if p.CancelledLocked() {
		return
	}

	if !a.verifyPlugin(callerID, p) || !a.verifyConnection(connID, p) || !a.verifySynchronized(p) {
		return
	}

	user, ok := a.state.User(userID)
	if !ok {
		p.Resolve(StatusUserNotFound)
		return
	}

	if _, ok := a.state.Channel(user.Channel); !ok {
		p.Resolve(StatusGenericError)
		return
	}

	*channelID = user.Channel
	p.Resolve(StatusOK)
}

// GetChannelOfUser reports the channel a user currently sits in.
func (a *API) GetChannelOfUser(callerID plugin.ID, connID state.ConnectionID, userID state.UserID) (state.ChannelID, Status) {
	var channelID state.ChannelID
	p := NewPromise()
	a.getChannelOfUser(callerID, connID, userID, &channelID, p)
	if s := a.await(p); !s.OK() {
		return 0, s
	}
	return channelID, StatusOK
}

func (a *API) getUsersInChannel(callerID plugin.ID, connID state.ConnectionID, channelID state.ChannelID, users **[]state.UserID, p *Promise) {
	if !a.loop.OnOwner() {
		a.loop.Post(func() { a.getUsersInChannel(callerID, connID, channelID, users, p) })
		return
	}

	p.Lock()
	defer p.Unlock()
	if p.CancelledLocked() {
		return
	}

	if !a.verifyPlugin(callerID, p) || !a.verifyConnection(connID, p) || !a.verifySynchronized(p) {
		return
	}

	if _, ok := a.state.Channel(channelID); !ok {
		p.Resolve(StatusChannelNotFound)
		return
	}

	out := new([]state.UserID)
	*out = a.state.UsersInChannel(channelID)

	if !a.curator.Register(out, defaultDeleter, callerID, "getUsersInChannel") {
		p.Resolve(StatusInternalError)
		return
	}

	*users = out
	p.Resolve(StatusOK)
}

// GetUsersInChannel snapshots the members of a channel. The returned pointer
// is curated.
func (a *API) GetUsersInChannel(callerID plugin.ID, connID state.ConnectionID, channelID state.ChannelID) (*[]state.UserID, Status) {
	var users *[]state.UserID
	p := NewPromise()
	a.getUsersInChannel(callerID, connID, channelID, &users, p)
	if s := a.await(p); !s.OK() {
		return nil, s
	}
	return users, StatusOK
}

func (a *API) getLocalUserTransmissionMode(callerID plugin.ID, mode *state.TransmissionMode, p *Promise) {
	if !a.loop.OnOwner() {
		a.loop.Post(func() { a.getLocalUserTransmissionMode(callerID, mode, p) })
		return
	}

	p.Lock()
	defer p.Unlock()
	if p.CancelledLocked() {
		return
	}

	if !a.verifyPlugin(callerID, p) {
		return
	}

	*mode = a.state.Transmit()
	p.Resolve(StatusOK)
}

// GetLocalUserTransmissionMode reports how the local user currently
// transmits audio. It needs no connection.
func (a *API) GetLocalUserTransmissionMode(callerID plugin.ID) (state.TransmissionMode, Status) {
	var mode state.TransmissionMode
	p := NewPromise()
	a.getLocalUserTransmissionMode(callerID, &mode, p)
	if s := a.await(p); !s.OK() {
		return 0, s
	}
	return mode, StatusOK
}

func (a *API) isUserLocallyMuted(callerID plugin.ID, connID state.ConnectionID, userID state.UserID, muted *bool, p *Promise) {
	if !a.loop.OnOwner() {
		a.loop.Post(func() { a.isUserLocallyMuted(callerID, connID, userID, muted, p) })
		return
	}

	p.Lock()
	defer p.Unlock()
	if p.CancelledLocked() {
		return
	}

	if !a.verifyPlugin(callerID, p) || !a.verifyConnection(connID, p) || !a.verifySynchronized(p) {
		return
	}

	user, ok := a.state.User(userID)
	if !ok {
		p.Resolve(StatusUserNotFound)
		return
	}

	*muted = user.LocalMute
	p.Resolve(StatusOK)
}

// IsUserLocallyMuted reports whether a user has been muted locally by this
// client.
func (a *API) IsUserLocallyMuted(callerID plugin.ID, connID state.ConnectionID, userID state.UserID) (bool, Status) {
	var muted bool
	p := NewPromise()
	a.isUserLocallyMuted(callerID, connID, userID, &muted, p)
	if s := a.await(p); !s.OK() {
		return false, s
	}
	return muted, StatusOK
}

func (a *API) isLocalUserMuted(callerID plugin.ID, muted *bool, p *Promise) {
	if !a.loop.OnOwner() {
		a.loop.Post(func() { a.isLocalUserMuted(callerID, muted, p) })
		return
	}

	p.Lock()
	defer p.Unlock()
	if p.CancelledLocked() {
		return
	}

	if !a.verifyPlugin(callerID, p) {
		return
	}

	*muted = a.state.SelfMute()
	p.Resolve(StatusOK)
}

// IsLocalUserMuted reports the local user's self-mute state.
func (a *API) IsLocalUserMuted(callerID plugin.ID) (bool, Status) {
	var muted bool
	p := NewPromise()
	a.isLocalUserMuted(callerID, &muted, p)
	if s := a.await(p); !s.OK() {
		return false, s
	}
	return muted, StatusOK
}

func (a *API) isLocalUserDeafened(callerID plugin.ID, deafened *bool, p *Promise) {
	if !a.loop.OnOwner() {
		a.loop.Post(func() { a.isLocalUserDeafened(callerID, deafened, p) })
		return
	}

	p.Lock()
	defer p.Unlock()
	if p.CancelledLocked() {
		return
	}

	if !a.verifyPlugin(callerID, p) {
		return
	}

	*deafened = a.state.SelfDeaf()
	p.Resolve(StatusOK)
}

// IsLocalUserDeafened reports the local user's self-deafen state.
func (a *API) IsLocalUserDeafened(callerID plugin.ID) (bool, Status) {
	var deafened bool
	p := NewPromise()
	a.isLocalUserDeafened(callerID, &deafened, p)
	if s := a.await(p); !s.OK() {
		return false, s
	}
	return deafened, StatusOK
}

func (a *API) getUserHash(callerID plugin.ID, connID state.ConnectionID, userID state.UserID, hash **string, p *Promise) {
	if !a.loop.OnOwner() {
		a.loop.Post(func() { a.getUserHash(callerID, connID, userID, hash, p) })
		return
	}

	p.Lock()
	defer p.Unlock()
	if p.CancelledLocked() {
		return
	}

	if !a.verifyPlugin(callerID, p) || !a.verifyConnection(connID, p) || !a.verifySynchronized(p) {
		return
	}

	user, ok := a.state.User(userID)
	if !ok {
		p.Resolve(StatusUserNotFound)
		return
	}

	out := new(string)
	*out = user.Hash
	if !a.curator.Register(out, defaultDeleter, callerID, "getUserHash") {
		p.Resolve(StatusInternalError)
		return
	}

	*hash = out
	p.Resolve(StatusOK)
}

// GetUserHash returns the hex certificate hash of a user. The returned
// pointer is curated.
func (a *API) GetUserHash(callerID plugin.ID, connID state.ConnectionID, userID state.UserID) (*string, Status) {
	var hash *string
	p := NewPromise()
	a.getUserHash(callerID, connID, userID, &hash, p)
	if s := a.await(p); !s.OK() {
		return nil, s
	}
	return hash, StatusOK
}

func (a *API) getServerHash(callerID plugin.ID, connID state.ConnectionID, hash **string, p *Promise) {
	if !a.loop.OnOwner() {
		a.loop.Post(func() { a.getServerHash(callerID, connID, hash, p) })
		return
	}

	p.Lock()
	defer p.Unlock()
	if p.CancelledLocked() {
		return
	}

	if !a.verifyPlugin(callerID, p) || !a.verifyConnection(connID, p) || !a.verifySynchronized(p) {
		return
	}

	out := new(string)
	*out = a.conn.Digest()
	if !a.curator.Register(out, defaultDeleter, callerID, "getServerHash") {
		p.Resolve(StatusInternalError)
		return
	}

	*hash = out
	p.Resolve(StatusOK)
}

// GetServerHash returns the hex digest of the server's certificate. The
// returned pointer is curated.
func (a *API) GetServerHash(callerID plugin.ID, connID state.ConnectionID) (*string, Status) {
	var hash *string
	p := NewPromise()
	a.getServerHash(callerID, connID, &hash, p)
	if s := a.await(p); !s.OK() {
		return nil, s
	}
	return hash, StatusOK
}

func (a *API) getUserComment(callerID plugin.ID, connID state.ConnectionID, userID state.UserID, comment **string, p *Promise) {
	if !a.loop.OnOwner() {
		a.loop.Post(func() { a.getUserComment(callerID, connID, userID, comment, p) })
		return
	}

	p.Lock()
	defer p.Unlock()
	if p.CancelledLocked() {
		return
	}

	if !a.verifyPlugin(callerID, p) || !a.verifyConnection(connID, p) || !a.verifySynchronized(p) {
		return
	}

	user, ok := a.state.User(userID)
	if !ok {
		p.Resolve(StatusUserNotFound)
		return
	}

	if user.Comment == "" && len(user.CommentHash) > 0 {
		if blob, ok := a.blob(user.CommentHash); ok {
			user.Comment = string(blob)
		} else {
			// The comment body has not arrived from the server yet.
			p.Resolve(StatusUnsynchronizedBlob)
			return
		}
	}

	out := new(string)
	*out = user.Comment
	if !a.curator.Register(out, defaultDeleter, callerID, "getUserComment") {
		p.Resolve(StatusInternalError)
		return
	}

	*comment = out
	p.Resolve(StatusOK)
}

// GetUserComment returns a user's comment, hydrating it from the blob store
// when only its hash is known. The returned pointer is curated.
func (a *API) GetUserComment(callerID plugin.ID, connID state.ConnectionID, userID state.UserID) (*string, Status) {
	var comment *string
	p := NewPromise()
	a.getUserComment(callerID, connID, userID, &comment, p)
	if s := a.await(p); !s.OK() {
		return nil, s
	}
	return comment, StatusOK
}

func (a *API) getChannelDescription(callerID plugin.ID, connID state.ConnectionID, channelID state.ChannelID, description **string, p *Promise) {
	if !a.loop.OnOwner() {
		a.loop.Post(func() { a.getChannelDescription(callerID, connID, channelID, description, p) })
		return
	}

	p.Lock()
	defer p.Unlock()
	if p.CancelledLocked() {
		return
	}

	if !a.verifyPlugin(callerID, p) || !a.verifyConnection(connID, p) || !a.verifySynchronized(p) {
		return
	}

	channel, ok := a.state.Channel(channelID)
	if !ok {
		p.Resolve(StatusChannelNotFound)
		return
	}

	if channel.Description == "" && len(channel.DescriptionHash) > 0 {
		if blob, ok := a.blob(channel.DescriptionHash); ok {
			channel.Description = string(blob)
		} else {
			// The description body has not arrived from the server yet.
			p.Resolve(StatusUnsynchronizedBlob)
			return
		}
	}

	out := new(string)
	*out = channel.Description
	if !a.curator.Register(out, defaultDeleter, callerID, "getChannelDescription") {
		p.Resolve(StatusInternalError)
		return
	}

	*description = out
	p.Resolve(StatusOK)
}

// GetChannelDescription returns a channel's description, hydrating it from
// the blob store when only its hash is known. The returned pointer is
// curated.
func (a *API) GetChannelDescription(callerID plugin.ID, connID state.ConnectionID, channelID state.ChannelID) (*string, Status) {
	var description *string
	p := NewPromise()
	a.getChannelDescription(callerID, connID, channelID, &description, p)
	if s := a.await(p); !s.OK() {
		return nil, s
	}
	return description, StatusOK
}

func (a *API) findUserByName(callerID plugin.ID, connID state.ConnectionID, name string, userID *state.UserID, p *Promise) {
	if !a.loop.OnOwner() {
		a.loop.Post(func() { a.findUserByName(callerID, connID, name, userID, p) })
		return
	}

	p.Lock()
	defer p.Unlock()
	if p.CancelledLocked() {
		return
	}

	if !a.verifyPlugin(callerID, p) || !a.verifyConnection(connID, p) || !a.verifySynchronized(p) {
		return
	}

	found := false
	a.state.EachUser(func(u *state.User) bool {
		if u.Name == name {
			*userID = u.Session
			found = true
			return false
		}
		return true
	})

	if !found {
		p.Resolve(StatusUserNotFound)
		return
	}
	p.Resolve(StatusOK)
}

// FindUserByName resolves a display name to a session id.
func (a *API) FindUserByName(callerID plugin.ID, connID state.ConnectionID, name string) (state.UserID, Status) {
	var userID state.UserID
	p := NewPromise()
	a.findUserByName(callerID, connID, name, &userID, p)
	if s := a.await(p); !s.OK() {
		return 0, s
	}
	return userID, StatusOK
}

func (a *API) findChannelByName(callerID plugin.ID, connID state.ConnectionID, name string, channelID *state.ChannelID, p *Promise) {
	if !a.loop.OnOwner() {
		a.loop.Post(func() { a.findChannelByName(callerID, connID, name, channelID, p) })
		return
	}

	p.Lock()
	defer p.Unlock()
	if p.CancelledLocked() {
		return
	}

	if !a.verifyPlugin(callerID, p) || !a.verifyConnection(connID, p) || !a.verifySynchronized(p) {
		return
	}

	found := false
	a.state.EachChannel(func(c *state.Channel) bool {
		if c.Name == name {
			*channelID = c.ID
			found = true
			return false
		}
		return true
	})

	if !found {
		p.Resolve(StatusChannelNotFound)
		return
	}
	p.Resolve(StatusOK)
}

// FindChannelByName resolves a channel name to its id.
func (a *API) FindChannelByName(callerID plugin.ID, connID state.ConnectionID, name string) (state.ChannelID, Status) {
	var channelID state.ChannelID
	p := NewPromise()
	a.findChannelByName(callerID, connID, name, &channelID, p)
	if s := a.await(p); !s.OK() {
		return 0, s
	}
	return channelID, StatusOK
}

// blob looks up a digest in the configured blob source.
func (a *API) blob(digest []byte) ([]byte, bool) {
	if a.blobs == nil {
		return nil, false
	}
	return a.blobs.Blob(digest)
}
