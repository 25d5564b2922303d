package api

import (
	"go.uber.org/zap"

	"github.com/woodgreat/mumble/plugin"
	"github.com/woodgreat/mumble/state"
)

func (a *API) requestLocalUserTransmissionMode(callerID plugin.ID, mode state.TransmissionMode, p *Promise) {
	if !a.loop.OnOwner() {
		a.loop.Post(func() { a.requestLocalUserTransmissionMode(callerID, mode, p) })
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

	switch mode {
	case state.TransmitContinuous, state.TransmitVoiceActivation, state.TransmitPushToTalk:
	default:
		p.Resolve(StatusUnknownTransmissionMode)
		return
	}

	a.state.SetTransmit(mode)
	p.Resolve(StatusOK)
}

// RequestLocalUserTransmissionMode switches how the local user transmits
// audio.
func (a *API) RequestLocalUserTransmissionMode(callerID plugin.ID, mode state.TransmissionMode) Status {
	p := NewPromise()
	a.requestLocalUserTransmissionMode(callerID, mode, p)
	return a.await(p)
}

func (a *API) requestUserMove(callerID plugin.ID, connID state.ConnectionID, userID state.UserID, channelID state.ChannelID, password string, p *Promise) {
	if !a.loop.OnOwner() {
		a.loop.Post(func() { a.requestUserMove(callerID, connID, userID, channelID, password, p) })
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
	if _, ok := a.state.Channel(channelID); !ok {
		p.Resolve(StatusChannelNotFound)
		return
	}

	if user.Channel != channelID {
		// No need to bother the server when the user is there already.
		var passwords []string
		if password != "" {
			passwords = []string{password}
		}
		if err := a.conn.JoinChannel(userID, channelID, passwords); err != nil {
			a.logger.Warn("join channel request failed",
				zap.Uint32("user", uint32(userID)),
				zap.Int32("channel", int32(channelID)),
				zap.Error(err))
			p.Resolve(StatusInternalError)
			return
		}
	}

	p.Resolve(StatusOK)
}

// RequestUserMove asks the server to move a user into a channel. Success
// means the request was sent, not that the server granted it.
func (a *API) RequestUserMove(callerID plugin.ID, connID state.ConnectionID, userID state.UserID, channelID state.ChannelID, password string) Status {
	p := NewPromise()
	a.requestUserMove(callerID, connID, userID, channelID, password, p)
	return a.await(p)
}

func (a *API) requestMicrophoneActivationOverride(callerID plugin.ID, activate bool, p *Promise) {
	if !a.loop.OnOwner() {
		a.loop.Post(func() { a.requestMicrophoneActivationOverride(callerID, activate, p) })
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

	a.plugins.SetMicrophoneOverride(activate)
	p.Resolve(StatusOK)
}

// RequestMicrophoneActivationOverride forces the microphone open regardless
// of the configured transmission mode.
func (a *API) RequestMicrophoneActivationOverride(callerID plugin.ID, activate bool) Status {
	p := NewPromise()
	a.requestMicrophoneActivationOverride(callerID, activate, p)
	return a.await(p)
}

func (a *API) requestLocalMute(callerID plugin.ID, connID state.ConnectionID, userID state.UserID, muted bool, p *Promise) {
	if !a.loop.OnOwner() {
		a.loop.Post(func() { a.requestLocalMute(callerID, connID, userID, muted, p) })
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

	if userID == a.state.LocalSession() {
		// The local user mutes themselves via RequestLocalUserMute instead.
		p.Resolve(StatusInvalidMuteTarget)
		return
	}

	user, ok := a.state.User(userID)
	if !ok {
		p.Resolve(StatusUserNotFound)
		return
	}

	user.LocalMute = muted
	p.Resolve(StatusOK)
}

// RequestLocalMute mutes another user locally. The mute never leaves this
// client.
func (a *API) RequestLocalMute(callerID plugin.ID, connID state.ConnectionID, userID state.UserID, muted bool) Status {
	p := NewPromise()
	a.requestLocalMute(callerID, connID, userID, muted, p)
	return a.await(p)
}

func (a *API) requestLocalUserMute(callerID plugin.ID, muted bool, p *Promise) {
	if !a.loop.OnOwner() {
		a.loop.Post(func() { a.requestLocalUserMute(callerID, muted, p) })
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

	a.state.SetSelfMute(muted)
	p.Resolve(StatusOK)
}

// RequestLocalUserMute sets the local user's self-mute state.
func (a *API) RequestLocalUserMute(callerID plugin.ID, muted bool) Status {
	p := NewPromise()
	a.requestLocalUserMute(callerID, muted, p)
	return a.await(p)
}

func (a *API) requestLocalUserDeaf(callerID plugin.ID, deafened bool, p *Promise) {
	if !a.loop.OnOwner() {
		a.loop.Post(func() { a.requestLocalUserDeaf(callerID, deafened, p) })
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

	a.state.SetSelfDeaf(deafened)
	p.Resolve(StatusOK)
}

// RequestLocalUserDeaf sets the local user's self-deafen state. Deafening
// also mutes.
func (a *API) RequestLocalUserDeaf(callerID plugin.ID, deafened bool) Status {
	p := NewPromise()
	a.requestLocalUserDeaf(callerID, deafened, p)
	return a.await(p)
}

func (a *API) requestSetLocalUserComment(callerID plugin.ID, connID state.ConnectionID, comment string, p *Promise) {
	if !a.loop.OnOwner() {
		a.loop.Post(func() { a.requestSetLocalUserComment(callerID, connID, comment, p) })
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

	session := a.state.LocalSession()
	user, ok := a.state.User(session)
	if !ok {
		p.Resolve(StatusUserNotFound)
		return
	}

	if err := a.conn.SetUserComment(session, comment); err != nil {
		a.logger.Warn("set comment request failed",
			zap.Uint32("user", uint32(session)),
			zap.Error(err))
		p.Resolve(StatusInternalError)
		return
	}

	user.Comment = comment
	user.CommentHash = nil
	p.Resolve(StatusOK)
}

// RequestSetLocalUserComment publishes a new comment for the local user.
func (a *API) RequestSetLocalUserComment(callerID plugin.ID, connID state.ConnectionID, comment string) Status {
	p := NewPromise()
	a.requestSetLocalUserComment(callerID, connID, comment, p)
	return a.await(p)
}
