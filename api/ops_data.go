package api

import (
	"errors"

	"go.uber.org/zap"

	"github.com/woodgreat/mumble/audio"
	"github.com/woodgreat/mumble/plugin"
	"github.com/woodgreat/mumble/server"
	"github.com/woodgreat/mumble/state"
)

func (a *API) sendData(callerID plugin.ID, connID state.ConnectionID, users []state.UserID, data []byte, dataID string, p *Promise) {
	if !a.loop.OnOwner() {
		a.loop.Post(func() { a.sendData(callerID, connID, users, data, dataID, p) })
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

	if len(data) > MaxDataLength {
		p.Resolve(StatusDataTooBig)
		return
	}
	if len(dataID) > MaxDataIDLength {
		p.Resolve(StatusDataIDTooLong)
		return
	}

	msg := server.PluginData{
		SenderSession: uint32(a.state.LocalSession()),
		Data:          data,
		DataID:        dataID,
	}
	for _, id := range users {
		if _, ok := a.state.User(id); !ok {
			p.Resolve(StatusUserNotFound)
			return
		}
		msg.ReceiverSessions = append(msg.ReceiverSessions, uint32(id))
	}

	if !a.conn.SupportsPluginData() {
		// Relaying plugin messages needs server protocol 1.4.0 or newer.
		p.Resolve(StatusUnsupportedByServer)
		return
	}

	if err := a.conn.SendPluginData(msg); err != nil {
		a.logger.Warn("plugin data send failed",
			zap.String("dataID", dataID),
			zap.Error(err))
		p.Resolve(StatusInternalError)
		return
	}

	p.Resolve(StatusOK)
}

// SendData relays an opaque payload to the given users through the server.
// The payload is capped at MaxDataLength bytes and the identifier at
// MaxDataIDLength bytes.
func (a *API) SendData(callerID plugin.ID, connID state.ConnectionID, users []state.UserID, data []byte, dataID string) Status {
	p := NewPromise()
	a.sendData(callerID, connID, users, data, dataID, p)
	return a.await(p)
}

func (a *API) logMessage(callerID plugin.ID, message string, p *Promise) {
	if !a.loop.OnOwner() {
		a.loop.Post(func() { a.logMessage(callerID, message, p) })
		return
	}

	p.Lock()
	defer p.Unlock()
	if p.CancelledLocked() {
		return
	}

	// Plugin lookup instead of a bare existence check, the sink wants the
	// plugin's name.
	pl, ok := a.plugins.Get(callerID)
	if !ok {
		p.Resolve(StatusInvalidPluginID)
		return
	}

	if a.log != nil {
		a.log.PluginMessage(pl.Name, message)
	}
	a.logger.Info("plugin log",
		zap.String("plugin", pl.Name),
		zap.String("message", message))

	p.Resolve(StatusOK)
}

// Log writes a message to the host log on behalf of a plugin.
func (a *API) Log(callerID plugin.ID, message string) Status {
	p := NewPromise()
	a.logMessage(callerID, message, p)
	return a.await(p)
}

func (a *API) playSample(callerID plugin.ID, path string, volume float32, p *Promise) {
	if !a.loop.OnOwner() {
		a.loop.Post(func() { a.playSample(callerID, path, volume, p) })
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

	if a.audio == nil {
		p.Resolve(StatusAudioNotAvailable)
		return
	}

	if err := a.audio.PlaySample(path, volume); err != nil {
		if errors.Is(err, audio.ErrInvalidSample) {
			p.Resolve(StatusInvalidSample)
		} else {
			p.Resolve(StatusGenericError)
		}
		return
	}

	p.Resolve(StatusOK)
}

// PlaySample plays an audio file at full volume.
func (a *API) PlaySample(callerID plugin.ID, path string) Status {
	return a.PlaySampleVolume(callerID, path, 1.0)
}

// PlaySampleVolume plays an audio file with a volume multiplier.
func (a *API) PlaySampleVolume(callerID plugin.ID, path string, volume float32) Status {
	p := NewPromise()
	a.playSample(callerID, path, volume, p)
	return a.await(p)
}
