package api

import (
	"errors"

	"github.com/woodgreat/mumble/plugin"
	"github.com/woodgreat/mumble/settings"
)

// settingsStatus maps store errors onto boundary status codes.
func settingsStatus(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, settings.ErrUnknownKey):
		return StatusUnknownSettingsKey
	case errors.Is(err, settings.ErrWrongType):
		return StatusWrongSettingsType
	default:
		return StatusGenericError
	}
}

func (a *API) getSettingBool(callerID plugin.ID, key settings.Key, out *bool, p *Promise) {
	if !a.loop.OnOwner() {
		a.loop.Post(func() { a.getSettingBool(callerID, key, out, p) })
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

	v, err := a.settings.GetBool(key)
	if err != nil {
		p.Resolve(settingsStatus(err))
		return
	}
	*out = v
	p.Resolve(StatusOK)
}

// GetSettingBool reads a boolean setting.
func (a *API) GetSettingBool(callerID plugin.ID, key settings.Key) (bool, Status) {
	var out bool
	p := NewPromise()
	a.getSettingBool(callerID, key, &out, p)
	if s := a.await(p); !s.OK() {
		return false, s
	}
	return out, StatusOK
}

func (a *API) getSettingInt(callerID plugin.ID, key settings.Key, out *int64, p *Promise) {
	if !a.loop.OnOwner() {
		a.loop.Post(func() { a.getSettingInt(callerID, key, out, p) })
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

	v, err := a.settings.GetInt(key)
	if err != nil {
		p.Resolve(settingsStatus(err))
		return
	}
	*out = v
	p.Resolve(StatusOK)
}

// GetSettingInt reads an integer setting.
func (a *API) GetSettingInt(callerID plugin.ID, key settings.Key) (int64, Status) {
	var out int64
	p := NewPromise()
	a.getSettingInt(callerID, key, &out, p)
	if s := a.await(p); !s.OK() {
		return 0, s
	}
	return out, StatusOK
}

func (a *API) getSettingDouble(callerID plugin.ID, key settings.Key, out *float64, p *Promise) {
	if !a.loop.OnOwner() {
		a.loop.Post(func() { a.getSettingDouble(callerID, key, out, p) })
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

	v, err := a.settings.GetFloat(key)
	if err != nil {
		p.Resolve(settingsStatus(err))
		return
	}
	*out = v
	p.Resolve(StatusOK)
}

// GetSettingDouble reads a floating-point setting.
func (a *API) GetSettingDouble(callerID plugin.ID, key settings.Key) (float64, Status) {
	var out float64
	p := NewPromise()
	a.getSettingDouble(callerID, key, &out, p)
	if s := a.await(p); !s.OK() {
		return 0, s
	}
	return out, StatusOK
}

func (a *API) getSettingString(callerID plugin.ID, key settings.Key, out **string, p *Promise) {
	if !a.loop.OnOwner() {
		a.loop.Post(func() { a.getSettingString(callerID, key, out, p) })
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

	v, err := a.settings.GetString(key)
	if err != nil {
		p.Resolve(settingsStatus(err))
		return
	}

	value := new(string)
	*value = v
	if !a.curator.Register(value, defaultDeleter, callerID, "getSettingString") {
		p.Resolve(StatusInternalError)
		return
	}

	*out = value
	p.Resolve(StatusOK)
}

// GetSettingString reads a string setting. The returned pointer is curated
// and must be handed back via FreeMemory.
func (a *API) GetSettingString(callerID plugin.ID, key settings.Key) (*string, Status) {
	var out *string
	p := NewPromise()
	a.getSettingString(callerID, key, &out, p)
	if s := a.await(p); !s.OK() {
		return nil, s
	}
	return out, StatusOK
}

func (a *API) setSetting(callerID plugin.ID, key settings.Key, value settings.Value, p *Promise) {
	if !a.loop.OnOwner() {
		a.loop.Post(func() { a.setSetting(callerID, key, value, p) })
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

	p.Resolve(settingsStatus(a.settings.Set(key, value)))
}

// SetSettingBool writes a boolean setting.
func (a *API) SetSettingBool(callerID plugin.ID, key settings.Key, value bool) Status {
	p := NewPromise()
	a.setSetting(callerID, key, settings.Bool(value), p)
	return a.await(p)
}

// SetSettingInt writes an integer setting.
func (a *API) SetSettingInt(callerID plugin.ID, key settings.Key, value int64) Status {
	p := NewPromise()
	a.setSetting(callerID, key, settings.Int(value), p)
	return a.await(p)
}

// SetSettingDouble writes a floating-point setting.
func (a *API) SetSettingDouble(callerID plugin.ID, key settings.Key, value float64) Status {
	p := NewPromise()
	a.setSetting(callerID, key, settings.Float(value), p)
	return a.await(p)
}

// SetSettingString writes a string setting.
func (a *API) SetSettingString(callerID plugin.ID, key settings.Key, value string) Status {
	p := NewPromise()
	a.setSetting(callerID, key, settings.String(value), p)
	return a.await(p)
}
