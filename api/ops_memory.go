package api

import (
	"github.com/woodgreat/mumble/plugin"
)

// freeMemory releases a curated allocation. It deliberately skips the plugin
// id check so that a plugin being torn down can still return memory that was
// lent to it.
func (a *API) freeMemory(callerID plugin.ID, ptr any, p *Promise) {
	if !a.loop.OnOwner() {
		a.loop.Post(func() { a.freeMemory(callerID, ptr, p) })
		return
	}

	p.Lock()
	defer p.Unlock()
	if p.CancelledLocked() {
		return
	}

	p.Resolve(a.curator.Release(ptr))
}

// FreeMemory returns an allocation previously handed out by one of the
// getters. Freeing the same pointer twice reports StatusPointerNotFound.
func (a *API) FreeMemory(callerID plugin.ID, ptr any) Status {
	p := NewPromise()
	a.freeMemory(callerID, ptr, p)
	return a.await(p)
}
