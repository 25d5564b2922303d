// Package api implements the plugin-facing call surface of the client: the
// operations plugins invoke, the promise that carries each call's result
// across goroutines, and the curator that tracks memory lent to plugins.
//
// # Call model
//
// Plugins call the blocking wrappers (GetUserName, SendData, ...) from their
// own goroutines. Each wrapper creates a Promise, fires the operation body,
// and waits on the promise with a fixed timeout. The body checks whether it
// is running on the owner goroutine, the only goroutine allowed to touch
// shared client state, and if not, re-posts itself onto the owner's event
// loop and returns immediately. Once on the owner goroutine it takes the
// promise's lock, bails out silently if the wrapper has cancelled the call,
// validates its inputs, does its work, and resolves the promise.
//
// Cancellation is cooperative: a body that has not started yet aborts without
// side effects; a body already executing runs to completion, and the wrapper
// picks up its real result even when the deadline has technically passed.
//
// # Curated memory
//
// Operations that hand back allocated results (name strings, id slices)
// return pointers registered with the Curator. The pointer is the identity
// the plugin passes to FreeMemory when it is done. Entries that are never
// freed are reclaimed when the API shuts down, with one leak diagnostic per
// entry naming the plugin and the originating operation.
//
// # Status codes
//
// Every call returns a Status. Errors never cross the plugin boundary as Go
// errors or panics.
package api
