// Package eventloop provides the owner-goroutine work queue the plugin API
// dispatches onto.
//
// The client keeps all shared state (user table, channel table, settings)
// confined to a single goroutine, the owner. Code running elsewhere submits
// closures with Post; the owner drains them in submission order. OnOwner
// reports whether the calling goroutine is the owner, which is what the API
// operations use to decide between executing directly and re-posting
// themselves.
//
//	loop := eventloop.New(64)
//	loop.Start()
//	defer loop.Close()
//
//	loop.Post(func() {
//	    // runs on the owner goroutine
//	})
//
// Tasks posted from one goroutine run in the order they were posted. No
// ordering holds between tasks posted from different goroutines.
package eventloop
