// Package mumble marshals plugin API calls onto a single owner goroutine and
// curates the memory those calls lend out.
//
// # Architecture Overview
//
// The module is organized into flat packages with distinct responsibilities:
//
//	mumble/          Root package with the Client facade
//	├── api/         Call marshaling: promises, curator, status codes, tables
//	├── eventloop/   The owner goroutine's task queue
//	├── plugin/      Live plugin registry
//	├── state/       Shared user/channel tables and local audio flags
//	├── settings/    Typed settings store with YAML persistence
//	├── blobstore/   Content-addressed store for comments and descriptions
//	├── server/      Connection, wire envelopes and transports
//	└── audio/       Sample playback
//
// # Quick Start
//
// Assemble a client, register a plugin and hand it the function table:
//
//	client, err := mumble.NewClient(mumble.Options{DataDir: dir})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	pl := client.Plugins().Register("my-plugin")
//	table := client.API().TableV1_2()
//
//	name, status := table.GetUserName(pl.ID, connID, userID)
//	if status.OK() {
//	    fmt.Println(*name)
//	    table.FreeMemory(pl.ID, name)
//	}
//
// Every table entry is a synchronous call. The work itself always runs on the
// client's owner goroutine; callers block on a promise bounded by a fixed
// timeout, so a plugin can call in from any goroutine.
package mumble
