// Package server models the single active server connection: its identity,
// the version negotiated during the handshake, and the outbound messages the
// plugin API can cause to be sent.
//
// Messages are msgpack-encoded envelopes written through a Transport. The
// websocket transport talks to a live server; the memory transport records
// frames for tests and for the offline demo host.
package server
