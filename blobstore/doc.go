// Package blobstore is the content-addressed store for server-provided
// blobs: user comments, channel descriptions, avatars.
//
// The server announces large texts by SHA-1 digest and ships the bytes
// separately; until the bytes arrive, the digest has no blob here and readers
// must surface that as "not yet synchronized" rather than as an empty string.
// Keys are always the SHA-1 of the stored value, so writes are idempotent and
// a fetched blob can be verified against the digest that announced it.
//
// Storage is BadgerDB; the in-memory mode backs tests and the offline demo
// host.
package blobstore
