// Package settings stores the client settings plugins may read and write
// through the API.
//
// The store is a single untyped value table with runtime type tags: each key
// holds a Value carrying one of {bool, int64, float64, string}. The typed
// accessors match on the tag and report ErrWrongType when the stored variant
// does not match the accessor, and ErrUnknownKey for unrecognized keys
// (including the KeyInvalid sentinel). A key's kind is fixed by its seeded
// default; Set never changes a key's kind.
//
// Persistence is a YAML round trip keyed by the settings names.
package settings
