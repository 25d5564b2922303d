// Package state holds the client's view of the connected server: the user
// and channel tables, the local session, and the local audio flags.
//
// The tables follow a read-write lock discipline: lookups and enumeration
// take the read lock, structural changes (users joining or leaving, channels
// added or removed) take the write lock. Field mutations on individual users
// happen only on the owner goroutine, so they need no extra locking beyond
// the table lock that locates the record.
//
// A local session of zero means the initial state dump from the server has
// not completed yet; API operations that need synchronized state check this
// before touching the tables.
package state
