package api

import (
	"time"

	"go.uber.org/zap"

	"github.com/woodgreat/mumble/audio"
	"github.com/woodgreat/mumble/eventloop"
	"github.com/woodgreat/mumble/plugin"
	"github.com/woodgreat/mumble/server"
	"github.com/woodgreat/mumble/settings"
	"github.com/woodgreat/mumble/state"
)

// Limits enforced on the data channel. The wire protocol owns these values.
const (
	MaxDataLength   = 1000
	MaxDataIDLength = 100
)

// DefaultCallTimeout bounds how long a blocking wrapper waits for the owner
// goroutine to service a call.
const DefaultCallTimeout = 800 * time.Millisecond

// Connection is the slice of the active server connection the operations
// consume.
type Connection interface {
	ID() state.ConnectionID
	Digest() string
	SupportsPluginData() bool
	SendPluginData(server.PluginData) error
	JoinChannel(session state.UserID, channel state.ChannelID, passwords []string) error
	SetUserComment(session state.UserID, comment string) error
}

// BlobSource resolves content digests to blob bytes. A digest whose blob has
// not arrived from the server yet reports ok=false.
type BlobSource interface {
	Blob(digest []byte) ([]byte, bool)
}

// LogSink receives plugin log messages for display in the host UI.
type LogSink interface {
	PluginMessage(pluginName, message string)
}

// Config wires the API to its collaborators.
type Config struct {
	// Loop is the owner goroutine every operation executes on. Required.
	Loop *eventloop.Loop

	// Plugins is the live plugin registry. Required.
	Plugins *plugin.Registry

	// State is the shared client state. Required.
	State *state.State

	// Settings is the client settings store. Required.
	Settings *settings.Store

	// Blobs resolves comment/description digests. Optional; without it every
	// unhydrated comment reports an unsynchronized blob.
	Blobs BlobSource

	// Audio plays samples. Nil means no output device is active.
	Audio audio.Output

	// Log receives plugin log lines. Optional.
	Log LogSink

	// CallTimeout overrides DefaultCallTimeout. Zero keeps the default.
	CallTimeout time.Duration

	// Logger receives API diagnostics. Defaults to the package logger.
	Logger *zap.Logger
}

// API is the dispatch layer plugins call into. One instance serves all
// loaded plugins.
type API struct {
	loop     *eventloop.Loop
	curator  *Curator
	plugins  *plugin.Registry
	state    *state.State
	settings *settings.Store
	blobs    BlobSource
	audio    audio.Output
	log      LogSink
	logger   *zap.Logger
	timeout  time.Duration

	// conn is read and written only on the owner goroutine.
	conn Connection
}

// New creates the API. Config.Loop must already be started before plugins
// call in.
func New(cfg Config) *API {
	l := cfg.Logger
	if l == nil {
		l = Logger()
	}
	timeout := cfg.CallTimeout
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	return &API{
		loop:     cfg.Loop,
		curator:  NewCurator(l),
		plugins:  cfg.Plugins,
		state:    cfg.State,
		settings: cfg.Settings,
		blobs:    cfg.Blobs,
		audio:    cfg.Audio,
		log:      cfg.Log,
		logger:   l,
		timeout:  timeout,
	}
}

// Curator exposes the curator for inspection.
func (a *API) Curator() *Curator { return a.curator }

// SetConnection installs the active server connection. It runs on the owner
// goroutine; call it when a connection is established.
func (a *API) SetConnection(conn Connection) {
	a.loop.Run(func() { a.conn = conn })
}

// ClearConnection removes the active connection on disconnect.
func (a *API) ClearConnection() {
	a.loop.Run(func() { a.conn = nil })
}

// Shutdown reclaims every outstanding curated allocation on the owner
// goroutine and returns the number of leaks found. The loop stays usable;
// closing it is the host's business.
func (a *API) Shutdown() int {
	var leaked int
	if !a.loop.Run(func() { leaked = a.curator.Shutdown() }) {
		// The loop is closed, so its goroutine is gone and nothing else
		// can reach the curator; reclaim inline.
		leaked = a.curator.Shutdown()
	}
	return leaked
}

// await implements the blocking wrappers' wait/cancel/recheck sequence. If
// the deadline passes, cancelling may block behind an operation that is
// already executing; when that happens the operation's real result is
// returned instead of a spurious timeout.
func (a *API) await(p *Promise) Status {
	if s, ok := p.Wait(a.timeout); ok {
		return s
	}
	p.Cancel()
	if s, ok := p.Poll(); ok {
		return s
	}
	return StatusRequestTimeout
}

// verifyPlugin resolves the promise with INVALID_PLUGIN_ID and reports false
// when id does not refer to a live plugin.
func (a *API) verifyPlugin(id plugin.ID, p *Promise) bool {
	if !a.plugins.Exists(id) {
		p.Resolve(StatusInvalidPluginID)
		return false
	}
	return true
}

// verifyConnection resolves the promise with CONNECTION_NOT_FOUND and reports
// false unless connID names the active connection.
func (a *API) verifyConnection(connID state.ConnectionID, p *Promise) bool {
	if a.conn == nil || a.conn.ID() != connID {
		p.Resolve(StatusConnectionNotFound)
		return false
	}
	return true
}

// verifySynchronized resolves the promise with CONNECTION_UNSYNCHRONIZED and
// reports false while the initial server state dump has not completed. A
// local session of zero is the synchronization marker.
func (a *API) verifySynchronized(p *Promise) bool {
	if a.state.LocalSession() == 0 {
		p.Resolve(StatusConnectionUnsynchronized)
		return false
	}
	return true
}
