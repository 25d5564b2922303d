package mumble

import (
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/woodgreat/mumble/api"
	"github.com/woodgreat/mumble/audio"
	"github.com/woodgreat/mumble/blobstore"
	"github.com/woodgreat/mumble/eventloop"
	"github.com/woodgreat/mumble/plugin"
	"github.com/woodgreat/mumble/server"
	"github.com/woodgreat/mumble/settings"
	"github.com/woodgreat/mumble/state"
)

const settingsFile = "settings.yaml"

// Options configures a Client.
type Options struct {
	// DataDir holds the blob database and the settings file. Empty keeps
	// everything in memory, with no persistence across restarts.
	DataDir string

	// Audio plays samples on behalf of plugins. Nil means no output device.
	Audio audio.Output

	// Log receives plugin log messages for display.
	Log api.LogSink

	// CallTimeout bounds blocking API calls. Zero keeps the default.
	CallTimeout time.Duration

	// Logger receives diagnostics from every subsystem.
	Logger *zap.Logger
}

// Client bundles the state, settings, blob store, plugin registry and the
// call-marshaling API around one owner goroutine.
type Client struct {
	loop     *eventloop.Loop
	plugins  *plugin.Registry
	state    *state.State
	settings *settings.Store
	blobs    *blobstore.Store
	api      *api.API
	logger   *zap.Logger
	dataDir  string

	conn *server.Connection
}

// NewClient assembles a client and starts its owner goroutine.
func NewClient(opts Options) (*Client, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	blobs, err := blobstore.Open(blobstore.Options{
		Dir:      filepath.Join(opts.DataDir, "blobs"),
		InMemory: opts.DataDir == "",
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("open blob store: %w", err)
	}

	store := settings.NewStore()
	if opts.DataDir != "" {
		if err := store.Load(filepath.Join(opts.DataDir, settingsFile)); err != nil {
			blobs.Close()
			return nil, err
		}
	}

	loop := eventloop.New(256)
	loop.Start()

	c := &Client{
		loop:     loop,
		plugins:  plugin.NewRegistry(),
		state:    state.New(),
		settings: store,
		blobs:    blobs,
		logger:   logger,
		dataDir:  opts.DataDir,
	}
	c.api = api.New(api.Config{
		Loop:        loop,
		Plugins:     c.plugins,
		State:       c.state,
		Settings:    store,
		Blobs:       blobs,
		Audio:       opts.Audio,
		Log:         opts.Log,
		CallTimeout: opts.CallTimeout,
		Logger:      logger,
	})
	return c, nil
}

// API returns the plugin-facing call layer.
func (c *Client) API() *api.API { return c.api }

// Plugins returns the plugin registry.
func (c *Client) Plugins() *plugin.Registry { return c.plugins }

// State returns the shared client state.
func (c *Client) State() *state.State { return c.state }

// Settings returns the settings store.
func (c *Client) Settings() *settings.Store { return c.settings }

// Blobs returns the content-addressed blob store.
func (c *Client) Blobs() *blobstore.Store { return c.blobs }

// Loop returns the owner goroutine's task queue.
func (c *Client) Loop() *eventloop.Loop { return c.loop }

// Connect wraps an established transport in a connection and installs it as
// the active one. Any previous connection is closed first.
func (c *Client) Connect(opts server.Options) (*server.Connection, error) {
	if opts.Logger == nil {
		opts.Logger = c.logger
	}
	conn, err := server.New(opts)
	if err != nil {
		return nil, err
	}
	if c.conn != nil {
		c.Disconnect()
	}
	c.conn = conn
	c.api.SetConnection(conn)
	c.logger.Info("connected",
		zap.Int32("connection", int32(conn.ID())),
		zap.String("server_version", conn.Version().String()))
	return conn, nil
}

// Disconnect closes the active connection and resets the per-connection
// state.
func (c *Client) Disconnect() {
	if c.conn == nil {
		return
	}
	c.api.ClearConnection()
	if err := c.conn.Close(); err != nil {
		c.logger.Warn("close connection", zap.Error(err))
	}
	c.conn = nil
	c.state.Reset()
}

// Close disconnects, reclaims curated memory, persists settings and stops
// the owner goroutine.
func (c *Client) Close() error {
	c.Disconnect()

	if leaked := c.api.Shutdown(); leaked > 0 {
		c.logger.Warn("plugins leaked allocations", zap.Int("count", leaked))
	}
	c.loop.Close()

	var firstErr error
	if c.dataDir != "" {
		if err := c.settings.Save(filepath.Join(c.dataDir, settingsFile)); err != nil {
			firstErr = err
		}
	}
	if err := c.blobs.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
