package server

import (
	"encoding/hex"
	"fmt"
	"sync/atomic"

	goversion "github.com/hashicorp/go-version"
	"go.uber.org/zap"

	"github.com/woodgreat/mumble/state"
)

// minPluginDataVersion is the first server release that relays plugin data
// messages to their receivers. Older servers drop them on the floor.
var minPluginDataVersion = goversion.Must(goversion.NewVersion("1.4.0"))

var connectionIDs atomic.Int32

// Connection is one established server connection.
type Connection struct {
	id        state.ConnectionID
	version   *goversion.Version
	digest    []byte
	transport Transport
	logger    *zap.Logger
}

// Options configures a new connection.
type Options struct {
	// Version is the server version string negotiated in the handshake.
	Version string

	// Digest is the server certificate digest.
	Digest []byte

	// Transport carries outbound frames. Required.
	Transport Transport

	// Logger receives connection diagnostics.
	Logger *zap.Logger
}

// New wraps an established transport in a connection with a fresh id.
func New(opts Options) (*Connection, error) {
	if opts.Transport == nil {
		return nil, fmt.Errorf("server: Options.Transport is required")
	}
	v, err := goversion.NewVersion(opts.Version)
	if err != nil {
		return nil, fmt.Errorf("server: parse version %q: %w", opts.Version, err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Connection{
		id:        state.ConnectionID(connectionIDs.Add(1)),
		version:   v,
		digest:    opts.Digest,
		transport: opts.Transport,
		logger:    logger,
	}, nil
}

// ID returns the connection id.
func (c *Connection) ID() state.ConnectionID { return c.id }

// Version returns the negotiated server version.
func (c *Connection) Version() *goversion.Version { return c.version }

// Digest returns the server certificate digest in hex.
func (c *Connection) Digest() string { return hex.EncodeToString(c.digest) }

// SupportsPluginData reports whether the server relays plugin data messages.
func (c *Connection) SupportsPluginData() bool {
	return c.version.GreaterThanOrEqual(minPluginDataVersion)
}

// SendPluginData sends a plugin data message.
func (c *Connection) SendPluginData(msg PluginData) error {
	return c.send(TypePluginData, msg)
}

// JoinChannel asks the server to move a user into a channel.
func (c *Connection) JoinChannel(session state.UserID, channel state.ChannelID, passwords []string) error {
	return c.send(TypeJoinChannel, JoinChannel{
		Session:   uint32(session),
		ChannelID: int32(channel),
		Passwords: passwords,
	})
}

// SetUserComment sets a user's comment on the server.
func (c *Connection) SetUserComment(session state.UserID, comment string) error {
	return c.send(TypeUserComment, UserComment{
		Session: uint32(session),
		Comment: comment,
	})
}

func (c *Connection) send(msgType string, payload any) error {
	frame, err := encodeEnvelope(msgType, payload)
	if err != nil {
		return err
	}
	if err := c.transport.Send(frame); err != nil {
		return fmt.Errorf("server: send %s: %w", msgType, err)
	}
	c.logger.Debug("message sent",
		zap.String("type", msgType),
		zap.Int("frame_size", len(frame)))
	return nil
}

// Close closes the transport.
func (c *Connection) Close() error {
	return c.transport.Close()
}
