package server

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Message type tags carried in the envelope.
const (
	TypePluginData  = "plugin-data"
	TypeJoinChannel = "join-channel"
	TypeUserComment = "user-comment"
	TypeUserState   = "user-state"
)

// Envelope frames every outbound message.
type Envelope struct {
	Type    string `msgpack:"type"`
	Payload []byte `msgpack:"payload"`
}

// PluginData relays an opaque payload to other users' plugins. The server
// forwards it to each receiver session.
type PluginData struct {
	SenderSession    uint32   `msgpack:"sender_session"`
	ReceiverSessions []uint32 `msgpack:"receiver_sessions"`
	Data             []byte   `msgpack:"data"`
	DataID           string   `msgpack:"data_id"`
}

// JoinChannel asks the server to move a user into a channel.
type JoinChannel struct {
	Session   uint32   `msgpack:"session"`
	ChannelID int32    `msgpack:"channel_id"`
	Passwords []string `msgpack:"passwords,omitempty"`
}

// UserComment sets a user's comment.
type UserComment struct {
	Session uint32 `msgpack:"session"`
	Comment string `msgpack:"comment"`
}

// encodeEnvelope packs a payload into a typed envelope frame.
func encodeEnvelope(msgType string, payload any) ([]byte, error) {
	body, err := msgpack.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("server: encode %s payload: %w", msgType, err)
	}
	frame, err := msgpack.Marshal(Envelope{Type: msgType, Payload: body})
	if err != nil {
		return nil, fmt.Errorf("server: encode %s envelope: %w", msgType, err)
	}
	return frame, nil
}

// DecodeEnvelope unpacks a frame into its envelope. Payload decoding is up to
// the caller, keyed on Type.
func DecodeEnvelope(frame []byte) (Envelope, error) {
	var env Envelope
	if err := msgpack.Unmarshal(frame, &env); err != nil {
		return Envelope{}, fmt.Errorf("server: decode envelope: %w", err)
	}
	return env, nil
}
