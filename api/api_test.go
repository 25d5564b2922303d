package api

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/woodgreat/mumble/audio"
	"github.com/woodgreat/mumble/eventloop"
	"github.com/woodgreat/mumble/plugin"
	"github.com/woodgreat/mumble/server"
	"github.com/woodgreat/mumble/settings"
	"github.com/woodgreat/mumble/state"
)

type fakeConn struct {
	id           state.ConnectionID
	digest       string
	supportsData bool
	sendErr      error

	sent     []server.PluginData
	joins    []server.JoinChannel
	comments []server.UserComment
}

func (c *fakeConn) ID() state.ConnectionID   { return c.id }
func (c *fakeConn) Digest() string           { return c.digest }
func (c *fakeConn) SupportsPluginData() bool { return c.supportsData }

func (c *fakeConn) SendPluginData(msg server.PluginData) error {
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, msg)
	return nil
}

func (c *fakeConn) JoinChannel(session state.UserID, channel state.ChannelID, passwords []string) error {
	c.joins = append(c.joins, server.JoinChannel{Session: uint32(session), ChannelID: int32(channel), Passwords: passwords})
	return nil
}

func (c *fakeConn) SetUserComment(session state.UserID, comment string) error {
	c.comments = append(c.comments, server.UserComment{Session: uint32(session), Comment: comment})
	return nil
}

type mapBlobs map[string][]byte

func (m mapBlobs) Blob(digest []byte) ([]byte, bool) {
	b, ok := m[string(digest)]
	return b, ok
}

type recordSink struct {
	messages []string
}

func (s *recordSink) PluginMessage(pluginName, message string) {
	s.messages = append(s.messages, pluginName+": "+message)
}

type fakeAudio struct {
	err    error
	played []string
}

func (a *fakeAudio) PlaySample(path string, volume float32) error {
	if a.err != nil {
		return a.err
	}
	a.played = append(a.played, path)
	return nil
}

type fixture struct {
	api   *API
	loop  *eventloop.Loop
	reg   *plugin.Registry
	st    *state.State
	store *settings.Store
	conn  *fakeConn
	blobs mapBlobs
	sink  *recordSink
	audio *fakeAudio
	pid   plugin.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	loop := eventloop.New(64)
	loop.Start()
	t.Cleanup(loop.Close)

	reg := plugin.NewRegistry()
	pl := reg.Register("positional-audio")

	st := state.New()
	st.AddChannel(&state.Channel{ID: 1, Name: "Lobby"})
	st.AddUser(&state.User{Session: 10, Name: "alice", Hash: "aa11", Channel: 0})
	st.AddUser(&state.User{Session: 20, Name: "bob", Hash: "bb22", Channel: 1})
	st.SetLocalSession(10)

	f := &fixture{
		loop:  loop,
		reg:   reg,
		st:    st,
		store: settings.NewStore(),
		conn:  &fakeConn{id: 7, digest: "cafe", supportsData: true},
		blobs: mapBlobs{},
		sink:  &recordSink{},
		audio: &fakeAudio{},
		pid:   pl.ID,
	}
	f.api = New(Config{
		Loop:        loop,
		Plugins:     reg,
		State:       st,
		Settings:    f.store,
		Blobs:       f.blobs,
		Audio:       f.audio,
		Log:         f.sink,
		Logger:      zap.NewNop(),
		CallTimeout: time.Second,
	})
	f.api.SetConnection(f.conn)
	return f
}

func TestGetUserNameRoundTrip(t *testing.T) {
	f := newFixture(t)

	name, s := f.api.GetUserName(f.pid, 7, 20)
	if !s.OK() {
		t.Fatalf("GetUserName failed: %v", s)
	}
	if *name != "bob" {
		t.Fatalf("expected bob, got %q", *name)
	}

	if s := f.api.FreeMemory(f.pid, name); s != StatusOK {
		t.Fatalf("FreeMemory failed: %v", s)
	}
	if s := f.api.FreeMemory(f.pid, name); s != StatusPointerNotFound {
		t.Fatalf("expected StatusPointerNotFound on double free, got %v", s)
	}
}

func TestFreeMemorySkipsPluginCheck(t *testing.T) {
	f := newFixture(t)

	name, s := f.api.GetUserName(f.pid, 7, 10)
	if !s.OK() {
		t.Fatalf("GetUserName failed: %v", s)
	}

	// A bogus caller id can still return memory.
	if s := f.api.FreeMemory(9999, name); s != StatusOK {
		t.Fatalf("expected free to succeed for unknown plugin, got %v", s)
	}
}

func TestFreeMemoryRejectsUnhashableValue(t *testing.T) {
	f := newFixture(t)

	users, s := f.api.GetAllUsers(f.pid, 7)
	if !s.OK() {
		t.Fatalf("GetAllUsers failed: %v", s)
	}

	// Handing back the slice value instead of the curated pointer must not
	// crash the owner goroutine.
	if s := f.api.FreeMemory(f.pid, *users); s != StatusPointerNotFound {
		t.Fatalf("expected StatusPointerNotFound for slice value, got %v", s)
	}
	if s := f.api.FreeMemory(f.pid, nil); s != StatusPointerNotFound {
		t.Fatalf("expected StatusPointerNotFound for nil, got %v", s)
	}

	if s := f.api.FreeMemory(f.pid, users); s != StatusOK {
		t.Fatalf("FreeMemory failed for the real pointer: %v", s)
	}
}

func TestInvalidPluginID(t *testing.T) {
	f := newFixture(t)

	if _, s := f.api.GetUserName(9999, 7, 10); s != StatusInvalidPluginID {
		t.Fatalf("GetUserName: expected StatusInvalidPluginID, got %v", s)
	}
	if _, s := f.api.GetActiveServerConnection(9999); s != StatusInvalidPluginID {
		t.Fatalf("GetActiveServerConnection: expected StatusInvalidPluginID, got %v", s)
	}
	if s := f.api.RequestLocalUserMute(9999, true); s != StatusInvalidPluginID {
		t.Fatalf("RequestLocalUserMute: expected StatusInvalidPluginID, got %v", s)
	}
	if s := f.api.Log(9999, "hello"); s != StatusInvalidPluginID {
		t.Fatalf("Log: expected StatusInvalidPluginID, got %v", s)
	}
	if _, s := f.api.GetSettingInt(9999, settings.KeyAudioInputVoiceHold); s != StatusInvalidPluginID {
		t.Fatalf("GetSettingInt: expected StatusInvalidPluginID, got %v", s)
	}
}

func TestConnectionValidation(t *testing.T) {
	f := newFixture(t)

	// Wrong connection id.
	if _, s := f.api.GetUserName(f.pid, 42, 10); s != StatusConnectionNotFound {
		t.Fatalf("expected StatusConnectionNotFound, got %v", s)
	}

	// No connection at all.
	f.api.ClearConnection()
	if _, s := f.api.GetUserName(f.pid, 7, 10); s != StatusConnectionNotFound {
		t.Fatalf("expected StatusConnectionNotFound after disconnect, got %v", s)
	}
	if _, s := f.api.GetActiveServerConnection(f.pid); s != StatusNoActiveConnection {
		t.Fatalf("expected StatusNoActiveConnection, got %v", s)
	}
}

func TestConnectionUnsynchronized(t *testing.T) {
	f := newFixture(t)
	f.st.SetLocalSession(0)

	if _, s := f.api.GetLocalUserID(f.pid, 7); s != StatusConnectionUnsynchronized {
		t.Fatalf("expected StatusConnectionUnsynchronized, got %v", s)
	}

	// isConnectionSynchronized itself must still answer.
	synced, s := f.api.IsConnectionSynchronized(f.pid, 7)
	if !s.OK() {
		t.Fatalf("IsConnectionSynchronized failed: %v", s)
	}
	if synced {
		t.Fatal("expected unsynchronized connection")
	}
}

func TestGetActiveServerConnection(t *testing.T) {
	f := newFixture(t)

	connID, s := f.api.GetActiveServerConnection(f.pid)
	if !s.OK() {
		t.Fatalf("GetActiveServerConnection failed: %v", s)
	}
	if connID != 7 {
		t.Fatalf("expected connection 7, got %d", connID)
	}
}

func TestEnumeration(t *testing.T) {
	f := newFixture(t)

	users, s := f.api.GetAllUsers(f.pid, 7)
	if !s.OK() {
		t.Fatalf("GetAllUsers failed: %v", s)
	}
	if len(*users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(*users))
	}

	channels, s := f.api.GetAllChannels(f.pid, 7)
	if !s.OK() {
		t.Fatalf("GetAllChannels failed: %v", s)
	}
	if len(*channels) != 2 {
		t.Fatalf("expected 2 channels, got %d", len(*channels))
	}

	members, s := f.api.GetUsersInChannel(f.pid, 7, 1)
	if !s.OK() {
		t.Fatalf("GetUsersInChannel failed: %v", s)
	}
	if len(*members) != 1 || (*members)[0] != 20 {
		t.Fatalf("expected member list [20], got %v", *members)
	}

	if _, s := f.api.GetUsersInChannel(f.pid, 7, 99); s != StatusChannelNotFound {
		t.Fatalf("expected StatusChannelNotFound, got %v", s)
	}

	for _, ptr := range []any{users, channels, members} {
		if s := f.api.FreeMemory(f.pid, ptr); s != StatusOK {
			t.Fatalf("FreeMemory failed: %v", s)
		}
	}
}

func TestLookups(t *testing.T) {
	f := newFixture(t)

	userID, s := f.api.FindUserByName(f.pid, 7, "bob")
	if !s.OK() || userID != 20 {
		t.Fatalf("FindUserByName: got %d/%v", userID, s)
	}
	if _, s := f.api.FindUserByName(f.pid, 7, "mallory"); s != StatusUserNotFound {
		t.Fatalf("expected StatusUserNotFound, got %v", s)
	}

	channelID, s := f.api.FindChannelByName(f.pid, 7, "Lobby")
	if !s.OK() || channelID != 1 {
		t.Fatalf("FindChannelByName: got %d/%v", channelID, s)
	}
	if _, s := f.api.FindChannelByName(f.pid, 7, "Attic"); s != StatusChannelNotFound {
		t.Fatalf("expected StatusChannelNotFound, got %v", s)
	}

	channelID, s = f.api.GetChannelOfUser(f.pid, 7, 20)
	if !s.OK() || channelID != 1 {
		t.Fatalf("GetChannelOfUser: got %d/%v", channelID, s)
	}
	if _, s := f.api.GetChannelOfUser(f.pid, 7, 99); s != StatusUserNotFound {
		t.Fatalf("expected StatusUserNotFound, got %v", s)
	}
}

func TestServerHash(t *testing.T) {
	f := newFixture(t)

	hash, s := f.api.GetServerHash(f.pid, 7)
	if !s.OK() {
		t.Fatalf("GetServerHash failed: %v", s)
	}
	if *hash != "cafe" {
		t.Fatalf("expected cafe, got %q", *hash)
	}
	f.api.FreeMemory(f.pid, hash)
}

func TestCommentBlobHydration(t *testing.T) {
	f := newFixture(t)

	user, _ := f.st.User(20)
	user.CommentHash = []byte("digest-1")

	// Blob not there yet.
	if _, s := f.api.GetUserComment(f.pid, 7, 20); s != StatusUnsynchronizedBlob {
		t.Fatalf("expected StatusUnsynchronizedBlob, got %v", s)
	}

	f.blobs["digest-1"] = []byte("fisherman")

	comment, s := f.api.GetUserComment(f.pid, 7, 20)
	if !s.OK() {
		t.Fatalf("GetUserComment failed: %v", s)
	}
	if *comment != "fisherman" {
		t.Fatalf("expected hydrated comment, got %q", *comment)
	}
	f.api.FreeMemory(f.pid, comment)
}

func TestChannelDescriptionBlobHydration(t *testing.T) {
	f := newFixture(t)

	channel, _ := f.st.Channel(1)
	channel.DescriptionHash = []byte("digest-2")

	if _, s := f.api.GetChannelDescription(f.pid, 7, 1); s != StatusUnsynchronizedBlob {
		t.Fatalf("expected StatusUnsynchronizedBlob, got %v", s)
	}

	f.blobs["digest-2"] = []byte("general chatter")

	desc, s := f.api.GetChannelDescription(f.pid, 7, 1)
	if !s.OK() {
		t.Fatalf("GetChannelDescription failed: %v", s)
	}
	if *desc != "general chatter" {
		t.Fatalf("expected hydrated description, got %q", *desc)
	}
	f.api.FreeMemory(f.pid, desc)
}

func TestSettingsRoundTrip(t *testing.T) {
	f := newFixture(t)

	if s := f.api.SetSettingInt(f.pid, settings.KeyAudioInputVoiceHold, 5); s != StatusOK {
		t.Fatalf("SetSettingInt failed: %v", s)
	}
	v, s := f.api.GetSettingInt(f.pid, settings.KeyAudioInputVoiceHold)
	if !s.OK() || v != 5 {
		t.Fatalf("GetSettingInt: got %d/%v", v, s)
	}

	if _, s := f.api.GetSettingBool(f.pid, settings.KeyAudioInputVoiceHold); s != StatusWrongSettingsType {
		t.Fatalf("expected StatusWrongSettingsType, got %v", s)
	}
	if s := f.api.SetSettingBool(f.pid, settings.KeyAudioInputVoiceHold, true); s != StatusWrongSettingsType {
		t.Fatalf("expected StatusWrongSettingsType on set, got %v", s)
	}

	if _, s := f.api.GetSettingInt(f.pid, settings.KeyInvalid); s != StatusUnknownSettingsKey {
		t.Fatalf("expected StatusUnknownSettingsKey, got %v", s)
	}
	if s := f.api.SetSettingDouble(f.pid, settings.KeyInvalid, 1.5); s != StatusUnknownSettingsKey {
		t.Fatalf("expected StatusUnknownSettingsKey on set, got %v", s)
	}

	if s := f.api.SetSettingDouble(f.pid, settings.KeyAudioOutputPABloom, 0.6); s != StatusOK {
		t.Fatalf("SetSettingDouble failed: %v", s)
	}
	d, s := f.api.GetSettingDouble(f.pid, settings.KeyAudioOutputPABloom)
	if !s.OK() || d != 0.6 {
		t.Fatalf("GetSettingDouble: got %v/%v", d, s)
	}
}

func TestTransmissionMode(t *testing.T) {
	f := newFixture(t)

	if s := f.api.RequestLocalUserTransmissionMode(f.pid, state.TransmitPushToTalk); s != StatusOK {
		t.Fatalf("RequestLocalUserTransmissionMode failed: %v", s)
	}
	mode, s := f.api.GetLocalUserTransmissionMode(f.pid)
	if !s.OK() || mode != state.TransmitPushToTalk {
		t.Fatalf("expected push-to-talk, got %v/%v", mode, s)
	}

	if s := f.api.RequestLocalUserTransmissionMode(f.pid, state.TransmissionMode(42)); s != StatusUnknownTransmissionMode {
		t.Fatalf("expected StatusUnknownTransmissionMode, got %v", s)
	}
}

func TestMuteAndDeafen(t *testing.T) {
	f := newFixture(t)

	if s := f.api.RequestLocalMute(f.pid, 7, 20, true); s != StatusOK {
		t.Fatalf("RequestLocalMute failed: %v", s)
	}
	muted, s := f.api.IsUserLocallyMuted(f.pid, 7, 20)
	if !s.OK() || !muted {
		t.Fatalf("expected bob locally muted, got %v/%v", muted, s)
	}

	// The local user is not a valid local-mute target.
	if s := f.api.RequestLocalMute(f.pid, 7, 10, true); s != StatusInvalidMuteTarget {
		t.Fatalf("expected StatusInvalidMuteTarget, got %v", s)
	}
	if s := f.api.RequestLocalMute(f.pid, 7, 99, true); s != StatusUserNotFound {
		t.Fatalf("expected StatusUserNotFound, got %v", s)
	}

	if s := f.api.RequestLocalUserMute(f.pid, true); s != StatusOK {
		t.Fatalf("RequestLocalUserMute failed: %v", s)
	}
	selfMuted, s := f.api.IsLocalUserMuted(f.pid)
	if !s.OK() || !selfMuted {
		t.Fatalf("expected self mute, got %v/%v", selfMuted, s)
	}

	if s := f.api.RequestLocalUserDeaf(f.pid, true); s != StatusOK {
		t.Fatalf("RequestLocalUserDeaf failed: %v", s)
	}
	deafened, s := f.api.IsLocalUserDeafened(f.pid)
	if !s.OK() || !deafened {
		t.Fatalf("expected self deaf, got %v/%v", deafened, s)
	}
}

func TestMicrophoneOverride(t *testing.T) {
	f := newFixture(t)

	if s := f.api.RequestMicrophoneActivationOverride(f.pid, true); s != StatusOK {
		t.Fatalf("RequestMicrophoneActivationOverride failed: %v", s)
	}
	if !f.reg.MicrophoneOverride() {
		t.Fatal("expected override to be active")
	}

	if s := f.api.RequestMicrophoneActivationOverride(f.pid, false); s != StatusOK {
		t.Fatalf("override clear failed: %v", s)
	}
	if f.reg.MicrophoneOverride() {
		t.Fatal("expected override to be cleared")
	}
}

func TestRequestUserMove(t *testing.T) {
	f := newFixture(t)

	if s := f.api.RequestUserMove(f.pid, 7, 10, 1, "sesame"); s != StatusOK {
		t.Fatalf("RequestUserMove failed: %v", s)
	}
	if len(f.conn.joins) != 1 {
		t.Fatalf("expected 1 join request, got %d", len(f.conn.joins))
	}
	join := f.conn.joins[0]
	if join.Session != 10 || join.ChannelID != 1 || len(join.Passwords) != 1 || join.Passwords[0] != "sesame" {
		t.Fatalf("unexpected join request %+v", join)
	}

	// Moving a user into the channel they are in already must not hit the
	// server.
	if s := f.api.RequestUserMove(f.pid, 7, 20, 1, ""); s != StatusOK {
		t.Fatalf("no-op move failed: %v", s)
	}
	if len(f.conn.joins) != 1 {
		t.Fatalf("expected no extra join request, got %d", len(f.conn.joins))
	}

	if s := f.api.RequestUserMove(f.pid, 7, 99, 1, ""); s != StatusUserNotFound {
		t.Fatalf("expected StatusUserNotFound, got %v", s)
	}
	if s := f.api.RequestUserMove(f.pid, 7, 10, 99, ""); s != StatusChannelNotFound {
		t.Fatalf("expected StatusChannelNotFound, got %v", s)
	}
}

func TestRequestSetLocalUserComment(t *testing.T) {
	f := newFixture(t)

	if s := f.api.RequestSetLocalUserComment(f.pid, 7, "gone fishing"); s != StatusOK {
		t.Fatalf("RequestSetLocalUserComment failed: %v", s)
	}
	if len(f.conn.comments) != 1 || f.conn.comments[0].Comment != "gone fishing" {
		t.Fatalf("unexpected comment requests %+v", f.conn.comments)
	}

	comment, s := f.api.GetUserComment(f.pid, 7, 10)
	if !s.OK() || *comment != "gone fishing" {
		t.Fatalf("expected updated comment, got %v/%v", comment, s)
	}
	f.api.FreeMemory(f.pid, comment)
}

func TestSendData(t *testing.T) {
	f := newFixture(t)

	if s := f.api.SendData(f.pid, 7, []state.UserID{20}, []byte("ping"), "chat"); s != StatusOK {
		t.Fatalf("SendData failed: %v", s)
	}
	if len(f.conn.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(f.conn.sent))
	}
	msg := f.conn.sent[0]
	if msg.SenderSession != 10 || len(msg.ReceiverSessions) != 1 || msg.ReceiverSessions[0] != 20 {
		t.Fatalf("unexpected message %+v", msg)
	}

	big := make([]byte, MaxDataLength+1)
	if s := f.api.SendData(f.pid, 7, []state.UserID{20}, big, "chat"); s != StatusDataTooBig {
		t.Fatalf("expected StatusDataTooBig, got %v", s)
	}

	longID := make([]byte, MaxDataIDLength+1)
	for i := range longID {
		longID[i] = 'x'
	}
	if s := f.api.SendData(f.pid, 7, []state.UserID{20}, []byte("ping"), string(longID)); s != StatusDataIDTooLong {
		t.Fatalf("expected StatusDataIDTooLong, got %v", s)
	}

	if s := f.api.SendData(f.pid, 7, []state.UserID{99}, []byte("ping"), "chat"); s != StatusUserNotFound {
		t.Fatalf("expected StatusUserNotFound, got %v", s)
	}

	// None of the failed sends may have reached the wire.
	if len(f.conn.sent) != 1 {
		t.Fatalf("expected no extra messages, got %d", len(f.conn.sent))
	}

	f.conn.supportsData = false
	if s := f.api.SendData(f.pid, 7, []state.UserID{20}, []byte("ping"), "chat"); s != StatusUnsupportedByServer {
		t.Fatalf("expected StatusUnsupportedByServer, got %v", s)
	}
}

func TestLogReachesSink(t *testing.T) {
	f := newFixture(t)

	if s := f.api.Log(f.pid, "hello from plugin"); s != StatusOK {
		t.Fatalf("Log failed: %v", s)
	}
	if len(f.sink.messages) != 1 || f.sink.messages[0] != "positional-audio: hello from plugin" {
		t.Fatalf("unexpected sink contents %v", f.sink.messages)
	}
}

func TestPlaySample(t *testing.T) {
	f := newFixture(t)

	if s := f.api.PlaySample(f.pid, "ding.ogg"); s != StatusOK {
		t.Fatalf("PlaySample failed: %v", s)
	}
	if s := f.api.PlaySampleVolume(f.pid, "ding.ogg", 0.5); s != StatusOK {
		t.Fatalf("PlaySampleVolume failed: %v", s)
	}
	if len(f.audio.played) != 2 {
		t.Fatalf("expected 2 plays, got %d", len(f.audio.played))
	}

	f.audio.err = audio.ErrInvalidSample
	if s := f.api.PlaySample(f.pid, "broken.ogg"); s != StatusInvalidSample {
		t.Fatalf("expected StatusInvalidSample, got %v", s)
	}

	f.audio.err = errors.New("device gone")
	if s := f.api.PlaySample(f.pid, "ding.ogg"); s != StatusGenericError {
		t.Fatalf("expected StatusGenericError, got %v", s)
	}
}

func TestPlaySampleWithoutOutput(t *testing.T) {
	f := newFixture(t)

	noAudio := New(Config{
		Loop:     f.loop,
		Plugins:  f.reg,
		State:    f.st,
		Settings: f.store,
		Logger:   zap.NewNop(),
	})
	if s := noAudio.PlaySample(f.pid, "ding.ogg"); s != StatusAudioNotAvailable {
		t.Fatalf("expected StatusAudioNotAvailable, got %v", s)
	}
}

func TestCallTimeout(t *testing.T) {
	loop := eventloop.New(64)
	loop.Start()
	t.Cleanup(loop.Close)

	reg := plugin.NewRegistry()
	pl := reg.Register("slowpoke")

	a := New(Config{
		Loop:        loop,
		Plugins:     reg,
		State:       state.New(),
		Settings:    settings.NewStore(),
		Logger:      zap.NewNop(),
		CallTimeout: 10 * time.Millisecond,
	})

	// Jam the owner goroutine so the call cannot be serviced in time.
	release := make(chan struct{})
	loop.Post(func() { <-release })

	if s := a.RequestLocalUserMute(pl.ID, true); s != StatusRequestTimeout {
		t.Fatalf("expected StatusRequestTimeout, got %v", s)
	}

	close(release)
}

// stallConn blocks every data send until its gate closes.
type stallConn struct {
	fakeConn
	gate chan struct{}
}

func (c *stallConn) SendPluginData(msg server.PluginData) error {
	<-c.gate
	return c.fakeConn.SendPluginData(msg)
}

func TestCompletedCallBeatsCancellation(t *testing.T) {
	loop := eventloop.New(64)
	loop.Start()
	t.Cleanup(loop.Close)

	reg := plugin.NewRegistry()
	pl := reg.Register("slowpoke")

	st := state.New()
	st.AddUser(&state.User{Session: 10, Name: "alice"})
	st.AddUser(&state.User{Session: 20, Name: "bob"})
	st.SetLocalSession(10)

	conn := &stallConn{
		fakeConn: fakeConn{id: 7, supportsData: true},
		gate:     make(chan struct{}),
	}

	a := New(Config{
		Loop:        loop,
		Plugins:     reg,
		State:       st,
		Settings:    settings.NewStore(),
		Logger:      zap.NewNop(),
		CallTimeout: 10 * time.Millisecond,
	})
	a.SetConnection(conn)

	// The send stalls past the wrapper deadline, so cancellation arrives
	// while the operation is mid-flight and must lose the race: the call's
	// real result comes back, not a timeout.
	time.AfterFunc(50*time.Millisecond, func() { close(conn.gate) })

	if s := a.SendData(pl.ID, 7, []state.UserID{20}, []byte("pos"), "positional"); s != StatusOK {
		t.Fatalf("expected StatusOK from the completed call, got %v", s)
	}
	if len(conn.sent) != 1 {
		t.Fatalf("expected one data frame, got %d", len(conn.sent))
	}
}

func TestOperationAbortsAfterCancel(t *testing.T) {
	loop := eventloop.New(64)
	loop.Start()
	t.Cleanup(loop.Close)

	reg := plugin.NewRegistry()
	pl := reg.Register("slowpoke")
	st := state.New()

	a := New(Config{
		Loop:        loop,
		Plugins:     reg,
		State:       st,
		Settings:    settings.NewStore(),
		Logger:      zap.NewNop(),
		CallTimeout: 10 * time.Millisecond,
	})

	release := make(chan struct{})
	loop.Post(func() { <-release })

	if s := a.RequestLocalUserMute(pl.ID, true); s != StatusRequestTimeout {
		t.Fatalf("expected StatusRequestTimeout, got %v", s)
	}
	close(release)

	// Once the loop drains, the cancelled operation must have exited without
	// touching state.
	loop.Run(func() {})
	if st.SelfMute() {
		t.Fatal("cancelled operation mutated state")
	}
}

func TestShutdownReclaimsLeaks(t *testing.T) {
	f := newFixture(t)

	if _, s := f.api.GetUserName(f.pid, 7, 10); !s.OK() {
		t.Fatalf("GetUserName failed: %v", s)
	}
	if _, s := f.api.GetServerHash(f.pid, 7); !s.OK() {
		t.Fatalf("GetServerHash failed: %v", s)
	}

	if leaked := f.api.Shutdown(); leaked != 2 {
		t.Fatalf("expected 2 leaked allocations, got %d", leaked)
	}
	if leaked := f.api.Shutdown(); leaked != 0 {
		t.Fatalf("expected clean second shutdown, got %d leaks", leaked)
	}
}

func TestShutdownAfterLoopClose(t *testing.T) {
	f := newFixture(t)

	if _, s := f.api.GetUserName(f.pid, 7, 10); !s.OK() {
		t.Fatalf("GetUserName failed: %v", s)
	}

	f.loop.Close()

	// With the loop gone the curator is reclaimed inline.
	if leaked := f.api.Shutdown(); leaked != 1 {
		t.Fatalf("expected 1 leaked allocation after loop close, got %d", leaked)
	}
}

func TestFunctionTables(t *testing.T) {
	f := newFixture(t)

	v10 := f.api.TableV1_0()
	name, s := v10.GetUserName(f.pid, 7, 20)
	if !s.OK() || *name != "bob" {
		t.Fatalf("v1.0 GetUserName: got %v/%v", name, s)
	}
	if s := v10.FreeMemory(f.pid, name); s != StatusOK {
		t.Fatalf("v1.0 FreeMemory failed: %v", s)
	}

	v12 := f.api.TableV1_2()
	if s := v12.PlaySampleVolume(f.pid, "ding.ogg", 0.3); s != StatusOK {
		t.Fatalf("v1.2 PlaySampleVolume failed: %v", s)
	}
	if s := v12.PlaySample(f.pid, "ding.ogg"); s != StatusOK {
		t.Fatalf("v1.2 PlaySample failed: %v", s)
	}
}
