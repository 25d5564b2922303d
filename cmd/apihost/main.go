package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/woodgreat/mumble"
	"github.com/woodgreat/mumble/server"
	"github.com/woodgreat/mumble/state"
)

func main() {
	var (
		dataDir     = flag.String("data", "", "Directory for settings and blob storage (default: in-memory)")
		serverURL   = flag.String("server", "", "Websocket server URL (default: offline demo transport)")
		version     = flag.String("server-version", "1.5.0", "Negotiated server version for the demo transport")
		verbose     = flag.Bool("v", false, "Verbose logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	logger := zap.NewNop()
	if *verbose {
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	if *interactive {
		if err := runInteractive(*dataDir, *serverURL, *version, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*dataDir, *serverURL, *version, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type consoleSink struct{}

func (consoleSink) PluginMessage(pluginName, message string) {
	fmt.Printf("[%s] %s\n", pluginName, message)
}

// newDemoClient assembles a client with a few users and channels so the API
// has something to answer with, then installs a connection.
func newDemoClient(dataDir, serverURL, version string, logger *zap.Logger) (*mumble.Client, *server.Connection, error) {
	client, err := mumble.NewClient(mumble.Options{
		DataDir: dataDir,
		Log:     consoleSink{},
		Logger:  logger,
	})
	if err != nil {
		return nil, nil, err
	}

	var transport server.Transport
	if serverURL != "" {
		transport, err = server.DialWebsocket(serverURL)
		if err != nil {
			client.Close()
			return nil, nil, err
		}
	} else {
		transport = server.NewMemoryTransport()
	}

	conn, err := client.Connect(server.Options{
		Version:   version,
		Digest:    []byte{0xde, 0xad, 0xbe, 0xef},
		Transport: transport,
		Logger:    logger,
	})
	if err != nil {
		client.Close()
		return nil, nil, err
	}

	st := client.State()
	st.AddChannel(&state.Channel{ID: 1, Name: "Lobby", Description: "Meet here first"})
	st.AddChannel(&state.Channel{ID: 2, Name: "AFK"})
	st.AddUser(&state.User{Session: 10, Name: "alice", Hash: "2b5c6f87", Channel: 0})
	st.AddUser(&state.User{Session: 20, Name: "bob", Hash: "91d20aa3", Channel: 1})
	st.AddUser(&state.User{Session: 30, Name: "carol", Hash: "77e01b4c", Channel: 2})
	st.SetLocalSession(10)

	return client, conn, nil
}

func run(dataDir, serverURL, version string, logger *zap.Logger) error {
	client, conn, err := newDemoClient(dataDir, serverURL, version, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	pl := client.Plugins().Register("demo")
	table := client.API().TableV1_2()

	fmt.Printf("Connection: %d (server %s)\n\n", conn.ID(), version)

	users, status := table.GetAllUsers(pl.ID, conn.ID())
	if !status.OK() {
		return fmt.Errorf("get all users: %s", status)
	}
	fmt.Printf("Users on the server:\n")
	for _, id := range *users {
		name, s := table.GetUserName(pl.ID, conn.ID(), id)
		if !s.OK() {
			return fmt.Errorf("get user name %d: %s", id, s)
		}
		channelID, s := table.GetChannelOfUser(pl.ID, conn.ID(), id)
		if !s.OK() {
			return fmt.Errorf("get channel of user %d: %s", id, s)
		}
		channelName, s := table.GetChannelName(pl.ID, conn.ID(), channelID)
		if !s.OK() {
			return fmt.Errorf("get channel name %d: %s", channelID, s)
		}
		fmt.Printf("  %-8s in %s\n", *name, *channelName)
		table.FreeMemory(pl.ID, name)
		table.FreeMemory(pl.ID, channelName)
	}
	table.FreeMemory(pl.ID, users)

	table.Log(pl.ID, "demo run complete")

	var leaked int
	client.Loop().Run(func() { leaked = client.API().Curator().Len() })
	if leaked > 0 {
		fmt.Printf("\n%d allocations still outstanding\n", leaked)
	}
	return nil
}
