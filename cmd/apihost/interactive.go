package main

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/woodgreat/mumble"
	"github.com/woodgreat/mumble/api"
	"github.com/woodgreat/mumble/plugin"
	"github.com/woodgreat/mumble/server"
	"github.com/woodgreat/mumble/settings"
	"github.com/woodgreat/mumble/state"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	opStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type paramInfo struct {
	name    string
	typeStr string
}

type opInfo struct {
	name   string
	params []paramInfo
	call   func(args []string) string
}

type modelState int

const (
	stateSelectOp modelState = iota
	stateInputArgs
	stateShowResult
)

type interactiveModel struct {
	client   *mumble.Client
	conn     *server.Connection
	plugin   *plugin.Plugin
	table    api.TableV1_2
	ops      []opInfo
	inputs   []textinput.Model
	result   string
	logLines *logBuffer
	selected int
	focusIdx int
	state    modelState
}

// logBuffer collects plugin log lines for display in the TUI. Messages
// arrive on the owner goroutine while the TUI renders on its own.
type logBuffer struct {
	mu    sync.Mutex
	lines []string
}

func (b *logBuffer) PluginMessage(pluginName, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, fmt.Sprintf("[%s] %s", pluginName, message))
	if len(b.lines) > 5 {
		b.lines = b.lines[len(b.lines)-5:]
	}
}

func (b *logBuffer) tail() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

type callResultMsg struct {
	result string
}

func newInteractiveModel(client *mumble.Client, conn *server.Connection, logLines *logBuffer) *interactiveModel {
	m := &interactiveModel{
		client:   client,
		conn:     conn,
		plugin:   client.Plugins().Register("console"),
		logLines: logLines,
		state:    stateSelectOp,
	}
	m.table = client.API().TableV1_2()
	m.ops = m.buildOps()
	return m
}

func parseUser(s string) state.UserID {
	v, _ := strconv.ParseUint(s, 10, 32)
	return state.UserID(v)
}

func parseChannel(s string) state.ChannelID {
	v, _ := strconv.ParseInt(s, 10, 32)
	return state.ChannelID(v)
}

func parseBool(s string) bool {
	return s == "true" || s == "1" || s == "yes"
}

func fmtStatus(s api.Status) string {
	return s.String()
}

func (m *interactiveModel) buildOps() []opInfo {
	connID := m.conn.ID()
	pid := m.plugin.ID

	freeString := func(ptr *string, s api.Status) string {
		if !s.OK() {
			return fmtStatus(s)
		}
		value := *ptr
		m.table.FreeMemory(pid, ptr)
		return fmt.Sprintf("%q (%s)", value, s)
	}

	return []opInfo{
		{
			name: "getActiveServerConnection",
			call: func([]string) string {
				id, s := m.table.GetActiveServerConnection(pid)
				if !s.OK() {
					return fmtStatus(s)
				}
				return fmt.Sprintf("connection %d (%s)", id, s)
			},
		},
		{
			name: "getLocalUserID",
			call: func([]string) string {
				id, s := m.table.GetLocalUserID(pid, connID)
				if !s.OK() {
					return fmtStatus(s)
				}
				return fmt.Sprintf("session %d (%s)", id, s)
			},
		},
		{
			name:   "getUserName",
			params: []paramInfo{{"userID", "u32"}},
			call: func(args []string) string {
				return freeString(m.table.GetUserName(pid, connID, parseUser(args[0])))
			},
		},
		{
			name:   "getUserHash",
			params: []paramInfo{{"userID", "u32"}},
			call: func(args []string) string {
				return freeString(m.table.GetUserHash(pid, connID, parseUser(args[0])))
			},
		},
		{
			name:   "getUserComment",
			params: []paramInfo{{"userID", "u32"}},
			call: func(args []string) string {
				return freeString(m.table.GetUserComment(pid, connID, parseUser(args[0])))
			},
		},
		{
			name:   "getChannelName",
			params: []paramInfo{{"channelID", "i32"}},
			call: func(args []string) string {
				return freeString(m.table.GetChannelName(pid, connID, parseChannel(args[0])))
			},
		},
		{
			name:   "getChannelDescription",
			params: []paramInfo{{"channelID", "i32"}},
			call: func(args []string) string {
				return freeString(m.table.GetChannelDescription(pid, connID, parseChannel(args[0])))
			},
		},
		{
			name: "getServerHash",
			call: func([]string) string {
				return freeString(m.table.GetServerHash(pid, connID))
			},
		},
		{
			name: "getAllUsers",
			call: func([]string) string {
				users, s := m.table.GetAllUsers(pid, connID)
				if !s.OK() {
					return fmtStatus(s)
				}
				out := fmt.Sprintf("%v (%s)", *users, s)
				m.table.FreeMemory(pid, users)
				return out
			},
		},
		{
			name: "getAllChannels",
			call: func([]string) string {
				channels, s := m.table.GetAllChannels(pid, connID)
				if !s.OK() {
					return fmtStatus(s)
				}
				out := fmt.Sprintf("%v (%s)", *channels, s)
				m.table.FreeMemory(pid, channels)
				return out
			},
		},
		{
			name:   "getUsersInChannel",
			params: []paramInfo{{"channelID", "i32"}},
			call: func(args []string) string {
				users, s := m.table.GetUsersInChannel(pid, connID, parseChannel(args[0]))
				if !s.OK() {
					return fmtStatus(s)
				}
				out := fmt.Sprintf("%v (%s)", *users, s)
				m.table.FreeMemory(pid, users)
				return out
			},
		},
		{
			name:   "findUserByName",
			params: []paramInfo{{"name", "string"}},
			call: func(args []string) string {
				id, s := m.table.FindUserByName(pid, connID, args[0])
				if !s.OK() {
					return fmtStatus(s)
				}
				return fmt.Sprintf("session %d (%s)", id, s)
			},
		},
		{
			name:   "findChannelByName",
			params: []paramInfo{{"name", "string"}},
			call: func(args []string) string {
				id, s := m.table.FindChannelByName(pid, connID, args[0])
				if !s.OK() {
					return fmtStatus(s)
				}
				return fmt.Sprintf("channel %d (%s)", id, s)
			},
		},
		{
			name:   "requestUserMove",
			params: []paramInfo{{"userID", "u32"}, {"channelID", "i32"}, {"password", "string"}},
			call: func(args []string) string {
				return fmtStatus(m.table.RequestUserMove(pid, connID, parseUser(args[0]), parseChannel(args[1]), args[2]))
			},
		},
		{
			name:   "requestLocalMute",
			params: []paramInfo{{"userID", "u32"}, {"muted", "bool"}},
			call: func(args []string) string {
				return fmtStatus(m.table.RequestLocalMute(pid, connID, parseUser(args[0]), parseBool(args[1])))
			},
		},
		{
			name:   "requestLocalUserMute",
			params: []paramInfo{{"muted", "bool"}},
			call: func(args []string) string {
				return fmtStatus(m.table.RequestLocalUserMute(pid, parseBool(args[0])))
			},
		},
		{
			name:   "requestLocalUserDeaf",
			params: []paramInfo{{"deafened", "bool"}},
			call: func(args []string) string {
				return fmtStatus(m.table.RequestLocalUserDeaf(pid, parseBool(args[0])))
			},
		},
		{
			name:   "requestSetLocalUserComment",
			params: []paramInfo{{"comment", "string"}},
			call: func(args []string) string {
				return fmtStatus(m.table.RequestSetLocalUserComment(pid, connID, args[0]))
			},
		},
		{
			name:   "getSetting (int)",
			params: []paramInfo{{"key", "i32"}},
			call: func(args []string) string {
				v, s := m.table.GetSettingInt(pid, settings.Key(parseChannel(args[0])))
				if !s.OK() {
					return fmtStatus(s)
				}
				return fmt.Sprintf("%d (%s)", v, s)
			},
		},
		{
			name:   "getSetting (double)",
			params: []paramInfo{{"key", "i32"}},
			call: func(args []string) string {
				v, s := m.table.GetSettingDouble(pid, settings.Key(parseChannel(args[0])))
				if !s.OK() {
					return fmtStatus(s)
				}
				return fmt.Sprintf("%g (%s)", v, s)
			},
		},
		{
			name:   "sendData",
			params: []paramInfo{{"userID", "u32"}, {"data", "string"}, {"dataID", "string"}},
			call: func(args []string) string {
				return fmtStatus(m.table.SendData(pid, connID, []state.UserID{parseUser(args[0])}, []byte(args[1]), args[2]))
			},
		},
		{
			name:   "log",
			params: []paramInfo{{"message", "string"}},
			call: func(args []string) string {
				return fmtStatus(m.table.Log(pid, args[0]))
			},
		},
		{
			name:   "playSample",
			params: []paramInfo{{"path", "string"}, {"volume", "f32"}},
			call: func(args []string) string {
				volume, _ := strconv.ParseFloat(args[1], 32)
				return fmtStatus(m.table.PlaySampleVolume(pid, args[0], float32(volume)))
			},
		},
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.state == stateSelectOp || msg.String() == "ctrl+c" {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectOp && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectOp && m.selected < len(m.ops)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectOp:
				m.prepareInputs()
				if len(m.inputs) == 0 {
					return m, m.callOp
				}
				m.state = stateInputArgs

			case stateInputArgs:
				return m, m.callOp

			case stateShowResult:
				m.state = stateSelectOp
				m.result = ""
			}

		case "tab":
			if m.state == stateInputArgs && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			switch m.state {
			case stateInputArgs:
				m.state = stateSelectOp
				m.inputs = nil
			case stateShowResult:
				m.state = stateSelectOp
				m.result = ""
			}
		}

	case callResultMsg:
		m.result = msg.result
		m.state = stateShowResult
	}

	if m.state == stateInputArgs {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *interactiveModel) prepareInputs() {
	op := m.ops[m.selected]
	m.inputs = make([]textinput.Model, len(op.params))
	for i, p := range op.params {
		ti := textinput.New()
		ti.Placeholder = p.typeStr
		ti.Prompt = p.name + ": "
		ti.Width = 40
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func (m *interactiveModel) callOp() tea.Msg {
	op := m.ops[m.selected]
	args := make([]string, len(m.inputs))
	for i, input := range m.inputs {
		args[i] = input.Value()
	}
	return callResultMsg{result: op.call(args)}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("API Console"))
	b.WriteString(fmt.Sprintf(" connection %d, plugin %q\n\n", m.conn.ID(), m.plugin.Name))

	switch m.state {
	case stateSelectOp:
		b.WriteString("Select an operation:\n\n")
		for i, op := range m.ops {
			cursor := "  "
			if i == m.selected {
				cursor = "> "
				b.WriteString(selectedStyle.Render(cursor + m.formatOp(op)))
			} else {
				b.WriteString(cursor + m.formatOp(op))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter call • q quit"))

	case stateInputArgs:
		op := m.ops[m.selected]
		b.WriteString(fmt.Sprintf("Calling %s\n\n", opStyle.Render(op.name)))
		for i, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString(" ")
			b.WriteString(typeStyle.Render(op.params[i].typeStr))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter call • esc back"))

	case stateShowResult:
		op := m.ops[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", opStyle.Render(op.name)))
		b.WriteString(resultStyle.Render(m.result))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	if lines := m.logLines.tail(); len(lines) > 0 {
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("recent plugin log:"))
		b.WriteString("\n")
		for _, line := range lines {
			b.WriteString(helpStyle.Render(line))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (m *interactiveModel) formatOp(op opInfo) string {
	var params []string
	for _, p := range op.params {
		params = append(params, p.name+": "+typeStyle.Render(p.typeStr))
	}
	return opStyle.Render(op.name) + "(" + strings.Join(params, ", ") + ")"
}

func runInteractive(dataDir, serverURL, version string, logger *zap.Logger) error {
	logLines := &logBuffer{}

	client, err := mumble.NewClient(mumble.Options{
		DataDir: dataDir,
		Log:     logLines,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	var transport server.Transport
	if serverURL != "" {
		transport, err = server.DialWebsocket(serverURL)
		if err != nil {
			return err
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
		return err
	}

	st := client.State()
	st.AddChannel(&state.Channel{ID: 1, Name: "Lobby", Description: "Meet here first"})
	st.AddChannel(&state.Channel{ID: 2, Name: "AFK"})
	st.AddUser(&state.User{Session: 10, Name: "alice", Hash: "2b5c6f87", Channel: 0})
	st.AddUser(&state.User{Session: 20, Name: "bob", Hash: "91d20aa3", Channel: 1})
	st.AddUser(&state.User{Session: 30, Name: "carol", Hash: "77e01b4c", Channel: 2})
	st.SetLocalSession(10)

	p := tea.NewProgram(newInteractiveModel(client, conn, logLines), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
