package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/questvars/cli"
	"github.com/nathoo/questvars/engine"
	"github.com/nathoo/questvars/engine/save"
	"github.com/nathoo/questvars/types"
)

// metaCommands are offered by Tab completion.
var metaCommands = []string{
	"/help", "/load", "/migrate", "/quests", "/quit", "/reset",
	"/save", "/saves", "/set", "/state", "/trace", "/vars",
}

// rawLine keeps a transcript line unstyled so it can be re-wrapped when
// the terminal is resized.
type rawLine struct {
	text string
	kind lineKind
}

// Model is the Bubble Tea model for the dialogue player.
type Model struct {
	ctx    context.Context
	engine *engine.Engine
	cmds   *cli.Commands

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine // accumulated lines (unstyled, for re-wrapping)

	width    int
	height   int
	ready    bool
	quitting bool
	lastCmd  string
}

// gameOutputMsg carries the intro and start dialogue into the Update loop.
type gameOutputMsg struct {
	lines []string
}

// New creates a TUI model wired to the given engine and save store.
func New(ctx context.Context, eng *engine.Engine, store save.Store) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	return Model{
		ctx:     ctx,
		engine:  eng,
		cmds:    &cli.Commands{Engine: eng, Store: store},
		input:   ti,
		history: NewHistory(100),
	}
}

// Run starts the Bubble Tea program. The program stops when ctx is canceled.
func Run(ctx context.Context, eng *engine.Engine, store save.Store, trace bool) error {
	m := New(ctx, eng, store)
	m.cmds.Trace = trace
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init returns the initial command that produces the intro and start dialogue.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.initialOutput())
}

func (m Model) initialOutput() tea.Cmd {
	return func() tea.Msg {
		game := m.engine.Defs.Game
		header := game.Title
		if game.Version != "" {
			header += " v" + game.Version
		}
		if game.Author != "" {
			header += " by " + game.Author
		}
		lines := []string{header, ""}
		lines = append(lines, m.gameLines(m.engine.Begin())...)
		return gameOutputMsg{lines: lines}
	}
}

// Update handles messages (key presses, window resize, game output).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := max(m.height-2, 1) // status bar and input line

		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}

		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "tab":
			if line, ok := m.history.Complete(m.input.Value(), metaCommands); ok {
				m.input.SetValue(line)
				m.input.CursorEnd()
			}
			return m, nil

		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
				m.history.ResetCursor()
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case gameOutputMsg:
		m = m.appendLines("", msg.lines)
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" {
		return m, nil
	}

	m.history.Push(input)
	m.history.ResetCursor()

	if strings.HasPrefix(input, "/") {
		output, quit := m.cmds.Meta(m.ctx, input)
		for i, line := range output {
			output[i] = "[" + line + "]"
		}
		m = m.appendLines(input, output)
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	lower := strings.ToLower(input)
	if lower == "again" || lower == "g" {
		if m.lastCmd == "" {
			m = m.appendLines(input, []string{"Nothing to repeat."})
			return m, nil
		}
		input = m.lastCmd
	} else {
		m.lastCmd = input
	}

	m = m.appendLines(input, m.gameLines(m.engine.Step(input)))
	return m, nil
}

// gameLines returns step output followed by trace lines when enabled.
func (m Model) gameLines(result types.Result) []string {
	lines := result.Output
	if m.cmds.Trace {
		lines = append(lines, cli.TraceLines(result)...)
	}
	return lines
}

// appendLines adds an echoed input and its output to the transcript,
// followed by a blank separator line.
func (m Model) appendLines(input string, lines []string) Model {
	if input != "" {
		m.rawLines = append(m.rawLines, rawLine{text: "> " + input, kind: kindEcho})
	}
	for _, line := range lines {
		m.rawLines = append(m.rawLines, rawLine{text: line, kind: classifyLine(line)})
	}
	m.rawLines = append(m.rawLines, rawLine{})
	m.refreshViewport()
	return m
}

// refreshViewport re-wraps and re-styles the transcript at the current width.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	width := max(m.width, 10)

	styled := make([]string, 0, len(m.rawLines))
	for _, rl := range m.rawLines {
		styled = append(styled, renderLineKind(wordWrap(rl.text, width), rl.kind))
	}
	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindSpeech:
		return styledSpeech(line)
	case kindChoice:
		return styleChoice.Render(line)
	case kindEcho:
		return stylePlayerInput.Render(line)
	case kindQuest:
		return styleQuest.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindError:
		return styleError.Render(line)
	case kindTrace:
		return styleTrace.Render(line)
	default:
		return styleNarration.Render(line)
	}
}

// wordWrap wraps text to fit within the given width, breaking at word
// boundaries. Leading indentation is kept on the first line.
func wordWrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}

	indent := text[:len(text)-len(strings.TrimLeft(text, " "))]

	var result strings.Builder
	result.WriteString(indent)
	lineLen := len(indent)

	for i, word := range strings.Fields(text) {
		wLen := len(word)

		if i == 0 {
			result.WriteString(word)
			lineLen += wLen
			continue
		}

		if lineLen+1+wLen > width {
			result.WriteString("\n")
			result.WriteString(word)
			lineLen = wLen
		} else {
			result.WriteString(" ")
			result.WriteString(word)
			lineLen += 1 + wLen
		}
	}

	return result.String()
}

// View renders the full TUI layout: viewport + status bar + input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
