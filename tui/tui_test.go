package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/questvars/engine"
	"github.com/nathoo/questvars/engine/dialogue"
	"github.com/nathoo/questvars/engine/operation"
	"github.com/nathoo/questvars/engine/save"
	"github.com/nathoo/questvars/types"
)

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		line string
		want lineKind
	}{
		{"Borin: What do you want?", kindSpeech},
		{"  1. Any work?", kindChoice},
		{"  12. Tell me more.", kindChoice},
		{"> Any work?", kindEcho},
		{"Find the Sword [InProgress]", kindQuest},
		{"  [x] Dig by the well 2/2", kindQuest},
		{"[Game saved to test.]", kindSystem},
		{"[trace] Applied: 2", kindTrace},
		{`There is no one called "ghost" to talk to.`, kindError},
		{`I don't know how to "dance".`, kindError},
		{"You are not talking to anyone.", kindError},
		{"The forge is warm.", kindNarration},
		{"The forge is hot. Note: very hot.", kindNarration},
		{"", kindNarration},
	}
	for _, tt := range tests {
		got := classifyLine(tt.line)
		if got != tt.want {
			t.Errorf("classifyLine(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestWordWrap(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  string
	}{
		{"short", 80, "short"},
		{"hello world", 5, "hello\nworld"},
		{"The great hall stretches before you with its vaulted ceiling.", 30,
			"The great hall stretches\nbefore you with its vaulted\nceiling."},
		{"", 80, ""},
		{"one", 80, "one"},
		{"a b c d e", 3, "a b\nc d\ne"},
		{"  1. Tell me about the sword", 14, "  1. Tell me\nabout the\nsword"},
	}
	for _, tt := range tests {
		got := wordWrap(tt.text, tt.width)
		if got != tt.want {
			t.Errorf("wordWrap(%q, %d) =\n  %q\nwant:\n  %q", tt.text, tt.width, got, tt.want)
		}
	}
}

func TestHistory_PushAndPrev(t *testing.T) {
	h := NewHistory(5)
	h.Push("talk smith")
	h.Push("1")
	h.Push("quests")

	for _, want := range []string{"quests", "1", "talk smith", "talk smith"} {
		prev, ok := h.Prev()
		if !ok || prev != want {
			t.Errorf("expected %q, got %q (ok=%v)", want, prev, ok)
		}
	}
}

func TestHistory_Next(t *testing.T) {
	h := NewHistory(5)
	h.Push("look")
	h.Push("talk smith")

	h.Prev() // "talk smith"
	h.Prev() // "look"

	next, ok := h.Next()
	if !ok || next != "talk smith" {
		t.Errorf("expected 'talk smith', got %q (ok=%v)", next, ok)
	}

	if _, ok = h.Next(); ok {
		t.Error("expected false when past newest entry")
	}
}

func TestHistory_Empty(t *testing.T) {
	h := NewHistory(5)
	if _, ok := h.Prev(); ok {
		t.Error("expected false on empty history")
	}
	if _, ok := h.Next(); ok {
		t.Error("expected false on empty history")
	}
}

func TestHistory_MaxSizeAndDuplicates(t *testing.T) {
	h := NewHistory(2)
	h.Push("a")
	h.Push("b")
	h.Push("b") // skipped
	h.Push("  ")
	h.Push("c") // "a" evicted

	if strings.Join(h.entries, ",") != "b,c" {
		t.Errorf("entries = %v, want [b c]", h.entries)
	}
}

func TestHistory_ResetCursor(t *testing.T) {
	h := NewHistory(5)
	h.Push("look")
	h.Push("talk smith")

	h.Prev()
	h.ResetCursor()

	if prev, ok := h.Prev(); !ok || prev != "talk smith" {
		t.Errorf("expected 'talk smith' after reset, got %q", prev)
	}
}

func TestHistory_Complete(t *testing.T) {
	h := NewHistory(5)
	h.Push("talk smith")
	h.Push("talk well")

	tests := []struct {
		prefix string
		want   string
		ok     bool
	}{
		{"ta", "talk well", true},
		{"talk s", "talk smith", true},
		{"/sa", "/save", true},
		{"/save", "/saves", true},
		{"/zz", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := h.Complete(tt.prefix, metaCommands)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Complete(%q) = %q, %v; want %q, %v", tt.prefix, got, ok, tt.want, tt.ok)
		}
	}
}

// testDefs returns minimal game definitions for TUI testing.
func testDefs() *engine.Defs {
	return &engine.Defs{
		Game: types.GameDef{
			Title:   "Test Game",
			Author:  "Test",
			Version: "1.0",
			Start:   "smith",
			Intro:   "Welcome to the test.",
		},
		Characters: []types.Character{{ID: "smith", DisplayName: "Borin"}},
		Quests:     []types.QuestDef{{Key: "FindSword", DisplayName: "Find the Sword"}},
		Dialogues: map[string]*dialogue.Dialogue{
			"smith": {
				ID:    "smith",
				Start: "greet",
				Nodes: map[string]dialogue.Node{
					"greet": {
						ID:      "greet",
						Speaker: "smith",
						Text:    "What do you want?",
						Choices: []dialogue.Choice{
							{
								Text:         "Any work?",
								Consequences: []operation.QuestOperation{{Type: types.OpStartQuest, Quest: "FindSword"}},
								Next:         "greet",
							},
							{Text: "Goodbye."},
						},
					},
				},
			},
		},
	}
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	m := New(context.Background(), engine.New(testDefs()), save.NewFileStore(t.TempDir()))
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return next.(Model)
}

// submit types a line and presses enter.
func submit(t *testing.T, m Model, line string) (Model, tea.Cmd) {
	t.Helper()
	m.input.SetValue(line)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(Model), cmd
}

func transcript(m Model) string {
	var lines []string
	for _, rl := range m.rawLines {
		lines = append(lines, rl.text)
	}
	return strings.Join(lines, "\n")
}

func TestModel_InitialOutput(t *testing.T) {
	m := newTestModel(t)
	msg := m.initialOutput()()
	out, ok := msg.(gameOutputMsg)
	if !ok {
		t.Fatalf("expected gameOutputMsg, got %T", msg)
	}
	joined := strings.Join(out.lines, "\n")
	for _, want := range []string{"Test Game v1.0 by Test", "Welcome to the test.", "Borin: What do you want?", "  1. Any work?"} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected %q in initial output:\n%s", want, joined)
		}
	}
}

func TestModel_ChooseAndStatusBar(t *testing.T) {
	m := newTestModel(t)
	m.Update(m.initialOutput()())

	if !strings.Contains(m.statusLeft(), "Talking to Borin") {
		t.Errorf("status left = %q", m.statusLeft())
	}

	m, _ = submit(t, m, "1")
	if !m.engine.State.IsQuestStarted("FindSword") {
		t.Error("expected FindSword started")
	}
	if got := m.statusRight(); got != "Quests: 1 active, 0 done " {
		t.Errorf("status right = %q", got)
	}
	if !strings.Contains(transcript(m), "> 1") {
		t.Error("expected echoed input in transcript")
	}
	if !strings.Contains(m.View(), "Quests: 1 active") {
		t.Error("expected status bar in view")
	}
}

func TestModel_MetaCommands(t *testing.T) {
	m := newTestModel(t)

	m, _ = submit(t, m, "/save test")
	m, _ = submit(t, m, "/trace")
	m, _ = submit(t, m, "/bogus")

	text := transcript(m)
	for _, want := range []string{"Game saved to test.", "Trace output enabled.", "Unknown command: /bogus"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in transcript:\n%s", want, text)
		}
	}
	if !strings.HasPrefix(m.statusRight(), "TRACE") {
		t.Errorf("status right = %q, want trace marker", m.statusRight())
	}

	m, cmd := submit(t, m, "/quit")
	if !m.quitting || cmd == nil {
		t.Error("expected /quit to stop the program")
	}
	if m.View() != "" {
		t.Error("expected empty view after quitting")
	}
}

func TestModel_Again(t *testing.T) {
	m := newTestModel(t)

	m, _ = submit(t, m, "g")
	if !strings.Contains(transcript(m), "Nothing to repeat.") {
		t.Error("expected nothing to repeat")
	}

	m, _ = submit(t, m, "quests")
	m, _ = submit(t, m, "again")
	if n := strings.Count(transcript(m), "Find the Sword [NotStarted]"); n != 2 {
		t.Errorf("expected quest log twice, got %d", n)
	}
}

func TestModel_TabCompletes(t *testing.T) {
	m := newTestModel(t)
	m.input.SetValue("/mig")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if got := next.(Model).input.Value(); got != "/migrate" {
		t.Errorf("input = %q, want /migrate", got)
	}
}
