package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleNarration = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleSpeaker = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228")).
			Bold(true)

	styleSpeech = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleChoice = lipgloss.NewStyle().
			Foreground(lipgloss.Color("117"))

	styleQuest = lipgloss.NewStyle().
			Foreground(lipgloss.Color("180"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarration lineKind = iota
	kindSpeech
	kindChoice
	kindEcho
	kindQuest
	kindSystem
	kindError
	kindTrace
)

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case strings.HasPrefix(line, "> "):
		return kindEcho
	case isChoiceLine(line):
		return kindChoice
	case strings.HasPrefix(line, "  ["), strings.HasSuffix(line, "]"):
		return kindQuest
	case strings.HasPrefix(line, "There is no"),
		strings.HasPrefix(line, "I don't know"),
		strings.HasPrefix(line, "You are not"):
		return kindError
	case speakerEnd(line) > 0:
		return kindSpeech
	default:
		return kindNarration
	}
}

// isChoiceLine matches "  N. text".
func isChoiceLine(line string) bool {
	rest, ok := strings.CutPrefix(line, "  ")
	if !ok {
		return false
	}
	digits := 0
	for digits < len(rest) && rest[digits] >= '0' && rest[digits] <= '9' {
		digits++
	}
	return digits > 0 && strings.HasPrefix(rest[digits:], ". ")
}

// speakerEnd returns the index of the colon ending a short "Name: " prefix,
// or -1.
func speakerEnd(line string) int {
	i := strings.Index(line, ": ")
	if i <= 0 || i > 24 || strings.ContainsAny(line[:i], ".!?\"") {
		return -1
	}
	return i
}

// styledSpeech renders "Name: text" with the name emphasized.
func styledSpeech(line string) string {
	i := speakerEnd(line)
	if i < 0 {
		return styleSpeech.Render(line)
	}
	return styleSpeaker.Render(line[:i+1]) + styleSpeech.Render(line[i+1:])
}

