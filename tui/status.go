package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/questvars/types"
)

// statusLeft names the game and who the player is talking to.
func (m Model) statusLeft() string {
	left := " " + m.engine.Defs.Game.Title
	conv := m.engine.Conversation()
	if conv == nil {
		return left + " | Not talking"
	}
	node, ok := conv.Current()
	if !ok || node.Speaker == "" {
		return left + " | " + conv.Dialogue().ID
	}
	return left + " | Talking to " + m.engine.CharacterName(node.Speaker)
}

// statusRight counts quests by status.
func (m Model) statusRight() string {
	var active, done int
	for _, q := range m.engine.State.Quests() {
		switch q.Status {
		case types.QuestInProgress:
			active++
		case types.QuestCompleted:
			done++
		}
	}
	s := fmt.Sprintf("Quests: %d active, %d done ", active, done)
	if m.cmds.Trace {
		s = "TRACE | " + s
	}
	return s
}

// renderStatusBar produces a full-width inverted status line.
func (m Model) renderStatusBar() string {
	left, right := m.statusLeft(), m.statusRight()

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
