// Package dialogue implements branching conversations whose choices are
// gated and driven by quest operations.
package dialogue

import (
	"errors"
	"fmt"

	"github.com/nathoo/questvars/engine/operation"
	"github.com/nathoo/questvars/engine/state"
)

var (
	ErrUnknownNode       = errors.New("unknown dialogue node")
	ErrChoiceUnavailable = errors.New("choice not available")
	ErrConversationOver  = errors.New("conversation is over")
)

// Dialogue is a graph of nodes entered at Start.
type Dialogue struct {
	ID    string
	Start string
	Nodes map[string]Node
}

// Node is one line of dialogue and the choices that follow it.
type Node struct {
	ID      string
	Speaker string // character id, empty for narration
	Text    string
	OnEnter []operation.QuestOperation
	OnExit  []operation.QuestOperation
	Choices []Choice
}

// Choice is a player response. It is offered only when every condition
// evaluates true; taking it applies the consequences and moves to Next.
// An empty Next ends the conversation.
type Choice struct {
	Text         string
	Conditions   []operation.QuestOperation
	Consequences []operation.QuestOperation
	Next         string
}

// Node returns the node with the given id.
func (d *Dialogue) Node(id string) (Node, bool) {
	n, ok := d.Nodes[id]
	return n, ok
}

// AvailableChoices returns the indices of the choices of n whose conditions
// currently hold, in authored order.
func AvailableChoices(n Node, s *state.GameState) []int {
	var out []int
	for i, c := range n.Choices {
		if operation.EvaluateAll(s, c.Conditions) {
			out = append(out, i)
		}
	}
	return out
}

// Conversation walks a Dialogue against a GameState.
type Conversation struct {
	dialogue *Dialogue
	state    *state.GameState
	current  string
	over     bool
}

// Start enters the dialogue's start node and applies its OnEnter list.
func Start(d *Dialogue, s *state.GameState) (*Conversation, error) {
	n, ok := d.Node(d.Start)
	if !ok {
		return nil, fmt.Errorf("dialogue %q start %q: %w", d.ID, d.Start, ErrUnknownNode)
	}
	c := &Conversation{dialogue: d, state: s, current: d.Start}
	operation.ApplyAll(s, n.OnEnter)
	return c, nil
}

// Dialogue returns the dialogue being played.
func (c *Conversation) Dialogue() *Dialogue { return c.dialogue }

// Current returns the node the conversation is at. ok is false once the
// conversation has ended.
func (c *Conversation) Current() (Node, bool) {
	if c.over {
		return Node{}, false
	}
	return c.dialogue.Node(c.current)
}

// Choices returns the indices of the currently available choices.
func (c *Conversation) Choices() []int {
	n, ok := c.Current()
	if !ok {
		return nil
	}
	return AvailableChoices(n, c.state)
}

// Over reports whether the conversation has ended, either by taking a choice
// without a next node or by reaching a node with no choices at all.
func (c *Conversation) Over() bool {
	if c.over {
		return true
	}
	n, ok := c.dialogue.Node(c.current)
	return !ok || len(n.Choices) == 0
}

// Choose takes choice i of the current node. Conditions are re-checked
// first. Consequences, the current node's OnExit and the next node's
// OnEnter are then applied in that order, each as one batch.
func (c *Conversation) Choose(i int) error {
	if c.Over() {
		return ErrConversationOver
	}
	n, _ := c.dialogue.Node(c.current)
	if i < 0 || i >= len(n.Choices) {
		return fmt.Errorf("choice %d: %w", i, ErrChoiceUnavailable)
	}
	choice := n.Choices[i]
	if !operation.EvaluateAll(c.state, choice.Conditions) {
		return fmt.Errorf("choice %d: %w", i, ErrChoiceUnavailable)
	}

	var next Node
	if choice.Next != "" {
		var ok bool
		next, ok = c.dialogue.Node(choice.Next)
		if !ok {
			return fmt.Errorf("choice %d next %q: %w", i, choice.Next, ErrUnknownNode)
		}
	}

	operation.ApplyAll(c.state, choice.Consequences)
	operation.ApplyAll(c.state, n.OnExit)
	if choice.Next == "" {
		c.over = true
		return nil
	}
	c.current = choice.Next
	operation.ApplyAll(c.state, next.OnEnter)
	return nil
}
