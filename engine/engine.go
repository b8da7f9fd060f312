// Package engine provides the Step() orchestrator that wires the parser,
// dialogue runner and quest operations into a single turn of play.
package engine

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/nathoo/questvars/engine/dialogue"
	"github.com/nathoo/questvars/engine/operation"
	"github.com/nathoo/questvars/engine/parser"
	"github.com/nathoo/questvars/engine/state"
	"github.com/nathoo/questvars/engine/variables"
	"github.com/nathoo/questvars/types"
)

// Defs holds the immutable content loaded from game files.
type Defs struct {
	Game       types.GameDef
	Characters []types.Character
	Quests     []types.QuestDef
	Vars       []types.VarDef
	Dialogues  map[string]*dialogue.Dialogue
}

// Engine holds the game definitions and mutable state.
type Engine struct {
	Defs  *Defs
	State *state.GameState

	conv *dialogue.Conversation
}

// New creates a new engine from definitions with a freshly seeded state.
func New(defs *Defs) *Engine {
	s := state.New()
	Seed(s, defs)
	return &Engine{Defs: defs, State: s}
}

// Seed declares the content's characters, quests and variables in s.
// Existing nodes keep their values, so seeding a loaded state only adds
// what newer content introduced. Declared scalars are also mirrored into
// the legacy flat store, where Set/Increment/Check operations read them.
func Seed(s *state.GameState, defs *Defs) {
	s.Batch(func() {
		for _, c := range defs.Characters {
			if !slices.ContainsFunc(s.Characters, func(x types.Character) bool { return x.ID == c.ID }) {
				s.Characters = append(s.Characters, c)
			}
		}
		for _, qd := range defs.Quests {
			q := s.CreateQuest(qd.Key, qd.DisplayName)
			if q == nil {
				continue
			}
			for i, od := range qd.Objectives {
				if q.Objective(i) != nil {
					continue
				}
				o := variables.NewObjective(od.Key, od.Target)
				o.DisplayName = od.DisplayName
				q.AddObjective(o)
				s.MarkChanged()
			}
		}
		for _, vd := range defs.Vars {
			v := s.Declare(vd.Path, vd.DisplayName, vd.Value)
			if v == nil {
				s.Logger().Warn("cannot declare variable", "path", vd.Path)
				continue
			}
			mirrorLegacy(s.Legacy, v)
		}
	})
}

// mirrorLegacy copies a declared scalar into the flat store under its leaf
// key, which is the name operations address it by. Flat keys that already
// exist, restored from a save or declared earlier, keep their value.
func mirrorLegacy(l *state.LegacyStore, v variables.Variable) {
	key := v.Header().Key
	switch n := v.(type) {
	case *variables.IntValue:
		if _, ok := l.LookupInt(key); !ok {
			l.SetInt(key, n.Value)
		}
	case *variables.BoolValue:
		if _, ok := l.LookupBool(key); !ok {
			l.SetBool(key, n.Value)
		}
	case *variables.StringValue:
		if _, ok := l.LookupString(key); !ok {
			l.SetString(key, n.Value)
		}
	}
}

// Begin returns the intro text and enters the start dialogue, if any.
func (e *Engine) Begin() types.Result {
	var result types.Result
	if e.Defs.Game.Intro != "" {
		result.Output = append(result.Output, e.Defs.Game.Intro)
	}
	if e.Defs.Game.Start != "" {
		r := e.talk(e.Defs.Game.Start)
		result.Output = append(result.Output, r.Output...)
		result.Applied = append(result.Applied, r.Applied...)
	}
	return result
}

// Conversation returns the active conversation, or nil.
func (e *Engine) Conversation() *dialogue.Conversation {
	return e.conv
}

// EndConversation drops the active conversation without applying anything.
// Used after loading a save.
func (e *Engine) EndConversation() {
	e.conv = nil
}

// Step processes one player command and returns the result.
func (e *Engine) Step(input string) types.Result {
	intent := parser.Parse(input)

	switch intent.Verb {
	case "":
		if e.conv != nil {
			return types.Result{Output: []string{"Pick a choice by number."}}
		}
		return types.Result{Output: []string{"Who do you want to talk to?"}}
	case "talk":
		if intent.Object == "" {
			return types.Result{Output: []string{"Talk to whom? " + e.talkable()}}
		}
		return e.talk(intent.Object)
	case "choose":
		if intent.Choice == 0 {
			return types.Result{Output: []string{"Choose which? Give a number."}}
		}
		return e.choose(intent.Choice)
	case "look":
		if e.conv == nil {
			return types.Result{Output: []string{"You are not talking to anyone. " + e.talkable()}}
		}
		return types.Result{Output: e.describe()}
	case "quests":
		return types.Result{Output: e.QuestLog()}
	case "leave":
		if e.conv == nil {
			return types.Result{Output: []string{"You are not talking to anyone."}}
		}
		e.conv = nil
		return types.Result{Output: []string{"You end the conversation."}}
	default:
		return types.Result{Output: []string{fmt.Sprintf("I don't know how to %q.", intent.Verb)}}
	}
}

// talk starts the dialogue matching target by id, or by the id or name of
// the speaker of its start node.
func (e *Engine) talk(target string) types.Result {
	d := e.findDialogue(target)
	if d == nil {
		return types.Result{Output: []string{fmt.Sprintf("There is no one called %q to talk to.", target)}}
	}
	start, _ := d.Node(d.Start)
	conv, err := dialogue.Start(d, e.State)
	if err != nil {
		e.State.Logger().Warn("cannot start dialogue", "dialogue", d.ID, "err", err)
		return types.Result{Output: []string{"They have nothing to say."}}
	}
	e.conv = conv
	return types.Result{Output: e.describe(), Applied: describeOps(start.OnEnter)}
}

func (e *Engine) choose(n int) types.Result {
	if e.conv == nil {
		return types.Result{Output: []string{"You are not talking to anyone."}}
	}
	avail := e.conv.Choices()
	if n < 1 || n > len(avail) {
		return types.Result{Output: []string{fmt.Sprintf("There is no choice %d.", n)}}
	}
	node, _ := e.conv.Current()
	choice := node.Choices[avail[n-1]]

	if err := e.conv.Choose(avail[n-1]); err != nil {
		e.State.Logger().Warn("choice failed", "dialogue", e.conv.Dialogue().ID, "node", node.ID, "err", err)
		return types.Result{Output: []string{"That doesn't work right now."}}
	}

	applied := describeOps(choice.Consequences)
	applied = append(applied, describeOps(node.OnExit)...)
	if next, ok := e.conv.Current(); ok {
		applied = append(applied, describeOps(next.OnEnter)...)
	}

	var result types.Result
	result.Applied = applied
	result.Output = append(result.Output, "> "+choice.Text)
	if e.conv.Over() {
		if _, ok := e.conv.Current(); ok {
			result.Output = append(result.Output, e.describe()...)
		}
		e.conv = nil
		result.Output = append(result.Output, "The conversation ends.")
		return result
	}
	result.Output = append(result.Output, e.describe()...)
	return result
}

// describe renders the current node and its numbered available choices.
func (e *Engine) describe() []string {
	node, ok := e.conv.Current()
	if !ok {
		return nil
	}
	var out []string
	if node.Speaker != "" {
		out = append(out, fmt.Sprintf("%s: %s", e.CharacterName(node.Speaker), node.Text))
	} else {
		out = append(out, node.Text)
	}
	for i, idx := range e.conv.Choices() {
		out = append(out, fmt.Sprintf("  %d. %s", i+1, node.Choices[idx].Text))
	}
	return out
}

// QuestLog lists every quest with its status and objective progress.
func (e *Engine) QuestLog() []string {
	quests := e.State.Quests()
	if len(quests) == 0 {
		return []string{"You have no quests."}
	}
	var out []string
	for _, q := range quests {
		out = append(out, fmt.Sprintf("%s [%s]", q.Label(), q.Status))
		for _, o := range q.Objectives {
			mark := " "
			if o.Completed() {
				mark = "x"
			}
			out = append(out, fmt.Sprintf("  [%s] %s %d/%d", mark, o.Label(), o.Progress, o.Target))
		}
	}
	return out
}

func (e *Engine) findDialogue(target string) *dialogue.Dialogue {
	for _, id := range slices.Sorted(maps.Keys(e.Defs.Dialogues)) {
		if strings.EqualFold(id, target) {
			return e.Defs.Dialogues[id]
		}
	}
	for _, id := range slices.Sorted(maps.Keys(e.Defs.Dialogues)) {
		d := e.Defs.Dialogues[id]
		start, ok := d.Node(d.Start)
		if !ok || start.Speaker == "" {
			continue
		}
		if strings.EqualFold(start.Speaker, target) || strings.EqualFold(e.CharacterName(start.Speaker), target) {
			return d
		}
	}
	return nil
}

// talkable lists the dialogue ids the player can start.
func (e *Engine) talkable() string {
	if len(e.Defs.Dialogues) == 0 {
		return "There is no one here."
	}
	return "You could talk to: " + strings.Join(slices.Sorted(maps.Keys(e.Defs.Dialogues)), ", ") + "."
}

// CharacterName returns the display name of a character, or its id.
func (e *Engine) CharacterName(id string) string {
	for _, c := range e.State.Characters {
		if c.ID == id && c.DisplayName != "" {
			return c.DisplayName
		}
	}
	return id
}

func describeOps(ops []operation.QuestOperation) []string {
	var out []string
	for _, op := range ops {
		out = append(out, op.String())
	}
	return out
}
