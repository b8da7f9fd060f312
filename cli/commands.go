package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nathoo/questvars/engine"
	"github.com/nathoo/questvars/engine/migrate"
	"github.com/nathoo/questvars/engine/save"
	"github.com/nathoo/questvars/engine/variables"
	"github.com/nathoo/questvars/types"
)

// Commands dispatches the slash meta-commands shared by the plain CLI and
// the TUI. Output is returned as lines without the system brackets.
type Commands struct {
	Engine *engine.Engine
	Store  save.Store
	Trace  bool
}

// Meta runs a meta-command. Returns output lines and whether to quit.
func (c *Commands) Meta(ctx context.Context, input string) ([]string, bool) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil, false
	}
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		return []string{"Goodbye."}, true
	case "/save":
		return c.save(ctx, arg), false
	case "/load":
		return c.load(ctx, arg), false
	case "/saves":
		return c.saves(ctx), false
	case "/help":
		return helpLines, false
	case "/state":
		return c.state(), false
	case "/vars":
		return c.vars(), false
	case "/set":
		if len(parts) < 3 {
			return []string{"Usage: /set <path> <value>"}, false
		}
		return c.set(parts[1], strings.Join(parts[2:], " ")), false
	case "/quests":
		return c.Engine.QuestLog(), false
	case "/reset":
		r := c.Engine.State.ResetV2()
		return []string{fmt.Sprintf("Reset %d quest(s) and %d objective(s).", r.Quests, r.Objectives)}, false
	case "/migrate":
		return []string{"Migrated flat variables: " + migrate.FlatToTree(c.Engine.State).String() + "."}, false
	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			return []string{"Trace output enabled."}, false
		}
		return []string{"Trace output disabled."}, false
	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
	}
}

func (c *Commands) save(ctx context.Context, name string) []string {
	if name == "" {
		name = save.DefaultSlot
	}
	data, err := save.Encode(c.Engine.State, c.Engine.Defs.Game)
	if err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}
	if err := c.Store.Save(ctx, name, data); err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}
	return []string{fmt.Sprintf("Game saved to %s.", name)}
}

func (c *Commands) load(ctx context.Context, name string) []string {
	if name == "" {
		name = save.DefaultSlot
	}
	data, err := c.Store.Load(ctx, name)
	if errors.Is(err, save.ErrNotFound) {
		return []string{fmt.Sprintf("No save named %s.", name)}
	}
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}
	sd, err := save.Decode(data)
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}
	if err := save.Apply(c.Engine.State, sd); err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}
	// Content may have gained quests or variables since the save was made.
	engine.Seed(c.Engine.State, c.Engine.Defs)
	c.Engine.EndConversation()

	out := []string{fmt.Sprintf("Game loaded from %s (saved %s).", name, sd.SavedAt.Local().Format("2006-01-02 15:04"))}
	if sd.Game != "" && sd.Game != c.Engine.Defs.Game.Title {
		out = append(out, fmt.Sprintf("Warning: this save belongs to %q.", sd.Game))
	}
	return out
}

func (c *Commands) saves(ctx context.Context) []string {
	names, err := c.Store.List(ctx)
	if err != nil {
		return []string{fmt.Sprintf("Listing saves failed: %v", err)}
	}
	if len(names) == 0 {
		return []string{"No saves yet."}
	}
	return []string{"Saves: " + strings.Join(names, ", ")}
}

// state summarizes the flat legacy store.
func (c *Commands) state() []string {
	l := c.Engine.State.Legacy
	out := []string{
		fmt.Sprintf("Ints: %v", l.Ints),
		fmt.Sprintf("Bools: %v", l.Bools),
	}
	if len(l.Strings) > 0 {
		out = append(out, fmt.Sprintf("Strings: %v", l.Strings))
	}
	for _, q := range l.ActiveQuests {
		out = append(out, fmt.Sprintf("Active quest: %s %v", q.Name, q.Objectives))
	}
	for _, q := range l.CompletedQuests {
		out = append(out, fmt.Sprintf("Completed quest: %s", q.Name))
	}
	return out
}

// vars lists every node of the variable tree with its path and id.
func (c *Commands) vars() []string {
	var out []string
	for v := range variables.Traverse(c.Engine.State.Root) {
		if v == c.Engine.State.Root {
			continue
		}
		line := fmt.Sprintf("%s (%s) %s", variables.PathOf(v), v.Kind(), shortID(v.Header().ID))
		switch val := v.(type) {
		case *variables.IntValue:
			line += fmt.Sprintf(" = %d", val.Value)
		case *variables.BoolValue:
			line += fmt.Sprintf(" = %t", val.Value)
		case *variables.StringValue:
			line += fmt.Sprintf(" = %q", val.Value)
		case *variables.Quest:
			line += " = " + string(val.Status)
		case *variables.Objective:
			line += fmt.Sprintf(" = %d/%d", val.Progress, val.Target)
		}
		out = append(out, line)
	}
	if len(out) == 0 {
		return []string{"The variable tree is empty."}
	}
	return out
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// set writes a scalar by path, parsing raw according to the node's kind.
func (c *Commands) set(path, raw string) []string {
	v, ok := c.Engine.State.ResolvePath(path)
	if !ok {
		return []string{fmt.Sprintf("No variable at %s.", path)}
	}
	var value any
	var err error
	switch v.Kind() {
	case variables.KindInt:
		value, err = strconv.Atoi(raw)
	case variables.KindBool:
		value, err = strconv.ParseBool(raw)
	case variables.KindString:
		value = raw
	default:
		return []string{fmt.Sprintf("%s is a %s, not a scalar.", path, v.Kind())}
	}
	if err != nil {
		return []string{fmt.Sprintf("Cannot set %s: %q is not a valid %s.", path, raw, v.Kind())}
	}
	if !c.Engine.State.SetBoxed(v.Header().ID, value) {
		return []string{fmt.Sprintf("Cannot set %s.", path)}
	}
	return []string{fmt.Sprintf("%s = %v", path, value)}
}

// TraceLines formats the operations applied during a step.
func TraceLines(result types.Result) []string {
	if len(result.Applied) == 0 {
		return nil
	}
	lines := []string{fmt.Sprintf("[trace] Applied: %d", len(result.Applied))}
	for _, op := range result.Applied {
		lines = append(lines, "[trace]   "+op)
	}
	return lines
}

var helpLines = []string{
	"System:",
	"  /save [name]      Save game (default: quicksave)",
	"  /load [name]      Load game (default: quicksave)",
	"  /saves            List save slots",
	"  /quit             Exit game",
	"  /help             Show this help",
	"  /quests           Show the quest log",
	"  /state            Debug: dump the flat variable store",
	"  /vars             Debug: list the variable tree",
	"  /set <path> <v>   Debug: set a variable by path",
	"  /reset            Debug: reset all quests to NotStarted",
	"  /migrate          Debug: copy flat variables into the tree",
	"  /trace            Toggle debug trace output",
	"",
	"Game commands:",
	"  talk <someone>    Start a conversation (talk to, speak with, ask)",
	"  <number>          Pick a dialogue choice (or: choose 2, say 2)",
	"  look (l)          Repeat the current line",
	"  quests (q, j)     Show the quest log",
	"  leave (bye)       End the conversation",
	"  again (g)         Repeat your last command",
}
