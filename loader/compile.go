// Package loader loads Lua game content into Go structs at compile time.
// The Lua VM is discarded after loading, so no Lua runs during play.
package loader

import (
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/questvars/engine"
	"github.com/nathoo/questvars/engine/dialogue"
	"github.com/nathoo/questvars/engine/operation"
	"github.com/nathoo/questvars/types"
)

// rawNamed holds a curried definition table before compilation.
type rawNamed struct {
	id    string
	table *lua.LTable
}

// rawVar holds a Var declaration before compilation.
type rawVar struct {
	path  string
	value lua.LValue
	name  string
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	v := tbl.RawGetString(key)
	if b, ok := v.(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getNumber returns a numeric field from a Lua table, or 0 if missing.
func getNumber(tbl *lua.LTable, key string) float64 {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	return int(getNumber(tbl, key))
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// toGoValue converts a scalar Lua value to a Go value. Whole numbers become
// int; tables and functions have no variable representation and yield nil.
func toGoValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		f := float64(val)
		if f == float64(int(f)) {
			return int(f)
		}
		return f
	case lua.LString:
		return string(val)
	default:
		return nil
	}
}

// arrayTables returns the table elements of a Lua array in order.
func arrayTables(tbl *lua.LTable) []*lua.LTable {
	if tbl == nil {
		return nil
	}
	var out []*lua.LTable
	for i := 1; i <= tbl.MaxN(); i++ {
		if t, ok := tbl.RawGetInt(i).(*lua.LTable); ok {
			out = append(out, t)
		}
	}
	return out
}

// sortedLuaFiles returns file names with game.lua first, rest alphabetical.
func sortedLuaFiles(files []string) []string {
	var result []string
	var others []string
	for _, f := range files {
		if f == "game.lua" {
			result = append(result, f)
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	return append(result, others...)
}

// compile converts all collected Lua data into a Defs struct.
func compile(coll *collector) (*engine.Defs, error) {
	if coll.game == nil {
		return nil, fmt.Errorf("no Game{} definition found")
	}
	defs := &engine.Defs{
		Game:      compileGame(coll.game),
		Dialogues: map[string]*dialogue.Dialogue{},
	}

	for _, raw := range coll.characters {
		defs.Characters = append(defs.Characters, types.Character{
			ID:          raw.id,
			DisplayName: getString(raw.table, "name"),
		})
	}

	for _, raw := range coll.quests {
		defs.Quests = append(defs.Quests, compileQuest(raw))
	}

	for _, raw := range coll.vars {
		defs.Vars = append(defs.Vars, types.VarDef{
			Path:        raw.path,
			DisplayName: raw.name,
			Value:       toGoValue(raw.value),
		})
	}

	for _, raw := range coll.dialogues {
		if _, dup := defs.Dialogues[raw.id]; dup {
			return nil, fmt.Errorf("duplicate dialogue %q", raw.id)
		}
		d, err := compileDialogue(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling dialogue %s: %w", raw.id, err)
		}
		defs.Dialogues[d.ID] = d
	}

	return defs, nil
}

func compileGame(tbl *lua.LTable) types.GameDef {
	return types.GameDef{
		Title:   getString(tbl, "title"),
		Author:  getString(tbl, "author"),
		Version: getString(tbl, "version"),
		Start:   getString(tbl, "start"),
		Intro:   getString(tbl, "intro"),
	}
}

func compileQuest(raw rawNamed) types.QuestDef {
	q := types.QuestDef{
		Key:         raw.id,
		DisplayName: getString(raw.table, "name"),
	}
	for _, o := range arrayTables(getTable(raw.table, "objectives")) {
		target := getInt(o, "target")
		if o.RawGetString("target") == lua.LNil {
			target = 1
		}
		q.Objectives = append(q.Objectives, types.ObjectiveDef{
			Key:         getString(o, "key"),
			DisplayName: getString(o, "name"),
			Target:      target,
		})
	}
	return q
}

// compileDialogue reads nodes either from an array of Node "id" {...} tables
// or from a table keyed by node id.
func compileDialogue(raw rawNamed) (*dialogue.Dialogue, error) {
	d := &dialogue.Dialogue{
		ID:    raw.id,
		Start: getString(raw.table, "start"),
		Nodes: map[string]dialogue.Node{},
	}

	nodes := getTable(raw.table, "nodes")
	if nodes == nil {
		return nil, fmt.Errorf("no nodes defined")
	}

	var err error
	nodes.ForEach(func(k, v lua.LValue) {
		if err != nil {
			return
		}
		tbl, ok := v.(*lua.LTable)
		if !ok {
			return
		}
		id := getString(tbl, "__node_id")
		if ks, ok := k.(lua.LString); ok && id == "" {
			id = string(ks)
		}
		if id == "" {
			err = fmt.Errorf("node %v has no id", k)
			return
		}
		if _, dup := d.Nodes[id]; dup {
			err = fmt.Errorf("duplicate node %q", id)
			return
		}
		var n dialogue.Node
		n, err = compileNode(id, tbl)
		d.Nodes[id] = n
	})
	if err != nil {
		return nil, err
	}

	// The first array node starts the dialogue when start is omitted.
	if d.Start == "" {
		if first, ok := nodes.RawGetInt(1).(*lua.LTable); ok {
			d.Start = getString(first, "__node_id")
		}
	}
	return d, nil
}

func compileNode(id string, tbl *lua.LTable) (dialogue.Node, error) {
	n := dialogue.Node{
		ID:      id,
		Speaker: getString(tbl, "speaker"),
		Text:    getString(tbl, "text"),
	}
	var err error
	if n.OnEnter, err = compileOperations(getTable(tbl, "on_enter")); err != nil {
		return n, fmt.Errorf("node %s on_enter: %w", id, err)
	}
	if n.OnExit, err = compileOperations(getTable(tbl, "on_exit")); err != nil {
		return n, fmt.Errorf("node %s on_exit: %w", id, err)
	}
	for i, c := range arrayTables(getTable(tbl, "choices")) {
		choice := dialogue.Choice{
			Text: getString(c, "text"),
			Next: getString(c, "next"),
		}
		if choice.Conditions, err = compileOperations(getTable(c, "requires")); err != nil {
			return n, fmt.Errorf("node %s choice %d requires: %w", id, i+1, err)
		}
		if choice.Consequences, err = compileOperations(getTable(c, "effects")); err != nil {
			return n, fmt.Errorf("node %s choice %d effects: %w", id, i+1, err)
		}
		n.Choices = append(n.Choices, choice)
	}
	return n, nil
}

func compileOperations(tbl *lua.LTable) ([]operation.QuestOperation, error) {
	if tbl == nil {
		return nil, nil
	}
	var ops []operation.QuestOperation
	for i := 1; i <= tbl.MaxN(); i++ {
		opTbl, ok := tbl.RawGetInt(i).(*lua.LTable)
		if !ok {
			return nil, fmt.Errorf("entry %d is not an operation table", i)
		}
		ops = append(ops, compileOperation(opTbl))
	}
	return ops, nil
}

// compileOperation maps an operation table onto a QuestOperation. Unknown
// types and operators are carried through for validation to report.
func compileOperation(tbl *lua.LTable) operation.QuestOperation {
	op := operation.QuestOperation{
		Type:           types.OperationType(getString(tbl, "type")),
		Quest:          getString(tbl, "quest"),
		ProgressDelta:  getInt(tbl, "delta"),
		Comparison:     compileComparison(getString(tbl, "comparison")),
		RequiredStatus: types.QuestConditionType(getString(tbl, "status")),
		Variable:       compileVariable(tbl.RawGetString("variable")),
	}
	switch op.Type {
	case types.OpUpdateQuestProgress:
		// Objectives are 1-based in content; a missing index becomes -1.
		op.ObjectiveIndex = getInt(tbl, "objective") - 1
	case types.OpSetBool, types.OpCheckBool:
		op.BoolValue = getBool(tbl, "value", false)
	default:
		op.IntValue = getInt(tbl, "value")
	}
	return op
}

func compileVariable(v lua.LValue) operation.VariableReference {
	switch val := v.(type) {
	case lua.LString:
		return operation.VariableReference{Scope: types.ScopeGlobal, Key: string(val)}
	case *lua.LTable:
		ref := operation.VariableReference{
			Scope: types.Scope(getString(val, "scope")),
			Key:   getString(val, "key"),
			Quest: getString(val, "quest"),
		}
		if ref.Scope == "" {
			ref.Scope = types.ScopeGlobal
		}
		return ref
	default:
		return operation.VariableReference{}
	}
}

var comparisonSymbols = map[string]types.Comparison{
	">":  types.GreaterThan,
	"<":  types.LessThan,
	"==": types.Equal,
	"=":  types.Equal,
	"~=": types.NotEqual,
	"!=": types.NotEqual,
}

func compileComparison(s string) types.Comparison {
	if c, ok := comparisonSymbols[s]; ok {
		return c
	}
	return types.Comparison(s)
}
