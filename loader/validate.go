package loader

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/nathoo/questvars/engine"
	"github.com/nathoo/questvars/engine/operation"
	"github.com/nathoo/questvars/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

func (e *ValidationError) errorf(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

func (e *ValidationError) warnf(format string, args ...any) {
	e.Warnings = append(e.Warnings, fmt.Sprintf(format, args...))
}

var validComparisons = map[types.Comparison]bool{
	types.GreaterThan: true,
	types.LessThan:    true,
	types.Equal:       true,
	types.NotEqual:    true,
}

var validConditions = map[types.QuestConditionType]bool{
	types.ConditionNotStarted: true,
	types.ConditionStarted:    true,
	types.ConditionInProgress: true,
	types.ConditionCompleted:  true,
}

// Validate checks the compiled defs for referential integrity and
// consistency. It never returns nil; an empty Errors slice means the
// content is playable.
func Validate(defs *engine.Defs) *ValidationError {
	ve := &ValidationError{}

	if defs.Game.Title == "" {
		ve.errorf("Game.Title is required")
	}
	if defs.Game.Start != "" {
		if _, ok := defs.Dialogues[defs.Game.Start]; !ok {
			ve.errorf("start dialogue %q not found in defined dialogues", defs.Game.Start)
		}
	}

	characters := map[string]bool{}
	for _, c := range defs.Characters {
		if characters[c.ID] {
			ve.errorf("duplicate character %q", c.ID)
		}
		characters[c.ID] = true
	}

	quests := map[string]types.QuestDef{}
	for _, q := range defs.Quests {
		if _, dup := quests[q.Key]; dup {
			ve.errorf("duplicate quest %q", q.Key)
		}
		quests[q.Key] = q
		for i, o := range q.Objectives {
			if o.Target < 1 {
				ve.errorf("quest %q objective %d has target %d, want at least 1", q.Key, i+1, o.Target)
			}
		}
	}

	paths := map[string]bool{}
	for _, v := range defs.Vars {
		if paths[v.Path] {
			ve.errorf("duplicate variable %q", v.Path)
		}
		paths[v.Path] = true
		validateVar(v, ve)
	}

	// Sorted for stable messages.
	for _, id := range slices.Sorted(maps.Keys(defs.Dialogues)) {
		d := defs.Dialogues[id]
		if _, ok := d.Nodes[d.Start]; !ok {
			ve.errorf("dialogue %q start node %q not found", id, d.Start)
		}
		for _, nodeID := range slices.Sorted(maps.Keys(d.Nodes)) {
			n := d.Nodes[nodeID]
			where := fmt.Sprintf("dialogue %q node %q", id, nodeID)
			if n.Speaker != "" && !characters[n.Speaker] {
				ve.warnf("%s speaker %q is not a defined character", where, n.Speaker)
			}
			validateOperations(n.OnEnter, where+" on_enter", quests, ve)
			validateOperations(n.OnExit, where+" on_exit", quests, ve)
			for i, c := range n.Choices {
				cw := fmt.Sprintf("%s choice %d", where, i+1)
				if c.Text == "" {
					ve.warnf("%s has no text", cw)
				}
				if c.Next != "" {
					if _, ok := d.Nodes[c.Next]; !ok {
						ve.errorf("%s points to undefined node %q", cw, c.Next)
					}
				}
				validateOperations(c.Conditions, cw+" requires", quests, ve)
				validateOperations(c.Consequences, cw+" effects", quests, ve)
			}
		}
	}

	return ve
}

func validateVar(v types.VarDef, ve *ValidationError) {
	if v.Path == "" || strings.HasPrefix(v.Path, "/") || strings.HasSuffix(v.Path, "/") || strings.Contains(v.Path, "//") {
		ve.errorf("variable path %q is malformed", v.Path)
	}
	switch v.Value.(type) {
	case int, bool, string:
	default:
		ve.errorf("variable %q has unsupported value %v (%T)", v.Path, v.Value, v.Value)
	}
}

func validateOperations(ops []operation.QuestOperation, where string, quests map[string]types.QuestDef, ve *ValidationError) {
	for i, op := range ops {
		validateOperation(op, fmt.Sprintf("%s[%d]", where, i+1), quests, ve)
	}
}

func validateOperation(op operation.QuestOperation, where string, quests map[string]types.QuestDef, ve *ValidationError) {
	switch op.Type {
	case types.OpStartQuest:
		// Starting an undeclared quest creates it at runtime.
		if _, ok := quests[op.Quest]; !ok && op.Quest != "" {
			ve.warnf("%s: StartQuest of undeclared quest %q", where, op.Quest)
		}
	case types.OpCompleteQuest, types.OpCheckQuestStatus:
		if _, ok := quests[op.Quest]; !ok {
			ve.errorf("%s: %s references unknown quest %q", where, op.Type, op.Quest)
		}
	case types.OpUpdateQuestProgress:
		q, ok := quests[op.Quest]
		if !ok {
			ve.errorf("%s: UpdateQuestProgress references unknown quest %q", where, op.Quest)
		} else if op.ObjectiveIndex < 0 || op.ObjectiveIndex >= len(q.Objectives) {
			ve.errorf("%s: quest %q has no objective %d", where, op.Quest, op.ObjectiveIndex+1)
		}
	case types.OpSetInt, types.OpIncrementInt, types.OpCheckInt, types.OpSetBool, types.OpCheckBool:
	default:
		ve.errorf("%s: unknown operation type %q", where, op.Type)
		return
	}

	if op.Type == types.OpCheckQuestStatus && !validConditions[op.RequiredStatus] {
		ve.errorf("%s: unknown quest status %q", where, op.RequiredStatus)
	}
	if op.Type == types.OpCheckInt && !validComparisons[op.Comparison] {
		ve.errorf("%s: unknown comparison %q", where, op.Comparison)
	}
	if !op.IsQuestOperation() {
		if op.Variable.ResolveKey() == "" {
			ve.errorf("%s: %s has no variable", where, op.Type)
		}
		if op.Variable.Scope == types.ScopeQuestScoped {
			if _, ok := quests[op.Variable.Quest]; !ok {
				ve.warnf("%s: variable %q is scoped to unknown quest %q", where, op.Variable.Key, op.Variable.Quest)
			}
		}
	}
}
