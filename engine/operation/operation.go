// Package operation implements QuestOperation, the tagged instruction that
// dialogue content uses both as a condition (Evaluate) and as a consequence
// (Execute) against a GameState.
package operation

import (
	"encoding/json"
	"fmt"

	"github.com/nathoo/questvars/engine/state"
	"github.com/nathoo/questvars/types"
)

// VariableReference addresses a variable in the flat store, either globally
// or relative to a quest.
type VariableReference struct {
	Scope types.Scope `json:"scope,omitempty"`
	Key   string      `json:"key"`
	Quest string      `json:"quest,omitempty"`
}

// ResolveKey returns the flat lookup key. Quest-scoped references resolve to
// "<quest>.<key>" and fall back to the bare key when no quest is set.
func (r VariableReference) ResolveKey() string {
	if r.Key == "" {
		return ""
	}
	if r.Scope == types.ScopeQuestScoped && r.Quest != "" {
		return r.Quest + "." + r.Key
	}
	return r.Key
}

// QuestOperation is a check or action against the game state. Which payload
// fields are read depends on Type.
type QuestOperation struct {
	Type types.OperationType `json:"type"`

	Quest          string `json:"quest,omitempty"`
	ObjectiveIndex int    `json:"objectiveIndex,omitempty"`
	ProgressDelta  int    `json:"progressDelta,omitempty"`

	Variable   VariableReference `json:"variable,omitzero"`
	IntValue   int               `json:"intValue,omitempty"`
	BoolValue  bool              `json:"boolValue,omitempty"`
	Comparison types.Comparison  `json:"comparison,omitempty"`

	RequiredStatus types.QuestConditionType `json:"requiredStatus,omitempty"`
}

// IsCheck reports whether the operation is a check kind. Check kinds have a
// meaningful Evaluate and no Execute.
func (op QuestOperation) IsCheck() bool {
	switch op.Type {
	case types.OpCheckQuestStatus, types.OpCheckInt, types.OpCheckBool:
		return true
	}
	return false
}

// IsQuestOperation reports whether the operation addresses a quest rather
// than a flat variable.
func (op QuestOperation) IsQuestOperation() bool {
	switch op.Type {
	case types.OpStartQuest, types.OpCompleteQuest, types.OpUpdateQuestProgress, types.OpCheckQuestStatus:
		return true
	}
	return false
}

// Clone returns a deep copy made by a JSON round trip, the same way
// authoring tools duplicate operations.
func (op QuestOperation) Clone() QuestOperation {
	data, err := json.Marshal(op)
	if err != nil {
		return op
	}
	var out QuestOperation
	if err := json.Unmarshal(data, &out); err != nil {
		return op
	}
	return out
}

// String renders a one-line description for trace output.
func (op QuestOperation) String() string {
	key := op.Variable.ResolveKey()
	switch op.Type {
	case types.OpStartQuest, types.OpCompleteQuest:
		return fmt.Sprintf("%s(%s)", op.Type, op.Quest)
	case types.OpUpdateQuestProgress:
		return fmt.Sprintf("%s(%s[%d] %+d)", op.Type, op.Quest, op.ObjectiveIndex, op.ProgressDelta)
	case types.OpCheckQuestStatus:
		return fmt.Sprintf("%s(%s is %s)", op.Type, op.Quest, op.RequiredStatus)
	case types.OpSetInt:
		return fmt.Sprintf("%s(%s = %d)", op.Type, key, op.IntValue)
	case types.OpIncrementInt:
		return fmt.Sprintf("%s(%s += %d)", op.Type, key, op.IntValue)
	case types.OpCheckInt:
		return fmt.Sprintf("%s(%s %s %d)", op.Type, key, comparisonSymbol(op.Comparison), op.IntValue)
	case types.OpSetBool:
		return fmt.Sprintf("%s(%s = %t)", op.Type, key, op.BoolValue)
	case types.OpCheckBool:
		return fmt.Sprintf("%s(%s == %t)", op.Type, key, op.BoolValue)
	default:
		return fmt.Sprintf("unknown(%q)", string(op.Type))
	}
}

func comparisonSymbol(c types.Comparison) string {
	switch c {
	case types.GreaterThan:
		return ">"
	case types.LessThan:
		return "<"
	case types.Equal:
		return "=="
	case types.NotEqual:
		return "!="
	default:
		return "?"
	}
}

// List adapts a slice of operations to the state.Operation interface.
func List(ops []QuestOperation) []state.Operation {
	out := make([]state.Operation, len(ops))
	for i := range ops {
		out[i] = ops[i]
	}
	return out
}

// EvaluateAll reports whether every operation in ops evaluates true.
func EvaluateAll(s *state.GameState, ops []QuestOperation) bool {
	return s.EvaluateOperations(List(ops))
}

// ApplyAll executes ops as one batch.
func ApplyAll(s *state.GameState, ops []QuestOperation) {
	s.ApplyActions(List(ops))
}
