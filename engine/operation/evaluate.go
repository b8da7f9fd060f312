package operation

import (
	"github.com/nathoo/questvars/engine/state"
	"github.com/nathoo/questvars/types"
)

// Evaluate checks the operation against s without mutating it. Action kinds
// always pass so a single list can serve as guard and effect. Checks with a
// missing quest or variable key fail closed.
func (op QuestOperation) Evaluate(s *state.GameState) bool {
	switch op.Type {
	case types.OpStartQuest, types.OpCompleteQuest, types.OpUpdateQuestProgress,
		types.OpSetInt, types.OpIncrementInt, types.OpSetBool:
		return true

	case types.OpCheckQuestStatus:
		if op.Quest == "" {
			return false
		}
		return checkQuestStatus(s, op.Quest, op.RequiredStatus)

	case types.OpCheckInt:
		key := op.Variable.ResolveKey()
		if key == "" {
			return false
		}
		current, ok := s.Legacy.LookupInt(key)
		if !ok {
			return false
		}
		return compareInt(current, op.Comparison, op.IntValue)

	case types.OpCheckBool:
		key := op.Variable.ResolveKey()
		if key == "" {
			return false
		}
		current, ok := s.Legacy.LookupBool(key)
		if !ok {
			return false
		}
		return current == op.BoolValue

	default:
		return false
	}
}

// checkQuestStatus answers a quest condition. An absent quest counts as not
// started.
func checkQuestStatus(s *state.GameState, quest string, want types.QuestConditionType) bool {
	switch want {
	case types.ConditionNotStarted:
		return !s.IsQuestStarted(quest)
	case types.ConditionStarted:
		return s.IsQuestStarted(quest)
	case types.ConditionInProgress:
		return s.QuestStatus(quest) == types.QuestInProgress
	case types.ConditionCompleted:
		return s.IsQuestCompleted(quest)
	default:
		return false
	}
}

func compareInt(current int, cmp types.Comparison, value int) bool {
	switch cmp {
	case types.GreaterThan:
		return current > value
	case types.LessThan:
		return current < value
	case types.Equal:
		return current == value
	case types.NotEqual:
		return current != value
	default:
		return false
	}
}
