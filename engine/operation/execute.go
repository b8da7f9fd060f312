package operation

import (
	"github.com/nathoo/questvars/engine/state"
	"github.com/nathoo/questvars/engine/variables"
	"github.com/nathoo/questvars/types"
)

// Execute applies the operation to s. Quest kinds write to the variable tree
// and mirror into the legacy store; variable kinds write to the legacy store
// under the resolved key. Missing inputs are logged and ignored. Check kinds
// have nothing to execute.
func (op QuestOperation) Execute(s *state.GameState) {
	log := s.Logger()
	s.Batch(func() {
		switch op.Type {
		case types.OpStartQuest:
			if op.Quest == "" {
				log.Warn("start quest: no quest set", "op", op.String())
				return
			}
			q := s.StartQuest(op.Quest)
			if q == nil {
				log.Warn("start quest: quest unavailable", "quest", op.Quest)
				return
			}
			s.Legacy.StartQuest(op.Quest, legacyObjectives(q))

		case types.OpCompleteQuest:
			if op.Quest == "" {
				log.Warn("complete quest: no quest set", "op", op.String())
				return
			}
			if !s.CompleteQuest(op.Quest) {
				log.Warn("complete quest: unknown quest", "quest", op.Quest)
				return
			}
			s.Legacy.CompleteQuest(op.Quest)

		case types.OpUpdateQuestProgress:
			if op.Quest == "" {
				log.Warn("update progress: no quest set", "op", op.String())
				return
			}
			if !s.UpdateQuestProgress(op.Quest, op.ObjectiveIndex, op.ProgressDelta) {
				log.Warn("update progress: unknown quest or objective",
					"quest", op.Quest, "objective", op.ObjectiveIndex)
				return
			}
			s.Legacy.UpdateQuestProgress(op.Quest, op.ObjectiveIndex, op.ProgressDelta)

		case types.OpSetInt:
			key := op.Variable.ResolveKey()
			if key == "" {
				log.Warn("set int: no variable key", "op", op.String())
				return
			}
			s.Legacy.SetInt(key, op.IntValue)

		case types.OpIncrementInt:
			key := op.Variable.ResolveKey()
			if key == "" {
				log.Warn("increment int: no variable key", "op", op.String())
				return
			}
			s.Legacy.SetInt(key, s.Legacy.GetInt(key)+op.IntValue)

		case types.OpSetBool:
			key := op.Variable.ResolveKey()
			if key == "" {
				log.Warn("set bool: no variable key", "op", op.String())
				return
			}
			s.Legacy.SetBool(key, op.BoolValue)

		case types.OpCheckQuestStatus, types.OpCheckInt, types.OpCheckBool:
			log.Debug("check operation has no effect", "op", op.String())

		default:
			log.Warn("unknown operation type", "type", string(op.Type))
		}
	})
}

func legacyObjectives(q *variables.Quest) []state.LegacyObjective {
	out := make([]state.LegacyObjective, 0, len(q.Objectives))
	for _, o := range q.Objectives {
		out = append(out, state.LegacyObjective{Key: o.Key, Progress: o.Progress, Target: o.Target})
	}
	return out
}
