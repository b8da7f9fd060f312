package state

import (
	"github.com/nathoo/questvars/engine/variables"
	"github.com/nathoo/questvars/types"
)

// Quest returns the quest at Quests/<name>, or nil.
func (s *GameState) Quest(name string) *variables.Quest {
	if s.Root == nil || name == "" {
		return nil
	}
	q, _ := s.Root.FindByPath(GroupQuests + "/" + name).(*variables.Quest)
	return q
}

// Quests returns every quest in the Quests group, in order.
func (s *GameState) Quests() []*variables.Quest {
	if s.Root == nil {
		return nil
	}
	grp, _ := s.Root.Child(GroupQuests).(*variables.Group)
	if grp == nil {
		return nil
	}
	var out []*variables.Quest
	for _, c := range grp.Children {
		if q, ok := c.(*variables.Quest); ok && q != nil {
			out = append(out, q)
		}
	}
	return out
}

// CreateQuest adds a NotStarted quest under Quests. If a quest with the key
// already exists it is returned unchanged. Returns nil when the Quests group
// cannot be ensured or the key is taken by another kind of variable.
func (s *GameState) CreateQuest(key, displayName string) *variables.Quest {
	s.ensureInitialized()
	quests := s.Root.EnsureGroup(GroupQuests)
	if quests == nil {
		s.Logger().Warn("cannot create quest: Quests group unavailable", "quest", key)
		return nil
	}
	if existing := quests.Child(key); existing != nil {
		q, ok := existing.(*variables.Quest)
		if !ok {
			s.Logger().Warn("cannot create quest: key taken", "quest", key, "kind", existing.Kind())
			return nil
		}
		return q
	}
	q := variables.NewQuest(key, displayName)
	quests.Add(q)
	s.changed()
	return q
}

// IsQuestStarted reports whether the quest exists and has left NotStarted.
func (s *GameState) IsQuestStarted(name string) bool {
	q := s.Quest(name)
	return q != nil && q.Status != types.QuestNotStarted
}

// IsQuestCompleted reports whether the quest exists and is Completed.
func (s *GameState) IsQuestCompleted(name string) bool {
	q := s.Quest(name)
	return q != nil && q.Status == types.QuestCompleted
}

// IsQuestNotStarted reports whether the quest is absent or NotStarted.
func (s *GameState) IsQuestNotStarted(name string) bool {
	q := s.Quest(name)
	return q == nil || q.Status == types.QuestNotStarted
}

// QuestStatus returns the status of the quest, NotStarted when absent.
func (s *GameState) QuestStatus(name string) types.QuestStatus {
	if q := s.Quest(name); q != nil {
		return q.Status
	}
	return types.QuestNotStarted
}

// StartQuest moves the quest to InProgress, creating it first if needed.
// A Completed quest stays Completed.
func (s *GameState) StartQuest(name string) *variables.Quest {
	var q *variables.Quest
	s.Batch(func() {
		q = s.Quest(name)
		if q == nil {
			q = s.CreateQuest(name, "")
		}
		if q == nil || q.Status != types.QuestNotStarted {
			return
		}
		q.Status = types.QuestInProgress
		s.changed()
	})
	return q
}

// CompleteQuest marks the quest Completed. Reports false if it does not exist.
func (s *GameState) CompleteQuest(name string) bool {
	q := s.Quest(name)
	if q == nil {
		return false
	}
	if q.Status != types.QuestCompleted {
		q.Status = types.QuestCompleted
		s.changed()
	}
	return true
}

// UpdateQuestProgress adds delta to the progress of objective index.
// Progress is not clamped to the target. Reports false if the quest or
// objective does not exist.
func (s *GameState) UpdateQuestProgress(name string, index, delta int) bool {
	q := s.Quest(name)
	if q == nil {
		return false
	}
	o := q.Objective(index)
	if o == nil {
		return false
	}
	o.Progress += delta
	s.changed()
	return true
}
