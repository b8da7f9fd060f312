package state

import (
	"slices"

	"github.com/nathoo/questvars/types"
)

// LegacyObjective is the flat snapshot of one objective of a legacy quest.
type LegacyObjective struct {
	Key      string `json:"key"`
	Progress int    `json:"progress"`
	Target   int    `json:"target"`
}

// LegacyQuest is an entry of the active-quest list.
type LegacyQuest struct {
	Name       string            `json:"name"`
	Status     types.QuestStatus `json:"status"`
	Objectives []LegacyObjective `json:"objectives"`
}

func (q LegacyQuest) clone() LegacyQuest {
	q.Objectives = slices.Clone(q.Objectives)
	return q
}

// CompletedQuest is an entry of the completed-quest list.
type CompletedQuest struct {
	Name   string            `json:"name"`
	Status types.QuestStatus `json:"status"`
}

// LegacyStore is the flat, name-keyed variable and quest store that predates
// the variable tree. Writes create entries on demand. It is addressed
// independently of the tree and the two are allowed to diverge.
type LegacyStore struct {
	Ints            map[string]int    `json:"ints"`
	Bools           map[string]bool   `json:"bools"`
	Strings         map[string]string `json:"strings"`
	ActiveQuests    []LegacyQuest     `json:"activeQuests"`
	CompletedQuests []CompletedQuest  `json:"completedQuests"`

	changed func()
}

func newLegacyStore(changed func()) *LegacyStore {
	l := &LegacyStore{changed: changed}
	l.fill()
	return l
}

// fill replaces nil collections with empty ones.
func (l *LegacyStore) fill() {
	if l.Ints == nil {
		l.Ints = map[string]int{}
	}
	if l.Bools == nil {
		l.Bools = map[string]bool{}
	}
	if l.Strings == nil {
		l.Strings = map[string]string{}
	}
	if l.ActiveQuests == nil {
		l.ActiveQuests = []LegacyQuest{}
	}
	if l.CompletedQuests == nil {
		l.CompletedQuests = []CompletedQuest{}
	}
}

func (l *LegacyStore) notify() {
	if l.changed != nil {
		l.changed()
	}
}

// GetInt returns the int named name. Unset ints return 0.
func (l *LegacyStore) GetInt(name string) int {
	return l.Ints[name]
}

// LookupInt returns the int named name and whether it has ever been set.
func (l *LegacyStore) LookupInt(name string) (int, bool) {
	v, ok := l.Ints[name]
	return v, ok
}

// SetInt stores an int, creating it if needed.
func (l *LegacyStore) SetInt(name string, value int) {
	l.Ints[name] = value
	l.notify()
}

// GetBool returns the bool named name. Unset bools return false.
func (l *LegacyStore) GetBool(name string) bool {
	return l.Bools[name]
}

// LookupBool returns the bool named name and whether it has ever been set.
func (l *LegacyStore) LookupBool(name string) (bool, bool) {
	v, ok := l.Bools[name]
	return v, ok
}

// SetBool stores a bool, creating it if needed.
func (l *LegacyStore) SetBool(name string, value bool) {
	l.Bools[name] = value
	l.notify()
}

// GetString returns the string named name. Unset strings return "".
func (l *LegacyStore) GetString(name string) string {
	return l.Strings[name]
}

// LookupString returns the string named name and whether it has ever been set.
func (l *LegacyStore) LookupString(name string) (string, bool) {
	v, ok := l.Strings[name]
	return v, ok
}

// SetString stores a string, creating it if needed.
func (l *LegacyStore) SetString(name string, value string) {
	l.Strings[name] = value
	l.notify()
}

// StartQuest adds name to the active list and returns a copy of its entry.
// Starting an active quest returns the existing entry; starting a completed
// quest does nothing and reports false.
func (l *LegacyStore) StartQuest(name string, objectives []LegacyObjective) (LegacyQuest, bool) {
	if q := l.GetQuest(name); q != nil {
		return q.clone(), true
	}
	if l.isCompleted(name) {
		return LegacyQuest{}, false
	}
	q := LegacyQuest{
		Name:       name,
		Status:     types.QuestInProgress,
		Objectives: slices.Clone(objectives),
	}
	l.ActiveQuests = append(l.ActiveQuests, q)
	l.notify()
	return q.clone(), true
}

// UpdateQuestProgress adds delta to an objective of an active quest.
func (l *LegacyStore) UpdateQuestProgress(name string, index, delta int) bool {
	q := l.GetQuest(name)
	if q == nil || index < 0 || index >= len(q.Objectives) {
		return false
	}
	q.Objectives[index].Progress += delta
	l.notify()
	return true
}

// CompleteQuest moves name from the active list to the completed list.
// Reports false if it was already completed.
func (l *LegacyStore) CompleteQuest(name string) bool {
	if l.isCompleted(name) {
		return false
	}
	l.ActiveQuests = slices.DeleteFunc(l.ActiveQuests, func(q LegacyQuest) bool { return q.Name == name })
	l.CompletedQuests = append(l.CompletedQuests, CompletedQuest{Name: name, Status: types.QuestCompleted})
	l.notify()
	return true
}

// GetQuest returns the active quest named name, or nil. The pointer is into
// the active list and is valid only until the next quest mutation.
func (l *LegacyStore) GetQuest(name string) *LegacyQuest {
	for i := range l.ActiveQuests {
		if l.ActiveQuests[i].Name == name {
			return &l.ActiveQuests[i]
		}
	}
	return nil
}

// QuestStatus derives a status from list membership.
func (l *LegacyStore) QuestStatus(name string) types.QuestStatus {
	switch {
	case l.isCompleted(name):
		return types.QuestCompleted
	case l.GetQuest(name) != nil:
		return types.QuestInProgress
	default:
		return types.QuestNotStarted
	}
}

// Clear empties every collection.
func (l *LegacyStore) Clear() {
	l.Ints = nil
	l.Bools = nil
	l.Strings = nil
	l.ActiveQuests = nil
	l.CompletedQuests = nil
	l.fill()
	l.notify()
}

// Restore replaces the store contents with a decoded copy.
func (l *LegacyStore) Restore(from *LegacyStore) {
	if from == nil {
		l.Clear()
		return
	}
	l.Ints = from.Ints
	l.Bools = from.Bools
	l.Strings = from.Strings
	l.ActiveQuests = from.ActiveQuests
	l.CompletedQuests = from.CompletedQuests
	l.fill()
	l.notify()
}

func (l *LegacyStore) isCompleted(name string) bool {
	return slices.ContainsFunc(l.CompletedQuests, func(c CompletedQuest) bool { return c.Name == name })
}
