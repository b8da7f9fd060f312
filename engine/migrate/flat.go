package migrate

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/nathoo/questvars/engine/state"
	"github.com/nathoo/questvars/engine/variables"
	"github.com/nathoo/questvars/types"
)

// Report summarizes a FlatToTree run.
type Report struct {
	Created int
	Updated int
	Quests  int
	Skipped []string // flat keys that could not be placed in the tree
}

// String renders the report on one line.
func (r Report) String() string {
	s := fmt.Sprintf("%d created, %d updated, %d quests", r.Created, r.Updated, r.Quests)
	if len(r.Skipped) > 0 {
		s += fmt.Sprintf(", skipped: %s", strings.Join(r.Skipped, ", "))
	}
	return s
}

// FlatToTree copies the legacy store into the variable tree. Ints, bools and
// strings land in Flags/<key>; an existing value of the same type is
// overwritten and one of another kind is left alone and reported as
// skipped. Legacy quests land in Quests/<name> with their status and
// objective progress. The legacy store itself is not modified. Listeners are
// notified once.
func FlatToTree(s *state.GameState) Report {
	var r Report
	s.Batch(func() {
		for _, k := range slices.Sorted(maps.Keys(s.Legacy.Ints)) {
			place(s, &r, k, s.Legacy.Ints[k])
		}
		for _, k := range slices.Sorted(maps.Keys(s.Legacy.Bools)) {
			place(s, &r, k, s.Legacy.Bools[k])
		}
		for _, k := range slices.Sorted(maps.Keys(s.Legacy.Strings)) {
			place(s, &r, k, s.Legacy.Strings[k])
		}
		for _, lq := range s.Legacy.ActiveQuests {
			if migrateQuest(s, lq.Name, lq.Status, lq.Objectives) {
				r.Quests++
			} else {
				r.Skipped = append(r.Skipped, "quest "+lq.Name)
			}
		}
		for _, cq := range s.Legacy.CompletedQuests {
			if migrateQuest(s, cq.Name, types.QuestCompleted, nil) {
				r.Quests++
			} else {
				r.Skipped = append(r.Skipped, "quest "+cq.Name)
			}
		}
	})
	s.Logger().Info("migrated legacy store", "created", r.Created, "updated", r.Updated,
		"quests", r.Quests, "skipped", len(r.Skipped))
	return r
}

func place[T variables.Scalar](s *state.GameState, r *Report, key string, value T) {
	if key == "" || strings.Contains(key, "/") {
		r.Skipped = append(r.Skipped, key)
		return
	}
	path := state.GroupFlags + "/" + key
	existing, ok := s.ResolvePath(path)
	if !ok {
		if s.Declare(path, "", value) == nil {
			r.Skipped = append(r.Skipped, key)
			return
		}
		r.Created++
		return
	}
	if !state.Set(s, existing.Header().ID, value) {
		r.Skipped = append(r.Skipped, key)
		return
	}
	r.Updated++
}

func migrateQuest(s *state.GameState, name string, status types.QuestStatus, objectives []state.LegacyObjective) bool {
	q := s.Quest(name)
	if q == nil {
		q = s.CreateQuest(name, "")
	}
	if q == nil {
		return false
	}
	for i, lo := range objectives {
		o := q.Objective(i)
		if o == nil {
			o = variables.NewObjective(lo.Key, lo.Target)
			q.AddObjective(o)
		}
		o.Progress = lo.Progress
	}
	if status != "" {
		q.Status = status
	}
	s.MarkChanged()
	return true
}
