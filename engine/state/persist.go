package state

import (
	"encoding/json"
	"fmt"

	"github.com/nathoo/questvars/engine/variables"
	"github.com/nathoo/questvars/types"
)

// document is the persisted shape of the tree half of the state.
type document struct {
	Root       *variables.Group  `json:"root"`
	Characters []types.Character `json:"characters"`
}

// ToJSON serializes the variable tree and characters.
func (s *GameState) ToJSON() ([]byte, error) {
	return json.MarshalIndent(document{Root: s.Root, Characters: s.Characters}, "", "  ")
}

// FromJSON replaces the tree and characters with decoded ones. A missing or
// null root becomes an empty root and missing characters an empty list;
// default groups, parent links and ids are repaired afterwards. On a decode
// error the state is left unchanged.
func (s *GameState) FromJSON(data []byte) error {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decoding game state: %w", err)
	}
	if doc.Root == nil {
		doc.Root = variables.NewGroup("root")
	}
	if doc.Characters == nil {
		doc.Characters = []types.Character{}
	}
	s.Root = doc.Root
	s.Characters = doc.Characters
	if s.Initialize() {
		s.Logger().Debug("repaired loaded state")
	}
	s.changed()
	return nil
}

// ResetReport counts what ResetV2 touched.
type ResetReport struct {
	Quests     int
	Objectives int
}

// ResetV2 returns every quest in the tree to NotStarted with zero objective
// progress. Nothing is removed and non-quest variables keep their values.
func (s *GameState) ResetV2() ResetReport {
	var r ResetReport
	for v := range variables.Traverse(s.Root) {
		q, ok := v.(*variables.Quest)
		if !ok {
			continue
		}
		r.Quests++
		q.Status = types.QuestNotStarted
		for _, o := range q.Objectives {
			o.Progress = 0
			r.Objectives++
		}
	}
	s.Initialize()
	s.Logger().Info("reset quest state", "quests", r.Quests, "objectives", r.Objectives)
	s.changed()
	return r
}
