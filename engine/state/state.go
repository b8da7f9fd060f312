// Package state owns the mutable game state: the variable tree, the legacy
// flat store kept for older content, and the change notification that UI
// layers subscribe to.
package state

import (
	"log/slog"
	"slices"

	"github.com/nathoo/questvars/engine/variables"
	"github.com/nathoo/questvars/types"
)

// Names of the groups that always exist under the root.
const (
	GroupQuests = "Quests"
	GroupPlayer = "Player"
	GroupFlags  = "Flags"
)

var defaultGroups = []string{GroupQuests, GroupPlayer, GroupFlags}

// Operation is anything that can be checked against or applied to the state.
// operation.QuestOperation is the implementation used by content.
type Operation interface {
	Evaluate(s *GameState) bool
	Execute(s *GameState)
}

// GameState is the aggregate root for one game session. It is not safe for
// concurrent use; all calls are expected from the host's update loop.
type GameState struct {
	Root       *variables.Group
	Characters []types.Character

	// Legacy is the flat name-keyed store used by older content. It is not
	// kept in lockstep with Root.
	Legacy *LegacyStore

	logger    *slog.Logger
	listeners []*listener
	suspend   int
	dirty     bool
}

type listener struct {
	fn func()
}

// New creates an initialized state with the default groups present.
func New() *GameState {
	s := &GameState{
		Root:       variables.NewGroup("root"),
		Characters: []types.Character{},
	}
	s.Legacy = newLegacyStore(s.changed)
	s.Initialize()
	return s
}

// SetLogger replaces the logger used for diagnostics. Nil restores the default.
func (s *GameState) SetLogger(l *slog.Logger) {
	s.logger = l
}

// Logger returns the diagnostics logger.
func (s *GameState) Logger() *slog.Logger {
	if s.logger == nil {
		return slog.Default()
	}
	return s.logger
}

// Initialize ensures the default groups exist, rebuilds parent links and
// assigns ids to nodes that lack one. It reports whether anything had to be
// created or assigned, so callers can tell when the state needs saving.
func (s *GameState) Initialize() bool {
	dirty := false
	if s.Root == nil {
		s.Root = variables.NewGroup("root")
		dirty = true
	}
	if s.Characters == nil {
		s.Characters = []types.Character{}
	}
	if s.Legacy == nil {
		s.Legacy = newLegacyStore(s.changed)
	}
	for _, name := range defaultGroups {
		if s.Root.Child(name) == nil {
			if s.Root.EnsureGroup(name) != nil {
				dirty = true
			}
		} else if _, ok := s.Root.Child(name).(*variables.Group); !ok {
			s.Logger().Warn("default group key is taken by a non-group variable", "key", name)
		}
	}
	variables.RebuildParentLinks(s.Root)
	if variables.EnsureAllIDsAssigned(s.Root) {
		dirty = true
	}
	return dirty
}

// ensureInitialized runs Initialize on a state built without New.
func (s *GameState) ensureInitialized() {
	if s.Root == nil || s.Legacy == nil {
		s.Initialize()
	}
}

// Subscribe registers fn to be called synchronously after state changes.
// The returned function removes the subscription.
func (s *GameState) Subscribe(fn func()) (unsubscribe func()) {
	l := &listener{fn: fn}
	s.listeners = append(s.listeners, l)
	return func() {
		s.listeners = slices.DeleteFunc(s.listeners, func(x *listener) bool { return x == l })
	}
}

// Batch runs fn with notifications suspended and fires a single
// notification afterwards if anything changed.
func (s *GameState) Batch(fn func()) {
	s.suspend++
	fn()
	s.suspend--
	if s.suspend == 0 && s.dirty {
		s.notify()
	}
}

// EvaluateOperations reports whether every operation evaluates true.
// An empty list is vacuously true; evaluation stops at the first failure.
func (s *GameState) EvaluateOperations(ops []Operation) bool {
	for _, op := range ops {
		if op == nil {
			continue
		}
		if !op.Evaluate(s) {
			return false
		}
	}
	return true
}

// ApplyActions executes every operation in order, regardless of individual
// outcome, then fires exactly one change notification if ops is non-empty.
func (s *GameState) ApplyActions(ops []Operation) {
	if len(ops) == 0 {
		return
	}
	s.suspend++
	for _, op := range ops {
		if op == nil {
			continue
		}
		op.Execute(s)
	}
	s.suspend--
	s.dirty = true
	if s.suspend == 0 {
		s.notify()
	}
}

// MarkChanged reports a mutation made directly on tree nodes, outside the
// GameState API, so that listeners hear about it.
func (s *GameState) MarkChanged() {
	s.changed()
}

// changed marks the state modified and notifies unless a batch is open.
func (s *GameState) changed() {
	s.dirty = true
	if s.suspend == 0 {
		s.notify()
	}
}

func (s *GameState) notify() {
	s.dirty = false
	for _, l := range slices.Clone(s.listeners) {
		l.fn()
	}
}
