package state

import (
	"strings"

	"github.com/nathoo/questvars/engine/variables"
)

// TryResolveByID finds the node with the given id anywhere in the tree.
func (s *GameState) TryResolveByID(id string) (variables.Variable, bool) {
	if id == "" || s.Root == nil {
		return nil, false
	}
	v := s.Root.FindByID(id)
	return v, v != nil
}

// ResolvePath finds the node at a slash-delimited key path under the root.
func (s *GameState) ResolvePath(path string) (variables.Variable, bool) {
	if s.Root == nil {
		return nil, false
	}
	v := s.Root.FindByPath(path)
	return v, v != nil
}

// Get returns the value of the node with id, or def when the id does not
// resolve or the node does not hold a T.
func Get[T variables.Scalar](s *GameState, id string, def T) T {
	v, ok := s.TryResolveByID(id)
	if !ok {
		return def
	}
	val, ok := v.(*variables.Value[T])
	if !ok {
		return def
	}
	return val.Value
}

// Set stores value in the node with id. It reports false, changing nothing,
// when the id does not resolve or the node does not hold a T.
func Set[T variables.Scalar](s *GameState, id string, value T) bool {
	v, ok := s.TryResolveByID(id)
	if !ok {
		return false
	}
	val, ok := v.(*variables.Value[T])
	if !ok {
		return false
	}
	val.Value = value
	s.changed()
	return true
}

// SetBoxed stores an untyped value into a scalar node, converting it
// losslessly. Used where the payload type is only known at runtime.
func (s *GameState) SetBoxed(id string, value any) bool {
	v, ok := s.TryResolveByID(id)
	if !ok {
		return false
	}
	var stored bool
	switch val := v.(type) {
	case *variables.IntValue:
		stored = val.Unbox(value)
	case *variables.BoolValue:
		stored = val.Unbox(value)
	case *variables.StringValue:
		stored = val.Unbox(value)
	}
	if stored {
		s.changed()
	}
	return stored
}

// Declare makes sure a scalar exists at path, creating intermediate groups
// and the leaf as needed. An existing leaf keeps its value. Returns nil if
// the path is blocked by a node of another kind or value is not a scalar.
func (s *GameState) Declare(path, displayName string, value any) variables.Variable {
	parent, key := splitPath(path)
	if key == "" {
		return nil
	}
	s.ensureInitialized()
	grp := s.Root
	for _, seg := range parent {
		grp = grp.EnsureGroup(seg)
		if grp == nil {
			return nil
		}
	}
	if existing := grp.Child(key); existing != nil {
		if _, isGroup := existing.(*variables.Group); isGroup {
			return nil
		}
		return existing
	}
	leaf := variables.NewScalar(key, value)
	if leaf == nil {
		return nil
	}
	leaf.Header().DisplayName = displayName
	grp.Add(leaf)
	s.changed()
	return leaf
}

func splitPath(path string) ([]string, string) {
	segs := strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
	if len(segs) == 0 {
		return nil, ""
	}
	return segs[:len(segs)-1], segs[len(segs)-1]
}
