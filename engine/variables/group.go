package variables

import (
	"iter"
	"strings"
)

// Group is a container node with ordered children.
type Group struct {
	Node
	Children []Variable
}

// NewGroup builds an empty group with a fresh id.
func NewGroup(key string) *Group {
	return &Group{Node: Node{ID: NewID(), Key: key}, Children: []Variable{}}
}

// Kind reports KindGroup.
func (g *Group) Kind() Kind { return KindGroup }

// Add appends child, linking it to g and assigning an id if it has none.
func (g *Group) Add(child Variable) {
	if isNil(child) {
		return
	}
	h := child.Header()
	if h.ID == "" {
		h.ID = NewID()
	}
	h.parent = g
	g.Children = append(g.Children, child)
}

// Child returns the first direct child with the given key.
func (g *Group) Child(key string) Variable {
	for _, c := range g.Children {
		if isNil(c) {
			continue
		}
		if c.Header().Key == key {
			return c
		}
	}
	return nil
}

// EnsureGroup returns the child group named name, creating it if absent.
// Returns nil if a child with that key exists but is not a group.
func (g *Group) EnsureGroup(name string) *Group {
	if existing := g.Child(name); existing != nil {
		sub, _ := existing.(*Group)
		return sub
	}
	sub := NewGroup(name)
	g.Add(sub)
	return sub
}

// FindByID searches g and its descendants for the node with id.
func (g *Group) FindByID(id string) Variable {
	return FindByID(g, id)
}

// FindByPath resolves a slash-delimited key path relative to g, such as
// "Quests/FindSword/dig". Empty segments are ignored. Groups are entered by
// child key and quests by objective key; any other node ends the path, so
// the lookup returns nil if segments remain.
func (g *Group) FindByPath(path string) Variable {
	var cur Variable = g
	found := false
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			continue
		}
		var next Variable
		switch n := cur.(type) {
		case *Group:
			next = n.Child(seg)
		case *Quest:
			if o := n.ObjectiveByKey(seg); o != nil {
				next = o
			}
		}
		if next == nil {
			return nil
		}
		cur = next
		found = true
	}
	if !found {
		return nil
	}
	return cur
}

// FindByID searches root and its descendants depth-first for id.
// An empty id never matches.
func FindByID(root Variable, id string) Variable {
	if id == "" {
		return nil
	}
	for v := range Traverse(root) {
		if v.Header().ID == id {
			return v
		}
	}
	return nil
}

// Traverse yields root and every descendant in depth-first pre-order.
// Objectives are yielded after their quest.
func Traverse(root Variable) iter.Seq[Variable] {
	return func(yield func(Variable) bool) {
		walk(root, yield)
	}
}

func walk(v Variable, yield func(Variable) bool) bool {
	if isNil(v) {
		return true
	}
	if !yield(v) {
		return false
	}
	for _, c := range children(v) {
		if !walk(c, yield) {
			return false
		}
	}
	return true
}

// RebuildParentLinks points every descendant of root back at its container
// and drops nil entries. The parent of root itself is left alone.
func RebuildParentLinks(root Variable) {
	switch v := root.(type) {
	case *Group:
		if v == nil {
			return
		}
		kept := v.Children[:0]
		for _, c := range v.Children {
			if isNil(c) {
				continue
			}
			c.Header().parent = v
			RebuildParentLinks(c)
			kept = append(kept, c)
		}
		clear(v.Children[len(kept):])
		v.Children = kept
	case *Quest:
		if v == nil {
			return
		}
		kept := v.Objectives[:0]
		for _, o := range v.Objectives {
			if o == nil {
				continue
			}
			o.parent = v
			kept = append(kept, o)
		}
		clear(v.Objectives[len(kept):])
		v.Objectives = kept
	}
}

// EnsureAllIDsAssigned gives every node under root that lacks an id a fresh
// one. Existing ids are never changed. Reports whether anything was assigned.
func EnsureAllIDsAssigned(root Variable) bool {
	assigned := false
	for v := range Traverse(root) {
		h := v.Header()
		if h.ID == "" {
			h.ID = NewID()
			assigned = true
		}
	}
	return assigned
}

// PathOf returns the key path of v from the tree root, excluding the root's
// own key. The root itself has an empty path.
func PathOf(v Variable) string {
	if isNil(v) {
		return ""
	}
	var keys []string
	for cur := v; cur != nil; {
		h := cur.Header()
		if h.parent == nil {
			break
		}
		keys = append(keys, h.Key)
		cur = h.parent
	}
	for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
		keys[i], keys[j] = keys[j], keys[i]
	}
	return strings.Join(keys, "/")
}

// children returns the direct descendants of v.
func children(v Variable) []Variable {
	switch n := v.(type) {
	case *Group:
		return n.Children
	case *Quest:
		out := make([]Variable, 0, len(n.Objectives))
		for _, o := range n.Objectives {
			if o != nil {
				out = append(out, o)
			}
		}
		return out
	default:
		return nil
	}
}

// isNil reports whether v is nil or a typed nil pointer.
func isNil(v Variable) bool {
	switch n := v.(type) {
	case nil:
		return true
	case *Group:
		return n == nil
	case *IntValue:
		return n == nil
	case *BoolValue:
		return n == nil
	case *StringValue:
		return n == nil
	case *Quest:
		return n == nil
	case *Objective:
		return n == nil
	default:
		return false
	}
}
