// Package variables implements the game-state variable tree: a closed set of
// node types (groups, typed values, quests, objectives) addressed by stable
// id and by slash-delimited key path.
package variables

import (
	"github.com/google/uuid"

	"github.com/nathoo/questvars/types"
)

// Kind is the type discriminator of a Variable. It is also the "type" field
// of the JSON encoding.
type Kind string

const (
	KindGroup     Kind = "group"
	KindInt       Kind = "int"
	KindBool      Kind = "bool"
	KindString    Kind = "string"
	KindQuest     Kind = "quest"
	KindObjective Kind = "objective"
)

// Variable is a node of the state tree. The set of implementations is closed:
// *Group, *IntValue, *BoolValue, *StringValue, *Quest and *Objective.
type Variable interface {
	Header() *Node
	Kind() Kind
	variable()
}

// Node is the header shared by every Variable.
type Node struct {
	ID          string
	Key         string
	DisplayName string

	// parent is a non-owning back-reference. It is never serialized and is
	// rebuilt by RebuildParentLinks after every load.
	parent Variable
}

// Header returns the shared node header.
func (n *Node) Header() *Node { return n }

// Parent returns the enclosing node, or nil for the root.
func (n *Node) Parent() Variable { return n.parent }

// Label returns DisplayName, falling back to Key.
func (n *Node) Label() string {
	if n.DisplayName != "" {
		return n.DisplayName
	}
	return n.Key
}

func (n *Node) variable() {}

// NewID returns a fresh stable identifier.
func NewID() string {
	return uuid.NewString()
}

// Scalar is the set of payload types a Value can hold.
type Scalar interface {
	int | bool | string
}

// Value is a leaf holding a single typed payload.
type Value[T Scalar] struct {
	Node
	Value T
}

type (
	IntValue    = Value[int]
	BoolValue   = Value[bool]
	StringValue = Value[string]
)

// Kind reports int, bool or string depending on T.
func (v *Value[T]) Kind() Kind {
	switch any(v.Value).(type) {
	case int:
		return KindInt
	case bool:
		return KindBool
	default:
		return KindString
	}
}

// Box returns the payload as an untyped value.
func (v *Value[T]) Box() any {
	return v.Value
}

// Unbox stores x if it converts losslessly to T. Integral float64 and int64
// are accepted for int payloads, since JSON and Lua numbers arrive that way.
func (v *Value[T]) Unbox(x any) bool {
	t, ok := Convert[T](x)
	if !ok {
		return false
	}
	v.Value = t
	return true
}

// Convert converts x to T without loss, or reports false.
func Convert[T Scalar](x any) (T, bool) {
	var zero T
	if _, isInt := any(zero).(int); isInt {
		n, ok := toInt(x)
		if !ok {
			return zero, false
		}
		return any(n).(T), true
	}
	t, ok := x.(T)
	return t, ok
}

func toInt(x any) (int, bool) {
	switch n := x.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		if int64(int(n)) != n {
			return 0, false
		}
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

// NewInt builds an int value with a fresh id.
func NewInt(key string, value int) *IntValue {
	return &IntValue{Node: Node{ID: NewID(), Key: key}, Value: value}
}

// NewBool builds a bool value with a fresh id.
func NewBool(key string, value bool) *BoolValue {
	return &BoolValue{Node: Node{ID: NewID(), Key: key}, Value: value}
}

// NewString builds a string value with a fresh id.
func NewString(key string, value string) *StringValue {
	return &StringValue{Node: Node{ID: NewID(), Key: key}, Value: value}
}

// NewScalar builds an int, bool or string value from an untyped payload.
// Returns nil for any other payload type.
func NewScalar(key string, value any) Variable {
	switch val := value.(type) {
	case bool:
		return NewBool(key, val)
	case string:
		return NewString(key, val)
	}
	if n, ok := toInt(value); ok {
		return NewInt(key, n)
	}
	return nil
}

// Quest is a composite leaf: a status plus an ordered list of objectives.
type Quest struct {
	Node
	Status     types.QuestStatus
	Objectives []*Objective
}

// NewQuest builds a NotStarted quest with a fresh id.
func NewQuest(key, displayName string) *Quest {
	return &Quest{
		Node:   Node{ID: NewID(), Key: key, DisplayName: displayName},
		Status: types.QuestNotStarted,
	}
}

// Kind reports KindQuest.
func (q *Quest) Kind() Kind { return KindQuest }

// AddObjective appends an objective, linking it to the quest.
func (q *Quest) AddObjective(o *Objective) {
	if o == nil {
		return
	}
	if o.ID == "" {
		o.ID = NewID()
	}
	o.parent = q
	q.Objectives = append(q.Objectives, o)
}

// Objective returns the objective at index i, or nil when out of range.
func (q *Quest) Objective(i int) *Objective {
	if i < 0 || i >= len(q.Objectives) {
		return nil
	}
	return q.Objectives[i]
}

// ObjectiveByKey returns the first objective with the given key, or nil.
func (q *Quest) ObjectiveByKey(key string) *Objective {
	for _, o := range q.Objectives {
		if o != nil && o.Key == key {
			return o
		}
	}
	return nil
}

// Objective tracks progress toward a target count.
type Objective struct {
	Node
	Progress int
	Target   int
}

// NewObjective builds an objective with a fresh id.
func NewObjective(key string, target int) *Objective {
	return &Objective{Node: Node{ID: NewID(), Key: key}, Target: target}
}

// Kind reports KindObjective.
func (o *Objective) Kind() Kind { return KindObjective }

// Completed reports whether progress has reached the target.
func (o *Objective) Completed() bool {
	return o.Progress >= o.Target
}
