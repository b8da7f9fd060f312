package variables

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/nathoo/questvars/types"
)

// wireNode is the JSON shape of every node; Type selects which of the
// payload fields are meaningful.
type wireNode struct {
	Type        Kind              `json:"type"`
	ID          string            `json:"id,omitempty"`
	Key         string            `json:"key"`
	DisplayName string            `json:"displayName,omitempty"`
	Value       json.RawMessage   `json:"value,omitempty"`
	Children    []*wireNode       `json:"children,omitempty"`
	Status      types.QuestStatus `json:"status,omitempty"`
	Objectives  []*wireNode       `json:"objectives,omitempty"`
	Progress    int               `json:"progress,omitempty"`
	Target      int               `json:"target,omitempty"`
}

// Marshal encodes v and its descendants.
func Marshal(v Variable) ([]byte, error) {
	if isNil(v) {
		return []byte("null"), nil
	}
	return json.Marshal(toWire(v))
}

// Unmarshal decodes a node tree. Parent links are rebuilt on the result;
// missing ids are not assigned here.
func Unmarshal(data []byte) (Variable, error) {
	var w *wireNode
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	if w == nil {
		return nil, nil
	}
	v, err := fromWire(w)
	if err != nil {
		return nil, err
	}
	RebuildParentLinks(v)
	return v, nil
}

// MarshalJSON encodes the group and its subtree.
func (g *Group) MarshalJSON() ([]byte, error) {
	return json.Marshal(toWire(g))
}

// UnmarshalJSON decodes a subtree whose top node must be a group.
func (g *Group) UnmarshalJSON(data []byte) error {
	v, err := Unmarshal(data)
	if err != nil {
		return err
	}
	if v == nil {
		*g = Group{Children: []Variable{}}
		return nil
	}
	decoded, ok := v.(*Group)
	if !ok {
		return fmt.Errorf("expected group node, got %s", v.Kind())
	}
	*g = *decoded
	// Children still point at the decoded copy.
	RebuildParentLinks(g)
	return nil
}

func toWire(v Variable) *wireNode {
	h := v.Header()
	w := &wireNode{
		Type:        v.Kind(),
		ID:          h.ID,
		Key:         h.Key,
		DisplayName: h.DisplayName,
	}
	switch n := v.(type) {
	case *Group:
		w.Children = make([]*wireNode, 0, len(n.Children))
		for _, c := range n.Children {
			if isNil(c) {
				continue
			}
			w.Children = append(w.Children, toWire(c))
		}
	case *IntValue:
		w.Value = rawScalar(n.Value)
	case *BoolValue:
		w.Value = rawScalar(n.Value)
	case *StringValue:
		w.Value = rawScalar(n.Value)
	case *Quest:
		w.Status = n.Status
		for _, o := range n.Objectives {
			if o == nil {
				continue
			}
			w.Objectives = append(w.Objectives, toWire(o))
		}
	case *Objective:
		w.Progress = n.Progress
		w.Target = n.Target
	}
	return w
}

func fromWire(w *wireNode) (Variable, error) {
	node := Node{ID: w.ID, Key: w.Key, DisplayName: w.DisplayName}

	switch w.Type {
	case KindGroup:
		g := &Group{Node: node, Children: make([]Variable, 0, len(w.Children))}
		for _, cw := range w.Children {
			if cw == nil {
				continue
			}
			c, err := fromWire(cw)
			if err != nil {
				return nil, fmt.Errorf("group %q: %w", w.Key, err)
			}
			g.Children = append(g.Children, c)
		}
		return g, nil

	case KindInt:
		v := &IntValue{Node: node}
		if hasValue(w.Value) {
			n, err := decodeInt(w.Value)
			if err != nil {
				return nil, fmt.Errorf("int %q: %w", w.Key, err)
			}
			v.Value = n
		}
		return v, nil

	case KindBool:
		v := &BoolValue{Node: node}
		if hasValue(w.Value) {
			if err := json.Unmarshal(w.Value, &v.Value); err != nil {
				return nil, fmt.Errorf("bool %q: invalid value %s", w.Key, w.Value)
			}
		}
		return v, nil

	case KindString:
		v := &StringValue{Node: node}
		if hasValue(w.Value) {
			if err := json.Unmarshal(w.Value, &v.Value); err != nil {
				return nil, fmt.Errorf("string %q: invalid value %s", w.Key, w.Value)
			}
		}
		return v, nil

	case KindQuest:
		q := &Quest{Node: node, Status: w.Status}
		if q.Status == "" {
			q.Status = types.QuestNotStarted
		}
		for _, ow := range w.Objectives {
			if ow == nil {
				continue
			}
			q.Objectives = append(q.Objectives, &Objective{
				Node:     Node{ID: ow.ID, Key: ow.Key, DisplayName: ow.DisplayName},
				Progress: ow.Progress,
				Target:   ow.Target,
			})
		}
		return q, nil

	case KindObjective:
		return &Objective{Node: node, Progress: w.Progress, Target: w.Target}, nil

	default:
		return nil, fmt.Errorf("unknown variable type %q", w.Type)
	}
}

func rawScalar[T Scalar](x T) json.RawMessage {
	// Scalars always encode.
	b, _ := json.Marshal(x)
	return b
}

func hasValue(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

// decodeInt parses an int payload exactly. Integral floats such as 3.0 are
// accepted; fractions and out-of-range numbers are not.
func decodeInt(raw json.RawMessage) (int, error) {
	var num json.Number
	if raw[0] == '"' {
		return 0, fmt.Errorf("invalid value %s", raw)
	}
	if err := json.Unmarshal(raw, &num); err != nil {
		return 0, fmt.Errorf("invalid value %s", raw)
	}
	if i, err := strconv.ParseInt(num.String(), 10, 0); err == nil {
		return int(i), nil
	}
	f, err := num.Float64()
	if err != nil {
		return 0, fmt.Errorf("invalid value %s", raw)
	}
	n, ok := toInt(f)
	if !ok {
		return 0, fmt.Errorf("invalid value %s", raw)
	}
	return n, nil
}
