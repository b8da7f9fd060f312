// Package migrate converts content that predates QuestOperation: the single
// purpose condition and consequence assets, and the flat legacy store.
package migrate

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/nathoo/questvars/engine/operation"
	"github.com/nathoo/questvars/types"
)

// Asset is a legacy authoring asset that has a QuestOperation equivalent.
type Asset interface {
	ToOperation() (operation.QuestOperation, error)
}

// QuestCondition checks a quest against a condition.
type QuestCondition struct {
	Quest     string                   `yaml:"quest"`
	Condition types.QuestConditionType `yaml:"condition"`
}

// ToOperation maps to CheckQuestStatus.
func (a QuestCondition) ToOperation() (operation.QuestOperation, error) {
	switch a.Condition {
	case types.ConditionNotStarted, types.ConditionStarted, types.ConditionInProgress, types.ConditionCompleted:
	default:
		return operation.QuestOperation{}, fmt.Errorf("quest condition %q: unknown condition %q", a.Quest, a.Condition)
	}
	return operation.QuestOperation{
		Type:           types.OpCheckQuestStatus,
		Quest:          a.Quest,
		RequiredStatus: a.Condition,
	}, nil
}

// CheckIntCondition compares a named int.
type CheckIntCondition struct {
	Variable   string           `yaml:"variable"`
	Quest      string           `yaml:"quest"`
	Comparison types.Comparison `yaml:"comparison"`
	Value      int              `yaml:"value"`
}

// ToOperation maps to CheckInt.
func (a CheckIntCondition) ToOperation() (operation.QuestOperation, error) {
	switch a.Comparison {
	case types.GreaterThan, types.LessThan, types.Equal, types.NotEqual:
	default:
		return operation.QuestOperation{}, fmt.Errorf("int condition %q: unknown comparison %q", a.Variable, a.Comparison)
	}
	return operation.QuestOperation{
		Type:       types.OpCheckInt,
		Variable:   reference(a.Variable, a.Quest),
		Comparison: a.Comparison,
		IntValue:   a.Value,
	}, nil
}

// CheckBoolCondition compares a named bool.
type CheckBoolCondition struct {
	Variable string `yaml:"variable"`
	Quest    string `yaml:"quest"`
	Value    bool   `yaml:"value"`
}

// ToOperation maps to CheckBool.
func (a CheckBoolCondition) ToOperation() (operation.QuestOperation, error) {
	return operation.QuestOperation{
		Type:      types.OpCheckBool,
		Variable:  reference(a.Variable, a.Quest),
		BoolValue: a.Value,
	}, nil
}

// QuestAction is what a QuestConsequence does to its quest.
type QuestAction string

const (
	ActionStart          QuestAction = "Start"
	ActionComplete       QuestAction = "Complete"
	ActionUpdateProgress QuestAction = "UpdateProgress"
)

// QuestConsequence changes a quest when a choice is taken.
type QuestConsequence struct {
	Quest          string      `yaml:"quest"`
	Action         QuestAction `yaml:"action"`
	ObjectiveIndex int         `yaml:"objectiveIndex"`
	Progress       int         `yaml:"progress"`
}

// ToOperation maps to StartQuest, CompleteQuest or UpdateQuestProgress.
func (a QuestConsequence) ToOperation() (operation.QuestOperation, error) {
	op := operation.QuestOperation{Quest: a.Quest}
	switch a.Action {
	case ActionStart:
		op.Type = types.OpStartQuest
	case ActionComplete:
		op.Type = types.OpCompleteQuest
	case ActionUpdateProgress:
		op.Type = types.OpUpdateQuestProgress
		op.ObjectiveIndex = a.ObjectiveIndex
		op.ProgressDelta = a.Progress
	default:
		return operation.QuestOperation{}, fmt.Errorf("quest consequence %q: unknown action %q", a.Quest, a.Action)
	}
	return op, nil
}

func reference(key, quest string) operation.VariableReference {
	if quest != "" {
		return operation.VariableReference{Scope: types.ScopeQuestScoped, Key: key, Quest: quest}
	}
	return operation.VariableReference{Scope: types.ScopeGlobal, Key: key}
}

// LoadAssets reads a YAML list of legacy assets, each tagged with a kind, and
// converts them to operations in order:
//
//	- kind: CheckIntCondition
//	  variable: coins
//	  comparison: GreaterThan
//	  value: 3
func LoadAssets(r io.Reader) ([]operation.QuestOperation, error) {
	var nodes []yaml.Node
	if err := yaml.NewDecoder(r).Decode(&nodes); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading legacy assets: %w", err)
	}

	ops := make([]operation.QuestOperation, 0, len(nodes))
	for i := range nodes {
		n := &nodes[i]
		asset, err := decodeAsset(n)
		if err != nil {
			return nil, fmt.Errorf("asset %d (line %d): %w", i, n.Line, err)
		}
		op, err := asset.ToOperation()
		if err != nil {
			return nil, fmt.Errorf("asset %d (line %d): %w", i, n.Line, err)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func decodeAsset(n *yaml.Node) (Asset, error) {
	var head struct {
		Kind string `yaml:"kind"`
	}
	if err := n.Decode(&head); err != nil {
		return nil, err
	}

	var asset Asset
	var err error
	switch head.Kind {
	case "QuestCondition":
		var a QuestCondition
		err = n.Decode(&a)
		asset = a
	case "CheckIntCondition":
		var a CheckIntCondition
		err = n.Decode(&a)
		asset = a
	case "CheckBoolCondition":
		var a CheckBoolCondition
		err = n.Decode(&a)
		asset = a
	case "QuestConsequence":
		var a QuestConsequence
		err = n.Decode(&a)
		asset = a
	case "":
		return nil, errors.New("missing kind")
	default:
		return nil, fmt.Errorf("unknown kind %q", head.Kind)
	}
	if err != nil {
		return nil, err
	}
	return asset, nil
}
