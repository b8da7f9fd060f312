// Package types defines the shared data structures for the questvars engine.
// This package contains only type definitions: no logic, no methods.
package types

// QuestStatus is the lifecycle state of a quest.
type QuestStatus string

const (
	QuestNotStarted QuestStatus = "NotStarted"
	QuestInProgress QuestStatus = "InProgress"
	QuestCompleted  QuestStatus = "Completed"
)

// QuestConditionType is what a CheckQuestStatus operation asks about a quest.
// It overlaps with QuestStatus but is a distinct question: "Started" covers
// both InProgress and Completed.
type QuestConditionType string

const (
	ConditionNotStarted QuestConditionType = "NotStarted"
	ConditionStarted    QuestConditionType = "Started"
	ConditionInProgress QuestConditionType = "InProgress"
	ConditionCompleted  QuestConditionType = "Completed"
)

// OperationType tags a QuestOperation.
type OperationType string

const (
	OpStartQuest          OperationType = "StartQuest"
	OpCompleteQuest       OperationType = "CompleteQuest"
	OpUpdateQuestProgress OperationType = "UpdateQuestProgress"
	OpCheckQuestStatus    OperationType = "CheckQuestStatus"
	OpSetInt              OperationType = "SetInt"
	OpIncrementInt        OperationType = "IncrementInt"
	OpCheckInt            OperationType = "CheckInt"
	OpSetBool             OperationType = "SetBool"
	OpCheckBool           OperationType = "CheckBool"
)

// Comparison is the operator used by CheckInt.
type Comparison string

const (
	GreaterThan Comparison = "GreaterThan"
	LessThan    Comparison = "LessThan"
	Equal       Comparison = "Equal"
	NotEqual    Comparison = "NotEqual"
)

// Scope controls how a VariableReference key is interpreted.
type Scope string

const (
	ScopeGlobal      Scope = "Global"
	ScopeQuestScoped Scope = "QuestScoped"
)

// Character is a speaker known to the game session.
type Character struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// GameDef holds game metadata from content files.
type GameDef struct {
	Title   string
	Author  string
	Version string
	Start   string // dialogue played on launch
	Intro   string
}

// ObjectiveDef is the authored shape of a quest objective.
type ObjectiveDef struct {
	Key         string
	DisplayName string
	Target      int
}

// QuestDef is the authored shape of a quest.
type QuestDef struct {
	Key         string
	DisplayName string
	Objectives  []ObjectiveDef
}

// VarDef declares a variable seeded into the state tree at a path.
type VarDef struct {
	Path        string // e.g. "Player/coins"
	DisplayName string
	Value       any // int, bool or string
}

// Intent is a parsed player command.
type Intent struct {
	Verb   string // talk, choose, look, quests, leave
	Object string // dialogue or character for talk
	Choice int    // 1-based choice number for choose
}

// Result is the output of a single game step.
type Result struct {
	Output  []string
	Applied []string // operations applied during the step, for tracing
}
