package loader

import (
	"testing"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/questvars/engine/operation"
	"github.com/nathoo/questvars/types"
)

// newTestVM creates a sandboxed Lua VM with the API registered and a fresh collector.
func newTestVM() (*lua.LState, *collector) {
	L := newVM()
	coll := &collector{}
	registerAPI(L, coll)
	return L, coll
}

// evalOp runs a Lua expression returning an operation table and compiles it.
func evalOp(t *testing.T, expr string) operation.QuestOperation {
	t.Helper()
	L, _ := newTestVM()
	defer L.Close()
	if err := L.DoString("return " + expr); err != nil {
		t.Fatalf("%s: %v", expr, err)
	}
	return compileOperation(L.CheckTable(-1))
}

func TestCompileGame(t *testing.T) {
	L, _ := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		return {
			title = "Test Game",
			author = "Author",
			version = "1.0",
			start = "smith",
			intro = "Welcome!"
		}
	`); err != nil {
		t.Fatal(err)
	}

	game := compileGame(L.CheckTable(-1))
	want := types.GameDef{Title: "Test Game", Author: "Author", Version: "1.0", Start: "smith", Intro: "Welcome!"}
	if game != want {
		t.Errorf("compileGame = %+v, want %+v", game, want)
	}
}

func TestCompileOperation(t *testing.T) {
	global := func(key string) operation.VariableReference {
		return operation.VariableReference{Scope: types.ScopeGlobal, Key: key}
	}

	tests := []struct {
		expr string
		want operation.QuestOperation
	}{
		{
			`StartQuest("FindSword")`,
			operation.QuestOperation{Type: types.OpStartQuest, Quest: "FindSword"},
		},
		{
			`CompleteQuest("FindSword")`,
			operation.QuestOperation{Type: types.OpCompleteQuest, Quest: "FindSword"},
		},
		{
			`UpdateQuestProgress("FindSword", 2, 3)`,
			operation.QuestOperation{Type: types.OpUpdateQuestProgress, Quest: "FindSword", ObjectiveIndex: 1, ProgressDelta: 3},
		},
		{
			`UpdateQuestProgress("FindSword", 1)`,
			operation.QuestOperation{Type: types.OpUpdateQuestProgress, Quest: "FindSword", ProgressDelta: 1},
		},
		{
			`CheckQuestStatus("FindSword", "Started")`,
			operation.QuestOperation{Type: types.OpCheckQuestStatus, Quest: "FindSword", RequiredStatus: types.ConditionStarted},
		},
		{
			`SetInt("coins", 10)`,
			operation.QuestOperation{Type: types.OpSetInt, Variable: global("coins"), IntValue: 10},
		},
		{
			`IncrementInt("coins")`,
			operation.QuestOperation{Type: types.OpIncrementInt, Variable: global("coins"), IntValue: 1},
		},
		{
			`CheckInt("coins", "~=", 0)`,
			operation.QuestOperation{Type: types.OpCheckInt, Variable: global("coins"), Comparison: types.NotEqual},
		},
		{
			`CheckInt("coins", "LessThan", 4)`,
			operation.QuestOperation{Type: types.OpCheckInt, Variable: global("coins"), Comparison: types.LessThan, IntValue: 4},
		},
		{
			`SetBool(QuestVar("FindSword", "seen"), true)`,
			operation.QuestOperation{
				Type:      types.OpSetBool,
				Variable:  operation.VariableReference{Scope: types.ScopeQuestScoped, Quest: "FindSword", Key: "seen"},
				BoolValue: true,
			},
		},
		{
			`CheckBool("met_smith", false)`,
			operation.QuestOperation{Type: types.OpCheckBool, Variable: global("met_smith")},
		},
		{
			`{ type = "Teleport", quest = "x" }`,
			operation.QuestOperation{Type: "Teleport", Quest: "x"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			if got := evalOp(t, tt.expr); got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCompileOperation_MissingObjectiveIndex(t *testing.T) {
	got := evalOp(t, `{ type = "UpdateQuestProgress", quest = "FindSword", delta = 1 }`)
	if got.ObjectiveIndex != -1 {
		t.Errorf("ObjectiveIndex = %d, want -1", got.ObjectiveIndex)
	}
}

func TestHelpers_RejectBadArguments(t *testing.T) {
	L, _ := newTestVM()
	defer L.Close()

	for _, src := range []string{
		`return SetInt(42, 1)`,
		`return CheckInt("coins", ">")`,
		`return StartQuest()`,
	} {
		if err := L.DoString(src); err == nil {
			t.Errorf("%s: expected error", src)
		}
	}
}

func TestCompile_CollectsDefinitions(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		Game { title = "T" }
		Character "smith" { name = "Borin" }
		Quest "Q" { name = "Quest", objectives = { { key = "a", target = 3 } } }
		Var("coins", 1.5)
		Dialogue "d" {
			start = "b",
			nodes = {
				a = { text = "keyed" },
				Node "b" { text = "tagged", choices = { Choice { text = "go", next = "a" } } },
			},
		}
	`); err != nil {
		t.Fatal(err)
	}

	defs, err := compile(coll)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if defs.Characters[0].DisplayName != "Borin" || defs.Quests[0].Objectives[0].Target != 3 {
		t.Errorf("unexpected defs: %+v", defs)
	}
	if v := defs.Vars[0].Value; v != 1.5 {
		t.Errorf("fractional var = %v, want 1.5 carried for validation", v)
	}
	d := defs.Dialogues["d"]
	if d.Nodes["a"].Text != "keyed" || d.Nodes["b"].Choices[0].Next != "a" {
		t.Errorf("unexpected nodes: %+v", d.Nodes)
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"no game", `Character "x" {}`},
		{"duplicate dialogue", `Game {} Dialogue "d" { nodes = { Node "n" {} } } Dialogue "d" { nodes = { Node "n" {} } }`},
		{"duplicate node", `Game {} Dialogue "d" { nodes = { Node "n" {}, Node "n" {} } }`},
		{"no nodes", `Game {} Dialogue "d" {}`},
		{"node without id", `Game {} Dialogue "d" { nodes = { { text = "?" } } }`},
		{"bad operation entry", `Game {} Dialogue "d" { nodes = { Node "n" { on_enter = { "StartQuest" } } } }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			L, coll := newTestVM()
			defer L.Close()
			if err := L.DoString(tt.src); err != nil {
				t.Fatal(err)
			}
			if _, err := compile(coll); err == nil {
				t.Error("expected compile error")
			}
		})
	}
}

func TestSandbox_RemovesDangerousGlobals(t *testing.T) {
	L, _ := newTestVM()
	defer L.Close()

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "rawset", "io", "os", "require"} {
		if L.GetGlobal(name) != lua.LNil {
			t.Errorf("global %q should be nil", name)
		}
	}
	if err := L.DoString(`math.randomseed(1)`); err == nil {
		t.Error("math.randomseed should be removed")
	}
}
