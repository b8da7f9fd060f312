package loader

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/nathoo/questvars/engine"
	"github.com/nathoo/questvars/types"
)

func TestLoad_MinimalGame(t *testing.T) {
	defs, err := Load("testdata/minimal")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if defs.Game.Title != "Minimal Test Game" {
		t.Errorf("Title = %q, want %q", defs.Game.Title, "Minimal Test Game")
	}
	d, ok := defs.Dialogues["hello"]
	if !ok {
		t.Fatal("dialogue 'hello' not found")
	}
	if d.Start != "greet" {
		t.Errorf("Start = %q, want first node %q", d.Start, "greet")
	}
	if d.Nodes["greet"].Text != "Hello there." {
		t.Errorf("greet text = %q", d.Nodes["greet"].Text)
	}
}

func TestLoad_FullGame(t *testing.T) {
	defs, err := Load("testdata/full")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if defs.Game.Author != "Tester" || defs.Game.Start != "smith" || defs.Game.Intro != "The forge is warm." {
		t.Errorf("unexpected game: %+v", defs.Game)
	}

	if len(defs.Characters) != 2 || defs.Characters[0] != (types.Character{ID: "smith", DisplayName: "Borin"}) {
		t.Errorf("unexpected characters: %+v", defs.Characters)
	}

	if len(defs.Quests) != 1 {
		t.Fatalf("expected 1 quest, got %d", len(defs.Quests))
	}
	q := defs.Quests[0]
	if q.Key != "FindSword" || q.DisplayName != "Find the Sword" || len(q.Objectives) != 2 {
		t.Fatalf("unexpected quest: %+v", q)
	}
	if q.Objectives[0].Target != 2 || q.Objectives[1].Target != 1 {
		t.Errorf("objective targets = %d, %d; want 2, 1 (default)", q.Objectives[0].Target, q.Objectives[1].Target)
	}

	wantVars := []types.VarDef{
		{Path: "Player/coins", DisplayName: "Coins", Value: 5},
		{Path: "Flags/met_smith", Value: false},
		{Path: "Player/title", DisplayName: "Title", Value: "stranger"},
	}
	if len(defs.Vars) != len(wantVars) {
		t.Fatalf("expected %d vars, got %+v", len(wantVars), defs.Vars)
	}
	for i, want := range wantVars {
		if defs.Vars[i] != want {
			t.Errorf("var %d = %+v, want %+v", i, defs.Vars[i], want)
		}
	}

	smith := defs.Dialogues["smith"]
	if smith == nil || len(smith.Nodes) != 2 {
		t.Fatalf("unexpected smith dialogue: %+v", smith)
	}
	greet := smith.Nodes["greet"]
	if len(greet.Choices) != 3 {
		t.Fatalf("expected 3 choices, got %d", len(greet.Choices))
	}
	dug := greet.Choices[1]
	if len(dug.Conditions) != 2 || len(dug.Consequences) != 3 {
		t.Fatalf("unexpected choice: %+v", dug)
	}
	if got := dug.Consequences[0]; got.ObjectiveIndex != 0 || got.ProgressDelta != 2 {
		t.Errorf("progress op = %+v, want index 0 delta 2", got)
	}
	if got := dug.Consequences[2].Variable.ResolveKey(); got != "FindSword.digs" {
		t.Errorf("quest var key = %q", got)
	}
	if job := smith.Nodes["job"]; len(job.OnEnter) != 1 || len(job.OnExit) != 1 {
		t.Errorf("job hooks: %+v", job)
	}
}

func TestLoad_FullGamePlays(t *testing.T) {
	defs, err := Load("testdata/full")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	e := engine.New(defs)
	e.Begin()
	e.Step("1")
	if !e.State.IsQuestStarted("FindSword") {
		t.Fatal("FindSword should be started after the first choice")
	}
	// job's on_exit completes the quest when leaving the node.
	e.Step("1")
	if !e.State.IsQuestCompleted("FindSword") {
		t.Error("FindSword should be completed")
	}
	if !e.State.Legacy.GetBool("met_smith") {
		t.Error("met_smith should be set")
	}
}

func TestLoad_FullGameCoinGatedChoice(t *testing.T) {
	defs, err := Load("testdata/full")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	e := engine.New(defs)
	e.Begin()
	e.Step("1")
	e.Step("leave")

	r := e.Step("talk smith")
	if !slices.Contains(r.Output, "  1. I dug.") {
		t.Fatalf("expected the coin-gated choice, got %q", r.Output)
	}
	e.Step("1")

	q := e.State.Quest("FindSword")
	if q.Objectives[0].Progress != 2 || !q.Objectives[0].Completed() {
		t.Errorf("expected dig objective completed, got %+v", q.Objectives[0])
	}
	if got := e.State.Legacy.GetInt("coins"); got != 3 {
		t.Errorf("legacy coins = %d, want 3", got)
	}
	if got := e.State.Legacy.GetInt("FindSword.digs"); got != 2 {
		t.Errorf("legacy FindSword.digs = %d, want 2", got)
	}

	// With too few coins the choice is hidden again.
	e.State.Legacy.SetInt("coins", 2)
	r = e.Step("talk smith")
	if slices.Contains(r.Output, "  1. I dug.") {
		t.Errorf("choice should be gated on coins, got %q", r.Output)
	}
}

func TestLoad_InvalidRefs_Fails(t *testing.T) {
	_, err := Load("testdata/invalid")
	if err == nil {
		t.Fatal("expected validation error")
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	assertContains(t, ve.Errors, "Game.Title")
	assertContains(t, ve.Errors, `start dialogue "nobody"`)
	assertContains(t, ve.Errors, `undefined node "nowhere"`)
	assertContains(t, ve.Errors, "has no objective 3")
	assertContains(t, ve.Warnings, `speaker "ghost"`)
}

func TestCheck_ReturnsWarnings(t *testing.T) {
	defs, ve, err := Check("testdata/invalid")
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if defs == nil || ve == nil {
		t.Fatal("Check should return defs and the validation result")
	}
	if len(ve.Errors) != 4 || len(ve.Warnings) != 1 {
		t.Errorf("got errors %q warnings %q", ve.Errors, ve.Warnings)
	}
}

func TestLoad_Failures(t *testing.T) {
	tests := []struct {
		dir  string
		want string
	}{
		{"testdata/bad_syntax", "executing game.lua"},
		{"testdata/no_game", "no Game{} definition"},
		{"testdata/sandbox", "executing game.lua"},
		{"testdata/empty", "no .lua files"},
		{"testdata/missing", "reading game directory"},
	}
	for _, tt := range tests {
		t.Run(tt.dir, func(t *testing.T) {
			_, err := Load(tt.dir)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestSortedLuaFiles(t *testing.T) {
	got := sortedLuaFiles([]string{"zeta.lua", "game.lua", "alpha.lua"})
	want := []string{"game.lua", "alpha.lua", "zeta.lua"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("sortedLuaFiles = %v, want %v", got, want)
	}
}

func assertContains(t *testing.T, strs []string, substr string) {
	t.Helper()
	for _, s := range strs {
		if strings.Contains(s, substr) {
			return
		}
	}
	t.Errorf("expected one of %v to contain %q", strs, substr)
}
