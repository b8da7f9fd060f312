package dialogue

import (
	"errors"
	"slices"
	"testing"

	"github.com/nathoo/questvars/engine/operation"
	"github.com/nathoo/questvars/engine/state"
	"github.com/nathoo/questvars/types"
)

func flag(key string) operation.VariableReference {
	return operation.VariableReference{Scope: types.ScopeGlobal, Key: key}
}

func smithDialogue() *Dialogue {
	return &Dialogue{
		ID:    "smith",
		Start: "greet",
		Nodes: map[string]Node{
			"greet": {
				ID:      "greet",
				Speaker: "smith",
				Text:    "What do you want?",
				OnEnter: []operation.QuestOperation{
					{Type: types.OpIncrementInt, Variable: flag("smith_visits"), IntValue: 1},
				},
				OnExit: []operation.QuestOperation{
					{Type: types.OpSetBool, Variable: flag("met_smith"), BoolValue: true},
				},
				Choices: []Choice{
					{
						Text: "I'm looking for a sword.",
						Conditions: []operation.QuestOperation{
							{Type: types.OpCheckQuestStatus, Quest: "FindSword", RequiredStatus: types.ConditionNotStarted},
						},
						Consequences: []operation.QuestOperation{
							{Type: types.OpStartQuest, Quest: "FindSword"},
						},
						Next: "quest",
					},
					{
						Text: "Here is your sword.",
						Conditions: []operation.QuestOperation{
							{Type: types.OpCheckQuestStatus, Quest: "FindSword", RequiredStatus: types.ConditionInProgress},
						},
						Consequences: []operation.QuestOperation{
							{Type: types.OpCompleteQuest, Quest: "FindSword"},
							{Type: types.OpIncrementInt, Variable: flag("coins"), IntValue: 10},
						},
						Next: "thanks",
					},
					{Text: "Nothing.", Next: ""},
					{Text: "Broken.", Next: "nowhere"},
				},
			},
			"quest": {
				ID:   "quest",
				Text: "Dig by the old well.",
				OnEnter: []operation.QuestOperation{
					{Type: types.OpSetBool, Variable: flag("knows_well"), BoolValue: true},
				},
				Choices: []Choice{{Text: "Bye.", Next: ""}},
			},
			"thanks": {ID: "thanks", Text: "Fine work."},
		},
	}
}

func TestAvailableChoices(t *testing.T) {
	d := smithDialogue()
	s := state.New()
	greet, _ := d.Node("greet")

	got := AvailableChoices(greet, s)
	if !slices.Equal(got, []int{0, 2, 3}) {
		t.Errorf("fresh state: expected [0 2 3], got %v", got)
	}

	s.StartQuest("FindSword")
	got = AvailableChoices(greet, s)
	if !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("quest started: expected [1 2 3], got %v", got)
	}
}

func TestStart_AppliesOnEnter(t *testing.T) {
	s := state.New()
	c, err := Start(smithDialogue(), s)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if s.Legacy.GetInt("smith_visits") != 1 {
		t.Errorf("expected smith_visits 1, got %d", s.Legacy.GetInt("smith_visits"))
	}
	n, ok := c.Current()
	if !ok || n.ID != "greet" {
		t.Errorf("expected current node greet, got %q (ok=%v)", n.ID, ok)
	}
	if c.Over() {
		t.Error("conversation should not be over")
	}
}

func TestStart_UnknownStart(t *testing.T) {
	d := smithDialogue()
	d.Start = "missing"
	_, err := Start(d, state.New())
	if !errors.Is(err, ErrUnknownNode) {
		t.Errorf("expected ErrUnknownNode, got %v", err)
	}
}

func TestChoose_OrderOfEffects(t *testing.T) {
	s := state.New()
	var seen []string
	s.Subscribe(func() {
		switch {
		case s.Legacy.GetBool("knows_well"):
			seen = append(seen, "enter")
		case s.Legacy.GetBool("met_smith"):
			seen = append(seen, "exit")
		case s.IsQuestStarted("FindSword"):
			seen = append(seen, "consequence")
		}
	})

	c, err := Start(smithDialogue(), s)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	seen = nil

	if err := c.Choose(0); err != nil {
		t.Fatalf("Choose: %v", err)
	}
	want := []string{"consequence", "exit", "enter"}
	if !slices.Equal(seen, want) {
		t.Errorf("expected %v, got %v", want, seen)
	}

	n, _ := c.Current()
	if n.ID != "quest" {
		t.Errorf("expected node quest, got %q", n.ID)
	}
	if !s.IsQuestStarted("FindSword") {
		t.Error("FindSword should be started")
	}
}

func TestChoose_Unavailable(t *testing.T) {
	s := state.New()
	c, _ := Start(smithDialogue(), s)

	if err := c.Choose(1); !errors.Is(err, ErrChoiceUnavailable) {
		t.Errorf("gated choice: expected ErrChoiceUnavailable, got %v", err)
	}
	if err := c.Choose(7); !errors.Is(err, ErrChoiceUnavailable) {
		t.Errorf("out of range: expected ErrChoiceUnavailable, got %v", err)
	}
	if s.Legacy.GetBool("met_smith") {
		t.Error("rejected choice must not run OnExit")
	}
}

func TestChoose_UnknownNextAppliesNothing(t *testing.T) {
	s := state.New()
	c, _ := Start(smithDialogue(), s)

	if err := c.Choose(3); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("expected ErrUnknownNode, got %v", err)
	}
	if s.Legacy.GetBool("met_smith") {
		t.Error("OnExit should not run when the next node is unknown")
	}
	n, ok := c.Current()
	if !ok || n.ID != "greet" {
		t.Errorf("expected to stay at greet, got %q", n.ID)
	}
}

func TestChoose_EndsConversation(t *testing.T) {
	s := state.New()
	c, _ := Start(smithDialogue(), s)

	if err := c.Choose(2); err != nil {
		t.Fatalf("Choose: %v", err)
	}
	if !c.Over() {
		t.Error("expected conversation over")
	}
	if !s.Legacy.GetBool("met_smith") {
		t.Error("OnExit should run when leaving the last node")
	}
	if _, ok := c.Current(); ok {
		t.Error("Current should report no node once over")
	}
	if c.Choices() != nil {
		t.Error("no choices once over")
	}
	if err := c.Choose(0); !errors.Is(err, ErrConversationOver) {
		t.Errorf("expected ErrConversationOver, got %v", err)
	}
}

func TestFullQuestThroughDialogue(t *testing.T) {
	s := state.New()
	d := smithDialogue()

	c, _ := Start(d, s)
	if err := c.Choose(0); err != nil {
		t.Fatalf("take quest: %v", err)
	}
	if err := c.Choose(0); err != nil {
		t.Fatalf("leave: %v", err)
	}

	c, _ = Start(d, s)
	if got := c.Choices(); !slices.Equal(got, []int{1, 2, 3}) {
		t.Fatalf("expected [1 2 3], got %v", got)
	}
	if err := c.Choose(1); err != nil {
		t.Fatalf("hand in: %v", err)
	}
	if !s.IsQuestCompleted("FindSword") {
		t.Error("FindSword should be completed")
	}
	if s.Legacy.GetInt("coins") != 10 {
		t.Errorf("expected 10 coins, got %d", s.Legacy.GetInt("coins"))
	}
	if s.Legacy.GetInt("smith_visits") != 2 {
		t.Errorf("expected 2 visits, got %d", s.Legacy.GetInt("smith_visits"))
	}
	if !c.Over() {
		t.Error("node without choices ends the conversation")
	}
	if err := c.Choose(0); !errors.Is(err, ErrConversationOver) {
		t.Errorf("expected ErrConversationOver, got %v", err)
	}
}
