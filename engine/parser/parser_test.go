package parser

import (
	"testing"

	"github.com/nathoo/questvars/types"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  types.Intent
	}{
		// Empty / whitespace
		{
			name:  "empty string",
			input: "",
			want:  types.Intent{},
		},
		{
			name:  "whitespace only",
			input: "   ",
			want:  types.Intent{},
		},

		// Choices
		{
			name:  "bare number",
			input: "2",
			want:  types.Intent{Verb: "choose", Choice: 2},
		},
		{
			name:  "number with dot",
			input: "3.",
			want:  types.Intent{Verb: "choose", Choice: 3},
		},
		{
			name:  "choose verb",
			input: "choose 1",
			want:  types.Intent{Verb: "choose", Choice: 1},
		},
		{
			name:  "say alias",
			input: "say 4",
			want:  types.Intent{Verb: "choose", Choice: 4},
		},
		{
			name:  "choose without number",
			input: "pick",
			want:  types.Intent{Verb: "choose"},
		},
		{
			name:  "zero is not a choice",
			input: "0",
			want:  types.Intent{Verb: "0"},
		},

		// Talk
		{
			name:  "talk",
			input: "talk smith",
			want:  types.Intent{Verb: "talk", Object: "smith"},
		},
		{
			name:  "talk to the",
			input: "Talk to the Smith",
			want:  types.Intent{Verb: "talk", Object: "smith"},
		},
		{
			name:  "speak with",
			input: "speak with old borin",
			want:  types.Intent{Verb: "talk", Object: "old borin"},
		},
		{
			name:  "ask alias",
			input: "ask guard",
			want:  types.Intent{Verb: "talk", Object: "guard"},
		},

		// Other verbs
		{
			name:  "look",
			input: "l",
			want:  types.Intent{Verb: "look"},
		},
		{
			name:  "look again",
			input: "look again",
			want:  types.Intent{Verb: "look"},
		},
		{
			name:  "journal",
			input: "journal",
			want:  types.Intent{Verb: "quests"},
		},
		{
			name:  "say goodbye",
			input: "say goodbye",
			want:  types.Intent{Verb: "leave"},
		},
		{
			name:  "bye",
			input: "bye",
			want:  types.Intent{Verb: "leave"},
		},
		{
			name:  "unknown verb passes through",
			input: "dance wildly",
			want:  types.Intent{Verb: "dance", Object: "wildly"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}
