// Package parser converts player command strings into Intent structs.
// Intentionally dumb: no NLP, just pattern matching.
package parser

import (
	"strconv"
	"strings"

	"github.com/nathoo/questvars/types"
)

var verbAliases = map[string]string{
	// Talk
	"speak":    "talk",
	"chat":     "talk",
	"ask":      "talk",
	"converse": "talk",
	"greet":    "talk",

	// Choose
	"say":    "choose",
	"pick":   "choose",
	"select": "choose",
	"reply":  "choose",

	// Look
	"l":      "look",
	"repeat": "look",

	// Quests
	"q":       "quests",
	"j":       "quests",
	"journal": "quests",
	"log":     "quests",

	// Leave
	"bye":      "leave",
	"goodbye":  "leave",
	"farewell": "leave",
}

var articles = map[string]bool{
	"the": true, "a": true, "an": true,
}

// Parse converts a raw command string into an Intent. A bare number is a
// choice.
func Parse(input string) types.Intent {
	input = strings.TrimSpace(input)
	if input == "" {
		return types.Intent{}
	}

	words := strings.Fields(strings.ToLower(input))

	if n, ok := choiceNumber(words[0]); ok && len(words) == 1 {
		return types.Intent{Verb: "choose", Choice: n}
	}

	words = expandMultiWordVerbs(words)

	if alias, ok := verbAliases[words[0]]; ok {
		words[0] = alias
	}

	verb := words[0]
	rest := stripArticles(words[1:])

	if verb == "choose" {
		if len(rest) > 0 {
			if n, ok := choiceNumber(rest[0]); ok {
				return types.Intent{Verb: verb, Choice: n}
			}
		}
		return types.Intent{Verb: verb}
	}

	return types.Intent{Verb: verb, Object: strings.Join(rest, " ")}
}

// choiceNumber accepts "2" and "2." as choice 2.
func choiceNumber(w string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSuffix(w, "."))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// expandMultiWordVerbs handles "talk to", "speak with", "say goodbye" etc.
func expandMultiWordVerbs(words []string) []string {
	if len(words) < 2 {
		return words
	}

	switch words[0] {
	case "talk", "speak", "chat":
		if words[1] == "to" || words[1] == "with" {
			return append([]string{"talk"}, words[2:]...)
		}
	case "say":
		if words[1] == "goodbye" || words[1] == "bye" {
			return []string{"leave"}
		}
	case "look":
		if words[1] == "around" || words[1] == "again" {
			return []string{"look"}
		}
	}

	return words
}

// stripArticles removes articles ("the", "a", "an") from the word list.
func stripArticles(words []string) []string {
	result := make([]string, 0, len(words))
	for _, w := range words {
		if !articles[w] {
			result = append(result, w)
		}
	}
	return result
}
