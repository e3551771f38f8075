package shell

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/chzyer/readline"
)

// commands lists the shell commands without the leading slash.
var commands = []string{
	"ingest",
	"load",
	"generate",
	"metrics",
	"session",
	"history",
	"export",
	"help",
	"quit",
	"exit",
}

// vocabularyCommands take remembered words as arguments.
var vocabularyCommands = map[string]bool{
	"generate": true,
}

// Vocabulary returns remembered words starting with prefix.
type Vocabulary func(prefix string) []string

// Completer completes command names, and remembered words after /generate.
type Completer struct {
	vocabulary Vocabulary
}

// NewCompleter creates a completer. A nil vocabulary disables word completion.
func NewCompleter(vocabulary Vocabulary) *Completer {
	return &Completer{vocabulary: vocabulary}
}

var _ readline.AutoCompleter = (*Completer)(nil)

// Do implements readline.AutoCompleter. It returns the candidate suffixes
// and the rune length of the word being completed.
func (c *Completer) Do(line []rune, pos int) ([][]rune, int) {
	if len(line) == 0 || pos <= 0 {
		return nil, 0
	}
	if pos > len(line) {
		pos = len(line)
	}

	text := string(line[:pos])
	start := strings.LastIndexAny(text, " \t") + 1
	word := text[start:]

	if start == 0 {
		if strings.HasPrefix(word, "/") {
			return complete(strings.TrimPrefix(word, "/"), commands, utf8.RuneCountInString(word))
		}
		return nil, 0
	}

	if word == "" || c.vocabulary == nil || !vocabularyCommands[commandOf(text)] {
		return nil, 0
	}
	words := c.vocabulary(strings.ToLower(word))
	sort.Strings(words)
	return complete(strings.ToLower(word), words, utf8.RuneCountInString(word))
}

// commandOf returns the command name at the start of line, or "".
func commandOf(line string) string {
	if !strings.HasPrefix(line, "/") {
		return ""
	}
	name := strings.TrimPrefix(line, "/")
	if i := strings.IndexAny(name, " \t"); i >= 0 {
		name = name[:i]
	}
	return name
}

func complete(prefix string, candidates []string, length int) ([][]rune, int) {
	var matches [][]rune
	for _, cand := range candidates {
		if strings.HasPrefix(cand, prefix) {
			matches = append(matches, []rune(cand[len(prefix):]+" "))
		}
	}
	return matches, length
}
