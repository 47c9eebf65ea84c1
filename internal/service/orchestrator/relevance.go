package orchestrator

import (
	"sort"
	"strings"

	"github.com/mcpbridge/mcpbridge/internal/model"
)

// KeywordTable maps a tool name to the trigger words that mark a message as
// relevant to that tool. Matching is case-insensitive substring matching on
// the message text.
type KeywordTable map[string][]string

// DefaultKeywordTable covers the tool vocabulary mcpbridge ships with.
// Deployments override or extend it through configuration.
func DefaultKeywordTable() KeywordTable {
	return KeywordTable{
		"file-system": {"file", "directory", "folder", "read", "write", "save", "list files"},
		"git":         {"git", "commit", "branch", "repo", "diff", "merge"},
		"database":    {"database", "query", "sql", "table", "select"},
		"web-search":  {"search", "look up", "google", "find online", "what is"},
		"calendar":    {"calendar", "meeting", "schedule", "appointment", "remind"},
		"email":       {"email", "mail", "inbox", "send a message to"},
	}
}

// Selector decides which of a channel's tools a message is about.
type Selector struct {
	keywords KeywordTable
}

// NewSelector creates a selector over the given keyword table. A nil table
// falls back to the default one.
func NewSelector(keywords KeywordTable) *Selector {
	if keywords == nil {
		keywords = DefaultKeywordTable()
	}
	normalized := make(KeywordTable, len(keywords))
	for name, words := range keywords {
		lowered := make([]string, 0, len(words))
		for _, w := range words {
			lowered = append(lowered, strings.ToLower(w))
		}
		normalized[strings.ToLower(name)] = lowered
	}
	return &Selector{keywords: normalized}
}

// Select returns the subset of candidates whose keywords appear in the
// message text, preserving candidate order. Tools without a keyword entry
// are never selected. An empty result means no tool is relevant.
func (s *Selector) Select(text string, candidates []*model.Tool) []*model.Tool {
	lowered := strings.ToLower(text)

	var selected []*model.Tool
	for _, tool := range candidates {
		words, ok := s.keywords[strings.ToLower(tool.Name)]
		if !ok {
			continue
		}
		for _, w := range words {
			if strings.Contains(lowered, w) {
				selected = append(selected, tool)
				break
			}
		}
	}
	return selected
}

// Keywords returns the trigger words for a tool name, sorted, for display.
func (s *Selector) Keywords(toolName string) []string {
	words := append([]string(nil), s.keywords[strings.ToLower(toolName)]...)
	sort.Strings(words)
	return words
}
