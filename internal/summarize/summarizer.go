// Package summarize aggregates tagged mentions into per-entity
// highlight bundles.
package summarize

import (
	"strings"

	"github.com/pvoronin/newsdesk/internal/model"
)

// DefaultHighlightLength is the character budget per highlight.
const DefaultHighlightLength = 160

// Input pairs tagged entities with the passages they reference.
type Input struct {
	Tagged   []model.TaggedEntity `json:"tags"`
	Passages []model.Passage      `json:"passages"`
}

// Empty reports whether there is nothing to summarize.
func (in Input) Empty() bool { return len(in.Tagged) == 0 }

// Summarizer groups tagged entities by canonical id into TagSummary
// records, accumulated in an ordered map built per run and discarded
// after (no cross-run state).
type Summarizer struct {
	highlightLength int
}

// New creates a summarizer with the given highlight character budget.
func New(highlightLength int) *Summarizer {
	if highlightLength <= 0 {
		highlightLength = DefaultHighlightLength
	}
	return &Summarizer{highlightLength: highlightLength}
}

// Summarize is the rule engine. Tagged entities whose passage is absent
// are skipped, never fatal. The first entity seen for a canonical id
// seeds the summary's tag and category; later entities only contribute
// highlights and article ids. Article ids are unique in insertion
// order; highlights keep encounter order and may repeat.
func (s *Summarizer) Summarize(in Input) []model.TagSummary {
	passageByID := make(map[string]model.Passage, len(in.Passages))
	for _, passage := range in.Passages {
		passageByID[passage.ID] = passage
	}

	index := make(map[string]int)
	var summaries []model.TagSummary

	for _, tagged := range in.Tagged {
		passage, ok := passageByID[tagged.PassageID]
		if !ok {
			continue
		}

		i, seen := index[tagged.CanonicalID]
		if !seen {
			i = len(summaries)
			index[tagged.CanonicalID] = i
			summaries = append(summaries, model.TagSummary{
				Tag:         tagged.Entity,
				CanonicalID: tagged.CanonicalID,
				Category:    tagged.Category,
			})
		}

		if highlight := BuildHighlight(passage.Text, s.highlightLength); highlight != "" {
			summaries[i].Highlights = append(summaries[i].Highlights, highlight)
		}
		if !containsString(summaries[i].ArticleIDs, tagged.ArticleID) {
			summaries[i].ArticleIDs = append(summaries[i].ArticleIDs, tagged.ArticleID)
		}
	}

	return summaries
}

// BuildHighlight takes whole words up to the character budget and marks
// truncation with an ellipsis. If even the first word exceeds the
// budget, the raw prefix is used instead.
func BuildHighlight(text string, limit int) string {
	var kept []string
	length := 0

	for _, word := range strings.Fields(text) {
		projected := length + len(word)
		if len(kept) > 0 {
			projected++ // joining space
		}
		if projected > limit {
			break
		}
		kept = append(kept, word)
		length = projected
	}

	snippet := strings.Join(kept, " ")
	if snippet != "" && len(snippet) < len(text) {
		return snippet + "..."
	}
	if snippet == "" && len(text) > limit {
		return text[:limit]
	}
	return snippet
}

func containsString(values []string, v string) bool {
	for _, existing := range values {
		if existing == v {
			return true
		}
	}
	return false
}
