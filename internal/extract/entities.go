// Package extract finds entity mentions in passages.
package extract

import (
	"strings"

	"github.com/pvoronin/newsdesk/internal/model"
)

// LexiconEntry pairs a known surface form with its entity type.
type LexiconEntry struct {
	Span string
	Type model.EntityType
}

// Lexicon is the curated known-entity table. Ordering is significant:
// the rule engine scans entries in slice order so output is
// deterministic for identical input.
type Lexicon []LexiconEntry

// DefaultLexicon returns the curated newsroom entity table.
func DefaultLexicon() Lexicon {
	return Lexicon{
		{Span: "OpenAI", Type: model.EntityOrg},
		{Span: "New York City", Type: model.EntityLocation},
		{Span: "Metro Climate Desk", Type: model.EntityOrg},
		{Span: "Brooklyn", Type: model.EntityLocation},
		{Span: "Queens", Type: model.EntityLocation},
		{Span: "Jamie Rivera", Type: model.EntityPerson},
		{Span: "Priya Das", Type: model.EntityPerson},
	}
}

// Extractor detects entity mentions by substring match against the
// lexicon. Reference data is injected at construction so tests can
// substitute their own tables.
type Extractor struct {
	lexicon Lexicon
}

// New creates an extractor. A nil lexicon uses the default table.
func New(lexicon Lexicon) *Extractor {
	if lexicon == nil {
		lexicon = DefaultLexicon()
	}
	return &Extractor{lexicon: lexicon}
}

// Extract is the rule engine: one mention per lexicon hit per passage,
// in passage order then lexicon order. The passage text becomes the
// mention context.
func (e *Extractor) Extract(passages []model.Passage) []model.EntityMention {
	var mentions []model.EntityMention
	for _, passage := range passages {
		for _, entry := range e.lexicon {
			if strings.Contains(passage.Text, entry.Span) {
				mentions = append(mentions, model.EntityMention{
					Span:      entry.Span,
					Type:      entry.Type,
					PassageID: passage.ID,
					ArticleID: passage.ArticleID,
					Context:   passage.Text,
				})
			}
		}
	}
	return mentions
}
