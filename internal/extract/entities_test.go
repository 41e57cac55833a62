package extract

import (
	"testing"

	"github.com/pvoronin/newsdesk/internal/model"
)

func TestExtractor_KnownEntityScenario(t *testing.T) {
	extractor := New(nil)

	passage := model.Passage{
		ID:        "a1-p1",
		ArticleID: "a1",
		Order:     1,
		Text:      "Sensors improved air quality readings. Residents praised the Metro Climate Desk.",
	}

	mentions := extractor.Extract([]model.Passage{passage})
	if len(mentions) != 1 {
		t.Fatalf("expected 1 mention, got %d", len(mentions))
	}

	m := mentions[0]
	if m.Span != "Metro Climate Desk" {
		t.Errorf("expected Metro Climate Desk, got %q", m.Span)
	}
	if m.Type != model.EntityOrg {
		t.Errorf("expected ORG, got %s", m.Type)
	}
	if m.PassageID != "a1-p1" || m.ArticleID != "a1" {
		t.Errorf("mention lost passage/article linkage: %+v", m)
	}
	if m.Context != passage.Text {
		t.Errorf("expected passage text as context")
	}
}

func TestExtractor_MultipleEntitiesLexiconOrder(t *testing.T) {
	extractor := New(nil)

	passage := model.Passage{
		ID:        "a1-p1",
		ArticleID: "a1",
		Text:      "OpenAI opened an office in Brooklyn, said Jamie Rivera.",
	}

	mentions := extractor.Extract([]model.Passage{passage})
	if len(mentions) != 3 {
		t.Fatalf("expected 3 mentions, got %d", len(mentions))
	}
	// Lexicon order, not text order.
	if mentions[0].Span != "OpenAI" || mentions[1].Span != "Brooklyn" || mentions[2].Span != "Jamie Rivera" {
		t.Errorf("unexpected mention order: %v", mentions)
	}
}

func TestExtractor_CustomLexicon(t *testing.T) {
	extractor := New(Lexicon{{Span: "Acme Corp", Type: model.EntityOrg}})

	mentions := extractor.Extract([]model.Passage{
		{ID: "p1", ArticleID: "a1", Text: "Acme Corp shipped a product. OpenAI did not appear here as a match."},
	})

	found := false
	for _, m := range mentions {
		if m.Span == "OpenAI" {
			t.Error("custom lexicon should replace the default table")
		}
		if m.Span == "Acme Corp" {
			found = true
		}
	}
	if !found {
		t.Error("expected Acme Corp mention")
	}
}

func TestExtractor_NoPassages(t *testing.T) {
	extractor := New(nil)
	if got := extractor.Extract(nil); len(got) != 0 {
		t.Errorf("expected no mentions, got %v", got)
	}
}
