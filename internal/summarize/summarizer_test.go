package summarize

import (
	"strings"
	"testing"

	"github.com/pvoronin/newsdesk/internal/model"
)

func passage(id, articleID, text string) model.Passage {
	return model.Passage{ID: id, ArticleID: articleID, Text: text}
}

func TestSummarizer_GroupsByCanonicalID(t *testing.T) {
	s := New(DefaultHighlightLength)

	in := Input{
		Tagged: []model.TaggedEntity{
			{Entity: "OpenAI", CanonicalID: "Q12345", Category: "beat:institutions", PassageID: "p1", ArticleID: "a1"},
			{Entity: "OpenAI", CanonicalID: "Q12345", Category: "beat:institutions", PassageID: "p2", ArticleID: "a2"},
			{Entity: "Brooklyn", CanonicalID: "Q18426", Category: "beat:places", PassageID: "p1", ArticleID: "a1"},
		},
		Passages: []model.Passage{
			passage("p1", "a1", "OpenAI opened a Brooklyn office."),
			passage("p2", "a2", "OpenAI shipped a toolkit."),
		},
	}

	summaries := s.Summarize(in)
	if len(summaries) != 2 {
		t.Fatalf("expected one summary per canonical id, got %d", len(summaries))
	}

	openai := summaries[0]
	if openai.CanonicalID != "Q12345" {
		t.Fatalf("expected first-seen order, got %s first", openai.CanonicalID)
	}
	if len(openai.Highlights) != 2 {
		t.Errorf("expected 2 highlights, got %d", len(openai.Highlights))
	}
	if len(openai.ArticleIDs) != 2 || openai.ArticleIDs[0] != "a1" || openai.ArticleIDs[1] != "a2" {
		t.Errorf("expected article ids [a1 a2], got %v", openai.ArticleIDs)
	}
}

func TestSummarizer_ArticleIDsUnique(t *testing.T) {
	s := New(DefaultHighlightLength)

	in := Input{
		Tagged: []model.TaggedEntity{
			{Entity: "Queens", CanonicalID: "Q60-Queens", Category: "beat:places", PassageID: "p1", ArticleID: "a1"},
			{Entity: "Queens", CanonicalID: "Q60-Queens", Category: "beat:places", PassageID: "p2", ArticleID: "a1"},
		},
		Passages: []model.Passage{
			passage("p1", "a1", "Queens saw new sensors."),
			passage("p2", "a1", "Queens residents responded."),
		},
	}

	summaries := s.Summarize(in)
	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}
	if len(summaries[0].ArticleIDs) != 1 {
		t.Errorf("article ids must be unique, got %v", summaries[0].ArticleIDs)
	}
	// Duplicate highlights from distinct passages are allowed.
	if len(summaries[0].Highlights) != 2 {
		t.Errorf("expected 2 highlights, got %d", len(summaries[0].Highlights))
	}
}

func TestSummarizer_FirstWriteWinsTagAndCategory(t *testing.T) {
	s := New(DefaultHighlightLength)

	in := Input{
		Tagged: []model.TaggedEntity{
			{Entity: "NYC", CanonicalID: "Q60", Category: "beat:places", PassageID: "p1", ArticleID: "a1"},
			{Entity: "New York City", CanonicalID: "Q60", Category: "beat:other", PassageID: "p2", ArticleID: "a2"},
		},
		Passages: []model.Passage{
			passage("p1", "a1", "News from the city."),
			passage("p2", "a2", "More news from the city."),
		},
	}

	summaries := s.Summarize(in)
	if summaries[0].Tag != "NYC" || summaries[0].Category != "beat:places" {
		t.Errorf("first tagged entity must seed tag/category, got %s/%s", summaries[0].Tag, summaries[0].Category)
	}
}

func TestSummarizer_SkipsMissingPassage(t *testing.T) {
	s := New(DefaultHighlightLength)

	in := Input{
		Tagged: []model.TaggedEntity{
			{Entity: "Ghost", CanonicalID: "Q1", Category: "beat:general", PassageID: "missing", ArticleID: "a1"},
			{Entity: "Real", CanonicalID: "Q2", Category: "beat:general", PassageID: "p1", ArticleID: "a1"},
		},
		Passages: []model.Passage{passage("p1", "a1", "Something real happened.")},
	}

	summaries := s.Summarize(in)
	if len(summaries) != 1 || summaries[0].Tag != "Real" {
		t.Errorf("entity with missing passage must be skipped, got %v", summaries)
	}
}

func TestBuildHighlight_Truncation(t *testing.T) {
	long := strings.Repeat("word ", 60) // ~300 chars
	highlight := BuildHighlight(strings.TrimSpace(long), 160)

	if !strings.HasSuffix(highlight, "...") {
		t.Errorf("truncated highlight must end with ellipsis, got %q", highlight)
	}
	if len(highlight) > 163 {
		t.Errorf("highlight exceeds budget: %d chars", len(highlight))
	}
	if strings.Contains(strings.TrimSuffix(highlight, "..."), "wor ") {
		t.Errorf("highlight must break on word boundaries: %q", highlight)
	}
}

func TestBuildHighlight_ShortTextUnchanged(t *testing.T) {
	text := "Short passage."
	if got := BuildHighlight(text, 160); got != text {
		t.Errorf("expected %q, got %q", text, got)
	}
}

func TestBuildHighlight_OversizedFirstWord(t *testing.T) {
	text := strings.Repeat("x", 200)
	got := BuildHighlight(text, 160)
	if len(got) != 160 {
		t.Errorf("expected raw 160-char prefix, got %d chars", len(got))
	}
}
