package rank

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/pvoronin/newsdesk/internal/model"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func summary(tag, id, category string, highlights []string, articleIDs []string) model.TagSummary {
	return model.TagSummary{Tag: tag, CanonicalID: id, Category: category, Highlights: highlights, ArticleIDs: articleIDs}
}

func TestRanker_BlockedSourceExcluded(t *testing.T) {
	ranker := New()

	profile := model.ReaderProfile{
		UserID:          "u1",
		PreferredTopics: []string{"institutions"},
		BlockedSources:  []string{"fake-news.com"},
	}
	summaries := []model.TagSummary{
		summary("OpenAI", "Q12345", "beat:institutions", []string{"big highlight"}, []string{"a1"}),
	}
	articles := []model.Article{
		{ID: "a1", Source: "FAKE-NEWS.com", Title: "Clickbait", URL: "http://x", Timestamp: fixedNow.Format(time.RFC3339)},
	}

	ranked := ranker.Rank(profile, summaries, articles, fixedNow)
	if len(ranked) != 0 {
		t.Errorf("blocked source must be excluded regardless of score, got %v", ranked)
	}
}

func TestRanker_InvalidSummariesDropped(t *testing.T) {
	ranker := New()

	summaries := []model.TagSummary{
		summary("Valid", "Q1", "beat:places", []string{"highlight"}, []string{"a1"}),
		summary("NoHighlights", "Q2", "beat:places", nil, []string{"a1"}),
		summary("BlankHighlights", "Q3", "beat:places", []string{"  "}, []string{"a1"}),
		summary("NoArticles", "Q4", "beat:places", []string{"highlight"}, nil),
		{Tag: "", CanonicalID: "Q5", Category: "beat:places", Highlights: []string{"h"}, ArticleIDs: []string{"a1"}},
	}

	ranked := ranker.Rank(model.ReaderProfile{UserID: "u1"}, summaries, nil, fixedNow)
	if len(ranked) != 1 {
		t.Fatalf("expected exactly the 4 invalid summaries dropped, got %d results", len(ranked))
	}
	if ranked[0].Title != "Valid" {
		t.Errorf("expected the valid summary to survive, got %+v", ranked[0])
	}
}

func TestRanker_ScoringFactors(t *testing.T) {
	ranker := New()
	profile := model.ReaderProfile{
		UserID:           "u1",
		PreferredTopics:  []string{"institutions"},
		PriorityEntities: []string{"openai"},
		FavouriteSources: []string{"metro-times"},
	}
	articles := []model.Article{
		{ID: "a1", Source: "metro-times", Title: "Launch", URL: "http://x", Timestamp: fixedNow.Format(time.RFC3339)},
	}
	s := summary("OpenAI", "Q12345", "beat:institutions", []string{"one two three four"}, []string{"a1"})

	ranked := ranker.Rank(profile, []model.TagSummary{s}, articles, fixedNow)
	if len(ranked) != 1 {
		t.Fatalf("expected 1 story, got %d", len(ranked))
	}

	// 0.6 baseline + 1.0 topic + 1.2 entity + 0.8*(4/80) + 0.7*1 recency + 0.4 source
	want := 0.6 + 1.0 + 1.2 + 0.8*(4.0/80.0) + 0.7 + 0.4
	got := ranked[0].Score
	if got != round3(want) {
		t.Errorf("expected score %v, got %v", round3(want), got)
	}

	for _, fragment := range []string{"Entity focus: OpenAI", "Matches preferred topic", "Priority entity", "Recent coverage", "Favourite source", "Source: metro-times"} {
		if !strings.Contains(ranked[0].Reason, fragment) {
			t.Errorf("reason missing %q: %s", fragment, ranked[0].Reason)
		}
	}
}

func TestRanker_KeywordBonusOnlyWithoutTopicMatch(t *testing.T) {
	ranker := New()
	profile := model.ReaderProfile{UserID: "u1", PreferredTopics: []string{"climate"}}

	// Category does not mention climate, but the highlight does.
	keywordOnly := summary("Desk", "Q1", "beat:institutions", []string{"climate sensors arrive"}, []string{"a1"})
	ranked := ranker.Rank(profile, []model.TagSummary{keywordOnly}, nil, fixedNow)
	if !strings.Contains(ranked[0].Reason, "Highlight matches interest") {
		t.Errorf("expected keyword bonus reason, got %s", ranked[0].Reason)
	}

	// Category matches directly: keyword bonus must not stack.
	both := summary("Desk", "Q1", "beat:climate", []string{"climate sensors arrive"}, []string{"a1"})
	rankedBoth := ranker.Rank(profile, []model.TagSummary{both}, nil, fixedNow)
	if strings.Contains(rankedBoth[0].Reason, "Highlight matches interest") {
		t.Errorf("keyword bonus must not double count with topic match: %s", rankedBoth[0].Reason)
	}
	wantDiff := topicBonus - keywordBonus
	if round3(rankedBoth[0].Score-ranked[0].Score) != round3(wantDiff) {
		t.Errorf("expected topic-vs-keyword score gap %v, got %v", wantDiff, rankedBoth[0].Score-ranked[0].Score)
	}
}

func TestRanker_MonotonicInDensityAndRecency(t *testing.T) {
	ranker := New()
	profile := model.ReaderProfile{UserID: "u1"}

	sparse := summary("A", "Q1", "beat:places", []string{"few words here"}, []string{"a1"})
	dense := summary("A", "Q1", "beat:places", []string{strings.Repeat("word ", 80)}, []string{"a1"})

	sparseScore := ranker.Rank(profile, []model.TagSummary{sparse}, nil, fixedNow)[0].Score
	denseScore := ranker.Rank(profile, []model.TagSummary{dense}, nil, fixedNow)[0].Score
	if denseScore <= sparseScore {
		t.Errorf("score must be monotonic in highlight density: %v <= %v", denseScore, sparseScore)
	}

	fresh := []model.Article{{ID: "a1", Source: "s", Title: "t", Timestamp: fixedNow.Add(-1 * time.Hour).Format(time.RFC3339)}}
	stale := []model.Article{{ID: "a1", Source: "s", Title: "t", Timestamp: fixedNow.Add(-200 * time.Hour).Format(time.RFC3339)}}

	freshScore := ranker.Rank(profile, []model.TagSummary{sparse}, fresh, fixedNow)[0].Score
	staleScore := ranker.Rank(profile, []model.TagSummary{sparse}, stale, fixedNow)[0].Score
	if freshScore <= staleScore {
		t.Errorf("score must be monotonic in recency: %v <= %v", freshScore, staleScore)
	}
}

func TestRanker_StableTieOrderAndReproducible(t *testing.T) {
	ranker := New()
	profile := model.ReaderProfile{UserID: "u1"}

	summaries := []model.TagSummary{
		summary("First", "Q1", "beat:places", []string{"same highlight text"}, []string{"a1"}),
		summary("Second", "Q2", "beat:places", []string{"same highlight text"}, []string{"a2"}),
		summary("Third", "Q3", "beat:places", []string{"same highlight text"}, []string{"a3"}),
	}

	first := ranker.Rank(profile, summaries, nil, fixedNow)
	if first[0].Title != "First" || first[1].Title != "Second" || first[2].Title != "Third" {
		t.Errorf("equal scores must keep first-seen order: %v", first)
	}

	for i := 0; i < 5; i++ {
		again := ranker.Rank(profile, summaries, nil, fixedNow)
		if !reflect.DeepEqual(first, again) {
			t.Fatal("identical input and now must yield identical order")
		}
	}
}

func TestRanker_ExpandsPerArticleID(t *testing.T) {
	ranker := New()

	s := summary("OpenAI", "Q12345", "beat:institutions", []string{"highlight"}, []string{"a1", "a2", "a3"})
	ranked := ranker.Rank(model.ReaderProfile{UserID: "u1"}, []model.TagSummary{s}, nil, fixedNow)
	if len(ranked) != 3 {
		t.Fatalf("expected one candidate per article id, got %d", len(ranked))
	}
}

func TestRanker_DegradesWithoutArticles(t *testing.T) {
	ranker := New()

	s := summary("OpenAI", "Q12345", "beat:institutions", []string{"highlight"}, []string{"a1"})
	ranked := ranker.Rank(model.ReaderProfile{UserID: "u1"}, []model.TagSummary{s}, nil, fixedNow)

	story := ranked[0]
	if story.Title != "OpenAI" || story.URL != "" {
		t.Errorf("without article enrichment title falls back to tag: %+v", story)
	}
	if strings.Contains(story.Reason, "Recent coverage") || strings.Contains(story.Reason, "Source:") {
		t.Errorf("article-dependent reasons must be absent: %s", story.Reason)
	}
}

func TestRanker_EmptyInput(t *testing.T) {
	ranked := New().Rank(model.ReaderProfile{UserID: "u1"}, nil, nil, fixedNow)
	if len(ranked) != 0 {
		t.Errorf("empty summaries must yield empty ranking, got %v", ranked)
	}
}

func TestRanker_ScoresRounded(t *testing.T) {
	ranker := New()
	s := summary("A", "Q1", "beat:places", []string{"one two three"}, []string{"a1"})
	articles := []model.Article{{ID: "a1", Source: "s", Title: "t", Timestamp: fixedNow.Add(-17 * time.Hour).Format(time.RFC3339)}}

	got := ranker.Rank(model.ReaderProfile{UserID: "u1"}, []model.TagSummary{s}, articles, fixedNow)[0].Score
	if got != round3(got) {
		t.Errorf("score must be rounded to 3 decimals, got %v", got)
	}
}
