// Package rank orders stories for a specific reader. It is the only
// stage whose output depends on wall-clock time (the recency factor),
// so the reference time is an explicit parameter.
package rank

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/pvoronin/newsdesk/internal/model"
)

// Scoring model: an additive baseline plus independent bonuses. Every
// contributing factor also appends a reason fragment for
// explainability; reasons never influence the score.
const (
	baselineScore = 0.6
	topicBonus    = 1.0
	entityBonus   = 1.2
	keywordBonus  = 0.5
	densityWeight = 0.8
	recencyWeight = 0.7
	sourceBonus   = 0.4

	densityWordNorm   = 80.0 // highlight words at which density saturates
	recencyScale      = 48.0 // hours; e^(-age/48) decay
	richHighlightMin  = 0.6  // density above which "Rich highlight" is noted
	recentCoverageMin = 0.5  // recency above which "Recent coverage" is noted
)

// Ranker scores and orders digest candidates.
type Ranker struct{}

// New creates a ranker.
func New() *Ranker {
	return &Ranker{}
}

// Rank validates summaries, expands them into one candidate per article
// id, drops blocked sources, scores, and stably sorts by descending
// score. Articles are optional enrichment: ranking degrades gracefully
// without them. A zero now falls back to the current wall-clock time;
// callers needing reproducible output must pass a fixed reference.
func (r *Ranker) Rank(profile model.ReaderProfile, summaries []model.TagSummary, articles []model.Article, now time.Time) []model.RankedStory {
	if now.IsZero() {
		now = time.Now().UTC()
	}

	preferredTopics := model.StringSet(profile.PreferredTopics)
	priorityEntities := model.StringSet(profile.PriorityEntities)
	favouriteSources := model.StringSet(profile.FavouriteSources)
	blockedSources := model.StringSet(profile.BlockedSources)

	articleByID := make(map[string]model.Article, len(articles))
	for _, article := range articles {
		if article.ID != "" {
			articleByID[article.ID] = article
		}
	}

	ranked := make([]model.RankedStory, 0, len(summaries))

	for _, raw := range summaries {
		summary, ok := validateSummary(raw)
		if !ok {
			continue
		}

		tagLower := strings.ToLower(summary.Tag)
		categoryLower := strings.ToLower(summary.Category)
		highlightText := strings.ToLower(strings.Join(summary.Highlights, " "))

		topicMatch := anySubstring(categoryLower, preferredTopics)
		entityMatch := priorityEntities[tagLower]
		keywordMatch := anySubstring(highlightText, preferredTopics)
		density := highlightDensity(summary.Highlights)

		for _, articleID := range summary.ArticleIDs {
			article, hasArticle := articleByID[articleID]
			sourceLower := ""
			if hasArticle {
				sourceLower = strings.ToLower(article.Source)
			}

			if sourceLower != "" && blockedSources[sourceLower] {
				continue
			}

			score := baselineScore
			reasons := []string{fmt.Sprintf("Entity focus: %s", summary.Tag)}

			if topicMatch {
				score += topicBonus
				reasons = append(reasons, "Matches preferred topic")
			}
			if entityMatch {
				score += entityBonus
				reasons = append(reasons, "Priority entity")
			}
			// Keyword bonus only applies without a direct topic match,
			// so the same preference is not counted twice.
			if keywordMatch && !topicMatch {
				score += keywordBonus
				reasons = append(reasons, "Highlight matches interest")
			}

			score += densityWeight * density
			if density > richHighlightMin {
				reasons = append(reasons, "Rich highlight")
			}

			title := summary.Tag
			url := ""
			if hasArticle {
				recency := recencyFactor(article.Timestamp, now)
				score += recencyWeight * recency
				if recency > recentCoverageMin {
					reasons = append(reasons, "Recent coverage")
				}

				if sourceLower != "" && favouriteSources[sourceLower] {
					score += sourceBonus
					reasons = append(reasons, "Favourite source")
				}

				title = article.Title
				url = article.URL
				if article.Source != "" {
					reasons = append(reasons, fmt.Sprintf("Source: %s", article.Source))
				}
			}

			ranked = append(ranked, model.RankedStory{
				ArticleID: articleID,
				Title:     title,
				URL:       url,
				Score:     round3(score),
				Reason:    strings.Join(reasons, ", "),
			})
		}
	}

	// Stable sort: ties keep first-seen order.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	return ranked
}

// validateSummary accepts a summary only if all identifying fields are
// set and at least one non-blank highlight and one non-empty article id
// survive filtering. Rejected summaries are diagnosed, never fatal.
func validateSummary(summary model.TagSummary) (model.TagSummary, bool) {
	if summary.Tag == "" || summary.CanonicalID == "" || summary.Category == "" {
		fmt.Fprintf(os.Stderr, "[newsdesk] rank: skipping summary with missing fields (canonical_id=%q)\n", summary.CanonicalID)
		return model.TagSummary{}, false
	}

	highlights := make([]string, 0, len(summary.Highlights))
	for _, h := range summary.Highlights {
		if strings.TrimSpace(h) != "" {
			highlights = append(highlights, h)
		}
	}
	articleIDs := make([]string, 0, len(summary.ArticleIDs))
	for _, id := range summary.ArticleIDs {
		if id != "" {
			articleIDs = append(articleIDs, id)
		}
	}

	if len(highlights) == 0 || len(articleIDs) == 0 {
		fmt.Fprintf(os.Stderr, "[newsdesk] rank: skipping summary without highlights or article ids (tag=%q)\n", summary.Tag)
		return model.TagSummary{}, false
	}

	summary.Highlights = highlights
	summary.ArticleIDs = articleIDs
	return summary, true
}

// highlightDensity measures highlight richness as word count against a
// fixed norm, capped at 1.
func highlightDensity(highlights []string) float64 {
	words := len(strings.Fields(strings.Join(highlights, " ")))
	if words == 0 {
		return 0
	}
	return math.Min(float64(words)/densityWordNorm, 1.0)
}

// recencyFactor decays exponentially with article age in hours. A
// missing or unparseable timestamp contributes nothing.
func recencyFactor(timestamp string, now time.Time) float64 {
	published, ok := model.ParseTimestamp(timestamp)
	if !ok {
		return 0
	}
	ageHours := math.Max(now.Sub(published).Hours(), 0)
	return math.Exp(-ageHours / recencyScale)
}

func anySubstring(haystack string, needles map[string]bool) bool {
	for needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}

// round3 rounds to 3 decimal places so float jitter cannot reorder
// otherwise-equal candidates.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
