package model

import "fmt"

// EntityType classifies an entity mention.
type EntityType string

const (
	EntityPerson   EntityType = "PERSON"
	EntityOrg      EntityType = "ORG"
	EntityLocation EntityType = "LOCATION"
	EntityOther    EntityType = "OTHER"
)

// Passage is a bounded span of article text with a stable 1-based order.
// Passages are immutable once produced by the segmenter.
type Passage struct {
	ID        string `json:"id"`
	ArticleID string `json:"article_id"`
	Order     int    `json:"order"`
	Text      string `json:"text"`
}

// PassageID derives the deterministic passage identifier from an article
// id and a 1-based order.
func PassageID(articleID string, order int) string {
	return fmt.Sprintf("%s-p%d", articleID, order)
}

// EntityMention is a raw, unresolved entity span detected in a passage.
type EntityMention struct {
	Span      string     `json:"span"`
	Type      EntityType `json:"type"`
	PassageID string     `json:"passage_id"`
	ArticleID string     `json:"article_id"`
	Context   string     `json:"context"`
}

// ResolvedEntity links a mention to a canonical identifier.
type ResolvedEntity struct {
	Span        string     `json:"span"`
	CanonicalID string     `json:"canonical_id"`
	Confidence  float64    `json:"confidence"`
	Type        EntityType `json:"type"`
	PassageID   string     `json:"passage_id"`
	ArticleID   string     `json:"article_id"`
}

// TaggedEntity is a resolved entity annotated with a newsroom category.
type TaggedEntity struct {
	Entity      string `json:"entity"`
	CanonicalID string `json:"canonical_id"`
	Category    string `json:"category"`
	PassageID   string `json:"passage_id"`
	ArticleID   string `json:"article_id"`
}

// TagSummary aggregates highlights and article references for one
// canonical entity. ArticleIDs is unique in insertion order.
type TagSummary struct {
	Tag         string   `json:"tag"`
	CanonicalID string   `json:"canonical_id"`
	Category    string   `json:"category"`
	Highlights  []string `json:"highlights"`
	ArticleIDs  []string `json:"article_ids"`
}

// TopicPrediction is the topic classification for a passage.
type TopicPrediction struct {
	PassageID  string  `json:"passage_id"`
	Topic      string  `json:"topic"`
	Confidence float64 `json:"confidence"`
}

// SentimentScore is the sentiment and stance analysis for a passage.
type SentimentScore struct {
	PassageID string  `json:"passage_id"`
	Sentiment string  `json:"sentiment"`
	Stance    string  `json:"stance"`
	Score     float64 `json:"score"`
}

// Sentiment labels.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"

	StanceSupportive = "supportive"
	StanceNeutral    = "neutral"
	StanceCritical   = "critical"
)

// Reference is a supporting source for a checked claim.
type Reference struct {
	Source string `json:"source"`
	URL    string `json:"url"`
}

// CheckedClaim is the verification verdict for a free-text claim.
type CheckedClaim struct {
	Claim      string      `json:"claim"`
	Status     string      `json:"status"`
	References []Reference `json:"references"`
}

// Claim verification statuses.
const (
	ClaimSupported    = "supported"
	ClaimContradicted = "contradicted"
	ClaimUnverified   = "unverified"
)

// RankedStory is a scored digest candidate. Derived and ephemeral:
// recomputed on every ranking run, never persisted.
type RankedStory struct {
	ArticleID string  `json:"article_id"`
	Title     string  `json:"title"`
	URL       string  `json:"url"`
	Score     float64 `json:"score"`
	Reason    string  `json:"reason"`
}
