package model

import (
	"strings"
	"time"
)

// Article is a news article supplied by an upstream source.
// Timestamp is an ISO-8601 UTC string as delivered by the fetcher.
type Article struct {
	ID        string `json:"id"`
	Source    string `json:"source"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Timestamp string `json:"timestamp"`
	Author    string `json:"author"`
	Content   string `json:"content"`
}

// PublishedAt parses the article timestamp. It accepts RFC3339 and a
// zone-less variant which is treated as UTC. Returns false when the
// timestamp is absent or unparseable.
func (a Article) PublishedAt() (time.Time, bool) {
	return ParseTimestamp(a.Timestamp)
}

// ParseTimestamp parses an ISO-8601 timestamp, tolerating a trailing Z
// or a missing zone (assumed UTC).
func ParseTimestamp(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse("2006-01-02T15:04:05", value); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

// ReaderProfile captures a reader's digest preferences. All matching is
// case-insensitive; absent fields behave as empty sets.
type ReaderProfile struct {
	UserID           string   `json:"user_id" yaml:"user_id"`
	PreferredTopics  []string `json:"preferred_topics" yaml:"preferred_topics"`
	PriorityEntities []string `json:"priority_entities" yaml:"priority_entities"`
	FavouriteSources []string `json:"favourite_sources" yaml:"favourite_sources"`
	BlockedSources   []string `json:"blocked_sources" yaml:"blocked_sources"`
}

// StringSet lowercases and trims values into a membership set, dropping
// blanks. Used for all profile matching.
func StringSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			set[v] = true
		}
	}
	return set
}
