// Package classify holds the passage-level side branches: topic
// classification and sentiment scoring. Both depend only on passages
// and never gate the main pipeline.
package classify

import (
	"strings"

	"github.com/pvoronin/newsdesk/internal/model"
)

// Topic confidence levels for keyword hits vs the default bucket.
const (
	matchedConfidence = 0.9
	defaultConfidence = 0.5
	defaultTopic      = "General"
)

// TopicRule maps a beat name to its trigger keywords. Rules are
// evaluated in slice order; the first hit wins.
type TopicRule struct {
	Topic    string
	Keywords []string
}

// DefaultTopicRules returns the standard newsroom beats.
func DefaultTopicRules() []TopicRule {
	return []TopicRule{
		{Topic: "Technology", Keywords: []string{"ai", "automation", "toolkit", "openai"}},
		{Topic: "Climate", Keywords: []string{"climate", "air quality", "sensors"}},
		{Topic: "Civic", Keywords: []string{"community", "policymakers", "residents"}},
	}
}

// TopicClassifier buckets passages into beats by keyword heuristics.
type TopicClassifier struct {
	rules []TopicRule
}

// NewTopicClassifier creates a classifier. nil rules use the defaults.
func NewTopicClassifier(rules []TopicRule) *TopicClassifier {
	if rules == nil {
		rules = DefaultTopicRules()
	}
	return &TopicClassifier{rules: rules}
}

// Classify produces one prediction per passage, order preserved.
func (c *TopicClassifier) Classify(passages []model.Passage) []model.TopicPrediction {
	predictions := make([]model.TopicPrediction, 0, len(passages))
	for _, passage := range passages {
		lower := strings.ToLower(passage.Text)
		topic := defaultTopic
		confidence := defaultConfidence

	rules:
		for _, rule := range c.rules {
			for _, keyword := range rule.Keywords {
				if strings.Contains(lower, keyword) {
					topic = rule.Topic
					confidence = matchedConfidence
					break rules
				}
			}
		}

		predictions = append(predictions, model.TopicPrediction{
			PassageID:  passage.ID,
			Topic:      topic,
			Confidence: confidence,
		})
	}
	return predictions
}
