// Package segment splits article text into ordered passages.
package segment

import (
	"strings"

	"github.com/pvoronin/newsdesk/internal/model"
)

// DefaultMaxLength is the character budget per passage.
const DefaultMaxLength = 320

// Request is the segmentation input for a single article.
type Request struct {
	ArticleID string `json:"article_id"`
	Content   string `json:"content"`
}

// Empty reports whether there is nothing to segment.
func (r Request) Empty() bool { return strings.TrimSpace(r.Content) == "" }

// Segmenter produces passages with stable, gapless 1-based order.
type Segmenter struct {
	maxLength int
}

// New creates a segmenter with the given character budget per passage.
func New(maxLength int) *Segmenter {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	return &Segmenter{maxLength: maxLength}
}

// Split is the rule engine: paragraphs are split on newlines and packed
// into word-boundary chunks under the budget. Empty content yields no
// passages; non-empty content yields at least one.
func (s *Segmenter) Split(req Request) []model.Passage {
	if req.Empty() {
		return nil
	}

	var passages []model.Passage
	order := 0

	for _, block := range strings.Split(req.Content, "\n") {
		paragraph := strings.TrimSpace(block)
		if paragraph == "" {
			continue
		}
		for _, chunk := range ChunkWords(paragraph, s.maxLength) {
			order++
			passages = append(passages, model.Passage{
				ID:        model.PassageID(req.ArticleID, order),
				ArticleID: req.ArticleID,
				Order:     order,
				Text:      chunk,
			})
		}
	}

	if len(passages) == 0 {
		passages = append(passages, model.Passage{
			ID:        model.PassageID(req.ArticleID, 1),
			ArticleID: req.ArticleID,
			Order:     1,
			Text:      strings.TrimSpace(req.Content),
		})
	}

	return passages
}

// ChunkWords packs whole words into chunks of at most maxLength
// characters. A single word longer than the budget becomes its own
// chunk rather than being split.
func ChunkWords(text string, maxLength int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	var current []string
	currentLen := 0

	for _, word := range words {
		additional := len(word)
		if len(current) > 0 {
			additional++ // joining space
		}
		if currentLen+additional > maxLength && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
			current = []string{word}
			currentLen = len(word)
		} else {
			current = append(current, word)
			currentLen += additional
		}
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}

	return chunks
}
