package classify

import (
	"strings"

	"github.com/pvoronin/newsdesk/internal/model"
)

// CueLexicon holds the positive and negative sentiment cues.
type CueLexicon struct {
	Positive []string
	Negative []string
}

// DefaultCues returns the standard sentiment lexicon.
func DefaultCues() CueLexicon {
	return CueLexicon{
		Positive: []string{"improved", "expanding", "better", "engaged", "helps", "support"},
		Negative: []string{"concern", "risk", "problem", "delay"},
	}
}

// SentimentScorer scores passage sentiment and stance from cue counts.
// This stage is rule-only: there is no delegated service path for it.
type SentimentScorer struct {
	cues CueLexicon
}

// NewSentimentScorer creates a scorer. Empty lexicons use the defaults.
func NewSentimentScorer(cues CueLexicon) *SentimentScorer {
	if cues.Positive == nil && cues.Negative == nil {
		cues = DefaultCues()
	}
	return &SentimentScorer{cues: cues}
}

// Score produces one sentiment record per passage, order preserved. The
// score is the signed cue delta (positive hits minus negative hits).
func (s *SentimentScorer) Score(passages []model.Passage) []model.SentimentScore {
	scores := make([]model.SentimentScore, 0, len(passages))
	for _, passage := range passages {
		lower := strings.ToLower(passage.Text)

		delta := 0
		for _, cue := range s.cues.Positive {
			if strings.Contains(lower, cue) {
				delta++
			}
		}
		for _, cue := range s.cues.Negative {
			if strings.Contains(lower, cue) {
				delta--
			}
		}

		sentiment, stance := model.SentimentNeutral, model.StanceNeutral
		switch {
		case delta > 0:
			sentiment, stance = model.SentimentPositive, model.StanceSupportive
		case delta < 0:
			sentiment, stance = model.SentimentNegative, model.StanceCritical
		}

		scores = append(scores, model.SentimentScore{
			PassageID: passage.ID,
			Sentiment: sentiment,
			Stance:    stance,
			Score:     float64(delta),
		})
	}
	return scores
}
