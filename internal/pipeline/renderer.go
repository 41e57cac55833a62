package pipeline

import (
	"fmt"
	"strings"

	"github.com/pvoronin/newsdesk/internal/model"
)

// Supported digest formats.
const (
	FormatMarkdown = "markdown"
	FormatText     = "text"
)

// Digest is a rendered digest document.
type Digest struct {
	Body      string `json:"digest"`
	Format    string `json:"format"`
	ItemCount int    `json:"item_count"`
}

// Renderer formats ranked stories into a digest.
type Renderer struct{}

// NewRenderer creates a renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render produces one digest line per ranked story, in rank order.
func (r *Renderer) Render(stories []model.RankedStory, format string) (*Digest, error) {
	if format != FormatMarkdown && format != FormatText {
		return nil, fmt.Errorf("unsupported digest format %q (supported: %s, %s)", format, FormatMarkdown, FormatText)
	}

	lines := make([]string, 0, len(stories))
	for _, story := range stories {
		score := fmt.Sprintf("score: %.1f", story.Score)
		if format == FormatMarkdown && story.URL != "" {
			lines = append(lines, fmt.Sprintf("- [%s](%s) — %s (%s)", story.Title, story.URL, story.Reason, score))
			continue
		}
		urlPart := ""
		if story.URL != "" {
			urlPart = " " + story.URL
		}
		lines = append(lines, fmt.Sprintf("- %s%s — %s (%s)", story.Title, urlPart, story.Reason, score))
	}

	return &Digest{
		Body:      strings.Join(lines, "\n"),
		Format:    format,
		ItemCount: len(stories),
	}, nil
}

// Delivery is the outcome of a digest delivery attempt.
type Delivery struct {
	Status  string `json:"status"`
	Channel string `json:"delivery_channel"`
	UserID  string `json:"user_id"`
	Preview string `json:"preview"`
}

// Deliverer hands digests to a delivery channel. Delivery is simulated
// unless dry-run is disabled; no external side effects happen here.
type Deliverer struct {
	dryRun bool
}

// NewDeliverer creates a deliverer. dryRun true simulates delivery.
func NewDeliverer(dryRun bool) *Deliverer {
	return &Deliverer{dryRun: dryRun}
}

// Deliver returns a delivery receipt with the digest's first line as a
// preview.
func (d *Deliverer) Deliver(digest, channel, userID string) Delivery {
	status := "queued"
	if d.dryRun {
		status = "simulated"
	}

	preview := ""
	if digest != "" {
		preview = strings.SplitN(digest, "\n", 2)[0]
	}

	return Delivery{
		Status:  status,
		Channel: channel,
		UserID:  userID,
		Preview: preview,
	}
}
