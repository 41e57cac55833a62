package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pvoronin/newsdesk/internal/model"
	"github.com/pvoronin/newsdesk/internal/segment"
)

// Stage-specific system prompts. Each stage expects a JSON object with
// one named list; anything else is a service failure.
const (
	passagePrompt = "You split news articles into coherent passages for downstream tools. " +
		"Return JSON with key 'passages'. The value must be a list where each item " +
		"contains a 'text' field. Keep each passage focused and under the provided " +
		"max_length in characters. Avoid overlapping content."

	entityPrompt = "You are an information extraction assistant for a newsroom. Return JSON with " +
		"a single key 'entities' whose value is a list. Each list item must be an object " +
		"containing span, type (PERSON/ORG/LOCATION/OTHER), passage_id, article_id, and " +
		"context (a short excerpt)."

	resolvePrompt = "You are an entity linking assistant. Map entities to canonical identifiers. Return " +
		"JSON with key 'resolved_entities' whose value is a list of objects. Each object must " +
		"provide span, canonical_id, confidence (0-1), type, passage_id, and article_id."

	tagPrompt = "You assign newsroom categories to canonicalised entities. Return JSON with key " +
		"'tagged_entities'. Each item must include entity (original span), canonical_id, " +
		"category, passage_id, and article_id. Use concise, consistent category labels."

	topicPrompt = "You are a newsroom beat classifier. Categorise each news passage into one of the " +
		"beats: Technology, Climate, Civic, or General (use General when unsure). Return " +
		"JSON with key 'topics' whose value is a list of objects containing passage_id, " +
		"topic, and confidence (0-1)."

	summaryPrompt = "You are a newsroom summariser. Group information by entity tag and produce concise " +
		"highlights. Return JSON with key 'tag_summaries', a list where each item has tag, " +
		"canonical_id, category, highlights (list of strings), and article_ids (list of strings)."

	factCheckPrompt = "You are a fact-check assistant. Evaluate each claim and return JSON with key " +
		"'checked_claims'. The list entries must contain claim, status (supported/contradicted/" +
		"unverified), and references (list of {source,url})."
)

// Service exposes the delegated text-understanding calls, one per
// pipeline stage. Calls are blocking and single-shot: retry and backoff
// are deliberately left to the client configuration, never done here.
type Service struct {
	client Client
	model  string
}

// NewService wraps a client. model overrides the provider default when
// non-empty.
func NewService(client Client, model string) *Service {
	return &Service{client: client, model: model}
}

// SplitPassages delegates segmentation. The service's passages are
// re-chunked locally so the character budget holds regardless of what
// the model returned.
func (s *Service) SplitPassages(ctx context.Context, articleID, content string, maxLength int) ([]model.Passage, error) {
	payload, err := json.Marshal(map[string]any{
		"article_id": articleID,
		"max_length": maxLength,
		"content":    content,
	})
	if err != nil {
		return nil, err
	}

	resp, err := s.complete(ctx, passagePrompt, []string{string(payload)}, 0)
	if err != nil {
		return nil, err
	}

	items, err := decodeList[json.RawMessage](resp, "passages")
	if err != nil {
		return nil, err
	}

	var passages []model.Passage
	order := 0
	for _, raw := range items {
		text := passageText(raw)
		if text == "" {
			continue
		}
		chunks := segment.ChunkWords(text, maxLength)
		if len(chunks) == 0 {
			chunks = []string{text}
		}
		for _, chunk := range chunks {
			chunk = strings.TrimSpace(chunk)
			if chunk == "" {
				continue
			}
			order++
			passages = append(passages, model.Passage{
				ID:        model.PassageID(articleID, order),
				ArticleID: articleID,
				Order:     order,
				Text:      chunk,
			})
		}
	}
	return passages, nil
}

// ExtractEntities delegates mention extraction, one user message per
// passage.
func (s *Service) ExtractEntities(ctx context.Context, passages []model.Passage) ([]model.EntityMention, error) {
	user := make([]string, 0, len(passages))
	for _, passage := range passages {
		payload, err := json.Marshal(map[string]string{
			"passage_id": passage.ID,
			"article_id": passage.ArticleID,
			"text":       passage.Text,
		})
		if err != nil {
			return nil, err
		}
		user = append(user, string(payload))
	}

	resp, err := s.complete(ctx, entityPrompt, user, 0)
	if err != nil {
		return nil, err
	}
	return decodeRecords[model.EntityMention](resp, "entities")
}

// ResolveEntities delegates canonical id resolution. hint is free-text
// disambiguation context forwarded to the service.
func (s *Service) ResolveEntities(ctx context.Context, entities []model.EntityMention, hint string) ([]model.ResolvedEntity, error) {
	ctxPayload, err := json.Marshal(map[string]string{"context": hint})
	if err != nil {
		return nil, err
	}
	entPayload, err := json.Marshal(map[string]any{"entities": entities})
	if err != nil {
		return nil, err
	}

	resp, err := s.complete(ctx, resolvePrompt, []string{string(ctxPayload), string(entPayload)}, 0)
	if err != nil {
		return nil, err
	}
	return decodeRecords[model.ResolvedEntity](resp, "resolved_entities")
}

// TagEntities delegates category assignment.
func (s *Service) TagEntities(ctx context.Context, resolved []model.ResolvedEntity) ([]model.TaggedEntity, error) {
	payload, err := json.Marshal(map[string]any{"resolved_entities": resolved})
	if err != nil {
		return nil, err
	}

	resp, err := s.complete(ctx, tagPrompt, []string{string(payload)}, 0)
	if err != nil {
		return nil, err
	}
	return decodeRecords[model.TaggedEntity](resp, "tagged_entities")
}

// ClassifyTopics delegates beat classification, one user message per
// passage.
func (s *Service) ClassifyTopics(ctx context.Context, passages []model.Passage) ([]model.TopicPrediction, error) {
	user := make([]string, 0, len(passages))
	for _, passage := range passages {
		payload, err := json.Marshal(map[string]string{
			"passage_id": passage.ID,
			"article_id": passage.ArticleID,
			"text":       passage.Text,
		})
		if err != nil {
			return nil, err
		}
		user = append(user, string(payload))
	}

	resp, err := s.complete(ctx, topicPrompt, user, 0)
	if err != nil {
		return nil, err
	}
	return decodeRecords[model.TopicPrediction](resp, "topics")
}

// SummarizeTags delegates per-entity summarization.
func (s *Service) SummarizeTags(ctx context.Context, tagged []model.TaggedEntity, passages []model.Passage) ([]model.TagSummary, error) {
	payload, err := json.Marshal(map[string]any{"tags": tagged, "passages": passages})
	if err != nil {
		return nil, err
	}

	resp, err := s.complete(ctx, summaryPrompt, []string{string(payload)}, 0.2)
	if err != nil {
		return nil, err
	}
	return decodeRecords[model.TagSummary](resp, "tag_summaries")
}

// CheckClaims delegates claim verification.
func (s *Service) CheckClaims(ctx context.Context, claims []string) ([]model.CheckedClaim, error) {
	payload, err := json.Marshal(map[string]any{"claims": claims})
	if err != nil {
		return nil, err
	}

	resp, err := s.complete(ctx, factCheckPrompt, []string{string(payload)}, 0.1)
	if err != nil {
		return nil, err
	}
	return decodeRecords[model.CheckedClaim](resp, "checked_claims")
}

func (s *Service) complete(ctx context.Context, system string, user []string, temperature float32) (map[string]json.RawMessage, error) {
	if s.client == nil {
		return nil, fmt.Errorf("service client is not configured")
	}
	return s.client.CompleteJSON(ctx, Request{
		System:      system,
		User:        user,
		Model:       s.model,
		Temperature: temperature,
	})
}

// decodeList extracts the named top-level key as a JSON list. A missing
// key or non-list value is a service failure.
func decodeList[T any](resp map[string]json.RawMessage, key string) ([]T, error) {
	raw, ok := resp[key]
	if !ok {
		return nil, fmt.Errorf("service response missing key %q", key)
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("service response key %q is not a list: %w", key, err)
	}
	return items, nil
}

// decodeRecords decodes a list of records, dropping malformed entries
// with a diagnostic instead of failing the whole call.
func decodeRecords[T any](resp map[string]json.RawMessage, key string) ([]T, error) {
	raws, err := decodeList[json.RawMessage](resp, key)
	if err != nil {
		return nil, err
	}

	records := make([]T, 0, len(raws))
	for i, raw := range raws {
		var record T
		if err := json.Unmarshal(raw, &record); err != nil {
			fmt.Fprintf(os.Stderr, "[newsdesk] llm: skipping malformed %s record %d: %v\n", key, i, err)
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// passageText accepts either a {"text": ...} object or a bare string.
func passageText(raw json.RawMessage) string {
	var obj struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Text != "" {
		return strings.TrimSpace(obj.Text)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return ""
}
