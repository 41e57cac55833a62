// Package pipeline orchestrates the digest run: fetch, segment,
// extract, resolve, tag, classify, summarize, fact-check, rank, and
// render. Every text stage runs through the dual-mode stage executor.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pvoronin/newsdesk/internal/cache"
	"github.com/pvoronin/newsdesk/internal/classify"
	"github.com/pvoronin/newsdesk/internal/extract"
	"github.com/pvoronin/newsdesk/internal/factcheck"
	"github.com/pvoronin/newsdesk/internal/llm"
	"github.com/pvoronin/newsdesk/internal/model"
	"github.com/pvoronin/newsdesk/internal/profile"
	"github.com/pvoronin/newsdesk/internal/rank"
	"github.com/pvoronin/newsdesk/internal/resolve"
	"github.com/pvoronin/newsdesk/internal/segment"
	"github.com/pvoronin/newsdesk/internal/stage"
	"github.com/pvoronin/newsdesk/internal/summarize"
	"github.com/pvoronin/newsdesk/internal/tag"
)

// resolveHint is the disambiguation context forwarded to the service
// when resolving entities.
const resolveHint = "newsroom digest"

// Request describes one digest run.
type Request struct {
	UserID  string
	Source  string
	Since   string
	Limit   int
	Format  string // empty uses the configured output format
	Channel string // empty defaults to "email"
	DryRun  bool
}

// Result carries every intermediate artifact of a digest run, so
// callers can inspect stage outputs as well as the final digest.
type Result struct {
	UserID     string                  `json:"user_id"`
	Profile    model.ReaderProfile     `json:"profile"`
	Articles   []model.Article         `json:"articles"`
	Passages   []model.Passage         `json:"passages"`
	Entities   []model.EntityMention   `json:"entities"`
	Resolved   []model.ResolvedEntity  `json:"resolved_entities"`
	Tagged     []model.TaggedEntity    `json:"tagged_entities"`
	Topics     []model.TopicPrediction `json:"topics"`
	Sentiments []model.SentimentScore  `json:"sentiments"`
	Summaries  []model.TagSummary      `json:"tag_summaries"`
	Claims     []model.CheckedClaim    `json:"checked_claims"`
	Ranked     []model.RankedStory     `json:"ranked_summaries"`
	Digest     *Digest                 `json:"digest"`
	Delivery   Delivery                `json:"delivery"`
}

// Pipeline wires the stages together for repeated digest runs.
type Pipeline struct {
	cfg      *model.Config
	fetcher  *Fetcher
	profiles *profile.Store
	renderer *Renderer
	ranker   *rank.Ranker

	segmentStage   *stage.Executor[segment.Request, []model.Passage]
	entityStage    *stage.Executor[[]model.Passage, []model.EntityMention]
	resolveStage   *stage.Executor[[]model.EntityMention, []model.ResolvedEntity]
	tagStage       *stage.Executor[[]model.ResolvedEntity, []model.TaggedEntity]
	topicStage     *stage.Executor[[]model.Passage, []model.TopicPrediction]
	sentimentStage *stage.Executor[[]model.Passage, []model.SentimentScore]
	summaryStage   *stage.Executor[summarize.Input, []model.TagSummary]
	factStage      *stage.Executor[[]string, []model.CheckedClaim]

	// now is injectable so ranking is reproducible in tests.
	now func() time.Time
}

// New builds a pipeline from configuration. The LLM service is optional:
// with no provider configured every stage runs in rule mode.
func New(cfg *model.Config, profiles *profile.Store) (*Pipeline, error) {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}
	if profiles == nil {
		profiles = profile.NewStore()
	}

	var store cache.Cache
	if cfg.Cache.Enabled {
		store = cache.NewMemoryCache(cfg.Cache.TTL, 2*cfg.Cache.TTL)
	}

	client, err := llm.NewClient(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("configure LLM client: %w", err)
	}

	var service *llm.Service
	if client != nil {
		service = llm.NewService(client, cfg.LLM.Model)
	}

	p := &Pipeline{
		cfg:      cfg,
		fetcher:  NewFetcher(cfg, store),
		profiles: profiles,
		renderer: NewRenderer(),
		ranker:   rank.New(),
		now:      time.Now,
	}
	p.buildStages(service)
	return p, nil
}

// buildStages constructs one executor per text stage. Rule engines are
// always present; service engines exist only when a client is
// configured, and sentiment stays rule-only.
func (p *Pipeline) buildStages(service *llm.Service) {
	maxLength := p.cfg.Pipeline.MaxPassageLength
	segmenter := segment.New(maxLength)
	extractor := extract.New(nil)
	resolver := resolve.New(nil)
	tagger := tag.New(nil)
	topics := classify.NewTopicClassifier(nil)
	sentiments := classify.NewSentimentScorer(classify.CueLexicon{})
	summarizer := summarize.New(p.cfg.Pipeline.HighlightLength)
	checker := factcheck.New(nil)

	var (
		segmentSvc   stage.ServiceFunc[segment.Request, []model.Passage]
		entitySvc    stage.ServiceFunc[[]model.Passage, []model.EntityMention]
		resolveSvc   stage.ServiceFunc[[]model.EntityMention, []model.ResolvedEntity]
		tagSvc       stage.ServiceFunc[[]model.ResolvedEntity, []model.TaggedEntity]
		topicSvc     stage.ServiceFunc[[]model.Passage, []model.TopicPrediction]
		summarySvc   stage.ServiceFunc[summarize.Input, []model.TagSummary]
		factCheckSvc stage.ServiceFunc[[]string, []model.CheckedClaim]
	)

	if service != nil {
		segmentSvc = func(ctx context.Context, req segment.Request) ([]model.Passage, error) {
			return service.SplitPassages(ctx, req.ArticleID, req.Content, maxLength)
		}
		entitySvc = service.ExtractEntities
		resolveSvc = func(ctx context.Context, mentions []model.EntityMention) ([]model.ResolvedEntity, error) {
			return service.ResolveEntities(ctx, mentions, resolveHint)
		}
		tagSvc = service.TagEntities
		topicSvc = service.ClassifyTopics
		summarySvc = func(ctx context.Context, in summarize.Input) ([]model.TagSummary, error) {
			return service.SummarizeTags(ctx, in.Tagged, in.Passages)
		}
		factCheckSvc = service.CheckClaims
	}

	p.segmentStage = stage.New("segment", segmenter.Split, segmentSvc,
		func(req segment.Request) bool { return req.Empty() })
	p.entityStage = stage.New("extract", extractor.Extract, entitySvc,
		func(in []model.Passage) bool { return len(in) == 0 })
	p.resolveStage = stage.New("resolve", resolver.Resolve, resolveSvc,
		func(in []model.EntityMention) bool { return len(in) == 0 })
	p.tagStage = stage.New("tag", tagger.Tag, tagSvc,
		func(in []model.ResolvedEntity) bool { return len(in) == 0 })
	p.topicStage = stage.New("topic", topics.Classify, topicSvc,
		func(in []model.Passage) bool { return len(in) == 0 })
	p.sentimentStage = stage.New[[]model.Passage, []model.SentimentScore]("sentiment", sentiments.Score, nil,
		func(in []model.Passage) bool { return len(in) == 0 })
	p.summaryStage = stage.New("summarize", summarizer.Summarize, summarySvc,
		func(in summarize.Input) bool { return in.Empty() })
	p.factStage = stage.New("factcheck", checker.Check, factCheckSvc,
		func(in []string) bool { return len(in) == 0 })
}

// stageOptions derives the per-call executor options from config.
func (p *Pipeline) stageOptions() stage.Options {
	opts := stage.DefaultOptions()
	if p.cfg.Pipeline.ServiceMode {
		opts.Mode = stage.ModeService
	}
	opts.FallbackOnError = p.cfg.Pipeline.FallbackOnError
	return opts
}

// BuildDigest runs the full pipeline for one reader.
func (p *Pipeline) BuildDigest(ctx context.Context, req Request) (*Result, error) {
	opts := p.stageOptions()
	prof := p.profiles.Get(req.UserID)

	articles, err := p.fetcher.Fetch(ctx, req.Source, req.Since, req.Limit)
	if err != nil {
		return nil, fmt.Errorf("fetch articles: %w", err)
	}

	var passages []model.Passage
	for _, article := range articles {
		split, err := p.segmentStage.Run(ctx, segment.Request{
			ArticleID: article.ID,
			Content:   article.Content,
		}, opts)
		if err != nil {
			return nil, err
		}
		passages = append(passages, split...)
	}

	entities, err := p.entityStage.Run(ctx, passages, opts)
	if err != nil {
		return nil, err
	}

	resolved, err := p.resolveStage.Run(ctx, entities, opts)
	if err != nil {
		return nil, err
	}

	tagged, err := p.tagStage.Run(ctx, resolved, opts)
	if err != nil {
		return nil, err
	}

	// Topic and sentiment are independent side branches over the same
	// passages; run them concurrently.
	var (
		wg         sync.WaitGroup
		topics     []model.TopicPrediction
		topicErr   error
		sentiments []model.SentimentScore
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		topics, topicErr = p.topicStage.Run(ctx, passages, opts)
	}()
	go func() {
		defer wg.Done()
		// Sentiment is rule-only and never returns an error.
		sentiments, _ = p.sentimentStage.Run(ctx, passages, opts)
	}()
	wg.Wait()
	if topicErr != nil {
		return nil, topicErr
	}

	summaries, err := p.summaryStage.Run(ctx, summarize.Input{
		Tagged:   tagged,
		Passages: passages,
	}, opts)
	if err != nil {
		return nil, err
	}

	claims := make([]string, 0, len(articles))
	for _, article := range articles {
		claims = append(claims, fmt.Sprintf("%s was announced", article.Title))
	}
	checked, err := p.factStage.Run(ctx, claims, opts)
	if err != nil {
		return nil, err
	}

	ranked := p.ranker.Rank(prof, summaries, articles, p.now())

	format := req.Format
	if format == "" {
		format = p.cfg.Output.Format
	}
	digest, err := p.renderer.Render(ranked, format)
	if err != nil {
		return nil, fmt.Errorf("render digest: %w", err)
	}

	channel := req.Channel
	if channel == "" {
		channel = "email"
	}
	delivery := NewDeliverer(req.DryRun).Deliver(digest.Body, channel, req.UserID)

	return &Result{
		UserID:     req.UserID,
		Profile:    prof,
		Articles:   articles,
		Passages:   passages,
		Entities:   entities,
		Resolved:   resolved,
		Tagged:     tagged,
		Topics:     topics,
		Sentiments: sentiments,
		Summaries:  summaries,
		Claims:     checked,
		Ranked:     ranked,
		Digest:     digest,
		Delivery:   delivery,
	}, nil
}
