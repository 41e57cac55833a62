package pipeline

import (
	"context"
	_ "embed"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/pvoronin/newsdesk/internal/cache"
	"github.com/pvoronin/newsdesk/internal/model"
	"github.com/pvoronin/newsdesk/internal/util"
	"github.com/pvoronin/newsdesk/internal/worker"
)

//go:embed sample_articles.json
var sampleCorpus []byte

// Fetcher retrieves articles either live from an RSS feed URL or from
// the embedded demo corpus, so the pipeline stays usable offline.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	limit      int

	respectRobots bool
	robots        *util.RobotsChecker
	limiter       *worker.Limiter

	store    cache.Cache
	cacheTTL time.Duration
}

// NewFetcher creates a fetcher. store may be nil to disable feed body
// caching.
func NewFetcher(cfg *model.Config, store cache.Cache) *Fetcher {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}

	f := &Fetcher{
		httpClient: &http.Client{
			Timeout: cfg.HTTP.Timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent:     cfg.HTTP.UserAgent,
		maxBytes:      cfg.HTTP.MaxBodyBytes,
		limit:         cfg.Fetch.Limit,
		respectRobots: cfg.Fetch.RespectRobots,
		limiter:       worker.NewLimiter(cfg.Fetch.RequestsPerSecond, cfg.Fetch.Burst),
	}

	if f.respectRobots {
		f.robots = util.NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout)
	}
	if store != nil && cfg.Cache.Enabled {
		f.store = store
		f.cacheTTL = cfg.Cache.TTL
	}

	return f
}

// Fetch returns up to limit articles from the source, newest first.
// A URL source is fetched as a live RSS feed; any other value selects
// a corpus from the embedded demo data. since, when non-empty, drops
// articles published before it.
func (f *Fetcher) Fetch(ctx context.Context, source, since string, limit int) ([]model.Article, error) {
	if limit <= 0 {
		limit = f.limit
	}
	if limit <= 0 {
		limit = 10
	}

	var articles []model.Article
	if looksLikeURL(source) {
		feed, err := f.fetchFeed(ctx, source)
		if err != nil {
			return nil, err
		}
		articles, err = parseRSS(feed, source)
		if err != nil {
			return nil, err
		}
	} else {
		var err error
		articles, err = corpusArticles(source)
		if err != nil {
			return nil, err
		}
	}

	articles = filterSince(articles, since)
	sortNewestFirst(articles)

	if len(articles) > limit {
		articles = articles[:limit]
	}
	return articles, nil
}

// fetchFeed retrieves the raw feed body, honoring robots.txt, the
// per-domain rate limit, and the body cache.
func (f *Fetcher) fetchFeed(ctx context.Context, feedURL string) ([]byte, error) {
	key := cache.Key(feedURL)
	if f.store != nil {
		if body, found := f.store.Get(key); found {
			return body, nil
		}
	}

	crawlDelay := time.Duration(0)
	if f.robots != nil {
		allowed, delay, err := f.robots.CanFetch(ctx, feedURL)
		if err != nil {
			return nil, fmt.Errorf("robots check: %w", err)
		}
		if !allowed {
			return nil, fmt.Errorf("robots.txt disallows fetching %s", feedURL)
		}
		crawlDelay = delay
	}

	if err := f.limiter.WaitWithDelay(ctx, feedURL, crawlDelay); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/rss+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if f.store != nil {
		_ = f.store.Set(key, body, f.cacheTTL)
	}
	return body, nil
}

// rssDocument mirrors the subset of RSS 2.0 the fetcher consumes.
type rssDocument struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	GUID        string `xml:"guid"`
	Link        string `xml:"link"`
	Title       string `xml:"title"`
	Author      string `xml:"author"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
}

// parseRSS converts a feed body into articles. Descriptions are
// stripped of embedded HTML markup.
func parseRSS(feed []byte, source string) ([]model.Article, error) {
	var doc rssDocument
	if err := xml.Unmarshal(feed, &doc); err != nil {
		return nil, fmt.Errorf("parse RSS feed for source %q: %w", source, err)
	}
	if len(doc.Channel.Items) == 0 {
		return nil, fmt.Errorf("RSS feed for source %q contains no items", source)
	}

	articles := make([]model.Article, 0, len(doc.Channel.Items))
	for _, item := range doc.Channel.Items {
		link := strings.TrimSpace(item.Link)
		if link == "" {
			link = source
		}
		guid := strings.TrimSpace(item.GUID)
		if guid == "" {
			guid = link
		}
		title := strings.TrimSpace(item.Title)
		if title == "" {
			title = "Untitled story"
		}
		author := strings.TrimSpace(item.Author)
		if author == "" {
			author = "Unknown"
		}

		articles = append(articles, model.Article{
			ID:        guid,
			Source:    source,
			Title:     title,
			URL:       link,
			Timestamp: normalizeTimestamp(item.PubDate),
			Author:    author,
			Content:   stripHTML(item.Description),
		})
	}
	return articles, nil
}

// corpusArticles loads a source from the embedded demo corpus.
func corpusArticles(source string) ([]model.Article, error) {
	var doc struct {
		Sources map[string][]model.Article `json:"sources"`
	}
	if err := json.Unmarshal(sampleCorpus, &doc); err != nil {
		return nil, fmt.Errorf("parse embedded corpus: %w", err)
	}

	raw, ok := doc.Sources[source]
	if !ok {
		names := make([]string, 0, len(doc.Sources))
		for name := range doc.Sources {
			names = append(names, name)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("unknown news source %q (available: %s)", source, strings.Join(names, ", "))
	}

	articles := make([]model.Article, len(raw))
	for i, article := range raw {
		article.Source = source
		if article.Author == "" {
			article.Author = "Unknown"
		}
		articles[i] = article
	}
	return articles, nil
}

// normalizeTimestamp converts RSS pubDate values (RFC1123 or ISO-8601)
// to RFC3339 UTC. Absent or unparseable values get the current time.
func normalizeTimestamp(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Now().UTC().Format(time.RFC3339)
	}

	for _, layout := range []string{time.RFC1123Z, time.RFC1123, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
	}
	return time.Now().UTC().Format(time.RFC3339)
}

// filterSince drops articles older than the since timestamp. Articles
// whose timestamp cannot be parsed are dropped when a filter is set.
func filterSince(articles []model.Article, since string) []model.Article {
	cutoff, ok := model.ParseTimestamp(since)
	if !ok {
		return articles
	}

	kept := make([]model.Article, 0, len(articles))
	for _, article := range articles {
		published, ok := article.PublishedAt()
		if !ok {
			continue
		}
		if !published.Before(cutoff) {
			kept = append(kept, article)
		}
	}
	return kept
}

// sortNewestFirst orders articles by publication time descending.
// Unparseable timestamps sort last; ties keep input order.
func sortNewestFirst(articles []model.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		ti, iok := articles[i].PublishedAt()
		tj, jok := articles[j].PublishedAt()
		if iok != jok {
			return iok
		}
		return ti.After(tj)
	})
}

func looksLikeURL(value string) bool {
	parsed, err := url.Parse(value)
	if err != nil {
		return false
	}
	return parsed.Scheme != "" && parsed.Host != ""
}

// stripHTML extracts the visible text from feed descriptions, skipping
// script and style subtrees.
func stripHTML(content string) string {
	if !strings.Contains(content, "<") {
		return strings.TrimSpace(content)
	}

	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return strings.TrimSpace(content)
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				if buf.Len() > 0 {
					buf.WriteString(" ")
				}
				buf.WriteString(text)
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)
	return buf.String()
}
