package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pvoronin/newsdesk/internal/model"
	"github.com/pvoronin/newsdesk/internal/pipeline"
	"github.com/pvoronin/newsdesk/internal/profile"
)

var (
	userID       string
	since        string
	limit        int
	format       string
	channel      string
	send         bool
	profilesFile string
	outJSON      string

	timeout    time.Duration
	userAgent  string
	maxBytes   int64
	noCache    bool
	noRobots   bool
	httpProxy  string
	httpsProxy string

	llmEnabled  bool
	llmProvider string
	llmModel    string
	noFallback  bool
)

// digestCmd represents the digest command
var digestCmd = &cobra.Command{
	Use:   "digest <source>",
	Short: "Build a personalized digest from a news source",
	Long: `Digest fetches articles from a source and runs them through the
full pipeline to produce a ranked, personalized digest.

The source is either an RSS feed URL or the name of a built-in demo
corpus (try "sample").

Example:
  newsdesk digest sample
  newsdesk digest https://example.com/rss --user demo-user --limit 5
  newsdesk digest sample --llm --llm-provider openai --llm-model gpt-4o-mini
  newsdesk digest sample --format text --channel slack --send`,
	Args: cobra.ExactArgs(1),
	RunE: runDigest,
}

func init() {
	rootCmd.AddCommand(digestCmd)

	// Reader flags
	digestCmd.Flags().StringVar(&userID, "user", "demo-user", "reader profile to personalize for")
	digestCmd.Flags().StringVar(&profilesFile, "profiles", "", "YAML file with additional reader profiles")

	// Fetch flags
	digestCmd.Flags().StringVar(&since, "since", "", "only include articles published at or after this ISO-8601 timestamp")
	digestCmd.Flags().IntVar(&limit, "limit", 10, "max articles to fetch")
	digestCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall digest timeout")
	digestCmd.Flags().StringVar(&userAgent, "ua", "Newsdesk/0.1 (+https://github.com/pvoronin/newsdesk)", "HTTP User-Agent")
	digestCmd.Flags().Int64Var(&maxBytes, "max-bytes", 5_000_000, "max response bytes to read")
	digestCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable feed cache (force fresh fetch)")
	digestCmd.Flags().BoolVar(&noRobots, "no-robots", false, "skip robots.txt checks on feed hosts")
	digestCmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	digestCmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")

	// Output flags
	digestCmd.Flags().StringVar(&format, "format", "markdown", "digest format (markdown, text)")
	digestCmd.Flags().StringVar(&channel, "channel", "email", "delivery channel")
	digestCmd.Flags().BoolVar(&send, "send", false, "queue real delivery instead of a dry run")
	digestCmd.Flags().StringVar(&outJSON, "json", "", "write the full pipeline result as JSON to this path")

	// LLM flags
	digestCmd.Flags().BoolVar(&llmEnabled, "llm", false, "delegate pipeline stages to an LLM service")
	digestCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	digestCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
	digestCmd.Flags().BoolVar(&noFallback, "no-fallback", false, "propagate service errors instead of falling back to rule mode")
}

func runDigest(cmd *cobra.Command, args []string) error {
	source := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Source: %s\n", source)
		fmt.Fprintf(os.Stderr, "User: %s\n", userID)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", !noCache)
		fmt.Fprintln(os.Stderr)
	}

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	profiles, err := loadProfiles()
	if err != nil {
		return err
	}

	p, err := pipeline.New(cfg, profiles)
	if err != nil {
		return err
	}

	result, err := p.BuildDigest(ctx, pipeline.Request{
		UserID:  userID,
		Source:  source,
		Since:   since,
		Limit:   limit,
		Format:  format,
		Channel: channel,
		DryRun:  !send,
	})
	if err != nil {
		return fmt.Errorf("digest failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Fetched %d articles\n", len(result.Articles))
		fmt.Fprintf(os.Stderr, "✓ Segmented %d passages\n", len(result.Passages))
		fmt.Fprintf(os.Stderr, "✓ Extracted %d entities (%d resolved)\n", len(result.Entities), len(result.Resolved))
		fmt.Fprintf(os.Stderr, "✓ Built %d tag summaries\n", len(result.Summaries))
		fmt.Fprintf(os.Stderr, "✓ Checked %d claims\n", len(result.Claims))
		fmt.Fprintf(os.Stderr, "✓ Ranked %d stories\n", len(result.Ranked))
		fmt.Fprintln(os.Stderr)
	}

	fmt.Println(result.Digest.Body)
	fmt.Fprintf(os.Stderr, "\nDelivery: %s via %s for %s\n", result.Delivery.Status, result.Delivery.Channel, result.Delivery.UserID)

	if outJSON != "" {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		if err := os.WriteFile(outJSON, data, 0o644); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote full result to %s\n", outJSON)
		}
	}

	return nil
}

// buildConfig derives pipeline configuration from flags and environment.
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	cfg.HTTP.Timeout = timeout
	cfg.HTTP.UserAgent = userAgent
	cfg.HTTP.MaxBodyBytes = maxBytes
	cfg.HTTP.HTTPProxy = httpProxy
	cfg.HTTP.HTTPSProxy = httpsProxy
	cfg.Fetch.Limit = limit
	cfg.Fetch.RespectRobots = !noRobots
	cfg.Cache.Enabled = !noCache
	cfg.Output.Format = format
	cfg.Output.Verbose = verbose
	cfg.Pipeline.FallbackOnError = !noFallback

	if llmEnabled {
		cfg.Pipeline.ServiceMode = true
		cfg.LLM.Provider = llmProvider
		cfg.LLM.Model = llmModel

		// Get API key from environment
		switch llmProvider {
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
			if cfg.LLM.APIKey == "" {
				return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
			}
		case "ollama":
			// Ollama doesn't need an API key
			if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
				cfg.LLM.BaseURL = baseURL
			}
		default:
			return nil, fmt.Errorf("unsupported LLM provider: %s", llmProvider)
		}
	}

	return cfg, nil
}

// loadProfiles builds the profile store, merging an optional YAML file.
func loadProfiles() (*profile.Store, error) {
	store := profile.NewStore()
	if profilesFile != "" {
		if err := store.LoadFile(profilesFile); err != nil {
			return nil, err
		}
	}
	return store, nil
}
