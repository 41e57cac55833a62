package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pvoronin/newsdesk/internal/pipeline"
	"github.com/pvoronin/newsdesk/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	batchSource  string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Build digests for multiple readers in parallel",
	Long: `Batch builds one personalized digest per reader:
- Read user ids from input file (one per line, # comments allowed)
- Build digests in parallel with configurable worker count
- Write one digest file per reader

Example:
  newsdesk batch users.txt
  newsdesk batch users.txt --source sample --concurrency 8
  newsdesk batch users.txt --output-dir ./digests --format text`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// Concurrency flags
	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./newsdesk-digests", "output directory for digests")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")

	// Shared digest flags
	batchCmd.Flags().StringVar(&batchSource, "source", "sample", "news source (RSS URL or demo corpus name)")
	batchCmd.Flags().StringVar(&since, "since", "", "only include articles published at or after this ISO-8601 timestamp")
	batchCmd.Flags().IntVar(&limit, "limit", 10, "max articles to fetch")
	batchCmd.Flags().StringVar(&format, "format", "markdown", "digest format (markdown, text)")
	batchCmd.Flags().StringVar(&channel, "channel", "email", "delivery channel")
	batchCmd.Flags().StringVar(&profilesFile, "profiles", "", "YAML file with additional reader profiles")
	batchCmd.Flags().StringVar(&userAgent, "ua", "Newsdesk/0.1 (+https://github.com/pvoronin/newsdesk)", "HTTP User-Agent")
	batchCmd.Flags().Int64Var(&maxBytes, "max-bytes", 5_000_000, "max response bytes to read")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable feed cache (force fresh fetch)")
	batchCmd.Flags().BoolVar(&noRobots, "no-robots", false, "skip robots.txt checks on feed hosts")
	batchCmd.Flags().DurationVar(&timeout, "fetch-timeout", 30*time.Second, "HTTP timeout for feed fetches")
	batchCmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	batchCmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")

	// LLM flags
	batchCmd.Flags().BoolVar(&llmEnabled, "llm", false, "delegate pipeline stages to an LLM service")
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
	batchCmd.Flags().BoolVar(&noFallback, "no-fallback", false, "propagate service errors instead of falling back to rule mode")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "Input file: %s\n", file)
	fmt.Fprintf(os.Stderr, "Source:     %s\n", batchSource)
	fmt.Fprintf(os.Stderr, "Workers:    %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "Output dir: %s\n", outputDir)
	fmt.Fprintln(os.Stderr)

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	cfg.Concurrency.Workers = concurrency

	profiles, err := loadProfiles()
	if err != nil {
		return err
	}

	p, err := pipeline.New(cfg, profiles)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	build := func(ctx context.Context, user string) (string, error) {
		result, err := p.BuildDigest(ctx, pipeline.Request{
			UserID:  user,
			Source:  batchSource,
			Since:   since,
			Limit:   limit,
			Format:  format,
			Channel: channel,
			DryRun:  true,
		})
		if err != nil {
			return "", err
		}
		return result.Digest.Body, nil
	}

	processor := worker.NewBatchProcessor(build, concurrency)
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	ext := ".md"
	if format == pipeline.FormatText {
		ext = ".txt"
	}

	successCount := 0
	failureCount := 0
	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.UserID, result.Error)
			continue
		}

		path := filepath.Join(outputDir, sanitizeFilename(result.UserID)+ext)
		if err := os.WriteFile(path, []byte(result.Digest+"\n"), 0o644); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: write digest: %v\n", result.UserID, err)
			continue
		}

		successCount++
		fmt.Fprintf(os.Stderr, "✓ %s → %s\n", result.UserID, path)
	}

	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "Total:    %d readers\n", len(results))
	fmt.Fprintf(os.Stderr, "Success:  %d\n", successCount)
	fmt.Fprintf(os.Stderr, "Failures: %d\n", failureCount)

	if failureCount > 0 {
		return fmt.Errorf("%d of %d digests failed", failureCount, len(results))
	}
	return nil
}

// sanitizeFilename sanitizes a user id for use as a filename.
func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
		"\"", "_", "<", "_", ">", "_", "|", "_", " ", "-",
	)
	s = replacer.Replace(s)
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}
