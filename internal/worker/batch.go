package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// DigestFunc builds and renders a digest for one reader, returning the
// rendered text.
type DigestFunc func(ctx context.Context, userID string) (string, error)

// DigestJob represents a per-reader digest build.
type DigestJob struct {
	UserID string
	Build  DigestFunc
}

// Execute executes the digest job.
func (j *DigestJob) Execute(ctx context.Context) Result {
	digest, err := j.Build(ctx, j.UserID)
	return &DigestResult{
		UserID: j.UserID,
		Digest: digest,
		Error:  err,
	}
}

// DigestResult represents the result of a digest job.
type DigestResult struct {
	UserID string
	Digest string
	Error  error
}

// GetError returns the error from the digest result.
func (r *DigestResult) GetError() error {
	return r.Error
}

// BatchProcessor builds digests for multiple readers concurrently.
type BatchProcessor struct {
	build       DigestFunc
	concurrency int
}

// NewBatchProcessor creates a new batch processor.
func NewBatchProcessor(build DigestFunc, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		build:       build,
		concurrency: concurrency,
	}
}

// ProcessUsers builds digests for the given user ids concurrently.
func (b *BatchProcessor) ProcessUsers(ctx context.Context, userIDs []string) []*DigestResult {
	if len(userIDs) == 0 {
		return []*DigestResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, userID := range userIDs {
		pool.Submit(&DigestJob{
			UserID: userID,
			Build:  b.build,
		})
	}

	results := pool.Wait()

	digestResults := make([]*DigestResult, len(results))
	for i, result := range results {
		digestResults[i] = result.(*DigestResult)
	}

	return digestResults
}

// ProcessFile reads user ids from a file and builds their digests.
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*DigestResult, error) {
	userIDs, err := ReadUsersFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read users: %w", err)
	}

	return b.ProcessUsers(ctx, userIDs), nil
}

// ReadUsersFromFile reads user ids from a file (one per line).
// Empty lines and #-comments are skipped; duplicates are dropped.
func ReadUsersFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var userIDs []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			userIDs = append(userIDs, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return userIDs, nil
}
