package llm

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pkearns/pay-the-piper/internal/common"
	"github.com/pkearns/pay-the-piper/internal/service"
)

// Categorizer assigns categories to transaction descriptions using an LLM,
// with caching, rate limiting, and retries around the provider client.
type Categorizer struct {
	client  Client
	cache   *categoryCache
	limiter *rateLimiter
	workers int
	retry   service.RetryOptions
}

// NewCategorizer creates an LLM-backed categorizer.
func NewCategorizer(cfg Config) (*Categorizer, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 4
	}

	retry := service.RetryOptions{MaxAttempts: cfg.MaxRetries, InitialDelay: cfg.RetryDelay}

	return &Categorizer{
		client:  client,
		cache:   newCategoryCache(cfg.CacheTTL),
		limiter: newRateLimiter(cfg.RateLimit),
		workers: workers,
		retry:   retry,
	}, nil
}

// NewCategorizerWithClient wires an existing client, used by tests.
func NewCategorizerWithClient(client Client, workers int) *Categorizer {
	if workers <= 0 {
		workers = 4
	}
	return &Categorizer{
		client:  client,
		cache:   newCategoryCache(0),
		limiter: newRateLimiter(0),
		workers: workers,
		retry:   service.RetryOptions{},
	}
}

// CategorizeAll resolves a category for each distinct description. Failed
// descriptions are logged and omitted from the result rather than aborting
// the whole batch.
func (c *Categorizer) CategorizeAll(ctx context.Context, descriptions []string) (map[string]string, error) {
	if len(descriptions) == 0 {
		return map[string]string{}, nil
	}

	seen := make(map[string]struct{}, len(descriptions))
	distinct := make([]string, 0, len(descriptions))
	for _, desc := range descriptions {
		if desc == "" {
			continue
		}
		if _, ok := seen[desc]; ok {
			continue
		}
		seen[desc] = struct{}{}
		distinct = append(distinct, desc)
	}

	results := make(map[string]string, len(distinct))
	var resultsMu sync.Mutex
	var failures int

	jobs := make(chan string)
	var wg sync.WaitGroup

	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for desc := range jobs {
				category, err := c.categorizeOne(ctx, desc)
				resultsMu.Lock()
				if err != nil {
					failures++
					common.LogWarn("failed to categorize description",
						common.Fields{"description": desc, "error": err.Error()})
				} else {
					results[desc] = category
				}
				resultsMu.Unlock()
			}
		}()
	}

	for _, desc := range distinct {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return results, ctx.Err()
		case jobs <- desc:
		}
	}
	close(jobs)
	wg.Wait()

	slog.Info("categorization complete",
		"descriptions", len(distinct),
		"categorized", len(results),
		"failed", failures,
		"cached", c.cache.size())

	if len(results) == 0 && failures > 0 {
		return nil, fmt.Errorf("all %d categorization requests failed", failures)
	}

	return results, nil
}

func (c *Categorizer) categorizeOne(ctx context.Context, description string) (string, error) {
	if category, ok := c.cache.get(description); ok {
		return category, nil
	}

	if err := c.limiter.wait(ctx); err != nil {
		return "", err
	}

	var resp CategoryResponse
	err := common.WithRetry(ctx, func() error {
		var callErr error
		resp, callErr = c.client.Categorize(ctx, buildPrompt(description))
		return callErr
	}, c.retry)
	if err != nil {
		return "", err
	}

	c.cache.set(description, resp.Category)
	return resp.Category, nil
}

// Close releases the cache cleanup goroutine.
func (c *Categorizer) Close() {
	c.cache.Close()
}
