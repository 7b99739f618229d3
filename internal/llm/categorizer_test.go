package llm

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockClient returns canned categories keyed by description substring.
type mockClient struct {
	mu       sync.Mutex
	calls    int
	failWith error
}

func (m *mockClient) Categorize(_ context.Context, prompt string) (CategoryResponse, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.failWith != nil {
		return CategoryResponse{}, m.failWith
	}

	switch {
	case strings.Contains(prompt, "STARBUCKS"):
		return CategoryResponse{Category: "Dining Out", Confidence: 0.9}, nil
	case strings.Contains(prompt, "SHELL OIL"):
		return CategoryResponse{Category: "Gas", Confidence: 0.85}, nil
	default:
		return CategoryResponse{Category: "Miscellaneous", Confidence: 0.5}, nil
	}
}

func (m *mockClient) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func TestCategorizeAll(t *testing.T) {
	client := &mockClient{}
	categorizer := NewCategorizerWithClient(client, 2)
	defer categorizer.Close()

	results, err := categorizer.CategorizeAll(context.Background(),
		[]string{"STARBUCKS STORE 1234", "SHELL OIL 57444", "SOMETHING ELSE"})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"STARBUCKS STORE 1234": "Dining Out",
		"SHELL OIL 57444":      "Gas",
		"SOMETHING ELSE":       "Miscellaneous",
	}, results)
}

func TestCategorizeAllDeduplicatesAndCaches(t *testing.T) {
	client := &mockClient{}
	categorizer := NewCategorizerWithClient(client, 2)
	defer categorizer.Close()

	descriptions := []string{"STARBUCKS STORE 1234", "STARBUCKS STORE 1234", ""}
	results, err := categorizer.CategorizeAll(context.Background(), descriptions)
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, 1, client.callCount())

	// A second run hits the cache, no new provider calls.
	_, err = categorizer.CategorizeAll(context.Background(), descriptions)
	require.NoError(t, err)
	assert.Equal(t, 1, client.callCount())
}

func TestCategorizeAllEmptyInput(t *testing.T) {
	categorizer := NewCategorizerWithClient(&mockClient{}, 1)
	defer categorizer.Close()

	results, err := categorizer.CategorizeAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCategorizeAllAllFailures(t *testing.T) {
	client := &mockClient{failWith: errors.New("provider down")}
	categorizer := NewCategorizerWithClient(client, 1)
	defer categorizer.Close()

	_, err := categorizer.CategorizeAll(context.Background(), []string{"ANYTHING"})
	assert.Error(t, err)
}

func TestNewClientUnsupportedProvider(t *testing.T) {
	_, err := NewClient(Config{Provider: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{Provider: "openai"})
	assert.Error(t, err)

	_, err = NewClient(Config{Provider: "anthropic"})
	assert.Error(t, err)
}
