package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkearns/pay-the-piper/internal/model"
)

// buildPrompt produces the categorization prompt for one description.
func buildPrompt(description string) string {
	var sb strings.Builder
	sb.WriteString("Categorize this bank transaction description into exactly one of the following categories:\n\n")
	for _, category := range model.Categories {
		sb.WriteString("- ")
		sb.WriteString(category)
		sb.WriteString("\n")
	}
	sb.WriteString("\nTransaction description: ")
	sb.WriteString(description)
	sb.WriteString("\n\nRespond with JSON: {\"category\": \"<one of the categories above>\", \"confidence\": <0.0-1.0>}")
	return sb.String()
}

// parseCategoryResponse extracts the category from the model's JSON reply.
func parseCategoryResponse(content string) (CategoryResponse, error) {
	var jsonResp struct {
		Category   string  `json:"category"`
		Confidence float64 `json:"confidence"`
	}

	content = cleanMarkdownWrapper(content)

	if err := json.Unmarshal([]byte(content), &jsonResp); err != nil {
		return CategoryResponse{}, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	if jsonResp.Category == "" {
		return CategoryResponse{}, fmt.Errorf("no category found in response")
	}

	if !model.ValidCategory(jsonResp.Category) {
		return CategoryResponse{}, fmt.Errorf("unknown category %q in response", jsonResp.Category)
	}

	return CategoryResponse{
		Category:   jsonResp.Category,
		Confidence: jsonResp.Confidence,
	}, nil
}

// cleanMarkdownWrapper strips code fences some models wrap around JSON.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		if idx := strings.Index(content, "\n"); idx != -1 {
			content = content[idx+1:]
		}
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}

	return strings.TrimSpace(content)
}
