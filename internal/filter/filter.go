// Package filter narrows the review collection by category and query.
package filter

import (
	"strings"

	"reviewhub/pkg/models"
)

// All is the category sentinel that disables category filtering.
const All = "All"

// Filter keeps reviews in category (exact, case-sensitive; All matches
// everything) whose title, snippet, content or category contains query,
// case-insensitively. Order is preserved. The input is not modified.
func Filter(reviews []models.Review, category, query string) []models.Review {
	q := strings.ToLower(query)

	out := make([]models.Review, 0, len(reviews))
	for _, r := range reviews {
		if category != All && r.Category != category {
			continue
		}
		if q != "" && !matches(r, q) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matches(r models.Review, q string) bool {
	for _, field := range [...]string{r.Title, r.Snippet, r.Content, r.Category} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Normalize turns raw search input into a query.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Categories lists distinct categories in first-seen order.
func Categories(reviews []models.Review) []string {
	seen := make(map[string]struct{}, len(reviews))
	var out []string
	for _, r := range reviews {
		if _, ok := seen[r.Category]; ok || r.Category == "" {
			continue
		}
		seen[r.Category] = struct{}{}
		out = append(out, r.Category)
	}
	return out
}
