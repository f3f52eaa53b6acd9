package calendar

import (
	"strings"

	"github.com/d3ntaltech/calendrier/internal/config"
)

// Tagger maps free-form category text to a display tag.
type Tagger struct {
	rules    []config.CategoryRule
	fallback string
}

func NewTagger(rules []config.CategoryRule, fallback string) *Tagger {
	normalized := make([]config.CategoryRule, 0, len(rules))
	for _, rule := range rules {
		keywords := make([]string, 0, len(rule.Keywords))
		for _, keyword := range rule.Keywords {
			if trimmed := strings.ToLower(strings.TrimSpace(keyword)); trimmed != "" {
				keywords = append(keywords, trimmed)
			}
		}
		normalized = append(normalized, config.CategoryRule{Tag: rule.Tag, Keywords: keywords})
	}
	return &Tagger{rules: normalized, fallback: fallback}
}

// Tag returns the tag of the first rule with a keyword contained in category.
func (t *Tagger) Tag(category string) string {
	text := strings.ToLower(category)
	for _, rule := range t.rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(text, keyword) {
				return rule.Tag
			}
		}
	}
	return t.fallback
}
