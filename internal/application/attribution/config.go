package attribution

import (
	"strings"

	"github.com/diillson/aws-compliance-dashboard-go/internal/shared/types"
)

// DefaultSuffixMarker separates the semantic rule id from the deployment
// suffix in rules created by conformance packs.
const DefaultSuffixMarker = "-conformance-pack-"

// Category maps rule-name keywords to a compliance framework family.
type Category struct {
	Family   string
	Keywords []string
}

// FamilyPatternFunc returns the substring that identifies packs of a family
// in a conformance pack name.
type FamilyPatternFunc func(family string) string

// Config controls the resolution chain.
type Config struct {
	SuffixMarker string
	// Categories are evaluated in order and the first one with a matching
	// keyword wins, even when a later category would match too.
	Categories        []Category
	FamilyPattern     FamilyPatternFunc
	BaselineFamily    string
	MinGroupConsensus int
	FirstPackFallback bool
}

// PatternsFromMap returns a FamilyPatternFunc backed by a map. Families
// missing from the map use their own name as the pattern.
func PatternsFromMap(patterns map[string]string) FamilyPatternFunc {
	copied := make(map[string]string, len(patterns))
	for k, v := range patterns {
		copied[k] = v
	}
	return func(family string) string {
		if p, ok := copied[family]; ok {
			return p
		}
		return family
	}
}

// ConfigFromTypes converts the file/flag configuration into a resolver Config.
func ConfigFromTypes(c types.AttributionConfig) Config {
	categories := make([]Category, 0, len(c.Categories))
	for _, cat := range c.Categories {
		categories = append(categories, Category{Family: cat.Family, Keywords: cat.Keywords})
	}
	return Config{
		SuffixMarker:      c.SuffixMarker,
		Categories:        categories,
		FamilyPattern:     PatternsFromMap(c.FamilyPatterns),
		BaselineFamily:    c.BaselineFamily,
		MinGroupConsensus: c.MinGroupConsensus,
		FirstPackFallback: c.FirstPackFallback,
	}
}

func (c Config) normalized() Config {
	out := c
	if out.SuffixMarker == "" {
		out.SuffixMarker = DefaultSuffixMarker
	}
	out.SuffixMarker = strings.ToLower(out.SuffixMarker)
	if out.FamilyPattern == nil {
		out.FamilyPattern = PatternsFromMap(nil)
	}
	out.Categories = make([]Category, 0, len(c.Categories))
	for _, cat := range c.Categories {
		keywords := make([]string, 0, len(cat.Keywords))
		for _, kw := range cat.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				keywords = append(keywords, kw)
			}
		}
		if cat.Family == "" || len(keywords) == 0 {
			continue
		}
		out.Categories = append(out.Categories, Category{Family: cat.Family, Keywords: keywords})
	}
	return out
}
