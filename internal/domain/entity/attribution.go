package entity

// AttributionMethod identifies which resolution step attributed a rule to a pack.
type AttributionMethod string

const (
	MethodSuffixMapping     AttributionMethod = "suffix-mapping"
	MethodKeywordCategory   AttributionMethod = "keyword-category"
	MethodNoSuffixFallback  AttributionMethod = "no-suffix-fallback"
	MethodSolePackFallback  AttributionMethod = "sole-pack-fallback"
	MethodFirstPackFallback AttributionMethod = "first-pack-fallback"
	MethodUnattributed      AttributionMethod = "unattributed"
)

// AttributionEntry is the resolved mapping of an (account, rule) pair to a
// conformance pack. ConformancePackName is nil when the rule is unattributed.
type AttributionEntry struct {
	AccountID           string            `json:"accountId"`
	RuleName            string            `json:"ruleName"`
	RuleSuffix          string            `json:"ruleSuffix,omitempty"`
	Category            string            `json:"category,omitempty"`
	ConformancePackName *string           `json:"conformancePackName"`
	Method              AttributionMethod `json:"method"`
	Strong              bool              `json:"strong"`
}

// Attributed reports whether the entry resolved to a pack.
func (e AttributionEntry) Attributed() bool {
	return e.ConformancePackName != nil
}
