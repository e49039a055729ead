// Package remediation maps config rule names to remediation advice.
package remediation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/diillson/aws-compliance-dashboard-go/internal/domain/entity"
)

// Match kinds returned by Lookup.
const (
	MatchExact   = "exact"
	MatchPartial = "partial"
	MatchDefault = "default"
)

const (
	PriorityCritical = "Critical"
	PriorityHigh     = "High"
	PriorityMedium   = "Medium"

	EffortLow    = "Low"
	EffortMedium = "Medium"

	managedRulesDoc = "https://docs.aws.amazon.com/config/latest/developerguide/managed-rules-by-aws-config.html"
	conformanceMark = "-conformance-pack"
	configRuleMark  = "-config-rule"
)

// Catalog is an immutable remediation lookup table.
type Catalog struct {
	entries map[string]entity.Remediation
	// keys sorted longest first so partial matches prefer the most specific entry
	keys []string
}

// NewCatalog builds a catalog from entries keyed by normalized rule name.
func NewCatalog(entries map[string]entity.Remediation) *Catalog {
	c := &Catalog{entries: make(map[string]entity.Remediation, len(entries))}
	for k, v := range entries {
		key := Normalize(k)
		c.entries[key] = v
		c.keys = append(c.keys, key)
	}
	sort.Slice(c.keys, func(i, j int) bool {
		if len(c.keys[i]) != len(c.keys[j]) {
			return len(c.keys[i]) > len(c.keys[j])
		}
		return c.keys[i] < c.keys[j]
	})
	return c
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return NewCatalog(builtin)
}

// Normalize lower-cases a rule name, converts underscores to dashes and
// strips the conformance pack deployment suffix and the "-config-rule" tail.
func Normalize(ruleName string) string {
	n := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(ruleName)), "_", "-")
	if idx := strings.LastIndex(n, conformanceMark); idx > 0 {
		n = n[:idx]
	}
	n = strings.TrimSuffix(n, configRuleMark)
	return n
}

// Lookup returns the remediation for a rule: an exact match on the
// normalized name, then the most specific entry contained in (or
// containing) it, then a generic entry.
func (c *Catalog) Lookup(ruleName string) (entity.Remediation, string) {
	normalized := Normalize(ruleName)

	if r, ok := c.entries[normalized]; ok {
		return clone(r), MatchExact
	}

	if normalized != "" {
		for _, key := range c.keys {
			if strings.Contains(normalized, key) || strings.Contains(key, normalized) {
				return clone(c.entries[key]), MatchPartial
			}
		}
	}

	return entity.Remediation{
		Title:       fmt.Sprintf("Remediate %s", ruleName),
		Description: fmt.Sprintf("Address non-compliance for %s", ruleName),
		Remediation: fmt.Sprintf("Review and remediate the configuration for %s", ruleName),
		Priority:    PriorityMedium,
		Effort:      EffortMedium,
		Resources:   []string{managedRulesDoc},
	}, MatchDefault
}

func clone(r entity.Remediation) entity.Remediation {
	r.Resources = append([]string(nil), r.Resources...)
	return r
}
