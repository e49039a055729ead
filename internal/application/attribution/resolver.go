// Package attribution resolves which conformance pack produced a config rule.
//
// AWS Config names rules deployed by conformance packs
// "<rule-id>-conformance-pack-<suffix>" but does not report which pack owns
// a suffix. The resolver recovers the link from inventory data only, using
// an ordered chain of strategies:
//
//  1. explicit suffix mapping (the only strong match)
//  2. keyword category
//  3. no-suffix baseline fallback
//  4. sole-pack fallback
//  5. first-pack fallback (opt-in)
//  6. unattributed
//
// Keyword classification is first-match-wins over the declared category
// order. A rule name containing keywords of several categories is therefore
// classified by the earliest category, which can misclassify it; no scoring
// is applied on purpose so the outcome stays explainable.
package attribution

import (
	"sort"
	"strings"

	"github.com/diillson/aws-compliance-dashboard-go/internal/domain/entity"
)

// Suffix registration sources.
const (
	suffixFromPackName  = "pack-name"
	suffixFromRuleGroup = "rule-group"
)

// Attributor resolves an (account, rule) pair to a conformance pack.
type Attributor interface {
	Attribute(accountID, ruleName string) entity.AttributionEntry
}

// Resolver builds attribution tables.
type Resolver struct {
	cfg Config
}

// NewResolver creates a Resolver with the given configuration.
func NewResolver(cfg Config) *Resolver {
	return &Resolver{cfg: cfg.normalized()}
}

type ruleKey struct {
	accountID string
	ruleName  string
}

type registeredSuffix struct {
	pack   string
	source string
}

type accountPacks struct {
	names    []string
	suffixes map[string]registeredSuffix
}

// Table is an immutable attribution table for one run. It is safe for
// concurrent use.
type Table struct {
	cfg      Config
	accounts map[string]*accountPacks
	entries  map[ruleKey]entity.AttributionEntry
	ordered  []entity.AttributionEntry
}

// Build creates the attribution table from the run's inventory. All rules
// contribute to suffix learning; entries are precomputed for the
// NON_COMPLIANT ones.
func (r *Resolver) Build(packs []entity.ConformancePackRef, rules []entity.RuleCompliance) *Table {
	t := &Table{
		cfg:      r.cfg,
		accounts: make(map[string]*accountPacks),
		entries:  make(map[ruleKey]entity.AttributionEntry),
	}

	t.indexPacks(packs)
	t.learnSuffixGroups(rules)

	for _, rule := range rules {
		if !rule.IsNonCompliant() {
			continue
		}
		key := ruleKey{accountID: rule.AccountID, ruleName: rule.ConfigRuleName}
		if _, ok := t.entries[key]; ok {
			continue
		}
		entry := t.resolve(rule.AccountID, rule.ConfigRuleName)
		t.entries[key] = entry
		t.ordered = append(t.ordered, entry)
	}

	sort.Slice(t.ordered, func(i, j int) bool {
		if t.ordered[i].AccountID != t.ordered[j].AccountID {
			return t.ordered[i].AccountID < t.ordered[j].AccountID
		}
		return t.ordered[i].RuleName < t.ordered[j].RuleName
	})

	return t
}

// Attribute returns the attribution for a rule in an account. Rules that
// were not in the inventory are resolved against the same immutable
// indexes, so repeated calls always agree.
func (t *Table) Attribute(accountID, ruleName string) entity.AttributionEntry {
	if entry, ok := t.entries[ruleKey{accountID: accountID, ruleName: ruleName}]; ok {
		return entry
	}
	return t.resolve(accountID, ruleName)
}

// Entries returns the precomputed entries sorted by account and rule name.
func (t *Table) Entries() []entity.AttributionEntry {
	out := make([]entity.AttributionEntry, len(t.ordered))
	copy(out, t.ordered)
	return out
}

// SuffixMappings returns the registered suffixes as "account:suffix" -> pack.
func (t *Table) SuffixMappings() map[string]string {
	out := make(map[string]string)
	for accountID, ap := range t.accounts {
		for suffix, reg := range ap.suffixes {
			out[accountID+":"+suffix] = reg.pack
		}
	}
	return out
}

func (t *Table) indexPacks(packs []entity.ConformancePackRef) {
	seen := make(map[string]map[string]bool)
	for _, p := range packs {
		if p.AccountID == "" || p.ConformancePackName == "" {
			continue
		}
		if seen[p.AccountID] == nil {
			seen[p.AccountID] = make(map[string]bool)
		}
		seen[p.AccountID][p.ConformancePackName] = true
	}

	for accountID, names := range seen {
		ap := &accountPacks{suffixes: make(map[string]registeredSuffix)}
		for name := range names {
			ap.names = append(ap.names, name)
		}
		sort.Strings(ap.names)

		// A suffix shared by two packs of the same account is ambiguous and never registered.
		counts := make(map[string]int)
		owner := make(map[string]string)
		for _, name := range ap.names {
			if s := packSuffix(name); s != "" {
				counts[s]++
				owner[s] = name
			}
		}
		for s, n := range counts {
			if n == 1 {
				ap.suffixes[s] = registeredSuffix{pack: owner[s], source: suffixFromPackName}
			}
		}
		t.accounts[accountID] = ap
	}
}

// learnSuffixGroups registers suffixes whose rules agree on a single
// keyword family that maps to exactly one pack in the account.
func (t *Table) learnSuffixGroups(rules []entity.RuleCompliance) {
	if t.cfg.MinGroupConsensus <= 0 {
		return
	}

	// account -> suffix -> distinct rule names
	groups := make(map[string]map[string]map[string]bool)
	for _, rule := range rules {
		_, suffix, ok := splitRule(rule.ConfigRuleName, t.cfg.SuffixMarker)
		if !ok {
			continue
		}
		suffix = strings.ToLower(suffix)
		if groups[rule.AccountID] == nil {
			groups[rule.AccountID] = make(map[string]map[string]bool)
		}
		if groups[rule.AccountID][suffix] == nil {
			groups[rule.AccountID][suffix] = make(map[string]bool)
		}
		groups[rule.AccountID][suffix][rule.ConfigRuleName] = true
	}

	for accountID, suffixes := range groups {
		ap, ok := t.accounts[accountID]
		if !ok {
			continue
		}
		for suffix, names := range suffixes {
			if _, registered := ap.suffixes[suffix]; registered {
				continue
			}
			votes := make(map[string]int)
			for name := range names {
				if family := t.classify(name); family != "" {
					votes[family]++
				}
			}
			if len(votes) != 1 {
				continue
			}
			for family, n := range votes {
				if n < t.cfg.MinGroupConsensus {
					continue
				}
				if pack, ok := ap.uniqueMatch(t.cfg.FamilyPattern(family)); ok {
					ap.suffixes[suffix] = registeredSuffix{pack: pack, source: suffixFromRuleGroup}
				}
			}
		}
	}
}

// classify returns the family of the first category with a keyword found
// in the rule's semantic id, or "".
func (t *Table) classify(ruleName string) string {
	semantic, _, _ := splitRule(ruleName, t.cfg.SuffixMarker)
	lower := strings.ToLower(semantic)
	for _, cat := range t.cfg.Categories {
		for _, kw := range cat.Keywords {
			if strings.Contains(lower, kw) {
				return cat.Family
			}
		}
	}
	return ""
}

func (t *Table) resolve(accountID, ruleName string) entity.AttributionEntry {
	_, suffix, hasSuffix := splitRule(ruleName, t.cfg.SuffixMarker)
	family := t.classify(ruleName)

	entry := entity.AttributionEntry{
		AccountID:  accountID,
		RuleName:   ruleName,
		RuleSuffix: suffix,
		Category:   family,
		Method:     entity.MethodUnattributed,
	}

	ap, ok := t.accounts[accountID]
	if !ok || len(ap.names) == 0 {
		return entry
	}

	attribute := func(pack string, method entity.AttributionMethod) entity.AttributionEntry {
		name := pack
		entry.ConformancePackName = &name
		entry.Method = method
		entry.Strong = method == entity.MethodSuffixMapping
		return entry
	}

	if hasSuffix {
		if reg, ok := ap.suffixes[strings.ToLower(suffix)]; ok {
			return attribute(reg.pack, entity.MethodSuffixMapping)
		}
	}

	if family != "" {
		if pack, ok := ap.uniqueMatch(t.cfg.FamilyPattern(family)); ok {
			return attribute(pack, entity.MethodKeywordCategory)
		}
	}

	// With a single pack the sole-pack rule below already explains the result.
	if !hasSuffix && t.cfg.BaselineFamily != "" && len(ap.names) > 1 {
		if pack, ok := ap.uniqueMatch(t.cfg.FamilyPattern(t.cfg.BaselineFamily)); ok {
			return attribute(pack, entity.MethodNoSuffixFallback)
		}
	}

	if len(ap.names) == 1 {
		return attribute(ap.names[0], entity.MethodSolePackFallback)
	}

	if t.cfg.FirstPackFallback {
		return attribute(ap.names[0], entity.MethodFirstPackFallback)
	}

	return entry
}

// uniqueMatch returns the only pack whose name contains pattern.
func (ap *accountPacks) uniqueMatch(pattern string) (string, bool) {
	if pattern == "" {
		return "", false
	}
	var match string
	n := 0
	for _, name := range ap.names {
		if strings.Contains(name, pattern) {
			match = name
			n++
		}
	}
	return match, n == 1
}
