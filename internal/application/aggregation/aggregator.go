// Package aggregation computes account and organization compliance rollups.
// Every function here is pure: equal inputs produce equal outputs.
package aggregation

import (
	"math"
	"sort"

	"github.com/diillson/aws-compliance-dashboard-go/internal/application/inventory"
	"github.com/diillson/aws-compliance-dashboard-go/internal/domain/entity"
)

// Bucket lower bounds, inclusive.
const (
	ExcellentThreshold = 95.0
	GoodThreshold      = 80.0
	FairThreshold      = 60.0

	BucketExcellent = "excellent"
	BucketGood      = "good"
	BucketFair      = "fair"
	BucketPoor      = "poor"

	DefaultTopRules = 10
)

// Input is everything the aggregator needs. Counts of collection and
// inventory degradations are carried through into the statistics.
type Input struct {
	Accounts                []entity.Account
	Packs                   []entity.ConformancePackRef
	Rules                   []entity.RuleCompliance
	Findings                []entity.Finding
	RulesWithoutEvaluations int
	CappedRules             int
	InventoryDegradations   int
	TopRules                int
}

// Output holds the computed rollups.
type Output struct {
	Accounts     []entity.AccountRollup
	Organization entity.OrgRollup
	Statistics   entity.Statistics
}

type ruleCounts struct {
	compliant    int
	nonCompliant int
}

type findingCounts struct {
	total        int
	placeholders int
	unattributed int
}

// Aggregate computes per-account rollups, the organization rollup and the
// distribution statistics.
func Aggregate(in Input) Output {
	names := entity.NewAccountIndex(in.Accounts)
	seen := make(map[string]bool, len(in.Accounts))
	for _, a := range in.Accounts {
		seen[a.AccountID] = true
	}

	packsByAccount := make(map[string]map[string]entity.PackCompliance)
	for _, p := range in.Packs {
		seen[p.AccountID] = true
		if packsByAccount[p.AccountID] == nil {
			packsByAccount[p.AccountID] = make(map[string]entity.PackCompliance)
		}
		// the same pack can be reported for several regions
		pc := packsByAccount[p.AccountID][p.ConformancePackName]
		pc.CompliantRules += p.CompliantRuleCount
		pc.TotalRules += p.TotalRuleCount
		packsByAccount[p.AccountID][p.ConformancePackName] = pc
	}

	rulesByAccount := make(map[string]*ruleCounts)
	for _, r := range in.Rules {
		seen[r.AccountID] = true
		rc := rulesByAccount[r.AccountID]
		if rc == nil {
			rc = &ruleCounts{}
			rulesByAccount[r.AccountID] = rc
		}
		switch {
		case r.IsCompliant():
			rc.compliant++
		case r.IsNonCompliant():
			rc.nonCompliant++
		}
	}

	findingsByAccount := make(map[string]*findingCounts)
	for _, f := range in.Findings {
		seen[f.AccountID] = true
		fc := findingsByAccount[f.AccountID]
		if fc == nil {
			fc = &findingCounts{}
			findingsByAccount[f.AccountID] = fc
		}
		fc.total++
		if f.Degraded {
			fc.placeholders++
		}
		if !f.Attributed() {
			fc.unattributed++
		}
	}

	ids := sortedIDs(seen)
	rollups := make([]entity.AccountRollup, 0, len(ids))
	for _, id := range ids {
		rollups = append(rollups, accountRollup(id, names.Name(id), packsByAccount[id], rulesByAccount[id], findingsByAccount[id]))
	}

	org := inventory.Totals(in.Rules)

	return Output{
		Accounts:     rollups,
		Organization: org,
		Statistics:   statistics(in, rollups),
	}
}

func sortedIDs(seen map[string]bool) []string {
	ids := make([]string, 0, len(seen))
	for id := range seen {
		if id != "" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func accountRollup(id, name string, packs map[string]entity.PackCompliance, rules *ruleCounts, findings *findingCounts) entity.AccountRollup {
	r := entity.AccountRollup{
		AccountID:        id,
		AccountName:      name,
		ConformancePacks: make(map[string]entity.PackCompliance, len(packs)),
	}

	for pack, pc := range packs {
		pc.CompliancePercentage = inventory.Percentage(pc.CompliantRules, pc.TotalRules)
		r.ConformancePacks[pack] = pc
		r.TotalCompliant += pc.CompliantRules
		r.TotalRules += pc.TotalRules
	}

	if rules != nil {
		r.CompliantRules = rules.compliant
		r.NonCompliantRules = rules.nonCompliant
	}

	if r.TotalRules > 0 {
		r.PercentageSource = entity.SourceConformancePacks
	} else {
		r.PercentageSource = entity.SourceRuleCompliance
		r.TotalCompliant = r.CompliantRules
		r.TotalRules = r.CompliantRules + r.NonCompliantRules
	}
	r.OverallCompliancePercentage = inventory.Percentage(r.TotalCompliant, r.TotalRules)

	if findings != nil {
		r.Findings = findings.total
		r.PlaceholderFindings = findings.placeholders
		r.UnattributedFindings = findings.unattributed
	}
	return r
}

// Bucket returns the distribution bucket of a compliance percentage.
func Bucket(pct float64) string {
	switch {
	case pct >= ExcellentThreshold:
		return BucketExcellent
	case pct >= GoodThreshold:
		return BucketGood
	case pct >= FairThreshold:
		return BucketFair
	default:
		return BucketPoor
	}
}

// Distribution partitions accounts by their overall compliance percentage.
func Distribution(rollups []entity.AccountRollup) entity.ComplianceDistribution {
	var d entity.ComplianceDistribution
	for _, r := range rollups {
		switch Bucket(r.OverallCompliancePercentage) {
		case BucketExcellent:
			d.Excellent++
		case BucketGood:
			d.Good++
		case BucketFair:
			d.Fair++
		default:
			d.Poor++
		}
	}
	return d
}

func statistics(in Input, rollups []entity.AccountRollup) entity.Statistics {
	stats := entity.Statistics{
		TotalAccounts:           len(rollups),
		ComplianceDistribution:  Distribution(rollups),
		TotalFindings:           len(in.Findings),
		AttributionMethods:      make(map[entity.AttributionMethod]int),
		RulesWithoutEvaluations: in.RulesWithoutEvaluations,
		CappedRules:             in.CappedRules,
		InventoryDegradations:   in.InventoryDegradations,
	}

	if len(rollups) > 0 {
		var sum float64
		for _, r := range rollups {
			sum += r.OverallCompliancePercentage
		}
		stats.AverageCompliance = round2(sum / float64(len(rollups)))
	}

	for _, f := range in.Findings {
		if f.Degraded {
			stats.PlaceholderFindings++
		}
		if !f.Attributed() {
			stats.UnattributedFindings++
		}
		method := f.AttributionMethod
		if method == "" {
			method = entity.MethodUnattributed
		}
		stats.AttributionMethods[method]++
	}

	limit := in.TopRules
	if limit <= 0 {
		limit = DefaultTopRules
	}
	stats.TopNonCompliantRules = TopRules(in.Findings, limit)

	return stats
}

// TopRules returns the rules with the most findings, ties broken by name.
func TopRules(findings []entity.Finding, limit int) []entity.RuleFailureCount {
	counts := make(map[string]int)
	accounts := make(map[string]map[string]bool)
	for _, f := range findings {
		counts[f.ConfigRuleName]++
		if accounts[f.ConfigRuleName] == nil {
			accounts[f.ConfigRuleName] = make(map[string]bool)
		}
		accounts[f.ConfigRuleName][f.AccountID] = true
	}

	out := make([]entity.RuleFailureCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, entity.RuleFailureCount{ConfigRuleName: name, Findings: n, Accounts: len(accounts[name])})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Findings != out[j].Findings {
			return out[i].Findings > out[j].Findings
		}
		return out[i].ConfigRuleName < out[j].ConfigRuleName
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
