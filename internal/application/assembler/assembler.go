// Package assembler turns the outputs of a run into the published documents.
package assembler

import (
	"math"
	"sort"
	"time"

	"github.com/diillson/aws-compliance-dashboard-go/internal/application/aggregation"
	"github.com/diillson/aws-compliance-dashboard-go/internal/application/collector"
	"github.com/diillson/aws-compliance-dashboard-go/internal/application/inventory"
	"github.com/diillson/aws-compliance-dashboard-go/internal/application/remediation"
	"github.com/diillson/aws-compliance-dashboard-go/internal/domain/entity"
)

// Input carries every stage output of one run.
type Input struct {
	RunID       string
	GeneratedAt time.Time
	Duration    time.Duration
	Inventory   *entity.Inventory
	Attribution []entity.AttributionEntry
	Collection  *collector.Result
	Rollups     aggregation.Output
}

// Assembler builds the consolidated snapshot and the per-pack reports.
type Assembler struct {
	catalog     *remediation.Catalog
	packReports bool
}

// New creates an Assembler. When packReports is false Assemble returns no pack reports.
func New(catalog *remediation.Catalog, packReports bool) *Assembler {
	if catalog == nil {
		catalog = remediation.Default()
	}
	return &Assembler{catalog: catalog, packReports: packReports}
}

// Timestamp formats t the way every document of a run does.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Assemble is a pure transformation of in.
func (a *Assembler) Assemble(in Input) (*entity.Snapshot, []entity.PackReport) {
	inv := in.Inventory
	if inv == nil {
		inv = &entity.Inventory{}
	}
	col := in.Collection
	if col == nil {
		col = &collector.Result{}
	}

	degradations := make([]entity.Degradation, 0, len(inv.Degradations)+len(col.Degradations))
	degradations = append(degradations, inv.Degradations...)
	degradations = append(degradations, col.Degradations...)

	stamp := Timestamp(in.GeneratedAt)
	snapshot := &entity.Snapshot{
		RunID:                  in.RunID,
		LastUpdated:            stamp,
		AggregatorName:         inv.AggregatorName,
		CollectorAccountID:     inv.CollectorAccountID,
		Accounts:               nonNil(inv.Accounts),
		ConformancePackSummary: nonNil(inv.PackSummaries),
		ConformancePackDetails: nonNil(inv.Packs),
		RulesCompliance:        nonNil(inv.Rules),
		NonCompliantDetails:    nonNil(col.Findings),
		AttributionTable:       nonNil(in.Attribution),
		AccountCompliance:      nonNil(in.Rollups.Accounts),
		OrganizationCompliance: in.Rollups.Organization,
		Statistics:             in.Rollups.Statistics,
		Degradations:           degradations,
		ProcessingTimeSeconds:  math.Round(in.Duration.Seconds()*100) / 100,
	}

	if !a.packReports {
		return snapshot, nil
	}
	return snapshot, a.buildPackReports(inv, col.Findings, stamp)
}

type findingKey struct {
	pack      string
	accountID string
	region    string
	rule      string
}

func (a *Assembler) buildPackReports(inv *entity.Inventory, findings []entity.Finding, stamp string) []entity.PackReport {
	names := entity.NewAccountIndex(inv.Accounts)

	rowsByPack := make(map[string][]entity.ConformancePackRef)
	for _, p := range inv.Packs {
		rowsByPack[p.ConformancePackName] = append(rowsByPack[p.ConformancePackName], p)
	}

	perAccount := make(map[[2]string]int)
	perRule := make(map[findingKey]int)
	for _, f := range findings {
		if !f.Attributed() {
			continue
		}
		pack := *f.ConformancePackName
		perAccount[[2]string{pack, f.AccountID}]++
		perRule[findingKey{pack: pack, accountID: f.AccountID, region: f.AwsRegion, rule: f.ConfigRuleName}]++
	}

	packNames := make([]string, 0, len(rowsByPack))
	for name := range rowsByPack {
		packNames = append(packNames, name)
	}
	sort.Strings(packNames)

	reports := make([]entity.PackReport, 0, len(packNames))
	for _, name := range packNames {
		rows := rowsByPack[name]
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].AccountID != rows[j].AccountID {
				return rows[i].AccountID < rows[j].AccountID
			}
			return rows[i].AwsRegion < rows[j].AwsRegion
		})

		report := entity.PackReport{
			PackName:               name,
			AccountDetails:         make([]entity.PackAccountDetail, 0, len(rows)),
			RemediationSuggestions: a.suggestions(name, perRule),
			LastUpdated:            stamp,
		}

		// an account is compliant only when every region's deployment is
		accountCompliant := make(map[string]bool)
		for _, r := range rows {
			report.AccountDetails = append(report.AccountDetails, entity.PackAccountDetail{
				AccountID:            r.AccountID,
				AccountName:          names.Name(r.AccountID),
				AwsRegion:            r.AwsRegion,
				CompliantRules:       r.CompliantRuleCount,
				NonCompliantRules:    r.NonCompliantRuleCount,
				TotalRules:           r.TotalRuleCount,
				CompliancePercentage: inventory.Percentage(r.CompliantRuleCount, r.TotalRuleCount),
				Findings:             perAccount[[2]string{name, r.AccountID}],
			})
			prev, seen := accountCompliant[r.AccountID]
			accountCompliant[r.AccountID] = r.IsFullyCompliant() && (!seen || prev)
		}

		report.TotalAccounts = len(accountCompliant)
		for _, ok := range accountCompliant {
			if ok {
				report.CompliantAccounts++
			}
		}
		report.CompliancePercentage = inventory.Percentage(report.CompliantAccounts, report.TotalAccounts)

		reports = append(reports, report)
	}
	return reports
}

func (a *Assembler) suggestions(pack string, perRule map[findingKey]int) []entity.RemediationSuggestion {
	keys := make([]findingKey, 0)
	for k := range perRule {
		if k.pack == pack {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		switch {
		case keys[i].accountID != keys[j].accountID:
			return keys[i].accountID < keys[j].accountID
		case keys[i].region != keys[j].region:
			return keys[i].region < keys[j].region
		}
		return keys[i].rule < keys[j].rule
	})

	out := make([]entity.RemediationSuggestion, 0, len(keys))
	for _, k := range keys {
		advice, _ := a.catalog.Lookup(k.rule)
		out = append(out, entity.RemediationSuggestion{
			RuleName:       k.rule,
			AccountID:      k.accountID,
			AwsRegion:      k.region,
			ComplianceType: entity.ComplianceTypeNonCompliant,
			Findings:       perRule[k],
			Remediation:    advice,
		})
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
