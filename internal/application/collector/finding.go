package collector

import (
	"sort"

	"github.com/diillson/aws-compliance-dashboard-go/internal/domain/entity"
	"github.com/diillson/aws-compliance-dashboard-go/internal/shared/types"
)

func newFinding(rule entity.RuleCompliance, r entity.EvaluationResult, entry entity.AttributionEntry) entity.Finding {
	f := base(rule, entry)
	if r.AwsRegion != "" {
		f.AwsRegion = r.AwsRegion
	}
	if r.ResourceType != "" {
		f.ResourceType = r.ResourceType
	}
	if r.ResourceID != "" {
		f.ResourceID = r.ResourceID
	}
	if r.ComplianceType != "" {
		f.ComplianceType = r.ComplianceType
	}
	f.ResultRecordedTime = r.ResultRecordedTime
	return f
}

func placeholder(rule entity.RuleCompliance, entry entity.AttributionEntry, kind types.ErrorKind) entity.Finding {
	f := base(rule, entry)
	f.Degraded = true
	f.DegradationReason = string(kind)
	return f
}

func base(rule entity.RuleCompliance, entry entity.AttributionEntry) entity.Finding {
	f := entity.Finding{
		ConfigRuleName:      rule.ConfigRuleName,
		AccountID:           rule.AccountID,
		AwsRegion:           rule.AwsRegion,
		ResourceType:        entity.UnknownResource,
		ResourceID:          entity.UnknownResource,
		ComplianceType:      entity.ComplianceTypeNonCompliant,
		ConformancePackName: entry.ConformancePackName,
		AttributionMethod:   entry.Method,
	}
	if entry.RuleSuffix != "" {
		suffix := entry.RuleSuffix
		f.RuleSuffix = &suffix
	}
	return f
}

// SortFindings orders findings by account, region, rule and resource so
// that equal inputs serialize to equal bytes.
func SortFindings(findings []entity.Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		switch {
		case a.AccountID != b.AccountID:
			return a.AccountID < b.AccountID
		case a.AwsRegion != b.AwsRegion:
			return a.AwsRegion < b.AwsRegion
		case a.ConfigRuleName != b.ConfigRuleName:
			return a.ConfigRuleName < b.ConfigRuleName
		case a.ResourceType != b.ResourceType:
			return a.ResourceType < b.ResourceType
		case a.ResourceID != b.ResourceID:
			return a.ResourceID < b.ResourceID
		}
		return !a.Degraded && b.Degraded
	})
}
