package inventory

import (
	"math"

	"github.com/diillson/aws-compliance-dashboard-go/internal/domain/entity"
)

// Totals computes organization-wide rule counts from the drained rule set.
// Rules in states other than COMPLIANT and NON_COMPLIANT are ignored.
func Totals(rules []entity.RuleCompliance) entity.OrgRollup {
	var org entity.OrgRollup
	for _, r := range rules {
		switch {
		case r.IsCompliant():
			org.CompliantRules++
		case r.IsNonCompliant():
			org.NonCompliantRules++
		}
	}
	org.TotalRules = org.CompliantRules + org.NonCompliantRules
	org.CompliancePercentage = Percentage(org.CompliantRules, org.TotalRules)
	return org
}

// Percentage returns part/total*100 rounded to two decimals, or 0 when
// total is zero.
func Percentage(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*10000) / 100
}
