package entity

// PackSummary is one row of the aggregator's conformance pack compliance
// summary, grouped by account id.
type PackSummary struct {
	GroupName             string `json:"groupName"`
	CompliantPackCount    int    `json:"compliantConformancePackCount"`
	NonCompliantPackCount int    `json:"nonCompliantConformancePackCount"`
}

// ConformancePackRef is a conformance pack deployed to one account, with the
// rule counts reported by the aggregator.
type ConformancePackRef struct {
	ConformancePackName   string `json:"ConformancePackName"`
	AccountID             string `json:"AccountId"`
	AwsRegion             string `json:"AwsRegion"`
	ComplianceType        string `json:"ComplianceType"`
	CompliantRuleCount    int    `json:"CompliantRuleCount"`
	NonCompliantRuleCount int    `json:"NonCompliantRuleCount"`
	TotalRuleCount        int    `json:"TotalRuleCount"`
}

// IsFullyCompliant reports whether every rule of the pack passed.
func (p ConformancePackRef) IsFullyCompliant() bool {
	return p.CompliantRuleCount == p.TotalRuleCount
}
