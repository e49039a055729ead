package entity

// Percentage sources for AccountRollup.
const (
	SourceConformancePacks = "conformance-packs"
	SourceRuleCompliance   = "rule-compliance"
)

// PackCompliance is the compliance of one pack in one account.
type PackCompliance struct {
	CompliantRules       int     `json:"compliantRules"`
	TotalRules           int     `json:"totalRules"`
	CompliancePercentage float64 `json:"compliancePercentage"`
}

// AccountRollup is the per-account compliance rollup.
type AccountRollup struct {
	AccountID                   string                    `json:"accountId"`
	AccountName                 string                    `json:"accountName"`
	ConformancePacks            map[string]PackCompliance `json:"conformancePacks"`
	TotalCompliant              int                       `json:"totalCompliant"`
	TotalRules                  int                       `json:"totalRules"`
	OverallCompliancePercentage float64                   `json:"overallCompliancePercentage"`
	PercentageSource            string                    `json:"percentageSource"`
	CompliantRules              int                       `json:"compliantRules"`
	NonCompliantRules           int                       `json:"nonCompliantRules"`
	Findings                    int                       `json:"findings"`
	PlaceholderFindings         int                       `json:"placeholderFindings"`
	UnattributedFindings        int                       `json:"unattributedFindings"`
}

// OrgRollup holds organization-wide rule totals.
type OrgRollup struct {
	CompliantRules       int     `json:"compliantRules"`
	NonCompliantRules    int     `json:"nonCompliantRules"`
	TotalRules           int     `json:"totalRules"`
	CompliancePercentage float64 `json:"compliancePercentage"`
}

// ComplianceDistribution counts accounts per compliance bucket.
type ComplianceDistribution struct {
	Excellent int `json:"excellent"`
	Good      int `json:"good"`
	Fair      int `json:"fair"`
	Poor      int `json:"poor"`
}

// RuleFailureCount is the number of findings produced by one rule name.
type RuleFailureCount struct {
	ConfigRuleName string `json:"configRuleName"`
	Findings       int    `json:"findings"`
	Accounts       int    `json:"accounts"`
}

// Statistics carries distribution and completeness figures for a snapshot.
type Statistics struct {
	TotalAccounts           int                       `json:"totalAccounts"`
	ComplianceDistribution  ComplianceDistribution    `json:"complianceDistribution"`
	AverageCompliance       float64                   `json:"averageCompliance"`
	TotalFindings           int                       `json:"totalFindings"`
	PlaceholderFindings     int                       `json:"placeholderFindings"`
	UnattributedFindings    int                       `json:"unattributedFindings"`
	AttributionMethods      map[AttributionMethod]int `json:"attributionMethods"`
	TopNonCompliantRules    []RuleFailureCount        `json:"topNonCompliantRules"`
	RulesWithoutEvaluations int                       `json:"rulesWithoutEvaluations"`
	CappedRules             int                       `json:"cappedRules"`
	InventoryDegradations   int                       `json:"inventoryDegradations"`
}
