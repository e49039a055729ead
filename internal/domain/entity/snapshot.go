package entity

import "time"

// Snapshot is the consolidated document published once per run.
type Snapshot struct {
	RunID                  string               `json:"runId"`
	LastUpdated            string               `json:"lastUpdated"`
	AggregatorName         string               `json:"aggregatorName"`
	CollectorAccountID     string               `json:"collectorAccountId,omitempty"`
	Accounts               []Account            `json:"accounts"`
	ConformancePackSummary []PackSummary        `json:"conformancePackSummary"`
	ConformancePackDetails []ConformancePackRef `json:"conformancePackDetails"`
	RulesCompliance        []RuleCompliance     `json:"rulesCompliance"`
	NonCompliantDetails    []Finding            `json:"nonCompliantDetails"`
	AttributionTable       []AttributionEntry   `json:"attributionTable"`
	AccountCompliance      []AccountRollup      `json:"accountCompliance"`
	OrganizationCompliance OrgRollup            `json:"organizationCompliance"`
	Statistics             Statistics           `json:"statistics"`
	Degradations           []Degradation        `json:"degradations"`
	ProcessingTimeSeconds  float64              `json:"processingTimeSeconds"`
	// Keys of the pack reports published with this snapshot, relative to the key prefix.
	PackReports            []string             `json:"packReports,omitempty"`
}

// PackAccountDetail is the compliance of one account within a pack report.
type PackAccountDetail struct {
	AccountID            string  `json:"accountId"`
	AccountName          string  `json:"accountName"`
	AwsRegion            string  `json:"awsRegion"`
	CompliantRules       int     `json:"compliantRules"`
	NonCompliantRules    int     `json:"nonCompliantRules"`
	TotalRules           int     `json:"totalRules"`
	CompliancePercentage float64 `json:"compliancePercentage"`
	Findings             int     `json:"findings"`
}

// PackReport is the per-conformance-pack document.
type PackReport struct {
	PackName               string                  `json:"packName"`
	TotalAccounts          int                     `json:"totalAccounts"`
	CompliantAccounts      int                     `json:"compliantAccounts"`
	CompliancePercentage   float64                 `json:"compliancePercentage"`
	AccountDetails         []PackAccountDetail     `json:"accountDetails"`
	RemediationSuggestions []RemediationSuggestion `json:"remediationSuggestions"`
	LastUpdated            string                  `json:"lastUpdated"`
}

// RunResult is the outcome of a successful run.
type RunResult struct {
	RunID             string
	Message           string
	Duration          time.Duration
	Findings          int
	Placeholders      int
	Unattributed      int
	PackReports       int
	PublishedLocation string
	ExportedFiles     []string
}
