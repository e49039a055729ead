package entity

// Remediation is the advisory text for a config rule.
type Remediation struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Remediation string   `json:"remediation"`
	Priority    string   `json:"priority"`
	Effort      string   `json:"effort"`
	Resources   []string `json:"resources"`
	SSMDocument string   `json:"ssmDocument,omitempty"`
}

// RemediationSuggestion is a remediation for a rule in a specific account and region.
type RemediationSuggestion struct {
	RuleName       string `json:"ruleName"`
	AccountID      string `json:"accountId"`
	AwsRegion      string `json:"awsRegion"`
	ComplianceType string `json:"complianceType"`
	Findings       int    `json:"findings"`
	Remediation
}
