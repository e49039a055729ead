package entity

import "time"

// Compliance types reported by AWS Config.
const (
	ComplianceTypeCompliant    = "COMPLIANT"
	ComplianceTypeNonCompliant = "NON_COMPLIANT"
)

// RuleCompliance is the aggregate state of one config rule in one account and region.
type RuleCompliance struct {
	ConfigRuleName string `json:"ConfigRuleName"`
	AccountID      string `json:"AccountId"`
	AwsRegion      string `json:"AwsRegion"`
	ComplianceType string `json:"ComplianceType"`
}

// IsNonCompliant reports whether the rule was NON_COMPLIANT at inventory time.
func (r RuleCompliance) IsNonCompliant() bool {
	return r.ComplianceType == ComplianceTypeNonCompliant
}

// IsCompliant reports whether the rule was COMPLIANT at inventory time.
func (r RuleCompliance) IsCompliant() bool {
	return r.ComplianceType == ComplianceTypeCompliant
}

// EvaluationResult is a single resource evaluation returned by the
// aggregator for one rule.
type EvaluationResult struct {
	ConfigRuleName     string
	AccountID          string
	AwsRegion          string
	ResourceType       string
	ResourceID         string
	ComplianceType     string
	ResultRecordedTime *time.Time
	Annotation         string
}

// RuleDetailsRequest identifies the rule whose evaluation results are requested.
type RuleDetailsRequest struct {
	AggregatorName string
	ConfigRuleName string
	AccountID      string
	AwsRegion      string
}

// EvaluationPage is one page of evaluation results. NextToken is empty on the last page.
type EvaluationPage struct {
	Results   []EvaluationResult
	NextToken string
}
