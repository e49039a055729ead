package entity

import "time"

// UnknownResource is used for the resource fields of placeholder findings.
const UnknownResource = "unknown"

// Finding is one non-compliant resource evaluation, attributed to a
// conformance pack when possible.
type Finding struct {
	ConfigRuleName      string            `json:"ConfigRuleName"`
	AccountID           string            `json:"AccountId"`
	AwsRegion           string            `json:"AwsRegion"`
	ResourceType        string            `json:"ResourceType"`
	ResourceID          string            `json:"ResourceId"`
	ComplianceType      string            `json:"ComplianceType"`
	ResultRecordedTime  *time.Time        `json:"ResultRecordedTime"`
	ConformancePackName *string           `json:"ConformancePackName"`
	RuleSuffix          *string           `json:"RuleSuffix"`
	AttributionMethod   AttributionMethod `json:"AttributionMethod"`
	Degraded            bool              `json:"Degraded,omitempty"`
	DegradationReason   string            `json:"DegradationReason,omitempty"`
}

// Attributed reports whether the finding has a conformance pack.
func (f Finding) Attributed() bool {
	return f.ConformancePackName != nil
}
