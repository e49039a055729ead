package entity

// Inventory is the drained result of the inventory fetch for one run.
type Inventory struct {
	Accounts           []Account            `json:"accounts"`
	PackSummaries      []PackSummary        `json:"conformancePackSummary"`
	Packs              []ConformancePackRef `json:"conformancePackDetails"`
	Rules              []RuleCompliance     `json:"rulesCompliance"`
	Degradations       []Degradation        `json:"degradations,omitempty"`
	CollectorAccountID string               `json:"collectorAccountId,omitempty"`
	AggregatorName     string               `json:"aggregatorName"`
}

// NonCompliantRules returns the rules that were NON_COMPLIANT at inventory time.
func (inv *Inventory) NonCompliantRules() []RuleCompliance {
	out := make([]RuleCompliance, 0, len(inv.Rules))
	for _, r := range inv.Rules {
		if r.IsNonCompliant() {
			out = append(out, r)
		}
	}
	return out
}
