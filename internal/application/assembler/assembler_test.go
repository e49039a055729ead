package assembler

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diillson/aws-compliance-dashboard-go/internal/application/aggregation"
	"github.com/diillson/aws-compliance-dashboard-go/internal/application/collector"
	"github.com/diillson/aws-compliance-dashboard-go/internal/application/remediation"
	"github.com/diillson/aws-compliance-dashboard-go/internal/domain/entity"
)

func strPtr(s string) *string { return &s }

func input() Input {
	inv := &entity.Inventory{
		AggregatorName: "org-aggregator",
		Accounts: []entity.Account{
			{AccountID: "111", AccountName: "security"},
			{AccountID: "222", AccountName: "workload"},
		},
		Packs: []entity.ConformancePackRef{
			{AccountID: "222", ConformancePackName: "CIS-pack", AwsRegion: "us-east-1", CompliantRuleCount: 10, TotalRuleCount: 10},
			{AccountID: "111", ConformancePackName: "CIS-pack", AwsRegion: "us-east-1", CompliantRuleCount: 9, NonCompliantRuleCount: 1, TotalRuleCount: 10},
			{AccountID: "111", ConformancePackName: "NIST-pack", AwsRegion: "us-east-1", CompliantRuleCount: 4, TotalRuleCount: 4},
			{AccountID: "111", ConformancePackName: "NIST-pack", AwsRegion: "eu-west-1", CompliantRuleCount: 3, NonCompliantRuleCount: 1, TotalRuleCount: 4},
		},
		Degradations: []entity.Degradation{{Stage: entity.StageInventory, Target: "rule_compliance", Kind: "timeout"}},
	}
	col := &collector.Result{
		Findings: []entity.Finding{
			{AccountID: "111", AwsRegion: "us-east-1", ConfigRuleName: "mfa-enabled-for-iam-console-access-conformance-pack-a1", ConformancePackName: strPtr("CIS-pack")},
			{AccountID: "111", AwsRegion: "us-east-1", ConfigRuleName: "mfa-enabled-for-iam-console-access-conformance-pack-a1", ConformancePackName: strPtr("CIS-pack")},
			{AccountID: "111", AwsRegion: "eu-west-1", ConfigRuleName: "encrypted-volumes", ConformancePackName: strPtr("NIST-pack")},
			{AccountID: "222", AwsRegion: "us-east-1", ConfigRuleName: "orphan-rule"},
		},
		Degradations: []entity.Degradation{{Stage: entity.StageCollector, Target: "111/us-east-1/x", Kind: "throttled"}},
	}
	return Input{
		RunID:       "run-1",
		GeneratedAt: time.Date(2024, 5, 1, 12, 30, 0, 0, time.FixedZone("BRT", -3*3600)),
		Duration:    12340 * time.Millisecond,
		Inventory:   inv,
		Collection:  col,
		Rollups:     aggregation.Aggregate(aggregation.Input{Accounts: inv.Accounts, Packs: inv.Packs, Findings: col.Findings}),
	}
}

func TestAssemble_Snapshot(t *testing.T) {
	snapshot, reports := New(remediation.Default(), true).Assemble(input())

	assert.Equal(t, "run-1", snapshot.RunID)
	assert.Equal(t, "2024-05-01T15:30:00Z", snapshot.LastUpdated)
	assert.Equal(t, "org-aggregator", snapshot.AggregatorName)
	assert.Equal(t, 12.34, snapshot.ProcessingTimeSeconds)
	assert.Len(t, snapshot.NonCompliantDetails, 4)
	require.Len(t, snapshot.Degradations, 2)
	assert.Equal(t, entity.StageInventory, snapshot.Degradations[0].Stage)
	assert.Equal(t, entity.StageCollector, snapshot.Degradations[1].Stage)
	assert.Len(t, reports, 2)
}

func TestAssemble_EmptyCollectionsSerializeAsArrays(t *testing.T) {
	snapshot, reports := New(nil, false).Assemble(Input{GeneratedAt: time.Unix(0, 0)})

	assert.Nil(t, reports)

	raw, err := json.Marshal(snapshot)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &doc))
	for _, key := range []string{
		"accounts", "conformancePackSummary", "conformancePackDetails", "rulesCompliance",
		"nonCompliantDetails", "attributionTable", "accountCompliance", "degradations",
	} {
		assert.Equal(t, []interface{}{}, doc[key], key)
	}
	assert.Equal(t, "1970-01-01T00:00:00Z", doc["lastUpdated"])
}

func TestAssemble_PackReports(t *testing.T) {
	_, reports := New(remediation.Default(), true).Assemble(input())
	require.Len(t, reports, 2)

	cis := reports[0]
	assert.Equal(t, "CIS-pack", cis.PackName)
	assert.Equal(t, 2, cis.TotalAccounts)
	assert.Equal(t, 1, cis.CompliantAccounts)
	assert.Equal(t, 50.0, cis.CompliancePercentage)
	assert.Equal(t, "2024-05-01T15:30:00Z", cis.LastUpdated)
	require.Len(t, cis.AccountDetails, 2)
	assert.Equal(t, entity.PackAccountDetail{
		AccountID:            "111",
		AccountName:          "security",
		AwsRegion:            "us-east-1",
		CompliantRules:       9,
		NonCompliantRules:    1,
		TotalRules:           10,
		CompliancePercentage: 90,
		Findings:             2,
	}, cis.AccountDetails[0])

	require.Len(t, cis.RemediationSuggestions, 1)
	s := cis.RemediationSuggestions[0]
	assert.Equal(t, "111", s.AccountID)
	assert.Equal(t, 2, s.Findings)
	assert.Equal(t, "Multi-Factor Authentication", s.Title)
	assert.Equal(t, "AWSConfigRemediation-EnableMFAForIAMUser", s.SSMDocument)

	nist := reports[1]
	assert.Equal(t, "NIST-pack", nist.PackName)
	assert.Equal(t, 1, nist.TotalAccounts, "regions of one account count once")
	assert.Zero(t, nist.CompliantAccounts, "one non-compliant region makes the account non-compliant")
	assert.Len(t, nist.AccountDetails, 2)
	assert.Equal(t, "eu-west-1", nist.AccountDetails[0].AwsRegion)
	require.Len(t, nist.RemediationSuggestions, 1)
	assert.Equal(t, "EBS Encryption", nist.RemediationSuggestions[0].Title)
}

func TestAssemble_DoesNotMutateInput(t *testing.T) {
	in := input()
	before := append([]entity.ConformancePackRef(nil), in.Inventory.Packs...)

	New(nil, true).Assemble(in)

	assert.Equal(t, before, in.Inventory.Packs)
}

func TestRemediationSuggestionJSONIsFlat(t *testing.T) {
	_, reports := New(nil, true).Assemble(input())

	raw, err := json.Marshal(reports[0].RemediationSuggestions[0])
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "Multi-Factor Authentication", doc["title"])
	assert.Equal(t, "mfa-enabled-for-iam-console-access-conformance-pack-a1", doc["ruleName"])
}
