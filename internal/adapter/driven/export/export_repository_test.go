package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diillson/aws-compliance-dashboard-go/internal/domain/entity"
)

func strPtr(s string) *string { return &s }

func sampleSnapshot() *entity.Snapshot {
	recorded := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &entity.Snapshot{
		RunID:          "run-1",
		LastUpdated:    "2024-05-01T15:30:00Z",
		AggregatorName: "org-aggregator",
		Accounts: []entity.Account{
			{AccountID: "111111111111", AccountName: "prod", Status: "ACTIVE"},
		},
		NonCompliantDetails: []entity.Finding{
			{
				ConfigRuleName:      "mfa-enabled-conformance-pack-abc123",
				AccountID:           "111111111111",
				AwsRegion:           "us-east-1",
				ResourceType:        "AWS::IAM::User",
				ResourceID:          "alice",
				ComplianceType:      "NON_COMPLIANT",
				ResultRecordedTime:  &recorded,
				ConformancePackName: strPtr("CIS-pack"),
				AttributionMethod:   entity.MethodKeywordCategory,
			},
			{
				ConfigRuleName:    "some-rule",
				AccountID:         "222222222222",
				AwsRegion:         "eu-west-1",
				ResourceType:      entity.UnknownResource,
				ResourceID:        entity.UnknownResource,
				ComplianceType:    "NON_COMPLIANT",
				AttributionMethod: entity.MethodUnattributed,
				Degraded:          true,
				DegradationReason: "throttled",
			},
		},
		AccountCompliance: []entity.AccountRollup{
			{AccountID: "111111111111", AccountName: "prod", TotalCompliant: 2, TotalRules: 3, OverallCompliancePercentage: 66.67, Findings: 1},
		},
		OrganizationCompliance: entity.OrgRollup{CompliantRules: 2, NonCompliantRules: 1, TotalRules: 3, CompliancePercentage: 66.67},
		Statistics: entity.Statistics{
			TotalAccounts:        1,
			TotalFindings:        2,
			PlaceholderFindings:  1,
			UnattributedFindings: 1,
			AttributionMethods:   map[entity.AttributionMethod]int{entity.MethodKeywordCategory: 1, entity.MethodUnattributed: 1},
			TopNonCompliantRules: []entity.RuleFailureCount{{ConfigRuleName: "some-rule", Findings: 1, Accounts: 1}},
		},
		Degradations: []entity.Degradation{
			{Stage: entity.StageCollector, Target: "222222222222/eu-west-1/some-rule", Kind: "throttled", Message: "slow down"},
		},
	}
}

func fixedRepo() *ExportRepositoryImpl {
	r := NewExportRepository()
	r.now = func() time.Time { return time.Date(2024, 5, 1, 15, 30, 0, 0, time.UTC) }
	return r
}

func TestExportSnapshotToJSON(t *testing.T) {
	dir := t.TempDir()
	path, err := fixedRepo().ExportSnapshotToJSON(sampleSnapshot(), "report", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report_20240501_153000.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded entity.Snapshot
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "run-1", decoded.RunID)
	assert.Len(t, decoded.NonCompliantDetails, 2)
}

func TestExportFindingsToCSV(t *testing.T) {
	dir := t.TempDir()
	path, err := fixedRepo().ExportFindingsToCSV(sampleSnapshot(), "findings", dir)
	require.NoError(t, err)

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Account ID", records[0][0])

	assert.Equal(t, []string{
		"111111111111", "prod", "us-east-1", "mfa-enabled-conformance-pack-abc123", "AWS::IAM::User", "alice",
		"NON_COMPLIANT", "2024-05-01T12:00:00Z", "CIS-pack", "keyword-category", "",
	}, records[1])
	assert.Equal(t, "Unknown", records[2][1])
	assert.Equal(t, "", records[2][8])
	assert.Equal(t, "throttled", records[2][10])
}

func TestExportSnapshotToPDF(t *testing.T) {
	dir := t.TempDir()
	path, err := fixedRepo().ExportSnapshotToPDF(sampleSnapshot(), "summary", dir)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}

func TestGenerateFilenameCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	name, err := fixedRepo().generateFilename("x", dir, "csv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "x_20240501_153000.csv"), name)
	assert.DirExists(t, dir)
}

func TestCleanRichTags(t *testing.T) {
	assert.Equal(t, "Compliance 95%", cleanRichTags("[bold][green]Compliance 95%[/green][/bold]"))
	assert.Equal(t, "plain", cleanRichTags("\x1b[31mplain\x1b[0m"))
}
