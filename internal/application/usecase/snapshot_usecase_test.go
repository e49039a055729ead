package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diillson/aws-compliance-dashboard-go/internal/domain/entity"
	"github.com/diillson/aws-compliance-dashboard-go/internal/mock"
	"github.com/diillson/aws-compliance-dashboard-go/internal/shared/types"
)

type quietConsole struct {
	mu       sync.Mutex
	warnings []string
	errors   []string
	buckets  []types.DistributionBucket
	progress int
}

func (c *quietConsole) Print(a ...interface{}) {}
func (c *quietConsole) Printf(format string, a ...interface{}) {}
func (c *quietConsole) Println(a ...interface{}) {}
func (c *quietConsole) LogInfo(format string, a ...interface{}) {}
func (c *quietConsole) LogSuccess(format string, a ...interface{}) {}

func (c *quietConsole) LogWarning(format string, a ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warnings = append(c.warnings, fmt.Sprintf(format, a...))
}

func (c *quietConsole) LogError(format string, a ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors = append(c.errors, fmt.Sprintf(format, a...))
}

func (c *quietConsole) Status(message string) types.StatusHandle { return noopHandle{} }

func (c *quietConsole) ProgressWithTotal(total int) types.ProgressHandle {
	return &countingProgress{console: c}
}

func (c *quietConsole) CreateTable() types.TableInterface { return &noopTable{} }

func (c *quietConsole) DisplayDistributionBars(buckets []types.DistributionBucket) {
	c.buckets = buckets
}

type noopHandle struct{}

func (noopHandle) Update(string) {}
func (noopHandle) Stop() {}

type countingProgress struct{ console *quietConsole }

func (p *countingProgress) Increment() {
	p.console.mu.Lock()
	defer p.console.mu.Unlock()
	p.console.progress++
}
func (p *countingProgress) Stop() {}

type noopTable struct{ rows int }

func (t *noopTable) AddColumn(string, ...interface{}) {}
func (t *noopTable) AddRow(...interface{}) { t.rows++ }
func (t *noopTable) Render() string { return "" }

type recordingPublisher struct {
	calls    int
	snapshot *entity.Snapshot
	reports  []entity.PackReport
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, s *entity.Snapshot, r []entity.PackReport) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	p.snapshot = s
	p.reports = r
	return "memory://data/compliance-summary.json", nil
}

type recordingMetrics struct {
	snapshots []*entity.Snapshot
	errs      []error
}

func (m *recordingMetrics) RecordRun(_ context.Context, s *entity.Snapshot, err error) error {
	m.snapshots = append(m.snapshots, s)
	m.errs = append(m.errs, err)
	return nil
}

type recordingExport struct {
	formats []string
	fail    string
}

func (e *recordingExport) export(format string) (string, error) {
	if format == e.fail {
		return "", errors.New("disk full")
	}
	e.formats = append(e.formats, format)
	return "/tmp/report." + format, nil
}

func (e *recordingExport) ExportSnapshotToJSON(*entity.Snapshot, string, string) (string, error) {
	return e.export("json")
}

func (e *recordingExport) ExportFindingsToCSV(*entity.Snapshot, string, string) (string, error) {
	return e.export("csv")
}

func (e *recordingExport) ExportSnapshotToPDF(*entity.Snapshot, string, string) (string, error) {
	return e.export("pdf")
}

func scenarioSource() *mock.ComplianceSource {
	src := mock.NewComplianceSource()
	src.AddAccount("A1", "alpha")
	src.AddAccount("A2", "beta")
	src.AddPack("A1", "CIS-pack", 9, 10)
	src.AddPack("A1", "NIST-pack", 10, 10)
	src.AddPack("A2", "APRA-pack", 4, 5)
	src.AddNonCompliantRule("A1", "us-east-1", "mfa-enabled-conformance-pack-abc123", 1)
	src.AddNonCompliantRule("A2", "us-east-1", "some-rule", 1)
	return src
}

func scenarioConfig() types.Config {
	cfg := types.DefaultConfig()
	cfg.AggregatorName = "org-aggregator"
	return cfg
}

type fixture struct {
	uc        *SnapshotUseCase
	publisher *recordingPublisher
	metrics   *recordingMetrics
	export    *recordingExport
	console   *quietConsole
}

func newFixture(src *mock.ComplianceSource) *fixture {
	f := &fixture{
		publisher: &recordingPublisher{},
		metrics:   &recordingMetrics{},
		export:    &recordingExport{},
		console:   &quietConsole{},
	}
	f.uc = NewSnapshotUseCase(src, f.publisher, f.export, f.metrics, f.console)

	clock := []time.Time{
		time.Date(2024, 5, 1, 15, 29, 47, 660000000, time.UTC),
		time.Date(2024, 5, 1, 15, 30, 0, 0, time.UTC),
	}
	calls := 0
	f.uc.now = func() time.Time {
		t := clock[calls%len(clock)]
		calls++
		return t
	}
	f.uc.newRunID = func() string { return "run-123" }
	return f
}

func TestRunSnapshot_EndToEndScenario(t *testing.T) {
	f := newFixture(scenarioSource())

	res, err := f.uc.RunSnapshot(context.Background(), scenarioConfig())
	require.NoError(t, err)

	assert.Equal(t, "run-123", res.RunID)
	assert.Equal(t, 2, res.Findings)
	assert.Equal(t, "memory://data/compliance-summary.json", res.PublishedLocation)
	assert.Contains(t, res.Message, "Data collection completed in 12.34 seconds")

	require.Equal(t, 1, f.publisher.calls)
	snap := f.publisher.snapshot
	assert.Equal(t, "2024-05-01T15:30:00Z", snap.LastUpdated)
	assert.Equal(t, "run-123", snap.RunID)

	byAccount := map[string]entity.Finding{}
	for _, finding := range snap.NonCompliantDetails {
		byAccount[finding.AccountID] = finding
	}
	require.NotNil(t, byAccount["A1"].ConformancePackName)
	assert.Equal(t, "CIS-pack", *byAccount["A1"].ConformancePackName)
	assert.Equal(t, entity.MethodKeywordCategory, byAccount["A1"].AttributionMethod)
	require.NotNil(t, byAccount["A2"].ConformancePackName)
	assert.Equal(t, "APRA-pack", *byAccount["A2"].ConformancePackName)
	assert.Equal(t, entity.MethodSolePackFallback, byAccount["A2"].AttributionMethod)

	org := snap.OrganizationCompliance
	assert.Equal(t, 2, org.TotalRules)
	assert.Equal(t, 2, org.NonCompliantRules)
	assert.Equal(t, 0.0, org.CompliancePercentage)

	assert.Len(t, f.publisher.reports, 2)
	require.Len(t, f.metrics.errs, 1)
	assert.NoError(t, f.metrics.errs[0])
	assert.Equal(t, 2, f.console.progress)
	assert.Len(t, f.console.buckets, 4)
}

func TestRunSnapshot_PackReportsDisabled(t *testing.T) {
	f := newFixture(scenarioSource())
	cfg := scenarioConfig()
	cfg.PackReports = false

	res, err := f.uc.RunSnapshot(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, res.PackReports)
	assert.Empty(t, f.publisher.reports)
}

func TestRunSnapshot_InvalidConfig(t *testing.T) {
	f := newFixture(scenarioSource())

	_, err := f.uc.RunSnapshot(context.Background(), types.DefaultConfig())
	require.ErrorIs(t, err, types.ErrMissingAggregator)
	assert.Zero(t, f.publisher.calls)
}

func TestRunSnapshot_InventoryFailureIsFatal(t *testing.T) {
	src := scenarioSource()
	src.Errors[mock.OpListAccounts] = errors.New("organizations unavailable")
	f := newFixture(src)

	_, err := f.uc.RunSnapshot(context.Background(), scenarioConfig())
	require.ErrorIs(t, err, types.ErrInventoryUnavailable)
	assert.Zero(t, f.publisher.calls)
	require.Len(t, f.metrics.errs, 1)
	assert.Error(t, f.metrics.errs[0])
}

func TestRunSnapshot_CanceledRunPublishesNothing(t *testing.T) {
	src := scenarioSource()
	src.Delay = time.Second
	f := newFixture(src)

	ctx, cancel := context.WithCancel(context.Background())
	f.uc.now = func() time.Time {
		cancel()
		return time.Now()
	}

	_, err := f.uc.RunSnapshot(ctx, scenarioConfig())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, f.publisher.calls)
}

func TestRunSnapshot_PublishFailure(t *testing.T) {
	f := newFixture(scenarioSource())
	f.publisher.err = fmt.Errorf("%w: bucket gone", types.ErrPublishFailed)

	res, err := f.uc.RunSnapshot(context.Background(), scenarioConfig())
	require.ErrorIs(t, err, types.ErrPublishFailed)
	assert.Nil(t, res)
	assert.Empty(t, f.export.formats)
	require.Len(t, f.metrics.errs, 1)
	assert.ErrorIs(t, f.metrics.errs[0], types.ErrPublishFailed)
}

func TestRunSnapshot_CollectorFailuresDegrade(t *testing.T) {
	src := scenarioSource()
	src.RuleErrors["some-rule"] = errors.New("throttled")
	f := newFixture(src)

	res, err := f.uc.RunSnapshot(context.Background(), scenarioConfig())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Placeholders)
	require.Len(t, f.publisher.snapshot.Degradations, 1)
	assert.Equal(t, entity.StageCollector, f.publisher.snapshot.Degradations[0].Stage)
}

func TestRunSnapshot_LocalExports(t *testing.T) {
	f := newFixture(scenarioSource())
	f.export.fail = "pdf"
	cfg := scenarioConfig()
	cfg.ReportType = []string{"json", "CSV", "pdf"}

	res, err := f.uc.RunSnapshot(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"json", "csv"}, f.export.formats)
	assert.Equal(t, []string{"/tmp/report.json", "/tmp/report.csv"}, res.ExportedFiles)
	require.Len(t, f.console.errors, 1)
	assert.Contains(t, f.console.errors[0], "PDF")
}

func TestRunSnapshot_RepeatedRunsProduceIdenticalRollups(t *testing.T) {
	src := mock.NewDemoSource()
	src.PageSize = 2
	src.Delay = time.Millisecond
	f := newFixture(src)

	cfg := scenarioConfig()
	cfg.Workers = 6

	encode := func(s *entity.Snapshot) map[string]string {
		out := map[string]string{}
		for name, v := range map[string]any{
			"accountCompliance":      s.AccountCompliance,
			"organizationCompliance": s.OrganizationCompliance,
			"statistics":             s.Statistics,
			"nonCompliantDetails":    s.NonCompliantDetails,
			"attributionTable":       s.AttributionTable,
		} {
			data, err := json.Marshal(v)
			require.NoError(t, err)
			out[name] = string(data)
		}
		return out
	}

	var runs []map[string]string
	for i := 0; i < 2; i++ {
		_, err := f.uc.RunSnapshot(context.Background(), cfg)
		require.NoError(t, err)
		require.NotNil(t, f.publisher.snapshot)
		runs = append(runs, encode(f.publisher.snapshot))
	}

	assert.Equal(t, runs[0], runs[1])
	assert.NotEqual(t, "null", runs[0]["nonCompliantDetails"])
}
