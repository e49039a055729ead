package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diillson/aws-compliance-dashboard-go/internal/adapter/driven/config"
	"github.com/diillson/aws-compliance-dashboard-go/internal/domain/entity"
	"github.com/diillson/aws-compliance-dashboard-go/internal/shared/types"
)

type stubRunner struct {
	cfgs []types.Config
	err  error
}

func (r *stubRunner) RunSnapshot(_ context.Context, cfg types.Config) (*entity.RunResult, error) {
	r.cfgs = append(r.cfgs, cfg)
	if r.err != nil {
		return nil, r.err
	}
	return &entity.RunResult{Message: "Data collection completed in 1.00 seconds"}, nil
}

func newTestApp(runner *stubRunner, mockSeen *bool) *CLIApp {
	return NewCLIApp("0.0.0-dev", config.NewConfigRepository(), func(_ context.Context, _ types.Config, mock bool) (SnapshotRunner, error) {
		if mockSeen != nil {
			*mockSeen = mock
		}
		return runner, nil
	})
}

func TestRunCommandFlagsOverrideConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
aggregator_name: from-file
workers: 3
bucket: file-bucket
pack_reports: true
`), 0644))

	runner := &stubRunner{}
	app := newTestApp(runner, nil)
	app.SetArgs([]string{
		"--config-file", cfgPath,
		"--aggregator", "from-flag",
		"--pack-reports=false",
		"--accounts", "111111111111,222222222222",
		"--dir", dir,
		"--log-level", "error",
	})

	require.NoError(t, app.Execute(context.Background()))
	require.Len(t, runner.cfgs, 1)

	cfg := runner.cfgs[0]
	assert.Equal(t, "from-flag", cfg.AggregatorName)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "file-bucket", cfg.Bucket)
	assert.False(t, cfg.PackReports)
	assert.Equal(t, []string{"111111111111", "222222222222"}, cfg.Accounts)
	assert.Equal(t, dir, cfg.Dir)
	assert.Equal(t, 30, cfg.CallTimeoutSeconds)
}

func TestRunCommandDefaultsWithoutFile(t *testing.T) {
	runner := &stubRunner{}
	app := newTestApp(runner, nil)
	app.SetArgs([]string{"-A", "agg", "--log-level", "error"})

	require.NoError(t, app.Execute(context.Background()))
	require.Len(t, runner.cfgs, 1)

	cfg := runner.cfgs[0]
	assert.Equal(t, types.DefaultConfig().Workers, cfg.Workers)
	assert.True(t, cfg.PackReports)
	cwd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, cwd, cfg.Dir)
}

func TestRunCommandMockModeDefaultsAggregator(t *testing.T) {
	runner := &stubRunner{}
	var mockSeen bool
	app := newTestApp(runner, &mockSeen)
	app.SetArgs([]string{"--mock", "--log-level", "error"})

	require.NoError(t, app.Execute(context.Background()))
	assert.True(t, mockSeen)
	require.Len(t, runner.cfgs, 1)
	assert.Equal(t, MockAggregatorName, runner.cfgs[0].AggregatorName)
}

func TestRunCommandMockModeRejectsBucket(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		setup func(t *testing.T) []string
	}{
		{name: "flag", args: []string{"--mock", "--bucket", "compliance-bucket"}},
		{name: "config file", setup: func(t *testing.T) []string {
			path := filepath.Join(t.TempDir(), "cfg.yaml")
			require.NoError(t, os.WriteFile(path, []byte("bucket: compliance-bucket\n"), 0644))
			return []string{"--mock", "--config-file", path}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := tt.args
			if tt.setup != nil {
				args = tt.setup(t)
			}
			runner := &stubRunner{}
			var mockSeen bool
			app := newTestApp(runner, &mockSeen)
			app.SetArgs(append(args, "--log-level", "error"))

			err := app.Execute(context.Background())
			require.ErrorIs(t, err, types.ErrMockWithBucket)
			assert.False(t, mockSeen)
			assert.Empty(t, runner.cfgs)
		})
	}
}

func TestRunCommandMissingAggregator(t *testing.T) {
	runner := &stubRunner{}
	app := newTestApp(runner, nil)
	app.SetArgs([]string{"--log-level", "error"})

	err := app.Execute(context.Background())
	require.ErrorIs(t, err, types.ErrMissingAggregator)
	assert.Empty(t, runner.cfgs)
}

func TestRunCommandRunFailure(t *testing.T) {
	runner := &stubRunner{err: types.ErrInventoryUnavailable}
	app := newTestApp(runner, nil)
	app.SetArgs([]string{"-A", "agg", "--log-level", "error"})

	err := app.Execute(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrInventoryUnavailable))
}

func TestRunCommandBadConfigFile(t *testing.T) {
	app := newTestApp(&stubRunner{}, nil)
	app.SetArgs([]string{"--config-file", filepath.Join(t.TempDir(), "missing.toml")})

	err := app.Execute(context.Background())
	assert.ErrorContains(t, err, "error accessing config file")
}
