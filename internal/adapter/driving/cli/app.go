package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/diillson/aws-compliance-dashboard-go/internal/domain/entity"
	"github.com/diillson/aws-compliance-dashboard-go/internal/domain/repository"
	"github.com/diillson/aws-compliance-dashboard-go/internal/shared/types"
	"github.com/diillson/aws-compliance-dashboard-go/pkg/logging"
	"github.com/diillson/aws-compliance-dashboard-go/pkg/version"
)

// MockAggregatorName is used in --mock mode when no aggregator is configured.
const MockAggregatorName = "mock-aggregator"

// SnapshotRunner executes one snapshot run.
type SnapshotRunner interface {
	RunSnapshot(ctx context.Context, cfg types.Config) (*entity.RunResult, error)
}

// RunnerFactory builds the runner once the effective configuration is known.
type RunnerFactory func(ctx context.Context, cfg types.Config, mock bool) (SnapshotRunner, error)

// CLIApp represents the command-line interface application.
type CLIApp struct {
	rootCmd    *cobra.Command
	configRepo repository.ConfigRepository
	factory    RunnerFactory
	version    string
}

// NewCLIApp cria uma nova aplicação CLI.
func NewCLIApp(versionStr string, configRepo repository.ConfigRepository, factory RunnerFactory) *CLIApp {
	app := &CLIApp{
		version:    versionStr,
		configRepo: configRepo,
		factory:    factory,
	}

	// Obtem a versão formatada
	formattedVersion := version.FormatVersion()

	rootCmd := &cobra.Command{
		Use:           "aws-compliance",
		Short:         "AWS Config compliance snapshot for an AWS Organization",
		Version:       formattedVersion,
		RunE:          app.runCommand,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Personaliza a template para incluir mais informações de versão
	rootCmd.SetVersionTemplate(`{{printf "AWS Compliance Dashboard version: %s\n" .Version}}`)

	// Adiciona flags de linha de comando
	flags := rootCmd.PersistentFlags()
	flags.StringP("config-file", "C", "", "Path to a TOML, YAML, or JSON configuration file")
	flags.StringP("aggregator", "A", "", "Name of the AWS Config aggregator")
	flags.StringP("profile", "p", "", "AWS profile to use")
	flags.StringP("region", "r", "", "AWS region of the aggregator (default: us-east-1)")
	flags.StringSlice("accounts", nil, "Restrict the snapshot to these account ids (comma-separated)")
	flags.StringP("bucket", "b", "", "S3 bucket to publish the snapshot to (default: write to --dir)")
	flags.String("key-prefix", "", "Key prefix for the published documents")
	flags.IntP("workers", "w", 0, "Number of concurrent rule collectors (default: 8)")
	flags.Int("max-findings-per-rule", 0, "Stop paginating a rule after this many findings (0 = unlimited)")
	flags.Int("call-timeout", 0, "Timeout in seconds for each AWS call (default: 30)")
	flags.Int("max-attempts", 0, "Maximum attempts per AWS call, including retries (default: 5)")
	flags.Bool("pack-reports", true, "Publish one report per conformance pack")
	flags.Bool("first-pack-fallback", false, "Attribute unresolved rules to the account's first pack")
	flags.StringP("report-name", "n", "", "Base name for local report files (without extension)")
	flags.StringSliceP("report-type", "y", nil, "Local report types: csv, json, pdf")
	flags.StringP("dir", "d", "", "Directory for local reports and unpublished snapshots (default: current directory)")
	flags.String("schedule", "", "Cron expression; when set, runs repeatedly until interrupted")
	flags.String("pushgateway-url", "", "Prometheus Pushgateway URL for run metrics")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("log-format", "", "Log format: auto, console, json")
	flags.Bool("mock", false, "Use built-in sample data instead of AWS")

	app.rootCmd = rootCmd
	return app
}

// Execute runs the CLI application.
func (app *CLIApp) Execute(ctx context.Context) error {
	return app.rootCmd.ExecuteContext(ctx)
}

// SetArgs overrides the arguments parsed by Execute.
func (app *CLIApp) SetArgs(args []string) {
	app.rootCmd.SetArgs(args)
}

// parseArgs parses command-line arguments into a CLIArgs struct. Only
// flags set explicitly are carried over.
func (app *CLIApp) parseArgs(cmd *cobra.Command) (*types.CLIArgs, error) {
	flags := cmd.Flags()
	args := &types.CLIArgs{}

	args.ConfigFile, _ = flags.GetString("config-file")

	str := func(name string) *string {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetString(name)
		return &v
	}
	integer := func(name string) *int {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetInt(name)
		return &v
	}
	boolean := func(name string) *bool {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetBool(name)
		return &v
	}

	args.AggregatorName = str("aggregator")
	args.Profile = str("profile")
	args.Region = str("region")
	args.Accounts, _ = flags.GetStringSlice("accounts")
	args.Bucket = str("bucket")
	args.KeyPrefix = str("key-prefix")
	args.Workers = integer("workers")
	args.MaxFindingsPerRule = integer("max-findings-per-rule")
	args.CallTimeoutSeconds = integer("call-timeout")
	args.MaxAttempts = integer("max-attempts")
	args.PackReports = boolean("pack-reports")
	args.FirstPackFallback = boolean("first-pack-fallback")
	args.ReportName = str("report-name")
	args.ReportType, _ = flags.GetStringSlice("report-type")
	args.Schedule = str("schedule")
	args.PushgatewayURL = str("pushgateway-url")
	args.LogLevel = str("log-level")
	args.LogFormat = str("log-format")

	if dir := str("dir"); dir != nil {
		// Convert to absolute path
		absDir, err := filepath.Abs(*dir)
		if err != nil {
			return nil, err
		}
		args.Dir = &absDir
	}

	return args, nil
}

// loadConfig mescla defaults, arquivo de configuração e flags, nessa ordem.
func (app *CLIApp) loadConfig(args *types.CLIArgs) (types.Config, error) {
	cfg := types.DefaultConfig()
	if args.ConfigFile != "" {
		loaded, err := app.configRepo.LoadConfigFile(args.ConfigFile)
		if err != nil {
			return types.Config{}, err
		}
		cfg = *loaded
	}
	cfg = args.Apply(cfg)

	// Set default directory to current working directory if not specified
	if cfg.Dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return types.Config{}, err
		}
		cfg.Dir = cwd
	}
	return cfg, nil
}

// runCommand é o ponto de entrada principal para o comando CLI.
func (app *CLIApp) runCommand(cmd *cobra.Command, _ []string) error {
	// Exibe o banner de boas-vindas
	displayWelcomeBanner(app.version)

	// Verifica a versão mais recente disponível
	go version.CheckLatestVersion(app.version)

	// Analisa os argumentos da linha de comando
	cliArgs, err := app.parseArgs(cmd)
	if err != nil {
		return err
	}

	cfg, err := app.loadConfig(cliArgs)
	if err != nil {
		return err
	}

	mock, _ := cmd.Flags().GetBool("mock")
	if mock {
		if cfg.Bucket != "" {
			return types.ErrMockWithBucket
		}
		if cfg.AggregatorName == "" {
			cfg.AggregatorName = MockAggregatorName
		}
	}

	logger := logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	ctx := logger.WithContext(cmd.Context())

	if err := cfg.Validate(); err != nil {
		return err
	}

	runner, err := app.factory(ctx, cfg, mock)
	if err != nil {
		return err
	}

	if cfg.Schedule == "" {
		return app.runOnce(ctx, runner, cfg)
	}

	pterm.Info.Printfln("Running on schedule %q. Press Ctrl+C to stop.", cfg.Schedule)
	return runScheduled(ctx, cfg.Schedule, func(ctx context.Context) {
		if err := app.runOnce(ctx, runner, cfg); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("scheduled run failed")
		}
	})
}

func (app *CLIApp) runOnce(ctx context.Context, runner SnapshotRunner, cfg types.Config) error {
	res, err := runner.RunSnapshot(ctx, cfg)
	if err != nil {
		pterm.Error.Printfln("Snapshot failed: %s", err)
		return fmt.Errorf("snapshot run failed: %w", err)
	}
	pterm.Success.Println(res.Message)
	if res.PublishedLocation != "" {
		pterm.Info.Printfln("Snapshot published to %s", res.PublishedLocation)
	}
	return nil
}
