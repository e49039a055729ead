package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/diillson/aws-compliance-dashboard-go/internal/application/aggregation"
	"github.com/diillson/aws-compliance-dashboard-go/internal/application/assembler"
	"github.com/diillson/aws-compliance-dashboard-go/internal/application/attribution"
	"github.com/diillson/aws-compliance-dashboard-go/internal/application/collector"
	"github.com/diillson/aws-compliance-dashboard-go/internal/application/inventory"
	"github.com/diillson/aws-compliance-dashboard-go/internal/application/remediation"
	"github.com/diillson/aws-compliance-dashboard-go/internal/domain/entity"
	"github.com/diillson/aws-compliance-dashboard-go/internal/domain/repository"
	"github.com/diillson/aws-compliance-dashboard-go/internal/shared/types"
	"github.com/diillson/aws-compliance-dashboard-go/pkg/console"
)

// SnapshotUseCase executa o pipeline do snapshot de compliance, do inventário à publicação.
type SnapshotUseCase struct {
	source     repository.ComplianceRepository
	publisher  repository.SnapshotPublisher
	exportRepo repository.ExportRepository
	metrics    repository.MetricsRepository
	console    types.ConsoleInterface
	catalog    *remediation.Catalog

	now      func() time.Time
	newRunID func() string
}

// NewSnapshotUseCase cria um novo caso de uso de snapshot. exportRepo e
// metrics podem ser nil.
func NewSnapshotUseCase(
	source repository.ComplianceRepository,
	publisher repository.SnapshotPublisher,
	exportRepo repository.ExportRepository,
	metrics repository.MetricsRepository,
	console types.ConsoleInterface,
) *SnapshotUseCase {
	return &SnapshotUseCase{
		source:     source,
		publisher:  publisher,
		exportRepo: exportRepo,
		metrics:    metrics,
		console:    console,
		catalog:    remediation.Default(),
		now:        time.Now,
		newRunID:   uuid.NewString,
	}
}

// RunSnapshot executa um ciclo completo de coleta e publicação.
// Nada é publicado quando a execução falha ou ctx é cancelado.
func (uc *SnapshotUseCase) RunSnapshot(ctx context.Context, cfg types.Config) (*entity.RunResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Identifica a execução em todos os logs
	runID := uc.newRunID()
	logger := zerolog.Ctx(ctx).With().
		Str("run_id", runID).
		Str("aggregator", cfg.AggregatorName).
		Logger()
	ctx = logger.WithContext(ctx)

	start := uc.now()
	logger.Info().Int("workers", cfg.Workers).Msg("snapshot run started")

	// Obtém o inventário do agregador
	status := uc.console.Status("Fetching compliance inventory from the aggregator...")
	inv, err := inventory.NewFetcher(uc.source, cfg.AggregatorName, cfg.Accounts).Fetch(ctx)
	status.Stop()
	if err != nil {
		return nil, uc.fail(ctx, err)
	}
	for _, d := range inv.Degradations {
		uc.console.LogWarning("Inventory degraded (%s): %s", d.Target, d.Message)
	}

	// Monta a tabela de atribuição regra -> conformance pack
	table := attribution.NewResolver(attribution.ConfigFromTypes(cfg.Attribution)).Build(inv.Packs, inv.Rules)
	entries := table.Entries()
	logger.Info().
		Int("entries", len(entries)).
		Int("suffix_mappings", len(table.SuffixMappings())).
		Msg("attribution table built")

	// Coleta os recursos não conformes de cada regra
	pending := inv.NonCompliantRules()
	var progress types.ProgressHandle
	if len(pending) > 0 {
		uc.console.LogInfo("Collecting non-compliant resources for %d rules...", len(pending))
		progress = uc.console.ProgressWithTotal(len(pending))
	}
	col := collector.New(uc.source, collector.Config{
		AggregatorName:     cfg.AggregatorName,
		Workers:            cfg.Workers,
		CallTimeout:        cfg.CallTimeout(),
		MaxFindingsPerRule: cfg.MaxFindingsPerRule,
		Progress: func(done, total int) {
			if progress != nil {
				progress.Increment()
			}
		},
	})
	result, err := col.Collect(ctx, inv.Rules, table)
	if progress != nil {
		progress.Stop()
	}
	if err != nil {
		return nil, uc.fail(ctx, err)
	}

	// Calcula os agregados por conta e da organização
	rollups := aggregation.Aggregate(aggregation.Input{
		Accounts:                inv.Accounts,
		Packs:                   inv.Packs,
		Rules:                   inv.Rules,
		Findings:                result.Findings,
		RulesWithoutEvaluations: result.RulesWithoutEvaluations,
		CappedRules:             result.CappedRules,
		InventoryDegradations:   len(inv.Degradations),
	})

	// Monta o documento consolidado e os relatórios por pack
	finished := uc.now()
	snapshot, packReports := assembler.New(uc.catalog, cfg.PackReports).Assemble(assembler.Input{
		RunID:       runID,
		GeneratedAt: finished,
		Duration:    finished.Sub(start),
		Inventory:   inv,
		Attribution: entries,
		Collection:  result,
		Rollups:     rollups,
	})

	if err := ctx.Err(); err != nil {
		return nil, uc.fail(ctx, fmt.Errorf("run interrupted before publishing: %w", err))
	}

	// Publica o snapshot
	location, err := uc.publisher.Publish(ctx, snapshot, packReports)
	if err != nil {
		return nil, uc.fail(ctx, err)
	}

	// Exibe o resumo e exporta os relatórios locais
	uc.displaySummary(snapshot)
	exported := uc.exportReports(snapshot, cfg)

	if uc.metrics != nil {
		if err := uc.metrics.RecordRun(ctx, snapshot, nil); err != nil {
			logger.Warn().Err(err).Msg("failed to record run metrics")
		}
	}

	res := &entity.RunResult{
		RunID:             runID,
		Duration:          finished.Sub(start),
		Findings:          len(snapshot.NonCompliantDetails),
		Placeholders:      snapshot.Statistics.PlaceholderFindings,
		Unattributed:      snapshot.Statistics.UnattributedFindings,
		PackReports:       len(packReports),
		PublishedLocation: location,
		ExportedFiles:     exported,
	}
	res.Message = fmt.Sprintf(
		"Data collection completed in %.2f seconds: %d findings across %d accounts (%d unattributed, %d placeholders), %d degradations",
		snapshot.ProcessingTimeSeconds, res.Findings, len(snapshot.AccountCompliance),
		res.Unattributed, res.Placeholders, len(snapshot.Degradations),
	)

	logger.Info().
		Float64("processing_seconds", snapshot.ProcessingTimeSeconds).
		Int("findings", res.Findings).
		Int("pack_reports", res.PackReports).
		Str("location", location).
		Msg("snapshot run completed")
	return res, nil
}

// fail registra a falha da execução nos logs e nas métricas.
func (uc *SnapshotUseCase) fail(ctx context.Context, err error) error {
	zerolog.Ctx(ctx).Error().Err(err).Str("kind", string(types.Classify(err))).Msg("snapshot run failed")
	if uc.metrics != nil {
		if mErr := uc.metrics.RecordRun(context.WithoutCancel(ctx), nil, err); mErr != nil {
			zerolog.Ctx(ctx).Warn().Err(mErr).Msg("failed to record run metrics")
		}
	}
	return err
}

// exportReports grava os relatórios locais solicitados. Falhas não abortam a execução.
func (uc *SnapshotUseCase) exportReports(snapshot *entity.Snapshot, cfg types.Config) []string {
	if uc.exportRepo == nil || len(cfg.ReportType) == 0 {
		return nil
	}

	var files []string
	for _, reportType := range cfg.ReportType {
		var (
			path string
			err  error
		)
		switch strings.ToLower(reportType) {
		case "json":
			path, err = uc.exportRepo.ExportSnapshotToJSON(snapshot, cfg.ReportName, cfg.Dir)
		case "csv":
			path, err = uc.exportRepo.ExportFindingsToCSV(snapshot, cfg.ReportName, cfg.Dir)
		case "pdf":
			path, err = uc.exportRepo.ExportSnapshotToPDF(snapshot, cfg.ReportName, cfg.Dir)
		default:
			continue
		}
		if err != nil {
			uc.console.LogError("Failed to export to %s: %s", strings.ToUpper(reportType), err)
			continue
		}
		uc.console.LogSuccess("Successfully exported to %s: %s", strings.ToUpper(reportType), path)
		files = append(files, path)
	}
	return files
}

// displaySummary exibe a tabela de contas e a distribuição de compliance.
func (uc *SnapshotUseCase) displaySummary(snapshot *entity.Snapshot) {
	table := uc.console.CreateTable()
	table.AddColumn("Account ID")
	table.AddColumn("Account Name")
	table.AddColumn("Compliance")
	table.AddColumn("Rules")
	table.AddColumn("Findings")
	table.AddColumn("Source")

	for _, acc := range snapshot.AccountCompliance {
		table.AddRow(
			acc.AccountID,
			acc.AccountName,
			console.FormatPercentage(acc.OverallCompliancePercentage),
			fmt.Sprintf("%d/%d", acc.TotalCompliant, acc.TotalRules),
			acc.Findings,
			acc.PercentageSource,
		)
	}
	uc.console.Println(table.Render())

	org := snapshot.OrganizationCompliance
	uc.console.LogInfo("Organization compliance: %s (%d/%d rules compliant)",
		console.FormatPercentage(org.CompliancePercentage), org.CompliantRules, org.TotalRules)

	dist := snapshot.Statistics.ComplianceDistribution
	uc.console.DisplayDistributionBars([]types.DistributionBucket{
		{Label: "Excellent (>=95%)", Accounts: dist.Excellent},
		{Label: "Good (>=80%)", Accounts: dist.Good},
		{Label: "Fair (>=60%)", Accounts: dist.Fair},
		{Label: "Poor (<60%)", Accounts: dist.Poor},
	})

	if n := len(snapshot.Degradations); n > 0 {
		uc.console.LogWarning("%d degradations were absorbed; see the degradations section of the snapshot", n)
	}
}
