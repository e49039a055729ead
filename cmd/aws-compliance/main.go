package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/diillson/aws-compliance-dashboard-go/internal/adapter/driven/aws"
	"github.com/diillson/aws-compliance-dashboard-go/internal/adapter/driven/config"
	"github.com/diillson/aws-compliance-dashboard-go/internal/adapter/driven/export"
	"github.com/diillson/aws-compliance-dashboard-go/internal/adapter/driven/metrics"
	"github.com/diillson/aws-compliance-dashboard-go/internal/adapter/driving/cli"
	"github.com/diillson/aws-compliance-dashboard-go/internal/application/usecase"
	"github.com/diillson/aws-compliance-dashboard-go/internal/domain/repository"
	"github.com/diillson/aws-compliance-dashboard-go/internal/mock"
	"github.com/diillson/aws-compliance-dashboard-go/internal/shared/types"
	"github.com/diillson/aws-compliance-dashboard-go/pkg/console"
	"github.com/diillson/aws-compliance-dashboard-go/pkg/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Inicializa o aplicativo CLI
	app := cli.NewCLIApp(version.Version, config.NewConfigRepository(), buildRunner)

	// Executa o aplicativo
	if err := app.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// buildRunner inicializa os repositórios e o caso de uso para a configuração efetiva.
func buildRunner(ctx context.Context, cfg types.Config, mockMode bool) (cli.SnapshotRunner, error) {
	var (
		source  repository.ComplianceRepository
		awsRepo *aws.ComplianceRepositoryImpl
	)
	if mockMode {
		source = mock.NewDemoSource()
	} else {
		awsRepo = aws.NewComplianceRepository(aws.Options{
			Profile:     cfg.Profile,
			Region:      cfg.Region,
			MaxAttempts: cfg.MaxAttempts,
			MaxBackoff:  cfg.MaxBackoff(),
		})
		source = awsRepo
	}

	var publisher repository.SnapshotPublisher
	if cfg.Bucket != "" {
		client, err := awsRepo.S3Client(ctx)
		if err != nil {
			return nil, err
		}
		publisher = export.NewS3Publisher(client, cfg.Bucket, cfg.KeyPrefix)
	} else {
		publisher = export.NewDirPublisher(filepath.Join(cfg.Dir, cfg.KeyPrefix))
	}

	return usecase.NewSnapshotUseCase(
		source,
		publisher,
		export.NewExportRepository(),
		metrics.NewPrometheusRepository(cfg.PushgatewayURL),
		console.NewConsole(),
	), nil
}
