package aws

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/configservice"
	"github.com/aws/aws-sdk-go-v2/service/organizations"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/diillson/aws-compliance-dashboard-go/internal/domain/entity"
	"github.com/diillson/aws-compliance-dashboard-go/internal/shared/types"
)

const (
	serviceConfig        = "configservice"
	serviceOrganizations = "organizations"
	serviceSTS           = "sts"
	serviceS3            = "s3"

	// Organizations é um serviço global servido a partir de us-east-1.
	organizationsRegion = "us-east-1"
)

// Options configura o acesso à AWS.
type Options struct {
	Profile     string
	Region      string
	MaxAttempts int
	MaxBackoff  time.Duration
}

// ComplianceRepositoryImpl implementa o ComplianceRepository com cache de clientes.
type ComplianceRepositoryImpl struct {
	opts        Options
	cfg         *aws.Config
	clientCache map[string]interface{}
	mu          sync.Mutex
}

// NewComplianceRepository cria uma nova implementação do ComplianceRepository.
// Os clientes são criados sob demanda na primeira chamada.
func NewComplianceRepository(opts Options) *ComplianceRepositoryImpl {
	return &ComplianceRepositoryImpl{
		opts:        opts,
		clientCache: make(map[string]interface{}),
	}
}

// NewComplianceRepositoryWithClients cria o repositório com clientes já construídos.
func NewComplianceRepositoryWithClients(cs ConfigServiceAPI, orgs OrganizationsAPI, identity STSAPI) *ComplianceRepositoryImpl {
	r := NewComplianceRepository(Options{})
	r.clientCache[serviceConfig] = cs
	r.clientCache[serviceOrganizations] = orgs
	r.clientCache[serviceSTS] = identity
	return r
}

func (r *ComplianceRepositoryImpl) getAWSConfig(ctx context.Context) (aws.Config, error) {
	if r.cfg != nil {
		return *r.cfg, nil
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRetryer(func() aws.Retryer {
			return retry.NewStandard(func(o *retry.StandardOptions) {
				if r.opts.MaxAttempts > 0 {
					o.MaxAttempts = r.opts.MaxAttempts
				}
				if r.opts.MaxBackoff > 0 {
					o.MaxBackoff = r.opts.MaxBackoff
				}
			})
		}),
	}
	if r.opts.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(r.opts.Profile))
	}
	if r.opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(r.opts.Region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config for profile %q: %w", r.opts.Profile, err)
	}

	r.cfg = &cfg
	return cfg, nil
}

func (r *ComplianceRepositoryImpl) getServiceClient(ctx context.Context, service string) (interface{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if client, ok := r.clientCache[service]; ok {
		return client, nil
	}

	cfg, err := r.getAWSConfig(ctx)
	if err != nil {
		return nil, err
	}
	regionalCfg := cfg.Copy()

	var client interface{}
	switch service {
	case serviceConfig:
		client = configservice.NewFromConfig(regionalCfg)
	case serviceOrganizations:
		regionalCfg.Region = organizationsRegion
		client = organizations.NewFromConfig(regionalCfg)
	case serviceSTS:
		client = sts.NewFromConfig(regionalCfg)
	case serviceS3:
		client = s3.NewFromConfig(regionalCfg)
	default:
		return nil, fmt.Errorf("unsupported service: %s", service)
	}

	r.clientCache[service] = client
	return client, nil
}

func (r *ComplianceRepositoryImpl) configService(ctx context.Context) (ConfigServiceAPI, error) {
	client, err := r.getServiceClient(ctx, serviceConfig)
	if err != nil {
		return nil, err
	}
	return client.(ConfigServiceAPI), nil
}

// S3Client retorna o cliente S3 usado pelo publicador do snapshot.
func (r *ComplianceRepositoryImpl) S3Client(ctx context.Context) (*s3.Client, error) {
	client, err := r.getServiceClient(ctx, serviceS3)
	if err != nil {
		return nil, err
	}
	return client.(*s3.Client), nil
}

// GetCallerAccountID retorna a conta das credenciais em uso.
func (r *ComplianceRepositoryImpl) GetCallerAccountID(ctx context.Context) (string, error) {
	client, err := r.getServiceClient(ctx, serviceSTS)
	if err != nil {
		return "", err
	}

	result, err := client.(STSAPI).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", types.NewSourceError("get_caller_identity", "", err)
	}
	return aws.ToString(result.Account), nil
}

// ListAccounts drena a listagem de contas da organização.
func (r *ComplianceRepositoryImpl) ListAccounts(ctx context.Context) ([]entity.Account, error) {
	client, err := r.getServiceClient(ctx, serviceOrganizations)
	if err != nil {
		return nil, err
	}

	var accounts []entity.Account
	paginator := organizations.NewListAccountsPaginator(client.(OrganizationsAPI), &organizations.ListAccountsInput{},
		func(o *organizations.ListAccountsPaginatorOptions) {
			o.StopOnDuplicateToken = true
		})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, types.NewSourceError("list_accounts", "", err)
		}
		for _, a := range page.Accounts {
			accounts = append(accounts, entity.Account{
				AccountID:   aws.ToString(a.Id),
				AccountName: aws.ToString(a.Name),
				Email:       aws.ToString(a.Email),
				Status:      string(a.Status),
			})
		}
	}
	return accounts, nil
}
