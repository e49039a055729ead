package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/configservice"
	"github.com/aws/aws-sdk-go-v2/service/organizations"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// ConfigServiceAPI is the subset of the AWS Config client used by the repository.
type ConfigServiceAPI interface {
	GetAggregateConformancePackComplianceSummary(ctx context.Context, params *configservice.GetAggregateConformancePackComplianceSummaryInput, optFns ...func(*configservice.Options)) (*configservice.GetAggregateConformancePackComplianceSummaryOutput, error)
	DescribeAggregateComplianceByConformancePacks(ctx context.Context, params *configservice.DescribeAggregateComplianceByConformancePacksInput, optFns ...func(*configservice.Options)) (*configservice.DescribeAggregateComplianceByConformancePacksOutput, error)
	DescribeAggregateComplianceByConfigRules(ctx context.Context, params *configservice.DescribeAggregateComplianceByConfigRulesInput, optFns ...func(*configservice.Options)) (*configservice.DescribeAggregateComplianceByConfigRulesOutput, error)
	GetAggregateComplianceDetailsByConfigRule(ctx context.Context, params *configservice.GetAggregateComplianceDetailsByConfigRuleInput, optFns ...func(*configservice.Options)) (*configservice.GetAggregateComplianceDetailsByConfigRuleOutput, error)
}

// OrganizationsAPI is the subset of the Organizations client used by the repository.
type OrganizationsAPI interface {
	ListAccounts(ctx context.Context, params *organizations.ListAccountsInput, optFns ...func(*organizations.Options)) (*organizations.ListAccountsOutput, error)
}

// STSAPI is the subset of the STS client used by the repository.
type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

var (
	_ ConfigServiceAPI = (*configservice.Client)(nil)
	_ OrganizationsAPI = (*organizations.Client)(nil)
	_ STSAPI           = (*sts.Client)(nil)
)
