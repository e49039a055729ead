package repository

import (
	"context"

	"github.com/diillson/aws-compliance-dashboard-go/internal/domain/entity"
)

// ComplianceRepository defines the interface for the organization and
// AWS Config aggregator APIs. The list operations drain every page before
// returning; rule details are exposed page by page so callers control
// pagination and per-call timeouts.
type ComplianceRepository interface {
	// Identity
	GetCallerAccountID(ctx context.Context) (string, error)

	// Organization
	ListAccounts(ctx context.Context) ([]entity.Account, error)

	// Aggregator inventory
	GetConformancePackComplianceSummary(ctx context.Context, aggregatorName string) ([]entity.PackSummary, error)
	DescribeConformancePackCompliance(ctx context.Context, aggregatorName string) ([]entity.ConformancePackRef, error)
	DescribeRuleCompliance(ctx context.Context, aggregatorName string) ([]entity.RuleCompliance, error)

	// Rule evaluation details
	GetRuleComplianceDetailsPage(ctx context.Context, req entity.RuleDetailsRequest, nextToken string) (entity.EvaluationPage, error)
}
