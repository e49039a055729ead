package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/configservice"
	cfgTypes "github.com/aws/aws-sdk-go-v2/service/configservice/types"

	"github.com/diillson/aws-compliance-dashboard-go/internal/domain/entity"
	"github.com/diillson/aws-compliance-dashboard-go/internal/shared/types"
)

// GetConformancePackComplianceSummary drena o resumo de conformance packs agrupado por conta.
func (r *ComplianceRepositoryImpl) GetConformancePackComplianceSummary(ctx context.Context, aggregatorName string) ([]entity.PackSummary, error) {
	client, err := r.configService(ctx)
	if err != nil {
		return nil, err
	}

	var summaries []entity.PackSummary
	paginator := configservice.NewGetAggregateConformancePackComplianceSummaryPaginator(client,
		&configservice.GetAggregateConformancePackComplianceSummaryInput{
			ConfigurationAggregatorName: aws.String(aggregatorName),
			GroupByKey:                  cfgTypes.AggregateConformancePackComplianceSummaryGroupKeyAccountId,
		},
		func(o *configservice.GetAggregateConformancePackComplianceSummaryPaginatorOptions) {
			o.StopOnDuplicateToken = true
		})
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, types.NewSourceError("get_conformance_pack_compliance_summary", aggregatorName, err)
		}

		for _, s := range out.AggregateConformancePackComplianceSummaries {
			row := entity.PackSummary{GroupName: aws.ToString(s.GroupName)}
			if s.ComplianceSummary != nil {
				row.CompliantPackCount = int32Value(s.ComplianceSummary.CompliantConformancePackCount)
				row.NonCompliantPackCount = int32Value(s.ComplianceSummary.NonCompliantConformancePackCount)
			}
			summaries = append(summaries, row)
		}
	}
	return summaries, nil
}

// DescribeConformancePackCompliance drena a conformidade de cada conformance pack por conta e região.
func (r *ComplianceRepositoryImpl) DescribeConformancePackCompliance(ctx context.Context, aggregatorName string) ([]entity.ConformancePackRef, error) {
	client, err := r.configService(ctx)
	if err != nil {
		return nil, err
	}

	var packs []entity.ConformancePackRef
	paginator := configservice.NewDescribeAggregateComplianceByConformancePacksPaginator(client,
		&configservice.DescribeAggregateComplianceByConformancePacksInput{
			ConfigurationAggregatorName: aws.String(aggregatorName),
		},
		func(o *configservice.DescribeAggregateComplianceByConformancePacksPaginatorOptions) {
			o.StopOnDuplicateToken = true
		})
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, types.NewSourceError("describe_conformance_pack_compliance", aggregatorName, err)
		}

		for _, p := range out.AggregateComplianceByConformancePacks {
			ref := entity.ConformancePackRef{
				ConformancePackName: aws.ToString(p.ConformancePackName),
				AccountID:           aws.ToString(p.AccountId),
				AwsRegion:           aws.ToString(p.AwsRegion),
			}
			if c := p.Compliance; c != nil {
				ref.ComplianceType = string(c.ComplianceType)
				ref.CompliantRuleCount = int32Value(c.CompliantRuleCount)
				ref.NonCompliantRuleCount = int32Value(c.NonCompliantRuleCount)
				ref.TotalRuleCount = int32Value(c.TotalRuleCount)
			}
			packs = append(packs, ref)
		}
	}
	return packs, nil
}

// DescribeRuleCompliance drena o estado agregado de cada regra por conta e região.
func (r *ComplianceRepositoryImpl) DescribeRuleCompliance(ctx context.Context, aggregatorName string) ([]entity.RuleCompliance, error) {
	client, err := r.configService(ctx)
	if err != nil {
		return nil, err
	}

	var rules []entity.RuleCompliance
	paginator := configservice.NewDescribeAggregateComplianceByConfigRulesPaginator(client,
		&configservice.DescribeAggregateComplianceByConfigRulesInput{
			ConfigurationAggregatorName: aws.String(aggregatorName),
		},
		func(o *configservice.DescribeAggregateComplianceByConfigRulesPaginatorOptions) {
			o.StopOnDuplicateToken = true
		})
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, types.NewSourceError("describe_rule_compliance", aggregatorName, err)
		}

		for _, c := range out.AggregateComplianceByConfigRules {
			rule := entity.RuleCompliance{
				ConfigRuleName: aws.ToString(c.ConfigRuleName),
				AccountID:      aws.ToString(c.AccountId),
				AwsRegion:      aws.ToString(c.AwsRegion),
			}
			if c.Compliance != nil {
				rule.ComplianceType = string(c.Compliance.ComplianceType)
			}
			rules = append(rules, rule)
		}
	}
	return rules, nil
}

// GetRuleComplianceDetailsPage busca uma página de avaliações NON_COMPLIANT de uma regra.
func (r *ComplianceRepositoryImpl) GetRuleComplianceDetailsPage(ctx context.Context, req entity.RuleDetailsRequest, nextToken string) (entity.EvaluationPage, error) {
	client, err := r.configService(ctx)
	if err != nil {
		return entity.EvaluationPage{}, err
	}

	input := &configservice.GetAggregateComplianceDetailsByConfigRuleInput{
		ConfigurationAggregatorName: aws.String(req.AggregatorName),
		ConfigRuleName:              aws.String(req.ConfigRuleName),
		AccountId:                   aws.String(req.AccountID),
		AwsRegion:                   aws.String(req.AwsRegion),
		ComplianceType:              cfgTypes.ComplianceTypeNonCompliant,
	}
	if nextToken != "" {
		input.NextToken = aws.String(nextToken)
	}

	out, err := client.GetAggregateComplianceDetailsByConfigRule(ctx, input)
	if err != nil {
		return entity.EvaluationPage{}, types.NewSourceError("get_rule_compliance_details", req.AccountID+"/"+req.ConfigRuleName, err)
	}

	page := entity.EvaluationPage{
		Results:   make([]entity.EvaluationResult, 0, len(out.AggregateEvaluationResults)),
		NextToken: aws.ToString(out.NextToken),
	}
	for _, e := range out.AggregateEvaluationResults {
		result := entity.EvaluationResult{
			ConfigRuleName:     req.ConfigRuleName,
			AccountID:          aws.ToString(e.AccountId),
			AwsRegion:          aws.ToString(e.AwsRegion),
			ComplianceType:     string(e.ComplianceType),
			ResultRecordedTime: e.ResultRecordedTime,
			Annotation:         aws.ToString(e.Annotation),
		}
		if id := e.EvaluationResultIdentifier; id != nil && id.EvaluationResultQualifier != nil {
			q := id.EvaluationResultQualifier
			if name := aws.ToString(q.ConfigRuleName); name != "" {
				result.ConfigRuleName = name
			}
			result.ResourceType = aws.ToString(q.ResourceType)
			result.ResourceID = aws.ToString(q.ResourceId)
		}
		page.Results = append(page.Results, result)
	}
	return page, nil
}

// int32Value aceita tanto int32 quanto *int32, já que versões do SDK diferem.
func int32Value[T int32 | *int32](v T) int {
	switch n := any(v).(type) {
	case int32:
		return int(n)
	case *int32:
		if n == nil {
			return 0
		}
		return int(*n)
	}
	return 0
}
