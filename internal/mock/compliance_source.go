// Package mock provides an in-memory compliance source used by tests and by
// the CLI's --mock mode.
package mock

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/diillson/aws-compliance-dashboard-go/internal/domain/entity"
)

// Operation names used as keys of ComplianceSource.Errors.
const (
	OpCallerIdentity    = "caller_identity"
	OpListAccounts      = "list_accounts"
	OpPackSummary       = "pack_summary"
	OpPackDetails       = "pack_details"
	OpRuleCompliance    = "rule_compliance"
	OpRuleDetailsPage   = "rule_details"
	defaultPageSize     = 100
	defaultCallerAcctID = "000000000000"
)

// ComplianceSource is an in-memory implementation of
// repository.ComplianceRepository. Fields may be set directly before use;
// it is safe for concurrent use once configured.
type ComplianceSource struct {
	Accounts        []entity.Account
	Summaries       []entity.PackSummary
	Packs           []entity.ConformancePackRef
	Rules           []entity.RuleCompliance
	Evaluations     map[string][]entity.EvaluationResult
	CallerAccountID string

	// PageSize bounds the results of one rule details page.
	PageSize       int
	// Delay is applied to every rule details call.
	Delay          time.Duration
	// Errors fails a whole operation.
	Errors         map[string]error
	// RuleErrors fails every details call for a rule name.
	RuleErrors     map[string]error
	// FailAfterPages fails the details call of a rule after the given
	// number of successful pages.
	FailAfterPages map[string]int

	mu          sync.Mutex
	pagesServed map[string]int
	calls       map[string]int

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

// NewComplianceSource returns an empty source.
func NewComplianceSource() *ComplianceSource {
	return &ComplianceSource{
		Evaluations:     make(map[string][]entity.EvaluationResult),
		Errors:          make(map[string]error),
		RuleErrors:      make(map[string]error),
		FailAfterPages:  make(map[string]int),
		CallerAccountID: defaultCallerAcctID,
	}
}

// EvaluationKey identifies the evaluations of a rule in one account and region.
func EvaluationKey(accountID, region, ruleName string) string {
	return accountID + "|" + region + "|" + ruleName
}

// AddAccount registers an active account.
func (s *ComplianceSource) AddAccount(id, name string) {
	s.Accounts = append(s.Accounts, entity.Account{AccountID: id, AccountName: name, Status: "ACTIVE"})
}

// AddPack registers a conformance pack deployed to an account.
func (s *ComplianceSource) AddPack(accountID, packName string, compliant, total int) {
	complianceType := entity.ComplianceTypeCompliant
	if compliant < total {
		complianceType = entity.ComplianceTypeNonCompliant
	}
	s.Packs = append(s.Packs, entity.ConformancePackRef{
		ConformancePackName:   packName,
		AccountID:             accountID,
		AwsRegion:             "us-east-1",
		ComplianceType:        complianceType,
		CompliantRuleCount:    compliant,
		NonCompliantRuleCount: total - compliant,
		TotalRuleCount:        total,
	})
}

// AddCompliantRule registers a COMPLIANT rule.
func (s *ComplianceSource) AddCompliantRule(accountID, region, ruleName string) {
	s.Rules = append(s.Rules, entity.RuleCompliance{
		ConfigRuleName: ruleName,
		AccountID:      accountID,
		AwsRegion:      region,
		ComplianceType: entity.ComplianceTypeCompliant,
	})
}

// AddNonCompliantRule registers a NON_COMPLIANT rule with the given number
// of failing resources.
func (s *ComplianceSource) AddNonCompliantRule(accountID, region, ruleName string, resources int) {
	s.Rules = append(s.Rules, entity.RuleCompliance{
		ConfigRuleName: ruleName,
		AccountID:      accountID,
		AwsRegion:      region,
		ComplianceType: entity.ComplianceTypeNonCompliant,
	})

	recorded := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	results := make([]entity.EvaluationResult, 0, resources)
	for i := 0; i < resources; i++ {
		t := recorded.Add(time.Duration(i) * time.Minute)
		results = append(results, entity.EvaluationResult{
			ConfigRuleName:     ruleName,
			AccountID:          accountID,
			AwsRegion:          region,
			ResourceType:       "AWS::S3::Bucket",
			ResourceID:         fmt.Sprintf("%s-resource-%03d", ruleName, i),
			ComplianceType:     entity.ComplianceTypeNonCompliant,
			ResultRecordedTime: &t,
		})
	}
	s.Evaluations[EvaluationKey(accountID, region, ruleName)] = results
}

// MaxInFlight returns the highest number of concurrent rule details calls observed.
func (s *ComplianceSource) MaxInFlight() int {
	return int(s.maxInFlight.Load())
}

// Calls returns how many times an operation was invoked.
func (s *ComplianceSource) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *ComplianceSource) record(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[op]++
	return s.Errors[op]
}

// GetCallerAccountID implements repository.ComplianceRepository.
func (s *ComplianceSource) GetCallerAccountID(ctx context.Context) (string, error) {
	if err := s.record(OpCallerIdentity); err != nil {
		return "", err
	}
	return s.CallerAccountID, nil
}

// ListAccounts implements repository.ComplianceRepository.
func (s *ComplianceSource) ListAccounts(ctx context.Context) ([]entity.Account, error) {
	if err := s.record(OpListAccounts); err != nil {
		return nil, err
	}
	return append([]entity.Account(nil), s.Accounts...), nil
}

// GetConformancePackComplianceSummary implements repository.ComplianceRepository.
// When no summary rows were configured they are derived from the packs.
func (s *ComplianceSource) GetConformancePackComplianceSummary(ctx context.Context, aggregatorName string) ([]entity.PackSummary, error) {
	if err := s.record(OpPackSummary); err != nil {
		return nil, err
	}
	if s.Summaries != nil {
		return append([]entity.PackSummary(nil), s.Summaries...), nil
	}

	byAccount := make(map[string]*entity.PackSummary)
	var order []string
	for _, p := range s.Packs {
		row, ok := byAccount[p.AccountID]
		if !ok {
			row = &entity.PackSummary{GroupName: p.AccountID}
			byAccount[p.AccountID] = row
			order = append(order, p.AccountID)
		}
		if p.IsFullyCompliant() {
			row.CompliantPackCount++
		} else {
			row.NonCompliantPackCount++
		}
	}
	out := make([]entity.PackSummary, 0, len(order))
	for _, id := range order {
		out = append(out, *byAccount[id])
	}
	return out, nil
}

// DescribeConformancePackCompliance implements repository.ComplianceRepository.
func (s *ComplianceSource) DescribeConformancePackCompliance(ctx context.Context, aggregatorName string) ([]entity.ConformancePackRef, error) {
	if err := s.record(OpPackDetails); err != nil {
		return nil, err
	}
	return append([]entity.ConformancePackRef(nil), s.Packs...), nil
}

// DescribeRuleCompliance implements repository.ComplianceRepository.
func (s *ComplianceSource) DescribeRuleCompliance(ctx context.Context, aggregatorName string) ([]entity.RuleCompliance, error) {
	if err := s.record(OpRuleCompliance); err != nil {
		return nil, err
	}
	return append([]entity.RuleCompliance(nil), s.Rules...), nil
}

// GetRuleComplianceDetailsPage implements repository.ComplianceRepository.
// Next tokens are page offsets.
func (s *ComplianceSource) GetRuleComplianceDetailsPage(ctx context.Context, req entity.RuleDetailsRequest, nextToken string) (entity.EvaluationPage, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		current := s.maxInFlight.Load()
		if n <= current || s.maxInFlight.CompareAndSwap(current, n) {
			break
		}
	}

	if err := s.record(OpRuleDetailsPage); err != nil {
		return entity.EvaluationPage{}, err
	}

	if s.Delay > 0 {
		timer := time.NewTimer(s.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return entity.EvaluationPage{}, ctx.Err()
		case <-timer.C:
		}
	}

	if err, ok := s.RuleErrors[req.ConfigRuleName]; ok {
		return entity.EvaluationPage{}, err
	}

	key := EvaluationKey(req.AccountID, req.AwsRegion, req.ConfigRuleName)
	if limit, ok := s.FailAfterPages[req.ConfigRuleName]; ok {
		s.mu.Lock()
		served := s.pagesServed[key]
		if s.pagesServed == nil {
			s.pagesServed = make(map[string]int)
		}
		s.pagesServed[key] = served + 1
		s.mu.Unlock()
		if served >= limit {
			return entity.EvaluationPage{}, fmt.Errorf("simulated failure after %d pages", limit)
		}
	}

	pageSize := s.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	offset := 0
	if nextToken != "" {
		v, err := strconv.Atoi(nextToken)
		if err != nil {
			return entity.EvaluationPage{}, fmt.Errorf("invalid next token %q", nextToken)
		}
		offset = v
	}

	all := s.Evaluations[key]
	if offset > len(all) {
		offset = len(all)
	}
	end := offset + pageSize
	if end > len(all) {
		end = len(all)
	}

	page := entity.EvaluationPage{Results: append([]entity.EvaluationResult(nil), all[offset:end]...)}
	if end < len(all) {
		page.NextToken = strconv.Itoa(end)
	}
	return page, nil
}
