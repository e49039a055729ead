// Package inventory loads the organization's compliance inventory once per run.
package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/diillson/aws-compliance-dashboard-go/internal/domain/entity"
	"github.com/diillson/aws-compliance-dashboard-go/internal/domain/repository"
	"github.com/diillson/aws-compliance-dashboard-go/internal/shared/types"
)

// Fetcher drains the account list and the aggregator's compliance views.
type Fetcher struct {
	source         repository.ComplianceRepository
	aggregatorName string
	accounts       map[string]bool
}

// NewFetcher creates a Fetcher. A non-empty allowlist restricts the
// inventory to those account ids.
func NewFetcher(source repository.ComplianceRepository, aggregatorName string, allowlist []string) *Fetcher {
	f := &Fetcher{source: source, aggregatorName: aggregatorName}
	if len(allowlist) > 0 {
		f.accounts = make(map[string]bool, len(allowlist))
		for _, id := range allowlist {
			f.accounts[id] = true
		}
	}
	return f
}

// Fetch executa as quatro chamadas de inventário em ordem. A lista de contas e
// o resumo de packs são obrigatórios; detalhes de packs e compliance de regras
// viram coleções vazias e ficam registrados em Inventory.Degradations.
func (f *Fetcher) Fetch(ctx context.Context) (*entity.Inventory, error) {
	logger := zerolog.Ctx(ctx)
	inv := &entity.Inventory{AggregatorName: f.aggregatorName}

	// Conta coletora, apenas informativa
	if id, err := f.source.GetCallerAccountID(ctx); err != nil {
		logger.Debug().Err(err).Msg("could not resolve collector account id")
	} else {
		inv.CollectorAccountID = id
	}

	// Obtém as contas da organização
	accounts, err := f.source.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list accounts: %w", types.ErrInventoryUnavailable, err)
	}
	inv.Accounts = f.filterAccounts(accounts)
	logger.Info().Int("accounts", len(inv.Accounts)).Msg("organization accounts loaded")

	// Obtém o resumo de conformance packs por conta
	summaries, err := f.source.GetConformancePackComplianceSummary(ctx, f.aggregatorName)
	if err != nil {
		return nil, fmt.Errorf("%w: conformance pack summary: %w", types.ErrInventoryUnavailable, err)
	}
	inv.PackSummaries = f.filterSummaries(summaries)
	logger.Info().Int("groups", len(inv.PackSummaries)).Msg("conformance pack summary loaded")

	// Obtém os conformance packs por conta e região
	packs, err := f.source.DescribeConformancePackCompliance(ctx, f.aggregatorName)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		inv.Degradations = append(inv.Degradations, degrade("conformance_pack_details", err))
		logger.Warn().Err(err).Msg("conformance pack details unavailable, continuing without them")
		packs = nil
	}
	inv.Packs = f.filterPacks(packs)

	// Obtém o estado de cada regra
	rules, err := f.source.DescribeRuleCompliance(ctx, f.aggregatorName)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		inv.Degradations = append(inv.Degradations, degrade("rule_compliance", err))
		logger.Warn().Err(err).Msg("rule compliance unavailable, continuing without it")
		rules = nil
	}
	inv.Rules = f.filterRules(rules)

	totals := Totals(inv.Rules)
	logger.Info().
		Int("packs", len(inv.Packs)).
		Int("rules", totals.TotalRules).
		Int("non_compliant_rules", totals.NonCompliantRules).
		Float64("compliance_percentage", totals.CompliancePercentage).
		Int("degradations", len(inv.Degradations)).
		Msg("inventory loaded")

	return inv, nil
}

func degrade(target string, err error) entity.Degradation {
	return entity.Degradation{
		Stage:   entity.StageInventory,
		Target:  target,
		Kind:    string(types.Classify(err)),
		Message: err.Error(),
	}
}

func (f *Fetcher) allowed(accountID string) bool {
	return f.accounts == nil || f.accounts[accountID]
}

func (f *Fetcher) filterAccounts(in []entity.Account) []entity.Account {
	out := make([]entity.Account, 0, len(in))
	for _, a := range in {
		if f.allowed(a.AccountID) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })
	return out
}

func (f *Fetcher) filterSummaries(in []entity.PackSummary) []entity.PackSummary {
	out := make([]entity.PackSummary, 0, len(in))
	for _, s := range in {
		if f.allowed(s.GroupName) {
			out = append(out, s)
		}
	}
	return out
}

func (f *Fetcher) filterPacks(in []entity.ConformancePackRef) []entity.ConformancePackRef {
	out := make([]entity.ConformancePackRef, 0, len(in))
	for _, p := range in {
		if f.allowed(p.AccountID) {
			out = append(out, p)
		}
	}
	return out
}

func (f *Fetcher) filterRules(in []entity.RuleCompliance) []entity.RuleCompliance {
	out := make([]entity.RuleCompliance, 0, len(in))
	for _, r := range in {
		if f.allowed(r.AccountID) {
			out = append(out, r)
		}
	}
	return out
}
