// Package collector fetches the evaluation results of every non-compliant
// rule with a bounded pool of workers.
package collector

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/diillson/aws-compliance-dashboard-go/internal/application/attribution"
	"github.com/diillson/aws-compliance-dashboard-go/internal/domain/entity"
	"github.com/diillson/aws-compliance-dashboard-go/internal/domain/repository"
	"github.com/diillson/aws-compliance-dashboard-go/internal/shared/types"
)

const (
	DefaultWorkers          = 8
	DefaultProgressInterval = 50
)

// Config controls the worker pool.
type Config struct {
	AggregatorName string
	Workers        int
	// CallTimeout bounds each page request. Zero disables the timeout.
	CallTimeout time.Duration
	// MaxFindingsPerRule stops pagination once a rule produced this many
	// findings. Zero means unlimited.
	MaxFindingsPerRule int
	ProgressInterval   int
	// Progress is called after each rule completes. Calls are serialized and
	// done grows by one per call.
	Progress func(done, total int)
}

// Result is the merged output of a collection run.
type Result struct {
	Findings                []entity.Finding
	Degradations            []entity.Degradation
	RulesProcessed          int
	Placeholders            int
	RulesWithoutEvaluations int
	CappedRules             int
}

// Collector drains rule evaluation details from the compliance source.
type Collector struct {
	source repository.ComplianceRepository
	cfg    Config
}

// New creates a Collector.
func New(source repository.ComplianceRepository, cfg Config) *Collector {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.ProgressInterval <= 0 {
		cfg.ProgressInterval = DefaultProgressInterval
	}
	return &Collector{source: source, cfg: cfg}
}

// ruleOutcome is the result slot owned by the worker of one rule.
type ruleOutcome struct {
	findings    []entity.Finding
	degradation *entity.Degradation
	empty       bool
	capped      bool
}

// Collect fetches the findings of the NON_COMPLIANT rules in rules. A
// failing rule yields a placeholder finding and never stops the pool.
// Cancellation of ctx fails the whole collection.
func (c *Collector) Collect(ctx context.Context, rules []entity.RuleCompliance, attributor attribution.Attributor) (*Result, error) {
	logger := zerolog.Ctx(ctx)

	targets := make([]entity.RuleCompliance, 0, len(rules))
	for _, r := range rules {
		if r.IsNonCompliant() {
			targets = append(targets, r)
		}
	}
	total := len(targets)
	outcomes := make([]ruleOutcome, total)

	logger.Info().Int("rules", total).Int("workers", c.cfg.Workers).Msg("collecting non-compliant findings")

	var (
		done       atomic.Int64
		progressMu sync.Mutex
	)
	// done is advanced under progressMu so Progress sees counts in order.
	advance := func() {
		progressMu.Lock()
		defer progressMu.Unlock()
		n := int(done.Add(1))
		if n%c.cfg.ProgressInterval == 0 || n == total {
			logger.Info().Int("processed", n).Int("total", total).Msg("collection progress")
		}
		if c.cfg.Progress != nil {
			c.cfg.Progress(n, total)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Workers)

	for i, rule := range targets {
		if ctx.Err() != nil {
			break
		}
		i, rule := i, rule
		g.Go(func() error {
			outcomes[i] = c.collectRule(gctx, rule, attributor)
			advance()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("collection interrupted after %d of %d rules: %w", done.Load(), total, err)
	}

	res := &Result{RulesProcessed: total}
	for _, o := range outcomes {
		res.Findings = append(res.Findings, o.findings...)
		if o.degradation != nil {
			res.Degradations = append(res.Degradations, *o.degradation)
			res.Placeholders++
		}
		if o.empty {
			res.RulesWithoutEvaluations++
		}
		if o.capped {
			res.CappedRules++
		}
	}
	SortFindings(res.Findings)

	logger.Info().
		Int("findings", len(res.Findings)).
		Int("placeholders", res.Placeholders).
		Int("rules_without_evaluations", res.RulesWithoutEvaluations).
		Int("capped_rules", res.CappedRules).
		Msg("collection finished")

	return res, nil
}

func (c *Collector) collectRule(ctx context.Context, rule entity.RuleCompliance, attributor attribution.Attributor) ruleOutcome {
	entry := attributor.Attribute(rule.AccountID, rule.ConfigRuleName)
	req := entity.RuleDetailsRequest{
		AggregatorName: c.cfg.AggregatorName,
		ConfigRuleName: rule.ConfigRuleName,
		AccountID:      rule.AccountID,
		AwsRegion:      rule.AwsRegion,
	}

	var out ruleOutcome
	token := ""
	seen := map[string]bool{}
	for {
		page, err := c.fetchPage(ctx, req, token)
		if err != nil {
			return degrade(ctx, rule, entry, out, err)
		}

		for _, r := range page.Results {
			if c.cfg.MaxFindingsPerRule > 0 && len(out.findings) >= c.cfg.MaxFindingsPerRule {
				out.capped = true
				return out
			}
			out.findings = append(out.findings, newFinding(rule, r, entry))
		}

		if page.NextToken == "" {
			break
		}
		if c.cfg.MaxFindingsPerRule > 0 && len(out.findings) >= c.cfg.MaxFindingsPerRule {
			out.capped = true
			return out
		}
		if seen[page.NextToken] {
			return degrade(ctx, rule, entry, out, fmt.Errorf("%w: %q", types.ErrRepeatedPageToken, page.NextToken))
		}
		seen[page.NextToken] = true
		token = page.NextToken
	}

	out.empty = len(out.findings) == 0
	return out
}

// degrade ends a rule with a placeholder finding, keeping what was already drained.
func degrade(ctx context.Context, rule entity.RuleCompliance, entry entity.AttributionEntry, out ruleOutcome, err error) ruleOutcome {
	kind := types.Classify(err)
	zerolog.Ctx(ctx).Warn().
		Err(err).
		Str("rule", rule.ConfigRuleName).
		Str("account", rule.AccountID).
		Str("kind", string(kind)).
		Int("kept_findings", len(out.findings)).
		Msg("rule details unavailable, emitting placeholder")

	out.findings = append(out.findings, placeholder(rule, entry, kind))
	out.degradation = &entity.Degradation{
		Stage:   entity.StageCollector,
		Target:  rule.AccountID + "/" + rule.AwsRegion + "/" + rule.ConfigRuleName,
		Kind:    string(kind),
		Message: err.Error(),
	}
	return out
}

func (c *Collector) fetchPage(ctx context.Context, req entity.RuleDetailsRequest, token string) (entity.EvaluationPage, error) {
	if c.cfg.CallTimeout <= 0 {
		return c.source.GetRuleComplianceDetailsPage(ctx, req, token)
	}
	callCtx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
	defer cancel()
	return c.source.GetRuleComplianceDetailsPage(callCtx, req, token)
}
