package mock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDemoSource(t *testing.T) {
	s := NewDemoSource()
	ctx := context.Background()

	accounts, err := s.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 3)

	packs, err := s.DescribeConformancePackCompliance(ctx, "demo")
	require.NoError(t, err)
	assert.Len(t, packs, 6)

	rules, err := s.DescribeRuleCompliance(ctx, "demo")
	require.NoError(t, err)
	nonCompliant := 0
	for _, r := range rules {
		if r.IsNonCompliant() {
			nonCompliant++
		}
	}
	assert.Equal(t, 8, nonCompliant)
}
