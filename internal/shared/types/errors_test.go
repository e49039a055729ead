package types

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{name: "nil", err: nil, want: ""},
		{name: "deadline", err: fmt.Errorf("call: %w", context.DeadlineExceeded), want: KindTimeout},
		{name: "canceled", err: context.Canceled, want: KindCanceled},
		{name: "throttled", err: &smithy.GenericAPIError{Code: "ThrottlingException"}, want: KindThrottled},
		{name: "not found", err: &smithy.GenericAPIError{Code: "NoSuchConfigurationAggregatorException"}, want: KindNotFound},
		{name: "access denied", err: &smithy.GenericAPIError{Code: "AccessDeniedException"}, want: KindAccessDenied},
		{name: "other api", err: &smithy.GenericAPIError{Code: "InvalidParameterValueException"}, want: KindAPI},
		{name: "repeated page token", err: fmt.Errorf("%w: %q", ErrRepeatedPageToken, "t1"), want: KindPagination},
		{name: "unknown", err: errors.New("boom"), want: KindUnknown},
		{name: "already classified", err: fmt.Errorf("wrapped: %w", &SourceError{Kind: KindThrottled, Err: errors.New("x")}), want: KindThrottled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestSourceError(t *testing.T) {
	cause := &smithy.GenericAPIError{Code: "ThrottlingException", Message: "slow down"}
	err := NewSourceError("describe_rule_compliance", "org-aggregator", cause)

	assert.Equal(t, KindThrottled, err.Kind)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "describe_rule_compliance failed for org-aggregator (throttled)")

	var apiErr smithy.APIError
	assert.ErrorAs(t, err, &apiErr)

	assert.ErrorIs(t, err, ErrThrottled)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, fmt.Errorf("%w: %w", ErrInventoryUnavailable, NewSourceError("list_accounts", "", context.DeadlineExceeded)), ErrTimeout)

	noTarget := NewSourceError("list_accounts", "", errors.New("boom"))
	assert.Equal(t, "list_accounts failed (unknown): boom", noTarget.Error())
}
