package types

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

var (
	ErrMissingAggregator    = errors.New("no Config aggregator name provided. Use --aggregator or set aggregator_name in the config file")
	ErrInvalidConfig        = errors.New("invalid configuration")
	ErrInventoryUnavailable = errors.New("compliance inventory unavailable")
	ErrPublishFailed        = errors.New("failed to publish compliance snapshot")
	ErrRepeatedPageToken    = errors.New("source returned an already used pagination token")
	ErrMockWithBucket       = errors.New("--mock writes demo data locally and cannot publish to a bucket; drop --bucket or the bucket setting")

	// Kind sentinels matched by SourceError.Is.
	ErrThrottled    = errors.New("throttled")
	ErrNotFound     = errors.New("not found")
	ErrAccessDenied = errors.New("access denied")
	ErrTimeout      = errors.New("timeout")
)

// ErrorKind classifies failures of calls to the compliance source.
type ErrorKind string

const (
	KindTimeout      ErrorKind = "timeout"
	KindThrottled    ErrorKind = "throttled"
	KindNotFound     ErrorKind = "not_found"
	KindAccessDenied ErrorKind = "access_denied"
	KindCanceled     ErrorKind = "canceled"
	KindPagination   ErrorKind = "pagination"
	KindAPI          ErrorKind = "api"
	KindUnknown      ErrorKind = "unknown"
)

// SourceError is a classified failure of a call to the compliance source.
type SourceError struct {
	Op     string // operation that failed, e.g. "describe_rule_compliance"
	Target string // rule, account or aggregator the call was about
	Kind   ErrorKind
	Err    error
}

func (e *SourceError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("%s failed for %s (%s): %v", e.Op, e.Target, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s failed (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for the kind sentinels.
func (e *SourceError) Is(target error) bool {
	switch target {
	case ErrThrottled:
		return e.Kind == KindThrottled
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrAccessDenied:
		return e.Kind == KindAccessDenied
	case ErrTimeout:
		return e.Kind == KindTimeout
	}
	return false
}

// NewSourceError wraps err with its classification.
func NewSourceError(op, target string, err error) *SourceError {
	return &SourceError{Op: op, Target: target, Kind: Classify(err), Err: err}
}

// Classify maps an error returned by the AWS SDK (or a context) to an ErrorKind.
func Classify(err error) ErrorKind {
	if err == nil {
		return ""
	}

	var se *SourceError
	if errors.As(err, &se) {
		return se.Kind
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, context.Canceled):
		return KindCanceled
	case errors.Is(err, ErrRepeatedPageToken):
		return KindPagination
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ThrottlingException", "Throttling", "TooManyRequestsException", "RequestLimitExceeded":
			return KindThrottled
		case "NoSuchConfigurationAggregatorException", "NoSuchConfigRuleException",
			"NoSuchConformancePackException", "ResourceNotFoundException", "NoSuchBucket":
			return KindNotFound
		case "AccessDeniedException", "AccessDenied", "AWSOrganizationsNotInUseException":
			return KindAccessDenied
		case "RequestTimeout", "RequestTimeoutException":
			return KindTimeout
		}
		return KindAPI
	}
	return KindUnknown
}
