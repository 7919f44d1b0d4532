// Package metrics holds shared tag conventions for StatsD emission.
package metrics

import (
	"time"

	obserrors "github.com/versetype/versetype-api/internal/observability/errors"
	"github.com/versetype/versetype-api/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
	// ResultRejected marks a well-formed request refused by business rules
	// (wrong code, expired code, invalid name).
	ResultRejected = "rejected"
)

// AuthMetric captures one auth operation outcome.
type AuthMetric struct {
	Operation string
	Result    string
	Reason    string
	Duration  time.Duration
	Err       error
}

// EmitAuthOperation emits standardised auth operation metrics.
func EmitAuthOperation(sink statsd.Sink, in AuthMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"operation": in.Operation,
		"result":    in.Result,
	}
	if in.Reason != "" {
		tags["reason"] = in.Reason
	}
	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("auth.operation", 1, tags)
	if in.Duration > 0 {
		sink.Timing("auth.operation_duration", in.Duration, CloneTags(tags))
	}
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
