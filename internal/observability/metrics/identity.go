package metrics

import (
	"strings"
	"time"

	obserrors "github.com/target/attendance-gateway/internal/observability/errors"
	"github.com/target/attendance-gateway/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// IdentityCall captures one request to the identity service.
type IdentityCall struct {
	// Path is the request path, e.g. "/auth/login/verify-otp".
	Path string
	// Status is the HTTP status code, empty when no response arrived.
	Status   string
	Duration time.Duration
	Err      error
}

// EmitIdentityCall emits the request count and latency for an identity call.
func EmitIdentityCall(sink statsd.Sink, in IdentityCall) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"endpoint": Endpoint(in.Path),
		"result":   ResultSuccess,
	}
	if in.Status != "" {
		tags["status"] = in.Status
	}
	if in.Err != nil {
		tags["result"] = ResultError
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("identity.request", 1, tags)

	if in.Duration > 0 {
		sink.Timing("identity.duration", in.Duration, CloneTags(tags))
	}
}

// Endpoint turns a request path into a dotted metric tag value.
func Endpoint(path string) string {
	return strings.Trim(strings.ReplaceAll(path, "/", "."), ".")
}

// CloneTags creates a shallow copy of a tag map, filtering out empty keys.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		if k == "" {
			continue
		}
		out[k] = v
	}
	return out
}
