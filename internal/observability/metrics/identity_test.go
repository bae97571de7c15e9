package metrics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	kind string
	name string
	tags map[string]string
}

type recordingSink struct {
	mu      sync.Mutex
	samples []sample
}

func (s *recordingSink) record(kind, name string, tags map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = append(s.samples, sample{kind: kind, name: name, tags: tags})
}

func (s *recordingSink) Count(name string, _ int64, tags map[string]string) {
	s.record("count", name, tags)
}

func (s *recordingSink) Gauge(name string, _ float64, tags map[string]string) {
	s.record("gauge", name, tags)
}

func (s *recordingSink) Timing(name string, _ time.Duration, tags map[string]string) {
	s.record("timing", name, tags)
}

func TestEmitIdentityCall_Success(t *testing.T) {
	sink := &recordingSink{}

	EmitIdentityCall(sink, IdentityCall{Path: "/auth/login/verify-otp", Status: "200", Duration: time.Millisecond})

	require.Len(t, sink.samples, 2)
	assert.Equal(t, "identity.request", sink.samples[0].name)
	assert.Equal(t, map[string]string{
		"endpoint": "auth.login.verify-otp",
		"result":   ResultSuccess,
		"status":   "200",
	}, sink.samples[0].tags)
	assert.Equal(t, "timing", sink.samples[1].kind)
}

func TestEmitIdentityCall_ErrorClass(t *testing.T) {
	sink := &recordingSink{}

	EmitIdentityCall(sink, IdentityCall{Path: "/auth/check-onboarding-status", Err: context.DeadlineExceeded})

	require.Len(t, sink.samples, 1)
	tags := sink.samples[0].tags
	assert.Equal(t, ResultError, tags["result"])
	assert.Equal(t, "timeout", tags["error_class"])
	assert.NotContains(t, tags, "status")
}

func TestEmitIdentityCall_NilSink(t *testing.T) {
	assert.NotPanics(t, func() { EmitIdentityCall(nil, IdentityCall{Path: "/x"}) })
}

func TestCloneTags(t *testing.T) {
	assert.Nil(t, CloneTags(nil))
	src := map[string]string{"a": "1", "": "x"}
	out := CloneTags(src)
	assert.Equal(t, map[string]string{"a": "1"}, out)
	out["a"] = "2"
	assert.Equal(t, "1", src["a"])
}
