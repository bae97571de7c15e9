package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	assert.Equal(t, "bad input", Validation("bad input").Error())
	assert.Equal(t, "identity call failed: dial tcp: refused",
		Upstream(errors.New("dial tcp: refused"), "identity call failed").Error())
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(cause, ErrCodeInternal, "wrapped")
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "nothing"))
}

func TestIsHelpersSeeThroughWrapping(t *testing.T) {
	base := Upstream(errors.New("timeout"), "identity unavailable")
	wrapped := fmt.Errorf("send login otp: %w", base)

	assert.True(t, IsUpstream(wrapped))
	assert.True(t, IsUpstream(UpstreamMalformed(errors.New("eof"), "bad body")))
	assert.False(t, IsValidation(wrapped))
	assert.Equal(t, ErrCodeUpstream, GetCode(wrapped))
	assert.Equal(t, ErrorCode(""), GetCode(errors.New("plain")))
}

func TestGetField(t *testing.T) {
	assert.Equal(t, "email", GetField(ValidationField("email", "Email is required.")))
	assert.Empty(t, GetField(Validation("x")))
	assert.Empty(t, GetField(errors.New("plain")))
}

func TestPublicMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation exposed", ValidationField("email", "Email is required."), "Email is required."},
		{"unauthorized exposed", Unauthorized("Please sign in."), "Please sign in."},
		{"upstream hidden", Upstream(errors.New("connection reset by peer"), "raw detail"), "fallback"},
		{"internal hidden", Internal("stack trace"), "fallback"},
		{"plain error hidden", errors.New("sql: broken"), "fallback"},
		{"nil", nil, "fallback"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PublicMessage(tt.err, "fallback"))
		})
	}
}
