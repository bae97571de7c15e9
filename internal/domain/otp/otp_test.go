package otp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		msg  string
		want Category
	}{
		{"OTP expired", CategoryExpired},
		{"otp EXPIRED", CategoryExpired},
		{"Invalid code", CategoryInvalid},
		{"Incorrect OTP entered", CategoryInvalid},
		{"OTP not found", CategoryNotFound},
		{"Session lost, start over", CategoryNotFound},
		{"Invalid or expired OTP", CategoryExpired},
		{"", CategoryGeneric},
		{"database unavailable", CategoryGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.msg))
		})
	}
}

func TestCategoryMessage(t *testing.T) {
	assert.Contains(t, CategoryExpired.Message(), "expired")
	assert.Equal(t, CategoryGeneric.Message(), Category("weird").Message())
}

func TestMissingInputMessage(t *testing.T) {
	assert.Contains(t, MissingInputMessage(FlowLogin, "", "123456"), "expired")
	assert.Contains(t, MissingInputMessage(FlowRegistration, " ", ""), "registration")
	assert.Equal(t, MsgEnterCode, MissingInputMessage(FlowPasswordReset, "7", ""))
	assert.Empty(t, MissingInputMessage(FlowLogin, "7", "123456"))
}

func TestChallengeTransitions(t *testing.T) {
	c := Challenge{Flow: FlowLogin, State: StateNone}

	assert.Equal(t, StateNone, c.Issued("").State, "no id means no issue")
	assert.Equal(t, StateNone, c.Verified().State, "cannot verify before issue")

	c = c.Issued("99")
	assert.Equal(t, StateIssued, c.State)
	assert.Equal(t, "99", c.ID)

	failed := c.Failed(CategoryInvalid)
	assert.Equal(t, StateFailed, failed.State)
	assert.Equal(t, CategoryInvalid, failed.Category)
	assert.Equal(t, StateFailed, failed.Verified().State, "terminal")

	ok := c.Verified()
	assert.Equal(t, StateVerified, ok.State)
	assert.True(t, ok.State.Terminal())
}
