// Package otp models one-time-passcode challenges and the classification of
// verification failures reported by the identity service.
package otp

import "strings"

// Flow scopes a challenge to exactly one workflow.
type Flow string

const (
	FlowRegistration  Flow = "registration"
	FlowLogin         Flow = "login"
	FlowPasswordReset Flow = "password_reset"
)

// State is the lifecycle position of a challenge as observed by the gateway.
// The identity service owns the real state; the gateway only moves forward.
type State string

const (
	StateNone     State = "none"
	StateIssued   State = "issued"
	StateVerified State = "verified"
	StateFailed   State = "failed"
)

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool { return s == StateVerified || s == StateFailed }

// Category is the user-facing class of a verification failure.
type Category string

const (
	CategoryNone     Category = ""
	CategoryExpired  Category = "expired"
	CategoryInvalid  Category = "invalid"
	CategoryNotFound Category = "not_found"
	CategoryGeneric  Category = "generic_failure"
)

type rule struct {
	category Category
	needles  []string
}

// rules are evaluated in order; the first rule with a matching needle wins.
var rules = []rule{
	{CategoryExpired, []string{"expired"}},
	{CategoryInvalid, []string{"invalid", "incorrect", "wrong", "mismatch"}},
	{CategoryNotFound, []string{"not found", "does not exist", "no pending", "session"}},
}

// Classify maps an upstream failure message onto a Category using a
// case-insensitive substring match. Unmatched text is CategoryGeneric.
func Classify(message string) Category {
	m := strings.ToLower(message)
	for _, r := range rules {
		for _, n := range r.needles {
			if strings.Contains(m, n) {
				return r.category
			}
		}
	}
	return CategoryGeneric
}

var categoryMessages = map[Category]string{
	CategoryExpired:  "Your verification code has expired. Please request a new one.",
	CategoryInvalid:  "The verification code is incorrect. Please check it and try again.",
	CategoryNotFound: "Your verification session could not be found. Please request a new code.",
	CategoryGeneric:  "Verification failed. Please try again.",
}

// Message returns the fixed caller-facing text for c.
func (c Category) Message() string {
	if m, ok := categoryMessages[c]; ok {
		return m
	}
	return categoryMessages[CategoryGeneric]
}

// Fixed caller-facing texts shared by all flows.
const (
	MsgIssueFailed = "We could not send a verification code. Please try again."
	MsgCodeSent    = "A verification code has been sent to your email."
	MsgEnterCode   = "Please enter the verification code."
)

var sessionExpiredMessages = map[Flow]string{
	FlowRegistration:  "Your registration session has expired. Please request a new code.",
	FlowLogin:         "Your login session has expired. Please sign in again.",
	FlowPasswordReset: "Your password reset session has expired. Please request a new code.",
}

// MissingInputMessage returns the local rejection text for a verify call with
// an empty challenge id or code, or "" when both are present.
func MissingInputMessage(f Flow, otpID, code string) string {
	if strings.TrimSpace(otpID) == "" {
		if m, ok := sessionExpiredMessages[f]; ok {
			return m
		}
		return "OTP session expired. Please request a new code."
	}
	if strings.TrimSpace(code) == "" {
		return MsgEnterCode
	}
	return ""
}

// Challenge is the gateway's view of one OTP challenge. Only the identifier
// and the observed state are kept; the code and its expiry live upstream.
type Challenge struct {
	Flow     Flow
	ID       string
	State    State
	Category Category
}

// Issued records a successful issue.
func (c Challenge) Issued(id string) Challenge {
	if c.State.Terminal() || id == "" {
		return c
	}
	c.ID, c.State = id, StateIssued
	return c
}

// Verified records a successful verification.
func (c Challenge) Verified() Challenge {
	if c.State != StateIssued {
		return c
	}
	c.State, c.Category = StateVerified, CategoryNone
	return c
}

// Failed records a classified verification failure.
func (c Challenge) Failed(cat Category) Challenge {
	if c.State != StateIssued {
		return c
	}
	c.State, c.Category = StateFailed, cat
	return c
}
