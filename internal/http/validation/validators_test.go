package validation

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const errEmailRequired = "Email is required."

func TestRequired(t *testing.T) {
	tests := []struct {
		name   string
		maxLen int
		value  string
		errMsg string
	}{
		{name: "valid input", maxLen: 10, value: "valid"},
		{name: "empty string", maxLen: 10, value: "", errMsg: "Name is required."},
		{name: "whitespace only", maxLen: 10, value: "   ", errMsg: "Name is required."},
		{name: "exceeds max length", maxLen: 5, value: "toolong", errMsg: "Name cannot exceed 5 characters."},
		{name: "exactly max length", maxLen: 5, value: "exact"},
		{name: "unicode characters within limit", maxLen: 5, value: "héllo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.errMsg, Required("Name", tt.maxLen)(tt.value))
		})
	}
}

func TestRequiredRange(t *testing.T) {
	v := RequiredRange("Password", 8, 12)
	assert.Equal(t, "Password is required.", v(""))
	assert.Equal(t, "Password must be between 8 and 12 characters.", v("short"))
	assert.Empty(t, v("longenough"))
}

func TestEmail(t *testing.T) {
	tests := []struct {
		value  string
		errMsg string
	}{
		{"ana@example.edu", ""},
		{"  ana@example.edu  ", ""},
		{"", errEmailRequired},
		{"not-an-email", "Please enter a valid email address."},
		{"Ana <ana@example.edu>", "Please enter a valid email address."},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.errMsg, Email("Email")(tt.value))
		})
	}
}

func TestPattern(t *testing.T) {
	digits := regexp.MustCompile(`^\d{6}$`)
	v := Pattern("Code", digits)
	assert.Empty(t, v(""), "empty passes")
	assert.Empty(t, v("123456"))
	assert.Equal(t, "Code has an invalid format.", v("12a456"))
}

func TestOptional(t *testing.T) {
	v := Optional("Department", 3)
	assert.Empty(t, v(""))
	assert.Empty(t, v("CS"))
	assert.Equal(t, "Department cannot exceed 3 characters.", v("Math"))
}

func TestMatches(t *testing.T) {
	v := Matches("Passwords do not match.", "secret-1")
	assert.Empty(t, v("secret-1"))
	assert.Equal(t, "Passwords do not match.", v("secret-2"))
}

func TestFaceImage(t *testing.T) {
	v := FaceImage(64)
	assert.Empty(t, v("data:image/png;base64,iVBORw0KGgo="))
	assert.Empty(t, v("data:image/jpeg;base64,/9j/4AAQ"))
	assert.Equal(t, "Please capture a photo of your face.", v(" "))
	assert.Equal(t, "The captured photo could not be read. Please try again.", v("hello"))
	assert.Equal(t, "The captured photo is too large. Please try again.",
		v("data:image/png;base64,"+strings.Repeat("A", 64)))
}

func TestFieldValidator(t *testing.T) {
	fv := New().
		Validate("email", "", Email("Email")).
		Validate("password", "pw", Required("Password", 64), RequiredRange("Password", 8, 64)).
		Validate("first_name", "Ana", Required("First name", 50))

	assert.False(t, fv.OK())
	assert.Equal(t, map[string]string{
		"email":    errEmailRequired,
		"password": "Password must be between 8 and 64 characters.",
	}, fv.Errors())
	assert.Equal(t, errEmailRequired, fv.First())

	assert.True(t, New().Validate("x", "y", Required("X", 5)).OK())
	assert.Empty(t, New().First())
}
