package upstream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecode(t *testing.T, raw string) Payload {
	t.Helper()
	p, err := Decode([]byte(raw))
	require.NoError(t, err)
	return p
}

func TestDecode(t *testing.T) {
	t.Run("object", func(t *testing.T) {
		p := mustDecode(t, `{"success":true}`)
		assert.True(t, p.Bool("success", false))
	})

	t.Run("non object is empty", func(t *testing.T) {
		for _, raw := range []string{`[]`, `null`, `"ok"`, `42`} {
			p, err := Decode([]byte(raw))
			require.NoError(t, err, raw)
			assert.Empty(t, p, raw)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		for _, raw := range []string{``, `{`, `<html>oops</html>`, `{"a":}`} {
			_, err := Decode([]byte(raw))
			assert.ErrorIs(t, err, ErrMalformed, raw)
		}
	})
}

func TestID_NumberAndStringAgree(t *testing.T) {
	fromNumber := mustDecode(t, `{"otp_id":12345}`)
	fromString := mustDecode(t, `{"otp_id":"12345"}`)

	assert.Equal(t, "12345", fromNumber.ID("otp_id"))
	assert.Equal(t, fromNumber.ID("otp_id"), fromString.ID("otp_id"))
}

func TestID_Edges(t *testing.T) {
	p := mustDecode(t, `{"a":" 77 ","b":1.5,"c":{"x":1},"d":null,"e":1.0e4,"big":9007199254740993}`)
	assert.Equal(t, "77", p.ID("a"))
	assert.Empty(t, p.ID("b"))
	assert.Empty(t, p.ID("c"))
	assert.Empty(t, p.ID("d"))
	assert.Empty(t, p.ID("missing"))
	assert.Equal(t, "10000", p.ID("e"))
	assert.Equal(t, "9007199254740993", p.ID("big"))
}

func TestBool(t *testing.T) {
	p := mustDecode(t, `{"t":true,"s":"true","one":1,"zero":"0","word":"maybe","obj":{}}`)
	assert.True(t, p.Bool("t", false))
	assert.True(t, p.Bool("s", false))
	assert.True(t, p.Bool("one", false))
	assert.False(t, p.Bool("zero", true))
	assert.True(t, p.Bool("word", true), "unrecognized text keeps default")
	assert.False(t, p.Bool("obj", false))
	assert.True(t, p.Bool("missing", true))
}

func TestString(t *testing.T) {
	p := mustDecode(t, `{"s":"hi","n":12,"b":false,"arr":[1]}`)
	assert.Equal(t, "hi", p.String("s", ""))
	assert.Equal(t, "12", p.String("n", ""))
	assert.Equal(t, "false", p.String("b", ""))
	assert.Equal(t, "def", p.String("arr", "def"))
	assert.Equal(t, "def", p.String("missing", "def"))
}

func TestNestedPaths(t *testing.T) {
	p := mustDecode(t, `{"user":{"role":"Teacher","user_id":9},"data":{"items":[{"id":"a1"}]}}`)
	assert.Equal(t, "Teacher", p.String("user.role", ""))
	assert.Equal(t, "9", p.ID("user.user_id"))
	assert.Equal(t, "a1", p.String("data.items[0].id", ""))
	assert.Empty(t, p.String("user.role.name", ""))
	assert.Empty(t, p.String("data.items[", ""), "invalid expression degrades to default")

	user := p.Object("user")
	assert.Equal(t, "Teacher", user.String("role", ""))
	assert.Empty(t, p.Object("nope"))
	assert.Empty(t, p.Object("user.role"))
}

func TestStrings(t *testing.T) {
	p := mustDecode(t, `{
		"list":["a","b",""],
		"fields":{"password":["too short","needs a digit"],"email":"taken"},
		"one":"single"
	}`)
	assert.Equal(t, []string{"a", "b"}, p.Strings("list"))
	assert.Equal(t, []string{"taken", "too short", "needs a digit"}, p.Strings("fields"))
	assert.Equal(t, []string{"single"}, p.Strings("one"))
	assert.Nil(t, p.Strings("missing"))
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "done", mustDecode(t, `{"message":" done "}`).Message("x"))
	assert.Equal(t, "x", mustDecode(t, `{"message":""}`).Message("x"))
	assert.Equal(t, "x", Payload(nil).Message("x"))
}

func TestSatisfies(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		rule Rule
		want bool
	}{
		{"success true", `{"success":true}`, RuleSuccess, true},
		{"success false", `{"success":false}`, RuleSuccess, false},
		{"success string", `{"success":"true"}`, RuleSuccess, true},
		{"success string false", `{"success":"false"}`, RuleSuccess, false},
		{"success missing", `{}`, RuleSuccess, false},
		{"status success", `{"status":"success"}`, RuleStatusSuccess, true},
		{"status error", `{"status":"error"}`, RuleStatusSuccess, false},
		{"status falls back to success", `{"success":true}`, RuleStatusSuccess, true},
		{"is_valid", `{"is_valid":true}`, RuleValid, true},
		{"valid alias", `{"valid":true}`, RuleValid, true},
		{"invalid", `{"is_valid":false,"errors":["x"]}`, RuleValid, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mustDecode(t, tt.raw).Satisfies(tt.rule))
		})
	}
}

func TestNilPayloadIsSafe(t *testing.T) {
	var p Payload
	assert.False(t, p.Has("x"))
	assert.Empty(t, p.ID("x"))
	assert.False(t, p.Satisfies(RuleSuccess))
	assert.Empty(t, p.String("x", ""))
}
