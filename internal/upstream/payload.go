// Package upstream normalizes untyped JSON payloads returned by the identity
// service into typed values.
//
// Every accessor takes a default and never panics: fields may be missing,
// carry the wrong type, or arrive as a numeric string instead of a number.
// Only an unparsable body is reported as an error (ErrMalformed).
package upstream

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	jmespath "github.com/jmespath-community/go-jmespath"
)

// ErrMalformed reports a response body that is not valid JSON.
var ErrMalformed = errors.New("upstream: malformed response")

// Payload is a decoded JSON object.
type Payload map[string]any

// Decode parses raw into a Payload. Numbers are kept as json.Number so large
// identifiers survive intact. A valid JSON value that is not an object yields
// an empty payload rather than an error.
func Decode(raw []byte) (Payload, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if obj, ok := v.(map[string]any); ok {
		return Payload(obj), nil
	}
	return Payload{}, nil
}

// Value returns the raw value at path. A path is either a dot-separated key
// path ("user.role") or any JMESPath expression ("data.items[0].id").
func (p Payload) Value(path string) (any, bool) {
	if p == nil || path == "" {
		return nil, false
	}
	if isKeyPath(path) {
		return walk(map[string]any(p), path)
	}
	expr, err := compile(path)
	if err != nil {
		return nil, false
	}
	v, err := expr.Search(map[string]any(p))
	if err != nil || v == nil {
		return nil, false
	}
	return v, true
}

// Has reports whether path resolves to a non-null value.
func (p Payload) Has(path string) bool {
	_, ok := p.Value(path)
	return ok
}

// String returns the value at path as a string. Numbers and booleans are
// formatted; objects, arrays and missing values yield def.
func (p Payload) String(path, def string) string {
	v, ok := p.Value(path)
	if !ok {
		return def
	}
	if s, ok := scalarString(v); ok {
		return s
	}
	return def
}

// Bool returns the value at path as a boolean, accepting native booleans,
// numbers (non-zero is true) and common textual forms.
func (p Payload) Bool(path string, def bool) bool {
	v, ok := p.Value(path)
	if !ok {
		return def
	}
	if b, ok := toBool(v); ok {
		return b
	}
	return def
}

// ID returns an identifier at path normalized to its string form, so 12345
// and "12345" yield the same value. Missing or non-scalar values yield "".
func (p Payload) ID(path string) string {
	v, ok := p.Value(path)
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	if n, ok := toInt(v); ok {
		return strconv.FormatInt(n, 10)
	}
	return ""
}

// Object returns the nested object at path, or an empty payload.
func (p Payload) Object(path string) Payload {
	v, ok := p.Value(path)
	if !ok {
		return Payload{}
	}
	switch m := v.(type) {
	case map[string]any:
		return Payload(m)
	case Payload:
		return m
	default:
		return Payload{}
	}
}

// Strings collects messages at path. Arrays of scalars, objects of
// field -> message (or field -> [messages]) and single strings are accepted.
func (p Payload) Strings(path string) []string {
	v, ok := p.Value(path)
	if !ok {
		return nil
	}
	var out []string
	collectStrings(v, &out)
	return out
}

// Message is shorthand for the conventional "message" field.
func (p Payload) Message(def string) string {
	if m := strings.TrimSpace(p.String("message", "")); m != "" {
		return m
	}
	return def
}

// Rule is a compiled JMESPath expression whose truthiness decides success.
type Rule struct {
	src  string
	expr jmespath.JMESPath
}

// MustRule compiles expr or panics. Intended for package-level rule tables.
func MustRule(expr string) Rule {
	c, err := jmespath.Compile(expr)
	if err != nil {
		panic(fmt.Sprintf("upstream: compile rule %q: %v", expr, err))
	}
	return Rule{src: expr, expr: c}
}

// String returns the rule source.
func (r Rule) String() string { return r.src }

// Common success rules. Flows name their success flag differently.
var (
	RuleSuccess       = MustRule("success")
	RuleStatusSuccess = MustRule("status == 'success' || success")
	RuleValid         = MustRule("is_valid || valid")
)

// Satisfies evaluates r against the payload. Evaluation errors count as false.
func (p Payload) Satisfies(r Rule) bool {
	if p == nil || r.expr == nil {
		return false
	}
	v, err := r.expr.Search(map[string]any(p))
	if err != nil {
		return false
	}
	b, ok := toBool(v)
	return ok && b
}

var exprCache sync.Map // string -> jmespath.JMESPath

func compile(path string) (jmespath.JMESPath, error) {
	if c, ok := exprCache.Load(path); ok {
		return c.(jmespath.JMESPath), nil
	}
	c, err := jmespath.Compile(path)
	if err != nil {
		return nil, err
	}
	exprCache.Store(path, c)
	return c, nil
}

func isKeyPath(path string) bool {
	for _, r := range path {
		switch {
		case r == '.' || r == '_' || r == '-':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return !strings.HasPrefix(path, ".") && !strings.HasSuffix(path, ".")
}

// walk resolves a dot-separated key path.
func walk(root map[string]any, path string) (any, bool) {
	var current any = root
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, current != nil
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

func toBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case json.Number:
		f, err := t.Float64()
		return f != 0, err == nil
	case float64:
		return t != 0, true
	case int:
		return t != 0, true
	case int64:
		return t != 0, true
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1", "yes", "y", "on", "success", "ok":
			return true, true
		case "false", "0", "no", "n", "off", "", "error", "failed", "failure":
			return false, true
		}
	}
	return false, false
}

func toInt(v any) (int64, bool) {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, true
		}
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return integral(f)
	case float64:
		return integral(t)
	case int:
		return int64(t), true
	case int64:
		return t, true
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return integral(f)
		}
	}
	return 0, false
}

func integral(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

func collectStrings(v any, out *[]string) {
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			collectStrings(item, out)
		}
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			collectStrings(t[k], out)
		}
	default:
		if s, ok := scalarString(t); ok && strings.TrimSpace(s) != "" {
			*out = append(*out, s)
		}
	}
}
