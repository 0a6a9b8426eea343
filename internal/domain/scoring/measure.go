package scoring

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Measure is an optional numeric input. The zero value is missing.
type Measure struct {
	v  float64
	ok bool
}

// M wraps a present value. NaN and infinities are treated as missing.
func M(v float64) Measure {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Measure{}
	}
	return Measure{v: v, ok: true}
}

// Missing is the absent Measure.
var Missing = Measure{}

// Value returns the number and whether it is present.
func (m Measure) Value() (float64, bool) { return m.v, m.ok }

// Positive returns the number when present and strictly greater than zero.
func (m Measure) Positive() (float64, bool) {
	if !m.ok || m.v <= 0 {
		return 0, false
	}
	return m.v, true
}

// Answers is a raw answer set keyed by field name, as submitted by a form or
// carried in a visit payload.
type Answers map[string]any

// Measure parses a numeric field. Strings are trimmed and parsed; anything
// else that is not a number is missing.
func (a Answers) Measure(key string) Measure {
	f, ok := toFloat(a[key])
	if !ok {
		return Missing
	}
	return M(f)
}

// Int parses a field as an integer item score, truncating fractions.
// Missing or malformed input yields zero.
func (a Answers) Int(key string) int {
	f, ok := toFloat(a[key])
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(math.Trunc(f))
}

// String returns a trimmed textual value; numbers and booleans are formatted.
func (a Answers) String(key string) string {
	switch v := a[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// Strings returns a list field. A JSON array of strings and a comma
// separated string are both accepted; blank entries are dropped.
func (a Answers) Strings(key string) []string {
	var raw []string
	switch v := a[key].(type) {
	case []string:
		raw = v
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	case string:
		raw = strings.Split(v, ",")
	}
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Has reports whether the field is present and not blank.
func (a Answers) Has(key string) bool {
	v, ok := a[key]
	if !ok || v == nil {
		return false
	}
	if s, isStr := v.(string); isStr {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// Clone returns a shallow copy.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
