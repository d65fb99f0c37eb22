package financial

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// CanonicalMetrics are the balance-sheet lines requested from the model, in
// the order they are shown.
var CanonicalMetrics = []string{
	"Revenue from Operations",
	"Other Income",
	"Total Income",
	"Net Profit / (Loss) for the period",
	"Total Assets",
	"Total Liabilities",
	"Total Equity",
	"Earnings Per Share (Basic, in ₹)",
}

// Value is a metric value that is either a number or null.
type Value struct {
	decimal.NullDecimal
}

func NewValue(d decimal.Decimal) Value {
	return Value{decimal.NullDecimal{Decimal: d, Valid: true}}
}

func NullValue() Value {
	return Value{}
}

func (v Value) IsNull() bool {
	return !v.Valid
}

// String renders null as "N/A".
func (v Value) String() string {
	if !v.Valid {
		return "N/A"
	}
	return v.Decimal.String()
}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return []byte(v.Decimal.String()), nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*v = Coerce(raw)
	return nil
}

// Coerce turns whatever the model produced for a metric into a Value.
// Numbers and numeric strings (thousands separators allowed) become numbers,
// everything else becomes null.
func Coerce(raw interface{}) Value {
	switch x := raw.(type) {
	case nil:
		return NullValue()
	case json.Number:
		return fromString(x.String())
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return NullValue()
		}
		return NewValue(decimal.NewFromFloat(x))
	case float32:
		return Coerce(float64(x))
	case int:
		return NewValue(decimal.NewFromInt(int64(x)))
	case int64:
		return NewValue(decimal.NewFromInt(x))
	case decimal.Decimal:
		return NewValue(x)
	case string:
		return fromString(x)
	default:
		return NullValue()
	}
}

func fromString(s string) Value {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return NullValue()
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return NullValue()
	}
	return NewValue(d)
}

// Metrics maps a metric name to its value for one fiscal year.
type Metrics map[string]Value

// CoerceMetrics applies Coerce to every value of a decoded JSON object.
func CoerceMetrics(raw map[string]interface{}) Metrics {
	m := make(Metrics, len(raw))
	for name, v := range raw {
		m[strings.TrimSpace(name)] = Coerce(v)
	}
	return m
}

// OrderColumns puts the canonical metrics first, in canonical order and only
// when present, followed by the remaining names alphabetically.
func OrderColumns(names map[string]struct{}) []string {
	cols := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(CanonicalMetrics))
	for _, name := range CanonicalMetrics {
		if _, ok := names[name]; ok {
			cols = append(cols, name)
			seen[name] = struct{}{}
		}
	}

	var rest []string
	for name := range names {
		if _, ok := seen[name]; !ok {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(cols, rest...)
}
