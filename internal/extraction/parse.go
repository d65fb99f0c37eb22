package extraction

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/frahmantamala/financial-analyst/internal/financial"
)

var fencedBlock = regexp.MustCompile("(?s)```(?:json|JSON)?[ \\t]*\\r?\\n(.*)\\r?\\n[ \\t]*```")

var errNotObject = errors.New("response is not a JSON object")

// Extracted maps a fiscal-year key, as written by the model, to its metrics.
// A year whose value was not a JSON object maps to nil.
type Extracted map[string]financial.Metrics

// ParseResponse locates the JSON payload of a model reply and decodes it.
// The payload is taken from a fenced code block when one is present,
// otherwise the whole reply is parsed.
func ParseResponse(body string) (Extracted, error) {
	payload := strings.TrimSpace(body)
	if m := fencedBlock.FindStringSubmatch(body); m != nil {
		payload = strings.TrimSpace(m[1])
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(payload)))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode model response: %w", err)
	}
	if dec.More() {
		return nil, errors.New("decode model response: trailing data after JSON value")
	}

	years, ok := raw.(map[string]interface{})
	if !ok {
		return nil, errNotObject
	}

	out := make(Extracted, len(years))
	for year, v := range years {
		metrics, ok := v.(map[string]interface{})
		if !ok {
			out[year] = nil
			continue
		}
		out[year] = financial.CoerceMetrics(metrics)
	}
	return out, nil
}
