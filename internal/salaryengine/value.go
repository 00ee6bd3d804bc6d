package salaryengine

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var errEmptyValue = errors.New("value is empty")

// Value is the raw input of a mapping. It decodes from a JSON number or a
// JSON string so a half-typed row reaches the engine and is flagged on its
// own instead of failing the whole request.
type Value string

func ValueOf(d decimal.Decimal) Value {
	return Value(d.String())
}

func (v *Value) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	switch {
	case raw == "null":
		*v = ""
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = Value(s)
	default:
		*v = Value(raw)
	}
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(v))
}

func (v Value) Decimal() (decimal.Decimal, error) {
	s := strings.TrimSpace(string(v))
	if s == "" {
		return decimal.Zero, errEmptyValue
	}
	return decimal.NewFromString(s)
}
