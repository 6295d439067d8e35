package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// MetricState says whether a Metric carries a usable number.
type MetricState int

const (
	MetricDefined MetricState = iota
	MetricUndefined
	MetricInfinite
)

// Metric is a number that may be degenerate (a zero denominator or an
// unbounded series). Degenerate values never hold NaN or Inf.
type Metric struct {
	Value float64
	State MetricState
}

// Defined wraps a finite value.
func Defined(v float64) Metric { return Metric{Value: v} }

// Undefined marks a ratio whose denominator was zero.
func Undefined() Metric { return Metric{State: MetricUndefined} }

// Infinite marks an unbounded value.
func Infinite() Metric { return Metric{State: MetricInfinite} }

// IsDefined reports whether Value is meaningful.
func (m Metric) IsDefined() bool { return m.State == MetricDefined }

func (m Metric) String() string {
	switch m.State {
	case MetricUndefined:
		return "undefined"
	case MetricInfinite:
		return "infinite"
	default:
		return strconv.FormatFloat(m.Value, 'f', -1, 64)
	}
}

// MarshalJSON encodes defined metrics as numbers and degenerate ones as
// the strings "undefined" or "infinite".
func (m Metric) MarshalJSON() ([]byte, error) {
	if m.State != MetricDefined {
		return json.Marshal(m.String())
	}
	return json.Marshal(m.Value)
}

// UnmarshalJSON accepts the forms written by MarshalJSON.
func (m *Metric) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		switch s {
		case "undefined":
			*m = Undefined()
		case "infinite":
			*m = Infinite()
		default:
			return fmt.Errorf("model: unknown metric state %q", s)
		}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = Defined(v)
	return nil
}

// PaybackOutcome classifies how an acquisition cost is recovered.
type PaybackOutcome string

const (
	PaybackImmediate PaybackOutcome = "immediate"
	PaybackMonths    PaybackOutcome = "months"
	PaybackNever     PaybackOutcome = "never"
)

// Payback is the result of recovering one acquisition cost from the
// cumulative lifetime-value contributions.
type Payback struct {
	Outcome PaybackOutcome `json:"outcome"`
	Period  int            `json:"period"`           // index into the LTV table
	Months  float64        `json:"months,omitempty"` // period plus the trial offset
}

func (p Payback) String() string {
	switch p.Outcome {
	case PaybackImmediate:
		return "immediate"
	case PaybackNever:
		return "never"
	default:
		return strconv.FormatFloat(p.Months, 'f', 1, 64) + " mo"
	}
}
