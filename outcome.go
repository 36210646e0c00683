package analytics

import "fmt"

// Status tags the result of an iterative computation.
type Status int

const (
	// Converged means Outcome.Value holds a meaningful result.
	Converged Status = iota
	// NonConvergent means the method gave up (divergence, cap reached).
	NonConvergent
	// Invalid means the inputs could not produce a result at all.
	Invalid
)

func (s Status) String() string {
	switch s {
	case Converged:
		return "converged"
	case NonConvergent:
		return "non-convergent"
	case Invalid:
		return "invalid"
	default:
		return "unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Status) UnmarshalText(text []byte) error {
	for _, v := range []Status{Converged, NonConvergent, Invalid} {
		if v.String() == string(text) {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, text)
}

// Outcome is the tagged result of an iterative or guarded computation.
// Value is zero unless Status is Converged.
type Outcome struct {
	Value  float64 `json:"value"`
	Status Status  `json:"status"`
	Reason string  `json:"reason,omitempty"`
}

func Ok(v float64) Outcome { return Outcome{Value: v, Status: Converged} }

func Diverged(format string, args ...any) Outcome {
	return Outcome{Status: NonConvergent, Reason: fmt.Sprintf(format, args...)}
}

func Invalidf(format string, args ...any) Outcome {
	return Outcome{Status: Invalid, Reason: fmt.Sprintf(format, args...)}
}

func (o Outcome) Converged() bool { return o.Status == Converged }

// Or returns the value when converged, otherwise def.
func (o Outcome) Or(def float64) float64 {
	if o.Status != Converged {
		return def
	}
	return o.Value
}

func (o Outcome) String() string {
	if o.Status == Converged {
		return fmt.Sprintf("%.2f", o.Value)
	}
	if o.Reason == "" {
		return o.Status.String()
	}
	return fmt.Sprintf("%s (%s)", o.Status, o.Reason)
}
