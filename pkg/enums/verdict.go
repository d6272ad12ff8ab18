package enums

import "fmt"

// Verdict is the reviewer's judgement on a prediction. A scan starts unreviewed
// and stays that way until feedback arrives; unreviewed is distinct from
// incorrect and must never collapse into it.
type Verdict string

const (
	VerdictUnreviewed Verdict = "unreviewed"
	VerdictCorrect    Verdict = "correct"
	VerdictIncorrect  Verdict = "incorrect"
)

var validVerdicts = []Verdict{
	VerdictUnreviewed,
	VerdictCorrect,
	VerdictIncorrect,
}

// String implements fmt.Stringer.
func (v Verdict) String() string {
	return string(v)
}

// IsValid reports whether the value is a known Verdict.
func (v Verdict) IsValid() bool {
	for _, candidate := range validVerdicts {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseVerdict converts raw input into a Verdict.
func ParseVerdict(value string) (Verdict, error) {
	for _, candidate := range validVerdicts {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid verdict %q", value)
}

// VerdictFromBool maps the wire-level thumbs up/down onto a Verdict.
func VerdictFromBool(isCorrect bool) Verdict {
	if isCorrect {
		return VerdictCorrect
	}
	return VerdictIncorrect
}

// Bool returns the wire representation: nil while unreviewed.
func (v Verdict) Bool() *bool {
	switch v {
	case VerdictCorrect:
		b := true
		return &b
	case VerdictIncorrect:
		b := false
		return &b
	}
	return nil
}
