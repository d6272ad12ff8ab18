package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// GridPoint is one cell of the scorer's spatial sampling grid. The service
// stores and returns it verbatim; only the scorer assigns meaning to it.
type GridPoint struct {
	Label          string  `json:"label"`
	Lat            float64 `json:"lat"`
	Lng            float64 `json:"lng"`
	IndividualProb float64 `json:"individual_prob"`
	WeightUsed     float64 `json:"weight_used"`
}

// GridPoints maps an ordered grid onto a jsonb column.
type GridPoints []GridPoint

// Value implements driver.Valuer.
func (g GridPoints) Value() (driver.Value, error) {
	if g == nil {
		return "[]", nil
	}
	raw, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("marshal grid points: %w", err)
	}
	return string(raw), nil
}

// Scan implements sql.Scanner.
func (g *GridPoints) Scan(src any) error {
	if src == nil {
		*g = GridPoints{}
		return nil
	}

	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported grid points source %T", src)
	}

	if len(raw) == 0 {
		*g = GridPoints{}
		return nil
	}
	return json.Unmarshal(raw, g)
}
