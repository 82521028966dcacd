package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// FieldChange holds the before/after values for one audited column.
type FieldChange struct {
	Old interface{} `json:"old"`
	New interface{} `json:"new"`
}

// ComputeDiff compares two column→value maps over the tracked column list
// and returns only the columns whose serialized value actually changed.
// Serialization-based equality sidesteps pointer identity and time zone
// representation differences.
func ComputeDiff(oldVals, newVals map[string]interface{}, tracked []string) map[string]FieldChange {
	diff := make(map[string]FieldChange)
	for _, col := range tracked {
		o, n := oldVals[col], newVals[col]
		if !jsonEqual(o, n) {
			diff[col] = FieldChange{Old: o, New: n}
		}
	}
	return diff
}

func jsonEqual(a, b interface{}) bool {
	ab, errA := json.Marshal(a)
	bb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return fmt.Sprint(a) == fmt.Sprint(b)
	}
	return bytes.Equal(ab, bb)
}

// FormatFieldName turns a snake_case column into a Title Case label:
// "scheduled_date" → "Scheduled Date".
func FormatFieldName(col string) string {
	parts := strings.Split(col, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

// FormatChange renders one diff entry as the human-readable line the
// history endpoint returns: "Scheduled Date: 2025-03-01 → 2025-03-02".
func FormatChange(col string, c FieldChange) string {
	return fmt.Sprintf("%s: %s → %s", FormatFieldName(col), displayValue(c.Old), displayValue(c.New))
}

func displayValue(v interface{}) string {
	if v == nil {
		return "(none)"
	}
	switch t := v.(type) {
	case string:
		if t == "" {
			return "(none)"
		}
		return t
	case *string:
		if t == nil {
			return "(none)"
		}
		return *t
	case json.RawMessage:
		return string(t)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return strings.Trim(string(b), `"`)
	}
}
