package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Hours is a fixed-point amount of hours stored in hundredths of an hour.
// 7.5 hours is Hours(750).
type Hours int64

const hoursScale = 100

// MaxEntryHours is the largest value a single daily entry may hold (numeric(4,2)).
const MaxEntryHours Hours = 9999

// ParseHours parses a decimal literal with at most two fraction digits.
// It accepts any non-negative magnitude; use ValidateEntry for per-entry limits.
func ParseHours(s string) (Hours, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("hours: empty value")
	}
	if strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("hours: %q must be greater than zero", s)
	}
	s = strings.TrimPrefix(s, "+")

	whole, frac, hasDot := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if hasDot && (frac == "" || len(frac) > 2) {
		return 0, fmt.Errorf("hours: %q must have one or two decimal places", s)
	}
	if !isDigits(whole) || !isDigits(frac) {
		return 0, fmt.Errorf("hours: %q is not a decimal number", s)
	}

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || w > math.MaxInt64/hoursScale-1 {
		return 0, fmt.Errorf("hours: %q is out of range", s)
	}
	var f int64
	if frac != "" {
		for len(frac) < 2 {
			frac += "0"
		}
		f, _ = strconv.ParseInt(frac, 10, 64)
	}
	return Hours(w*hoursScale + f), nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// HoursFromFloat rounds v to the nearest hundredth.
func HoursFromFloat(v float64) Hours {
	return Hours(math.Round(v * hoursScale))
}

// ValidateEntry reports whether h is acceptable for a single daily entry.
func (h Hours) ValidateEntry() error {
	if h <= 0 {
		return fmt.Errorf("hours must be greater than zero")
	}
	if h > MaxEntryHours {
		return fmt.Errorf("hours must not exceed %s", MaxEntryHours)
	}
	return nil
}

// String renders the value with trailing zeros trimmed: 5, 7.5, 1.25.
func (h Hours) String() string {
	sign := ""
	v := int64(h)
	if v < 0 {
		sign = "-"
		v = -v
	}
	whole, frac := v/hoursScale, v%hoursScale
	switch {
	case frac == 0:
		return fmt.Sprintf("%s%d", sign, whole)
	case frac%10 == 0:
		return fmt.Sprintf("%s%d.%d", sign, whole, frac/10)
	default:
		return fmt.Sprintf("%s%d.%02d", sign, whole, frac)
	}
}

// Float64 returns the value as a float for presentation only.
func (h Hours) Float64() float64 {
	return float64(h) / hoursScale
}

// MarshalJSON encodes the value as a JSON number.
func (h Hours) MarshalJSON() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (h *Hours) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	}
	v, err := ParseHours(s)
	if err != nil {
		return err
	}
	*h = v
	return nil
}

// Value implements driver.Valuer.
func (h Hours) Value() (driver.Value, error) {
	return h.String(), nil
}

// Scan implements sql.Scanner. Postgres returns numeric as text, SQLite as
// integer or real depending on the stored value.
func (h *Hours) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*h = 0
		return nil
	case int64:
		*h = Hours(v * hoursScale)
		return nil
	case float64:
		*h = HoursFromFloat(v)
		return nil
	case []byte:
		return h.scanString(string(v))
	case string:
		return h.scanString(v)
	default:
		return fmt.Errorf("hours: cannot scan %T", value)
	}
}

func (h *Hours) scanString(s string) error {
	parsed, err := ParseHours(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return err
		}
		parsed = HoursFromFloat(f)
	}
	*h = parsed
	return nil
}
