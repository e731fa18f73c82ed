package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// HourMap maps project codes to summed hours.
type HourMap map[string]Hours

// Add accumulates h under code.
func (m HourMap) Add(code string, h Hours) {
	m[code] += h
}

// Codes returns the project codes in ascending order.
func (m HourMap) Codes() []string {
	codes := make([]string, 0, len(m))
	for code := range m {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Total returns the sum over all projects.
func (m HourMap) Total() Hours {
	var total Hours
	for _, h := range m {
		total += h
	}
	return total
}

// Equal reports whether both maps hold the same codes and amounts.
func (m HourMap) Equal(other HourMap) bool {
	if len(m) != len(other) {
		return false
	}
	for code, h := range m {
		if oh, ok := other[code]; !ok || oh != h {
			return false
		}
	}
	return true
}

// MarshalJSON writes an object with keys in ascending order and numeric values.
func (m HourMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, code := range m.Codes() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(code)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(m[code].String())
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object of code → hours.
func (m *HourMap) UnmarshalJSON(data []byte) error {
	raw := map[string]Hours{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = raw
	return nil
}

func (HourMap) GormDataType() string { return "json" }

func (HourMap) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "jsonb"
	}
	return "json"
}

// Value implements driver.Valuer.
func (m HourMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := m.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (m *HourMap) Scan(value any) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*m = HourMap{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("hour map: cannot scan %T", value)
	}
	return m.UnmarshalJSON(data)
}
