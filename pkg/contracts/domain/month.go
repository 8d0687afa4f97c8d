package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// MonthLayout is the textual form of a Month, also used as CSV column header.
const MonthLayout = "2006-01"

// Month is a calendar month with the day truncated.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses a YYYY-MM string.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return Month{}, fmt.Errorf("parse month %q: %w", s, err)
	}
	return MonthOf(t), nil
}

// Index returns a monotonically increasing ordinal, handy for comparisons.
func (m Month) Index() int {
	return m.Year*12 + int(m.Month) - 1
}

// Before reports whether m is earlier than other.
func (m Month) Before(other Month) bool {
	return m.Index() < other.Index()
}

// Start returns the first day of the month at UTC midnight.
func (m Month) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// MarshalJSON encodes the month as "YYYY-MM".
func (m Month) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON decodes a "YYYY-MM" string.
func (m *Month) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseMonth(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
