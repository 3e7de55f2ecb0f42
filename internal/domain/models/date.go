package models

import (
	"bytes"
	"fmt"
	"time"
)

// DateLayout is the wire format of date-only columns.
const DateLayout = "2006-01-02"

// Date is a calendar day stored in a date column.
type Date struct {
	time.Time
}

// ParseDate parses a YYYY-MM-DD string. Longer timestamps are truncated to the day.
func ParseDate(value string) (Date, error) {
	if len(value) > len(DateLayout) {
		value = value[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return Date{Time: t}, nil
}

// String renders the date in the wire format.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// Display renders the date the way the dashboard shows it (dd/MM/yyyy).
func (d Date) Display() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("02/01/2006")
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(data))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
