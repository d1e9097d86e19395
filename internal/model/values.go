package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// dateLayouts are the shapes the remote service uses for calendar dates.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Date is a calendar day as sent by the remote service. The day is taken
// from the wire value's own offset and never shifted into local time.
type Date struct {
	time.Time
}

// NewDate returns the Date for the given calendar day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses any of the supported date layouts.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDate(t.Year(), t.Month(), t.Day()), nil
		}
	}
	return Date{}, fmt.Errorf("parse date %q: unsupported layout", s)
}

// UnmarshalJSON accepts date strings and epoch milliseconds.
func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		var ms int64
		if numErr := json.Unmarshal(b, &ms); numErr != nil {
			return fmt.Errorf("decode date: %w", err)
		}
		t := time.UnixMilli(ms).UTC()
		*d = NewDate(t.Year(), t.Month(), t.Day())
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON writes the date as YYYY-MM-DD.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d Date) String() string { return d.Format("2006-01-02") }

// Label is the chart axis form, e.g. "Jan 31".
func (d Date) Label() string { return d.Format("Jan 2") }

// Figure is an optional number. The service reports unknown values as null
// or as a placeholder string such as "N/A"; both decode as absent.
type Figure struct {
	decimal.NullDecimal
}

// NewFigure returns a present Figure.
func NewFigure(d decimal.Decimal) Figure {
	return Figure{decimal.NullDecimal{Decimal: d, Valid: true}}
}

func (f *Figure) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	f.Valid = false
	if raw == "null" || raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("decode figure: %w", err)
		}
		d, err := decimal.NewFromString(strings.TrimSpace(s))
		if err != nil {
			return nil
		}
		f.Decimal, f.Valid = d, true
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("decode figure %s: %w", raw, err)
	}
	f.Decimal, f.Valid = d, true
	return nil
}

func (f Figure) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return []byte(f.Decimal.String()), nil
}
