// Package dates converts the registry's mixed date strings into calendar
// days. Only the layouts below are accepted; anything else is an error.
package dates

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	LayoutBR       = "02/01/2006"
	LayoutBRShort  = "2/1/2006"
	LayoutISO      = "2006-01-02"
	LayoutDateTime = "2006-01-02T15:04:05"
	LayoutDayMonth = "02/01"
)

const (
	ListPlaceholder   = "-"
	DetailPlaceholder = "N/A"
)

var ErrEmpty = errors.New("dates: empty value")

// ParseError reports a value in none of the accepted layouts.
type ParseError struct {
	Value string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("dates: unsupported date %q", e.Value)
}

var layouts = []string{
	LayoutBR,
	LayoutBRShort,
	LayoutISO,
	LayoutDateTime,
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
}

// Parse returns the calendar day of s at midnight UTC.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrEmpty
	}
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return Day(t), nil
		}
	}
	return time.Time{}, &ParseError{Value: s}
}

// Day truncates t to its calendar day, keeping the date as seen in t's zone.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func ISO(s string) (string, error) {
	t, err := Parse(s)
	if err != nil {
		return "", err
	}
	return t.Format(LayoutISO), nil
}

func BR(s string) (string, error) {
	t, err := Parse(s)
	if err != nil {
		return "", err
	}
	return t.Format(LayoutBR), nil
}

func DayMonth(t time.Time) string {
	return t.Format(LayoutDayMonth)
}

// Display formats s as DD/MM/YYYY, or returns placeholder when s is empty or unparsable.
func Display(s, placeholder string) string {
	out, err := BR(s)
	if err != nil {
		return placeholder
	}
	return out
}

// Age is the number of full years between birth and now.
// An empty birth date yields 0.
func Age(birth string, now time.Time) (int, error) {
	b, err := Parse(birth)
	if errors.Is(err, ErrEmpty) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	today := Day(now)
	age := today.Year() - b.Year()
	if today.Month() < b.Month() || (today.Month() == b.Month() && today.Day() < b.Day()) {
		age--
	}
	return age, nil
}

const (
	StatusValid   = "valida"
	StatusExpired = "vencida"
)

// Status is "valida" while the expiry day is today or later.
func Status(expiry string, now time.Time) string {
	t, err := Parse(expiry)
	if err != nil {
		return StatusExpired
	}
	if t.Before(Day(now)) {
		return StatusExpired
	}
	return StatusValid
}

// Timestamp parses s keeping its time of day, for ordering records by creation.
func Timestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrEmpty
	}
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, &ParseError{Value: s}
}
