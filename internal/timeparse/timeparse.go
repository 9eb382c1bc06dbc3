// Package timeparse turns the reminder form's free-text time field into an
// absolute instant. Two shapes are accepted: a full ISO-8601 date-time, or a
// bare HH:MM wall-clock time meaning "the next occurrence of that time".
package timeparse

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmhodges/clock"
)

// ErrInvalidFormat reports input that cannot be resolved to an instant.
var ErrInvalidFormat = errors.New("invalid reminder time format")

// Layouts tried for date-time input, offset-carrying first. Naive layouts
// resolve in the parser's location.
var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// Parser resolves reminder time strings against an injected clock and
// location so next-occurrence behavior is deterministic under test.
type Parser struct {
	clk clock.Clock
	loc *time.Location
}

func New(clk clock.Clock, loc *time.Location) *Parser {
	if loc == nil {
		loc = time.Local
	}
	return &Parser{clk: clk, loc: loc}
}

// Parse resolves input to an absolute timestamp.
//
// Input containing a 'T' separator is parsed as an ISO-8601 date-time; a
// trailing "Z" is normalized to the explicit "+00:00" offset first. Anything
// else must be HH:MM, which resolves to today at that time in the parser's
// location, or tomorrow when that instant has already passed.
func (p *Parser) Parse(input string) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, fmt.Errorf("%w: empty input", ErrInvalidFormat)
	}

	if strings.Contains(input, "T") {
		return p.parseISO(input)
	}
	return p.parseClock(input)
}

func (p *Parser) parseISO(input string) (time.Time, error) {
	if strings.HasSuffix(input, "Z") {
		input = strings.TrimSuffix(input, "Z") + "+00:00"
	}
	for _, layout := range isoLayouts {
		if ts, err := time.ParseInLocation(layout, input, p.loc); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidFormat, input)
}

func (p *Parser) parseClock(input string) (time.Time, error) {
	parts := strings.Split(input, ":")
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidFormat, input)
	}

	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidFormat, input)
	}
	minute, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidFormat, input)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidFormat, input)
	}

	now := p.clk.Now().In(p.loc)
	ts := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, p.loc)
	if !ts.After(now) {
		// A wall-clock time already behind us means tomorrow.
		ts = ts.Add(24 * time.Hour)
	}
	return ts, nil
}
