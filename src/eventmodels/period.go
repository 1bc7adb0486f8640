package eventmodels

import (
	"fmt"
	"time"
)

// Period is a coverage window: a whole year, or a single month when Month is set.
type Period struct {
	Year  int
	Month int
}

func NewPeriod(year, month int) (Period, error) {
	p := Period{Year: year, Month: month}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}

	return p, nil
}

func (p Period) Validate() error {
	if p.Year < 1970 || p.Year > 2100 {
		return fmt.Errorf("Period.Validate: invalid year %d", p.Year)
	}

	if p.Month < 0 || p.Month > 12 {
		return fmt.Errorf("Period.Validate: invalid month %d", p.Month)
	}

	return nil
}

func (p Period) HasMonth() bool {
	return p.Month > 0
}

func (p Period) Start() time.Time {
	if p.HasMonth() {
		return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
	}

	return time.Date(p.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
}

// End is exclusive.
func (p Period) End() time.Time {
	if p.HasMonth() {
		return p.Start().AddDate(0, 1, 0)
	}

	return p.Start().AddDate(1, 0, 0)
}

func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start()) && t.Before(p.End())
}

func (p Period) String() string {
	if p.HasMonth() {
		return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
	}

	return fmt.Sprintf("%04d", p.Year)
}

func ParsePeriod(s string) (Period, error) {
	var year, month int
	if _, err := fmt.Sscanf(s, "%4d-%2d", &year, &month); err == nil {
		return NewPeriod(year, month)
	}

	if _, err := fmt.Sscanf(s, "%4d", &year); err != nil {
		return Period{}, fmt.Errorf("ParsePeriod: %q: %w", s, err)
	}

	return NewPeriod(year, 0)
}
