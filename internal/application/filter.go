package application

import (
	"fmt"
	"time"

	"github.com/ahrav/go-scrutineer/internal/domain"
)

// Filter selects competitions. Zero fields match everything.
type Filter struct {
	Date     *time.Time
	AgeGroup domain.AgeGroup
	Style    domain.Style
	Level    domain.Level
}

// Compile parses the configured filter values.
func (f FilterConfig) Compile() (Filter, error) {
	var out Filter
	if f.Date != "" {
		d, err := time.Parse(isoDateLayout, f.Date)
		if err != nil {
			return Filter{}, fmt.Errorf("filter date: %w", err)
		}
		out.Date = &d
	}
	if f.AgeGroup != "" {
		a, err := domain.ParseAgeGroup(f.AgeGroup)
		if err != nil {
			return Filter{}, err
		}
		out.AgeGroup = a
	}
	if f.Style != "" {
		s, err := domain.ParseStyle(f.Style)
		if err != nil {
			return Filter{}, err
		}
		out.Style = s
	}
	if f.Level != "" {
		l, err := domain.ParseLevel(f.Level)
		if err != nil {
			return Filter{}, err
		}
		out.Level = l
	}
	return out, nil
}

// Match reports whether c passes every set filter. A dated filter matches
// undated competitions.
func (f Filter) Match(c *domain.Competition) bool {
	if f.AgeGroup != "" && c.AgeGroup != f.AgeGroup {
		return false
	}
	if f.Style != "" && c.Style != f.Style {
		return false
	}
	if f.Level != "" && c.Level != f.Level {
		return false
	}
	if f.Date != nil && c.Date != nil && !sameDay(*f.Date, *c.Date) {
		return false
	}
	return true
}

// Prepare applies the filter date to an undated competition and
// re-evaluates the Minimum-Dances Policy for the effective date. With no
// date from either side the extracted MinDances stands.
func (f Filter) Prepare(c *domain.Competition) {
	switch {
	case c.Date == nil && f.Date != nil:
		c.ApplyPolicy(f.Date)
	case c.Date != nil:
		c.ApplyPolicy(nil)
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
