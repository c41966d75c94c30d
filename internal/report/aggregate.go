// Package report derives dashboard metrics and periodic reports from raw
// lead records. Everything here is pure: no store access, no mutation of
// the input slice.
package report

import (
	"sort"

	"github.com/pkg/errors"

	"leadboard/internal/model"
)

// DefaultRecentLimit caps the recent-leads table when no limit is given.
const DefaultRecentLimit = 15

type Summary struct {
	TotalLeads        int     `json:"total_leads"`
	TotalConversions  int     `json:"total_conversions"`
	ConversionRatePct float64 `json:"conversion_rate_pct"`
}

type PeriodUnit string

const (
	UnitWeek  PeriodUnit = "week"
	UnitMonth PeriodUnit = "month"
)

// ParseUnit maps a query-string value to a grouping unit. The empty string
// defaults to weekly, matching the report page default.
func ParseUnit(raw string) (PeriodUnit, error) {
	switch raw {
	case "", string(UnitWeek):
		return UnitWeek, nil
	case string(UnitMonth):
		return UnitMonth, nil
	}
	return "", errors.Errorf("unknown period unit %q", raw)
}

// PeriodRow is one partition of the report: an ISO week number (1-53) or a
// month of year (1-12), with lead counts summed and converted records
// counted.
type PeriodRow struct {
	Period    int `json:"period"`
	NumLeads  int `json:"num_leads"`
	Converted int `json:"converted"`
}

// BuildSummary computes the dashboard totals. Conversions are counted per
// lead record: a record of num_leads=5 converts as a single unit. The rate
// is 0 when there are no leads.
func BuildSummary(leads []*model.Lead) Summary {
	s := Summary{}
	for _, lead := range leads {
		s.TotalLeads += lead.NumLeads
		if lead.Converted {
			s.TotalConversions++
		}
	}
	if s.TotalLeads > 0 {
		s.ConversionRatePct = float64(s.TotalConversions) / float64(s.TotalLeads) * 100
	}
	return s
}

// GroupByPeriod partitions leads by the ISO-8601 week number or the calendar
// month of lead_date, ascending by period key. Periods without leads produce
// no row.
func GroupByPeriod(leads []*model.Lead, unit PeriodUnit) []PeriodRow {
	byPeriod := make(map[int]*PeriodRow)
	for _, lead := range leads {
		key := periodKey(lead, unit)
		row, ok := byPeriod[key]
		if !ok {
			row = &PeriodRow{Period: key}
			byPeriod[key] = row
		}
		row.NumLeads += lead.NumLeads
		if lead.Converted {
			row.Converted++
		}
	}

	rows := make([]PeriodRow, 0, len(byPeriod))
	for _, row := range byPeriod {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Period < rows[j].Period
	})
	return rows
}

// RecentLeads returns the n most recently recorded leads, newest first.
// n <= 0 falls back to DefaultRecentLimit.
func RecentLeads(leads []*model.Lead, n int) []*model.Lead {
	if n <= 0 {
		n = DefaultRecentLimit
	}

	recent := make([]*model.Lead, len(leads))
	copy(recent, leads)
	sort.Slice(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})

	if len(recent) > n {
		recent = recent[:n]
	}
	return recent
}

func periodKey(lead *model.Lead, unit PeriodUnit) int {
	if unit == UnitMonth {
		return int(lead.LeadDate.Month())
	}
	_, week := lead.LeadDate.ISOWeek()
	return week
}
