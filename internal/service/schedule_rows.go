package service

import (
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/jhogstrom/ess-arbetsschema/config"
	"github.com/jhogstrom/ess-arbetsschema/internal/model"
	"github.com/jhogstrom/ess-arbetsschema/internal/sheet"
)

// DecodeScheduleRows maps the schedule export onto typed rows. The columns the
// report cannot do without are checked up front; optional ones read as empty.
// Rows with an unreadable date are skipped.
func DecodeScheduleRows(t *sheet.Table, cfg *config.ScheduleConfig, logger *zap.Logger) ([]model.ScheduleRow, error) {
	cols := cfg.Columns
	if err := t.Require(cols.Schedule, cols.Date, cols.Time, cols.Name, cols.Phone, cols.Email); err != nil {
		return nil, err
	}
	optional := []string{cols.MemberID, cols.Spot, cols.Model, cols.Comment}
	for _, s := range cfg.Settings {
		optional = append(optional, s.Column)
	}
	for _, c := range optional {
		if c != "" && !t.Has(c) {
			logger.Warn("optional column missing", zap.String("source", t.Source), zap.String("column", c))
		}
	}

	rows := make([]model.ScheduleRow, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		rawDate := t.Value(i, cols.Date)
		date, ok := sheet.NormalizeDate(rawDate)
		if !ok {
			if rawDate != "" {
				logger.Warn("unreadable schedule date", zap.Int("row", i+2), zap.String("value", rawDate))
			}
			continue
		}
		r := model.ScheduleRow{
			Date:     date,
			Time:     t.Value(i, cols.Time),
			Schedule: t.Value(i, cols.Schedule),
			FullName: t.Value(i, cols.Name),
			Phone:    t.Value(i, cols.Phone),
			Email:    t.Value(i, cols.Email),
			Spot:     t.Value(i, cols.Spot),
			Model:    t.Value(i, cols.Model),
			Comment:  t.Value(i, cols.Comment),
		}
		name, id, ok := ParseMemberName(r.FullName)
		r.Name = name
		if ok {
			r.MemberID = id
		} else if v, err := strconv.Atoi(t.Value(i, cols.MemberID)); err == nil {
			r.MemberID = v
		}
		for _, s := range cfg.Settings {
			r.Settings = append(r.Settings, model.Setting{Label: s.Label, Value: t.Value(i, s.Column)})
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// ParseMemberName splits "Svensson (4321)" into name and member id.
func ParseMemberName(full string) (string, int, bool) {
	full = strings.TrimSpace(full)
	open := strings.LastIndex(full, "(")
	if open < 0 {
		return full, 0, false
	}
	name := strings.TrimSpace(full[:open])
	inner := strings.TrimSuffix(strings.TrimSpace(full[open+1:]), ")")
	id, err := strconv.Atoi(strings.TrimSpace(inner))
	if err != nil {
		return full, 0, false
	}
	return name, id, true
}

var folder = cases.Fold()

func sameSchedule(a, b string) bool {
	return folder.String(a) == folder.String(b)
}

// RowsFor returns the rows of one schedule on one date that have a member
// booked, sorted by time slot.
func RowsFor(rows []model.ScheduleRow, date, schedule string) []model.ScheduleRow {
	var out []model.ScheduleRow
	for _, r := range rows {
		if r.Date != date || r.FullName == "" || !sameSchedule(r.Schedule, schedule) {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}

// ReportDates returns the dates of year on which the schedule named like
// schedule runs, ascending.
func ReportDates(rows []model.ScheduleRow, schedule string, year int) []string {
	prefix := strconv.Itoa(year) + "-"
	want := folder.String(schedule)
	set := make(map[string]struct{})
	for _, r := range rows {
		if !strings.HasPrefix(r.Date, prefix) || !strings.Contains(folder.String(r.Schedule), want) {
			continue
		}
		set[r.Date] = struct{}{}
	}
	dates := make([]string, 0, len(set))
	for d := range set {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// FormatPhone keeps the digits of a phone number. Unless keepZero is set the
// digits go through an integer, which drops leading zeros the same way the
// spreadsheet export does.
func FormatPhone(raw string, keepZero bool) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
	if digits == "" || keepZero {
		return digits
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return digits
	}
	return strconv.FormatInt(n, 10)
}

// DistinctSpots dedupes a comma separated spot list, keeping first occurrence.
func DistinctSpots(raw string) string {
	var out []string
	seen := make(map[string]bool)
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return strings.Join(out, ", ")
}
