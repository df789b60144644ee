package model

import "strings"

// ScheduleKind tells which block of the daily report a row belongs to.
type ScheduleKind string

const (
	ScheduleBoat    ScheduleKind = "boat"
	ScheduleWork    ScheduleKind = "work"
	ScheduleForeman ScheduleKind = "foreman"
)

// Setting is one equipment setting of a boat, e.g. ESK: 3.
type Setting struct {
	Label string
	Value string
}

// ScheduleRow is one booked time slot of the operational schedule.
type ScheduleRow struct {
	Date     string // YYYY-MM-DD
	Time     string
	Schedule string
	FullName string // "Name (id)"
	MemberID int    // parsed from FullName, or the member id column
	Name     string
	Phone    string
	Email    string
	Spot     string
	Model    string
	Comment  string
	Settings []Setting
}

// SettingsText joins the non-empty settings as "ESK: 3, DUSK1: 2".
func (r ScheduleRow) SettingsText() string {
	parts := make([]string, 0, len(r.Settings))
	for _, s := range r.Settings {
		if s.Value == "" {
			continue
		}
		parts = append(parts, s.Label+": "+s.Value)
	}
	return strings.Join(parts, ", ")
}
