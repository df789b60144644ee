package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jhogstrom/ess-arbetsschema/internal/model"
)

// BoatsRemainingOnLand returns the members whose spot is not taken by any
// booked boat of the named schedule in year, in member table order.
func BoatsRemainingOnLand(members []model.MemberRecord, rows []model.ScheduleRow, schedule string, year int) []model.MemberRecord {
	prefix := strconv.Itoa(year) + "-"
	spots := make(map[string]bool)
	for _, r := range rows {
		if r.FullName == "" || !strings.HasPrefix(r.Date, prefix) || !sameSchedule(r.Schedule, schedule) {
			continue
		}
		for _, s := range strings.Split(r.Spot, ",") {
			if s = strings.TrimSpace(s); s != "" {
				spots[s] = true
			}
		}
	}
	var out []model.MemberRecord
	for _, m := range members {
		if !spots[strings.TrimSpace(m.Spot)] {
			out = append(out, m)
		}
	}
	return out
}

// FormatOnLand renders one numbered line per member.
func FormatOnLand(members []model.MemberRecord) []string {
	lines := make([]string, 0, len(members))
	for i, m := range members {
		lines = append(lines, fmt.Sprintf("%2d) %3d [%3s] %s %s", i+1, m.MemberID, m.Spot, m.FirstName, m.LastName))
	}
	return lines
}
