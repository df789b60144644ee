package service

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"

	"github.com/jhogstrom/ess-arbetsschema/internal/model"
)

// RecipientFileExt is the suffix of the per-date recipient list.
const RecipientFileExt = ".email.txt"

// driver sheet layout: header row, then [date, name, email, ...]
const (
	driverDateCol  = 0
	driverEmailCol = 2
)

// clipboardWriteAll is swapped in tests.
var clipboardWriteAll = clipboard.WriteAll

// CollectRecipients gathers the e-mail addresses of everyone booked on date:
// the boat, work and foreman rows plus the drivers of that date. The driver
// rows include their header row. The result is sorted and duplicate free.
func CollectRecipients(day DayRows, drivers [][]string) []string {
	set := make(map[string]struct{})
	add := func(email string) {
		email = strings.TrimSpace(email)
		if email != "" {
			set[email] = struct{}{}
		}
	}
	for _, rows := range [][]model.ScheduleRow{day.Boats, day.Work, day.Foreman} {
		for _, r := range rows {
			add(r.Email)
		}
	}
	if len(drivers) > 1 {
		for _, row := range drivers[1:] {
			if len(row) > driverEmailCol && row[driverDateCol] == day.Date {
				add(row[driverEmailCol])
			}
		}
	}

	out := make([]string, 0, len(set))
	for e := range set {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// WriteRecipientFile writes one address per line.
func WriteRecipientFile(filename string, recipients []string) error {
	var b strings.Builder
	for _, r := range recipients {
		b.WriteString(r)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(filename, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write recipient file %s: %w", filename, err)
	}
	return nil
}

// ReadRecipientFile reads a recipient list written by WriteRecipientFile.
func ReadRecipientFile(filename string) ([]string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read recipient file %s: %w", filename, err)
	}
	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out, nil
}

// MemberEmails returns the distinct, sorted addresses of the given members.
func MemberEmails(members []model.MemberRecord, ids []int) []string {
	want := make(map[int]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	set := make(map[string]struct{})
	for _, m := range members {
		if want[m.MemberID] && m.Email != "" {
			set[m.Email] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for e := range set {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// CopyRecipients puts the comma joined list on the clipboard. When the
// clipboard is unavailable the list is logged instead.
func CopyRecipients(emails []string, logger *zap.Logger) bool {
	joined := strings.Join(emails, ",")
	if err := clipboardWriteAll(joined); err != nil {
		logger.Error("failed to copy email addresses to clipboard", zap.Error(err))
		logger.Info("email addresses", zap.Strings("emails", emails))
		return false
	}
	logger.Info("copied email addresses to clipboard", zap.Int("count", len(emails)))
	return true
}
