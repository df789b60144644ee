package service

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/jhogstrom/ess-arbetsschema/config"
	"github.com/jhogstrom/ess-arbetsschema/internal/model"
	"github.com/jhogstrom/ess-arbetsschema/internal/sheet"
)

// ── Input sets of the spot plan ──

var firstNumber = regexp.MustCompile(`\d+`)

// ReadExMembers returns the first integer of every non-comment line.
func ReadExMembers(r io.Reader) ([]int, error) {
	var ids []int
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		m := firstNumber.FindString(line)
		if m == "" {
			continue
		}
		id, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read ex-members: %w", err)
	}
	return ids, nil
}

// ReadExMembersFile is ReadExMembers on a file.
func ReadExMembersFile(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ex-members file: %w", err)
	}
	defer f.Close()
	return ReadExMembers(f)
}

// MembersOnLand returns the members stored on land during year.
func MembersOnLand(t *sheet.Table, cols config.MemberColumns, year int, logger *zap.Logger) ([]int, error) {
	if err := t.Require(cols.MemberID, cols.Year); err != nil {
		return nil, err
	}
	want := strconv.Itoa(year)
	var raw []string
	for i := 0; i < t.Len(); i++ {
		if t.Value(i, cols.Year) == want {
			raw = append(raw, t.Value(i, cols.MemberID))
		}
	}
	ids := NormalizeIDs(raw, logger)
	logger.Info("read members on land", zap.String("source", t.Source), zap.Int("count", len(ids)))
	return ids, nil
}

// ScheduledMembers returns the members booked into a haul-out slot.
func ScheduledMembers(t *sheet.Table, idColumn string, logger *zap.Logger) ([]int, error) {
	if err := t.Require(idColumn); err != nil {
		return nil, err
	}
	ids := NormalizeIDs(t.Column(idColumn), logger)
	logger.Info("read scheduled members", zap.String("source", t.Source), zap.Int("count", len(ids)))
	return ids, nil
}

// RequestedMembers returns every member who answered the spot request form.
func RequestedMembers(t *sheet.Table, idColumn string, logger *zap.Logger) ([]int, error) {
	if err := t.Require(idColumn); err != nil {
		return nil, err
	}
	raw := t.Column(idColumn)
	ids := NormalizeIDs(raw, logger)
	logger.Info("read requests", zap.String("source", t.Source),
		zap.Int("rows", len(raw)), zap.Int("unique", len(ids)))
	return ids, nil
}

// NoSpotRequested returns the members who picked the "no winter spot" option.
func NoSpotRequested(t *sheet.Table, cols config.MemberColumns, option string, logger *zap.Logger) ([]int, error) {
	if err := t.Require(cols.RequestMemberID, cols.Haulout); err != nil {
		return nil, err
	}
	var raw []string
	for i := 0; i < t.Len(); i++ {
		if t.Value(i, cols.Haulout) == option {
			raw = append(raw, t.Value(i, cols.RequestMemberID))
		}
	}
	return NormalizeIDs(raw, logger), nil
}

// ReadMembers decodes the membership table. Rows without a usable member id are
// skipped; missing or unreadable boat dimensions read as zero.
func ReadMembers(t *sheet.Table, cols config.MemberColumns, logger *zap.Logger) ([]model.MemberRecord, error) {
	if err := t.Require(cols.MemberID, cols.LastName, cols.Length, cols.Width); err != nil {
		return nil, err
	}
	members := make([]model.MemberRecord, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		id, ok := parseID(t.Value(i, cols.MemberID), logger)
		if !ok {
			continue
		}
		m := model.MemberRecord{
			MemberID:  id,
			FirstName: t.Value(i, cols.FirstName),
			LastName:  t.Value(i, cols.LastName),
			Email:     t.Value(i, cols.Email),
			Spot:      t.Value(i, cols.Spot),
			Model:     t.Value(i, cols.Model),
		}
		m.BoatLength = dimension(t.Value(i, cols.Length), id, "length", logger)
		m.BoatWidth = dimension(t.Value(i, cols.Width), id, "width", logger)
		members = append(members, m)
	}
	logger.Info("read member file", zap.String("source", t.Source), zap.Int("members", len(members)))
	return members, nil
}

func dimension(raw string, member int, field string, logger *zap.Logger) float64 {
	if raw == "" {
		return 0
	}
	v, err := sheet.ParseDecimal(raw)
	if err != nil {
		logger.Warn("unreadable boat dimension",
			zap.Int("member", member), zap.String("field", field), zap.String("value", raw))
		return 0
	}
	return v
}
