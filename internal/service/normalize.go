package service

import (
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// NormalizeIDs turns raw member id cells into a sorted, duplicate-free list.
//
// Cells that are not plain digit strings ("#1234", "1234 ", "KM-1234x") keep
// their digits only. Blank cells are dropped with a debug line, cells without
// any usable digits with an error log; one bad cell never fails the batch.
func NormalizeIDs(values []string, logger *zap.Logger) []int {
	seen := make(map[int]struct{}, len(values))
	out := make([]int, 0, len(values))
	for _, raw := range values {
		id, ok := parseID(raw, logger)
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

func parseID(raw string, logger *zap.Logger) (int, bool) {
	if isDigits(raw) {
		if id, err := strconv.Atoi(raw); err == nil {
			return id, true
		}
	}
	if strings.TrimSpace(raw) == "" {
		logger.Debug("skipping empty member id", zap.String("value", raw))
		return 0, false
	}
	logger.Warn("member id is not an integer", zap.String("value", raw))
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
	id, err := strconv.Atoi(digits)
	if err != nil {
		logger.Error("could not convert member id to integer", zap.String("value", raw))
		return 0, false
	}
	return id, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
