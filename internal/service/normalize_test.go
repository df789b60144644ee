package service

import (
	"reflect"
	"sort"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNormalizeIDs(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []int
	}{
		{"plain", []string{"3", "1", "2"}, []int{1, 2, 3}},
		{"dedupe", []string{"7", "7", "07"}, []int{7}},
		{"strip non digits", []string{"#1234", "1234 ", "KM-1234x"}, []int{1234}},
		{"drop garbage", []string{"abc", "", "  ", "12"}, []int{12}},
		{"empty", nil, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeIDs(tt.in, zap.NewNop())
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeIDs(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIDs_SortedUniqueDigits(t *testing.T) {
	in := []string{"KM-1234x", "99", "a9b9", "x", "1234", "5-6", "1 0 0"}
	got := NormalizeIDs(in, zap.NewNop())

	if !sort.IntsAreSorted(got) {
		t.Fatalf("result not sorted: %v", got)
	}
	seen := map[int]bool{}
	for _, id := range got {
		if seen[id] {
			t.Fatalf("duplicate %d in %v", id, got)
		}
		seen[id] = true
	}
	for _, id := range []int{1234, 99, 56, 100} {
		if !seen[id] {
			t.Errorf("missing %d in %v", id, got)
		}
	}
}

func TestNormalizeIDs_LogsAnomalies(t *testing.T) {
	logger, logs := observedLogger()
	NormalizeIDs([]string{"#12", "none", "13"}, logger)

	if n := logs.FilterMessage("member id is not an integer").Len(); n != 2 {
		t.Errorf("warnings = %d, want 2", n)
	}
	if n := logs.FilterMessage("could not convert member id to integer").Len(); n != 1 {
		t.Errorf("errors = %d, want 1", n)
	}
}

func TestNormalizeIDs_LogsBlankCells(t *testing.T) {
	logger, logs := observedLogger()
	got := NormalizeIDs([]string{"", "  ", "12"}, logger)

	if !reflect.DeepEqual(got, []int{12}) {
		t.Errorf("NormalizeIDs = %v, want [12]", got)
	}
	blank := logs.FilterMessage("skipping empty member id")
	if blank.Len() != 2 {
		t.Errorf("blank cell lines = %d, want 2", blank.Len())
	}
	for _, e := range blank.All() {
		if e.Level != zapcore.DebugLevel {
			t.Errorf("blank cell logged at %s, want debug", e.Level)
		}
	}
}
