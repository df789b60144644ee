package service

import (
	"testing"

	"github.com/jhogstrom/ess-arbetsschema/config"
	"github.com/jhogstrom/ess-arbetsschema/internal/model"
)

func TestBoatsRemainingOnLand(t *testing.T) {
	recs := []model.MemberRecord{
		{MemberID: 1, FirstName: "A", LastName: "Berg", Spot: "A1"},
		{MemberID: 2, FirstName: "B", LastName: "Ek", Spot: "B2"},
		{MemberID: 3, FirstName: "C", LastName: "Lund", Spot: "C3"},
	}
	rows := []model.ScheduleRow{
		{Date: "2026-05-10", Schedule: "Sjösättning 2026", FullName: "Berg (1)", Spot: "A1, A1"},
		{Date: "2026-05-10", Schedule: "Sjösättning 2026", FullName: "", Spot: "B2"},
		{Date: "2025-05-10", Schedule: "Sjösättning 2026", FullName: "Lund (3)", Spot: "C3"},
		{Date: "2026-05-10", Schedule: "Arbetspass", FullName: "Lund (3)", Spot: "C3"},
	}

	got := BoatsRemainingOnLand(recs, rows, "Sjösättning 2026", 2026)
	if len(got) != 2 || got[0].MemberID != 2 || got[1].MemberID != 3 {
		t.Fatalf("remaining = %+v", got)
	}
	lines := FormatOnLand(got)
	if lines[0] != " 1)   2 [ B2] B Ek" {
		t.Errorf("line = %q", lines[0])
	}
}

func TestBoatsRemainingOnLand_OnlyLaunchCounts(t *testing.T) {
	recs := []model.MemberRecord{
		{MemberID: 1, LastName: "Berg", Spot: "A1"},
		{MemberID: 2, LastName: "Ek", Spot: "B2"},
	}
	rows := []model.ScheduleRow{
		{Date: "2026-05-10", Schedule: "Sjösättning 2026", FullName: "Berg (1)", Spot: "A1"},
		{Date: "2026-10-17", Schedule: "Torrsättning 2026", FullName: "Ek (2)", Spot: "B2"},
	}

	launch := config.WithYear("Sjösättning {year}", 2026)
	got := BoatsRemainingOnLand(recs, rows, launch, 2026)
	if len(got) != 1 || got[0].MemberID != 2 {
		t.Errorf("remaining after launch = %+v, want member 2", got)
	}

	got = BoatsRemainingOnLand(recs, rows, "Torrsättning 2026", 2026)
	if len(got) != 1 || got[0].MemberID != 1 {
		t.Errorf("remaining for haul-out = %+v, want member 1", got)
	}
}
