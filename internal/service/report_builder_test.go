package service

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/jhogstrom/ess-arbetsschema/internal/model"
	apperrors "github.com/jhogstrom/ess-arbetsschema/pkg/errors"
)

var reportNow = time.Date(2026, 10, 15, 18, 5, 0, 0, time.UTC)

func svenssonDay() DayRows {
	return DayRows{
		Date: "2026-10-17",
		Boats: []model.ScheduleRow{{
			Time: "09:00", FullName: "Svensson (4321)", MemberID: 4321, Name: "Svensson",
			Phone: "070-123 45 67", Spot: "A1, A1", Model: "Vega", Comment: "ny mast",
			Settings: []model.Setting{{Label: "ESK", Value: "3"}, {Label: "DUSK1", Value: ""}},
		}},
		Work: []model.ScheduleRow{
			{Time: "09:00", MemberID: 55, Name: "Berg", Phone: "0701"},
			{Time: "10:00", MemberID: 56, Name: "Ek", Phone: "0702"},
		},
	}
}

func cell(t *testing.T, f *excelize.File, sheet, ref string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, ref)
	if err != nil {
		t.Fatalf("read %s: %v", ref, err)
	}
	return v
}

func TestReportBuilder_FreshWorkbook(t *testing.T) {
	b := NewReportBuilder(testScheduleConfig(), zap.NewNop())
	path := filepath.Join(t.TempDir(), "Förarschema ESS 2026-10-17.xlsx")

	sum, err := b.Write(svenssonDay(), path, reportNow)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if sum.Boats != 1 || sum.Work != 2 || sum.Foreman != 0 || !sum.MissingForeman {
		t.Errorf("summary = %+v", sum)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open report: %v", err)
	}
	defer f.Close()

	checks := map[string]string{
		"A1": "Schema ESS 2026-10-17",
		"G1": "2026-10-15 18:05",
		"A3": "Pass",
		"H3": "Inställningar",
		"A4": "09:00",
		"B4": "4321",
		"C4": "Svensson",
		"D4": "701234567",
		"E4": "A1",
		"F4": "Vega",
		"G4": "ny mast",
		"H4": "ESK: 3",
		// boat block ends at row 4, two blank rows, then the work block header
		"A7": "Arbetspass",
		"F7": "Förmanspass",
		"A8": "09:00",
		"C8": "Berg",
		"D8": "701",
		"C9": "Ek",
		"G8": MissingForemanMarker,
	}
	for ref, want := range checks {
		if got := cell(t, f, reportSheet, ref); got != want {
			t.Errorf("%s = %q, want %q", ref, got, want)
		}
	}
}

func TestReportBuilder_ForemanPresent(t *testing.T) {
	b := NewReportBuilder(testScheduleConfig(), zap.NewNop())
	day := svenssonDay()
	day.Foreman = []model.ScheduleRow{{Time: "08:00", Name: "Lind", Phone: "0733"}}

	f, sum, err := b.Build(day, reportNow)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer f.Close()
	if sum.MissingForeman {
		t.Error("foreman reported missing")
	}
	if got := cell(t, f, reportSheet, "F8"); got != "08:00" {
		t.Errorf("F8 = %q", got)
	}
	if got := cell(t, f, reportSheet, "G8"); got != "Lind" {
		t.Errorf("G8 = %q", got)
	}
}

func TestReportBuilder_Template(t *testing.T) {
	dir := t.TempDir()
	tmpl := writeWorkbook(t, dir, "mall.xlsx", [][]any{
		{"title"},
		{},
		{"Pass", "#", "Namn"},
		{},
		{"footer"},
	})
	cfg := testScheduleConfig()
	cfg.Template = tmpl

	f, _, err := NewReportBuilder(cfg, zap.NewNop()).Build(svenssonDay(), reportNow)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer f.Close()

	sheet := f.GetSheetList()[0]
	if got := cell(t, f, sheet, "A1"); got != "Schema ESS 2026-10-17" {
		t.Errorf("A1 = %q", got)
	}
	if got := cell(t, f, sheet, "A3"); got != "Pass" {
		t.Errorf("template header moved: A3 = %q", got)
	}
	if got := cell(t, f, sheet, "C5"); got != "Svensson" {
		t.Errorf("C5 = %q", got)
	}
	if got := cell(t, f, sheet, "A6"); got != "footer" {
		t.Errorf("rows not inserted: A6 = %q", got)
	}
	// boat at row 5, work block header three rows below the last boat
	if got := cell(t, f, sheet, "C10"); got != "Berg" {
		t.Errorf("C10 = %q", got)
	}
}

func TestReportBuilder_MissingTemplate(t *testing.T) {
	cfg := testScheduleConfig()
	cfg.Template = filepath.Join(t.TempDir(), "nope.xlsx")

	_, _, err := NewReportBuilder(cfg, zap.NewNop()).Build(svenssonDay(), reportNow)
	if !errors.Is(err, apperrors.ErrSourceNotFound) {
		t.Errorf("err = %v, want ErrSourceNotFound", err)
	}
}
