package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/jhogstrom/ess-arbetsschema/config"
	"github.com/jhogstrom/ess-arbetsschema/internal/deck"
	"github.com/jhogstrom/ess-arbetsschema/internal/deck/decktest"
	"github.com/jhogstrom/ess-arbetsschema/internal/model"
	"github.com/jhogstrom/ess-arbetsschema/internal/sheet"
)

var serviceNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.Local)

func testConfig(dir string) *config.Config {
	return &config.Config{
		Paths: config.PathsConfig{
			BoatInfoDirs: []string{dir},
			ReportDirs:   []string{dir},
			TemplateDirs: []string{dir},
			StageDir:     filepath.Join(dir, "stage"),
			Manifest:     filepath.Join(dir, "stage", "generated_files.json"),
		},
		Schedule: *testScheduleConfig(),
		Spaceplan: config.SpaceplanConfig{
			Scale:        5,
			Label:        "full",
			Revision:     "1",
			NoSpotOption: "Nej tack",
			Columns:      testColumns,
		},
		Google: config.GoogleConfig{ParentFolderID: "folder-1"},
	}
}

func writeScheduleFixture(t *testing.T, dir string) string {
	t.Helper()
	header := make([]any, len(scheduleHeader))
	for i, h := range scheduleHeader {
		header[i] = h
	}
	row := func(schedule, date, slot, name, email string) []any {
		return []any{schedule, date, slot, name, "", "070-1", email, "A1", "Vega", "", "", ""}
	}
	return writeWorkbook(t, dir, "Torrsättning_2026.xlsx", [][]any{
		header,
		row("Torrsättning 2026", "2026-10-10", "09:00", "Gammal (1)", "old@example.com"),
		row("Torrsättning 2026", "2026-10-17", "09:00", "Svensson (4321)", "s@example.com"),
		row("Arbetspass torrsättning 2026", "2026-10-17", "09:00", "Berg (55)", "berg@example.com"),
		row("Torrsättning 2026", "2026-10-24", "10:00", "Ek (56)", "ek@example.com"),
		row("Förmanspass till torrsättning 2026 (för styrelsen)", "2026-10-24", "08:00", "Lind (9)", "lind@example.com"),
	})
}

func newTestScheduleService(cfg *config.Config, remote sheet.RemoteSource) *scheduleService {
	svc := NewScheduleService(cfg, sheet.NewLoader(nil, zap.NewNop()), remote, DefaultPalette(), zap.NewNop()).(*scheduleService)
	svc.now = func() time.Time { return serviceNow }
	return svc
}

func TestScheduleService_Generate(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.Schedule.File = writeScheduleFixture(t, dir)
	cfg.Schedule.OutDir = filepath.Join(dir, "stage")
	cfg.Schedule.MapFile = "varvskarta*.pptx"
	cfg.Google.DriverSheetID = "drivers"
	decktest.WriteDeck(t, filepath.Join(dir, "varvskarta 2026.pptx"),
		decktest.ShapeSpec{Name: "Member: 4321", Text: "4321 Svensson"},
		decktest.ShapeSpec{Name: "Anteckning 1", Text: "ta bort"},
	)

	// outputs of a passed date are removed
	if err := os.MkdirAll(cfg.Schedule.OutDir, 0o755); err != nil {
		t.Fatal(err)
	}
	stale := OutputFilename(cfg.Schedule.OutDir, cfg.Schedule.FilePrefix, "2026-10-10", "xlsx")
	if err := os.WriteFile(stale, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	remote := &fakeRemote{values: map[string][][]string{
		"drivers": {{"Datum", "Namn", "Epost"}, {"2026-10-17", "Kran", "driver@example.com"}},
	}}
	res, err := newTestScheduleService(cfg, remote).Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if strings.Join(res.Dates, " ") != "2026-10-10 2026-10-17 2026-10-24" {
		t.Errorf("dates = %v", res.Dates)
	}
	if len(res.Deleted) != 1 || res.Deleted[0] != stale {
		t.Errorf("deleted = %v", res.Deleted)
	}
	if _, err := os.Stat(stale); !errors.Is(err, os.ErrNotExist) {
		t.Error("stale report still present")
	}
	if len(res.MissingForeman) != 1 || res.MissingForeman[0] != "2026-10-17" {
		t.Errorf("missing foreman = %v", res.MissingForeman)
	}
	if len(res.Reports) != 2 {
		t.Errorf("reports = %d, want 2", len(res.Reports))
	}

	m, err := ReadManifest(cfg.Paths.Manifest)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if m.ParentFolderID != "folder-1" || len(m.Files) != 2 || len(m.Files["2026-10-17"]) != 3 {
		t.Errorf("manifest = %+v", m)
	}
	for _, f := range m.AllFiles() {
		if _, err := os.Stat(f); err != nil {
			t.Errorf("manifest lists %s: %v", f, err)
		}
	}

	emails, err := ReadRecipientFile(OutputFilename(cfg.Schedule.OutDir, cfg.Schedule.FilePrefix, "2026-10-17", "email.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(emails, ",") != "berg@example.com,driver@example.com,s@example.com" {
		t.Errorf("recipients = %v", emails)
	}

	d, err := deck.Open(OutputFilename(cfg.Schedule.OutDir, cfg.Schedule.FilePrefix, "2026-10-17", "pptx"))
	if err != nil {
		t.Fatalf("open day map: %v", err)
	}
	slide, _ := d.Slide(0)
	sh, ok := slide.FindByKey("Member: 4321")
	if !ok {
		t.Fatal("member shape missing")
	}
	if c, _ := sh.Fill(); c != DefaultPalette()[ColorScheduled] {
		t.Errorf("scheduled fill = %v", c)
	}
	if _, ok := slide.FindByKey("Anteckning 1"); ok {
		t.Error("note shape not removed")
	}

	if len(res.Balances) != 2 || !res.Balances[0].Understaffed {
		t.Errorf("balances = %+v", res.Balances)
	}
}

func TestScheduleService_NoMapTemplate(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.Schedule.File = writeScheduleFixture(t, dir)
	cfg.Schedule.OutDir = filepath.Join(dir, "stage")
	cfg.Schedule.MapFile = "varvskarta*.pptx"

	logger, logs := observedLogger()
	svc := newTestScheduleService(cfg, nil)
	svc.logger = logger

	res, err := svc.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for d, files := range res.Manifest.Files {
		if len(files) != 2 {
			t.Errorf("%s: files = %v, want report and recipient list only", d, files)
		}
	}
	if logs.FilterMessage("map template not found").Len() != 1 {
		t.Error("missing map template not warned about")
	}
	if logs.FilterMessage("no driver schedule sheet id provided").Len() != 1 {
		t.Error("missing driver sheet not warned about")
	}
}

func TestScheduleService_SingleDate(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.Schedule.File = writeScheduleFixture(t, dir)
	cfg.Schedule.OutDir = filepath.Join(dir, "stage")
	cfg.Schedule.Date = "2026-10-24"

	res, err := newTestScheduleService(cfg, nil).Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(res.Reports) != 1 || res.Reports[0].Date != "2026-10-24" || res.Reports[0].MissingForeman {
		t.Errorf("reports = %+v", res.Reports)
	}
}

func TestScheduleService_MissingSource(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.Schedule.File = "saknas*.xlsx"

	_, err := newTestScheduleService(cfg, nil).Generate(context.Background())
	if err == nil {
		t.Fatal("expected an error for a missing schedule file")
	}
}

func TestFindBalances(t *testing.T) {
	rows := []model.ScheduleRow{
		{Date: "2026-10-17", Time: "09:00", Schedule: "Torr", FullName: "a"},
		{Date: "2026-10-17", Time: "09:00", Schedule: "Arbete", FullName: "b"},
		{Date: "2026-10-17", Time: "10:00", Schedule: "Torr", FullName: "c"},
		{Date: "2026-10-17", Time: "10:00", Schedule: "Arbete", FullName: "d"},
		{Date: "2026-10-17", Time: "10:00", Schedule: "Arbete", FullName: "e"},
		{Date: "2026-10-17", Time: "11:00", Schedule: "Arbete", FullName: "f"},
		{Date: "2026-10-17", Time: "12:00", Schedule: "Torr", FullName: ""},
		{Date: "2026-10-01", Time: "09:00", Schedule: "Torr", FullName: "old"},
	}
	got := FindBalances(rows, "Torr", "Arbete", "2026-10-15")
	if len(got) != 2 {
		t.Fatalf("balances = %+v", got)
	}
	if got[0].Slot != "2026-10-17 09:00" || !got[0].Understaffed || got[0].Helpers != 1 {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].Slot != "2026-10-17 11:00" || got[1].Understaffed || got[1].Helpers != 1 {
		t.Errorf("second = %+v", got[1])
	}
}
