package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "log:\n  level: debug\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
	if cfg.Schedule.TemplateStartRow != 5 || cfg.Schedule.FilePrefix != "Förarschema ESS" {
		t.Errorf("schedule defaults = %+v", cfg.Schedule)
	}
	if cfg.Spaceplan.Scale != 5 || cfg.Spaceplan.Label != "full" {
		t.Errorf("spaceplan defaults = %+v", cfg.Spaceplan)
	}
	if cfg.Spaceplan.Columns.RequestMemberID != "Medlemsnummer" {
		t.Errorf("request column = %q", cfg.Spaceplan.Columns.RequestMemberID)
	}
	if cfg.Spaceplan.LaunchSchedule != "Sjösättning {year}" {
		t.Errorf("launch schedule = %q", cfg.Spaceplan.LaunchSchedule)
	}
	if len(cfg.Schedule.RemoveShapes) != 3 {
		t.Errorf("remove shapes = %v", cfg.Schedule.RemoveShapes)
	}
}

func TestLoad_LegacyEnv(t *testing.T) {
	t.Setenv("REPORT_FILE", "Torrsättning.xlsx")
	t.Setenv("DRIVERSCHEDULE", "1AbCdEf")
	t.Setenv("ESS_SCHEDULE_DATE", "2026-10-17")

	cfg, err := Load(writeConfig(t, "schedule:\n  file: from-file.xlsx\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Schedule.File != "Torrsättning.xlsx" {
		t.Errorf("file = %q, environment should win", cfg.Schedule.File)
	}
	if cfg.Google.DriverSheetID != "1AbCdEf" {
		t.Errorf("driver sheet = %q", cfg.Google.DriverSheetID)
	}
	if cfg.Schedule.Date != "2026-10-17" {
		t.Errorf("date = %q", cfg.Schedule.Date)
	}
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load(writeConfig(t, "spaceplan:\n  label: huge\n"))
	if err == nil || !strings.Contains(err.Error(), "spaceplan.label") {
		t.Errorf("err = %v, want label error", err)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Schedule:  ScheduleConfig{TemplateStartRow: 1, Settings: []SettingColumn{{Label: "Mast"}}},
		Spaceplan: SpaceplanConfig{Scale: 5, Label: "name"},
	}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "Mast") {
		t.Errorf("err = %v, want settings error", err)
	}
	cfg.Schedule.Settings = nil
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	cfg.Spaceplan.Scale = 0
	if err := cfg.Validate(); err == nil {
		t.Error("zero scale accepted")
	}
}

func TestWithYear(t *testing.T) {
	if got := WithYear("Torrsättning {year}", 2026); got != "Torrsättning 2026" {
		t.Errorf("WithYear = %q", got)
	}
	if got := WithYear("plain", 2026); got != "plain" {
		t.Errorf("WithYear = %q", got)
	}
}
