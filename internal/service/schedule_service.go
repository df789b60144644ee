package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/jhogstrom/ess-arbetsschema/config"
	"github.com/jhogstrom/ess-arbetsschema/internal/deck"
	"github.com/jhogstrom/ess-arbetsschema/internal/model"
	"github.com/jhogstrom/ess-arbetsschema/internal/sheet"
)

// ── schedule errors ──

var (
	ErrNoReportDates = errors.New("no report dates found in schedule")
)

// Balance is a time slot with too few or too many helpers for its boats.
type Balance struct {
	Slot         string // "YYYY-MM-DD HH:MM"
	Boats        int
	Helpers      int
	Understaffed bool
}

// ScheduleResult summarizes one schedule run.
type ScheduleResult struct {
	Source         string
	Dates          []string
	Reports        []ReportSummary
	Deleted        []string
	MissingForeman []string
	Balances       []Balance
	Manifest       *model.Manifest
}

// ScheduleService generates the per-date driver schedules.
type ScheduleService interface {
	Generate(ctx context.Context) (*ScheduleResult, error)
}

type scheduleService struct {
	cfg     *config.Config
	loader  *sheet.Loader
	drivers sheet.RemoteSource
	palette Palette
	now     func() time.Time
	logger  *zap.Logger
}

// NewScheduleService creates a ScheduleService. drivers may be nil when no
// driver sheet is used.
func NewScheduleService(cfg *config.Config, loader *sheet.Loader, drivers sheet.RemoteSource, palette Palette, logger *zap.Logger) ScheduleService {
	return &scheduleService{
		cfg:     cfg,
		loader:  loader,
		drivers: drivers,
		palette: palette,
		now:     time.Now,
		logger:  logger,
	}
}

// ═══════════════════════════════════════════════════════════
// Generate
// ═══════════════════════════════════════════════════════════
//
// For every date of the boat schedule this year:
//   - today or later: write the xlsx report, the recipient list and the map
//   - earlier: delete whatever was generated for it before
//
// The manifest lists only the files written by this run.

func (s *scheduleService) Generate(ctx context.Context) (*ScheduleResult, error) {
	sc := &s.cfg.Schedule
	now := s.now()
	year := now.Year()
	boatSchedule := config.WithYear(sc.BoatSchedule, year)
	workSchedule := config.WithYear(sc.WorkSchedule, year)
	foremanSchedule := config.WithYear(sc.ForemanSchedule, year)

	source, err := s.resolveSource(sc.File)
	if err != nil {
		return nil, err
	}
	table, err := s.loader.Load(ctx, source)
	if err != nil {
		return nil, err
	}
	rows, err := DecodeScheduleRows(table, sc, s.logger)
	if err != nil {
		return nil, err
	}

	dates := ReportDates(rows, boatSchedule, year)
	if sc.Date != "" {
		dates = []string{sc.Date}
	}
	if len(dates) == 0 {
		return nil, fmt.Errorf("%s: %w", boatSchedule, ErrNoReportDates)
	}

	if err := os.MkdirAll(sc.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	drivers := s.readDrivers(ctx)
	mapTemplate := s.resolveMap(sc.MapFile)
	builder := NewReportBuilder(sc, s.logger)
	today := now.Format("2006-01-02")

	res := &ScheduleResult{
		Source:   source,
		Dates:    dates,
		Manifest: &model.Manifest{ParentFolderID: s.cfg.Google.ParentFolderID, Files: map[string][]string{}},
	}

	for _, d := range dates {
		xlsxFile := OutputFilename(sc.OutDir, sc.FilePrefix, d, "xlsx")
		mapFile := OutputFilename(sc.OutDir, sc.FilePrefix, d, "pptx")
		emailFile := OutputFilename(sc.OutDir, sc.FilePrefix, d, "email.txt")

		if d < today && sc.Date == "" {
			for _, f := range []string{xlsxFile, mapFile, emailFile} {
				if removeIfExists(f) {
					res.Deleted = append(res.Deleted, f)
				}
			}
			s.logger.Debug("skipping passed date", zap.String("date", d))
			continue
		}

		s.logger.Info("generating report", zap.String("date", d))
		day := DayRows{
			Date:    d,
			Boats:   RowsFor(rows, d, boatSchedule),
			Work:    RowsFor(rows, d, workSchedule),
			Foreman: RowsFor(rows, d, foremanSchedule),
		}

		sum, err := builder.Write(day, xlsxFile, now)
		if err != nil {
			return nil, err
		}
		res.Reports = append(res.Reports, sum)
		files := []string{xlsxFile}

		if err := WriteRecipientFile(emailFile, CollectRecipients(day, drivers)); err != nil {
			return nil, err
		}
		s.logger.Info("email list written", zap.String("file", emailFile))

		written, err := s.writeMap(mapTemplate, mapFile, day.Boats)
		if err != nil {
			return nil, err
		}
		if written {
			files = append(files, mapFile)
		}
		files = append(files, emailFile)
		res.Manifest.Files[d] = files

		s.logger.Info("summary",
			zap.String("header", sc.Header+" "+d),
			zap.Int("boats", sum.Boats),
			zap.Int("work", sum.Work),
		)
		if sum.MissingForeman {
			res.MissingForeman = append(res.MissingForeman, d)
		}
	}

	res.Balances = FindBalances(rows, boatSchedule, workSchedule, today)
	for _, b := range res.Balances {
		if b.Understaffed {
			s.logger.Warn("saknas folk", zap.String("slot", b.Slot), zap.Int("boats", b.Boats), zap.Int("helpers", b.Helpers))
		} else {
			s.logger.Warn("överbefolkat", zap.String("slot", b.Slot), zap.Int("boats", b.Boats), zap.Int("helpers", b.Helpers))
		}
	}

	if err := WriteManifest(s.cfg.Paths.Manifest, res.Manifest); err != nil {
		return nil, err
	}

	s.logger.Info("used schedule file", zap.String("file", source))
	for _, r := range res.Reports {
		s.logger.Info("boats per day", zap.String("date", r.Date), zap.Int("boats", r.Boats))
	}
	for _, d := range res.MissingForeman {
		s.logger.Warn("no foreman assigned", zap.String("date", d))
	}
	return res, nil
}

func (s *scheduleService) resolveSource(name string) (string, error) {
	return sheet.ResolveSource(name, s.cfg.Paths.ReportDirs, s.logger)
}

func (s *scheduleService) readDrivers(ctx context.Context) [][]string {
	id := s.cfg.Google.DriverSheetID
	if id == "" || s.drivers == nil {
		s.logger.Warn("no driver schedule sheet id provided")
		return nil
	}
	s.logger.Info("reading driver schedule", zap.String("sheet", id[:min(5, len(id))]+"..."))
	values, err := s.drivers.FirstSheetValues(ctx, id)
	if err != nil {
		s.logger.Error("read driver schedule failed", zap.Error(err))
		return nil
	}
	return values
}

func (s *scheduleService) resolveMap(pattern string) string {
	if pattern == "" {
		return ""
	}
	path, err := sheet.Resolve(pattern, s.cfg.Paths.TemplateDirs, s.logger)
	if err != nil {
		s.logger.Warn("map template not found", zap.String("pattern", pattern), zap.Error(err))
		return ""
	}
	return path
}

// writeMap colors the day's boats on a fresh copy of the map template.
func (s *scheduleService) writeMap(template, filename string, boats []model.ScheduleRow) (bool, error) {
	if template == "" {
		s.logger.Warn("no map template, skipping map generation")
		return false, nil
	}
	d, err := deck.Open(template)
	if err != nil {
		return false, err
	}
	slide, err := d.Slide(0)
	if err != nil {
		return false, err
	}

	ids := make([]int, 0, len(boats))
	for _, b := range boats {
		if b.MemberID != 0 {
			ids = append(ids, b.MemberID)
		}
	}
	c := NewColorizer(s.palette, s.cfg.Spaceplan.Scale, LabelFormat(s.cfg.Spaceplan.Label), s.logger)
	c.ColorMembers(slide, ids, s.palette[ColorScheduled], "scheduled", false)
	RemoveShapes(slide, s.cfg.Schedule.RemoveShapes, s.logger)

	if err := d.Save(filename); err != nil {
		return false, err
	}
	s.logger.Info("map written", zap.String("file", filename))
	return true, nil
}

// OutputFilename builds "<dir>/<prefix> <date>.<suffix>".
func OutputFilename(dir, prefix, date, suffix string) string {
	return filepath.Join(dir, fmt.Sprintf("%s %s.%s", prefix, date, suffix))
}

func removeIfExists(name string) bool {
	err := os.Remove(name)
	return err == nil
}

// FindBalances pairs boats and helpers per time slot from today on. A slot with
// boats and at most one helper is understaffed; helpers without boats are too
// many.
func FindBalances(rows []model.ScheduleRow, boatSchedule, workSchedule, today string) []Balance {
	type counts struct{ boats, helpers int }
	slots := make(map[string]*counts)
	for _, r := range rows {
		if r.Date < today || r.FullName == "" {
			continue
		}
		boat := sameSchedule(r.Schedule, boatSchedule)
		work := sameSchedule(r.Schedule, workSchedule)
		if !boat && !work {
			continue
		}
		key := r.Date + " " + r.Time
		c, ok := slots[key]
		if !ok {
			c = &counts{}
			slots[key] = c
		}
		if boat {
			c.boats++
		} else {
			c.helpers++
		}
	}

	keys := make([]string, 0, len(slots))
	for k := range slots {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []Balance
	for _, k := range keys {
		c := slots[k]
		switch {
		case c.boats > 0 && c.helpers <= 1:
			out = append(out, Balance{Slot: k, Boats: c.boats, Helpers: c.helpers, Understaffed: true})
		case c.boats == 0 && c.helpers > 0:
			out = append(out, Balance{Slot: k, Boats: 0, Helpers: c.helpers})
		}
	}
	return out
}
