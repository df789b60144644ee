package service

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/jhogstrom/ess-arbetsschema/config"
	"github.com/jhogstrom/ess-arbetsschema/internal/model"
	apperrors "github.com/jhogstrom/ess-arbetsschema/pkg/errors"
)

// MissingForemanMarker is written where the foreman of the day should be.
const MissingForemanMarker = "INGEN FÖRMAN"

const (
	reportSheet = "Schema"
	// fresh workbook: column headers on row 3, boats from row 4
	freshHeaderRow = 3
	// blank rows between the boat block and the work block header
	freshWorkGap = 2
	// template: the work block header row sits this far below the last boat
	templateWorkGap = 3
	foremanCol      = 6
)

// DayRows are the schedule rows of one report date.
type DayRows struct {
	Date    string
	Boats   []model.ScheduleRow
	Work    []model.ScheduleRow
	Foreman []model.ScheduleRow
}

// ReportSummary describes a written report.
type ReportSummary struct {
	Date           string
	Boats          int
	Work           int
	Foreman        int
	MissingForeman bool
}

type column struct {
	title string
	width float64
}

var boatColumns = []column{
	{"Pass", 12}, {"#", 6}, {"Namn", 17}, {"Mobil", 14},
	{"Plats", 6}, {"Båtmodell", 20}, {"Kommentar", 30}, {"Inställningar", 15},
}

// ReportBuilder renders the daily driver schedule workbook.
type ReportBuilder struct {
	cfg    *config.ScheduleConfig
	logger *zap.Logger
}

// NewReportBuilder creates a ReportBuilder. When cfg.Template is set the
// workbook starts from the template, otherwise from an empty workbook.
func NewReportBuilder(cfg *config.ScheduleConfig, logger *zap.Logger) *ReportBuilder {
	return &ReportBuilder{cfg: cfg, logger: logger}
}

type reportWriter struct {
	f        *excelize.File
	sheet    string
	insert   bool
	border   int
	wrap     int
	header   int
	title    int
	keepZero bool
}

func (w *reportWriter) set(row, col int, value any, style int) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := w.f.SetCellValue(w.sheet, cell, value); err != nil {
		return err
	}
	if style != 0 {
		return w.f.SetCellStyle(w.sheet, cell, cell, style)
	}
	return nil
}

func (w *reportWriter) newRow(row int) error {
	if !w.insert {
		return nil
	}
	return w.f.InsertRows(w.sheet, row, 1)
}

// Build renders the report for one day into a workbook.
func (b *ReportBuilder) Build(day DayRows, now time.Time) (*excelize.File, ReportSummary, error) {
	sum := ReportSummary{
		Date:    day.Date,
		Boats:   len(day.Boats),
		Work:    len(day.Work),
		Foreman: len(day.Foreman),
	}

	w, err := b.open()
	if err != nil {
		return nil, sum, err
	}
	fail := func(err error) (*excelize.File, ReportSummary, error) {
		w.f.Close()
		return nil, sum, fmt.Errorf("build report %s: %w", day.Date, err)
	}

	if err := w.set(1, 1, fmt.Sprintf("%s %s", b.cfg.Header, day.Date), w.title); err != nil {
		return fail(err)
	}
	if err := w.set(1, 7, now.Format("2006-01-02 15:04"), w.title); err != nil {
		return fail(err)
	}

	row := b.cfg.TemplateStartRow
	if !w.insert {
		for i, c := range boatColumns {
			if err := w.set(freshHeaderRow, i+1, c.title, w.header); err != nil {
				return fail(err)
			}
			name, _ := excelize.ColumnNumberToName(i + 1)
			if err := w.f.SetColWidth(w.sheet, name, name, c.width); err != nil {
				return fail(err)
			}
		}
		row = freshHeaderRow + 1
	}

	for _, r := range day.Boats {
		if err := w.newRow(row); err != nil {
			return fail(err)
		}
		values := []any{
			r.Time, r.MemberID, r.Name, FormatPhone(r.Phone, w.keepZero),
			DistinctSpots(r.Spot), r.Model, r.Comment, r.SettingsText(),
		}
		for col, v := range values {
			style := w.border
			if col == 6 {
				style = w.wrap
			}
			if err := w.set(row, col+1, v, style); err != nil {
				return fail(err)
			}
		}
		row++
	}

	headerRow := row + freshWorkGap
	if w.insert {
		headerRow = row + templateWorkGap
	} else {
		titles := map[int]string{1: "Arbetspass", 2: "#", 3: "Namn", 4: "Mobil", 6: "Förmanspass", 7: "Namn", 8: "Mobil"}
		for col, title := range titles {
			if err := w.set(headerRow, col, title, w.header); err != nil {
				return fail(err)
			}
		}
	}

	first := headerRow + 1
	lines := max(len(day.Work), len(day.Foreman), 1)
	for i := 0; i < lines; i++ {
		if err := w.newRow(first + i); err != nil {
			return fail(err)
		}
	}
	for i, r := range day.Work {
		values := []any{r.Time, r.MemberID, r.Name, FormatPhone(r.Phone, w.keepZero)}
		for col, v := range values {
			if err := w.set(first+i, col+1, v, w.border); err != nil {
				return fail(err)
			}
		}
	}
	for i, r := range day.Foreman {
		values := []any{r.Time, r.Name, FormatPhone(r.Phone, w.keepZero)}
		for col, v := range values {
			if err := w.set(first+i, foremanCol+col, v, w.border); err != nil {
				return fail(err)
			}
		}
	}
	if len(day.Foreman) == 0 {
		b.logger.Warn("no foreman found", zap.String("date", day.Date))
		sum.MissingForeman = true
		if err := w.set(first, foremanCol+1, MissingForemanMarker, 0); err != nil {
			return fail(err)
		}
	}

	return w.f, sum, nil
}

func (b *ReportBuilder) open() (*reportWriter, error) {
	w := &reportWriter{keepZero: b.cfg.KeepPhoneZero}
	if b.cfg.Template != "" {
		f, err := excelize.OpenFile(b.cfg.Template)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("report template %s: %w", b.cfg.Template, apperrors.ErrSourceNotFound)
			}
			return nil, fmt.Errorf("open report template %s: %w", b.cfg.Template, err)
		}
		w.f, w.sheet, w.insert = f, f.GetSheetList()[0], true
	} else {
		f := excelize.NewFile()
		if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
			f.Close()
			return nil, err
		}
		w.f, w.sheet = f, reportSheet
	}

	borders := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	styles := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&w.border, &excelize.Style{Border: borders}},
		{&w.wrap, &excelize.Style{Border: borders, Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"}}},
		{&w.header, &excelize.Style{Border: borders, Font: &excelize.Font{Bold: true, Size: 13}}},
		{&w.title, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 13}}},
	}
	for _, s := range styles {
		id, err := w.f.NewStyle(s.style)
		if err != nil {
			w.f.Close()
			return nil, fmt.Errorf("create report style: %w", err)
		}
		*s.dst = id
	}
	if w.insert {
		// the template carries its own title formatting
		w.title = 0
	}
	return w, nil
}

// Write builds the report and saves it to filename.
func (b *ReportBuilder) Write(day DayRows, filename string, now time.Time) (ReportSummary, error) {
	f, sum, err := b.Build(day, now)
	if err != nil {
		return sum, err
	}
	defer f.Close()

	if err := f.SaveAs(filename); err != nil {
		if errors.Is(err, os.ErrPermission) {
			return sum, fmt.Errorf("%s: %w", filename, apperrors.ErrFileLocked)
		}
		return sum, fmt.Errorf("save report %s: %w", filename, err)
	}
	b.logger.Info("report written",
		zap.String("file", filename),
		zap.Int("boats", sum.Boats),
		zap.Int("work", sum.Work),
		zap.Int("foreman", sum.Foreman),
	)
	return sum, nil
}
