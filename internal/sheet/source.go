package sheet

import (
	"context"
	"fmt"
	"os"
	"regexp"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	apperrors "github.com/jhogstrom/ess-arbetsschema/pkg/errors"
)

// RemoteSource fetches the values of the first sheet of a remote spreadsheet.
type RemoteSource interface {
	FirstSheetValues(ctx context.Context, sheetID string) ([][]string, error)
}

var sheetIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{44}$`)

// IsSheetID reports whether s looks like a Google spreadsheet id.
func IsSheetID(s string) bool {
	return sheetIDPattern.MatchString(s)
}

// Loader loads tables from local workbooks or, for sheet ids, from a remote source.
type Loader struct {
	remote RemoteSource
	logger *zap.Logger
}

// NewLoader creates a Loader. remote may be nil when only local files are used.
func NewLoader(remote RemoteSource, logger *zap.Logger) *Loader {
	return &Loader{remote: remote, logger: logger}
}

// Load reads source as a local file when it exists, otherwise as a sheet id.
func (l *Loader) Load(ctx context.Context, source string) (*Table, error) {
	if _, err := os.Stat(source); err == nil {
		l.logger.Info("reading workbook", zap.String("file", source))
		return ReadFile(source)
	}
	if IsSheetID(source) {
		if l.remote == nil {
			return nil, fmt.Errorf("%s: no remote source configured: %w", source, apperrors.ErrSourceNotFound)
		}
		l.logger.Info("reading remote sheet", zap.String("sheet", source[:5]+"..."))
		values, err := l.remote.FirstSheetValues(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("fetch sheet %s: %w", source, err)
		}
		return NewTable(source, values), nil
	}
	return nil, fmt.Errorf("%s: %w", source, apperrors.ErrSourceNotFound)
}

// ReadFile reads the first worksheet of an xlsx workbook.
func ReadFile(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, apperrors.ErrSourceNotFound)
		}
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return NewTable(path, nil), nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q of %s: %w", sheets[0], path, err)
	}
	return NewTable(path, rows), nil
}
