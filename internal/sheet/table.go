package sheet

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	apperrors "github.com/jhogstrom/ess-arbetsschema/pkg/errors"
)

// Table is a header row plus data rows, read from a workbook or a remote sheet.
// Cells are kept as the strings the source rendered.
type Table struct {
	Source  string
	Headers []string
	Rows    [][]string
	index   map[string]int
}

// NewTable treats the first row of values as the header.
func NewTable(source string, values [][]string) *Table {
	t := &Table{Source: source, index: make(map[string]int)}
	if len(values) == 0 {
		return t
	}
	t.Headers = make([]string, len(values[0]))
	for i, h := range values[0] {
		t.Headers[i] = headerName(h)
		key := headerKey(h)
		if _, dup := t.index[key]; !dup && key != "" {
			t.index[key] = i
		}
	}
	t.Rows = values[1:]
	return t
}

// Header names written by different tools differ in unicode composition
// (Ö vs O + diaeresis) and stray spaces.
func headerName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// headerKey is the lookup key of a header. Lookups ignore case as well, since
// exports differ in "Medlemsnr" vs "MedlemsNr".
func headerKey(s string) string {
	return cases.Fold().String(headerName(s))
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// Has reports whether the table has the column.
func (t *Table) Has(col string) bool {
	_, ok := t.index[headerKey(col)]
	return ok
}

// Require fails with ErrMissingColumn naming every column that is absent.
func (t *Table) Require(cols ...string) error {
	var missing []string
	for _, c := range cols {
		if c == "" {
			continue
		}
		if !t.Has(c) {
			missing = append(missing, fmt.Sprintf("%q", c))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s: %w: %s", t.Source, apperrors.ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}

// Value returns the trimmed cell at row/col, or "" when the row is short or the
// column unknown.
func (t *Table) Value(row int, col string) string {
	i, ok := t.index[headerKey(col)]
	if !ok || row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if i >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[i])
}

// Column returns every value of col, empty cells included.
func (t *Table) Column(col string) []string {
	out := make([]string, len(t.Rows))
	for i := range t.Rows {
		out[i] = t.Value(i, col)
	}
	return out
}
