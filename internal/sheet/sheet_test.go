package sheet

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	apperrors "github.com/jhogstrom/ess-arbetsschema/pkg/errors"
)

func writeWorkbook(t *testing.T, path string, rows [][]any) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
}

func TestTable_RequireAndValue(t *testing.T) {
	// decomposed "ö" in the header must match the composed column name
	decomposed := "Fo\u0308rnamn"
	tbl := NewTable("members", [][]string{
		{"Medlemsnr", decomposed, " Bredd "},
		{"100", "Anna", "3,2"},
		{"101"},
	})

	require.NoError(t, tbl.Require("Medlemsnr", "Förnamn", "Bredd"))
	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, "Anna", tbl.Value(0, "Förnamn"))
	assert.Equal(t, "", tbl.Value(1, "Förnamn"), "short row")
	assert.Equal(t, "", tbl.Value(0, "Okänd"))
	assert.Equal(t, []string{"100", "101"}, tbl.Column("Medlemsnr"))

	err := tbl.Require("Medlemsnr", "Längd (båt)", "Plats")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrMissingColumn))
	assert.Contains(t, err.Error(), `"Längd (båt)"`)
	assert.Contains(t, err.Error(), `"Plats"`)
}

func TestTable_HeaderLookupIgnoresCase(t *testing.T) {
	tbl := NewTable("export", [][]string{
		{"MedlemsNr", "PASS TID", "Längd (Båt)"},
		{"100", "09:00", "8,5"},
	})

	require.NoError(t, tbl.Require("Medlemsnr", "Pass tid", "längd (båt)"))
	assert.True(t, tbl.Has("medlemsnr"))
	assert.Equal(t, "09:00", tbl.Value(0, "Pass tid"))
	assert.Equal(t, "8,5", tbl.Value(0, "LÄNGD (BÅT)"))
	assert.Equal(t, "MedlemsNr", tbl.Headers[0], "headers keep their spelling")
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "members.xlsx")
	writeWorkbook(t, path, [][]any{
		{"Medlemsnr", "Efternamn", "Längd (båt)"},
		{100, "Svensson", 8.5},
		{101, "Berg", "7,9"},
	})

	tbl, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, "100", tbl.Value(0, "Medlemsnr"))
	assert.Equal(t, "8.5", tbl.Value(0, "Längd (båt)"))
	assert.Equal(t, "7,9", tbl.Value(1, "Längd (båt)"))
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.xlsx"))
	require.Error(t, err)
}

type fakeRemote struct {
	values [][]string
	calls  int
}

func (f *fakeRemote) FirstSheetValues(_ context.Context, _ string) ([][]string, error) {
	f.calls++
	return f.values, nil
}

func TestLoader_Load(t *testing.T) {
	remote := &fakeRemote{values: [][]string{{"Medlemsnummer"}, {"#12"}}}
	loader := NewLoader(remote, zap.NewNop())
	ctx := context.Background()

	id := strings.Repeat("a", 20) + strings.Repeat("B", 20) + "_-x9"
	require.True(t, IsSheetID(id))
	tbl, err := loader.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "#12", tbl.Value(0, "Medlemsnummer"))
	assert.Equal(t, 1, remote.calls)

	_, err = loader.Load(ctx, "missing.xlsx")
	assert.True(t, errors.Is(err, apperrors.ErrSourceNotFound))

	_, err = NewLoader(nil, zap.NewNop()).Load(ctx, id)
	assert.True(t, errors.Is(err, apperrors.ErrSourceNotFound))
}

func TestResolveSource_LocalFileBeforeSheetID(t *testing.T) {
	dir := t.TempDir()
	logger := zap.NewNop()
	id := strings.Repeat("c", 44)

	got, err := ResolveSource(id, []string{dir}, logger)
	require.NoError(t, err)
	assert.Equal(t, id, got, "no local file, sheet id is kept")

	local := filepath.Join(dir, id)
	require.NoError(t, os.WriteFile(local, []byte("x"), 0o644))
	got, err = ResolveSource(id, []string{dir}, logger)
	require.NoError(t, err)
	assert.Equal(t, local, got)

	_, err = ResolveSource("saknas.xlsx", []string{dir}, logger)
	assert.True(t, errors.Is(err, apperrors.ErrSourceNotFound))
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	logger := zap.NewNop()

	older := filepath.Join(dir, "varvskarta 2024.pptx")
	newer := filepath.Join(dir, "varvskarta 2025.pptx")
	lock := filepath.Join(dir, "~$varvskarta 2026.pptx")
	for _, p := range []string{older, newer, lock} {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}
	now := time.Now()
	require.NoError(t, os.Chtimes(older, now.Add(-2*time.Hour), now.Add(-2*time.Hour)))
	require.NoError(t, os.Chtimes(newer, now.Add(-time.Hour), now.Add(-time.Hour)))
	require.NoError(t, os.Chtimes(lock, now, now))

	got, err := Resolve("varvskarta*.pptx", []string{dir}, logger)
	require.NoError(t, err)
	assert.Equal(t, newer, got)

	got, err = Resolve("varvskarta 2024.pptx", []string{dir}, logger)
	require.NoError(t, err)
	assert.Equal(t, older, got)

	got, err = Resolve(older, nil, logger)
	require.NoError(t, err)
	assert.Equal(t, older, got)

	_, err = Resolve("karta*.xlsx", []string{dir}, logger)
	assert.True(t, errors.Is(err, apperrors.ErrSourceNotFound))

	_, err = Resolve("", []string{dir}, logger)
	assert.Error(t, err)
}

func TestNormalizeDate(t *testing.T) {
	cases := map[string]string{
		"2025-09-21":          "2025-09-21",
		"2025-09-21 00:00:00": "2025-09-21",
		"09-21-25":            "2025-09-21",
		"45921":               "2025-09-21",
	}
	for in, want := range cases {
		got, ok := NormalizeDate(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := NormalizeDate("imorgon")
	assert.False(t, ok)
	_, ok = NormalizeDate("")
	assert.False(t, ok)
}

func TestParseDecimal(t *testing.T) {
	v, err := ParseDecimal("3,25")
	require.NoError(t, err)
	assert.InDelta(t, 3.25, v, 1e-9)

	v, err = ParseDecimal(" 8.5 ")
	require.NoError(t, err)
	assert.InDelta(t, 8.5, v, 1e-9)

	_, err = ParseDecimal("bred")
	assert.Error(t, err)
}
