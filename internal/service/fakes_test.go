package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jhogstrom/ess-arbetsschema/internal/model"
)

// ── test helpers ──

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

// writeWorkbook stores rows (header first) as the first sheet of a new xlsx.
func writeWorkbook(t *testing.T, dir, name string, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("write row: %v", err)
		}
	}
	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

// ── mockDispatchRepo ──

type mockDispatchRepo struct {
	items []model.Dispatch
	err   error
}

func (m *mockDispatchRepo) Create(_ context.Context, d *model.Dispatch) error {
	if m.err != nil {
		return m.err
	}
	if d.DispatchID == "" {
		d.DispatchID = "d-" + d.Target
	}
	m.items = append(m.items, *d)
	return nil
}

func (m *mockDispatchRepo) Exists(_ context.Context, kind, date, target, checksum string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for _, d := range m.items {
		if d.Kind == kind && d.Date == date && d.Target == target && (checksum == "" || d.Checksum == checksum) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockDispatchRepo) ListByDate(_ context.Context, date string) ([]model.Dispatch, error) {
	var out []model.Dispatch
	for _, d := range m.items {
		if d.Date == date {
			out = append(out, d)
		}
	}
	return out, nil
}

// ── fakeMailer ──

type fakeMailer struct {
	sent []*model.MailMessage
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg *model.MailMessage) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, msg)
	return "msg-1", nil
}

// ── fakeUploader ──

type fakeUploader struct {
	uploaded map[string]string // path → folder
	fail     map[string]bool
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{uploaded: map[string]string{}, fail: map[string]bool{}}
}

func (f *fakeUploader) Upload(_ context.Context, folderID, path string) (string, error) {
	if f.fail[path] {
		return "", errors.New("quota exceeded")
	}
	f.uploaded[path] = folderID
	return "id-" + filepath.Base(path), nil
}

// ── fakeRemote ──

type fakeRemote struct {
	values map[string][][]string
	calls  int
}

func (f *fakeRemote) FirstSheetValues(_ context.Context, id string) ([][]string, error) {
	f.calls++
	v, ok := f.values[id]
	if !ok {
		return nil, errors.New("no such sheet")
	}
	return v, nil
}
