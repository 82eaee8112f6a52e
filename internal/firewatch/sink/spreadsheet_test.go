package sink

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func mustTime(t *testing.T) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, "2025-07-29T01:06:00Z")
	if err != nil {
		t.Fatal(err)
	}
	return ts
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func TestSpreadsheetHeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	s := NewSpreadsheet(zap.NewNop(), path)

	if err := s.Append(testRecord("1")); err != nil {
		t.Fatal(err)
	}
	if err := s.Append(testRecord("2")); err != nil {
		t.Fatal(err)
	}

	rows := readRows(t, path)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2 data rows", len(rows))
	}
	for i, h := range sheetHeader {
		if rows[0][i] != h {
			t.Errorf("header[%d] = %q, want %q", i, rows[0][i], h)
		}
	}
	if rows[1][0] != "1" || rows[2][0] != "2" {
		t.Errorf("unexpected tweet ids: %q, %q", rows[1][0], rows[2][0])
	}
}

func TestSpreadsheetValidAfterEveryAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	s := NewSpreadsheet(zap.NewNop(), path)

	for i, id := range []string{"1", "2", "3"} {
		if err := s.Append(testRecord(id)); err != nil {
			t.Fatal(err)
		}
		rows := readRows(t, path)
		if len(rows) != i+2 {
			t.Fatalf("after append %d: got %d rows, want %d", i+1, len(rows), i+2)
		}
	}
}

func TestSpreadsheetURLColumnByHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	s := NewSpreadsheet(zap.NewNop(), path)
	if err := s.Append(testRecord("1")); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	// url 列在第 5 列，数据行应带超链接
	ok, link, err := f.GetCellHyperLink(sheetName, "E2")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("url cell has no hyperlink")
	}
	if link != "https://x.com/a/1" {
		t.Errorf("hyperlink = %q", link)
	}
}

func TestRunPathsShareTimestamp(t *testing.T) {
	dir := t.TempDir()
	ledger, sheet := RunPaths(dir, mustTime(t))
	if filepath.Dir(ledger) != dir || filepath.Dir(sheet) != dir {
		t.Fatal("paths not in output dir")
	}
	if filepath.Base(ledger) != "live_verified_fires_20250729_010600.json" {
		t.Errorf("ledger name = %q", filepath.Base(ledger))
	}
	if filepath.Base(sheet) != "verified_fires_20250729_010600.xlsx" {
		t.Errorf("sheet name = %q", filepath.Base(sheet))
	}
}
