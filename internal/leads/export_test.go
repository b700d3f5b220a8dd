package leads

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
)

func exportBatch() []Lead {
	return MapResponse([]any{
		map[string]any{"name": "Joe's Diner", "id": "j", "email": "joe@diner.com", "equipmentRecommendation": "Commercial oven, Range"},
		map[string]any{"name": "Taco, Inc", "id": "t"},
	}, restaurantSearch, batchTime)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, exportBatch()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "id" || rows[0][1] != "name" || len(rows[0]) != len(exportHeaders) {
		t.Fatalf("unexpected header %v", rows[0])
	}
	if rows[1][1] != "Joe's Diner" || rows[1][5] != "joe@diner.com" || rows[1][11] != "Commercial oven; Range" {
		t.Fatalf("unexpected row %v", rows[1])
	}
	if rows[2][1] != "Taco, Inc" || rows[2][5] != "" {
		t.Fatalf("unexpected row %v", rows[2])
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, exportBatch()); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0][2] != "stage" || rows[1][0] != "j-0" || rows[1][2] != "New" {
		t.Fatalf("unexpected rows %v", rows[:2])
	}
}

func TestParseExportFormat(t *testing.T) {
	if f, err := ParseExportFormat(""); err != nil || f != FormatCSV {
		t.Fatalf("expected csv default, got %q %v", f, err)
	}
	if f, err := ParseExportFormat("XLSX"); err != nil || f != FormatXLSX {
		t.Fatalf("expected xlsx, got %q %v", f, err)
	}
	if _, err := ParseExportFormat("pdf"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if err := Export(&bytes.Buffer{}, ExportFormat("pdf"), nil); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}
