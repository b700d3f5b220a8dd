package leads

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExportFormat is a download format for the current batch.
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatXLSX ExportFormat = "xlsx"
)

// ParseExportFormat defaults to CSV when value is empty.
func ParseExportFormat(value string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(FormatCSV):
		return FormatCSV, nil
	case string(FormatXLSX):
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("leads: %q: %w", value, ErrUnsupportedFormat)
	}
}

// ContentType returns the MIME type of the format.
func (f ExportFormat) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

var exportHeaders = []string{
	"id", "name", "stage", "category", "phone", "email", "website", "rating",
	"address", "city", "state", "equipment", "created_at",
}

func exportRow(l Lead) []string {
	return []string{
		l.ID,
		l.Name,
		string(l.Stage),
		l.Category,
		deref(l.Phone),
		deref(l.Email),
		deref(l.Website),
		deref(l.Rating),
		l.Address,
		l.City,
		l.State,
		strings.Join(l.EquipmentRecommendations, "; "),
		l.CreatedAt,
	}
}

// Export writes leads in the given format.
func Export(w io.Writer, format ExportFormat, leads []Lead) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, leads)
	case FormatXLSX:
		return WriteXLSX(w, leads)
	default:
		return fmt.Errorf("leads: %q: %w", format, ErrUnsupportedFormat)
	}
}

// WriteCSV writes a header row followed by one row per lead.
func WriteCSV(w io.Writer, leads []Lead) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeaders); err != nil {
		return fmt.Errorf("leads: write csv header: %w", err)
	}
	for _, l := range leads {
		if err := cw.Write(exportRow(l)); err != nil {
			return fmt.Errorf("leads: write csv row %s: %w", l.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("leads: flush csv: %w", err)
	}
	return nil
}

// WriteXLSX writes a single-sheet workbook with the same layout as WriteCSV.
func WriteXLSX(w io.Writer, leads []Lead) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	for i, l := range leads {
		for col, value := range exportRow(l) {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			_ = f.SetCellValue(sheet, cell, value)
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("leads: write xlsx: %w", err)
	}
	return nil
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
