package spreadsheet

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestExtractReadsFirstSheets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "itinerary.xlsx")
	book := excelize.NewFile()
	if err := book.SetCellValue("Sheet1", "A1", "Day 1"); err != nil {
		t.Fatalf("SetCellValue: %v", err)
	}
	if err := book.SetCellValue("Sheet1", "B1", "Lisbon, Portugal"); err != nil {
		t.Fatalf("SetCellValue: %v", err)
	}
	for _, sheet := range []string{"Day2", "Day3"} {
		if _, err := book.NewSheet(sheet); err != nil {
			t.Fatalf("NewSheet: %v", err)
		}
		if err := book.SetCellValue(sheet, "A1", sheet+" city"); err != nil {
			t.Fatalf("SetCellValue: %v", err)
		}
	}
	if err := book.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	_ = book.Close()

	text, err := NewExtractor().Extract(context.Background(), path, 2)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !strings.Contains(text, "Day 1\tLisbon, Portugal") || !strings.Contains(text, "Day2 city") {
		t.Fatalf("unexpected text %q", text)
	}
	if strings.Contains(text, "Day3 city") {
		t.Fatalf("sheet beyond limit must be skipped: %q", text)
	}
}

func TestExtractMissingWorkbook(t *testing.T) {
	if _, err := NewExtractor().Extract(context.Background(), filepath.Join(t.TempDir(), "none.xlsx"), 1); err == nil {
		t.Fatalf("expected error")
	}
}
