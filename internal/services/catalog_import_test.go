package services

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

// workbook builds an in-memory xlsx with the given rows on the first sheet
func workbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("Failed to build cell reference: %v", err)
		}
		row := row
		if err := f.SetSheetRow(sheet, cellRef, &row); err != nil {
			t.Fatalf("Failed to write row %d: %v", i, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("Failed to write workbook: %v", err)
	}
	return buf
}

func TestParseCatalog(t *testing.T) {
	// GIVEN
	buf := workbook(t, [][]any{
		{"ID", "Name", "Price", "Currency", "Image URL", "Image Alt", "Description"},
		{"42", "Trail Shoe", "$89.99", "USD", "https://x/42.jpg", "Side view", "Made for mud"},
		{"", "Yoga Mat", "1,020.50", "", "", "", ""},
		{"", "", "", "", "", "", ""},
		{"9", "Broken", "free", "USD", "", "", ""},
	})

	// WHEN
	products, err := ParseCatalog(buf)

	// THEN
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}

	shoe := products[0]
	if shoe.ID != "42" || shoe.Name != "Trail Shoe" {
		t.Errorf("unexpected first product: %+v", shoe)
	}
	if shoe.Price.StringFixed(2) != "89.99" {
		t.Errorf("expected price 89.99, got %s", shoe.Price.StringFixed(2))
	}
	if shoe.ImageURL != "https://x/42.jpg" || shoe.ImageAlt != "Side view" {
		t.Errorf("image fields not mapped: %+v", shoe)
	}
	if shoe.Description != "Made for mud" {
		t.Errorf("description not mapped: %q", shoe.Description)
	}

	mat := products[1]
	if mat.ID != productIDFromName("Yoga Mat") {
		t.Errorf("blank ID should be derived from the name, got %q", mat.ID)
	}
	if mat.Price.StringFixed(2) != "1020.50" {
		t.Errorf("expected price 1020.50, got %s", mat.Price.StringFixed(2))
	}
}

func TestParseCatalog_HeaderErrors(t *testing.T) {
	tests := []struct {
		name string
		rows [][]any
	}{
		{
			name: "missing price column",
			rows: [][]any{{"id", "name"}, {"1", "Backpack"}},
		},
		{
			name: "missing name column",
			rows: [][]any{{"id", "price"}, {"1", "60"}},
		},
		{
			name: "header only",
			rows: [][]any{{"id", "name", "price"}},
		},
		{
			name: "all rows invalid",
			rows: [][]any{{"id", "name", "price"}, {"1", "Backpack", "n/a"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseCatalog(workbook(t, tt.rows)); err == nil {
				t.Error("expected error but got none")
			}
		})
	}
}

func TestParseCatalogFile_Missing(t *testing.T) {
	if _, err := ParseCatalogFile("/nonexistent/catalog.xlsx"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseCatalog_BlankIDsAreStable(t *testing.T) {
	// GIVEN
	rows := [][]any{
		{"name", "price"},
		{"Trail Shoe", "89.99"},
		{"Yoga Mat", "25"},
	}

	// WHEN
	first, err := ParseCatalog(workbook(t, rows))
	if err != nil {
		t.Fatalf("first parse failed: %v", err)
	}
	second, err := ParseCatalog(workbook(t, rows))
	if err != nil {
		t.Fatalf("second parse failed: %v", err)
	}

	// THEN
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("expected 2 products per parse, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("row %d: IDs differ between imports: %s != %s", i, first[i].ID, second[i].ID)
		}
	}
	if first[0].ID == first[1].ID {
		t.Error("different names must not share an ID")
	}
}

func TestProductIDFromName(t *testing.T) {
	if productIDFromName("Trail Shoe") != productIDFromName("  trail   SHOE ") {
		t.Error("expected case and whitespace to be ignored")
	}
	if productIDFromName("Trail Shoe") == productIDFromName("Trail Shoes") {
		t.Error("expected distinct names to get distinct IDs")
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "89.99", want: "89.99"},
		{raw: "$1,299.00", want: "1299.00"},
		{raw: "1,020.50", want: "1020.50"},
		{raw: "€ 12", want: "12.00"},
		{raw: "1,234,567", want: "1234567.00"},
		{raw: "12,50", wantErr: true},
		{raw: "1,2,3", wantErr: true},
		{raw: ",99", wantErr: true},
		{raw: "", wantErr: true},
		{raw: "free", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parsePrice(tt.raw)

			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %s", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.StringFixed(2) != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got.StringFixed(2))
			}
		})
	}
}
