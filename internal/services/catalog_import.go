package services

import (
	"fmt"
	"io"
	"log"
	"regexp"
	"strings"

	"github.com/acme/storefront/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// catalogNamespace scopes the name-derived IDs of rows without an id cell
var catalogNamespace = uuid.MustParse("6f1c2a7e-58b4-4c3d-9a0e-2d7b1f9c4e11")

// thousandsPrice matches amounts whose commas group thousands, e.g. 1,299.00
var thousandsPrice = regexp.MustCompile(`^\d{1,3}(,\d{3})+(\.\d+)?$`)

// catalogColumns maps accepted header spellings to product fields
var catalogColumns = map[string]string{
	"id":                "id",
	"sku":               "id",
	"name":              "name",
	"product":           "name",
	"price":             "price",
	"currency":          "currency",
	"image_url":         "image_url",
	"imageurl":          "image_url",
	"imageurl1":         "image_url",
	"image":             "image_url",
	"image_alt":         "image_alt",
	"alt":               "image_alt",
	"short_description": "short_description",
	"shortdescription":  "short_description",
	"description":       "description",
}

// ParseCatalogFile reads products from the first sheet of an Excel workbook
func ParseCatalogFile(path string) ([]models.Product, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer f.Close()

	return parseCatalogWorkbook(f)
}

// ParseCatalog reads products from an Excel workbook stream
func ParseCatalog(r io.Reader) ([]models.Product, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel stream: %w", err)
	}
	defer f.Close()

	return parseCatalogWorkbook(f)
}

func parseCatalogWorkbook(f *excelize.File) ([]models.Product, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("excel file has no data rows")
	}

	columns := mapCatalogColumns(rows[0])
	if _, ok := columns["name"]; !ok {
		return nil, fmt.Errorf("excel header has no name column")
	}
	if _, ok := columns["price"]; !ok {
		return nil, fmt.Errorf("excel header has no price column")
	}

	var products []models.Product
	for i, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}

		cell := func(field string) string {
			idx, ok := columns[field]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		price, err := parsePrice(cell("price"))
		if err != nil {
			log.Printf("Row %d: invalid price %q - skipping", i+2, cell("price"))
			continue
		}

		p := models.Product{
			ID:               cell("id"),
			Name:             cell("name"),
			ShortDescription: cell("short_description"),
			Description:      cell("description"),
			Price:            price,
			Currency:         cell("currency"),
			ImageURL:         cell("image_url"),
			ImageAlt:         cell("image_alt"),
		}
		if p.ID == "" {
			p.ID = productIDFromName(p.Name)
		}

		products = append(products, p)
	}

	if len(products) == 0 {
		return nil, fmt.Errorf("no valid products found in excel file")
	}
	return products, nil
}

func mapCatalogColumns(header []string) map[string]int {
	columns := make(map[string]int)
	for i, raw := range header {
		key := strings.ToLower(strings.TrimSpace(raw))
		key = strings.ReplaceAll(key, " ", "_")
		if field, ok := catalogColumns[key]; ok {
			if _, seen := columns[field]; !seen {
				columns[field] = i
			}
		}
	}
	return columns
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// productIDFromName derives a stable ID so re-importing a sheet upserts
// the same rows.
func productIDFromName(name string) string {
	key := strings.ToLower(strings.Join(strings.Fields(name), " "))
	return uuid.NewSHA1(catalogNamespace, []byte(key)).String()
}

// parsePrice accepts plain numbers and common formatting such as "$1,299.00".
// Commas are only accepted as thousands separators; "12,50" is rejected.
func parsePrice(raw string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer(" ", "", "$", "", "€", "", "£", "").Replace(raw)
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("empty price")
	}
	if strings.Contains(cleaned, ",") {
		if !thousandsPrice.MatchString(cleaned) {
			return decimal.Zero, fmt.Errorf("ambiguous comma in price %q", raw)
		}
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}
	return decimal.NewFromString(cleaned)
}
