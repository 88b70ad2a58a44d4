package db

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ikkim/pizza-delivery-backend/internal/app/model"
	"github.com/ikkim/pizza-delivery-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Menu sheet columns: name | description | price | type | is_available | image_url.
// The first row is a header. is_available and image_url are optional.
const (
	colName = iota
	colDescription
	colPrice
	colType
	colAvailable
	colImageURL

	minMenuColumns = colType + 1
)

// MenuImportResult holds the parsed pizzas and the 1-based row numbers that were rejected.
type MenuImportResult struct {
	Pizzas      []model.Pizza
	SkippedRows []int
}

// ReadMenuXLSX parses the first sheet of an xlsx workbook into pizzas.
func ReadMenuXLSX(r io.Reader) (*MenuImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	result := &MenuImportResult{}
	seen := make(map[string]bool)

	for i, row := range rows {
		if i == 0 {
			continue
		}
		pizza, ok := parseMenuRow(row)
		key := strings.ToLower(pizza.Name)
		if !ok || seen[key] {
			result.SkippedRows = append(result.SkippedRows, i+1)
			continue
		}
		seen[key] = true
		result.Pizzas = append(result.Pizzas, pizza)
	}

	logger.Info("Menu workbook parsed", map[string]interface{}{
		"sheet":   sheetName,
		"pizzas":  len(result.Pizzas),
		"skipped": len(result.SkippedRows),
	})
	return result, nil
}

func parseMenuRow(row []string) (model.Pizza, bool) {
	if len(row) < minMenuColumns {
		return model.Pizza{}, false
	}

	cell := func(idx int) string {
		if idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	pizza := model.Pizza{
		Name:        cell(colName),
		Description: cell(colDescription),
		Type:        model.PizzaType(strings.ToLower(cell(colType))),
		IsAvailable: true,
		ImageURL:    cell(colImageURL),
	}
	if pizza.Name == "" || !pizza.Type.Valid() {
		return pizza, false
	}

	price, err := decimal.NewFromString(cell(colPrice))
	if err != nil || !price.IsPositive() {
		return pizza, false
	}
	pizza.Price = price.Round(2)

	if available := cell(colAvailable); available != "" {
		v, err := strconv.ParseBool(strings.ToLower(available))
		if err != nil {
			return pizza, false
		}
		pizza.IsAvailable = v
	}

	return pizza, true
}
