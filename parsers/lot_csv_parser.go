package parsers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"lotqc/model"
)

// LotCSVHeader is the column order written by exports. lot_id is ignored
// on import.
var LotCSVHeader = []string{"lot_id", "product_name", "quantity", "production_date", "expiration_date"}

var requiredLotHeaders = []string{"product_name", "quantity", "production_date", "expiration_date"}

// RowError is a validation failure on one CSV line (1-based, header is 1).
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// CSVError collects every invalid row of an upload.
type CSVError struct {
	Rows []RowError
}

func (e *CSVError) Error() string {
	msgs := make([]string, 0, len(e.Rows))
	for _, r := range e.Rows {
		msgs = append(msgs, r.Error())
	}
	return fmt.Sprintf("%d invalid row(s): %s", len(e.Rows), strings.Join(msgs, "; "))
}

// ParseLotCSV reads lots from UTF-8 CSV text with a header row, as
// produced by NewDecodingReader. Every row is validated; if any row is
// invalid a *CSVError listing all of them is returned and no lots are.
func ParseLotCSV(r io.Reader) ([]model.LotInput, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New("CSV file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colIndex, err := getColIndex(header, requiredLotHeaders)
	if err != nil {
		return nil, err
	}

	var (
		inputs  []model.LotInput
		rowErrs []RowError
	)
	line := 1
	for {
		line++
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: line, Err: err})
			continue
		}

		get := func(key string) string {
			if idx, ok := colIndex[key]; ok && idx < len(rec) {
				if key == "product_name" {
					return rec[idx]
				}
				return strings.TrimSpace(rec[idx])
			}
			return ""
		}

		in, err := parseLotRow(get)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: line, Err: err})
			continue
		}
		inputs = append(inputs, in)
	}

	if len(rowErrs) > 0 {
		return nil, &CSVError{Rows: rowErrs}
	}
	return inputs, nil
}

func parseLotRow(get func(string) string) (model.LotInput, error) {
	qtyText := get("quantity")
	if qtyText == "" {
		return model.LotInput{}, &model.ValidationError{Field: "quantity", Message: "is required"}
	}
	qty, err := strconv.ParseInt(qtyText, 10, 64)
	if err != nil {
		return model.LotInput{}, &model.ValidationError{Field: "quantity", Message: fmt.Sprintf("must be an integer, got %q", qtyText)}
	}
	return model.NewLotRequest(get("product_name"), qty, get("production_date"), get("expiration_date")).Validate()
}
