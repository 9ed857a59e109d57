// Package barcode reads the lot-related element strings of GS1-128 /
// GS1 DataMatrix labels printed on pharmaceutical packs.
package barcode

import (
	"fmt"
	"strings"
	"time"

	"lotqc/model"
)

// groupSeparator (FNC1 as transmitted by scanners) ends a variable-length field.
const groupSeparator = '\x1d'

// Result holds the application identifiers the service cares about.
type Result struct {
	Gtin14         string     // (01)
	LotNumber      string     // (10)
	ProductionDate model.Date // (11)
	ExpirationDate model.Date // (17)
}

// fixedLengths gives the data length of fixed-length AIs.
var fixedLengths = map[string]int{
	"01": 14,
	"11": 6,
	"17": 6,
}

// aiLengths is the maximum data length of variable-length AIs.
var aiLengths = map[string]int{
	"10": 20,
}

// Parse decodes an AI element string such as
// "0114987123456789112301011728010010LOT42". AIs may be written in
// parentheses, which then delimit the fields, and a leading "]C1"/"]d2"
// symbology identifier is ignored.
func Parse(code string) (*Result, error) {
	code = normalize(code)
	if code == "" {
		return nil, fmt.Errorf("barcode is empty")
	}

	result := &Result{}
	i := 0
	for i < len(code) {
		if code[i] == groupSeparator {
			i++
			continue
		}
		if i+2 > len(code) {
			return nil, fmt.Errorf("trailing data at offset %d", i)
		}
		ai := code[i : i+2]
		dataStart := i + 2

		if n, ok := fixedLengths[ai]; ok {
			if dataStart+n > len(code) {
				return nil, fmt.Errorf("AI(%s) data is truncated", ai)
			}
			data := code[dataStart : dataStart+n]
			if strings.ContainsRune(data, groupSeparator) {
				return nil, fmt.Errorf("AI(%s) data is too short", ai)
			}
			if err := result.setFixed(ai, data); err != nil {
				return nil, err
			}
			i = dataStart + n
			continue
		}

		if maxLength, ok := aiLengths[ai]; ok {
			dataEnd := variableEnd(code, dataStart, maxLength)
			result.LotNumber = code[dataStart:dataEnd]
			i = dataEnd
			continue
		}

		return nil, fmt.Errorf("unsupported AI(%s) at offset %d", ai, i)
	}

	if result.Gtin14 == "" {
		return nil, fmt.Errorf("AI(01) GTIN not found in barcode")
	}
	return result, nil
}

func (r *Result) setFixed(ai, data string) error {
	switch ai {
	case "01":
		r.Gtin14 = data
	case "11":
		d, err := parseYYMMDD(data)
		if err != nil {
			return fmt.Errorf("AI(11) production date: %w", err)
		}
		r.ProductionDate = d
	case "17":
		d, err := parseYYMMDD(data)
		if err != nil {
			return fmt.Errorf("AI(17) expiration date: %w", err)
		}
		r.ExpirationDate = d
	}
	return nil
}

// variableEnd finds where a variable-length field stops: at a group
// separator, at maxLength, or where the rest of the code is made up only of
// complete fixed-length elements.
func variableEnd(code string, start, maxLength int) int {
	end := start
	for end < len(code) {
		if end-start >= maxLength || code[end] == groupSeparator {
			break
		}
		if end > start && fixedTail(code[end:]) {
			break
		}
		end++
	}
	return end
}

// fixedTail reports whether s is one or more fixed-length elements and
// nothing else.
func fixedTail(s string) bool {
	if len(s) < 2 {
		return false
	}
	n, ok := fixedLengths[s[:2]]
	if !ok || len(s) < 2+n {
		return false
	}
	rest := s[2+n:]
	return rest == "" || fixedTail(rest)
}

// parseYYMMDD reads a GS1 date. Day "00" means the last day of the month.
func parseYYMMDD(s string) (model.Date, error) {
	if len(s) != 6 {
		return model.Date{}, fmt.Errorf("invalid date %q", s)
	}
	if s[4:] == "00" {
		t, err := time.Parse("060102", s[:4]+"01")
		if err != nil {
			return model.Date{}, fmt.Errorf("invalid date %q", s)
		}
		return model.DateOf(t.AddDate(0, 1, -1)), nil
	}
	t, err := time.Parse("060102", s)
	if err != nil {
		return model.Date{}, fmt.Errorf("invalid date %q", s)
	}
	return model.DateOf(t), nil
}

// normalize strips the symbology identifier and turns the human readable
// "(AI)" form into separator-delimited elements.
func normalize(code string) string {
	code = strings.TrimSpace(code)
	for _, prefix := range []string{"]C1", "]d2", "]Q3"} {
		code = strings.TrimPrefix(code, prefix)
	}
	return strings.NewReplacer("(", string(groupSeparator), ")", "").Replace(code)
}
