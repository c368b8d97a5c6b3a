// Package importer parses bank statement CSV exports into ledger rows.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	enc "pennywise/internal/encoding"
	"pennywise/internal/transaction"
)

// Row is one parsed statement line, ready to be created as a transaction.
type Row struct {
	Kind     transaction.Kind
	Category string
	Amount   decimal.Decimal
	Date     time.Time
	Notes    string
}

// header names accepted for each field, lowercased.
var (
	dateCols     = []string{"date", "booking date", "value date"}
	amountCols   = []string{"amount", "value"}
	categoryCols = []string{"category"}
	notesCols    = []string{"description", "notes", "details"}
)

var dateLayouts = []string{time.DateOnly, "02-01-2006", "02/01/2006", "01/02/2006"}

// Parse reads a statement CSV (any supported charset, comma or semicolon
// separated) and returns its rows. The amount column's sign decides the
// kind: negative amounts are expenses, positive are income; the stored
// amount is always positive.
func Parse(r io.Reader) ([]Row, error) {
	utf8r, err := enc.UTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	raw, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read statement: %w", err)
	}

	rows, err := readCSV(raw)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("empty statement")
	}

	cols, ok := mapHeader(rows[0])
	if !ok {
		return nil, fmt.Errorf("no date and amount columns found in header")
	}

	var parsed []Row

	for i, row := range rows[1:] {
		rowNum := i + 2

		date, ok := parseDate(cell(row, cols.date))
		if !ok {
			continue
		}

		amount, err := parseAmount(cell(row, cols.amount))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		if amount.IsZero() {
			continue
		}

		kind := transaction.KindIncome
		if amount.Sign() < 0 {
			kind = transaction.KindExpense
			amount = amount.Neg()
		}

		category := cell(row, cols.category)
		if category == "" {
			category = "Uncategorized"
		}

		parsed = append(parsed, Row{
			Kind:     kind,
			Category: category,
			Amount:   amount,
			Date:     date,
			Notes:    cell(row, cols.notes),
		})
	}

	return parsed, nil
}

// readCSV tries comma first, then semicolon, since European bank exports
// split on either.
func readCSV(raw []byte) ([][]string, error) {
	for _, comma := range []rune{',', ';'} {
		reader := csv.NewReader(strings.NewReader(string(raw)))
		reader.Comma = comma
		reader.FieldsPerRecord = -1
		reader.LazyQuotes = true

		rows, err := reader.ReadAll()
		if err != nil {
			continue
		}

		if len(rows) > 0 && len(rows[0]) >= 2 {
			return rows, nil
		}
	}

	return nil, fmt.Errorf("unreadable csv")
}

type colIndex struct {
	date     int
	amount   int
	category int
	notes    int
}

func mapHeader(header []string) (colIndex, bool) {
	cols := colIndex{date: -1, amount: -1, category: -1, notes: -1}

	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))

		switch {
		case cols.date < 0 && contains(dateCols, name):
			cols.date = i
		case cols.amount < 0 && contains(amountCols, name):
			cols.amount = i
		case cols.category < 0 && contains(categoryCols, name):
			cols.category = i
		case cols.notes < 0 && contains(notesCols, name):
			cols.notes = i
		}
	}

	return cols, cols.date >= 0 && cols.amount >= 0
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}

	return false
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(s, " ", "")

	// "1.234,56" style: drop thousands dots, turn the comma into a point.
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}

	return amount, nil
}
