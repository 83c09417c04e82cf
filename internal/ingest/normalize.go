package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Field normalization: locale-formatted cell text to typed values. These
// functions know nothing about which semantic field the cell belongs to.

// serialDateEpoch is the spreadsheet serial-date day zero (1899-12-30,
// which absorbs the historical 1900 leap-year bug of the original format).
var serialDateEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// maxSerialDate caps serial values at year ~2173; anything larger is a
// number that happens to sit in a date column, not a date.
const maxSerialDate = 100000

// ParseLocaleDecimal converts locale-formatted numeric text into a
// decimal. Currency symbols and whitespace are stripped. A comma is the
// decimal separator when it is the rightmost separator; otherwise the dot
// is decimal and every separator before it is a thousands mark.
//
//	"1.234,56"   -> 1234.56
//	"1234.56"    -> 1234.56
//	"R$ 2.000"   -> 2000
func ParseLocaleDecimal(raw string) (decimal.Decimal, error) {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9', r == ',', r == '.':
			b.WriteRune(r)
		case r == '-' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	s := b.String()

	if !strings.ContainsAny(s, "0123456789") {
		return decimal.Zero, fmt.Errorf("%w: %q has no digits", ErrInvalidNumber, raw)
	}

	lastComma := strings.LastIndexByte(s, ',')
	lastDot := strings.LastIndexByte(s, '.')

	switch {
	case lastComma > lastDot:
		// comma is the decimal separator; dots (and any earlier
		// commas) are thousands marks
		s = strings.ReplaceAll(s, ".", "")
		lastComma = strings.LastIndexByte(s, ',')
		s = strings.ReplaceAll(s[:lastComma], ",", "") + "." + s[lastComma+1:]
	case lastDot >= 0:
		s = strings.ReplaceAll(s, ",", "")
		lastDot = strings.LastIndexByte(s, '.')
		s = strings.ReplaceAll(s[:lastDot], ".", "") + s[lastDot:]
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidNumber, raw)
	}
	return d, nil
}

// ParseFlexibleDate converts a raw cell into a calendar date. Accepted
// inputs, in order of probing:
//
//  1. a bare number, read as a spreadsheet serial date (epoch 1899-12-30)
//  2. DD/MM/YYYY or DD-MM-YYYY
//  3. ISO YYYY-MM-DD (or YYYY/MM/DD)
//
// Textual dates are always read day-first: when both leading tokens are
// <= 12 the regional convention wins, and a first token > 12 can only be
// a day anyway. The result carries no time-of-day.
func ParseFlexibleDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty cell", ErrInvalidDate)
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		return dateFromSerial(raw, serial)
	}

	tokens := strings.FieldsFunc(s, func(r rune) bool {
		return r == '/' || r == '-'
	})
	if len(tokens) != 3 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}

	parts := make([]int, 3)
	for i, tok := range tokens {
		n, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
		}
		parts[i] = n
	}

	var year, month, day int
	if len(tokens[0]) == 4 {
		year, month, day = parts[0], parts[1], parts[2]
	} else {
		day, month, year = parts[0], parts[1], parts[2]
	}

	if year < 1000 {
		return time.Time{}, fmt.Errorf("%w: %q year must have four digits", ErrInvalidDate, raw)
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Year() != year || date.Month() != time.Month(month) || date.Day() != day {
		return time.Time{}, fmt.Errorf("%w: %q is not a real calendar date", ErrInvalidDate, raw)
	}
	return date, nil
}

func dateFromSerial(raw string, serial float64) (time.Time, error) {
	days := int(serial) // fractional part is time-of-day; discarded
	if days <= 0 || days > maxSerialDate {
		return time.Time{}, fmt.Errorf("%w: serial %q out of range", ErrInvalidDate, raw)
	}
	return serialDateEpoch.AddDate(0, 0, days), nil
}
