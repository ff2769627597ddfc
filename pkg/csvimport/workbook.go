package csvimport

import (
	"errors"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// ParseWorkbook reads the first sheet of an XLSX workbook into rows.
// Cells are trimmed and rows with no content are skipped, matching ParseRows.
// Cells styled as dates or times are rendered from their serial value as
// "2006-01-02", "15:04" or "2006-01-02 15:04" instead of the locale-dependent
// display text, so they survive NormalizeDate and NormalizeTime.
func ParseWorkbook(r io.Reader) ([]RawRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Join(ErrInvalidWorkbook, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyWorkbook
	}
	sheet := sheets[0]

	sheetRows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Join(ErrInvalidWorkbook, err)
	}

	cells := newCellReader(f, sheet)
	rows := make([]RawRow, 0, len(sheetRows))
	for y, values := range sheetRows {
		row := make(RawRow, len(values))
		blank := true
		for x, v := range values {
			row[x] = strings.TrimSpace(cells.value(x, y, v))
			if row[x] != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

type temporalKind int

const (
	kindNone temporalKind = iota
	kindDate
	kindTime
	kindDateTime
)

type cellReader struct {
	f        *excelize.File
	kinds    map[int]temporalKind
	sheet    string
	date1904 bool
}

func newCellReader(f *excelize.File, sheet string) *cellReader {
	c := &cellReader{f: f, sheet: sheet, kinds: make(map[int]temporalKind)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		c.date1904 = *props.Date1904
	}
	return c
}

// value returns the ISO rendering of a date or time styled numeric cell,
// and the displayed text for everything else. x and y are zero-based.
func (c *cellReader) value(x, y int, displayed string) string {
	if strings.TrimSpace(displayed) == "" {
		return displayed
	}
	cell, err := excelize.CoordinatesToCellName(x+1, y+1)
	if err != nil {
		return displayed
	}
	styleID, err := c.f.GetCellStyle(c.sheet, cell)
	if err != nil || styleID == 0 {
		return displayed
	}
	kind := c.kind(styleID)
	if kind == kindNone {
		return displayed
	}

	raw, err := c.f.GetCellValue(c.sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		return displayed
	}
	serial, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || serial < 0 {
		return displayed
	}
	t, err := excelize.ExcelDateToTime(serial, c.date1904)
	if err != nil {
		return displayed
	}
	t = t.Round(time.Minute)

	switch kind {
	case kindTime:
		return t.Format("15:04")
	case kindDateTime:
		if t.Hour() == 0 && t.Minute() == 0 {
			return t.Format(isoDateLayout)
		}
		return t.Format("2006-01-02 15:04")
	default:
		return t.Format(isoDateLayout)
	}
}

func (c *cellReader) kind(styleID int) temporalKind {
	if k, ok := c.kinds[styleID]; ok {
		return k
	}
	k := kindNone
	if style, err := c.f.GetStyle(styleID); err == nil && style != nil {
		k = numFmtKind(style.NumFmt, style.CustomNumFmt)
	}
	c.kinds[styleID] = k
	return k
}

// Built-in number format ids, ECMA-376 18.8.30, plus the CJK date ids.
func builtinKind(id int) temporalKind {
	switch {
	case id >= 14 && id <= 17, id >= 27 && id <= 31, id >= 34 && id <= 36, id >= 50 && id <= 58:
		return kindDate
	case id >= 18 && id <= 21, id >= 32 && id <= 33, id >= 45 && id <= 47:
		return kindTime
	case id == 22:
		return kindDateTime
	}
	return kindNone
}

// Quoted literals, escaped characters and bracketed sections (colors,
// locales, elapsed-time markers) carry no date tokens.
var numFmtNoise = regexp.MustCompile(`"[^"]*"|\\.|\[[^\]]*\]`)

func numFmtKind(id int, custom *string) temporalKind {
	if custom == nil || *custom == "" {
		return builtinKind(id)
	}
	code := strings.ToLower(numFmtNoise.ReplaceAllString(*custom, ""))
	hasDate := strings.ContainsAny(code, "yd")
	hasTime := strings.ContainsAny(code, "hs")
	switch {
	case hasDate && hasTime:
		return kindDateTime
	case hasDate:
		return kindDate
	case hasTime:
		return kindTime
	}
	return kindNone
}
