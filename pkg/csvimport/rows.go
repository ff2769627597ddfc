package csvimport

import "strings"

// RawRow is one line of delimited text split into cells.
type RawRow []string

// ParseRows splits content into rows of cells.
// Blank lines are skipped. A double quote toggles quoted mode and commas
// inside quotes are kept in the cell. Unbalanced quotes never fail; the rest
// of the line simply lands in the current cell.
func ParseRows(content string) []RawRow {
	lines := strings.Split(content, "\n")
	rows := make([]RawRow, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		rows = append(rows, splitLine(line))
	}
	return rows
}

func splitLine(line string) RawRow {
	var (
		cells    RawRow
		current  strings.Builder
		inQuotes bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			cells = append(cells, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	return append(cells, strings.TrimSpace(current.String()))
}

// cell returns the trimmed value at idx, or "" when the row is too short.
func (r RawRow) cell(idx int) string {
	if idx < 0 || idx >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[idx])
}
