package csvimport

import (
	"regexp"
	"strconv"
	"strings"
)

// Appointment is a normalized appointment candidate.
// It never references its source row; only semantic fields survive conversion.
type Appointment struct {
	Duration    *int     `json:"duration,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	ClientName  string   `json:"clientName"`
	ClientEmail string   `json:"clientEmail,omitempty"`
	ClientPhone string   `json:"clientPhone,omitempty"`
	ServiceName string   `json:"serviceName"`
	Date        string   `json:"date"`
	Time        string   `json:"time"`
	Notes       string   `json:"notes,omitempty"`
	Status      string   `json:"status,omitempty"`
}

// Valid reports whether the required client name, date and time are present.
func (a Appointment) Valid() bool {
	return a.ClientName != "" && a.Date != "" && a.Time != ""
}

// ConvertRows builds appointments from data rows (header excluded).
// Rows missing a client name, date or time are dropped.
func ConvertRows(rows []RawRow, mapping Mapping) []Appointment {
	out := make([]Appointment, 0, len(rows))
	for _, row := range rows {
		appt := convertRow(row, mapping)
		if !appt.Valid() {
			continue
		}
		out = append(out, appt)
	}
	return out
}

func convertRow(row RawRow, mapping Mapping) Appointment {
	var appt Appointment
	for field, idx := range mapping {
		value := row.cell(idx)
		if value == "" {
			continue
		}

		switch field {
		case FieldClientName:
			appt.ClientName = value
		case FieldClientEmail:
			appt.ClientEmail = value
		case FieldClientPhone:
			appt.ClientPhone = value
		case FieldServiceName:
			appt.ServiceName = value
		case FieldDate:
			appt.Date = NormalizeDate(value)
		case FieldTime:
			appt.Time = NormalizeTime(value)
		case FieldDuration:
			if n, ok := parseLeadingInt(value); ok {
				appt.Duration = &n
			}
		case FieldPrice:
			if p, ok := parsePrice(value); ok {
				appt.Price = &p
			}
		case FieldNotes:
			appt.Notes = value
		case FieldStatus:
			appt.Status = value
		}
	}
	return appt
}

var (
	leadingIntRe   = regexp.MustCompile(`^[+-]?\d+`)
	leadingFloatRe = regexp.MustCompile(`^(\d+(\.\d*)?|\.\d+)`)
	nonPriceRe     = regexp.MustCompile(`[^0-9.]`)
)

// parseLeadingInt reads the integer prefix of s, ignoring trailing text
// such as units ("45 min").
func parseLeadingInt(s string) (int, bool) {
	m := leadingIntRe.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// parsePrice keeps only digits and dots, then reads the decimal prefix.
func parsePrice(s string) (float64, bool) {
	m := leadingFloatRe.FindString(nonPriceRe.ReplaceAllString(s, ""))
	if m == "" {
		return 0, false
	}
	p, err := strconv.ParseFloat(strings.TrimSuffix(m, "."), 64)
	if err != nil {
		return 0, false
	}
	return p, true
}
