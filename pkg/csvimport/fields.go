package csvimport

import "strings"

// Field identifies a semantic appointment attribute.
type Field string

const (
	FieldClientName  Field = "clientName"
	FieldClientEmail Field = "clientEmail"
	FieldClientPhone Field = "clientPhone"
	FieldServiceName Field = "serviceName"
	FieldDate        Field = "date"
	FieldTime        Field = "time"
	FieldDuration    Field = "duration"
	FieldPrice       Field = "price"
	FieldNotes       Field = "notes"
	FieldStatus      Field = "status"
)

// Mapping binds fields to zero-based column indexes.
type Mapping map[Field]int

type synonyms struct {
	field    Field
	patterns []string
}

// synonymTable is evaluated in order; the order decides which field claims
// a header that matches several of them.
var synonymTable = []synonyms{
	{FieldClientName, []string{"client_name", "clientname", "customer_name", "customername", "full_name", "fullname", "client", "customer", "name"}},
	{FieldClientEmail, []string{"email", "e_mail", "mail"}},
	{FieldClientPhone, []string{"phone", "mobile"}},
	{FieldServiceName, []string{"service", "treatment", "appointment_type", "product"}},
	{FieldDate, []string{"date", "day"}},
	{FieldTime, []string{"time", "hour"}},
	{FieldDuration, []string{"duration", "length", "minutes", "mins"}},
	{FieldPrice, []string{"price", "cost", "amount", "fee", "total"}},
	{FieldNotes, []string{"note", "comment", "description", "memo"}},
	{FieldStatus, []string{"status", "state"}},
}

// Fields returns every field in canonical order.
func Fields() []Field {
	out := make([]Field, len(synonymTable))
	for i, s := range synonymTable {
		out[i] = s.field
	}
	return out
}

// NormalizeHeader lowercases h and replaces every rune outside [a-z0-9]
// with an underscore.
func NormalizeHeader(h string) string {
	lower := strings.ToLower(h)
	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
	}
	return b.String()
}

// DetectFieldMappings guesses which header column holds which field.
// A column is claimed by the last field in canonical order whose synonym it
// contains, and a later column claiming the same field replaces the earlier
// one.
func DetectFieldMappings(header RawRow) Mapping {
	mapping := make(Mapping)
	for idx, raw := range header {
		normalized := NormalizeHeader(raw)
		if normalized == "" {
			continue
		}

		var (
			claimed Field
			matched bool
		)
		for _, s := range synonymTable {
			if matchesAny(normalized, s.patterns) {
				claimed = s.field
				matched = true
			}
		}
		if matched {
			mapping[claimed] = idx
		}
	}
	return mapping
}

func matchesAny(header string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(header, p) {
			return true
		}
	}
	return false
}
