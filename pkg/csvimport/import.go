package csvimport

// Result is the outcome of running the whole pipeline over parsed rows.
type Result struct {
	Mapping      Mapping       `json:"mapping"`
	Unmapped     []string      `json:"unmapped"`
	Appointments []Appointment `json:"-"`
	Preview      Preview       `json:"preview"`
	Skipped      int           `json:"skipped"`
}

// Import detects mappings from rows[0], converts the remaining rows and
// builds a preview. Skipped counts data rows dropped for missing required
// fields. An empty input yields an empty result.
func Import(rows []RawRow, limit int) Result {
	if len(rows) == 0 {
		return Result{
			Mapping:      Mapping{},
			Unmapped:     []string{},
			Appointments: []Appointment{},
			Preview:      GeneratePreview(nil, limit),
		}
	}

	header, data := rows[0], rows[1:]
	mapping := DetectFieldMappings(header)
	appts := ConvertRows(data, mapping)

	return Result{
		Mapping:      mapping,
		Unmapped:     unmappedHeaders(header, mapping),
		Appointments: appts,
		Preview:      GeneratePreview(appts, limit),
		Skipped:      len(data) - len(appts),
	}
}

func unmappedHeaders(header RawRow, mapping Mapping) []string {
	used := make(map[int]struct{}, len(mapping))
	for _, idx := range mapping {
		used[idx] = struct{}{}
	}

	out := make([]string, 0, len(header))
	for idx, h := range header {
		if _, ok := used[idx]; ok || h == "" {
			continue
		}
		out = append(out, h)
	}
	return out
}
