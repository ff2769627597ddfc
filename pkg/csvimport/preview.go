package csvimport

import "fmt"

// DefaultPreviewLimit is the number of appointments shown in a preview.
const DefaultPreviewLimit = 5

// Preview summarizes converted appointments for user confirmation.
type Preview struct {
	Preview []Appointment `json:"preview"`
	Issues  []string      `json:"issues"`
	Total   int           `json:"total"`
}

// GeneratePreview returns the total count, the first limit appointments and
// per-row issues for missing required fields. Row numbers are 1-based and
// account for the header line. A non-positive limit uses DefaultPreviewLimit.
//
// Appointments produced by ConvertRows are already complete, so issues are
// normally empty.
func GeneratePreview(appts []Appointment, limit int) Preview {
	if limit <= 0 {
		limit = DefaultPreviewLimit
	}

	issues := make([]string, 0)
	for i, a := range appts {
		row := i + 2
		if a.ClientName == "" {
			issues = append(issues, fmt.Sprintf("Row %d: Missing client name", row))
		}
		if a.Date == "" {
			issues = append(issues, fmt.Sprintf("Row %d: Missing date", row))
		}
		if a.Time == "" {
			issues = append(issues, fmt.Sprintf("Row %d: Missing time", row))
		}
	}

	n := min(limit, len(appts))
	preview := make([]Appointment, n)
	copy(preview, appts[:n])

	return Preview{
		Total:   len(appts),
		Preview: preview,
		Issues:  issues,
	}
}
