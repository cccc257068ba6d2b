package schema

import "strings"

// ValidationIssue describes one problem found in an edited series payload.
type ValidationIssue struct {
	FieldIndex int
	Message    string
	// Blocking issues prevent submission; non-blocking ones are surfaced
	// as warnings only.
	Blocking bool
}

// Validate inspects a series edit and returns its issues. Empty names and
// unknown data types block submission. Duplicate field names within one
// series are allowed, matching the backend, but reported as warnings so
// the console can flag them.
func Validate(name string, fields []SeriesField) []ValidationIssue {
	var issues []ValidationIssue
	if strings.TrimSpace(name) == "" {
		issues = append(issues, ValidationIssue{FieldIndex: -1, Message: "series name is required", Blocking: true})
	}

	seen := make(map[string]int, len(fields))
	for i, f := range fields {
		if strings.TrimSpace(f.Name) == "" {
			issues = append(issues, ValidationIssue{FieldIndex: i, Message: "field name is required", Blocking: true})
			continue
		}
		if !Known(f.DataType) {
			issues = append(issues, ValidationIssue{FieldIndex: i, Message: "unsupported data type", Blocking: true})
		}
		if first, dup := seen[f.Name]; dup {
			issues = append(issues, ValidationIssue{
				FieldIndex: i,
				Message:    "duplicate of field " + fields[first].Name,
			})
			continue
		}
		seen[f.Name] = i
	}
	return issues
}

// Blocked reports whether any issue in the list prevents submission.
func Blocked(issues []ValidationIssue) bool {
	for _, issue := range issues {
		if issue.Blocking {
			return true
		}
	}
	return false
}
