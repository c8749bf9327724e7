package models

import (
	"sort"
	"strings"
)

// Filter dimension names accepted by SetFilter and sent upstream. They match
// the school backend's query parameters one to one.
const (
	FilterClass          = "class_field"
	FilterDivision       = "division"
	FilterStudent        = "admission"
	FilterSubject        = "subject"
	FilterTerm           = "term"
	FilterSubperiod      = "subperiod"
	FilterAssessmentItem = "assessmentitem"
)

// FilterDimensions lists every selectable dimension.
var FilterDimensions = []string{
	FilterClass,
	FilterDivision,
	FilterStudent,
	FilterSubject,
	FilterTerm,
	FilterSubperiod,
	FilterAssessmentItem,
}

// KnownFilter reports whether name is a selectable dimension.
func KnownFilter(name string) bool {
	for _, dim := range FilterDimensions {
		if dim == name {
			return true
		}
	}
	return false
}

// CodedOption is a filter choice carrying a backend code and display name
// (subjects, assessment items).
type CodedOption struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// StudentOption is a filter choice identified by admission number.
type StudentOption struct {
	Admission string `json:"admission"`
	Name      string `json:"name"`
}

// FilterMetadata is the typed set of selectable filter options. Each
// dimension has its own option shape; plain-string dimensions stay plain.
type FilterMetadata struct {
	Subjects        []CodedOption   `json:"subjects"`
	AssessmentItems []CodedOption   `json:"assessment_items"`
	Students        []StudentOption `json:"students"`
	Terms           []string        `json:"terms"`
	Divisions       []string        `json:"divisions"`
	Subperiods      []string        `json:"subperiods"`
	Classes         []string        `json:"classes"`
	StudentCount    int             `json:"student_count"`
}

// FilterState holds the currently selected filter values. Empty string means
// "unset"; unset dimensions are omitted from outbound queries.
type FilterState struct {
	ClassField     string `json:"class_field,omitempty"`
	Division       string `json:"division,omitempty"`
	Admission      string `json:"admission,omitempty"`
	Subject        string `json:"subject,omitempty"`
	Term           string `json:"term,omitempty"`
	Subperiod      string `json:"subperiod,omitempty"`
	AssessmentItem string `json:"assessmentitem,omitempty"`
}

// Params renders the set filters as query parameters.
func (f FilterState) Params() map[string]string {
	params := make(map[string]string, 7)
	set := func(name, value string) {
		if value != "" {
			params[name] = value
		}
	}
	set(FilterClass, f.ClassField)
	set(FilterDivision, f.Division)
	set(FilterStudent, f.Admission)
	set(FilterSubject, f.Subject)
	set(FilterTerm, f.Term)
	set(FilterSubperiod, f.Subperiod)
	set(FilterAssessmentItem, f.AssessmentItem)
	return params
}

// EncodeParams renders a parameter map as a stable sorted key fragment.
func EncodeParams(params map[string]string) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"="+params[name])
	}
	return strings.Join(parts, "&")
}

// Set assigns value to the named dimension. Unknown names are ignored by
// callers after checking KnownFilter.
func (f *FilterState) Set(name, value string) {
	switch name {
	case FilterClass:
		f.ClassField = value
	case FilterDivision:
		f.Division = value
	case FilterStudent:
		f.Admission = value
	case FilterSubject:
		f.Subject = value
	case FilterTerm:
		f.Term = value
	case FilterSubperiod:
		f.Subperiod = value
	case FilterAssessmentItem:
		f.AssessmentItem = value
	}
}
