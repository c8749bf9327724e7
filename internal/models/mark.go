package models

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// MarkRecord is one row of the marks grid as served by the school backend.
// Only the mark value is mutable from the console; everything else is
// descriptive context. The grade is recomputed server-side.
type MarkRecord struct {
	SlNo               string  `json:"slno"`
	Admission          string  `json:"admission"`
	ClassField         string  `json:"class_field"`
	Division           string  `json:"division"`
	Subject            string  `json:"subject"`
	SubjectName        string  `json:"subject_name"`
	AssessmentItem     string  `json:"assessmentitem"`
	AssessmentItemName string  `json:"assessmentitem_name"`
	Term               string  `json:"term"`
	Part               string  `json:"part"`
	StudentName        string  `json:"student_name"`
	Mark               float64 `json:"mark"`
	MaxMark            float64 `json:"maxmark"`
	Grade              string  `json:"grade"`
	EDate              string  `json:"edate"`
}

// MarksPage is a single page of the paginated marks listing.
type MarksPage struct {
	Count    int          `json:"count"`
	Next     *string      `json:"next"`
	Previous *string      `json:"previous"`
	Results  []MarkRecord `json:"results"`
}

// Record returns the record with the given identifier, if it is on this page.
func (p *MarksPage) Record(slno string) *MarkRecord {
	if p == nil {
		return nil
	}
	for i := range p.Results {
		if p.Results[i].SlNo == slno {
			return &p.Results[i]
		}
	}
	return nil
}

// TotalPages computes the page count for the given page size.
func (p *MarksPage) TotalPages(pageSize int) int {
	if p == nil || pageSize <= 0 {
		return 0
	}
	return (p.Count + pageSize - 1) / pageSize
}

// MarkUpdate is one entry of a mutation payload.
type MarkUpdate struct {
	SlNo string  `json:"slno"`
	Mark float64 `json:"mark"`
}

// MarksQuery identifies one fetched page: the filter set plus pagination.
// Two queries with the same Key describe the same server-side result.
type MarksQuery struct {
	Filters  FilterState
	Page     int
	PageSize int
}

// Values renders the query as outbound URL parameters. Unset filters are
// omitted entirely rather than sent as empty strings.
func (q MarksQuery) Values() url.Values {
	values := url.Values{}
	for name, value := range q.Filters.Params() {
		values.Set(name, value)
	}
	values.Set("page", strconv.Itoa(q.Page))
	values.Set("page_size", strconv.Itoa(q.PageSize))
	return values
}

// Key returns a stable cache key for this query.
func (q MarksQuery) Key() string {
	params := q.Filters.Params()
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "%s=%s&", name, params[name])
	}
	fmt.Fprintf(&b, "page=%d&page_size=%d", q.Page, q.PageSize)
	return "marks:" + b.String()
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
