package dto

import (
	"github.com/magnet-school/marks-console/internal/models"
	"github.com/magnet-school/marks-console/internal/service"
)

// GridRow is one renderable grid row. Display carries the overlay value when
// one is pending refetch, so a committed mark never flickers back to the
// stale fetched value.
type GridRow struct {
	SlNo               string  `json:"slno"`
	Admission          string  `json:"admission"`
	StudentName        string  `json:"student_name"`
	ClassField         string  `json:"class_field"`
	Division           string  `json:"division"`
	SubjectName        string  `json:"subject_name"`
	AssessmentItemName string  `json:"assessmentitem_name"`
	Term               string  `json:"term"`
	MaxMark            float64 `json:"maxmark"`
	Grade              string  `json:"grade"`
	Display            string  `json:"display"`
	Pending            string  `json:"pending,omitempty"`
	Error              string  `json:"error,omitempty"`
	Changed            bool    `json:"changed"`
	Editing            bool    `json:"editing"`
	Saving             bool    `json:"saving"`
	JustSaved          bool    `json:"just_saved"`
	NextSlNo           string  `json:"next_slno,omitempty"`
}

// EditStateView describes the single-edit machine for the client.
type EditStateView struct {
	Phase    models.EditPhase `json:"phase"`
	SlNo     string           `json:"slno,omitempty"`
	RawValue string           `json:"raw_value,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// BulkStateView summarizes the bulk buffer for the client. Saving disables
// the Save All control while a batch is in flight.
type BulkStateView struct {
	ChangedCount int  `json:"changed_count"`
	ErrorCount   int  `json:"error_count"`
	Saving       bool `json:"saving"`
	CanSave      bool `json:"can_save"`
}

// GridView is the full response for a grid fetch: rows, pagination strip,
// current selections and both edit-state summaries.
type GridView struct {
	Rows        []GridRow          `json:"rows"`
	Filters     models.FilterState `json:"filters"`
	EditMode    models.EditMode    `json:"edit_mode"`
	Edit        EditStateView      `json:"edit"`
	Bulk        BulkStateView      `json:"bulk"`
	Page        int                `json:"page"`
	PageSize    int                `json:"page_size"`
	TotalCount  int                `json:"total_count"`
	TotalPages  int                `json:"total_pages"`
	PageNumbers []int              `json:"page_numbers"`
	FromCache   bool               `json:"from_cache"`
}

// BuildGridView assembles the renderable view from a grid snapshot.
func BuildGridView(snap service.GridSnapshot) GridView {
	totalPages := snap.Page.TotalPages(snap.Query.PageSize)

	rows := make([]GridRow, 0, len(snap.Page.Results))
	for i := range snap.Page.Results {
		record := &snap.Page.Results[i]

		display := record.Mark
		if v, ok := snap.Overlay[record.SlNo]; ok {
			display = v
		}

		row := GridRow{
			SlNo:               record.SlNo,
			Admission:          record.Admission,
			StudentName:        record.StudentName,
			ClassField:         record.ClassField,
			Division:           record.Division,
			SubjectName:        record.SubjectName,
			AssessmentItemName: record.AssessmentItemName,
			Term:               record.Term,
			MaxMark:            record.MaxMark,
			Grade:              record.Grade,
			Display:            service.FormatMark(display),
		}

		switch snap.EditMode {
		case models.EditModeSingle:
			if snap.Edit.SlNo == record.SlNo {
				row.Editing = snap.Edit.Phase == models.PhaseEditing
				row.Saving = snap.Edit.Phase == models.PhaseSaving
				row.JustSaved = snap.Edit.Phase == models.PhaseSuccess
				if snap.Edit.Phase == models.PhaseEditing || snap.Edit.Phase == models.PhaseSaving {
					row.Pending = snap.Edit.RawValue
					row.Error = snap.Edit.Error
				}
			}
		case models.EditModeBulk:
			if raw, ok := snap.Bulk.Raw[record.SlNo]; ok {
				row.Pending = raw
			}
			if msg, ok := snap.Bulk.Errors[record.SlNo]; ok {
				row.Error = msg
			}
			_, row.Changed = snap.Bulk.Valid[record.SlNo]
		}

		rows = append(rows, row)
	}

	// Enter moves focus to the next visible row; the last row has nowhere to go.
	for i := 0; i+1 < len(rows); i++ {
		rows[i].NextSlNo = rows[i+1].SlNo
	}

	return GridView{
		Rows:     rows,
		Filters:  snap.Query.Filters,
		EditMode: snap.EditMode,
		Edit: EditStateView{
			Phase:    snap.Edit.Phase,
			SlNo:     snap.Edit.SlNo,
			RawValue: snap.Edit.RawValue,
			Error:    snap.Edit.Error,
		},
		Bulk: BulkStateView{
			ChangedCount: len(snap.Bulk.Valid),
			ErrorCount:   len(snap.Bulk.Errors),
			Saving:       snap.BulkSaving,
			CanSave:      len(snap.Bulk.Valid) > 0 && len(snap.Bulk.Errors) == 0 && !snap.BulkSaving,
		},
		Page:        snap.Query.Page,
		PageSize:    snap.Query.PageSize,
		TotalCount:  snap.Page.Count,
		TotalPages:  totalPages,
		PageNumbers: PageNumbers(snap.Query.Page, totalPages),
		FromCache:   snap.FromCache,
	}
}
