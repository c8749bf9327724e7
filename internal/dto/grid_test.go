package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magnet-school/marks-console/internal/models"
	"github.com/magnet-school/marks-console/internal/service"
)

func sampleSnapshot() service.GridSnapshot {
	return service.GridSnapshot{
		Query: models.MarksQuery{Page: 1, PageSize: 10},
		Page: &models.MarksPage{
			Count: 25,
			Results: []models.MarkRecord{
				{SlNo: "SL-001", StudentName: "Asha", Mark: 70, MaxMark: 100},
				{SlNo: "SL-002", StudentName: "Binu", Mark: 55, MaxMark: 100},
			},
		},
		Edit:     models.EditBuffer{Phase: models.PhaseIdle},
		Bulk:     models.NewBulkBuffer(),
		Overlay:  map[string]float64{},
		EditMode: models.EditModeBulk,
	}
}

func TestBuildGridViewFormatsMarks(t *testing.T) {
	view := BuildGridView(sampleSnapshot())

	require.Len(t, view.Rows, 2)
	assert.Equal(t, "70.000", view.Rows[0].Display)
	assert.Equal(t, "55.000", view.Rows[1].Display)
	assert.Equal(t, 25, view.TotalCount)
	assert.Equal(t, 3, view.TotalPages)
	assert.Equal(t, []int{1, 2, 3}, view.PageNumbers)
	assert.Equal(t, "SL-002", view.Rows[0].NextSlNo)
	assert.Empty(t, view.Rows[1].NextSlNo)
}

func TestBuildGridViewAppliesOverlay(t *testing.T) {
	snap := sampleSnapshot()
	snap.Overlay["SL-001"] = 85

	view := BuildGridView(snap)
	assert.Equal(t, "85.000", view.Rows[0].Display)
	assert.Equal(t, "55.000", view.Rows[1].Display)
}

func TestBuildGridViewBulkState(t *testing.T) {
	snap := sampleSnapshot()
	snap.Bulk.Raw["SL-001"] = "85"
	snap.Bulk.Valid["SL-001"] = 85
	snap.Bulk.Raw["SL-002"] = "120"
	snap.Bulk.Errors["SL-002"] = "Cannot exceed maximum mark of 100"

	view := BuildGridView(snap)
	assert.Equal(t, "85", view.Rows[0].Pending)
	assert.True(t, view.Rows[0].Changed)
	assert.Equal(t, "Cannot exceed maximum mark of 100", view.Rows[1].Error)
	assert.False(t, view.Rows[1].Changed)

	assert.Equal(t, 1, view.Bulk.ChangedCount)
	assert.Equal(t, 1, view.Bulk.ErrorCount)
	assert.False(t, view.Bulk.CanSave)
}

func TestBuildGridViewBulkSavingDisablesSave(t *testing.T) {
	snap := sampleSnapshot()
	snap.Bulk.Raw["SL-001"] = "85"
	snap.Bulk.Valid["SL-001"] = 85
	snap.BulkSaving = true

	view := BuildGridView(snap)
	assert.True(t, view.Bulk.Saving)
	assert.False(t, view.Bulk.CanSave)
}

func TestBuildGridViewSingleEditRow(t *testing.T) {
	snap := sampleSnapshot()
	snap.EditMode = models.EditModeSingle
	snap.Edit = models.EditBuffer{
		Phase:    models.PhaseEditing,
		SlNo:     "SL-002",
		RawValue: "60",
	}

	view := BuildGridView(snap)
	assert.False(t, view.Rows[0].Editing)
	assert.True(t, view.Rows[1].Editing)
	assert.Equal(t, "60", view.Rows[1].Pending)
}
