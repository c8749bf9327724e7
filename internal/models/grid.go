package models

import "time"

// EditPhase is the single-edit state machine phase.
type EditPhase string

const (
	// PhaseIdle means no record is selected for editing.
	PhaseIdle EditPhase = "idle"
	// PhaseEditing means one record holds an open edit buffer.
	PhaseEditing EditPhase = "editing"
	// PhaseSaving means the record's mutation is in flight.
	PhaseSaving EditPhase = "saving"
	// PhaseSuccess is the transient post-commit confirmation window.
	PhaseSuccess EditPhase = "success"
)

// EditBuffer is the single-edit buffer. At most one exists per grid, scoped
// to one record.
type EditBuffer struct {
	Phase        EditPhase `json:"phase"`
	SlNo         string    `json:"slno,omitempty"`
	RawValue     string    `json:"raw_value,omitempty"`
	Error        string    `json:"error,omitempty"`
	SuccessUntil time.Time `json:"-"`
}

// Active reports whether a record is currently being edited or saved.
func (b EditBuffer) Active() bool {
	return b.Phase == PhaseEditing || b.Phase == PhaseSaving
}

// BulkBuffer holds the bulk-edit working state: every raw input the user has
// touched, the validated committable subset, and per-record errors. Raw
// entries survive validation failures so nothing the user typed is lost.
type BulkBuffer struct {
	Raw    map[string]string  `json:"raw"`
	Valid  map[string]float64 `json:"valid"`
	Errors map[string]string  `json:"errors"`
}

// NewBulkBuffer returns an empty bulk buffer.
func NewBulkBuffer() BulkBuffer {
	return BulkBuffer{
		Raw:    make(map[string]string),
		Valid:  make(map[string]float64),
		Errors: make(map[string]string),
	}
}

// Clear empties all three mappings.
func (b *BulkBuffer) Clear() {
	b.Raw = make(map[string]string)
	b.Valid = make(map[string]float64)
	b.Errors = make(map[string]string)
}

// HasChanges reports whether any committable entry exists.
func (b BulkBuffer) HasChanges() bool {
	return len(b.Valid) > 0
}

// HasErrors reports whether any record failed validation.
func (b BulkBuffer) HasErrors() bool {
	return len(b.Errors) > 0
}
