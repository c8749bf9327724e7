package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/magnet-school/marks-console/internal/models"
	"github.com/magnet-school/marks-console/pkg/config"
	appErrors "github.com/magnet-school/marks-console/pkg/errors"
)

// AllowedPageSizes are the page sizes the grid offers.
var AllowedPageSizes = []int{10, 20, 50, 100}

// gridState is one session's grid: selections, pagination, edit buffers and
// the overlay of committed-but-not-yet-refetched values.
type gridState struct {
	filters  models.FilterState
	page     int
	pageSize int

	edit       models.EditBuffer
	bulk       models.BulkBuffer
	bulkSaving bool
	overlay    map[string]float64

	lastPage   *models.MarksPage
	lastKey    string
	fetchSeq   uint64
	appliedSeq uint64
}

// GridSnapshot is the assembled view state handed to the presentation layer.
type GridSnapshot struct {
	Query      models.MarksQuery
	Page       *models.MarksPage
	FromCache  bool
	Edit       models.EditBuffer
	Bulk       models.BulkBuffer
	BulkSaving bool
	Overlay    map[string]float64
	EditMode   models.EditMode
}

// SaveOutcome reports what a save operation did.
type SaveOutcome struct {
	Committed bool `json:"committed"`
	Count     int  `json:"count"`
}

// GridService owns the per-session grid state machines. Every transition is
// serialized under one lock; network calls happen outside it with the state
// pinned in a transitional phase so concurrent requests observe it.
type GridService struct {
	marks  *MarksService
	audit  AuditRecorder
	config config.GridConfig
	logger *zap.Logger

	mu     sync.Mutex
	states map[string]*gridState

	now func() time.Time
}

// NewGridService constructs a grid service.
func NewGridService(marks *MarksService, audit AuditRecorder, cfg config.GridConfig, logger *zap.Logger) *GridService {
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 10
	}
	if cfg.SuccessWindow <= 0 {
		cfg.SuccessWindow = 2 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GridService{
		marks:  marks,
		audit:  audit,
		config: cfg,
		logger: logger,
		states: make(map[string]*gridState),
		now:    time.Now,
	}
}

func (s *GridService) state(sessionID string) *gridState {
	st, ok := s.states[sessionID]
	if !ok {
		st = &gridState{
			page:     1,
			pageSize: s.config.DefaultPageSize,
			edit:     models.EditBuffer{Phase: models.PhaseIdle},
			bulk:     models.NewBulkBuffer(),
			overlay:  make(map[string]float64),
		}
		s.states[sessionID] = st
	}
	return st
}

func (st *gridState) query() models.MarksQuery {
	return models.MarksQuery{Filters: st.filters, Page: st.page, PageSize: st.pageSize}
}

// expireSuccess collapses an elapsed confirmation window back to idle.
func (st *gridState) expireSuccess(now time.Time) {
	if st.edit.Phase == models.PhaseSuccess && now.After(st.edit.SuccessUntil) {
		st.edit = models.EditBuffer{Phase: models.PhaseIdle}
	}
}

// mutationPending reports whether either edit machine has a mutation in
// flight. Exactly one mutation may be outstanding per session.
func (st *gridState) mutationPending() bool {
	return st.edit.Phase == models.PhaseSaving || st.bulkSaving
}

func (st *gridState) discardEdit() {
	st.edit = models.EditBuffer{Phase: models.PhaseIdle}
}

func (st *gridState) discardBulk() {
	st.bulk.Clear()
}

// displayValue is the value the grid shows for a record: the overlay entry
// when one exists, otherwise the fetched mark.
func (st *gridState) displayValue(record *models.MarkRecord) float64 {
	if v, ok := st.overlay[record.SlNo]; ok {
		return v
	}
	return record.Mark
}

// SetFilter applies one filter selection. Any filter change moves back to the
// first page and discards both edit buffers.
func (s *GridService) SetFilter(ctx context.Context, session *models.Session, name, value string) error {
	if !models.KnownFilter(name) {
		return appErrors.Clone(appErrors.ErrValidation, "unknown filter dimension: "+name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(session.ID)
	if st.mutationPending() {
		return appErrors.ErrMutationPending
	}
	st.filters.Set(name, value)
	st.page = 1
	st.discardEdit()
	st.discardBulk()
	return nil
}

// ResetFilters clears every filter selection.
func (s *GridService) ResetFilters(ctx context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(session.ID)
	if st.mutationPending() {
		return appErrors.ErrMutationPending
	}
	st.filters = models.FilterState{}
	st.page = 1
	st.discardEdit()
	st.discardBulk()
	return nil
}

// SetPage navigates to the given page. An open single edit is discarded
// because its record leaves the viewport; the bulk buffer survives so edits
// can span pages.
func (s *GridService) SetPage(ctx context.Context, session *models.Session, page int) error {
	if page < 1 {
		page = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(session.ID)
	if st.mutationPending() {
		return appErrors.ErrMutationPending
	}
	if page == st.page {
		return nil
	}
	st.page = page
	st.discardEdit()
	return nil
}

// SetPageSize switches the page size, returning to the first page and
// discarding both edit buffers because row positions all change.
func (s *GridService) SetPageSize(ctx context.Context, session *models.Session, size int) error {
	allowed := false
	for _, v := range AllowedPageSizes {
		if v == size {
			allowed = true
			break
		}
	}
	if !allowed {
		return appErrors.Clone(appErrors.ErrValidation, "unsupported page size")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(session.ID)
	if st.mutationPending() {
		return appErrors.ErrMutationPending
	}
	if size == st.pageSize {
		return nil
	}
	st.pageSize = size
	st.page = 1
	st.discardEdit()
	st.discardBulk()
	return nil
}

// DiscardModeBuffers clears the buffers belonging to the mode being left.
// Called when the edit-mode setting flips so stale buffers from the departing
// mode cannot leak into the other.
func (s *GridService) DiscardModeBuffers(session *models.Session, departing models.EditMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(session.ID)
	switch departing {
	case models.EditModeSingle:
		st.discardEdit()
	case models.EditModeBulk:
		st.discardBulk()
	}
}

// ClearSession drops all grid state for the session, used at logout.
func (s *GridService) ClearSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, sessionID)
}

// StartEdit opens the single-edit buffer for one record. Only one record can
// be edited at a time.
func (s *GridService) StartEdit(ctx context.Context, session *models.Session, slno string) (models.EditBuffer, error) {
	if session.EditMode != models.EditModeSingle {
		return models.EditBuffer{}, appErrors.Clone(appErrors.ErrValidation, "single edit requires single edit mode")
	}

	record, err := s.currentRecord(ctx, session, slno)
	if err != nil {
		return models.EditBuffer{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(session.ID)
	st.expireSuccess(s.now())
	if st.edit.Active() && st.edit.SlNo != slno {
		return st.edit, appErrors.ErrEditInProgress
	}
	if st.mutationPending() {
		return st.edit, appErrors.ErrMutationPending
	}

	st.edit = models.EditBuffer{
		Phase:    models.PhaseEditing,
		SlNo:     slno,
		RawValue: FormatMark(st.displayValue(record)),
	}
	return st.edit, nil
}

// SetEditValue updates the open edit buffer with a new raw input, validating
// it against the record's maximum. Validation failure lands in the buffer's
// Error field rather than failing the call; the input is never lost.
func (s *GridService) SetEditValue(ctx context.Context, session *models.Session, raw string) (models.EditBuffer, error) {
	s.mu.Lock()
	st := s.state(session.ID)
	st.expireSuccess(s.now())
	if st.edit.Phase != models.PhaseEditing {
		s.mu.Unlock()
		return st.edit, appErrors.Clone(appErrors.ErrValidation, "no record is being edited")
	}
	slno := st.edit.SlNo
	s.mu.Unlock()

	record, err := s.currentRecord(ctx, session, slno)
	if err != nil {
		return models.EditBuffer{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st = s.state(session.ID)
	if st.edit.Phase != models.PhaseEditing || st.edit.SlNo != slno {
		return st.edit, appErrors.Clone(appErrors.ErrValidation, "no record is being edited")
	}
	st.edit.RawValue = raw
	if _, verr := ValidateMark(raw, record.MaxMark); verr != nil {
		st.edit.Error = verr.Error()
	} else {
		st.edit.Error = ""
	}
	return st.edit, nil
}

// CancelEdit abandons the open edit buffer. A save in flight cannot be
// cancelled.
func (s *GridService) CancelEdit(ctx context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(session.ID)
	if st.mutationPending() {
		return appErrors.ErrMutationPending
	}
	st.discardEdit()
	return nil
}

// SaveEdit commits the open edit buffer. Saving a value equal to the one
// already shown is a no-op and closes the buffer without a mutation.
func (s *GridService) SaveEdit(ctx context.Context, session *models.Session, meta RequestMeta) (SaveOutcome, error) {
	s.mu.Lock()
	st := s.state(session.ID)
	st.expireSuccess(s.now())
	if st.mutationPending() {
		s.mu.Unlock()
		return SaveOutcome{}, appErrors.ErrMutationPending
	}
	if st.edit.Phase != models.PhaseEditing {
		s.mu.Unlock()
		return SaveOutcome{}, appErrors.Clone(appErrors.ErrValidation, "no record is being edited")
	}
	slno := st.edit.SlNo
	raw := st.edit.RawValue
	s.mu.Unlock()

	record, err := s.currentRecord(ctx, session, slno)
	if err != nil {
		return SaveOutcome{}, err
	}

	value, verr := ValidateMark(raw, record.MaxMark)

	s.mu.Lock()
	st = s.state(session.ID)
	if st.bulkSaving {
		s.mu.Unlock()
		return SaveOutcome{}, appErrors.ErrMutationPending
	}
	if st.edit.Phase != models.PhaseEditing || st.edit.SlNo != slno {
		s.mu.Unlock()
		return SaveOutcome{}, appErrors.Clone(appErrors.ErrValidation, "no record is being edited")
	}
	if verr != nil {
		st.edit.Error = verr.Error()
		s.mu.Unlock()
		return SaveOutcome{}, appErrors.Clone(appErrors.ErrValidation, verr.Error())
	}

	current := st.displayValue(record)
	if value == current {
		st.discardEdit()
		s.mu.Unlock()
		return SaveOutcome{Committed: false}, nil
	}

	st.edit.Phase = models.PhaseSaving
	st.edit.Error = ""
	s.mu.Unlock()

	err = s.marks.Update(ctx, session.UpstreamToken, models.MarkUpdate{SlNo: slno, Mark: value})

	s.mu.Lock()
	defer s.mu.Unlock()
	st = s.state(session.ID)
	if err != nil {
		st.edit.Phase = models.PhaseEditing
		st.edit.Error = errorMessage(err)
		return SaveOutcome{}, err
	}

	st.overlay[slno] = value
	st.edit = models.EditBuffer{
		Phase:        models.PhaseSuccess,
		SlNo:         slno,
		SuccessUntil: s.now().Add(s.config.SuccessWindow),
	}

	oldMark := record.Mark
	s.recordAudit(ctx, &models.MarkAudit{
		UserID:    session.UserID,
		Action:    models.AuditActionMarkUpdate,
		SlNo:      &slno,
		OldMark:   &oldMark,
		NewMark:   &value,
		BatchSize: 1,
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
	})

	return SaveOutcome{Committed: true, Count: 1}, nil
}

// SetBulkInput records one raw bulk-edit input and revalidates it. Clearing
// the input removes the record from all three mappings; a value equal to the
// one shown stays raw but is not committable.
func (s *GridService) SetBulkInput(ctx context.Context, session *models.Session, slno, raw string) (models.BulkBuffer, error) {
	if session.EditMode != models.EditModeBulk {
		return models.BulkBuffer{}, appErrors.Clone(appErrors.ErrValidation, "bulk edit requires bulk edit mode")
	}

	record, err := s.currentRecord(ctx, session, slno)
	if err != nil {
		return models.BulkBuffer{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(session.ID)
	if st.bulkSaving {
		return st.bulk, appErrors.ErrMutationPending
	}

	if strings.TrimSpace(raw) == "" {
		delete(st.bulk.Raw, slno)
		delete(st.bulk.Valid, slno)
		delete(st.bulk.Errors, slno)
		return st.bulk, nil
	}

	st.bulk.Raw[slno] = raw
	value, verr := ValidateMark(raw, record.MaxMark)
	if verr != nil {
		st.bulk.Errors[slno] = verr.Error()
		delete(st.bulk.Valid, slno)
		return st.bulk, nil
	}

	delete(st.bulk.Errors, slno)
	if value == st.displayValue(record) {
		delete(st.bulk.Valid, slno)
	} else {
		st.bulk.Valid[slno] = value
	}
	return st.bulk, nil
}

// BulkSave commits every valid bulk entry in one batch. The batch either
// applies as a whole or the buffers stay intact for another attempt.
func (s *GridService) BulkSave(ctx context.Context, session *models.Session, meta RequestMeta) (SaveOutcome, error) {
	if session.EditMode != models.EditModeBulk {
		return SaveOutcome{}, appErrors.Clone(appErrors.ErrValidation, "bulk edit requires bulk edit mode")
	}

	s.mu.Lock()
	st := s.state(session.ID)
	if st.mutationPending() {
		s.mu.Unlock()
		return SaveOutcome{}, appErrors.ErrMutationPending
	}
	if st.bulk.HasErrors() {
		s.mu.Unlock()
		return SaveOutcome{}, appErrors.ErrBulkInvalid
	}
	if !st.bulk.HasChanges() {
		s.mu.Unlock()
		return SaveOutcome{}, appErrors.ErrNoChanges
	}

	slnos := make([]string, 0, len(st.bulk.Valid))
	for slno := range st.bulk.Valid {
		slnos = append(slnos, slno)
	}
	sort.Strings(slnos)

	updates := make([]models.MarkUpdate, 0, len(slnos))
	olds := make(map[string]float64, len(slnos))
	for _, slno := range slnos {
		updates = append(updates, models.MarkUpdate{SlNo: slno, Mark: st.bulk.Valid[slno]})
		if record := st.lastPage.Record(slno); record != nil {
			olds[slno] = record.Mark
		}
	}
	st.bulkSaving = true
	s.mu.Unlock()

	err := s.marks.BulkUpdate(ctx, session.UpstreamToken, updates)

	s.mu.Lock()
	defer s.mu.Unlock()
	st = s.state(session.ID)
	st.bulkSaving = false
	if err != nil {
		return SaveOutcome{}, err
	}

	entries := make([]*models.MarkAudit, 0, len(updates))
	for i := range updates {
		update := updates[i]
		st.overlay[update.SlNo] = update.Mark
		entry := &models.MarkAudit{
			UserID:    session.UserID,
			Action:    models.AuditActionBulkUpdate,
			SlNo:      &updates[i].SlNo,
			NewMark:   &updates[i].Mark,
			BatchSize: len(updates),
			IPAddress: meta.IP,
			UserAgent: meta.UserAgent,
		}
		if old, ok := olds[update.SlNo]; ok {
			o := old
			entry.OldMark = &o
		}
		entries = append(entries, entry)
	}
	st.discardBulk()

	s.recordAuditBatch(ctx, entries)

	return SaveOutcome{Committed: true, Count: len(updates)}, nil
}

// BulkReset abandons every bulk entry. A batch in flight cannot be reset.
func (s *GridService) BulkReset(ctx context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(session.ID)
	if st.bulkSaving {
		return appErrors.ErrMutationPending
	}
	st.discardBulk()
	return nil
}

// View fetches the current page and assembles the grid snapshot. Responses
// from superseded fetches never overwrite state written by a newer one.
func (s *GridService) View(ctx context.Context, session *models.Session) (GridSnapshot, error) {
	s.mu.Lock()
	st := s.state(session.ID)
	st.expireSuccess(s.now())
	query := st.query()
	st.fetchSeq++
	seq := st.fetchSeq
	s.mu.Unlock()

	page, fromCache, err := s.marks.Page(ctx, session.UpstreamToken, query)

	s.mu.Lock()
	defer s.mu.Unlock()
	st = s.state(session.ID)
	if err != nil {
		if st.lastPage != nil && st.lastKey == query.Key() {
			s.logger.Warn("serving last known page after fetch failure",
				zap.String("session", session.ID), zap.Error(err))
			return s.snapshot(session, st, st.lastPage, true), nil
		}
		return GridSnapshot{}, err
	}

	key := query.Key()
	if seq >= st.appliedSeq && st.query().Key() == key {
		st.appliedSeq = seq
		st.lastPage = page
		st.lastKey = key
		if !fromCache {
			// Fresh data supersedes the optimistic overlay for the
			// records it carries.
			for i := range page.Results {
				delete(st.overlay, page.Results[i].SlNo)
			}
		}
		if st.edit.Active() && page.Record(st.edit.SlNo) == nil {
			st.discardEdit()
		}
	}

	return s.snapshot(session, st, page, fromCache), nil
}

func (s *GridService) snapshot(session *models.Session, st *gridState, page *models.MarksPage, fromCache bool) GridSnapshot {
	overlay := make(map[string]float64, len(st.overlay))
	for k, v := range st.overlay {
		overlay[k] = v
	}
	bulk := models.BulkBuffer{
		Raw:    make(map[string]string, len(st.bulk.Raw)),
		Valid:  make(map[string]float64, len(st.bulk.Valid)),
		Errors: make(map[string]string, len(st.bulk.Errors)),
	}
	for k, v := range st.bulk.Raw {
		bulk.Raw[k] = v
	}
	for k, v := range st.bulk.Valid {
		bulk.Valid[k] = v
	}
	for k, v := range st.bulk.Errors {
		bulk.Errors[k] = v
	}
	return GridSnapshot{
		Query:      st.query(),
		Page:       page,
		FromCache:  fromCache,
		Edit:       st.edit,
		Bulk:       bulk,
		BulkSaving: st.bulkSaving,
		Overlay:    overlay,
		EditMode:   session.EditMode,
	}
}

// currentRecord resolves a record on the session's current page, fetching the
// page when it has not been loaded yet.
func (s *GridService) currentRecord(ctx context.Context, session *models.Session, slno string) (*models.MarkRecord, error) {
	s.mu.Lock()
	st := s.state(session.ID)
	query := st.query()
	if st.lastPage != nil && st.lastKey == query.Key() {
		if record := st.lastPage.Record(slno); record != nil {
			copied := *record
			s.mu.Unlock()
			return &copied, nil
		}
		s.mu.Unlock()
		return nil, appErrors.Clone(appErrors.ErrNotFound, "record is not on the current page")
	}
	s.mu.Unlock()

	page, _, err := s.marks.Page(ctx, session.UpstreamToken, query)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	st = s.state(session.ID)
	if st.query().Key() == query.Key() {
		st.lastPage = page
		st.lastKey = query.Key()
	}
	s.mu.Unlock()

	record := page.Record(slno)
	if record == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "record is not on the current page")
	}
	copied := *record
	return &copied, nil
}

func (s *GridService) recordAudit(ctx context.Context, entry *models.MarkAudit) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Insert(ctx, entry); err != nil {
		s.logger.Warn("failed to record audit entry", zap.String("action", entry.Action), zap.Error(err))
	}
}

func (s *GridService) recordAuditBatch(ctx context.Context, entries []*models.MarkAudit) {
	if s.audit == nil || len(entries) == 0 {
		return
	}
	if err := s.audit.InsertBatch(ctx, entries); err != nil {
		s.logger.Warn("failed to record audit batch", zap.Int("size", len(entries)), zap.Error(err))
	}
}

// errorMessage extracts the operator-facing message from an error.
func errorMessage(err error) string {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return appErrors.ErrMutationFailed.Message
}
