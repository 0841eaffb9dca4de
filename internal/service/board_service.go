package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/bimbel-adp-api/internal/models"
	"github.com/noah-isme/bimbel-adp-api/internal/repository"
	appErrors "github.com/noah-isme/bimbel-adp-api/pkg/errors"
)

type boardMaterializer interface {
	WindowSnapshot(ctx context.Context, teacherID string, window models.CalendarWindow) ([]models.CalendarEventInstance, []models.TimeBlock, error)
}

type boardValidator interface {
	Check(ctx context.Context, req models.ConflictCheckRequest) (*models.ConflictCheckResult, error)
}

type overridePersister interface {
	Upsert(ctx context.Context, override *models.ScheduleOverride) error
	UpsertMove(ctx context.Context, place, cancel *models.ScheduleOverride) error
}

type sessionPersister interface {
	FindByID(ctx context.Context, id string) (*models.Session, error)
	Create(ctx context.Context, session *models.Session) error
	Update(ctx context.Context, session *models.Session) error
	Cancel(ctx context.Context, id string) error
}

type blockPersister interface {
	Create(ctx context.Context, block *models.TimeBlock) error
	Delete(ctx context.Context, id string) error
}

type changePublisher interface {
	Publish(ctx context.Context, change models.ScheduleChange) error
}

type boardMetrics interface {
	RecordGesture(kind models.GestureKind, outcome string)
	RecordStaleValidation()
	RecordBoardRefresh(preserved int)
}

// BoardConfig tunes gesture snapping and debounced validation.
type BoardConfig struct {
	SnapGridMin      int
	ValidateDebounce time.Duration
}

// BoardService runs the optimistic mutation engine over schedule boards:
// open and refresh boards, walk gestures through tentative state, debounced
// validation and commit, and roll back exactly when persistence fails.
type BoardService struct {
	materializer boardMaterializer
	validator    boardValidator
	batches      availabilityBatchReader
	overrides    overridePersister
	sessions     sessionPersister
	blocks       blockPersister
	cache        *CacheService
	signals      changePublisher
	metrics      boardMetrics
	cfg          BoardConfig
	logger       *zap.Logger
	now          func() time.Time
	afterFunc    func(d time.Duration, f func()) *time.Timer
}

// BoardServiceParams groups constructor dependencies.
type BoardServiceParams struct {
	Materializer boardMaterializer
	Validator    boardValidator
	Batches      availabilityBatchReader
	Overrides    overridePersister
	Sessions     sessionPersister
	Blocks       blockPersister
	Cache        *CacheService
	Signals      changePublisher
	Metrics      boardMetrics
	Config       BoardConfig
	Logger       *zap.Logger
}

// NewBoardService constructs a BoardService with defaulted tuning.
func NewBoardService(params BoardServiceParams) *BoardService {
	cfg := params.Config
	if cfg.SnapGridMin <= 0 {
		cfg.SnapGridMin = 30
	}
	if cfg.ValidateDebounce <= 0 {
		cfg.ValidateDebounce = 240 * time.Millisecond
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BoardService{
		materializer: params.Materializer,
		validator:    params.Validator,
		batches:      params.Batches,
		overrides:    params.Overrides,
		sessions:     params.Sessions,
		blocks:       params.Blocks,
		cache:        params.Cache,
		signals:      params.Signals,
		metrics:      params.Metrics,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
		afterFunc:    time.AfterFunc,
	}
}

// Open materializes a board over the teacher's window.
func (s *BoardService) Open(ctx context.Context, teacherID string, window models.CalendarWindow) (*ScheduleBoard, error) {
	if teacherID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "teacher id is required")
	}
	instances, blocks, err := s.materializer.WindowSnapshot(ctx, teacherID, window)
	if err != nil {
		return nil, err
	}
	board := newScheduleBoard(uuid.NewString(), teacherID, window, instances, blocks, s.now().UTC())
	s.logger.Info("planner board opened",
		zap.String("token", board.Token),
		zap.String("teacherId", teacherID),
		zap.Int("instances", len(instances)))
	return board, nil
}

// Events renders the board with open gestures overlaid.
func (s *BoardService) Events(board *ScheduleBoard) ([]models.CalendarEventInstance, []models.TimeBlock, int64) {
	board.mu.Lock()
	defer board.mu.Unlock()
	events, blocks := board.viewLocked()
	return events, blocks, board.version
}

// Refresh re-materializes the board window and patch-merges the result.
// Rows under a pending gesture or an unconfirmed local commit are never
// regressed. On load failure the board keeps its current rows.
func (s *BoardService) Refresh(ctx context.Context, board *ScheduleBoard) error {
	instances, blocks, err := s.materializer.WindowSnapshot(ctx, board.TeacherID, board.Window)
	if err != nil {
		return err
	}
	board.mu.Lock()
	preserved := board.mergeLocked(instances, blocks)
	board.mu.Unlock()
	if s.metrics != nil {
		s.metrics.RecordBoardRefresh(preserved)
	}
	s.logger.Debug("board refreshed",
		zap.String("token", board.Token),
		zap.Int("incoming", len(instances)),
		zap.Int("preserved", preserved))
	return nil
}

// BeginGesture opens an edit gesture. Move, resize and delete target an
// existing instance; create carries a placement spec. Gestures are
// single-flight per uid.
func (s *BoardService) BeginGesture(ctx context.Context, board *ScheduleBoard, kind models.GestureKind, uid string, spec *models.CreateSpec) (*Gesture, error) {
	g := &Gesture{ID: uuid.NewString(), Kind: kind, UID: uid}

	switch kind {
	case models.GestureKindCreate:
		if spec == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "create gestures require a placement spec")
		}
		tentative, err := s.createTentative(ctx, board, spec)
		if err != nil {
			return nil, err
		}
		g.UID = tentative.UID
		g.Snapshot = tentative.Clone()
		g.Tentative = tentative
	case models.GestureKindMove, models.GestureKindResize, models.GestureKindDelete:
		if uid == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "gesture target uid is required")
		}
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported gesture kind %q", kind))
	}

	board.mu.Lock()
	defer board.mu.Unlock()

	if gid, busy := board.pending[g.UID]; busy {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, fmt.Sprintf("gesture %s is already editing this event", gid))
	}
	if kind != models.GestureKindCreate {
		row, ok := board.instances[g.UID]
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no such event on this board")
		}
		if !row.Editable {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "completed sessions cannot be edited")
		}
		g.Snapshot = row.Clone()
		g.Tentative = row.Clone()
		if kind == models.GestureKindDelete {
			g.Tentative.Cancelled = true
			g.Tentative.Status = models.EventStatusCancelled
			g.Tentative.Editable = false
		}
	}

	board.gestures[g.ID] = g
	board.pending[g.UID] = g.ID
	board.version++
	if kind == models.GestureKindCreate {
		s.scheduleValidation(board, g)
	}
	return g.view(), nil
}

// UpdateGesture applies a minute delta, measured from the gesture's base
// placement and snapped toward zero onto the grid. The tentative state
// renders immediately; a debounced conflict check follows.
func (s *BoardService) UpdateGesture(board *ScheduleBoard, gestureID string, deltaMin int) (*Gesture, error) {
	board.mu.Lock()
	defer board.mu.Unlock()

	g, ok := board.gestures[gestureID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "gesture not found")
	}
	if g.Kind == models.GestureKindDelete {
		return nil, appErrors.Clone(appErrors.ErrValidation, "delete gestures do not accept position updates")
	}

	applyGestureDelta(g, snapMinutes(deltaMin, s.cfg.SnapGridMin), s.cfg.SnapGridMin)
	s.scheduleValidation(board, g)
	board.version++
	return g.view(), nil
}

// CommitGesture finalizes a gesture: a synchronous conflict check, an
// optimistic apply to the board, then persistence. A persistence failure
// restores the pre-gesture snapshot exactly.
func (s *BoardService) CommitGesture(ctx context.Context, board *ScheduleBoard, gestureID string) (*models.CommitResult, error) {
	board.mu.Lock()
	defer board.mu.Unlock()

	g, ok := board.gestures[gestureID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "gesture not found")
	}
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}

	if g.Kind != models.GestureKindDelete {
		check, err := s.validator.Check(ctx, gestureCheckRequest(g, g.Generation))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "final conflict check failed")
		}
		if !check.OK {
			s.releaseGesture(board, g)
			board.version++
			s.recordGesture(g.Kind, "conflict")
			message := check.Message
			if message == "" {
				message = "placement conflicts with an existing commitment"
			}
			return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrConflict, message), check.Conflicts)
		}
	}

	var (
		result *models.CommitResult
		err    error
	)
	switch g.Kind {
	case models.GestureKindMove, models.GestureKindResize:
		result, err = s.commitMoveResize(ctx, board, g)
	case models.GestureKindCreate:
		result, err = s.commitCreate(ctx, board, g)
	case models.GestureKindDelete:
		result, err = s.commitDelete(ctx, board, g)
	default:
		err = appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported gesture kind %q", g.Kind))
	}
	if err != nil {
		s.releaseGesture(board, g)
		board.version++
		s.recordGesture(g.Kind, "rolled_back")
		return nil, err
	}

	s.releaseGesture(board, g)
	board.version++
	s.recordGesture(g.Kind, "committed")
	s.broadcastChange(board, g.Tentative.BatchID, result)
	return result, nil
}

// CancelGesture drops a gesture without touching committed state.
func (s *BoardService) CancelGesture(board *ScheduleBoard, gestureID string) error {
	board.mu.Lock()
	defer board.mu.Unlock()

	g, ok := board.gestures[gestureID]
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "gesture not found")
	}
	s.releaseGesture(board, g)
	board.version++
	s.recordGesture(g.Kind, "cancelled")
	return nil
}

// CreateBlock places a time block through the board: a temporary entry
// renders while the row persists, then is replaced by the stored row or
// removed when the write fails.
func (s *BoardService) CreateBlock(ctx context.Context, board *ScheduleBoard, block *models.TimeBlock) (*models.TimeBlock, error) {
	if block.TeacherID == "" {
		block.TeacherID = board.TeacherID
	}
	if block.TeacherID != board.TeacherID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "block belongs to a different teacher")
	}
	if _, err := parseClock(block.StartTime); err != nil {
		return nil, err
	}
	if block.DurationMin <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "block duration must be positive")
	}

	temp := *block
	temp.ID = "tmp-" + uuid.NewString()
	board.mu.Lock()
	board.blocks[temp.ID] = &temp
	board.recentBlocks[temp.ID] = &temp
	board.version++
	board.mu.Unlock()

	stored := *block
	err := s.blocks.Create(ctx, &stored)

	board.mu.Lock()
	defer board.mu.Unlock()
	delete(board.blocks, temp.ID)
	delete(board.recentBlocks, temp.ID)
	board.version++
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to persist block")
	}
	board.blocks[stored.ID] = &stored
	board.recentBlocks[stored.ID] = &stored
	s.broadcastChange(board, "", &models.CommitResult{Kind: models.GestureKindCreate, NewUID: blockUID(stored.ID)})
	return &stored, nil
}

// DeleteBlock removes a block optimistically and re-inserts the exact prior
// entry when the delete fails.
func (s *BoardService) DeleteBlock(ctx context.Context, board *ScheduleBoard, blockID string) error {
	board.mu.Lock()
	prior, ok := board.blocks[blockID]
	if !ok {
		board.mu.Unlock()
		return appErrors.Clone(appErrors.ErrNotFound, "block not found on this board")
	}
	delete(board.blocks, blockID)
	board.recentBlocks[blockID] = nil
	board.version++
	board.mu.Unlock()

	err := s.blocks.Delete(ctx, blockID)

	board.mu.Lock()
	defer board.mu.Unlock()
	if err != nil {
		board.blocks[blockID] = prior
		delete(board.recentBlocks, blockID)
		board.version++
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to delete block")
	}
	s.broadcastChange(board, "", &models.CommitResult{Kind: models.GestureKindDelete, OldUID: blockUID(blockID)})
	return nil
}

func (s *BoardService) createTentative(ctx context.Context, board *ScheduleBoard, spec *models.CreateSpec) (*models.CalendarEventInstance, error) {
	if spec.DurationMin <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "duration must be positive")
	}
	start, err := clockOnDate(spec.Date, spec.StartTime)
	if err != nil {
		return nil, err
	}
	if !board.Window.Contains(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "placement is outside the board window")
	}

	batch, err := s.batches.FindByID(ctx, spec.BatchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}
	if batch.TeacherID != board.TeacherID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "batch belongs to a different teacher")
	}
	if batch.Status != models.BatchStatusActive {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "batch is not active")
	}

	tentative := &models.CalendarEventInstance{
		UID:          "tmp-" + uuid.NewString(),
		BatchID:      batch.ID,
		Title:        batch.Name,
		TeacherID:    batch.TeacherID,
		Room:         batch.Room,
		Date:         dateOnly(start),
		Start:        start,
		End:          start.Add(minutes(spec.DurationMin)),
		DurationMin:  spec.DurationMin,
		Source:       models.EventSourceSession,
		Editable:     true,
		StudentCount: batch.Enrolled,
		FeeDueCount:  batch.FeeDueCount,
		RiskCount:    batch.RiskCount,
	}
	tentative.Status = tentative.ClassifyStatus(s.now().UTC())
	return tentative, nil
}

func (s *BoardService) commitMoveResize(ctx context.Context, board *ScheduleBoard, g *Gesture) (*models.CommitResult, error) {
	applied := g.Tentative.Clone()
	applied.Status = applied.ClassifyStatus(s.now().UTC())
	applied.Editable = applied.Status != models.EventStatusCompleted
	if applied.SessionID == nil {
		applied.UID = models.InstanceUID(nil, applied.BatchID, applied.Start)
	}

	delete(board.instances, g.UID)
	board.instances[applied.UID] = applied

	if err := s.persistMoveResize(ctx, g, applied); err != nil {
		delete(board.instances, applied.UID)
		board.instances[g.UID] = g.Snapshot.Clone()
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to persist schedule change")
	}

	board.recent[applied.UID] = applied.Clone()
	if applied.UID != g.UID {
		board.recent[g.UID] = nil
	}
	return &models.CommitResult{
		GestureID: g.ID,
		Kind:      g.Kind,
		OldUID:    g.UID,
		NewUID:    applied.UID,
		Instance:  applied.Clone(),
	}, nil
}

func (s *BoardService) persistMoveResize(ctx context.Context, g *Gesture, applied *models.CalendarEventInstance) error {
	if applied.SessionID != nil {
		session, err := s.sessions.FindByID(ctx, *applied.SessionID)
		if err != nil {
			return err
		}
		session.Date = dateOnly(applied.Start)
		session.StartTime = formatClock(applied.Start)
		session.DurationMin = applied.DurationMin
		return s.sessions.Update(ctx, session)
	}

	startClock := formatClock(applied.Start)
	duration := applied.DurationMin
	place := &models.ScheduleOverride{
		BatchID:     applied.BatchID,
		Date:        dateOnly(applied.Start),
		StartTime:   &startClock,
		DurationMin: &duration,
	}
	if sameDate(g.Snapshot.Start, applied.Start) {
		return s.overrides.Upsert(ctx, place)
	}
	cancel := &models.ScheduleOverride{
		BatchID:   applied.BatchID,
		Date:      dateOnly(g.Snapshot.Start),
		Cancelled: true,
	}
	return s.overrides.UpsertMove(ctx, place, cancel)
}

func (s *BoardService) commitCreate(ctx context.Context, board *ScheduleBoard, g *Gesture) (*models.CommitResult, error) {
	session := &models.Session{
		BatchID:     g.Tentative.BatchID,
		Date:        dateOnly(g.Tentative.Start),
		StartTime:   formatClock(g.Tentative.Start),
		DurationMin: g.Tentative.DurationMin,
		Status:      models.SessionStatusScheduled,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to persist new session")
	}

	applied := g.Tentative.Clone()
	sessionID := session.ID
	applied.SessionID = &sessionID
	applied.UID = models.InstanceUID(&sessionID, applied.BatchID, applied.Start)
	applied.Source = models.EventSourceSession
	applied.Status = applied.ClassifyStatus(s.now().UTC())
	applied.Editable = applied.Status != models.EventStatusCompleted

	board.instances[applied.UID] = applied
	board.recent[applied.UID] = applied.Clone()

	return &models.CommitResult{
		GestureID: g.ID,
		Kind:      g.Kind,
		OldUID:    g.UID,
		NewUID:    applied.UID,
		Instance:  applied.Clone(),
	}, nil
}

func (s *BoardService) commitDelete(ctx context.Context, board *ScheduleBoard, g *Gesture) (*models.CommitResult, error) {
	delete(board.instances, g.UID)

	var err error
	if g.Snapshot.SessionID != nil {
		err = s.sessions.Cancel(ctx, *g.Snapshot.SessionID)
	} else {
		err = s.overrides.Upsert(ctx, &models.ScheduleOverride{
			BatchID:   g.Snapshot.BatchID,
			Date:      dateOnly(g.Snapshot.Start),
			Cancelled: true,
		})
	}
	if err != nil {
		board.instances[g.UID] = g.Snapshot.Clone()
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to persist removal")
	}

	board.recent[g.UID] = nil
	return &models.CommitResult{GestureID: g.ID, Kind: g.Kind, OldUID: g.UID}, nil
}

// scheduleValidation queues a debounced conflict check for the gesture's
// current tentative state. Each call supersedes the previous one; a result
// is applied only while its generation is still the latest. Callers hold
// the board mutex.
func (s *BoardService) scheduleValidation(board *ScheduleBoard, g *Gesture) {
	g.Generation++
	g.Validation = nil
	if g.timer != nil {
		g.timer.Stop()
	}
	gestureID := g.ID
	generation := g.Generation
	req := gestureCheckRequest(g, generation)
	g.timer = s.afterFunc(s.cfg.ValidateDebounce, func() {
		s.runValidation(board, gestureID, generation, req)
	})
}

func (s *BoardService) runValidation(board *ScheduleBoard, gestureID string, generation int64, req models.ConflictCheckRequest) {
	board.mu.Lock()
	g, ok := board.gestures[gestureID]
	if !ok || g.Generation != generation {
		board.mu.Unlock()
		s.recordStaleValidation()
		return
	}
	board.mu.Unlock()

	result, err := s.validator.Check(context.Background(), req)

	board.mu.Lock()
	defer board.mu.Unlock()
	g, ok = board.gestures[gestureID]
	if !ok || g.Generation != generation {
		s.recordStaleValidation()
		return
	}
	if err != nil {
		s.logger.Warn("debounced conflict check failed",
			zap.String("gestureId", gestureID),
			zap.Error(err))
		return
	}
	g.Validation = result
	board.version++
}

func (s *BoardService) releaseGesture(board *ScheduleBoard, g *Gesture) {
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	delete(board.gestures, g.ID)
	delete(board.pending, g.UID)
}

// broadcastChange notifies open boards and drops cached teacher views after
// a committed change. Runs detached so a slow broker never extends commit
// latency. Callers hold the board mutex.
func (s *BoardService) broadcastChange(board *ScheduleBoard, batchID string, result *models.CommitResult) {
	uid := result.NewUID
	if uid == "" {
		uid = result.OldUID
	}
	change := models.ScheduleChange{
		TeacherID: board.TeacherID,
		BatchID:   batchID,
		UID:       uid,
		Kind:      result.Kind,
		At:        s.now().UTC(),
	}
	teacherID := board.TeacherID
	go func() {
		ctx, cancelFn := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelFn()
		if s.signals != nil {
			if err := s.signals.Publish(ctx, change); err != nil {
				s.logger.Warn("schedule change publish failed", zap.Error(err))
			}
		}
		if s.cache != nil {
			if err := s.cache.Invalidate(ctx, repository.CalendarViewCachePattern(teacherID)); err != nil {
				s.logger.Warn("calendar view invalidation failed", zap.Error(err))
			}
		}
	}()
}

func (s *BoardService) recordGesture(kind models.GestureKind, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordGesture(kind, outcome)
	}
}

func (s *BoardService) recordStaleValidation() {
	if s.metrics != nil {
		s.metrics.RecordStaleValidation()
	}
}

// applyGestureDelta recomputes the tentative placement from the gesture's
// base. Move and create shift the start preserving duration; resize adjusts
// duration only, floored at one grid step.
func applyGestureDelta(g *Gesture, snapped, grid int) {
	base := g.Snapshot
	switch g.Kind {
	case models.GestureKindMove, models.GestureKindCreate:
		start := base.Start.Add(minutes(snapped))
		g.Tentative.Start = start
		g.Tentative.End = start.Add(minutes(base.DurationMin))
		g.Tentative.Date = dateOnly(start)
		g.Tentative.DurationMin = base.DurationMin
	case models.GestureKindResize:
		duration := base.DurationMin + snapped
		if duration < grid {
			duration = grid
		}
		g.Tentative.DurationMin = duration
		g.Tentative.End = g.Tentative.Start.Add(minutes(duration))
	}
}

func gestureCheckRequest(g *Gesture, generation int64) models.ConflictCheckRequest {
	return models.ConflictCheckRequest{
		TeacherID:  g.Tentative.TeacherID,
		Room:       g.Tentative.Room,
		Start:      g.Tentative.Start,
		End:        g.Tentative.End,
		ExcludeUID: g.UID,
		Generation: generation,
	}
}
