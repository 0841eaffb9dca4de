package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/bimbel-adp-api/internal/models"
	appErrors "github.com/noah-isme/bimbel-adp-api/pkg/errors"
)

const boardRefreshTimeout = 10 * time.Second

type boardEngine interface {
	Open(ctx context.Context, teacherID string, window models.CalendarWindow) (*ScheduleBoard, error)
	Refresh(ctx context.Context, board *ScheduleBoard) error
}

type changeSubscriber interface {
	Subscribe(fn func(models.ScheduleChange)) func()
}

type plannerEntry struct {
	board     *ScheduleBoard
	expiresAt time.Time
}

// PlannerServiceConfig tunes board session lifetime and background cadence.
type PlannerServiceConfig struct {
	SessionTTL      time.Duration
	RefreshInterval time.Duration
	SweepInterval   time.Duration
}

// PlannerService holds the live schedule boards keyed by token. Expiry
// slides on access; a janitor loop evicts abandoned boards and drives the
// periodic background refresh. Committed changes elsewhere in the system
// arrive through the change subscription and refresh matching boards early.
type PlannerService struct {
	engine  boardEngine
	signals changeSubscriber
	cfg     PlannerServiceConfig
	logger  *zap.Logger
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]*plannerEntry

	started     bool
	stop        chan struct{}
	done        chan struct{}
	unsubscribe func()
}

// NewPlannerService constructs the planner store. Signals may be nil when
// no change hub is wired.
func NewPlannerService(engine boardEngine, signals changeSubscriber, cfg PlannerServiceConfig, logger *zap.Logger) *PlannerService {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * time.Minute
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = time.Minute
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlannerService{
		engine:  engine,
		signals: signals,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]*plannerEntry),
	}
}

// Open materializes a new board and registers it under its token.
func (s *PlannerService) Open(ctx context.Context, teacherID string, window models.CalendarWindow) (*ScheduleBoard, error) {
	board, err := s.engine.Open(ctx, teacherID, window)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.entries[board.Token] = &plannerEntry{board: board, expiresAt: s.now().Add(s.cfg.SessionTTL)}
	s.mu.Unlock()
	return board, nil
}

// Resolve returns the live board for a token and slides its expiry.
func (s *PlannerService) Resolve(token string) (*ScheduleBoard, error) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[token]
	if !ok || now.After(entry.expiresAt) {
		if ok {
			delete(s.entries, token)
		}
		return nil, appErrors.Clone(appErrors.ErrNotFound, "planner session not found or expired")
	}
	entry.expiresAt = now.Add(s.cfg.SessionTTL)
	return entry.board, nil
}

// Close releases a board before its TTL runs out.
func (s *PlannerService) Close(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[token]; !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "planner session not found or expired")
	}
	delete(s.entries, token)
	return nil
}

// Sessions reports how many boards are currently live.
func (s *PlannerService) Sessions() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	live := 0
	for _, entry := range s.entries {
		if !now.After(entry.expiresAt) {
			live++
		}
	}
	return live
}

// Start launches the janitor loop and the change subscription. Safe to call
// once.
func (s *PlannerService) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.mu.Unlock()

	if s.signals != nil {
		s.unsubscribe = s.signals.Subscribe(s.onChange)
	}
	go s.loop()
	s.logger.Info("planner store started",
		zap.Duration("sessionTtl", s.cfg.SessionTTL),
		zap.Duration("refreshInterval", s.cfg.RefreshInterval))
}

// Stop halts the janitor loop and waits for it to exit.
func (s *PlannerService) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	stop := s.stop
	done := s.done
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	close(stop)
	<-done
	s.logger.Info("planner store stopped")
}

func (s *PlannerService) loop() {
	defer close(s.done)
	refresh := time.NewTicker(s.cfg.RefreshInterval)
	defer refresh.Stop()
	sweep := time.NewTicker(s.cfg.SweepInterval)
	defer sweep.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-refresh.C:
			s.refreshAll()
		case <-sweep.C:
			s.sweep()
		}
	}
}

func (s *PlannerService) sweep() {
	now := s.now()
	s.mu.Lock()
	expired := 0
	for token, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, token)
			expired++
		}
	}
	s.mu.Unlock()
	if expired > 0 {
		s.logger.Debug("expired planner sessions evicted", zap.Int("count", expired))
	}
}

func (s *PlannerService) refreshAll() {
	for _, board := range s.liveBoards() {
		ctx, cancel := context.WithTimeout(context.Background(), boardRefreshTimeout)
		if err := s.engine.Refresh(ctx, board); err != nil {
			s.logger.Warn("background board refresh failed",
				zap.String("token", board.Token),
				zap.Error(err))
		}
		cancel()
	}
}

// onChange refreshes boards showing the affected teacher ahead of the
// periodic cadence.
func (s *PlannerService) onChange(change models.ScheduleChange) {
	for _, board := range s.liveBoards() {
		if change.TeacherID != "" && board.TeacherID != change.TeacherID {
			continue
		}
		target := board
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), boardRefreshTimeout)
			defer cancel()
			if err := s.engine.Refresh(ctx, target); err != nil {
				s.logger.Warn("change-triggered board refresh failed",
					zap.String("token", target.Token),
					zap.Error(err))
			}
		}()
	}
}

func (s *PlannerService) liveBoards() []*ScheduleBoard {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	boards := make([]*ScheduleBoard, 0, len(s.entries))
	for _, entry := range s.entries {
		if now.After(entry.expiresAt) {
			continue
		}
		boards = append(boards, entry.board)
	}
	return boards
}
