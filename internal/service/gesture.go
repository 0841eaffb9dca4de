package service

import (
	"sort"
	"sync"
	"time"

	"github.com/noah-isme/bimbel-adp-api/internal/models"
)

// Gesture is one in-flight optimistic edit on a schedule board. The board's
// committed rows stay untouched while a gesture is open: tentative state
// lives here, so cancelling or losing a conflict check needs no restoration
// work. Snapshot holds the pre-mutation copy used for rollback; for create
// gestures it holds the base placement the delta is measured from.
type Gesture struct {
	ID         string
	Kind       models.GestureKind
	UID        string
	Generation int64
	Snapshot   *models.CalendarEventInstance
	Tentative  *models.CalendarEventInstance
	Validation *models.ConflictCheckResult

	timer *time.Timer
}

// view returns a copy safe to serialize outside the board lock.
func (g *Gesture) view() *Gesture {
	out := &Gesture{
		ID:         g.ID,
		Kind:       g.Kind,
		UID:        g.UID,
		Generation: g.Generation,
		Tentative:  g.Tentative.Clone(),
	}
	if g.Validation != nil {
		validation := *g.Validation
		validation.Conflicts = append([]models.ConflictDetail(nil), g.Validation.Conflicts...)
		out.Validation = &validation
	}
	return out
}

// ScheduleBoard is the single source of truth for one open planner view:
// the materialized instances and blocks of a (teacher, window) pair plus the
// gestures editing them. Every access goes through the mutex.
type ScheduleBoard struct {
	Token     string
	TeacherID string
	Window    models.CalendarWindow
	CreatedAt time.Time

	mu        sync.Mutex
	version   int64
	instances map[string]*models.CalendarEventInstance
	blocks    map[string]*models.TimeBlock
	gestures  map[string]*Gesture
	pending   map[string]string

	// recent holds locally committed rows a background refresh has not yet
	// observed, nil marking a local delete. An entry clears once the
	// incoming materialization agrees, so a refresh that loaded before the
	// commit can never regress it.
	recent       map[string]*models.CalendarEventInstance
	recentBlocks map[string]*models.TimeBlock
}

func newScheduleBoard(token, teacherID string, window models.CalendarWindow, instances []models.CalendarEventInstance, blocks []models.TimeBlock, createdAt time.Time) *ScheduleBoard {
	board := &ScheduleBoard{
		Token:        token,
		TeacherID:    teacherID,
		Window:       window,
		CreatedAt:    createdAt,
		instances:    make(map[string]*models.CalendarEventInstance, len(instances)),
		blocks:       make(map[string]*models.TimeBlock, len(blocks)),
		gestures:     make(map[string]*Gesture),
		pending:      make(map[string]string),
		recent:       make(map[string]*models.CalendarEventInstance),
		recentBlocks: make(map[string]*models.TimeBlock),
	}
	for i := range instances {
		row := instances[i]
		board.instances[row.UID] = &row
	}
	for i := range blocks {
		block := blocks[i]
		board.blocks[block.ID] = &block
	}
	return board
}

// Version reports the board revision. It bumps on every visible change so
// clients can skip unchanged polls.
func (b *ScheduleBoard) Version() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.version
}

// viewLocked renders the board with open gestures overlaid: moved and
// resized rows show their tentative placement, deletes show as cancelled,
// creates appear under their temporary uid. Callers hold mu.
func (b *ScheduleBoard) viewLocked() ([]models.CalendarEventInstance, []models.TimeBlock) {
	tentative := make(map[string]*models.CalendarEventInstance, len(b.gestures))
	var created []*models.CalendarEventInstance
	for _, g := range b.gestures {
		if g.Tentative == nil {
			continue
		}
		if _, exists := b.instances[g.UID]; exists {
			tentative[g.UID] = g.Tentative
		} else {
			created = append(created, g.Tentative)
		}
	}

	events := make([]models.CalendarEventInstance, 0, len(b.instances)+len(created))
	for uid, row := range b.instances {
		if overlay, ok := tentative[uid]; ok {
			events = append(events, *overlay.Clone())
			continue
		}
		events = append(events, *row.Clone())
	}
	for _, row := range created {
		events = append(events, *row.Clone())
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].Start.Equal(events[j].Start) {
			return events[i].UID < events[j].UID
		}
		return events[i].Start.Before(events[j].Start)
	})

	blocks := make([]models.TimeBlock, 0, len(b.blocks))
	for _, block := range b.blocks {
		blocks = append(blocks, *block)
	}
	sort.Slice(blocks, func(i, j int) bool {
		if blocks[i].Date.Equal(blocks[j].Date) {
			if blocks[i].StartTime == blocks[j].StartTime {
				return blocks[i].ID < blocks[j].ID
			}
			return blocks[i].StartTime < blocks[j].StartTime
		}
		return blocks[i].Date.Before(blocks[j].Date)
	})
	return events, blocks
}

// mergeLocked patch-merges a freshly materialized window into the board.
// Rows with a pending gesture or an unconfirmed local commit are preserved;
// everything else follows the incoming set. Returns the number of preserved
// rows. Callers hold mu.
func (b *ScheduleBoard) mergeLocked(incoming []models.CalendarEventInstance, blocks []models.TimeBlock) int {
	incomingByUID := make(map[string]*models.CalendarEventInstance, len(incoming))
	for i := range incoming {
		row := incoming[i]
		incomingByUID[row.UID] = &row
	}

	preserved := 0
	next := make(map[string]*models.CalendarEventInstance, len(incoming))

	for uid, row := range incomingByUID {
		if _, busy := b.pending[uid]; busy {
			if local := b.instances[uid]; local != nil {
				next[uid] = local
				preserved++
				continue
			}
		}
		if local, unconfirmed := b.recent[uid]; unconfirmed {
			if local == nil {
				// deleted locally, the incoming load predates the commit
				preserved++
				continue
			}
			if !sameInstanceState(local, row) {
				if keep := b.instances[uid]; keep != nil {
					next[uid] = keep
				} else {
					next[uid] = local
				}
				preserved++
				continue
			}
			delete(b.recent, uid)
		}
		next[uid] = row
	}

	for uid, row := range b.instances {
		if _, ok := incomingByUID[uid]; ok {
			continue
		}
		if _, busy := b.pending[uid]; busy {
			next[uid] = row
			preserved++
			continue
		}
		if local, unconfirmed := b.recent[uid]; unconfirmed && local != nil {
			next[uid] = row
			preserved++
		}
	}

	nextBlocks := make(map[string]*models.TimeBlock, len(blocks))
	incomingBlockIDs := make(map[string]bool, len(blocks))
	for i := range blocks {
		block := blocks[i]
		incomingBlockIDs[block.ID] = true
		if local, unconfirmed := b.recentBlocks[block.ID]; unconfirmed {
			if local == nil {
				preserved++
				continue
			}
			delete(b.recentBlocks, block.ID)
		}
		nextBlocks[block.ID] = &block
	}
	for id, block := range b.blocks {
		if incomingBlockIDs[id] {
			continue
		}
		if local, unconfirmed := b.recentBlocks[id]; unconfirmed && local != nil {
			nextBlocks[id] = block
			preserved++
		}
	}

	// a tombstoned row missing from the incoming load is a confirmed delete
	for uid, local := range b.recent {
		if local != nil {
			continue
		}
		if _, ok := incomingByUID[uid]; !ok {
			delete(b.recent, uid)
		}
	}
	for id, local := range b.recentBlocks {
		if local == nil && !incomingBlockIDs[id] {
			delete(b.recentBlocks, id)
		}
	}

	b.instances = next
	b.blocks = nextBlocks
	b.version++
	return preserved
}

// sameInstanceState reports whether two rows agree on the fields a commit
// changes, which is the confirmation signal for an unconfirmed local edit.
func sameInstanceState(a, b *models.CalendarEventInstance) bool {
	return a.Start.Equal(b.Start) && a.End.Equal(b.End) && a.DurationMin == b.DurationMin
}
