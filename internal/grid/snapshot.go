package grid

import (
	"sort"
	"time"
)

type dayKey struct {
	scheduleID int64
	day        time.Weekday
}

// Snapshot is an immutable, indexed view of every schedule, binding, and block.
type Snapshot struct {
	schedules map[int64]Schedule
	bindings  map[int64][]Binding
	blocks    map[dayKey][]Block
	loadedAt  time.Time
}

// NewSnapshot indexes the provided grid rows. Inputs are copied; later changes
// to the slices do not affect the snapshot.
func NewSnapshot(schedules []Schedule, bindings []Binding, blocks []Block) *Snapshot {
	snap := &Snapshot{
		schedules: make(map[int64]Schedule, len(schedules)),
		bindings:  make(map[int64][]Binding),
		blocks:    make(map[dayKey][]Block),
		loadedAt:  time.Now().UTC(),
	}
	for _, s := range schedules {
		snap.schedules[s.ID] = s
	}
	for _, b := range bindings {
		snap.bindings[b.MarketID] = append(snap.bindings[b.MarketID], b)
	}
	for _, b := range blocks {
		key := dayKey{scheduleID: b.ScheduleID, day: b.Day}
		snap.blocks[key] = append(snap.blocks[key], b)
	}
	for key := range snap.blocks {
		list := snap.blocks[key]
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].Start != list[j].Start {
				return list[i].Start < list[j].Start
			}
			return list[i].ID < list[j].ID
		})
	}
	return snap
}

// Schedule returns the schedule with the given id.
func (s *Snapshot) Schedule(id int64) (Schedule, bool) {
	sched, ok := s.schedules[id]
	return sched, ok
}

// Blocks returns the ordered blocks for a schedule and day.
func (s *Snapshot) Blocks(scheduleID int64, day time.Weekday) []Block {
	return s.blocks[dayKey{scheduleID: scheduleID, day: day}]
}

// LoadedAt reports when the snapshot was built.
func (s *Snapshot) LoadedAt() time.Time {
	return s.loadedAt
}

// Counts returns the number of schedules, bindings, and blocks indexed.
func (s *Snapshot) Counts() (schedules, bindings, blocks int) {
	schedules = len(s.schedules)
	for _, list := range s.bindings {
		bindings += len(list)
	}
	for _, list := range s.blocks {
		blocks += len(list)
	}
	return schedules, bindings, blocks
}
