package grid

import (
	"sort"
	"time"
)

// Resolution is the schedule chosen for a market and date.
type Resolution struct {
	ScheduleID int64
	Name       string
	// Degraded is set when no date-ranged binding matched and the resolver fell
	// back to any active schedule bound to the market.
	Degraded bool
}

// Resolve picks the schedule governing market on date. Candidates are bindings
// whose range contains the date and whose schedule is active and effective;
// higher priority wins, then the most recent binding start, then the lowest
// schedule id. Without a dated match, the first active schedule bound to the
// market is returned as a degraded resolution. ok is false when the market has
// no usable binding at all.
func (s *Snapshot) Resolve(marketID int64, date time.Time) (Resolution, bool) {
	bindings := s.bindings[marketID]
	if len(bindings) == 0 {
		return Resolution{}, false
	}

	candidates := make([]Binding, 0, len(bindings))
	for _, b := range bindings {
		sched, ok := s.schedules[b.ScheduleID]
		if !ok || !sched.Active {
			continue
		}
		if !covers(b.EffectiveStart, b.EffectiveEnd, date) {
			continue
		}
		if !covers(sched.EffectiveStart, sched.EffectiveEnd, date) {
			continue
		}
		candidates = append(candidates, b)
	}
	if len(candidates) > 0 {
		sort.SliceStable(candidates, func(i, j int) bool {
			a, b := candidates[i], candidates[j]
			if a.Priority != b.Priority {
				return a.Priority > b.Priority
			}
			if !a.EffectiveStart.Equal(b.EffectiveStart) {
				return a.EffectiveStart.After(b.EffectiveStart)
			}
			return a.ScheduleID < b.ScheduleID
		})
		chosen := s.schedules[candidates[0].ScheduleID]
		return Resolution{ScheduleID: chosen.ID, Name: chosen.Name}, true
	}

	var fallback *Schedule
	for _, b := range bindings {
		sched, ok := s.schedules[b.ScheduleID]
		if !ok || !sched.Active {
			continue
		}
		if fallback == nil || sched.ID < fallback.ID {
			picked := sched
			fallback = &picked
		}
	}
	if fallback == nil {
		return Resolution{}, false
	}
	return Resolution{ScheduleID: fallback.ID, Name: fallback.Name, Degraded: true}, true
}
