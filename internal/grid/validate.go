package grid

import (
	"fmt"
	"sort"
	"time"
)

// Issue describes a well-formedness problem in grid data.
type Issue struct {
	ScheduleID int64
	Day        time.Weekday
	BlockIDs   []int64
	Message    string
}

func (i Issue) String() string {
	return fmt.Sprintf("schedule %d %s: %s (blocks %v)", i.ScheduleID, i.Day, i.Message, i.BlockIDs)
}

// Validate reports blocks that overlap another block on the same schedule and
// day, blocks whose window is empty or inverted, and blocks that reference an
// unknown schedule. Matching still works on such data; the issues exist so
// operators can fix the grid.
func (s *Snapshot) Validate() []Issue {
	var issues []Issue
	keys := make([]dayKey, 0, len(s.blocks))
	for key := range s.blocks {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].scheduleID != keys[j].scheduleID {
			return keys[i].scheduleID < keys[j].scheduleID
		}
		return keys[i].day < keys[j].day
	})

	for _, key := range keys {
		blocks := s.blocks[key]
		if _, ok := s.schedules[key.scheduleID]; !ok {
			ids := make([]int64, 0, len(blocks))
			for _, b := range blocks {
				ids = append(ids, b.ID)
			}
			issues = append(issues, Issue{ScheduleID: key.scheduleID, Day: key.day, BlockIDs: ids, Message: "blocks reference unknown schedule"})
		}
		for i, b := range blocks {
			if b.EndMinute() <= b.StartMinute() {
				issues = append(issues, Issue{
					ScheduleID: key.scheduleID,
					Day:        key.day,
					BlockIDs:   []int64{b.ID},
					Message:    fmt.Sprintf("block window %s-%s is empty or inverted", b.Start, b.End),
				})
				continue
			}
			for _, other := range blocks[i+1:] {
				if other.EndMinute() <= other.StartMinute() {
					continue
				}
				if Overlaps(b.StartMinute(), b.EndMinute(), other.StartMinute(), other.EndMinute()) {
					issues = append(issues, Issue{
						ScheduleID: key.scheduleID,
						Day:        key.day,
						BlockIDs:   []int64{b.ID, other.ID},
						Message:    "blocks overlap",
					})
				}
			}
		}
	}
	return issues
}
