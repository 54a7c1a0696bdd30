package categories

import (
	"sort"

	"spotgrid/internal/spots"
)

// Bucket is the set of candidates a rule claimed.
type Bucket struct {
	Name    string
	Members []Candidate
}

// Partition applies rules in order. Each rule only sees candidates not
// claimed by an earlier rule. Candidates no rule claims are returned as the
// remainder, which is empty whenever the last rule matches everything.
func Partition(candidates []Candidate, rules []Rule) ([]Bucket, []Candidate) {
	remaining := candidates
	buckets := make([]Bucket, 0, len(rules))
	for _, rule := range rules {
		bucket := Bucket{Name: rule.Name}
		var rest []Candidate
		for _, c := range remaining {
			if rule.Matches(c) {
				bucket.Members = append(bucket.Members, c)
				continue
			}
			rest = append(rest, c)
		}
		buckets = append(buckets, bucket)
		remaining = rest
	}
	return buckets, remaining
}

// Candidates builds the base population for year (zero for all years) from
// population and the assignment map. Candidates are ordered by spot id.
func Candidates(settings Settings, year int, population []spots.Spot, assignments map[int64]spots.Assignment) ([]Candidate, Totals) {
	var (
		out  []Candidate
		base Totals
	)
	for _, spot := range population {
		// A spot whose air date did not parse was selected by the store's
		// date range and stays in the base.
		if year != 0 && !spot.AirDate.IsZero() && spot.Year() != year {
			continue
		}
		if !InBase(settings, spot) {
			continue
		}
		c := Candidate{Spot: spot}
		if a, ok := assignments[spot.ID]; ok {
			c.Assignment = &a
		}
		out = append(out, c)
		base.add(spot)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Spot.ID < out[j].Spot.ID })
	return out, base
}

// Build partitions the population and reconciles the result. A failed
// reconciliation returns the error and no report.
func Build(settings Settings, year int, population []spots.Spot, assignments map[int64]spots.Assignment, roadblockIDs map[int64]struct{}) (*Report, error) {
	candidates, base := Candidates(settings, year, population, assignments)
	// Unclaimed candidates stay out of every row so reconciliation reports them.
	buckets, _ := Partition(candidates, Rules(settings, roadblockIDs))

	cats := make([]CategoryTotal, 0, len(buckets))
	for _, b := range buckets {
		row := CategoryTotal{Name: b.Name}
		for _, c := range b.Members {
			row.add(c.Spot)
		}
		row.Percent = percentOf(row.Revenue, base.Revenue)
		cats = append(cats, row)
	}
	rec, err := Reconcile(year, base, cats)
	if err != nil {
		return nil, err
	}
	return &Report{
		Year:           year,
		Base:           base,
		Categories:     cats,
		Reconciliation: rec,
	}, nil
}
