package timeofday

import (
	"sort"
	"time"
)

// Range is a half-open interval [Start, End) within one day.
type Range struct {
	Start TimeOfDay
	End   TimeOfDay
}

func NewRange(start, end TimeOfDay) Range {
	return Range{Start: start, End: end}
}

// Valid reports whether the range is non-empty and inside one day.
func (r Range) Valid() bool {
	return r.Start.Valid() && r.End.Valid() && r.Start < r.End
}

func (r Range) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Overlaps uses the half-open test: touching endpoints do not overlap.
func (r Range) Overlaps(o Range) bool {
	return r.Start < o.End && o.Start < r.End
}

// Contains reports whether o lies entirely inside r.
func (r Range) Contains(o Range) bool {
	return r.Start <= o.Start && o.End <= r.End
}

func (r Range) String() string {
	return r.Start.String() + "-" + r.End.String()
}

// Split slices r into consecutive ranges of length step starting at r.Start.
// A trailing remainder shorter than step is discarded.
func (r Range) Split(step time.Duration) []Range {
	if step < time.Minute || !r.Valid() {
		return nil
	}
	var out []Range
	for cur := r.Start; cur.Add(step) <= r.End; cur = cur.Add(step) {
		out = append(out, Range{Start: cur, End: cur.Add(step)})
	}
	return out
}

// Merge returns the union of ranges as a sorted list of disjoint ranges.
// Adjacent ranges are joined.
func Merge(ranges []Range) []Range {
	if len(ranges) == 0 {
		return nil
	}
	sorted := make([]Range, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	out := []Range{sorted[0]}
	for _, r := range sorted[1:] {
		last := &out[len(out)-1]
		if r.Start <= last.End {
			if r.End > last.End {
				last.End = r.End
			}
			continue
		}
		out = append(out, r)
	}
	return out
}
