package scores

import (
	"fmt"
	"slices"
)

// TopN returns the n highest-scoring records ordered by score descending.
// Equal scores keep their input order. The input is not modified.
func TopN(list []Record, n int) (List, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: n must be positive, got %d", ErrInvalidArgument, n)
	}

	sorted := slices.Clone(list)
	slices.SortStableFunc(sorted, func(a, b Record) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}

	return List(sorted), nil
}

// Merge appends candidate to existing and keeps the top n. kept is true when a
// record equal to candidate survives, whichever physical entry that is.
func Merge(existing List, candidate Record, n int) (updated List, kept bool, err error) {
	appended := make([]Record, 0, len(existing)+1)
	appended = append(appended, existing...)
	appended = append(appended, candidate)

	updated, err = TopN(appended, n)
	if err != nil {
		return nil, false, err
	}

	return updated, updated.Contains(candidate), nil
}
