package scores

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultMaxEntries is the length cap of every stored list.
	DefaultMaxEntries = 5
	// DefaultMaxNameLength bounds player names, in runes.
	DefaultMaxNameLength = 64
)

// Record is a single named score.
type Record struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// List is a ranked collection of records for one scope.
type List []Record

// Defaults returns the list seeded into a scope the first time it is seen.
func Defaults() List {
	return List{
		{Name: "Emily", Score: 5000},
		{Name: "Callum", Score: 4000},
		{Name: "Debbie", Score: 3000},
		{Name: "Oli", Score: 2000},
		{Name: "PJ", Score: 1000},
	}
}

// Contains reports whether an entry equal to r by name and score is in the list.
func (l List) Contains(r Record) bool {
	for _, rec := range l {
		if rec == r {
			return true
		}
	}

	return false
}

// Clone returns a copy that shares no backing array with l.
func (l List) Clone() List {
	if l == nil {
		return nil
	}

	out := make(List, len(l))
	copy(out, l)
	return out
}

// NewRecord validates a submitted name and raw score and builds a Record.
// The name is stored exactly as sent; a blank name is rejected.
func NewRecord(name, rawScore string, maxNameLen int) (Record, error) {
	if strings.TrimSpace(name) == "" {
		return Record{}, fmt.Errorf("%w: name is required", ErrInvalidArgument)
	}

	if maxNameLen > 0 && utf8.RuneCountInString(name) > maxNameLen {
		return Record{}, fmt.Errorf("%w: name exceeds %d characters", ErrInvalidArgument, maxNameLen)
	}

	score, err := ParseScore(rawScore)
	if err != nil {
		return Record{}, err
	}

	return Record{Name: name, Score: score}, nil
}

// ParseScore parses a finite 64-bit floating point score.
func ParseScore(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: score is required", ErrInvalidArgument)
	}

	score, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: score %q is not a number", ErrInvalidArgument, raw)
	}

	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, fmt.Errorf("%w: score must be finite", ErrInvalidArgument)
	}

	return score, nil
}
