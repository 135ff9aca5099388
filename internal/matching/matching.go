// Package matching sorts a task's bids and narrows the open-task list to a
// worker's skills. Everything works on in-memory slices and never mutates
// its input.
package matching

import (
	"math"
	"regexp"
	"sort"
	"strconv"

	"marketplace/internal/models"
)

type SortKey string

const (
	SortLowestPrice   SortKey = "lowest-price"
	SortHighestRating SortKey = "highest-rating"
	SortNearest       SortKey = "nearest"
)

// CategoryAll disables the category filter.
const CategoryAll = "all"

func (k SortKey) Valid() bool {
	switch k {
	case SortLowestPrice, SortHighestRating, SortNearest:
		return true
	}
	return false
}

var leadingNumber = regexp.MustCompile(`^\s*([0-9]*\.?[0-9]+)`)

// ParseDistance reads the leading number of a free-text distance such as
// "2.5 km".
func ParseDistance(s string) (float64, bool) {
	m := leadingNumber.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func distanceOrInf(s string) float64 {
	if v, ok := ParseDistance(s); ok {
		return v
	}
	return math.Inf(1)
}

// SortBids returns a sorted copy of bids. Ties keep their input order and
// an unknown key returns an unsorted copy.
func SortBids(bids []models.Bid, key SortKey) []models.Bid {
	out := make([]models.Bid, len(bids))
	copy(out, bids)

	var less func(i, j int) bool
	switch key {
	case SortLowestPrice:
		less = func(i, j int) bool { return out[i].BidPrice < out[j].BidPrice }
	case SortHighestRating:
		less = func(i, j int) bool { return out[i].Rating > out[j].Rating }
	case SortNearest:
		less = func(i, j int) bool { return distanceOrInf(out[i].Distance) < distanceOrInf(out[j].Distance) }
	default:
		return out
	}

	sort.SliceStable(out, less)
	return out
}

// FilterBySkills keeps the tasks whose category is one of skills. An empty
// skill set matches nothing.
func FilterBySkills(tasks []models.Task, skills []string) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	if len(skills) == 0 {
		return out
	}

	set := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		set[s] = struct{}{}
	}

	for _, t := range tasks {
		if _, ok := set[t.Category]; ok {
			out = append(out, t)
		}
	}
	return out
}

// FilterByCategory narrows tasks to a single category. "" and "all" keep
// everything.
func FilterByCategory(tasks []models.Task, category string) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if category == "" || category == CategoryAll || t.Category == category {
			out = append(out, t)
		}
	}
	return out
}
