package matching

import (
	"math/rand"
	"testing"

	"marketplace/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prices(bids []models.Bid) []float64 {
	out := make([]float64, len(bids))
	for i, b := range bids {
		out[i] = b.BidPrice
	}
	return out
}

func TestSortBids_LowestPrice_Example(t *testing.T) {
	bids := []models.Bid{{BidPrice: 500}, {BidPrice: 200}, {BidPrice: 800}}

	sorted := SortBids(bids, SortLowestPrice)

	assert.Equal(t, []float64{200, 500, 800}, prices(sorted))
	// input untouched
	assert.Equal(t, []float64{500, 200, 800}, prices(bids))
}

func TestSortBids_LowestPrice_NonDecreasing(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 200; round++ {
		n := rng.Intn(30)
		bids := make([]models.Bid, n)
		for i := range bids {
			bids[i] = models.Bid{BidPrice: float64(rng.Intn(5000))}
		}

		sorted := SortBids(bids, SortLowestPrice)

		require.Len(t, sorted, n)
		for i := 1; i < len(sorted); i++ {
			assert.LessOrEqual(t, sorted[i-1].BidPrice, sorted[i].BidPrice)
		}
		assert.ElementsMatch(t, prices(bids), prices(sorted))
	}
}

func TestSortBids_HighestRating(t *testing.T) {
	bids := []models.Bid{
		{ID: "a", Rating: 4.1},
		{ID: "b", Rating: 4.9},
		{ID: "c", Rating: 3.0},
		{ID: "d", Rating: 4.9},
	}

	sorted := SortBids(bids, SortHighestRating)

	ids := []string{}
	for _, b := range sorted {
		ids = append(ids, b.ID)
	}
	// ties keep input order
	assert.Equal(t, []string{"b", "d", "a", "c"}, ids)
}

func TestSortBids_Nearest(t *testing.T) {
	bids := []models.Bid{
		{ID: "far", Distance: "12 km"},
		{ID: "unknown", Distance: "nearby"},
		{ID: "near", Distance: "0.8 km"},
		{ID: "mid", Distance: "2.5km"},
	}

	sorted := SortBids(bids, SortNearest)

	ids := []string{}
	for _, b := range sorted {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []string{"near", "mid", "far", "unknown"}, ids)
}

func TestSortBids_UnknownKeyKeepsOrder(t *testing.T) {
	bids := []models.Bid{{ID: "x", BidPrice: 9}, {ID: "y", BidPrice: 1}}

	sorted := SortBids(bids, "cheapest")

	assert.Equal(t, bids, sorted)
}

func TestSortBids_Empty(t *testing.T) {
	assert.Empty(t, SortBids(nil, SortLowestPrice))
}

func TestParseDistance(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"2.5 km", 2.5, true},
		{"10km", 10, true},
		{".5 km", 0.5, true},
		{"3. km", 3, true},
		{" 3 km away", 3, true},
		{"km", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDistance(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterBySkills_Example(t *testing.T) {
	tasks := []models.Task{{ID: "1", Category: "Plumber"}, {ID: "2", Category: "Electrician"}}

	got := FilterBySkills(tasks, []string{"Electrician"})

	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)
}

func TestFilterBySkills_EmptySkillsMatchNothing(t *testing.T) {
	tasks := []models.Task{{Category: "Plumber"}}

	got := FilterBySkills(tasks, nil)

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFilterBySkills_OnlyMembers(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 100; round++ {
		tasks := make([]models.Task, rng.Intn(40))
		for i := range tasks {
			tasks[i] = models.Task{Category: models.Categories[rng.Intn(len(models.Categories))]}
		}
		skills := []string{models.Categories[rng.Intn(len(models.Categories))]}
		if rng.Intn(2) == 0 {
			skills = append(skills, models.Categories[rng.Intn(len(models.Categories))])
		}

		got := FilterBySkills(tasks, skills)

		want := 0
		for _, task := range tasks {
			if task.Category == skills[0] || task.Category == skills[len(skills)-1] {
				want++
			}
		}
		assert.Len(t, got, want)
		for _, task := range got {
			assert.Contains(t, skills, task.Category)
		}
	}
}

func TestFilterByCategory(t *testing.T) {
	tasks := []models.Task{{Category: "Plumber"}, {Category: "Painter"}, {Category: "Plumber"}}

	assert.Len(t, FilterByCategory(tasks, "Plumber"), 2)
	assert.Len(t, FilterByCategory(tasks, CategoryAll), 3)
	assert.Len(t, FilterByCategory(tasks, ""), 3)
	assert.Empty(t, FilterByCategory(tasks, "Cleaner"))
}
