package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forkcast/forkcast/internal/model"
)

func enrichedSet() []model.Candidate {
	return []model.Candidate{
		{ID: "x", Name: "X Diner", DistanceKM: 0.5, Rating: ptrFloat64(4.2), RatingCount: ptrInt(80), Price: model.PriceCheap, Cuisine: "Diner"},
		{ID: "y", Name: "Y Bistro", DistanceKM: 1.1, Rating: ptrFloat64(4.7), Price: model.PriceUpscale},
		{ID: "z", Name: "Z Cafe", DistanceKM: 2.0},
	}
}

func TestMergeAIOrderCompleteness(t *testing.T) {
	// Scenario B: AI returns ["x","y"] over {x,y,z} — merge is [x,y,z].
	got := mergeAIOrder(enrichedSet(), []string{"x", "y"})
	require.Len(t, got, 3)
	assert.Equal(t, "x", got[0].ID)
	assert.Equal(t, "y", got[1].ID)
	assert.Equal(t, "z", got[2].ID)
}

func TestMergeAIOrderDropsUnresolvable(t *testing.T) {
	got := mergeAIOrder(enrichedSet(), []string{"ghost", "z", "x"})
	require.Len(t, got, 3)
	assert.Equal(t, "z", got[0].ID)
	assert.Equal(t, "x", got[1].ID)
	assert.Equal(t, "y", got[2].ID) // appended in original order
}

func TestMergeAIOrderNoDuplicates(t *testing.T) {
	got := mergeAIOrder(enrichedSet(), []string{"y", "y", "x"})
	require.Len(t, got, 3)
	seen := map[string]int{}
	for _, c := range got {
		seen[c.ID]++
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "id %s emitted %d times", id, n)
	}
}

func TestComposeAIOrderTruncates(t *testing.T) {
	ai := &model.RerankResult{IDs: []string{"z", "y"}, Reason: "Try 'Z Cafe' and 'Y Bistro'."}
	selected, explanation := Compose(enrichedSet(), ai, "", 1000, 3, 2)

	require.Len(t, selected, 2)
	assert.Equal(t, "z", selected[0].ID)
	assert.Equal(t, "y", selected[1].ID)
	assert.Equal(t, "Try 'Z Cafe' and 'Y Bistro'.", explanation)
}

func TestComposeFallbackUsesHeuristic(t *testing.T) {
	// Scenario C tail: no AI result at all.
	selected, explanation := Compose(enrichedSet(), nil, "", 1000, 3, 3)

	require.Len(t, selected, 3)
	// Nearest, solidly rated candidate wins under blank input.
	assert.Equal(t, "x", selected[0].ID)
	assert.Contains(t, explanation, "X Diner")
	assert.Contains(t, explanation, "0.5 km")
	assert.Contains(t, explanation, "3 nearby restaurants")
}

func TestComposeFallbackCitesSearchText(t *testing.T) {
	_, explanation := Compose(enrichedSet(), nil, "bistro", 1000, 7, 2)
	assert.Contains(t, explanation, `"bistro"`)
	assert.Contains(t, explanation, "7 nearby restaurants")
}

func TestComposeConsistencyRepair(t *testing.T) {
	// Round trip: the AI praises a restaurant that is not in the final
	// selection, so its reason must be replaced by the template.
	ai := &model.RerankResult{
		IDs:    []string{"x", "y"},
		Reason: `You should try "Phantom Palace" for the best noodles.`,
	}
	selected, explanation := Compose(enrichedSet(), ai, "", 1000, 3, 2)

	require.Len(t, selected, 2)
	assert.NotContains(t, explanation, "Phantom Palace")
	assert.Contains(t, explanation, "X Diner")
	assert.Contains(t, explanation, "Y Bistro")
}

func TestComposeKeepsConsistentReason(t *testing.T) {
	ai := &model.RerankResult{
		IDs:    []string{"x"},
		Reason: `"X Diner" is a neighborhood classic.`,
	}
	_, explanation := Compose(enrichedSet(), ai, "", 1000, 3, 3)
	assert.Equal(t, `"X Diner" is a neighborhood classic.`, explanation)
}

func TestComposeCJKQuoting(t *testing.T) {
	cands := []model.Candidate{
		{ID: "a", Name: "муии Sakura 寿司", DistanceKM: 0.3},
	}
	// Corner brackets around a name that does appear in the selection.
	ai := &model.RerankResult{IDs: []string{"a"}, Reason: "『Sakura 寿司』は近くて人気です。"}
	_, explanation := Compose(cands, ai, "", 1000, 1, 1)
	assert.Equal(t, "『Sakura 寿司』は近くて人気です。", explanation)

	// And a fabricated CJK-bracketed name triggers the repair.
	ai = &model.RerankResult{IDs: []string{"a"}, Reason: "『幻のラーメン』をどうぞ。"}
	_, explanation = Compose(cands, ai, "", 1000, 1, 1)
	assert.NotContains(t, explanation, "幻のラーメン")
}

func TestComposeEmptyEnriched(t *testing.T) {
	selected, explanation := Compose(nil, nil, "anything", 1000, 0, 3)
	assert.Empty(t, selected)
	assert.Empty(t, explanation)
}

func TestExtractQuotedNames(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"double quotes", `go to "Alpha" now`, []string{"Alpha"}},
		{"single quotes", `try 'Beta Cafe'`, []string{"Beta Cafe"}},
		{"corner brackets", "『ガンマ』が好き", []string{"ガンマ"}},
		{"fullwidth parens", "（デルタ）も良い", []string{"デルタ"}},
		{"halfwidth parens", "also (Epsilon) works", []string{"Epsilon"}},
		{"single rune dropped", `"A" is too short`, nil},
		{"nothing quoted", "no names here", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractQuotedNames(tt.in))
		})
	}
}

func TestHeuristicOrderStableTies(t *testing.T) {
	// Identical candidates keep their original relative order.
	cands := []model.Candidate{
		{ID: "first", Name: "Same", DistanceKM: 1},
		{ID: "second", Name: "Same", DistanceKM: 1},
	}
	got := heuristicOrder(cands, "")
	assert.Equal(t, "first", got[0].ID)
	assert.Equal(t, "second", got[1].ID)
}
