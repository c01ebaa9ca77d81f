package recommend

import (
	"math"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/forkcast/forkcast/internal/model"
)

// Component weights. They sum to 1.0 so the final score stays in [0,100].
const (
	weightDistance = 0.5
	weightRating   = 0.25
	weightMatch    = 0.2
	weightBonus    = 0.05
)

const (
	// blankInputMatch is awarded when the user expressed no preference.
	// Never zero, so empty input does not discourage exploration.
	blankInputMatch = 60.0

	// consolationMatch is awarded when the input matches nothing at all.
	consolationMatch = 20.0

	// neutralRating substitutes for an unknown rating. Missing data is
	// "unknown", not "bad".
	neutralRating = 3.0
)

// Score computes a 0-100 desirability score for one candidate given the
// user's free-text input. Pure function: no I/O, no state, missing optional
// fields default safely.
func Score(c *model.Candidate, userInput string) float64 {
	return weightDistance*scoreDistance(c.DistanceKM) +
		weightRating*scoreRating(c.Rating) +
		weightMatch*scoreMatch(c, userInput) +
		weightBonus*scoreBonus(c)
}

// scoreDistance returns 0-100, strictly decreasing in distance and clamped
// at 0 for far candidates.
func scoreDistance(km float64) float64 {
	return math.Max(0, 100-km*15)
}

// scoreRating returns 0-100 from the 0-5 rating; unknown ratings score as
// a neutral-leaning 60.
func scoreRating(rating *float64) float64 {
	r := neutralRating
	if rating != nil {
		r = *rating
	}
	return r * 20
}

// scoreMatch returns 0-100 based on where the user's input appears in the
// candidate's text. Category bonuses are additive, not mutually exclusive.
func scoreMatch(c *model.Candidate, userInput string) float64 {
	input := strings.TrimSpace(userInput)
	if input == "" {
		return blankInputMatch
	}

	var score float64
	if containsFold(c.Name, input) {
		score += 35
	}
	if containsFold(c.Address, input) {
		score += 25
	}
	if containsFold(c.Cuisine, input) {
		score += 30
	}
	if c.Menu != nil {
		if anyContainsFold(c.Menu.Specialties, input) {
			score += 25
		}
		if anyContainsFold(c.Menu.PopularDishes, input) {
			score += 20
		}
	}
	for _, rv := range c.Reviews {
		if containsFold(rv.Text, input) {
			score += 15
			break
		}
	}

	if score == 0 {
		return consolationMatch
	}
	return math.Min(score, 100)
}

// scoreBonus returns 0-100 for practical signals that make a pick easy to
// act on. The unconditional base keeps sparse candidates above zero.
func scoreBonus(c *model.Candidate) float64 {
	score := 20.0 // base
	if c.OpenNow {
		score += 30
	}
	if c.Website != "" {
		score += 15
	}
	if c.PhotoURL != "" {
		score += 10
	}
	if len(c.Reviews) > 0 {
		score += 15
	}
	if c.Price != model.PriceLuxury {
		score += 10
	}
	return math.Min(score, 100)
}

// containsFold reports whether s contains substr, case-insensitively over
// NFKC-folded text so full-width input matches half-width data.
func containsFold(s, substr string) bool {
	if s == "" || substr == "" {
		return false
	}
	return strings.Contains(foldText(s), foldText(substr))
}

func anyContainsFold(items []string, substr string) bool {
	for _, it := range items {
		if containsFold(it, substr) {
			return true
		}
	}
	return false
}

// foldText lowercases after NFKC normalization.
func foldText(s string) string {
	return strings.ToLower(norm.NFKC.String(s))
}
