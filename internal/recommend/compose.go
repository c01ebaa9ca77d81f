package recommend

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/forkcast/forkcast/internal/model"
)

// Compose merges the AI ordering (when available) with the deterministic
// fallback order, truncates to n, and produces an explanation that only
// ever mentions restaurants actually present in the returned set.
func Compose(enriched []model.Candidate, ai *model.RerankResult, userInput string, radiusMeters, totalFound, n int) ([]model.Candidate, string) {
	if len(enriched) == 0 {
		return nil, ""
	}

	var selected []model.Candidate
	if ai != nil && len(ai.IDs) > 0 {
		selected = mergeAIOrder(enriched, ai.IDs)
	} else {
		selected = heuristicOrder(enriched, userInput)
	}
	if n > 0 && len(selected) > n {
		selected = selected[:n]
	}

	var explanation string
	switch {
	case ai != nil && ai.Reason != "" && reasonConsistent(ai.Reason, selected):
		explanation = ai.Reason
	case ai != nil && ai.Reason != "":
		// The AI mentioned a restaurant that is not in the final set;
		// its reason cannot be trusted for display.
		explanation = fallbackExplanation(selected, "", 0)
	default:
		explanation = fallbackExplanation(selected, userInput, totalFound)
	}

	return selected, explanation
}

// mergeAIOrder emits candidates in the AI's id order, dropping ids that do
// not resolve, then appends the remaining candidates in their original
// relative order so the list is complete even when the AI returned few ids.
func mergeAIOrder(enriched []model.Candidate, ids []string) []model.Candidate {
	byID := make(map[string]*model.Candidate, len(enriched))
	for i := range enriched {
		byID[enriched[i].ID] = &enriched[i]
	}

	emitted := make(map[string]bool, len(ids))
	out := make([]model.Candidate, 0, len(enriched))
	for _, id := range ids {
		c, ok := byID[id]
		if !ok || emitted[id] {
			continue
		}
		out = append(out, *c)
		emitted[id] = true
	}
	for _, c := range enriched {
		if !emitted[c.ID] {
			out = append(out, c)
			emitted[c.ID] = true
		}
	}
	return out
}

// heuristicOrder sorts descending by heuristic score; the stable sort keeps
// the original (distance-sorted) order for ties.
func heuristicOrder(enriched []model.Candidate, userInput string) []model.Candidate {
	out := make([]model.Candidate, len(enriched))
	copy(out, enriched)
	sort.SliceStable(out, func(i, j int) bool {
		return Score(&out[i], userInput) > Score(&out[j], userInput)
	})
	return out
}

// quotedNameRes holds the quoting conventions scanned for restaurant-name
// tokens, covering ASCII quotes and the CJK bracket styles the model
// produces for Japanese and Chinese names.
var quotedNameRes = []*regexp.Regexp{
	regexp.MustCompile(`"([^"]+)"`),
	regexp.MustCompile(`'([^']+)'`),
	regexp.MustCompile(`『([^』]+)』`),
	regexp.MustCompile(`（([^）]+)）`),
	regexp.MustCompile(`\(([^)]+)\)`),
}

// extractQuotedNames returns the trimmed quoted tokens of length > 1.
func extractQuotedNames(text string) []string {
	var names []string
	for _, re := range quotedNameRes {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			token := strings.TrimSpace(m[1])
			if len([]rune(token)) > 1 {
				names = append(names, token)
			}
		}
	}
	return names
}

// reasonConsistent reports whether every quoted token in the AI reason
// matches at least one selected restaurant name. A single unmatched token
// means the reason may mention a restaurant we are not returning, so the
// whole reason is discarded.
func reasonConsistent(reason string, selected []model.Candidate) bool {
	for _, token := range extractQuotedNames(reason) {
		if !matchesAnyName(token, selected) {
			return false
		}
	}
	return true
}

func matchesAnyName(token string, selected []model.Candidate) bool {
	for _, c := range selected {
		if containsFold(c.Name, token) || containsFold(token, c.Name) {
			return true
		}
	}
	return false
}

// fallbackExplanation synthesizes the deterministic explanation template.
// userInput and totalFound are only cited when no AI reason existed at all.
func fallbackExplanation(selected []model.Candidate, userInput string, totalFound int) string {
	if len(selected) == 0 {
		return ""
	}

	var b strings.Builder
	if input := strings.TrimSpace(userInput); input != "" && totalFound > 0 {
		fmt.Fprintf(&b, "Based on your search for %q, here are %d picks from %d nearby restaurants:\n\n", input, len(selected), totalFound)
	} else if totalFound > 0 {
		fmt.Fprintf(&b, "Here are %d picks from %d nearby restaurants:\n\n", len(selected), totalFound)
	} else {
		fmt.Fprintf(&b, "Here are %d picks near you:\n\n", len(selected))
	}

	for i, c := range selected {
		fmt.Fprintf(&b, "%d. %s — %.1f km away", i+1, c.Name, c.DistanceKM)
		if c.Rating != nil {
			fmt.Fprintf(&b, ", rated %.1f", *c.Rating)
			if c.RatingCount != nil {
				fmt.Fprintf(&b, " (%d reviews)", *c.RatingCount)
			}
		}
		if c.Price != "" {
			fmt.Fprintf(&b, ", %s", c.Price)
		}
		if c.Cuisine != "" {
			fmt.Fprintf(&b, ", %s", c.Cuisine)
		}
		b.WriteString("\n")
	}

	b.WriteString("\nAll of these are close by and worth a try — enjoy your meal!")
	return b.String()
}
