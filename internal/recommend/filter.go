package recommend

import (
	"sort"
	"strings"

	"github.com/forkcast/forkcast/internal/model"
)

// TopCandidates reduces an unbounded search result set to an ordered
// working set of at most k candidates before any enrichment calls run.
// Each narrowing step falls back to the prior set rather than emptying the
// list, so the output is non-empty whenever the input is.
func TopCandidates(cands []model.Candidate, userInput string, k int) []model.Candidate {
	working := cands

	// Photo presence correlates with data completeness.
	withPhoto := make([]model.Candidate, 0, len(working))
	for _, c := range working {
		if c.PhotoURL != "" {
			withPhoto = append(withPhoto, c)
		}
	}
	if len(withPhoto) > 0 {
		working = withPhoto
	}

	// Narrow by name/address when the user typed something, but never to
	// zero: an over-specific filter is discarded, not honored.
	if input := strings.TrimSpace(userInput); input != "" {
		matched := make([]model.Candidate, 0, len(working))
		for _, c := range working {
			if containsFold(c.Name, input) || containsFold(c.Address, input) {
				matched = append(matched, c)
			}
		}
		if len(matched) > 0 {
			working = matched
		}
	}

	out := make([]model.Candidate, len(working))
	copy(out, working)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DistanceKM < out[j].DistanceKM
	})

	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out
}
