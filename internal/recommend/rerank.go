package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/forkcast/forkcast/internal/model"
	"github.com/forkcast/forkcast/internal/resilience"
	"github.com/forkcast/forkcast/pkg/anthropic"
)

// Reranker asks a text-generation model to choose and justify a subset of
// the enriched candidates. Its output is untrusted free text: everything
// returned from Rerank has been validated against the candidate set, and
// any transport or parse failure degrades to nil, signaling the caller to
// fall back to the heuristic order.
type Reranker struct {
	llm         anthropic.Client
	model       string
	maxTokens   int64
	callTimeout time.Duration
	breaker     *resilience.CircuitBreaker
}

// NewReranker creates a Reranker using the given model. A circuit breaker
// stops calling the model for a cooldown after repeated failures; while it
// is open every request takes the heuristic path.
func NewReranker(llm anthropic.Client, modelID string, maxTokens int64, callTimeout time.Duration) *Reranker {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	if callTimeout <= 0 {
		callTimeout = 30 * time.Second
	}
	return &Reranker{
		llm:         llm,
		model:       modelID,
		maxTokens:   maxTokens,
		callTimeout: callTimeout,
		breaker:     resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig()),
	}
}

const rerankSystemPrompt = `You are a restaurant recommendation assistant.
You always return exactly the requested number of recommendations and never
refuse. Respond with a single JSON object shaped as
{"ids": ["..."], "userMessage": "..."} and nothing else. The ids array must
contain ids taken from the provided candidate list, best first. The
userMessage is a short, friendly explanation for the user.`

// promptCandidate restricts the serialized candidate to the fields relevant
// to judgment.
type promptCandidate struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Address     string         `json:"address,omitempty"`
	Rating      *float64       `json:"rating,omitempty"`
	DistanceKM  float64        `json:"distance_km"`
	Cuisine     string         `json:"cuisine,omitempty"`
	Price       string         `json:"price,omitempty"`
	RatingCount *int           `json:"rating_count,omitempty"`
	Website     string         `json:"website,omitempty"`
	Reviews     []model.Review `json:"reviews,omitempty"`
	OpenNow     bool           `json:"open_now"`
}

// rerankPayload is the response contract demanded from the model.
type rerankPayload struct {
	IDs         []string `json:"ids"`
	UserMessage string   `json:"userMessage"`
}

// Rerank sends the enriched candidates to the model and returns a validated
// result, or nil when the AI path is unavailable for any reason. It never
// returns an error past this boundary.
func (r *Reranker) Rerank(ctx context.Context, cands []model.Candidate, userInput string, lat, lng float64, radiusMeters, maxCount int) *model.RerankResult {
	if r.llm == nil || len(cands) == 0 || maxCount <= 0 {
		return nil
	}

	prompt, err := r.buildPrompt(cands, userInput, lat, lng, radiusMeters, maxCount)
	if err != nil {
		zap.L().Warn("rerank prompt build failed", zap.Error(err))
		return nil
	}

	callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()

	resp, err := resilience.ExecuteVal(callCtx, r.breaker, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return r.llm.CreateMessage(ctx, anthropic.MessageRequest{
			Model:     r.model,
			MaxTokens: r.maxTokens,
			System:    rerankSystemPrompt,
			Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
		})
	})
	if err != nil {
		zap.L().Warn("rerank call failed", zap.Error(err))
		return nil
	}
	resp.Usage.LogUsage(r.model, "rerank")

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return nil
	}

	return parseRerankResponse(text, cands, radiusMeters, maxCount)
}

func (r *Reranker) buildPrompt(cands []model.Candidate, userInput string, lat, lng float64, radiusMeters, maxCount int) (string, error) {
	list := make([]promptCandidate, len(cands))
	for i, c := range cands {
		list[i] = promptCandidate{
			ID:          c.ID,
			Name:        c.Name,
			Address:     c.Address,
			Rating:      c.Rating,
			DistanceKM:  c.DistanceKM,
			Cuisine:     c.Cuisine,
			Price:       string(c.Price),
			RatingCount: c.RatingCount,
			Website:     c.Website,
			Reviews:     c.Reviews,
			OpenNow:     c.OpenNow,
		}
		if len(list[i].Reviews) > maxReviewSnippets {
			list[i].Reviews = list[i].Reviews[:maxReviewSnippets]
		}
	}

	serialized, err := json.Marshal(list)
	if err != nil {
		return "", err
	}

	preference := userInput
	if strings.TrimSpace(preference) == "" {
		preference = "(no preference stated — pick an encouraging variety)"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "The user is at latitude %.5f, longitude %.5f and searched within %d meters.\n", lat, lng, radiusMeters)
	fmt.Fprintf(&b, "Recommend exactly %d restaurants from the candidates below.\n", maxCount)
	fmt.Fprintf(&b, "User preference: %s\n\n", preference)
	fmt.Fprintf(&b, "Candidates:\n%s\n", serialized)
	return b.String(), nil
}

// parseRerankResponse scans untrusted model output for the JSON contract
// and validates it against the candidate set. Returns nil on any defect.
func parseRerankResponse(text string, cands []model.Candidate, radiusMeters, maxCount int) *model.RerankResult {
	raw, ok := extractJSONObject(text)
	if !ok {
		return nil
	}

	var payload rerankPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil
	}
	if payload.IDs == nil {
		return nil
	}

	known := make(map[string]bool, len(cands))
	for _, c := range cands {
		known[c.ID] = true
	}

	ids := make([]string, 0, len(payload.IDs))
	for _, id := range payload.IDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		// Invented ids are dropped, never surfaced.
		if !known[id] {
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil
	}
	if len(ids) > maxCount {
		ids = ids[:maxCount]
	}

	reason := strings.TrimSpace(payload.UserMessage)
	if reason == "" {
		reason = fmt.Sprintf("Here are %d great spots within %d meters of you.", len(ids), radiusMeters)
	} else {
		reason = StripMarkdown(reason)
	}

	return &model.RerankResult{IDs: ids, Reason: reason}
}

var fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// extractJSONObject strips optional fenced-code-block wrapping and returns
// the outermost {...} span of the text, if any.
func extractJSONObject(text string) (string, bool) {
	if m := fencedBlockRe.FindStringSubmatch(text); m != nil {
		text = m[1]
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// markdownPasses are applied in order; the result is best-effort plain text,
// good enough for display. Nested or malformed markdown is not handled.
var markdownPasses = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`(?m)^#{1,6}\s+`), ""},                   // heading prefixes
	{regexp.MustCompile(`\*\*([^*]+)\*\*`), "$1"},                // bold
	{regexp.MustCompile(`__([^_]+)__`), "$1"},                    // bold (underscore)
	{regexp.MustCompile(`\*([^*]+)\*`), "$1"},                    // italic
	{regexp.MustCompile("`([^`]+)`"), "$1"},                      // inline code
	{regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`), "$1"},          // links reduced to text
	{regexp.MustCompile(`(?m)^\s*[-*+]\s+`), ""},                 // bullet markers
	{regexp.MustCompile(`(?m)^\s*\d+[.)]\s+`), ""},               // numbered list markers
	{regexp.MustCompile(`(?m)^\s*(?:-{3,}|\*{3,}|_{3,})\s*$`), ""}, // horizontal rules
	{regexp.MustCompile(`(?m)^>\s?`), ""},                        // blockquote markers
	{regexp.MustCompile(`\n{3,}`), "\n\n"},                       // 3+ blank lines -> one
}

// StripMarkdown normalizes lightweight generator markup to plain text.
func StripMarkdown(s string) string {
	for _, p := range markdownPasses {
		s = p.re.ReplaceAllString(s, p.repl)
	}
	return strings.TrimSpace(s)
}
