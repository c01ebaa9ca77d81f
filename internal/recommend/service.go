package recommend

import (
	"context"
	"errors"
	"math/rand/v2"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/forkcast/forkcast/internal/model"
	"github.com/forkcast/forkcast/internal/resilience"
	"github.com/forkcast/forkcast/pkg/places"
)

// Options bounds the work a single recommendation request may do.
type Options struct {
	// TopK is the size of the working set passed to enrichment and the AI.
	TopK int
	// FinalCount is the number of recommendations returned.
	FinalCount int
	// RerankMax is the maximum number of ids requested from the AI.
	RerankMax int
	// MaxSearchResults caps the nearby search itself.
	MaxSearchResults int
}

func (o Options) withDefaults() Options {
	if o.TopK <= 0 {
		o.TopK = 8
	}
	if o.FinalCount <= 0 {
		o.FinalCount = 3
	}
	if o.RerankMax <= 0 {
		o.RerankMax = 4
	}
	if o.MaxSearchResults <= 0 {
		o.MaxSearchResults = 20
	}
	return o
}

// Service runs the recommendation pipeline: nearby search, filter to top-K,
// detail enrichment, optional AI rerank, final selection and explanation.
// All state is local to one request; a Service is safe for concurrent use.
type Service struct {
	places   places.Client
	enricher *Enricher
	reranker *Reranker // nil disables the AI path
	opts     Options
	retry    resilience.RetryConfig
}

// NewService wires the pipeline. reranker may be nil, in which case every
// request takes the deterministic fallback path.
func NewService(placesClient places.Client, enricher *Enricher, reranker *Reranker, opts Options) *Service {
	retry := resilience.DefaultRetryConfig()
	retry.ShouldRetry = placesShouldRetry
	retry.OnRetry = resilience.RetryLogger("places", "search_nearby")
	return &Service{
		places:   placesClient,
		enricher: enricher,
		reranker: reranker,
		opts:     opts.withDefaults(),
		retry:    retry,
	}
}

// Recommend turns a validated request into a ranked, bounded, explained
// recommendation set. Zero search results yield an empty list with
// TotalFound 0, not an error.
func (s *Service) Recommend(ctx context.Context, req model.RecommendRequest) (*model.RecommendResponse, error) {
	cands, err := s.searchNearby(ctx, req)
	if err != nil {
		return nil, err
	}

	resp := &model.RecommendResponse{
		Recommendations: []model.Candidate{},
		TotalFound:      len(cands),
		UserInput:       req.UserInput,
		SearchRadius:    req.RadiusMeters,
	}
	if len(cands) == 0 {
		return resp, nil
	}

	top := TopCandidates(cands, req.UserInput, s.opts.TopK)
	enriched := s.enricher.Enrich(ctx, top)

	var ai *model.RerankResult
	if s.reranker != nil {
		ai = s.reranker.Rerank(ctx, enriched, req.UserInput, req.Latitude, req.Longitude, req.RadiusMeters, s.opts.RerankMax)
	}

	selected, explanation := Compose(enriched, ai, req.UserInput, req.RadiusMeters, len(cands), s.opts.FinalCount)
	resp.Recommendations = selected
	resp.AIReason = explanation

	zap.L().Info("recommendation complete",
		zap.Int("total_found", len(cands)),
		zap.Int("selected", len(selected)),
		zap.Bool("ai_ranked", ai != nil),
	)
	return resp, nil
}

// Random returns count unranked restaurants drawn at random from the
// nearby results. The lighter-weight alternative to Recommend: no
// enrichment, no AI call, no explanation.
func (s *Service) Random(ctx context.Context, req model.RecommendRequest, count int) (*model.RecommendResponse, error) {
	cands, err := s.searchNearby(ctx, req)
	if err != nil {
		return nil, err
	}

	resp := &model.RecommendResponse{
		Recommendations: []model.Candidate{},
		TotalFound:      len(cands),
		UserInput:       req.UserInput,
		SearchRadius:    req.RadiusMeters,
	}
	if len(cands) == 0 {
		return resp, nil
	}

	picks := make([]model.Candidate, len(cands))
	copy(picks, cands)
	rand.Shuffle(len(picks), func(i, j int) {
		picks[i], picks[j] = picks[j], picks[i]
	})
	if count > 0 && len(picks) > count {
		picks = picks[:count]
	}
	resp.Recommendations = picks
	return resp, nil
}

// placesShouldRetry treats rate limits and server-side Places API failures
// as transient, alongside the usual network-level checks.
func placesShouldRetry(err error) bool {
	var apiErr *places.APIError
	if errors.As(err, &apiErr) {
		return resilience.IsTransientHTTPStatus(apiErr.StatusCode)
	}
	return resilience.IsTransient(err)
}

func (s *Service) searchNearby(ctx context.Context, req model.RecommendRequest) ([]model.Candidate, error) {
	searchReq := places.NearbySearchRequest{
		IncludedTypes:  []string{"restaurant"},
		MaxResultCount: s.opts.MaxSearchResults,
		LocationRestriction: places.LocationRestriction{
			Circle: places.Circle{
				Center: places.LatLng{Latitude: req.Latitude, Longitude: req.Longitude},
				Radius: float64(req.RadiusMeters),
			},
		},
	}

	result, err := resilience.DoVal(ctx, s.retry, func(ctx context.Context) (*places.NearbySearchResponse, error) {
		return s.places.SearchNearby(ctx, searchReq)
	})
	if err != nil {
		return nil, eris.Wrap(err, "recommend: nearby search")
	}

	cands := make([]model.Candidate, 0, len(result.Places))
	for _, p := range result.Places {
		if p.ID == "" || p.DisplayName.Text == "" {
			continue
		}
		cands = append(cands, CandidateFromPlace(p, req.Latitude, req.Longitude))
	}
	return cands, nil
}
