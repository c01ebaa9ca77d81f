package recommend

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/forkcast/forkcast/internal/model"
	"github.com/forkcast/forkcast/internal/resilience"
	"github.com/forkcast/forkcast/pkg/places"
)

// Enricher fetches richer per-place data for the top-K working set.
// A failed fetch keeps the original candidate; enrichment is never fatal
// to the request.
type Enricher struct {
	client      places.Client
	limiter     *rate.Limiter
	concurrency int
	callTimeout time.Duration
	retry       resilience.RetryConfig
}

// NewEnricher creates an Enricher. ratePerSec gates the upstream details
// calls; concurrency bounds the fan-out.
func NewEnricher(client places.Client, concurrency int, ratePerSec float64, callTimeout time.Duration) *Enricher {
	if concurrency <= 0 {
		concurrency = 4
	}
	if ratePerSec <= 0 {
		ratePerSec = 5
	}
	if callTimeout <= 0 {
		callTimeout = 10 * time.Second
	}
	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = 2
	retry.ShouldRetry = placesShouldRetry
	retry.OnRetry = resilience.RetryLogger("places", "get_place")
	return &Enricher{
		client:      client,
		limiter:     rate.NewLimiter(rate.Limit(ratePerSec), 1),
		concurrency: concurrency,
		callTimeout: callTimeout,
		retry:       retry,
	}
}

// Enrich fetches details for each candidate that carries a place reference.
// Output has the same length and order as the input; candidates without a
// reference, and candidates whose fetch fails, pass through unchanged.
func (e *Enricher) Enrich(ctx context.Context, cands []model.Candidate) []model.Candidate {
	out := make([]model.Candidate, len(cands))
	copy(out, cands)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i := range out {
		if out[i].PlaceRef == "" {
			continue
		}
		g.Go(func() error {
			if err := e.limiter.Wait(gctx); err != nil {
				return nil //nolint:nilerr // request canceled; keep un-enriched candidate
			}

			detail, err := e.fetchOne(gctx, out[i].PlaceRef)
			if err != nil {
				zap.L().Warn("place details fetch failed",
					zap.String("place", out[i].PlaceRef),
					zap.Error(err),
				)
				return nil // failure is absorbed per item
			}

			// Index-based write keeps output order independent of
			// completion order.
			MergeDetails(&out[i], detail)
			return nil
		})
	}

	_ = g.Wait() // workers never return errors
	return out
}

func (e *Enricher) fetchOne(ctx context.Context, ref string) (*places.Place, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()

	return resilience.DoVal(callCtx, e.retry, func(ctx context.Context) (*places.Place, error) {
		return e.client.GetPlace(ctx, ref)
	})
}
