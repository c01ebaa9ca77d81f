package recommend

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forkcast/forkcast/internal/model"
	"github.com/forkcast/forkcast/pkg/places"
)

// fakePlaces is a places.Client test double with per-method hooks.
type fakePlaces struct {
	mu          sync.Mutex
	searchFn    func(ctx context.Context, req places.NearbySearchRequest) (*places.NearbySearchResponse, error)
	getPlaceFn  func(ctx context.Context, name string) (*places.Place, error)
	getCalls    []string
	searchCalls int
}

func (f *fakePlaces) SearchNearby(ctx context.Context, req places.NearbySearchRequest) (*places.NearbySearchResponse, error) {
	f.mu.Lock()
	f.searchCalls++
	f.mu.Unlock()
	if f.searchFn == nil {
		return &places.NearbySearchResponse{}, nil
	}
	return f.searchFn(ctx, req)
}

func (f *fakePlaces) GetPlace(ctx context.Context, name string) (*places.Place, error) {
	f.mu.Lock()
	f.getCalls = append(f.getCalls, name)
	f.mu.Unlock()
	if f.getPlaceFn == nil {
		return &places.Place{}, nil
	}
	return f.getPlaceFn(ctx, name)
}

func testEnricher(client places.Client) *Enricher {
	return NewEnricher(client, 2, 1000, time.Second)
}

func TestEnrichMergesDetails(t *testing.T) {
	fake := &fakePlaces{
		getPlaceFn: func(_ context.Context, name string) (*places.Place, error) {
			return &places.Place{
				WebsiteURI:    "https://site.example",
				GoogleMapsURI: "https://maps.example/x",
				Reviews: []places.Review{
					{Rating: 5, Text: &places.LocalizedText{Text: "great", LanguageCode: "en"}},
				},
			}, nil
		},
	}

	in := []model.Candidate{{ID: "a", PlaceRef: "places/a", Name: "A", DistanceKM: 1.2}}
	out := testEnricher(fake).Enrich(context.Background(), in)

	require.Len(t, out, 1)
	assert.Equal(t, "https://site.example", out[0].Website)
	assert.Equal(t, "https://maps.example/x", out[0].MapURL)
	require.Len(t, out[0].Reviews, 1)
	// Identity and distance are untouched by enrichment.
	assert.Equal(t, "a", out[0].ID)
	assert.Equal(t, "A", out[0].Name)
	assert.InDelta(t, 1.2, out[0].DistanceKM, 0.001)
}

func TestEnrichFailureIsolated(t *testing.T) {
	fake := &fakePlaces{
		getPlaceFn: func(_ context.Context, name string) (*places.Place, error) {
			if name == "places/bad" {
				return nil, eris.New("boom")
			}
			return &places.Place{WebsiteURI: "https://ok.example"}, nil
		},
	}

	in := []model.Candidate{
		{ID: "good1", PlaceRef: "places/good1", Name: "G1"},
		{ID: "bad", PlaceRef: "places/bad", Name: "B"},
		{ID: "good2", PlaceRef: "places/good2", Name: "G2"},
	}
	out := testEnricher(fake).Enrich(context.Background(), in)

	require.Len(t, out, 3)
	assert.Equal(t, "https://ok.example", out[0].Website)
	assert.Empty(t, out[1].Website) // failed fetch keeps the original
	assert.Equal(t, "https://ok.example", out[2].Website)
}

func TestEnrichPreservesOrder(t *testing.T) {
	fake := &fakePlaces{
		getPlaceFn: func(_ context.Context, name string) (*places.Place, error) {
			// Make earlier items finish later.
			if name == "places/c0" {
				time.Sleep(30 * time.Millisecond)
			}
			return &places.Place{WebsiteURI: "https://" + name}, nil
		},
	}

	in := []model.Candidate{
		{ID: "c0", PlaceRef: "places/c0", Name: "C0"},
		{ID: "c1", PlaceRef: "places/c1", Name: "C1"},
		{ID: "c2", PlaceRef: "places/c2", Name: "C2"},
	}
	out := testEnricher(fake).Enrich(context.Background(), in)

	require.Len(t, out, 3)
	for i, c := range out {
		assert.Equal(t, in[i].ID, c.ID)
		assert.Equal(t, "https://places/"+c.ID, c.Website)
	}
}

func TestEnrichSkipsCandidatesWithoutRef(t *testing.T) {
	fake := &fakePlaces{}

	in := []model.Candidate{
		{ID: "noref", Name: "No Ref"},
		{ID: "ref", PlaceRef: "places/ref", Name: "Ref"},
	}
	out := testEnricher(fake).Enrich(context.Background(), in)

	require.Len(t, out, 2)
	assert.Equal(t, []string{"places/ref"}, fake.getCalls)
	assert.Equal(t, "noref", out[0].ID)
}

func TestEnrichEmptyInput(t *testing.T) {
	fake := &fakePlaces{}
	out := testEnricher(fake).Enrich(context.Background(), nil)
	assert.Empty(t, out)
	assert.Empty(t, fake.getCalls)
}
