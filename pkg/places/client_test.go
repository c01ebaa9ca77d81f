package places

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchNearby_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/places:searchNearby", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Goog-Api-Key"))
		assert.Contains(t, r.Header.Get("X-Goog-FieldMask"), "places.rating")
		assert.Contains(t, r.Header.Get("X-Goog-FieldMask"), "places.location")

		var body NearbySearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"restaurant"}, body.IncludedTypes)
		assert.InDelta(t, 35.6586, body.LocationRestriction.Circle.Center.Latitude, 0.001)
		assert.InDelta(t, 1000, body.LocationRestriction.Circle.Radius, 0.001)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(NearbySearchResponse{
			Places: []Place{
				{
					ID:               "ChIJ-abc",
					DisplayName:      LocalizedText{Text: "Tonkotsu King"},
					FormattedAddress: "2-1 Shibakoen",
					Location:         &LatLng{Latitude: 35.6590, Longitude: 139.7470},
					Rating:           4.4,
					UserRatingCount:  320,
					PriceLevel:       "PRICE_LEVEL_MODERATE",
				},
			},
		})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.SearchNearby(context.Background(), NearbySearchRequest{
		IncludedTypes:  []string{"restaurant"},
		MaxResultCount: 20,
		LocationRestriction: LocationRestriction{
			Circle: Circle{
				Center: LatLng{Latitude: 35.6586, Longitude: 139.7454},
				Radius: 1000,
			},
		},
	})

	require.NoError(t, err)
	require.Len(t, resp.Places, 1)
	assert.Equal(t, "ChIJ-abc", resp.Places[0].ID)
	assert.Equal(t, "Tonkotsu King", resp.Places[0].DisplayName.Text)
	assert.InDelta(t, 4.4, resp.Places[0].Rating, 0.001)
	assert.Equal(t, 320, resp.Places[0].UserRatingCount)
}

func TestSearchNearby_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(NearbySearchResponse{Places: nil})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.SearchNearby(context.Background(), NearbySearchRequest{})

	require.NoError(t, err)
	assert.Empty(t, resp.Places)
}

func TestSearchNearby_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": "invalid API key"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	client := NewClient("bad-key", WithBaseURL(srv.URL))
	resp, err := client.SearchNearby(context.Background(), NearbySearchRequest{})

	assert.Error(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), "403")
}

func TestGetPlace_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/places/ChIJ-abc", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Goog-Api-Key"))
		assert.Contains(t, r.Header.Get("X-Goog-FieldMask"), "websiteUri")
		assert.Contains(t, r.Header.Get("X-Goog-FieldMask"), "reviews")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Place{
			ID:            "ChIJ-abc",
			WebsiteURI:    "https://tonkotsuking.example",
			GoogleMapsURI: "https://maps.google.com/?cid=1",
			Reviews: []Review{
				{
					AuthorAttribution:              &AuthorAttribution{DisplayName: "kenji"},
					Rating:                         5,
					RelativePublishTimeDescription: "2 weeks ago",
					Text:                           &LocalizedText{Text: "rich broth", LanguageCode: "en"},
				},
			},
			RegularOpeningHours: &OpeningHours{
				WeekdayDescriptions: []string{"Monday: 11 AM – 10 PM"},
			},
		})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	place, err := client.GetPlace(context.Background(), "places/ChIJ-abc")

	require.NoError(t, err)
	assert.Equal(t, "https://tonkotsuking.example", place.WebsiteURI)
	require.Len(t, place.Reviews, 1)
	assert.Equal(t, "kenji", place.Reviews[0].AuthorAttribution.DisplayName)
	require.NotNil(t, place.RegularOpeningHours)
}

func TestGetPlace_SparseResponse(t *testing.T) {
	// Absence of optional fields must not fail the call.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"sparse"}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	place, err := client.GetPlace(context.Background(), "places/sparse")

	require.NoError(t, err)
	assert.Equal(t, "sparse", place.ID)
	assert.Empty(t, place.WebsiteURI)
	assert.Nil(t, place.RegularOpeningHours)
}

func TestGetPlace_MalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	place, err := client.GetPlace(context.Background(), "places/x")

	assert.Error(t, err)
	assert.Nil(t, place)
}

func TestSearchNearby_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		// Simulate slow response — context should cancel first.
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately.

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.SearchNearby(ctx, NearbySearchRequest{})

	assert.Error(t, err)
	assert.Nil(t, resp)
}
