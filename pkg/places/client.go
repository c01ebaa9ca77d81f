package places

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://places.googleapis.com/v1"

const (
	searchFieldMask = "places.id,places.displayName,places.formattedAddress,places.location," +
		"places.rating,places.userRatingCount,places.priceLevel,places.primaryTypeDisplayName," +
		"places.photos,places.currentOpeningHours.openNow"
	detailsFieldMask = "id,displayName,formattedAddress,rating,userRatingCount,priceLevel," +
		"websiteUri,googleMapsUri,photos,reviews,regularOpeningHours,editorialSummary"
)

// APIError is a non-200 response from the Places API. Callers can inspect
// StatusCode to decide whether the call is worth retrying.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("places: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Client performs Google Places API (New) operations.
type Client interface {
	SearchNearby(ctx context.Context, req NearbySearchRequest) (*NearbySearchResponse, error)
	GetPlace(ctx context.Context, name string) (*Place, error)
}

// NearbySearchRequest is the request body for POST /places:searchNearby.
type NearbySearchRequest struct {
	IncludedTypes       []string            `json:"includedTypes,omitempty"`
	MaxResultCount      int                 `json:"maxResultCount,omitempty"`
	RankPreference      string              `json:"rankPreference,omitempty"`
	LocationRestriction LocationRestriction `json:"locationRestriction"`
}

// LocationRestriction bounds a nearby search to a circle.
type LocationRestriction struct {
	Circle Circle `json:"circle"`
}

// Circle is a center point plus radius in meters.
type Circle struct {
	Center LatLng  `json:"center"`
	Radius float64 `json:"radius"`
}

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NearbySearchResponse is the response from POST /places:searchNearby.
type NearbySearchResponse struct {
	Places []Place `json:"places"`
}

// Place represents a place resource. Detail-only fields are zero-valued in
// search responses; absence of any field is not an error.
type Place struct {
	ID                     string         `json:"id"`
	DisplayName            LocalizedText  `json:"displayName"`
	FormattedAddress       string         `json:"formattedAddress"`
	Location               *LatLng        `json:"location,omitempty"`
	Rating                 float64        `json:"rating"`
	UserRatingCount        int            `json:"userRatingCount"`
	PriceLevel             string         `json:"priceLevel"`
	PrimaryTypeDisplayName *LocalizedText `json:"primaryTypeDisplayName,omitempty"`
	Photos                 []Photo        `json:"photos,omitempty"`
	CurrentOpeningHours    *OpeningHours  `json:"currentOpeningHours,omitempty"`
	RegularOpeningHours    *OpeningHours  `json:"regularOpeningHours,omitempty"`
	WebsiteURI             string         `json:"websiteUri"`
	GoogleMapsURI          string         `json:"googleMapsUri"`
	Reviews                []Review       `json:"reviews,omitempty"`
	EditorialSummary       *LocalizedText `json:"editorialSummary,omitempty"`
}

// LocalizedText is a text value with a BCP-47 language code.
type LocalizedText struct {
	Text         string `json:"text"`
	LanguageCode string `json:"languageCode,omitempty"`
}

// Photo is a photo resource reference.
type Photo struct {
	Name string `json:"name"`
}

// OpeningHours holds the opening-hours schedule of a place.
type OpeningHours struct {
	OpenNow             bool                 `json:"openNow"`
	Periods             []OpeningHoursPeriod `json:"periods,omitempty"`
	WeekdayDescriptions []string             `json:"weekdayDescriptions,omitempty"`
}

// OpeningHoursPeriod is one open/close span.
type OpeningHoursPeriod struct {
	Open  *OpeningHoursPoint `json:"open,omitempty"`
	Close *OpeningHoursPoint `json:"close,omitempty"`
}

// OpeningHoursPoint is a day-of-week plus time of day.
type OpeningHoursPoint struct {
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// Review is a user review attached to a place.
type Review struct {
	AuthorAttribution              *AuthorAttribution `json:"authorAttribution,omitempty"`
	Rating                         float64            `json:"rating"`
	RelativePublishTimeDescription string             `json:"relativePublishTimeDescription"`
	Text                           *LocalizedText     `json:"text,omitempty"`
}

// AuthorAttribution identifies a review author.
type AuthorAttribution struct {
	DisplayName string `json:"displayName"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Google Places API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) SearchNearby(ctx context.Context, req NearbySearchRequest) (*NearbySearchResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "places: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/places:searchNearby", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "places: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Goog-Api-Key", c.apiKey)
	httpReq.Header.Set("X-Goog-FieldMask", searchFieldMask)

	respBody, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}

	var result NearbySearchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "places: unmarshal response")
	}
	return &result, nil
}

// GetPlace fetches the detail fields for one place. The name parameter is
// the place resource name, e.g. "places/ChIJabc123".
func (c *httpClient) GetPlace(ctx context.Context, name string) (*Place, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+name, nil)
	if err != nil {
		return nil, eris.Wrap(err, "places: create request")
	}
	httpReq.Header.Set("X-Goog-Api-Key", c.apiKey)
	httpReq.Header.Set("X-Goog-FieldMask", detailsFieldMask)

	respBody, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}

	var result Place
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "places: unmarshal response")
	}
	return &result, nil
}

func (c *httpClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "places: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "places: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return respBody, nil
}
