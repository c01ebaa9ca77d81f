package recommend

import (
	"fmt"
	"math"

	"github.com/forkcast/forkcast/internal/model"
	"github.com/forkcast/forkcast/pkg/places"
)

const maxReviewSnippets = 3

// CandidateFromPlace builds a Candidate from a nearby-search result. The
// distance is computed here from the returned geometry; an upstream
// distance field, if any, is not trusted.
func CandidateFromPlace(p places.Place, userLat, userLng float64) model.Candidate {
	c := model.Candidate{
		ID:       p.ID,
		PlaceRef: "places/" + p.ID,
		Name:     p.DisplayName.Text,
		Address:  p.FormattedAddress,
		Price:    priceTierFromLevel(p.PriceLevel),
	}
	if p.Location != nil {
		c.DistanceKM = haversineKM(userLat, userLng, p.Location.Latitude, p.Location.Longitude)
	}
	if p.Rating > 0 {
		r := p.Rating
		c.Rating = &r
	}
	if p.UserRatingCount > 0 {
		n := p.UserRatingCount
		c.RatingCount = &n
	}
	if p.PrimaryTypeDisplayName != nil {
		c.Cuisine = p.PrimaryTypeDisplayName.Text
	}
	if len(p.Photos) > 0 {
		c.PhotoURL = photoMediaURL(p.Photos[0].Name)
	}
	if p.CurrentOpeningHours != nil {
		c.OpenNow = p.CurrentOpeningHours.OpenNow
	}
	return c
}

// MergeDetails copies richness fields from a place-details response into
// the candidate. Identity, distance, and name are never overwritten;
// descriptive fields established at search time are only filled when empty.
func MergeDetails(c *model.Candidate, p *places.Place) {
	if p.WebsiteURI != "" {
		c.Website = p.WebsiteURI
	}
	if p.GoogleMapsURI != "" {
		c.MapURL = p.GoogleMapsURI
	}
	if c.Address == "" && p.FormattedAddress != "" {
		c.Address = p.FormattedAddress
	}
	if c.Rating == nil && p.Rating > 0 {
		r := p.Rating
		c.Rating = &r
	}
	if c.RatingCount == nil && p.UserRatingCount > 0 {
		n := p.UserRatingCount
		c.RatingCount = &n
	}
	if c.PhotoURL == "" && len(p.Photos) > 0 {
		c.PhotoURL = photoMediaURL(p.Photos[0].Name)
	}
	if p.EditorialSummary != nil && p.EditorialSummary.Text != "" {
		if c.Menu == nil {
			c.Menu = &model.Menu{}
		}
		if len(c.Menu.Specialties) == 0 {
			c.Menu.Specialties = []string{p.EditorialSummary.Text}
		}
	}
	if p.RegularOpeningHours != nil {
		c.Hours = hoursFromPlace(p.RegularOpeningHours)
	}

	for i, rv := range p.Reviews {
		if i >= maxReviewSnippets {
			break
		}
		review := model.Review{
			Rating:       rv.Rating,
			RelativeTime: rv.RelativePublishTimeDescription,
		}
		if rv.AuthorAttribution != nil {
			review.Author = rv.AuthorAttribution.DisplayName
		}
		if rv.Text != nil {
			review.Text = rv.Text.Text
			review.Language = rv.Text.LanguageCode
		}
		c.Reviews = append(c.Reviews, review)
	}
}

func hoursFromPlace(oh *places.OpeningHours) *model.Hours {
	h := &model.Hours{Formatted: oh.WeekdayDescriptions}
	for _, p := range oh.Periods {
		if p.Open == nil {
			continue
		}
		period := model.HoursPeriod{
			Day:  p.Open.Day,
			Open: fmt.Sprintf("%02d%02d", p.Open.Hour, p.Open.Minute),
		}
		if p.Close != nil {
			period.Close = fmt.Sprintf("%02d%02d", p.Close.Hour, p.Close.Minute)
		}
		h.Periods = append(h.Periods, period)
	}
	if len(h.Periods) == 0 && len(h.Formatted) == 0 {
		return nil
	}
	return h
}

// priceTierFromLevel maps the API price-level enum to an ordinal symbol.
// Unknown or unspecified levels default to the middle tier.
func priceTierFromLevel(level string) model.PriceTier {
	switch level {
	case "PRICE_LEVEL_FREE", "PRICE_LEVEL_INEXPENSIVE":
		return model.PriceCheap
	case "PRICE_LEVEL_MODERATE":
		return model.PriceModerate
	case "PRICE_LEVEL_EXPENSIVE":
		return model.PriceUpscale
	case "PRICE_LEVEL_VERY_EXPENSIVE":
		return model.PriceLuxury
	default:
		return model.PriceModerate
	}
}

func photoMediaURL(photoName string) string {
	if photoName == "" {
		return ""
	}
	return fmt.Sprintf("https://places.googleapis.com/v1/%s/media?maxWidthPx=800", photoName)
}

const earthRadiusKM = 6371.0

// haversineKM computes the great-circle distance between two WGS84 points.
func haversineKM(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
