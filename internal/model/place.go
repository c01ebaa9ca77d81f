package model

// PriceTier is one of four ordinal price symbols.
type PriceTier string

const (
	PriceCheap    PriceTier = "$"
	PriceModerate PriceTier = "$$"
	PriceUpscale  PriceTier = "$$$"
	PriceLuxury   PriceTier = "$$$$"
)

// Candidate is a restaurant returned by the nearby search, optionally
// enriched with detail fields. Identity, distance, and name are established
// at search time and never overwritten by enrichment.
type Candidate struct {
	ID       string `json:"id"`
	PlaceRef string `json:"place_ref,omitempty"` // external place resource name, e.g. "places/ChIJ..."

	DistanceKM float64 `json:"distance_km"`

	Name    string    `json:"name"`
	Address string    `json:"address,omitempty"`
	Cuisine string    `json:"cuisine,omitempty"`
	Price   PriceTier `json:"price,omitempty"`

	Rating      *float64 `json:"rating,omitempty"`       // nil means unknown, not zero
	RatingCount *int     `json:"rating_count,omitempty"`

	OpenNow bool `json:"open_now"`

	// Enrichment-only fields below. Enrichment adds, never removes.
	Website  string   `json:"website,omitempty"`
	PhotoURL string   `json:"photo_url,omitempty"`
	MapURL   string   `json:"map_url,omitempty"`
	Menu     *Menu    `json:"menu,omitempty"`
	Hours    *Hours   `json:"hours,omitempty"`
	Reviews  []Review `json:"reviews,omitempty"` // at most 3
}

// Menu holds structured menu data for a candidate.
type Menu struct {
	Specialties   []string   `json:"specialties,omitempty"`
	PopularDishes []string   `json:"popular_dishes,omitempty"`
	CuisineTags   []string   `json:"cuisine_tags,omitempty"`
	Items         []MenuItem `json:"items,omitempty"`
}

// MenuItem is a single itemized menu entry.
type MenuItem struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       string `json:"price,omitempty"`
}

// Hours holds an opening-hours schedule, either as structured day/time
// periods or as pre-formatted display lines.
type Hours struct {
	Periods   []HoursPeriod `json:"periods,omitempty"`
	Formatted []string      `json:"formatted,omitempty"`
}

// HoursPeriod is a single open/close span. Day is 0 (Sunday) through 6.
type HoursPeriod struct {
	Day   int    `json:"day"`
	Open  string `json:"open"`  // "HHMM"
	Close string `json:"close"` // "HHMM"
}

// Review is a single review snippet attached during enrichment.
type Review struct {
	Author       string  `json:"author"`
	Rating       float64 `json:"rating"`
	RelativeTime string  `json:"relative_time,omitempty"`
	Text         string  `json:"text"`
	Language     string  `json:"language,omitempty"`
}

// RerankResult is the validated output of one AI rerank call. Every ID
// corresponds to an actual candidate in the enriched set; IDs the model
// invented are dropped before this type is constructed.
type RerankResult struct {
	IDs    []string `json:"ids"`
	Reason string   `json:"reason"`
}
