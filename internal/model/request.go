package model

import "github.com/rotisserie/eris"

// RecommendRequest is the validated input to a recommendation call.
type RecommendRequest struct {
	UserInput    string  `json:"userInput"` // empty means "no preference"
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters int     `json:"radius"`
}

// ValidateCoords checks the coordinates against WGS84 ranges.
func (r *RecommendRequest) ValidateCoords() error {
	if r.Latitude < -90 || r.Latitude > 90 {
		return eris.Errorf("model: latitude %.4f out of range [-90,90]", r.Latitude)
	}
	if r.Longitude < -180 || r.Longitude > 180 {
		return eris.Errorf("model: longitude %.4f out of range [-180,180]", r.Longitude)
	}
	return nil
}

// ClampRadius applies the default radius when unset and clamps to [min,max].
func (r *RecommendRequest) ClampRadius(min, max, def int) {
	if r.RadiusMeters == 0 {
		r.RadiusMeters = def
	}
	if r.RadiusMeters < min {
		r.RadiusMeters = min
	}
	if r.RadiusMeters > max {
		r.RadiusMeters = max
	}
}

// RecommendResponse is the data payload returned to the client.
type RecommendResponse struct {
	Recommendations []Candidate `json:"recommendations"`
	TotalFound      int         `json:"totalFound"`
	UserInput       string      `json:"userInput"`
	SearchRadius    int         `json:"searchRadius"`
	AIReason        string      `json:"aiReason"`
}
