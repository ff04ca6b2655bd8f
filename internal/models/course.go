package models

// CoursePricing is the authoritative pricing record for a course. Once a
// match succeeds its price is ground truth for the enrollment.
type CoursePricing struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Level       string  `json:"level"`
	Price       float64 `json:"price"`
	Type        *string `json:"type"`
	StartDate   *string `json:"startDate"`
	LastUpdated *string `json:"lastUpdated"`
}
