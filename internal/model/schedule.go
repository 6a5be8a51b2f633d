package model

// Tour is a scheduled facility tour for a prospective member.
type Tour struct {
	ID           int64  `json:"id"`
	ProspectName string `json:"prospect_name"`
	Date         string `json:"date"`
	StartTime    string `json:"start_time"`
	Status       string `json:"status"` // scheduled, completed, cancelled
	PartySize    int    `json:"party_size,omitempty"`
}

// Event is a club event (league night, tournament, social).
type Event struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Date            string `json:"date"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time,omitempty"`
	Location        string `json:"location,omitempty"`
	Status          string `json:"status"`
	RegisteredCount int    `json:"registered_count"`
	Capacity        int    `json:"capacity,omitempty"`
}

// WellnessClass is a scheduled wellness session (yoga, mobility, fitness).
type WellnessClass struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Instructor string `json:"instructor,omitempty"`
	Date       string `json:"date"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time,omitempty"`
	Status     string `json:"status"`
	SpotsTotal int    `json:"spots_total,omitempty"`
	SpotsTaken int    `json:"spots_taken"`
}
