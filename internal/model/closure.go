package model

// Closure is a facility notice or blockage window. AffectedAreas is kept in
// its raw upstream encoding; parse.ParseAffectedAreas handles the three
// shapes it arrives in (literal token, JSON array, comma-joined bay list).
type Closure struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Reason        string `json:"reason"`
	NoticeType    string `json:"notice_type"`
	StartDate     string `json:"start_date"` // YYYY-MM-DD
	EndDate       string `json:"end_date"`
	StartTime     string `json:"start_time,omitempty"` // HH:MM, optional
	EndTime       string `json:"end_time,omitempty"`
	AffectedAreas string `json:"affected_areas"`
}
