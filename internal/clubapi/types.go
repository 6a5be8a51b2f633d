package clubapi

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"command-center-backend/internal/model"
)

// The platform emits the same field under different names depending on
// which service produced the row (bay_name vs bayName, user_email vs
// member_email). Every known alias is declared here and collapsed to one
// canonical field before any derived logic sees the record.

// flexID accepts identifiers that arrive as JSON numbers or strings.
// Numbers canonicalize to their decimal form; strings (calendar imports
// with a "cal_" prefix) pass through unchanged.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id is neither string nor number: %s", string(b))
	}
	*f = flexID(n.String())
	return nil
}

// rawAreas keeps the affected-areas value in its raw string form. Arrays
// stay JSON-encoded; the area parser understands both encodings.
type rawAreas string

func (r *rawAreas) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*r = rawAreas(s)
		return nil
	}
	*r = rawAreas(string(b))
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonZero(values ...int64) int64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

func firstNonZeroFloat(values ...float64) float64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

// parseTimestamp reads the platform's created-at stamps, which arrive as
// RFC 3339 or as a bare "YYYY-MM-DD HH:MM:SS" in facility-local time.
func parseTimestamp(value string, loc *time.Location) time.Time {
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04:05", value, loc); err == nil {
		return t
	}
	return time.Time{}
}

type bookingDTO struct {
	ID flexID `json:"id"`

	UserEmail      string `json:"user_email"`
	UserEmailCamel string `json:"userEmail"`
	MemberEmail    string `json:"member_email"`

	UserName      string `json:"user_name"`
	UserNameCamel string `json:"userName"`
	MemberName    string `json:"member_name"`

	ResourceID      int64 `json:"resource_id"`
	ResourceIDCamel int64 `json:"resourceId"`
	BayID           int64 `json:"bay_id"`

	ResourceName      string `json:"resource_name"`
	ResourceNameCamel string `json:"resourceName"`
	BayName           string `json:"bay_name"`
	BayNameCamel      string `json:"bayName"`

	ResourceType      string `json:"resource_type"`
	ResourceTypeCamel string `json:"resourceType"`

	Date        string `json:"date"`
	BookingDate string `json:"booking_date"`

	StartTime      string `json:"start_time"`
	StartTimeCamel string `json:"startTime"`
	EndTime        string `json:"end_time"`
	EndTimeCamel   string `json:"endTime"`

	Status string `json:"status"`

	HasUnpaidFees      bool    `json:"has_unpaid_fees"`
	HasUnpaidFeesCamel bool    `json:"hasUnpaidFees"`
	TotalOwed          float64 `json:"total_owed"`
	TotalOwedCamel     float64 `json:"totalOwed"`

	Unmatched      bool `json:"is_unmatched"`
	UnmatchedCamel bool `json:"isUnmatched"`
	HasConflict    bool `json:"has_conflict"`
	ConflictCamel  bool `json:"hasConflict"`
}

func (d bookingDTO) normalize(source model.BookingSource) model.BookingRecord {
	rec := model.BookingRecord{
		ID:            string(d.ID),
		UserEmail:     firstNonEmpty(d.UserEmail, d.UserEmailCamel, d.MemberEmail),
		UserName:      firstNonEmpty(d.UserName, d.UserNameCamel, d.MemberName),
		ResourceID:    firstNonZero(d.ResourceID, d.ResourceIDCamel, d.BayID),
		ResourceName:  firstNonEmpty(d.ResourceName, d.ResourceNameCamel, d.BayName, d.BayNameCamel),
		ResourceType:  model.ResourceType(firstNonEmpty(d.ResourceType, d.ResourceTypeCamel)),
		Date:          firstNonEmpty(d.Date, d.BookingDate),
		StartTime:     firstNonEmpty(d.StartTime, d.StartTimeCamel),
		EndTime:       firstNonEmpty(d.EndTime, d.EndTimeCamel),
		Status:        model.BookingStatus(d.Status),
		Source:        source,
		HasUnpaidFees: d.HasUnpaidFees || d.HasUnpaidFeesCamel,
		TotalOwed:     firstNonZeroFloat(d.TotalOwed, d.TotalOwedCamel),
		Unmatched:     d.Unmatched || d.UnmatchedCamel,
		HasConflict:   d.HasConflict || d.ConflictCamel,
	}

	if rec.ResourceName == "" && rec.ResourceID != 0 {
		rec.ResourceName = fmt.Sprintf("Bay %d", rec.ResourceID)
	}
	if rec.ResourceType == "" {
		rec.ResourceType = model.ResourceSimulator
	}
	// Calendar imports ride along in the booking collections under a
	// prefixed string id.
	if strings.HasPrefix(rec.ID, "cal_") {
		rec.Source = model.SourceCalendar
	}
	return rec
}

func normalizeBookings(dtos []bookingDTO, source model.BookingSource) []model.BookingRecord {
	records := make([]model.BookingRecord, 0, len(dtos))
	for _, d := range dtos {
		records = append(records, d.normalize(source))
	}
	return records
}

type tourDTO struct {
	ID                int64  `json:"id"`
	ProspectName      string `json:"prospect_name"`
	ProspectNameCamel string `json:"prospectName"`
	Name              string `json:"name"`
	Date              string `json:"date"`
	TourDate          string `json:"tour_date"`
	StartTime         string `json:"start_time"`
	StartTimeCamel    string `json:"startTime"`
	Status            string `json:"status"`
	PartySize         int    `json:"party_size"`
	PartySizeCamel    int    `json:"partySize"`
}

func (d tourDTO) normalize() model.Tour {
	return model.Tour{
		ID:           d.ID,
		ProspectName: firstNonEmpty(d.ProspectName, d.ProspectNameCamel, d.Name),
		Date:         firstNonEmpty(d.Date, d.TourDate),
		StartTime:    firstNonEmpty(d.StartTime, d.StartTimeCamel),
		Status:       d.Status,
		PartySize:    int(firstNonZero(int64(d.PartySize), int64(d.PartySizeCamel))),
	}
}

type eventDTO struct {
	ID                   int64  `json:"id"`
	Title                string `json:"title"`
	Name                 string `json:"name"`
	Date                 string `json:"date"`
	EventDate            string `json:"event_date"`
	StartTime            string `json:"start_time"`
	StartTimeCamel       string `json:"startTime"`
	EndTime              string `json:"end_time"`
	EndTimeCamel         string `json:"endTime"`
	Location             string `json:"location"`
	Status               string `json:"status"`
	RegisteredCount      int    `json:"registered_count"`
	RegisteredCountCamel int    `json:"registeredCount"`
	Capacity             int    `json:"capacity"`
}

func (d eventDTO) normalize() model.Event {
	return model.Event{
		ID:              d.ID,
		Title:           firstNonEmpty(d.Title, d.Name),
		Date:            firstNonEmpty(d.Date, d.EventDate),
		StartTime:       firstNonEmpty(d.StartTime, d.StartTimeCamel),
		EndTime:         firstNonEmpty(d.EndTime, d.EndTimeCamel),
		Location:        d.Location,
		Status:          d.Status,
		RegisteredCount: int(firstNonZero(int64(d.RegisteredCount), int64(d.RegisteredCountCamel))),
		Capacity:        d.Capacity,
	}
}

type wellnessDTO struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	ClassName      string `json:"class_name"`
	Name           string `json:"name"`
	Instructor     string `json:"instructor"`
	Date           string `json:"date"`
	ClassDate      string `json:"class_date"`
	StartTime      string `json:"start_time"`
	StartTimeCamel string `json:"startTime"`
	EndTime        string `json:"end_time"`
	EndTimeCamel   string `json:"endTime"`
	Status         string `json:"status"`
	SpotsTotal     int    `json:"spots_total"`
	SpotsTaken     int    `json:"spots_taken"`
}

func (d wellnessDTO) normalize() model.WellnessClass {
	return model.WellnessClass{
		ID:         d.ID,
		Title:      firstNonEmpty(d.Title, d.ClassName, d.Name),
		Instructor: d.Instructor,
		Date:       firstNonEmpty(d.Date, d.ClassDate),
		StartTime:  firstNonEmpty(d.StartTime, d.StartTimeCamel),
		EndTime:    firstNonEmpty(d.EndTime, d.EndTimeCamel),
		Status:     d.Status,
		SpotsTotal: d.SpotsTotal,
		SpotsTaken: d.SpotsTaken,
	}
}

type resourceDTO struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	DisplayName       string `json:"display_name"`
	Type              string `json:"type"`
	ResourceType      string `json:"resource_type"`
	ResourceTypeCamel string `json:"resourceType"`
}

func (d resourceDTO) normalize() model.Bay {
	bay := model.Bay{
		ID:   d.ID,
		Name: firstNonEmpty(d.Name, d.DisplayName),
		Type: model.ResourceType(firstNonEmpty(d.Type, d.ResourceType, d.ResourceTypeCamel)),
	}
	if bay.Name == "" {
		bay.Name = fmt.Sprintf("Bay %d", bay.ID)
	}
	if bay.Type == "" {
		bay.Type = model.ResourceSimulator
	}
	return bay
}

type closureDTO struct {
	ID                 int64    `json:"id"`
	Title              string   `json:"title"`
	Reason             string   `json:"reason"`
	NoticeType         string   `json:"notice_type"`
	NoticeTypeCamel    string   `json:"noticeType"`
	StartDate          string   `json:"start_date"`
	StartDateCamel     string   `json:"startDate"`
	EndDate            string   `json:"end_date"`
	EndDateCamel       string   `json:"endDate"`
	StartTime          string   `json:"start_time"`
	StartTimeCamel     string   `json:"startTime"`
	EndTime            string   `json:"end_time"`
	EndTimeCamel       string   `json:"endTime"`
	AffectedAreas      rawAreas `json:"affected_areas"`
	AffectedAreasCamel rawAreas `json:"affectedAreas"`
}

func (d closureDTO) normalize() model.Closure {
	return model.Closure{
		ID:            d.ID,
		Title:         d.Title,
		Reason:        d.Reason,
		NoticeType:    firstNonEmpty(d.NoticeType, d.NoticeTypeCamel),
		StartDate:     firstNonEmpty(d.StartDate, d.StartDateCamel),
		EndDate:       firstNonEmpty(d.EndDate, d.EndDateCamel),
		StartTime:     firstNonEmpty(d.StartTime, d.StartTimeCamel),
		EndTime:       firstNonEmpty(d.EndTime, d.EndTimeCamel),
		AffectedAreas: firstNonEmpty(string(d.AffectedAreas), string(d.AffectedAreasCamel)),
	}
}

type announcementDTO struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Body          string `json:"body"`
	Content       string `json:"content"`
	IsActive      *bool  `json:"is_active"`
	IsActiveCamel *bool  `json:"isActive"`
	Active        *bool  `json:"active"`
	CreatedAt     string `json:"created_at"`
}

func (d announcementDTO) normalize(loc *time.Location) model.Announcement {
	active := true
	for _, flag := range []*bool{d.IsActive, d.IsActiveCamel, d.Active} {
		if flag != nil {
			active = *flag
			break
		}
	}
	return model.Announcement{
		ID:        d.ID,
		Title:     d.Title,
		Body:      firstNonEmpty(d.Body, d.Content),
		IsActive:  active,
		CreatedAt: parseTimestamp(d.CreatedAt, loc),
	}
}

type activityDTO struct {
	ID             flexID `json:"id"`
	Type           string `json:"type"`
	Message        string `json:"message"`
	Description    string `json:"description"`
	BookingID      flexID `json:"booking_id"`
	BookingIDCamel flexID `json:"bookingId"`
	CreatedAt      string `json:"created_at"`
	CreatedAtCamel string `json:"createdAt"`
}

func (d activityDTO) normalize(loc *time.Location) model.ActivityEntry {
	return model.ActivityEntry{
		ID:        string(d.ID),
		Type:      d.Type,
		Message:   firstNonEmpty(d.Message, d.Description),
		BookingID: firstNonEmpty(string(d.BookingID), string(d.BookingIDCamel)),
		CreatedAt: parseTimestamp(firstNonEmpty(d.CreatedAt, d.CreatedAtCamel), loc),
	}
}

type notificationDTO struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Read      bool   `json:"read"`
	IsRead    bool   `json:"is_read"`
	CreatedAt string `json:"created_at"`
}

func (d notificationDTO) normalize(loc *time.Location) model.Notification {
	return model.Notification{
		ID:        d.ID,
		Type:      d.Type,
		Title:     d.Title,
		Message:   d.Message,
		Read:      d.Read || d.IsRead,
		CreatedAt: parseTimestamp(d.CreatedAt, loc),
	}
}

type contactDTO struct {
	Email                 string   `json:"email"`
	FirstName             string   `json:"first_name"`
	FirstNameCamel        string   `json:"firstName"`
	LastName              string   `json:"last_name"`
	LastNameCamel         string   `json:"lastName"`
	AdditionalEmails      []string `json:"additional_emails"`
	AdditionalEmailsCamel []string `json:"additionalEmails"`
}

func (d contactDTO) normalize() model.Contact {
	additional := d.AdditionalEmails
	if len(additional) == 0 {
		additional = d.AdditionalEmailsCamel
	}
	return model.Contact{
		Email:            d.Email,
		FirstName:        firstNonEmpty(d.FirstName, d.FirstNameCamel),
		LastName:         firstNonEmpty(d.LastName, d.LastNameCamel),
		AdditionalEmails: additional,
	}
}
