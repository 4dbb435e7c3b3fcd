package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Booking status values.
const (
	StatusPending   = "Pending"
	StatusConfirmed = "Confirmed"
	StatusCompleted = "Completed"
	StatusCancelled = "Cancelled"
)

// BookingStatuses lists the known statuses in display order.
var BookingStatuses = []string{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled}

// NormalizeStatus maps a status to its canonical spelling, so the backend's
// "PENDING" and the client's "Pending" compare equal. Unknown values are
// returned unchanged.
func NormalizeStatus(status string) string {
	for _, s := range BookingStatuses {
		if strings.EqualFold(s, status) {
			return s
		}
	}
	return status
}

// BookingProvider is the provider attached to a booking. The backend embeds
// the provider entity; older listings carry just the provider name.
type BookingProvider struct {
	ID   int64  `json:"id,omitempty" yaml:"id,omitempty"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// UnmarshalJSON accepts an object, a bare name string or null.
func (p *BookingProvider) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &p.Name)
	}
	var obj struct {
		ID          int64  `json:"id"`
		Name        string `json:"name"`
		ServiceType string `json:"serviceType"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("decode booking provider: %w", err)
	}
	p.ID = obj.ID
	p.Name = obj.Name
	if p.Name == "" {
		p.Name = obj.ServiceType
	}
	return nil
}

// String returns the provider name, or its id when unnamed.
func (p *BookingProvider) String() string {
	if p == nil {
		return ""
	}
	if p.Name != "" {
		return p.Name
	}
	if p.ID != 0 {
		return "#" + strconv.FormatInt(p.ID, 10)
	}
	return ""
}

// Booking is a booking record.
type Booking struct {
	ID          int64            `json:"id" yaml:"id"`
	User        *UserRef         `json:"user,omitempty" yaml:"user,omitempty" table:"-"`
	Provider    *BookingProvider `json:"provider,omitempty" yaml:"provider,omitempty"`
	ProviderID  int64            `json:"providerId,omitempty" yaml:"providerId,omitempty" table:"wide"`
	Service     string           `json:"service,omitempty" yaml:"service,omitempty"`
	BookingDate string           `json:"bookingDate,omitempty" yaml:"bookingDate,omitempty"`
	BookingTime string           `json:"bookingTime,omitempty" yaml:"bookingTime,omitempty"`
	Date        string           `json:"date,omitempty" yaml:"date,omitempty" table:"-"`
	Status      string           `json:"status,omitempty" yaml:"status,omitempty"`
	Notes       string           `json:"notes,omitempty" yaml:"notes,omitempty" table:"wide"`
	Message     string           `json:"message,omitempty" yaml:"message,omitempty" table:"wide"`
	CreatedAt   string           `json:"createdAt,omitempty" yaml:"createdAt,omitempty" table:"wide"`
}

// When returns the best available timestamp for ordering: creation time,
// then booking date, then the legacy date field.
func (b Booking) When() time.Time {
	for _, v := range []string{b.CreatedAt, b.BookingDate, b.Date} {
		if t, ok := parseLooseTime(v); ok {
			return t
		}
	}
	return time.Time{}
}

var looseTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseLooseTime(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range looseTimeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// BookingRequest is the create-booking payload before the owner is nested in.
type BookingRequest struct {
	ProviderID  int64  `json:"providerId"`
	BookingDate string `json:"bookingDate"`
	BookingTime string `json:"bookingTime"`
	Notes       string `json:"notes,omitempty"`
	Status      string `json:"status,omitempty"`
}

// BookingFilter narrows a booking listing.
type BookingFilter struct {
	// Status matches exactly after normalisation. Empty or "All" disables it.
	Status string
	// Query matches a substring of the service, the provider name or the id.
	Query string
}

// FilterBookings returns the bookings matching f, preserving order.
func FilterBookings(bookings []Booking, f BookingFilter) []Booking {
	status := strings.TrimSpace(f.Status)
	if strings.EqualFold(status, "All") {
		status = ""
	}
	status = NormalizeStatus(status)
	query := strings.ToLower(strings.TrimSpace(f.Query))

	out := make([]Booking, 0, len(bookings))
	for _, b := range bookings {
		if status != "" && NormalizeStatus(b.Status) != status {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(b.Service), query) &&
			!strings.Contains(strings.ToLower(b.Provider.String()), query) &&
			!strings.Contains(strconv.FormatInt(b.ID, 10), query) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// BookingStats summarises a booking list for the dashboard.
type BookingStats struct {
	Total     int `json:"totalBookings" yaml:"totalBookings"`
	Active    int `json:"activeBookings" yaml:"activeBookings"`
	Completed int `json:"completedBookings" yaml:"completedBookings"`
	Cancelled int `json:"cancelledBookings" yaml:"cancelledBookings"`
}

// SummarizeBookings counts bookings by state. Pending and confirmed
// bookings are both active.
func SummarizeBookings(bookings []Booking) BookingStats {
	stats := BookingStats{Total: len(bookings)}
	for _, b := range bookings {
		switch NormalizeStatus(b.Status) {
		case StatusPending, StatusConfirmed:
			stats.Active++
		case StatusCompleted:
			stats.Completed++
		case StatusCancelled:
			stats.Cancelled++
		}
	}
	return stats
}

// RecentBookings returns up to n bookings, newest first. The input slice is
// not modified.
func RecentBookings(bookings []Booking, n int) []Booking {
	sorted := make([]Booking, len(bookings))
	copy(sorted, bookings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].When().After(sorted[j].When())
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// Booking slot grid: every half hour from 08:00 to 20:30.
const (
	firstSlotHour = 8
	lastSlotHour  = 20
	slotMinutes   = 30
)

// TimeSlots returns the bookable start times in HH:MM form.
func TimeSlots() []string {
	slots := make([]string, 0, (lastSlotHour-firstSlotHour+1)*60/slotMinutes)
	for hour := firstSlotHour; hour <= lastSlotHour; hour++ {
		for minute := 0; minute < 60; minute += slotMinutes {
			slots = append(slots, fmt.Sprintf("%02d:%02d", hour, minute))
		}
	}
	return slots
}

// IsTimeSlot reports whether s is one of TimeSlots.
func IsTimeSlot(s string) bool {
	for _, slot := range TimeSlots() {
		if slot == s {
			return true
		}
	}
	return false
}
