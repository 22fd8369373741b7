package model

import "time"

type ScheduleStatus string

const (
	ScheduleStatusNotScheduled  ScheduleStatus = "not_scheduled"
	ScheduleStatusSlotsProposed ScheduleStatus = "slots_proposed"
	ScheduleStatusConfirmed     ScheduleStatus = "confirmed"
)

// Slot is a single candidate interview time as offered by the recruiter.
// Date is "YYYY-MM-DD", Time is "HH:MM" (24h, local to the parties).
type Slot struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// ConfirmedSlot is the one slot the student committed to.
type ConfirmedSlot struct {
	Slot
	ConfirmedAt time.Time `json:"confirmed_at"`
}

type SchedulingRequest struct {
	ID             string         `json:"id"`
	Subject        SubjectRef     `json:"subject"`
	ProposedSlots  []Slot         `json:"proposed_slots"`
	ConfirmedSlot  *ConfirmedSlot `json:"confirmed_slot"` // nil until the student confirms
	Status         ScheduleStatus `json:"status"`
	Token          string         `json:"-"` // bearer credential, never serialized
	TokenExpiresAt time.Time      `json:"token_expires_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// TokenExpired reports whether the confirmation token is past its deadline.
func (r *SchedulingRequest) TokenExpired(now time.Time) bool {
	return now.After(r.TokenExpiresAt)
}

// Offers reports whether the given slot value-matches one of the proposed slots.
func (r *SchedulingRequest) Offers(slot Slot) bool {
	for _, s := range r.ProposedSlots {
		if s.Date == slot.Date && s.Time == slot.Time {
			return true
		}
	}
	return false
}
