package schedparse

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hireai/scheduling-service/internal/model"
)

// Result is the structured outcome of interpreting a free-text scheduling
// message. Slots may be empty when nothing could be understood; AckMessage is
// a human-readable summary suitable to echo back to the recruiter.
type Result struct {
	Slots      []model.Slot `json:"slots"`
	AckMessage string       `json:"ack_message"`
}

// Parser turns a free-text scheduling message into candidate slots. The
// current time anchors relative dates ("Monday" means the next Monday).
type Parser interface {
	Parse(ctx context.Context, message string, now time.Time) (*Result, error)
}

// NoSlotsMessage is returned as acknowledgement when a message yields no slots.
const NoSlotsMessage = "I couldn't understand the scheduling request. Please specify dates and times clearly (e.g., 'Monday and Tuesday at 9am')."

var dayNames = map[string]time.Weekday{
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
	"sunday": time.Sunday, "sun": time.Sunday,
}

const dayAlt = `monday|tuesday|wednesday|thursday|friday|saturday|sunday|mon|tue|wed|thu|fri|sat|sun`

var (
	// "Monday and Tuesday at 9am"
	pairPattern = regexp.MustCompile(`(?i)(` + dayAlt + `)(?:\s+and\s+)?(` + dayAlt + `)?\s+at\s+(\d{1,2}(?::\d{2})?\s*(?:am|pm)?)`)
	// "Monday at 9am and Wednesday at 2pm"
	singlePattern = regexp.MustCompile(`(?i)(` + dayAlt + `)\s+at\s+(\d{1,2}(?::\d{2})?\s*(?:am|pm)?)`)
	// "next Monday ... 10:30am"
	nextPattern = regexp.MustCompile(`(?i)(?:next\s+)?(` + dayAlt + `)(?:.*?)(\d{1,2}(?::\d{2})?\s*(?:am|pm))`)

	timePattern = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?\s*(am|pm)?`)
)

// RuleParser extracts slots with weekday/time patterns. It is deterministic and
// needs no credentials, which makes it the default backend.
type RuleParser struct{}

func NewRuleParser() *RuleParser {
	return &RuleParser{}
}

func (p *RuleParser) Parse(_ context.Context, message string, now time.Time) (*Result, error) {
	message = strings.ToLower(message)

	var slots []model.Slot
	add := func(s model.Slot) {
		for _, existing := range slots {
			if existing == s {
				return
			}
		}
		slots = append(slots, s)
	}

	for _, m := range pairPattern.FindAllStringSubmatch(message, -1) {
		parsed, ok := parseTime(m[3])
		if !ok {
			continue
		}
		for _, day := range []string{m[1], m[2]} {
			if wd, known := dayNames[day]; known {
				add(model.Slot{Date: nextWeekday(now, wd).Format("2006-01-02"), Time: parsed})
			}
		}
	}

	for _, m := range singlePattern.FindAllStringSubmatch(message, -1) {
		parsed, ok := parseTime(m[2])
		if !ok {
			continue
		}
		if wd, known := dayNames[m[1]]; known {
			add(model.Slot{Date: nextWeekday(now, wd).Format("2006-01-02"), Time: parsed})
		}
	}

	for _, m := range nextPattern.FindAllStringSubmatch(message, -1) {
		parsed, ok := parseTime(m[2])
		if !ok {
			continue
		}
		if wd, known := dayNames[m[1]]; known {
			add(model.Slot{Date: nextWeekday(now, wd).Format("2006-01-02"), Time: parsed})
		}
	}

	if len(slots) == 0 {
		return &Result{Slots: nil, AckMessage: NoSlotsMessage}, nil
	}

	return &Result{Slots: slots, AckMessage: ackMessage(slots)}, nil
}

func ackMessage(slots []model.Slot) string {
	descriptions := make([]string, 0, len(slots))
	for _, s := range slots {
		descriptions = append(descriptions, DisplaySlot(s))
	}
	return fmt.Sprintf(
		"I've scheduled interview slots for %s. An email has been sent to the candidate with these options.",
		strings.Join(descriptions, " and "),
	)
}

// DisplaySlot renders a slot as "Monday, June 02 at 09:00". Slots with a
// malformed date fall back to the raw values.
func DisplaySlot(s model.Slot) string {
	d, err := time.Parse("2006-01-02", s.Date)
	if err != nil {
		return s.Date + " at " + s.Time
	}
	return d.Format("Monday, January 02") + " at " + s.Time
}

// parseTime normalizes strings like "9am", "2:30pm" or "10" to "HH:MM".
func parseTime(raw string) (string, bool) {
	raw = strings.TrimSpace(strings.ToLower(raw))

	m := timePattern.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}

	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}

	switch m[3] {
	case "pm":
		if hour != 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", false
	}

	return fmt.Sprintf("%02d:%02d", hour, minute), true
}

// nextWeekday returns the next occurrence of the target weekday strictly after
// the anchor date: asking for Monday on a Monday yields the following week.
func nextWeekday(now time.Time, target time.Weekday) time.Time {
	daysAhead := int(target) - int(now.Weekday())
	if daysAhead <= 0 {
		daysAhead += 7
	}
	return now.AddDate(0, 0, daysAhead)
}
