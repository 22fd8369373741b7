package schedparse

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/hireai/scheduling-service/internal/model"
)

// anchor is a Sunday, so "Monday" resolves to 2025-06-02.
var anchor = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func TestRuleParserMessages(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    []model.Slot
	}{
		{
			name:    "two days one time",
			message: "schedule on Monday and Tuesday at 9am",
			want: []model.Slot{
				{Date: "2025-06-02", Time: "09:00"},
				{Date: "2025-06-03", Time: "09:00"},
			},
		},
		{
			name:    "individual day-time pairs",
			message: "Monday at 9am and Wednesday at 2pm",
			want: []model.Slot{
				{Date: "2025-06-02", Time: "09:00"},
				{Date: "2025-06-04", Time: "14:00"},
			},
		},
		{
			name:    "next weekday with minutes",
			message: "next Monday at 10:30am",
			want: []model.Slot{
				{Date: "2025-06-02", Time: "10:30"},
			},
		},
		{
			name:    "abbreviated day names",
			message: "let's do thu at 4pm or fri at 11am",
			want: []model.Slot{
				{Date: "2025-06-05", Time: "16:00"},
				{Date: "2025-06-06", Time: "11:00"},
			},
		},
		{
			name:    "duplicate mentions collapse",
			message: "Monday at 9am, I repeat, Monday at 9am",
			want: []model.Slot{
				{Date: "2025-06-02", Time: "09:00"},
			},
		},
		{
			name:    "no understandable slots",
			message: "sometime next week maybe",
			want:    nil,
		},
		{
			name:    "bare day without time is not a slot",
			message: "how about Tuesday?",
			want:    nil,
		},
	}

	p := NewRuleParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := p.Parse(context.Background(), tt.message, anchor)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if len(result.Slots) != len(tt.want) {
				t.Fatalf("Parse() slots = %v, want %v", result.Slots, tt.want)
			}
			for i, s := range result.Slots {
				if s != tt.want[i] {
					t.Errorf("slot[%d] = %v, want %v", i, s, tt.want[i])
				}
			}
			if len(tt.want) == 0 && result.AckMessage != NoSlotsMessage {
				t.Errorf("AckMessage = %q, want the no-slots guidance", result.AckMessage)
			}
		})
	}
}

func TestRuleParserAckMessage(t *testing.T) {
	p := NewRuleParser()
	result, err := p.Parse(context.Background(), "Monday and Tuesday at 9am", anchor)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	for _, want := range []string{"Monday, June 02 at 09:00", "Tuesday, June 03 at 09:00", " and "} {
		if !strings.Contains(result.AckMessage, want) {
			t.Errorf("AckMessage %q missing %q", result.AckMessage, want)
		}
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"9am", "09:00", true},
		{"2:30pm", "14:30", true},
		{"10", "10:00", true},
		{"12am", "00:00", true},
		{"12pm", "12:00", true},
		{"11:45 pm", "23:45", true},
		{"0:15", "00:15", true},
		{"19:00", "19:00", true},
		{"9:75", "", false},
		{"noonish", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseTime(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("parseTime(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestNextWeekdayRollsToFollowingWeek(t *testing.T) {
	monday := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	// Asking for Monday on a Monday means next week's Monday.
	got := nextWeekday(monday, time.Monday)
	if got.Format("2006-01-02") != "2025-06-09" {
		t.Errorf("nextWeekday(monday, Monday) = %s, want 2025-06-09", got.Format("2006-01-02"))
	}

	got = nextWeekday(monday, time.Sunday)
	if got.Format("2006-01-02") != "2025-06-08" {
		t.Errorf("nextWeekday(monday, Sunday) = %s, want 2025-06-08", got.Format("2006-01-02"))
	}
}

func TestDisplaySlot(t *testing.T) {
	got := DisplaySlot(model.Slot{Date: "2025-06-02", Time: "09:00"})
	if got != "Monday, June 02 at 09:00" {
		t.Errorf("DisplaySlot() = %q", got)
	}

	// Malformed dates fall back to raw values instead of erroring.
	got = DisplaySlot(model.Slot{Date: "soon", Time: "09:00"})
	if got != "soon at 09:00" {
		t.Errorf("DisplaySlot() fallback = %q", got)
	}
}
