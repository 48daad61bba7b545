package model

import (
	"testing"
	"time"
)

func TestNights(t *testing.T) {
	midnight := func(day int) time.Time {
		return time.Date(2024, time.June, day, 0, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
		want     int
	}{
		{"single night", midnight(1), midnight(2), 1},
		{"two nights", midnight(1), midnight(3), 2},
		{"week", midnight(1), midnight(8), 7},
		{"partial day rounds up", midnight(1), midnight(2).Add(6 * time.Hour), 2},
		{"sub-day stay counts as one night", midnight(1), midnight(1).Add(4 * time.Hour), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Booking{CheckIn: tt.checkIn, CheckOut: tt.checkOut}
			if got := b.Nights(); got != tt.want {
				t.Errorf("Nights() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTerminal(t *testing.T) {
	terminal := map[string]bool{
		BookingRequested:  false,
		BookingApproved:   false,
		BookingConfirmed:  false,
		BookingCheckedIn:  false,
		BookingCheckedOut: true,
		BookingCancelled:  true,
	}

	for status, want := range terminal {
		b := &Booking{Status: status}
		if got := b.Terminal(); got != want {
			t.Errorf("Terminal() for %q = %v, want %v", status, got, want)
		}
	}
}
