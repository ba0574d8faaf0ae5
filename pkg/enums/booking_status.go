package enums

import "fmt"

// BookingStatus tracks a booking through the settlement state machine.
// pending -> paid for the single settlement winner per product;
// pending -> superseded for every other booking once the listing sells.
// paid and superseded are terminal.
type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusPaid       BookingStatus = "paid"
	BookingStatusSuperseded BookingStatus = "superseded"
)

var validBookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusPaid,
	BookingStatusSuperseded,
}

// String implements fmt.Stringer.
func (b BookingStatus) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BookingStatus.
func (b BookingStatus) IsValid() bool {
	for _, candidate := range validBookingStatuses {
		if candidate == b {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is allowed.
func (b BookingStatus) IsTerminal() bool {
	return b == BookingStatusPaid || b == BookingStatusSuperseded
}

// ParseBookingStatus converts raw input into a BookingStatus.
func ParseBookingStatus(value string) (BookingStatus, error) {
	for _, candidate := range validBookingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid booking status %q", value)
}
