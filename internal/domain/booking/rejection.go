package booking

import (
	"errors"
	"fmt"
)

// Reason tags why a booking was refused.
type Reason string

const (
	ReasonParseFailure  Reason = "parse_failure"
	ReasonNonWorkingDay Reason = "non_working_day"
	ReasonSlotTaken     Reason = "slot_taken"
	ReasonPastSlot      Reason = "past_slot"
)

// Rejection is returned by CanBook and by the use cases built on it.
type Rejection struct {
	Reason Reason
	// TakenBy is the client name holding the slot (ReasonSlotTaken only).
	TakenBy string
	// Value is the offending input (ReasonParseFailure only).
	Value string
}

func (r *Rejection) Error() string {
	switch r.Reason {
	case ReasonParseFailure:
		return fmt.Sprintf("booking: cannot parse %q", r.Value)
	case ReasonNonWorkingDay:
		return "booking: appointments cannot be booked on non-working days"
	case ReasonSlotTaken:
		return fmt.Sprintf("booking: time slot is already booked by %s", r.TakenBy)
	case ReasonPastSlot:
		return "booking: the time slot has already passed"
	default:
		return "booking: rejected"
	}
}

// AsRejection unwraps err into a *Rejection.
func AsRejection(err error) (*Rejection, bool) {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}

// IsRejected reports whether err is a rejection with the given reason.
func IsRejected(err error, reason Reason) bool {
	rej, ok := AsRejection(err)
	return ok && rej.Reason == reason
}
