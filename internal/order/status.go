// Package order holds the order lifecycle model shared by the dashboard:
// the status progression, transition rules and stage timeline estimation.
package order

import (
	"errors"
	"fmt"
	"strings"
)

// Status is one stage of the order lifecycle as reported by the storefront.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusDelivered Status = "delivered"

	// StatusCancelled sits outside the progress sequence and can be reached
	// from any non-terminal stage.
	StatusCancelled Status = "cancelled"
)

// ErrUnknownStatus marks a status value the dashboard does not recognize.
// Unknown values are treated as a defect in the upstream data, never mapped
// to a default stage.
var ErrUnknownStatus = errors.New("unknown order status")

// sequence is the forward progress order; the index is the stage ordinal.
var sequence = []Status{StatusPending, StatusConfirmed, StatusPreparing, StatusReady, StatusDelivered}

var labels = map[Status]string{
	StatusPending:   "Pending",
	StatusConfirmed: "Confirmed",
	StatusPreparing: "Preparing",
	StatusReady:     "Ready for Pickup",
	StatusDelivered: "Delivered",
	StatusCancelled: "Cancelled",
}

// StageCount reports how many stages the progress sequence has.
func StageCount() int { return len(sequence) }

// Stages returns the progress sequence in ordinal order.
func Stages() []Status {
	out := make([]Status, len(sequence))
	copy(out, sequence)
	return out
}

// ParseStatus validates a raw status string from the storefront API.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := labels[s]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
	}
	return s, nil
}

// Ordinal returns the zero-based position of s within the progress sequence.
// Cancelled (and unknown values) have no ordinal.
func (s Status) Ordinal() (int, bool) {
	for i, stage := range sequence {
		if stage == s {
			return i, true
		}
	}
	return 0, false
}

// Label returns the human readable stage name.
func (s Status) Label() string {
	if label, ok := labels[s]; ok {
		return label
	}
	return string(s)
}

// Terminal reports whether no further transition may leave s.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Valid reports whether s is a recognized status value.
func (s Status) Valid() bool {
	_, ok := labels[s]
	return ok
}

// CanTransition reports whether to is a legal forward transition from from.
// Re-applying the current stage is allowed as a no-op; the sequence never
// moves backward. Cancellation is reachable from every non-terminal stage.
func CanTransition(from, to Status) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	if from.Terminal() {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	fromOrd, fromOK := from.Ordinal()
	toOrd, toOK := to.Ordinal()
	if !fromOK || !toOK {
		return false
	}
	return toOrd >= fromOrd
}
