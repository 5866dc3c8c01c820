package order

import (
	"errors"
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// ErrInvalidTransition is the unwrap target for every rejected status
// transition. Callers classify with errors.Is.
var ErrInvalidTransition = errors.New("status transition is invalid")

// InvalidTransitionError reports a transition that is not an edge in the
// fulfillment workflow graph. It carries both endpoints so the caller can
// re-fetch current state and present a meaningful message.
type InvalidTransitionError struct {
	From Status
	To   Status
}

// NewInvalidTransitionError creates an InvalidTransitionError for the given edge.
func NewInvalidTransitionError(from, to Status) *InvalidTransitionError {
	return &InvalidTransitionError{From: from, To: to}
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: %s cannot move to %s", ErrInvalidTransition, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// Status represents the lifecycle state of a sales order. It implements a
// state machine with an explicit transition table so the set of legal moves
// is a closed, enumerable graph rather than scattered string comparisons.
//
// State transitions:
//
//	Pending ──> Confirmed ──> Picking ──> Picked ──> Packed ──> Shipped ──> Delivered
//	    │            │            │           │          │
//	    └────────────┴────────────┴───────────┴──────────┴──> Cancelled
//
// Shipped and Delivered orders cannot be cancelled: stock decrements made at
// shipping are irreversible. Delivered and Cancelled are terminal.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending is the initial status assigned at order creation.
	Pending

	// Confirmed indicates the order passed approval and may enter the
	// warehouse workflow.
	Confirmed

	// Picking indicates a warehouse operator is selecting stock batches.
	// No reservations exist yet while in this status.
	Picking

	// Picked indicates batch allocations are committed: every item is fully
	// covered by reservations against physical batches.
	Picked

	// Packed indicates the picked goods are packed and ready to ship.
	Packed

	// Shipped indicates the order left the warehouse. Reservations have been
	// converted into permanent stock decrements.
	Shipped

	// Delivered indicates the order reached the customer. Terminal.
	Delivered

	// Cancelled indicates the order was aborted before shipping and any
	// reservations were released. Terminal.
	Cancelled
)

// transitions is the workflow graph: each status maps to the set of statuses
// reachable in one step. Absent edges are invalid transitions.
func transitions() map[Status][]Status {
	return map[Status][]Status{
		Pending:   {Confirmed, Cancelled},
		Confirmed: {Picking, Cancelled},
		Picking:   {Picked, Cancelled},
		Picked:    {Packed, Cancelled},
		Packed:    {Shipped, Cancelled},
		Shipped:   {Delivered},
		Delivered: {},
		Cancelled: {},
	}
}

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "UNKNOWN",
		Pending:   "PENDING",
		Confirmed: "CONFIRMED",
		Picking:   "PICKING",
		Picked:    "PICKED",
		Packed:    "PACKED",
		Shipped:   "SHIPPED",
		Delivered: "DELIVERED",
		Cancelled: "CANCELLED",
	}
}

// StatusFromString parses the canonical wire name of a status. The set of
// accepted names is closed; anything else is a validation error so API input
// outside the enumeration gets rejected at the boundary.
func StatusFromString(s string) (Status, error) {
	for status, name := range getStatusStrings() {
		if name == s && status != Unknown {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status",
		fmt.Errorf("%q is not a valid status", s))
}

// Validate checks the Status is one of the enumerated workflow states.
// Unknown (0) and out-of-range values are invalid.
func (s Status) Validate() error {
	if _, ok := transitions()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the canonical wire name of the status, or "UNKNOWN" for
// invalid values. Implements fmt.Stringer.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// CanTransitionTo reports whether target is reachable from s in one step.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range transitions()[s] {
		if next == target {
			return true
		}
	}
	return false
}

// TransitionTo validates the edge s -> target against the workflow graph and
// returns the new status. Rejected moves return InvalidTransitionError and
// leave the caller unchanged.
func (s Status) TransitionTo(target Status) (Status, error) {
	if err := target.Validate(); err != nil {
		return Unknown, err
	}
	if !s.CanTransitionTo(target) {
		return Unknown, NewInvalidTransitionError(s, target)
	}
	return target, nil
}

// IsTerminal reports whether the status has no outgoing edges.
func (s Status) IsTerminal() bool {
	return len(transitions()[s]) == 0
}

// HoldsReservations reports whether orders in this status carry live batch
// reservations that must be released on cancellation. Reservations are
// committed at Picked and converted to decrements at Shipped.
func (s Status) HoldsReservations() bool {
	return s == Picked || s == Packed
}
