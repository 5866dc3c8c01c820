package services

import (
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/staff"
)

// ErrUnauthorized is the unwrap target for every transition an actor lacks
// the capability or warehouse scope to invoke. It is distinct from an invalid
// transition: the move may be structurally legal, just not for this actor.
var ErrUnauthorized = errors.New("actor is not authorized")

// UnauthorizedError reports a permission failure for a requested transition.
type UnauthorizedError struct {
	ActorID string
	Role    staff.Role
	Target  order.Status
}

// NewUnauthorizedError creates an UnauthorizedError for the given actor and target status.
func NewUnauthorizedError(actor *staff.Actor, target order.Status) *UnauthorizedError {
	return &UnauthorizedError{
		ActorID: actor.ID().String(),
		Role:    actor.Role(),
		Target:  target,
	}
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("%s: %s (%s) may not move the order to %s",
		ErrUnauthorized, e.ActorID, e.Role, e.Target)
}

func (e *UnauthorizedError) Unwrap() error {
	return ErrUnauthorized
}

// AuthorizationGate is the single decision point mapping (actor, order,
// target status) to transition eligibility. Every mutating path consults it;
// reading an order never does: viewing is open to any authenticated actor.
//
// Capability rules:
//   - Confirming a pending order requires the approval capability
//   - Cancelling a pending order is open to approval actors and the order's creator
//   - Cancelling after confirmation requires the approval capability
//   - The warehouse steps (Picking, Picked, Packed, Shipped) require the
//     operations capability scoped to the order's warehouse
//   - Marking Delivered is open to approval actors and the order's
//     warehouse-scoped operators
type AuthorizationGate struct{}

// NewAuthorizationGate creates a new AuthorizationGate instance.
func NewAuthorizationGate() AuthorizationGate {
	return AuthorizationGate{}
}

// CanTransition reports whether the actor may request moving the order to
// target. It decides eligibility only; whether the transition is structurally
// legal from the order's current status is the state machine's concern.
func (g AuthorizationGate) CanTransition(actor *staff.Actor, o *order.Order, target order.Status) bool {
	if actor == nil || o == nil {
		return false
	}

	switch target {
	case order.Confirmed:
		return actor.CanApprove()
	case order.Cancelled:
		if actor.CanApprove() {
			return true
		}
		// The originating actor may withdraw an order that was never approved.
		return o.Status() == order.Pending && actor.ID().IsEqual(o.CreatedBy())
	case order.Picking, order.Picked, order.Packed, order.Shipped:
		return actor.CanOperateIn(o.Warehouse())
	case order.Delivered:
		return actor.CanApprove() || actor.CanOperateIn(o.Warehouse())
	default:
		return false
	}
}

// Authorize is CanTransition with a typed failure: it returns
// UnauthorizedError when the actor may not request the move.
func (g AuthorizationGate) Authorize(actor *staff.Actor, o *order.Order, target order.Status) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	if !g.CanTransition(actor, o, target) {
		return NewUnauthorizedError(actor, target)
	}
	return nil
}
