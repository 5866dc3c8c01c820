package commands

import (
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/staff"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrChangeOrderStatusCommandIsNotConstructed = errors.New(
		"ChangeOrderStatusCommand must be created via NewChangeOrderStatusCommand constructor",
	)
)

// BatchSelection is one caller-chosen (item, batch, quantity) triple for the
// picking commit. Selections are only meaningful, and only required, on the
// transition to Picked.
type BatchSelection struct {
	SKUID    kernel.UUID
	BatchID  kernel.UUID
	Quantity int
}

// ChangeOrderStatusCommand represents a request by an actor to move an order
// to a target workflow status. It carries the acting principal so the
// authorization gate can decide eligibility, and, for the Picked transition,
// the explicit batch selections to commit.
type ChangeOrderStatusCommand struct { //nolint:recvcheck //using for validation
	orderID    kernel.UUID
	actor      *staff.Actor
	target     order.Status
	selections []BatchSelection

	guard guard.ConstructorGuard
}

// NewChangeOrderStatusCommand creates a status transition command. The target
// must be one of the enumerated workflow statuses; selections are required
// when the target is Picked and rejected for any other target.
func NewChangeOrderStatusCommand(
	orderID kernel.UUID,
	actor *staff.Actor,
	target order.Status,
	selections []BatchSelection,
) (ChangeOrderStatusCommand, error) {
	cmd := ChangeOrderStatusCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setActor(actor),
		cmd.setTarget(target),
	); err != nil {
		return ChangeOrderStatusCommand{}, err
	}

	if err := cmd.setSelections(selections); err != nil {
		return ChangeOrderStatusCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ChangeOrderStatusCommand) Validate() error {
	return c.guard.Validate(ErrChangeOrderStatusCommandIsNotConstructed)
}

// OrderID returns the order to transition.
func (c ChangeOrderStatusCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Actor returns the acting principal.
func (c ChangeOrderStatusCommand) Actor() *staff.Actor {
	return c.actor
}

// Target returns the requested status.
func (c ChangeOrderStatusCommand) Target() order.Status {
	return c.target
}

// Selections returns the batch selections for the Picked transition.
// Empty for every other target.
func (c ChangeOrderStatusCommand) Selections() []BatchSelection {
	out := make([]BatchSelection, len(c.selections))
	copy(out, c.selections)
	return out
}

func (c *ChangeOrderStatusCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *ChangeOrderStatusCommand) setActor(actor *staff.Actor) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	c.actor = actor
	return nil
}

func (c *ChangeOrderStatusCommand) setTarget(target order.Status) error {
	if err := target.Validate(); err != nil {
		return err
	}
	c.target = target
	return nil
}

func (c *ChangeOrderStatusCommand) setSelections(selections []BatchSelection) error {
	if c.target == order.Picked {
		if len(selections) == 0 {
			return errs.NewValueIsRequiredError("batch selections")
		}
	} else if len(selections) > 0 {
		return errs.NewValueIsInvalidErrorWithCause("batch selections",
			fmt.Errorf("selections are only accepted for the %s transition", order.Picked))
	}

	for _, sel := range selections {
		if err := sel.SKUID.Validate(); err != nil {
			return err
		}
		if err := sel.BatchID.Validate(); err != nil {
			return err
		}
		if sel.Quantity <= 0 {
			return errs.NewValueIsInvalidErrorWithCause("selection quantity",
				fmt.Errorf("%d is not greater than 0", sel.Quantity))
		}
	}

	c.selections = make([]BatchSelection, len(selections))
	copy(c.selections, selections)
	return nil
}
