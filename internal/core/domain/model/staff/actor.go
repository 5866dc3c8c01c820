package staff

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
)

// ErrActorIsNotConstructed is returned when an Actor instance was not created
// through the NewActor factory method.
var ErrActorIsNotConstructed = errors.New("Actor must be created via NewActor constructor")

// Actor is the authenticated principal acting on an order: an identity, a
// role and, for operators, the single warehouse they are assigned to.
// Authentication itself is an external concern; the Actor is what the
// surrounding application hands this core after it has established identity.
type Actor struct {
	id          kernel.UUID
	role        Role
	warehouseID *kernel.UUID

	isConstructed bool
}

// NewActor creates an actor principal. warehouseID is the operator's assigned
// warehouse and may be nil for actors without an assignment; an operator
// without one can read orders but drive no warehouse transitions.
func NewActor(id kernel.UUID, role Role, warehouseID *kernel.UUID) (*Actor, error) {
	actor := &Actor{
		isConstructed: true,
	}

	if err := errors.Join(
		actor.setID(id),
		actor.setRole(role),
		actor.setWarehouse(warehouseID),
	); err != nil {
		return nil, err
	}

	return actor, nil
}

// Validate ensures the Actor was built via NewActor.
func (a *Actor) Validate() error {
	if a == nil || !a.isConstructed {
		return ErrActorIsNotConstructed
	}
	return nil
}

// ID returns the actor's identity.
func (a *Actor) ID() kernel.UUID {
	return a.id
}

// Role returns the actor's capability class.
func (a *Actor) Role() Role {
	return a.role
}

// Warehouse returns the operator's assigned warehouse, or nil when the actor
// has no assignment.
func (a *Actor) Warehouse() *kernel.UUID {
	return a.warehouseID
}

// CanApprove reports whether the actor carries the approval capability.
func (a *Actor) CanApprove() bool {
	return a.role.CanApprove()
}

// CanOperateIn reports whether the actor may drive warehouse operations for
// the given warehouse: the operations capability plus a matching assignment.
func (a *Actor) CanOperateIn(warehouseID kernel.UUID) bool {
	return a.role.CanOperate() && a.warehouseID != nil && a.warehouseID.IsEqual(warehouseID)
}

func (a *Actor) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	a.id = id
	return nil
}

func (a *Actor) setRole(role Role) error {
	if err := role.Validate(); err != nil {
		return err
	}
	a.role = role
	return nil
}

func (a *Actor) setWarehouse(warehouseID *kernel.UUID) error {
	if warehouseID == nil {
		return nil
	}
	if err := warehouseID.Validate(); err != nil {
		return err
	}
	a.warehouseID = warehouseID
	return nil
}
