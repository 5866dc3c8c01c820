package staff

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Role classifies an authenticated actor's capability within the fulfillment
// workflow. The set is closed; API input outside it is rejected.
type Role int

const (
	// RoleUnknown represents an invalid or undefined role.
	RoleUnknown Role = iota

	// RoleViewer may read orders but trigger no transitions.
	RoleViewer

	// RoleOperator carries the warehouse-operations capability, scoped to the
	// actor's single assigned warehouse.
	RoleOperator

	// RoleManager carries the approval capability: confirming, cancelling and
	// closing out orders.
	RoleManager
)

func getRoleStrings() map[Role]string {
	return map[Role]string{
		RoleUnknown:  "UNKNOWN",
		RoleViewer:   "VIEWER",
		RoleOperator: "OPERATOR",
		RoleManager:  "MANAGER",
	}
}

// RoleFromString parses the canonical wire name of a role.
func RoleFromString(s string) (Role, error) {
	for role, name := range getRoleStrings() {
		if name == s && role != RoleUnknown {
			return role, nil
		}
	}
	return RoleUnknown, errs.NewValueIsInvalidErrorWithCause("role",
		fmt.Errorf("%q is not a valid role", s))
}

// Validate checks the Role is one of the enumerated values.
func (r Role) Validate() error {
	if r != RoleViewer && r != RoleOperator && r != RoleManager {
		return errs.NewValueIsInvalidErrorWithCause("role",
			fmt.Errorf("%d is not a valid role", r))
	}
	return nil
}

// String returns the canonical wire name of the role. Implements fmt.Stringer.
func (r Role) String() string {
	if str, ok := getRoleStrings()[r]; ok {
		return str
	}
	return "UNKNOWN"
}

// CanApprove reports whether the role carries the approval capability.
func (r Role) CanApprove() bool {
	return r == RoleManager
}

// CanOperate reports whether the role carries the warehouse-operations
// capability. Warehouse scope is checked separately on the actor.
func (r Role) CanOperate() bool {
	return r == RoleOperator
}
