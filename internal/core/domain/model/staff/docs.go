// Package staff models the authenticated principals that act on orders.
// It provides the Actor value object and the closed Role enumeration used by
// the authorization gate to decide which workflow transitions an actor may
// invoke. Authentication and session management are external collaborators;
// this package only models the already-established identity.
package staff
