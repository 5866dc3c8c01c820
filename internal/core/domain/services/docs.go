// Package services contains stateless domain services for the fulfillment
// workflow: the BatchAllocator implementing the FEFO picking discipline and
// the AuthorizationGate consolidating the role and warehouse-scope rules for
// every status transition. Both operate purely on domain aggregates; the
// application layer supplies data and owns transactions.
package services
