// Package users manages user accounts and their role memberships.
//
// It hosts the two halves of the authorization core that operate on
// users: the tenant-scoped authority resolver (pure read path used by
// the capability-gate middleware) and the role-assignment guard that
// every role-set change must pass before persisting.
package users
