// Package audit records security-relevant events: every tenant, role,
// membership, and invite mutation, with the acting user and request
// attached for correlation.
package audit
